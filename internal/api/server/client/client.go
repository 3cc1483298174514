package client

import (
	"fmt"
	"net/http"
	"net/url"
)

// Client holds the base URL and transport shared by the backend clients.
type Client struct {
	base        *url.URL
	http        *http.Client
	generateUrl *url.URL
}

// ClientConfig holds the configuration for the client
type ClientConfig struct {
	BaseURL      string
	GeneratePath string
	HTTPClient   *http.Client
}

// NewClient creates a new API client with configurable base URL and endpoints
func NewClient(config ClientConfig) (*Client, error) {
	baseURL, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if baseURL.Scheme == "" || baseURL.Host == "" {
		return nil, fmt.Errorf("base url %q must include scheme and host", config.BaseURL)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		base:        baseURL,
		http:        httpClient,
		generateUrl: baseURL.ResolveReference(&url.URL{Path: config.GeneratePath}),
	}, nil
}

func (c *Client) GetBaseURL() string {
	return c.base.String()
}

func (c *Client) GetGenerateURL() string {
	return c.generateUrl.String()
}
