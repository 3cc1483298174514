package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/bz888/promptpad/internal/logger"
)

const (
	chatPath     = "/chat"
	completePath = "/complete"
)

// Client talks to the /chat and /complete backend.
type Client struct {
	base   *url.URL
	http   *http.Client
	logger *logger.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the default client. The default has no timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

func New(baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q must include scheme and host", baseURL)
	}

	c := &Client{
		base:   base,
		http:   &http.Client{},
		logger: logger.NewLogger("api client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	var resp ChatResponse
	status, err := c.post(ctx, chatPath, req, &resp)
	if err != nil {
		return ChatResponse{}, err
	}
	if !ok(status) {
		return resp, &StatusError{StatusCode: status, Message: resp.Error}
	}
	return resp, nil
}

func (c *Client) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	var resp CompletionResponse
	status, err := c.post(ctx, completePath, req, &resp)
	if err != nil {
		return CompletionResponse{}, err
	}
	if !ok(status) {
		return resp, &StatusError{StatusCode: status, Message: resp.Error}
	}
	return resp, nil
}

// post sends body as JSON and decodes the reply into out whatever the status.
// A reply that does not decode is treated like a transport failure.
func (c *Client) post(ctx context.Context, path string, body, out any) (int, error) {
	requestData, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("serialize request: %w", err)
	}

	requestURL := c.base.JoinPath(path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, requestURL.String(), bytes.NewReader(requestData))
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Info("POST ", requestURL.String())
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Errorf("Failed to send request: %s", err)
		return 0, fmt.Errorf("send request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Errorf("Failed to close response body: %s", err)
		}
	}()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.logger.Errorf("Failed to decode response (%s): %s", resp.Status, err)
		return resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}
	return resp.StatusCode, nil
}

func ok(status int) bool {
	return status >= 200 && status < 300
}
