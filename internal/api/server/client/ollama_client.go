package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/bz888/promptpad/internal/logger"
)

// OllamaClient represents a client for the Ollama API
type OllamaClient struct {
	Client
	model string
}

// NewOllamaClient creates a client for the Ollama server at host that
// generates with model.
func NewOllamaClient(host, model string, httpClient *http.Client) (*OllamaClient, error) {
	c, err := NewClient(ClientConfig{
		BaseURL:      host,
		GeneratePath: "/api/generate",
		HTTPClient:   httpClient,
	})
	if err != nil {
		return nil, err
	}
	return &OllamaClient{Client: *c, model: model}, nil
}

// GenerateOptions are the sampling settings for one generation.
type GenerateOptions struct {
	MaxTokens   int
	Temperature float64
	TopK        int
}

type OllamaGenerateRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Raw     bool          `json:"raw"`
	Options OllamaOptions `json:"options"`
}

type OllamaOptions struct {
	NumPredict  int     `json:"num_predict"`
	Temperature float64 `json:"temperature"`
	TopK        int     `json:"top_k"`
}

type OllamaGenerateResponse struct {
	Model     string `json:"model"`
	CreatedAt string `json:"created_at"`
	Response  string `json:"response"`
	Done      bool   `json:"done"`
	EvalCount int    `json:"eval_count"`
	Error     string `json:"error,omitempty"`
}

// Generate continues prompt and returns only the generated text.
func (c *OllamaClient) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	localLogger := logger.NewLogger("ollama generate")

	bts, err := json.Marshal(OllamaGenerateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: false,
		Raw:    true,
		Options: OllamaOptions{
			NumPredict:  opts.MaxTokens,
			Temperature: opts.Temperature,
			TopK:        opts.TopK,
		},
	})
	if err != nil {
		return "", err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.GetGenerateURL(), bytes.NewReader(bts))
	if err != nil {
		return "", err
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := c.http.Do(request)
	if err != nil {
		localLogger.Error("Failed to request on ollama generate:", err)
		return "", err
	}
	defer response.Body.Close()

	var apiResp OllamaGenerateResponse
	if err := json.NewDecoder(response.Body).Decode(&apiResp); err != nil {
		return "", fmt.Errorf("decode generate response: %w", err)
	}
	if response.StatusCode != http.StatusOK {
		if apiResp.Error == "" {
			apiResp.Error = response.Status
		}
		return "", fmt.Errorf("ollama generate: %s", apiResp.Error)
	}

	localLogger.Info("Completed response, tokens: ", apiResp.EvalCount)
	return apiResp.Response, nil
}

// Ping checks that the Ollama server answers on its root path.
func (c *OllamaClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.GetBaseURL(), nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errors.New("ollama not available: " + resp.Status)
	}
	return nil
}
