package api

import "fmt"

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the body returned by POST /chat. Error is only set on
// non-2xx responses.
type ChatResponse struct {
	Reply string `json:"reply,omitempty"`
	Error string `json:"error,omitempty"`
}

// CompletionRequest is the body of POST /complete.
type CompletionRequest struct {
	Text        string  `json:"text"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	TopK        int     `json:"top_k"`
}

// CompletionResponse is the body returned by POST /complete.
type CompletionResponse struct {
	OriginalText string `json:"original_text,omitempty"`
	Completion   string `json:"completion,omitempty"`
	Error        string `json:"error,omitempty"`
}

// ErrorResponse is the error envelope written by the backend.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusError reports a decoded response with a non-2xx status. Message is
// the server's error field and may be empty.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Message)
}

// Bounds is an inclusive integer range.
type Bounds struct {
	Min int
	Max int
}

func (b Bounds) Clamp(v int) int {
	if v < b.Min {
		return b.Min
	}
	if v > b.Max {
		return b.Max
	}
	return v
}

var (
	MaxTokensBounds = Bounds{Min: 1, Max: 200}
	TopKBounds      = Bounds{Min: 1, Max: 100}
)

// Sampling defaults shared by the completion form and the backend.
const (
	DefaultMaxTokens   = 50
	DefaultTemperature = 0.8
	DefaultTopK        = 50
)
