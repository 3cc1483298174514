package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/bz888/promptpad/internal/api"
	"github.com/bz888/promptpad/internal/api/server/client"
)

// Chat replies are kept short so the model answers quickly.
var chatOptions = client.GenerateOptions{
	MaxTokens:   50,
	Temperature: 0.8,
	TopK:        50,
}

// writeJSON writes a JSON response with the given status code.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to write JSON response: ", err)
	}
}

// writeError writes an error envelope and counts the request.
func (s *Server) writeError(w http.ResponseWriter, endpoint string, status int, msg string) {
	s.metrics.ObserveRequest(endpoint, status)
	s.writeJSON(w, status, api.ErrorResponse{Error: msg})
}

// handleChat handles POST /chat.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	const endpoint = "chat"

	var req struct {
		Message *string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == nil {
		s.writeError(w, endpoint, http.StatusBadRequest, "No message provided")
		return
	}
	message := strings.TrimSpace(*req.Message)
	if message == "" {
		s.writeError(w, endpoint, http.StatusBadRequest, "Empty message")
		return
	}

	reply, err := s.generate(r.Context(), endpoint, message, chatOptions)
	if err != nil {
		s.logger.Error("Error generating response: ", err)
		s.writeError(w, endpoint, http.StatusInternalServerError, "Failed to generate response")
		return
	}

	s.metrics.ObserveRequest(endpoint, http.StatusOK)
	s.writeJSON(w, http.StatusOK, api.ChatResponse{Reply: strings.TrimSpace(reply)})
}

// handleComplete handles POST /complete.
func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	const endpoint = "complete"

	var req struct {
		Text        *string `json:"text"`
		MaxTokens   int     `json:"max_tokens"`
		Temperature float64 `json:"temperature"`
		TopK        int     `json:"top_k"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == nil {
		s.writeError(w, endpoint, http.StatusBadRequest, "No text provided")
		return
	}
	text := strings.TrimSpace(*req.Text)
	if text == "" {
		s.writeError(w, endpoint, http.StatusBadRequest, "Empty text")
		return
	}

	completion, err := s.generate(r.Context(), endpoint, text, completionOptions(req.MaxTokens, req.Temperature, req.TopK))
	if err != nil {
		s.logger.Error("Error generating completion: ", err)
		s.writeError(w, endpoint, http.StatusInternalServerError, "Failed to generate completion")
		return
	}

	s.metrics.ObserveRequest(endpoint, http.StatusOK)
	s.writeJSON(w, http.StatusOK, api.CompletionResponse{OriginalText: text, Completion: completion})
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	available := s.generator != nil
	if p, ok := s.generator.(Pinger); ok {
		available = p.Ping(r.Context()) == nil
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"generator": available,
	})
}

func (s *Server) generate(ctx context.Context, endpoint, prompt string, opts client.GenerateOptions) (string, error) {
	start := time.Now()
	out, err := s.generator.Generate(ctx, prompt, opts)
	s.metrics.ObserveGeneration(endpoint, time.Since(start).Seconds())
	return out, err
}

// completionOptions clamps the integer settings into range. Zero values and
// non-positive temperatures mean "use the default".
func completionOptions(maxTokens int, temperature float64, topK int) client.GenerateOptions {
	opts := client.GenerateOptions{
		MaxTokens:   api.DefaultMaxTokens,
		Temperature: api.DefaultTemperature,
		TopK:        api.DefaultTopK,
	}
	if maxTokens != 0 {
		opts.MaxTokens = api.MaxTokensBounds.Clamp(maxTokens)
	}
	if temperature > 0 {
		opts.Temperature = temperature
	}
	if topK != 0 {
		opts.TopK = api.TopKBounds.Clamp(topK)
	}
	return opts
}
