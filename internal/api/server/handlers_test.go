package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bz888/promptpad/internal/api"
	"github.com/bz888/promptpad/internal/api/server/client"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string, opts client.GenerateOptions) (string, error) {
	args := m.Called(prompt, opts)
	return args.String(0), args.Error(1)
}

func newTestServer(t *testing.T) (*Server, *MockGenerator, *prometheus.Registry) {
	t.Helper()
	gen := new(MockGenerator)
	reg := prometheus.NewRegistry()
	return New(gen, reg), gen, reg
}

func post(t *testing.T, s *Server, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return rec, out
}

func TestChatReply(t *testing.T) {
	s, gen, reg := newTestServer(t)
	gen.On("Generate", "Hello there", chatOptions).Return("  General Kenobi \n", nil)

	rec, out := post(t, s, "/chat", `{"message":"  Hello there "}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "General Kenobi", out["reply"])
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.requestsTotal.WithLabelValues("chat", "2xx")))
	count, err := testutil.GatherAndCount(reg, "promptpad_backend_generation_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestChatValidation(t *testing.T) {
	cases := []struct {
		body string
		want string
	}{
		{`{}`, "No message provided"},
		{`not json`, "No message provided"},
		{`{"message":"   "}`, "Empty message"},
	}
	for _, tc := range cases {
		s, gen, _ := newTestServer(t)

		rec, out := post(t, s, "/chat", tc.body)

		assert.Equal(t, http.StatusBadRequest, rec.Code, tc.body)
		assert.Equal(t, tc.want, out["error"], tc.body)
		gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
	}
}

func TestChatGenerationFailure(t *testing.T) {
	s, gen, _ := newTestServer(t)
	gen.On("Generate", mock.Anything, mock.Anything).Return("", errors.New("model crashed"))

	rec, out := post(t, s, "/chat", `{"message":"hi"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to generate response", out["error"])
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.requestsTotal.WithLabelValues("chat", "5xx")))
}

func TestCompleteClampsParameters(t *testing.T) {
	s, gen, _ := newTestServer(t)
	gen.On("Generate", "Once upon", client.GenerateOptions{MaxTokens: 200, Temperature: 1.2, TopK: 1}).
		Return(" a time", nil)

	rec, out := post(t, s, "/complete", `{"text":"Once upon","max_tokens":900,"temperature":1.2,"top_k":-5}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Once upon", out["original_text"])
	assert.Equal(t, " a time", out["completion"])
	gen.AssertExpectations(t)
}

func TestCompleteDefaults(t *testing.T) {
	s, gen, _ := newTestServer(t)
	gen.On("Generate", "x", client.GenerateOptions{
		MaxTokens: api.DefaultMaxTokens, Temperature: api.DefaultTemperature, TopK: api.DefaultTopK,
	}).Return("y", nil)

	rec, _ := post(t, s, "/complete", `{"text":"x"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	gen.AssertExpectations(t)
}

func TestCompleteValidation(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec, out := post(t, s, "/complete", `{"max_tokens":10}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No text provided", out["error"])

	rec, out = post(t, s, "/complete", `{"text":"\n"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Empty text", out["error"])
}

func TestHealth(t *testing.T) {
	s, _, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","generator":true}`, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	s, gen, _ := newTestServer(t)
	gen.On("Generate", mock.Anything, mock.Anything).Return("ok", nil)
	post(t, s, "/chat", `{"message":"hi"}`)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `promptpad_backend_requests_total{endpoint="chat",status="2xx"} 1`)
}

// The widgets' client and this backend must agree on the wire contract.
func TestClientAgainstServer(t *testing.T) {
	s, gen, _ := newTestServer(t)
	gen.On("Generate", "Hello", mock.Anything).Return(" world", nil)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	c, err := api.New(srv.URL)
	require.NoError(t, err)

	resp, err := c.Complete(context.Background(), api.CompletionRequest{Text: "Hello", MaxTokens: 10, Temperature: 0.8, TopK: 5})
	require.NoError(t, err)
	assert.Equal(t, "Hello", resp.OriginalText)
	assert.Equal(t, " world", resp.Completion)

	_, err = c.Chat(context.Background(), api.ChatRequest{Message: " "})
	var statusErr *api.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
	assert.Equal(t, "Empty message", statusErr.Message)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	s, _, _ := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() { done <- s.Run(ctx, "127.0.0.1:0") }()
	cancel()

	assert.NoError(t, <-done)
}

func TestRunStartsWhenGeneratorIsDown(t *testing.T) {
	down := httptest.NewServer(http.NotFoundHandler())
	down.Close()
	ollama, err := client.NewOllamaClient(down.URL, "gpt2", nil)
	require.NoError(t, err)

	s := New(ollama, prometheus.NewRegistry())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() { done <- s.Run(ctx, "127.0.0.1:0") }()
	cancel()

	assert.NoError(t, <-done)
}
