package widget

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bz888/promptpad/internal/api"
	"github.com/stretchr/testify/mock"
)

type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) Complete(ctx context.Context, req api.CompletionRequest) (api.CompletionResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(api.CompletionResponse), args.Error(1)
}

func (m *MockBackend) Chat(ctx context.Context, req api.ChatRequest) (api.ChatResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(api.ChatResponse), args.Error(1)
}

var errRefused = errors.New("dial tcp 127.0.0.1:5000: connect: connection refused")

// manualClock collects AfterFunc callbacks so tests decide when time passes.
type manualClock struct {
	mu      sync.Mutex
	pending []scheduled
}

type scheduled struct {
	delay time.Duration
	fn    func()
}

func (m *manualClock) AfterFunc(d time.Duration, f func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = append(m.pending, scheduled{delay: d, fn: f})
}

func (m *manualClock) Fire() {
	m.mu.Lock()
	pending := m.pending
	m.pending = nil
	m.mu.Unlock()
	for _, s := range pending {
		s.fn()
	}
}

func (m *manualClock) Delays() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]time.Duration, 0, len(m.pending))
	for _, s := range m.pending {
		out = append(out, s.delay)
	}
	return out
}
