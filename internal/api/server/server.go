package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/bz888/promptpad/internal/api/server/client"
	"github.com/bz888/promptpad/internal/logger"
	"github.com/prometheus/client_golang/prometheus"
)

const shutdownTimeout = 5 * time.Second

// Generator continues a prompt. *client.OllamaClient implements it.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts client.GenerateOptions) (string, error)
}

// Pinger is implemented by generators that can report their availability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server answers /chat and /complete for the widgets.
type Server struct {
	generator Generator
	metrics   *Metrics
	logger    *logger.Logger
	handler   http.Handler
}

// New builds the server. A nil registry gets a private one so several
// servers can live in one process.
func New(generator Generator, reg *prometheus.Registry) *Server {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	s := &Server{
		generator: generator,
		metrics:   NewMetrics(reg),
		logger:    logger.NewLogger("Server"),
	}
	s.handler = s.routes(reg)
	return s
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	if p, ok := s.generator.(Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			s.logger.Warnf("Generator not available yet: %v", err)
		}
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Server started on ", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("Shutting down gracefully.")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
