package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/nao1215/prodscout/internal/config"
	"github.com/nao1215/prodscout/internal/log"
	"github.com/nao1215/prodscout/internal/metrics"
	"github.com/nao1215/prodscout/internal/model"
	"github.com/nao1215/prodscout/internal/pipeline"
)

// PipelineFactory creates the pipeline of one request. The observer must
// be installed on the pipeline so stage starts reach the client.
type PipelineFactory func(observer pipeline.Observer) *pipeline.Pipeline

// HistoryRecorder stores finished analyses.
type HistoryRecorder interface {
	SaveAnalysis(ctx context.Context, analysis *model.Analysis) error
}

// Server serves the analysis API.
type Server struct {
	newPipeline     PipelineFactory
	history         HistoryRecorder
	logger          *slog.Logger
	now             func() time.Time
	shutdownTimeout time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithHistory records every finished analysis in h.
func WithHistory(h HistoryRecorder) Option {
	return func(s *Server) {
		s.history = h
	}
}

// WithNow replaces time.Now for event timestamps.
func WithNow(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// WithShutdownTimeout bounds how long in-flight requests may take to
// finish after shutdown starts.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.shutdownTimeout = d
		}
	}
}

// New creates a Server.
func New(newPipeline PipelineFactory, opts ...Option) *Server {
	s := &Server{
		newPipeline:     newPipeline,
		logger:          log.Discard(),
		now:             time.Now,
		shutdownTimeout: config.DefaultShutdownTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP handler with all routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/analyze", s.handleStream)
	mux.HandleFunc("POST /api/analyze", s.handleAnalyze)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", metrics.Handler())
	return s.withRequestID(mux)
}

// ListenAndServe listens on addr and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "address", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server", "timeout", s.shutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

// run executes one analysis and records it.
func (s *Server) run(ctx context.Context, analysis *model.Analysis, observer pipeline.Observer) error {
	err := s.newPipeline(observer).Execute(ctx, analysis)
	s.record(ctx, analysis)
	return err
}

func (s *Server) record(ctx context.Context, analysis *model.Analysis) {
	if s.history == nil {
		return
	}
	if err := s.history.SaveAnalysis(context.WithoutCancel(ctx), analysis); err != nil {
		s.logger.Error("failed to record analysis", "id", analysis.ID, "error", err)
	}
}
