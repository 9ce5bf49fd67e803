// Package server runs the HTTP viewer for one log file.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/burpheart/codex-viewer/internal/api"
	"github.com/burpheart/codex-viewer/internal/ingest"
	"github.com/burpheart/codex-viewer/internal/logging"
	"github.com/burpheart/codex-viewer/internal/render"
	"github.com/burpheart/codex-viewer/pkg/types"
)

const shutdownTimeout = 5 * time.Second

// Server serves the timeline of one log and, when watching, pushes reload
// notifications as the log changes.
type Server struct {
	config  types.Config
	logger  logging.Logger
	store   *ingest.Store
	hub     *api.Hub
	handler *api.Handler

	mu       sync.Mutex
	listener net.Listener
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l logging.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// NewServer loads the configured log and prepares the handlers. It fails
// when the log is missing or has no entries.
func NewServer(config types.Config, opts ...Option) (*Server, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	s := &Server{
		config: config,
		logger: logging.NopLogger{},
	}
	for _, opt := range opts {
		opt(s)
	}

	s.store = ingest.NewStore(config.LogPath,
		ingest.WithPollInterval(config.PollInterval),
		ingest.WithLogger(s.logger),
		ingest.WithOnReload(s.notifyReload),
	)
	if err := s.store.Load(); err != nil {
		return nil, fmt.Errorf("load log: %w", err)
	}
	st := s.store.Stats()
	s.logger.Info("loaded %s: %d lines (%d malformed)", st.Path, st.Lines, st.Malformed)

	if config.Watch {
		s.hub = api.NewHub()
	}

	s.handler = api.NewHandler(s.hub, s.store,
		api.WithRenderer(NewRenderer(config)),
		api.WithTitle(config.Title),
		api.WithTrackedTool(config.TrackedTool),
		api.WithLogger(s.logger),
	)
	return s, nil
}

// NewRenderer builds the record renderer described by config.
func NewRenderer(config types.Config) *render.Renderer {
	opts := []render.Option{render.WithPreviewLen(config.PreviewLength)}
	if len(config.Collapsible) > 0 {
		opts = append(opts, render.WithTable(render.NewTable(config.Collapsible)))
	}
	return render.New(opts...)
}

// notifyReload is a no-op during the initial load, before the handler exists.
func (s *Server) notifyReload(lines []ingest.Line) {
	if s.handler != nil {
		s.handler.NotifyReload(lines)
	}
}

// Handler returns the HTTP handler with all middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.handler.RegisterRoutes(mux)
	return withRequestID(withLogging(s.logger, withCompression(mux)))
}

// Listen binds the configured address.
func (s *Server) Listen() error {
	addr := s.config.Addr()
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	return nil
}

// Addr returns the bound address, or the configured one before Listen.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.config.Addr()
}

// Serve runs the HTTP server, the websocket hub and the log watcher until
// ctx is done, then shuts down gracefully. Listen is called first if needed.
func (s *Server) Serve(ctx context.Context) error {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()
	if ln == nil {
		if err := s.Listen(); err != nil {
			return err
		}
		ln = s.listener
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	if s.hub != nil {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.hub.Run(ctx)
		}()
		go func() {
			defer wg.Done()
			s.store.Run(ctx)
		}()
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	errChan := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server: %w", err)
		}
		close(errChan)
	}()

	s.logger.Info("serving %s on http://%s", s.config.LogPath, ln.Addr())
	if s.hub != nil {
		s.logger.Info("watching for changes every %s", s.config.PollInterval)
	}

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errChan:
	}

	s.logger.Info("shutting down...")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("shutdown: %v", err)
	}
	cancel()
	wg.Wait()
	return serveErr
}
