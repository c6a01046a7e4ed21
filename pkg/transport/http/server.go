package http

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rhuss/trichat/pkg/storage"
	"github.com/rhuss/trichat/pkg/transport"
)

// Server wraps an http.Server with the adapter and manages startup and
// graceful shutdown.
type Server struct {
	httpServer *http.Server
	adapter    *Adapter
	config     ServerConfig
	logger     *slog.Logger
}

// ServerConfig holds configuration for the server.
type ServerConfig struct {
	Addr              string
	ReadHeaderTimeout time.Duration
	// WriteTimeout must exceed the backend call timeout, since a chat
	// request waits for the slowest slot.
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	Adapter         Config
}

// DefaultServerConfig returns a ServerConfig with sensible defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:              ":3000",
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       120 * time.Second,
		ShutdownTimeout:   30 * time.Second,
		Adapter:           DefaultConfig(),
	}
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithAddr sets the listen address.
func WithAddr(addr string) ServerOption {
	return func(s *Server) { s.config.Addr = addr }
}

// WithAdapterConfig replaces the adapter configuration.
func WithAdapterConfig(cfg Config) ServerOption {
	return func(s *Server) { s.config.Adapter = cfg }
}

// WithTimeouts sets the HTTP server timeouts. Zero values keep the defaults.
func WithTimeouts(readHeader, write, idle time.Duration) ServerOption {
	return func(s *Server) {
		if readHeader > 0 {
			s.config.ReadHeaderTimeout = readHeader
		}
		if write > 0 {
			s.config.WriteTimeout = write
		}
		if idle > 0 {
			s.config.IdleTimeout = idle
		}
	}
}

// WithShutdownTimeout sets the graceful shutdown deadline.
func WithShutdownTimeout(d time.Duration) ServerOption {
	return func(s *Server) { s.config.ShutdownTimeout = d }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) ServerOption {
	return func(s *Server) { s.logger = l }
}

// NewServer creates a server for the chat handler and slot store. Recovery,
// request ID and logging middleware are applied to the chat handler.
func NewServer(chat transport.ChatHandler, store storage.SlotStore, opts ...ServerOption) *Server {
	s := &Server{
		config: DefaultServerConfig(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.adapter = NewAdapter(chat, store, s.config.Adapter,
		transport.Recovery(),
		transport.RequestID(),
		transport.Logging(s.logger),
	)
	s.adapter.logger = s.logger

	s.httpServer = &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.adapter.Handler(),
		ReadHeaderTimeout: s.config.ReadHeaderTimeout,
		WriteTimeout:      s.config.WriteTimeout,
		IdleTimeout:       s.config.IdleTimeout,
	}
	return s
}

// Handler returns the root handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe starts the server and blocks until SIGINT or SIGTERM,
// then shuts down gracefully within the configured timeout.
func (s *Server) ListenAndServe() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", slog.String("addr", ln.Addr().String()))
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	}
	return s.shutdown()
}

func (s *Server) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down gracefully", slog.Duration("timeout", s.config.ShutdownTimeout))
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("shutdown error", slog.String("error", err.Error()))
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

// Shutdown gracefully shuts down the server with the given context.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
