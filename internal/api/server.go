package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ServerConfig controls the listener and background housekeeping
type ServerConfig struct {
	Addr           string
	AllowedOrigins []string
	SessionIdle    time.Duration
	PruneInterval  time.Duration
	ShutdownGrace  time.Duration
}

// Server runs the HTTP listener and the session pruner
type Server struct {
	handler *Handler
	config  ServerConfig
	http    *http.Server
	logger  *zap.Logger
}

// NewServer creates a server for h
func NewServer(h *Handler, cfg ServerConfig) *Server {
	if cfg.SessionIdle <= 0 {
		cfg.SessionIdle = 24 * time.Hour
	}
	if cfg.PruneInterval <= 0 {
		cfg.PruneInterval = 10 * time.Minute
	}
	if cfg.ShutdownGrace <= 0 {
		cfg.ShutdownGrace = 5 * time.Second
	}

	return &Server{
		handler: h,
		config:  cfg,
		logger:  h.logger,
		http: &http.Server{
			Addr:              cfg.Addr,
			Handler:           NewRouter(h, cfg.AllowedOrigins),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.logger.Info("starting server", zap.String("addr", ln.Addr().String()))

	done := make(chan struct{})
	housekeepingDone := make(chan struct{})
	go func() {
		defer close(housekeepingDone)
		s.housekeeping(done)
	}()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.http.Serve(ln)
	}()

	var err error
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownGrace)
		defer cancel()
		err = s.http.Shutdown(shutdownCtx)
		<-serveErr
	case err = <-serveErr:
	}

	close(done)
	<-housekeepingDone

	if errors.Is(err, http.ErrServerClosed) {
		err = nil
	}
	s.logger.Info("server stopped", zap.Error(err))
	return err
}

// housekeeping prunes idle sessions and forgets rate limiter buckets
func (s *Server) housekeeping(done <-chan struct{}) {
	ticker := time.NewTicker(s.config.PruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			removed := s.handler.Sessions.Prune(s.config.SessionIdle)
			s.handler.limiter.reset()
			if removed > 0 {
				s.logger.Debug("pruned sessions", zap.Int("removed", removed))
			}
		}
	}
}
