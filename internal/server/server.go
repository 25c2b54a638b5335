package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/aizatto/favicons/internal/config"
)

type Server struct {
	cfg     config.ServerConfig
	handler http.Handler
	metrics http.Handler
	logger  *slog.Logger
}

// NewServer builds the listeners. metrics may be nil when
// cfg.MetricsAddr is empty.
func NewServer(cfg config.ServerConfig, handler, metrics http.Handler, logger *slog.Logger) *Server {
	return &Server{
		cfg:     cfg,
		handler: handler,
		metrics: metrics,
		logger:  logger,
	}
}

func (s *Server) httpServers() []*http.Server {
	servers := []*http.Server{{
		Addr:              s.cfg.Addr,
		Handler:           s.handler,
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
		IdleTimeout:       s.cfg.IdleTimeout,
	}}
	if s.cfg.MetricsAddr != "" && s.metrics != nil {
		servers = append(servers, &http.Server{
			Addr:              s.cfg.MetricsAddr,
			Handler:           s.metrics,
			ReadHeaderTimeout: s.cfg.ReadHeaderTimeout,
		})
	}
	return servers
}

// Run serves until ctx is done, a shutdown signal arrives or a listener
// fails, then shuts every listener down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("Server configuration",
		"addr", s.cfg.Addr,
		"metrics_addr", s.cfg.MetricsAddr,
		"read_timeout", s.cfg.ReadTimeout,
		"read_header_timeout", s.cfg.ReadHeaderTimeout,
		"write_timeout", s.cfg.WriteTimeout,
		"idle_timeout", s.cfg.IdleTimeout,
		"shutdown_timeout", s.cfg.ShutdownTimeout,
	)

	ctx, stop := signal.NotifyContext(ctx,
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	defer stop()

	servers := s.httpServers()
	g, gctx := errgroup.WithContext(ctx)

	for _, srv := range servers {
		srv := srv
		g.Go(func() error {
			s.logger.Info("Starting HTTP server", "addr", srv.Addr)
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				s.logger.Error("ListenAndServe error", "addr", srv.Addr, "err", err)
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("Shutting down HTTP servers")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()

		var errs []error
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("HTTP server shutdown error", "addr", srv.Addr, "err", err)
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	s.logger.Info("All servers stopped gracefully")
	return nil
}
