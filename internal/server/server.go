package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/mosc/eventadmin/internal/bootstrap"
	"github.com/mosc/eventadmin/internal/config"
)

const (
	shutdownTimeout = 15 * time.Second
	// Uploads and proxied streams can take far longer than a JSON call.
	writeTimeout = 5 * time.Minute
)

// Server holds the state for the HTTP server.
type Server struct {
	config *config.Config
	router *gin.Engine
	deps   *bootstrap.Dependencies
	logger zerolog.Logger
	http   *http.Server

	stopWorkers context.CancelFunc
	workersDone <-chan error
}

// NewServer loads configuration, connects the store and wires every
// dependency.
func NewServer(ctx context.Context) (*Server, error) {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to load config or setup logger: %w", err)
	}

	dbPool, err := bootstrap.SetupDatabase(ctx, cfg, lgr)
	if err != nil {
		return nil, fmt.Errorf("failed to setup database: %w", err)
	}

	deps, err := bootstrap.BuildDependencies(ctx, cfg, dbPool, lgr)
	if err != nil {
		if dbPool != nil {
			dbPool.Close()
		}
		return nil, fmt.Errorf("failed to setup dependencies: %w", err)
	}

	return &Server{
		config: cfg,
		router: bootstrap.SetupRouter(cfg, deps, lgr),
		deps:   deps,
		logger: lgr,
	}, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run starts the supervised workers and the HTTP server, then blocks until
// a signal arrives or the listener fails.
func (s *Server) Run() error {
	workerCtx, cancel := context.WithCancel(context.Background())
	s.stopWorkers = cancel
	s.workersDone = bootstrap.StartWorkers(workerCtx, s.config, s.deps)

	s.http = &http.Server{
		Addr:              ":" + s.config.Server.Port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       120 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.http.Addr).Msg("HTTP server listening")
		serverErrors <- s.http.ListenAndServe()
	}()

	osSignals := make(chan os.Signal, 1)
	signal.Notify(osSignals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(osSignals)

	var runErr error
	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			runErr = fmt.Errorf("error starting server: %w", err)
		}
	case err := <-s.workersDone:
		// The tree only returns early when its context is gone or it failed
		// to start.
		runErr = fmt.Errorf("supervisor stopped unexpectedly: %w", err)
	case sig := <-osSignals:
		s.logger.Info().Str("signal", sig.String()).Msg("Received OS signal, initiating shutdown...")
	}

	if err := s.Shutdown(context.Background()); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// Shutdown drains HTTP connections, stops the campaign monitors and poll
// scheduler, and closes the database pool.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	var errs []error

	if s.http != nil {
		s.logger.Info().Msg("Shutting down HTTP server...")
		if err := s.http.Shutdown(ctx); err != nil {
			s.logger.Error().Err(err).Msg("HTTP server shutdown error")
			errs = append(errs, err)
		}
	}

	if s.stopWorkers != nil {
		s.logger.Info().Msg("Stopping background workers...")
		s.stopWorkers()
		select {
		case <-s.workersDone:
		case <-ctx.Done():
			if report, err := s.deps.Tree.UnstoppedServiceReport(); err == nil && len(report) > 0 {
				for _, u := range report {
					s.logger.Warn().Str("service", u.Name).Msg("Worker did not stop in time")
				}
			}
			errs = append(errs, errors.New("background workers did not stop before the deadline"))
		}
	}

	if s.deps.DBPool != nil {
		s.logger.Info().Msg("Closing database connection pool...")
		s.deps.DBPool.Close()
	}

	s.logger.Info().Msg("Server shutdown process complete.")
	return errors.Join(errs...)
}
