package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/crucial707/notes-api/internal/config"
	"github.com/crucial707/notes-api/internal/db"
	"github.com/crucial707/notes-api/internal/logging"
	"github.com/crucial707/notes-api/internal/middleware"
	"github.com/crucial707/notes-api/internal/scheduler"
)

const (
	shutdownTimeout = 10 * time.Second
	// limiterMaxIdle is how long an IP bucket may sit unused before the prune job drops it.
	limiterMaxIdle = 10 * time.Minute
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", logging.Err(err))
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg := config.Load()
	logging.Setup(os.Stdout, cfg.LogFormat, cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Connect to database FIRST
	database, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer database.Close()

	if err := db.Migrate(database, cfg.DBDriver); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	slog.Info("database ready", "driver", cfg.DBDriver)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	limiter := middleware.AuthRateLimiter(cfg.AuthRatePerMinute, cfg.AuthRateBurst)
	jobs, err := scheduler.Start(ctx, scheduler.Job{
		Name: "prune-auth-limiter",
		Spec: cfg.LimiterPruneSchedule,
		Run: func(context.Context) {
			if n := limiter.Prune(limiterMaxIdle); n > 0 {
				slog.Debug("pruned idle rate limiter buckets", "removed", n, "remaining", limiter.Len())
			}
		},
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(database, cfg, limiter),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start server LAST
	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", srv.Addr, "tls", cfg.TLSEnabled(), "env", cfg.Env)
		var err error
		if cfg.TLSEnabled() {
			err = srv.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		<-jobs.Stop().Done()
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down", "timeout", shutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	select {
	case <-jobs.Stop().Done():
	case <-shutdownCtx.Done():
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
