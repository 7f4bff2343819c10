package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/xZoluGames/InventarioApp-sub001/internal/app"
	"github.com/xZoluGames/InventarioApp-sub001/internal/config"
	"github.com/xZoluGames/InventarioApp-sub001/internal/infra"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// exitRestart tells the supervisor to start the process again, which
// happens after a backup restore replaced the store.
const exitRestart = 3

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setupLogger(cfg)

	db, err := infra.NewDatabase(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("failed to open database")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	a, err := app.New(cfg, db, rdb, reg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to wire application")
	}

	created, err := a.Auth.EnsureOwner(context.Background(), cfg.OwnerUsername, cfg.OwnerPassword)
	if err != nil {
		log.Warn().Err(err).Msg("owner account not seeded; run cmd/seeduser")
	} else if created {
		log.Info().Str("username", cfg.OwnerUsername).Msg("owner account created")
	}

	// Background jobs, scheduler and the scan pipeline share this context.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	a.Start(ctx)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      a.Engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // backup and export downloads
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Msgf("inventory backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown on SIGINT / SIGTERM or after a restore.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	code := 0
	select {
	case <-quit:
	case <-a.RestartRequested():
		log.Warn().Msg("store restored, restarting")
		code = exitRestart
	}

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	cancel()
	a.Wait()

	if rdb != nil {
		_ = rdb.Close()
	}
	// After a restore the store is already closed.
	if code == 0 {
		if err := infra.CloseDatabase(db); err != nil {
			log.Error().Err(err).Msg("close database")
		}
	}
	log.Info().Msg("server exited")
	os.Exit(code)
}

func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = newLogger(cfg.LogFormat, os.Stderr)
}

// newLogger: LOG_FORMAT=console is human-readable, any other value is JSON.
func newLogger(format string, w io.Writer) zerolog.Logger {
	if format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).With().Timestamp().Logger()
}
