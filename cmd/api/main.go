package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ewilliams-labs/moodshift/internal/adapters/memory"
	"github.com/ewilliams-labs/moodshift/internal/adapters/redisstore"
	"github.com/ewilliams-labs/moodshift/internal/adapters/rest"
	"github.com/ewilliams-labs/moodshift/internal/adapters/spotify"
	"github.com/ewilliams-labs/moodshift/internal/config"
	"github.com/ewilliams-labs/moodshift/internal/core/ports"
	"github.com/ewilliams-labs/moodshift/internal/core/services"
	"github.com/ewilliams-labs/moodshift/internal/logging"
	"github.com/ewilliams-labs/moodshift/internal/metrics"
)

func main() {
	if err := run(); err != nil {
		log.Fatal("moodshift exited", "err", err)
	}
}

func run() error {
	// 1. Configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	log.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Driven adapters
	mm := metrics.NewManager(metrics.WithRuntimeCollectors())

	infos, codes, closeStores, err := buildStores(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer closeStores()

	httpClient := &http.Client{Timeout: cfg.Spotify.CallTimeout}
	factory := spotify.NewFactory(
		spotify.WithHTTPClient(httpClient),
		spotify.WithBaseURL(cfg.Spotify.APIBaseURL),
		spotify.WithRecorder(mm),
	)
	auth := spotify.NewAuthenticator(spotify.AuthConfig{
		ClientID:     cfg.Spotify.ClientID,
		ClientSecret: cfg.Spotify.ClientSecret,
		RedirectURI:  cfg.Spotify.RedirectURI,
		AuthURL:      cfg.Spotify.AuthURL,
		TokenURL:     cfg.Spotify.TokenURL,
	}, httpClient, factory)

	// 3. Core
	planner := services.NewPlanner(factory, logger,
		services.WithConcurrency(cfg.Planner.Concurrency),
		services.WithCallTimeout(cfg.Spotify.CallTimeout),
	)
	svc := services.NewOrchestrator(factory, auth, planner, infos, codes, logger)

	// 4. Driving adapter
	handler := rest.NewHandler(svc, logger,
		rest.WithAllowedOrigins(cfg.Server.AllowedOrigins),
		rest.WithMetrics(mm, mm.Handler()),
		rest.WithSecureCookies(strings.HasPrefix(cfg.Spotify.RedirectURI, "https://")),
	)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
	}

	// 5. Serve until signalled
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("moodshift API listening", "addr", cfg.Server.Addr, "store", cfg.Store.Driver)
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

func buildStores(ctx context.Context, cfg config.StoreConfig) (ports.PlaylistInfoStore, ports.CodeGuard, func(), error) {
	switch cfg.Driver {
	case config.DriverRedis:
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		rdb, err := redisstore.Connect(pingCtx, cfg.RedisURL)
		if err != nil {
			return nil, nil, nil, err
		}
		closeFn := func() {
			if err := rdb.Close(); err != nil {
				log.Warn("redis close failed", "err", err)
			}
		}
		return redisstore.NewPlaylistStore(rdb, cfg.PlaylistTTL), redisstore.NewCodeGuard(rdb, cfg.CodeCooldown), closeFn, nil
	case config.DriverMemory:
		infos := memory.NewPlaylistStore(
			memory.WithMaxSize(cfg.PlaylistCacheSize),
			memory.WithTTL(cfg.PlaylistTTL),
		)
		return infos, memory.NewCodeGuard(cfg.CodeCooldown), func() {}, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
