package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/voyagen/tvgate/internal/cache"
	"github.com/voyagen/tvgate/internal/config"
	"github.com/voyagen/tvgate/internal/server"
	"github.com/voyagen/tvgate/internal/service"
	"github.com/voyagen/tvgate/internal/store"
)

func main() {
	configPath := flag.String("config", "", "Optional config file path (YAML); else use env DATABASE_URL")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log, err := cfg.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Error("exiting", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := store.RunMigrations(cfg.DatabaseURL, store.MigrationsPath("migrations")); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	pg, err := store.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer pg.Close()

	var appStore store.Store = pg
	if cfg.RedisURL != "" {
		rds, err := cache.New(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer rds.Close()

		if err := rds.Ping(ctx); err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}
		appStore = store.NewCachedStore(pg, rds, log)
		log.Info("redis connected, caching enabled")
	} else {
		log.Info("redis disabled, REDIS_URL not set")
	}

	srv := server.New(
		service.NewAuthService(appStore, cfg.AllowedEmailDomains, log),
		service.NewPlaylistService(appStore, appStore, log),
		service.NewAdminService(appStore, cfg.MaxPageSize, log),
		cfg,
		log,
	)
	return srv.ListenAndServe(ctx)
}
