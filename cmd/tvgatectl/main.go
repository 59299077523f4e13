// Command tvgatectl performs out-of-band maintenance: granting admin rights
// and loading the channel catalog.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/voyagen/tvgate/internal/cache"
	"github.com/voyagen/tvgate/internal/config"
	"github.com/voyagen/tvgate/internal/service"
	"github.com/voyagen/tvgate/internal/store"
)

const usage = `usage: tvgatectl [-config file.yaml] <command> [flags]

commands:
  migrate                               apply database migrations
  promote -username NAME                grant admin rights
  demote  -username NAME                revoke admin rights
  import  (-file PATH | -url URL) [-replace]
                                        load channels from an M3U playlist
`

func main() {
	configPath := flag.String("config", "", "Optional config file path (YAML); else use env DATABASE_URL")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadFromFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log, flag.Arg(0), flag.Args()[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", flag.Arg(0), err)
		_ = log.Sync()
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger, cmd string, args []string) error {
	switch cmd {
	case "migrate", "promote", "demote", "import":
	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}

	if err := store.RunMigrations(cfg.DatabaseURL, store.MigrationsPath("migrations")); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if cmd == "migrate" {
		log.Info("migrations applied")
		return nil
	}

	pg, err := store.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer pg.Close()

	// With Redis configured, writes go through the cache so stale token and
	// channel entries are dropped, and imports take the cross-process lock.
	var (
		appStore store.Store = pg
		rds      *cache.Redis
	)
	if cfg.RedisURL != "" {
		rds, err = cache.New(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer rds.Close()
		if err := rds.Ping(ctx); err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}
		appStore = store.NewCachedStore(pg, rds, log)
	}

	switch cmd {
	case "promote", "demote":
		return setAdmin(ctx, service.NewAdminService(appStore, cfg.MaxPageSize, log), cmd == "promote", args)
	default:
		return importCatalog(ctx, service.NewCatalogService(appStore, rds, cfg.UserAgent, cfg.Timeout, log), args)
	}
}

func setAdmin(ctx context.Context, admins *service.AdminService, grant bool, args []string) error {
	fs := flag.NewFlagSet("admin", flag.ContinueOnError)
	username := fs.String("username", "", "account to change")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := admins.SetAdmin(ctx, *username, grant); err != nil {
		return err
	}
	fmt.Printf("%s: is_admin=%v\n", *username, grant)
	return nil
}

func importCatalog(ctx context.Context, catalog *service.CatalogService, args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	var req service.ImportRequest
	fs.StringVar(&req.File, "file", "", "local M3U file")
	fs.StringVar(&req.URL, "url", "", "remote M3U URL")
	fs.BoolVar(&req.Replace, "replace", false, "delete existing channels first")
	if err := fs.Parse(args); err != nil {
		return err
	}

	n, err := catalog.Import(ctx, req)
	if errors.Is(err, service.ErrImportRunning) {
		return fmt.Errorf("%w; retry when it finishes", err)
	}
	if err != nil {
		return err
	}
	fmt.Printf("imported %d channels\n", n)
	return nil
}
