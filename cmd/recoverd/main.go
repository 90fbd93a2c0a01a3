// Command recoverd serves the credential-recovery API over HTTP.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	goRecover "github.com/MrEthical07/goRecover"
	"github.com/MrEthical07/goRecover/httpapi"
	promexport "github.com/MrEthical07/goRecover/metrics/export/prometheus"
	"github.com/MrEthical07/goRecover/store"
	"github.com/MrEthical07/goRecover/store/memory"
	"github.com/MrEthical07/goRecover/store/postgres"
)

type CLI struct {
	Addr      string `help:"Address to listen on." default:":8080" env:"RECOVERD_ADDR"`
	LogLevel  string `help:"Log level." enum:"debug,info,warn,error" default:"info" env:"RECOVERD_LOG_LEVEL"`
	LogFormat string `help:"Log format." enum:"text,json" default:"text" env:"RECOVERD_LOG_FORMAT"`

	CacheCapacity    int           `help:"Maximum resident recovery tokens." default:"10000" env:"RECOVERD_CACHE_CAPACITY"`
	CacheIdleTimeout time.Duration `help:"Idle time after which a token expires." default:"12h" env:"RECOVERD_CACHE_IDLE_TIMEOUT"`
	CachePrefix      string        `help:"Token key prefix." default:"token" env:"RECOVERD_CACHE_PREFIX"`

	RedisURL    string   `help:"Redis URL for the answer attempt limiter. Empty disables throttling." env:"RECOVERD_REDIS_URL"`
	PostgresDSN string   `help:"Postgres DSN. Empty uses the in-memory store." env:"RECOVERD_POSTGRES_DSN"`
	Seed        []string `help:"Seed the store with identity:question:answer:credential." sep:"none" env:"RECOVERD_SEED"`
	Audit       bool     `help:"Log audit events through the process logger." env:"RECOVERD_AUDIT"`
}

func main() {
	var cli CLI
	kong.Parse(&cli,
		kong.Name("recoverd"),
		kong.Description("Credential recovery service."),
		kong.UsageOnError(),
	)

	if err := run(cli); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(cli CLI) error {
	logger, err := newLogger(cli.LogLevel, cli.LogFormat)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := goRecover.DefaultConfig()
	cfg.Cache.Capacity = cli.CacheCapacity
	cfg.Cache.IdleTimeout = cli.CacheIdleTimeout
	cfg.Cache.KeyPrefix = cli.CachePrefix
	if cfg.Cache.InitialCapacityHint > cfg.Cache.Capacity {
		cfg.Cache.InitialCapacityHint = cfg.Cache.Capacity
	}
	cfg.Audit.Enabled = cli.Audit

	credentials, closeStore, err := openStore(ctx, cli, cfg.Password, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	builder := goRecover.New().
		WithConfig(cfg).
		WithCredentialStore(credentials).
		WithLogger(logger)
	if cli.Audit {
		builder.WithAuditSink(goRecover.NewSlogSink(logger.With("component", "audit")))
	}

	if cli.RedisURL != "" {
		opts, err := redis.ParseURL(cli.RedisURL)
		if err != nil {
			return fmt.Errorf("parse redis url: %w", err)
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("ping redis: %w", err)
		}
		builder.WithRedis(rdb)
		logger.Info("answer limiter enabled", "redis", opts.Addr)
	} else {
		logger.Warn("no redis configured, answer attempts are not throttled")
	}

	engine, err := builder.Build()
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}
	defer engine.Close()

	srv := &http.Server{
		Addr:              cli.Addr,
		Handler:           newRouter(engine, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	logger.Info("server started", "address", cli.Addr)

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func newRouter(engine *goRecover.Engine, logger *slog.Logger) http.Handler {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		promexport.NewCollector(engine),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := chi.NewRouter()
	r.Use(middleware.Heartbeat("/healthz"))
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	httpapi.New(engine, logger).Register(r)
	return r
}

func newLogger(level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	switch format {
	case "text":
		return slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: lvl, TimeFormat: time.Kitchen})), nil
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})), nil
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}
}

type seeder interface {
	goRecover.CredentialStore
	Add(ctx context.Context, n store.NewAccount) (store.Account, error)
}

func openStore(ctx context.Context, cli CLI, pw goRecover.PasswordConfig, logger *slog.Logger) (goRecover.CredentialStore, func(), error) {
	hasher, err := store.NewHasher(pw)
	if err != nil {
		return nil, nil, fmt.Errorf("password hasher: %w", err)
	}

	var (
		s       seeder
		closeFn = func() {}
	)
	if cli.PostgresDSN != "" {
		var db *sql.DB
		db, err = postgres.Open(ctx, cli.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		pg := postgres.New(db, hasher)
		if err := pg.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		s = pg
		closeFn = func() { _ = db.Close() }
		logger.Info("using postgres credential store")
	} else {
		s = memory.New(hasher)
		logger.Warn("using in-memory credential store, data is lost on restart")
	}

	if err := seed(ctx, s, cli.Seed, logger); err != nil {
		closeFn()
		return nil, nil, err
	}
	return s, closeFn, nil
}

func seed(ctx context.Context, s seeder, entries []string, logger *slog.Logger) error {
	for _, entry := range entries {
		n, err := store.ParseSeed(entry)
		if err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		_, err = s.Add(ctx, n)
		if errors.Is(err, store.ErrDuplicate) {
			logger.Info("seed identity already present", "identity", n.Username)
			continue
		}
		if err != nil {
			return fmt.Errorf("seed %s: %w", n.Username, err)
		}
		logger.Info("seeded identity", "identity", n.Username)
	}
	return nil
}
