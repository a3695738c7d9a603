// jobsearch-bot
//
// Conversational job search over an HTTP JSON gateway:
//   - start-search: keywords → location → browse feed listings, save any
//   - review-saved: walk saved listings, remove any
//
// Saved listings live in PostgreSQL. With REDIS_URL set, conversation state,
// feed pages and listing events go through Redis; otherwise state is kept
// in memory and swept on a cron schedule.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"jobmate/jobsearch-bot/internal/config"
	"jobmate/jobsearch-bot/internal/db"
	"jobmate/jobsearch-bot/internal/events"
	"jobmate/jobsearch-bot/internal/feed"
	"jobmate/jobsearch-bot/internal/gateway"
	"jobmate/jobsearch-bot/internal/grpcserver"
	"jobmate/jobsearch-bot/internal/logging"
	"jobmate/jobsearch-bot/internal/session"
	"jobmate/jobsearch-bot/internal/shutdown"
	"jobmate/jobsearch-bot/internal/storage"
)

const version = "1.0.0"

func main() {
	// ── Config ──────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[jobsearch-bot] Config error: %v", err)
	}

	logger := logging.New(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()
	logger.Info("config loaded", "config", cfg.String())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── PostgreSQL ───────────────────────────────────────────────────────────
	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("postgres connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	listings := storage.NewListingStore(pool)
	if err := listings.InitSchema(ctx); err != nil {
		logger.Error("schema init failed", "err", err)
		os.Exit(1)
	}
	logger.Info("postgres connected")

	// ── Feed ─────────────────────────────────────────────────────────────────
	client, err := feed.NewClient(feed.Config{
		BaseURL: cfg.Feed.BaseURL,
		Host:    cfg.Feed.Host,
		APIKey:  cfg.Feed.APIKey,
		Timeout: cfg.Feed.Timeout,
	})
	if err != nil {
		logger.Error("feed client init failed", "err", err)
		os.Exit(1)
	}
	var fetcher session.Feed = client

	// ── Redis (optional) ─────────────────────────────────────────────────────
	var (
		store     session.Store
		rdb       *redis.Client
		memStore  *session.MemoryStore
		publisher *events.Publisher
	)
	if cfg.RedisURL != "" {
		rdb, err = db.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error("redis connect failed", "err", err)
			os.Exit(1)
		}
		defer rdb.Close()

		store = session.NewRedisStore(rdb, cfg.Session.TTL)
		if cfg.Feed.CacheTTL > 0 {
			fetcher = feed.NewCachedClient(client, rdb, cfg.Feed.CacheTTL, logger)
		}
		logger.Info("redis connected")
	} else {
		memStore = session.NewMemoryStore(cfg.Session.TTL, logger)
		if err := memStore.StartSweeper(cfg.Session.SweepSpec); err != nil {
			logger.Error("session sweeper failed to start", "err", err)
			os.Exit(1)
		}
		store = memStore
		logger.Warn("REDIS_URL not set: sessions kept in memory, feed cache and events disabled")
	}
	publisher = events.NewPublisher(rdb, logger)

	// ── Sessions ─────────────────────────────────────────────────────────────
	opts := []session.Option{
		session.WithLogger(logger),
		session.WithEvents(publisher),
		session.WithMaxPages(cfg.Feed.MaxPages),
	}
	search := session.NewSearch(fetcher, listings, store, opts...)
	review := session.NewReview(listings, store, opts...)

	// ── HTTP gateway ─────────────────────────────────────────────────────────
	router := gateway.NewRouter(gateway.NewHandler(search, review, logger, version))
	srv := &http.Server{
		Addr:         cfg.GatewayAddr(),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.Feed.Timeout + 10*time.Second,
	}

	// ── gRPC health ──────────────────────────────────────────────────────────
	health := grpcserver.New(logger)
	go func() {
		if err := health.ListenAndServe(cfg.GRPCAddr()); err != nil {
			logger.Error("grpc health server error", "err", err)
		}
	}()

	go func() {
		logger.Info("gateway listening", "addr", srv.Addr, "version", version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "err", err)
			cancel()
		}
	}()
	health.SetServing(true)

	// ── Graceful shutdown ────────────────────────────────────────────────────
	shutdown.Graceful(
		ctx,
		[]os.Signal{os.Interrupt, syscall.SIGTERM},
		10*time.Second,
		logger,
		shutdown.Func(func(context.Context) error {
			health.SetServing(false)
			return nil
		}),
		srv,
		health,
		shutdown.Func(func(context.Context) error {
			if memStore != nil {
				memStore.StopSweeper()
			}
			return nil
		}),
	)
	logger.Info("stopped")
}
