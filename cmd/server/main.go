package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/DITF16/stockgame/internal/api"
	"github.com/DITF16/stockgame/internal/catalog"
	"github.com/DITF16/stockgame/internal/command"
	"github.com/DITF16/stockgame/internal/config"
	"github.com/DITF16/stockgame/internal/ledger"
	"github.com/DITF16/stockgame/internal/market"
	"github.com/DITF16/stockgame/internal/metrics"
	"github.com/DITF16/stockgame/internal/push"
	"github.com/DITF16/stockgame/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- Initialize store ---
	var st store.Store
	var cleanup []func()

	switch {
	case cfg.DatabaseURL != "":
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("database connection failed", "err", err)
			os.Exit(1)
		}
		cleanup = append(cleanup, pool.Close)
		pg := store.NewPostgresStore(pool)
		if err := pg.Migrate(ctx); err != nil {
			slog.Error("database migration failed", "err", err)
			os.Exit(1)
		}
		st = pg
		slog.Info("connected to PostgreSQL")

	case cfg.RedisURL != "":
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			slog.Error("invalid REDIS_URL", "err", err)
			os.Exit(1)
		}
		rdb := redis.NewClient(opt)
		cleanup = append(cleanup, func() { rdb.Close() })
		st = store.NewRedisStore(rdb)
		slog.Info("connected to Redis")

	default:
		fs, err := store.NewFileStore(cfg.DataDir)
		if err != nil {
			slog.Error("data directory unavailable", "err", err)
			os.Exit(1)
		}
		st = fs
		slog.Info("using file store", "dir", cfg.DataDir)
	}

	defer func() {
		for _, fn := range cleanup {
			fn()
		}
	}()

	// --- Game engine ---
	cat, err := catalog.Load(ctx, st)
	if err != nil {
		slog.Error("catalog load failed", "err", err)
		os.Exit(1)
	}
	slog.Info("catalog loaded", "stocks", len(cat.Stocks()))

	mkt, err := market.NewState(ctx, cat, st)
	if err != nil {
		slog.Error("market state restore failed", "err", err)
		os.Exit(1)
	}

	groups, err := push.LoadGroups(ctx, st)
	if err != nil {
		slog.Error("push group load failed", "err", err)
		os.Exit(1)
	}

	// --- WebSocket hub + news publisher ---
	hub := push.NewHub()
	go hub.Run()
	publisher := push.NewPublisher(groups, push.LogDeliverer{}, hub, cfg.PushDelay)

	led := ledger.New(st, mkt, cfg.StartingCash)
	dispatcher := command.NewDispatcher(cat, mkt, led, groups)

	// --- Market clock ---
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	clock := market.NewClock(mkt, market.ClockConfig{
		TickInterval:      cfg.TickInterval,
		Cooldown:          cfg.TickCooldown,
		GlobalEventChance: cfg.GlobalEventChance,
		LocalEventChance:  cfg.LocalEventChance,
		BaseVolatility:    cfg.BaseVolatility,
		EnableNewsPush:    cfg.EnableNewsPush,
	}, rng, publisher)

	clockDone := make(chan struct{})
	go func() {
		defer close(clockDone)
		clock.Run(ctx)
	}()

	// --- HTTP router ---
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(metrics.Middleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","service":"stockgame"}`))
	})

	// Prometheus metrics endpoint.
	r.Handle("/metrics", metrics.Handler())

	api.NewServer(dispatcher, mkt, led, hub).Register(r)

	// --- Server ---
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("stockgame listening", "port", cfg.Port, "tick_interval", cfg.TickInterval.String())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down stockgame...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "err", err)
	}

	// Wait for the clock's final state save.
	select {
	case <-clockDone:
	case <-time.After(10 * time.Second):
		slog.Warn("market clock did not stop in time")
	}
	fmt.Println("stockgame stopped")
}
