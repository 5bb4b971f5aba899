package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/candyhaus/sweetshop/internal/cache"
	"github.com/candyhaus/sweetshop/internal/config"
	"github.com/candyhaus/sweetshop/internal/db"
	httpx "github.com/candyhaus/sweetshop/internal/http"
	"github.com/candyhaus/sweetshop/internal/observability"
)

func main() {
	// Load the config set up
	cfg := config.Load()

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)

	if cfg.UsingDefaultSecret() {
		log.Warn("JWT_SECRET is unset, using the insecure development fallback")
	}

	// optional tracing
	if cfg.OTELEnabled {
		shutdown, err := observability.InitTracer(context.Background(), "sweetshop-api", cfg.OTELEndpoint)

		if err != nil {
			log.Error("tracer init failed", "err", err)
			os.Exit(1)
		}

		defer func() {
			ctx, cancel := config.WithTimeout(5 * time.Second)
			defer cancel()
			_ = shutdown(ctx)
		}()
	}

	// database
	pool, err := db.NewPool(cfg.DBURL)

	if err != nil {
		log.Error("could not connect to database", "err", err)
		os.Exit(1)
	}

	defer pool.Close()

	bootCtx, cancelBoot := config.WithTimeout(10 * time.Second)
	defer cancelBoot()

	if err := db.EnsureSchema(bootCtx, pool); err != nil {
		log.Error("schema bootstrap failed", "err", err)
		os.Exit(1)
	}

	if err := db.EnsureAdminUser(bootCtx, pool, cfg); err != nil {
		log.Error("admin seed failed", "err", err)
		os.Exit(1)
	}

	if cfg.SeedSampleData {
		if err := db.SeedSampleSweets(bootCtx, pool, log); err != nil {
			// seeding is best effort; the shop runs fine with an empty shelf
			log.Warn("sample seed failed", "err", err)
		}
	}

	// list cache: redis when configured, otherwise process-local
	var store cache.Store

	if cfg.RedisAddr != "" {
		rds := cache.NewRedis(cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.CacheTTL,
		})

		pingCtx, cancelPing := config.WithTimeout(2 * time.Second)
		err := rds.Ping(pingCtx)
		cancelPing()

		if err != nil {
			log.Error("could not connect to redis", "err", err)
			os.Exit(1)
		}

		defer rds.Close()
		store = rds
	} else {
		store = cache.NewMemory(cfg.CacheTTL)
	}

	// set up routers with the log
	router := httpx.NewRouter(log, pool, store, cfg)

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// start server using a concurrent go-routine driven anonymous function.

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)

		defer cancel()

		err := srv.Shutdown(ctx)

		if err != nil {
			log.Error("graceful shutdown failed", "err", err)

			return
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
