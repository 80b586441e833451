package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Vjossaab/commercify-client/api/controllers"
	"github.com/Vjossaab/commercify-client/api/routes"
	"github.com/Vjossaab/commercify-client/internal/cart"
	"github.com/Vjossaab/commercify-client/internal/cartstore"
	"github.com/Vjossaab/commercify-client/internal/catalog"
	"github.com/Vjossaab/commercify-client/internal/reconcile"
	"github.com/Vjossaab/commercify-client/internal/session"
	"github.com/Vjossaab/commercify-client/pkg/auth"
	"github.com/Vjossaab/commercify-client/pkg/catalogapi"
	"github.com/Vjossaab/commercify-client/pkg/config"
	"github.com/Vjossaab/commercify-client/pkg/db"
	"github.com/Vjossaab/commercify-client/pkg/feed"
	"github.com/Vjossaab/commercify-client/pkg/logger"
	"github.com/Vjossaab/commercify-client/pkg/metrics"
	"github.com/Vjossaab/commercify-client/pkg/redis"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "storefront",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	reconcileMetrics := metrics.NewReconcileMetrics(registry)

	var (
		store       cartstore.Store
		pingers     []controllers.Pinger
		redisClient *redis.Client
		tokenSource catalogapi.TokenFunc
	)

	if cfg.FeatureFlags.UseSQLite {
		dbClient, err := db.New(ctx, cfg.DB, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap database", err)
			os.Exit(1)
		}
		defer func() {
			if err := dbClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing database", err)
			}
		}()

		store, err = cartstore.NewSQLiteStore(dbClient.DB(), cfg.Session.CartKey, logg)
		if err != nil {
			logg.Error(ctx, "failed to build cart store", err)
			os.Exit(1)
		}
		pingers = append(pingers, dbClient)
	} else {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()

		store = cartstore.NewRedisStore(redisClient, cfg.Session.CartKey, logg)
		pingers = append(pingers, redisClient)

		vault := auth.NewVault(redisClient, cfg.Session.TokenKey, cfg.Session.UserKey, logg)
		tokenSource = vault.TokenSource(context.Background())
	}

	apiOpts := []catalogapi.Option{}
	if tokenSource != nil {
		apiOpts = append(apiOpts, catalogapi.WithTokenSource(tokenSource))
	}
	apiClient, err := catalogapi.New(cfg.Catalog, cfg.Orders, apiOpts...)
	if err != nil {
		logg.Error(ctx, "failed to build backend client", err)
		os.Exit(1)
	}

	source, err := newFeedSource(ctx, cfg, redisClient, logg, reconcileMetrics)
	if err != nil {
		logg.Error(ctx, "failed to connect inventory feed", err)
		os.Exit(1)
	}

	ledger := cart.NewLedger()
	cache := catalog.NewCache()
	rec := reconcile.New(cache, ledger, logg, reconcileMetrics)

	sess := session.New(ledger, cache, store, apiClient, rec, source, logg)
	if err := sess.Mount(ctx); err != nil {
		logg.Error(ctx, "failed to mount session", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	startCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(startCtx, "starting storefront server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, sess, apiClient, registry, pingers...),
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logg.Info(context.Background(), "shutdown signal received")
	case err := <-errCh:
		logg.Error(context.Background(), "storefront server stopped unexpectedly", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error(shutdownCtx, "error shutting down server", err)
	}
	if err := sess.Unmount(); err != nil {
		logg.Error(context.Background(), "error unmounting session", err)
	}
}

func newFeedSource(ctx context.Context, cfg *config.Config, redisClient *redis.Client, logg *logger.Logger, mets *metrics.ReconcileMetrics) (feed.Source, error) {
	if cfg.Feed.UsesRedis() {
		if redisClient == nil {
			client, err := redis.New(ctx, cfg.Redis, logg)
			if err != nil {
				return nil, err
			}
			redisClient = client
		}
		return feed.NewRedisSource(ctx, redisClient, logg, mets)
	}
	return feed.NewWebsocketSource(ctx, cfg.Feed, logg, mets)
}
