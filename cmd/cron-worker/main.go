package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	cartsvc "github.com/luciagrant/mercadito-backend/internal/cart"
	"github.com/luciagrant/mercadito-backend/internal/catalog"
	"github.com/luciagrant/mercadito-backend/internal/cron"
	"github.com/luciagrant/mercadito-backend/internal/orders"
	"github.com/luciagrant/mercadito-backend/internal/reservations"
	"github.com/luciagrant/mercadito-backend/internal/settlement"
	"github.com/luciagrant/mercadito-backend/pkg/config"
	"github.com/luciagrant/mercadito-backend/pkg/db"
	"github.com/luciagrant/mercadito-backend/pkg/logger"
	"github.com/luciagrant/mercadito-backend/pkg/metrics"
	"github.com/luciagrant/mercadito-backend/pkg/migrate"
	"github.com/luciagrant/mercadito-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	cronMetrics := metrics.NewCronJobMetrics(prometheus.DefaultRegisterer)
	settlementMetrics := metrics.NewSettlementMetrics(prometheus.DefaultRegisterer)

	catalogRepo := catalog.NewRepository(dbClient.DB())
	ordersRepo := orders.NewRepository(dbClient.DB())
	reservedRepo := reservations.NewRepository(dbClient.DB())
	cartRepo := cartsvc.NewRepository(dbClient.DB())

	ledger, err := reservations.NewLedger(reservedRepo, catalogRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create reservation ledger", err)
		os.Exit(1)
	}

	settlementService, err := settlement.NewService(dbClient, ordersRepo, catalogRepo, reservedRepo, ledger, logg, settlementMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create settlement service", err)
		os.Exit(1)
	}

	staleJob, err := cron.NewStaleReservationJob(cron.StaleReservationJobParams{
		Logger:  logg,
		Counter: settlementService,
		Metrics: settlementMetrics,
		After:   cfg.Cron.StaleReservationAfter,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create stale reservation job", err)
		os.Exit(1)
	}

	cartJob, err := cron.NewCartCleanupJob(cron.CartCleanupJobParams{
		Logger:     logg,
		DB:         dbClient,
		Repository: cartRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cart cleanup job", err)
		os.Exit(1)
	}

	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey(lockName(cfg.App.Env)), 0)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(staleJob, cartJob),
		Lock:     lock,
		Metrics:  cronMetrics,
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"interval": cfg.Cron.Interval.String(),
	})

	metricsServer := &http.Server{
		Addr:    ":" + cfg.Cron.MetricsPort,
		Handler: promhttp.Handler(),
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "metrics server stopped unexpectedly", err)
		}
	}()
	defer func() {
		if err := metricsServer.Shutdown(context.Background()); err != nil {
			logg.Error(ctx, "error shutting down metrics server", err)
		}
	}()

	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func lockName(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("cron-worker:%s", env)
}
