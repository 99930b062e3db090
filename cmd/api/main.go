package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"

	"github.com/luciagrant/mercadito-backend/api/routes"
	cartsvc "github.com/luciagrant/mercadito-backend/internal/cart"
	"github.com/luciagrant/mercadito-backend/internal/catalog"
	collectionsvc "github.com/luciagrant/mercadito-backend/internal/collections"
	"github.com/luciagrant/mercadito-backend/internal/orders"
	"github.com/luciagrant/mercadito-backend/internal/reservations"
	"github.com/luciagrant/mercadito-backend/internal/settlement"
	usersvc "github.com/luciagrant/mercadito-backend/internal/users"
	"github.com/luciagrant/mercadito-backend/internal/whatsapp"
	"github.com/luciagrant/mercadito-backend/pkg/config"
	"github.com/luciagrant/mercadito-backend/pkg/db"
	"github.com/luciagrant/mercadito-backend/pkg/logger"
	"github.com/luciagrant/mercadito-backend/pkg/migrate"
	"github.com/luciagrant/mercadito-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	var closers []func() error
	defer func() {
		var closeErr error
		for i := len(closers) - 1; i >= 0; i-- {
			closeErr = multierr.Append(closeErr, closers[i]())
		}
		if closeErr != nil {
			logg.Error(context.Background(), "error closing resources", closeErr)
		}
	}()

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	closers = append(closers, dbClient.Close)

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	closers = append(closers, redisClient.Close)

	catalogRepo := catalog.NewRepository(dbClient.DB())
	ordersRepo := orders.NewRepository(dbClient.DB())
	reservedRepo := reservations.NewRepository(dbClient.DB())
	cartRepo := cartsvc.NewRepository(dbClient.DB())
	collectionsRepo := collectionsvc.NewRepository(dbClient.DB())
	usersRepo := usersvc.NewRepository(dbClient.DB())

	ledger, err := reservations.NewLedger(reservedRepo, catalogRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create reservation ledger", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(catalogRepo, reservedRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	collectionsService, err := collectionsvc.NewService(collectionsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create collections service", err)
		os.Exit(1)
	}

	cartService, err := cartsvc.NewService(cartRepo, catalogService)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	usersService, err := usersvc.NewService(usersRepo, cfg.JWT, cfg.Password)
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}

	settlementService, err := settlement.NewService(dbClient, ordersRepo, catalogRepo, reservedRepo, ledger, logg, nil)
	if err != nil {
		logg.Error(context.Background(), "failed to create settlement service", err)
		os.Exit(1)
	}

	whatsappBuilder, err := whatsapp.NewBuilder(cfg.Checkout)
	if err != nil {
		logg.Error(context.Background(), "failed to create whatsapp builder", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			catalogService,
			collectionsService,
			cartService,
			usersService,
			settlementService,
			whatsappBuilder,
		),
	}

	stopCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-stopCtx.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "error shutting down api server", err)
		}
	}

	logg.Info(ctx, "api server stopped")
}
