package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/handler"
	"storefront/internal/repository"
	"storefront/internal/router"
	"storefront/internal/service"
	"storefront/internal/sweeper"

	"golang.org/x/sync/errgroup"
)

const (
	requestTimeout  = 60 * time.Second
	shutdownTimeout = 30 * time.Second
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting storefront API server")

	// Cancelled on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// Initialize repositories
	productRepo := repository.NewProductRepository(pool, logger)
	saleRepo := repository.NewSaleRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	paymentRepo := repository.NewPaymentRepository(pool, logger)

	// Initialize services
	projector := service.NewPriceProjector(productRepo, saleRepo, logger)
	productService := service.NewProductService(productRepo, logger)
	saleService := service.NewSaleService(saleRepo, productRepo, projector, logger)
	orderService := service.NewOrderService(orderRepo, productRepo, paymentRepo, cfg.Payment.DefaultMethod, logger)

	var sw *sweeper.Sweeper
	if cfg.Sweeper.Enabled {
		locker, closeLocker, err := newLocker(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer closeLocker()

		sw = sweeper.New(saleService, locker, cfg.Sweeper, logger)
	}

	// Initialize router
	mux := router.New(router.Handlers{
		Health:  handler.NewHealthHandler(pool, logger),
		Product: handler.NewProductHandler(productService, saleService, logger),
		Order:   handler.NewOrderHandler(orderService, logger),
		Sale:    handler.NewSaleHandler(saleService, logger),
	}, cfg.Auth.APIKey, requestTimeout, logger)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: requestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
		return nil
	})

	if sw != nil {
		g.Go(func() error {
			return sw.Run(gctx)
		})
	} else {
		logger.Info().Msg("sale sweeper disabled")
	}

	return g.Wait()
}

// newLocker returns the Redis lease when Redis is enabled, otherwise a
// process-local one.
func newLocker(ctx context.Context, cfg config.RedisConfig) (sweeper.Locker, func(), error) {
	if !cfg.Enabled {
		return sweeper.LocalLocker{}, func() {}, nil
	}

	locker, err := sweeper.NewRedisLocker(ctx, cfg.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize redis locker: %w", err)
	}
	return locker, func() { _ = locker.Close() }, nil
}
