package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/auth"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/handler"
	"storefront/internal/metrics"
	"storefront/internal/pricing"
	"storefront/internal/receipt"
	"storefront/internal/repository"
	"storefront/internal/router"
	"storefront/internal/service"

	"github.com/rs/zerolog"
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

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	receipts, err := newReceiptStore(ctx, cfg, logger)
	if err != nil {
		return err
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	m := metrics.New()

	// Initialize repositories
	productRepo := repository.NewProductRepository(pool, logger)
	categoryRepo := repository.NewCategoryRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	userRepo := repository.NewUserRepository(pool, logger)
	cartRepo := repository.NewCartRepository(pool, logger)

	rule := pricing.Rule{
		FreeShippingThreshold: cfg.Store.FreeShippingThreshold,
		StandardShippingCost:  cfg.Store.StandardShippingCost,
	}
	currency := cfg.Store.Currency.String()

	// Initialize services
	productService := service.NewProductService(productRepo, logger)
	categoryService := service.NewCategoryService(categoryRepo, logger)
	userService := service.NewUserService(userRepo, tokens, logger)
	orderService := service.NewOrderService(orderRepo, productRepo, receipts, m, service.OrderSettings{
		Pricing:         rule,
		Currency:        currency,
		PaymentAlias:    cfg.Store.PaymentAlias,
		MaxReceiptBytes: cfg.Receipts.MaxSizeBytes,
	}, logger)
	cartService := service.NewCartService(cartRepo, productRepo, orderService, rule, currency, logger)

	// Initialize HTTP handlers and router
	mux := router.New(router.Handlers{
		Products:   handler.NewProductHandler(productService, logger),
		Categories: handler.NewCategoryHandler(categoryService, logger),
		Users:      handler.NewUserHandler(userService, logger),
		Cart:       handler.NewCartHandler(cartService, logger),
		Orders:     handler.NewOrderHandler(orderService, logger),
	}, router.Options{
		Tokens:         tokens,
		Metrics:        m,
		DB:             pool,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	}, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// newReceiptStore keeps receipts on local disk, fronted by S3 when enabled.
// An S3 client that cannot be configured degrades to local storage only.
func newReceiptStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (receipt.Store, error) {
	local, err := receipt.NewFileStore(cfg.Receipts.Dir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize receipt storage: %w", err)
	}

	if !cfg.S3.Enabled {
		logger.Info().Str("dir", cfg.Receipts.Dir).Msg("using local file system for receipts (S3 disabled)")
		return local, nil
	}

	s3Store, err := receipt.NewS3Store(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
	if err != nil {
		logger.Warn().
			Err(err).
			Msg("failed to initialise S3 receipt store, falling back to local file system only")
		return local, nil
	}

	return receipt.NewFallbackStore(s3Store, local, cfg.S3.Prefix, true, logger), nil
}
