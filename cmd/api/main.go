package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"carhub/internal/auth"
	"carhub/internal/cache"
	"carhub/internal/config"
	"carhub/internal/database"
	"carhub/internal/handler"
	"carhub/internal/promotion"
	"carhub/internal/repository"
	"carhub/internal/router"
	"carhub/internal/service"

	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is fine, the environment may be set by the deployment.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting carhub API server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	var c cache.Cache
	if cfg.Redis.Enabled {
		c = cache.NewRedisCache(cfg.Redis.Addr, "carhub", logger)
	} else {
		c = cache.NewNoopCache()
		logger.Info().Msg("redis disabled, caching is a no-op")
	}

	// Repositories
	vehicleRepo := repository.NewVehicleRepository(pool, logger)
	userRepo := repository.NewUserRepository(pool, logger)
	promoRepo := repository.NewPromotionRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	complaintRepo := repository.NewComplaintRepository(pool, logger)
	scanRepo := repository.NewScanRepository(pool, logger)

	engine := promotion.NewEngine(promoRepo, logger)
	issuer := auth.NewTokenIssuer(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)

	// Services
	vehicleService := service.NewVehicleService(vehicleRepo, c, logger)
	userService := service.NewUserService(userRepo, issuer, logger)
	promotionService := service.NewPromotionService(promoRepo, vehicleRepo, engine, logger)
	orderService := service.NewOrderService(orderRepo, vehicleRepo, userRepo, promoRepo, engine, logger)
	complaintService := service.NewComplaintService(complaintRepo, logger)
	scanService := service.NewScanService(scanRepo, vehicleRepo, userRepo, c,
		time.Duration(cfg.Redis.TTLSeconds)*time.Second, logger)

	// HTTP surface
	handlers := router.Handlers{
		Vehicle:   handler.NewVehicleHandler(vehicleService, logger),
		User:      handler.NewUserHandler(userService, logger),
		Promotion: handler.NewPromotionHandler(promotionService, logger),
		Order:     handler.NewOrderHandler(orderService, logger),
		Complaint: handler.NewComplaintHandler(complaintService, logger),
		Scan:      handler.NewScanHandler(scanService, logger),
	}

	mux := router.New(handlers, issuer, logger)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

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
