// Seeds a local database with a demo admin account, a handful of vehicles
// and one running promotion. Intended for development only.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"carhub/internal/config"
	"carhub/internal/database"
	"carhub/internal/model"
	"carhub/internal/repository"
	"carhub/internal/service"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	ctx := context.Background()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	now := time.Now()

	userRepo := repository.NewUserRepository(pool, logger)
	hash, err := bcrypt.GenerateFromPassword([]byte("admin1234"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := &model.User{
		ID:           uuid.New(),
		Username:     "admin",
		Email:        "admin@carhub.local",
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := userRepo.Create(ctx, admin); err != nil {
		if err == model.ErrDuplicateEmail {
			logger.Info().Msg("admin account already seeded, skipping")
		} else {
			return fmt.Errorf("failed to seed admin: %w", err)
		}
	} else {
		logger.Info().Str("email", admin.Email).Msg("admin account seeded")
	}

	vehicleRepo := repository.NewVehicleRepository(pool, logger)
	vehicles := []model.Vehicle{
		{Make: "Renault", Model: "Clio V", Year: 2023, Price: decimal.NewFromInt(18900), Mileage: 8500, FuelType: model.FuelGasoline, Gearbox: model.GearboxManual, Color: "Rouge flamme"},
		{Make: "Peugeot", Model: "208", Year: 2024, Price: decimal.NewFromInt(21500), Mileage: 120, FuelType: model.FuelElectric, Gearbox: model.GearboxAutomatic, Color: "Bleu vertigo"},
		{Make: "Citroen", Model: "C3 Aircross", Year: 2022, Price: decimal.NewFromInt(16400), Mileage: 31000, FuelType: model.FuelDiesel, Gearbox: model.GearboxManual, Color: "Blanc banquise"},
		{Make: "Dacia", Model: "Sandero", Year: 2023, Price: decimal.NewFromInt(12990), Mileage: 15200, FuelType: model.FuelGasoline, Gearbox: model.GearboxManual, Color: "Gris comete"},
	}

	vehicleIDs := make([]uuid.UUID, 0, len(vehicles))
	for i := range vehicles {
		v := &vehicles[i]
		v.ID = uuid.New()
		v.Status = model.VehicleAvailable
		v.QRCode = service.QRPayload(v.ID)
		v.CreatedAt = now
		v.UpdatedAt = now
		if err := vehicleRepo.Create(ctx, v); err != nil {
			return fmt.Errorf("failed to seed vehicle %s %s: %w", v.Make, v.Model, err)
		}
		vehicleIDs = append(vehicleIDs, v.ID)
		logger.Info().Str("make", v.Make).Str("model", v.Model).Msg("vehicle seeded")
	}

	promoRepo := repository.NewPromotionRepository(pool, logger)
	promo := &model.Promotion{
		ID:              uuid.New(),
		Name:            "Offre de lancement",
		Description:     "10% de remise sur une selection de vehicules",
		DiscountPercent: decimal.NewFromInt(10),
		StartDate:       now,
		EndDate:         now.Add(30 * 24 * time.Hour),
		VehicleIDs:      vehicleIDs,
		Status:          model.PromotionActive,
		PromoCode:       "BIENVENUE",
		UsageCap:        50,
		Conditions:      "Valable une fois par client",
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := promoRepo.Create(ctx, promo); err != nil {
		if err == model.ErrDuplicatePromoCode {
			logger.Info().Msg("promotion already seeded, skipping")
		} else {
			return fmt.Errorf("failed to seed promotion: %w", err)
		}
	} else {
		logger.Info().Str("code", promo.PromoCode).Msg("promotion seeded")
	}

	fmt.Println("Seed completed.")
	return nil
}
