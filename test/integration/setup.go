package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"carhub/internal/database"
	"carhub/internal/model"
	"carhub/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container, connects a pool, and
// applies the schema.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		t.Fatalf("failed to parse connection string: %v", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	if err := database.Migrate(ctx, pool, zerolog.Nop()); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{"scans", "complaints", "orders", "promotions", "vehicles", "users"}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}

// SeedVehicle inserts an Available vehicle with the given list price.
func SeedVehicle(t *testing.T, pool *pgxpool.Pool, price string) *model.Vehicle {
	t.Helper()

	repo := repository.NewVehicleRepository(pool, zerolog.Nop())
	now := time.Now()
	v := &model.Vehicle{
		ID:        uuid.New(),
		Make:      "Renault",
		Model:     "Clio",
		Year:      2023,
		Price:     decimal.RequireFromString(price),
		Mileage:   12000,
		FuelType:  model.FuelGasoline,
		Gearbox:   model.GearboxManual,
		Status:    model.VehicleAvailable,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repo.Create(context.Background(), v); err != nil {
		t.Fatalf("failed to seed vehicle: %v", err)
	}
	return v
}

// SeedUser inserts an unblocked account with the given role. The password
// for every seeded account is "s3cret-pass".
func SeedUser(t *testing.T, pool *pgxpool.Pool, role model.Role) *model.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-pass"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	repo := repository.NewUserRepository(pool, zerolog.Nop())
	now := time.Now()
	u := &model.User{
		ID:           uuid.New(),
		Username:     fmt.Sprintf("user-%s", uuid.New().String()[:8]),
		Email:        fmt.Sprintf("%s@example.com", uuid.New().String()[:8]),
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return u
}

// SeedPromotion inserts an Active percent-off promotion covering the given
// vehicles, valid for the surrounding 48 hours.
func SeedPromotion(t *testing.T, pool *pgxpool.Pool, code string, percent int64, usageCap int, vehicleIDs ...uuid.UUID) *model.Promotion {
	t.Helper()

	repo := repository.NewPromotionRepository(pool, zerolog.Nop())
	now := time.Now()
	p := &model.Promotion{
		ID:              uuid.New(),
		Name:            "Test promotion " + code,
		DiscountPercent: decimal.NewFromInt(percent),
		StartDate:       now.Add(-24 * time.Hour),
		EndDate:         now.Add(24 * time.Hour),
		VehicleIDs:      vehicleIDs,
		Status:          model.PromotionActive,
		PromoCode:       code,
		UsageCap:        usageCap,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := repo.Create(context.Background(), p); err != nil {
		t.Fatalf("failed to seed promotion: %v", err)
	}
	return p
}

// OrderRequestFor builds a complete order request for the given user and
// vehicle.
func OrderRequestFor(user *model.User, vehicle *model.Vehicle) model.OrderRequest {
	return model.OrderRequest{
		VehicleID: vehicle.ID,
		UserID:    user.ID,
		DeliveryAddress: model.DeliveryAddress{
			Street:     "12 rue de la Paix",
			City:       "Paris",
			PostalCode: "75002",
			Country:    "France",
		},
		ContactInfo: model.ContactInfo{
			FirstName: "Jean",
			LastName:  "Dupont",
			Phone:     "+33612345678",
			Email:     user.Email,
		},
		PaymentMethod: model.PaymentCard,
	}
}
