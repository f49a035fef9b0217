package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Schema is the dealership schema. Statements are idempotent so Migrate can
// run on every startup.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
	id            UUID PRIMARY KEY,
	username      TEXT NOT NULL,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	role          TEXT NOT NULL DEFAULT 'client',
	age           INT NOT NULL DEFAULT 0,
	blocked       BOOLEAN NOT NULL DEFAULT FALSE,
	deleted       BOOLEAN NOT NULL DEFAULT FALSE,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS vehicles (
	id          UUID PRIMARY KEY,
	make        TEXT NOT NULL,
	model       TEXT NOT NULL,
	year        INT NOT NULL,
	price       NUMERIC(12,2) NOT NULL CHECK (price >= 0),
	mileage     INT NOT NULL DEFAULT 0,
	fuel_type   TEXT NOT NULL,
	gearbox     TEXT NOT NULL,
	color       TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	options     TEXT[] NOT NULL DEFAULT '{}',
	qr_code     TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL DEFAULT 'Available',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_vehicles_status ON vehicles (status);

CREATE TABLE IF NOT EXISTS promotions (
	id               UUID PRIMARY KEY,
	name             TEXT NOT NULL,
	description      TEXT NOT NULL,
	discount_percent NUMERIC(5,2) NOT NULL DEFAULT 0 CHECK (discount_percent >= 0 AND discount_percent <= 100),
	discount_amount  NUMERIC(12,2) NOT NULL DEFAULT 0 CHECK (discount_amount >= 0),
	start_date       TIMESTAMPTZ NOT NULL,
	end_date         TIMESTAMPTZ NOT NULL,
	vehicle_ids      UUID[] NOT NULL DEFAULT '{}',
	status           TEXT NOT NULL DEFAULT 'Active',
	promo_code       TEXT NOT NULL UNIQUE,
	usage_count      INT NOT NULL DEFAULT 0 CHECK (usage_count >= 0),
	usage_cap        INT NOT NULL DEFAULT -1 CHECK (usage_cap = -1 OR usage_cap >= 1),
	conditions       TEXT NOT NULL DEFAULT 'No particular conditions',
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_promotions_status ON promotions (status);
CREATE INDEX IF NOT EXISTS idx_promotions_dates ON promotions (start_date, end_date);

CREATE TABLE IF NOT EXISTS orders (
	id                 UUID PRIMARY KEY,
	user_id            UUID NOT NULL,
	vehicle_id         UUID NOT NULL,
	promotion_id       UUID,
	status             TEXT NOT NULL DEFAULT 'Pending',
	original_price     NUMERIC(12,2) NOT NULL,
	discounted_price   NUMERIC(12,2) NOT NULL,
	discount_amount    NUMERIC(12,2) NOT NULL DEFAULT 0,
	used_promo_code    TEXT,
	delivery_address   JSONB NOT NULL,
	contact_info       JSONB NOT NULL,
	payment_method     TEXT NOT NULL,
	payment_status     TEXT NOT NULL DEFAULT 'Pending',
	payment_reference  TEXT NOT NULL DEFAULT '',
	notes              TEXT NOT NULL DEFAULT '',
	ordered_at         TIMESTAMPTZ NOT NULL,
	estimated_delivery TIMESTAMPTZ NOT NULL,
	delivered_at       TIMESTAMPTZ,
	status_history     JSONB NOT NULL DEFAULT '[]',
	created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_orders_user ON orders (user_id, ordered_at DESC);
CREATE INDEX IF NOT EXISTS idx_orders_vehicle ON orders (vehicle_id, ordered_at DESC);
CREATE INDEX IF NOT EXISTS idx_orders_status ON orders (status);
CREATE INDEX IF NOT EXISTS idx_orders_payment_status ON orders (payment_status);

CREATE TABLE IF NOT EXISTS complaints (
	id         UUID PRIMARY KEY,
	subject    TEXT NOT NULL,
	message    TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'Pending',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS scans (
	id         UUID PRIMARY KEY,
	vehicle_id UUID NOT NULL,
	user_id    UUID NOT NULL,
	ip         TEXT NOT NULL DEFAULT '',
	user_agent TEXT NOT NULL DEFAULT '',
	result     TEXT NOT NULL DEFAULT 'Success',
	details    TEXT NOT NULL DEFAULT '',
	scanned_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_scans_vehicle ON scans (vehicle_id, scanned_at DESC);
`

// Migrate applies the schema to the connected database.
func Migrate(ctx context.Context, pool *pgxpool.Pool, logger zerolog.Logger) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	logger.Info().Msg("database schema applied")

	return nil
}
