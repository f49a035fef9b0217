package repository

import (
	"context"
	"fmt"
	"time"

	"carhub/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// vehicleRepository implements the VehicleRepository interface using PostgreSQL.
type vehicleRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewVehicleRepository creates a new PostgreSQL-backed vehicle repository.
func NewVehicleRepository(pool *pgxpool.Pool, logger zerolog.Logger) VehicleRepository {
	return &vehicleRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "vehicle").Logger(),
	}
}

const vehicleColumns = `id, make, model, year, price, mileage, fuel_type, gearbox,
	color, description, options, qr_code, status, created_at, updated_at`

func scanVehicle(row pgx.Row) (*model.Vehicle, error) {
	var v model.Vehicle
	err := row.Scan(
		&v.ID, &v.Make, &v.Model, &v.Year, &v.Price, &v.Mileage, &v.FuelType,
		&v.Gearbox, &v.Color, &v.Description, &v.Options, &v.QRCode, &v.Status,
		&v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Create inserts a new vehicle.
func (r *vehicleRepository) Create(ctx context.Context, v *model.Vehicle) error {
	query := `
		INSERT INTO vehicles (id, make, model, year, price, mileage, fuel_type,
			gearbox, color, description, options, qr_code, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.pool.Exec(ctx, query,
		v.ID, v.Make, v.Model, v.Year, v.Price, v.Mileage, v.FuelType, v.Gearbox,
		v.Color, v.Description, v.Options, v.QRCode, v.Status, v.CreatedAt, v.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("vehicle_id", v.ID.String()).Msg("failed to create vehicle")
		return fmt.Errorf("failed to create vehicle: %w", err)
	}

	r.logger.Debug().Str("vehicle_id", v.ID.String()).Msg("vehicle created")

	return nil
}

// GetByID retrieves a single vehicle by its ID.
func (r *vehicleRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = $1`

	v, err := scanVehicle(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("vehicle_id", id.String()).Msg("vehicle not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("vehicle_id", id.String()).Msg("failed to query vehicle")
		return nil, fmt.Errorf("failed to query vehicle: %w", err)
	}

	return v, nil
}

// GetByIDs retrieves multiple vehicles by their IDs.
func (r *vehicleRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Vehicle, error) {
	if len(ids) == 0 {
		return []model.Vehicle{}, nil
	}

	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = ANY($1) ORDER BY make, model`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to query vehicles by IDs")
		return nil, fmt.Errorf("failed to query vehicles by IDs: %w", err)
	}
	defer rows.Close()

	return collectVehicles(rows, r.logger)
}

// List retrieves vehicles matching the filter, with total count.
func (r *vehicleRepository) List(ctx context.Context, filter model.VehicleFilter, page model.Page) ([]model.Vehicle, int64, error) {
	where := " WHERE 1=1"
	args := []any{}

	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.Make != "" {
		args = append(args, filter.Make)
		where += fmt.Sprintf(" AND make ILIKE $%d", len(args))
	}
	if filter.FuelType != "" {
		args = append(args, filter.FuelType)
		where += fmt.Sprintf(" AND fuel_type = $%d", len(args))
	}
	if filter.MaxPrice != nil {
		args = append(args, *filter.MaxPrice)
		where += fmt.Sprintf(" AND price <= $%d", len(args))
	}

	var total int64
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM vehicles"+where, args...).Scan(&total); err != nil {
		r.logger.Error().Err(err).Msg("failed to count vehicles")
		return nil, 0, fmt.Errorf("failed to count vehicles: %w", err)
	}

	orderBy := vehicleSortColumn(page.SortBy)
	direction := "ASC"
	if page.SortDesc {
		direction = "DESC"
	}

	args = append(args, page.Limit, page.Offset())
	query := fmt.Sprintf("SELECT %s FROM vehicles%s ORDER BY %s %s LIMIT $%d OFFSET $%d",
		vehicleColumns, where, orderBy, direction, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query vehicles")
		return nil, 0, fmt.Errorf("failed to query vehicles: %w", err)
	}
	defer rows.Close()

	vehicles, err := collectVehicles(rows, r.logger)
	if err != nil {
		return nil, 0, err
	}

	return vehicles, total, nil
}

// vehicleSortColumn whitelists sortable columns; unknown keys fall back to
// creation time.
func vehicleSortColumn(key string) string {
	switch key {
	case "price":
		return "price"
	case "year":
		return "year"
	case "mileage":
		return "mileage"
	case "make":
		return "make"
	default:
		return "created_at"
	}
}

func collectVehicles(rows pgx.Rows, logger zerolog.Logger) ([]model.Vehicle, error) {
	var vehicles []model.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			logger.Error().Err(err).Msg("failed to scan vehicle row")
			return nil, fmt.Errorf("failed to scan vehicle: %w", err)
		}
		vehicles = append(vehicles, *v)
	}

	if err := rows.Err(); err != nil {
		logger.Error().Err(err).Msg("error iterating vehicle rows")
		return nil, fmt.Errorf("error iterating vehicles: %w", err)
	}

	return vehicles, nil
}

// Update replaces the mutable attributes of a vehicle.
func (r *vehicleRepository) Update(ctx context.Context, v *model.Vehicle) error {
	query := `
		UPDATE vehicles
		SET make = $2, model = $3, year = $4, price = $5, mileage = $6,
			fuel_type = $7, gearbox = $8, color = $9, description = $10,
			options = $11, updated_at = $12
		WHERE id = $1
	`

	_, err := r.pool.Exec(ctx, query,
		v.ID, v.Make, v.Model, v.Year, v.Price, v.Mileage, v.FuelType,
		v.Gearbox, v.Color, v.Description, v.Options, time.Now(),
	)
	if err != nil {
		r.logger.Error().Err(err).Str("vehicle_id", v.ID.String()).Msg("failed to update vehicle")
		return fmt.Errorf("failed to update vehicle: %w", err)
	}

	return nil
}

// SetStatus sets the availability status unconditionally.
func (r *vehicleRepository) SetStatus(ctx context.Context, id uuid.UUID, status model.VehicleStatus) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE vehicles SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		r.logger.Error().Err(err).Str("vehicle_id", id.String()).Msg("failed to set vehicle status")
		return false, fmt.Errorf("failed to set vehicle status: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// Reserve flips Available to Reserved as a single conditional update. The
// status check and the write are one statement, so two concurrent orders
// for the same vehicle cannot both reserve it.
func (r *vehicleRepository) Reserve(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error) {
	tag, err := tx.Exec(ctx,
		`UPDATE vehicles SET status = $2, updated_at = now() WHERE id = $1 AND status = $3`,
		id, model.VehicleReserved, model.VehicleAvailable)
	if err != nil {
		r.logger.Error().Err(err).Str("vehicle_id", id.String()).Msg("failed to reserve vehicle")
		return false, fmt.Errorf("failed to reserve vehicle: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// SetStatusTx sets the availability status within a transaction.
func (r *vehicleRepository) SetStatusTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.VehicleStatus) error {
	_, err := tx.Exec(ctx,
		`UPDATE vehicles SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		r.logger.Error().Err(err).Str("vehicle_id", id.String()).Msg("failed to set vehicle status")
		return fmt.Errorf("failed to set vehicle status: %w", err)
	}

	return nil
}

// SetQRCode stores the QR payload for a vehicle.
func (r *vehicleRepository) SetQRCode(ctx context.Context, id uuid.UUID, payload string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE vehicles SET qr_code = $2, updated_at = now() WHERE id = $1`, id, payload)
	if err != nil {
		r.logger.Error().Err(err).Str("vehicle_id", id.String()).Msg("failed to set QR code")
		return false, fmt.Errorf("failed to set QR code: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// Delete removes a vehicle.
func (r *vehicleRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM vehicles WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("vehicle_id", id.String()).Msg("failed to delete vehicle")
		return false, fmt.Errorf("failed to delete vehicle: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// Stats returns per-status inventory counts.
func (r *vehicleRepository) Stats(ctx context.Context) (*model.VehicleStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'Available'),
			COUNT(*) FILTER (WHERE status = 'Reserved'),
			COUNT(*) FILTER (WHERE status = 'Sold'),
			COUNT(*) FILTER (WHERE status = 'Maintenance'),
			COUNT(*) FILTER (WHERE status = 'Unavailable')
		FROM vehicles
	`

	var s model.VehicleStats
	err := r.pool.QueryRow(ctx, query).Scan(
		&s.Total, &s.Available, &s.Reserved, &s.Sold, &s.Maintenance, &s.Unavailable)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query vehicle stats")
		return nil, fmt.Errorf("failed to query vehicle stats: %w", err)
	}

	return &s, nil
}
