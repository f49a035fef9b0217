package repository

import (
	"context"
	"fmt"
	"time"

	"carhub/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// scanRepository implements the ScanRepository interface using PostgreSQL.
type scanRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewScanRepository creates a new PostgreSQL-backed scan repository.
func NewScanRepository(pool *pgxpool.Pool, logger zerolog.Logger) ScanRepository {
	return &scanRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "scan").Logger(),
	}
}

func (r *scanRepository) Create(ctx context.Context, s *model.Scan) error {
	query := `
		INSERT INTO scans (id, vehicle_id, user_id, ip, user_agent, result, details, scanned_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		s.ID, s.VehicleID, s.UserID, s.IP, s.UserAgent, s.Result, s.Details, s.ScannedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("vehicle_id", s.VehicleID.String()).Msg("failed to record scan")
		return fmt.Errorf("failed to record scan: %w", err)
	}

	return nil
}

func (r *scanRepository) ListByVehicle(ctx context.Context, vehicleID uuid.UUID, page model.Page) ([]model.Scan, int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM scans WHERE vehicle_id = $1`, vehicleID).Scan(&total); err != nil {
		r.logger.Error().Err(err).Msg("failed to count scans")
		return nil, 0, fmt.Errorf("failed to count scans: %w", err)
	}

	query := `
		SELECT id, vehicle_id, user_id, ip, user_agent, result, details, scanned_at
		FROM scans
		WHERE vehicle_id = $1
		ORDER BY scanned_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, vehicleID, page.Limit, page.Offset())
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query scans")
		return nil, 0, fmt.Errorf("failed to query scans: %w", err)
	}
	defer rows.Close()

	var scans []model.Scan
	for rows.Next() {
		var s model.Scan
		err := rows.Scan(&s.ID, &s.VehicleID, &s.UserID, &s.IP, &s.UserAgent, &s.Result,
			&s.Details, &s.ScannedAt)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan row: %w", err)
		}
		scans = append(scans, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating scans: %w", err)
	}

	return scans, total, nil
}

func (r *scanRepository) Stats(ctx context.Context, vehicleID uuid.UUID, now time.Time) (*model.ScanStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE scanned_at >= $2),
			COUNT(*) FILTER (WHERE scanned_at >= $3)
		FROM scans
		WHERE vehicle_id = $1
	`

	s := &model.ScanStats{VehicleID: vehicleID}
	err := r.pool.QueryRow(ctx, query, vehicleID, now.AddDate(0, 0, -7), now.AddDate(0, 0, -30)).
		Scan(&s.Total, &s.Last7Days, &s.Last30Days)
	if err != nil {
		r.logger.Error().Err(err).Str("vehicle_id", vehicleID.String()).Msg("failed to query scan stats")
		return nil, fmt.Errorf("failed to query scan stats: %w", err)
	}

	return s, nil
}
