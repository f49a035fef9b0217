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

// complaintRepository implements the ComplaintRepository interface using PostgreSQL.
type complaintRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewComplaintRepository creates a new PostgreSQL-backed complaint repository.
func NewComplaintRepository(pool *pgxpool.Pool, logger zerolog.Logger) ComplaintRepository {
	return &complaintRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "complaint").Logger(),
	}
}

const complaintColumns = `id, subject, message, status, created_at, updated_at`

func (r *complaintRepository) Create(ctx context.Context, c *model.Complaint) error {
	query := `
		INSERT INTO complaints (id, subject, message, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query, c.ID, c.Subject, c.Message, c.Status, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to create complaint")
		return fmt.Errorf("failed to create complaint: %w", err)
	}

	return nil
}

func scanComplaint(row pgx.Row) (*model.Complaint, error) {
	var c model.Complaint
	err := row.Scan(&c.ID, &c.Subject, &c.Message, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *complaintRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Complaint, error) {
	query := `SELECT ` + complaintColumns + ` FROM complaints WHERE id = $1`

	c, err := scanComplaint(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("complaint_id", id.String()).Msg("failed to query complaint")
		return nil, fmt.Errorf("failed to query complaint: %w", err)
	}

	return c, nil
}

func (r *complaintRepository) List(ctx context.Context, page model.Page) ([]model.Complaint, int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM complaints`).Scan(&total); err != nil {
		r.logger.Error().Err(err).Msg("failed to count complaints")
		return nil, 0, fmt.Errorf("failed to count complaints: %w", err)
	}

	query := `SELECT ` + complaintColumns + ` FROM complaints
		ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, page.Limit, page.Offset())
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query complaints")
		return nil, 0, fmt.Errorf("failed to query complaints: %w", err)
	}
	defer rows.Close()

	var complaints []model.Complaint
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan complaint: %w", err)
		}
		complaints = append(complaints, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating complaints: %w", err)
	}

	return complaints, total, nil
}

func (r *complaintRepository) Update(ctx context.Context, c *model.Complaint) (bool, error) {
	query := `
		UPDATE complaints
		SET subject = $2, message = $3, status = $4, updated_at = $5
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, c.ID, c.Subject, c.Message, c.Status, time.Now())
	if err != nil {
		r.logger.Error().Err(err).Str("complaint_id", c.ID.String()).Msg("failed to update complaint")
		return false, fmt.Errorf("failed to update complaint: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r *complaintRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM complaints WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("complaint_id", id.String()).Msg("failed to delete complaint")
		return false, fmt.Errorf("failed to delete complaint: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}
