package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"carhub/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// promotionRepository implements the PromotionRepository interface using PostgreSQL.
type promotionRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPromotionRepository creates a new PostgreSQL-backed promotion repository.
func NewPromotionRepository(pool *pgxpool.Pool, logger zerolog.Logger) PromotionRepository {
	return &promotionRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "promotion").Logger(),
	}
}

const promotionColumns = `id, name, description, discount_percent, discount_amount,
	start_date, end_date, vehicle_ids, status, promo_code, usage_count, usage_cap,
	conditions, created_at, updated_at`

// eligibleCondition is the SQL form of promotion eligibility: stored Active,
// inside the date window, and under the usage cap (or uncapped). The same
// predicate guards the conditional usage increment.
const eligibleCondition = `status = 'Active'
	AND start_date <= $%d AND end_date >= $%d
	AND (usage_cap = -1 OR usage_count < usage_cap)`

func scanPromotion(row pgx.Row) (*model.Promotion, error) {
	var p model.Promotion
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.DiscountPercent, &p.DiscountAmount,
		&p.StartDate, &p.EndDate, &p.VehicleIDs, &p.Status, &p.PromoCode,
		&p.UsageCount, &p.UsageCap, &p.Conditions, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// isUniqueViolation reports whether err is a unique-constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Create inserts a new promotion.
func (r *promotionRepository) Create(ctx context.Context, p *model.Promotion) error {
	query := `
		INSERT INTO promotions (id, name, description, discount_percent, discount_amount,
			start_date, end_date, vehicle_ids, status, promo_code, usage_count, usage_cap,
			conditions, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.pool.Exec(ctx, query,
		p.ID, p.Name, p.Description, p.DiscountPercent, p.DiscountAmount,
		p.StartDate, p.EndDate, p.VehicleIDs, p.Status, p.PromoCode,
		p.UsageCount, p.UsageCap, p.Conditions, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrDuplicatePromoCode
		}
		r.logger.Error().Err(err).Str("promotion_id", p.ID.String()).Msg("failed to create promotion")
		return fmt.Errorf("failed to create promotion: %w", err)
	}

	r.logger.Debug().Str("promotion_id", p.ID.String()).Str("promo_code", p.PromoCode).Msg("promotion created")

	return nil
}

// GetByID retrieves a promotion by ID.
func (r *promotionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Promotion, error) {
	query := `SELECT ` + promotionColumns + ` FROM promotions WHERE id = $1`

	p, err := scanPromotion(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("promotion_id", id.String()).Msg("promotion not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("promotion_id", id.String()).Msg("failed to query promotion")
		return nil, fmt.Errorf("failed to query promotion: %w", err)
	}

	return p, nil
}

// GetByCode retrieves a promotion by promo code, case-insensitively.
func (r *promotionRepository) GetByCode(ctx context.Context, code string) (*model.Promotion, error) {
	query := `SELECT ` + promotionColumns + ` FROM promotions WHERE promo_code = $1`

	p, err := scanPromotion(r.pool.QueryRow(ctx, query, strings.ToUpper(code)))
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("promo_code", code).Msg("promotion not found by code")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("promo_code", code).Msg("failed to query promotion by code")
		return nil, fmt.Errorf("failed to query promotion by code: %w", err)
	}

	return p, nil
}

// List retrieves promotions matching the filter, with total count.
func (r *promotionRepository) List(ctx context.Context, filter model.PromotionFilter, page model.Page) ([]model.Promotion, int64, error) {
	where := " WHERE 1=1"
	args := []any{}

	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.VehicleID != uuid.Nil {
		args = append(args, filter.VehicleID)
		where += fmt.Sprintf(" AND $%d = ANY(vehicle_ids)", len(args))
	}

	var total int64
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM promotions"+where, args...).Scan(&total); err != nil {
		r.logger.Error().Err(err).Msg("failed to count promotions")
		return nil, 0, fmt.Errorf("failed to count promotions: %w", err)
	}

	orderBy := "created_at"
	switch page.SortBy {
	case "startDate":
		orderBy = "start_date"
	case "endDate":
		orderBy = "end_date"
	case "usageCount":
		orderBy = "usage_count"
	case "name":
		orderBy = "name"
	}
	direction := "ASC"
	if page.SortDesc {
		direction = "DESC"
	}

	args = append(args, page.Limit, page.Offset())
	query := fmt.Sprintf("SELECT %s FROM promotions%s ORDER BY %s %s LIMIT $%d OFFSET $%d",
		promotionColumns, where, orderBy, direction, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query promotions")
		return nil, 0, fmt.Errorf("failed to query promotions: %w", err)
	}
	defer rows.Close()

	promotions, err := collectPromotions(rows, r.logger)
	if err != nil {
		return nil, 0, err
	}

	return promotions, total, nil
}

// ListEligible retrieves promotions eligible for use at the given instant.
func (r *promotionRepository) ListEligible(ctx context.Context, vehicleID uuid.UUID, now time.Time) ([]model.Promotion, error) {
	args := []any{now}
	query := `SELECT ` + promotionColumns + ` FROM promotions WHERE ` +
		fmt.Sprintf(eligibleCondition, 1, 1)

	if vehicleID != uuid.Nil {
		args = append(args, vehicleID)
		query += fmt.Sprintf(" AND $%d = ANY(vehicle_ids)", len(args))
	}
	query += " ORDER BY end_date"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query eligible promotions")
		return nil, fmt.Errorf("failed to query eligible promotions: %w", err)
	}
	defer rows.Close()

	return collectPromotions(rows, r.logger)
}

func collectPromotions(rows pgx.Rows, logger zerolog.Logger) ([]model.Promotion, error) {
	var promotions []model.Promotion
	for rows.Next() {
		p, err := scanPromotion(rows)
		if err != nil {
			logger.Error().Err(err).Msg("failed to scan promotion row")
			return nil, fmt.Errorf("failed to scan promotion: %w", err)
		}
		promotions = append(promotions, *p)
	}

	if err := rows.Err(); err != nil {
		logger.Error().Err(err).Msg("error iterating promotion rows")
		return nil, fmt.Errorf("error iterating promotions: %w", err)
	}

	return promotions, nil
}

// Update replaces the mutable attributes of a promotion. Usage counters are
// out of scope; they move only through the conditional increment/decrement.
func (r *promotionRepository) Update(ctx context.Context, p *model.Promotion) error {
	query := `
		UPDATE promotions
		SET name = $2, description = $3, discount_percent = $4, discount_amount = $5,
			start_date = $6, end_date = $7, vehicle_ids = $8, conditions = $9,
			updated_at = $10
		WHERE id = $1
	`

	_, err := r.pool.Exec(ctx, query,
		p.ID, p.Name, p.Description, p.DiscountPercent, p.DiscountAmount,
		p.StartDate, p.EndDate, p.VehicleIDs, p.Conditions, time.Now(),
	)
	if err != nil {
		r.logger.Error().Err(err).Str("promotion_id", p.ID.String()).Msg("failed to update promotion")
		return fmt.Errorf("failed to update promotion: %w", err)
	}

	return nil
}

// SetStatus sets the stored status.
func (r *promotionRepository) SetStatus(ctx context.Context, id uuid.UUID, status model.PromotionStatus) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE promotions SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		r.logger.Error().Err(err).Str("promotion_id", id.String()).Msg("failed to set promotion status")
		return false, fmt.Errorf("failed to set promotion status: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// SetCode replaces the promo code.
func (r *promotionRepository) SetCode(ctx context.Context, id uuid.UUID, code string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE promotions SET promo_code = $2, updated_at = now() WHERE id = $1`,
		id, strings.ToUpper(code))
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrDuplicatePromoCode
		}
		r.logger.Error().Err(err).Str("promotion_id", id.String()).Msg("failed to set promo code")
		return fmt.Errorf("failed to set promo code: %w", err)
	}

	return nil
}

// incrementUsageSQL re-checks eligibility and increments in one statement so
// two concurrent redemptions cannot overrun the cap.
var incrementUsageSQL = fmt.Sprintf(
	`UPDATE promotions SET usage_count = usage_count + 1, updated_at = now()
	 WHERE id = $1 AND `+eligibleCondition, 2, 2)

// IncrementUsage increments usage_count by one, conditioned on eligibility.
func (r *promotionRepository) IncrementUsage(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx, incrementUsageSQL, id, now)
	if err != nil {
		r.logger.Error().Err(err).Str("promotion_id", id.String()).Msg("failed to increment usage")
		return false, fmt.Errorf("failed to increment usage: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// IncrementUsageTx is IncrementUsage within a transaction.
func (r *promotionRepository) IncrementUsageTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, now time.Time) (bool, error) {
	tag, err := tx.Exec(ctx, incrementUsageSQL, id, now)
	if err != nil {
		r.logger.Error().Err(err).Str("promotion_id", id.String()).Msg("failed to increment usage")
		return false, fmt.Errorf("failed to increment usage: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

const decrementUsageSQL = `
	UPDATE promotions SET usage_count = GREATEST(usage_count - 1, 0), updated_at = now()
	WHERE id = $1`

// DecrementUsage decrements usage_count by one, floored at zero.
func (r *promotionRepository) DecrementUsage(ctx context.Context, id uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, decrementUsageSQL, id); err != nil {
		r.logger.Error().Err(err).Str("promotion_id", id.String()).Msg("failed to decrement usage")
		return fmt.Errorf("failed to decrement usage: %w", err)
	}

	return nil
}

// DecrementUsageTx is DecrementUsage within a transaction.
func (r *promotionRepository) DecrementUsageTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	if _, err := tx.Exec(ctx, decrementUsageSQL, id); err != nil {
		r.logger.Error().Err(err).Str("promotion_id", id.String()).Msg("failed to decrement usage")
		return fmt.Errorf("failed to decrement usage: %w", err)
	}

	return nil
}

// CodeExists reports whether a promo code is already taken.
func (r *promotionRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM promotions WHERE promo_code = $1)`,
		strings.ToUpper(code)).Scan(&exists)
	if err != nil {
		r.logger.Error().Err(err).Str("promo_code", code).Msg("failed to check promo code")
		return false, fmt.Errorf("failed to check promo code: %w", err)
	}

	return exists, nil
}

// Delete removes a promotion.
func (r *promotionRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM promotions WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("promotion_id", id.String()).Msg("failed to delete promotion")
		return false, fmt.Errorf("failed to delete promotion: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// Analytics returns aggregate promotion counters.
func (r *promotionRepository) Analytics(ctx context.Context, now time.Time) (*model.PromotionAnalytics, error) {
	a := &model.PromotionAnalytics{}

	summary := fmt.Sprintf(`
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE %s),
			COUNT(*) FILTER (WHERE status = 'Expired'),
			COUNT(*) FILTER (WHERE created_at >= $2)
		FROM promotions
	`, fmt.Sprintf(eligibleCondition, 1, 1))

	err := r.pool.QueryRow(ctx, summary, now, now.AddDate(0, 0, -30)).Scan(
		&a.Total, &a.Active, &a.Expired, &a.CreatedLast30Days)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query promotion summary")
		return nil, fmt.Errorf("failed to query promotion summary: %w", err)
	}

	topQuery := `SELECT ` + promotionColumns + ` FROM promotions ORDER BY usage_count DESC LIMIT 10`
	rows, err := r.pool.Query(ctx, topQuery)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query top promotions")
		return nil, fmt.Errorf("failed to query top promotions: %w", err)
	}
	defer rows.Close()

	a.TopUsed, err = collectPromotions(rows, r.logger)
	if err != nil {
		return nil, err
	}

	distQuery := `
		SELECT status, COUNT(*), COALESCE(AVG(usage_count), 0)
		FROM promotions
		GROUP BY status
		ORDER BY COUNT(*) DESC
	`
	distRows, err := r.pool.Query(ctx, distQuery)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query status distribution")
		return nil, fmt.Errorf("failed to query status distribution: %w", err)
	}
	defer distRows.Close()

	for distRows.Next() {
		var c model.PromotionStatusCount
		if err := distRows.Scan(&c.Status, &c.Count, &c.AvgUsage); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan status distribution row")
			return nil, fmt.Errorf("failed to scan status distribution: %w", err)
		}
		a.StatusDistribution = append(a.StatusDistribution, c)
	}
	if err := distRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating status distribution: %w", err)
	}

	return a, nil
}
