package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"carhub/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

const orderColumns = `id, user_id, vehicle_id, promotion_id, status, original_price,
	discounted_price, discount_amount, used_promo_code, delivery_address, contact_info,
	payment_method, payment_status, payment_reference, notes, ordered_at,
	estimated_delivery, delivered_at, status_history, created_at, updated_at`

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// Create inserts a new order within the provided transaction.
func (r *orderRepository) Create(ctx context.Context, tx pgx.Tx, o *model.Order) error {
	address, err := json.Marshal(o.DeliveryAddress)
	if err != nil {
		return fmt.Errorf("failed to marshal delivery address: %w", err)
	}
	contact, err := json.Marshal(o.ContactInfo)
	if err != nil {
		return fmt.Errorf("failed to marshal contact info: %w", err)
	}
	history, err := json.Marshal(o.StatusHistory)
	if err != nil {
		return fmt.Errorf("failed to marshal status history: %w", err)
	}

	query := `
		INSERT INTO orders (id, user_id, vehicle_id, promotion_id, status, original_price,
			discounted_price, discount_amount, used_promo_code, delivery_address, contact_info,
			payment_method, payment_status, payment_reference, notes, ordered_at,
			estimated_delivery, delivered_at, status_history, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
			$17, $18, $19, $20, $21)
	`

	_, err = tx.Exec(ctx, query,
		o.ID, o.UserID, o.VehicleID, o.PromotionID, o.Status, o.OriginalPrice,
		o.DiscountedPrice, o.DiscountAmount, o.UsedPromoCode, address, contact,
		o.PaymentMethod, o.PaymentStatus, o.PaymentReference, o.Notes, o.OrderedAt,
		o.EstimatedDelivery, o.DeliveredAt, history, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", o.ID.String()).Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Debug().Str("order_id", o.ID.String()).Msg("order created")

	return nil
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	var (
		o       model.Order
		address []byte
		contact []byte
		history []byte
	)

	err := row.Scan(
		&o.ID, &o.UserID, &o.VehicleID, &o.PromotionID, &o.Status, &o.OriginalPrice,
		&o.DiscountedPrice, &o.DiscountAmount, &o.UsedPromoCode, &address, &contact,
		&o.PaymentMethod, &o.PaymentStatus, &o.PaymentReference, &o.Notes, &o.OrderedAt,
		&o.EstimatedDelivery, &o.DeliveredAt, &history, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(address, &o.DeliveryAddress); err != nil {
		return nil, fmt.Errorf("failed to unmarshal delivery address: %w", err)
	}
	if err := json.Unmarshal(contact, &o.ContactInfo); err != nil {
		return nil, fmt.Errorf("failed to unmarshal contact info: %w", err)
	}
	if err := json.Unmarshal(history, &o.StatusHistory); err != nil {
		return nil, fmt.Errorf("failed to unmarshal status history: %w", err)
	}

	return &o, nil
}

// GetByID retrieves an order by its ID.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	o, err := scanOrder(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	return o, nil
}

// List retrieves orders matching the filter, with total count.
func (r *orderRepository) List(ctx context.Context, filter model.OrderFilter, page model.Page) ([]model.Order, int64, error) {
	where := " WHERE 1=1"
	args := []any{}

	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.PaymentStatus != "" {
		args = append(args, filter.PaymentStatus)
		where += fmt.Sprintf(" AND payment_status = $%d", len(args))
	}
	if filter.UserID != uuid.Nil {
		args = append(args, filter.UserID)
		where += fmt.Sprintf(" AND user_id = $%d", len(args))
	}
	if filter.VehicleID != uuid.Nil {
		args = append(args, filter.VehicleID)
		where += fmt.Sprintf(" AND vehicle_id = $%d", len(args))
	}

	var total int64
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM orders"+where, args...).Scan(&total); err != nil {
		r.logger.Error().Err(err).Msg("failed to count orders")
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	orderBy := "ordered_at"
	switch page.SortBy {
	case "status":
		orderBy = "status"
	case "estimatedDelivery":
		orderBy = "estimated_delivery"
	case "discountedPrice":
		orderBy = "discounted_price"
	}
	direction := "ASC"
	if page.SortDesc {
		direction = "DESC"
	}

	args = append(args, page.Limit, page.Offset())
	query := fmt.Sprintf("SELECT %s FROM orders%s ORDER BY %s %s LIMIT $%d OFFSET $%d",
		orderColumns, where, orderBy, direction, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query orders")
		return nil, 0, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, 0, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order rows")
		return nil, 0, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, total, nil
}

// SaveStatus persists status, history, and delivered_at within a transaction.
func (r *orderRepository) SaveStatus(ctx context.Context, tx pgx.Tx, o *model.Order) error {
	history, err := json.Marshal(o.StatusHistory)
	if err != nil {
		return fmt.Errorf("failed to marshal status history: %w", err)
	}

	query := `
		UPDATE orders
		SET status = $2, status_history = $3, delivered_at = $4, updated_at = $5
		WHERE id = $1
	`

	_, err = tx.Exec(ctx, query, o.ID, o.Status, history, o.DeliveredAt, time.Now())
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", o.ID.String()).Msg("failed to save order status")
		return fmt.Errorf("failed to save order status: %w", err)
	}

	return nil
}

// UpdatePayment sets payment status and reference. No history entry.
func (r *orderRepository) UpdatePayment(ctx context.Context, id uuid.UUID, status model.PaymentStatus, reference string) (bool, error) {
	query := `
		UPDATE orders
		SET payment_status = $2,
			payment_reference = CASE WHEN $3 = '' THEN payment_reference ELSE $3 END,
			updated_at = now()
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, id, status, reference)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to update payment")
		return false, fmt.Errorf("failed to update payment: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// Stats returns aggregate order counters and revenue sums.
func (r *orderRepository) Stats(ctx context.Context, now time.Time) (*model.OrderStats, error) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekStart := now.AddDate(0, 0, -7)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE ordered_at >= $1),
			COUNT(*) FILTER (WHERE ordered_at >= $2),
			COUNT(*) FILTER (WHERE ordered_at >= $3),
			COALESCE(SUM(original_price), 0),
			COALESCE(SUM(discounted_price), 0),
			COALESCE(SUM(original_price - discounted_price), 0)
		FROM orders
	`

	s := &model.OrderStats{}
	err := r.pool.QueryRow(ctx, query, dayStart, weekStart, monthStart).Scan(
		&s.Total, &s.Today, &s.ThisWeek, &s.ThisMonth,
		&s.GrossRevenue, &s.NetRevenue, &s.TotalSavings,
	)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query order stats")
		return nil, fmt.Errorf("failed to query order stats: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT status, COUNT(*) FROM orders GROUP BY status ORDER BY COUNT(*) DESC`)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query order status counts")
		return nil, fmt.Errorf("failed to query order status counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c model.OrderStatusCount
		if err := rows.Scan(&c.Status, &c.Count); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order status count")
			return nil, fmt.Errorf("failed to scan order status count: %w", err)
		}
		s.ByStatus = append(s.ByStatus, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order status counts: %w", err)
	}

	return s, nil
}
