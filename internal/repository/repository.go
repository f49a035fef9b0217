package repository

import (
	"context"
	"time"

	"carhub/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// VehicleRepository defines the interface for vehicle data access operations.
type VehicleRepository interface {
	// Create inserts a new vehicle.
	Create(ctx context.Context, v *model.Vehicle) error

	// GetByID retrieves a single vehicle by its ID. Returns nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Vehicle, error)

	// GetByIDs retrieves multiple vehicles by their IDs.
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Vehicle, error)

	// List retrieves vehicles matching the filter, with total count.
	List(ctx context.Context, filter model.VehicleFilter, page model.Page) ([]model.Vehicle, int64, error)

	// Update replaces the mutable attributes of a vehicle.
	Update(ctx context.Context, v *model.Vehicle) error

	// SetStatus sets the availability status unconditionally.
	// Returns false when the vehicle does not exist.
	SetStatus(ctx context.Context, id uuid.UUID, status model.VehicleStatus) (bool, error)

	// Reserve flips Available to Reserved as a single conditional update.
	// Returns false when the vehicle is absent or not Available, so two
	// concurrent reservations cannot both succeed.
	Reserve(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error)

	// SetStatusTx sets the availability status within a transaction.
	SetStatusTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.VehicleStatus) error

	// SetQRCode stores the QR payload for a vehicle.
	SetQRCode(ctx context.Context, id uuid.UUID, payload string) (bool, error)

	// Delete removes a vehicle. Returns false when absent.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)

	// Stats returns per-status inventory counts.
	Stats(ctx context.Context) (*model.VehicleStats, error)
}

// UserRepository defines the interface for account data access operations.
type UserRepository interface {
	// Create inserts a new user. Returns model.ErrDuplicateEmail when the
	// email is already registered.
	Create(ctx context.Context, u *model.User) error

	// GetByID retrieves a non-deleted user by ID. Returns nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)

	// GetByEmail retrieves a non-deleted user by email. Returns nil when absent.
	GetByEmail(ctx context.Context, email string) (*model.User, error)

	// List retrieves users with pagination, newest first.
	List(ctx context.Context, page model.Page) ([]model.User, int64, error)

	// SetBlocked flips the blocked flag. Returns false when absent.
	SetBlocked(ctx context.Context, id uuid.UUID, blocked bool) (bool, error)

	// SoftDelete marks the user deleted. Returns false when absent.
	SoftDelete(ctx context.Context, id uuid.UUID) (bool, error)
}

// PromotionRepository defines the interface for promotion data access
// operations. Promo codes are stored uppercase; code lookups are
// case-insensitive.
type PromotionRepository interface {
	// Create inserts a new promotion. Returns model.ErrDuplicatePromoCode
	// when the code is taken.
	Create(ctx context.Context, p *model.Promotion) error

	// GetByID retrieves a promotion by ID. Returns nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Promotion, error)

	// GetByCode retrieves a promotion by promo code. Returns nil when absent.
	GetByCode(ctx context.Context, code string) (*model.Promotion, error)

	// List retrieves promotions matching the filter, with total count.
	List(ctx context.Context, filter model.PromotionFilter, page model.Page) ([]model.Promotion, int64, error)

	// ListEligible retrieves promotions that are eligible for use at the
	// given instant, optionally narrowed to one vehicle.
	ListEligible(ctx context.Context, vehicleID uuid.UUID, now time.Time) ([]model.Promotion, error)

	// Update replaces the mutable attributes of a promotion.
	Update(ctx context.Context, p *model.Promotion) error

	// SetStatus sets the stored status. Returns false when absent.
	SetStatus(ctx context.Context, id uuid.UUID, status model.PromotionStatus) (bool, error)

	// SetCode replaces the promo code. Returns model.ErrDuplicatePromoCode
	// when the new code is taken.
	SetCode(ctx context.Context, id uuid.UUID, code string) error

	// IncrementUsage increments usage_count by one as a single conditional
	// update that re-checks eligibility (status, date window, cap) at apply
	// time. Returns false when the precondition no longer holds.
	IncrementUsage(ctx context.Context, id uuid.UUID, now time.Time) (bool, error)

	// IncrementUsageTx is IncrementUsage within a transaction.
	IncrementUsageTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, now time.Time) (bool, error)

	// DecrementUsage decrements usage_count by one, floored at zero.
	DecrementUsage(ctx context.Context, id uuid.UUID) error

	// DecrementUsageTx is DecrementUsage within a transaction.
	DecrementUsageTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) error

	// CodeExists reports whether a promo code is already taken.
	CodeExists(ctx context.Context, code string) (bool, error)

	// Delete removes a promotion. Returns false when absent.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)

	// Analytics returns aggregate promotion counters.
	Analytics(ctx context.Context, now time.Time) (*model.PromotionAnalytics, error)
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// Create inserts a new order within the provided transaction.
	Create(ctx context.Context, tx pgx.Tx, o *model.Order) error

	// GetByID retrieves an order by its ID. Returns nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// List retrieves orders matching the filter, with total count.
	List(ctx context.Context, filter model.OrderFilter, page model.Page) ([]model.Order, int64, error)

	// SaveStatus persists status, history, and delivered_at within a
	// transaction. History is append-only; callers only ever add entries.
	SaveStatus(ctx context.Context, tx pgx.Tx, o *model.Order) error

	// UpdatePayment sets payment status and reference. No history entry.
	// Returns false when the order does not exist.
	UpdatePayment(ctx context.Context, id uuid.UUID, status model.PaymentStatus, reference string) (bool, error)

	// Stats returns aggregate order counters and revenue sums.
	Stats(ctx context.Context, now time.Time) (*model.OrderStats, error)
}

// ComplaintRepository defines the interface for complaint data access operations.
type ComplaintRepository interface {
	Create(ctx context.Context, c *model.Complaint) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Complaint, error)
	List(ctx context.Context, page model.Page) ([]model.Complaint, int64, error)
	Update(ctx context.Context, c *model.Complaint) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// ScanRepository defines the interface for scan data access operations.
type ScanRepository interface {
	Create(ctx context.Context, s *model.Scan) error
	ListByVehicle(ctx context.Context, vehicleID uuid.UUID, page model.Page) ([]model.Scan, int64, error)
	Stats(ctx context.Context, vehicleID uuid.UUID, now time.Time) (*model.ScanStats, error)
}
