// Package service implements the business logic of the dealership backend.
package service

import (
	"context"

	"carhub/internal/model"

	"github.com/google/uuid"
)

// VehicleService defines the business operations on the vehicle inventory.
type VehicleService interface {
	// Create adds a vehicle to the inventory and assigns its QR payload.
	Create(ctx context.Context, req model.VehicleRequest) (*model.Vehicle, error)

	// GetByID retrieves a vehicle.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Vehicle, error)

	// List retrieves vehicles matching the filter.
	List(ctx context.Context, filter model.VehicleFilter, page model.Page) ([]model.Vehicle, *model.Pagination, error)

	// Update replaces the descriptive attributes of a vehicle.
	Update(ctx context.Context, id uuid.UUID, req model.VehicleRequest) (*model.Vehicle, error)

	// UpdateStatus sets the availability status.
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.VehicleStatus) (*model.Vehicle, error)

	// GenerateQR recomputes and stores the QR payload for a vehicle.
	GenerateQR(ctx context.Context, id uuid.UUID) (*model.Vehicle, error)

	// Delete removes a vehicle from the inventory.
	Delete(ctx context.Context, id uuid.UUID) error

	// Stats returns inventory counters grouped by status.
	Stats(ctx context.Context) (*model.VehicleStats, error)
}

// UserService defines account registration, authentication, and management.
type UserService interface {
	// Register creates an account with a hashed password.
	Register(ctx context.Context, req model.RegisterRequest) (*model.User, error)

	// Login verifies credentials and returns a signed bearer token.
	Login(ctx context.Context, req model.LoginRequest) (*model.LoginResponse, error)

	// GetByID retrieves a user.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)

	// List retrieves users, newest first.
	List(ctx context.Context, page model.Page) ([]model.User, *model.Pagination, error)

	// SetBlocked blocks or unblocks an account.
	SetBlocked(ctx context.Context, id uuid.UUID, blocked bool) (*model.User, error)

	// Delete soft-deletes an account. Its orders remain.
	Delete(ctx context.Context, id uuid.UUID) error
}

// PromotionService defines the business operations on promotions.
type PromotionService interface {
	// Create adds a promotion, generating a unique promo code when none is
	// supplied.
	Create(ctx context.Context, req model.PromotionRequest) (*model.Promotion, error)

	// GetByID retrieves a promotion.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Promotion, error)

	// List retrieves promotions matching the filter.
	List(ctx context.Context, filter model.PromotionFilter, page model.Page) ([]model.Promotion, *model.Pagination, error)

	// ListForVehicle retrieves the promotions currently redeemable for a
	// vehicle.
	ListForVehicle(ctx context.Context, vehicleID uuid.UUID) ([]model.Promotion, error)

	// Update replaces the mutable attributes of a promotion.
	Update(ctx context.Context, id uuid.UUID, req model.PromotionRequest) (*model.Promotion, error)

	// UpdateStatus moves the promotion between lifecycle statuses. An
	// expired promotion cannot be moved back to Active or Inactive.
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.PromotionStatus) (*model.Promotion, error)

	// RegenerateCode replaces the promo code with a fresh unique one.
	RegenerateCode(ctx context.Context, id uuid.UUID) (*model.Promotion, error)

	// ValidateCode checks a promo code against a vehicle and returns the
	// price quote without consuming usage.
	ValidateCode(ctx context.Context, code string, vehicleID uuid.UUID) (*model.PromoQuote, error)

	// ApplyCode redeems a promo code for a vehicle, consuming one usage,
	// and returns the resulting quote.
	ApplyCode(ctx context.Context, code string, vehicleID uuid.UUID) (*model.PromoQuote, error)

	// Delete removes a promotion. Existing orders keep their snapshot of it.
	Delete(ctx context.Context, id uuid.UUID) error

	// Analytics returns aggregate promotion counters.
	Analytics(ctx context.Context) (*model.PromotionAnalytics, error)
}

// OrderService defines the order lifecycle operations.
type OrderService interface {
	// Create places an order: it reserves the vehicle, redeems the optional
	// promotion, and computes the price snapshot, all atomically.
	Create(ctx context.Context, req model.OrderRequest) (*model.OrderResponse, error)

	// GetByID retrieves an order with its display projections.
	GetByID(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error)

	// List retrieves orders matching the filter.
	List(ctx context.Context, filter model.OrderFilter, page model.Page) ([]model.OrderResponse, *model.Pagination, error)

	// UpdateStatus sets the order status and appends a history entry,
	// propagating side effects to the vehicle.
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus, comment string, actor *uuid.UUID) (*model.OrderResponse, error)

	// Cancel cancels an order, releasing the vehicle and the promotion
	// usage it consumed.
	Cancel(ctx context.Context, id uuid.UUID, reason string, actor *uuid.UUID) (*model.OrderResponse, error)

	// UpdatePayment sets the payment status and optional reference.
	UpdatePayment(ctx context.Context, id uuid.UUID, status model.PaymentStatus, reference string) (*model.OrderResponse, error)

	// Stats returns aggregate order counters and revenue sums.
	Stats(ctx context.Context) (*model.OrderStats, error)
}

// ComplaintService defines the complaint ticket operations.
type ComplaintService interface {
	Create(ctx context.Context, req model.ComplaintRequest) (*model.Complaint, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Complaint, error)
	List(ctx context.Context, page model.Page) ([]model.Complaint, *model.Pagination, error)
	Update(ctx context.Context, id uuid.UUID, req model.ComplaintRequest) (*model.Complaint, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ScanService defines QR-code scan recording and reporting.
type ScanService interface {
	// Record logs a QR scan of a vehicle and returns the vehicle details.
	// Scans of unknown vehicles are recorded as failures.
	Record(ctx context.Context, req model.ScanRequest, ip, userAgent string) (*model.ScanResponse, error)

	// ListByVehicle retrieves the scan history of a vehicle.
	ListByVehicle(ctx context.Context, vehicleID uuid.UUID, page model.Page) ([]model.ScanResponse, *model.Pagination, error)

	// Stats returns scan counters for a vehicle.
	Stats(ctx context.Context, vehicleID uuid.UUID) (*model.ScanStats, error)
}
