package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the fulfilment status of an order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "Pending"
	OrderConfirmed OrderStatus = "Confirmed"
	OrderPreparing OrderStatus = "Preparing"
	OrderShipped   OrderStatus = "Shipped"
	OrderDelivered OrderStatus = "Delivered"
	OrderCancelled OrderStatus = "Cancelled"
	OrderRejected  OrderStatus = "Rejected"
)

// ValidOrderStatus reports whether s is one of the seven enumerated statuses.
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderPreparing, OrderShipped,
		OrderDelivered, OrderCancelled, OrderRejected:
		return true
	}
	return false
}

// PaymentStatus is the payment state of an order.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "Pending"
	PaymentPaid     PaymentStatus = "Paid"
	PaymentFailed   PaymentStatus = "Failed"
	PaymentRefunded PaymentStatus = "Refunded"
)

// ValidPaymentStatus reports whether s is one of the enumerated values.
func ValidPaymentStatus(s PaymentStatus) bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

// PaymentMethod is the payment instrument chosen at order time.
type PaymentMethod string

const (
	PaymentCard         PaymentMethod = "Card"
	PaymentBankTransfer PaymentMethod = "BankTransfer"
	PaymentCheque       PaymentMethod = "Cheque"
	PaymentCash         PaymentMethod = "Cash"
)

// ValidPaymentMethod reports whether m is one of the enumerated values.
func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentCard, PaymentBankTransfer, PaymentCheque, PaymentCash:
		return true
	}
	return false
}

// DeliveryAddress is where the vehicle will be delivered.
type DeliveryAddress struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// ContactInfo identifies the person to contact about the order.
type ContactInfo struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
}

// StatusChange is one append-only entry in an order's status history.
// Entries are never edited or removed.
type StatusChange struct {
	Status      OrderStatus `json:"status"`
	Timestamp   time.Time   `json:"timestamp"`
	Comment     string      `json:"comment,omitempty"`
	ActorUserID *uuid.UUID  `json:"actorUserId,omitempty"`
}

// Order is a customer's request to purchase one vehicle. It weakly
// references vehicle, user and promotion by id; those entities outlive
// the order.
type Order struct {
	ID                uuid.UUID       `json:"id" db:"id"`
	UserID            uuid.UUID       `json:"userId" db:"user_id"`
	VehicleID         uuid.UUID       `json:"vehicleId" db:"vehicle_id"`
	PromotionID       *uuid.UUID      `json:"promotionId,omitempty" db:"promotion_id"`
	Status            OrderStatus     `json:"status" db:"status"`
	OriginalPrice     decimal.Decimal `json:"originalPrice" db:"original_price"`
	DiscountedPrice   decimal.Decimal `json:"discountedPrice" db:"discounted_price"`
	DiscountAmount    decimal.Decimal `json:"discountAmount" db:"discount_amount"`
	UsedPromoCode     *string         `json:"usedPromoCode,omitempty" db:"used_promo_code"`
	DeliveryAddress   DeliveryAddress `json:"deliveryAddress" db:"delivery_address"`
	ContactInfo       ContactInfo     `json:"contactInfo" db:"contact_info"`
	PaymentMethod     PaymentMethod   `json:"paymentMethod" db:"payment_method"`
	PaymentStatus     PaymentStatus   `json:"paymentStatus" db:"payment_status"`
	PaymentReference  string          `json:"paymentReference,omitempty" db:"payment_reference"`
	Notes             string          `json:"notes,omitempty" db:"notes"`
	OrderedAt         time.Time       `json:"orderedAt" db:"ordered_at"`
	EstimatedDelivery time.Time       `json:"estimatedDelivery" db:"estimated_delivery"`
	DeliveredAt       *time.Time      `json:"deliveredAt,omitempty" db:"delivered_at"`
	StatusHistory     []StatusChange  `json:"statusHistory" db:"status_history"`
	CreatedAt         time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time       `json:"updatedAt" db:"updated_at"`
}

// Cancellable reports whether the order may still be cancelled.
func (o *Order) Cancellable() bool {
	switch o.Status {
	case OrderDelivered, OrderCancelled, OrderRejected:
		return false
	}
	return true
}

// OrderRequest is the payload for creating an order. Exactly one of
// PromotionID or PromoCode may be set; both absent means no discount.
type OrderRequest struct {
	VehicleID       uuid.UUID       `json:"vehicleId"`
	UserID          uuid.UUID       `json:"userId"`
	PromotionID     *uuid.UUID      `json:"promotionId,omitempty"`
	PromoCode       string          `json:"promoCode,omitempty"`
	DeliveryAddress DeliveryAddress `json:"deliveryAddress"`
	ContactInfo     ContactInfo     `json:"contactInfo"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod"`
	Notes           string          `json:"notes,omitempty"`
}

// OrderResponse is an order with its display projections attached.
type OrderResponse struct {
	Order
	Vehicle   *VehicleSummary   `json:"vehicle,omitempty"`
	User      *UserSummary      `json:"user,omitempty"`
	Promotion *PromotionSummary `json:"promotion,omitempty"`
}

// OrderFilter narrows order list queries.
type OrderFilter struct {
	Status        OrderStatus
	PaymentStatus PaymentStatus
	UserID        uuid.UUID
	VehicleID     uuid.UUID
}

// OrderStatusCount is one bucket of the per-status order distribution.
type OrderStatusCount struct {
	Status OrderStatus `json:"status"`
	Count  int64       `json:"count"`
}

// OrderStats aggregates order counters and revenue for the dashboard.
type OrderStats struct {
	Total        int64              `json:"total"`
	Today        int64              `json:"today"`
	ThisWeek     int64              `json:"thisWeek"`
	ThisMonth    int64              `json:"thisMonth"`
	GrossRevenue decimal.Decimal    `json:"grossRevenue"`
	NetRevenue   decimal.Decimal    `json:"netRevenue"`
	TotalSavings decimal.Decimal    `json:"totalSavings"`
	ByStatus     []OrderStatusCount `json:"byStatus"`
}
