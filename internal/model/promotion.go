package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PromotionStatus is the stored lifecycle status of a promotion. A stored
// Active status is not proof of usability: eligibility is always re-derived
// from the date window and usage counters.
type PromotionStatus string

const (
	PromotionActive   PromotionStatus = "Active"
	PromotionInactive PromotionStatus = "Inactive"
	PromotionExpired  PromotionStatus = "Expired"
)

// ValidPromotionStatus reports whether s is one of the enumerated statuses.
func ValidPromotionStatus(s PromotionStatus) bool {
	switch s {
	case PromotionActive, PromotionInactive, PromotionExpired:
		return true
	}
	return false
}

// UnlimitedUsage is the sentinel usage cap meaning no redemption limit.
const UnlimitedUsage = -1

// Promotion is a time-bounded, optionally usage-capped discount rule tied to
// a promo code and a set of eligible vehicles.
type Promotion struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	Name            string          `json:"name" db:"name"`
	Description     string          `json:"description" db:"description"`
	DiscountPercent decimal.Decimal `json:"discountPercent" db:"discount_percent"`
	DiscountAmount  decimal.Decimal `json:"discountAmount" db:"discount_amount"`
	StartDate       time.Time       `json:"startDate" db:"start_date"`
	EndDate         time.Time       `json:"endDate" db:"end_date"`
	VehicleIDs      []uuid.UUID     `json:"vehicleIds" db:"vehicle_ids"`
	Status          PromotionStatus `json:"status" db:"status"`
	PromoCode       string          `json:"promoCode" db:"promo_code"`
	UsageCount      int             `json:"usageCount" db:"usage_count"`
	UsageCap        int             `json:"usageCap" db:"usage_cap"`
	Conditions      string          `json:"conditions" db:"conditions"`
	CreatedAt       time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time       `json:"updatedAt" db:"updated_at"`
}

// AppliesTo reports whether the promotion's vehicle set contains vehicleID.
func (p *Promotion) AppliesTo(vehicleID uuid.UUID) bool {
	for _, id := range p.VehicleIDs {
		if id == vehicleID {
			return true
		}
	}
	return false
}

// PromotionSummary is the projection of a promotion attached to orders and
// promo-code responses.
type PromotionSummary struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	PromoCode  string    `json:"promoCode"`
	Conditions string    `json:"conditions,omitempty"`
}

// Summary returns the display projection of the promotion.
func (p *Promotion) Summary() PromotionSummary {
	return PromotionSummary{
		ID:         p.ID,
		Name:       p.Name,
		PromoCode:  p.PromoCode,
		Conditions: p.Conditions,
	}
}

// PromotionRequest is the payload for creating or updating a promotion.
type PromotionRequest struct {
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	DiscountAmount  decimal.Decimal `json:"discountAmount"`
	StartDate       time.Time       `json:"startDate"`
	EndDate         time.Time       `json:"endDate"`
	VehicleIDs      []uuid.UUID     `json:"vehicleIds"`
	UsageCap        *int            `json:"usageCap,omitempty"`
	Conditions      string          `json:"conditions"`
	PromoCode       string          `json:"promoCode,omitempty"`
}

// PromotionFilter narrows promotion list queries.
type PromotionFilter struct {
	Status    PromotionStatus
	VehicleID uuid.UUID
}

// PromoQuote is the price projection returned by promo-code validation and
// application.
type PromoQuote struct {
	Promotion     PromotionSummary `json:"promotion"`
	Vehicle       VehicleSummary   `json:"vehicle"`
	OriginalPrice decimal.Decimal  `json:"originalPrice"`
	ReducedPrice  decimal.Decimal  `json:"reducedPrice"`
	Savings       decimal.Decimal  `json:"savings"`
	UsageCount    int              `json:"usageCount,omitempty"`
	UsageCap      int              `json:"usageCap,omitempty"`
}

// PromotionStatusCount is one bucket of the per-status distribution.
type PromotionStatusCount struct {
	Status   PromotionStatus `json:"status"`
	Count    int64           `json:"count"`
	AvgUsage float64         `json:"avgUsage"`
}

// PromotionAnalytics aggregates promotion counters for the dashboard.
type PromotionAnalytics struct {
	Total              int64                  `json:"total"`
	Active             int64                  `json:"active"`
	Expired            int64                  `json:"expired"`
	CreatedLast30Days  int64                  `json:"createdLast30Days"`
	TopUsed            []Promotion            `json:"topUsed"`
	StatusDistribution []PromotionStatusCount `json:"statusDistribution"`
}
