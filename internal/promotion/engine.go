// Package promotion implements discount eligibility, price computation, and
// promo-code resolution for vehicle promotions.
package promotion

import (
	"context"
	"fmt"
	"strings"
	"time"

	"carhub/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Store is the subset of promotion persistence the engine reads from.
type Store interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Promotion, error)
	GetByCode(ctx context.Context, code string) (*model.Promotion, error)
	CodeExists(ctx context.Context, code string) (bool, error)
}

// Engine resolves promotion references and computes discounted prices.
type Engine struct {
	store  Store
	logger zerolog.Logger
	now    func() time.Time
}

// NewEngine creates a promotion engine backed by the given store.
func NewEngine(store Store, logger zerolog.Logger) *Engine {
	return &Engine{
		store:  store,
		logger: logger.With().Str("component", "promotion_engine").Logger(),
		now:    time.Now,
	}
}

// Ref identifies a promotion either by ID or by promo code. Exactly one of
// the two fields is set.
type Ref struct {
	ID   uuid.UUID
	Code string
}

// ByID builds a reference to a promotion by its ID.
func ByID(id uuid.UUID) Ref { return Ref{ID: id} }

// ByCode builds a reference to a promotion by its promo code.
func ByCode(code string) Ref { return Ref{Code: strings.ToUpper(strings.TrimSpace(code))} }

// IsZero reports whether the reference points at nothing.
func (r Ref) IsZero() bool { return r.ID == uuid.Nil && r.Code == "" }

// Eligible reports whether the promotion can be redeemed at the given
// instant. The stored status alone is never trusted: the date window and the
// usage cap are re-checked every time.
func Eligible(p *model.Promotion, now time.Time) bool {
	if p.Status != model.PromotionActive {
		return false
	}
	if now.Before(p.StartDate) || now.After(p.EndDate) {
		return false
	}
	if p.UsageCap != model.UnlimitedUsage && p.UsageCount >= p.UsageCap {
		return false
	}
	return true
}

// DiscountedPrice applies the promotion to a price. The percentage discount
// is applied first, then the flat amount, and the result is floored at zero
// and rounded to two decimal places.
func DiscountedPrice(price decimal.Decimal, p *model.Promotion) decimal.Decimal {
	reduced := price

	if p.DiscountPercent.IsPositive() {
		factor := decimal.NewFromInt(100).Sub(p.DiscountPercent).Div(decimal.NewFromInt(100))
		reduced = reduced.Mul(factor)
	}
	if p.DiscountAmount.IsPositive() {
		reduced = reduced.Sub(p.DiscountAmount)
	}
	if reduced.IsNegative() {
		reduced = decimal.Zero
	}

	return reduced.Round(2)
}

// Quote builds the price projection for applying p to v.
func Quote(p *model.Promotion, v *model.Vehicle) model.PromoQuote {
	reduced := DiscountedPrice(v.Price, p)
	return model.PromoQuote{
		Promotion:     p.Summary(),
		Vehicle:       v.Summary(),
		OriginalPrice: v.Price,
		ReducedPrice:  reduced,
		Savings:       v.Price.Sub(reduced),
		UsageCount:    p.UsageCount,
		UsageCap:      p.UsageCap,
	}
}

// Resolve loads the referenced promotion and verifies it can be redeemed for
// the given vehicle right now. A missing promotion, an ineligible one, and
// one that does not cover the vehicle each map to a distinct domain error.
func (e *Engine) Resolve(ctx context.Context, ref Ref, vehicleID uuid.UUID) (*model.Promotion, error) {
	var (
		p   *model.Promotion
		err error
	)
	if ref.Code != "" {
		p, err = e.store.GetByCode(ctx, ref.Code)
	} else {
		p, err = e.store.GetByID(ctx, ref.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load promotion: %w", err)
	}
	if p == nil {
		return nil, model.NotFoundError("promotion")
	}

	now := e.now()
	if !Eligible(p, now) {
		if p.UsageCap != model.UnlimitedUsage && p.UsageCount >= p.UsageCap {
			e.logger.Debug().Str("promo_code", p.PromoCode).Msg("promotion usage cap reached")
			return nil, model.ErrUsageLimitReached
		}
		e.logger.Debug().Str("promo_code", p.PromoCode).Str("status", string(p.Status)).
			Msg("promotion not eligible")
		return nil, model.ErrPromoInactive
	}

	if vehicleID != uuid.Nil && !p.AppliesTo(vehicleID) {
		e.logger.Debug().Str("promo_code", p.PromoCode).Str("vehicle_id", vehicleID.String()).
			Msg("promotion does not cover vehicle")
		return nil, model.ErrPromoNotApplicable
	}

	return p, nil
}
