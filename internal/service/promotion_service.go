package service

import (
	"context"
	"regexp"
	"strings"
	"time"

	"carhub/internal/model"
	"carhub/internal/promotion"
	"carhub/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type promotionService struct {
	promoRepo   repository.PromotionRepository
	vehicleRepo repository.VehicleRepository
	engine      *promotion.Engine
	logger      zerolog.Logger
}

// NewPromotionService creates a new promotion service.
func NewPromotionService(
	promoRepo repository.PromotionRepository,
	vehicleRepo repository.VehicleRepository,
	engine *promotion.Engine,
	logger zerolog.Logger,
) PromotionService {
	return &promotionService{
		promoRepo:   promoRepo,
		vehicleRepo: vehicleRepo,
		engine:      engine,
		logger:      logger.With().Str("service", "promotion").Logger(),
	}
}

var (
	hundred          = decimal.NewFromInt(100)
	promoCodePattern = regexp.MustCompile(`^[A-Z0-9]{6,10}$`)
)

func validatePromotionRequest(req model.PromotionRequest) error {
	if req.Name == "" {
		return model.ValidationError("name is required")
	}
	if !req.EndDate.After(req.StartDate) {
		return model.ValidationError("end date must be after start date")
	}
	if req.DiscountPercent.IsNegative() || req.DiscountPercent.GreaterThan(hundred) {
		return model.ValidationError("discount percent must be between 0 and 100")
	}
	if req.DiscountAmount.IsNegative() {
		return model.ValidationError("discount amount cannot be negative")
	}
	if req.DiscountPercent.IsZero() && req.DiscountAmount.IsZero() {
		return model.ValidationError("promotion must carry a percent or a flat discount")
	}
	if req.UsageCap != nil && *req.UsageCap != model.UnlimitedUsage && *req.UsageCap < 1 {
		return model.ValidationError("usage cap must be positive or unlimited")
	}
	return nil
}

// checkVehicleRefs verifies that every referenced vehicle exists.
func (s *promotionService) checkVehicleRefs(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	vs, err := s.vehicleRepo.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}
	found := make(map[uuid.UUID]bool, len(vs))
	for _, v := range vs {
		found[v.ID] = true
	}
	for _, id := range ids {
		if !found[id] {
			return model.ValidationError("referenced vehicle " + id.String() + " does not exist")
		}
	}
	return nil
}

func (s *promotionService) Create(ctx context.Context, req model.PromotionRequest) (*model.Promotion, error) {
	if err := validatePromotionRequest(req); err != nil {
		return nil, err
	}
	if !req.EndDate.After(time.Now()) {
		return nil, model.ValidationError("end date must be in the future")
	}

	code := strings.ToUpper(strings.TrimSpace(req.PromoCode))
	if code != "" && !promoCodePattern.MatchString(code) {
		return nil, model.ValidationError("promo code must be 6 to 10 uppercase letters or digits")
	}

	if err := s.checkVehicleRefs(ctx, req.VehicleIDs); err != nil {
		return nil, err
	}

	if code == "" {
		generated, err := s.engine.GenerateUniqueCode(ctx)
		if err != nil {
			return nil, err
		}
		code = generated
	}

	usageCap := model.UnlimitedUsage
	if req.UsageCap != nil {
		usageCap = *req.UsageCap
	}

	now := time.Now()
	p := &model.Promotion{
		ID:              uuid.New(),
		Name:            req.Name,
		Description:     req.Description,
		DiscountPercent: req.DiscountPercent,
		DiscountAmount:  req.DiscountAmount.Round(2),
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		VehicleIDs:      req.VehicleIDs,
		Status:          model.PromotionActive,
		PromoCode:       code,
		UsageCap:        usageCap,
		Conditions:      req.Conditions,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.promoRepo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info().Str("promotion_id", p.ID.String()).Str("promo_code", p.PromoCode).
		Msg("promotion created")

	return p, nil
}

func (s *promotionService) GetByID(ctx context.Context, id uuid.UUID) (*model.Promotion, error) {
	p, err := s.promoRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, model.NotFoundError("promotion")
	}
	return p, nil
}

func (s *promotionService) List(ctx context.Context, filter model.PromotionFilter, page model.Page) ([]model.Promotion, *model.Pagination, error) {
	page = page.Normalize()

	if filter.Status != "" && !model.ValidPromotionStatus(filter.Status) {
		return nil, nil, model.InvalidStatusError(string(filter.Status))
	}

	promotions, total, err := s.promoRepo.List(ctx, filter, page)
	if err != nil {
		return nil, nil, err
	}

	pagination := model.NewPagination(page, total)
	return promotions, &pagination, nil
}

func (s *promotionService) ListForVehicle(ctx context.Context, vehicleID uuid.UUID) ([]model.Promotion, error) {
	v, err := s.vehicleRepo.GetByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, model.NotFoundError("vehicle")
	}
	return s.promoRepo.ListEligible(ctx, vehicleID, time.Now())
}

func (s *promotionService) Update(ctx context.Context, id uuid.UUID, req model.PromotionRequest) (*model.Promotion, error) {
	if err := validatePromotionRequest(req); err != nil {
		return nil, err
	}
	if err := s.checkVehicleRefs(ctx, req.VehicleIDs); err != nil {
		return nil, err
	}

	p, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	p.Name = req.Name
	p.Description = req.Description
	p.DiscountPercent = req.DiscountPercent
	p.DiscountAmount = req.DiscountAmount.Round(2)
	p.StartDate = req.StartDate
	p.EndDate = req.EndDate
	p.VehicleIDs = req.VehicleIDs
	p.Conditions = req.Conditions
	if req.UsageCap != nil {
		p.UsageCap = *req.UsageCap
	}
	p.UpdatedAt = time.Now()

	if err := s.promoRepo.Update(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}

func (s *promotionService) UpdateStatus(ctx context.Context, id uuid.UUID, status model.PromotionStatus) (*model.Promotion, error) {
	if !model.ValidPromotionStatus(status) {
		return nil, model.InvalidStatusError(string(status))
	}

	p, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Expiry is terminal.
	if p.Status == model.PromotionExpired && status != model.PromotionExpired {
		return nil, model.NewDomainError(model.KindInvalidState, model.ErrCodeInvalidStatus,
			"an expired promotion cannot be reactivated")
	}

	if _, err := s.promoRepo.SetStatus(ctx, id, status); err != nil {
		return nil, err
	}

	s.logger.Info().Str("promotion_id", id.String()).Str("status", string(status)).
		Msg("promotion status updated")

	p.Status = status
	return p, nil
}

func (s *promotionService) RegenerateCode(ctx context.Context, id uuid.UUID) (*model.Promotion, error) {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	code, err := s.engine.GenerateUniqueCode(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.promoRepo.SetCode(ctx, id, code); err != nil {
		return nil, err
	}

	s.logger.Info().Str("promotion_id", id.String()).Str("promo_code", code).
		Msg("promo code regenerated")

	p.PromoCode = code
	return p, nil
}

func (s *promotionService) ValidateCode(ctx context.Context, code string, vehicleID uuid.UUID) (*model.PromoQuote, error) {
	v, err := s.vehicleRepo.GetByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, model.NotFoundError("vehicle")
	}
	if v.Status != model.VehicleAvailable {
		return nil, model.ErrVehicleUnavailable
	}

	p, err := s.engine.Resolve(ctx, promotion.ByCode(code), vehicleID)
	if err != nil {
		return nil, err
	}

	quote := promotion.Quote(p, v)
	return &quote, nil
}

func (s *promotionService) ApplyCode(ctx context.Context, code string, vehicleID uuid.UUID) (*model.PromoQuote, error) {
	quote, err := s.ValidateCode(ctx, code, vehicleID)
	if err != nil {
		return nil, err
	}

	// The increment re-checks eligibility so redemption over the cap loses
	// the race rather than overshooting it.
	applied, err := s.promoRepo.IncrementUsage(ctx, quote.Promotion.ID, time.Now())
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, model.ErrUsageLimitReached
	}

	quote.UsageCount++
	s.logger.Info().Str("promotion_id", quote.Promotion.ID.String()).
		Str("promo_code", quote.Promotion.PromoCode).
		Msg("promo code applied")

	return quote, nil
}

func (s *promotionService) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.promoRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return model.NotFoundError("promotion")
	}

	s.logger.Info().Str("promotion_id", id.String()).Msg("promotion deleted")

	return nil
}

func (s *promotionService) Analytics(ctx context.Context) (*model.PromotionAnalytics, error) {
	return s.promoRepo.Analytics(ctx, time.Now())
}
