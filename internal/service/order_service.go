package service

import (
	"context"
	"fmt"
	"time"

	"carhub/internal/model"
	"carhub/internal/promotion"
	"carhub/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// deliveryLeadTime is the delay between ordering and estimated delivery.
const deliveryLeadTime = 7 * 24 * time.Hour

type orderService struct {
	orderRepo   repository.OrderRepository
	vehicleRepo repository.VehicleRepository
	userRepo    repository.UserRepository
	promoRepo   repository.PromotionRepository
	engine      *promotion.Engine
	logger      zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	vehicleRepo repository.VehicleRepository,
	userRepo repository.UserRepository,
	promoRepo repository.PromotionRepository,
	engine *promotion.Engine,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		vehicleRepo: vehicleRepo,
		userRepo:    userRepo,
		promoRepo:   promoRepo,
		engine:      engine,
		logger:      logger.With().Str("service", "order").Logger(),
	}
}

func validateOrderRequest(req model.OrderRequest) error {
	if req.VehicleID == uuid.Nil {
		return model.ValidationError("vehicleId is required")
	}
	if req.UserID == uuid.Nil {
		return model.ValidationError("userId is required")
	}
	if !model.ValidPaymentMethod(req.PaymentMethod) {
		return model.ValidationError("invalid payment method")
	}
	if req.DeliveryAddress.Street == "" || req.DeliveryAddress.City == "" ||
		req.DeliveryAddress.PostalCode == "" || req.DeliveryAddress.Country == "" {
		return model.ValidationError("delivery address is incomplete")
	}
	if req.ContactInfo.FirstName == "" || req.ContactInfo.LastName == "" ||
		req.ContactInfo.Phone == "" || req.ContactInfo.Email == "" {
		return model.ValidationError("contact info is incomplete")
	}
	if req.PromotionID != nil && req.PromoCode != "" {
		return model.ValidationError("promotionId and promoCode are mutually exclusive")
	}
	return nil
}

// Create places an order. The vehicle reservation, the promotion redemption
// and the order insert commit or roll back together.
func (s *orderService) Create(ctx context.Context, req model.OrderRequest) (*model.OrderResponse, error) {
	if err := validateOrderRequest(req); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, model.NotFoundError("user")
	}
	if user.Blocked {
		return nil, model.NewDomainError(model.KindInvalidState, model.ErrCodeForbidden,
			"account is blocked")
	}

	vehicle, err := s.vehicleRepo.GetByID(ctx, req.VehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle == nil {
		return nil, model.NotFoundError("vehicle")
	}
	if vehicle.Status != model.VehicleAvailable {
		return nil, model.ErrVehicleUnavailable
	}

	var promoRef promotion.Ref
	if req.PromotionID != nil {
		promoRef = promotion.ByID(*req.PromotionID)
	} else if req.PromoCode != "" {
		promoRef = promotion.ByCode(req.PromoCode)
	}

	var promo *model.Promotion
	if !promoRef.IsZero() {
		promo, err = s.engine.Resolve(ctx, promoRef, req.VehicleID)
		if err != nil {
			return nil, err
		}
	}

	now := time.Now()
	o := buildOrder(req, vehicle, promo, now)

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	reserved, err := s.vehicleRepo.Reserve(ctx, tx, req.VehicleID)
	if err != nil {
		return nil, err
	}
	if !reserved {
		// Lost the race since the availability check above.
		return nil, model.ErrVehicleUnavailable
	}

	if promo != nil {
		applied, err := s.promoRepo.IncrementUsageTx(ctx, tx, promo.ID, now)
		if err != nil {
			return nil, err
		}
		if !applied {
			return nil, model.ErrUsageLimitReached
		}
	}

	if err := s.orderRepo.Create(ctx, tx, o); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit order: %w", err)
	}

	s.logger.Info().
		Str("order_id", o.ID.String()).
		Str("vehicle_id", o.VehicleID.String()).
		Str("user_id", o.UserID.String()).
		Str("price", o.DiscountedPrice.String()).
		Msg("order created")

	resp := &model.OrderResponse{Order: *o}
	vehicleSummary := vehicle.Summary()
	resp.Vehicle = &vehicleSummary
	userSummary := user.Summary()
	resp.User = &userSummary
	if promo != nil {
		promoSummary := promo.Summary()
		resp.Promotion = &promoSummary
	}
	return resp, nil
}

func buildOrder(req model.OrderRequest, vehicle *model.Vehicle, promo *model.Promotion, now time.Time) *model.Order {
	original := vehicle.Price
	discounted := original
	var promoID *uuid.UUID
	var usedCode *string

	if promo != nil {
		discounted = promotion.DiscountedPrice(original, promo)
		id := promo.ID
		promoID = &id
		code := promo.PromoCode
		usedCode = &code
	}

	return &model.Order{
		ID:                uuid.New(),
		UserID:            req.UserID,
		VehicleID:         req.VehicleID,
		PromotionID:       promoID,
		Status:            model.OrderPending,
		OriginalPrice:     original,
		DiscountedPrice:   discounted,
		DiscountAmount:    original.Sub(discounted),
		UsedPromoCode:     usedCode,
		DeliveryAddress:   req.DeliveryAddress,
		ContactInfo:       req.ContactInfo,
		PaymentMethod:     req.PaymentMethod,
		PaymentStatus:     model.PaymentPending,
		Notes:             req.Notes,
		OrderedAt:         now,
		EstimatedDelivery: now.Add(deliveryLeadTime),
		StatusHistory: []model.StatusChange{{
			Status:    model.OrderPending,
			Timestamp: now,
			Comment:   "Order created",
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *orderService) GetByID(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error) {
	o, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, model.NotFoundError("order")
	}
	return s.attach(ctx, o), nil
}

// attach decorates an order with display projections. Referenced rows may
// have been deleted since; the order itself is still returned.
func (s *orderService) attach(ctx context.Context, o *model.Order) *model.OrderResponse {
	resp := &model.OrderResponse{Order: *o}

	if v, err := s.vehicleRepo.GetByID(ctx, o.VehicleID); err == nil && v != nil {
		summary := v.Summary()
		resp.Vehicle = &summary
	}
	if u, err := s.userRepo.GetByID(ctx, o.UserID); err == nil && u != nil {
		summary := u.Summary()
		resp.User = &summary
	}
	if o.PromotionID != nil {
		if p, err := s.promoRepo.GetByID(ctx, *o.PromotionID); err == nil && p != nil {
			summary := p.Summary()
			resp.Promotion = &summary
		}
	}

	return resp
}

func (s *orderService) List(ctx context.Context, filter model.OrderFilter, page model.Page) ([]model.OrderResponse, *model.Pagination, error) {
	page = page.Normalize()

	if filter.Status != "" && !model.ValidOrderStatus(filter.Status) {
		return nil, nil, model.InvalidStatusError(string(filter.Status))
	}
	if filter.PaymentStatus != "" && !model.ValidPaymentStatus(filter.PaymentStatus) {
		return nil, nil, model.InvalidStatusError(string(filter.PaymentStatus))
	}

	orders, total, err := s.orderRepo.List(ctx, filter, page)
	if err != nil {
		return nil, nil, err
	}

	vehicleIDs := make([]uuid.UUID, 0, len(orders))
	seen := make(map[uuid.UUID]bool, len(orders))
	for _, o := range orders {
		if !seen[o.VehicleID] {
			seen[o.VehicleID] = true
			vehicleIDs = append(vehicleIDs, o.VehicleID)
		}
	}

	vehicles := make(map[uuid.UUID]model.VehicleSummary)
	if len(vehicleIDs) > 0 {
		vs, err := s.vehicleRepo.GetByIDs(ctx, vehicleIDs)
		if err != nil {
			return nil, nil, err
		}
		for _, v := range vs {
			vehicles[v.ID] = v.Summary()
		}
	}

	users := make(map[uuid.UUID]*model.UserSummary)
	responses := make([]model.OrderResponse, 0, len(orders))
	for _, o := range orders {
		resp := model.OrderResponse{Order: o}
		if summary, ok := vehicles[o.VehicleID]; ok {
			vs := summary
			resp.Vehicle = &vs
		}
		if summary, ok := users[o.UserID]; ok {
			resp.User = summary
		} else if u, err := s.userRepo.GetByID(ctx, o.UserID); err == nil && u != nil {
			us := u.Summary()
			users[o.UserID] = &us
			resp.User = &us
		}
		responses = append(responses, resp)
	}

	pagination := model.NewPagination(page, total)
	return responses, &pagination, nil
}

func (s *orderService) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus, comment string, actor *uuid.UUID) (*model.OrderResponse, error) {
	if !model.ValidOrderStatus(status) {
		return nil, model.InvalidStatusError(string(status))
	}

	o, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, model.NotFoundError("order")
	}

	return s.transition(ctx, o, status, comment, actor)
}

func (s *orderService) Cancel(ctx context.Context, id uuid.UUID, reason string, actor *uuid.UUID) (*model.OrderResponse, error) {
	o, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, model.NotFoundError("order")
	}
	if !o.Cancellable() {
		return nil, model.ErrNotCancellable
	}

	if reason == "" {
		reason = "Order cancelled"
	}
	return s.transition(ctx, o, model.OrderCancelled, reason, actor)
}

// transition moves the order to a new status and applies the side effects:
// a cancelled or rejected order frees its vehicle and returns its promotion
// usage, a delivered order marks its vehicle sold.
func (s *orderService) transition(ctx context.Context, o *model.Order, status model.OrderStatus, comment string, actor *uuid.UUID) (*model.OrderResponse, error) {
	previous := o.Status
	now := time.Now()

	o.Status = status
	o.StatusHistory = append(o.StatusHistory, model.StatusChange{
		Status:      status,
		Timestamp:   now,
		Comment:     comment,
		ActorUserID: actor,
	})
	if status == model.OrderDelivered && o.DeliveredAt == nil {
		o.DeliveredAt = &now
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := s.orderRepo.SaveStatus(ctx, tx, o); err != nil {
		return nil, err
	}
	if err := s.applySideEffects(ctx, tx, o, previous, status); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit status update: %w", err)
	}

	s.logger.Info().
		Str("order_id", o.ID.String()).
		Str("from", string(previous)).
		Str("to", string(status)).
		Msg("order status updated")

	return s.attach(ctx, o), nil
}

func (s *orderService) applySideEffects(ctx context.Context, tx pgx.Tx, o *model.Order, previous, next model.OrderStatus) error {
	released := func(st model.OrderStatus) bool {
		return st == model.OrderCancelled || st == model.OrderRejected
	}

	switch {
	case released(next) && !released(previous):
		if err := s.vehicleRepo.SetStatusTx(ctx, tx, o.VehicleID, model.VehicleAvailable); err != nil {
			return err
		}
		if o.PromotionID != nil {
			if err := s.promoRepo.DecrementUsageTx(ctx, tx, *o.PromotionID); err != nil {
				return err
			}
		}
	case next == model.OrderDelivered:
		if err := s.vehicleRepo.SetStatusTx(ctx, tx, o.VehicleID, model.VehicleSold); err != nil {
			return err
		}
	case released(previous) && !released(next):
		// Reopening a released order takes the vehicle back.
		if err := s.vehicleRepo.SetStatusTx(ctx, tx, o.VehicleID, model.VehicleReserved); err != nil {
			return err
		}
	}
	return nil
}

func (s *orderService) UpdatePayment(ctx context.Context, id uuid.UUID, status model.PaymentStatus, reference string) (*model.OrderResponse, error) {
	if !model.ValidPaymentStatus(status) {
		return nil, model.InvalidStatusError(string(status))
	}

	updated, err := s.orderRepo.UpdatePayment(ctx, id, status, reference)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, model.NotFoundError("order")
	}

	s.logger.Info().Str("order_id", id.String()).Str("payment_status", string(status)).
		Msg("payment status updated")

	return s.GetByID(ctx, id)
}

func (s *orderService) Stats(ctx context.Context) (*model.OrderStats, error) {
	stats, err := s.orderRepo.Stats(ctx, time.Now())
	if err != nil {
		return nil, err
	}
	// Revenue sums come back at arbitrary scale, present them at cents.
	stats.GrossRevenue = stats.GrossRevenue.Round(2)
	stats.NetRevenue = stats.NetRevenue.Round(2)
	stats.TotalSavings = stats.TotalSavings.Round(2)
	return stats, nil
}
