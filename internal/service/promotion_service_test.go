package service

import (
	"context"
	"testing"
	"time"

	"carhub/internal/model"
	"carhub/internal/promotion"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type promoFixture struct {
	promoRepo   *mockPromotionRepo
	vehicleRepo *mockVehicleRepo
	service     PromotionService
}

func newPromoFixture() *promoFixture {
	f := &promoFixture{
		promoRepo:   new(mockPromotionRepo),
		vehicleRepo: new(mockVehicleRepo),
	}
	engine := promotion.NewEngine(f.promoRepo, zerolog.Nop())
	f.service = NewPromotionService(f.promoRepo, f.vehicleRepo, engine, zerolog.Nop())
	return f
}

func fixturePromotionRequest() model.PromotionRequest {
	return model.PromotionRequest{
		Name:            "Winter Sale",
		DiscountPercent: decimal.NewFromInt(15),
		StartDate:       time.Now().Add(-time.Hour),
		EndDate:         time.Now().Add(30 * 24 * time.Hour),
		VehicleIDs:      []uuid.UUID{uuid.New()},
	}
}

// expectVehicleRefs satisfies the referenced-vehicle lookup for a request.
func (f *promoFixture) expectVehicleRefs(ids []uuid.UUID) {
	vs := make([]model.Vehicle, 0, len(ids))
	for _, id := range ids {
		vs = append(vs, model.Vehicle{ID: id, Status: model.VehicleAvailable})
	}
	f.vehicleRepo.On("GetByIDs", mock.Anything, ids).Return(vs, nil)
}

func TestPromotionCreate(t *testing.T) {
	t.Run("generates a code when none supplied", func(t *testing.T) {
		f := newPromoFixture()
		req := fixturePromotionRequest()

		f.expectVehicleRefs(req.VehicleIDs)
		f.promoRepo.On("CodeExists", mock.Anything, mock.AnythingOfType("string")).Return(false, nil)
		f.promoRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.Promotion")).Return(nil)

		p, err := f.service.Create(context.Background(), req)

		require.NoError(t, err)
		assert.Regexp(t, "^[A-Z0-9]{8}$", p.PromoCode)
		assert.Equal(t, model.PromotionActive, p.Status)
		assert.Equal(t, model.UnlimitedUsage, p.UsageCap)
		assert.Zero(t, p.UsageCount)
	})

	t.Run("uppercases a supplied code", func(t *testing.T) {
		f := newPromoFixture()
		req := fixturePromotionRequest()
		req.PromoCode = "winter15"

		f.expectVehicleRefs(req.VehicleIDs)
		f.promoRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.Promotion")).Return(nil)

		p, err := f.service.Create(context.Background(), req)

		require.NoError(t, err)
		assert.Equal(t, "WINTER15", p.PromoCode)
		f.promoRepo.AssertNotCalled(t, "CodeExists", mock.Anything, mock.Anything)
	})

	t.Run("propagates duplicate code conflict", func(t *testing.T) {
		f := newPromoFixture()
		req := fixturePromotionRequest()
		req.PromoCode = "TAKEN15"

		f.expectVehicleRefs(req.VehicleIDs)
		f.promoRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.Promotion")).
			Return(model.ErrDuplicatePromoCode)

		_, err := f.service.Create(context.Background(), req)

		assert.ErrorIs(t, err, model.ErrDuplicatePromoCode)
	})

	t.Run("rejects promotions without any discount", func(t *testing.T) {
		f := newPromoFixture()
		req := fixturePromotionRequest()
		req.DiscountPercent = decimal.Zero

		_, err := f.service.Create(context.Background(), req)

		var domainErr *model.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, model.KindValidationFailed, domainErr.Kind)
	})

	t.Run("rejects inverted date window", func(t *testing.T) {
		f := newPromoFixture()
		req := fixturePromotionRequest()
		req.EndDate = req.StartDate.Add(-time.Hour)

		_, err := f.service.Create(context.Background(), req)

		var domainErr *model.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, model.KindValidationFailed, domainErr.Kind)
	})

	t.Run("rejects percent above one hundred", func(t *testing.T) {
		f := newPromoFixture()
		req := fixturePromotionRequest()
		req.DiscountPercent = decimal.NewFromInt(101)

		_, err := f.service.Create(context.Background(), req)

		assert.Error(t, err)
	})

	t.Run("rejects a window that already ended", func(t *testing.T) {
		f := newPromoFixture()
		req := fixturePromotionRequest()
		req.StartDate = time.Now().Add(-48 * time.Hour)
		req.EndDate = time.Now().Add(-24 * time.Hour)

		_, err := f.service.Create(context.Background(), req)

		var domainErr *model.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, model.KindValidationFailed, domainErr.Kind)
		f.promoRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("rejects a malformed supplied code", func(t *testing.T) {
		f := newPromoFixture()
		req := fixturePromotionRequest()
		req.PromoCode = "ab!"

		_, err := f.service.Create(context.Background(), req)

		var domainErr *model.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, model.KindValidationFailed, domainErr.Kind)
		f.promoRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("rejects references to unknown vehicles", func(t *testing.T) {
		f := newPromoFixture()
		req := fixturePromotionRequest()

		f.vehicleRepo.On("GetByIDs", mock.Anything, req.VehicleIDs).Return([]model.Vehicle{}, nil)

		_, err := f.service.Create(context.Background(), req)

		var domainErr *model.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, model.KindValidationFailed, domainErr.Kind)
		f.promoRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestPromotionUpdateStatus(t *testing.T) {
	t.Run("expired promotion cannot be reactivated", func(t *testing.T) {
		f := newPromoFixture()
		p := &model.Promotion{ID: uuid.New(), Status: model.PromotionExpired}

		f.promoRepo.On("GetByID", mock.Anything, p.ID).Return(p, nil)

		_, err := f.service.UpdateStatus(context.Background(), p.ID, model.PromotionActive)

		var domainErr *model.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, model.KindInvalidState, domainErr.Kind)
		f.promoRepo.AssertNotCalled(t, "SetStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("active promotion can be deactivated", func(t *testing.T) {
		f := newPromoFixture()
		p := &model.Promotion{ID: uuid.New(), Status: model.PromotionActive}

		f.promoRepo.On("GetByID", mock.Anything, p.ID).Return(p, nil)
		f.promoRepo.On("SetStatus", mock.Anything, p.ID, model.PromotionInactive).Return(true, nil)

		got, err := f.service.UpdateStatus(context.Background(), p.ID, model.PromotionInactive)

		require.NoError(t, err)
		assert.Equal(t, model.PromotionInactive, got.Status)
	})
}

func TestPromotionValidateCode(t *testing.T) {
	vehicle := fixtureVehicle(20000)
	promo := &model.Promotion{
		ID:              uuid.New(),
		Name:            "Ten Off",
		DiscountPercent: decimal.NewFromInt(10),
		StartDate:       time.Now().Add(-time.Hour),
		EndDate:         time.Now().Add(time.Hour),
		VehicleIDs:      []uuid.UUID{vehicle.ID},
		Status:          model.PromotionActive,
		PromoCode:       "TEN",
		UsageCap:        model.UnlimitedUsage,
	}

	t.Run("returns quote without consuming usage", func(t *testing.T) {
		f := newPromoFixture()

		f.vehicleRepo.On("GetByID", mock.Anything, vehicle.ID).Return(vehicle, nil)
		f.promoRepo.On("GetByCode", mock.Anything, "TEN").Return(promo, nil)

		quote, err := f.service.ValidateCode(context.Background(), "ten", vehicle.ID)

		require.NoError(t, err)
		assert.True(t, quote.OriginalPrice.Equal(decimal.NewFromInt(20000)))
		assert.True(t, quote.ReducedPrice.Equal(decimal.NewFromInt(18000)))
		assert.True(t, quote.Savings.Equal(decimal.NewFromInt(2000)))
		f.promoRepo.AssertNotCalled(t, "IncrementUsage", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("reserved vehicle cannot be quoted", func(t *testing.T) {
		f := newPromoFixture()
		reserved := fixtureVehicle(1000)
		reserved.Status = model.VehicleReserved

		f.vehicleRepo.On("GetByID", mock.Anything, reserved.ID).Return(reserved, nil)

		_, err := f.service.ValidateCode(context.Background(), "TEN", reserved.ID)

		assert.ErrorIs(t, err, model.ErrVehicleUnavailable)
		f.promoRepo.AssertNotCalled(t, "GetByCode", mock.Anything, mock.Anything)
	})

	t.Run("sold vehicle cannot redeem a code", func(t *testing.T) {
		f := newPromoFixture()
		sold := fixtureVehicle(1000)
		sold.Status = model.VehicleSold

		f.vehicleRepo.On("GetByID", mock.Anything, sold.ID).Return(sold, nil)

		_, err := f.service.ApplyCode(context.Background(), "TEN", sold.ID)

		assert.ErrorIs(t, err, model.ErrVehicleUnavailable)
		f.promoRepo.AssertNotCalled(t, "IncrementUsage", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown vehicle is not found", func(t *testing.T) {
		f := newPromoFixture()
		id := uuid.New()

		f.vehicleRepo.On("GetByID", mock.Anything, id).Return(nil, nil)

		_, err := f.service.ValidateCode(context.Background(), "TEN", id)

		var domainErr *model.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, model.KindNotFound, domainErr.Kind)
	})
}

func TestPromotionApplyCode(t *testing.T) {
	vehicle := fixtureVehicle(20000)
	makePromo := func() *model.Promotion {
		return &model.Promotion{
			ID:              uuid.New(),
			DiscountPercent: decimal.NewFromInt(10),
			StartDate:       time.Now().Add(-time.Hour),
			EndDate:         time.Now().Add(time.Hour),
			VehicleIDs:      []uuid.UUID{vehicle.ID},
			Status:          model.PromotionActive,
			PromoCode:       "TEN",
			UsageCap:        5,
			UsageCount:      2,
		}
	}

	t.Run("consumes one usage", func(t *testing.T) {
		f := newPromoFixture()
		promo := makePromo()

		f.vehicleRepo.On("GetByID", mock.Anything, vehicle.ID).Return(vehicle, nil)
		f.promoRepo.On("GetByCode", mock.Anything, "TEN").Return(promo, nil)
		f.promoRepo.On("IncrementUsage", mock.Anything, promo.ID, mock.AnythingOfType("time.Time")).Return(true, nil)

		quote, err := f.service.ApplyCode(context.Background(), "TEN", vehicle.ID)

		require.NoError(t, err)
		assert.Equal(t, 3, quote.UsageCount)
		f.promoRepo.AssertExpectations(t)
	})

	t.Run("loses the cap race", func(t *testing.T) {
		f := newPromoFixture()
		promo := makePromo()

		f.vehicleRepo.On("GetByID", mock.Anything, vehicle.ID).Return(vehicle, nil)
		f.promoRepo.On("GetByCode", mock.Anything, "TEN").Return(promo, nil)
		f.promoRepo.On("IncrementUsage", mock.Anything, promo.ID, mock.AnythingOfType("time.Time")).Return(false, nil)

		_, err := f.service.ApplyCode(context.Background(), "TEN", vehicle.ID)

		assert.ErrorIs(t, err, model.ErrUsageLimitReached)
	})
}

func TestPromotionRegenerateCode(t *testing.T) {
	f := newPromoFixture()
	p := &model.Promotion{ID: uuid.New(), Status: model.PromotionActive, PromoCode: "OLD"}

	f.promoRepo.On("GetByID", mock.Anything, p.ID).Return(p, nil)
	f.promoRepo.On("CodeExists", mock.Anything, mock.AnythingOfType("string")).Return(false, nil)
	f.promoRepo.On("SetCode", mock.Anything, p.ID, mock.AnythingOfType("string")).Return(nil)

	got, err := f.service.RegenerateCode(context.Background(), p.ID)

	require.NoError(t, err)
	assert.NotEqual(t, "OLD", got.PromoCode)
	assert.Regexp(t, "^[A-Z0-9]{8}$", got.PromoCode)
}
