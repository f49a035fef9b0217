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

type orderFixture struct {
	orderRepo   *mockOrderRepo
	vehicleRepo *mockVehicleRepo
	userRepo    *mockUserRepo
	promoRepo   *mockPromotionRepo
	tx          *mockTx
	service     OrderService
}

func newOrderFixture() *orderFixture {
	f := &orderFixture{
		orderRepo:   new(mockOrderRepo),
		vehicleRepo: new(mockVehicleRepo),
		userRepo:    new(mockUserRepo),
		promoRepo:   new(mockPromotionRepo),
		tx:          &mockTx{},
	}
	engine := promotion.NewEngine(f.promoRepo, zerolog.Nop())
	f.service = NewOrderService(f.orderRepo, f.vehicleRepo, f.userRepo, f.promoRepo, engine, zerolog.Nop())
	return f
}

func fixtureUser() *model.User {
	return &model.User{
		ID:       uuid.New(),
		Username: "alice",
		Email:    "alice@example.com",
		Role:     model.RoleClient,
	}
}

func fixtureVehicle(price int64) *model.Vehicle {
	return &model.Vehicle{
		ID:     uuid.New(),
		Make:   "Peugeot",
		Model:  "208",
		Year:   2023,
		Price:  decimal.NewFromInt(price),
		Status: model.VehicleAvailable,
	}
}

func fixtureOrderRequest(user *model.User, vehicle *model.Vehicle) model.OrderRequest {
	return model.OrderRequest{
		VehicleID: vehicle.ID,
		UserID:    user.ID,
		DeliveryAddress: model.DeliveryAddress{
			Street:     "1 rue de la Paix",
			City:       "Paris",
			PostalCode: "75002",
			Country:    "France",
		},
		ContactInfo: model.ContactInfo{
			FirstName: "Alice",
			LastName:  "Martin",
			Phone:     "+33600000000",
			Email:     "alice@example.com",
		},
		PaymentMethod: model.PaymentCard,
	}
}

func TestOrderCreate(t *testing.T) {
	t.Run("creates order without promotion", func(t *testing.T) {
		f := newOrderFixture()
		user := fixtureUser()
		vehicle := fixtureVehicle(15000)
		req := fixtureOrderRequest(user, vehicle)

		f.userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)
		f.vehicleRepo.On("GetByID", mock.Anything, vehicle.ID).Return(vehicle, nil)
		f.orderRepo.On("BeginTx", mock.Anything).Return(f.tx, nil)
		f.vehicleRepo.On("Reserve", mock.Anything, f.tx, vehicle.ID).Return(true, nil)
		f.orderRepo.On("Create", mock.Anything, f.tx, mock.AnythingOfType("*model.Order")).Return(nil)

		resp, err := f.service.Create(context.Background(), req)

		require.NoError(t, err)
		assert.Equal(t, model.OrderPending, resp.Status)
		assert.Equal(t, model.PaymentPending, resp.PaymentStatus)
		assert.True(t, resp.OriginalPrice.Equal(decimal.NewFromInt(15000)))
		assert.True(t, resp.DiscountedPrice.Equal(decimal.NewFromInt(15000)))
		assert.True(t, resp.DiscountAmount.IsZero())
		assert.Nil(t, resp.PromotionID)

		require.Len(t, resp.StatusHistory, 1)
		assert.Equal(t, model.OrderPending, resp.StatusHistory[0].Status)
		assert.Equal(t, "Order created", resp.StatusHistory[0].Comment)
		assert.WithinDuration(t, time.Now().AddDate(0, 0, 7), resp.EstimatedDelivery, time.Minute)

		assert.True(t, f.tx.committed)
		f.orderRepo.AssertExpectations(t)
		f.vehicleRepo.AssertExpectations(t)
	})

	t.Run("applies promo code to price", func(t *testing.T) {
		f := newOrderFixture()
		user := fixtureUser()
		vehicle := fixtureVehicle(1000)
		req := fixtureOrderRequest(user, vehicle)
		req.PromoCode = "summer20"

		promo := &model.Promotion{
			ID:              uuid.New(),
			DiscountPercent: decimal.NewFromInt(20),
			StartDate:       time.Now().Add(-time.Hour),
			EndDate:         time.Now().Add(time.Hour),
			VehicleIDs:      []uuid.UUID{vehicle.ID},
			Status:          model.PromotionActive,
			PromoCode:       "SUMMER20",
			UsageCap:        model.UnlimitedUsage,
		}

		f.userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)
		f.vehicleRepo.On("GetByID", mock.Anything, vehicle.ID).Return(vehicle, nil)
		f.promoRepo.On("GetByCode", mock.Anything, "SUMMER20").Return(promo, nil)
		f.orderRepo.On("BeginTx", mock.Anything).Return(f.tx, nil)
		f.vehicleRepo.On("Reserve", mock.Anything, f.tx, vehicle.ID).Return(true, nil)
		f.promoRepo.On("IncrementUsageTx", mock.Anything, f.tx, promo.ID, mock.AnythingOfType("time.Time")).Return(true, nil)
		f.orderRepo.On("Create", mock.Anything, f.tx, mock.AnythingOfType("*model.Order")).Return(nil)

		resp, err := f.service.Create(context.Background(), req)

		require.NoError(t, err)
		assert.True(t, resp.DiscountedPrice.Equal(decimal.NewFromInt(800)),
			"got %s", resp.DiscountedPrice)
		assert.True(t, resp.DiscountAmount.Equal(decimal.NewFromInt(200)))
		require.NotNil(t, resp.PromotionID)
		assert.Equal(t, promo.ID, *resp.PromotionID)
		require.NotNil(t, resp.UsedPromoCode)
		assert.Equal(t, "SUMMER20", *resp.UsedPromoCode)
		assert.True(t, f.tx.committed)
		f.promoRepo.AssertExpectations(t)
	})

	t.Run("rejects unavailable vehicle before any write", func(t *testing.T) {
		f := newOrderFixture()
		user := fixtureUser()
		vehicle := fixtureVehicle(15000)
		vehicle.Status = model.VehicleReserved
		req := fixtureOrderRequest(user, vehicle)

		f.userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)
		f.vehicleRepo.On("GetByID", mock.Anything, vehicle.ID).Return(vehicle, nil)

		_, err := f.service.Create(context.Background(), req)

		assert.ErrorIs(t, err, model.ErrVehicleUnavailable)
		f.orderRepo.AssertNotCalled(t, "BeginTx", mock.Anything)
	})

	t.Run("rolls back when reservation loses the race", func(t *testing.T) {
		f := newOrderFixture()
		user := fixtureUser()
		vehicle := fixtureVehicle(15000)
		req := fixtureOrderRequest(user, vehicle)

		f.userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)
		f.vehicleRepo.On("GetByID", mock.Anything, vehicle.ID).Return(vehicle, nil)
		f.orderRepo.On("BeginTx", mock.Anything).Return(f.tx, nil)
		f.vehicleRepo.On("Reserve", mock.Anything, f.tx, vehicle.ID).Return(false, nil)

		_, err := f.service.Create(context.Background(), req)

		assert.ErrorIs(t, err, model.ErrVehicleUnavailable)
		assert.True(t, f.tx.rolledBack)
		f.orderRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rolls back when promotion cap loses the race", func(t *testing.T) {
		f := newOrderFixture()
		user := fixtureUser()
		vehicle := fixtureVehicle(1000)
		req := fixtureOrderRequest(user, vehicle)

		promo := &model.Promotion{
			ID:              uuid.New(),
			DiscountPercent: decimal.NewFromInt(10),
			StartDate:       time.Now().Add(-time.Hour),
			EndDate:         time.Now().Add(time.Hour),
			VehicleIDs:      []uuid.UUID{vehicle.ID},
			Status:          model.PromotionActive,
			PromoCode:       "LAST1",
			UsageCap:        1,
		}
		req.PromotionID = &promo.ID

		f.userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)
		f.vehicleRepo.On("GetByID", mock.Anything, vehicle.ID).Return(vehicle, nil)
		f.promoRepo.On("GetByID", mock.Anything, promo.ID).Return(promo, nil)
		f.orderRepo.On("BeginTx", mock.Anything).Return(f.tx, nil)
		f.vehicleRepo.On("Reserve", mock.Anything, f.tx, vehicle.ID).Return(true, nil)
		f.promoRepo.On("IncrementUsageTx", mock.Anything, f.tx, promo.ID, mock.AnythingOfType("time.Time")).Return(false, nil)

		_, err := f.service.Create(context.Background(), req)

		assert.ErrorIs(t, err, model.ErrUsageLimitReached)
		assert.True(t, f.tx.rolledBack)
		f.orderRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects promo code outside vehicle set", func(t *testing.T) {
		f := newOrderFixture()
		user := fixtureUser()
		vehicle := fixtureVehicle(1000)
		req := fixtureOrderRequest(user, vehicle)
		req.PromoCode = "OTHER"

		promo := &model.Promotion{
			ID:              uuid.New(),
			DiscountPercent: decimal.NewFromInt(10),
			StartDate:       time.Now().Add(-time.Hour),
			EndDate:         time.Now().Add(time.Hour),
			VehicleIDs:      []uuid.UUID{uuid.New()},
			Status:          model.PromotionActive,
			PromoCode:       "OTHER",
			UsageCap:        model.UnlimitedUsage,
		}

		f.userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)
		f.vehicleRepo.On("GetByID", mock.Anything, vehicle.ID).Return(vehicle, nil)
		f.promoRepo.On("GetByCode", mock.Anything, "OTHER").Return(promo, nil)

		_, err := f.service.Create(context.Background(), req)

		assert.ErrorIs(t, err, model.ErrPromoNotApplicable)
		f.orderRepo.AssertNotCalled(t, "BeginTx", mock.Anything)
	})

	t.Run("rejects incomplete delivery address", func(t *testing.T) {
		f := newOrderFixture()
		user := fixtureUser()
		vehicle := fixtureVehicle(1000)
		req := fixtureOrderRequest(user, vehicle)
		req.DeliveryAddress.City = ""

		_, err := f.service.Create(context.Background(), req)

		var domainErr *model.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, model.KindValidationFailed, domainErr.Kind)
	})

	t.Run("rejects blocked account", func(t *testing.T) {
		f := newOrderFixture()
		user := fixtureUser()
		user.Blocked = true
		vehicle := fixtureVehicle(1000)
		req := fixtureOrderRequest(user, vehicle)

		f.userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)

		_, err := f.service.Create(context.Background(), req)

		var domainErr *model.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, model.KindInvalidState, domainErr.Kind)
	})
}

func fixtureOrder(vehicle *model.Vehicle, user *model.User) *model.Order {
	now := time.Now().Add(-time.Hour)
	return &model.Order{
		ID:              uuid.New(),
		UserID:          user.ID,
		VehicleID:       vehicle.ID,
		Status:          model.OrderPending,
		OriginalPrice:   vehicle.Price,
		DiscountedPrice: vehicle.Price,
		PaymentMethod:   model.PaymentCard,
		PaymentStatus:   model.PaymentPending,
		OrderedAt:       now,
		StatusHistory: []model.StatusChange{{
			Status:    model.OrderPending,
			Timestamp: now,
			Comment:   "Order created",
		}},
	}
}

func TestOrderCancel(t *testing.T) {
	t.Run("cancelling frees vehicle and promotion usage", func(t *testing.T) {
		f := newOrderFixture()
		user := fixtureUser()
		vehicle := fixtureVehicle(1000)
		order := fixtureOrder(vehicle, user)
		promoID := uuid.New()
		order.PromotionID = &promoID

		f.orderRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil)
		f.orderRepo.On("BeginTx", mock.Anything).Return(f.tx, nil)
		f.orderRepo.On("SaveStatus", mock.Anything, f.tx, order).Return(nil)
		f.vehicleRepo.On("SetStatusTx", mock.Anything, f.tx, vehicle.ID, model.VehicleAvailable).Return(nil)
		f.promoRepo.On("DecrementUsageTx", mock.Anything, f.tx, promoID).Return(nil)
		f.vehicleRepo.On("GetByID", mock.Anything, vehicle.ID).Return(vehicle, nil)
		f.userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)
		f.promoRepo.On("GetByID", mock.Anything, promoID).Return(nil, nil)

		resp, err := f.service.Cancel(context.Background(), order.ID, "changed my mind", nil)

		require.NoError(t, err)
		assert.Equal(t, model.OrderCancelled, resp.Status)
		require.Len(t, resp.StatusHistory, 2)
		assert.Equal(t, model.OrderCancelled, resp.StatusHistory[1].Status)
		assert.Equal(t, "changed my mind", resp.StatusHistory[1].Comment)
		assert.True(t, f.tx.committed)
		f.vehicleRepo.AssertExpectations(t)
		f.promoRepo.AssertExpectations(t)
	})

	t.Run("delivered order cannot be cancelled", func(t *testing.T) {
		f := newOrderFixture()
		user := fixtureUser()
		vehicle := fixtureVehicle(1000)
		order := fixtureOrder(vehicle, user)
		order.Status = model.OrderDelivered

		f.orderRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil)

		_, err := f.service.Cancel(context.Background(), order.ID, "", nil)

		assert.ErrorIs(t, err, model.ErrNotCancellable)
		f.orderRepo.AssertNotCalled(t, "BeginTx", mock.Anything)
	})

	t.Run("already cancelled order cannot be cancelled again", func(t *testing.T) {
		f := newOrderFixture()
		user := fixtureUser()
		vehicle := fixtureVehicle(1000)
		order := fixtureOrder(vehicle, user)
		order.Status = model.OrderCancelled

		f.orderRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil)

		_, err := f.service.Cancel(context.Background(), order.ID, "", nil)

		assert.ErrorIs(t, err, model.ErrNotCancellable)
	})
}

func TestOrderUpdateStatus(t *testing.T) {
	t.Run("delivered order marks vehicle sold and sets delivered at", func(t *testing.T) {
		f := newOrderFixture()
		user := fixtureUser()
		vehicle := fixtureVehicle(1000)
		order := fixtureOrder(vehicle, user)
		order.Status = model.OrderShipped
		actor := uuid.New()

		f.orderRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil)
		f.orderRepo.On("BeginTx", mock.Anything).Return(f.tx, nil)
		f.orderRepo.On("SaveStatus", mock.Anything, f.tx, order).Return(nil)
		f.vehicleRepo.On("SetStatusTx", mock.Anything, f.tx, vehicle.ID, model.VehicleSold).Return(nil)
		f.vehicleRepo.On("GetByID", mock.Anything, vehicle.ID).Return(vehicle, nil)
		f.userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)

		resp, err := f.service.UpdateStatus(context.Background(), order.ID, model.OrderDelivered, "handed over", &actor)

		require.NoError(t, err)
		assert.Equal(t, model.OrderDelivered, resp.Status)
		require.NotNil(t, resp.DeliveredAt)
		last := resp.StatusHistory[len(resp.StatusHistory)-1]
		assert.Equal(t, model.OrderDelivered, last.Status)
		require.NotNil(t, last.ActorUserID)
		assert.Equal(t, actor, *last.ActorUserID)
		f.vehicleRepo.AssertExpectations(t)
	})

	t.Run("history is append only", func(t *testing.T) {
		f := newOrderFixture()
		user := fixtureUser()
		vehicle := fixtureVehicle(1000)
		order := fixtureOrder(vehicle, user)
		first := order.StatusHistory[0]

		f.orderRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil)
		f.orderRepo.On("BeginTx", mock.Anything).Return(f.tx, nil)
		f.orderRepo.On("SaveStatus", mock.Anything, f.tx, order).Return(nil)
		f.vehicleRepo.On("GetByID", mock.Anything, vehicle.ID).Return(vehicle, nil)
		f.userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)

		resp, err := f.service.UpdateStatus(context.Background(), order.ID, model.OrderConfirmed, "", nil)

		require.NoError(t, err)
		require.Len(t, resp.StatusHistory, 2)
		assert.Equal(t, first, resp.StatusHistory[0])
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		f := newOrderFixture()

		_, err := f.service.UpdateStatus(context.Background(), uuid.New(), "Teleported", "", nil)

		var domainErr *model.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, model.ErrCodeInvalidStatus, domainErr.Code)
	})
}

func TestOrderUpdatePayment(t *testing.T) {
	t.Run("updates payment status", func(t *testing.T) {
		f := newOrderFixture()
		user := fixtureUser()
		vehicle := fixtureVehicle(1000)
		order := fixtureOrder(vehicle, user)
		order.PaymentStatus = model.PaymentPaid
		order.PaymentReference = "PAY-123"

		f.orderRepo.On("UpdatePayment", mock.Anything, order.ID, model.PaymentPaid, "PAY-123").Return(true, nil)
		f.orderRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil)
		f.vehicleRepo.On("GetByID", mock.Anything, vehicle.ID).Return(vehicle, nil)
		f.userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)

		resp, err := f.service.UpdatePayment(context.Background(), order.ID, model.PaymentPaid, "PAY-123")

		require.NoError(t, err)
		assert.Equal(t, model.PaymentPaid, resp.PaymentStatus)
	})

	t.Run("unknown order is not found", func(t *testing.T) {
		f := newOrderFixture()
		id := uuid.New()

		f.orderRepo.On("UpdatePayment", mock.Anything, id, model.PaymentPaid, "").Return(false, nil)

		_, err := f.service.UpdatePayment(context.Background(), id, model.PaymentPaid, "")

		var domainErr *model.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, model.KindNotFound, domainErr.Kind)
	})
}
