package service

import (
	"context"
	"testing"

	"carhub/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newVehicleService(repo *mockVehicleRepo) VehicleService {
	return NewVehicleService(repo, newFakeCache(), zerolog.Nop())
}

func fixtureVehicleRequest() model.VehicleRequest {
	return model.VehicleRequest{
		Make:     "Citroen",
		Model:    "C3",
		Year:     2022,
		Price:    decimal.NewFromInt(14500),
		Mileage:  12000,
		FuelType: model.FuelGasoline,
		Gearbox:  model.GearboxManual,
	}
}

func TestVehicleCreate(t *testing.T) {
	t.Run("assigns QR payload and available status", func(t *testing.T) {
		repo := new(mockVehicleRepo)
		repo.On("Create", mock.Anything, mock.AnythingOfType("*model.Vehicle")).Return(nil)

		svc := newVehicleService(repo)
		v, err := svc.Create(context.Background(), fixtureVehicleRequest())

		require.NoError(t, err)
		assert.Equal(t, model.VehicleAvailable, v.Status)
		assert.Equal(t, QRPayload(v.ID), v.QRCode)
	})

	t.Run("rejects non-positive price", func(t *testing.T) {
		svc := newVehicleService(new(mockVehicleRepo))
		req := fixtureVehicleRequest()
		req.Price = decimal.Zero

		_, err := svc.Create(context.Background(), req)

		var domainErr *model.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, model.KindValidationFailed, domainErr.Kind)
	})

	t.Run("rejects out of range year", func(t *testing.T) {
		svc := newVehicleService(new(mockVehicleRepo))
		req := fixtureVehicleRequest()
		req.Year = 1850

		_, err := svc.Create(context.Background(), req)
		assert.Error(t, err)
	})
}

func TestVehicleUpdateStatus(t *testing.T) {
	t.Run("rejects unknown status", func(t *testing.T) {
		svc := newVehicleService(new(mockVehicleRepo))

		_, err := svc.UpdateStatus(context.Background(), uuid.New(), "Flying")

		var domainErr *model.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, model.ErrCodeInvalidStatus, domainErr.Code)
	})

	t.Run("absent vehicle is not found", func(t *testing.T) {
		repo := new(mockVehicleRepo)
		id := uuid.New()
		repo.On("SetStatus", mock.Anything, id, model.VehicleMaintenance).Return(false, nil)

		svc := newVehicleService(repo)
		_, err := svc.UpdateStatus(context.Background(), id, model.VehicleMaintenance)

		var domainErr *model.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, model.KindNotFound, domainErr.Kind)
	})
}

func TestVehicleGenerateQR(t *testing.T) {
	repo := new(mockVehicleRepo)
	v := fixtureVehicle(10000)
	v.QRCode = QRPayload(v.ID)

	repo.On("SetQRCode", mock.Anything, v.ID, QRPayload(v.ID)).Return(true, nil)
	repo.On("GetByID", mock.Anything, v.ID).Return(v, nil)

	svc := newVehicleService(repo)
	got, err := svc.GenerateQR(context.Background(), v.ID)

	require.NoError(t, err)
	assert.Equal(t, "carhub://vehicles/"+v.ID.String(), got.QRCode)
	repo.AssertExpectations(t)
}
