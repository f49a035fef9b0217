package service

import (
	"context"
	"fmt"
	"time"

	"carhub/internal/cache"
	"carhub/internal/model"
	"carhub/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// QRPayload returns the payload encoded in a vehicle's QR code.
func QRPayload(id uuid.UUID) string {
	return fmt.Sprintf("carhub://vehicles/%s", id)
}

type vehicleService struct {
	vehicleRepo repository.VehicleRepository
	cache       cache.Cache
	logger      zerolog.Logger
}

// NewVehicleService creates a new vehicle service.
func NewVehicleService(vehicleRepo repository.VehicleRepository, c cache.Cache, logger zerolog.Logger) VehicleService {
	return &vehicleService{
		vehicleRepo: vehicleRepo,
		cache:       c,
		logger:      logger.With().Str("service", "vehicle").Logger(),
	}
}

func validateVehicleRequest(req model.VehicleRequest) error {
	if req.Make == "" || req.Model == "" {
		return model.ValidationError("make and model are required")
	}
	if req.Year < 1900 || req.Year > time.Now().Year()+1 {
		return model.ValidationError("year is out of range")
	}
	if req.Price.IsNegative() || req.Price.IsZero() {
		return model.ValidationError("price must be positive")
	}
	if req.Mileage < 0 {
		return model.ValidationError("mileage cannot be negative")
	}
	return nil
}

func (s *vehicleService) Create(ctx context.Context, req model.VehicleRequest) (*model.Vehicle, error) {
	if err := validateVehicleRequest(req); err != nil {
		return nil, err
	}

	now := time.Now()
	v := &model.Vehicle{
		ID:          uuid.New(),
		Make:        req.Make,
		Model:       req.Model,
		Year:        req.Year,
		Price:       req.Price.Round(2),
		Mileage:     req.Mileage,
		FuelType:    req.FuelType,
		Gearbox:     req.Gearbox,
		Color:       req.Color,
		Description: req.Description,
		Options:     req.Options,
		Status:      model.VehicleAvailable,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	v.QRCode = QRPayload(v.ID)

	if err := s.vehicleRepo.Create(ctx, v); err != nil {
		return nil, err
	}

	s.logger.Info().Str("vehicle_id", v.ID.String()).
		Str("make", v.Make).Str("model", v.Model).
		Msg("vehicle created")

	return v, nil
}

func (s *vehicleService) GetByID(ctx context.Context, id uuid.UUID) (*model.Vehicle, error) {
	v, err := s.vehicleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, model.NotFoundError("vehicle")
	}
	return v, nil
}

func (s *vehicleService) List(ctx context.Context, filter model.VehicleFilter, page model.Page) ([]model.Vehicle, *model.Pagination, error) {
	page = page.Normalize()

	if filter.Status != "" && !model.ValidVehicleStatus(filter.Status) {
		return nil, nil, model.InvalidStatusError(string(filter.Status))
	}

	vehicles, total, err := s.vehicleRepo.List(ctx, filter, page)
	if err != nil {
		return nil, nil, err
	}

	pagination := model.NewPagination(page, total)
	return vehicles, &pagination, nil
}

func (s *vehicleService) Update(ctx context.Context, id uuid.UUID, req model.VehicleRequest) (*model.Vehicle, error) {
	if err := validateVehicleRequest(req); err != nil {
		return nil, err
	}

	v, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	v.Make = req.Make
	v.Model = req.Model
	v.Year = req.Year
	v.Price = req.Price.Round(2)
	v.Mileage = req.Mileage
	v.FuelType = req.FuelType
	v.Gearbox = req.Gearbox
	v.Color = req.Color
	v.Description = req.Description
	v.Options = req.Options
	v.UpdatedAt = time.Now()

	if err := s.vehicleRepo.Update(ctx, v); err != nil {
		return nil, err
	}

	s.invalidate(ctx, id)

	return v, nil
}

func (s *vehicleService) UpdateStatus(ctx context.Context, id uuid.UUID, status model.VehicleStatus) (*model.Vehicle, error) {
	if !model.ValidVehicleStatus(status) {
		return nil, model.InvalidStatusError(string(status))
	}

	updated, err := s.vehicleRepo.SetStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, model.NotFoundError("vehicle")
	}

	s.invalidate(ctx, id)
	s.logger.Info().Str("vehicle_id", id.String()).Str("status", string(status)).
		Msg("vehicle status updated")

	return s.GetByID(ctx, id)
}

func (s *vehicleService) GenerateQR(ctx context.Context, id uuid.UUID) (*model.Vehicle, error) {
	updated, err := s.vehicleRepo.SetQRCode(ctx, id, QRPayload(id))
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, model.NotFoundError("vehicle")
	}

	s.invalidate(ctx, id)

	return s.GetByID(ctx, id)
}

func (s *vehicleService) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.vehicleRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return model.NotFoundError("vehicle")
	}

	s.invalidate(ctx, id)
	s.logger.Info().Str("vehicle_id", id.String()).Msg("vehicle deleted")

	return nil
}

func (s *vehicleService) Stats(ctx context.Context) (*model.VehicleStats, error) {
	return s.vehicleRepo.Stats(ctx)
}

func (s *vehicleService) invalidate(ctx context.Context, id uuid.UUID) {
	// Cache failures are logged by the cache itself.
	_ = s.cache.Delete(ctx, s.cache.Key("vehicle", id.String()))
}
