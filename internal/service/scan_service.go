package service

import (
	"context"
	"encoding/json"
	"time"

	"carhub/internal/cache"
	"carhub/internal/model"
	"carhub/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// defaultScanCacheTTL bounds how stale a cached vehicle projection may get
// when no TTL is configured.
const defaultScanCacheTTL = 5 * time.Minute

type scanService struct {
	scanRepo    repository.ScanRepository
	vehicleRepo repository.VehicleRepository
	userRepo    repository.UserRepository
	cache       cache.Cache
	cacheTTL    time.Duration
	logger      zerolog.Logger
}

// NewScanService creates a new scan service. A non-positive cacheTTL falls
// back to the default.
func NewScanService(
	scanRepo repository.ScanRepository,
	vehicleRepo repository.VehicleRepository,
	userRepo repository.UserRepository,
	c cache.Cache,
	cacheTTL time.Duration,
	logger zerolog.Logger,
) ScanService {
	if cacheTTL <= 0 {
		cacheTTL = defaultScanCacheTTL
	}
	return &scanService{
		scanRepo:    scanRepo,
		vehicleRepo: vehicleRepo,
		userRepo:    userRepo,
		cache:       c,
		cacheTTL:    cacheTTL,
		logger:      logger.With().Str("service", "scan").Logger(),
	}
}

// Record logs a QR scan and returns the vehicle the code points at. A scan
// of an unknown vehicle is stored with a Failed result before the not-found
// error is returned, so the audit trail covers bad codes too.
func (s *scanService) Record(ctx context.Context, req model.ScanRequest, ip, userAgent string) (*model.ScanResponse, error) {
	if req.VehicleID == uuid.Nil {
		return nil, model.ValidationError("vehicleId is required")
	}

	scan := &model.Scan{
		ID:        uuid.New(),
		VehicleID: req.VehicleID,
		UserID:    req.UserID,
		IP:        ip,
		UserAgent: userAgent,
		Result:    model.ScanSuccess,
		ScannedAt: time.Now(),
	}

	vehicle, err := s.vehicleSummary(ctx, req.VehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle == nil {
		scan.Result = model.ScanFailed
		scan.Details = "vehicle not found"
		if err := s.scanRepo.Create(ctx, scan); err != nil {
			return nil, err
		}
		return nil, model.NotFoundError("vehicle")
	}

	if err := s.scanRepo.Create(ctx, scan); err != nil {
		return nil, err
	}

	s.logger.Info().Str("vehicle_id", req.VehicleID.String()).Str("ip", ip).
		Msg("vehicle scanned")

	resp := &model.ScanResponse{Scan: *scan, Vehicle: vehicle}
	if req.UserID != uuid.Nil {
		if u, err := s.userRepo.GetByID(ctx, req.UserID); err == nil && u != nil {
			summary := u.Summary()
			resp.User = &summary
		}
	}
	return resp, nil
}

// vehicleSummary reads the scanned vehicle through the cache. A nil summary
// with a nil error means the vehicle does not exist.
func (s *scanService) vehicleSummary(ctx context.Context, id uuid.UUID) (*model.VehicleSummary, error) {
	key := s.cache.Key("vehicle", id.String())

	if cached, err := s.cache.Get(ctx, key); err == nil && cached != "" {
		var summary model.VehicleSummary
		if err := json.Unmarshal([]byte(cached), &summary); err == nil {
			return &summary, nil
		}
	}

	v, err := s.vehicleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}

	summary := v.Summary()
	if encoded, err := json.Marshal(summary); err == nil {
		_ = s.cache.Set(ctx, key, string(encoded), s.cacheTTL)
	}
	return &summary, nil
}

func (s *scanService) ListByVehicle(ctx context.Context, vehicleID uuid.UUID, page model.Page) ([]model.ScanResponse, *model.Pagination, error) {
	page = page.Normalize()

	scans, total, err := s.scanRepo.ListByVehicle(ctx, vehicleID, page)
	if err != nil {
		return nil, nil, err
	}

	vehicle, err := s.vehicleSummary(ctx, vehicleID)
	if err != nil {
		return nil, nil, err
	}

	responses := make([]model.ScanResponse, 0, len(scans))
	for _, scan := range scans {
		responses = append(responses, model.ScanResponse{Scan: scan, Vehicle: vehicle})
	}

	pagination := model.NewPagination(page, total)
	return responses, &pagination, nil
}

func (s *scanService) Stats(ctx context.Context, vehicleID uuid.UUID) (*model.ScanStats, error) {
	v, err := s.vehicleRepo.GetByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, model.NotFoundError("vehicle")
	}
	return s.scanRepo.Stats(ctx, vehicleID, time.Now())
}
