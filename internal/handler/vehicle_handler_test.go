package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"carhub/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockVehicleService is a mock implementation of service.VehicleService.
type MockVehicleService struct {
	mock.Mock
}

func (m *MockVehicleService) Create(ctx context.Context, req model.VehicleRequest) (*model.Vehicle, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Vehicle), args.Error(1)
}

func (m *MockVehicleService) GetByID(ctx context.Context, id uuid.UUID) (*model.Vehicle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Vehicle), args.Error(1)
}

func (m *MockVehicleService) List(ctx context.Context, filter model.VehicleFilter, page model.Page) ([]model.Vehicle, *model.Pagination, error) {
	args := m.Called(ctx, filter, page)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]model.Vehicle), args.Get(1).(*model.Pagination), args.Error(2)
}

func (m *MockVehicleService) Update(ctx context.Context, id uuid.UUID, req model.VehicleRequest) (*model.Vehicle, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Vehicle), args.Error(1)
}

func (m *MockVehicleService) UpdateStatus(ctx context.Context, id uuid.UUID, status model.VehicleStatus) (*model.Vehicle, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Vehicle), args.Error(1)
}

func (m *MockVehicleService) GenerateQR(ctx context.Context, id uuid.UUID) (*model.Vehicle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Vehicle), args.Error(1)
}

func (m *MockVehicleService) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockVehicleService) Stats(ctx context.Context) (*model.VehicleStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.VehicleStats), args.Error(1)
}

func vehicleRouter(h *VehicleHandler) http.Handler {
	r := chi.NewRouter()
	r.Get("/api/vehicles", h.List)
	r.Post("/api/vehicles", h.Create)
	r.Get("/api/vehicles/{id}", h.GetByID)
	r.Patch("/api/vehicles/{id}/status", h.UpdateStatus)
	return r
}

func testVehicle(id uuid.UUID) *model.Vehicle {
	return &model.Vehicle{
		ID:       id,
		Make:     "Renault",
		Model:    "Clio",
		Year:     2023,
		Price:    decimal.NewFromInt(15000),
		FuelType: model.FuelGasoline,
		Gearbox:  model.GearboxManual,
		Status:   model.VehicleAvailable,
	}
}

func TestVehicleHandler_GetByID(t *testing.T) {
	logger := zerolog.Nop()
	vehicleID := uuid.New()

	tests := []struct {
		name           string
		path           string
		mockReturn     *model.Vehicle
		mockError      error
		expectedStatus int
		expectService  bool
	}{
		{
			name:           "Success",
			path:           "/api/vehicles/" + vehicleID.String(),
			mockReturn:     testVehicle(vehicleID),
			expectedStatus: http.StatusOK,
			expectService:  true,
		},
		{
			name:           "Not found",
			path:           "/api/vehicles/" + uuid.New().String(),
			mockError:      model.NotFoundError("vehicle"),
			expectedStatus: http.StatusNotFound,
			expectService:  true,
		},
		{
			name:           "Malformed id",
			path:           "/api/vehicles/banana",
			expectedStatus: http.StatusBadRequest,
			expectService:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockVehicleService)
			server := vehicleRouter(NewVehicleHandler(mockService, logger))

			if tt.expectService {
				mockService.On("GetByID", mock.Anything, mock.AnythingOfType("uuid.UUID")).
					Return(tt.mockReturn, tt.mockError)
			}

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			w := httptest.NewRecorder()

			server.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestVehicleHandler_List(t *testing.T) {
	logger := zerolog.Nop()

	t.Run("filters and pagination reach the service", func(t *testing.T) {
		mockService := new(MockVehicleService)
		server := vehicleRouter(NewVehicleHandler(mockService, logger))

		vehicles := []model.Vehicle{*testVehicle(uuid.New()), *testVehicle(uuid.New())}
		pagination := &model.Pagination{Page: 2, Limit: 5, TotalItems: 12, TotalPages: 3}

		mockService.On("List", mock.Anything,
			mock.MatchedBy(func(f model.VehicleFilter) bool {
				return f.Status == model.VehicleAvailable &&
					f.Make == "Renault" &&
					f.MaxPrice != nil && f.MaxPrice.Equal(decimal.NewFromInt(20000))
			}),
			mock.MatchedBy(func(p model.Page) bool {
				return p.Page == 2 && p.Limit == 5
			})).
			Return(vehicles, pagination, nil)

		req := httptest.NewRequest(http.MethodGet,
			"/api/vehicles?status=Available&make=Renault&maxPrice=20000&page=2&limit=5", nil)
		w := httptest.NewRecorder()

		server.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Data       []model.Vehicle   `json:"data"`
			Pagination *model.Pagination `json:"pagination"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Len(t, resp.Data, 2)
		require.NotNil(t, resp.Pagination)
		assert.Equal(t, int64(12), resp.Pagination.TotalItems)
		mockService.AssertExpectations(t)
	})

	t.Run("non-numeric maxPrice is a validation error", func(t *testing.T) {
		mockService := new(MockVehicleService)
		server := vehicleRouter(NewVehicleHandler(mockService, logger))

		req := httptest.NewRequest(http.MethodGet, "/api/vehicles?maxPrice=cheap", nil)
		w := httptest.NewRecorder()

		server.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "List")
	})
}

func TestVehicleHandler_Create(t *testing.T) {
	logger := zerolog.Nop()

	t.Run("created vehicle is returned with 201", func(t *testing.T) {
		mockService := new(MockVehicleService)
		server := vehicleRouter(NewVehicleHandler(mockService, logger))

		created := testVehicle(uuid.New())
		mockService.On("Create", mock.Anything, mock.AnythingOfType("model.VehicleRequest")).
			Return(created, nil)

		body, err := json.Marshal(model.VehicleRequest{
			Make:     "Renault",
			Model:    "Clio",
			Year:     2023,
			Price:    decimal.NewFromInt(15000),
			FuelType: model.FuelGasoline,
			Gearbox:  model.GearboxManual,
		})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPost, "/api/vehicles", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		server.ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code)

		var resp model.Vehicle
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, created.ID, resp.ID)
		mockService.AssertExpectations(t)
	})

	t.Run("validation failure is 400", func(t *testing.T) {
		mockService := new(MockVehicleService)
		server := vehicleRouter(NewVehicleHandler(mockService, logger))

		mockService.On("Create", mock.Anything, mock.AnythingOfType("model.VehicleRequest")).
			Return(nil, model.ValidationError("make is required"))

		req := httptest.NewRequest(http.MethodPost, "/api/vehicles", bytes.NewBufferString(`{}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		server.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestVehicleHandler_UpdateStatus(t *testing.T) {
	logger := zerolog.Nop()
	vehicleID := uuid.New()

	t.Run("status change is returned", func(t *testing.T) {
		mockService := new(MockVehicleService)
		server := vehicleRouter(NewVehicleHandler(mockService, logger))

		updated := testVehicle(vehicleID)
		updated.Status = model.VehicleMaintenance
		mockService.On("UpdateStatus", mock.Anything, vehicleID, model.VehicleMaintenance).
			Return(updated, nil)

		req := httptest.NewRequest(http.MethodPatch, "/api/vehicles/"+vehicleID.String()+"/status",
			bytes.NewBufferString(`{"status": "Maintenance"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		server.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp model.Vehicle
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, model.VehicleMaintenance, resp.Status)
		mockService.AssertExpectations(t)
	})

	t.Run("unknown status is rejected by the service", func(t *testing.T) {
		mockService := new(MockVehicleService)
		server := vehicleRouter(NewVehicleHandler(mockService, logger))

		mockService.On("UpdateStatus", mock.Anything, vehicleID, model.VehicleStatus("Flying")).
			Return(nil, model.ValidationError("invalid vehicle status"))

		req := httptest.NewRequest(http.MethodPatch, "/api/vehicles/"+vehicleID.String()+"/status",
			bytes.NewBufferString(`{"status": "Flying"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		server.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
