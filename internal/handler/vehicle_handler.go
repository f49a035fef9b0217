package handler

import (
	"net/http"

	"carhub/internal/model"
	"carhub/internal/service"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// VehicleHandler handles vehicle-related HTTP requests.
type VehicleHandler struct {
	service service.VehicleService
	logger  zerolog.Logger
}

// NewVehicleHandler creates a new vehicle handler.
func NewVehicleHandler(service service.VehicleService, logger zerolog.Logger) *VehicleHandler {
	return &VehicleHandler{
		service: service,
		logger:  logger.With().Str("handler", "vehicle").Logger(),
	}
}

// Create handles POST /api/vehicles.
func (h *VehicleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.VehicleRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	v, err := h.service.Create(r.Context(), req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, v)
}

// GetByID handles GET /api/vehicles/{id}.
func (h *VehicleHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	v, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, v)
}

// List handles GET /api/vehicles.
func (h *VehicleHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := model.VehicleFilter{
		Status:   model.VehicleStatus(q.Get("status")),
		Make:     q.Get("make"),
		FuelType: model.FuelType(q.Get("fuelType")),
	}
	if raw := q.Get("maxPrice"); raw != "" {
		maxPrice, err := decimal.NewFromString(raw)
		if err != nil {
			writeError(w, model.ValidationError("maxPrice is not a number"), h.logger)
			return
		}
		filter.MaxPrice = &maxPrice
	}

	vehicles, pagination, err := h.service.List(r.Context(), filter, pageFromQuery(r))
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, listResponse{Data: vehicles, Pagination: pagination})
}

// Update handles PUT /api/vehicles/{id}.
func (h *VehicleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	var req model.VehicleRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	v, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, v)
}

// UpdateStatus handles PATCH /api/vehicles/{id}/status.
func (h *VehicleHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	var req struct {
		Status model.VehicleStatus `json:"status"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	v, err := h.service.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, v)
}

// GenerateQR handles POST /api/vehicles/{id}/qrcode.
func (h *VehicleHandler) GenerateQR(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	v, err := h.service.GenerateQR(r.Context(), id)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, v)
}

// Delete handles DELETE /api/vehicles/{id}.
func (h *VehicleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusNoContent, nil)
}

// Stats handles GET /api/vehicles/stats.
func (h *VehicleHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
