package handler

import (
	"net/http"

	"carhub/internal/model"
	"carhub/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PromotionHandler handles promotion-related HTTP requests.
type PromotionHandler struct {
	service service.PromotionService
	logger  zerolog.Logger
}

// NewPromotionHandler creates a new promotion handler.
func NewPromotionHandler(service service.PromotionService, logger zerolog.Logger) *PromotionHandler {
	return &PromotionHandler{
		service: service,
		logger:  logger.With().Str("handler", "promotion").Logger(),
	}
}

// Create handles POST /api/promotions.
func (h *PromotionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.PromotionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	p, err := h.service.Create(r.Context(), req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, p)
}

// GetByID handles GET /api/promotions/{id}.
func (h *PromotionHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	p, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, p)
}

// List handles GET /api/promotions.
func (h *PromotionHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := model.PromotionFilter{
		Status: model.PromotionStatus(q.Get("status")),
	}
	if raw := q.Get("vehicleId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, model.ErrInvalidReference, h.logger)
			return
		}
		filter.VehicleID = id
	}

	promotions, pagination, err := h.service.List(r.Context(), filter, pageFromQuery(r))
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, listResponse{Data: promotions, Pagination: pagination})
}

// Active handles GET /api/promotions/active.
func (h *PromotionHandler) Active(w http.ResponseWriter, r *http.Request) {
	filter := model.PromotionFilter{Status: model.PromotionActive}

	promotions, pagination, err := h.service.List(r.Context(), filter, pageFromQuery(r))
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, listResponse{Data: promotions, Pagination: pagination})
}

// ListForVehicle handles GET /api/promotions/vehicle/{id}.
func (h *PromotionHandler) ListForVehicle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	promotions, err := h.service.ListForVehicle(r.Context(), id)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, listResponse{Data: promotions})
}

// Update handles PUT /api/promotions/{id}.
func (h *PromotionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	var req model.PromotionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	p, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, p)
}

// UpdateStatus handles PATCH /api/promotions/{id}/status.
func (h *PromotionHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	var req struct {
		Status model.PromotionStatus `json:"status"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	p, err := h.service.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, p)
}

// RegenerateCode handles POST /api/promotions/{id}/regenerate-code.
func (h *PromotionHandler) RegenerateCode(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	p, err := h.service.RegenerateCode(r.Context(), id)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, p)
}

type promoCodeRequest struct {
	PromoCode string    `json:"promoCode"`
	VehicleID uuid.UUID `json:"vehicleId"`
}

// ValidateCode handles POST /api/promotions/validate.
func (h *PromotionHandler) ValidateCode(w http.ResponseWriter, r *http.Request) {
	var req promoCodeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	quote, err := h.service.ValidateCode(r.Context(), req.PromoCode, req.VehicleID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, quote)
}

// ApplyCode handles POST /api/promotions/apply.
func (h *PromotionHandler) ApplyCode(w http.ResponseWriter, r *http.Request) {
	var req promoCodeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	quote, err := h.service.ApplyCode(r.Context(), req.PromoCode, req.VehicleID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, quote)
}

// Delete handles DELETE /api/promotions/{id}.
func (h *PromotionHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

// Analytics handles GET /api/promotions/analytics.
func (h *PromotionHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	analytics, err := h.service.Analytics(r.Context())
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, analytics)
}
