package handler

import (
	"net/http"

	"carhub/internal/model"
	"carhub/internal/service"

	"github.com/rs/zerolog"
)

// ComplaintHandler handles complaint-related HTTP requests.
type ComplaintHandler struct {
	service service.ComplaintService
	logger  zerolog.Logger
}

// NewComplaintHandler creates a new complaint handler.
func NewComplaintHandler(service service.ComplaintService, logger zerolog.Logger) *ComplaintHandler {
	return &ComplaintHandler{
		service: service,
		logger:  logger.With().Str("handler", "complaint").Logger(),
	}
}

// Create handles POST /api/complaints.
func (h *ComplaintHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.ComplaintRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	c, err := h.service.Create(r.Context(), req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, c)
}

// GetByID handles GET /api/complaints/{id}.
func (h *ComplaintHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	c, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, c)
}

// List handles GET /api/complaints.
func (h *ComplaintHandler) List(w http.ResponseWriter, r *http.Request) {
	complaints, pagination, err := h.service.List(r.Context(), pageFromQuery(r))
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, listResponse{Data: complaints, Pagination: pagination})
}

// Update handles PUT /api/complaints/{id}.
func (h *ComplaintHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	var req model.ComplaintRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	c, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, c)
}

// Delete handles DELETE /api/complaints/{id}.
func (h *ComplaintHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
