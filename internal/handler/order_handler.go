package handler

import (
	"net/http"

	"carhub/internal/middleware"
	"carhub/internal/model"
	"carhub/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// Create handles POST /api/orders.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.OrderRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	order, err := h.service.Create(r.Context(), req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

// GetByID handles GET /api/orders/{id}.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	order, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// List handles GET /api/orders.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := model.OrderFilter{
		Status:        model.OrderStatus(q.Get("status")),
		PaymentStatus: model.PaymentStatus(q.Get("paymentStatus")),
	}
	if raw := q.Get("userId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, model.ErrInvalidReference, h.logger)
			return
		}
		filter.UserID = id
	}
	if raw := q.Get("vehicleId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, model.ErrInvalidReference, h.logger)
			return
		}
		filter.VehicleID = id
	}

	orders, pagination, err := h.service.List(r.Context(), filter, pageFromQuery(r))
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, listResponse{Data: orders, Pagination: pagination})
}

// ByUser handles GET /api/orders/user/{userId}.
func (h *OrderHandler) ByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		writeError(w, model.ErrInvalidReference, h.logger)
		return
	}

	orders, pagination, err := h.service.List(r.Context(), model.OrderFilter{UserID: userID}, pageFromQuery(r))
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, listResponse{Data: orders, Pagination: pagination})
}

// ByVehicle handles GET /api/orders/vehicle/{vehicleId}.
func (h *OrderHandler) ByVehicle(w http.ResponseWriter, r *http.Request) {
	vehicleID, err := uuid.Parse(chi.URLParam(r, "vehicleId"))
	if err != nil {
		writeError(w, model.ErrInvalidReference, h.logger)
		return
	}

	orders, pagination, err := h.service.List(r.Context(), model.OrderFilter{VehicleID: vehicleID}, pageFromQuery(r))
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, listResponse{Data: orders, Pagination: pagination})
}

// UpdateStatus handles PUT /api/orders/{id}/status.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	var req struct {
		Status  model.OrderStatus `json:"status"`
		Comment string            `json:"comment"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	order, err := h.service.UpdateStatus(r.Context(), id, req.Status, req.Comment, middleware.UserID(r.Context()))
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// Cancel handles DELETE /api/orders/{id}.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	// An empty body is an acceptable cancellation.
	_ = decodeBody(r, &req)

	order, err := h.service.Cancel(r.Context(), id, req.Reason, middleware.UserID(r.Context()))
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// UpdatePayment handles PUT /api/orders/{id}/payment.
func (h *OrderHandler) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	var req struct {
		PaymentStatus    model.PaymentStatus `json:"paymentStatus"`
		PaymentReference string              `json:"paymentReference"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	order, err := h.service.UpdatePayment(r.Context(), id, req.PaymentStatus, req.PaymentReference)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// Stats handles GET /api/orders/stats.
func (h *OrderHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
