package handler

import (
	"net"
	"net/http"
	"strings"

	"carhub/internal/middleware"
	"carhub/internal/model"
	"carhub/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ScanHandler handles QR-scan HTTP requests.
type ScanHandler struct {
	service service.ScanService
	logger  zerolog.Logger
}

// NewScanHandler creates a new scan handler.
func NewScanHandler(service service.ScanService, logger zerolog.Logger) *ScanHandler {
	return &ScanHandler{
		service: service,
		logger:  logger.With().Str("handler", "scan").Logger(),
	}
}

// Record handles POST /api/scans.
func (h *ScanHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req model.ScanRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	if userID := middleware.UserID(r.Context()); userID != nil {
		req.UserID = *userID
	}

	resp, err := h.service.Record(r.Context(), req, clientIP(r), r.UserAgent())
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

const qrPrefix = "carhub://vehicles/"

// Lookup handles POST /api/vehicles/lookup. It resolves a raw QR payload to
// a vehicle and records the scan.
func (h *ScanHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		QRCode string `json:"qrCode"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	// A bare vehicle id is accepted alongside the full payload.
	raw, _ := strings.CutPrefix(req.QRCode, qrPrefix)
	vehicleID, err := uuid.Parse(raw)
	if err != nil {
		writeError(w, model.ValidationError("unrecognised QR payload"), h.logger)
		return
	}

	scanReq := model.ScanRequest{VehicleID: vehicleID}
	if userID := middleware.UserID(r.Context()); userID != nil {
		scanReq.UserID = *userID
	}

	resp, err := h.service.Record(r.Context(), scanReq, clientIP(r), r.UserAgent())
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// ListByVehicle handles GET /api/vehicles/{id}/scans.
func (h *ScanHandler) ListByVehicle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	scans, pagination, err := h.service.ListByVehicle(r.Context(), id, pageFromQuery(r))
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, listResponse{Data: scans, Pagination: pagination})
}

// Stats handles GET /api/vehicles/{id}/scans/stats.
func (h *ScanHandler) Stats(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	stats, err := h.service.Stats(r.Context(), id)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// clientIP prefers the first forwarded address, falling back to the peer.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		for i := 0; i < len(forwarded); i++ {
			if forwarded[i] == ',' {
				return forwarded[:i]
			}
		}
		return forwarded
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
