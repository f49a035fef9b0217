// Package handler exposes the HTTP surface of the dealership backend.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"carhub/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// writeError maps an error to an HTTP status and writes the standard error
// body. Domain errors carry their own kind and code; anything else is an
// internal error and its detail stays out of the response.
func writeError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		status := statusForKind(domainErr)
		logger.Debug().Str("code", domainErr.Code).Int("status", status).
			Msg(domainErr.Message)
		writeJSON(w, status, model.ErrorResponse{
			Error:   domainErr.Code,
			Kind:    string(domainErr.Kind),
			Message: domainErr.Message,
		})
		return
	}

	logger.Error().Err(err).Msg("request failed")
	writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{
		Error:   model.ErrCodeInternal,
		Kind:    "INTERNAL",
		Message: "internal server error",
	})
}

func statusForKind(err *model.DomainError) int {
	switch err.Code {
	case model.ErrCodeUnauthorised:
		return http.StatusUnauthorized
	case model.ErrCodeForbidden:
		return http.StatusForbidden
	}

	switch err.Kind {
	case model.KindNotFound:
		return http.StatusNotFound
	case model.KindInvalidReference, model.KindValidationFailed:
		return http.StatusBadRequest
	case model.KindInvalidState, model.KindConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// pathID parses the {id} route parameter as a UUID.
func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, model.ErrInvalidReference
	}
	return id, nil
}

// pageFromQuery reads pagination and sorting from the query string.
func pageFromQuery(r *http.Request) model.Page {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	return model.Page{
		Page:     page,
		Limit:    limit,
		SortBy:   q.Get("sortBy"),
		SortDesc: q.Get("order") == "desc",
	}.Normalize()
}

// listResponse is the envelope for paginated collections.
type listResponse struct {
	Data       any               `json:"data"`
	Pagination *model.Pagination `json:"pagination,omitempty"`
}

func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return model.ValidationError("invalid request body")
	}
	return nil
}
