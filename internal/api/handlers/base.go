package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/eshaffer321/finpal-backend/internal/api/dto"
	"github.com/eshaffer321/finpal-backend/internal/domain/validator"
	"github.com/eshaffer321/finpal-backend/internal/infrastructure/storage"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Base provides shared functionality for all handlers.
type Base struct {
	logger *slog.Logger
}

// NewBase creates a new base handler.
func NewBase(logger *slog.Logger) *Base {
	if logger == nil {
		logger = slog.Default()
	}
	return &Base{logger: logger}
}

// WriteJSON writes a JSON response with the given status code.
func (b *Base) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteError writes an error response with the given status code.
func (b *Base) WriteError(w http.ResponseWriter, status int, err dto.APIError) {
	b.WriteJSON(w, status, err)
}

// DecodeJSON decodes the request body into dst. On failure it writes a 400
// and returns false.
func (b *Base) DecodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		b.WriteError(w, http.StatusBadRequest, dto.BadRequestError("invalid request body: "+err.Error()))
		return false
	}
	return true
}

// HandleError maps service errors onto responses. Validation problems are
// 400s, missing records 404s, and anything else is logged and reported as
// a 500 without leaking the cause.
func (b *Base) HandleError(w http.ResponseWriter, r *http.Request, err error, resource string) {
	var ve *validator.ValidationError
	switch {
	case errors.As(err, &ve):
		b.WriteError(w, http.StatusBadRequest, dto.ValidationError(ve.Field, ve.Error()))
	case errors.Is(err, storage.ErrNotFound):
		b.WriteError(w, http.StatusNotFound, dto.NotFoundError(resource))
	case errors.Is(err, context.DeadlineExceeded):
		b.logger.Warn("request timed out", "path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()), "error", err)
		b.WriteError(w, http.StatusGatewayTimeout, dto.TimeoutError(err.Error()))
	default:
		b.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err)
		b.WriteError(w, http.StatusInternalServerError, dto.InternalError())
	}
}

// ParseIntParam parses an integer query parameter with a default value.
func ParseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return parsed
}
