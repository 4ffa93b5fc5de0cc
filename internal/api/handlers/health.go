package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/eshaffer321/finpal-backend/internal/api/dto"
)

// pingTimeout bounds the database check so a wedged pool cannot hang probes.
const pingTimeout = 2 * time.Second

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	*Base
	db Pinger
}

// NewHealthHandler creates a health handler that checks db on every probe.
func NewHealthHandler(db Pinger, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{Base: NewBase(logger), db: db}
}

// ServeHTTP reports ok, or 503 with status "degraded" when the database
// does not answer.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	response := dto.NewHealthResponse()
	if err := h.db.Ping(ctx); err != nil {
		h.logger.Warn("health check failed", "error", err)
		response.Status = "degraded"
		response.Database = "unreachable"
		h.WriteJSON(w, http.StatusServiceUnavailable, response)
		return
	}
	h.WriteJSON(w, http.StatusOK, response)
}
