package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/eshaffer321/finpal-backend/internal/api/dto"
	"github.com/eshaffer321/finpal-backend/internal/application/service"
)

// RulesHandler handles transaction rule requests.
type RulesHandler struct {
	*Base
	rules *service.RuleService
}

// NewRulesHandler creates a new rules handler.
func NewRulesHandler(rules *service.RuleService, logger *slog.Logger) *RulesHandler {
	return &RulesHandler{Base: NewBase(logger), rules: rules}
}

// List handles GET /api/transaction-rules.
func (h *RulesHandler) List(w http.ResponseWriter, r *http.Request) {
	ruleSet, err := h.rules.List(r.Context())
	if err != nil {
		h.HandleError(w, r, err, "rules")
		return
	}
	h.WriteJSON(w, http.StatusOK, dto.RuleListResponse{Rules: ruleSet})
}

// Get handles GET /api/transaction-rules/{id}.
func (h *RulesHandler) Get(w http.ResponseWriter, r *http.Request) {
	rule, err := h.rules.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleError(w, r, err, "rule")
		return
	}
	h.WriteJSON(w, http.StatusOK, rule)
}

// Create handles POST /api/transaction-rules.
func (h *RulesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.RuleRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}
	rule, err := h.rules.Create(r.Context(), req.Rule())
	if err != nil {
		h.HandleError(w, r, err, "rule")
		return
	}
	h.WriteJSON(w, http.StatusCreated, rule)
}

// Update handles PUT /api/transaction-rules/{id}.
func (h *RulesHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.RuleRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}
	rule, err := h.rules.Update(r.Context(), chi.URLParam(r, "id"), req.Rule())
	if err != nil {
		h.HandleError(w, r, err, "rule")
		return
	}
	h.WriteJSON(w, http.StatusOK, rule)
}

// Delete handles DELETE /api/transaction-rules/{id}.
func (h *RulesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.rules.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.HandleError(w, r, err, "rule")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// BulkApply handles POST /api/transaction-rules/bulk-apply.
func (h *RulesHandler) BulkApply(w http.ResponseWriter, r *http.Request) {
	result, err := h.rules.BulkApply(r.Context())
	if err != nil && result != nil && errors.Is(err, context.DeadlineExceeded) {
		// Work done before the deadline is already saved; report how much.
		h.logger.Warn("bulk apply timed out", "processed", result.Processed, "updated", result.Updated, "error", err)
		h.WriteJSON(w, http.StatusGatewayTimeout, dto.BulkApplyTimeoutResponse{
			APIError:  dto.TimeoutError(err.Error()),
			Processed: result.Processed,
			Updated:   result.Updated,
		})
		return
	}
	if err != nil {
		h.HandleError(w, r, err, "rules")
		return
	}
	h.WriteJSON(w, http.StatusOK, dto.BulkApplyResponse{
		Processed:   result.Processed,
		Updated:     result.Updated,
		Diagnostics: result.Diagnostics,
	})
}

// Suggest handles POST /api/transaction-rules/suggest. The response holds a
// draft for the user to confirm, or null.
func (h *RulesHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	var req dto.SuggestRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}
	draft, err := h.rules.Suggest(r.Context(), req.TransactionID, req.CategoryID)
	if err != nil {
		h.HandleError(w, r, err, "transaction")
		return
	}
	h.WriteJSON(w, http.StatusOK, dto.SuggestResponse{Suggestion: draft})
}

// Stats handles GET /api/transaction-rules/stats.
func (h *RulesHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.rules.Stats(r.Context())
	if err != nil {
		h.HandleError(w, r, err, "rules")
		return
	}
	h.WriteJSON(w, http.StatusOK, stats)
}
