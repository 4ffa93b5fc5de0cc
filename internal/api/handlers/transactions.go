package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/eshaffer321/finpal-backend/internal/api/dto"
	"github.com/eshaffer321/finpal-backend/internal/application/service"
	"github.com/eshaffer321/finpal-backend/internal/domain/splitter"
	"github.com/eshaffer321/finpal-backend/internal/infrastructure/storage"
)

// TransactionsHandler handles transaction-related HTTP requests.
type TransactionsHandler struct {
	*Base
	transactions *service.TransactionService
}

// NewTransactionsHandler creates a new transactions handler.
func NewTransactionsHandler(transactions *service.TransactionService, logger *slog.Logger) *TransactionsHandler {
	return &TransactionsHandler{Base: NewBase(logger), transactions: transactions}
}

// List handles GET /api/transactions - returns a page of stored transactions.
func (h *TransactionsHandler) List(w http.ResponseWriter, r *http.Request) {
	params := dto.DefaultTransactionListParams()
	params.Limit = ParseIntParam(r, "limit", params.Limit)
	params.Offset = ParseIntParam(r, "offset", params.Offset)
	params.GroupID = r.URL.Query().Get("groupId")
	params.CategoryID = r.URL.Query().Get("categoryId")

	// Clamp
	if params.Limit <= 0 || params.Limit > 500 {
		params.Limit = 50
	}
	if params.Offset < 0 {
		params.Offset = 0
	}

	txns, err := h.transactions.List(r.Context(), storage.TransactionFilters{
		GroupID:    params.GroupID,
		CategoryID: params.CategoryID,
		Limit:      params.Limit,
		Offset:     params.Offset,
	})
	if err != nil {
		h.HandleError(w, r, err, "transactions")
		return
	}

	out := make([]dto.TransactionResponse, 0, len(txns))
	for _, t := range txns {
		out = append(out, dto.NewTransactionResponse(t))
	}
	h.WriteJSON(w, http.StatusOK, dto.TransactionListResponse{
		Transactions: out,
		Count:        len(out),
		Limit:        params.Limit,
		Offset:       params.Offset,
	})
}

// Get handles GET /api/transactions/{id}.
func (h *TransactionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	txn, err := h.transactions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleError(w, r, err, "transaction")
		return
	}
	h.WriteJSON(w, http.StatusOK, dto.NewTransactionResponse(*txn))
}

// Create handles POST /api/transactions.
func (h *TransactionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decodeInput(w, r)
	if !ok {
		return
	}
	result, err := h.transactions.Create(r.Context(), in)
	if err != nil {
		h.HandleError(w, r, err, "transaction")
		return
	}
	h.WriteJSON(w, http.StatusCreated, writeResponse(result))
}

// Update handles PUT /api/transactions/{id}.
func (h *TransactionsHandler) Update(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decodeInput(w, r)
	if !ok {
		return
	}
	result, err := h.transactions.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		h.HandleError(w, r, err, "transaction")
		return
	}
	h.WriteJSON(w, http.StatusOK, writeResponse(result))
}

// Delete handles DELETE /api/transactions/{id}.
func (h *TransactionsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.transactions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.HandleError(w, r, err, "transaction")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TransactionsHandler) decodeInput(w http.ResponseWriter, r *http.Request) (service.TransactionInput, bool) {
	var req dto.TransactionRequest
	if !h.DecodeJSON(w, r, &req) {
		return service.TransactionInput{}, false
	}
	amount, err := splitter.ResolveTotal(string(req.TotalAmount), string(req.Amount))
	if err != nil {
		h.HandleError(w, r, err, "transaction")
		return service.TransactionInput{}, false
	}
	return service.TransactionInput{
		Description:     req.Description,
		Amount:          amount,
		Date:            req.Date,
		TransactionType: req.TransactionType,
		CategoryID:      req.CategoryID,
		AccountID:       req.AccountID,
		Tags:            req.Tags,
		Notes:           req.Notes,
		GroupID:         req.GroupID,
		PayerID:         req.PayerID,
		SplitWith:       req.SplitWith,
		SplitMethod:     req.SplitMethod,
		SplitValues:     req.SplitValues(),
		SplitDetails:    req.SplitDetails,
		CategorySplits:  req.CategorySplits,
	}, true
}

func writeResponse(result *service.TransactionResult) dto.TransactionWriteResponse {
	return dto.TransactionWriteResponse{
		Transaction:            dto.NewTransactionResponse(*result.Transaction),
		SplitSummary:           result.SplitSummary,
		CategoryReconciliation: result.CategoryReconciliation,
		AppliedRuleID:          result.AppliedRuleID,
		Diagnostics:            result.Diagnostics,
	}
}
