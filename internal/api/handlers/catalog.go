package handlers

import (
	"log/slog"
	"net/http"

	"github.com/eshaffer321/finpal-backend/internal/api/dto"
	"github.com/eshaffer321/finpal-backend/internal/application/service"
	"github.com/eshaffer321/finpal-backend/internal/infrastructure/storage"
)

// CatalogHandler serves categories and accounts.
type CatalogHandler struct {
	*Base
	catalog *service.CatalogService
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(catalog *service.CatalogService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{Base: NewBase(logger), catalog: catalog}
}

// Categories handles GET /api/categories.
func (h *CatalogHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.Categories(r.Context())
	if err != nil {
		h.HandleError(w, r, err, "categories")
		return
	}
	h.WriteJSON(w, http.StatusOK, dto.CategoryListResponse{Categories: categories})
}

// CreateCategory handles POST /api/categories.
func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var c storage.Category
	if !h.DecodeJSON(w, r, &c) {
		return
	}
	if err := h.catalog.SaveCategory(r.Context(), &c); err != nil {
		h.HandleError(w, r, err, "category")
		return
	}
	h.WriteJSON(w, http.StatusCreated, c)
}

// Accounts handles GET /api/accounts.
func (h *CatalogHandler) Accounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.catalog.Accounts(r.Context())
	if err != nil {
		h.HandleError(w, r, err, "accounts")
		return
	}
	h.WriteJSON(w, http.StatusOK, dto.AccountListResponse{Accounts: accounts})
}

// CreateAccount handles POST /api/accounts.
func (h *CatalogHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var a storage.Account
	if !h.DecodeJSON(w, r, &a) {
		return
	}
	if err := h.catalog.SaveAccount(r.Context(), &a); err != nil {
		h.HandleError(w, r, err, "account")
		return
	}
	h.WriteJSON(w, http.StatusCreated, a)
}
