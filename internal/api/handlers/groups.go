package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/eshaffer321/finpal-backend/internal/api/dto"
	"github.com/eshaffer321/finpal-backend/internal/application/service"
	"github.com/eshaffer321/finpal-backend/internal/domain/money"
	"github.com/eshaffer321/finpal-backend/internal/domain/splitter"
	"github.com/eshaffer321/finpal-backend/internal/domain/validator"
	"github.com/eshaffer321/finpal-backend/internal/infrastructure/storage"
)

// GroupsHandler handles shared-expense group requests.
type GroupsHandler struct {
	*Base
	groups *service.GroupService
}

// NewGroupsHandler creates a new groups handler.
func NewGroupsHandler(groups *service.GroupService, logger *slog.Logger) *GroupsHandler {
	return &GroupsHandler{Base: NewBase(logger), groups: groups}
}

// List handles GET /api/groups.
func (h *GroupsHandler) List(w http.ResponseWriter, r *http.Request) {
	groups, err := h.groups.List(r.Context())
	if err != nil {
		h.HandleError(w, r, err, "groups")
		return
	}
	h.WriteJSON(w, http.StatusOK, dto.GroupListResponse{Groups: groups})
}

// Get handles GET /api/groups/{id} - the group with members and balances.
func (h *GroupsHandler) Get(w http.ResponseWriter, r *http.Request) {
	detail, err := h.groups.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleError(w, r, err, "group")
		return
	}
	h.WriteJSON(w, http.StatusOK, detail)
}

// Balances handles GET /api/groups/{id}/balances.
func (h *GroupsHandler) Balances(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	owed, err := h.groups.Balances(r.Context(), id)
	if err != nil {
		h.HandleError(w, r, err, "group")
		return
	}
	h.WriteJSON(w, http.StatusOK, dto.BalancesResponse{GroupID: id, Balances: owed})
}

// Create handles POST /api/groups.
func (h *GroupsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.GroupRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}
	g := &storage.Group{
		ID:                 req.ID,
		Name:               req.Name,
		DefaultSplitMethod: req.DefaultSplitMethod,
		DefaultSplitValues: req.SplitValues(),
		Members:            req.Members,
		AutoIncludeAll:     req.AutoIncludeAll,
		DefaultPayer:       req.DefaultPayer,
	}
	if g.Members == nil {
		g.Members = []splitter.Member{}
	}
	if err := h.groups.Save(r.Context(), g); err != nil {
		h.HandleError(w, r, err, "group")
		return
	}
	h.WriteJSON(w, http.StatusCreated, g)
}

// PreviewSplit handles POST /api/splits/preview. Nothing is saved.
func (h *GroupsHandler) PreviewSplit(w http.ResponseWriter, r *http.Request) {
	var req dto.SplitPreviewRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}
	amount, err := splitter.ResolveTotal(string(req.Amount))
	if err != nil {
		h.HandleError(w, r, err, "split")
		return
	}
	in := service.PreviewInput{
		GroupID:   req.GroupID,
		Amount:    amount,
		PayerID:   req.PayerID,
		SplitWith: req.SplitWith,
		Method:    req.SplitMethod,
		Values:    req.SplitValues(),
	}
	if req.Edit != nil {
		if req.Edit.ParticipantID == "" {
			h.HandleError(w, r, validator.New("edit.participantId", "is required"), "split")
			return
		}
		in.Edit = &service.ValueEdit{ParticipantID: req.Edit.ParticipantID, Value: money.FromFloat(req.Edit.Value)}
	}

	preview, err := h.groups.PreviewSplit(r.Context(), in)
	if err != nil {
		h.HandleError(w, r, err, "group")
		return
	}
	h.WriteJSON(w, http.StatusOK, preview)
}
