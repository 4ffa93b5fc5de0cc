package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/eshaffer321/finpal-backend/internal/domain/balances"
	"github.com/eshaffer321/finpal-backend/internal/domain/money"
	"github.com/eshaffer321/finpal-backend/internal/domain/splitter"
	"github.com/eshaffer321/finpal-backend/internal/domain/validator"
	"github.com/eshaffer321/finpal-backend/internal/infrastructure/storage"
)

// GroupDetail is a group with its current balances
type GroupDetail struct {
	storage.Group
	Balances []balances.Balance `json:"balances"`
}

// ValueEdit changes one participant's value in a split preview
type ValueEdit struct {
	ParticipantID string
	Value         decimal.Decimal
}

// PreviewInput describes the split form state to preview
type PreviewInput struct {
	GroupID   string
	Amount    decimal.Decimal
	PayerID   string
	SplitWith []string
	Method    splitter.Kind
	Values    splitter.Values

	// Edit, when set, is applied on top of the state above
	Edit *ValueEdit
}

// Preview is the computed split for a form state
type Preview struct {
	Method         splitter.Kind              `json:"method"`
	Resolution     splitter.Resolution        `json:"resolution"`
	Participants   []splitter.Participant     `json:"participants"`
	Amounts        map[string]decimal.Decimal `json:"amounts"`
	Reconciliation money.Reconciliation       `json:"reconciliation"`
	SplitDetails   splitter.Payload           `json:"splitDetails"`
	Summary        string                     `json:"summary"`
}

// GroupService reads shared-expense groups and previews splits.
type GroupService struct {
	repo       storage.Repository
	formatting money.FormattingContext
	logger     *slog.Logger
}

// NewGroupService creates a group service.
func NewGroupService(repo storage.Repository, formatting money.FormattingContext, logger *slog.Logger) *GroupService {
	if logger == nil {
		logger = slog.Default()
	}
	return &GroupService{repo: repo, formatting: formatting, logger: logger}
}

// List returns all groups
func (s *GroupService) List(ctx context.Context) ([]storage.Group, error) {
	return s.repo.ListGroups(ctx)
}

// Get returns a group with its balances
func (s *GroupService) Get(ctx context.Context, id string) (*GroupDetail, error) {
	group, err := s.repo.GetGroup(ctx, id)
	if err != nil {
		return nil, err
	}
	owed, err := s.balances(ctx, group)
	if err != nil {
		return nil, err
	}
	return &GroupDetail{Group: *group, Balances: owed}, nil
}

// Balances nets the group's split transactions into who owes whom
func (s *GroupService) Balances(ctx context.Context, id string) ([]balances.Balance, error) {
	group, err := s.repo.GetGroup(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.balances(ctx, group)
}

func (s *GroupService) balances(ctx context.Context, group *storage.Group) ([]balances.Balance, error) {
	txns, err := s.repo.ListTransactions(ctx, storage.TransactionFilters{GroupID: group.ID})
	if err != nil {
		return nil, err
	}
	entries := make([]balances.Entry, 0, len(txns))
	for i := range txns {
		entries = append(entries, balances.Entry{PayerID: txns[i].PayerID, Owed: txns[i].Owed()})
	}
	out := balances.Compute(entries, group.MemberIDs())
	if out == nil {
		out = []balances.Balance{}
	}
	return out, nil
}

// Save creates or replaces a group. A missing id is generated.
func (s *GroupService) Save(ctx context.Context, g *storage.Group) error {
	if err := validator.Required("name", g.Name); err != nil {
		return err
	}
	if g.DefaultSplitMethod == splitter.KindGroupDefault {
		return validator.New("defaultSplitMethod", "a group default cannot refer to another group default")
	}
	if g.DefaultSplitMethod != "" {
		if _, err := splitter.NewMethod(g.DefaultSplitMethod, nil, ""); err != nil {
			return err
		}
	}
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return s.repo.SaveGroup(ctx, g)
}

// PreviewSplit computes the split for a form state without saving
// anything. Incomplete forms (no participants yet, no amount) return a
// validation error describing what is missing.
func (s *GroupService) PreviewSplit(ctx context.Context, in PreviewInput) (*Preview, error) {
	var group *splitter.Group
	if in.GroupID != "" {
		g, err := s.repo.GetGroup(ctx, in.GroupID)
		if err != nil {
			return nil, err
		}
		group = g.SplitGroup()
	}

	kind := in.Method
	if kind == "" && in.GroupID != "" {
		kind = splitter.KindGroupDefault
	}
	method, err := splitter.NewMethod(kind, in.Values, in.GroupID)
	if err != nil {
		return nil, err
	}
	participants, payer := splitter.GroupParticipants(group, in.SplitWith, in.PayerID)

	state := splitter.State{
		Spec:         splitter.Spec{Method: method, TotalAmount: in.Amount, PayerID: payer},
		Participants: participants,
	}
	var action splitter.Action
	if in.Edit != nil {
		action = splitter.SetValue{ParticipantID: in.Edit.ParticipantID, Value: in.Edit.Value}
	}

	next := splitter.Reduce(ctx, state, action, storage.SplitGroups(s.repo))
	if next.Err != nil {
		return nil, next.Err
	}
	res := next.Result
	return &Preview{
		Method:         res.Method,
		Resolution:     res.Resolution,
		Participants:   res.Participants,
		Amounts:        res.Amounts,
		Reconciliation: res.Reconciliation,
		SplitDetails:   res.Payload(),
		Summary:        res.Describe(s.formatting),
	}, nil
}
