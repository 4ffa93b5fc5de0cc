package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/eshaffer321/finpal-backend/internal/domain/money"
	"github.com/eshaffer321/finpal-backend/internal/domain/rules"
	"github.com/eshaffer321/finpal-backend/internal/domain/splitter"
	"github.com/eshaffer321/finpal-backend/internal/domain/validator"
	"github.com/eshaffer321/finpal-backend/internal/infrastructure/storage"
)

// TransactionInput holds the writable fields of a transaction.
type TransactionInput struct {
	Description     string
	Amount          decimal.Decimal
	Date            string
	TransactionType string
	CategoryID      string
	AccountID       string
	Tags            []string
	Notes           string

	// Group split. SplitDetails wins over SplitMethod + SplitValues when
	// both are given. A group without any method uses the group default.
	GroupID      string
	PayerID      string
	SplitWith    []string
	SplitMethod  splitter.Kind
	SplitValues  splitter.Values
	SplitDetails *splitter.Payload

	CategorySplits []splitter.CategorySplit
}

// Validate checks the fields every write needs
func (in TransactionInput) Validate() error {
	if err := validator.ValidateTransactionInput(in.Amount, in.TransactionType); err != nil {
		return err
	}
	return validator.Required("date", in.Date)
}

func (in TransactionInput) splitMethod() (splitter.Method, error) {
	if in.SplitDetails != nil {
		return in.SplitDetails.Method(in.GroupID)
	}
	kind := in.SplitMethod
	if kind == "" {
		kind = splitter.KindGroupDefault
	}
	return splitter.NewMethod(kind, in.SplitValues, in.GroupID)
}

// TransactionResult is a saved transaction plus what the engines decided
type TransactionResult struct {
	Transaction *storage.Transaction `json:"transaction"`

	Split        *splitter.Result `json:"-"`
	SplitSummary string           `json:"splitSummary,omitempty"`

	CategoryReconciliation *splitter.CategoryReconciliation `json:"categoryReconciliation,omitempty"`

	AppliedRuleID string             `json:"appliedRuleId,omitempty"`
	Diagnostics   []rules.Diagnostic `json:"diagnostics,omitempty"`
}

// TransactionService writes transactions through the split and rule engines.
type TransactionService struct {
	repo         storage.Repository
	engine       *rules.Engine
	applyOnWrite bool
	formatting   money.FormattingContext
	logger       *slog.Logger
}

// TransactionServiceOption configures a TransactionService.
type TransactionServiceOption func(*TransactionService)

// WithRulesOnWrite toggles rule evaluation on create and update.
func WithRulesOnWrite(on bool) TransactionServiceOption {
	return func(s *TransactionService) { s.applyOnWrite = on }
}

// WithFormatting sets the formatting used for split summaries.
func WithFormatting(fc money.FormattingContext) TransactionServiceOption {
	return func(s *TransactionService) { s.formatting = fc }
}

// NewTransactionService creates a transaction service.
func NewTransactionService(repo storage.Repository, engine *rules.Engine, logger *slog.Logger, opts ...TransactionServiceOption) *TransactionService {
	if engine == nil {
		engine = rules.NewEngine()
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &TransactionService{
		repo:         repo,
		engine:       engine,
		applyOnWrite: true,
		formatting:   money.DefaultFormatting(),
		logger:       logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns a transaction by id
func (s *TransactionService) Get(ctx context.Context, id string) (*storage.Transaction, error) {
	return s.repo.GetTransaction(ctx, id)
}

// List returns transactions matching filters
func (s *TransactionService) List(ctx context.Context, filters storage.TransactionFilters) ([]storage.Transaction, error) {
	return s.repo.ListTransactions(ctx, filters)
}

// Delete removes a transaction
func (s *TransactionService) Delete(ctx context.Context, id string) error {
	return s.repo.DeleteTransaction(ctx, id)
}

// Create validates and stores a new transaction
func (s *TransactionService) Create(ctx context.Context, in TransactionInput) (*TransactionResult, error) {
	return s.write(ctx, &storage.Transaction{ID: uuid.NewString()}, in)
}

// Update replaces the writable fields of an existing transaction
func (s *TransactionService) Update(ctx context.Context, id string, in TransactionInput) (*TransactionResult, error) {
	txn, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.write(ctx, txn, in)
}

func (s *TransactionService) write(ctx context.Context, txn *storage.Transaction, in TransactionInput) (*TransactionResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := requireCategory(ctx, s.repo, "categoryId", in.CategoryID); err != nil {
		return nil, err
	}
	if err := requireAccount(ctx, s.repo, "accountId", in.AccountID); err != nil {
		return nil, err
	}

	txn.Description = strings.TrimSpace(in.Description)
	txn.Amount = money.RoundCents(in.Amount)
	txn.Date = in.Date
	txn.Type = in.TransactionType
	txn.CategoryID = in.CategoryID
	txn.AccountID = in.AccountID
	txn.Tags = append([]string{}, in.Tags...)
	txn.Notes = in.Notes
	txn.AppliedRuleID = ""

	result := &TransactionResult{Transaction: txn}

	var matched []*rules.Rule
	if s.applyOnWrite {
		ruleSet, err := s.repo.ListRules(ctx)
		if err != nil {
			return nil, err
		}
		s.engine.Prune(ruleSet)
		out := s.engine.Apply(txn.RuleView(), ruleSet)
		result.Diagnostics = out.Diagnostics
		for _, d := range out.Diagnostics {
			s.logger.Warn("rule skipped", "rule_id", d.RuleID, "error", d.Message)
		}
		if len(out.Matched) > 0 {
			txn.SetRuleView(out.Transaction)
			txn.AppliedRuleID = out.RuleID
			result.AppliedRuleID = out.RuleID
			matched = out.Matched
		}
	}

	if err := s.applySplit(ctx, txn, in, result); err != nil {
		return nil, err
	}

	txn.CategorySplits = nil
	if len(in.CategorySplits) > 0 {
		rec := splitter.ReconcileCategorySplits(in.CategorySplits, txn.Amount)
		txn.CategorySplits = rec.Counted
		result.CategoryReconciliation = &rec
	}

	if err := s.repo.SaveTransaction(ctx, txn); err != nil {
		return nil, err
	}

	if len(matched) > 0 {
		deltas := make(map[string]int, len(matched))
		for _, r := range matched {
			deltas[r.ID] = 1
		}
		// The transaction is already stored; a lost counter bump is logged
		// rather than failing the write.
		if err := s.repo.IncrementRuleMatches(ctx, deltas, *matched[0].LastMatchedAt); err != nil {
			s.logger.Error("failed to record rule match", "rule_id", result.AppliedRuleID, "error", err)
		}
	}

	s.logger.Debug("saved transaction",
		"transaction_id", txn.ID,
		"amount", txn.Amount.StringFixed(2),
		"rule_id", result.AppliedRuleID,
		"split_status", txn.SplitStatus)

	return result, nil
}

func (s *TransactionService) applySplit(ctx context.Context, txn *storage.Transaction, in TransactionInput, result *TransactionResult) error {
	txn.GroupID, txn.PayerID, txn.SplitMethod, txn.SplitStatus = "", "", "", ""
	txn.SplitValues = nil
	txn.Participants = nil
	if in.GroupID == "" {
		return nil
	}

	group, err := s.repo.GetGroup(ctx, in.GroupID)
	if errors.Is(err, storage.ErrNotFound) {
		return validator.Newf("groupId", "group %s not found", in.GroupID)
	}
	if err != nil {
		return err
	}

	method, err := in.splitMethod()
	if err != nil {
		return err
	}

	participants, payer := splitter.GroupParticipants(group.SplitGroup(), in.SplitWith, in.PayerID)
	split, err := splitter.ComputeSplit(ctx, splitter.Spec{
		Method:      method,
		TotalAmount: txn.Amount,
		PayerID:     payer,
	}, participants, storage.SplitGroups(s.repo))
	if err != nil {
		return err
	}
	if split.Resolution.FellBack {
		s.logger.Warn("group default unavailable, split equally",
			"group_id", in.GroupID, "reason", split.Resolution.Reason)
	}

	txn.GroupID = group.ID
	txn.PayerID = payer
	txn.SplitMethod = split.Method
	txn.SplitValues = split.Values.Clone()
	txn.SplitStatus = string(split.Status())
	txn.Participants = make([]storage.Participant, 0, len(split.Participants))
	for _, p := range split.Participants {
		txn.Participants = append(txn.Participants, storage.Participant{
			ID:      p.ID,
			Name:    p.Name,
			IsPayer: p.IsPayer,
			Amount:  split.Amounts[p.ID],
		})
	}

	result.Split = split
	result.SplitSummary = split.Describe(s.formatting)
	return nil
}
