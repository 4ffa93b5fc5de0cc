package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/eshaffer321/finpal-backend/internal/domain/rules"
	"github.com/eshaffer321/finpal-backend/internal/domain/validator"
	"github.com/eshaffer321/finpal-backend/internal/infrastructure/config"
	"github.com/eshaffer321/finpal-backend/internal/infrastructure/storage"
)

// RuleService manages categorization rules and runs them over stored
// transactions.
type RuleService struct {
	repo    storage.Repository
	engine  *rules.Engine
	timeout time.Duration
	logger  *slog.Logger
}

// NewRuleService creates a rule service. A zero timeout uses
// config.DefaultBulkApplyTimeout.
func NewRuleService(repo storage.Repository, engine *rules.Engine, timeout time.Duration, logger *slog.Logger) *RuleService {
	if engine == nil {
		engine = rules.NewEngine()
	}
	if timeout <= 0 {
		timeout = config.DefaultBulkApplyTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RuleService{repo: repo, engine: engine, timeout: timeout, logger: logger}
}

// List returns all rules
func (s *RuleService) List(ctx context.Context) ([]rules.Rule, error) {
	ruleSet, err := s.repo.ListRules(ctx)
	if err != nil {
		return nil, err
	}
	s.engine.Prune(ruleSet)
	return ruleSet, nil
}

// Get returns a rule by id
func (s *RuleService) Get(ctx context.Context, id string) (*rules.Rule, error) {
	return s.repo.GetRule(ctx, id)
}

// Create validates and stores a new rule. Match statistics start at zero.
func (s *RuleService) Create(ctx context.Context, r rules.Rule) (*rules.Rule, error) {
	if err := rules.ValidateRule(r); err != nil {
		return nil, err
	}
	if err := checkRuleReferences(ctx, s.repo, r); err != nil {
		return nil, err
	}
	r.ID = uuid.NewString()
	r.MatchCount = 0
	r.LastMatchedAt = nil
	r.CreatedAt = time.Time{}
	if err := s.repo.SaveRule(ctx, &r); err != nil {
		return nil, err
	}
	s.logger.Info("created rule", "rule_id", r.ID, "name", r.Name, "priority", r.Priority)
	return &r, nil
}

// Update replaces an existing rule's definition. Match statistics and the
// system flag are kept from the stored rule.
func (s *RuleService) Update(ctx context.Context, id string, r rules.Rule) (*rules.Rule, error) {
	existing, err := s.repo.GetRule(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := rules.ValidateRule(r); err != nil {
		return nil, err
	}
	if err := checkRuleReferences(ctx, s.repo, r); err != nil {
		return nil, err
	}
	r.ID = existing.ID
	r.MatchCount = existing.MatchCount
	r.LastMatchedAt = existing.LastMatchedAt
	r.IsSystem = existing.IsSystem
	r.CreatedAt = existing.CreatedAt
	if err := s.repo.SaveRule(ctx, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Delete removes a rule. System rules cannot be deleted, only deactivated.
func (s *RuleService) Delete(ctx context.Context, id string) error {
	existing, err := s.repo.GetRule(ctx, id)
	if err != nil {
		return err
	}
	if existing.IsSystem {
		return validator.New("id", "system rules cannot be deleted")
	}
	return s.repo.DeleteRule(ctx, id)
}

// Stats summarizes the stored rule set
func (s *RuleService) Stats(ctx context.Context) (rules.Stats, error) {
	ruleSet, err := s.repo.ListRules(ctx)
	if err != nil {
		return rules.Stats{}, err
	}
	return rules.ComputeStats(ruleSet), nil
}

// BulkApply re-runs every active rule over every stored transaction and
// persists what changed. It runs under the configured timeout; when that
// expires the work done so far is still saved and the context error is
// returned alongside the partial result.
func (s *RuleService) BulkApply(ctx context.Context) (*rules.BulkResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	ruleSet, err := s.repo.ListRules(ctx)
	if err != nil {
		return nil, err
	}
	stored, err := s.repo.ListTransactions(ctx, storage.TransactionFilters{})
	if err != nil {
		return nil, err
	}

	views := make([]rules.Transaction, len(stored))
	for i := range stored {
		views[i] = stored[i].RuleView()
	}

	if n := s.engine.Prune(ruleSet); n > 0 {
		s.logger.Debug("pruned compiled patterns", "dropped", n)
	}
	result, runErr := s.engine.BulkApply(ctx, views, ruleSet)
	for _, d := range result.Diagnostics {
		s.logger.Warn("rule skipped during bulk apply", "rule_id", d.RuleID, "error", d.Message)
	}

	// Persist with a fresh context so a timeout mid-run still saves the
	// partial result.
	saveCtx := context.WithoutCancel(ctx)
	if err := s.persist(saveCtx, result); err != nil {
		return nil, err
	}

	s.logger.Info("bulk apply finished",
		"processed", result.Processed,
		"updated", result.Updated,
		"rules", len(result.MatchDeltas),
		"duration", time.Since(start))

	if runErr != nil {
		return result, fmt.Errorf("bulk apply stopped after %d transactions: %w", result.Processed, runErr)
	}
	return result, nil
}

func (s *RuleService) persist(ctx context.Context, result *rules.BulkResult) error {
	if len(result.Changes) > 0 {
		written, err := s.repo.SaveRuleAssignments(ctx, result.Changes)
		if err != nil {
			return fmt.Errorf("save rule assignments: %w", err)
		}
		if skipped := len(result.Changes) - written; skipped > 0 {
			s.logger.Info("kept transactions edited during bulk apply", "skipped", skipped)
			result.Updated -= skipped
		}
	}
	if len(result.MatchDeltas) > 0 {
		if err := s.repo.IncrementRuleMatches(ctx, result.MatchDeltas, s.engine.Now()); err != nil {
			return fmt.Errorf("record rule matches: %w", err)
		}
	}
	return nil
}

// Suggest proposes a rule after a transaction is recategorized by hand.
// It returns nil when no rule is worth suggesting. Nothing is saved.
func (s *RuleService) Suggest(ctx context.Context, transactionID, newCategoryID string) (*rules.RuleDraft, error) {
	if err := validator.Required("transactionId", transactionID); err != nil {
		return nil, err
	}
	if err := validator.Required("categoryId", newCategoryID); err != nil {
		return nil, err
	}
	txn, err := s.repo.GetTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	ruleSet, err := s.repo.ListRules(ctx)
	if err != nil {
		return nil, err
	}
	return s.engine.Suggest(txn.RuleView(), newCategoryID, ruleSet), nil
}
