package service

import (
	"context"
	"errors"

	"github.com/eshaffer321/finpal-backend/internal/domain/rules"
	"github.com/eshaffer321/finpal-backend/internal/domain/validator"
	"github.com/eshaffer321/finpal-backend/internal/infrastructure/storage"
)

// requireCategory reports a validation error on field when id names no
// stored category. An empty id is allowed.
func requireCategory(ctx context.Context, repo storage.CategoryRepository, field, id string) error {
	if id == "" {
		return nil
	}
	_, err := repo.GetCategory(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return validator.Newf(field, "category %s not found", id)
	}
	return err
}

// requireAccount is requireCategory for accounts.
func requireAccount(ctx context.Context, repo storage.AccountRepository, field, id string) error {
	if id == "" {
		return nil
	}
	_, err := repo.GetAccount(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return validator.Newf(field, "account %s not found", id)
	}
	return err
}

// checkRuleReferences makes sure a rule only assigns categories and
// accounts that exist, so applying it can never trip a foreign key.
func checkRuleReferences(ctx context.Context, repo storage.Repository, r rules.Rule) error {
	if r.AutoCategoryID != nil {
		if err := requireCategory(ctx, repo, "autoCategoryId", *r.AutoCategoryID); err != nil {
			return err
		}
	}
	if r.AutoAccountID != nil {
		if err := requireAccount(ctx, repo, "autoAccountId", *r.AutoAccountID); err != nil {
			return err
		}
	}
	return nil
}
