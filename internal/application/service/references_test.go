package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/finpal-backend/internal/domain/rules"
	"github.com/eshaffer321/finpal-backend/internal/domain/validator"
	"github.com/eshaffer321/finpal-backend/internal/infrastructure/logging"
	"github.com/eshaffer321/finpal-backend/internal/infrastructure/storage"
)

func newSQLiteStore(t *testing.T) *storage.Storage {
	t.Helper()
	store, err := storage.NewStorage(filepath.Join(t.TempDir(), "finpal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func requireFieldError(t *testing.T, err error, field string) {
	t.Helper()
	var ve *validator.ValidationError
	require.True(t, errors.As(err, &ve), "expected a validation error, got %v", err)
	assert.Equal(t, field, ve.Field)
}

func TestRuleService_UnknownReferences(t *testing.T) {
	// Arrange
	store := newSQLiteStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveCategory(ctx, &storage.Category{ID: "coffee", Name: "Coffee"}))
	require.NoError(t, store.SaveAccount(ctx, &storage.Account{ID: "card", Name: "Card"}))
	svc := NewRuleService(store, testEngine(), 0, logging.Discard())
	txns := NewTransactionService(store, testEngine(), logging.Discard())

	t.Run("create rejects an unknown category", func(t *testing.T) {
		_, err := svc.Create(ctx, rules.Rule{Name: "Coffee", Pattern: "coffee", Active: true, AutoCategoryID: ptr("no-such-category")})

		requireFieldError(t, err, "autoCategoryId")
		saved, err := store.ListRules(ctx)
		require.NoError(t, err)
		assert.Empty(t, saved)
	})

	t.Run("create rejects an unknown account", func(t *testing.T) {
		_, err := svc.Create(ctx, rules.Rule{Name: "Coffee", Pattern: "coffee", Active: true, AutoAccountID: ptr("no-such-account")})

		requireFieldError(t, err, "autoAccountId")
	})

	created, err := svc.Create(ctx, rules.Rule{
		Name: "Coffee", Pattern: "coffee", Active: true, AutoCategoryID: ptr("coffee"), AutoAccountID: ptr("card"),
	})
	require.NoError(t, err)

	t.Run("update rejects an unknown category", func(t *testing.T) {
		_, err := svc.Update(ctx, created.ID, rules.Rule{Name: "Coffee", Pattern: "coffee", Active: true, AutoCategoryID: ptr("gone")})

		requireFieldError(t, err, "autoCategoryId")
		stored, err := store.GetRule(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "coffee", *stored.AutoCategoryID)
	})

	t.Run("writes and bulk apply use the validated rule", func(t *testing.T) {
		result, err := txns.Create(ctx, TransactionInput{
			Description: "coffee shop", Amount: d("5"), Date: "2024-06-01", TransactionType: "expense",
		})
		require.NoError(t, err)
		assert.Equal(t, "coffee", result.Transaction.CategoryID)
		assert.Equal(t, "card", result.Transaction.AccountID)

		bulk, err := svc.BulkApply(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, bulk.Processed)
		assert.Zero(t, bulk.Updated)
	})

	t.Run("unknown client category on a write is a validation error", func(t *testing.T) {
		_, err := txns.Create(ctx, TransactionInput{
			Description: "tea", Amount: d("3"), Date: "2024-06-02", TransactionType: "expense", CategoryID: "no-such-category",
		})

		requireFieldError(t, err, "categoryId")
	})

	t.Run("unknown client account on a write is a validation error", func(t *testing.T) {
		_, err := txns.Create(ctx, TransactionInput{
			Description: "tea", Amount: d("3"), Date: "2024-06-02", TransactionType: "expense", AccountID: "no-such-account",
		})

		requireFieldError(t, err, "accountId")
	})
}
