package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/eshaffer321/finpal-backend/internal/domain/validator"
	"github.com/eshaffer321/finpal-backend/internal/infrastructure/storage"
)

// CatalogService serves the category and account lists.
type CatalogService struct {
	repo storage.Repository
}

// NewCatalogService creates a catalog service.
func NewCatalogService(repo storage.Repository) *CatalogService {
	return &CatalogService{repo: repo}
}

func (s *CatalogService) Categories(ctx context.Context) ([]storage.Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *CatalogService) Accounts(ctx context.Context) ([]storage.Account, error) {
	return s.repo.ListAccounts(ctx)
}

// SaveCategory creates or replaces a category
func (s *CatalogService) SaveCategory(ctx context.Context, c *storage.Category) error {
	if err := validator.Required("name", c.Name); err != nil {
		return err
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.ParentID != nil && *c.ParentID == c.ID {
		return validator.New("parentId", "a category cannot be its own parent")
	}
	return s.repo.SaveCategory(ctx, c)
}

// SaveAccount creates or replaces an account
func (s *CatalogService) SaveAccount(ctx context.Context, a *storage.Account) error {
	if err := validator.Required("name", a.Name); err != nil {
		return err
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return s.repo.SaveAccount(ctx, a)
}
