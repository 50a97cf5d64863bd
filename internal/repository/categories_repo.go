package repository

import (
	"context"

	"github.com/cloudzeus/kimoncrm-sub005/internal/domain"
)

type CategoriesRepository interface {
	GetCategory(ctx context.Context, id string) (*domain.Category, error)
	// ListCategories returns every category ordered by sort_order, name.
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	CreateCategory(ctx context.Context, c *domain.Category) error
	UpdateCategory(ctx context.Context, c *domain.Category) error
	DeleteCategory(ctx context.Context, id string) error
	CountChildren(ctx context.Context, id string) (int, error)
	ReorderCategories(ctx context.Context, ids []string) error
}
