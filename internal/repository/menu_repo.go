package repository

import (
	"context"

	"github.com/cloudzeus/kimoncrm-sub005/internal/domain"
)

type MenuRepository interface {
	ListGroups(ctx context.Context) ([]*domain.MenuGroup, error)
	GetGroup(ctx context.Context, id string) (*domain.MenuGroup, error)
	CreateGroup(ctx context.Context, g *domain.MenuGroup) error
	UpdateGroup(ctx context.Context, g *domain.MenuGroup) error
	DeleteGroup(ctx context.Context, id string) error
	ReorderGroups(ctx context.Context, ids []string) error

	// ListItems returns every item (active or not) ordered by sort_order, label.
	ListItems(ctx context.Context) ([]*domain.MenuItem, error)
	GetItem(ctx context.Context, id string) (*domain.MenuItem, error)
	CreateItem(ctx context.Context, m *domain.MenuItem) error
	UpdateItem(ctx context.Context, m *domain.MenuItem) error
	DeleteItem(ctx context.Context, id string) error
	ReorderItems(ctx context.Context, ids []string) error
}
