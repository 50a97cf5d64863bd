package repository

import (
	"context"

	"github.com/cloudzeus/kimoncrm-sub005/internal/domain"
)

type BrandsRepository interface {
	GetBrand(ctx context.Context, id string) (*domain.Brand, error)
	ListBrands(ctx context.Context, search string) ([]*domain.Brand, error)
	CreateBrand(ctx context.Context, b *domain.Brand) error
	UpdateBrand(ctx context.Context, b *domain.Brand) error
	DeleteBrand(ctx context.Context, id string) error
	// ReorderBrands sets sort_order to each id's index; all-or-nothing.
	ReorderBrands(ctx context.Context, ids []string) error
}
