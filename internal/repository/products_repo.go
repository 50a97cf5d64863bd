package repository

import (
	"context"

	"github.com/cloudzeus/kimoncrm-sub005/internal/domain"
)

type ProductsRepository interface {
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	// GetProductsByIDs returns the products found; missing ids are skipped.
	GetProductsByIDs(ctx context.Context, ids []string) (map[string]*domain.Product, error)
	ListProducts(ctx context.Context, filter domain.ProductFilter, page domain.Page) ([]*domain.Product, int, error)
	CreateProduct(ctx context.Context, p *domain.Product) error
	UpdateProduct(ctx context.Context, p *domain.Product) error
	DeleteProduct(ctx context.Context, id string) error
}
