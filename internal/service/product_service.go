package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudzeus/kimoncrm-sub005/internal/domain"
	"github.com/cloudzeus/kimoncrm-sub005/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ProductService struct {
	products repository.ProductsRepository
	logger   *zap.Logger
}

func NewProductService(products repository.ProductsRepository, logger *zap.Logger) *ProductService {
	return &ProductService{products: products, logger: logger}
}

type ListProductsRequest struct {
	Search     string
	BrandID    string
	CategoryID string
	Active     *bool
	Page       int
	Size       int
}

func (s *ProductService) ListProducts(ctx context.Context, req ListProductsRequest) (*domain.PageResult[*domain.Product], error) {
	page := domain.NewPage(req.Page, req.Size)
	filter := domain.ProductFilter{Search: req.Search, BrandID: req.BrandID, CategoryID: req.CategoryID, Active: req.Active}
	items, total, err := s.products.ListProducts(ctx, filter, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	res := domain.NewPageResult(items, total, page)
	return &res, nil
}

func (s *ProductService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	p, err := s.products.GetProduct(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return p, nil
}

type ProductRequest struct {
	ID         string          `json:"-"`
	Name       string          `json:"name" valid:"required,stringlength(1|300)"`
	Code       string          `json:"code" valid:"required,stringlength(1|100)"`
	EAN        string          `json:"ean" valid:"numeric"`
	ERPCode    string          `json:"erp_code"`
	BrandID    string          `json:"brand_id" valid:"uuid"`
	CategoryID string          `json:"category_id" valid:"uuid"`
	UnitPrice  decimal.Decimal `json:"unit_price" valid:"-"`
	Unit       string          `json:"unit"`
	IsActive   *bool           `json:"is_active" valid:"-"`
}

func (req *ProductRequest) check() error {
	req.Name = strings.TrimSpace(req.Name)
	req.Code = strings.TrimSpace(req.Code)
	req.EAN = strings.TrimSpace(req.EAN)
	if err := validate(req); err != nil {
		return err
	}
	if req.UnitPrice.IsNegative() {
		return domain.NewValidationError("unit_price", "must be >= 0")
	}
	return nil
}

func (req *ProductRequest) apply(p *domain.Product) {
	p.Name = req.Name
	p.Code = req.Code
	p.EAN = optional(req.EAN)
	p.ERPCode = optional(req.ERPCode)
	p.BrandID = optional(req.BrandID)
	p.CategoryID = optional(req.CategoryID)
	p.UnitPrice = req.UnitPrice.Round(2)
	p.Unit = strings.TrimSpace(req.Unit)
	if p.Unit == "" {
		p.Unit = "pcs"
	}
	p.IsActive = boolOr(req.IsActive, p.IsActive)
}

func (s *ProductService) CreateProduct(ctx context.Context, req ProductRequest) (*domain.Product, error) {
	if err := req.check(); err != nil {
		return nil, err
	}
	p := &domain.Product{IsActive: true}
	req.apply(p)
	if err := s.products.CreateProduct(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	s.logger.Info("Product created", zap.String("product_id", p.ID), zap.String("code", p.Code))
	return s.GetProduct(ctx, p.ID)
}

func (s *ProductService) UpdateProduct(ctx context.Context, req ProductRequest) (*domain.Product, error) {
	if err := req.check(); err != nil {
		return nil, err
	}
	p, err := s.products.GetProduct(ctx, req.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	req.apply(p)
	if err := s.products.UpdateProduct(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return s.GetProduct(ctx, p.ID)
}

func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.products.DeleteProduct(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}
