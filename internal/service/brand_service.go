package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudzeus/kimoncrm-sub005/internal/domain"
	"github.com/cloudzeus/kimoncrm-sub005/internal/repository"

	"go.uber.org/zap"
)

type BrandService struct {
	brands repository.BrandsRepository
	logger *zap.Logger
}

func NewBrandService(brands repository.BrandsRepository, logger *zap.Logger) *BrandService {
	return &BrandService{brands: brands, logger: logger}
}

func (s *BrandService) ListBrands(ctx context.Context, search string) ([]*domain.Brand, error) {
	brands, err := s.brands.ListBrands(ctx, search)
	if err != nil {
		return nil, fmt.Errorf("failed to list brands: %w", err)
	}
	return brands, nil
}

func (s *BrandService) GetBrand(ctx context.Context, id string) (*domain.Brand, error) {
	b, err := s.brands.GetBrand(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get brand: %w", err)
	}
	return b, nil
}

type BrandRequest struct {
	ID      string `json:"-"`
	Name    string `json:"name" valid:"required,stringlength(1|200)"`
	Code    string `json:"code"`
	Website string `json:"website" valid:"url"`
	LogoURL string `json:"logo_url" valid:"url"`
	ERPCode string `json:"erp_code"`
}

func (req *BrandRequest) apply(b *domain.Brand) {
	b.Name = strings.TrimSpace(req.Name)
	b.Code = optional(req.Code)
	b.Website = optional(req.Website)
	b.LogoURL = optional(req.LogoURL)
	b.ERPCode = optional(req.ERPCode)
}

func (s *BrandService) CreateBrand(ctx context.Context, req BrandRequest) (*domain.Brand, error) {
	if err := validate(&req); err != nil {
		return nil, err
	}
	b := &domain.Brand{}
	req.apply(b)
	if err := s.brands.CreateBrand(ctx, b); err != nil {
		return nil, fmt.Errorf("failed to create brand: %w", err)
	}
	s.logger.Info("Brand created", zap.String("brand_id", b.ID), zap.String("name", b.Name))
	return b, nil
}

func (s *BrandService) UpdateBrand(ctx context.Context, req BrandRequest) (*domain.Brand, error) {
	if err := validate(&req); err != nil {
		return nil, err
	}
	b, err := s.brands.GetBrand(ctx, req.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get brand: %w", err)
	}
	req.apply(b)
	if err := s.brands.UpdateBrand(ctx, b); err != nil {
		return nil, fmt.Errorf("failed to update brand: %w", err)
	}
	return b, nil
}

func (s *BrandService) DeleteBrand(ctx context.Context, id string) error {
	if err := s.brands.DeleteBrand(ctx, id); err != nil {
		return fmt.Errorf("failed to delete brand: %w", err)
	}
	return nil
}

// ReorderBrands applies the order of ids; all ids must exist.
func (s *BrandService) ReorderBrands(ctx context.Context, ids []string) error {
	if err := checkReorderIDs(ids); err != nil {
		return err
	}
	if err := s.brands.ReorderBrands(ctx, ids); err != nil {
		return fmt.Errorf("failed to reorder brands: %w", err)
	}
	return nil
}

// checkReorderIDs rejects empty and duplicate ids.
func checkReorderIDs(ids []string) error {
	if len(ids) == 0 {
		return domain.NewValidationError("ids", "must not be empty")
	}
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			return domain.NewValidationError("ids", "must not contain empty ids")
		}
		if _, dup := seen[id]; dup {
			return domain.NewValidationError("ids", "duplicate id "+id)
		}
		seen[id] = struct{}{}
	}
	return nil
}
