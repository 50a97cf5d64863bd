package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/cloudzeus/kimoncrm-sub005/internal/domain"
	"github.com/cloudzeus/kimoncrm-sub005/internal/repository"

	"go.uber.org/zap"
)

type CategoryService struct {
	categories repository.CategoriesRepository
	logger     *zap.Logger
}

func NewCategoryService(categories repository.CategoriesRepository, logger *zap.Logger) *CategoryService {
	return &CategoryService{categories: categories, logger: logger}
}

func (s *CategoryService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	items, err := s.categories.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return items, nil
}

// CategoryTree nests categories under their parents. Categories whose parent
// is missing are returned as roots.
func (s *CategoryService) CategoryTree(ctx context.Context) ([]*domain.CategoryNode, error) {
	items, err := s.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	return buildCategoryTree(items), nil
}

func buildCategoryTree(items []*domain.Category) []*domain.CategoryNode {
	nodes := make(map[string]*domain.CategoryNode, len(items))
	for _, c := range items {
		nodes[c.ID] = &domain.CategoryNode{Category: *c, Children: []*domain.CategoryNode{}}
	}
	roots := []*domain.CategoryNode{}
	for _, c := range items {
		n := nodes[c.ID]
		if c.ParentID != nil {
			if parent, ok := nodes[*c.ParentID]; ok {
				parent.Children = append(parent.Children, n)
				continue
			}
		}
		roots = append(roots, n)
	}
	return roots
}

func (s *CategoryService) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	c, err := s.categories.GetCategory(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return c, nil
}

type CategoryRequest struct {
	ID       string `json:"-"`
	Name     string `json:"name" valid:"required,stringlength(1|200)"`
	Slug     string `json:"slug"`
	ParentID string `json:"parent_id"`
}

var nonSlug = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// Slugify lower-cases s and joins its letter/digit runs with dashes.
func Slugify(s string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "-"), "-")
}

func (req *CategoryRequest) normalize() {
	req.Name = strings.TrimSpace(req.Name)
	req.ParentID = strings.TrimSpace(req.ParentID)
	if strings.TrimSpace(req.Slug) == "" {
		req.Slug = req.Name
	}
	req.Slug = Slugify(req.Slug)
}

func (s *CategoryService) CreateCategory(ctx context.Context, req CategoryRequest) (*domain.Category, error) {
	req.normalize()
	if err := validate(&req); err != nil {
		return nil, err
	}
	if req.Slug == "" {
		return nil, domain.NewValidationError("slug", "must contain letters or digits")
	}
	c := &domain.Category{Name: req.Name, Slug: req.Slug, ParentID: optional(req.ParentID)}
	if err := s.categories.CreateCategory(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	s.logger.Info("Category created", zap.String("category_id", c.ID), zap.String("slug", c.Slug))
	return c, nil
}

// UpdateCategory rejects parents that would create a cycle.
func (s *CategoryService) UpdateCategory(ctx context.Context, req CategoryRequest) (*domain.Category, error) {
	req.normalize()
	if err := validate(&req); err != nil {
		return nil, err
	}
	if req.Slug == "" {
		return nil, domain.NewValidationError("slug", "must contain letters or digits")
	}
	all, err := s.categories.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	byID := make(map[string]*domain.Category, len(all))
	for _, c := range all {
		byID[c.ID] = c
	}
	c, ok := byID[req.ID]
	if !ok {
		return nil, fmt.Errorf("category %s: %w", req.ID, domain.ErrNotFound)
	}
	if req.ParentID != "" {
		if err := checkCategoryParent(byID, req.ID, req.ParentID); err != nil {
			return nil, err
		}
	}

	c.Name = req.Name
	c.Slug = req.Slug
	c.ParentID = optional(req.ParentID)
	if err := s.categories.UpdateCategory(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	return c, nil
}

// checkCategoryParent walks up from parentID and fails if it reaches id.
func checkCategoryParent(byID map[string]*domain.Category, id, parentID string) error {
	if parentID == id {
		return domain.NewValidationError("parent_id", "a category cannot be its own parent")
	}
	if _, ok := byID[parentID]; !ok {
		return domain.NewValidationError("parent_id", "parent category does not exist")
	}
	seen := map[string]bool{}
	for cur := parentID; cur != ""; {
		if cur == id {
			return domain.NewValidationError("parent_id", "a category cannot be moved under its own descendant")
		}
		if seen[cur] {
			break
		}
		seen[cur] = true
		next, ok := byID[cur]
		if !ok || next.ParentID == nil {
			break
		}
		cur = *next.ParentID
	}
	return nil
}

// DeleteCategory refuses to delete a category that still has children.
func (s *CategoryService) DeleteCategory(ctx context.Context, id string) error {
	n, err := s.categories.CountChildren(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count children: %w", err)
	}
	if n > 0 {
		return fmt.Errorf("category has %d child categories: %w", n, domain.ErrConflict)
	}
	if err := s.categories.DeleteCategory(ctx, id); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}

func (s *CategoryService) ReorderCategories(ctx context.Context, ids []string) error {
	if err := checkReorderIDs(ids); err != nil {
		return err
	}
	if err := s.categories.ReorderCategories(ctx, ids); err != nil {
		return fmt.Errorf("failed to reorder categories: %w", err)
	}
	return nil
}
