package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudzeus/kimoncrm-sub005/internal/domain"
	"github.com/cloudzeus/kimoncrm-sub005/internal/repository"
	"github.com/cloudzeus/kimoncrm-sub005/internal/store"

	"go.uber.org/zap"
)

// MenuCacheKey redis key of the cached, unfiltered menu.
const MenuCacheKey = "menu:tree"

// MenuService serves the navigation menu. The full menu is cached in the KV
// store and filtered per role on read; every write drops the cache.
type MenuService struct {
	menu     repository.MenuRepository
	kv       store.KV // nil disables caching
	cacheTTL time.Duration
	logger   *zap.Logger
}

func NewMenuService(menu repository.MenuRepository, kv store.KV, cacheTTL time.Duration, logger *zap.Logger) *MenuService {
	return &MenuService{menu: menu, kv: kv, cacheTTL: cacheTTL, logger: logger}
}

// cachedMenu is the stored form: groups and items as flat lists.
type cachedMenu struct {
	Groups []*domain.MenuGroup `json:"groups"`
	Items  []*domain.MenuItem  `json:"items"`
}

func (s *MenuService) load(ctx context.Context) (*cachedMenu, error) {
	var m cachedMenu
	if s.kv != nil {
		err := store.GetJSON(ctx, s.kv, MenuCacheKey, &m)
		if err == nil {
			return &m, nil
		}
		if !errors.Is(err, store.ErrMiss) {
			s.logger.Warn("Menu cache read failed", zap.Error(err))
		}
	}

	groups, err := s.menu.ListGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list menu groups: %w", err)
	}
	items, err := s.menu.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list menu items: %w", err)
	}
	m = cachedMenu{Groups: groups, Items: items}

	if s.kv != nil {
		if err := store.SetJSON(ctx, s.kv, MenuCacheKey, m, s.cacheTTL); err != nil {
			s.logger.Warn("Menu cache write failed", zap.Error(err))
		}
	}
	return &m, nil
}

// MenuFor returns the groups and nested items visible to role. Groups left
// without visible items are omitted. A hidden parent hides its children.
func (s *MenuService) MenuFor(ctx context.Context, role domain.Role) ([]*domain.MenuGroupNode, error) {
	m, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return buildMenuTree(m.Groups, m.Items, role), nil
}

func buildMenuTree(groups []*domain.MenuGroup, items []*domain.MenuItem, role domain.Role) []*domain.MenuGroupNode {
	nodes := make(map[string]*domain.MenuItemNode, len(items))
	for _, it := range items {
		if it.VisibleTo(role) {
			nodes[it.ID] = &domain.MenuItemNode{MenuItem: *it, Children: []*domain.MenuItemNode{}}
		}
	}
	topLevel := map[string][]*domain.MenuItemNode{}
	for _, it := range items {
		n, ok := nodes[it.ID]
		if !ok {
			continue
		}
		if it.ParentID != nil {
			if parent, ok := nodes[*it.ParentID]; ok {
				parent.Children = append(parent.Children, n)
			}
			continue
		}
		topLevel[it.GroupID] = append(topLevel[it.GroupID], n)
	}

	out := []*domain.MenuGroupNode{}
	for _, g := range groups {
		if len(topLevel[g.ID]) == 0 {
			continue
		}
		out = append(out, &domain.MenuGroupNode{MenuGroup: *g, Items: topLevel[g.ID]})
	}
	return out
}

func (s *MenuService) invalidate(ctx context.Context) {
	if s.kv == nil {
		return
	}
	if err := s.kv.Delete(ctx, MenuCacheKey); err != nil {
		s.logger.Warn("Menu cache invalidation failed", zap.Error(err))
	}
}

func (s *MenuService) ListGroups(ctx context.Context) ([]*domain.MenuGroup, error) {
	groups, err := s.menu.ListGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list menu groups: %w", err)
	}
	return groups, nil
}

type MenuGroupRequest struct {
	ID   string `json:"-"`
	Name string `json:"name" valid:"required,stringlength(1|100)"`
}

func (s *MenuService) CreateGroup(ctx context.Context, req MenuGroupRequest) (*domain.MenuGroup, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validate(&req); err != nil {
		return nil, err
	}
	g := &domain.MenuGroup{Name: req.Name}
	if err := s.menu.CreateGroup(ctx, g); err != nil {
		return nil, fmt.Errorf("failed to create menu group: %w", err)
	}
	s.invalidate(ctx)
	return g, nil
}

func (s *MenuService) UpdateGroup(ctx context.Context, req MenuGroupRequest) (*domain.MenuGroup, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validate(&req); err != nil {
		return nil, err
	}
	g, err := s.menu.GetGroup(ctx, req.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get menu group: %w", err)
	}
	g.Name = req.Name
	if err := s.menu.UpdateGroup(ctx, g); err != nil {
		return nil, fmt.Errorf("failed to update menu group: %w", err)
	}
	s.invalidate(ctx)
	return g, nil
}

func (s *MenuService) DeleteGroup(ctx context.Context, id string) error {
	if err := s.menu.DeleteGroup(ctx, id); err != nil {
		return fmt.Errorf("failed to delete menu group: %w", err)
	}
	s.invalidate(ctx)
	return nil
}

func (s *MenuService) ReorderGroups(ctx context.Context, ids []string) error {
	if err := checkReorderIDs(ids); err != nil {
		return err
	}
	if err := s.menu.ReorderGroups(ctx, ids); err != nil {
		return fmt.Errorf("failed to reorder menu groups: %w", err)
	}
	s.invalidate(ctx)
	return nil
}

func (s *MenuService) ListItems(ctx context.Context) ([]*domain.MenuItem, error) {
	items, err := s.menu.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list menu items: %w", err)
	}
	return items, nil
}

type MenuItemRequest struct {
	ID       string   `json:"-"`
	GroupID  string   `json:"group_id" valid:"required"`
	ParentID string   `json:"parent_id"`
	Label    string   `json:"label" valid:"required,stringlength(1|100)"`
	Path     string   `json:"path"`
	Icon     string   `json:"icon"`
	Roles    []string `json:"roles" valid:"-"`
	IsActive *bool    `json:"is_active" valid:"-"`
}

func (req *MenuItemRequest) check() error {
	req.Label = strings.TrimSpace(req.Label)
	if err := validate(req); err != nil {
		return err
	}
	if req.ParentID != "" && req.ParentID == req.ID {
		return domain.NewValidationError("parent_id", "an item cannot be its own parent")
	}
	roles := make([]string, 0, len(req.Roles))
	for _, r := range req.Roles {
		role := domain.Role(strings.ToUpper(strings.TrimSpace(r)))
		if !role.Valid() {
			return domain.NewValidationError("roles", "unknown role "+r)
		}
		roles = append(roles, string(role))
	}
	req.Roles = roles
	return nil
}

func (req *MenuItemRequest) apply(m *domain.MenuItem) {
	m.GroupID = req.GroupID
	m.ParentID = optional(req.ParentID)
	m.Label = req.Label
	m.Path = optional(req.Path)
	m.Icon = optional(req.Icon)
	m.Roles = req.Roles
	m.IsActive = boolOr(req.IsActive, m.IsActive)
}

func (s *MenuService) CreateItem(ctx context.Context, req MenuItemRequest) (*domain.MenuItem, error) {
	if err := req.check(); err != nil {
		return nil, err
	}
	m := &domain.MenuItem{IsActive: true}
	req.apply(m)
	if err := s.menu.CreateItem(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to create menu item: %w", err)
	}
	s.invalidate(ctx)
	return m, nil
}

func (s *MenuService) UpdateItem(ctx context.Context, req MenuItemRequest) (*domain.MenuItem, error) {
	if err := req.check(); err != nil {
		return nil, err
	}
	m, err := s.menu.GetItem(ctx, req.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get menu item: %w", err)
	}
	req.apply(m)
	if err := s.menu.UpdateItem(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to update menu item: %w", err)
	}
	s.invalidate(ctx)
	return m, nil
}

func (s *MenuService) DeleteItem(ctx context.Context, id string) error {
	if err := s.menu.DeleteItem(ctx, id); err != nil {
		return fmt.Errorf("failed to delete menu item: %w", err)
	}
	s.invalidate(ctx)
	return nil
}

func (s *MenuService) ReorderItems(ctx context.Context, ids []string) error {
	if err := checkReorderIDs(ids); err != nil {
		return err
	}
	if err := s.menu.ReorderItems(ctx, ids); err != nil {
		return fmt.Errorf("failed to reorder menu items: %w", err)
	}
	s.invalidate(ctx)
	return nil
}
