package repository

import (
	"context"
	"database/sql"

	"github.com/cloudzeus/kimoncrm-sub005/internal/domain"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type PostgresMenuRepository struct {
	db *sql.DB
}

func NewPostgresMenuRepository(db *sql.DB) *PostgresMenuRepository {
	return &PostgresMenuRepository{db: db}
}

var _ MenuRepository = (*PostgresMenuRepository)(nil)

var (
	menuGroupColumns = []string{"id", "name", "sort_order"}
	menuItemColumns  = []string{"id", "group_id", "parent_id", "label", "path", "icon", "sort_order", "roles", "is_active"}
)

func scanMenuItem(row interface{ Scan(...any) error }) (*domain.MenuItem, error) {
	var m domain.MenuItem
	var roles pq.StringArray
	if err := row.Scan(&m.ID, &m.GroupID, &m.ParentID, &m.Label, &m.Path, &m.Icon, &m.SortOrder, &roles, &m.IsActive); err != nil {
		return nil, err
	}
	m.Roles = []string(roles)
	if m.Roles == nil {
		m.Roles = []string{}
	}
	return &m, nil
}

func rolesArray(roles []string) pq.StringArray {
	if roles == nil {
		return pq.StringArray{}
	}
	return pq.StringArray(roles)
}

func (r *PostgresMenuRepository) ListGroups(ctx context.Context) ([]*domain.MenuGroup, error) {
	query, args, err := psql.Select(menuGroupColumns...).From("menu_groups").OrderBy("sort_order", "name").ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError("list menu groups", err)
	}
	defer rows.Close()

	groups := []*domain.MenuGroup{}
	for rows.Next() {
		var g domain.MenuGroup
		if err := rows.Scan(&g.ID, &g.Name, &g.SortOrder); err != nil {
			return nil, mapError("scan menu group", err)
		}
		groups = append(groups, &g)
	}
	return groups, mapError("iterate menu groups", rows.Err())
}

func (r *PostgresMenuRepository) GetGroup(ctx context.Context, id string) (*domain.MenuGroup, error) {
	query, args, err := psql.Select(menuGroupColumns...).From("menu_groups").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	var g domain.MenuGroup
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&g.ID, &g.Name, &g.SortOrder); err != nil {
		return nil, mapError("get menu group", err)
	}
	return &g, nil
}

func (r *PostgresMenuRepository) CreateGroup(ctx context.Context, g *domain.MenuGroup) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO menu_groups (id, name, sort_order)
		 VALUES ($1, $2, (SELECT COALESCE(MAX(sort_order) + 1, 0) FROM menu_groups))
		 RETURNING sort_order`,
		g.ID, g.Name,
	).Scan(&g.SortOrder)
	return mapError("create menu group", err)
}

func (r *PostgresMenuRepository) UpdateGroup(ctx context.Context, g *domain.MenuGroup) error {
	query, args, err := psql.Update("menu_groups").Set("name", g.Name).Where(sq.Eq{"id": g.ID}).ToSql()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return mapError("update menu group", err)
	}
	return affected("update menu group", res)
}

func (r *PostgresMenuRepository) DeleteGroup(ctx context.Context, id string) error {
	query, args, err := psql.Delete("menu_groups").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return mapError("delete menu group", err)
	}
	return affected("delete menu group", res)
}

func (r *PostgresMenuRepository) ReorderGroups(ctx context.Context, ids []string) error {
	return reorder(ctx, r.db, "menu_groups", ids)
}

func (r *PostgresMenuRepository) ListItems(ctx context.Context) ([]*domain.MenuItem, error) {
	query, args, err := psql.Select(menuItemColumns...).From("menu_items").OrderBy("sort_order", "label").ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError("list menu items", err)
	}
	defer rows.Close()

	items := []*domain.MenuItem{}
	for rows.Next() {
		m, err := scanMenuItem(rows)
		if err != nil {
			return nil, mapError("scan menu item", err)
		}
		items = append(items, m)
	}
	return items, mapError("iterate menu items", rows.Err())
}

func (r *PostgresMenuRepository) GetItem(ctx context.Context, id string) (*domain.MenuItem, error) {
	query, args, err := psql.Select(menuItemColumns...).From("menu_items").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	m, err := scanMenuItem(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, mapError("get menu item", err)
	}
	return m, nil
}

func (r *PostgresMenuRepository) CreateItem(ctx context.Context, m *domain.MenuItem) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO menu_items (id, group_id, parent_id, label, path, icon, roles, is_active, sort_order)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8,
		   (SELECT COALESCE(MAX(sort_order) + 1, 0) FROM menu_items WHERE group_id = $2 AND parent_id IS NOT DISTINCT FROM $3::uuid))
		 RETURNING sort_order`,
		m.ID, m.GroupID, m.ParentID, m.Label, m.Path, m.Icon, rolesArray(m.Roles), m.IsActive,
	).Scan(&m.SortOrder)
	return mapError("create menu item", err)
}

func (r *PostgresMenuRepository) UpdateItem(ctx context.Context, m *domain.MenuItem) error {
	query, args, err := psql.Update("menu_items").
		Set("group_id", m.GroupID).
		Set("parent_id", m.ParentID).
		Set("label", m.Label).
		Set("path", m.Path).
		Set("icon", m.Icon).
		Set("roles", rolesArray(m.Roles)).
		Set("is_active", m.IsActive).
		Where(sq.Eq{"id": m.ID}).
		ToSql()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return mapError("update menu item", err)
	}
	return affected("update menu item", res)
}

func (r *PostgresMenuRepository) DeleteItem(ctx context.Context, id string) error {
	query, args, err := psql.Delete("menu_items").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return mapError("delete menu item", err)
	}
	return affected("delete menu item", res)
}

func (r *PostgresMenuRepository) ReorderItems(ctx context.Context, ids []string) error {
	return reorder(ctx, r.db, "menu_items", ids)
}
