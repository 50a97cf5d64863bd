package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/cloudzeus/kimoncrm-sub005/internal/domain"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

type PostgresCategoriesRepository struct {
	db *sql.DB
}

func NewPostgresCategoriesRepository(db *sql.DB) *PostgresCategoriesRepository {
	return &PostgresCategoriesRepository{db: db}
}

var _ CategoriesRepository = (*PostgresCategoriesRepository)(nil)

var categoryColumns = []string{"id", "name", "slug", "parent_id", "sort_order", "created_at", "updated_at"}

func scanCategory(row interface{ Scan(...any) error }) (*domain.Category, error) {
	var c domain.Category
	if err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.ParentID, &c.SortOrder, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PostgresCategoriesRepository) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	query, args, err := psql.Select(categoryColumns...).From("categories").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	c, err := scanCategory(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, mapError("get category", err)
	}
	return c, nil
}

func (r *PostgresCategoriesRepository) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	query, args, err := psql.Select(categoryColumns...).From("categories").OrderBy("sort_order", "name").ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError("list categories", err)
	}
	defer rows.Close()

	items := []*domain.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, mapError("scan category", err)
		}
		items = append(items, c)
	}
	return items, mapError("iterate categories", rows.Err())
}

func (r *PostgresCategoriesRepository) CreateCategory(ctx context.Context, c *domain.Category) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO categories (id, name, slug, parent_id, sort_order, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, (SELECT COALESCE(MAX(sort_order) + 1, 0) FROM categories WHERE parent_id IS NOT DISTINCT FROM $4::uuid), $5, $5)
		 RETURNING sort_order`,
		c.ID, c.Name, c.Slug, c.ParentID, now,
	).Scan(&c.SortOrder)
	return mapError("create category", err)
}

func (r *PostgresCategoriesRepository) UpdateCategory(ctx context.Context, c *domain.Category) error {
	c.UpdatedAt = time.Now().UTC()
	query, args, err := psql.Update("categories").
		Set("name", c.Name).
		Set("slug", c.Slug).
		Set("parent_id", c.ParentID).
		Set("updated_at", c.UpdatedAt).
		Where(sq.Eq{"id": c.ID}).
		ToSql()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return mapError("update category", err)
	}
	return affected("update category", res)
}

func (r *PostgresCategoriesRepository) DeleteCategory(ctx context.Context, id string) error {
	query, args, err := psql.Delete("categories").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return mapError("delete category", err)
	}
	return affected("delete category", res)
}

func (r *PostgresCategoriesRepository) CountChildren(ctx context.Context, id string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories WHERE parent_id = $1`, id).Scan(&n)
	return n, mapError("count category children", err)
}

func (r *PostgresCategoriesRepository) ReorderCategories(ctx context.Context, ids []string) error {
	return reorder(ctx, r.db, "categories", ids)
}
