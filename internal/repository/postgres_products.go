package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/cloudzeus/kimoncrm-sub005/internal/domain"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type PostgresProductsRepository struct {
	db *sql.DB
}

func NewPostgresProductsRepository(db *sql.DB) *PostgresProductsRepository {
	return &PostgresProductsRepository{db: db}
}

var _ ProductsRepository = (*PostgresProductsRepository)(nil)

var productSelect = []string{
	"p.id", "p.name", "p.code", "p.ean", "p.erp_code", "p.brand_id", "p.category_id",
	"p.unit_price", "p.unit", "p.is_active", "p.created_at", "p.updated_at",
	"b.name", "c.name",
}

func productQuery() sq.SelectBuilder {
	return psql.Select(productSelect...).
		From("products p").
		LeftJoin("brands b ON b.id = p.brand_id").
		LeftJoin("categories c ON c.id = p.category_id")
}

func scanProduct(row interface{ Scan(...any) error }) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.Name, &p.Code, &p.EAN, &p.ERPCode, &p.BrandID, &p.CategoryID,
		&p.UnitPrice, &p.Unit, &p.IsActive, &p.CreatedAt, &p.UpdatedAt, &p.BrandName, &p.CategoryName)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PostgresProductsRepository) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	query, args, err := productQuery().Where(sq.Eq{"p.id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	p, err := scanProduct(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, mapError("get product", err)
	}
	return p, nil
}

func (r *PostgresProductsRepository) GetProductsByIDs(ctx context.Context, ids []string) (map[string]*domain.Product, error) {
	out := make(map[string]*domain.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	query, args, err := productQuery().Where("p.id = ANY(?)", pq.Array(ids)).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError("get products", err)
	}
	defer rows.Close()
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, mapError("scan product", err)
		}
		out[p.ID] = p
	}
	return out, mapError("iterate products", rows.Err())
}

func (r *PostgresProductsRepository) ListProducts(ctx context.Context, filter domain.ProductFilter, page domain.Page) ([]*domain.Product, int, error) {
	b := productQuery()
	if filter.Search != "" {
		b = b.Where(ilike(filter.Search, "p.name", "p.code", "p.ean", "p.erp_code"))
	}
	if filter.BrandID != "" {
		b = b.Where(sq.Eq{"p.brand_id": filter.BrandID})
	}
	if filter.CategoryID != "" {
		b = b.Where(sq.Eq{"p.category_id": filter.CategoryID})
	}
	if filter.Active != nil {
		b = b.Where(sq.Eq{"p.is_active": *filter.Active})
	}

	total, err := count(ctx, r.db, b)
	if err != nil {
		return nil, 0, mapError("count products", err)
	}

	query, args, err := b.OrderBy("p.name").Limit(page.Limit()).Offset(page.Offset()).ToSql()
	if err != nil {
		return nil, 0, err
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, mapError("list products", err)
	}
	defer rows.Close()

	items := []*domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, mapError("scan product", err)
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapError("iterate products", err)
	}
	return items, total, nil
}

func (r *PostgresProductsRepository) CreateProduct(ctx context.Context, p *domain.Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	query, args, err := psql.Insert("products").
		Columns("id", "name", "code", "ean", "erp_code", "brand_id", "category_id", "unit_price", "unit", "is_active", "created_at", "updated_at").
		Values(p.ID, p.Name, p.Code, p.EAN, p.ERPCode, p.BrandID, p.CategoryID, p.UnitPrice, p.Unit, p.IsActive, p.CreatedAt, p.UpdatedAt).
		ToSql()
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, query, args...)
	return mapError("create product", err)
}

func (r *PostgresProductsRepository) UpdateProduct(ctx context.Context, p *domain.Product) error {
	p.UpdatedAt = time.Now().UTC()
	query, args, err := psql.Update("products").
		Set("name", p.Name).
		Set("code", p.Code).
		Set("ean", p.EAN).
		Set("erp_code", p.ERPCode).
		Set("brand_id", p.BrandID).
		Set("category_id", p.CategoryID).
		Set("unit_price", p.UnitPrice).
		Set("unit", p.Unit).
		Set("is_active", p.IsActive).
		Set("updated_at", p.UpdatedAt).
		Where(sq.Eq{"id": p.ID}).
		ToSql()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return mapError("update product", err)
	}
	return affected("update product", res)
}

func (r *PostgresProductsRepository) DeleteProduct(ctx context.Context, id string) error {
	query, args, err := psql.Delete("products").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return mapError("delete product", err)
	}
	return affected("delete product", res)
}
