package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/cloudzeus/kimoncrm-sub005/internal/domain"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

type PostgresBrandsRepository struct {
	db *sql.DB
}

func NewPostgresBrandsRepository(db *sql.DB) *PostgresBrandsRepository {
	return &PostgresBrandsRepository{db: db}
}

var _ BrandsRepository = (*PostgresBrandsRepository)(nil)

var brandColumns = []string{"id", "name", "code", "website", "logo_url", "erp_code", "sort_order", "created_at", "updated_at"}

func scanBrand(row interface{ Scan(...any) error }) (*domain.Brand, error) {
	var b domain.Brand
	if err := row.Scan(&b.ID, &b.Name, &b.Code, &b.Website, &b.LogoURL, &b.ERPCode, &b.SortOrder, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *PostgresBrandsRepository) GetBrand(ctx context.Context, id string) (*domain.Brand, error) {
	query, args, err := psql.Select(brandColumns...).From("brands").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	b, err := scanBrand(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, mapError("get brand", err)
	}
	return b, nil
}

func (r *PostgresBrandsRepository) ListBrands(ctx context.Context, search string) ([]*domain.Brand, error) {
	b := psql.Select(brandColumns...).From("brands")
	if search != "" {
		b = b.Where(ilike(search, "name", "code"))
	}
	query, args, err := b.OrderBy("sort_order", "name").ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError("list brands", err)
	}
	defer rows.Close()

	brands := []*domain.Brand{}
	for rows.Next() {
		br, err := scanBrand(rows)
		if err != nil {
			return nil, mapError("scan brand", err)
		}
		brands = append(brands, br)
	}
	return brands, mapError("iterate brands", rows.Err())
}

// CreateBrand appends the brand at the end of the current ordering.
func (r *PostgresBrandsRepository) CreateBrand(ctx context.Context, b *domain.Brand) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	b.CreatedAt, b.UpdatedAt = now, now
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO brands (id, name, code, website, logo_url, erp_code, sort_order, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, (SELECT COALESCE(MAX(sort_order) + 1, 0) FROM brands), $7, $7)
		 RETURNING sort_order`,
		b.ID, b.Name, b.Code, b.Website, b.LogoURL, b.ERPCode, now,
	).Scan(&b.SortOrder)
	return mapError("create brand", err)
}

func (r *PostgresBrandsRepository) UpdateBrand(ctx context.Context, b *domain.Brand) error {
	b.UpdatedAt = time.Now().UTC()
	query, args, err := psql.Update("brands").
		Set("name", b.Name).
		Set("code", b.Code).
		Set("website", b.Website).
		Set("logo_url", b.LogoURL).
		Set("erp_code", b.ERPCode).
		Set("updated_at", b.UpdatedAt).
		Where(sq.Eq{"id": b.ID}).
		ToSql()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return mapError("update brand", err)
	}
	return affected("update brand", res)
}

func (r *PostgresBrandsRepository) DeleteBrand(ctx context.Context, id string) error {
	query, args, err := psql.Delete("brands").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return mapError("delete brand", err)
	}
	return affected("delete brand", res)
}

func (r *PostgresBrandsRepository) ReorderBrands(ctx context.Context, ids []string) error {
	return reorder(ctx, r.db, "brands", ids)
}
