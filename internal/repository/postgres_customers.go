package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/cloudzeus/kimoncrm-sub005/internal/domain"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

type PostgresCustomersRepository struct {
	db *sql.DB
}

func NewPostgresCustomersRepository(db *sql.DB) *PostgresCustomersRepository {
	return &PostgresCustomersRepository{db: db}
}

var _ CustomersRepository = (*PostgresCustomersRepository)(nil)

var customerColumns = []string{"id", "name", "afm", "email", "phone", "address", "city", "zip", "erp_code", "is_active", "created_at", "updated_at"}

func scanCustomer(row interface{ Scan(...any) error }) (*domain.Customer, error) {
	var c domain.Customer
	err := row.Scan(&c.ID, &c.Name, &c.AFM, &c.Email, &c.Phone, &c.Address, &c.City, &c.Zip, &c.ERPCode, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PostgresCustomersRepository) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	query, args, err := psql.Select(customerColumns...).From("customers").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	c, err := scanCustomer(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, mapError("get customer", err)
	}
	return c, nil
}

func (r *PostgresCustomersRepository) filtered(filter domain.CustomerFilter) sq.SelectBuilder {
	b := psql.Select(customerColumns...).From("customers")
	if filter.Search != "" {
		b = b.Where(ilike(filter.Search, "name", "afm", "email", "erp_code"))
	}
	if filter.Active != nil {
		b = b.Where(sq.Eq{"is_active": *filter.Active})
	}
	return b
}

func (r *PostgresCustomersRepository) ListCustomers(ctx context.Context, filter domain.CustomerFilter, page domain.Page) ([]*domain.Customer, int, error) {
	b := r.filtered(filter)
	total, err := count(ctx, r.db, b)
	if err != nil {
		return nil, 0, mapError("count customers", err)
	}
	items, err := r.query(ctx, b.OrderBy("name").Limit(page.Limit()).Offset(page.Offset()))
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *PostgresCustomersRepository) ListAllCustomers(ctx context.Context, filter domain.CustomerFilter) ([]*domain.Customer, error) {
	return r.query(ctx, r.filtered(filter).OrderBy("name"))
}

func (r *PostgresCustomersRepository) query(ctx context.Context, b sq.SelectBuilder) ([]*domain.Customer, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError("list customers", err)
	}
	defer rows.Close()

	items := []*domain.Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, mapError("scan customer", err)
		}
		items = append(items, c)
	}
	return items, mapError("iterate customers", rows.Err())
}

func (r *PostgresCustomersRepository) CreateCustomer(ctx context.Context, c *domain.Customer) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	query, args, err := psql.Insert("customers").
		Columns(customerColumns...).
		Values(c.ID, c.Name, c.AFM, c.Email, c.Phone, c.Address, c.City, c.Zip, c.ERPCode, c.IsActive, c.CreatedAt, c.UpdatedAt).
		ToSql()
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, query, args...)
	return mapError("create customer", err)
}

func (r *PostgresCustomersRepository) UpdateCustomer(ctx context.Context, c *domain.Customer) error {
	c.UpdatedAt = time.Now().UTC()
	query, args, err := psql.Update("customers").
		SetMap(map[string]any{
			"name":       c.Name,
			"afm":        c.AFM,
			"email":      c.Email,
			"phone":      c.Phone,
			"address":    c.Address,
			"city":       c.City,
			"zip":        c.Zip,
			"erp_code":   c.ERPCode,
			"is_active":  c.IsActive,
			"updated_at": c.UpdatedAt,
		}).
		Where(sq.Eq{"id": c.ID}).
		ToSql()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return mapError("update customer", err)
	}
	return affected("update customer", res)
}

func (r *PostgresCustomersRepository) DeleteCustomer(ctx context.Context, id string) error {
	query, args, err := psql.Delete("customers").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return mapError("delete customer", err)
	}
	return affected("delete customer", res)
}
