package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/cloudzeus/kimoncrm-sub005/internal/domain"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

type PostgresLeadsRepository struct {
	db *sql.DB
}

func NewPostgresLeadsRepository(db *sql.DB) *PostgresLeadsRepository {
	return &PostgresLeadsRepository{db: db}
}

var _ LeadsRepository = (*PostgresLeadsRepository)(nil)

var leadColumns = []string{
	"id", "lead_number", "title", "customer_id", "contact_name", "contact_email", "contact_phone",
	"source", "status", "owner_id", "notes", "estimated_value", "created_at", "updated_at",
}

func scanLead(row interface{ Scan(...any) error }) (*domain.Lead, error) {
	var l domain.Lead
	err := row.Scan(&l.ID, &l.LeadNumber, &l.Title, &l.CustomerID, &l.ContactName, &l.ContactEmail, &l.ContactPhone,
		&l.Source, &l.Status, &l.OwnerID, &l.Notes, &l.EstimatedValue, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *PostgresLeadsRepository) GetLead(ctx context.Context, id string) (*domain.Lead, error) {
	query, args, err := psql.Select(leadColumns...).From("leads").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	l, err := scanLead(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, mapError("get lead", err)
	}
	return l, nil
}

func (r *PostgresLeadsRepository) ListLeads(ctx context.Context, filter domain.LeadFilter, page domain.Page) ([]*domain.Lead, int, error) {
	b := psql.Select(leadColumns...).From("leads")
	if filter.Search != "" {
		b = b.Where(ilike(filter.Search, "title", "lead_number", "contact_name", "contact_email"))
	}
	if filter.Status != "" {
		b = b.Where(sq.Eq{"status": filter.Status})
	}
	if filter.OwnerID != "" {
		b = b.Where(sq.Eq{"owner_id": filter.OwnerID})
	}
	if filter.CustomerID != "" {
		b = b.Where(sq.Eq{"customer_id": filter.CustomerID})
	}

	total, err := count(ctx, r.db, b)
	if err != nil {
		return nil, 0, mapError("count leads", err)
	}

	query, args, err := b.OrderBy("created_at DESC").Limit(page.Limit()).Offset(page.Offset()).ToSql()
	if err != nil {
		return nil, 0, err
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, mapError("list leads", err)
	}
	defer rows.Close()

	items := []*domain.Lead{}
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, 0, mapError("scan lead", err)
		}
		items = append(items, l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapError("iterate leads", err)
	}
	return items, total, nil
}

func (r *PostgresLeadsRepository) CreateLead(ctx context.Context, l *domain.Lead) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.Status == "" {
		l.Status = domain.LeadNew
	}
	now := time.Now().UTC()
	l.CreatedAt, l.UpdatedAt = now, now
	query, args, err := psql.Insert("leads").
		Columns("id", "title", "customer_id", "contact_name", "contact_email", "contact_phone",
			"source", "status", "owner_id", "notes", "estimated_value", "created_at", "updated_at").
		Values(l.ID, l.Title, l.CustomerID, l.ContactName, l.ContactEmail, l.ContactPhone,
			l.Source, l.Status, l.OwnerID, l.Notes, l.EstimatedValue, l.CreatedAt, l.UpdatedAt).
		Suffix("RETURNING lead_number").
		ToSql()
	if err != nil {
		return err
	}
	return mapError("create lead", r.db.QueryRowContext(ctx, query, args...).Scan(&l.LeadNumber))
}

func (r *PostgresLeadsRepository) UpdateLead(ctx context.Context, l *domain.Lead) error {
	l.UpdatedAt = time.Now().UTC()
	query, args, err := psql.Update("leads").
		Set("title", l.Title).
		Set("customer_id", l.CustomerID).
		Set("contact_name", l.ContactName).
		Set("contact_email", l.ContactEmail).
		Set("contact_phone", l.ContactPhone).
		Set("source", l.Source).
		Set("owner_id", l.OwnerID).
		Set("notes", l.Notes).
		Set("estimated_value", l.EstimatedValue).
		Set("updated_at", l.UpdatedAt).
		Where(sq.Eq{"id": l.ID}).
		ToSql()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return mapError("update lead", err)
	}
	return affected("update lead", res)
}

func (r *PostgresLeadsRepository) UpdateLeadStatus(ctx context.Context, id string, status domain.LeadStatus) error {
	query, args, err := psql.Update("leads").
		Set("status", status).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return mapError("update lead status", err)
	}
	return affected("update lead status", res)
}

func (r *PostgresLeadsRepository) DeleteLead(ctx context.Context, id string) error {
	query, args, err := psql.Delete("leads").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return mapError("delete lead", err)
	}
	return affected("delete lead", res)
}
