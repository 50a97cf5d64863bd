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

type PostgresEmailsRepository struct {
	db *sql.DB
}

func NewPostgresEmailsRepository(db *sql.DB) *PostgresEmailsRepository {
	return &PostgresEmailsRepository{db: db}
}

var _ EmailsRepository = (*PostgresEmailsRepository)(nil)

var emailColumns = []string{"id", "direction", "from_addr", "to_addrs", "cc_addrs", "subject", "body", "lead_id", "customer_id", "sent_by", "sent_at"}

func (r *PostgresEmailsRepository) CreateEmail(ctx context.Context, e *domain.Email) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.SentAt.IsZero() {
		e.SentAt = time.Now().UTC()
	}
	if e.Cc == nil {
		e.Cc = []string{}
	}
	query, args, err := psql.Insert("emails").
		Columns(emailColumns...).
		Values(e.ID, e.Direction, e.FromAddr, pq.Array(e.To), pq.Array(e.Cc), e.Subject, e.Body, e.LeadID, e.CustomerID, e.SentBy, e.SentAt).
		ToSql()
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, query, args...)
	return mapError("create email", err)
}

func (r *PostgresEmailsRepository) ListEmails(ctx context.Context, filter domain.EmailFilter, page domain.Page) ([]*domain.Email, int, error) {
	b := psql.Select(emailColumns...).From("emails")
	if filter.LeadID != "" {
		b = b.Where(sq.Eq{"lead_id": filter.LeadID})
	}
	if filter.CustomerID != "" {
		b = b.Where(sq.Eq{"customer_id": filter.CustomerID})
	}
	if filter.Search != "" {
		b = b.Where(ilike(filter.Search, "subject", "from_addr"))
	}

	total, err := count(ctx, r.db, b)
	if err != nil {
		return nil, 0, mapError("count emails", err)
	}

	query, args, err := b.OrderBy("sent_at DESC").Limit(page.Limit()).Offset(page.Offset()).ToSql()
	if err != nil {
		return nil, 0, err
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, mapError("list emails", err)
	}
	defer rows.Close()

	items := []*domain.Email{}
	for rows.Next() {
		var e domain.Email
		var to, cc pq.StringArray
		if err := rows.Scan(&e.ID, &e.Direction, &e.FromAddr, &to, &cc, &e.Subject, &e.Body, &e.LeadID, &e.CustomerID, &e.SentBy, &e.SentAt); err != nil {
			return nil, 0, mapError("scan email", err)
		}
		e.To, e.Cc = []string(to), []string(cc)
		items = append(items, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapError("iterate emails", err)
	}
	return items, total, nil
}
