package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/cloudzeus/kimoncrm-sub005/internal/domain"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

type PostgresSiteSurveysRepository struct {
	db *sql.DB
}

func NewPostgresSiteSurveysRepository(db *sql.DB) *PostgresSiteSurveysRepository {
	return &PostgresSiteSurveysRepository{db: db}
}

var _ SiteSurveysRepository = (*PostgresSiteSurveysRepository)(nil)

var surveySelect = []string{
	"s.id", "s.title", "s.description", "s.type", "s.status", "s.customer_id", "s.lead_id", "s.assignee_id",
	"s.address", "s.scheduled_at", "s.details", "s.created_at", "s.updated_at", "c.name",
}

func surveyQuery() sq.SelectBuilder {
	return psql.Select(surveySelect...).
		From("site_surveys s").
		LeftJoin("customers c ON c.id = s.customer_id")
}

func scanSiteSurvey(row interface{ Scan(...any) error }) (*domain.SiteSurvey, error) {
	var s domain.SiteSurvey
	var details []byte
	err := row.Scan(&s.ID, &s.Title, &s.Description, &s.Type, &s.Status, &s.CustomerID, &s.LeadID, &s.AssigneeID,
		&s.Address, &s.ScheduledAt, &details, &s.CreatedAt, &s.UpdatedAt, &s.CustomerName)
	if err != nil {
		return nil, err
	}
	if len(details) > 0 {
		s.Details = json.RawMessage(details)
	}
	return &s, nil
}

// detailsValue stores empty details as SQL NULL.
func detailsValue(d json.RawMessage) any {
	if len(d) == 0 {
		return nil
	}
	return []byte(d)
}

func (r *PostgresSiteSurveysRepository) GetSiteSurvey(ctx context.Context, id string) (*domain.SiteSurvey, error) {
	query, args, err := surveyQuery().Where(sq.Eq{"s.id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	s, err := scanSiteSurvey(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, mapError("get site survey", err)
	}
	return s, nil
}

func (r *PostgresSiteSurveysRepository) ListSiteSurveys(ctx context.Context, filter domain.SiteSurveyFilter, page domain.Page) ([]*domain.SiteSurvey, int, error) {
	b := surveyQuery()
	if filter.Search != "" {
		b = b.Where(ilike(filter.Search, "s.title", "s.address", "c.name"))
	}
	if filter.Type != "" {
		b = b.Where(sq.Eq{"s.type": filter.Type})
	}
	if filter.Status != "" {
		b = b.Where(sq.Eq{"s.status": filter.Status})
	}
	if filter.CustomerID != "" {
		b = b.Where(sq.Eq{"s.customer_id": filter.CustomerID})
	}
	if filter.AssigneeID != "" {
		b = b.Where(sq.Eq{"s.assignee_id": filter.AssigneeID})
	}
	if filter.LeadID != "" {
		b = b.Where(sq.Eq{"s.lead_id": filter.LeadID})
	}

	total, err := count(ctx, r.db, b)
	if err != nil {
		return nil, 0, mapError("count site surveys", err)
	}

	query, args, err := b.OrderBy("s.created_at DESC").Limit(page.Limit()).Offset(page.Offset()).ToSql()
	if err != nil {
		return nil, 0, err
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, mapError("list site surveys", err)
	}
	defer rows.Close()

	items := []*domain.SiteSurvey{}
	for rows.Next() {
		s, err := scanSiteSurvey(rows)
		if err != nil {
			return nil, 0, mapError("scan site survey", err)
		}
		items = append(items, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapError("iterate site surveys", err)
	}
	return items, total, nil
}

func (r *PostgresSiteSurveysRepository) CreateSiteSurvey(ctx context.Context, s *domain.SiteSurvey) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.Status == "" {
		s.Status = domain.SurveyDraft
	}
	now := time.Now().UTC()
	s.CreatedAt, s.UpdatedAt = now, now
	query, args, err := psql.Insert("site_surveys").
		Columns("id", "title", "description", "type", "status", "customer_id", "lead_id", "assignee_id",
			"address", "scheduled_at", "details", "created_at", "updated_at").
		Values(s.ID, s.Title, s.Description, s.Type, s.Status, s.CustomerID, s.LeadID, s.AssigneeID,
			s.Address, s.ScheduledAt, detailsValue(s.Details), s.CreatedAt, s.UpdatedAt).
		ToSql()
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, query, args...)
	return mapError("create site survey", err)
}

func (r *PostgresSiteSurveysRepository) UpdateSiteSurvey(ctx context.Context, s *domain.SiteSurvey) error {
	s.UpdatedAt = time.Now().UTC()
	query, args, err := psql.Update("site_surveys").
		Set("title", s.Title).
		Set("description", s.Description).
		Set("type", s.Type).
		Set("customer_id", s.CustomerID).
		Set("lead_id", s.LeadID).
		Set("assignee_id", s.AssigneeID).
		Set("address", s.Address).
		Set("scheduled_at", s.ScheduledAt).
		Set("details", detailsValue(s.Details)).
		Set("updated_at", s.UpdatedAt).
		Where(sq.Eq{"id": s.ID}).
		ToSql()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return mapError("update site survey", err)
	}
	return affected("update site survey", res)
}

func (r *PostgresSiteSurveysRepository) UpdateSiteSurveyStatus(ctx context.Context, id string, status domain.SurveyStatus) error {
	query, args, err := psql.Update("site_surveys").
		Set("status", status).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return mapError("update site survey status", err)
	}
	return affected("update site survey status", res)
}

func (r *PostgresSiteSurveysRepository) DeleteSiteSurvey(ctx context.Context, id string) error {
	query, args, err := psql.Delete("site_surveys").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return mapError("delete site survey", err)
	}
	return affected("delete site survey", res)
}
