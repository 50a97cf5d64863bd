package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudzeus/kimoncrm-sub005/internal/domain"
	"github.com/cloudzeus/kimoncrm-sub005/internal/events"
	"github.com/cloudzeus/kimoncrm-sub005/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type LeadService struct {
	leads     repository.LeadsRepository
	surveys   repository.SiteSurveysRepository
	publisher events.Publisher
	logger    *zap.Logger
}

func NewLeadService(leads repository.LeadsRepository, surveys repository.SiteSurveysRepository, publisher events.Publisher, logger *zap.Logger) *LeadService {
	return &LeadService{leads: leads, surveys: surveys, publisher: publisher, logger: logger}
}

type ListLeadsRequest struct {
	Search     string
	Status     string
	OwnerID    string
	CustomerID string
	Page       int
	Size       int
}

func (s *LeadService) ListLeads(ctx context.Context, req ListLeadsRequest) (*domain.PageResult[*domain.Lead], error) {
	status := domain.LeadStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	if status != "" && !status.Valid() {
		return nil, domain.NewValidationError("status", "unknown lead status")
	}
	page := domain.NewPage(req.Page, req.Size)
	filter := domain.LeadFilter{Search: req.Search, Status: status, OwnerID: req.OwnerID, CustomerID: req.CustomerID}
	items, total, err := s.leads.ListLeads(ctx, filter, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	res := domain.NewPageResult(items, total, page)
	return &res, nil
}

func (s *LeadService) GetLead(ctx context.Context, id string) (*domain.Lead, error) {
	l, err := s.leads.GetLead(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}
	return l, nil
}

type LeadRequest struct {
	ID             string           `json:"-"`
	Title          string           `json:"title" valid:"required,stringlength(1|300)"`
	CustomerID     string           `json:"customer_id" valid:"uuid"`
	ContactName    string           `json:"contact_name"`
	ContactEmail   string           `json:"contact_email" valid:"email"`
	ContactPhone   string           `json:"contact_phone"`
	Source         string           `json:"source"`
	OwnerID        string           `json:"owner_id" valid:"uuid"`
	Notes          string           `json:"notes"`
	EstimatedValue *decimal.Decimal `json:"estimated_value" valid:"-"`
	Status         string           `json:"status"` // create only; defaults to NEW
	ActorID        string           `json:"-"`
}

func (req *LeadRequest) check() error {
	req.Title = strings.TrimSpace(req.Title)
	req.ContactEmail = strings.ToLower(strings.TrimSpace(req.ContactEmail))
	if err := validate(req); err != nil {
		return err
	}
	if req.EstimatedValue != nil && req.EstimatedValue.IsNegative() {
		return domain.NewValidationError("estimated_value", "must be >= 0")
	}
	return nil
}

func (req *LeadRequest) apply(l *domain.Lead) {
	l.Title = req.Title
	l.CustomerID = optional(req.CustomerID)
	l.ContactName = optional(req.ContactName)
	l.ContactEmail = optional(req.ContactEmail)
	l.ContactPhone = optional(req.ContactPhone)
	l.Source = optional(req.Source)
	l.OwnerID = optional(req.OwnerID)
	l.Notes = optional(req.Notes)
	l.EstimatedValue = decimal.NullDecimal{}
	if req.EstimatedValue != nil {
		l.EstimatedValue = decimal.NewNullDecimal(req.EstimatedValue.Round(2))
	}
}

// CreateLead stores a lead; the database assigns its LD-nnnnnn number.
// The owner defaults to the creating user.
func (s *LeadService) CreateLead(ctx context.Context, req LeadRequest) (*domain.Lead, error) {
	if err := req.check(); err != nil {
		return nil, err
	}
	status := domain.LeadNew
	if req.Status != "" {
		status = domain.LeadStatus(strings.ToUpper(req.Status))
		if !status.Valid() {
			return nil, domain.NewValidationError("status", "unknown lead status")
		}
	}
	if req.OwnerID == "" {
		req.OwnerID = req.ActorID
	}
	l := &domain.Lead{Status: status}
	req.apply(l)
	if err := s.leads.CreateLead(ctx, l); err != nil {
		return nil, fmt.Errorf("failed to create lead: %w", err)
	}
	s.logger.Info("Lead created", zap.String("lead_id", l.ID), zap.String("lead_number", l.LeadNumber))
	s.publish(ctx, events.LeadCreated, map[string]any{
		"lead_id":     l.ID,
		"lead_number": l.LeadNumber,
		"title":       l.Title,
		"customer_id": l.CustomerID,
		"status":      l.Status,
	})
	return l, nil
}

func (s *LeadService) UpdateLead(ctx context.Context, req LeadRequest) (*domain.Lead, error) {
	if err := req.check(); err != nil {
		return nil, err
	}
	l, err := s.leads.GetLead(ctx, req.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}
	req.apply(l)
	if err := s.leads.UpdateLead(ctx, l); err != nil {
		return nil, fmt.Errorf("failed to update lead: %w", err)
	}
	return l, nil
}

type UpdateLeadStatusRequest struct {
	ID      string `json:"-"`
	Status  string `json:"status"`
	ActorID string `json:"-"`
}

// UpdateLeadStatus moves the lead to a new status and publishes
// lead.status_changed. Setting the current status again is a no-op.
func (s *LeadService) UpdateLeadStatus(ctx context.Context, req UpdateLeadStatusRequest) (*domain.Lead, error) {
	status := domain.LeadStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	if !status.Valid() {
		return nil, domain.NewValidationError("status", "unknown lead status")
	}
	l, err := s.leads.GetLead(ctx, req.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}
	if l.Status == status {
		return l, nil
	}
	from := l.Status
	if err := s.leads.UpdateLeadStatus(ctx, l.ID, status); err != nil {
		return nil, fmt.Errorf("failed to update lead status: %w", err)
	}
	l.Status = status
	s.logger.Info("Lead status changed",
		zap.String("lead_id", l.ID),
		zap.String("from", string(from)),
		zap.String("to", string(status)),
	)
	s.publish(ctx, events.LeadStatusChanged, map[string]any{
		"lead_id":     l.ID,
		"lead_number": l.LeadNumber,
		"from":        from,
		"to":          status,
		"changed_by":  req.ActorID,
	})
	return l, nil
}

func (s *LeadService) DeleteLead(ctx context.Context, id string) error {
	if err := s.leads.DeleteLead(ctx, id); err != nil {
		return fmt.Errorf("failed to delete lead: %w", err)
	}
	return nil
}

type ConvertLeadRequest struct {
	LeadID     string `json:"-"`
	Title      string `json:"title"`
	Type       string `json:"type"`
	AssigneeID string `json:"assignee_id" valid:"uuid"`
	Address    string `json:"address"`
}

// CreateSurveyFromLead opens a site survey for the lead's customer. The lead
// must be linked to a customer and must not be closed.
func (s *LeadService) CreateSurveyFromLead(ctx context.Context, req ConvertLeadRequest) (*domain.SiteSurvey, error) {
	if err := validate(&req); err != nil {
		return nil, err
	}
	surveyType := domain.SurveyType(strings.ToUpper(strings.TrimSpace(req.Type)))
	if surveyType == "" {
		surveyType = domain.SurveyCabling
	}
	if !surveyType.Valid() {
		return nil, domain.NewValidationError("type", "unknown survey type")
	}

	l, err := s.leads.GetLead(ctx, req.LeadID)
	if err != nil {
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}
	if l.CustomerID == nil {
		return nil, domain.NewValidationError("customer_id", "lead has no customer")
	}
	if l.Status.Closed() {
		return nil, fmt.Errorf("lead %s is %s: %w", l.LeadNumber, l.Status, domain.ErrConflict)
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = l.LeadNumber + " " + l.Title
	}
	assignee := optional(req.AssigneeID)
	if assignee == nil {
		assignee = l.OwnerID
	}
	survey := &domain.SiteSurvey{
		Title:       title,
		Description: l.Notes,
		Type:        surveyType,
		Status:      domain.SurveyDraft,
		CustomerID:  *l.CustomerID,
		LeadID:      &l.ID,
		AssigneeID:  assignee,
		Address:     optional(req.Address),
	}
	if err := s.surveys.CreateSiteSurvey(ctx, survey); err != nil {
		return nil, fmt.Errorf("failed to create site survey: %w", err)
	}
	s.logger.Info("Site survey created from lead", zap.String("lead_id", l.ID), zap.String("survey_id", survey.ID))
	s.publish(ctx, events.SiteSurveyCreated, map[string]any{
		"survey_id":   survey.ID,
		"lead_id":     l.ID,
		"customer_id": survey.CustomerID,
		"type":        survey.Type,
	})
	return survey, nil
}

func (s *LeadService) publish(ctx context.Context, eventType string, payload any) {
	if err := s.publisher.Publish(ctx, eventType, payload); err != nil {
		s.logger.Warn("Failed to publish event", zap.String("event", eventType), zap.Error(err))
	}
}
