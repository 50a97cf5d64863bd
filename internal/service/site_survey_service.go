package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cloudzeus/kimoncrm-sub005/internal/domain"
	"github.com/cloudzeus/kimoncrm-sub005/internal/events"
	"github.com/cloudzeus/kimoncrm-sub005/internal/repository"

	"go.uber.org/zap"
)

type SiteSurveyService struct {
	surveys   repository.SiteSurveysRepository
	publisher events.Publisher
	logger    *zap.Logger
}

func NewSiteSurveyService(surveys repository.SiteSurveysRepository, publisher events.Publisher, logger *zap.Logger) *SiteSurveyService {
	return &SiteSurveyService{surveys: surveys, publisher: publisher, logger: logger}
}

type ListSiteSurveysRequest struct {
	Search     string
	Type       string
	Status     string
	CustomerID string
	AssigneeID string
	LeadID     string
	Page       int
	Size       int
}

func (s *SiteSurveyService) ListSiteSurveys(ctx context.Context, req ListSiteSurveysRequest) (*domain.PageResult[*domain.SiteSurvey], error) {
	filter := domain.SiteSurveyFilter{
		Search:     req.Search,
		Type:       domain.SurveyType(strings.ToUpper(strings.TrimSpace(req.Type))),
		Status:     domain.SurveyStatus(strings.ToUpper(strings.TrimSpace(req.Status))),
		CustomerID: req.CustomerID,
		AssigneeID: req.AssigneeID,
		LeadID:     req.LeadID,
	}
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, domain.NewValidationError("type", "unknown survey type")
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, domain.NewValidationError("status", "unknown survey status")
	}
	page := domain.NewPage(req.Page, req.Size)
	items, total, err := s.surveys.ListSiteSurveys(ctx, filter, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list site surveys: %w", err)
	}
	res := domain.NewPageResult(items, total, page)
	return &res, nil
}

func (s *SiteSurveyService) GetSiteSurvey(ctx context.Context, id string) (*domain.SiteSurvey, error) {
	survey, err := s.surveys.GetSiteSurvey(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get site survey: %w", err)
	}
	return survey, nil
}

type SiteSurveyRequest struct {
	ID          string          `json:"-"`
	Title       string          `json:"title" valid:"required,stringlength(1|300)"`
	Description string          `json:"description"`
	Type        string          `json:"type" valid:"required,in(VOIP|CABLING|WIFI|NETWORK|CCTV|OTHER)"`
	CustomerID  string          `json:"customer_id" valid:"required,uuid"`
	LeadID      string          `json:"lead_id" valid:"uuid"`
	AssigneeID  string          `json:"assignee_id" valid:"uuid"`
	Address     string          `json:"address"`
	ScheduledAt *time.Time      `json:"scheduled_at" valid:"-"`
	Details     json.RawMessage `json:"details" valid:"-"`
}

func (req *SiteSurveyRequest) check() error {
	req.Title = strings.TrimSpace(req.Title)
	req.Type = strings.ToUpper(strings.TrimSpace(req.Type))
	if err := validate(req); err != nil {
		return err
	}
	if len(req.Details) > 0 && string(req.Details) != "null" {
		var obj map[string]any
		if err := json.Unmarshal(req.Details, &obj); err != nil {
			return domain.NewValidationError("details", "must be a JSON object")
		}
	}
	return nil
}

func (req *SiteSurveyRequest) apply(sv *domain.SiteSurvey) {
	sv.Title = req.Title
	sv.Description = optional(req.Description)
	sv.Type = domain.SurveyType(req.Type)
	sv.CustomerID = req.CustomerID
	sv.LeadID = optional(req.LeadID)
	sv.AssigneeID = optional(req.AssigneeID)
	sv.Address = optional(req.Address)
	sv.ScheduledAt = nil
	if req.ScheduledAt != nil {
		t := req.ScheduledAt.UTC()
		sv.ScheduledAt = &t
	}
	sv.Details = nil
	if len(req.Details) > 0 && string(req.Details) != "null" {
		sv.Details = req.Details
	}
}

func (s *SiteSurveyService) CreateSiteSurvey(ctx context.Context, req SiteSurveyRequest) (*domain.SiteSurvey, error) {
	if err := req.check(); err != nil {
		return nil, err
	}
	survey := &domain.SiteSurvey{Status: domain.SurveyDraft}
	req.apply(survey)
	if err := s.surveys.CreateSiteSurvey(ctx, survey); err != nil {
		return nil, fmt.Errorf("failed to create site survey: %w", err)
	}
	s.logger.Info("Site survey created", zap.String("survey_id", survey.ID), zap.String("type", string(survey.Type)))
	s.publish(ctx, events.SiteSurveyCreated, map[string]any{
		"survey_id":   survey.ID,
		"lead_id":     survey.LeadID,
		"customer_id": survey.CustomerID,
		"type":        survey.Type,
	})
	return s.GetSiteSurvey(ctx, survey.ID)
}

func (s *SiteSurveyService) UpdateSiteSurvey(ctx context.Context, req SiteSurveyRequest) (*domain.SiteSurvey, error) {
	if err := req.check(); err != nil {
		return nil, err
	}
	survey, err := s.surveys.GetSiteSurvey(ctx, req.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get site survey: %w", err)
	}
	req.apply(survey)
	if err := s.surveys.UpdateSiteSurvey(ctx, survey); err != nil {
		return nil, fmt.Errorf("failed to update site survey: %w", err)
	}
	return s.GetSiteSurvey(ctx, survey.ID)
}

type UpdateSurveyStatusRequest struct {
	ID      string `json:"-"`
	Status  string `json:"status"`
	ActorID string `json:"-"`
}

// UpdateSiteSurveyStatus publishes site_survey.completed when the survey
// enters COMPLETED.
func (s *SiteSurveyService) UpdateSiteSurveyStatus(ctx context.Context, req UpdateSurveyStatusRequest) (*domain.SiteSurvey, error) {
	status := domain.SurveyStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	if !status.Valid() {
		return nil, domain.NewValidationError("status", "unknown survey status")
	}
	survey, err := s.surveys.GetSiteSurvey(ctx, req.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get site survey: %w", err)
	}
	if survey.Status == status {
		return survey, nil
	}
	from := survey.Status
	if err := s.surveys.UpdateSiteSurveyStatus(ctx, survey.ID, status); err != nil {
		return nil, fmt.Errorf("failed to update site survey status: %w", err)
	}
	survey.Status = status
	s.logger.Info("Site survey status changed",
		zap.String("survey_id", survey.ID),
		zap.String("from", string(from)),
		zap.String("to", string(status)),
	)
	if status == domain.SurveyCompleted {
		s.publish(ctx, events.SiteSurveyCompleted, map[string]any{
			"survey_id":    survey.ID,
			"customer_id":  survey.CustomerID,
			"lead_id":      survey.LeadID,
			"type":         survey.Type,
			"completed_by": req.ActorID,
		})
	}
	return survey, nil
}

func (s *SiteSurveyService) DeleteSiteSurvey(ctx context.Context, id string) error {
	if err := s.surveys.DeleteSiteSurvey(ctx, id); err != nil {
		return fmt.Errorf("failed to delete site survey: %w", err)
	}
	return nil
}

func (s *SiteSurveyService) publish(ctx context.Context, eventType string, payload any) {
	if err := s.publisher.Publish(ctx, eventType, payload); err != nil {
		s.logger.Warn("Failed to publish event", zap.String("event", eventType), zap.Error(err))
	}
}
