package repository

import (
	"context"

	"github.com/cloudzeus/kimoncrm-sub005/internal/domain"
)

type SiteSurveysRepository interface {
	GetSiteSurvey(ctx context.Context, id string) (*domain.SiteSurvey, error)
	ListSiteSurveys(ctx context.Context, filter domain.SiteSurveyFilter, page domain.Page) ([]*domain.SiteSurvey, int, error)
	CreateSiteSurvey(ctx context.Context, s *domain.SiteSurvey) error
	UpdateSiteSurvey(ctx context.Context, s *domain.SiteSurvey) error
	UpdateSiteSurveyStatus(ctx context.Context, id string, status domain.SurveyStatus) error
	DeleteSiteSurvey(ctx context.Context, id string) error
}
