package repository

import (
	"context"

	"github.com/cloudzeus/kimoncrm-sub005/internal/domain"
)

type LeadsRepository interface {
	GetLead(ctx context.Context, id string) (*domain.Lead, error)
	ListLeads(ctx context.Context, filter domain.LeadFilter, page domain.Page) ([]*domain.Lead, int, error)
	// CreateLead fills in ID, LeadNumber and timestamps.
	CreateLead(ctx context.Context, l *domain.Lead) error
	UpdateLead(ctx context.Context, l *domain.Lead) error
	UpdateLeadStatus(ctx context.Context, id string, status domain.LeadStatus) error
	DeleteLead(ctx context.Context, id string) error
}
