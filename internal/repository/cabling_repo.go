package repository

import (
	"context"

	"github.com/cloudzeus/kimoncrm-sub005/internal/domain"
)

// CablingRepository persists the cabling hierarchy of a site survey as a whole.
type CablingRepository interface {
	// LoadTree returns the saved tree; an empty tree when nothing was saved yet.
	LoadTree(ctx context.Context, surveyID string) (*domain.CablingTree, error)
	// SaveTree replaces the survey's tree in one transaction and assigns ids
	// to new nodes in place.
	SaveTree(ctx context.Context, tree *domain.CablingTree) error
}
