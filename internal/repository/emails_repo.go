package repository

import (
	"context"

	"github.com/cloudzeus/kimoncrm-sub005/internal/domain"
)

type EmailsRepository interface {
	CreateEmail(ctx context.Context, e *domain.Email) error
	ListEmails(ctx context.Context, filter domain.EmailFilter, page domain.Page) ([]*domain.Email, int, error)
}
