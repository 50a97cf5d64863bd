package repository

import (
	"context"

	"github.com/cloudzeus/kimoncrm-sub005/internal/domain"
)

type DocumentsRepository interface {
	CreateDocument(ctx context.Context, d *domain.Document) error
	ListDocuments(ctx context.Context, surveyID string) ([]*domain.Document, error)
}

// FilesRepository records uploads stored on the CDN.
type FilesRepository interface {
	CreateFile(ctx context.Context, f *domain.StoredFile) error
	GetFileByPath(ctx context.Context, path string) (*domain.StoredFile, error)
	DeleteFileByPath(ctx context.Context, path string) error
}
