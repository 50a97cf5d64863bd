package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/cloudzeus/kimoncrm-sub005/internal/domain"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

type PostgresDocumentsRepository struct {
	db *sql.DB
}

func NewPostgresDocumentsRepository(db *sql.DB) *PostgresDocumentsRepository {
	return &PostgresDocumentsRepository{db: db}
}

var (
	_ DocumentsRepository = (*PostgresDocumentsRepository)(nil)
	_ FilesRepository     = (*PostgresDocumentsRepository)(nil)
)

var (
	documentColumns = []string{"id", "survey_id", "kind", "file_name", "url", "size", "created_by", "created_at"}
	fileColumns     = []string{"id", "path", "url", "file_name", "content_type", "size", "uploaded_by", "created_at"}
)

func (r *PostgresDocumentsRepository) CreateDocument(ctx context.Context, d *domain.Document) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	d.CreatedAt = time.Now().UTC()
	query, args, err := psql.Insert("documents").
		Columns(documentColumns...).
		Values(d.ID, d.SurveyID, d.Kind, d.FileName, d.URL, d.Size, d.CreatedBy, d.CreatedAt).
		ToSql()
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, query, args...)
	return mapError("create document", err)
}

func (r *PostgresDocumentsRepository) ListDocuments(ctx context.Context, surveyID string) ([]*domain.Document, error) {
	query, args, err := psql.Select(documentColumns...).From("documents").
		Where(sq.Eq{"survey_id": surveyID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError("list documents", err)
	}
	defer rows.Close()

	docs := []*domain.Document{}
	for rows.Next() {
		var d domain.Document
		if err := rows.Scan(&d.ID, &d.SurveyID, &d.Kind, &d.FileName, &d.URL, &d.Size, &d.CreatedBy, &d.CreatedAt); err != nil {
			return nil, mapError("scan document", err)
		}
		docs = append(docs, &d)
	}
	return docs, mapError("iterate documents", rows.Err())
}

func (r *PostgresDocumentsRepository) CreateFile(ctx context.Context, f *domain.StoredFile) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	f.CreatedAt = time.Now().UTC()
	query, args, err := psql.Insert("files").
		Columns(fileColumns...).
		Values(f.ID, f.Path, f.URL, f.FileName, f.ContentType, f.Size, f.UploadedBy, f.CreatedAt).
		ToSql()
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, query, args...)
	return mapError("create file", err)
}

func (r *PostgresDocumentsRepository) GetFileByPath(ctx context.Context, path string) (*domain.StoredFile, error) {
	query, args, err := psql.Select(fileColumns...).From("files").Where(sq.Eq{"path": path}).ToSql()
	if err != nil {
		return nil, err
	}
	var f domain.StoredFile
	err = r.db.QueryRowContext(ctx, query, args...).
		Scan(&f.ID, &f.Path, &f.URL, &f.FileName, &f.ContentType, &f.Size, &f.UploadedBy, &f.CreatedAt)
	if err != nil {
		return nil, mapError("get file", err)
	}
	return &f, nil
}

func (r *PostgresDocumentsRepository) DeleteFileByPath(ctx context.Context, path string) error {
	query, args, err := psql.Delete("files").Where(sq.Eq{"path": path}).ToSql()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return mapError("delete file", err)
	}
	return affected("delete file", res)
}
