package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"

	"github.com/cloudzeus/kimoncrm-sub005/internal/cdn"
	"github.com/cloudzeus/kimoncrm-sub005/internal/domain"
	"github.com/cloudzeus/kimoncrm-sub005/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultUploadFolder   = "uploads"
	DefaultMaxUploadBytes = 25 << 20
)

type UploadService struct {
	files    repository.FilesRepository
	store    FileStore // nil when the CDN is disabled
	maxBytes int64
	logger   *zap.Logger
}

func NewUploadService(files repository.FilesRepository, store FileStore, maxBytes int64, logger *zap.Logger) *UploadService {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &UploadService{files: files, store: store, maxBytes: maxBytes, logger: logger}
}

func (s *UploadService) MaxBytes() int64 { return s.maxBytes }

type UploadRequest struct {
	Folder      string
	FileName    string
	ContentType string
	Body        io.Reader
	ActorID     string
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SanitizeFileName keeps the base name and replaces anything outside
// [A-Za-z0-9._-] with a dash.
func SanitizeFileName(name string) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), `\`, "/"))
	name = strings.Trim(unsafeFileChars.ReplaceAllString(name, "-"), "-.")
	if name == "" || name == "/" {
		return "file"
	}
	if len(name) > 120 {
		name = name[len(name)-120:]
	}
	return name
}

// Upload stores the file under <folder>/<uuid>-<name> and records it.
func (s *UploadService) Upload(ctx context.Context, req UploadRequest) (*domain.StoredFile, error) {
	if s.store == nil {
		return nil, fmt.Errorf("cdn: %w", domain.ErrNotConfigured)
	}
	folder := strings.Trim(strings.TrimSpace(req.Folder), "/")
	if folder == "" {
		folder = DefaultUploadFolder
	}
	p, err := cdn.CleanPath(folder + "/" + uuid.NewString() + "-" + SanitizeFileName(req.FileName))
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(req.Body, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, domain.NewValidationError("file", fmt.Sprintf("exceeds %d bytes", s.maxBytes))
	}
	if len(data) == 0 {
		return nil, domain.NewValidationError("file", "is empty")
	}
	contentType := req.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	url, err := s.store.Upload(ctx, p, bytes.NewReader(data), contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to upload file: %w", err)
	}
	f := &domain.StoredFile{
		Path:        p,
		URL:         url,
		FileName:    SanitizeFileName(req.FileName),
		ContentType: contentType,
		Size:        int64(len(data)),
		UploadedBy:  optional(req.ActorID),
	}
	if err := s.files.CreateFile(ctx, f); err != nil {
		if derr := s.store.Delete(context.WithoutCancel(ctx), p); derr != nil {
			s.logger.Warn("Orphaned upload left in storage", zap.String("path", p), zap.Error(derr))
		}
		return nil, fmt.Errorf("failed to record file: %w", err)
	}
	s.logger.Info("File uploaded", zap.String("path", p), zap.Int64("size", f.Size))
	return f, nil
}

// Delete removes a recorded file from storage and then its record. Paths
// with no record are unknown; a recorded file already gone from storage
// still has its record removed.
func (s *UploadService) Delete(ctx context.Context, p string) error {
	if s.store == nil {
		return fmt.Errorf("cdn: %w", domain.ErrNotConfigured)
	}
	clean, err := cdn.CleanPath(p)
	if err != nil {
		return err
	}
	if _, err := s.files.GetFileByPath(ctx, clean); err != nil {
		return fmt.Errorf("failed to get file: %w", err)
	}
	if err := s.store.Delete(ctx, clean); err != nil && !isNotFound(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	if err := s.files.DeleteFileByPath(ctx, clean); err != nil && !isNotFound(err) {
		return fmt.Errorf("failed to delete file record: %w", err)
	}
	s.logger.Info("File deleted", zap.String("path", clean))
	return nil
}
