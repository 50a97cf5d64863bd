package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cloudzeus/kimoncrm-sub005/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSanitizeFileName(t *testing.T) {
	tests := map[string]string{
		"photo.jpg":             "photo.jpg",
		"../../etc/passwd":      "passwd",
		`C:\Users\me\plan.pdf`:  "plan.pdf",
		"κάτοψη ορόφου 1.png":   "1.png",
		"rack front (old).jpeg": "rack-front-old-.jpeg",
		"":                      "file",
		"...":                   "file",
	}
	for in, want := range tests {
		assert.Equal(t, want, SanitizeFileName(in), in)
	}
}

func TestUploadService_Upload(t *testing.T) {
	store := newMemFileStore()
	files := newMemDocuments()
	svc := NewUploadService(files, store, 16, zap.NewNop())
	ctx := context.Background()

	f, err := svc.Upload(ctx, UploadRequest{
		Folder:      "/surveys/s1/",
		FileName:    "rack photo.jpg",
		ContentType: "image/jpeg",
		Body:        strings.NewReader("jpeg-bytes"),
		ActorID:     "u1",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(f.Path, "surveys/s1/"), f.Path)
	assert.True(t, strings.HasSuffix(f.Path, "-rack-photo.jpg"), f.Path)
	assert.Equal(t, "rack-photo.jpg", f.FileName)
	assert.Equal(t, int64(10), f.Size)
	assert.Equal(t, "https://cdn.test/"+f.Path, f.URL)
	assert.Equal(t, []byte("jpeg-bytes"), store.uploads[f.Path])
	assert.Contains(t, files.files, f.Path)

	def, err := svc.Upload(ctx, UploadRequest{FileName: "a.txt", Body: strings.NewReader("x")})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(def.Path, DefaultUploadFolder+"/"))
	assert.Equal(t, "application/octet-stream", def.ContentType)
}

func TestUploadService_Upload_Rejects(t *testing.T) {
	store := newMemFileStore()
	svc := NewUploadService(newMemDocuments(), store, 4, zap.NewNop())
	ctx := context.Background()

	_, err := svc.Upload(ctx, UploadRequest{FileName: "big.bin", Body: bytes.NewReader(make([]byte, 5))})
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument))

	_, err = svc.Upload(ctx, UploadRequest{FileName: "empty.bin", Body: strings.NewReader("")})
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument))

	_, err = svc.Upload(ctx, UploadRequest{Folder: "../secret", FileName: "a.txt", Body: strings.NewReader("x")})
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument))

	assert.Empty(t, store.uploads)
}

func TestUploadService_NotConfigured(t *testing.T) {
	svc := NewUploadService(newMemDocuments(), nil, 0, zap.NewNop())
	assert.Equal(t, int64(DefaultMaxUploadBytes), svc.MaxBytes())

	_, err := svc.Upload(context.Background(), UploadRequest{FileName: "a", Body: strings.NewReader("x")})
	assert.True(t, errors.Is(err, domain.ErrNotConfigured))
	assert.True(t, errors.Is(svc.Delete(context.Background(), "a"), domain.ErrNotConfigured))
}

func TestUploadService_Delete(t *testing.T) {
	store := newMemFileStore()
	files := newMemDocuments()
	svc := NewUploadService(files, store, 0, zap.NewNop())
	ctx := context.Background()

	f, err := svc.Upload(ctx, UploadRequest{FileName: "a.txt", Body: strings.NewReader("x")})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, f.Path))
	assert.Empty(t, store.uploads)
	assert.Empty(t, files.files)

	assert.True(t, errors.Is(svc.Delete(ctx, f.Path), domain.ErrNotFound))
	assert.True(t, errors.Is(svc.Delete(ctx, "/abs/path"), domain.ErrInvalidArgument))
}

func TestUploadService_Delete_UnrecordedPath(t *testing.T) {
	store := newMemFileStore()
	store.uploads["proposals/s1/20261019T083000Z.docx"] = []byte("PK")
	svc := NewUploadService(newMemDocuments(), store, 0, zap.NewNop())

	err := svc.Delete(context.Background(), "proposals/s1/20261019T083000Z.docx")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Contains(t, store.uploads, "proposals/s1/20261019T083000Z.docx")
}

func TestUploadService_Delete_ObjectAlreadyGone(t *testing.T) {
	store := newMemFileStore()
	files := newMemDocuments()
	files.files["uploads/a.txt"] = &domain.StoredFile{Path: "uploads/a.txt"}
	svc := NewUploadService(files, store, 0, zap.NewNop())

	require.NoError(t, svc.Delete(context.Background(), "uploads/a.txt"))
	assert.Empty(t, files.files)
}

func TestUploadService_Upload_RecordFailureRemovesObject(t *testing.T) {
	store := newMemFileStore()
	files := newMemDocuments()
	files.createErr = errors.New("connection reset")
	svc := NewUploadService(files, store, 0, zap.NewNop())

	_, err := svc.Upload(context.Background(), UploadRequest{FileName: "a.txt", Body: strings.NewReader("x")})
	require.Error(t, err)
	assert.Empty(t, store.uploads)
	assert.Empty(t, files.files)
}
