package httpapi

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cloudzeus/kimoncrm-sub005/internal/domain"
	"github.com/cloudzeus/kimoncrm-sub005/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newUploadRouter(t *testing.T, store service.FileStore, files *memFiles, maxBytes int64) *Router {
	t.Helper()
	r := NewRouter(testUsers, nil, zap.NewNop())
	r.RegisterUploadRoutes(NewUploadHandler(testBase(),
		service.NewUploadService(files, store, maxBytes, zap.NewNop())))
	return r
}

func multipartRequest(t *testing.T, folder, fileName string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if folder != "" {
		require.NoError(t, mw.WriteField("folder", folder))
	}
	if fileName != "" {
		fw, err := mw.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/uploads", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer employee-token")
	return req
}

func TestUpload_StoresAndRecords(t *testing.T) {
	store := &memStore{}
	files := &memFiles{}
	r := newUploadRouter(t, store, files, 1024)

	rec := serve(r, multipartRequest(t, "site-photos", "rack photo (1).jpg", []byte("jpegdata")))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var f domain.StoredFile
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Result, &f))
	assert.True(t, strings.HasPrefix(f.Path, "site-photos/"), f.Path)
	assert.True(t, strings.HasSuffix(f.Path, "-rack-photo-1-.jpg"), f.Path)
	assert.Equal(t, "https://cdn.test/"+f.Path, f.URL)
	assert.Equal(t, int64(8), f.Size)
	require.NotNil(t, f.UploadedBy)
	assert.Equal(t, "u-employee", *f.UploadedBy)

	assert.Equal(t, []byte("jpegdata"), store.objects[f.Path])
	assert.Contains(t, files.files, f.Path)
}

func TestUpload_TooLarge(t *testing.T) {
	store := &memStore{}
	r := newUploadRouter(t, store, &memFiles{}, 4)

	rec := serve(r, multipartRequest(t, "", "big.bin", []byte("12345")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, store.objects)
}

func TestUpload_MissingFile(t *testing.T) {
	r := newUploadRouter(t, &memStore{}, &memFiles{}, 1024)

	rec := serve(r, multipartRequest(t, "docs", "", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var fields map[string]string
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Result, &fields))
	assert.Equal(t, "file is required", fields["file"])
}

func TestUpload_NotMultipart(t *testing.T) {
	r := newUploadRouter(t, &memStore{}, &memFiles{}, 1024)

	rec := do(t, r, http.MethodPost, "/api/uploads", "employee-token", map[string]string{"file": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpload_CDNDisabled(t *testing.T) {
	r := newUploadRouter(t, nil, &memFiles{}, 1024)

	rec := serve(r, multipartRequest(t, "", "a.txt", []byte("a")))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestUpload_Delete(t *testing.T) {
	store := &memStore{}
	files := &memFiles{}
	r := newUploadRouter(t, store, files, 1024)

	rec := serve(r, multipartRequest(t, "", "a.txt", []byte("a")))
	require.Equal(t, http.StatusCreated, rec.Code)
	var f domain.StoredFile
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Result, &f))

	rec = do(t, r, http.MethodDelete, "/api/uploads?path="+f.Path, "employee-token", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Empty(t, store.objects)
	assert.Empty(t, files.files)

	rec = do(t, r, http.MethodDelete, "/api/uploads?path=../etc/passwd", "employee-token", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpload_DeleteUnrecordedPath(t *testing.T) {
	store := &memStore{objects: map[string][]byte{"boms/s1/20261019T083000Z.xlsx": []byte("PK")}}
	r := newUploadRouter(t, store, &memFiles{}, 1024)

	rec := do(t, r, http.MethodDelete, "/api/uploads?path=boms/s1/20261019T083000Z.xlsx", "employee-token", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, store.objects, "boms/s1/20261019T083000Z.xlsx")
}
