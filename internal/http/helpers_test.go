package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/cloudzeus/kimoncrm-sub005/internal/domain"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// tokenAuth maps fixed tokens to users.
type tokenAuth map[string]*domain.User

func (a tokenAuth) Authenticate(_ context.Context, token string) (*domain.User, error) {
	if u, ok := a[token]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("token rejected: %w", domain.ErrUnauthorized)
}

var testUsers = tokenAuth{
	"admin-token":    {ID: "u-admin", Email: "admin@kimon.gr", Role: domain.RoleAdmin, IsActive: true},
	"manager-token":  {ID: "u-manager", Email: "manager@kimon.gr", Role: domain.RoleManager, IsActive: true},
	"employee-token": {ID: "u-employee", Email: "nikos@kimon.gr", Role: domain.RoleEmployee, IsActive: true},
}

type memBrands struct {
	mu      sync.Mutex
	brands  map[string]*domain.Brand
	seq     int
	reorder []string
}

func newMemBrands(names ...string) *memBrands {
	m := &memBrands{brands: map[string]*domain.Brand{}}
	for _, n := range names {
		_ = m.CreateBrand(context.Background(), &domain.Brand{Name: n})
	}
	return m
}

func (m *memBrands) GetBrand(_ context.Context, id string) (*domain.Brand, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.brands[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *memBrands) ListBrands(_ context.Context, _ string) ([]*domain.Brand, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Brand, 0, len(m.brands))
	for _, b := range m.brands {
		cp := *b
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

// brandID is the id memBrands assigns to the n-th created brand.
func brandID(n int) string {
	return fmt.Sprintf("00000000-0000-4000-8000-%012d", n)
}

func (m *memBrands) CreateBrand(_ context.Context, b *domain.Brand) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	b.ID = brandID(m.seq)
	b.SortOrder = m.seq
	b.CreatedAt = time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	b.UpdatedAt = b.CreatedAt
	cp := *b
	m.brands[b.ID] = &cp
	return nil
}

func (m *memBrands) UpdateBrand(_ context.Context, b *domain.Brand) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.brands[b.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *b
	m.brands[b.ID] = &cp
	return nil
}

func (m *memBrands) DeleteBrand(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.brands[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.brands, id)
	return nil
}

func (m *memBrands) ReorderBrands(_ context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, id := range ids {
		b, ok := m.brands[id]
		if !ok {
			return domain.ErrNotFound
		}
		b.SortOrder = i
	}
	m.reorder = ids
	return nil
}

type memFiles struct {
	mu    sync.Mutex
	files map[string]*domain.StoredFile
}

func (m *memFiles) CreateFile(_ context.Context, f *domain.StoredFile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.files == nil {
		m.files = map[string]*domain.StoredFile{}
	}
	f.ID = fmt.Sprintf("f%d", len(m.files)+1)
	m.files[f.Path] = f
	return nil
}

func (m *memFiles) GetFileByPath(_ context.Context, p string) (*domain.StoredFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.files[p]; ok {
		return f, nil
	}
	return nil, domain.ErrNotFound
}

func (m *memFiles) DeleteFileByPath(_ context.Context, p string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[p]; !ok {
		return domain.ErrNotFound
	}
	delete(m.files, p)
	return nil
}

type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (s *memStore) Upload(_ context.Context, p string, body io.Reader, _ string) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.objects == nil {
		s.objects = map[string][]byte{}
	}
	s.objects[p] = data
	return "https://cdn.test/" + p, nil
}

func (s *memStore) Delete(_ context.Context, p string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[p]; !ok {
		return domain.ErrNotFound
	}
	delete(s.objects, p)
	return nil
}

func testBase() Base {
	return NewBase(zap.NewNop(), 0)
}

func do(t *testing.T, h http.Handler, method, target, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, rd)
	if rd != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// envelope decodes the response envelope with Result left raw.
type envelope struct {
	Code    int             `json:"code"`
	Type    string          `json:"type"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}
