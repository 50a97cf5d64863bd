package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/cloudzeus/kimoncrm-sub005/internal/domain"
	"github.com/cloudzeus/kimoncrm-sub005/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newCatalogRouter(t *testing.T, brands *memBrands) *Router {
	t.Helper()
	r := NewRouter(testUsers, []string{"https://app.kimon.gr"}, zap.NewNop())
	r.RegisterCatalogRoutes(NewCatalogHandler(testBase(),
		service.NewBrandService(brands, zap.NewNop()), nil, nil))
	return r
}

func TestRouter_RequiresToken(t *testing.T) {
	r := newCatalogRouter(t, newMemBrands("Cisco"))

	rec := do(t, r, http.MethodGet, "/api/brands", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, ResultError, env.Code)

	rec = do(t, r, http.MethodGet, "/api/brands", "bogus", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_CookieToken(t *testing.T) {
	r := newCatalogRouter(t, newMemBrands("Cisco"))

	req, _ := http.NewRequest(http.MethodGet, "/api/brands", nil)
	req.AddCookie(&http.Cookie{Name: AuthCookie, Value: "employee-token"})
	rec := serve(r, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_ListBrands(t *testing.T) {
	r := newCatalogRouter(t, newMemBrands("Cisco", "Ubiquiti"))

	rec := do(t, r, http.MethodGet, "/api/brands", "employee-token", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, ResultSuccess, env.Code)
	assert.Equal(t, "success", env.Type)

	var brands []domain.Brand
	require.NoError(t, json.Unmarshal(env.Result, &brands))
	require.Len(t, brands, 2)
	assert.Equal(t, "Cisco", brands[0].Name)
}

func TestRouter_CatalogWritesNeedManager(t *testing.T) {
	brands := newMemBrands()
	r := newCatalogRouter(t, brands)
	body := map[string]any{"name": "Panduit", "website": "https://www.panduit.com"}

	rec := do(t, r, http.MethodPost, "/api/brands", "employee-token", body)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, brands.brands)

	rec = do(t, r, http.MethodPost, "/api/brands", "manager-token", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var b domain.Brand
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Result, &b))
	assert.Equal(t, "Panduit", b.Name)
	assert.NotEmpty(t, b.ID)
}

func TestRouter_ValidationErrorFields(t *testing.T) {
	r := newCatalogRouter(t, newMemBrands())

	rec := do(t, r, http.MethodPost, "/api/brands", "admin-token", map[string]any{"name": ""})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "validation failed", env.Message)

	var fields map[string]string
	require.NoError(t, json.Unmarshal(env.Result, &fields))
	assert.Contains(t, fields, "name")
}

func TestRouter_MalformedJSON(t *testing.T) {
	r := newCatalogRouter(t, newMemBrands())

	rec := do(t, r, http.MethodPost, "/api/brands", "admin-token", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_UpdateAndDeleteBrand(t *testing.T) {
	brands := newMemBrands("Cisco")
	r := newCatalogRouter(t, brands)
	id := brandID(1)

	rec := do(t, r, http.MethodPut, "/api/brands/"+id, "admin-token", map[string]any{"name": "Cisco Systems"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Cisco Systems", brands.brands[id].Name)

	rec = do(t, r, http.MethodDelete, "/api/brands/"+id, "admin-token", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, brands.brands)

	rec = do(t, r, http.MethodGet, "/api/brands/"+id, "admin-token", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_MalformedIDIsNotFound(t *testing.T) {
	brands := newMemBrands("Cisco")
	r := newCatalogRouter(t, brands)

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		rec := do(t, r, method, "/api/brands/not-a-uuid", "admin-token", map[string]any{"name": "x"})
		assert.Equal(t, http.StatusNotFound, rec.Code, method)
	}
	assert.Len(t, brands.brands, 1)
}

func TestRouter_ReorderAcceptsBareArray(t *testing.T) {
	brands := newMemBrands("A", "B", "C")
	r := newCatalogRouter(t, brands)
	b1, b2, b3 := brandID(1), brandID(2), brandID(3)

	rec := do(t, r, http.MethodPost, "/api/brands/reorder", "manager-token", `["`+b3+`","`+b1+`","`+b2+`"]`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []string{b3, b1, b2}, brands.reorder)
	assert.Equal(t, 0, brands.brands[b3].SortOrder)

	rec = do(t, r, http.MethodPost, "/api/brands/reorder", "manager-token", map[string]any{"ids": []string{b1, b1}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_UnknownRoute(t *testing.T) {
	r := newCatalogRouter(t, newMemBrands())

	rec := do(t, r, http.MethodGet, "/api/nope", "admin-token", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "route not found", decodeEnvelope(t, rec).Message)
}

func TestRouter_CORSPreflight(t *testing.T) {
	r := newCatalogRouter(t, newMemBrands())

	req, _ := http.NewRequest(http.MethodOptions, "/api/brands", nil)
	req.Header.Set("Origin", "https://app.kimon.gr")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := serve(r, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://app.kimon.gr", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	req, _ = http.NewRequest(http.MethodOptions, "/api/brands", nil)
	req.Header.Set("Origin", "https://evil.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec = serve(r, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_CORSWildcardWithoutCredentials(t *testing.T) {
	r := NewRouter(testUsers, []string{"*"}, zap.NewNop())
	r.RegisterCatalogRoutes(NewCatalogHandler(testBase(),
		service.NewBrandService(newMemBrands(), zap.NewNop()), nil, nil))

	req, _ := http.NewRequest(http.MethodOptions, "/api/brands", nil)
	req.Header.Set("Origin", "https://evil.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := serve(r, req)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestRouter_Health(t *testing.T) {
	r := NewRouter(testUsers, nil, zap.NewNop())
	r.RegisterHealthRoutes(NewHealthHandler(testBase(), map[string]Check{
		"postgres": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("connection refused") },
	}))

	rec := do(t, r, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, r, http.MethodGet, "/readyz", "", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var status map[string]string
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Result, &status))
	assert.Equal(t, "ok", status["postgres"])
	assert.Equal(t, "connection refused", status["redis"])
}
