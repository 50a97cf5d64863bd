package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cloudzeus/kimoncrm-sub005/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, "", bearerToken(req))

	req.AddCookie(&http.Cookie{Name: AuthCookie, Value: "from-cookie"})
	assert.Equal(t, "from-cookie", bearerToken(req))

	req.Header.Set("Authorization", "bearer  abc ")
	assert.Equal(t, "abc", bearerToken(req))

	// a non-bearer header does not fall back to the cookie
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	assert.Equal(t, "", bearerToken(req))
}

func TestRequireRole(t *testing.T) {
	h := requireAuth(testUsers, zap.NewNop())(requireRole(domain.RoleAdmin)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, Ok(currentUser(r).ID))
		})))

	rec := do(t, h, http.MethodGet, "/", "employee-token", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, h, http.MethodGet, "/", "admin-token", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `"u-admin"`, string(decodeEnvelope(t, rec).Result))
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{domain.NewValidationError("name", "required"), http.StatusBadRequest},
		{fmt.Errorf("wrap: %w", domain.ErrInvalidArgument), http.StatusBadRequest},
		{domain.ErrUnauthorized, http.StatusUnauthorized},
		{domain.ErrForbidden, http.StatusForbidden},
		{fmt.Errorf("failed to get lead: %w", domain.ErrNotFound), http.StatusNotFound},
		{domain.ErrConflict, http.StatusConflict},
		{fmt.Errorf("cdn: %w", domain.ErrNotConfigured), http.StatusServiceUnavailable},
		{fmt.Errorf("graph: %w", domain.ErrIntegration), http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, statusFor(c.err), c.err.Error())
	}
}

func TestWriteError_HidesInternalDetail(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/leads", nil)
	rec := httptest.NewRecorder()
	writeError(rec, req, zap.NewNop(), "ListLeads", errors.New("pq: password authentication failed"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "internal server error", env.Message)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestReadBodyJSON(t *testing.T) {
	var out struct {
		Name string `json:"name"`
		Qty  int    `json:"qty"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"cat6","qty":3}`))
	require.NoError(t, readBodyJSON(req, 1024, &out))
	assert.Equal(t, "cat6", out.Name)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"qty":"three"}`))
	err := readBodyJSON(req, 1024, &out)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "qty")

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"`+strings.Repeat("x", 64)+`"}`))
	err = readBodyJSON(req, 16, &out)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestReorderRequest_BothShapes(t *testing.T) {
	var a, b reorderRequest
	require.NoError(t, a.UnmarshalJSON([]byte(` ["x","y"]`)))
	require.NoError(t, b.UnmarshalJSON([]byte(`{"ids":["x","y"]}`)))
	assert.Equal(t, []string{"x", "y"}, a.IDs)
	assert.Equal(t, a.IDs, b.IDs)
}

func TestAttachment(t *testing.T) {
	rec := httptest.NewRecorder()
	attachment(rec, "application/pdf", "proposal-hq.docx")
	assert.Equal(t, `attachment; filename=proposal-hq.docx`, rec.Header().Get("Content-Disposition"))

	rec = httptest.NewRecorder()
	attachment(rec, "application/pdf", "προσφορά.docx")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "filename*=")
}
