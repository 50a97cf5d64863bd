package graph

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cloudzeus/kimoncrm-sub005/internal/config"
	"github.com/cloudzeus/kimoncrm-sub005/internal/domain"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newTestServer serves the token endpoint and delegates Graph calls to h.
func newTestServer(t *testing.T, h http.HandlerFunc) (*httptest.Server, config.GraphConfig) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"access_token":"test-token","token_type":"Bearer","expires_in":3600}`)
	})
	mux.HandleFunc("/v1.0/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		h(w, r)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	cfg := config.GraphConfig{
		TenantID:     "tenant",
		ClientID:     "client",
		ClientSecret: "secret",
		BaseURL:      srv.URL + "/v1.0",
		TokenURL:     srv.URL + "/token",
		RatePerSec:   100,
		Burst:        10,
		RetryCount:   2,
		Timeout:      5 * time.Second,
	}
	return srv, cfg
}

func TestClient_SendMail(t *testing.T) {
	var got sendMailBody
	_, cfg := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1.0/users/sales@example.com/sendMail", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	})
	c := NewClient(cfg, zap.NewNop())

	err := c.SendMail(context.Background(), "sales@example.com", Message{
		Subject:      "Offer",
		Body:         &ItemBody{ContentType: "HTML", Content: "<p>hi</p>"},
		ToRecipients: Recipients([]string{"a@example.com"}),
	})
	require.NoError(t, err)
	assert.True(t, got.SaveToSentItems)
	assert.Equal(t, "Offer", got.Message.Subject)
	require.Len(t, got.Message.ToRecipients, 1)
	assert.Equal(t, "a@example.com", got.Message.ToRecipients[0].EmailAddress.Address)
}

func TestClient_ListMessages_RetriesOnServerError(t *testing.T) {
	var calls int32
	_, cfg := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		assert.Equal(t, "/v1.0/users/me@example.com/mailFolders/inbox/messages", r.URL.Path)
		assert.Equal(t, "10", r.URL.Query().Get("$top"))
		assert.Equal(t, "20", r.URL.Query().Get("$skip"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"value":[{"id":"m1","subject":"Hello","isRead":true}]}`)
	})
	c := NewClient(cfg, zap.NewNop())

	page, err := c.ListMessages(context.Background(), "me@example.com", "", 10, 20)
	require.NoError(t, err)
	require.Len(t, page.Messages, 1)
	assert.Equal(t, "m1", page.Messages[0].ID)
	assert.True(t, page.Messages[0].IsRead)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestClient_GetMessage_NotFound(t *testing.T) {
	_, cfg := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":{"code":"ErrorItemNotFound","message":"The specified object was not found in the store."}}`)
	})
	c := NewClient(cfg, zap.NewNop())

	_, err := c.GetMessage(context.Background(), "me@example.com", "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Contains(t, err.Error(), "ErrorItemNotFound")

	var gerr *Error
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, http.StatusNotFound, gerr.StatusCode)
}

func TestClient_ListUsers_ForbiddenIsIntegrationError(t *testing.T) {
	_, cfg := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"error":{"code":"Authorization_RequestDenied","message":"Insufficient privileges"}}`)
	})
	c := NewClient(cfg, zap.NewNop())

	_, err := c.ListUsers(context.Background(), 5)
	assert.True(t, errors.Is(err, domain.ErrIntegration))
	assert.Contains(t, err.Error(), "Insufficient privileges")
}

func TestClient_RateLimiterHonoursContext(t *testing.T) {
	var calls int32
	_, cfg := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = io.WriteString(w, `{"value":[]}`)
	})
	cfg.RatePerSec = 0.01
	cfg.Burst = 1
	cfg.RetryCount = 0
	c := NewClient(cfg, zap.NewNop())

	_, err := c.ListUsers(context.Background(), 1)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = c.ListUsers(ctx, 1)
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestRetryAfter(t *testing.T) {
	resp := &resty.Response{RawResponse: &http.Response{Header: http.Header{"Retry-After": []string{"3"}}}}
	d, err := retryAfter(nil, resp)
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, d)

	resp = &resty.Response{RawResponse: &http.Response{Header: http.Header{}}}
	d, err = retryAfter(nil, resp)
	require.NoError(t, err)
	assert.Zero(t, d)
}
