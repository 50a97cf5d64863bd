package cdn

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cloudzeus/kimoncrm-sub005/internal/config"
	"github.com/cloudzeus/kimoncrm-sub005/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCleanPath(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "uploads/a.pdf", want: "uploads/a.pdf"},
		{in: "uploads//x/./b.png", want: "uploads/x/b.png"},
		{in: `uploads\win.txt`, want: "uploads/win.txt"},
		{in: "", wantErr: true},
		{in: "/etc/passwd", wantErr: true},
		{in: "uploads/../../secret", wantErr: true},
		{in: "..", wantErr: true},
		{in: "uploads/", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := CleanPath(tt.in)
			if tt.wantErr {
				assert.True(t, errors.Is(err, domain.ErrInvalidArgument))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(config.BunnyConfig{
		StorageZone: "kimon",
		StorageHost: srv.URL,
		AccessKey:   "secret-key",
		PullZoneURL: "https://kimon.b-cdn.net/",
	}, zap.NewNop())
}

func TestClient_Upload(t *testing.T) {
	var body []byte
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/kimon/proposals/s1/offer v1.docx", r.URL.Path)
		assert.Equal(t, "secret-key", r.Header.Get("AccessKey"))
		assert.Equal(t, "application/pdf", r.Header.Get("Content-Type"))
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
	})

	url, err := c.Upload(context.Background(), "proposals/s1/offer v1.docx", strings.NewReader("payload"), "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "https://kimon.b-cdn.net/proposals/s1/offer%20v1.docx", url)
	assert.Equal(t, []byte("payload"), body)
}

func TestClient_Upload_RetriesWithFullBody(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		b, _ := io.ReadAll(r.Body)
		assert.Equal(t, "abc", string(b))
		if calls == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusCreated)
	})

	_, err := c.Upload(context.Background(), "a/b.bin", bytes.NewReader([]byte("abc")), "")
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestClient_Upload_Unauthorized(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := c.Upload(context.Background(), "a/b.bin", strings.NewReader("x"), "")
	assert.True(t, errors.Is(err, domain.ErrIntegration))
}

func TestClient_Upload_RejectsTraversal(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	_, err := c.Upload(context.Background(), "../x", strings.NewReader("x"), "")
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument))
}

func TestClient_Delete(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		if r.URL.Path == "/kimon/missing.txt" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, c.Delete(context.Background(), "uploads/a.txt"))
	assert.True(t, errors.Is(c.Delete(context.Background(), "missing.txt"), domain.ErrNotFound))
}
