// Package cdn uploads files to a Bunny storage zone and builds their public
// pull-zone URLs.
package cdn

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/cloudzeus/kimoncrm-sub005/internal/config"
	"github.com/cloudzeus/kimoncrm-sub005/internal/domain"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

type Client struct {
	http     *resty.Client
	pullZone string
	logger   *zap.Logger
}

// NewClient targets https://{storage_host}/{zone}. A storage host that
// already carries a scheme is used as is.
func NewClient(cfg config.BunnyConfig, logger *zap.Logger) *Client {
	host := strings.TrimSuffix(cfg.StorageHost, "/")
	if host == "" {
		host = "storage.bunnycdn.com"
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "https://" + host
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	hc := resty.New().
		SetBaseURL(host+"/"+url.PathEscape(cfg.StorageZone)).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500*time.Millisecond).
		SetHeader("AccessKey", cfg.AccessKey).
		SetLogger(logger.Sugar()).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			return err != nil || (resp != nil && resp.StatusCode() >= 500)
		})
	return &Client{
		http:     hc,
		pullZone: strings.TrimSuffix(cfg.PullZoneURL, "/"),
		logger:   logger,
	}
}

// CleanPath normalizes a storage path and rejects traversal, absolute and
// empty paths.
func CleanPath(p string) (string, error) {
	p = strings.TrimSpace(strings.ReplaceAll(p, `\`, "/"))
	if p == "" {
		return "", domain.NewValidationError("path", "must not be empty")
	}
	if strings.HasPrefix(p, "/") {
		return "", domain.NewValidationError("path", "must be relative")
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return "", domain.NewValidationError("path", "must not contain ..")
		}
	}
	clean := path.Clean(p)
	if clean == "." || strings.HasSuffix(p, "/") {
		return "", domain.NewValidationError("path", "must name a file")
	}
	return clean, nil
}

// escapePath escapes each segment of a clean path.
func escapePath(p string) string {
	segs := strings.Split(p, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return strings.Join(segs, "/")
}

// PublicURL pull-zone URL of a stored path.
func (c *Client) PublicURL(p string) string {
	return c.pullZone + "/" + escapePath(p)
}

// Upload stores body at p and returns its public URL.
func (c *Client) Upload(ctx context.Context, p string, body io.Reader, contentType string) (string, error) {
	clean, err := CleanPath(p)
	if err != nil {
		return "", err
	}
	// buffered so retries resend the full body
	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("read upload body: %w", err)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentType).
		SetBody(bytes.NewReader(data)).
		Put("/" + escapePath(clean))
	if err != nil {
		return "", fmt.Errorf("bunny upload %s: %v: %w", clean, err, domain.ErrIntegration)
	}
	if resp.StatusCode() != http.StatusCreated && resp.StatusCode() != http.StatusOK {
		c.logger.Warn("Bunny upload rejected",
			zap.String("path", clean),
			zap.Int("status", resp.StatusCode()),
			zap.String("body", string(resp.Body())),
		)
		return "", fmt.Errorf("bunny upload %s: status %d: %w", clean, resp.StatusCode(), domain.ErrIntegration)
	}
	c.logger.Info("Uploaded file to CDN", zap.String("path", clean), zap.Int("size", len(data)))
	return c.PublicURL(clean), nil
}

// Delete removes p from the storage zone. A missing file is ErrNotFound.
func (c *Client) Delete(ctx context.Context, p string) error {
	clean, err := CleanPath(p)
	if err != nil {
		return err
	}
	resp, err := c.http.R().SetContext(ctx).Delete("/" + escapePath(clean))
	if err != nil {
		return fmt.Errorf("bunny delete %s: %v: %w", clean, err, domain.ErrIntegration)
	}
	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return fmt.Errorf("bunny delete %s: %w", clean, domain.ErrNotFound)
	case resp.IsError():
		return fmt.Errorf("bunny delete %s: status %d: %w", clean, resp.StatusCode(), domain.ErrIntegration)
	}
	c.logger.Info("Deleted file from CDN", zap.String("path", clean))
	return nil
}
