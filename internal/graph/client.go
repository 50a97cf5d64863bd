// Package graph is a small Microsoft Graph mail client. Tokens come from the
// OAuth2 client-credentials flow; every request goes through a token-bucket
// limiter and is retried on transport errors, 429 and 5xx.
package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/cloudzeus/kimoncrm-sub005/internal/config"
	"github.com/cloudzeus/kimoncrm-sub005/internal/domain"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://graph.microsoft.com/v1.0"
	defaultScope   = "https://graph.microsoft.com/.default"
)

// Error Graph error response ({"error":{"code","message"}}).
type Error struct {
	StatusCode int
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("graph: %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// Unwrap maps 404 to domain.ErrNotFound and everything else to domain.ErrIntegration.
func (e *Error) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return domain.ErrNotFound
	}
	return domain.ErrIntegration
}

type Client struct {
	http    *resty.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewClient builds a client for cfg. The OAuth2 token source caches tokens
// and refreshes them before expiry.
func NewClient(cfg config.GraphConfig, logger *zap.Logger) *Client {
	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.GraphTokenURL(),
		Scopes:       []string{defaultScope},
	}
	return newClient(cc.Client(context.Background()), cfg, logger)
}

func newClient(hc *http.Client, cfg config.GraphConfig, logger *zap.Logger) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	perSec := cfg.RatePerSec
	if perSec <= 0 {
		perSec = 4
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(perSec), burst)

	hr := resty.NewWithClient(hc).
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(10*time.Second).
		SetHeader("Accept", "application/json").
		SetLogger(logger.Sugar()).
		AddRetryCondition(retryable).
		SetRetryAfter(retryAfter).
		OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
			return limiter.Wait(r.Context())
		})

	return &Client{http: hr, limiter: limiter, logger: logger}
}

func retryable(resp *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	if resp == nil {
		return false
	}
	code := resp.StatusCode()
	return code == http.StatusTooManyRequests || code >= 500
}

// retryAfter honors Graph's Retry-After seconds on throttled responses; 0 falls
// back to jittered backoff.
func retryAfter(_ *resty.Client, resp *resty.Response) (time.Duration, error) {
	if resp == nil {
		return 0, nil
	}
	secs, err := strconv.Atoi(resp.Header().Get("Retry-After"))
	if err != nil || secs <= 0 {
		return 0, nil
	}
	return time.Duration(secs) * time.Second, nil
}

func parseError(resp *resty.Response) error {
	var body struct {
		Error Error `json:"error"`
	}
	_ = json.Unmarshal(resp.Body(), &body)
	e := body.Error
	e.StatusCode = resp.StatusCode()
	if e.Code == "" {
		e.Code = http.StatusText(resp.StatusCode())
	}
	return &e
}

func (c *Client) do(ctx context.Context, op string, req *resty.Request, method, path string) (*resty.Response, error) {
	start := time.Now()
	resp, err := req.SetContext(ctx).Execute(method, path)
	if err != nil {
		c.logger.Error("Graph request failed", zap.String("op", op), zap.Error(err))
		return nil, fmt.Errorf("graph %s: %v: %w", op, err, domain.ErrIntegration)
	}
	c.logger.Debug("Graph request",
		zap.String("op", op),
		zap.Int("status", resp.StatusCode()),
		zap.Int("attempts", resp.Request.Attempt),
		zap.Duration("duration", time.Since(start)),
	)
	if resp.IsError() {
		gerr := parseError(resp)
		c.logger.Warn("Graph returned error", zap.String("op", op), zap.Error(gerr))
		return nil, fmt.Errorf("graph %s: %w", op, gerr)
	}
	return resp, nil
}

// SendMail sends msg from the mailbox of from and keeps a copy in Sent Items.
func (c *Client) SendMail(ctx context.Context, from string, msg Message) error {
	req := c.http.R().
		SetPathParam("user", from).
		SetHeader("Content-Type", "application/json").
		SetBody(sendMailBody{Message: msg, SaveToSentItems: true})
	_, err := c.do(ctx, "sendMail", req, http.MethodPost, "/users/{user}/sendMail")
	return err
}

// ListMessages lists a mail folder of mailbox, newest first.
func (c *Client) ListMessages(ctx context.Context, mailbox, folder string, top, skip int) (*MessagePage, error) {
	if folder == "" {
		folder = "inbox"
	}
	var page MessagePage
	req := c.http.R().
		SetPathParams(map[string]string{"user": mailbox, "folder": folder}).
		SetQueryParams(map[string]string{
			"$top":     strconv.Itoa(top),
			"$skip":    strconv.Itoa(skip),
			"$orderby": "receivedDateTime desc",
			"$select":  "id,subject,bodyPreview,from,toRecipients,ccRecipients,receivedDateTime,sentDateTime,isRead,hasAttachments,webLink",
		}).
		SetResult(&page)
	if _, err := c.do(ctx, "listMessages", req, http.MethodGet, "/users/{user}/mailFolders/{folder}/messages"); err != nil {
		return nil, err
	}
	if page.Messages == nil {
		page.Messages = []Message{}
	}
	return &page, nil
}

// GetMessage fetches one message including its body.
func (c *Client) GetMessage(ctx context.Context, mailbox, id string) (*Message, error) {
	var msg Message
	req := c.http.R().
		SetPathParams(map[string]string{"user": mailbox, "id": id}).
		SetResult(&msg)
	if _, err := c.do(ctx, "getMessage", req, http.MethodGet, "/users/{user}/messages/{id}"); err != nil {
		return nil, err
	}
	return &msg, nil
}

// ListUsers lists directory users.
func (c *Client) ListUsers(ctx context.Context, top int) ([]User, error) {
	var page userPage
	req := c.http.R().
		SetQueryParams(map[string]string{
			"$top":    strconv.Itoa(top),
			"$select": "id,displayName,mail,userPrincipalName,jobTitle",
		}).
		SetResult(&page)
	if _, err := c.do(ctx, "listUsers", req, http.MethodGet, "/users"); err != nil {
		return nil, err
	}
	if page.Users == nil {
		page.Users = []User{}
	}
	return page.Users, nil
}
