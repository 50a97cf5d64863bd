package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudzeus/kimoncrm-sub005/internal/domain"
	"github.com/cloudzeus/kimoncrm-sub005/internal/events"
	"github.com/cloudzeus/kimoncrm-sub005/internal/graph"
	"github.com/cloudzeus/kimoncrm-sub005/internal/repository"

	"github.com/asaskevich/govalidator"
	"go.uber.org/zap"
)

// Mailer is the Microsoft Graph surface used by EmailService.
type Mailer interface {
	SendMail(ctx context.Context, from string, msg graph.Message) error
	ListMessages(ctx context.Context, mailbox, folder string, top, skip int) (*graph.MessagePage, error)
	GetMessage(ctx context.Context, mailbox, id string) (*graph.Message, error)
	ListUsers(ctx context.Context, top int) ([]graph.User, error)
}

const (
	defaultInboxTop = 25
	maxInboxTop     = 100
)

// Linked records an outbound mail may reference.
type (
	leadGetter interface {
		GetLead(ctx context.Context, id string) (*domain.Lead, error)
	}
	customerGetter interface {
		GetCustomer(ctx context.Context, id string) (*domain.Customer, error)
	}
)

type EmailService struct {
	emails    repository.EmailsRepository
	leads     leadGetter
	customers customerGetter
	mailer    Mailer // nil when Graph is disabled
	sender    string
	publisher events.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

func NewEmailService(emails repository.EmailsRepository, leads leadGetter, customers customerGetter, mailer Mailer, sender string, publisher events.Publisher, logger *zap.Logger) *EmailService {
	return &EmailService{
		emails:    emails,
		leads:     leads,
		customers: customers,
		mailer:    mailer,
		sender:    strings.TrimSpace(sender),
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

type SendEmailRequest struct {
	To         []string `json:"to"`
	Cc         []string `json:"cc"`
	Subject    string   `json:"subject"`
	Body       string   `json:"body"`
	LeadID     string   `json:"lead_id"`
	CustomerID string   `json:"customer_id"`
	ActorID    string   `json:"-"`
	ActorEmail string   `json:"-"`
}

func normalizeAddresses(field string, in []string, fields map[string]string) []string {
	out := make([]string, 0, len(in))
	for _, a := range in {
		a = strings.ToLower(strings.TrimSpace(a))
		if a == "" {
			continue
		}
		if !govalidator.IsEmail(a) {
			fields[field] = fmt.Sprintf("invalid address %q", a)
			continue
		}
		out = append(out, a)
	}
	return out
}

// checkLinks resolves the lead and customer the mail is filed under so an
// unknown id is rejected before anything leaves the mailbox.
func (s *EmailService) checkLinks(ctx context.Context, leadID, customerID string) error {
	if leadID != "" {
		if _, err := s.leads.GetLead(ctx, leadID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.NewValidationError("lead_id", "unknown lead")
			}
			return err
		}
	}
	if customerID != "" {
		if _, err := s.customers.GetCustomer(ctx, customerID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.NewValidationError("customer_id", "unknown customer")
			}
			return err
		}
	}
	return nil
}

// SendEmail validates the recipients, sends through Graph and records the
// outbound mail.
func (s *EmailService) SendEmail(ctx context.Context, req SendEmailRequest) (*domain.Email, error) {
	fields := map[string]string{}
	to := normalizeAddresses("to", req.To, fields)
	cc := normalizeAddresses("cc", req.Cc, fields)
	if len(to) == 0 && fields["to"] == "" {
		fields["to"] = "at least one recipient is required"
	}
	if strings.TrimSpace(req.Subject) == "" {
		fields["subject"] = "required"
	}
	req.LeadID = strings.TrimSpace(req.LeadID)
	req.CustomerID = strings.TrimSpace(req.CustomerID)
	if req.LeadID != "" && !govalidator.IsUUID(req.LeadID) {
		fields["lead_id"] = "must be a UUID"
	}
	if req.CustomerID != "" && !govalidator.IsUUID(req.CustomerID) {
		fields["customer_id"] = "must be a UUID"
	}
	if len(fields) > 0 {
		return nil, &domain.ValidationError{Fields: fields}
	}
	if err := s.checkLinks(ctx, req.LeadID, req.CustomerID); err != nil {
		return nil, err
	}
	if s.mailer == nil {
		return nil, fmt.Errorf("graph: %w", domain.ErrNotConfigured)
	}

	from := s.sender
	if from == "" {
		from = req.ActorEmail
	}
	if from == "" {
		return nil, domain.NewValidationError("from", "no sender mailbox")
	}

	msg := graph.Message{
		Subject:      strings.TrimSpace(req.Subject),
		Body:         &graph.ItemBody{ContentType: "HTML", Content: req.Body},
		ToRecipients: graph.Recipients(to),
		CcRecipients: graph.Recipients(cc),
	}
	if err := s.mailer.SendMail(ctx, from, msg); err != nil {
		s.logger.Error("Send mail failed", zap.String("from", from), zap.Strings("to", to), zap.Error(err))
		return nil, fmt.Errorf("failed to send mail: %w", err)
	}

	e := &domain.Email{
		Direction:  domain.EmailOutbound,
		FromAddr:   from,
		To:         to,
		Cc:         cc,
		Subject:    msg.Subject,
		Body:       req.Body,
		LeadID:     optional(req.LeadID),
		CustomerID: optional(req.CustomerID),
		SentBy:     optional(req.ActorID),
		SentAt:     s.now().UTC(),
	}
	if err := s.emails.CreateEmail(ctx, e); err != nil {
		return nil, fmt.Errorf("mail sent but not recorded: %w", err)
	}

	s.logger.Info("Email sent", zap.String("email_id", e.ID), zap.String("from", from), zap.Int("recipients", len(to)+len(cc)))
	if err := s.publisher.Publish(ctx, events.EmailSent, map[string]any{
		"email_id":    e.ID,
		"from":        from,
		"to":          to,
		"subject":     e.Subject,
		"lead_id":     e.LeadID,
		"customer_id": e.CustomerID,
	}); err != nil {
		s.logger.Warn("Failed to publish event", zap.String("event", events.EmailSent), zap.Error(err))
	}
	return e, nil
}

type ListEmailsRequest struct {
	LeadID     string
	CustomerID string
	Search     string
	Page       int
	Size       int
}

func (s *EmailService) ListEmails(ctx context.Context, req ListEmailsRequest) (*domain.PageResult[*domain.Email], error) {
	page := domain.NewPage(req.Page, req.Size)
	items, total, err := s.emails.ListEmails(ctx, domain.EmailFilter{
		LeadID:     req.LeadID,
		CustomerID: req.CustomerID,
		Search:     strings.TrimSpace(req.Search),
	}, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list emails: %w", err)
	}
	res := domain.NewPageResult(items, total, page)
	return &res, nil
}

type InboxRequest struct {
	Mailbox string
	Folder  string
	Top     int
	Skip    int
}

func (s *EmailService) Inbox(ctx context.Context, req InboxRequest) (*graph.MessagePage, error) {
	if s.mailer == nil {
		return nil, fmt.Errorf("graph: %w", domain.ErrNotConfigured)
	}
	if req.Mailbox == "" {
		return nil, domain.NewValidationError("mailbox", "required")
	}
	if req.Folder == "" {
		req.Folder = "inbox"
	}
	switch {
	case req.Top <= 0:
		req.Top = defaultInboxTop
	case req.Top > maxInboxTop:
		req.Top = maxInboxTop
	}
	if req.Skip < 0 {
		req.Skip = 0
	}
	page, err := s.mailer.ListMessages(ctx, req.Mailbox, req.Folder, req.Top, req.Skip)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	if page.Messages == nil {
		page.Messages = []graph.Message{}
	}
	return page, nil
}

func (s *EmailService) GetMessage(ctx context.Context, mailbox, id string) (*graph.Message, error) {
	if s.mailer == nil {
		return nil, fmt.Errorf("graph: %w", domain.ErrNotConfigured)
	}
	if mailbox == "" || id == "" {
		return nil, domain.NewValidationError("id", "required")
	}
	msg, err := s.mailer.GetMessage(ctx, mailbox, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get message: %w", err)
	}
	return msg, nil
}

func (s *EmailService) DirectoryUsers(ctx context.Context, top int) ([]graph.User, error) {
	if s.mailer == nil {
		return nil, fmt.Errorf("graph: %w", domain.ErrNotConfigured)
	}
	if top <= 0 || top > 999 {
		top = 100
	}
	users, err := s.mailer.ListUsers(ctx, top)
	if err != nil {
		return nil, fmt.Errorf("failed to list directory users: %w", err)
	}
	return users, nil
}
