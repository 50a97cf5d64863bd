package httpapi

import (
	"net/http"

	"github.com/cloudzeus/kimoncrm-sub005/internal/service"

	"github.com/go-chi/chi/v5"
)

type EmailHandler struct {
	Base
	emails *service.EmailService
}

func NewEmailHandler(b Base, emails *service.EmailService) *EmailHandler {
	return &EmailHandler{Base: b, emails: emails}
}

func (h *EmailHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req service.SendEmailRequest
	if !h.decode(w, r, "SendEmail", &req) {
		return
	}
	u := currentUser(r)
	req.ActorID = u.ID
	req.ActorEmail = u.Email
	e, err := h.emails.SendEmail(r.Context(), req)
	if err != nil {
		h.fail(w, r, "SendEmail", err)
		return
	}
	h.created(w, e)
}

func (h *EmailHandler) List(w http.ResponseWriter, r *http.Request) {
	p := readPage(r)
	res, err := h.emails.ListEmails(r.Context(), service.ListEmailsRequest{
		LeadID:     queryTrim(r, "lead_id"),
		CustomerID: queryTrim(r, "customer_id"),
		Search:     queryTrim(r, "search"),
		Page:       p.page,
		Size:       p.size,
	})
	if err != nil {
		h.fail(w, r, "ListEmails", err)
		return
	}
	h.ok(w, res)
}

// Inbox lists the caller's own mailbox.
func (h *EmailHandler) Inbox(w http.ResponseWriter, r *http.Request) {
	page, err := h.emails.Inbox(r.Context(), service.InboxRequest{
		Mailbox: currentUser(r).Email,
		Folder:  queryTrim(r, "folder"),
		Top:     parseInt(queryTrim(r, "top"), 0),
		Skip:    parseInt(queryTrim(r, "skip"), 0),
	})
	if err != nil {
		h.fail(w, r, "Inbox", err)
		return
	}
	h.ok(w, page)
}

func (h *EmailHandler) Message(w http.ResponseWriter, r *http.Request) {
	m, err := h.emails.GetMessage(r.Context(), currentUser(r).Email, chi.URLParam(r, "messageId"))
	if err != nil {
		h.fail(w, r, "GetMessage", err)
		return
	}
	h.ok(w, m)
}

func (h *EmailHandler) DirectoryUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.emails.DirectoryUsers(r.Context(), parseInt(queryTrim(r, "top"), 0))
	if err != nil {
		h.fail(w, r, "DirectoryUsers", err)
		return
	}
	h.ok(w, users)
}
