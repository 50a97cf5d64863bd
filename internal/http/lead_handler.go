package httpapi

import (
	"net/http"

	"github.com/cloudzeus/kimoncrm-sub005/internal/service"

	"github.com/go-chi/chi/v5"
)

type LeadHandler struct {
	Base
	leads *service.LeadService
}

func NewLeadHandler(b Base, leads *service.LeadService) *LeadHandler {
	return &LeadHandler{Base: b, leads: leads}
}

func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	p := readPage(r)
	res, err := h.leads.ListLeads(r.Context(), service.ListLeadsRequest{
		Search:     queryTrim(r, "search"),
		Status:     queryTrim(r, "status"),
		OwnerID:    queryTrim(r, "owner_id"),
		CustomerID: queryTrim(r, "customer_id"),
		Page:       p.page,
		Size:       p.size,
	})
	if err != nil {
		h.fail(w, r, "ListLeads", err)
		return
	}
	h.ok(w, res)
}

func (h *LeadHandler) Get(w http.ResponseWriter, r *http.Request) {
	l, err := h.leads.GetLead(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "GetLead", err)
		return
	}
	h.ok(w, l)
}

func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.LeadRequest
	if !h.decode(w, r, "CreateLead", &req) {
		return
	}
	req.ActorID = currentUser(r).ID
	l, err := h.leads.CreateLead(r.Context(), req)
	if err != nil {
		h.fail(w, r, "CreateLead", err)
		return
	}
	h.created(w, l)
}

func (h *LeadHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req service.LeadRequest
	if !h.decode(w, r, "UpdateLead", &req) {
		return
	}
	req.ID = chi.URLParam(r, "id")
	req.ActorID = currentUser(r).ID
	l, err := h.leads.UpdateLead(r.Context(), req)
	if err != nil {
		h.fail(w, r, "UpdateLead", err)
		return
	}
	h.ok(w, l)
}

func (h *LeadHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateLeadStatusRequest
	if !h.decode(w, r, "UpdateLeadStatus", &req) {
		return
	}
	req.ID = chi.URLParam(r, "id")
	req.ActorID = currentUser(r).ID
	l, err := h.leads.UpdateLeadStatus(r.Context(), req)
	if err != nil {
		h.fail(w, r, "UpdateLeadStatus", err)
		return
	}
	h.ok(w, l)
}

func (h *LeadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.leads.DeleteLead(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, "DeleteLead", err)
		return
	}
	h.noContent(w)
}

// CreateSurvey opens a site survey for the lead.
func (h *LeadHandler) CreateSurvey(w http.ResponseWriter, r *http.Request) {
	var req service.ConvertLeadRequest
	if !h.decode(w, r, "CreateSurveyFromLead", &req) {
		return
	}
	req.LeadID = chi.URLParam(r, "id")
	s, err := h.leads.CreateSurveyFromLead(r.Context(), req)
	if err != nil {
		h.fail(w, r, "CreateSurveyFromLead", err)
		return
	}
	h.created(w, s)
}
