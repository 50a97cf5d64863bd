package httpapi

import (
	"net/http"
	"strconv"

	"github.com/cloudzeus/kimoncrm-sub005/internal/service"

	"github.com/go-chi/chi/v5"
)

// cablingMaxBody caps PUT /cabling; trees for large sites exceed the default.
const cablingMaxBody = 8 << 20

// SiteSurveyHandler serves surveys plus their cabling tree and generated documents.
type SiteSurveyHandler struct {
	Base
	surveys   *service.SiteSurveyService
	cabling   *service.CablingService
	documents *service.DocumentService
}

func NewSiteSurveyHandler(b Base, surveys *service.SiteSurveyService, cabling *service.CablingService, documents *service.DocumentService) *SiteSurveyHandler {
	return &SiteSurveyHandler{Base: b, surveys: surveys, cabling: cabling, documents: documents}
}

func (h *SiteSurveyHandler) List(w http.ResponseWriter, r *http.Request) {
	p := readPage(r)
	res, err := h.surveys.ListSiteSurveys(r.Context(), service.ListSiteSurveysRequest{
		Search:     queryTrim(r, "search"),
		Type:       queryTrim(r, "type"),
		Status:     queryTrim(r, "status"),
		CustomerID: queryTrim(r, "customer_id"),
		AssigneeID: queryTrim(r, "assignee_id"),
		LeadID:     queryTrim(r, "lead_id"),
		Page:       p.page,
		Size:       p.size,
	})
	if err != nil {
		h.fail(w, r, "ListSiteSurveys", err)
		return
	}
	h.ok(w, res)
}

func (h *SiteSurveyHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.surveys.GetSiteSurvey(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "GetSiteSurvey", err)
		return
	}
	h.ok(w, s)
}

func (h *SiteSurveyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.SiteSurveyRequest
	if !h.decode(w, r, "CreateSiteSurvey", &req) {
		return
	}
	s, err := h.surveys.CreateSiteSurvey(r.Context(), req)
	if err != nil {
		h.fail(w, r, "CreateSiteSurvey", err)
		return
	}
	h.created(w, s)
}

func (h *SiteSurveyHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req service.SiteSurveyRequest
	if !h.decode(w, r, "UpdateSiteSurvey", &req) {
		return
	}
	req.ID = chi.URLParam(r, "id")
	s, err := h.surveys.UpdateSiteSurvey(r.Context(), req)
	if err != nil {
		h.fail(w, r, "UpdateSiteSurvey", err)
		return
	}
	h.ok(w, s)
}

func (h *SiteSurveyHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateSurveyStatusRequest
	if !h.decode(w, r, "UpdateSiteSurveyStatus", &req) {
		return
	}
	req.ID = chi.URLParam(r, "id")
	req.ActorID = currentUser(r).ID
	s, err := h.surveys.UpdateSiteSurveyStatus(r.Context(), req)
	if err != nil {
		h.fail(w, r, "UpdateSiteSurveyStatus", err)
		return
	}
	h.ok(w, s)
}

func (h *SiteSurveyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.surveys.DeleteSiteSurvey(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, "DeleteSiteSurvey", err)
		return
	}
	h.noContent(w)
}

// cabling

func (h *SiteSurveyHandler) GetCabling(w http.ResponseWriter, r *http.Request) {
	tree, err := h.cabling.GetCabling(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "GetCabling", err)
		return
	}
	h.ok(w, tree)
}

func (h *SiteSurveyHandler) SaveCabling(w http.ResponseWriter, r *http.Request) {
	req := service.SaveCablingRequest{
		SurveyID: chi.URLParam(r, "id"),
		ActorID:  currentUser(r).ID,
	}
	if err := readBodyJSON(r, cablingMaxBody, &req.Tree); err != nil {
		h.fail(w, r, "SaveCabling", err)
		return
	}
	tree, err := h.cabling.SaveCabling(r.Context(), req)
	if err != nil {
		h.fail(w, r, "SaveCabling", err)
		return
	}
	h.ok(w, tree)
}

func (h *SiteSurveyHandler) BOM(w http.ResponseWriter, r *http.Request) {
	bom, err := h.cabling.BuildBOM(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "BuildBOM", err)
		return
	}
	h.ok(w, bom)
}

// documents

func (h *SiteSurveyHandler) BOMWorkbook(w http.ResponseWriter, r *http.Request) {
	doc, err := h.documents.RenderBOM(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "RenderBOM", err)
		return
	}
	h.download(w, doc)
}

func (h *SiteSurveyHandler) Proposal(w http.ResponseWriter, r *http.Request) {
	doc, err := h.documents.RenderProposal(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "RenderProposal", err)
		return
	}
	h.download(w, doc)
}

func (h *SiteSurveyHandler) PublishBOM(w http.ResponseWriter, r *http.Request) {
	doc, err := h.documents.PublishBOM(r.Context(), service.PublishDocumentRequest{
		SurveyID: chi.URLParam(r, "id"),
		ActorID:  currentUser(r).ID,
	})
	if err != nil {
		h.fail(w, r, "PublishBOM", err)
		return
	}
	h.created(w, doc)
}

func (h *SiteSurveyHandler) PublishProposal(w http.ResponseWriter, r *http.Request) {
	doc, err := h.documents.PublishProposal(r.Context(), service.PublishDocumentRequest{
		SurveyID: chi.URLParam(r, "id"),
		ActorID:  currentUser(r).ID,
	})
	if err != nil {
		h.fail(w, r, "PublishProposal", err)
		return
	}
	h.created(w, doc)
}

func (h *SiteSurveyHandler) Documents(w http.ResponseWriter, r *http.Request) {
	docs, err := h.documents.ListDocuments(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "ListDocuments", err)
		return
	}
	h.ok(w, docs)
}

func (h *SiteSurveyHandler) download(w http.ResponseWriter, doc *service.RenderedDocument) {
	attachment(w, doc.ContentType, doc.FileName)
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc.Data)
}
