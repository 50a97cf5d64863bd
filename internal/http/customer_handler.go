package httpapi

import (
	"bytes"
	"net/http"
	"time"

	"github.com/cloudzeus/kimoncrm-sub005/internal/docgen"
	"github.com/cloudzeus/kimoncrm-sub005/internal/service"

	"github.com/go-chi/chi/v5"
)

type CustomerHandler struct {
	Base
	customers *service.CustomerService
}

func NewCustomerHandler(b Base, customers *service.CustomerService) *CustomerHandler {
	return &CustomerHandler{Base: b, customers: customers}
}

func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	p := readPage(r)
	res, err := h.customers.ListCustomers(r.Context(), service.ListCustomersRequest{
		Search: queryTrim(r, "search"),
		Active: parseBool(queryTrim(r, "active")),
		Page:   p.page,
		Size:   p.size,
	})
	if err != nil {
		h.fail(w, r, "ListCustomers", err)
		return
	}
	h.ok(w, res)
}

func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.customers.GetCustomer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "GetCustomer", err)
		return
	}
	h.ok(w, c)
}

func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CustomerRequest
	if !h.decode(w, r, "CreateCustomer", &req) {
		return
	}
	c, err := h.customers.CreateCustomer(r.Context(), req)
	if err != nil {
		h.fail(w, r, "CreateCustomer", err)
		return
	}
	h.created(w, c)
}

func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req service.CustomerRequest
	if !h.decode(w, r, "UpdateCustomer", &req) {
		return
	}
	req.ID = chi.URLParam(r, "id")
	c, err := h.customers.UpdateCustomer(r.Context(), req)
	if err != nil {
		h.fail(w, r, "UpdateCustomer", err)
		return
	}
	h.ok(w, c)
}

func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.customers.DeleteCustomer(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, "DeleteCustomer", err)
		return
	}
	h.noContent(w)
}

// Export streams customers.xlsx. The workbook is built in memory so a
// failure still gets a JSON error.
func (h *CustomerHandler) Export(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.customers.ExportCustomers(r.Context(), queryTrim(r, "search"), &buf); err != nil {
		h.fail(w, r, "ExportCustomers", err)
		return
	}
	attachment(w, docgen.ContentTypeXLSX, "customers-"+time.Now().UTC().Format("20060102")+".xlsx")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
