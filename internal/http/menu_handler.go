package httpapi

import (
	"net/http"

	"github.com/cloudzeus/kimoncrm-sub005/internal/service"

	"github.com/go-chi/chi/v5"
)

type MenuHandler struct {
	Base
	menu *service.MenuService
}

func NewMenuHandler(b Base, menu *service.MenuService) *MenuHandler {
	return &MenuHandler{Base: b, menu: menu}
}

// Menu returns the navigation tree visible to the caller's role.
func (h *MenuHandler) Menu(w http.ResponseWriter, r *http.Request) {
	groups, err := h.menu.MenuFor(r.Context(), currentUser(r).Role)
	if err != nil {
		h.fail(w, r, "MenuFor", err)
		return
	}
	h.ok(w, groups)
}

func (h *MenuHandler) ListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.menu.ListGroups(r.Context())
	if err != nil {
		h.fail(w, r, "ListMenuGroups", err)
		return
	}
	h.ok(w, groups)
}

func (h *MenuHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req service.MenuGroupRequest
	if !h.decode(w, r, "CreateMenuGroup", &req) {
		return
	}
	g, err := h.menu.CreateGroup(r.Context(), req)
	if err != nil {
		h.fail(w, r, "CreateMenuGroup", err)
		return
	}
	h.created(w, g)
}

func (h *MenuHandler) UpdateGroup(w http.ResponseWriter, r *http.Request) {
	var req service.MenuGroupRequest
	if !h.decode(w, r, "UpdateMenuGroup", &req) {
		return
	}
	req.ID = chi.URLParam(r, "id")
	g, err := h.menu.UpdateGroup(r.Context(), req)
	if err != nil {
		h.fail(w, r, "UpdateMenuGroup", err)
		return
	}
	h.ok(w, g)
}

func (h *MenuHandler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	if err := h.menu.DeleteGroup(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, "DeleteMenuGroup", err)
		return
	}
	h.noContent(w)
}

func (h *MenuHandler) ReorderGroups(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if !h.decode(w, r, "ReorderMenuGroups", &req) {
		return
	}
	if err := h.menu.ReorderGroups(r.Context(), req.IDs); err != nil {
		h.fail(w, r, "ReorderMenuGroups", err)
		return
	}
	h.noContent(w)
}

func (h *MenuHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.menu.ListItems(r.Context())
	if err != nil {
		h.fail(w, r, "ListMenuItems", err)
		return
	}
	h.ok(w, items)
}

func (h *MenuHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req service.MenuItemRequest
	if !h.decode(w, r, "CreateMenuItem", &req) {
		return
	}
	it, err := h.menu.CreateItem(r.Context(), req)
	if err != nil {
		h.fail(w, r, "CreateMenuItem", err)
		return
	}
	h.created(w, it)
}

func (h *MenuHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req service.MenuItemRequest
	if !h.decode(w, r, "UpdateMenuItem", &req) {
		return
	}
	req.ID = chi.URLParam(r, "id")
	it, err := h.menu.UpdateItem(r.Context(), req)
	if err != nil {
		h.fail(w, r, "UpdateMenuItem", err)
		return
	}
	h.ok(w, it)
}

func (h *MenuHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := h.menu.DeleteItem(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, "DeleteMenuItem", err)
		return
	}
	h.noContent(w)
}

func (h *MenuHandler) ReorderItems(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if !h.decode(w, r, "ReorderMenuItems", &req) {
		return
	}
	if err := h.menu.ReorderItems(r.Context(), req.IDs); err != nil {
		h.fail(w, r, "ReorderMenuItems", err)
		return
	}
	h.noContent(w)
}
