package httpapi

import (
	"net/http"

	"github.com/cloudzeus/kimoncrm-sub005/internal/service"

	"github.com/go-chi/chi/v5"
)

type UserHandler struct {
	Base
	users *service.UserService
}

func NewUserHandler(b Base, users *service.UserService) *UserHandler {
	return &UserHandler{Base: b, users: users}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	p := readPage(r)
	res, err := h.users.ListUsers(r.Context(), service.ListUsersRequest{
		Search: queryTrim(r, "search"),
		Role:   queryTrim(r, "role"),
		Active: parseBool(queryTrim(r, "active")),
		Page:   p.page,
		Size:   p.size,
	})
	if err != nil {
		h.fail(w, r, "ListUsers", err)
		return
	}
	h.ok(w, res)
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "GetUser", err)
		return
	}
	h.ok(w, u)
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateUserRequest
	if !h.decode(w, r, "CreateUser", &req) {
		return
	}
	u, err := h.users.CreateUser(r.Context(), req)
	if err != nil {
		h.fail(w, r, "CreateUser", err)
		return
	}
	h.created(w, u)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateUserRequest
	if !h.decode(w, r, "UpdateUser", &req) {
		return
	}
	req.ID = chi.URLParam(r, "id")
	u, err := h.users.UpdateUser(r.Context(), req)
	if err != nil {
		h.fail(w, r, "UpdateUser", err)
		return
	}
	h.ok(w, u)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.users.DeleteUser(r.Context(), service.DeleteUserRequest{
		ID:      chi.URLParam(r, "id"),
		ActorID: currentUser(r).ID,
	})
	if err != nil {
		h.fail(w, r, "DeleteUser", err)
		return
	}
	h.noContent(w)
}
