package httpapi

import (
	"net/http"
	"time"

	"github.com/cloudzeus/kimoncrm-sub005/internal/service"
)

type AuthHandler struct {
	Base
	auth         *service.AuthService
	secureCookie bool
}

func NewAuthHandler(b Base, auth *service.AuthService, secureCookie bool) *AuthHandler {
	return &AuthHandler{Base: b, auth: auth, secureCookie: secureCookie}
}

// Login returns the token and also sets it as an HttpOnly cookie for browser clients.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if !h.decode(w, r, "Login", &req) {
		return
	}
	req.IPAddress = r.RemoteAddr
	req.UserAgent = r.UserAgent()

	resp, err := h.auth.Login(r.Context(), req)
	if err != nil {
		h.fail(w, r, "Login", err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     AuthCookie,
		Value:    resp.Token,
		Path:     "/",
		Expires:  resp.ExpiresAt,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	h.ok(w, resp)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     AuthCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	h.noContent(w)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	h.ok(w, currentUser(r))
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req service.ChangePasswordRequest
	if !h.decode(w, r, "ChangePassword", &req) {
		return
	}
	req.UserID = currentUser(r).ID
	if err := h.auth.ChangePassword(r.Context(), req); err != nil {
		h.fail(w, r, "ChangePassword", err)
		return
	}
	h.noContent(w)
}
