// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"strings"

	"github.com/olegiv/oblog-go/internal/middleware"
	"github.com/olegiv/oblog-go/internal/render"
)

// loginData is the payload of the login page.
type loginData struct {
	ReturnURL string
	Error     string
}

// LoginForm renders the sign-in page.
func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if h.isPrivileged(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	h.render(w, r, "login", render.TemplateData{
		Title: "Sign in",
		Data:  loginData{ReturnURL: safeReturnURL(r.URL.Query().Get("returnurl"))},
	})
}

// Login validates the submitted credentials and starts a session. The
// session token is renewed on success to prevent fixation.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	username := strings.TrimSpace(r.PostFormValue("username"))
	password := r.PostFormValue("password")
	returnURL := safeReturnURL(r.PostFormValue("returnurl"))

	if !h.users.Validate(username, password) {
		h.logger.Warn("failed login attempt", "username", username, "ip", r.RemoteAddr)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusUnauthorized)
		h.render(w, r, "login", render.TemplateData{
			Title: "Sign in",
			Data:  loginData{ReturnURL: returnURL, Error: "Invalid user name or password."},
		})
		return
	}

	if err := h.session.RenewToken(r.Context()); err != nil {
		h.logger.Error("renewing session token", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	h.session.Put(r.Context(), middleware.SessionKeyUserName, username)

	if err := h.users.TouchLastLogin(username); err != nil {
		// Login still succeeds; the timestamp is informational.
		h.logger.Warn("updating last login time", "username", username, "error", err)
	}

	h.logger.Info("user signed in", "username", username)
	http.Redirect(w, r, returnURL, http.StatusSeeOther)
}

// Logout destroys the session and returns to the front page.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.session.Destroy(r.Context()); err != nil {
		h.logger.Error("destroying session", "error", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// safeReturnURL restricts post-login redirects to local paths so the login
// form cannot be used as an open redirector.
func safeReturnURL(raw string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") {
		return "/"
	}
	return raw
}
