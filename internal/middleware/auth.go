// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// rate limiting, CSRF protection and request logging.
package middleware

import (
	"net/http"

	"github.com/alexedwards/scs/v2"
)

// SessionKeyUserName is the session key holding the signed-in user name.
// A non-empty value is what makes a caller privileged: the stores never
// compute privilege themselves, they are told.
const SessionKeyUserName = "user_name"

// Auth creates middleware that requires a signed-in user and redirects to
// the login page otherwise, carrying the original URL for the post-login
// redirect.
func Auth(sm *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if sm.GetString(r.Context(), SessionKeyUserName) == "" {
				http.Redirect(w, r, "/login?returnurl="+r.URL.Path, http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// IsPrivileged reports whether the request belongs to a signed-in user.
// This single boolean is the visibility capability handed to every store
// query.
func IsPrivileged(sm *scs.SessionManager, r *http.Request) bool {
	return sm.GetString(r.Context(), SessionKeyUserName) != ""
}

// CurrentUser returns the signed-in user name, or "" for anonymous callers.
func CurrentUser(sm *scs.SessionManager, r *http.Request) string {
	return sm.GetString(r.Context(), SessionKeyUserName)
}
