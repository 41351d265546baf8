// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler provides the HTTP handlers for the blog.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/oblog-go/internal/config"
	"github.com/olegiv/oblog-go/internal/imaging"
	"github.com/olegiv/oblog-go/internal/middleware"
	"github.com/olegiv/oblog-go/internal/render"
	"github.com/olegiv/oblog-go/internal/store"
)

// Handler carries the shared dependencies of all HTTP handlers.
type Handler struct {
	cfg      *config.Config
	content  *store.ContentStore
	users    *store.UserStore
	renderer *render.Renderer
	session  *scs.SessionManager
	images   *imaging.Processor
	logger   *slog.Logger
}

// New creates a Handler wired to the given stores and renderer.
func New(cfg *config.Config, content *store.ContentStore, users *store.UserStore,
	renderer *render.Renderer, session *scs.SessionManager, logger *slog.Logger) *Handler {
	return &Handler{
		cfg:      cfg,
		content:  content,
		users:    users,
		renderer: renderer,
		session:  session,
		images:   imaging.NewProcessor(cfg.MaxImageWidth),
		logger:   logger,
	}
}

// isPrivileged reports whether the request carries a signed-in session.
func (h *Handler) isPrivileged(r *http.Request) bool {
	return middleware.IsPrivileged(h.session, r)
}

// render writes a page, logging and mapping template failures to a 500.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, name string, data render.TemplateData) {
	data.SiteName = h.cfg.BlogName
	data.IsLoggedIn = h.isPrivileged(r)
	if err := h.renderer.Render(w, r, name, data); err != nil {
		h.logger.Error("rendering template", "template", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// notFound renders a plain 404.
func (h *Handler) notFound(w http.ResponseWriter) {
	http.Error(w, "404 Page Not Found", http.StatusNotFound)
}
