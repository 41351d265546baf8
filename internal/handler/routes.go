// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/olegiv/oblog-go/internal/middleware"
)

// MetaWeblogPath is where the XML-RPC endpoint is mounted. Desktop blog
// clients discover it via the RSD link or manual configuration.
const MetaWeblogPath = "/metaweblog"

// Routes builds the full router: global middleware, public pages, the
// session-protected editor routes and the XML-RPC endpoint.
func (h *Handler) Routes(staticFS fs.FS, metaweblog http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.AccessLog(h.logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(h.cfg.IsDevelopment())))
	r.Use(h.session.LoadAndSave)
	r.Use(middleware.SkipCSRF(MetaWeblogPath))
	r.Use(middleware.CSRF(middleware.DefaultCSRFConfig([]byte(h.cfg.SessionSecret), h.cfg.IsDevelopment())))

	// Comment submission and login attempts are the endpoints anonymous
	// visitors can hammer.
	publicMutationLimit := middleware.RateLimitByIP(0.5, 5)

	r.Get("/", h.Index)
	r.Get("/robots.txt", h.Robots)
	r.Get("/sitemap.xml", h.Sitemap)
	r.Get("/rsd.xml", h.Rsd)
	r.Get("/feed/rss", h.Feed)

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	// Rehosted media is served straight from the data directory.
	r.Handle("/posts/files/*", http.StripPrefix("/posts/files/",
		http.FileServer(http.Dir(h.content.MediaDir()))))

	r.Get("/login", h.LoginForm)
	r.With(publicMutationLimit).Post("/login", h.Login)
	r.Post("/logout", h.Logout)

	r.Route("/blog", func(r chi.Router) {
		r.Get("/category/{category}/", h.Category)
		r.Get("/tag/{tag}/", h.Tag)
		r.Get("/{slug}/", h.Post)
		r.With(publicMutationLimit).Post("/{slug}/comments", h.AddComment)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(h.session))
			r.Post("/{slug}/comment/{commentID}/delete", h.DeleteComment)
			r.Get("/edit", h.EditForm)
			r.Get("/edit/{id}", h.EditForm)
			r.Post("/updatepost", h.UpdatePost)
			r.Post("/deletepost/{id}", h.DeletePost)
		})
	})

	if metaweblog != nil {
		r.Handle(MetaWeblogPath, metaweblog)
	}

	return r
}
