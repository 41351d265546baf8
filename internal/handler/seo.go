// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/olegiv/oblog-go/internal/seo"
)

// Feed serves the RSS 2.0 feed of published posts. Feeds are always the
// anonymous view: a reader never sees drafts or scheduled posts.
func (h *Handler) Feed(w http.ResponseWriter, r *http.Request) {
	b := seo.NewFeedBuilder(h.cfg.BlogName, h.cfg.BaseURL, h.cfg.BlogDescription)
	for _, post := range h.content.List(10, 0, false) {
		b.AddItem(seo.FeedItem{
			Title:       post.Title,
			Link:        post.Link(),
			Description: post.Excerpt,
			Categories:  post.Categories,
			Published:   post.PublishDate,
		})
	}

	out, err := b.Build()
	if err != nil {
		h.logger.Error("building feed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	w.Write(out)
}

// Sitemap serves sitemap.xml covering the homepage, published posts and
// taxonomy pages.
func (h *Handler) Sitemap(w http.ResponseWriter, r *http.Request) {
	b := seo.NewSitemapBuilder(h.cfg.BaseURL)
	b.AddHomepage()
	for _, post := range h.content.List(0, 0, false) {
		b.AddPost(seo.SitemapPost{Link: post.Link(), LastModified: post.LastModified})
	}
	for _, category := range h.content.Categories(false) {
		b.AddCategory(category)
	}
	for _, tag := range h.content.Tags(false) {
		b.AddTag(tag)
	}

	out, err := b.Build()
	if err != nil {
		h.logger.Error("building sitemap", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Write(out)
}

// Robots serves robots.txt.
func (h *Handler) Robots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(seo.Robots(h.cfg.BaseURL)))
}

// Rsd serves the Really Simple Discovery document; desktop clients fetch
// it to locate the MetaWeblog endpoint.
func (h *Handler) Rsd(w http.ResponseWriter, r *http.Request) {
	out, err := seo.RSD(h.cfg.BlogName, h.cfg.BaseURL, h.cfg.BaseURL+MetaWeblogPath, "1")
	if err != nil {
		h.logger.Error("building rsd document", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Write(out)
}
