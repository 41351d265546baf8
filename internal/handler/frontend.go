// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/oblog-go/internal/model"
	"github.com/olegiv/oblog-go/internal/render"
	"github.com/olegiv/oblog-go/internal/util"
)

// listData is the payload of every post listing page.
type listData struct {
	Heading string
	Posts   []*model.Post
	PrevURL string
	NextURL string
}

// postData is the payload of a single post page.
type postData struct {
	Post         *model.Post
	CommentsOpen bool
}

// Index renders the paginated front page.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	privileged := h.isPrivileged(r)

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}

	perPage := h.cfg.PostsPerPage
	posts := h.content.List(perPage, (page-1)*perPage, privileged)
	total := h.content.VisibleCount(privileged)

	data := listData{Posts: posts}
	if page > 1 {
		data.PrevURL = pageURL("/", page-1)
	}
	if page*perPage < total {
		data.NextURL = pageURL("/", page+1)
	}

	h.render(w, r, "index", render.TemplateData{
		Description: h.cfg.BlogDescription,
		Data:        data,
	})
}

// pageURL builds a listing URL; page 1 gets the bare path.
func pageURL(base string, page int) string {
	if page <= 1 {
		return base
	}
	return fmt.Sprintf("%s?page=%d", base, page)
}

// Post renders a single post by slug.
func (h *Handler) Post(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	post := h.content.GetBySlug(slug, h.isPrivileged(r))
	if post == nil {
		h.notFound(w)
		return
	}

	h.render(w, r, "post", render.TemplateData{
		Title:       post.Title,
		Description: post.Excerpt,
		Data: postData{
			Post:         post,
			CommentsOpen: post.AreCommentsOpen(h.cfg.CommentsCloseAfterDays, time.Now()),
		},
	})
}

// Category renders all visible posts in a category.
func (h *Handler) Category(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "category")
	posts := h.content.ListByCategory(name, h.isPrivileged(r))

	h.render(w, r, "index", render.TemplateData{
		Title: name,
		Data:  listData{Heading: "Category: " + name, Posts: posts},
	})
}

// Tag renders all visible posts carrying a tag.
func (h *Handler) Tag(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "tag")
	posts := h.content.ListByTag(name, h.isPrivileged(r))

	h.render(w, r, "index", render.TemplateData{
		Title: name,
		Data:  listData{Heading: "Tag: " + name, Posts: posts},
	})
}

// AddComment appends a visitor comment to a post. The "website" input is a
// honeypot: it is hidden from humans, so a filled value means a bot and the
// comment is silently dropped.
func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	privileged := h.isPrivileged(r)

	post := h.content.GetBySlug(slug, privileged)
	if post == nil {
		h.notFound(w)
		return
	}

	if !post.AreCommentsOpen(h.cfg.CommentsCloseAfterDays, time.Now()) {
		http.Error(w, "Comments are closed for this post.", http.StatusForbidden)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if r.PostFormValue("website") != "" {
		h.logger.Info("comment honeypot triggered", "slug", slug, "ip", r.RemoteAddr)
		http.Redirect(w, r, post.Link(), http.StatusSeeOther)
		return
	}

	comment := model.Comment{
		ID:          util.NewID(),
		Author:      strings.TrimSpace(r.PostFormValue("author")),
		Email:       strings.TrimSpace(r.PostFormValue("email")),
		Content:     strings.TrimSpace(r.PostFormValue("content")),
		IsAdmin:     privileged,
		PublishDate: time.Now().UTC(),
	}

	if comment.Author == "" || comment.Email == "" || comment.Content == "" {
		h.renderer.SetFlash(r, "Name, email and comment are all required.", "error")
		http.Redirect(w, r, post.Link(), http.StatusSeeOther)
		return
	}

	post.Comments = append(post.Comments, comment)
	if err := h.content.Save(post); err != nil {
		h.logger.Error("saving comment", "post", post.ID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, post.Link()+"#comment-"+comment.ID, http.StatusSeeOther)
}

// DeleteComment removes a comment. Only signed-in users reach this handler.
func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	commentID := chi.URLParam(r, "commentID")

	post := h.content.GetBySlug(slug, true)
	if post == nil {
		h.notFound(w)
		return
	}

	found := false
	for i, c := range post.Comments {
		if strings.EqualFold(c.ID, commentID) {
			post.Comments = append(post.Comments[:i], post.Comments[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		h.notFound(w)
		return
	}

	if err := h.content.Save(post); err != nil {
		h.logger.Error("deleting comment", "post", post.ID, "comment", commentID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, post.Link()+"#comments", http.StatusSeeOther)
}
