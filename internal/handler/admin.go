// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/oblog-go/internal/media"
	"github.com/olegiv/oblog-go/internal/model"
	"github.com/olegiv/oblog-go/internal/render"
	"github.com/olegiv/oblog-go/internal/store"
	"github.com/olegiv/oblog-go/internal/util"
)

// editData is the payload of the post editor page.
type editData struct {
	Post  *model.Post
	IsNew bool
}

// EditForm renders the post editor, blank for a new post or pre-filled
// when an id is present in the route.
func (h *Handler) EditForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.render(w, r, "edit", render.TemplateData{
			Title: "New post",
			Data:  editData{Post: &model.Post{}, IsNew: true},
		})
		return
	}

	post := h.content.GetByID(id, true)
	if post == nil {
		h.notFound(w)
		return
	}

	h.render(w, r, "edit", render.TemplateData{
		Title: "Edit: " + post.Title,
		Data:  editData{Post: post},
	})
}

// UpdatePost creates or updates a post from the editor form. Inline base64
// images pasted into the body are rehosted as media files before the post
// is stored, so the XML on disk never carries embedded binaries.
func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	id := r.PostFormValue("id")
	post := &model.Post{}
	if id != "" {
		existing := h.content.GetByID(id, true)
		if existing == nil {
			h.notFound(w)
			return
		}
		post = existing
	}

	post.Title = strings.TrimSpace(r.PostFormValue("title"))
	// A hand-entered slug gets the same normalization a title-derived one
	// would; permalinks never carry spaces, case or reserved characters.
	post.Slug = ""
	if slug := strings.TrimSpace(r.PostFormValue("slug")); slug != "" {
		post.Slug = util.Slugify(slug)
	}
	post.Excerpt = strings.TrimSpace(r.PostFormValue("excerpt"))
	post.Categories = splitTerms(r.PostFormValue("categories"))
	post.Tags = splitTerms(r.PostFormValue("tags"))
	post.IsPublished = r.PostFormValue("ispublished") == "true"

	body, assets, err := media.RehostInlineImages(r.PostFormValue("content"), h.saveMedia)
	if err != nil {
		h.logger.Error("rehosting inline images", "post", post.ID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	for _, asset := range assets {
		h.logger.Info("rehosted inline image", "file", asset.FileName, "url", asset.URL, "bytes", asset.Size)
	}
	post.Content = render.SanitizePostContent(body)

	if err := h.content.Save(post); err != nil {
		if errors.Is(err, store.ErrValidation) {
			h.renderer.SetFlash(r, "A title is required.", "error")
			http.Redirect(w, r, "/blog/edit", http.StatusSeeOther)
			return
		}
		h.logger.Error("saving post", "post", post.ID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, post.Link(), http.StatusSeeOther)
}

// saveMedia is the rehost callback: the image is normalized (EXIF
// orientation applied, oversized dimensions capped) and then written to
// the media directory.
func (h *Handler) saveMedia(data []byte, fileName string) (string, error) {
	return h.content.SaveMediaFile(h.images.Normalize(data), fileName, "")
}

// DeletePost removes a post and redirects to the front page.
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	post := h.content.GetByID(id, true)
	if post == nil {
		h.notFound(w)
		return
	}

	if err := h.content.Delete(post); err != nil {
		h.logger.Error("deleting post", "post", post.ID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.renderer.SetFlash(r, "Post deleted.", "info")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// splitTerms parses a comma separated taxonomy field into trimmed,
// lowercased, de-duplicated terms.
func splitTerms(s string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, term := range strings.Split(s, ",") {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" || seen[term] {
			continue
		}
		seen[term] = true
		out = append(out, term)
	}
	return out
}
