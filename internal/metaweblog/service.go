// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package metaweblog

import (
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/olegiv/oblog-go/internal/config"
	"github.com/olegiv/oblog-go/internal/imaging"
	"github.com/olegiv/oblog-go/internal/model"
	"github.com/olegiv/oblog-go/internal/render"
	"github.com/olegiv/oblog-go/internal/store"
	"github.com/olegiv/oblog-go/internal/util"
)

// maxRequestBytes caps the request body. newMediaObject uploads are the
// largest calls; base64 inflates binaries by a third.
const maxRequestBytes = 32 << 20

// blogID is the fixed identifier reported to clients: there is exactly one
// blog per instance.
const blogID = "1"

// Service answers MetaWeblog XML-RPC calls. Every method authenticates
// against the user store with the credentials embedded in the call; a
// valid login grants the same privileged view the web editor has.
type Service struct {
	cfg     *config.Config
	content *store.ContentStore
	users   *store.UserStore
	images  *imaging.Processor
	logger  *slog.Logger
}

// NewService creates the XML-RPC service.
func NewService(cfg *config.Config, content *store.ContentStore, users *store.UserStore,
	logger *slog.Logger) *Service {
	return &Service{
		cfg:     cfg,
		content: content,
		users:   users,
		images:  imaging.NewProcessor(cfg.MaxImageWidth),
		logger:  logger,
	}
}

// ServeHTTP handles a single XML-RPC call.
func (s *Service) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/xml; charset=utf-8")

	method, params, err := parseCall(body)
	if err != nil {
		w.Write(encodeFault(asFault(err)))
		return
	}

	result, err := s.dispatch(method, params)
	if err != nil {
		f := asFault(err)
		s.logger.Warn("xmlrpc fault", "method", method, "code", f.Code, "message", f.Message)
		w.Write(encodeFault(f))
		return
	}

	s.logger.Info("xmlrpc call", "method", method)
	w.Write(encodeResponse(result))
}

func asFault(err error) *fault {
	if f, ok := err.(*fault); ok {
		return f
	}
	return faultf(500, "internal error: %v", err)
}

// dispatch routes a method to its implementation. Credential positions
// differ between the blogger and metaWeblog namespaces.
func (s *Service) dispatch(method string, params []any) (any, error) {
	switch method {
	case "blogger.getUsersBlogs", "metaWeblog.getUsersBlogs":
		return s.getUsersBlogs(params)
	case "metaWeblog.getRecentPosts":
		return s.getRecentPosts(params)
	case "metaWeblog.getPost":
		return s.getPost(params)
	case "metaWeblog.newPost":
		return s.newPost(params)
	case "metaWeblog.editPost":
		return s.editPost(params)
	case "blogger.deletePost":
		return s.deletePost(params)
	case "metaWeblog.getCategories":
		return s.getCategories(params)
	case "wp.getTags":
		return s.getTags(params)
	case "metaWeblog.newMediaObject":
		return s.newMediaObject(params)
	default:
		return nil, faultf(-32601, "unknown method %q", method)
	}
}

// authenticate validates the username/password pair found at the given
// parameter positions.
func (s *Service) authenticate(params []any, userIdx int) error {
	username, err := stringArg(params, userIdx)
	if err != nil {
		return err
	}
	password, err := stringArg(params, userIdx+1)
	if err != nil {
		return err
	}
	if !s.users.Validate(username, password) {
		return faultf(403, "invalid credentials")
	}
	return nil
}

func (s *Service) getUsersBlogs(params []any) (any, error) {
	if err := s.authenticate(params, 1); err != nil {
		return nil, err
	}
	return []structValue{{
		{"blogid", blogID},
		{"url", s.cfg.BaseURL + "/"},
		{"blogName", s.cfg.BlogName},
	}}, nil
}

func (s *Service) getRecentPosts(params []any) (any, error) {
	if err := s.authenticate(params, 1); err != nil {
		return nil, err
	}
	count := intArg(params, 3, 10)

	posts := s.content.List(count, 0, true)
	out := make([]structValue, 0, len(posts))
	for _, p := range posts {
		out = append(out, s.postStruct(p))
	}
	return out, nil
}

func (s *Service) getPost(params []any) (any, error) {
	if err := s.authenticate(params, 1); err != nil {
		return nil, err
	}
	id, err := stringArg(params, 0)
	if err != nil {
		return nil, err
	}

	post := s.content.GetByID(id, true)
	if post == nil {
		return nil, faultf(404, "post %q not found", id)
	}
	return s.postStruct(post), nil
}

func (s *Service) newPost(params []any) (any, error) {
	if err := s.authenticate(params, 1); err != nil {
		return nil, err
	}
	fields, err := structArg(params, 3)
	if err != nil {
		return nil, err
	}

	post := &model.Post{}
	applyPostStruct(post, fields)
	post.IsPublished = boolArg(params, 4)

	if err := s.content.Save(post); err != nil {
		return nil, faultf(500, "saving post: %v", err)
	}
	return post.ID, nil
}

func (s *Service) editPost(params []any) (any, error) {
	if err := s.authenticate(params, 1); err != nil {
		return nil, err
	}
	id, err := stringArg(params, 0)
	if err != nil {
		return nil, err
	}
	fields, err := structArg(params, 3)
	if err != nil {
		return nil, err
	}

	post := s.content.GetByID(id, true)
	if post == nil {
		return nil, faultf(404, "post %q not found", id)
	}
	applyPostStruct(post, fields)
	post.IsPublished = boolArg(params, 4)

	if err := s.content.Save(post); err != nil {
		return nil, faultf(500, "saving post: %v", err)
	}
	return true, nil
}

func (s *Service) deletePost(params []any) (any, error) {
	// blogger namespace: appKey, postid, username, password, publish.
	if err := s.authenticate(params, 2); err != nil {
		return nil, err
	}
	id, err := stringArg(params, 1)
	if err != nil {
		return nil, err
	}

	post := s.content.GetByID(id, true)
	if post == nil {
		return nil, faultf(404, "post %q not found", id)
	}
	if err := s.content.Delete(post); err != nil {
		return nil, faultf(500, "deleting post: %v", err)
	}
	return true, nil
}

func (s *Service) getCategories(params []any) (any, error) {
	if err := s.authenticate(params, 1); err != nil {
		return nil, err
	}

	categories := s.content.Categories(true)
	out := make([]structValue, 0, len(categories))
	for _, c := range categories {
		out = append(out, structValue{
			{"description", c},
			{"title", c},
			{"htmlUrl", s.cfg.BaseURL + "/blog/category/" + c + "/"},
		})
	}
	return out, nil
}

func (s *Service) getTags(params []any) (any, error) {
	if err := s.authenticate(params, 1); err != nil {
		return nil, err
	}

	tags := s.content.Tags(true)
	out := make([]structValue, 0, len(tags))
	for _, t := range tags {
		out = append(out, structValue{{"name", t}})
	}
	return out, nil
}

func (s *Service) newMediaObject(params []any) (any, error) {
	if err := s.authenticate(params, 1); err != nil {
		return nil, err
	}
	obj, err := structArg(params, 3)
	if err != nil {
		return nil, err
	}

	name, _ := obj["name"].(string)
	bits, _ := obj["bits"].([]byte)
	if name == "" || len(bits) == 0 {
		return nil, faultf(-32602, "media object needs name and bits")
	}

	// Clients send paths like "Open-Live-Writer/img.png"; only the base
	// name is kept.
	name = name[strings.LastIndexByte(name, '/')+1:]

	url, err := s.content.SaveMediaFile(s.images.Normalize(bits), name, "")
	if err != nil {
		return nil, faultf(500, "saving media: %v", err)
	}
	return structValue{{"url", s.cfg.BaseURL + url}}, nil
}

// postStruct maps a post onto the wire representation clients expect.
func (s *Service) postStruct(p *model.Post) structValue {
	return structValue{
		{"postid", p.ID},
		{"title", p.Title},
		{"description", p.Content},
		{"link", s.cfg.BaseURL + p.EncodedLink()},
		{"dateCreated", p.PublishDate},
		{"categories", p.Categories},
		{"mt_keywords", strings.Join(p.Tags, ",")},
		{"wp_slug", p.Slug},
		{"mt_excerpt", p.Excerpt},
	}
}

// applyPostStruct copies the recognised wire fields onto a post. The body
// is sanitized with the same editor policy the web form uses.
func applyPostStruct(post *model.Post, fields map[string]any) {
	if title, ok := fields["title"].(string); ok {
		post.Title = title
	}
	if desc, ok := fields["description"].(string); ok {
		post.Content = render.SanitizePostContent(desc)
	}
	if slug, ok := fields["wp_slug"].(string); ok && slug != "" {
		post.Slug = util.Slugify(slug)
	}
	if excerpt, ok := fields["mt_excerpt"].(string); ok {
		post.Excerpt = excerpt
	}
	if keywords, ok := fields["mt_keywords"].(string); ok {
		post.Tags = splitList(keywords)
	}
	if cats, ok := fields["categories"].([]any); ok {
		post.Categories = nil
		for _, c := range cats {
			if name, ok := c.(string); ok && strings.TrimSpace(name) != "" {
				post.Categories = append(post.Categories, strings.ToLower(strings.TrimSpace(name)))
			}
		}
	}
	if created, ok := fields["dateCreated"].(time.Time); ok && !created.IsZero() {
		post.PublishDate = created.UTC()
	}
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		item = strings.ToLower(strings.TrimSpace(item))
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
