// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/olegiv/oblog-go/internal/model"
	"github.com/olegiv/oblog-go/internal/util"
)

const (
	postFileExt  = ".xml"
	mediaSubdir  = "files"
	mediaURLBase = "/posts/files/"
)

// ContentStore owns the full post collection: one XML file per post under
// the posts directory, mirrored by an in-memory list that serves all
// queries. Mutations persist to disk before touching memory, so a failed
// write never corrupts the served state. The store never hands out aliases:
// every returned post is a deep copy.
//
// Store order is load order. Files are read in directory enumeration order
// (lexical by ID) and saves append; no other ordering is applied.
type ContentStore struct {
	mu    sync.RWMutex
	dir   string
	posts []*model.Post

	now func() time.Time // test seam
}

// NewContentStore creates a store rooted at dir. Call Load before use.
func NewContentStore(dir string) *ContentStore {
	return &ContentStore{dir: dir, now: time.Now}
}

// Load reads every post file into memory. It is called once at startup and
// is fail-fast: a single malformed file aborts the load, because serving a
// silently truncated view would be worse than not starting.
func (s *ContentStore) Load() error {
	if err := os.MkdirAll(filepath.Join(s.dir, mediaSubdir), 0o755); err != nil {
		return fmt.Errorf("creating posts directory: %w", err)
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("reading posts directory: %w", err)
	}

	now := s.now()
	var posts []*model.Post
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), postFileExt) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			return fmt.Errorf("reading post file %s: %w", entry.Name(), err)
		}
		id := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		post, err := unmarshalPost(id, data, now)
		if err != nil {
			return err
		}
		posts = append(posts, post)
	}

	s.mu.Lock()
	s.posts = posts
	s.mu.Unlock()
	return nil
}

// GetByID returns the post with the given id if it is visible to the
// caller, nil otherwise. Callers cannot distinguish a missing post from a
// hidden one.
func (s *ContentStore) GetByID(id string, privileged bool) *model.Post {
	now := s.now()
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.posts {
		if strings.EqualFold(p.ID, id) {
			if !p.IsVisible(now, privileged) {
				return nil
			}
			return p.Clone()
		}
	}
	return nil
}

// GetBySlug returns the first visible post with the given slug, compared
// case-insensitively. Slug uniqueness is not enforced at save time; when
// several posts share a slug the first in store order wins.
func (s *ContentStore) GetBySlug(slug string, privileged bool) *model.Post {
	now := s.now()
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.posts {
		if strings.EqualFold(p.Slug, slug) {
			if !p.IsVisible(now, privileged) {
				return nil
			}
			return p.Clone()
		}
	}
	return nil
}

// List returns visible posts in store order, skipping the first skip posts
// and yielding at most count. A count <= 0 means all remaining posts.
func (s *ContentStore) List(count, skip int, privileged bool) []*model.Post {
	now := s.now()
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*model.Post
	for _, p := range s.posts {
		if !p.IsVisible(now, privileged) {
			continue
		}
		if skip > 0 {
			skip--
			continue
		}
		out = append(out, p.Clone())
		if count > 0 && len(out) == count {
			break
		}
	}
	return out
}

// VisibleCount returns the number of posts visible to the caller.
func (s *ContentStore) VisibleCount(privileged bool) int {
	now := s.now()
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, p := range s.posts {
		if p.IsVisible(now, privileged) {
			n++
		}
	}
	return n
}

// ListByCategory returns visible posts carrying the category,
// matched case-insensitively, in store order.
func (s *ContentStore) ListByCategory(category string, privileged bool) []*model.Post {
	return s.filter(privileged, func(p *model.Post) bool { return p.HasCategory(category) })
}

// ListByTag returns visible posts carrying the tag, matched
// case-insensitively, in store order.
func (s *ContentStore) ListByTag(tag string, privileged bool) []*model.Post {
	return s.filter(privileged, func(p *model.Post) bool { return p.HasTag(tag) })
}

func (s *ContentStore) filter(privileged bool, match func(*model.Post) bool) []*model.Post {
	now := s.now()
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*model.Post
	for _, p := range s.posts {
		if p.IsVisible(now, privileged) && match(p) {
			out = append(out, p.Clone())
		}
	}
	return out
}

// Categories returns the distinct lowercase category names across posts.
// Like the classic file blog format this consults only the published flag,
// not the publish date: a scheduled post's categories are already listed.
func (s *ContentStore) Categories(privileged bool) []string {
	return s.distinct(privileged, func(p *model.Post) []string { return p.Categories })
}

// Tags returns the distinct lowercase tag names across posts, with the same
// published-flag-only visibility rule as Categories.
func (s *ContentStore) Tags(privileged bool) []string {
	return s.distinct(privileged, func(p *model.Post) []string { return p.Tags })
}

func (s *ContentStore) distinct(privileged bool, values func(*model.Post) []string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	var out []string
	for _, p := range s.posts {
		if !p.IsPublished && !privileged {
			continue
		}
		for _, v := range values(p) {
			v = strings.ToLower(v)
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	return out
}

// Save persists the post and updates the in-memory collection. A post with
// no ID gets a fresh one; an empty slug is derived from the title. Save
// always stamps LastModified. The file is written before memory is touched:
// if the write fails the store still serves the previous state.
func (s *ContentStore) Save(post *model.Post) error {
	if post == nil {
		return fmt.Errorf("%w: nil post", ErrValidation)
	}
	if strings.TrimSpace(post.Title) == "" {
		return fmt.Errorf("%w: post title is required", ErrValidation)
	}

	now := s.now().UTC()
	if post.ID == "" {
		post.ID = util.NewID()
	}
	if post.Slug == "" {
		post.Slug = util.Slugify(post.Title)
	}
	if post.PublishDate.IsZero() {
		post.PublishDate = now
	}
	post.LastModified = now

	data, err := marshalPost(post)
	if err != nil {
		return err
	}

	// The lock covers the file write too: concurrent saves of the same post
	// must not interleave, or disk and memory could disagree on which write
	// won.
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writeFile(s.postPath(post.ID), data); err != nil {
		return fmt.Errorf("writing post file: %w", err)
	}

	for i, existing := range s.posts {
		if existing.ID == post.ID {
			s.posts[i] = post.Clone()
			return nil
		}
	}
	s.posts = append(s.posts, post.Clone())
	return nil
}

// Delete removes the post's file and drops it from memory. A missing file
// or an unknown post is not an error; only a failing unlink is.
func (s *ContentStore) Delete(post *model.Post) error {
	if post == nil {
		return fmt.Errorf("%w: nil post", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.postPath(post.ID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting post file: %w", err)
	}

	for i, existing := range s.posts {
		if existing.ID == post.ID {
			s.posts = append(s.posts[:i], s.posts[i+1:]...)
			break
		}
	}
	return nil
}

// SaveMediaFile writes binary content under the media directory as
// {sanitizedName}_{suffix}{ext} and returns the URL path new HTML can
// reference. An empty suffix defaults to the current UTC time in
// nanoseconds, which keeps repeated uploads of the same file distinct. The
// file is created exclusively: a genuine name collision surfaces as an I/O
// error rather than overwriting existing media.
func (s *ContentStore) SaveMediaFile(data []byte, fileName, suffix string) (string, error) {
	if suffix == "" {
		suffix = strconv.FormatInt(s.now().UTC().UnixNano(), 10)
	}

	clean, err := util.SanitizeFilename(fileName)
	if err != nil {
		return "", fmt.Errorf("%w: media file name: %v", ErrValidation, err)
	}
	ext := filepath.Ext(clean)
	name := strings.TrimSuffix(clean, ext)

	target := fmt.Sprintf("%s_%s%s", name, suffix, ext)
	path, err := util.SafeJoinPath(filepath.Join(s.dir, mediaSubdir), target)
	if err != nil {
		return "", fmt.Errorf("%w: media file name: %v", ErrValidation, err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("creating media file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("writing media file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing media file: %w", err)
	}

	return mediaURLBase + target, nil
}

// MediaDir returns the directory media files are written to.
func (s *ContentStore) MediaDir() string {
	return filepath.Join(s.dir, mediaSubdir)
}

func (s *ContentStore) postPath(id string) string {
	return filepath.Join(s.dir, id+postFileExt)
}

// writeFile writes data to a temp file in the target directory and renames
// it into place, so a crash mid-write leaves either the old file or the new
// one, never a torn post.
func (s *ContentStore) writeFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".post-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}
