// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the blog domain entities: Post, Comment and User.
package model

import (
	"net/url"
	"strings"
	"time"
)

// Post is a single blog post. A post owns its comments; the content store is
// the only component that persists posts, one XML file per post named by ID.
type Post struct {
	ID           string
	Title        string
	Author       string
	Excerpt      string
	Content      string
	Slug         string
	Categories   []string
	Tags         []string
	Comments     []Comment
	IsPublished  bool
	PublishDate  time.Time
	LastModified time.Time
}

// IsVisible reports whether the post may be observed by a caller.
// A privileged caller sees every post. Anonymous callers see only published
// posts whose publish date is not in the future. Every query path must go
// through this single predicate.
func (p *Post) IsVisible(now time.Time, privileged bool) bool {
	if privileged {
		return true
	}
	return p.IsPublished && !p.PublishDate.After(now)
}

// AreCommentsOpen reports whether the post still accepts new comments given
// the configured closing window in days.
func (p *Post) AreCommentsOpen(closeAfterDays int, now time.Time) bool {
	return !p.PublishDate.AddDate(0, 0, closeAfterDays).Before(now)
}

// Link returns the post's permalink path.
func (p *Post) Link() string {
	return "/blog/" + p.Slug + "/"
}

// EncodedLink returns the permalink with the slug URL-escaped.
func (p *Post) EncodedLink() string {
	return "/blog/" + url.PathEscape(p.Slug) + "/"
}

// HasCategory reports whether the post carries the category,
// compared case-insensitively.
func (p *Post) HasCategory(category string) bool {
	return containsFold(p.Categories, category)
}

// HasTag reports whether the post carries the tag, compared case-insensitively.
func (p *Post) HasTag(tag string) bool {
	return containsFold(p.Tags, tag)
}

// Clone returns a deep copy of the post. Stores hand out clones so callers
// can never alias store-owned state.
func (p *Post) Clone() *Post {
	c := *p
	c.Categories = append([]string(nil), p.Categories...)
	c.Tags = append([]string(nil), p.Tags...)
	c.Comments = append([]Comment(nil), p.Comments...)
	return &c
}

func containsFold(values []string, v string) bool {
	for _, s := range values {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}
