// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/olegiv/oblog-go/internal/model"
)

// timeLayout is the on-disk date format: ISO-8601 UTC with millisecond
// precision, e.g. 2026-08-27T10:15:00.000Z.
const timeLayout = "2006-01-02T15:04:05.000Z"

// parseLayouts are accepted on read. Files written by older tooling may
// carry varying precision.
var parseLayouts = []string{
	timeLayout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// postFile is the XML shape of a post on disk. String fields keep decoding
// lenient so absent optional elements can fall back to defaults.
type postFile struct {
	XMLName      xml.Name      `xml:"post"`
	Title        string        `xml:"title"`
	Slug         string        `xml:"slug"`
	Author       string        `xml:"author,omitempty"`
	PubDate      string        `xml:"pubDate"`
	LastModified string        `xml:"lastModified"`
	Excerpt      string        `xml:"excerpt"`
	Content      string        `xml:"content"`
	IsPublished  string        `xml:"ispublished"`
	Categories   []string      `xml:"categories>category"`
	Tags         []string      `xml:"tags>tag"`
	Comments     []commentFile `xml:"comments>comment"`
}

type commentFile struct {
	ID      string `xml:"id,attr"`
	IsAdmin string `xml:"isAdmin,attr"`
	Author  string `xml:"author"`
	Email   string `xml:"email"`
	Date    string `xml:"date"`
	Content string `xml:"content"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range parseLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func parseBool(s string, fallback bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return fallback
	}
	return v
}

// marshalPost renders a post as its on-disk XML document.
func marshalPost(p *model.Post) ([]byte, error) {
	f := postFile{
		Title:        p.Title,
		Slug:         p.Slug,
		Author:       p.Author,
		PubDate:      formatTime(p.PublishDate),
		LastModified: formatTime(p.LastModified),
		Excerpt:      p.Excerpt,
		Content:      p.Content,
		IsPublished:  strconv.FormatBool(p.IsPublished),
		Categories:   p.Categories,
		Tags:         p.Tags,
	}
	for _, c := range p.Comments {
		f.Comments = append(f.Comments, commentFile{
			ID:      c.ID,
			IsAdmin: strconv.FormatBool(c.IsAdmin),
			Author:  c.Author,
			Email:   c.Email,
			Date:    formatTime(c.PublishDate),
			Content: c.Content,
		})
	}

	out, err := xml.MarshalIndent(f, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding post %s: %w", p.ID, err)
	}
	return append([]byte(xml.Header), append(out, '\n')...), nil
}

// unmarshalPost parses an on-disk XML document into a Post. The id comes
// from the file's base name, not the document. Defaults: a missing
// lastModified becomes now, a missing ispublished flag means published,
// a missing comment date falls back to 2000-01-01.
func unmarshalPost(id string, data []byte, now time.Time) (*model.Post, error) {
	var f postFile
	if err := xml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decoding post %s: %w", id, err)
	}

	pubDate, err := parseTime(f.PubDate)
	if err != nil {
		return nil, fmt.Errorf("post %s: pubDate: %w", id, err)
	}

	lastModified := now.UTC()
	if strings.TrimSpace(f.LastModified) != "" {
		if lastModified, err = parseTime(f.LastModified); err != nil {
			return nil, fmt.Errorf("post %s: lastModified: %w", id, err)
		}
	}

	p := &model.Post{
		ID:           id,
		Title:        f.Title,
		Author:       f.Author,
		Excerpt:      f.Excerpt,
		Content:      f.Content,
		Slug:         strings.ToLower(f.Slug),
		Categories:   f.Categories,
		Tags:         f.Tags,
		IsPublished:  parseBool(f.IsPublished, true),
		PublishDate:  pubDate,
		LastModified: lastModified,
	}

	for _, c := range f.Comments {
		date, err := parseTime(c.Date)
		if err != nil {
			date = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
		}
		p.Comments = append(p.Comments, model.Comment{
			ID:          c.ID,
			Author:      c.Author,
			Email:       c.Email,
			Content:     c.Content,
			IsAdmin:     parseBool(c.IsAdmin, false),
			PublishDate: date,
		})
	}

	return p, nil
}
