// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package seo

import (
	"encoding/xml"
	"time"
)

// FeedItem is a single post entry in the RSS feed.
type FeedItem struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	GUID        string    `xml:"guid"`
	Description string    `xml:"description"`
	Categories  []string  `xml:"category,omitempty"`
	Published   time.Time `xml:"-"`
	PubDate     string    `xml:"pubDate"`
}

type feedChannel struct {
	Title       string     `xml:"title"`
	Link        string     `xml:"link"`
	Description string     `xml:"description"`
	Items       []FeedItem `xml:"item"`
}

type rssDocument struct {
	XMLName xml.Name    `xml:"rss"`
	Version string      `xml:"version,attr"`
	Channel feedChannel `xml:"channel"`
}

// FeedBuilder builds an RSS 2.0 feed from blog content.
type FeedBuilder struct {
	title       string
	siteURL     string
	description string
	items       []FeedItem
}

// NewFeedBuilder creates a feed builder for the blog identity.
func NewFeedBuilder(title, siteURL, description string) *FeedBuilder {
	return &FeedBuilder{title: title, siteURL: siteURL, description: description}
}

// AddItem appends a post to the feed. Link and GUID are made absolute
// against the site URL; PubDate is rendered in RFC 1123 form as RSS
// requires.
func (b *FeedBuilder) AddItem(item FeedItem) {
	item.Link = b.siteURL + item.Link
	if item.GUID == "" {
		item.GUID = item.Link
	}
	item.PubDate = item.Published.UTC().Format(time.RFC1123Z)
	b.items = append(b.items, item)
}

// Build generates the feed XML.
func (b *FeedBuilder) Build() ([]byte, error) {
	doc := rssDocument{
		Version: "2.0",
		Channel: feedChannel{
			Title:       b.title,
			Link:        b.siteURL,
			Description: b.description,
			Items:       b.items,
		},
	}

	output := []byte(xml.Header)
	xmlBytes, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(output, xmlBytes...), nil
}
