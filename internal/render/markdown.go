// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package render

import (
	"bytes"
	"html/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

// commentSanitizer strips everything a visitor could use to inject script
// into a post page. UGCPolicy allows the safe subset of HTML suitable for
// user-generated content.
var commentSanitizer = bluemonday.UGCPolicy()

// RenderComment converts a visitor comment from Markdown to sanitized
// HTML. Comments are untrusted input: the sanitizer runs on the rendered
// output, so raw HTML that goldmark passes through is stripped too. If
// Markdown conversion fails, the sanitized source text is shown as-is.
func RenderComment(content string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(content), &buf); err != nil {
		return template.HTML(commentSanitizer.Sanitize(content)) //nolint:gosec // sanitized
	}
	return template.HTML(commentSanitizer.Sanitize(buf.String())) //nolint:gosec // sanitized
}

// postSanitizer is the relaxed policy for post bodies. Editors are
// trusted more than commenters, so it keeps images (including inline data
// URIs not yet rehosted) and styling but still drops script.
var postSanitizer = func() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class", "style").OnElements("p", "span", "div", "img", "pre", "code")
	p.AllowAttrs("data-filename").OnElements("img")
	p.AllowDataURIImages()
	return p
}()

// SanitizePostContent applies the editor policy to a post body.
func SanitizePostContent(content string) string {
	return postSanitizer.Sanitize(content)
}
