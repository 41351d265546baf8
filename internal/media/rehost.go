// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package media extracts inline base64-encoded images from post bodies and
// rehosts them as files, rewriting the body to reference the saved URLs.
package media

import (
	"encoding/base64"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Saver persists decoded image bytes under the given file name and returns
// the URL the rewritten body should reference. The content store's
// SaveMediaFile satisfies this.
type Saver func(data []byte, fileName string) (string, error)

// Asset describes one image extracted from a body.
type Asset struct {
	FileName string
	URL      string
	Size     int
}

var (
	// imgTagRegex matches a complete img element. WYSIWYG editors emit
	// self-contained, attribute-quoted tags; this is not a general HTML
	// parser and does not need to be.
	imgTagRegex = regexp.MustCompile(`(?i)<img[^>]+/?>`)

	// attrRegex matches one quoted attribute inside a tag.
	attrRegex = regexp.MustCompile(`(?i)([a-z][a-z0-9-]*)\s*=\s*(?:"([^"]*)"|'([^']*)')`)

	// dataURIRegex matches a base64 image data URI in a src value.
	dataURIRegex = regexp.MustCompile(`(?i)^data:[^/]+/[a-z0-9.+-]+;base64,(.+)$`)
)

// filenameAttr is the editor's hint carrying the original file name. It is
// stripped from the rewritten element.
const filenameAttr = "data-filename"

// allowedExtensions is the image allow-list, matched case-insensitively
// against the file name hint.
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".png":  true,
	".webp": true,
}

// RehostInlineImages scans body for img elements whose src is a base64 data
// URI accompanied by an allow-listed file name hint, persists each through
// save, and splices the rewritten elements back in place. Elements that are
// not recognized as image data, use a non-base64 source, or carry a
// disallowed extension are left untouched.
//
// The pass is idempotent: a rehosted body contains no base64 sources, so a
// second run changes nothing. A failing save aborts and returns the body
// unmodified.
func RehostInlineImages(body string, save Saver) (string, []Asset, error) {
	matches := imgTagRegex.FindAllStringIndex(body, -1)
	if len(matches) == 0 {
		return body, nil, nil
	}

	var (
		out    strings.Builder
		assets []Asset
		last   int
	)
	for _, loc := range matches {
		tag := body[loc[0]:loc[1]]

		newTag, asset, err := rehostTag(tag, save)
		if err != nil {
			return body, nil, err
		}

		out.WriteString(body[last:loc[0]])
		out.WriteString(newTag)
		last = loc[1]

		if asset != nil {
			assets = append(assets, *asset)
		}
	}
	out.WriteString(body[last:])

	return out.String(), assets, nil
}

// rehostTag rewrites a single img tag, or returns it unchanged when it does
// not qualify.
func rehostTag(tag string, save Saver) (string, *Asset, error) {
	attrs := attrRegex.FindAllStringSubmatchIndex(tag, -1)

	var srcLoc, filenameLoc []int
	var srcValue, fileName string
	for _, a := range attrs {
		name := strings.ToLower(tag[a[2]:a[3]])
		value := attrValue(tag, a)
		switch name {
		case "src":
			srcLoc = a
			srcValue = value
		case filenameAttr:
			filenameLoc = a
			fileName = value
		}
	}
	if srcLoc == nil || filenameLoc == nil {
		return tag, nil, nil
	}

	if !allowedExtensions[strings.ToLower(filepath.Ext(fileName))] {
		return tag, nil, nil
	}

	uri := dataURIRegex.FindStringSubmatch(srcValue)
	if uri == nil {
		return tag, nil, nil
	}

	payload := strings.Map(dropSpace, uri[1])
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// Not decodable image data; leave the element alone.
		return tag, nil, nil
	}

	url, err := save(data, fileName)
	if err != nil {
		return "", nil, fmt.Errorf("rehosting %s: %w", fileName, err)
	}

	// Swap the src value and drop the filename hint. Attribute spans do not
	// overlap, so rewrite from the rightmost span backwards.
	newTag := tag
	first, second := srcLoc, filenameLoc
	if first[0] < second[0] {
		first, second = second, first
	}
	for _, a := range [][]int{first, second} {
		if equalSpan(a, filenameLoc) {
			newTag = strings.TrimRight(newTag[:a[0]], " ") + " " + strings.TrimLeft(newTag[a[1]:], " ")
		} else {
			newTag = newTag[:a[0]] + `src="` + url + `"` + newTag[a[1]:]
		}
	}

	return newTag, &Asset{FileName: fileName, URL: url, Size: len(data)}, nil
}

func attrValue(tag string, m []int) string {
	if m[4] >= 0 {
		return tag[m[4]:m[5]]
	}
	return tag[m[6]:m[7]]
}

func dropSpace(r rune) rune {
	switch r {
	case ' ', '\t', '\n', '\r':
		return -1
	}
	return r
}

func equalSpan(a, b []int) bool {
	return a[0] == b[0] && a[1] == b[1]
}
