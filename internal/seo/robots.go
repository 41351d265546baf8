// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package seo

import "strings"

// Robots generates the robots.txt content: editor and account routes are
// disallowed and the sitemap location is advertised.
func Robots(siteURL string) string {
	var sb strings.Builder

	sb.WriteString("User-agent: *\n")
	for _, path := range []string{"/blog/edit", "/login", "/logout"} {
		sb.WriteString("Disallow: " + path + "\n")
	}
	sb.WriteString("\nSitemap: " + siteURL + "/sitemap.xml\n")

	return sb.String()
}
