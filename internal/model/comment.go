// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"crypto/md5" // #nosec G501 -- gravatar addressing, not cryptography
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Comment is a reader comment attached to a post. Comments are owned by
// their post and are never persisted or queried on their own. IsAdmin is
// fixed from the submitter's privilege at creation time and is not
// re-evaluated later.
type Comment struct {
	ID          string
	Author      string
	Email       string
	Content     string
	IsAdmin     bool
	PublishDate time.Time
}

// GravatarURL returns the commenter's gravatar image URL, derived from the
// MD5 of the trimmed, lowercased email address.
func (c *Comment) GravatarURL() string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(c.Email)))) // #nosec G401
	return fmt.Sprintf("https://www.gravatar.com/avatar/%s?s=60&d=blank", hex.EncodeToString(sum[:]))
}
