// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import "github.com/google/uuid"

// NewID returns a fresh random 128-bit identifier rendered in the canonical
// UUID text form. IDs double as on-disk file base names, so they must never
// contain path separators.
func NewID() string {
	return uuid.NewString()
}
