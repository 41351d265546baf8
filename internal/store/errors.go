// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package store owns the canonical blog content: every post as one XML file
// on disk mirrored by an in-memory list, and the user collection as a single
// JSON file. All queries are served from memory; every mutation persists to
// disk before the in-memory state is updated, so the files stay the source
// of truth across a crash.
package store

import "errors"

// ErrValidation reports malformed input to a mutation, such as a post with
// no title. File I/O failures are returned wrapped around the underlying
// *os.PathError instead.
var ErrValidation = errors.New("validation failed")

// Absence is not an error: lookups return nil for both "does not exist" and
// "exists but not visible to this caller" so unpublished content cannot be
// probed for.
