// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"regexp"

	"github.com/olegiv/oblog-go/internal/store"
)

// mediaRefRegex extracts media file names referenced from post bodies.
var mediaRefRegex = regexp.MustCompile(`/posts/files/([^"'\s<>)]+)`)

// Sweeper finds media files no post references anymore. Deleting a post or
// editing an image out of a body leaves its rehosted file behind; the sweep
// reclaims that space. Deletion is opt-in: the default run only reports.
type Sweeper struct {
	content       *store.ContentStore
	deleteOrphans bool
	logger        *slog.Logger
}

// NewSweeper creates a media sweeper.
func NewSweeper(content *store.ContentStore, deleteOrphans bool, logger *slog.Logger) *Sweeper {
	return &Sweeper{content: content, deleteOrphans: deleteOrphans, logger: logger}
}

// Run scans the media directory against every post body and returns the
// orphaned file names. When deletion is enabled the orphans are removed;
// a single failed unlink aborts the run so a permissions problem is not
// papered over.
func (s *Sweeper) Run() ([]string, error) {
	referenced := s.referencedFiles()

	entries, err := os.ReadDir(s.content.MediaDir())
	if err != nil {
		return nil, fmt.Errorf("reading media directory: %w", err)
	}

	var orphans []string
	for _, entry := range entries {
		if entry.IsDir() || referenced[entry.Name()] {
			continue
		}
		orphans = append(orphans, entry.Name())
	}

	if len(orphans) == 0 {
		s.logger.Info("media sweep complete", "orphans", 0)
		return nil, nil
	}

	for _, name := range orphans {
		if !s.deleteOrphans {
			s.logger.Info("orphaned media file", "file", name)
			continue
		}
		if err := os.Remove(filepath.Join(s.content.MediaDir(), name)); err != nil {
			return orphans, fmt.Errorf("removing orphaned media file %s: %w", name, err)
		}
		s.logger.Info("removed orphaned media file", "file", name)
	}

	s.logger.Info("media sweep complete", "orphans", len(orphans), "deleted", s.deleteOrphans)
	return orphans, nil
}

// referencedFiles collects every media file name mentioned by any post,
// drafts included. URL-encoded names are counted under their decoded form.
func (s *Sweeper) referencedFiles() map[string]bool {
	referenced := make(map[string]bool)
	for _, post := range s.content.List(0, 0, true) {
		for _, m := range mediaRefRegex.FindAllStringSubmatch(post.Content, -1) {
			name := m[1]
			referenced[name] = true
			if decoded, err := url.PathUnescape(name); err == nil {
				referenced[decoded] = true
			}
		}
	}
	return referenced
}
