// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/oblog-go/internal/model"
	"github.com/olegiv/oblog-go/internal/store"
)

func newSweepFixture(t *testing.T) *store.ContentStore {
	t.Helper()
	content := store.NewContentStore(filepath.Join(t.TempDir(), "posts"))
	require.NoError(t, content.Load())
	return content
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSweepReportsOrphans(t *testing.T) {
	content := newSweepFixture(t)

	usedURL, err := content.SaveMediaFile([]byte("used"), "used.png", "1")
	require.NoError(t, err)
	_, err = content.SaveMediaFile([]byte("orphan"), "orphan.png", "2")
	require.NoError(t, err)

	require.NoError(t, content.Save(&model.Post{
		Title:       "Keeper",
		Content:     `<p><img src="` + usedURL + `"></p>`,
		IsPublished: true,
	}))

	sweeper := NewSweeper(content, false, discardLogger())
	orphans, err := sweeper.Run()
	require.NoError(t, err)
	assert.Equal(t, []string{"orphan_2.png"}, orphans)

	// Report-only mode leaves both files on disk.
	entries, err := os.ReadDir(content.MediaDir())
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestSweepDeletesWhenEnabled(t *testing.T) {
	content := newSweepFixture(t)

	_, err := content.SaveMediaFile([]byte("orphan"), "orphan.png", "7")
	require.NoError(t, err)

	sweeper := NewSweeper(content, true, discardLogger())
	orphans, err := sweeper.Run()
	require.NoError(t, err)
	assert.Equal(t, []string{"orphan_7.png"}, orphans)

	entries, err := os.ReadDir(content.MediaDir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSweepCountsDraftReferences(t *testing.T) {
	content := newSweepFixture(t)

	url, err := content.SaveMediaFile([]byte("draft image"), "draft.png", "3")
	require.NoError(t, err)

	require.NoError(t, content.Save(&model.Post{
		Title:       "Unfinished",
		Content:     `<img src="` + url + `">`,
		IsPublished: false,
	}))

	sweeper := NewSweeper(content, true, discardLogger())
	orphans, err := sweeper.Run()
	require.NoError(t, err)
	assert.Empty(t, orphans)
}

func TestSweepEmptyMediaDir(t *testing.T) {
	content := newSweepFixture(t)

	sweeper := NewSweeper(content, true, discardLogger())
	orphans, err := sweeper.Run()
	require.NoError(t, err)
	assert.Empty(t, orphans)
}
