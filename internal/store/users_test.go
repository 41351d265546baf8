// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/oblog-go/internal/auth"
	"github.com/olegiv/oblog-go/internal/model"
)

var testSalt = []byte("test salt")

func TestLoadBootstrapsAdmin(t *testing.T) {
	dir := t.TempDir()
	s := NewUserStore(dir, testSalt)
	require.NoError(t, s.Load())

	// the file was created on disk
	_, err := os.Stat(filepath.Join(dir, "users.json"))
	require.NoError(t, err)

	assert.True(t, s.Validate("admin", "admin"), "bootstrap credentials must validate after first load")
}

func TestValidate(t *testing.T) {
	s := NewUserStore(t.TempDir(), testSalt)
	require.NoError(t, s.Load())

	tests := []struct {
		name     string
		username string
		password string
		expected bool
	}{
		{name: "correct credentials", username: "admin", password: "admin", expected: true},
		{name: "username is case-insensitive", username: "ADMIN", password: "admin", expected: true},
		{name: "wrong password", username: "admin", password: "wrong", expected: false},
		{name: "unknown user", username: "nobody", password: "admin", expected: false},
		{name: "empty password", username: "admin", password: "", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Validate(tt.username, tt.password); got != tt.expected {
				t.Errorf("Validate(%q, %q) = %v, want %v", tt.username, tt.password, got, tt.expected)
			}
		})
	}
}

func TestLoadExistingUserFile(t *testing.T) {
	dir := t.TempDir()

	users := []model.User{
		{
			UserName:      "writer",
			PasswordHash:  auth.HashPassword("s3cret", testSalt),
			Email:         "writer@example.com",
			LastLoginTime: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	}
	data, err := json.MarshalIndent(users, "", "  ")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "users.json"), data, 0o600))

	s := NewUserStore(dir, testSalt)
	require.NoError(t, s.Load())

	assert.True(t, s.Validate("Writer", "s3cret"))
	assert.False(t, s.Validate("admin", "admin"), "no bootstrap account when a user file already exists")
}

func TestValidateDependsOnSalt(t *testing.T) {
	dir := t.TempDir()
	s := NewUserStore(dir, testSalt)
	require.NoError(t, s.Load())

	other := NewUserStore(dir, []byte("different salt"))
	require.NoError(t, other.Load())
	assert.False(t, other.Validate("admin", "admin"), "hashes must not validate under a different salt")
}

func TestTouchLastLogin(t *testing.T) {
	dir := t.TempDir()
	s := NewUserStore(dir, testSalt)
	require.NoError(t, s.Load())

	require.NoError(t, s.TouchLastLogin("admin"))

	// the stamp survives a reload
	reloaded := NewUserStore(dir, testSalt)
	require.NoError(t, reloaded.Load())
	reloaded.mu.RLock()
	defer reloaded.mu.RUnlock()
	require.Len(t, reloaded.users, 1)
	assert.WithinDuration(t, time.Now(), reloaded.users[0].LastLoginTime, time.Minute)
}
