// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/olegiv/oblog-go/internal/auth"
	"github.com/olegiv/oblog-go/internal/model"
)

const userFileName = "users.json"

// Bootstrap administrator account, created when no user file exists yet.
// The password is a first-login convenience; deployments are expected to
// change it immediately.
const (
	BootstrapUserName = "admin"
	bootstrapPassword = "admin"
	bootstrapEmail    = "admin@admin.com"
)

// UserStore owns the account collection: a single JSON file on disk and an
// in-memory list serving all lookups. Credential checks deliberately give
// one bit back: unknown user and wrong password are indistinguishable.
type UserStore struct {
	mu    sync.RWMutex
	dir   string
	salt  []byte
	users []model.User

	now func() time.Time // test seam
}

// NewUserStore creates a store rooted at dir. The salt feeds every password
// hash; changing it invalidates all stored credentials. Call Load before use.
func NewUserStore(dir string, salt []byte) *UserStore {
	return &UserStore{dir: dir, salt: salt, now: time.Now}
}

// Load reads the user file into memory. A missing file is bootstrapped with
// the single administrator account first, so exactly one privileged account
// always exists after a successful Load.
func (s *UserStore) Load() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating users directory: %w", err)
	}

	path := filepath.Join(s.dir, userFileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := s.bootstrap(path); err != nil {
			return err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading user file: %w", err)
	}

	var users []model.User
	if err := json.Unmarshal(data, &users); err != nil {
		return fmt.Errorf("decoding user file: %w", err)
	}
	sort.Slice(users, func(i, j int) bool {
		return strings.ToLower(users[i].UserName) > strings.ToLower(users[j].UserName)
	})

	s.mu.Lock()
	s.users = users
	s.mu.Unlock()
	return nil
}

// Validate checks a username/password pair. The username is matched
// case-insensitively; the password is hashed with the store salt and
// compared in constant time against the stored hash. False means unknown
// user or wrong password, with no way to tell which.
func (s *UserStore) Validate(username, password string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.users {
		if strings.EqualFold(s.users[i].UserName, username) {
			return auth.CheckPassword(password, s.users[i].PasswordHash, s.salt)
		}
	}
	return false
}

// TouchLastLogin stamps the user's last login time and persists the
// collection. Unknown users are a no-op.
func (s *UserStore) TouchLastLogin(username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.users {
		if strings.EqualFold(s.users[i].UserName, username) {
			s.users[i].LastLoginTime = s.now().UTC()
			return s.persistLocked()
		}
	}
	return nil
}

func (s *UserStore) bootstrap(path string) error {
	admin := model.User{
		UserName:      BootstrapUserName,
		PasswordHash:  auth.HashPassword(bootstrapPassword, s.salt),
		Email:         bootstrapEmail,
		LastLoginTime: s.now().UTC(),
	}

	data, err := json.MarshalIndent([]model.User{admin}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding bootstrap user: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("writing bootstrap user file: %w", err)
	}
	return nil
}

func (s *UserStore) persistLocked() error {
	data, err := json.MarshalIndent(s.users, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding user file: %w", err)
	}
	path := filepath.Join(s.dir, userFileName)
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("writing user file: %w", err)
	}
	return nil
}
