// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
)

// DefaultUserSalt is the development-only fallback password salt. It must
// never be used in production; Load rejects it outside development mode.
const DefaultUserSalt = "some custom string"

// knownWeakSecrets contains default/example secrets that must be rejected in production.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DataDir       string `env:"OBLOG_DATA_DIR" envDefault:"./data"`
	SessionSecret string `env:"OBLOG_SESSION_SECRET,required"`
	ServerHost    string `env:"OBLOG_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"OBLOG_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"OBLOG_ENV" envDefault:"development"`
	LogLevel      string `env:"OBLOG_LOG_LEVEL" envDefault:"info"`

	// Blog identity
	BlogName        string `env:"OBLOG_BLOG_NAME" envDefault:"oBlog"`
	BlogDescription string `env:"OBLOG_BLOG_DESCRIPTION" envDefault:"A file-backed blog"`
	BaseURL         string `env:"OBLOG_BASE_URL" envDefault:"http://localhost:8080"`

	// Content behavior
	PostsPerPage           int `env:"OBLOG_POSTS_PER_PAGE" envDefault:"4"`
	CommentsCloseAfterDays int `env:"OBLOG_COMMENTS_CLOSE_AFTER_DAYS" envDefault:"10"`

	// User store
	UserSalt string `env:"OBLOG_USER_SALT" envDefault:"some custom string"`

	// Media pipeline
	MaxImageWidth    int  `env:"OBLOG_MAX_IMAGE_WIDTH" envDefault:"2048"`
	MediaSweepDelete bool `env:"OBLOG_MEDIA_SWEEP_DELETE" envDefault:"false"` // Delete orphaned media instead of only reporting
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// PostsDir returns the directory holding one XML file per post.
func (c Config) PostsDir() string {
	return filepath.Join(c.DataDir, "posts")
}

// MediaDir returns the directory media files are rehosted into.
func (c Config) MediaDir() string {
	return filepath.Join(c.PostsDir(), "files")
}

// UsersDir returns the directory holding the user collection file.
func (c Config) UsersDir() string {
	return filepath.Join(c.DataDir, "users")
}

// MinSessionSecretLength is the minimum required length for the session secret.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	// Validate session secret length
	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("OBLOG_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	// Reject known weak/default secrets
	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, fmt.Errorf("OBLOG_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	// The default salt is a development convenience only. A hardened build
	// must supply its own: stored password hashes depend on it.
	if cfg.UserSalt == DefaultUserSalt {
		if !cfg.IsDevelopment() {
			return nil, fmt.Errorf("OBLOG_USER_SALT must be set outside development mode")
		}
		slog.Warn("OBLOG_USER_SALT is the built-in default; set a unique salt before going to production")
	}

	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("OBLOG_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	return cfg, nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
