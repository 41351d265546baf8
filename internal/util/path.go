// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"fmt"
	"path/filepath"
	"strings"
)

// invalidFileChars are characters stripped from media file names before they
// are written to disk. The set covers both Windows and Unix reserved
// characters so a data directory can move between systems.
const invalidFileChars = `<>:"/\|?*`

// SanitizeFilename extracts only the base filename, removing any directory
// components and reserved characters. This prevents path traversal attacks
// via filenames like "../../../etc/passwd". Returns an error if nothing
// usable remains.
func SanitizeFilename(filename string) (string, error) {
	safe := filepath.Base(filename)
	safe = strings.Map(func(r rune) rune {
		if r < 0x20 || strings.ContainsRune(invalidFileChars, r) {
			return -1
		}
		return r
	}, safe)
	if safe == "" || safe == "." || safe == ".." {
		return "", fmt.Errorf("invalid filename: %q", filename)
	}
	return safe, nil
}

// ValidatePathWithinBase ensures that a resolved path is within the expected
// base directory. It cleans both paths and checks that the resolved path
// starts with the base path. Returns an error if path traversal is detected.
func ValidatePathWithinBase(basePath, targetPath string) error {
	absBase, err := filepath.Abs(filepath.Clean(basePath))
	if err != nil {
		return fmt.Errorf("invalid base path: %w", err)
	}

	absTarget, err := filepath.Abs(filepath.Clean(targetPath))
	if err != nil {
		return fmt.Errorf("invalid target path: %w", err)
	}

	// Trailing separator prevents matching /uploads-malicious when base is /uploads
	if absTarget != absBase && !strings.HasPrefix(absTarget, absBase+string(filepath.Separator)) {
		return fmt.Errorf("path traversal detected: path escapes base directory")
	}

	return nil
}

// SafeJoinPath joins path components and validates the result is within
// the base directory. Returns the cleaned path or an error if traversal
// is detected.
func SafeJoinPath(basePath string, components ...string) (string, error) {
	fullPath := filepath.Join(append([]string{basePath}, components...)...)

	if err := ValidatePathWithinBase(basePath, fullPath); err != nil {
		return "", err
	}

	return fullPath, nil
}
