// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package auth provides password hashing and verification for the user
// store. Hashes use salted PBKDF2 and are stored as uppercase hex strings,
// matching the on-disk format of existing user files.
package auth

import (
	"crypto/sha1" // #nosec G505 -- PRF mandated by the stored hash format
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// PBKDF2 parameters. These are fixed by the user file format: changing them
// invalidates every stored hash.
const (
	PBKDF2Iterations = 1000
	PBKDF2KeyLen     = 32
)

// HashPassword derives a PBKDF2-HMAC-SHA1 hash of the password with the
// given salt and renders it as an uppercase hexadecimal string.
// An empty password hashes to the empty string and can never validate.
func HashPassword(password string, salt []byte) string {
	if password == "" {
		return ""
	}
	key := pbkdf2.Key([]byte(password), salt, PBKDF2Iterations, PBKDF2KeyLen, sha1.New)
	return strings.ToUpper(hex.EncodeToString(key))
}

// CheckPassword verifies a password against a stored hash using a
// constant-time comparison. It returns false for empty passwords and empty
// stored hashes.
func CheckPassword(password, storedHash string, salt []byte) bool {
	if password == "" || storedHash == "" {
		return false
	}
	computed := HashPassword(password, salt)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(storedHash)) == 1
}
