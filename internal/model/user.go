// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// User is a blog account. UserName is the case-insensitive unique key.
// PasswordHash holds the salted PBKDF2 digest in uppercase hex.
type User struct {
	UserName      string    `json:"UserName"`
	PasswordHash  string    `json:"Password"`
	Email         string    `json:"Email"`
	LastLoginTime time.Time `json:"LastLoginTime"`
}
