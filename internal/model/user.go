// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// Users authenticate with email + password (bcrypt hash stored in PasswordHash)
// or, optionally, via GitHub OAuth. GitHubID is 0 for accounts that have never
// linked GitHub; the database column is NULL in that case so the UNIQUE
// constraint on github_id only applies to linked accounts.
//
// WHY `json:"-"` ON PasswordHash?
// The hash must never leave the server. Tagging the field with "-" makes
// encoding/json skip it entirely, so even a careless handler that marshals a
// whole User cannot leak it.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	GitHubID     int64     `json:"-"` // 0 = no linked GitHub account
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
