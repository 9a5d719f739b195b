package models

import (
	"time"
)

type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// User is an account created on first Google sign-in.
type User struct {
	ID         string     `json:"id" db:"id"`
	GoogleID   string     `json:"google_id" db:"google_id"`
	Email      string     `json:"email" db:"email"`
	Name       string     `json:"name" db:"name"`
	Picture    string     `json:"picture" db:"picture"`
	Theme      Theme      `json:"theme" db:"theme"`
	Plan       Plan       `json:"plan" db:"plan"`
	PlanExpiry *time.Time `json:"plan_expiry" db:"plan_expiry"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}

// UserSummary is a user row enriched for the admin listing.
type UserSummary struct {
	User
	ProjectCount int `json:"project_count"`
}

// GoogleProfile carries the identity fields extracted from a verified
// Google ID token.
type GoogleProfile struct {
	GoogleID string
	Email    string
	Name     string
	Picture  string
}
