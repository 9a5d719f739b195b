package models

import "time"

// DevOpsProject is a curated catalog entry pointing at a GitHub repo.
type DevOpsProject struct {
	ID          string    `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	GithubURL   string    `json:"github_url" db:"github_url"`
	Tags        []string  `json:"tags" db:"tags"`
	Icon        string    `json:"icon" db:"icon"`
	Difficulty  string    `json:"difficulty" db:"difficulty"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
