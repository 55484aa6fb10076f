// Package models defines the shared domain types for Margin.
package models

import "time"

// FileMetadata is a lightweight description of a vault document, as
// returned by storage list operations.
type FileMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FileSummary describes an indexed document and its comment count.
type FileSummary struct {
	Path         string    `json:"path"`
	Checksum     string    `json:"checksum"`
	CommentCount int       `json:"comment_count"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AuthorCount is one row of the per-author comment tally.
type AuthorCount struct {
	Author string `json:"author"`
	Count  int    `json:"count"`
}
