// Package models defines data structures used across the application.
// File: models/media.go
package models

import "time"

// ----------------------- media records -----------------------

// BlogPost is one camp news entry. Body is markdown, rendered at view time.
type BlogPost struct {
	ID        string    `json:"id,omitempty"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Excerpt   string    `json:"excerpt"`
	Body      string    `json:"body"`
	Image     string    `json:"image"` // cover image URL from the object store
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// GalleryImage is one photo in the public gallery.
type GalleryImage struct {
	ID        string    `json:"id,omitempty"`
	URL       string    `json:"url"`
	Caption   string    `json:"caption"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}
