// Package store contains models and interfaces for application.
package store

import "time"

// Article is a normalized article, ready to be rendered.
type Article struct {
	ID          string    `json:"id,omitempty"`
	Title       string    `json:"title"`
	URL         string    `json:"article_url"`
	Multimedia  []string  `json:"multimedia"`
	Abstract    string    `json:"abstract"`
	PublishedAt time.Time `json:"published_at"`
}
