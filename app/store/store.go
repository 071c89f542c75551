// Package store contains entities and services to process and contain them.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is an error that is returned when the requested entity is not found.
var ErrNotFound = errors.New("not found")

// Interface defines methods for store
type Interface interface {
	Put(ctx context.Context, c Comment) error
	Get(ctx context.Context, id string) (Comment, error)
	List(ctx context.Context, req ListRequest) ([]Comment, error)
	Remove(ctx context.Context, id string) error
}

// ListRequest defines parameters for listing comments from store.
type ListRequest struct {
	ArticleID string
}

// Comment is a user comment left under an article.
type Comment struct {
	ID        string    `json:"id"`
	ArticleID string    `json:"article_id"`
	UserEmail string    `json:"user_email"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	Redacted  bool      `json:"redacted"`
	Removed   bool      `json:"removed"`
}

// Redact returns the comment as it should be shown to readers.
func (c Comment) Redact() Comment {
	if c.Removed {
		c.Text = ""
		c.Redacted = true
	}
	return c
}
