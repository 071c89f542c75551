package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBolt_PutListRemove(t *testing.T) {
	b, err := NewBolt(t.TempDir())
	require.NoError(t, err)
	defer func() { require.NoError(t, b.Close()) }()

	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	comments := []Comment{
		{ID: "c2", ArticleID: "a1", UserEmail: "bob@example.com", Text: "second", Timestamp: now.Add(time.Minute)},
		{ID: "c1", ArticleID: "a1", UserEmail: "alice@example.com", Text: "first", Timestamp: now},
		{ID: "c3", ArticleID: "a2", UserEmail: "alice@example.com", Text: "other", Timestamp: now},
	}
	for _, c := range comments {
		require.NoError(t, b.Put(ctx, c))
	}

	list, err := b.List(ctx, ListRequest{ArticleID: "a1"})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "c1", list[0].ID)
	assert.Equal(t, "c2", list[1].ID)

	all, err := b.List(ctx, ListRequest{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	require.NoError(t, b.Remove(ctx, "c1"))

	c, err := b.Get(ctx, "c1")
	require.NoError(t, err)
	assert.True(t, c.Removed)
	assert.Equal(t, "first", c.Text, "removal must keep the record")
}

func TestBolt_NotFound(t *testing.T) {
	b, err := NewBolt(t.TempDir())
	require.NoError(t, err)
	defer func() { require.NoError(t, b.Close()) }()

	_, err = b.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	err = b.Remove(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestComment_Redact(t *testing.T) {
	c := Comment{ID: "1", Text: "rude", Removed: true}
	assert.Equal(t, Comment{ID: "1", Removed: true, Redacted: true}, c.Redact())

	c = Comment{ID: "2", Text: "nice"}
	assert.Equal(t, c, c.Redact())
}
