package store

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sort"

	bolt "go.etcd.io/bbolt"
)

const commentsBktName = "comments"

// Bolt is a storage that uses BoltDB as a backend.
type Bolt struct {
	db *bolt.DB
}

// NewBolt creates new Bolt storage.
func NewBolt(dir string) (*Bolt, error) {
	db, err := bolt.Open(path.Join(dir, "comments.db"), 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to make boltdb for %s: %w", dir, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{commentsBktName} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("create top-level bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("make buckets: %w", err)
	}

	return &Bolt{db: db}, nil
}

// Put puts comment to storage, overwriting the one with the same id.
func (b *Bolt) Put(_ context.Context, c Comment) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(commentsBktName))

		bts, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("marshal comment: %w", err)
		}

		if err := bkt.Put([]byte(c.ID), bts); err != nil {
			return fmt.Errorf("put comment to storage: %w", err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("update storage: %w", err)
	}

	return nil
}

// List returns comments of the requested article, oldest first.
func (b *Bolt) List(_ context.Context, req ListRequest) ([]Comment, error) {
	var result []Comment
	err := b.db.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(commentsBktName))
		err := bkt.ForEach(func(k, v []byte) error {
			var c Comment
			if err := json.Unmarshal(v, &c); err != nil {
				return fmt.Errorf("unmarshal comment %s: %w", k, err)
			}
			if req.ArticleID != "" && c.ArticleID != req.ArticleID {
				return nil
			}
			result = append(result, c)
			return nil
		})
		if err != nil {
			return fmt.Errorf("foreach: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("view storage: %w", err)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Timestamp.Before(result[j].Timestamp)
	})

	return result, nil
}

// Get returns comment from storage.
func (b *Bolt) Get(_ context.Context, id string) (c Comment, err error) {
	err = b.db.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(commentsBktName))

		bts := bkt.Get([]byte(id))
		if bts == nil {
			return ErrNotFound
		}

		if err := json.Unmarshal(bts, &c); err != nil {
			return fmt.Errorf("unmarshal comment: %w", err)
		}

		return nil
	})
	if err != nil {
		return Comment{}, fmt.Errorf("view storage: %w", err)
	}

	return c, nil
}

// Remove marks comment as removed, the record itself is kept.
func (b *Bolt) Remove(_ context.Context, id string) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(commentsBktName))

		bts := bkt.Get([]byte(id))
		if bts == nil {
			return ErrNotFound
		}

		var c Comment
		if err := json.Unmarshal(bts, &c); err != nil {
			return fmt.Errorf("unmarshal comment: %w", err)
		}

		c.Removed = true

		upd, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("marshal comment: %w", err)
		}

		if err = bkt.Put([]byte(id), upd); err != nil {
			return fmt.Errorf("put comment to storage: %w", err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("update storage: %w", err)
	}

	return nil
}

// Close closes the storage.
func (b *Bolt) Close() error { return b.db.Close() }
