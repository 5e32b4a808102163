package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	bolt "go.etcd.io/bbolt"
	"golang.org/x/exp/slices"
)

const digestsBktName = "digests"

// Bolt is a storage that uses BoltDB as a backend.
type Bolt struct {
	db *bolt.DB
}

// NewBolt creates new Bolt storage.
func NewBolt(dir string) (*Bolt, error) {
	db, err := bolt.Open(filepath.Join(dir, "archive.db"), 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to make boltdb for %s: %w", dir, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(digestsBktName)); err != nil {
			return fmt.Errorf("create top-level bucket %s: %w", digestsBktName, err)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Join(fmt.Errorf("make buckets: %w", err), db.Close())
	}

	return &Bolt{db: db}, nil
}

// Put puts the entry to storage, replacing the one with the same id.
func (b *Bolt) Put(_ context.Context, e Entry) error {
	if e.ID == "" {
		return errors.New("empty entry id")
	}

	err := b.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(digestsBktName))

		bts, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("marshal entry: %w", err)
		}

		if err := bkt.Put([]byte(e.ID), bts); err != nil {
			return fmt.Errorf("put entry to storage: %w", err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("update storage: %w", err)
	}

	return nil
}

// List returns archived entries, newest first.
func (b *Bolt) List(_ context.Context, req ListRequest) ([]Entry, error) {
	var result []Entry
	err := b.db.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(digestsBktName))
		err := bkt.ForEach(func(k, v []byte) error {
			var e Entry
			if err := json.Unmarshal(v, &e); err != nil {
				return fmt.Errorf("unmarshal entry %s: %w", k, err)
			}
			result = append(result, e)
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

	slices.SortStableFunc(result, func(a, b Entry) bool { return a.RenderedAt.After(b.RenderedAt) })

	if req.Limit > 0 && len(result) > req.Limit {
		result = result[:req.Limit]
	}

	return result, nil
}

// Get returns the entry from storage.
func (b *Bolt) Get(_ context.Context, id string) (e Entry, err error) {
	err = b.db.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(digestsBktName))

		bts := bkt.Get([]byte(id))
		if bts == nil {
			return ErrNotFound
		}

		if err := json.Unmarshal(bts, &e); err != nil {
			return fmt.Errorf("unmarshal entry: %w", err)
		}

		return nil
	})
	if err != nil {
		return Entry{}, fmt.Errorf("view storage: %w", err)
	}

	return e, nil
}

// Delete removes the entry from storage.
func (b *Bolt) Delete(_ context.Context, id string) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(digestsBktName))

		if bkt.Get([]byte(id)) == nil {
			return ErrNotFound
		}

		if err := bkt.Delete([]byte(id)); err != nil {
			return fmt.Errorf("remove: %w", err)
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
