package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"highlight-saver/internal/domain"

	"go.etcd.io/bbolt"
)

var bucketStorage = []byte("extension_storage")

// BoltKVStore is the default embedded store.
type BoltKVStore struct {
	db *bbolt.DB
}

func NewBoltKVStore(path string) (*BoltKVStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketStorage)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	return &BoltKVStore{db: db}, nil
}

func (s *BoltKVStore) Get(ctx context.Context, keys ...string) (map[string][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make(map[string][]byte, len(keys))
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketStorage)
		for _, key := range keys {
			if data := b.Get([]byte(key)); data != nil {
				// bbolt values are only valid for the life of the transaction.
				out[key] = append([]byte(nil), data...)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read %v: %w", keys, err)
	}
	return out, nil
}

func (s *BoltKVStore) Set(ctx context.Context, values map[string][]byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketStorage)
		for key, value := range values {
			if err := b.Put([]byte(key), value); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write %d keys: %w", len(values), err)
	}
	return nil
}

func (s *BoltKVStore) Close() error {
	return s.db.Close()
}

var _ domain.KeyValueStore = (*BoltKVStore)(nil)
