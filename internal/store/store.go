// Package store persists document snapshots. BoltDB keeps deployment to a
// single pure-Go file, which suits a library whose callers own the process.
package store

import (
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

var bucketSnapshots = []byte("snapshots")

// SnapshotStore keeps the latest saved payload per document name.
type SnapshotStore struct {
	db *bbolt.DB
}

// Open creates or opens the snapshot database at path.
func Open(path string) (*SnapshotStore, error) {
	opts := &bbolt.Options{
		Timeout:      1 * time.Second,
		FreelistType: bbolt.FreelistArrayType,
	}
	db, err := bbolt.Open(path, 0600, opts)
	if err != nil {
		return nil, fmt.Errorf("open boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketSnapshots)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}
	return &SnapshotStore{db: db}, nil
}

// Put stores a snapshot payload under a document name.
func (s *SnapshotStore) Put(name string, payload []byte) error {
	if name == "" {
		return fmt.Errorf("snapshot name cannot be empty")
	}
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSnapshots).Put([]byte(name), payload)
	})
	if err != nil {
		return fmt.Errorf("put snapshot %q: %w", name, err)
	}
	return nil
}

// Get returns the stored payload, or nil when the name is unknown.
func (s *SnapshotStore) Get(name string) ([]byte, error) {
	var payload []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		if data := tx.Bucket(bucketSnapshots).Get([]byte(name)); data != nil {
			payload = make([]byte, len(data))
			copy(payload, data)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get snapshot %q: %w", name, err)
	}
	return payload, nil
}

// Delete removes a stored snapshot.
func (s *SnapshotStore) Delete(name string) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSnapshots).Delete([]byte(name))
	})
	if err != nil {
		return fmt.Errorf("delete snapshot %q: %w", name, err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SnapshotStore) Close() error {
	return s.db.Close()
}
