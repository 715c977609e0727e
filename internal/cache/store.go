// Package cache decides whether a previously built sysroot is still
// valid for the current build configuration.
//
// Compiled sysroot artifacts themselves are never cached here; the
// store only records, per target triple, the cache key the sysroot was
// last built against. A key mismatch means the sysroot is stale and
// must be rebuilt before use. Records live in a BoltDB file inside the
// sysroot, so they travel with the artifacts they describe.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

const (
	// dbName is the record database file inside the sysroot root
	dbName = "xbuild.db"

	// bucketName is the BoltDB bucket holding per-triple records
	bucketName = "sysroots"
)

// Record is one triple's last successful sysroot synchronization.
type Record struct {
	// Triple identifies the target platform
	Triple string `json:"triple"`

	// Key is the cache key the sysroot was built against
	Key string `json:"key"`

	// RustcCommit is the compiler commit hash used
	RustcCommit string `json:"rustc_commit"`

	// Timestamp when this record was written
	Timestamp time.Time `json:"timestamp"`
}

// Store manages sysroot records using BoltDB
type Store struct {
	db *bbolt.DB
}

// Open opens the record store inside dir, creating the directory and
// database if needed.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create sysroot directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbName)
	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open sysroot record database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create record bucket: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the record database
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}

	return nil
}

// Get retrieves the record for a triple
// Returns nil if no record exists
func (s *Store) Get(triple string) (*Record, error) {
	var record Record

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))

		data := b.Get([]byte(triple))
		if data == nil {
			return nil // No record
		}

		return json.Unmarshal(data, &record)
	})
	if err != nil {
		return nil, err
	}

	if record.Key == "" {
		return nil, nil // No record
	}

	return &record, nil
}

// Put saves a record, replacing any previous one for the same triple
func (s *Store) Put(record *Record) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))

		data, err := json.Marshal(record)
		if err != nil {
			return err
		}

		return b.Put([]byte(record.Triple), data)
	})
	if err != nil {
		return fmt.Errorf("failed to store sysroot record: %w", err)
	}

	return nil
}

// Fresh reports whether the sysroot recorded for triple was built
// against key. A missing record is stale, never an error: the first
// build of a triple must fall through to the rebuild path.
func (s *Store) Fresh(triple, key string) bool {
	record, err := s.Get(triple)
	if err != nil || record == nil {
		return false
	}

	return record.Key == key
}
