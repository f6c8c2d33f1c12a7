package api

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

const (
	keyBucketName   = "api_keys"
	usageBucketName = "usage"
)

// DB defines the persistence operations the service needs.
type DB interface {
	// SaveKey stores or updates an API key.
	SaveKey(key *APIKey) error

	// GetKeyBySecret finds the key record matching a presented secret.
	GetKeyBySecret(secret string) (*APIKey, error)

	// GetKey retrieves a key record by ID.
	GetKey(id string) (*APIKey, error)

	// ListKeys returns all key records.
	ListKeys() ([]*APIKey, error)

	// DeleteKey removes a key record.
	DeleteKey(id string) error

	// SaveUsage appends one usage entry.
	SaveUsage(entry *UsageEntry) error

	// ListUsage returns all usage entries.
	ListUsage() ([]*UsageEntry, error)

	// Close closes the database.
	Close() error
}

// BoltDB implements DB on bbolt.
type BoltDB struct {
	db *bbolt.DB
}

// NewBoltDB opens (and initializes) the database at path.
func NewBoltDB(path string) (*BoltDB, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(keyBucketName)); err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists([]byte(usageBucketName)); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &BoltDB{db: db}, nil
}

// SaveKey stores or updates an API key.
func (b *BoltDB) SaveKey(key *APIKey) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(keyBucketName))
		data, err := json.Marshal(key)
		if err != nil {
			return fmt.Errorf("marshaling key: %w", err)
		}
		return bucket.Put([]byte(key.ID), data)
	})
}

// GetKey retrieves a key record by ID.
func (b *BoltDB) GetKey(id string) (*APIKey, error) {
	var key *APIKey
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(keyBucketName))
		data := bucket.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("api key not found: %s", id)
		}
		return json.Unmarshal(data, &key)
	})
	if err != nil {
		return nil, err
	}
	return key, nil
}

// GetKeyBySecret scans for the key record matching a presented secret.
// The key count is operator-scale, so a scan beats a second index.
func (b *BoltDB) GetKeyBySecret(secret string) (*APIKey, error) {
	var found *APIKey
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(keyBucketName))
		return bucket.ForEach(func(k, v []byte) error {
			var key APIKey
			if err := json.Unmarshal(v, &key); err != nil {
				return fmt.Errorf("unmarshaling key: %w", err)
			}
			if key.Key == secret {
				found = &key
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, fmt.Errorf("api key not found")
	}
	return found, nil
}

// ListKeys returns all key records.
func (b *BoltDB) ListKeys() ([]*APIKey, error) {
	keys := make([]*APIKey, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(keyBucketName))
		return bucket.ForEach(func(k, v []byte) error {
			var key APIKey
			if err := json.Unmarshal(v, &key); err != nil {
				return fmt.Errorf("unmarshaling key: %w", err)
			}
			keys = append(keys, &key)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

// DeleteKey removes a key record.
func (b *BoltDB) DeleteKey(id string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(keyBucketName))
		return bucket.Delete([]byte(id))
	})
}

// SaveUsage appends one usage entry.
func (b *BoltDB) SaveUsage(entry *UsageEntry) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(usageBucketName))
		data, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("marshaling usage entry: %w", err)
		}
		return bucket.Put([]byte(entry.ID), data)
	})
}

// ListUsage returns all usage entries.
func (b *BoltDB) ListUsage() ([]*UsageEntry, error) {
	entries := make([]*UsageEntry, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(usageBucketName))
		return bucket.ForEach(func(k, v []byte) error {
			var entry UsageEntry
			if err := json.Unmarshal(v, &entry); err != nil {
				return fmt.Errorf("unmarshaling usage entry: %w", err)
			}
			entries = append(entries, &entry)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Close closes the database.
func (b *BoltDB) Close() error {
	return b.db.Close()
}
