package store

import (
	"encoding/json"
	"time"

	bolt "go.etcd.io/bbolt"
)

// stateBucket holds the persisted store contents, one JSON value per key.
var stateBucket = []byte("iq.state")

// BoltBackend persists store contents in a bbolt database file.
type BoltBackend struct {
	db *bolt.DB
}

// OpenBolt opens (or creates) a bbolt-backed state file.
func OpenBolt(path string) (*BoltBackend, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(stateBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &BoltBackend{db: db}, nil
}

// Load implements Backend.
func (b *BoltBackend) Load() (map[string]any, error) {
	out := make(map[string]any)
	err := b.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(stateBucket).ForEach(func(k, v []byte) error {
			var val any
			if err := json.Unmarshal(v, &val); err != nil {
				// Skip unreadable entries rather than failing the whole load.
				return nil
			}
			out[string(k)] = val
			return nil
		})
	})
	return out, err
}

// Save implements Backend. Values that do not marshal to JSON are skipped.
func (b *BoltBackend) Save(values map[string]any) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(stateBucket); err != nil {
			return err
		}
		bkt, err := tx.CreateBucket(stateBucket)
		if err != nil {
			return err
		}
		for k, v := range values {
			data, err := json.Marshal(v)
			if err != nil {
				continue
			}
			if err := bkt.Put([]byte(k), data); err != nil {
				return err
			}
		}
		return nil
	})
}

// Close closes the underlying database.
func (b *BoltBackend) Close() error {
	return b.db.Close()
}
