// Copyright © 2024 The vjailbreak authors

package store

import (
	"time"

	"github.com/boltdb/bolt"
	"github.com/pkg/errors"
)

// BoltStore keeps one bucket per kind with JSON encoded values.
type BoltStore struct {
	db *bolt.DB
}

func OpenBolt(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database %s", path)
	}
	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Save(kind, key string, obj interface{}) error {
	data, err := encode(kind, key, obj)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(kind))
		if err != nil {
			return errors.Wrapf(err, "failed to create bucket %s", kind)
		}
		return b.Put([]byte(key), data)
	})
}

func (s *BoltStore) LoadAll(kind string, fn LoadFunc) error {
	return s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(kind))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			return fn(string(k), v)
		})
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
