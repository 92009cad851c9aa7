// Copyright © 2024 The vjailbreak authors

// Package store persists inventory objects and strategies. The engine only
// ever saves and loads; superseded records are overwritten or archived.
package store

import (
	"encoding/json"
	"sort"
	"sync"

	"github.com/pkg/errors"
)

const (
	KindHosts           = "hosts"
	KindInstances       = "instances"
	KindInstanceGroups  = "instance-groups"
	KindHostGroups      = "host-groups"
	KindHostAggregates  = "host-aggregates"
	KindStrategy        = "strategy"
	KindStrategyArchive = "strategy-archive"
)

// LoadFunc receives one stored record. data is only valid during the call.
type LoadFunc func(key string, data []byte) error

type Store interface {
	Save(kind, key string, obj interface{}) error
	LoadAll(kind string, fn LoadFunc) error
	Close() error
}

func encode(kind, key string, obj interface{}) ([]byte, error) {
	data, err := json.Marshal(obj)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to encode %s/%s", kind, key)
	}
	return data, nil
}

// IsEmpty reports whether a stored record was saved as a cleared slot.
func IsEmpty(data []byte) bool {
	return len(data) == 0 || string(data) == "null"
}

// MemoryStore keeps records in memory, used by the plan command and tests.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]map[string][]byte)}
}

func (s *MemoryStore) Save(kind, key string, obj interface{}) error {
	data, err := encode(kind, key, obj)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data[kind] == nil {
		s.data[kind] = make(map[string][]byte)
	}
	s.data[kind][key] = data
	return nil
}

func (s *MemoryStore) LoadAll(kind string, fn LoadFunc) error {
	s.mu.Lock()
	records := make(map[string][]byte, len(s.data[kind]))
	for k, v := range s.data[kind] {
		records[k] = v
	}
	s.mu.Unlock()
	keys := make([]string, 0, len(records))
	for k := range records {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := fn(k, records[k]); err != nil {
			return err
		}
	}
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
