// Copyright © 2024 The vjailbreak authors

package store

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/client-go/kubernetes/fake"
)

type record struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func loadRecords(t *testing.T, s Store, kind string) map[string]record {
	t.Helper()
	out := map[string]record{}
	err := s.LoadAll(kind, func(key string, data []byte) error {
		if IsEmpty(data) {
			return nil
		}
		var r record
		if err := json.Unmarshal(data, &r); err != nil {
			return err
		}
		out[key] = r
		return nil
	})
	require.NoError(t, err)
	return out
}

func exerciseStore(t *testing.T, s Store) {
	require.NoError(t, s.Save(KindHosts, "compute-0", record{Name: "compute-0", Count: 1}))
	require.NoError(t, s.Save(KindHosts, "compute-1", record{Name: "compute-1", Count: 2}))
	require.NoError(t, s.Save(KindHosts, "compute-0", record{Name: "compute-0", Count: 3}))
	require.NoError(t, s.Save(KindStrategy, "current", nil))

	hosts := loadRecords(t, s, KindHosts)
	assert.Equal(t, map[string]record{
		"compute-0": {Name: "compute-0", Count: 3},
		"compute-1": {Name: "compute-1", Count: 2},
	}, hosts)
	assert.Empty(t, loadRecords(t, s, KindStrategy))
	assert.Empty(t, loadRecords(t, s, KindInstances))
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestBoltStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vim.db")
	s, err := OpenBolt(path)
	require.NoError(t, err)
	exerciseStore(t, s)
	require.NoError(t, s.Close())

	reopened, err := OpenBolt(path)
	require.NoError(t, err)
	defer reopened.Close()
	assert.Len(t, loadRecords(t, reopened, KindHosts), 2)
}

func TestConfigMapStore(t *testing.T) {
	client := fake.NewSimpleClientset()
	exerciseStore(t, NewConfigMapStore(client, "vim", "vim"))
}
