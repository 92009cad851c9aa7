// Copyright © 2024 The vjailbreak authors

package tables

import (
	"testing"

	"github.com/openstack-archive/stx-nfv-sub001/pkg/objects"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHost(name string, personality ...objects.Personality) *objects.Host {
	return &objects.Host{
		UUID:        name + "-uuid",
		Name:        name,
		Personality: personality,
		AdminState:  objects.HostAdminUnlocked,
		OperState:   objects.HostOperEnabled,
		AvailStatus: objects.HostAvailAvailable,
	}
}

func newInstance(uuid, host string) *objects.Instance {
	return &objects.Instance{
		UUID:       uuid,
		Name:       "vm-" + uuid,
		HostName:   host,
		AdminState: objects.InstanceAdminUnlocked,
		OperState:  objects.InstanceOperEnabled,
	}
}

func TestHostsNaturalOrder(t *testing.T) {
	inv, err := New(nil)
	require.NoError(t, err)
	for _, name := range []string{"compute-10", "compute-2", "compute-1"} {
		require.NoError(t, inv.PutHost(newHost(name, objects.PersonalityWorker)))
	}
	require.NoError(t, inv.PutHost(newHost("controller-0", objects.PersonalityController)))

	var names []string
	for _, h := range inv.HostsWithPersonality(objects.PersonalityWorker) {
		names = append(names, h.Name)
	}
	assert.Equal(t, []string{"compute-1", "compute-2", "compute-10"}, names)
	assert.Equal(t, "compute-2", inv.HostByUUID("compute-2-uuid").Name)
	assert.Nil(t, inv.Host("compute-99"))
}

func TestInstanceHostIndexFollowsUpdates(t *testing.T) {
	inv, err := New(nil)
	require.NoError(t, err)
	require.NoError(t, inv.PutInstance(newInstance("a", "compute-0")))
	require.NoError(t, inv.PutInstance(newInstance("b", "compute-0")))
	assert.Len(t, inv.InstancesOnHost("compute-0"), 2)

	before := inv.Instance("a")
	_, err = inv.UpdateInstance("a", func(i *objects.Instance) { i.HostName = "compute-1" })
	require.NoError(t, err)

	assert.Equal(t, "compute-0", before.HostName)
	assert.Len(t, inv.InstancesOnHost("compute-0"), 1)
	assert.Len(t, inv.InstancesOnHost("compute-1"), 1)
	assert.True(t, inv.ExistOnHost("compute-1"))

	_, err = inv.UpdateInstance("b", func(i *objects.Instance) { i.AvailStatus.Add(objects.InstanceAvailDeleted) })
	require.NoError(t, err)
	assert.False(t, inv.ExistOnHost("compute-0"))

	_, err = inv.UpdateInstance("zz", func(i *objects.Instance) {})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGroupIndexes(t *testing.T) {
	inv, err := New(nil)
	require.NoError(t, err)
	require.NoError(t, inv.PutInstanceGroup(&objects.InstanceGroup{
		UUID:     "g1",
		Name:     "web",
		Policies: []objects.InstanceGroupPolicy{objects.PolicyAntiAffinity},
		Members:  []string{"a", "b"},
	}))
	require.NoError(t, inv.PutHostGroup(&objects.HostGroup{
		Name:     "group-0",
		Policies: []objects.HostGroupPolicy{objects.HostGroupStorageReplication},
		Hosts:    []string{"storage-0", "storage-1"},
	}))
	require.NoError(t, inv.PutHostAggregate(&objects.HostAggregate{Name: "agg-0", Hosts: []string{"compute-0"}}))

	require.Len(t, inv.InstanceGroupsOf("b"), 1)
	assert.True(t, inv.InstanceGroupsOf("b")[0].IsAntiAffinity())
	assert.Empty(t, inv.InstanceGroupsOf("c"))
	assert.Len(t, inv.HostGroupsOf("storage-1"), 1)
	assert.Len(t, inv.AggregatesOf("compute-0"), 1)
	assert.Empty(t, inv.AggregatesOf("compute-1"))
}

func TestLoadFromStore(t *testing.T) {
	s := store.NewMemoryStore()
	inv, err := New(s)
	require.NoError(t, err)
	require.NoError(t, inv.PutHost(newHost("compute-0", objects.PersonalityWorker)))
	require.NoError(t, inv.PutInstance(newInstance("a", "compute-0")))
	require.NoError(t, inv.PutInstanceGroup(&objects.InstanceGroup{UUID: "g1", Members: []string{"a"}}))
	require.NoError(t, s.Save(store.KindHosts, "broken", "not-a-host"))

	reloaded, err := New(s)
	require.NoError(t, err)
	err = reloaded.Load()
	assert.Error(t, err)
	assert.NotNil(t, reloaded.Host("compute-0"))
	assert.Len(t, reloaded.InstancesOnHost("compute-0"), 1)
	assert.Len(t, reloaded.InstanceGroupsOf("a"), 1)
}
