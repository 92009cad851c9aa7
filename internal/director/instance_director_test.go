// Copyright © 2024 The vjailbreak authors

package director

import (
	"testing"

	"github.com/openstack-archive/stx-nfv-sub001/pkg/config"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/events"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/nfvi"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/objects"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateInstancesRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(i *objects.Instance)
		reason string
	}{
		{"locked", func(i *objects.Instance) { i.AdminState = objects.InstanceAdminLocked }, "is locked"},
		{"suspended", func(i *objects.Instance) { i.AvailStatus.Add(objects.InstanceAvailSuspended) }, "is suspended"},
		{"paused cold only", func(i *objects.Instance) {
			i.LiveMigrationSupport = false
			i.AvailStatus.Add(objects.InstanceAvailPaused)
		}, "can only be cold migrated"},
		{"migrating", func(i *objects.Instance) { i.TaskState = objects.InstanceTaskMigrating }, "already migrating"},
		{"rebuilding", func(i *objects.Instance) { i.TaskState = objects.InstanceTaskRebuilding }, "is rebuilding"},
		{"resized", func(i *objects.Instance) { i.AvailStatus.Add(objects.InstanceAvailResized) }, "waiting for confirmation"},
		{"large local disk", func(i *objects.Instance) {
			i.LiveMigrationSupport = false
			i.LocalImage = true
			i.DiskGB = 61
		}, "exceeds the 60GB cold migrate limit"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, 2, nil)
			inst := instance("i-0", "compute-0")
			tc.mutate(inst)
			f.put(t, inst)

			op := f.instances.MigrateInstances([]string{"i-0"})
			require.True(t, op.IsFailed())
			assert.Contains(t, op.Reason(), "vm-i-0")
			assert.Contains(t, op.Reason(), tc.reason)
			assert.Empty(t, f.sim.Calls)
		})
	}
}

func TestMigrateWithoutTargetIsRejected(t *testing.T) {
	f := newFixture(t, 2, nil)
	_, err := f.inv.UpdateHost("compute-1", func(h *objects.Host) { h.AdminState = objects.HostAdminLocked })
	require.NoError(t, err)
	f.put(t, instance("i-0", "compute-0"))

	op := f.instances.MigrateInstances([]string{"i-0"})
	assert.True(t, op.IsFailed())
	assert.Equal(t, "no other hypervisor available to migrate instance vm-i-0", op.Reason())
}

func TestMigratePicksLiveOrCold(t *testing.T) {
	f := newFixture(t, 3, nil)
	cold := instance("i-1", "compute-0")
	cold.LiveMigrationSupport = false
	stopped := instance("i-2", "compute-1")
	stopped.OperState = objects.InstanceOperDisabled
	f.put(t, instance("i-0", "compute-0"), cold, stopped)

	op := f.instances.MigrateInstances([]string{"i-0", "i-1", "i-2"})
	f.settle()

	require.True(t, op.IsCompleted(), op.Reason())
	assert.Equal(t, []string{"vm-i-0"}, f.sim.CallsTo("LiveMigrateInstance"))
	assert.ElementsMatch(t, []string{"vm-i-1", "vm-i-2"}, f.sim.CallsTo("ColdMigrateInstance"))
	assert.ElementsMatch(t, []string{"vm-i-1", "vm-i-2"}, f.sim.CallsTo("ColdMigrateConfirmInstance"))
	assert.NotEqual(t, "compute-0", f.inv.Instance("i-0").HostName)
	assert.NotEqual(t, "compute-0", f.inv.Instance("i-1").HostName)
	assert.NotEqual(t, "compute-1", f.inv.Instance("i-2").HostName)
	assert.False(t, f.inv.Instance("i-1").IsResized())
	assert.True(t, f.saw(events.InstancesMoved))
}

func TestMigrateRespectsPerHostLimit(t *testing.T) {
	f := newFixture(t, 3, func(cfg *config.InstanceDirectorConfig) { cfg.MaxConcurrentMigratesPerHost = 2 })
	f.sim.AutoComplete = false
	f.put(t, instance("i-0", "compute-0"), instance("i-1", "compute-0"), instance("i-2", "compute-0"),
		instance("i-3", "compute-1"))

	op := f.instances.MigrateInstances([]string{"i-0", "i-1", "i-2", "i-3"})
	assert.Len(t, f.sim.CallsTo("LiveMigrateInstance"), 3, "two from compute-0 and one from compute-1")
	assert.NotNil(t, f.instances.LiveOperation("compute-0"))
	assert.NotNil(t, f.instances.LiveOperation("compute-1"))

	f.sim.AutoComplete = true
	f.sim.CompleteAll()
	f.settle()

	require.True(t, op.IsCompleted(), op.Reason())
	assert.Len(t, f.sim.CallsTo("LiveMigrateInstance"), 4)
	assert.Nil(t, f.instances.LiveOperation("compute-0"))
}

func TestMigrateFailureFailsParent(t *testing.T) {
	f := newFixture(t, 3, nil)
	f.sim.AutoComplete = false
	f.put(t, instance("i-0", "compute-0"), instance("i-1", "compute-1"))

	op := f.instances.MigrateInstances([]string{"i-0", "i-1"})
	require.True(t, f.sim.Complete("LiveMigrateInstance", "vm-i-0", nfvi.Failed("no room")))
	f.settle()
	assert.True(t, op.IsInprogress(), "vm-i-1 still migrating")
	assert.False(t, f.saw(events.MigrateInstancesFailed))

	f.sim.CompleteAll()
	f.settle()

	require.True(t, op.IsFailed())
	assert.Contains(t, op.Reason(), "no room")
	assert.Equal(t, []string{"i-0"}, op.Names(objects.OperationFailed))
	assert.Equal(t, "compute-2", f.inv.Instance("i-1").HostName)
	require.True(t, f.saw(events.MigrateInstancesFailed))
}

func TestHostOperationSupersedesMigrateInstances(t *testing.T) {
	f := newFixture(t, 3, nil)
	f.sim.AutoComplete = false
	f.put(t, instance("i-0", "compute-0"), instance("i-1", "compute-1"))

	op := f.instances.MigrateInstances([]string{"i-0", "i-1"})
	require.True(t, op.IsInprogress())
	hostOp := f.instances.HostOperation("compute-0", objects.OperationHostLockForce)
	f.settle()

	assert.True(t, op.IsCancelled())
	assert.False(t, op.IsInprogress())
	assert.Equal(t, objects.OperationCancelled, op.Entity("i-0").State)
	assert.Nil(t, f.instances.LiveOperation("compute-1"), "sibling host operation is released")
	assert.Same(t, hostOp, f.instances.LiveOperation("compute-0"))
	assert.True(t, f.saw(events.InstancesSuperseded))
	assert.False(t, f.saw(events.MigrateInstancesFailed))
}

func TestHostOperationRejectsLocked(t *testing.T) {
	f := newFixture(t, 2, nil)
	inst := instance("i-0", "compute-0")
	inst.AdminState = objects.InstanceAdminLocked
	f.put(t, inst)

	assert.Equal(t, "instance vm-i-0 is locked", f.instances.HostLockPrecheck("compute-0"))
	op := f.instances.HostOperation("compute-0", objects.OperationHostLock)
	assert.True(t, op.IsFailed())

	op = f.instances.HostOperation("compute-0", objects.OperationHostLockForce)
	f.settle()
	assert.True(t, op.IsCompleted(), op.Reason())
	assert.Equal(t, []string{"vm-i-0"}, f.sim.CallsTo("StopInstance"))
	assert.True(t, f.inv.Instance("i-0").IsDisabled())
}

func TestHostOperationWithoutInstances(t *testing.T) {
	f := newFixture(t, 2, nil)
	op := f.instances.HostOperation("compute-1", objects.OperationHostLock)
	assert.True(t, op.IsCompleted())
	assert.Nil(t, f.instances.LiveOperation("compute-1"))
	f.settle()
	require.True(t, f.saw(events.InstancesMoved))
}

func TestStopAndStartInstances(t *testing.T) {
	f := newFixture(t, 2, nil)
	stopped := instance("i-2", "compute-1")
	stopped.OperState = objects.InstanceOperDisabled
	f.put(t, instance("i-0", "compute-0"), instance("i-1", "compute-1"), stopped)

	op := f.instances.StopInstances([]string{"i-0", "i-1", "i-2"})
	f.settle()
	require.True(t, op.IsCompleted())
	assert.ElementsMatch(t, []string{"vm-i-0", "vm-i-1"}, f.sim.CallsTo("StopInstance"))

	f.sim.AutoComplete = false
	op = f.instances.StartInstances([]string{"i-2", "i-0", "i-1"}, true)
	assert.Equal(t, []string{"vm-i-2"}, f.sim.CallsTo("StartInstance"))
	for i := 0; i < 3; i++ {
		f.sim.CompleteAll()
		f.settle()
	}
	require.True(t, op.IsCompleted())
	assert.Equal(t, []string{"vm-i-2", "vm-i-0", "vm-i-1"}, f.sim.CallsTo("StartInstance"))
}

func TestUnknownInstanceFailsOperation(t *testing.T) {
	f := newFixture(t, 1, nil)
	op := f.instances.StopInstances([]string{"nope"})
	assert.True(t, op.IsFailed())
	assert.Equal(t, "unknown instance nope", op.Reason())
}

func TestInstanceUpdatedKeepsActionData(t *testing.T) {
	f := newFixture(t, 2, nil)
	f.put(t, instance("i-0", "compute-0"))
	_, err := f.instances.Actions().Do("i-0", objects.ActionPause, objects.ActionParameters{}, objects.ActionInitiatedByTenant, "")
	require.NoError(t, err)
	f.settle()

	update := instance("i-0", "compute-0")
	update.OperState = objects.InstanceOperDisabled
	require.NoError(t, f.instances.InstanceUpdated(update))

	got := f.inv.Instance("i-0")
	require.NotNil(t, got.LastActionData)
	assert.Equal(t, objects.ActionPause, got.LastActionData.Action)
	assert.Equal(t, f.clock.Now(), got.StateEnteredAt)
}
