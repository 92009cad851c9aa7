// Copyright © 2024 The vjailbreak authors

package vsphere

import (
	"context"
	"testing"
	"time"

	"github.com/openstack-archive/stx-nfv-sub001/pkg/loop"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/nfvi"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/objects"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmware/govmomi/simulator"
	"github.com/vmware/govmomi/vim25"
	"github.com/vmware/govmomi/vim25/mo"
	"github.com/vmware/govmomi/vim25/types"
)

// call runs one backend call and waits for its response.
func call(t *testing.T, fn func(cb nfvi.Callback)) nfvi.Response {
	responses := make(chan nfvi.Response, 1)
	fn(func(resp nfvi.Response) { responses <- resp })
	select {
	case resp := <-responses:
		return resp
	case <-time.After(10 * time.Second):
		t.Fatal("no response from vCenter")
	}
	return nfvi.Response{}
}

func newBackend(ctx context.Context, t *testing.T, c *vim25.Client) *Backend {
	b, err := New(ctx, c, "", time.Minute, loop.PosterFunc(func(fn func()) { fn() }))
	require.NoError(t, err)
	return b
}

func TestLockPutsTheHostInMaintenanceMode(t *testing.T) {
	simulator.Test(func(ctx context.Context, c *vim25.Client) {
		b := newBackend(ctx, t, c)

		resp := call(t, func(cb nfvi.Callback) { b.LockHost("", "DC0_C0_H1", cb) })
		require.True(t, resp.Completed, resp.Reason)

		host, err := b.host(ctx, "DC0_C0_H1")
		require.NoError(t, err)
		var hs mo.HostSystem
		require.NoError(t, host.Properties(ctx, host.Reference(), []string{"runtime"}, &hs))
		assert.True(t, hs.Runtime.InMaintenanceMode)

		resp = call(t, func(cb nfvi.Callback) { b.UnlockHost("", "DC0_C0_H1", cb) })
		require.True(t, resp.Completed, resp.Reason)
		require.NoError(t, host.Properties(ctx, host.Reference(), []string{"runtime"}, &hs))
		assert.False(t, hs.Runtime.InMaintenanceMode)
	})
}

func TestStopAndStartInstance(t *testing.T) {
	simulator.Test(func(ctx context.Context, c *vim25.Client) {
		b := newBackend(ctx, t, c)
		powerState := func() types.VirtualMachinePowerState {
			vm, err := b.vm(ctx, "DC0_H0_VM0")
			require.NoError(t, err)
			state, err := vm.PowerState(ctx)
			require.NoError(t, err)
			return state
		}

		resp := call(t, func(cb nfvi.Callback) { b.StopInstance("", "DC0_H0_VM0", cb) })
		require.True(t, resp.Completed, resp.Reason)
		assert.NotEmpty(t, resp.ActionID)
		assert.Equal(t, types.VirtualMachinePowerStatePoweredOff, powerState())

		resp = call(t, func(cb nfvi.Callback) { b.StartInstance("", "DC0_H0_VM0", cb) })
		require.True(t, resp.Completed, resp.Reason)
		assert.Equal(t, types.VirtualMachinePowerStatePoweredOn, powerState())
	})
}

func TestLiveMigrateMovesTheInstance(t *testing.T) {
	simulator.Test(func(ctx context.Context, c *vim25.Client) {
		b := newBackend(ctx, t, c)

		resp := call(t, func(cb nfvi.Callback) { b.LiveMigrateInstance("", "DC0_C0_RP0_VM0", "DC0_C0_H2", cb) })
		require.True(t, resp.Completed, resp.Reason)

		vm, err := b.vm(ctx, "DC0_C0_RP0_VM0")
		require.NoError(t, err)
		host, err := vm.HostSystem(ctx)
		require.NoError(t, err)
		name, err := host.ObjectName(ctx)
		require.NoError(t, err)
		assert.Equal(t, "DC0_C0_H2", name)
	})
}

func TestUnknownInstanceFailsTheCall(t *testing.T) {
	simulator.Test(func(ctx context.Context, c *vim25.Client) {
		b := newBackend(ctx, t, c)

		resp := call(t, func(cb nfvi.Callback) { b.DeleteInstance("", "vm-missing", cb) })
		assert.False(t, resp.Completed)
		assert.Equal(t, "delete vm-missing failed: VirtualMachine vm-missing not found", resp.Reason)
	})
}

func TestQueryAlarmsWithoutTriggeredAlarms(t *testing.T) {
	simulator.Test(func(ctx context.Context, c *vim25.Client) {
		b := newBackend(ctx, t, c)

		resp := call(t, func(cb nfvi.Callback) { b.QueryAlarms(cb) })
		require.True(t, resp.Completed, resp.Reason)
		assert.Empty(t, resp.Result.([]objects.Alarm))
	})
}

func TestUnsupportedCallsFail(t *testing.T) {
	simulator.Test(func(ctx context.Context, c *vim25.Client) {
		b := newBackend(ctx, t, c)

		resp := call(t, func(cb nfvi.Callback) { b.EvacuateInstance("", "DC0_H0_VM0", cb) })
		assert.False(t, resp.Completed)
		assert.Equal(t, "not implemented", resp.Reason)
	})
}
