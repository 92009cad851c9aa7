// Copyright © 2024 The vjailbreak authors

package simulator

import (
	"testing"
	"time"

	"github.com/openstack-archive/stx-nfv-sub001/pkg/loop"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/nfvi"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/objects"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testingclock "k8s.io/utils/clock/testing"
)

func TestPendingCallsCompleteThroughLoop(t *testing.T) {
	l := loop.New(testingclock.NewFakeClock(time.Now()), time.Second)
	sim := New(l)

	var resp *nfvi.Response
	sim.LockHost("u0", "compute-0", func(r nfvi.Response) { resp = &r })
	require.NotNil(t, sim.Pending("LockHost", "compute-0"))

	assert.True(t, sim.Complete("LockHost", "compute-0", nfvi.Failed("host has instances")))
	assert.Nil(t, resp, "completion must not be delivered synchronously")
	l.RunPending()
	require.NotNil(t, resp)
	assert.False(t, resp.Completed)
	assert.Equal(t, "sim-1", resp.ActionID)
	assert.False(t, sim.Complete("LockHost", "compute-0", nfvi.Succeeded(nil)))
}

func TestAutoComplete(t *testing.T) {
	l := loop.New(testingclock.NewFakeClock(time.Now()), time.Second)
	sim := New(l)
	sim.AutoComplete = true
	sim.Alarms = []objects.Alarm{{AlarmID: "100.101"}}
	sim.FailCalls("UnlockHost", "compute-1", "unlock rejected")

	var side []string
	sim.OnSuccess = func(c *Call) { side = append(side, c.String()) }

	var alarms []objects.Alarm
	var unlock nfvi.Response
	sim.QueryAlarms(func(r nfvi.Response) { alarms = r.Result.([]objects.Alarm) })
	sim.UnlockHost("u1", "compute-1", func(r nfvi.Response) { unlock = r })
	sim.UpgradeHost("u2", "compute-2", "22.12", nil)
	l.RunPending()

	assert.Len(t, alarms, 1)
	assert.Equal(t, "unlock rejected", unlock.Reason)
	assert.Equal(t, []string{"QueryAlarms()", "UpgradeHost(compute-2, 22.12)"}, side)
	assert.Equal(t, []string{"compute-1"}, sim.CallsTo("UnlockHost"))
}
