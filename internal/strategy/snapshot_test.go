// Copyright © 2024 The vjailbreak authors

package strategy

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, h *harness, s *Strategy) (*Strategy, []byte) {
	data, err := s.Marshal()
	require.NoError(t, err)
	restored, err := Unmarshal(h.env, data)
	require.NoError(t, err)
	again, err := restored.Marshal()
	require.NoError(t, err)
	assert.Equal(t, string(data), string(again))
	return restored, data
}

func TestSnapshotRoundTrip(t *testing.T) {
	h := newHarness(t)
	h.antiAffinity(t)
	req := patchRequest(ApplyParallel, 2)
	s := h.build(t, req)

	restored, data := roundTrip(t, h, s)
	assert.Equal(t, s.UUID, restored.UUID)
	assert.Equal(t, req, restored.Request)
	require.Len(t, restored.ApplyPhase.Stages, 3)
	migrate, ok := restored.ApplyPhase.Stages[1].Steps[2].(*MigrateInstancesStep)
	require.True(t, ok)
	assert.Equal(t, []string{"compute-0"}, migrate.FromHosts)
	upgrade := restored.ApplyPhase.Stages[0].Steps[2].(*UpgradeHostsStep)
	assert.Equal(t, newRelease, upgrade.Release)
	assert.Equal(t, 3600, upgrade.Timeout)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))
	apply := doc["apply_phase"].(map[string]interface{})
	assert.EqualValues(t, 3, apply["total_stages"])
	stage := apply["stages"].([]interface{})[1].(map[string]interface{})
	assert.EqualValues(t, 7, stage["total_steps"])
	step := stage["steps"].([]interface{})[3].(map[string]interface{})
	assert.Equal(t, "lock-hosts", step["name"])
	assert.Equal(t, "hosts", step["entity_type"])
	assert.Equal(t, []interface{}{"compute-0"}, step["entity_names"])
	assert.Equal(t, []interface{}{"u-compute-0"}, step["entity_uuids"])
}

func TestSnapshotRoundTripAfterFailureAndAbort(t *testing.T) {
	h := newHarness(t)
	h.antiAffinity(t)
	h.sim.FailCalls("UnlockHost", "compute-2", "configuration out of date")
	s := h.build(t, patchRequest(ApplyParallel, 2))
	h.apply(t, s, -1)
	require.Equal(t, StateApplyFailed, s.State)

	restored, _ := roundTrip(t, h, s)
	unlock := restored.ApplyPhase.Stages[0].Steps[3].(*UnlockHostsStep)
	assert.Equal(t, 5, unlock.RetryCount)
	assert.Equal(t, ResultFailed, unlock.Result)
	assert.Equal(t, "configuration out of date", restored.Reason())

	h.sim.ClearFailures()
	require.NoError(t, s.Abort())
	h.run(t, func() bool { return s.State != StateAborting })
	require.Equal(t, StateAborted, s.State)
	restored, _ = roundTrip(t, h, s)
	require.NotNil(t, restored.AbortPhase)
	assert.Equal(t, ResultSuccess, restored.AbortPhase.Result)
}

func TestRestoreRejectsUnknownSteps(t *testing.T) {
	h := newHarness(t)
	h.workers(t, 1)
	s := h.build(t, patchRequest(ApplySerial, 0))
	snap, err := s.Snapshot()
	require.NoError(t, err)
	snap.ApplyPhase.Stages[0].Steps[0]["name"] = "reboot-hosts"

	_, err = Restore(h.env, snap)
	assert.ErrorContains(t, err, `unknown step "reboot-hosts"`)

	snap.ApplyPhase.Stages[0].Steps[0]["name"] = "query-alarms"
	snap.ApplyPhase.TotalStages = 4
	_, err = Restore(h.env, snap)
	assert.ErrorContains(t, err, "1 found")
}

func TestResumeReappliesTheInterruptedStep(t *testing.T) {
	h := newHarness(t)
	h.antiAffinity(t)
	s := h.build(t, patchRequest(ApplyParallel, 2))
	require.NoError(t, s.Apply(-1))
	h.settle()

	st := s.ApplyPhase.Stages[0]
	require.Equal(t, StateApplying, s.State)
	require.Equal(t, StepSystemStabilize, st.Steps[st.CurrentStep].Kind())
	data, err := s.Marshal()
	require.NoError(t, err)
	s.Stop()

	restored, err := Unmarshal(h.env, data)
	require.NoError(t, err)
	h.strategy = restored
	restored.Resume()
	h.run(t, func() bool { return restored.State != StateApplying })

	require.Equal(t, StateApplied, restored.State, restored.Reason())
	assert.Equal(t, 1, countOf(h.sim.CallsTo("LockHost"), "compute-2"))
	assert.Equal(t, 1, countOf(h.sim.CallsTo("UpgradeHost"), "compute-2"))
}

func TestResumeAfterStagePause(t *testing.T) {
	h := newHarness(t)
	h.antiAffinity(t)
	s := h.build(t, patchRequest(ApplyParallel, 2))
	h.apply(t, s, 0)
	require.Equal(t, StateReadyToApply, s.State)

	restored, _ := roundTrip(t, h, s)
	h.strategy = restored
	assert.Equal(t, 1, restored.ApplyPhase.CurrentStage)
	h.apply(t, restored, -1)

	assert.Equal(t, StateApplied, restored.State, restored.Reason())
	assert.Equal(t, 1, countOf(h.sim.CallsTo("LockHost"), "compute-2"))
}
