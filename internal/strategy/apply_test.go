// Copyright © 2024 The vjailbreak authors

package strategy

import (
	"testing"

	"github.com/openstack-archive/stx-nfv-sub001/pkg/events"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/nfvi/simulator"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/objects"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyUpdatesEveryHost(t *testing.T) {
	h := newHarness(t)
	h.antiAffinity(t)
	s := h.build(t, patchRequest(ApplyParallel, 2))

	h.apply(t, s, -1)

	require.Equal(t, StateApplied, s.State, s.Reason())
	assert.Equal(t, ResultSuccess, s.ApplyPhase.Result)
	assert.Equal(t, 3, s.ApplyPhase.CurrentStage)
	for _, host := range h.inv.Hosts() {
		assert.Equal(t, newRelease, host.SoftwareRelease, host.Name)
		assert.True(t, host.IsUnlockedEnabledAvailable(), host.Name)
	}
	assert.ElementsMatch(t, []string{"compute-0", "compute-1", "compute-2", "compute-3"}, h.sim.CallsTo("LockHost"))
	for _, st := range s.ApplyPhase.Stages {
		assert.Equal(t, ResultSuccess, st.Result)
		for _, step := range st.Steps {
			assert.Equal(t, ResultSuccess, step.Base().Result, step.Base().Name)
			assert.NotEmpty(t, step.Base().EndDate)
		}
	}
	assert.NotZero(t, h.changes)
}

func TestApplyFailureStopsTheStrategy(t *testing.T) {
	h := newHarness(t)
	h.antiAffinity(t)
	h.sim.FailCalls("UpgradeHost", "compute-2", "disk full")
	s := h.build(t, patchRequest(ApplyParallel, 2))

	h.apply(t, s, -1)

	require.Equal(t, StateApplyFailed, s.State)
	assert.Equal(t, ResultFailed, s.ApplyPhase.Result)
	assert.Equal(t, "disk full", s.ApplyPhase.ResultReason)
	st := s.ApplyPhase.Stages[0]
	assert.Equal(t, ResultFailed, st.Result)
	assert.Equal(t, 2, st.CurrentStep)
	assert.Equal(t, ResultFailed, st.Steps[2].Base().Result)
	assert.Equal(t, ResultInitial, st.Steps[3].Base().Result)
	assert.Equal(t, ResultInitial, s.ApplyPhase.Stages[1].Result)
	assert.Contains(t, s.Reason(), "disk full")
	assert.NotContains(t, h.sim.CallsTo("LockHost"), "compute-0")
}

func TestApplyOneStageAtATime(t *testing.T) {
	h := newHarness(t)
	h.antiAffinity(t)
	s := h.build(t, patchRequest(ApplyParallel, 2))

	h.apply(t, s, 0)
	require.Equal(t, StateReadyToApply, s.State, s.Reason())
	assert.Equal(t, 1, s.ApplyPhase.CurrentStage)
	assert.Equal(t, newRelease, h.inv.Host("compute-2").SoftwareRelease)
	assert.Equal(t, oldRelease, h.inv.Host("compute-0").SoftwareRelease)

	assert.ErrorIs(t, s.Apply(0), ErrInvalidStage)
	assert.ErrorIs(t, s.Apply(3), ErrInvalidStage)

	h.apply(t, s, 1)
	require.Equal(t, StateReadyToApply, s.State)
	assert.Equal(t, 2, s.ApplyPhase.CurrentStage)

	h.apply(t, s, -1)
	assert.Equal(t, StateApplied, s.State)
	assert.ErrorIs(t, s.Apply(-1), ErrInvalidState)
}

func TestAbortAfterFailureUnlocksHosts(t *testing.T) {
	h := newHarness(t)
	h.antiAffinity(t)
	h.sim.FailCalls("UpgradeHost", "compute-2", "disk full")
	s := h.build(t, patchRequest(ApplyParallel, 2))
	h.apply(t, s, -1)
	require.Equal(t, StateApplyFailed, s.State)
	require.True(t, h.inv.Host("compute-2").IsLocked())

	require.NoError(t, s.Abort())
	h.run(t, func() bool { return s.State != StateAborting })

	require.Equal(t, StateAborted, s.State, s.Reason())
	require.NotNil(t, s.AbortPhase)
	require.Len(t, s.AbortPhase.Stages, 1)
	assert.Equal(t, []string{"unlock-hosts"}, stageStepNames(s.AbortPhase.Stages[0]))
	assert.Equal(t, []string{"compute-2", "compute-3"}, s.AbortPhase.Stages[0].Steps[0].Base().EntityNames)
	assert.True(t, h.inv.Host("compute-2").IsUnlockedEnabledAvailable())
	assert.ErrorIs(t, s.Abort(), ErrInvalidState)
}

func TestAbortWhileApplyingStopsAfterCurrentStep(t *testing.T) {
	h := newHarness(t)
	h.antiAffinity(t)
	s := h.build(t, patchRequest(ApplyParallel, 2))

	require.NoError(t, s.Apply(-1))
	require.NoError(t, s.Abort())
	assert.Equal(t, StateAborting, s.State)
	h.run(t, func() bool { return s.State != StateAborting })

	assert.Equal(t, StateAborted, s.State)
	assert.Equal(t, ResultAborted, s.ApplyPhase.Stages[0].Result)
	assert.Equal(t, 1, s.ApplyPhase.Stages[0].CurrentStep)
	assert.Empty(t, h.sim.CallsTo("LockHost"))
}

func TestAbortDuringBuild(t *testing.T) {
	h := newHarness(t)
	h.workers(t, 1)
	s, err := New(h.env, patchRequest(ApplySerial, 0))
	require.NoError(t, err)
	h.strategy = s
	require.NoError(t, s.Build())
	require.NoError(t, s.Abort())
	h.settle()

	assert.Equal(t, StateAborted, s.State)
	assert.Equal(t, ResultAborted, s.BuildPhase.Result)
	assert.Empty(t, s.ApplyPhase.Stages)
}

func TestUnlockIsRetried(t *testing.T) {
	h := newHarness(t)
	h.workers(t, 1)
	h.sim.FailCalls("UnlockHost", "compute-0", "configuration out of date")
	s := h.build(t, patchRequest(ApplySerial, 0))

	h.apply(t, s, -1)

	require.Equal(t, StateApplyFailed, s.State)
	assert.Equal(t, 6, countOf(h.sim.CallsTo("UnlockHost"), "compute-0"))
	unlock := s.ApplyPhase.Stages[0].Steps[3].(*UnlockHostsStep)
	assert.Equal(t, 5, unlock.RetryCount)
	assert.Equal(t, "configuration out of date", unlock.ResultReason)
}

func TestUnlockRetrySucceeds(t *testing.T) {
	h := newHarness(t)
	h.workers(t, 1)
	h.sim.FailCalls("UnlockHost", "compute-0", "configuration out of date")
	h.onEvent = func(e events.Event) {
		if e == events.HostUnlockFailed {
			h.sim.ClearFailures()
		}
	}
	s := h.build(t, patchRequest(ApplySerial, 0))

	h.apply(t, s, -1)

	require.Equal(t, StateApplied, s.State, s.Reason())
	assert.Equal(t, 2, countOf(h.sim.CallsTo("UnlockHost"), "compute-0"))
	unlock := s.ApplyPhase.Stages[0].Steps[3].(*UnlockHostsStep)
	assert.Equal(t, 1, unlock.RetryCount)
	assert.True(t, h.inv.Host("compute-0").IsUnlockedEnabledAvailable())
}

func TestUpgradeStrategyDrivesPlatformUpgrade(t *testing.T) {
	h := newHarness(t)
	h.workers(t, 1)
	h.sim.OnSuccess = func(c *simulator.Call) {
		switch c.Method {
		case "UpgradeStart":
			h.sim.Upgrade = &objects.Upgrade{State: objects.UpgradeStarted, ToRelease: newRelease}
		case "UpgradeActivate":
			h.sim.Upgrade.State = objects.UpgradeActivationComplete
		case "UpgradeComplete":
			h.sim.Upgrade = nil
		}
	}
	req := patchRequest(ApplySerial, 0)
	req.Type = TypeSwUpgrade
	s := h.build(t, req)

	h.apply(t, s, -1)

	require.Equal(t, StateApplied, s.State, s.Reason())
	assert.Equal(t, []string{""}, h.sim.CallsTo("UpgradeStart"))
	assert.Len(t, h.sim.CallsTo("UpgradeActivate"), 1)
	assert.Len(t, h.sim.CallsTo("UpgradeComplete"), 1)
	assert.Nil(t, s.Upgrade)
	assert.True(t, s.ApplyPhase.Stages[0].Steps[0].(*UpgradeStep).Requested)
}

func TestUpgradeActivationFailure(t *testing.T) {
	h := newHarness(t)
	h.workers(t, 1)
	_, err := h.inv.UpdateHost("compute-0", func(h *objects.Host) { h.SoftwareRelease = newRelease })
	require.NoError(t, err)
	h.sim.Upgrade = &objects.Upgrade{State: objects.UpgradeUpgradingHosts}
	h.sim.OnSuccess = func(c *simulator.Call) {
		if c.Method == "UpgradeActivate" {
			h.sim.Upgrade.State = objects.UpgradeActivationFailed
		}
	}
	req := patchRequest(ApplySerial, 0)
	req.Type = TypeSwUpgrade
	s := h.build(t, req)
	require.Len(t, s.ApplyPhase.Stages, 2)

	h.apply(t, s, -1)

	assert.Equal(t, StateApplyFailed, s.State)
	assert.Equal(t, "upgrade activation failed", s.ApplyPhase.ResultReason)
}

func TestOperationStepEndsWhenSuperseded(t *testing.T) {
	op := objects.NewOperation(objects.OperationMigrateInstances)
	op.Add("i-0", objects.OperationInprogress)
	step := &operationStep{}
	result, _ := step.wait(op)
	require.Equal(t, ResultWait, result)

	op.Cancel()
	result, reason := step.outcome()
	assert.Equal(t, ResultFailed, result)
	assert.Equal(t, "migrate-instances was superseded", reason)
}

func TestUndoStepsRevertStateChangingSteps(t *testing.T) {
	hosts := []*objects.Host{{UUID: "u-compute-0", Name: "compute-0"}}
	instances := []*objects.Instance{{UUID: "u-vm-0", Name: "vm-0"}}

	cases := []struct {
		step Step
		undo StepKind
	}{
		{step: newLockHostsStep(hosts), undo: StepUnlockHosts},
		{step: newDisableHostServicesStep(hosts, objects.HostServiceCompute), undo: StepEnableHostServices},
		{step: newStopInstancesStep(instances), undo: StepStartInstances},
	}
	for _, c := range cases {
		undoer, ok := c.step.(Undoer)
		require.True(t, ok, c.step.Kind())
		undo := undoer.Undo()
		require.Len(t, undo, 1)
		assert.Equal(t, c.undo, undo[0].Kind())
		assert.Equal(t, c.step.Base().EntityNames, undo[0].Base().EntityNames)
	}

	for _, s := range []Step{newUnlockHostsStep(hosts), newStartInstancesStep(instances), newSwactHostsStep(hosts)} {
		_, ok := s.(Undoer)
		assert.False(t, ok, s.Kind())
	}
}
