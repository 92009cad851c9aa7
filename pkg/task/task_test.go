// Copyright © 2024 The vjailbreak authors

package task

import (
	"testing"
	"time"

	"github.com/openstack-archive/stx-nfv-sub001/pkg/events"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/loop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testingclock "k8s.io/utils/clock/testing"
)

type fakeWork struct {
	WorkBase
	result    Result
	reason    string
	runs      int
	aborted   bool
	onEvent   events.Event
	timeoutTo Result
}

func newFakeWork(name string, result Result) *fakeWork {
	return &fakeWork{WorkBase: NewWorkBase(name, 10*time.Second, false), result: result}
}

func (w *fakeWork) Run() (Result, string) {
	w.runs++
	return w.result, w.reason
}

func (w *fakeWork) HandleEvent(event events.Event, data interface{}) bool {
	if event != w.onEvent {
		return false
	}
	w.Complete(Success, "")
	return true
}

func (w *fakeWork) Abort() {
	w.aborted = true
}

type overrideTimeoutWork struct {
	fakeWork
}

func (w *overrideTimeoutWork) TimedOut() (Result, string) {
	return w.timeoutTo, "timeout overridden"
}

type outcome struct {
	called bool
	result Result
	reason string
}

func (o *outcome) done(result Result, reason string) {
	o.called = true
	o.result = result
	o.reason = reason
}

func newTestTimers() (*loop.Loop, *testingclock.FakeClock) {
	fc := testingclock.NewFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	return loop.New(fc, time.Second), fc
}

func TestTaskRunsWorksInOrder(t *testing.T) {
	l, _ := newTestTimers()
	a := newFakeWork("a", Success)
	b := newFakeWork("b", Success)
	var o outcome
	New("t", l, a, b).Start(o.done)

	require.True(t, o.called)
	assert.Equal(t, Success, o.result)
	assert.Equal(t, 1, a.runs)
	assert.Equal(t, 1, b.runs)
}

func TestTaskStopsOnFailure(t *testing.T) {
	l, _ := newTestTimers()
	a := newFakeWork("a", Failed)
	a.reason = "backend refused"
	b := newFakeWork("b", Success)
	var o outcome
	New("t", l, a, b).Start(o.done)

	assert.Equal(t, Failed, o.result)
	assert.Equal(t, "backend refused", o.reason)
	assert.Equal(t, 0, b.runs)
}

func TestTaskForcePassRecordsSoftFailure(t *testing.T) {
	l, _ := newTestTimers()
	a := newFakeWork("notify", Failed)
	a.forcePass = true
	a.reason = "notification lost"
	b := newFakeWork("b", Success)
	var o outcome
	tk := New("t", l, a, b)
	tk.Start(o.done)

	assert.Equal(t, Success, o.result)
	assert.Equal(t, 1, b.runs)
	assert.Equal(t, []string{"notify: notification lost"}, tk.SoftFailures())
}

func TestTaskWaitThenComplete(t *testing.T) {
	l, _ := newTestTimers()
	a := newFakeWork("a", Wait)
	b := newFakeWork("b", Success)
	var o outcome
	tk := New("t", l, a, b)
	tk.Start(o.done)
	assert.False(t, o.called)
	assert.Equal(t, 1, l.PendingTimers())

	a.Complete(Success, "")
	assert.True(t, o.called)
	assert.Equal(t, Success, o.result)
	assert.Equal(t, 0, l.PendingTimers())
}

func TestTaskWaitResumedByEvent(t *testing.T) {
	l, _ := newTestTimers()
	a := newFakeWork("a", Wait)
	a.onEvent = events.InstancesMoved
	var o outcome
	tk := New("t", l, a)
	tk.Start(o.done)

	assert.False(t, tk.HandleEvent(events.HostStateChanged, nil))
	assert.True(t, tk.HandleEvent(events.InstancesMoved, nil))
	assert.Equal(t, Success, o.result)
}

func TestTaskWorkTimeout(t *testing.T) {
	l, fc := newTestTimers()
	a := newFakeWork("a", Wait)
	var o outcome
	New("t", l, a).Start(o.done)

	fc.Step(10 * time.Second)
	l.RunPending()
	assert.Equal(t, TimedOut, o.result)
	assert.Equal(t, "a timed out", o.reason)
	assert.True(t, a.aborted)

	// a late completion is ignored
	o = outcome{}
	a.Complete(Success, "")
	assert.False(t, o.called)
}

func TestTaskTimeoutOverride(t *testing.T) {
	l, fc := newTestTimers()
	a := &overrideTimeoutWork{fakeWork: *newFakeWork("a", Wait)}
	a.timeoutTo = Success
	b := newFakeWork("b", Success)
	var o outcome
	New("t", l, a, b).Start(o.done)

	fc.Step(10 * time.Second)
	l.RunPending()
	assert.Equal(t, Success, o.result)
	assert.Equal(t, 1, b.runs)
	assert.False(t, a.aborted)
}

func TestTaskAbortIgnoresLateCompletion(t *testing.T) {
	l, _ := newTestTimers()
	a := newFakeWork("a", Wait)
	b := newFakeWork("b", Success)
	var o outcome
	tk := New("t", l, a, b)
	tk.Start(o.done)
	tk.Abort()

	assert.True(t, a.aborted)
	assert.Equal(t, StateAborted, tk.State())
	assert.Equal(t, 0, l.PendingTimers())

	a.Complete(Success, "")
	assert.False(t, o.called)
	assert.Equal(t, 0, b.runs)
}
