// Copyright © 2024 The vjailbreak authors

package task

import (
	"time"

	"github.com/openstack-archive/stx-nfv-sub001/pkg/events"
)

type Result string

const (
	Success  Result = "success"
	Failed   Result = "failed"
	Wait     Result = "wait"
	TimedOut Result = "timed-out"
	Aborted  Result = "aborted"
)

// Work is one ordered unit of a Task. Run either finishes synchronously or
// returns Wait and later reports through Complete.
type Work interface {
	Base() *WorkBase
	Run() (Result, string)
}

// EventHandler is implemented by works that resume on external events.
type EventHandler interface {
	HandleEvent(event events.Event, data interface{}) bool
}

// TimeoutHandler lets a work decide the outcome of its own timeout.
type TimeoutHandler interface {
	TimedOut() (Result, string)
}

// Aborter is implemented by works that must release something when the
// task stops waiting for them.
type Aborter interface {
	Abort()
}

// WorkBase carries the bookkeeping shared by all works and is embedded by
// concrete works.
type WorkBase struct {
	name      string
	timeout   time.Duration
	forcePass bool
	task      *Task
	waiting   bool
}

func NewWorkBase(name string, timeout time.Duration, forcePass bool) WorkBase {
	return WorkBase{name: name, timeout: timeout, forcePass: forcePass}
}

func (b *WorkBase) Base() *WorkBase {
	return b
}

func (b *WorkBase) Name() string {
	return b.name
}

func (b *WorkBase) Timeout() time.Duration {
	return b.timeout
}

func (b *WorkBase) ForcePass() bool {
	return b.forcePass
}

// Waiting reports whether the owning task is waiting on this work.
func (b *WorkBase) Waiting() bool {
	return b.waiting
}

// Complete reports the result of a work that returned Wait. Completions that
// arrive after the task moved on, timed out or was aborted are dropped.
func (b *WorkBase) Complete(result Result, reason string) {
	if b.task == nil {
		return
	}
	b.task.workComplete(b, result, reason)
}
