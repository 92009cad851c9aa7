// Copyright © 2024 The vjailbreak authors

// Package task runs ordered lists of works cooperatively on the event loop.
package task

import (
	"fmt"

	"github.com/openstack-archive/stx-nfv-sub001/pkg/events"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/loop"
	"github.com/sirupsen/logrus"
)

type State string

const (
	StateInitial State = "initial"
	StateRunning State = "running"
	StateDone    State = "done"
	StateAborted State = "aborted"
)

type DoneFunc func(result Result, reason string)

type Task struct {
	name         string
	works        []Work
	current      int
	state        State
	result       Result
	reason       string
	softFailures []string
	timers       loop.Timers
	timerID      loop.TimerID
	timerArmed   bool
	done         DoneFunc
	log          *logrus.Entry
}

func New(name string, timers loop.Timers, works ...Work) *Task {
	return &Task{
		name:   name,
		works:  works,
		state:  StateInitial,
		timers: timers,
		log:    logrus.WithFields(logrus.Fields{"component": "task", "task": name}),
	}
}

func (t *Task) Name() string {
	return t.name
}

func (t *Task) State() State {
	return t.state
}

func (t *Task) IsRunning() bool {
	return t.state == StateRunning
}

func (t *Task) Result() Result {
	return t.result
}

func (t *Task) Reason() string {
	return t.reason
}

// SoftFailures returns the reasons of force-passed works that failed.
func (t *Task) SoftFailures() []string {
	return t.softFailures
}

// CurrentWork returns the running work, or nil when the task is not running.
func (t *Task) CurrentWork() Work {
	if t.state != StateRunning || t.current >= len(t.works) {
		return nil
	}
	return t.works[t.current]
}

// Start runs the works in order. done is called once, unless the task is
// aborted first.
func (t *Task) Start(done DoneFunc) {
	if t.state != StateInitial {
		t.log.Warnf("task already started, state=%s", t.state)
		return
	}
	t.done = done
	t.state = StateRunning
	t.log.Debug("task started")
	t.runWorks()
}

func (t *Task) runWorks() {
	for t.current < len(t.works) {
		w := t.works[t.current]
		b := w.Base()
		b.task = t
		t.log.Debugf("running work %s", b.name)
		result, reason := w.Run()
		if t.state != StateRunning {
			return
		}
		if result == Wait {
			b.waiting = true
			if b.timeout > 0 {
				t.timerID = t.timers.AddTimer(t.name+"/"+b.name, b.timeout, func() { t.workTimedOut(b) })
				t.timerArmed = true
			}
			return
		}
		if !t.settle(b, result, reason) {
			return
		}
	}
	t.finish(Success, "")
}

func (t *Task) settle(b *WorkBase, result Result, reason string) bool {
	b.waiting = false
	if result == Success {
		t.current++
		return true
	}
	if b.forcePass {
		t.log.Warnf("work %s %s, force passing: %s", b.name, result, reason)
		t.softFailures = append(t.softFailures, fmt.Sprintf("%s: %s", b.name, reason))
		t.current++
		return true
	}
	t.log.Infof("work %s %s: %s", b.name, result, reason)
	t.finish(result, reason)
	return false
}

func (t *Task) isCurrent(b *WorkBase) bool {
	return t.state == StateRunning && b.waiting && t.current < len(t.works) && t.works[t.current].Base() == b
}

func (t *Task) workComplete(b *WorkBase, result Result, reason string) {
	if !t.isCurrent(b) {
		t.log.Debugf("ignoring stale completion of work %s", b.name)
		return
	}
	if result == Wait {
		return
	}
	t.cancelTimer()
	if t.settle(b, result, reason) {
		t.runWorks()
	}
}

func (t *Task) workTimedOut(b *WorkBase) {
	t.timerArmed = false
	if !t.isCurrent(b) {
		return
	}
	w := t.works[t.current]
	result, reason := TimedOut, fmt.Sprintf("%s timed out", b.name)
	if h, ok := w.(TimeoutHandler); ok {
		result, reason = h.TimedOut()
	}
	if result != Success {
		if a, ok := w.(Aborter); ok {
			a.Abort()
		}
	}
	if t.settle(b, result, reason) {
		t.runWorks()
	}
}

// HandleEvent hands an external event to the work the task is waiting on.
func (t *Task) HandleEvent(event events.Event, data interface{}) bool {
	w := t.CurrentWork()
	if w == nil || !w.Base().waiting {
		return false
	}
	h, ok := w.(EventHandler)
	if !ok {
		return false
	}
	return h.HandleEvent(event, data)
}

// Abort stops the task without calling done. The running work is told to
// abort and any late completion from it is ignored.
func (t *Task) Abort() {
	if t.state != StateRunning {
		if t.state == StateInitial {
			t.state = StateAborted
			t.result = Aborted
		}
		return
	}
	t.cancelTimer()
	t.state = StateAborted
	t.result = Aborted
	if t.current < len(t.works) {
		w := t.works[t.current]
		b := w.Base()
		if b.waiting {
			b.waiting = false
			if a, ok := w.(Aborter); ok {
				a.Abort()
			}
		}
	}
	t.log.Debug("task aborted")
}

func (t *Task) cancelTimer() {
	if t.timerArmed {
		t.timers.CancelTimer(t.timerID)
		t.timerArmed = false
	}
}

func (t *Task) finish(result Result, reason string) {
	t.cancelTimer()
	t.state = StateDone
	t.result = result
	t.reason = reason
	t.log.Debugf("task finished: %s %s", result, reason)
	if t.done != nil {
		t.done(result, reason)
	}
}
