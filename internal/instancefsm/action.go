// Copyright © 2024 The vjailbreak authors

package instancefsm

import (
	"strings"

	"github.com/openstack-archive/stx-nfv-sub001/pkg/fsm"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/objects"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/task"
)

const (
	stateInitial   = "initial"
	stateExecuting = "executing"
	stateCompleted = "completed"
	stateFailed    = "failed"
	stateCancelled = "cancelled"
)

const (
	eventStart         fsm.Event = "start"
	eventTaskCompleted fsm.Event = "task-completed"
	eventTaskFailed    fsm.Event = "task-failed"
	eventCancel        fsm.Event = "cancel"
)

// actionSpec describes one action kind. cancellable is false for actions
// that must run to completion once started.
type actionSpec struct {
	works       func(am *actionMachine) []task.Work
	cancellable bool
}

// actionMachine is the sub-state-machine of one requested action.
type actionMachine struct {
	owner   *ActionFSM
	data    *objects.InstanceActionData
	spec    actionSpec
	machine *fsm.Machine
	task    *task.Task
}

func newActionMachine(owner *ActionFSM, data *objects.InstanceActionData) *actionMachine {
	am := &actionMachine{owner: owner, data: data, spec: actionSpecs[data.Action]}
	am.machine = fsm.New(string(data.Action)+"/"+owner.uuid, am, stateInitial,
		initialState{},
		executingState{},
		terminalState{name: stateCompleted, state: objects.ActionStateCompleted},
		terminalState{name: stateFailed, state: objects.ActionStateFailed},
		terminalState{name: stateCancelled, state: objects.ActionStateCancelled},
	)
	return am
}

func (am *actionMachine) begin() {
	am.machine.HandleEvent(eventStart, nil)
}

func (am *actionMachine) cancel(reason string) {
	am.machine.HandleEvent(eventCancel, reason)
}

func (am *actionMachine) instance() *objects.Instance {
	return am.owner.mgr.env.Inventory.Instance(am.owner.uuid)
}

func actionOf(m *fsm.Machine) *actionMachine {
	return m.Owner().(*actionMachine)
}

func reasonOf(data interface{}) string {
	if s, ok := data.(string); ok {
		return s
	}
	return ""
}

type initialState struct{}

func (initialState) Name() string { return stateInitial }

func (initialState) Enter(*fsm.Machine, fsm.Event, interface{}) {}

func (initialState) Exit(*fsm.Machine) {}

func (initialState) HandleEvent(m *fsm.Machine, event fsm.Event, data interface{}) string {
	switch event {
	case eventStart:
		return stateExecuting
	case eventCancel:
		actionOf(m).data.Reason = reasonOf(data)
		return stateCancelled
	}
	return ""
}

type executingState struct{}

func (executingState) Name() string { return stateExecuting }

func (executingState) Enter(m *fsm.Machine, _ fsm.Event, _ interface{}) {
	am := actionOf(m)
	inst := am.instance()
	if inst == nil {
		m.HandleEvent(eventTaskFailed, "instance no longer exists")
		return
	}
	am.data.State = objects.ActionStateStarted
	am.data.FromHost = inst.HostName
	d := *am.data
	am.owner.persist(func(rec *objects.Instance) { rec.ActionData = &d })

	t := task.New(m.Name(), am.owner.mgr.env.Timers, am.spec.works(am)...)
	am.task = t
	t.Start(func(result task.Result, reason string) {
		if am.task != t {
			return
		}
		am.data.Result = string(result)
		if soft := t.SoftFailures(); len(soft) > 0 {
			reason := strings.Join(soft, "; ")
			am.data.Reason = reason
			am.owner.persist(func(rec *objects.Instance) { rec.FailureReason = reason })
		}
		if result == task.Success {
			m.HandleEvent(eventTaskCompleted, nil)
			return
		}
		m.HandleEvent(eventTaskFailed, reason)
	})
}

func (executingState) Exit(m *fsm.Machine) {
	am := actionOf(m)
	if am.task != nil && am.task.IsRunning() {
		am.task.Abort()
	}
	am.task = nil
}

func (executingState) HandleEvent(m *fsm.Machine, event fsm.Event, data interface{}) string {
	am := actionOf(m)
	switch event {
	case eventTaskCompleted:
		return stateCompleted
	case eventTaskFailed:
		am.data.Reason = reasonOf(data)
		return stateFailed
	case eventCancel:
		if !am.spec.cancellable {
			am.owner.log.Infof("%s action cannot be cancelled", am.data.Action)
			return ""
		}
		am.data.Reason = reasonOf(data)
		am.data.Result = string(task.Aborted)
		return stateCancelled
	}
	return ""
}

type terminalState struct {
	name  string
	state objects.ActionState
}

func (s terminalState) Name() string { return s.name }

func (s terminalState) Enter(m *fsm.Machine, _ fsm.Event, _ interface{}) {
	am := actionOf(m)
	am.data.State = s.state
	am.owner.actionDone(am)
}

func (terminalState) Exit(*fsm.Machine) {}

func (terminalState) HandleEvent(*fsm.Machine, fsm.Event, interface{}) string {
	return ""
}
