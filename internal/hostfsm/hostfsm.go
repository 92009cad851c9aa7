// Copyright © 2024 The vjailbreak authors

// Package hostfsm drives a single host through its enable and disable
// transitions. Every state that needs backend work runs a task built from
// host works; the machine only moves on task completion or on an explicit
// event.
package hostfsm

import (
	"strings"

	"github.com/openstack-archive/stx-nfv-sub001/pkg/events"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/fsm"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/loop"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/nfvi"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/objects"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/tables"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/task"
	"github.com/sirupsen/logrus"
)

const (
	StateInitial         = "initial"
	StateEnabling        = "enabling"
	StateEnabled         = "enabled"
	StateDisabling       = "disabling"
	StateDisablingFailed = "disabling-failed"
	StateDisabled        = "disabled"
	StateFailed          = "failed"
)

const (
	EventEnable        fsm.Event = "enable"
	EventDisable       fsm.Event = "disable"
	EventDisableForce  fsm.Event = "disable-force"
	EventFailed        fsm.Event = "failed"
	EventTaskCompleted fsm.Event = "task-completed"
	EventTaskFailed    fsm.Event = "task-failed"
)

// InstanceMover moves the instances off a host on behalf of the host
// machine. It reports the outcome with the instances-moved and
// migrate-instances-failed events.
type InstanceMover interface {
	HostOperation(hostName string, opType objects.OperationType) *objects.Operation
	CancelHostOperation(hostName string)
}

// Observer is told about every state a host machine settles in.
type Observer interface {
	HostStateChanged(hostName, from, to, reason string)
}

type Env struct {
	Inventory *tables.Inventory
	Gateway   nfvi.InfrastructureAPI
	Timers    loop.Timers
	Instances InstanceMover
	Observer  Observer
}

type Manager struct {
	env   *Env
	hosts map[string]*Host
	log   *logrus.Entry
}

func NewManager(env Env) *Manager {
	return &Manager{
		env:   &env,
		hosts: make(map[string]*Host),
		log:   logrus.WithField("component", "hostfsm"),
	}
}

// Host returns the machine of the named host, creating it from the stored
// state on first use. It returns nil for unknown hosts.
func (m *Manager) Host(name string) *Host {
	if h, ok := m.hosts[name]; ok {
		return h
	}
	rec := m.env.Inventory.Host(name)
	if rec == nil {
		return nil
	}
	h := newHost(name, m.env)
	if rec.FsmState != "" && !h.machine.Restore(rec.FsmState) {
		m.log.Warnf("host %s has unknown state %s, starting from initial", name, rec.FsmState)
	}
	m.hosts[name] = h
	return h
}

// Load creates the machine of every known host. Hosts that were in the
// middle of a transition restart it.
func (m *Manager) Load() {
	for _, rec := range m.env.Inventory.Hosts() {
		h := m.Host(rec.Name)
		switch h.State() {
		case StateEnabling:
			h.machine.Restore(StateInitial)
			h.machine.HandleEvent(EventEnable, nil)
		case StateDisabling:
			h.machine.Restore(StateInitial)
			h.machine.HandleEvent(EventDisable, nil)
		}
	}
}

func (m *Manager) State(name string) string {
	if h := m.Host(name); h != nil {
		return h.State()
	}
	return ""
}

func (m *Manager) Enable(name string) {
	if h := m.Host(name); h != nil {
		h.machine.HandleEvent(EventEnable, nil)
	}
}

// Disable moves the instances off the host and disables its services.
// With force, instances that cannot be moved are stopped instead.
func (m *Manager) Disable(name string, force bool) {
	h := m.Host(name)
	if h == nil {
		return
	}
	if force {
		h.machine.HandleEvent(EventDisableForce, nil)
		return
	}
	h.machine.HandleEvent(EventDisable, nil)
}

func (m *Manager) Failed(name, reason string) {
	if h := m.Host(name); h != nil {
		h.machine.HandleEvent(EventFailed, reason)
	}
}

// RunServices enables or disables one service of the host outside of the
// machine transitions.
func (m *Manager) RunServices(name string, service objects.HostService, enable bool, done task.DoneFunc) bool {
	h := m.Host(name)
	if h == nil {
		return false
	}
	if h.services != nil && h.services.IsRunning() {
		h.services.Abort()
	}
	var w task.Work
	if enable {
		w = newEnableServicesWork(h, service)
	} else {
		w = newDisableServicesWork(h, service)
	}
	h.services = task.New(name+"/services", m.env.Timers, w)
	h.services.Start(done)
	return true
}

// HandleEvent hands an event to every running host task.
func (m *Manager) HandleEvent(event events.Event, data interface{}) {
	for _, h := range m.hosts {
		if h.task != nil && h.task.IsRunning() {
			h.task.HandleEvent(event, data)
		}
	}
}

// Host is the lifecycle machine of one host. The host record itself is
// looked up in the inventory on every use.
type Host struct {
	name     string
	env      *Env
	machine  *fsm.Machine
	task     *task.Task
	services *task.Task
	opType   objects.OperationType
	reason   string
	previous string
	log      *logrus.Entry
}

func newHost(name string, env *Env) *Host {
	h := &Host{
		name: name,
		env:  env,
		log:  logrus.WithFields(logrus.Fields{"component": "hostfsm", "host": name}),
	}
	h.machine = fsm.New("host/"+name, h, StateInitial,
		initialState{},
		enablingState{},
		enabledState{},
		disablingState{},
		disablingFailedState{},
		disabledState{},
		failedState{},
	)
	h.machine.OnTransition(func(from, to string, _ fsm.Event) {
		h.previous = from
		if _, err := env.Inventory.UpdateHost(name, func(rec *objects.Host) { rec.FsmState = to }); err != nil {
			h.log.Errorf("failed to save host state %s: %v", to, err)
		}
	})
	return h
}

func (h *Host) Name() string {
	return h.name
}

func (h *Host) State() string {
	return h.machine.Current()
}

func (h *Host) Reason() string {
	return h.reason
}

func (h *Host) record() *objects.Host {
	return h.env.Inventory.Host(h.name)
}

func (h *Host) update(fn func(rec *objects.Host)) {
	if _, err := h.env.Inventory.UpdateHost(h.name, fn); err != nil {
		h.log.Errorf("failed to update host: %v", err)
	}
}

func (h *Host) startTask(name string, works ...task.Work) {
	h.abortTask()
	t := task.New(h.name+"/"+name, h.env.Timers, works...)
	h.task = t
	t.Start(func(result task.Result, reason string) {
		if h.task != t {
			return
		}
		if soft := t.SoftFailures(); len(soft) > 0 {
			h.update(func(rec *objects.Host) { rec.FailureReason = strings.Join(soft, "; ") })
		}
		if result == task.Success {
			h.machine.HandleEvent(EventTaskCompleted, nil)
			return
		}
		h.machine.HandleEvent(EventTaskFailed, reason)
	})
}

func (h *Host) abortTask() {
	if h.task != nil && h.task.IsRunning() {
		h.task.Abort()
	}
	h.task = nil
}

func (h *Host) settled(state string) {
	if h.env.Observer != nil {
		h.env.Observer.HostStateChanged(h.name, h.previous, state, h.reason)
	}
}
