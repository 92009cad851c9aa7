// Copyright © 2024 The vjailbreak authors

// Package instancefsm serializes the actions requested on an instance. An
// instance runs one action at a time; later requests wait in a FIFO queue
// holding at most one entry per action kind.
package instancefsm

import (
	"fmt"

	"github.com/openstack-archive/stx-nfv-sub001/pkg/loop"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/metrics"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/nfvi"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/objects"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/tables"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var (
	ErrUnknownInstance = errors.New("unknown instance")
	ErrActionRejected  = errors.New("action rejected")
)

// Observer is told when an action reaches a terminal state.
type Observer interface {
	InstanceActionDone(uuid string, data *objects.InstanceActionData)
}

type Env struct {
	Inventory *tables.Inventory
	Gateway   nfvi.ComputeAPI
	Timers    loop.Timers
	Observer  Observer
}

type Manager struct {
	env       *Env
	instances map[string]*ActionFSM
	seq       uint64
	log       *logrus.Entry
}

func NewManager(env Env) *Manager {
	return &Manager{
		env:       &env,
		instances: make(map[string]*ActionFSM),
		log:       logrus.WithField("component", "instancefsm"),
	}
}

func (m *Manager) fsmOf(uuid string) *ActionFSM {
	f, ok := m.instances[uuid]
	if !ok {
		f = &ActionFSM{
			uuid: uuid,
			mgr:  m,
			log:  m.log.WithField("instance", uuid),
		}
		m.instances[uuid] = f
	}
	return f
}

// Load settles actions that were running when the process stopped. Their
// backend calls cannot be followed any more, so they are recorded as failed.
func (m *Manager) Load() {
	for _, inst := range m.env.Inventory.Instances() {
		if inst.ActionData == nil || !inst.ActionData.IsInprogress() {
			if inst.ActionData != nil && inst.ActionData.Seq > m.seq {
				m.seq = inst.ActionData.Seq
			}
			continue
		}
		if inst.ActionData.Seq > m.seq {
			m.seq = inst.ActionData.Seq
		}
		_, err := m.env.Inventory.UpdateInstance(inst.UUID, func(rec *objects.Instance) {
			rec.ActionData.State = objects.ActionStateFailed
			rec.ActionData.Reason = "interrupted by restart"
			rec.LastActionData = rec.ActionData
			rec.ActionData = nil
		})
		if err != nil {
			m.log.Errorf("failed to settle action of instance %s: %v", inst.UUID, err)
		}
	}
}

// Do requests action on the instance. The returned data tracks the request
// whether it started right away or was queued.
func (m *Manager) Do(uuid string, action objects.ActionType, params objects.ActionParameters,
	initiatedBy objects.ActionInitiatedBy, reason string) (*objects.InstanceActionData, error) {
	inst := m.env.Inventory.Instance(uuid)
	if inst == nil {
		return nil, errors.Wrapf(ErrUnknownInstance, "instance %s", uuid)
	}
	if _, ok := actionSpecs[action]; !ok {
		return nil, errors.Wrapf(ErrActionRejected, "unsupported action %q", action)
	}
	if inst.IsDeleted() && action != objects.ActionDelete {
		return nil, errors.Wrapf(ErrActionRejected, "instance %s is deleted", inst.Name)
	}
	m.seq++
	data := &objects.InstanceActionData{
		Seq:         m.seq,
		Action:      action,
		State:       objects.ActionStateQueued,
		Reason:      reason,
		InitiatedBy: initiatedBy,
		Parameters:  params,
	}
	if err := m.fsmOf(uuid).do(data); err != nil {
		return nil, err
	}
	return data, nil
}

// Current returns the running action of the instance, if any.
func (m *Manager) Current(uuid string) *objects.InstanceActionData {
	if f, ok := m.instances[uuid]; ok && f.current != nil {
		return f.current.data
	}
	return nil
}

// Pending returns the queued actions of the instance in start order.
func (m *Manager) Pending(uuid string) []*objects.InstanceActionData {
	if f, ok := m.instances[uuid]; ok {
		return append([]*objects.InstanceActionData(nil), f.queue...)
	}
	return nil
}

func (m *Manager) IsActionRunning(uuid string) bool {
	return m.Current(uuid) != nil
}

// ActionFSM owns the running and queued actions of one instance.
type ActionFSM struct {
	uuid    string
	mgr     *Manager
	current *actionMachine
	queue   []*objects.InstanceActionData
	log     *logrus.Entry
}

func (f *ActionFSM) deletePending() bool {
	if f.current != nil && f.current.data.Action == objects.ActionDelete {
		return true
	}
	for _, d := range f.queue {
		if d.Action == objects.ActionDelete {
			return true
		}
	}
	return false
}

func (f *ActionFSM) do(data *objects.InstanceActionData) error {
	if data.Action == objects.ActionDelete {
		return f.doDelete(data)
	}
	if f.deletePending() {
		return errors.Wrapf(ErrActionRejected, "instance %s is being deleted", f.uuid)
	}
	if f.current == nil {
		f.start(data)
		return nil
	}
	for i, q := range f.queue {
		if q.Action == data.Action {
			f.finishQueued(q, objects.ActionStateCancelled, fmt.Sprintf("superseded by request %d", data.Seq))
			f.queue[i] = data
			f.log.Infof("action %s replaces queued request %d", data.Action, q.Seq)
			return nil
		}
	}
	f.queue = append(f.queue, data)
	f.log.Infof("action %s queued behind %s", data.Action, f.current.data.Action)
	return nil
}

// doDelete cancels every queued action and the running one, unless the
// running action is a fail, which always runs to completion.
func (f *ActionFSM) doDelete(data *objects.InstanceActionData) error {
	if f.deletePending() {
		return errors.Wrapf(ErrActionRejected, "instance %s is already being deleted", f.uuid)
	}
	for _, q := range f.queue {
		f.finishQueued(q, objects.ActionStateCancelled, "cancelled by delete")
	}
	f.queue = []*objects.InstanceActionData{data}
	if f.current == nil {
		f.startNext()
		return nil
	}
	if f.current.data.Action == objects.ActionFail {
		f.log.Info("delete queued behind running fail action")
		return nil
	}
	f.current.cancel("cancelled by delete")
	return nil
}

func (f *ActionFSM) finishQueued(d *objects.InstanceActionData, state objects.ActionState, reason string) {
	d.State = state
	d.Reason = reason
	metrics.RecordInstanceAction(string(d.Action), string(state))
	if obs := f.mgr.env.Observer; obs != nil {
		obs.InstanceActionDone(f.uuid, d)
	}
}

func (f *ActionFSM) start(data *objects.InstanceActionData) {
	am := newActionMachine(f, data)
	f.current = am
	am.begin()
}

func (f *ActionFSM) startNext() {
	if f.current != nil || len(f.queue) == 0 {
		return
	}
	next := f.queue[0]
	f.queue = f.queue[1:]
	f.start(next)
}

func (f *ActionFSM) persist(fn func(rec *objects.Instance)) {
	if _, err := f.mgr.env.Inventory.UpdateInstance(f.uuid, fn); err != nil {
		f.log.Errorf("failed to save instance: %v", err)
	}
}

// actionDone retires the running action and starts the next queued one
// before anybody is told, so a request made from the observer queues
// behind it.
func (f *ActionFSM) actionDone(am *actionMachine) {
	if f.current != am {
		return
	}
	f.current = nil
	d := *am.data
	f.persist(func(rec *objects.Instance) {
		rec.LastActionData = &d
		rec.ActionData = nil
	})
	f.log.Infof("action %s %s %s", am.data.Action, am.data.State, am.data.Reason)
	metrics.RecordInstanceAction(string(am.data.Action), string(am.data.State))
	f.startNext()
	if obs := f.mgr.env.Observer; obs != nil {
		obs.InstanceActionDone(f.uuid, am.data)
	}
}
