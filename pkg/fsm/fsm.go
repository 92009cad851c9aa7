// Copyright © 2024 The vjailbreak authors

// Package fsm is a small finite state machine. Events raised while an event
// is being handled, including from Enter and Exit, are queued and handled in
// order once the current one returns.
package fsm

import (
	"github.com/sirupsen/logrus"
)

type Event string

// State is one state of a Machine. HandleEvent returns the name of the next
// state, or "" to stay.
type State interface {
	Name() string
	Enter(m *Machine, event Event, data interface{})
	Exit(m *Machine)
	HandleEvent(m *Machine, event Event, data interface{}) string
}

type pending struct {
	event Event
	data  interface{}
}

type TransitionFunc func(from, to string, event Event)

type Machine struct {
	name         string
	states       map[string]State
	current      State
	owner        interface{}
	dispatching  bool
	queue        []pending
	onTransition TransitionFunc
	log          *logrus.Entry
}

func New(name string, owner interface{}, initial string, states ...State) *Machine {
	m := &Machine{
		name:   name,
		states: make(map[string]State, len(states)),
		owner:  owner,
		log:    logrus.WithFields(logrus.Fields{"component": "fsm", "fsm": name}),
	}
	for _, s := range states {
		m.states[s.Name()] = s
	}
	m.current = m.states[initial]
	if m.current == nil {
		m.log.Panicf("unknown initial state %s", initial)
	}
	return m
}

func (m *Machine) Name() string {
	return m.name
}

// Owner returns the object the machine drives.
func (m *Machine) Owner() interface{} {
	return m.owner
}

func (m *Machine) Current() string {
	return m.current.Name()
}

func (m *Machine) OnTransition(fn TransitionFunc) {
	m.onTransition = fn
}

// Restore sets the current state without running Enter, used when the
// state is reloaded from the store.
func (m *Machine) Restore(state string) bool {
	s, ok := m.states[state]
	if !ok {
		return false
	}
	m.current = s
	return true
}

func (m *Machine) HandleEvent(event Event, data interface{}) {
	m.queue = append(m.queue, pending{event: event, data: data})
	if m.dispatching {
		return
	}
	m.dispatching = true
	defer func() { m.dispatching = false }()
	for len(m.queue) > 0 {
		p := m.queue[0]
		m.queue = m.queue[1:]
		m.dispatch(p.event, p.data)
	}
}

func (m *Machine) dispatch(event Event, data interface{}) {
	next := m.current.HandleEvent(m, event, data)
	if next == "" || next == m.current.Name() {
		return
	}
	s, ok := m.states[next]
	if !ok {
		m.log.Errorf("event %s requested unknown state %s", event, next)
		return
	}
	from := m.current.Name()
	m.current.Exit(m)
	m.current = s
	m.log.Infof("%s -> %s on %s", from, next, event)
	if m.onTransition != nil {
		m.onTransition(from, next, event)
	}
	s.Enter(m, event, data)
}
