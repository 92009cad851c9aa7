// Copyright © 2024 The vjailbreak authors

// Package events names the notifications Directors publish to the strategy
// engine and to running TaskWork.
package events

type Event string

const (
	HostStateChanged          Event = "host-state-changed"
	HostLockFailed            Event = "host-lock-failed"
	HostUnlockFailed          Event = "host-unlock-failed"
	HostRebootFailed          Event = "host-reboot-failed"
	HostUpgradeFailed         Event = "host-upgrade-failed"
	HostSwactFailed           Event = "host-swact-failed"
	HostDisableServicesFailed Event = "host-disable-services-failed"
	HostEnableServicesFailed  Event = "host-enable-services-failed"
	HostAudit                 Event = "host-audit"
	InstanceStateChanged      Event = "instance-state-changed"
	InstancesMoved            Event = "instances-moved"
	MigrateInstancesFailed    Event = "migrate-instances-failed"
	StopInstancesFailed       Event = "stop-instances-failed"
	StartInstancesFailed      Event = "start-instances-failed"
	InstancesSuperseded       Event = "instances-superseded"
)

// HostFailure is the payload of the host-*-failed events.
type HostFailure struct {
	HostName string
	Reason   string
}

// InstancesFailure is the payload of the *-instances-failed events.
// HostName is set when the failed operation was run for one host.
type InstancesFailure struct {
	HostName      string
	InstanceUUIDs []string
	Reason        string
}

// HostInstances is the payload of instances-moved: every instance the
// director was asked to move off HostName is gone or stopped. It is also
// the payload of instances-superseded.
type HostInstances struct {
	HostName      string
	OperationType string
}

// Listener receives events. Implementations run on the event loop.
type Listener interface {
	HandleEvent(event Event, data interface{})
}

type ListenerFunc func(event Event, data interface{})

func (f ListenerFunc) HandleEvent(event Event, data interface{}) {
	f(event, data)
}

// Fanout delivers each event to every registered listener in order.
type Fanout struct {
	listeners []Listener
}

func (f *Fanout) Register(l Listener) {
	f.listeners = append(f.listeners, l)
}

func (f *Fanout) HandleEvent(event Event, data interface{}) {
	for _, l := range f.listeners {
		l.HandleEvent(event, data)
	}
}
