// Copyright © 2024 The vjailbreak authors

package objects

import (
	"fmt"

	"github.com/google/uuid"
)

type OperationType string

const (
	OperationLockHosts           OperationType = "lock-hosts"
	OperationUnlockHosts         OperationType = "unlock-hosts"
	OperationRebootHosts         OperationType = "reboot-hosts"
	OperationUpgradeHosts        OperationType = "upgrade-hosts"
	OperationSwactHosts          OperationType = "swact-hosts"
	OperationDisableHostServices OperationType = "disable-host-services"
	OperationEnableHostServices  OperationType = "enable-host-services"
	OperationMigrateInstances    OperationType = "migrate-instances"
	OperationStopInstances       OperationType = "stop-instances"
	OperationStartInstances      OperationType = "start-instances"
	OperationHostLock            OperationType = "host-lock"
	OperationHostLockForce       OperationType = "host-lock-force"
	OperationHostDisable         OperationType = "host-disable"
	OperationHostFailed          OperationType = "host-failed"
)

type OperationState string

const (
	OperationReady      OperationState = "ready"
	OperationInprogress OperationState = "inprogress"
	OperationCompleted  OperationState = "completed"
	OperationFailed     OperationState = "failed"
	OperationTimedOut   OperationState = "timed-out"
	OperationCancelled  OperationState = "cancelled"
)

// OperationEntity is the progress of one host or instance inside an Operation.
type OperationEntity struct {
	Name   string         `json:"name"`
	State  OperationState `json:"state"`
	Reason string         `json:"reason,omitempty"`
}

// Operation tracks a batched Director request. Entities are kept in the
// order they were added.
type Operation struct {
	ID     string
	Type   OperationType
	Parent *Operation

	entities  []*OperationEntity
	index     map[string]*OperationEntity
	failed    bool
	cancelled bool
	reason    string
}

func NewOperation(opType OperationType) *Operation {
	return &Operation{
		ID:    uuid.NewString(),
		Type:  opType,
		index: make(map[string]*OperationEntity),
	}
}

func (o *Operation) String() string {
	return fmt.Sprintf("%s(%s)", o.Type, o.ID)
}

// Add registers an entity, or resets it when already present.
func (o *Operation) Add(name string, state OperationState) {
	if e, ok := o.index[name]; ok {
		e.State = state
		e.Reason = ""
		return
	}
	e := &OperationEntity{Name: name, State: state}
	o.entities = append(o.entities, e)
	o.index[name] = e
}

// Set updates an entity and mirrors the update on the parent operation.
func (o *Operation) Set(name string, state OperationState, reason string) {
	e, ok := o.index[name]
	if !ok {
		return
	}
	e.State = state
	e.Reason = reason
	if o.Parent != nil {
		o.Parent.Set(name, state, reason)
	}
}

func (o *Operation) Entity(name string) *OperationEntity {
	return o.index[name]
}

func (o *Operation) Entities() []*OperationEntity {
	return o.entities
}

func (o *Operation) Names(states ...OperationState) []string {
	var names []string
	for _, e := range o.entities {
		if len(states) == 0 {
			names = append(names, e.Name)
			continue
		}
		for _, s := range states {
			if e.State == s {
				names = append(names, e.Name)
				break
			}
		}
	}
	return names
}

func (o *Operation) Count(state OperationState) int {
	n := 0
	for _, e := range o.entities {
		if e.State == state {
			n++
		}
	}
	return n
}

// Fail marks the whole operation failed regardless of entity progress.
func (o *Operation) Fail(reason string) {
	o.failed = true
	o.reason = reason
	if o.Parent != nil && !o.Parent.failed {
		o.Parent.Fail(reason)
	}
}

// Cancel supersedes the operation, unfinished entities become cancelled.
// A parent that has not failed is superseded with it.
func (o *Operation) Cancel() {
	o.cancelled = true
	for _, e := range o.entities {
		if e.State == OperationReady || e.State == OperationInprogress {
			e.State = OperationCancelled
		}
	}
	if o.Parent != nil && !o.Parent.failed && !o.Parent.cancelled {
		o.Parent.Cancel()
	}
}

func (o *Operation) State() OperationState {
	switch {
	case o.cancelled:
		return OperationCancelled
	case o.failed:
		return OperationFailed
	}
	if o.Count(OperationReady) > 0 || o.Count(OperationInprogress) > 0 {
		return OperationInprogress
	}
	if o.Count(OperationFailed) > 0 {
		return OperationFailed
	}
	if o.Count(OperationTimedOut) > 0 {
		return OperationTimedOut
	}
	return OperationCompleted
}

// Reason returns the operation failure reason or the first entity reason.
func (o *Operation) Reason() string {
	if o.reason != "" {
		return o.reason
	}
	for _, e := range o.entities {
		if (e.State == OperationFailed || e.State == OperationTimedOut) && e.Reason != "" {
			return e.Reason
		}
	}
	return ""
}

func (o *Operation) IsInprogress() bool {
	return o.State() == OperationInprogress
}

func (o *Operation) IsCompleted() bool {
	return o.State() == OperationCompleted
}

func (o *Operation) IsFailed() bool {
	return o.State() == OperationFailed
}

func (o *Operation) IsTimedOut() bool {
	return o.State() == OperationTimedOut
}

func (o *Operation) IsCancelled() bool {
	return o.cancelled
}
