// Copyright © 2024 The vjailbreak authors

package hostfsm

import (
	"github.com/openstack-archive/stx-nfv-sub001/pkg/fsm"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/objects"
)

func owner(m *fsm.Machine) *Host {
	return m.Owner().(*Host)
}

func reasonOf(data interface{}) string {
	if s, ok := data.(string); ok {
		return s
	}
	return ""
}

type noop struct{}

func (noop) Enter(*fsm.Machine, fsm.Event, interface{}) {}

func (noop) Exit(*fsm.Machine) {}

type initialState struct{ noop }

func (initialState) Name() string { return StateInitial }

func (initialState) HandleEvent(m *fsm.Machine, event fsm.Event, data interface{}) string {
	switch event {
	case EventEnable:
		return StateEnabling
	case EventDisable, EventDisableForce:
		owner(m).setOpType(event)
		return StateDisabling
	case EventFailed:
		owner(m).reason = reasonOf(data)
		return StateFailed
	}
	return ""
}

type enablingState struct{}

func (enablingState) Name() string { return StateEnabling }

func (enablingState) Enter(m *fsm.Machine, _ fsm.Event, _ interface{}) {
	h := owner(m)
	h.reason = ""
	h.startTask("enable",
		newEnableServicesWork(h, objects.HostServiceCompute),
		newNotifyServicesEnabledWork(h),
	)
}

func (enablingState) Exit(m *fsm.Machine) {
	owner(m).abortTask()
}

func (enablingState) HandleEvent(m *fsm.Machine, event fsm.Event, data interface{}) string {
	h := owner(m)
	switch event {
	case EventTaskCompleted:
		return StateEnabled
	case EventTaskFailed, EventFailed:
		h.reason = reasonOf(data)
		return StateFailed
	case EventDisable, EventDisableForce:
		h.setOpType(event)
		return StateDisabling
	}
	return ""
}

type enabledState struct{}

func (enabledState) Name() string { return StateEnabled }

func (enabledState) Enter(m *fsm.Machine, _ fsm.Event, _ interface{}) {
	h := owner(m)
	h.update(func(rec *objects.Host) {
		rec.OperState = objects.HostOperEnabled
		rec.AvailStatus = objects.HostAvailAvailable
		rec.FailureReason = ""
	})
	h.settled(StateEnabled)
}

func (enabledState) Exit(*fsm.Machine) {}

func (enabledState) HandleEvent(m *fsm.Machine, event fsm.Event, data interface{}) string {
	h := owner(m)
	switch event {
	case EventDisable, EventDisableForce:
		h.setOpType(event)
		return StateDisabling
	case EventFailed:
		h.reason = reasonOf(data)
		return StateFailed
	case EventEnable:
		h.settled(StateEnabled)
	}
	return ""
}

type disablingState struct{}

func (disablingState) Name() string { return StateDisabling }

func (disablingState) Enter(m *fsm.Machine, _ fsm.Event, _ interface{}) {
	h := owner(m)
	h.reason = ""
	if h.opType == "" {
		h.opType = objects.OperationHostLock
	}
	h.startTask("disable",
		newNotifyInstancesWork(h, h.opType),
		newDisableServicesWork(h, objects.HostServiceCompute),
		newDisableNetworkServicesWork(h),
		newNotifyServicesDisabledWork(h),
	)
}

func (disablingState) Exit(m *fsm.Machine) {
	owner(m).abortTask()
}

func (disablingState) HandleEvent(m *fsm.Machine, event fsm.Event, data interface{}) string {
	h := owner(m)
	switch event {
	case EventTaskCompleted:
		return StateDisabled
	case EventTaskFailed:
		h.reason = reasonOf(data)
		return StateDisablingFailed
	case EventEnable:
		return StateEnabling
	case EventFailed:
		h.reason = reasonOf(data)
		return StateFailed
	}
	return ""
}

type disablingFailedState struct{}

func (disablingFailedState) Name() string { return StateDisablingFailed }

func (disablingFailedState) Enter(m *fsm.Machine, _ fsm.Event, _ interface{}) {
	h := owner(m)
	h.update(func(rec *objects.Host) { rec.FailureReason = h.reason })
	h.settled(StateDisablingFailed)
}

func (disablingFailedState) Exit(*fsm.Machine) {}

func (disablingFailedState) HandleEvent(m *fsm.Machine, event fsm.Event, data interface{}) string {
	h := owner(m)
	switch event {
	case EventEnable:
		return StateEnabling
	case EventDisable, EventDisableForce:
		h.setOpType(event)
		return StateDisabling
	case EventFailed:
		h.reason = reasonOf(data)
		return StateFailed
	}
	return ""
}

type disabledState struct{}

func (disabledState) Name() string { return StateDisabled }

func (disabledState) Enter(m *fsm.Machine, _ fsm.Event, _ interface{}) {
	h := owner(m)
	h.update(func(rec *objects.Host) { rec.OperState = objects.HostOperDisabled })
	h.settled(StateDisabled)
}

func (disabledState) Exit(*fsm.Machine) {}

func (disabledState) HandleEvent(m *fsm.Machine, event fsm.Event, data interface{}) string {
	h := owner(m)
	switch event {
	case EventEnable:
		return StateEnabling
	case EventFailed:
		h.reason = reasonOf(data)
		return StateFailed
	case EventDisable, EventDisableForce:
		h.settled(StateDisabled)
	}
	return ""
}

type failedState struct{}

func (failedState) Name() string { return StateFailed }

func (failedState) Enter(m *fsm.Machine, _ fsm.Event, _ interface{}) {
	h := owner(m)
	h.update(func(rec *objects.Host) {
		rec.OperState = objects.HostOperDisabled
		rec.AvailStatus = objects.HostAvailFailed
		rec.FailureReason = h.reason
	})
	if h.env.Instances != nil {
		h.env.Instances.HostOperation(h.name, objects.OperationHostFailed)
	}
	h.settled(StateFailed)
}

func (failedState) Exit(*fsm.Machine) {}

func (failedState) HandleEvent(m *fsm.Machine, event fsm.Event, data interface{}) string {
	h := owner(m)
	switch event {
	case EventEnable:
		return StateEnabling
	case EventDisable, EventDisableForce:
		return StateDisabled
	case EventFailed:
		h.reason = reasonOf(data)
	}
	return ""
}

func (h *Host) setOpType(event fsm.Event) {
	if event == EventDisableForce {
		h.opType = objects.OperationHostLockForce
		return
	}
	h.opType = objects.OperationHostLock
}
