// Copyright © 2024 The vjailbreak authors

package hostfsm

import (
	"fmt"

	"github.com/openstack-archive/stx-nfv-sub001/pkg/constants"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/events"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/nfvi"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/objects"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/task"
)

// hostWork is embedded by every work that targets a host.
type hostWork struct {
	task.WorkBase
	host *Host
}

// target returns the current host record, or nil once the host is gone.
func (w *hostWork) target() *objects.Host {
	rec := w.host.record()
	if rec == nil || rec.Deleted {
		return nil
	}
	return rec
}

type enableServicesWork struct {
	hostWork
	service objects.HostService
}

func newEnableServicesWork(h *Host, service objects.HostService) *enableServicesWork {
	return &enableServicesWork{
		hostWork: hostWork{
			WorkBase: task.NewWorkBase(fmt.Sprintf("enable-host-services-%s", service), constants.HostServicesTimeout, false),
			host:     h,
		},
		service: service,
	}
}

func (w *enableServicesWork) Run() (task.Result, string) {
	rec := w.target()
	if rec == nil {
		return task.Failed, "host no longer exists"
	}
	w.host.env.Gateway.EnableHostServices(rec.UUID, rec.Name, w.service, func(resp nfvi.Response) {
		if !resp.Completed {
			w.host.update(func(h *objects.Host) { h.SetServiceState(w.service, objects.HostServiceFailed) })
			w.Complete(task.Failed, resp.Reason)
			return
		}
		w.host.update(func(h *objects.Host) { h.SetServiceState(w.service, objects.HostServiceEnabled) })
		w.Complete(task.Success, "")
	})
	return task.Wait, ""
}

type disableServicesWork struct {
	hostWork
	service objects.HostService
	// optional skips hosts that do not report the service.
	optional bool
}

func newDisableServicesWork(h *Host, service objects.HostService) *disableServicesWork {
	return &disableServicesWork{
		hostWork: hostWork{
			WorkBase: task.NewWorkBase(fmt.Sprintf("disable-host-services-%s", service), constants.HostServicesTimeout, false),
			host:     h,
		},
		service: service,
	}
}

// newDisableNetworkServicesWork disables the network agents of hosts that
// run them. A backend that cannot manage network services does not hold
// the host back.
func newDisableNetworkServicesWork(h *Host) *disableServicesWork {
	return &disableServicesWork{
		hostWork: hostWork{
			WorkBase: task.NewWorkBase(fmt.Sprintf("disable-host-services-%s", objects.HostServiceNetwork), constants.HostServicesTimeout, true),
			host:     h,
		},
		service:  objects.HostServiceNetwork,
		optional: true,
	}
}

func (w *disableServicesWork) Run() (task.Result, string) {
	rec := w.target()
	if rec == nil {
		return task.Failed, "host no longer exists"
	}
	if _, ok := rec.Services[w.service]; w.optional && !ok {
		return task.Success, ""
	}
	if rec.ServiceState(w.service) == objects.HostServiceDisabled {
		return task.Success, ""
	}
	w.host.env.Gateway.DisableHostServices(rec.UUID, rec.Name, w.service, func(resp nfvi.Response) {
		if !resp.Completed {
			w.Complete(task.Failed, resp.Reason)
			return
		}
		w.host.update(func(h *objects.Host) { h.SetServiceState(w.service, objects.HostServiceDisabled) })
		w.Complete(task.Success, "")
	})
	return task.Wait, ""
}

// notifyWork tells the infrastructure about a service transition. Failing
// to notify never blocks the host.
type notifyWork struct {
	hostWork
	call func(uuid, name string, cb nfvi.Callback)
}

func newNotifyServicesEnabledWork(h *Host) *notifyWork {
	return &notifyWork{
		hostWork: hostWork{
			WorkBase: task.NewWorkBase("notify-host-services-enabled", constants.HostNotifyTimeout, true),
			host:     h,
		},
		call: h.env.Gateway.NotifyHostServicesEnabled,
	}
}

func newNotifyServicesDisabledWork(h *Host) *notifyWork {
	return &notifyWork{
		hostWork: hostWork{
			WorkBase: task.NewWorkBase("notify-host-services-disabled", constants.HostNotifyTimeout, true),
			host:     h,
		},
		call: h.env.Gateway.NotifyHostServicesDisabled,
	}
}

func (w *notifyWork) Run() (task.Result, string) {
	rec := w.target()
	if rec == nil {
		return task.Failed, "host no longer exists"
	}
	w.call(rec.UUID, rec.Name, func(resp nfvi.Response) {
		if !resp.Completed {
			w.Complete(task.Failed, resp.Reason)
			return
		}
		w.Complete(task.Success, "")
	})
	return task.Wait, ""
}

// notifyInstancesWork asks the instance director to clear the host and
// waits for it to report back.
type notifyInstancesWork struct {
	hostWork
	opType objects.OperationType
}

func newNotifyInstancesWork(h *Host, opType objects.OperationType) *notifyInstancesWork {
	return &notifyInstancesWork{
		hostWork: hostWork{
			WorkBase: task.NewWorkBase("notify-instances-host-disabling", constants.HostInstancesMoveTimeout, false),
			host:     h,
		},
		opType: opType,
	}
}

func (w *notifyInstancesWork) Run() (task.Result, string) {
	if w.host.env.Instances == nil {
		return task.Success, ""
	}
	op := w.host.env.Instances.HostOperation(w.host.name, w.opType)
	switch {
	case op.IsCompleted():
		return task.Success, ""
	case op.IsInprogress():
		return task.Wait, ""
	}
	return task.Failed, op.Reason()
}

func (w *notifyInstancesWork) HandleEvent(event events.Event, data interface{}) bool {
	switch event {
	case events.InstancesMoved:
		if d, ok := data.(events.HostInstances); ok && d.HostName == w.host.name {
			w.Complete(task.Success, "")
			return true
		}
	case events.MigrateInstancesFailed:
		if d, ok := data.(events.InstancesFailure); ok && d.HostName == w.host.name {
			w.Complete(task.Failed, d.Reason)
			return true
		}
	}
	return false
}

func (w *notifyInstancesWork) TimedOut() (task.Result, string) {
	return task.TimedOut, fmt.Sprintf("instances on host %s did not move in time", w.host.name)
}

func (w *notifyInstancesWork) Abort() {
	if w.host.env.Instances != nil {
		w.host.env.Instances.CancelHostOperation(w.host.name)
	}
}
