// Copyright © 2024 The vjailbreak authors

package director

import (
	"fmt"
	"time"

	"github.com/openstack-archive/stx-nfv-sub001/internal/hostfsm"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/events"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/loop"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/metrics"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/nfvi"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/objects"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/task"
	"github.com/sirupsen/logrus"
)

// HostDirector runs host operations. Each host maps to the one operation
// currently acting on it; a new operation for the host cancels the old one.
type HostDirector struct {
	env        *Env
	hosts      *hostfsm.Manager
	instances  *InstanceDirector
	operations map[string]*objects.Operation
	audit      loop.TimerID
	auditArmed bool
	log        *logrus.Entry
}

func NewHostDirector(env Env, instances *InstanceDirector) *HostDirector {
	d := &HostDirector{
		env:        &env,
		instances:  instances,
		operations: make(map[string]*objects.Operation),
		log:        logrus.WithField("component", "host-director"),
	}
	d.hosts = hostfsm.NewManager(hostfsm.Env{
		Inventory: env.Inventory,
		Gateway:   env.Gateway,
		Timers:    env.Timers,
		Instances: instances,
		Observer:  d,
	})
	return d
}

// Load restores the host machines from the inventory.
func (d *HostDirector) Load() {
	d.hosts.Load()
}

// StartAudit arms the periodic host audit.
func (d *HostDirector) StartAudit(interval time.Duration) {
	if d.auditArmed {
		d.env.Timers.CancelTimer(d.audit)
	}
	d.audit = d.env.Timers.AddTimer("host-audit", interval, func() {
		d.auditArmed = false
		d.Audit()
		d.StartAudit(interval)
	})
	d.auditArmed = true
}

// LiveOperation returns the operation currently acting on the host.
func (d *HostDirector) LiveOperation(name string) *objects.Operation {
	return d.operations[name]
}

func (d *HostDirector) HostState(name string) string {
	return d.hosts.State(name)
}

func (d *HostDirector) claim(name string, op *objects.Operation) {
	if prev, ok := d.operations[name]; ok && prev != op {
		if prev.IsInprogress() {
			d.log.Infof("%s supersedes %s on host %s", op, prev, name)
			prev.Cancel()
			recordOperation(prev)
		}
		d.release(prev)
	}
	if !d.holds(op) {
		operationStarted(op)
	}
	d.operations[name] = op
	metrics.SetLiveOperations(hostDirectorName, len(d.operations))
}

func (d *HostDirector) holds(op *objects.Operation) bool {
	for _, o := range d.operations {
		if o == op {
			return true
		}
	}
	return false
}

func (d *HostDirector) release(op *objects.Operation) {
	for name, o := range d.operations {
		if o == op {
			delete(d.operations, name)
		}
	}
	metrics.SetLiveOperations(hostDirectorName, len(d.operations))
}

// owns reports whether op is the live operation of the host and still
// waiting on it.
func (d *HostDirector) owns(name string, op *objects.Operation) bool {
	if d.operations[name] != op || !op.IsInprogress() {
		return false
	}
	e := op.Entity(name)
	return e != nil && e.State == objects.OperationInprogress
}

func (d *HostDirector) finish(op *objects.Operation) {
	if op.IsInprogress() {
		return
	}
	d.release(op)
	recordOperation(op)
	d.log.Infof("%s finished %s %s", op, op.State(), op.Reason())
}

func (d *HostDirector) entityFailed(op *objects.Operation, name string, event events.Event, reason string) {
	op.Set(name, objects.OperationFailed, reason)
	d.env.emit(event, events.HostFailure{HostName: name, Reason: reason})
	d.finish(op)
}

func (d *HostDirector) entityCompleted(op *objects.Operation, name string) {
	op.Set(name, objects.OperationCompleted, "")
	d.env.emit(events.HostStateChanged, name)
	d.finish(op)
}

// respond wraps a backend callback so it only acts while op still owns the
// host.
func (d *HostDirector) respond(op *objects.Operation, name string, event events.Event, onSuccess func(resp nfvi.Response)) nfvi.Callback {
	return func(resp nfvi.Response) {
		if !d.owns(name, op) {
			d.log.Debugf("dropping response of %s for host %s", op, name)
			return
		}
		if !resp.Completed {
			d.entityFailed(op, name, event, resp.Reason)
			return
		}
		if onSuccess != nil {
			onSuccess(resp)
		}
	}
}

func (d *HostDirector) update(name string, fn func(h *objects.Host)) {
	if _, err := d.env.Inventory.UpdateHost(name, fn); err != nil {
		d.log.Errorf("failed to update host %s: %v", name, err)
	}
}

// LockHosts moves the instances off each host, disables it and locks it.
// It fails without touching any host when an instance on one of them
// cannot be moved.
func (d *HostDirector) LockHosts(names []string) *objects.Operation {
	op := objects.NewOperation(objects.OperationLockHosts)
	hosts := resolveHosts(d.env.Inventory, op, names)
	if hosts == nil {
		return op
	}
	for _, h := range hosts {
		if h.IsLocked() {
			continue
		}
		if reason := d.instances.HostLockPrecheck(h.Name); reason != "" {
			op.Fail(reason)
			recordOperation(op)
			return op
		}
	}
	for _, h := range hosts {
		if h.IsLocked() {
			op.Set(h.Name, objects.OperationCompleted, "")
			continue
		}
		d.claim(h.Name, op)
		op.Set(h.Name, objects.OperationInprogress, "")
		if d.hosts.State(h.Name) == hostfsm.StateDisabled {
			d.lockHost(op, h.Name)
			continue
		}
		d.hosts.Disable(h.Name, false)
	}
	d.finish(op)
	return op
}

func (d *HostDirector) lockHost(op *objects.Operation, name string) {
	h := d.env.Inventory.Host(name)
	d.env.Gateway.LockHost(h.UUID, h.Name, d.respond(op, name, events.HostLockFailed, func(nfvi.Response) {
		d.update(name, func(h *objects.Host) {
			h.AdminState = objects.HostAdminLocked
			h.OperState = objects.HostOperDisabled
		})
		d.entityCompleted(op, name)
	}))
}

// UnlockHosts unlocks each host and enables it.
func (d *HostDirector) UnlockHosts(names []string) *objects.Operation {
	op := objects.NewOperation(objects.OperationUnlockHosts)
	hosts := resolveHosts(d.env.Inventory, op, names)
	if hosts == nil {
		return op
	}
	for _, h := range hosts {
		if h.IsUnlocked() && h.IsEnabled() {
			op.Set(h.Name, objects.OperationCompleted, "")
			continue
		}
		d.claim(h.Name, op)
		op.Set(h.Name, objects.OperationInprogress, "")
		if h.IsUnlocked() {
			d.hosts.Enable(h.Name)
			continue
		}
		name := h.Name
		d.env.Gateway.UnlockHost(h.UUID, h.Name, d.respond(op, name, events.HostUnlockFailed, func(nfvi.Response) {
			d.update(name, func(h *objects.Host) {
				h.AdminState = objects.HostAdminUnlocked
				h.AvailStatus = objects.HostAvailOnline
			})
			d.hosts.Enable(name)
		}))
	}
	d.finish(op)
	return op
}

func (d *HostDirector) requireLocked(op *objects.Operation, hosts []*objects.Host, verb string) bool {
	for _, h := range hosts {
		if !h.IsLocked() {
			op.Fail(fmt.Sprintf("host %s must be locked to %s", h.Name, verb))
			recordOperation(op)
			return false
		}
	}
	return true
}

func (d *HostDirector) RebootHosts(names []string) *objects.Operation {
	op := objects.NewOperation(objects.OperationRebootHosts)
	hosts := resolveHosts(d.env.Inventory, op, names)
	if hosts == nil || !d.requireLocked(op, hosts, "reboot") {
		return op
	}
	for _, h := range hosts {
		d.claim(h.Name, op)
		op.Set(h.Name, objects.OperationInprogress, "")
		name := h.Name
		d.env.Gateway.RebootHost(h.UUID, h.Name, d.respond(op, name, events.HostRebootFailed, func(nfvi.Response) {
			d.entityCompleted(op, name)
		}))
	}
	d.finish(op)
	return op
}

// UpgradeHosts installs release on each locked host. Hosts already running
// release complete right away.
func (d *HostDirector) UpgradeHosts(names []string, release string) *objects.Operation {
	op := objects.NewOperation(objects.OperationUpgradeHosts)
	hosts := resolveHosts(d.env.Inventory, op, names)
	if hosts == nil || !d.requireLocked(op, hosts, "upgrade") {
		return op
	}
	for _, h := range hosts {
		if h.SoftwareRelease == release {
			op.Set(h.Name, objects.OperationCompleted, "")
			continue
		}
		d.claim(h.Name, op)
		op.Set(h.Name, objects.OperationInprogress, "")
		name := h.Name
		d.env.Gateway.UpgradeHost(h.UUID, h.Name, release, d.respond(op, name, events.HostUpgradeFailed, func(nfvi.Response) {
			d.update(name, func(h *objects.Host) { h.SoftwareRelease = release })
			d.entityCompleted(op, name)
		}))
	}
	d.finish(op)
	return op
}

func (d *HostDirector) standbyController(active string) *objects.Host {
	for _, h := range d.env.Inventory.HostsWithPersonality(objects.PersonalityController) {
		if h.Name != active && h.IsUnlockedEnabledAvailable() {
			return h
		}
	}
	return nil
}

// SwactHosts moves the active controller role away from each host.
func (d *HostDirector) SwactHosts(names []string) *objects.Operation {
	op := objects.NewOperation(objects.OperationSwactHosts)
	hosts := resolveHosts(d.env.Inventory, op, names)
	if hosts == nil {
		return op
	}
	for _, h := range hosts {
		if h.ActiveController && d.standbyController(h.Name) == nil {
			op.Fail(fmt.Sprintf("no standby controller available to take over from %s", h.Name))
			recordOperation(op)
			return op
		}
	}
	for _, h := range hosts {
		if !h.ActiveController {
			op.Set(h.Name, objects.OperationCompleted, "")
			continue
		}
		d.claim(h.Name, op)
		op.Set(h.Name, objects.OperationInprogress, "")
		name := h.Name
		d.env.Gateway.SwactFromHost(h.UUID, h.Name, d.respond(op, name, events.HostSwactFailed, func(nfvi.Response) {
			if peer := d.standbyController(name); peer != nil {
				d.update(peer.Name, func(h *objects.Host) { h.ActiveController = true })
			}
			d.update(name, func(h *objects.Host) { h.ActiveController = false })
			d.entityCompleted(op, name)
		}))
	}
	d.finish(op)
	return op
}

func (d *HostDirector) DisableHostServices(names []string, service objects.HostService) *objects.Operation {
	return d.hostServices(objects.OperationDisableHostServices, names, service, false)
}

func (d *HostDirector) EnableHostServices(names []string, service objects.HostService) *objects.Operation {
	return d.hostServices(objects.OperationEnableHostServices, names, service, true)
}

func (d *HostDirector) hostServices(opType objects.OperationType, names []string, service objects.HostService, enable bool) *objects.Operation {
	op := objects.NewOperation(opType)
	hosts := resolveHosts(d.env.Inventory, op, names)
	if hosts == nil {
		return op
	}
	want := objects.HostServiceDisabled
	failed := events.HostDisableServicesFailed
	if enable {
		want = objects.HostServiceEnabled
		failed = events.HostEnableServicesFailed
	}
	for _, h := range hosts {
		if h.ServiceState(service) == want {
			op.Set(h.Name, objects.OperationCompleted, "")
			continue
		}
		d.claim(h.Name, op)
		op.Set(h.Name, objects.OperationInprogress, "")
		name := h.Name
		d.hosts.RunServices(name, service, enable, func(result task.Result, reason string) {
			if !d.owns(name, op) {
				return
			}
			if result != task.Success {
				d.entityFailed(op, name, failed, reason)
				return
			}
			d.entityCompleted(op, name)
		})
	}
	d.finish(op)
	return op
}

// HostStateChanged is called by the host machines each time one settles.
func (d *HostDirector) HostStateChanged(name, from, to, reason string) {
	d.env.emit(events.HostStateChanged, name)
	op := d.operations[name]
	if op == nil || !d.owns(name, op) {
		return
	}
	switch op.Type {
	case objects.OperationLockHosts:
		switch to {
		case hostfsm.StateDisabled:
			d.lockHost(op, name)
		case hostfsm.StateDisablingFailed, hostfsm.StateFailed:
			d.entityFailed(op, name, events.HostLockFailed, reason)
		}
	case objects.OperationUnlockHosts:
		switch to {
		case hostfsm.StateEnabled:
			d.entityCompleted(op, name)
		case hostfsm.StateFailed:
			d.entityFailed(op, name, events.HostUnlockFailed, reason)
		}
	}
}

// HostFailed reports a host the infrastructure declared failed.
func (d *HostDirector) HostFailed(name, reason string) {
	d.hosts.Failed(name, reason)
}

// Audit brings the host machines in line with the inventory and wakes up
// everything waiting on host state.
func (d *HostDirector) Audit() {
	for _, h := range d.env.Inventory.Hosts() {
		if h.Deleted || !h.IsUnlocked() || d.operations[h.Name] != nil {
			continue
		}
		state := d.hosts.State(h.Name)
		switch {
		case h.IsOffline() && state != hostfsm.StateFailed:
			d.hosts.Failed(h.Name, fmt.Sprintf("host %s is %s", h.Name, h.AvailStatus))
		case state == hostfsm.StateInitial && h.IsAvailable():
			d.hosts.Enable(h.Name)
		}
	}
	d.env.emit(events.HostAudit, nil)
}

// HandleEvent hands events to the running host tasks.
func (d *HostDirector) HandleEvent(event events.Event, data interface{}) {
	d.hosts.HandleEvent(event, data)
}
