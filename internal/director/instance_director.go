// Copyright © 2024 The vjailbreak authors

package director

import (
	"fmt"
	"time"

	"github.com/openstack-archive/stx-nfv-sub001/internal/instancefsm"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/config"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/events"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/loop"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/metrics"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/objects"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/utils"
	"github.com/sirupsen/logrus"
)

// choice is what a batch does with one instance.
type choice struct {
	action objects.ActionType
	params objects.ActionParameters
	// skip marks an instance that is already where the batch wants it.
	skip bool
	// reject fails the whole operation, fail only this instance.
	reject string
	fail   string
}

type chooser func(inst *objects.Instance) choice

// batch drives the instance actions of one operation, at most limit at a
// time when limit is positive.
type batch struct {
	op     *objects.Operation
	hosts  []string
	limit  int
	choose chooser
	onDone func(b *batch)
	done   bool
}

// InstanceDirector runs instance operations and the recovery audit.
type InstanceDirector struct {
	cfg            config.InstanceDirectorConfig
	env            *Env
	actions        *instancefsm.Manager
	hostOperations map[string]*batch
	pending        map[string]*batch
	rebootCount    map[string]int
	recovering     map[string]bool
	cooldown       time.Duration
	audit          loop.TimerID
	auditArmed     bool
	log            *logrus.Entry
}

func NewInstanceDirector(cfg config.InstanceDirectorConfig, env Env) *InstanceDirector {
	d := &InstanceDirector{
		cfg:            cfg,
		env:            &env,
		hostOperations: make(map[string]*batch),
		pending:        make(map[string]*batch),
		rebootCount:    make(map[string]int),
		recovering:     make(map[string]bool),
		cooldown:       cfg.RecoveryAuditInterval,
		log:            logrus.WithField("component", "instance-director"),
	}
	d.actions = instancefsm.NewManager(instancefsm.Env{
		Inventory: env.Inventory,
		Gateway:   env.Gateway,
		Timers:    env.Timers,
		Observer:  d,
	})
	return d
}

// Load settles instance actions interrupted by a restart.
func (d *InstanceDirector) Load() {
	d.actions.Load()
}

// Actions exposes the per-instance action machines.
func (d *InstanceDirector) Actions() *instancefsm.Manager {
	return d.actions
}

// LiveOperation returns the operation currently acting on the instances of
// the host.
func (d *InstanceDirector) LiveOperation(hostName string) *objects.Operation {
	if b, ok := d.hostOperations[hostName]; ok {
		return b.op
	}
	return nil
}

func (d *InstanceDirector) register(b *batch) {
	operationStarted(b.op)
	for _, host := range b.hosts {
		if prev, ok := d.hostOperations[host]; ok && prev != b {
			d.cancel(prev)
		}
		d.hostOperations[host] = b
	}
	metrics.SetLiveOperations(instanceDirectorName, len(d.hostOperations))
}

func (d *InstanceDirector) cancel(b *batch) {
	if b.done {
		return
	}
	d.log.Infof("cancelling %s", b.op)
	b.done = true
	b.op.Cancel()
	d.unregister(b)
	recordOperation(b.op)
	if b.onDone != nil {
		b.onDone(b)
	}
}

func (d *InstanceDirector) unregister(b *batch) {
	for _, host := range b.hosts {
		if d.hostOperations[host] == b {
			delete(d.hostOperations, host)
		}
	}
	for uuid, p := range d.pending {
		if p == b {
			delete(d.pending, uuid)
		}
	}
	metrics.SetLiveOperations(instanceDirectorName, len(d.hostOperations))
}

func (d *InstanceDirector) dispatch(b *batch) {
	if b.done {
		return
	}
	inflight := b.op.Count(objects.OperationInprogress)
	for _, uuid := range b.op.Names(objects.OperationReady) {
		if !b.op.IsInprogress() || (b.limit > 0 && inflight >= b.limit) {
			break
		}
		inst := d.env.Inventory.Instance(uuid)
		if inst == nil || inst.IsDeleted() {
			b.op.Set(uuid, objects.OperationCompleted, "")
			continue
		}
		c := b.choose(inst)
		switch {
		case c.reject != "":
			b.op.Fail(c.reject)
			continue
		case c.fail != "":
			b.op.Set(uuid, objects.OperationFailed, c.fail)
			continue
		case c.skip:
			b.op.Set(uuid, objects.OperationCompleted, "")
			continue
		}
		if _, err := d.actions.Do(uuid, c.action, c.params, objects.ActionInitiatedByDirector, string(b.op.Type)); err != nil {
			b.op.Set(uuid, objects.OperationFailed, fmt.Sprintf("instance %s: %v", inst.Name, err))
			continue
		}
		d.pending[uuid] = b
		b.op.Set(uuid, objects.OperationInprogress, "")
		inflight++
	}
	d.settle(b)
}

func (d *InstanceDirector) settle(b *batch) {
	if b.done || b.op.IsInprogress() {
		return
	}
	b.done = true
	d.unregister(b)
	recordOperation(b.op)
	d.log.Infof("%s finished %s %s", b.op, b.op.State(), b.op.Reason())
	if b.onDone != nil {
		b.onDone(b)
	}
}

// InstanceActionDone is called by the action machines.
func (d *InstanceDirector) InstanceActionDone(uuid string, data *objects.InstanceActionData) {
	if d.recovering[uuid] && data.InitiatedBy == objects.ActionInitiatedByDirector {
		d.recoveryDone(uuid, data)
	}
	b, ok := d.pending[uuid]
	if !ok {
		d.env.emit(events.InstanceStateChanged, uuid)
		return
	}
	delete(d.pending, uuid)
	if b.done {
		return
	}
	if data.State == objects.ActionStateCompleted {
		b.op.Set(uuid, objects.OperationCompleted, "")
	} else {
		name := uuid
		if inst := d.env.Inventory.Instance(uuid); inst != nil {
			name = inst.Name
		}
		b.op.Set(uuid, objects.OperationFailed, fmt.Sprintf("%s of instance %s %s: %s", data.Action, name, data.State, data.Reason))
	}
	d.env.emit(events.InstanceStateChanged, uuid)
	d.dispatch(b)
}

// InstanceUpdated stores an instance reported by the inventory sync.
func (d *InstanceDirector) InstanceUpdated(inst *objects.Instance) error {
	prev := d.env.Inventory.Instance(inst.UUID)
	if prev != nil {
		inst = inst.Clone()
		inst.ActionData = prev.ActionData
		inst.LastActionData = prev.LastActionData
		if inst.FailureReason == "" {
			inst.FailureReason = prev.FailureReason
		}
		if prev.OperState != inst.OperState || prev.StateEnteredAt.IsZero() {
			inst.StateEnteredAt = d.env.Timers.Now()
		} else {
			inst.StateEnteredAt = prev.StateEnteredAt
		}
	}
	if err := d.env.Inventory.PutInstance(inst); err != nil {
		return err
	}
	d.env.emit(events.InstanceStateChanged, inst.UUID)
	return nil
}

// migrateRejection names why the system cannot migrate the instance.
func (d *InstanceDirector) migrateRejection(inst *objects.Instance) string {
	switch {
	case inst.IsLocked():
		return fmt.Sprintf("instance %s is locked", inst.Name)
	case inst.IsPaused() && !inst.SupportsLiveMigration():
		return fmt.Sprintf("instance %s is paused and can only be cold migrated", inst.Name)
	case inst.IsSuspended():
		return fmt.Sprintf("instance %s is suspended", inst.Name)
	case inst.IsMigrating():
		return fmt.Sprintf("instance %s is already migrating", inst.Name)
	case inst.IsRebuilding():
		return fmt.Sprintf("instance %s is rebuilding", inst.Name)
	case inst.IsResized():
		return fmt.Sprintf("instance %s is resized and waiting for confirmation", inst.Name)
	}
	if cur := d.actions.Current(inst.UUID); cur != nil {
		return fmt.Sprintf("instance %s has %s in progress", inst.Name, cur.Action)
	}
	if !inst.SupportsLiveMigration() && inst.LocalImage && inst.DiskGB > d.cfg.MaxColdMigrateLocalImageDiskGB {
		return fmt.Sprintf("instance %s local disk of %dGB exceeds the %dGB cold migrate limit",
			inst.Name, inst.DiskGB, d.cfg.MaxColdMigrateLocalImageDiskGB)
	}
	return ""
}

func (d *InstanceDirector) evacuateRejection(inst *objects.Instance) string {
	if inst.LocalImage && inst.DiskGB > d.cfg.MaxEvacuateLocalImageDiskGB {
		return fmt.Sprintf("instance %s local disk of %dGB exceeds the %dGB evacuate limit",
			inst.Name, inst.DiskGB, d.cfg.MaxEvacuateLocalImageDiskGB)
	}
	return ""
}

// pickHost returns the least loaded enabled hypervisor other than from
// that holds no anti-affinity peer of inst.
func (d *InstanceDirector) pickHost(inst *objects.Instance, from string) string {
	peers := make(map[string]bool)
	for _, g := range d.env.Inventory.InstanceGroupsOf(inst.UUID) {
		if !g.IsAntiAffinity() {
			continue
		}
		for _, member := range g.Members {
			if member == inst.UUID {
				continue
			}
			if m := d.env.Inventory.Instance(member); m != nil {
				peers[m.HostName] = true
			}
		}
	}
	best, load := "", -1
	for _, h := range d.env.Inventory.HostsWithPersonality(objects.PersonalityWorker) {
		if h.Name == from || peers[h.Name] || !h.IsUnlockedEnabledAvailable() {
			continue
		}
		if h.ServiceState(objects.HostServiceCompute) != objects.HostServiceEnabled {
			continue
		}
		if b, ok := d.hostOperations[h.Name]; ok && !b.done {
			continue
		}
		n := len(d.env.Inventory.InstancesOnHost(h.Name))
		if load < 0 || n < load {
			best, load = h.Name, n
		}
	}
	return best
}

// migrateChooser moves instances off hostName. Stopped instances stay when
// keepStopped is set; with force, instances that cannot move are stopped.
func (d *InstanceDirector) migrateChooser(hostName string, force, keepStopped bool) chooser {
	return func(inst *objects.Instance) choice {
		if inst.HostName != hostName || (keepStopped && inst.IsDisabled()) {
			return choice{skip: true}
		}
		stop := choice{action: objects.ActionStop}
		if inst.IsDisabled() {
			stop.skip = true
		}
		if reason := d.migrateRejection(inst); reason != "" {
			if force {
				return stop
			}
			return choice{reject: reason}
		}
		target := d.pickHost(inst, hostName)
		if target == "" {
			if force {
				return stop
			}
			return choice{reject: fmt.Sprintf("no other hypervisor available to migrate instance %s", inst.Name)}
		}
		action := objects.ActionColdMigrate
		if inst.SupportsLiveMigration() && (inst.IsEnabled() || inst.IsPaused()) {
			action = objects.ActionLiveMigrate
		}
		return choice{action: action, params: objects.ActionParameters{TargetHost: target}}
	}
}

func (d *InstanceDirector) evacuateChooser(hostName string) chooser {
	return func(inst *objects.Instance) choice {
		if inst.HostName != hostName {
			return choice{skip: true}
		}
		if reason := d.evacuateRejection(inst); reason != "" {
			return choice{fail: reason}
		}
		target := d.pickHost(inst, hostName)
		if target == "" {
			return choice{fail: fmt.Sprintf("no other hypervisor available to evacuate instance %s", inst.Name)}
		}
		return choice{action: objects.ActionEvacuate, params: objects.ActionParameters{TargetHost: target}}
	}
}

// HostLockPrecheck returns why the host cannot be emptied, naming the
// blocking instance, or "" when it can.
func (d *InstanceDirector) HostLockPrecheck(hostName string) string {
	choose := d.migrateChooser(hostName, false, true)
	for _, inst := range d.env.Inventory.InstancesOnHost(hostName) {
		if c := choose(inst); c.reject != "" {
			return c.reject
		}
	}
	return ""
}

// HostOperation clears the instances off a host for the host machine.
func (d *InstanceDirector) HostOperation(hostName string, opType objects.OperationType) *objects.Operation {
	op := objects.NewOperation(opType)
	b := &batch{op: op, hosts: []string{hostName}}
	switch opType {
	case objects.OperationHostLock:
		b.choose, b.limit = d.migrateChooser(hostName, false, true), d.cfg.MaxConcurrentMigratesPerHost
	case objects.OperationHostLockForce:
		b.choose, b.limit = d.migrateChooser(hostName, true, true), d.cfg.MaxConcurrentMigratesPerHost
	case objects.OperationHostDisable, objects.OperationHostFailed:
		b.choose, b.limit = d.evacuateChooser(hostName), d.cfg.MaxConcurrentEvacuatesPerHost
	default:
		op.Fail(fmt.Sprintf("unsupported host operation %s", opType))
		return op
	}
	for _, inst := range d.env.Inventory.InstancesOnHost(hostName) {
		op.Add(inst.UUID, objects.OperationReady)
	}
	b.onDone = func(b *batch) {
		if b.op.IsCancelled() {
			return
		}
		if b.op.IsCompleted() {
			d.env.emit(events.InstancesMoved, events.HostInstances{HostName: hostName, OperationType: string(opType)})
			return
		}
		d.env.emit(events.MigrateInstancesFailed, events.InstancesFailure{
			HostName:      hostName,
			InstanceUUIDs: b.op.Names(objects.OperationFailed, objects.OperationTimedOut),
			Reason:        b.op.Reason(),
		})
	}
	if opType == objects.OperationHostLock {
		if reason := d.HostLockPrecheck(hostName); reason != "" {
			op.Fail(reason)
			recordOperation(op)
			return op
		}
	}
	d.register(b)
	d.dispatch(b)
	return op
}

func (d *InstanceDirector) CancelHostOperation(hostName string) {
	if b, ok := d.hostOperations[hostName]; ok {
		d.cancel(b)
	}
}

// perHost splits uuids by host and runs one child operation per host under
// a parent operation covering every instance.
func (d *InstanceDirector) perHost(opType objects.OperationType, uuids []string, limit int,
	chooserFor func(host string) chooser, failed events.Event, precheck bool) *objects.Operation {
	parent := objects.NewOperation(opType)
	byHost := make(map[string][]string)
	var hosts []string
	for _, uuid := range uuids {
		parent.Add(uuid, objects.OperationReady)
	}
	for _, uuid := range uuids {
		inst := d.env.Inventory.Instance(uuid)
		if inst == nil {
			parent.Fail(fmt.Sprintf("unknown instance %s", uuid))
			recordOperation(parent)
			return parent
		}
		if inst.IsDeleted() {
			parent.Set(uuid, objects.OperationCompleted, "")
			continue
		}
		if precheck {
			if c := chooserFor(inst.HostName)(inst); c.reject != "" {
				parent.Fail(c.reject)
				recordOperation(parent)
				return parent
			}
		}
		if _, ok := byHost[inst.HostName]; !ok {
			hosts = append(hosts, inst.HostName)
		}
		byHost[inst.HostName] = append(byHost[inst.HostName], uuid)
	}
	utils.SortNatural(hosts)
	var children []*batch
	reported := false
	onDone := func(*batch) {
		if reported || parent.IsInprogress() {
			return
		}
		reported = true
		if !parent.IsCompleted() {
			for _, c := range children {
				d.cancel(c)
			}
		}
		d.parentDone(parent, failed)
	}
	for _, host := range hosts {
		child := objects.NewOperation(opType)
		child.Parent = parent
		for _, uuid := range byHost[host] {
			child.Add(uuid, objects.OperationReady)
		}
		b := &batch{op: child, hosts: []string{host}, limit: limit, choose: chooserFor(host), onDone: onDone}
		children = append(children, b)
		d.register(b)
	}
	for _, b := range children {
		d.dispatch(b)
	}
	onDone(nil)
	return parent
}

func (d *InstanceDirector) parentDone(parent *objects.Operation, failed events.Event) {
	recordOperation(parent)
	if parent.IsCancelled() {
		d.log.Infof("%s superseded", parent)
		d.env.emit(events.InstancesSuperseded, events.HostInstances{OperationType: string(parent.Type)})
		return
	}
	if parent.IsCompleted() {
		d.env.emit(events.InstancesMoved, events.HostInstances{OperationType: string(parent.Type)})
		return
	}
	d.env.emit(failed, events.InstancesFailure{
		InstanceUUIDs: parent.Names(objects.OperationFailed, objects.OperationTimedOut),
		Reason:        parent.Reason(),
	})
}

// MigrateInstances moves each instance off its current host, live when
// possible and cold otherwise.
func (d *InstanceDirector) MigrateInstances(uuids []string) *objects.Operation {
	return d.perHost(objects.OperationMigrateInstances, uuids, d.cfg.MaxConcurrentMigratesPerHost,
		func(host string) chooser { return d.migrateChooser(host, false, false) },
		events.MigrateInstancesFailed, true)
}

func (d *InstanceDirector) StopInstances(uuids []string) *objects.Operation {
	return d.perHost(objects.OperationStopInstances, uuids, 0,
		func(string) chooser {
			return func(inst *objects.Instance) choice {
				if inst.IsDisabled() {
					return choice{skip: true}
				}
				return choice{action: objects.ActionStop}
			}
		}, events.StopInstancesFailed, false)
}

func startChooser(inst *objects.Instance) choice {
	if inst.IsEnabled() {
		return choice{skip: true}
	}
	return choice{action: objects.ActionStart}
}

// StartInstances starts the instances, one at a time in the given order
// when serial.
func (d *InstanceDirector) StartInstances(uuids []string, serial bool) *objects.Operation {
	if !serial {
		return d.perHost(objects.OperationStartInstances, uuids, 0,
			func(string) chooser { return startChooser }, events.StartInstancesFailed, false)
	}
	op := objects.NewOperation(objects.OperationStartInstances)
	var hosts []string
	for _, uuid := range uuids {
		op.Add(uuid, objects.OperationReady)
		inst := d.env.Inventory.Instance(uuid)
		if inst == nil {
			op.Fail(fmt.Sprintf("unknown instance %s", uuid))
			recordOperation(op)
			return op
		}
		if !utils.Contains(hosts, inst.HostName) {
			hosts = append(hosts, inst.HostName)
		}
	}
	b := &batch{op: op, hosts: hosts, limit: 1, choose: startChooser, onDone: func(b *batch) {
		d.parentDone(b.op, events.StartInstancesFailed)
	}}
	d.register(b)
	d.dispatch(b)
	return op
}
