// Copyright © 2024 The vjailbreak authors

package director

import (
	"sort"
	"time"

	"github.com/openstack-archive/stx-nfv-sub001/internal/hostfsm"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/metrics"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/objects"
)

// StartRecovery arms the recovery audit.
func (d *InstanceDirector) StartRecovery() {
	d.scheduleAudit(d.cooldown)
}

func (d *InstanceDirector) scheduleAudit(after time.Duration) {
	if d.auditArmed {
		d.env.Timers.CancelTimer(d.audit)
	}
	d.audit = d.env.Timers.AddTimer("instance-recovery-audit", after, func() {
		d.auditArmed = false
		d.auditPass()
	})
	d.auditArmed = true
}

// auditPass runs one recovery pass. While instances are left waiting the
// next pass backs off, doubling up to the configured maximum.
func (d *InstanceDirector) auditPass() {
	_, backlog := d.RecoverInstances()
	if backlog > 0 {
		d.cooldown *= 2
		if d.cooldown > d.cfg.RecoveryCooldownMax {
			d.cooldown = d.cfg.RecoveryCooldownMax
		}
	} else {
		d.cooldown = d.cfg.RecoveryAuditInterval
	}
	d.scheduleAudit(d.cooldown)
}

// Cooldown returns the delay before the next recovery pass.
func (d *InstanceDirector) Cooldown() time.Duration {
	return d.cooldown
}

func hostDown(h *objects.Host) bool {
	if h == nil || h.Deleted {
		return true
	}
	return h.IsOffline() || h.AvailStatus == objects.HostAvailFailed || h.FsmState == hostfsm.StateFailed
}

func recoveryLess(a, b *objects.Instance) bool {
	ka := [5]int{objects.RecoveryPriorityLowest - a.Priority(), a.VCPUs, a.MemoryMB, a.DiskGB, a.SwapGB}
	kb := [5]int{objects.RecoveryPriorityLowest - b.Priority(), b.VCPUs, b.MemoryMB, b.DiskGB, b.SwapGB}
	for i := range ka {
		if ka[i] != kb[i] {
			return ka[i] > kb[i]
		}
	}
	return a.Name < b.Name
}

// RecoveryCandidates returns the instances needing recovery, most
// important first. Instances that are busy, already recovering or on a
// host with a live operation are left for a later pass.
func (d *InstanceDirector) RecoveryCandidates() []*objects.Instance {
	var out []*objects.Instance
	for _, inst := range d.env.Inventory.Instances() {
		if inst.IsDeleted() || !inst.AutoRecovery || d.recovering[inst.UUID] {
			continue
		}
		if d.actions.IsActionRunning(inst.UUID) {
			continue
		}
		if inst.IsMigrating() || inst.IsRebuilding() || inst.IsRebooting() || inst.IsEvacuating() {
			continue
		}
		if b, ok := d.hostOperations[inst.HostName]; ok && !b.done {
			continue
		}
		host := d.env.Inventory.Host(inst.HostName)
		if inst.IsFailed() || (hostDown(host) && inst.IsEnabled()) {
			out = append(out, inst)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return recoveryLess(out[i], out[j]) })
	return out
}

// RecoverInstances starts recovery of as many candidates as the limits
// allow. It returns how many were started and how many are left.
func (d *InstanceDirector) RecoverInstances() (int, int) {
	candidates := d.RecoveryCandidates()
	limit := d.cfg.MaxConcurrentRecoveringInstances
	if len(candidates)+len(d.recovering) > d.cfg.RecoveryThreshold {
		limit = d.cfg.MaxThrottledRecoveringInstances
	}
	started := 0
	for _, inst := range candidates {
		if len(d.recovering) >= limit {
			break
		}
		action, params, ok := d.recoveryAction(inst)
		if !ok {
			continue
		}
		if _, err := d.actions.Do(inst.UUID, action, params, objects.ActionInitiatedByDirector, "recovery"); err != nil {
			d.log.Warnf("cannot recover instance %s: %v", inst.Name, err)
			continue
		}
		d.log.Infof("recovering instance %s with %s", inst.Name, action)
		d.recovering[inst.UUID] = true
		started++
	}
	metrics.SetRecoveringInstances(len(d.recovering))
	return started, len(candidates) - started
}

// recoveryAction evacuates instances of a down host and reboots the others,
// rebuilding once the reboot attempts are used up.
func (d *InstanceDirector) recoveryAction(inst *objects.Instance) (objects.ActionType, objects.ActionParameters, bool) {
	if hostDown(d.env.Inventory.Host(inst.HostName)) {
		if reason := d.evacuateRejection(inst); reason != "" {
			d.log.Warn(reason)
			return "", objects.ActionParameters{}, false
		}
		target := d.pickHost(inst, inst.HostName)
		if target == "" {
			d.log.Warnf("no hypervisor available to evacuate instance %s", inst.Name)
			return "", objects.ActionParameters{}, false
		}
		return objects.ActionEvacuate, objects.ActionParameters{TargetHost: target}, true
	}
	if d.rebootCount[inst.UUID] < d.cfg.MaxInstanceRebootAttempts {
		d.rebootCount[inst.UUID]++
		return objects.ActionReboot, objects.ActionParameters{HardReboot: true}, true
	}
	delete(d.rebootCount, inst.UUID)
	return objects.ActionRebuild, objects.ActionParameters{}, true
}

func (d *InstanceDirector) recoveryDone(uuid string, data *objects.InstanceActionData) {
	delete(d.recovering, uuid)
	if data.State == objects.ActionStateCompleted && data.Action != objects.ActionReboot {
		delete(d.rebootCount, uuid)
	}
	metrics.SetRecoveringInstances(len(d.recovering))
}

// Recovering reports the instances with a recovery action in flight.
func (d *InstanceDirector) Recovering() int {
	return len(d.recovering)
}
