// Copyright © 2024 The vjailbreak authors

package strategy

import (
	"fmt"
	"strings"

	"github.com/openstack-archive/stx-nfv-sub001/pkg/objects"
)

// upgradeOrchestratable lists the upgrade states a sw-upgrade strategy can
// pick up from.
var upgradeOrchestratable = map[objects.UpgradeState]bool{
	objects.UpgradeStarted:               true,
	objects.UpgradeDataMigrationComplete: true,
	objects.UpgradeUpgradingControllers:  true,
	objects.UpgradeUpgradingHosts:        true,
}

// tiers holds the hosts to update, split by the tier that schedules them.
type tiers struct {
	controllers []*objects.Host
	storage     []*objects.Host
	workers     []*objects.Host
}

func (t tiers) empty() bool {
	return len(t.controllers)+len(t.storage)+len(t.workers) == 0
}

func (s *Strategy) targets() tiers {
	var t tiers
	for _, h := range s.env.Inventory.Hosts() {
		if h.Deleted || h.SoftwareRelease == s.Release {
			continue
		}
		switch {
		case h.HasPersonality(objects.PersonalityController):
			if s.ControllerApplyType != ApplyIgnore {
				t.controllers = append(t.controllers, h)
			}
		case h.HasPersonality(objects.PersonalityStorage):
			if s.StorageApplyType != ApplyIgnore {
				t.storage = append(t.storage, h)
			}
		case h.HasPersonality(objects.PersonalityWorker):
			if s.WorkerApplyType != ApplyIgnore {
				t.workers = append(t.workers, h)
			}
		}
	}
	return t
}

// buildApplyPhase fills the apply phase from the inventory and the answers
// of the build queries. It returns why no plan can be made, leaving the
// apply phase empty, or "" on success.
func (s *Strategy) buildApplyPhase() string {
	if ids := blockingAlarms(s.Alarms, s.AlarmRestrictions, nil); len(ids) > 0 {
		return fmt.Sprintf("active alarms present [ %s ]", strings.Join(ids, ", "))
	}
	inv := s.env.Inventory
	for _, h := range inv.HostsWithPersonality(objects.PersonalityController) {
		if !h.IsUnlockedEnabledAvailable() {
			return fmt.Sprintf("all controller hosts must be unlocked-enabled-available, %s is %s-%s-%s",
				h.Name, h.AdminState, h.OperState, h.AvailStatus)
		}
	}

	startUpgrade := false
	switch s.Type {
	case TypeSwUpgrade:
		if s.Upgrade == nil {
			startUpgrade = true
		} else if !upgradeOrchestratable[s.Upgrade.State] {
			return fmt.Sprintf("invalid upgrade state for orchestration: %s", s.Upgrade.State)
		}
	case TypeSwPatch:
		if s.Upgrade != nil && s.Upgrade.State != objects.UpgradeCompleted {
			return fmt.Sprintf("cannot patch while an upgrade is %s", s.Upgrade.State)
		}
	}

	t := s.targets()
	if s.Type == TypeSwPatch && t.empty() {
		return "no hosts need to be patched"
	}
	if s.DefaultInstanceAction == InstanceMigrate {
		for _, h := range append(append([]*objects.Host(nil), t.controllers...), t.workers...) {
			for _, inst := range inv.InstancesOnHost(h.Name) {
				if inst.IsLocked() {
					return fmt.Sprintf("instance %s on host %s is locked and cannot be migrated", inst.Name, h.Name)
				}
			}
		}
	}
	if s.Type == TypeSwUpgrade && s.env.LocalHostName != "" {
		for _, h := range t.controllers {
			if h.Name == s.env.LocalHostName {
				return fmt.Sprintf("%s is the host running orchestration, the peer controller must be active to upgrade it", h.Name)
			}
		}
	}

	p := newPhase(s, PhaseApply)
	if startUpgrade {
		p.addStage(s.stageName("start"), newUpgradeStateStep(StepUpgradeStart), newSystemStabilizeStep())
	}
	s.addControllerStages(p, t.controllers)
	s.addStorageStages(p, t.storage)
	s.addWorkerStages(p, t.workers)
	if s.Type == TypeSwUpgrade {
		p.addStage(s.stageName("activate"), newUpgradeStateStep(StepUpgradeActivate), newSystemStabilizeStep())
		p.addStage(s.stageName("complete"), newUpgradeStateStep(StepUpgradeComplete))
	}
	s.ApplyPhase = p
	return ""
}

func (s *Strategy) stageName(what string) string {
	return fmt.Sprintf("%s-%s", s.Type, what)
}

func (s *Strategy) queryAlarms() Step {
	return newQueryAlarmsStep(s.AlarmRestrictions, true)
}

// hostSteps lays out the steps that move the instances off hosts, update
// them and bring them back. settle is the step that ends the stage.
func (s *Strategy) hostSteps(hosts []*objects.Host, before []Step, settle Step) []Step {
	var instances, running []*objects.Instance
	for _, h := range hosts {
		for _, inst := range s.env.Inventory.InstancesOnHost(h.Name) {
			instances = append(instances, inst)
			if inst.IsEnabled() {
				running = append(running, inst)
			}
		}
	}
	steps := []Step{s.queryAlarms()}
	steps = append(steps, before...)
	var after []Step
	switch {
	case len(instances) == 0:
	case s.DefaultInstanceAction == InstanceStopStart:
		steps = append(steps, newStopInstancesStep(running))
		after = append(after, newStartInstancesStep(running))
	default:
		steps = append(steps,
			newDisableHostServicesStep(hosts, objects.HostServiceCompute),
			newMigrateInstancesStep(instances, hosts))
	}
	steps = append(steps,
		newLockHostsStep(hosts),
		newUpgradeHostsStep(hosts, s.Release),
		newUnlockHostsStep(hosts))
	steps = append(steps, after...)
	return append(steps, settle)
}

// addControllerStages updates one controller per stage, the active one
// last. Controllers are never updated in parallel.
func (s *Strategy) addControllerStages(p *Phase, controllers []*objects.Host) {
	var active *objects.Host
	for _, h := range controllers {
		if h.ActiveController {
			active = h
			continue
		}
		p.addStage(s.stageName("controllers"), s.hostSteps([]*objects.Host{h}, nil, newSystemStabilizeStep())...)
	}
	if active == nil {
		return
	}
	hosts := []*objects.Host{active}
	p.addStage(s.stageName("controllers"),
		s.hostSteps(hosts, []Step{newSwactHostsStep(hosts)}, newSystemStabilizeStep())...)
}

func (s *Strategy) addStorageStages(p *Phase, storage []*objects.Host) {
	for _, batch := range s.storageBatches(storage) {
		p.addStage(s.stageName("storage-hosts"),
			s.hostSteps(batch, nil, newWaitDataSyncStep(s.AlarmRestrictions))...)
	}
}

func (s *Strategy) addWorkerStages(p *Phase, workers []*objects.Host) {
	free, busy := s.workerBatches(workers)
	for _, batch := range append(free, busy...) {
		p.addStage(s.stageName("worker-hosts"), s.hostSteps(batch, nil, newSystemStabilizeStep())...)
	}
}
