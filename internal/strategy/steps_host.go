// Copyright © 2024 The vjailbreak authors

package strategy

import (
	"fmt"

	"github.com/openstack-archive/stx-nfv-sub001/pkg/constants"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/events"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/objects"
)

// operationStep waits on a director operation. Directors raise an event
// every time an entity of the operation settles.
type operationStep struct {
	StepBase
	op *objects.Operation
}

func (s *operationStep) outcome() (Result, string) {
	op := s.op
	switch {
	case op == nil, op.IsInprogress():
		return ResultWait, ""
	case op.IsCompleted():
		return ResultSuccess, ""
	case op.IsCancelled():
		return ResultFailed, fmt.Sprintf("%s was superseded", op.Type)
	case op.IsTimedOut():
		return ResultTimedOut, op.Reason()
	}
	return ResultFailed, op.Reason()
}

func (s *operationStep) wait(op *objects.Operation) (Result, string) {
	s.op = op
	return s.outcome()
}

func (s *operationStep) HandleEvent(events.Event, interface{}) bool {
	result, reason := s.outcome()
	if result == ResultWait {
		return false
	}
	s.Complete(result, reason)
	return true
}

func (s *operationStep) Cancel() {
	s.op = nil
}

type LockHostsStep struct {
	operationStep
}

func newLockHostsStep(hosts []*objects.Host) *LockHostsStep {
	s := newStep(StepLockHosts).(*LockHostsStep)
	s.setHosts(hosts)
	s.setTimeout(constants.StepLockHostsTimeout)
	return s
}

func (s *LockHostsStep) Kind() StepKind { return StepLockHosts }

func (s *LockHostsStep) Apply() (Result, string) {
	return s.wait(s.env().Hosts.LockHosts(s.EntityNames))
}

// Undo unlocks the hosts again.
func (s *LockHostsStep) Undo() []Step {
	u := newStep(StepUnlockHosts).(*UnlockHostsStep)
	u.StepRecord = StepRecord{
		Name:        u.Name,
		EntityType:  EntityHosts,
		EntityNames: append([]string(nil), s.EntityNames...),
		EntityUUIDs: append([]string(nil), s.EntityUUIDs...),
		Result:      ResultInitial,
	}
	u.setTimeout(constants.StepUnlockHostsTimeout)
	return []Step{u}
}

type UnlockParams struct {
	RetryCount int `mapstructure:"retry_count"`
}

// UnlockHostsStep unlocks the hosts, issuing the unlock again when it fails,
// up to constants.MaxUnlockRetries times.
type UnlockHostsStep struct {
	operationStep
	UnlockParams
}

func newUnlockHostsStep(hosts []*objects.Host) *UnlockHostsStep {
	s := newStep(StepUnlockHosts).(*UnlockHostsStep)
	s.setHosts(hosts)
	s.setTimeout(constants.StepUnlockHostsTimeout)
	return s
}

func (s *UnlockHostsStep) Kind() StepKind { return StepUnlockHosts }

func (s *UnlockHostsStep) Params() interface{} { return &s.UnlockParams }

func (s *UnlockHostsStep) Apply() (Result, string) {
	s.RetryCount = 0
	return s.unlock()
}

func (s *UnlockHostsStep) unlock() (Result, string) {
	for {
		result, reason := s.wait(s.env().Hosts.UnlockHosts(s.EntityNames))
		if !s.retry(result, reason) {
			return result, reason
		}
	}
}

func (s *UnlockHostsStep) retry(result Result, reason string) bool {
	if result != ResultFailed || s.RetryCount >= constants.MaxUnlockRetries {
		return false
	}
	s.RetryCount++
	s.strategy().log.Warnf("unlock of %v failed (%s), retry %d of %d", s.EntityNames, reason, s.RetryCount, constants.MaxUnlockRetries)
	return true
}

func (s *UnlockHostsStep) HandleEvent(events.Event, interface{}) bool {
	result, reason := s.outcome()
	if result == ResultWait {
		return false
	}
	if s.retry(result, reason) {
		result, reason = s.unlock()
		if result == ResultWait {
			s.Complete(ResultWait, "")
			return true
		}
	}
	s.Complete(result, reason)
	return true
}

type ReleaseParams struct {
	Release string `mapstructure:"release"`
}

type UpgradeHostsStep struct {
	operationStep
	ReleaseParams
}

func newUpgradeHostsStep(hosts []*objects.Host, release string) *UpgradeHostsStep {
	s := newStep(StepUpgradeHosts).(*UpgradeHostsStep)
	s.setHosts(hosts)
	s.setTimeout(constants.StepUpgradeHostsTimeout)
	s.Release = release
	return s
}

func (s *UpgradeHostsStep) Kind() StepKind { return StepUpgradeHosts }

func (s *UpgradeHostsStep) Params() interface{} { return &s.ReleaseParams }

func (s *UpgradeHostsStep) Apply() (Result, string) {
	return s.wait(s.env().Hosts.UpgradeHosts(s.EntityNames, s.Release))
}

type SwactHostsStep struct {
	operationStep
}

func newSwactHostsStep(hosts []*objects.Host) *SwactHostsStep {
	s := newStep(StepSwactHosts).(*SwactHostsStep)
	s.setHosts(hosts)
	s.setTimeout(constants.StepSwactHostsTimeout)
	return s
}

func (s *SwactHostsStep) Kind() StepKind { return StepSwactHosts }

func (s *SwactHostsStep) Apply() (Result, string) {
	return s.wait(s.env().Hosts.SwactHosts(s.EntityNames))
}

type ServiceParams struct {
	Service objects.HostService `mapstructure:"service"`
}

type DisableHostServicesStep struct {
	operationStep
	ServiceParams
}

func newDisableHostServicesStep(hosts []*objects.Host, service objects.HostService) *DisableHostServicesStep {
	s := newStep(StepDisableHostServices).(*DisableHostServicesStep)
	s.setHosts(hosts)
	s.setTimeout(constants.StepServicesTimeout)
	s.Service = service
	return s
}

func (s *DisableHostServicesStep) Kind() StepKind { return StepDisableHostServices }

func (s *DisableHostServicesStep) Params() interface{} { return &s.ServiceParams }

func (s *DisableHostServicesStep) Apply() (Result, string) {
	return s.wait(s.env().Hosts.DisableHostServices(s.EntityNames, s.Service))
}

// Undo enables the services again.
func (s *DisableHostServicesStep) Undo() []Step {
	u := newStep(StepEnableHostServices).(*EnableHostServicesStep)
	u.EntityType = EntityHosts
	u.EntityNames = append([]string(nil), s.EntityNames...)
	u.EntityUUIDs = append([]string(nil), s.EntityUUIDs...)
	u.Service = s.Service
	u.setTimeout(constants.StepServicesTimeout)
	return []Step{u}
}

type EnableHostServicesStep struct {
	operationStep
	ServiceParams
}

func (s *EnableHostServicesStep) Kind() StepKind { return StepEnableHostServices }

func (s *EnableHostServicesStep) Params() interface{} { return &s.ServiceParams }

func (s *EnableHostServicesStep) Apply() (Result, string) {
	return s.wait(s.env().Hosts.EnableHostServices(s.EntityNames, s.Service))
}
