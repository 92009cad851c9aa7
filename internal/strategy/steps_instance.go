// Copyright © 2024 The vjailbreak authors

package strategy

import (
	"github.com/openstack-archive/stx-nfv-sub001/pkg/constants"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/objects"
)

type HostsParams struct {
	FromHosts []string `mapstructure:"from_hosts"`
}

// MigrateInstancesStep moves every instance still on the stage hosts.
// The instances listed at build time are informational.
type MigrateInstancesStep struct {
	operationStep
	HostsParams
}

func newMigrateInstancesStep(instances []*objects.Instance, hosts []*objects.Host) *MigrateInstancesStep {
	s := newStep(StepMigrateInstances).(*MigrateInstancesStep)
	s.setInstances(instances)
	s.setTimeout(constants.StepMigrateTimeout)
	for _, h := range hosts {
		s.FromHosts = append(s.FromHosts, h.Name)
	}
	return s
}

func (s *MigrateInstancesStep) Kind() StepKind { return StepMigrateInstances }

func (s *MigrateInstancesStep) Params() interface{} { return &s.HostsParams }

func (s *MigrateInstancesStep) Apply() (Result, string) {
	var uuids []string
	for _, host := range s.FromHosts {
		for _, inst := range s.env().Inventory.InstancesOnHost(host) {
			if !inst.IsDeleted() {
				uuids = append(uuids, inst.UUID)
			}
		}
	}
	if len(uuids) == 0 {
		return ResultSuccess, ""
	}
	return s.wait(s.env().Instances.MigrateInstances(uuids))
}

// existing drops the instances that are gone since the build.
func existing(s *StepBase) []string {
	var uuids []string
	for _, uuid := range s.EntityUUIDs {
		if inst := s.env().Inventory.Instance(uuid); inst != nil && !inst.IsDeleted() {
			uuids = append(uuids, uuid)
		}
	}
	return uuids
}

type StopInstancesStep struct {
	operationStep
}

func newStopInstancesStep(instances []*objects.Instance) *StopInstancesStep {
	s := newStep(StepStopInstances).(*StopInstancesStep)
	s.setInstances(instances)
	s.setTimeout(constants.StepStopStartTimeout)
	return s
}

func (s *StopInstancesStep) Kind() StepKind { return StepStopInstances }

func (s *StopInstancesStep) Apply() (Result, string) {
	uuids := existing(&s.StepBase)
	if len(uuids) == 0 {
		return ResultSuccess, ""
	}
	return s.wait(s.env().Instances.StopInstances(uuids))
}

// Undo starts the stopped instances again.
func (s *StopInstancesStep) Undo() []Step {
	u := newStep(StepStartInstances).(*StartInstancesStep)
	u.EntityType = EntityInstances
	u.EntityNames = append([]string(nil), s.EntityNames...)
	u.EntityUUIDs = append([]string(nil), s.EntityUUIDs...)
	u.setTimeout(constants.StepStopStartTimeout)
	return []Step{u}
}

type StartParams struct {
	Serial bool `mapstructure:"serial"`
}

type StartInstancesStep struct {
	operationStep
	StartParams
}

func newStartInstancesStep(instances []*objects.Instance) *StartInstancesStep {
	s := newStep(StepStartInstances).(*StartInstancesStep)
	s.setInstances(instances)
	s.setTimeout(constants.StepStopStartTimeout)
	return s
}

func (s *StartInstancesStep) Kind() StepKind { return StepStartInstances }

func (s *StartInstancesStep) Params() interface{} { return &s.StartParams }

func (s *StartInstancesStep) Apply() (Result, string) {
	uuids := existing(&s.StepBase)
	if len(uuids) == 0 {
		return ResultSuccess, ""
	}
	return s.wait(s.env().Instances.StartInstances(uuids, s.Serial))
}
