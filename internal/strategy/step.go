// Copyright © 2024 The vjailbreak authors

package strategy

import (
	"fmt"
	"time"

	"github.com/openstack-archive/stx-nfv-sub001/pkg/events"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/objects"
)

// StepKind identifies a step variant. Snapshots store the kind name and
// restore the step through the registry.
type StepKind int

const (
	StepQueryAlarms StepKind = iota
	StepQueryUpgrade
	StepLockHosts
	StepUnlockHosts
	StepUpgradeHosts
	StepSwactHosts
	StepDisableHostServices
	StepEnableHostServices
	StepMigrateInstances
	StepStopInstances
	StepStartInstances
	StepSystemStabilize
	StepWaitDataSync
	StepUpgradeStart
	StepUpgradeActivate
	StepUpgradeComplete
	numStepKinds
)

var stepNames = [numStepKinds]string{
	StepQueryAlarms:         "query-alarms",
	StepQueryUpgrade:        "query-upgrade",
	StepLockHosts:           "lock-hosts",
	StepUnlockHosts:         "unlock-hosts",
	StepUpgradeHosts:        "upgrade-hosts",
	StepSwactHosts:          "swact-hosts",
	StepDisableHostServices: "disable-host-services",
	StepEnableHostServices:  "enable-host-services",
	StepMigrateInstances:    "migrate-instances",
	StepStopInstances:       "stop-instances",
	StepStartInstances:      "start-instances",
	StepSystemStabilize:     "system-stabilize",
	StepWaitDataSync:        "wait-data-sync",
	StepUpgradeStart:        "upgrade-start",
	StepUpgradeActivate:     "upgrade-activate",
	StepUpgradeComplete:     "upgrade-complete",
}

var stepFactories = [numStepKinds]func() Step{
	StepQueryAlarms:         func() Step { return &QueryAlarmsStep{} },
	StepQueryUpgrade:        func() Step { return &QueryUpgradeStep{} },
	StepLockHosts:           func() Step { return &LockHostsStep{} },
	StepUnlockHosts:         func() Step { return &UnlockHostsStep{} },
	StepUpgradeHosts:        func() Step { return &UpgradeHostsStep{} },
	StepSwactHosts:          func() Step { return &SwactHostsStep{} },
	StepDisableHostServices: func() Step { return &DisableHostServicesStep{} },
	StepEnableHostServices:  func() Step { return &EnableHostServicesStep{} },
	StepMigrateInstances:    func() Step { return &MigrateInstancesStep{} },
	StepStopInstances:       func() Step { return &StopInstancesStep{} },
	StepStartInstances:      func() Step { return &StartInstancesStep{} },
	StepSystemStabilize:     func() Step { return &SystemStabilizeStep{} },
	StepWaitDataSync:        func() Step { return &WaitDataSyncStep{} },
	StepUpgradeStart:        func() Step { return newUpgradeStep(StepUpgradeStart) },
	StepUpgradeActivate:     func() Step { return newUpgradeStep(StepUpgradeActivate) },
	StepUpgradeComplete:     func() Step { return newUpgradeStep(StepUpgradeComplete) },
}

func init() {
	if err := checkRegistry(); err != nil {
		panic(err)
	}
}

func checkRegistry() error {
	seen := make(map[string]bool)
	for k := StepKind(0); k < numStepKinds; k++ {
		if stepNames[k] == "" || stepFactories[k] == nil {
			return fmt.Errorf("step kind %d is not registered", k)
		}
		if seen[stepNames[k]] {
			return fmt.Errorf("step name %s registered twice", stepNames[k])
		}
		seen[stepNames[k]] = true
		if got := stepFactories[k]().Kind(); got != k {
			return fmt.Errorf("factory of %s builds a %s step", stepNames[k], got)
		}
	}
	return nil
}

func (k StepKind) String() string {
	if k < 0 || k >= numStepKinds {
		return fmt.Sprintf("step-kind(%d)", int(k))
	}
	return stepNames[k]
}

func ParseStepKind(name string) (StepKind, bool) {
	for k, n := range stepNames {
		if n == name {
			return StepKind(k), true
		}
	}
	return 0, false
}

// newStep returns an empty step of the kind, ready to be filled in.
func newStep(kind StepKind) Step {
	s := stepFactories[kind]()
	b := s.Base()
	b.Name = kind.String()
	b.Result = ResultInitial
	return s
}

// Step is one unit of a stage. Apply returns a result right away or
// ResultWait, in which case the step later reports through Complete.
type Step interface {
	Base() *StepBase
	Kind() StepKind
	Apply() (Result, string)
	// Params returns a pointer to the step specific fields, or nil.
	Params() interface{}
}

// EventHandler is implemented by steps that resume on director events or
// audit ticks.
type EventHandler interface {
	HandleEvent(event events.Event, data interface{}) bool
}

// TimeoutHandler lets a step decide the outcome of its own timeout.
type TimeoutHandler interface {
	TimedOut() (Result, string)
}

// Canceller is implemented by steps holding something to release when the
// stage stops waiting on them.
type Canceller interface {
	Cancel()
}

// Undoer returns the steps that revert a successful step on abort.
type Undoer interface {
	Undo() []Step
}

// StepRecord holds the fields every step persists.
type StepRecord struct {
	Name         string   `mapstructure:"name"`
	Timeout      int      `mapstructure:"timeout"`
	EntityType   string   `mapstructure:"entity_type"`
	EntityNames  []string `mapstructure:"entity_names"`
	EntityUUIDs  []string `mapstructure:"entity_uuids"`
	Result       Result   `mapstructure:"result"`
	ResultReason string   `mapstructure:"result_reason"`
	StartDate    string   `mapstructure:"start_date"`
	EndDate      string   `mapstructure:"end_date"`
}

const (
	EntityHosts     = "hosts"
	EntityInstances = "instances"
)

// StepBase is embedded by every step.
type StepBase struct {
	StepRecord
	stage   *Stage
	waiting bool
}

func (b *StepBase) Base() *StepBase {
	return b
}

func (b *StepBase) Params() interface{} {
	return nil
}

func (b *StepBase) TimeoutDuration() time.Duration {
	return time.Duration(b.Timeout) * time.Second
}

// Waiting reports whether the stage is waiting on this step.
func (b *StepBase) Waiting() bool {
	return b.waiting
}

// Complete reports the result of a step that returned ResultWait.
// Completions after the stage moved on or timed out are dropped.
func (b *StepBase) Complete(result Result, reason string) {
	if b.stage == nil {
		return
	}
	b.stage.stepComplete(b, result, reason)
}

func (b *StepBase) strategy() *Strategy {
	return b.stage.strategy()
}

func (b *StepBase) env() *Env {
	return b.strategy().env
}

func (b *StepBase) setTimeout(d time.Duration) {
	b.Timeout = int(d / time.Second)
}

func (b *StepBase) setHosts(hosts []*objects.Host) {
	b.EntityType = EntityHosts
	b.EntityNames = make([]string, 0, len(hosts))
	b.EntityUUIDs = make([]string, 0, len(hosts))
	for _, h := range hosts {
		b.EntityNames = append(b.EntityNames, h.Name)
		b.EntityUUIDs = append(b.EntityUUIDs, h.UUID)
	}
}

func (b *StepBase) setInstances(instances []*objects.Instance) {
	b.EntityType = EntityInstances
	b.EntityNames = make([]string, 0, len(instances))
	b.EntityUUIDs = make([]string, 0, len(instances))
	for _, i := range instances {
		b.EntityNames = append(b.EntityNames, i.Name)
		b.EntityUUIDs = append(b.EntityUUIDs, i.UUID)
	}
}
