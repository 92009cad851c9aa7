// Copyright © 2024 The vjailbreak authors

// Package strategy builds and runs software update strategies. A strategy
// has a build phase that queries the system and an apply phase computed from
// the answers. Phases are ordered stages of ordered steps; steps drive the
// directors and wait for their operations to settle.
package strategy

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/events"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/loop"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/metrics"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/nfvi"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/objects"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/tables"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var (
	ErrInvalidState   = errors.New("operation not allowed in the current strategy state")
	ErrInvalidStage   = errors.New("invalid stage")
	ErrInvalidRequest = errors.New("invalid strategy request")
)

type Type string

const (
	TypeSwPatch   Type = "sw-patch"
	TypeSwUpgrade Type = "sw-upgrade"
)

type ApplyType string

const (
	ApplyIgnore   ApplyType = "ignore"
	ApplySerial   ApplyType = "serial"
	ApplyParallel ApplyType = "parallel"
)

type AlarmRestriction string

const (
	AlarmsStrict  AlarmRestriction = "strict"
	AlarmsRelaxed AlarmRestriction = "relaxed"
)

type InstanceAction string

const (
	InstanceMigrate   InstanceAction = "migrate"
	InstanceStopStart InstanceAction = "stop-start"
)

type State string

const (
	StateInitial      State = "initial"
	StateBuilding     State = "building"
	StateBuildFailed  State = "build-failed"
	StateBuildTimeout State = "build-timeout"
	StateReadyToApply State = "ready-to-apply"
	StateApplying     State = "applying"
	StateApplyFailed  State = "apply-failed"
	StateApplyTimeout State = "apply-timeout"
	StateApplied      State = "applied"
	StateAborting     State = "aborting"
	StateAbortFailed  State = "abort-failed"
	StateAbortTimeout State = "abort-timeout"
	StateAborted      State = "aborted"
)

// AllStates lists every state, used to reset the state gauge.
var AllStates = []string{
	string(StateInitial), string(StateBuilding), string(StateBuildFailed), string(StateBuildTimeout),
	string(StateReadyToApply), string(StateApplying), string(StateApplyFailed), string(StateApplyTimeout),
	string(StateApplied), string(StateAborting), string(StateAbortFailed), string(StateAbortTimeout),
	string(StateAborted),
}

// IsFinished reports whether no further work can happen in the state.
func (s State) IsFinished() bool {
	switch s {
	case StateBuildFailed, StateBuildTimeout, StateApplied, StateAborted, StateAbortFailed, StateAbortTimeout:
		return true
	}
	return false
}

type Result string

const (
	ResultInitial    Result = "initial"
	ResultWait       Result = "wait"
	ResultInprogress Result = "inprogress"
	ResultSuccess    Result = "success"
	ResultFailed     Result = "failed"
	ResultTimedOut   Result = "timed-out"
	ResultAborted    Result = "aborted"
)

const (
	PhaseBuild = "build"
	PhaseApply = "apply"
	PhaseAbort = "abort"
)

// HostDirector is the part of the host director used by steps.
type HostDirector interface {
	LockHosts(names []string) *objects.Operation
	UnlockHosts(names []string) *objects.Operation
	UpgradeHosts(names []string, release string) *objects.Operation
	SwactHosts(names []string) *objects.Operation
	DisableHostServices(names []string, service objects.HostService) *objects.Operation
	EnableHostServices(names []string, service objects.HostService) *objects.Operation
}

// InstanceDirector is the part of the instance director used by steps.
type InstanceDirector interface {
	MigrateInstances(uuids []string) *objects.Operation
	StopInstances(uuids []string) *objects.Operation
	StartInstances(uuids []string, serial bool) *objects.Operation
}

type Env struct {
	Inventory *tables.Inventory
	Gateway   nfvi.InfrastructureAPI
	Hosts     HostDirector
	Instances InstanceDirector
	Timers    loop.Timers
	// LocalHostName is the controller the engine runs on.
	LocalHostName string
	// OnChange is called after every externally visible change.
	OnChange func(s *Strategy)
}

// Request is what a user asks for when creating a strategy.
type Request struct {
	Type                   Type             `json:"type" yaml:"type"`
	Release                string           `json:"release" yaml:"release"`
	ControllerApplyType    ApplyType        `json:"controller_apply_type" yaml:"controller_apply_type"`
	StorageApplyType       ApplyType        `json:"storage_apply_type" yaml:"storage_apply_type"`
	WorkerApplyType        ApplyType        `json:"worker_apply_type" yaml:"worker_apply_type"`
	MaxParallelWorkerHosts int              `json:"max_parallel_worker_hosts" yaml:"max_parallel_worker_hosts"`
	DefaultInstanceAction  InstanceAction   `json:"default_instance_action" yaml:"default_instance_action"`
	AlarmRestrictions      AlarmRestriction `json:"alarm_restrictions" yaml:"alarm_restrictions"`
}

const maxParallelWorkerHostsLimit = 100

func validApplyType(t ApplyType) bool {
	return t == ApplyIgnore || t == ApplySerial || t == ApplyParallel
}

// Validate returns every problem of the request at once.
func (r Request) Validate() error {
	var result *multierror.Error
	if r.Type != TypeSwPatch && r.Type != TypeSwUpgrade {
		result = multierror.Append(result, fmt.Errorf("unknown strategy type %q", r.Type))
	}
	if r.Release == "" {
		result = multierror.Append(result, errors.New("release is required"))
	}
	for _, f := range []struct {
		name string
		t    ApplyType
	}{
		{"controller_apply_type", r.ControllerApplyType},
		{"storage_apply_type", r.StorageApplyType},
		{"worker_apply_type", r.WorkerApplyType},
	} {
		if !validApplyType(f.t) {
			result = multierror.Append(result, fmt.Errorf("%s: unknown apply type %q", f.name, f.t))
		}
	}
	if r.WorkerApplyType == ApplyParallel &&
		(r.MaxParallelWorkerHosts < 2 || r.MaxParallelWorkerHosts > maxParallelWorkerHostsLimit) {
		result = multierror.Append(result, fmt.Errorf("max_parallel_worker_hosts must be between 2 and %d, got %d",
			maxParallelWorkerHostsLimit, r.MaxParallelWorkerHosts))
	}
	if r.DefaultInstanceAction != InstanceMigrate && r.DefaultInstanceAction != InstanceStopStart {
		result = multierror.Append(result, fmt.Errorf("unknown default instance action %q", r.DefaultInstanceAction))
	}
	if r.AlarmRestrictions != AlarmsStrict && r.AlarmRestrictions != AlarmsRelaxed {
		result = multierror.Append(result, fmt.Errorf("unknown alarm restrictions %q", r.AlarmRestrictions))
	}
	if err := result.ErrorOrNil(); err != nil {
		return errors.Wrap(ErrInvalidRequest, err.Error())
	}
	return nil
}

// Strategy is one update rollout. All methods run on the event loop.
type Strategy struct {
	UUID string
	Request
	State        State
	CurrentPhase string
	BuildPhase   *Phase
	ApplyPhase   *Phase
	AbortPhase   *Phase
	// Alarms and Upgrade hold the answers of the latest queries.
	Alarms  []objects.Alarm
	Upgrade *objects.Upgrade

	env *Env
	log *logrus.Entry
}

// New validates req and returns a strategy in the initial state.
func New(env *Env, req Request) (*Strategy, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	s := &Strategy{
		UUID:    uuid.NewString(),
		Request: req,
		State:   StateInitial,
	}
	s.attach(env)
	s.BuildPhase = newPhase(s, PhaseBuild)
	s.BuildPhase.addStage("query", newQueryAlarmsStep(s.AlarmRestrictions, false), newQueryUpgradeStep())
	s.ApplyPhase = newPhase(s, PhaseApply)
	return s, nil
}

func (s *Strategy) attach(env *Env) {
	s.env = env
	s.log = logrus.WithFields(logrus.Fields{"component": "strategy", "strategy": s.UUID})
}

func (s *Strategy) String() string {
	return fmt.Sprintf("%s strategy %s", s.Type, s.UUID)
}

func (s *Strategy) setState(state State) {
	if s.State != state {
		s.log.Infof("state %s -> %s", s.State, state)
	}
	s.State = state
	metrics.UpdateStrategyState(string(s.Type), string(state), AllStates)
	s.changed()
}

func (s *Strategy) changed() {
	if s.env != nil && s.env.OnChange != nil {
		s.env.OnChange(s)
	}
}

func (s *Strategy) phase(name string) *Phase {
	switch name {
	case PhaseBuild:
		return s.BuildPhase
	case PhaseApply:
		return s.ApplyPhase
	case PhaseAbort:
		return s.AbortPhase
	}
	return nil
}

func (s *Strategy) running() *Phase {
	switch s.State {
	case StateBuilding, StateApplying, StateAborting:
		return s.phase(s.CurrentPhase)
	}
	return nil
}

// abortPending reports whether the apply phase must stop after its current
// step.
func (s *Strategy) abortPending() bool {
	return s.State == StateAborting && s.CurrentPhase == PhaseApply
}

// Build runs the build phase. The apply phase is computed once every query
// answered.
func (s *Strategy) Build() error {
	if s.State != StateInitial {
		return errors.Wrapf(ErrInvalidState, "cannot build in state %s", s.State)
	}
	s.CurrentPhase = PhaseBuild
	s.setState(StateBuilding)
	s.BuildPhase.start(-1)
	return nil
}

// Apply runs the apply phase. A stage of -1 applies every remaining stage,
// otherwise the phase stops once the given stage is done.
func (s *Strategy) Apply(stage int) error {
	if s.State != StateReadyToApply {
		return errors.Wrapf(ErrInvalidState, "cannot apply in state %s", s.State)
	}
	p := s.ApplyPhase
	if stage >= 0 && (stage < p.CurrentStage || stage >= len(p.Stages)) {
		return errors.Wrapf(ErrInvalidStage, "stage %d is not between %d and %d", stage, p.CurrentStage, len(p.Stages)-1)
	}
	s.CurrentPhase = PhaseApply
	s.setState(StateApplying)
	p.start(stage)
	return nil
}

// Abort stops the strategy. A running apply stops after its current step
// and the finished steps of the current stage are undone.
func (s *Strategy) Abort() error {
	switch s.State {
	case StateBuilding:
		s.BuildPhase.stop(ResultAborted, "aborted by request")
		s.setState(StateAborted)
	case StateApplying:
		s.setState(StateAborting)
	case StateReadyToApply, StateApplyFailed, StateApplyTimeout:
		s.State = StateAborting
		s.startAbort()
	default:
		return errors.Wrapf(ErrInvalidState, "cannot abort in state %s", s.State)
	}
	return nil
}

func (s *Strategy) startAbort() {
	var undo []Step
	p := s.ApplyPhase
	if p.CurrentStage < len(p.Stages) {
		st := p.Stages[p.CurrentStage]
		for i := st.CurrentStep - 1; i >= 0; i-- {
			step := st.Steps[i]
			if step.Base().Result != ResultSuccess {
				continue
			}
			if u, ok := step.(Undoer); ok {
				undo = append(undo, u.Undo()...)
			}
		}
	}
	s.AbortPhase = newPhase(s, PhaseAbort)
	s.CurrentPhase = PhaseAbort
	if len(undo) == 0 {
		s.AbortPhase.Result = ResultSuccess
		s.setState(StateAborted)
		return
	}
	s.AbortPhase.addStage("abort", undo...)
	s.setState(StateAborting)
	s.AbortPhase.start(-1)
}

// Resume restarts the step a restart interrupted. Steps that already
// finished are not run again.
func (s *Strategy) Resume() {
	switch s.State {
	case StateBuilding:
		s.BuildPhase.resume()
	case StateApplying:
		s.ApplyPhase.resume()
	case StateAborting:
		if s.CurrentPhase == PhaseAbort && s.AbortPhase != nil {
			s.AbortPhase.resume()
			return
		}
		s.ApplyPhase.resume()
	}
}

// BuildTimedOut stops a build that did not finish in time.
func (s *Strategy) BuildTimedOut() {
	if s.State != StateBuilding {
		return
	}
	s.BuildPhase.stop(ResultTimedOut, "build timed out")
	s.setState(StateBuildTimeout)
}

// Stop cancels whatever step is waiting, leaving the state untouched.
func (s *Strategy) Stop() {
	if p := s.running(); p != nil {
		p.cancel()
	}
}

// HandleEvent hands a director event or an audit tick to the waiting step.
func (s *Strategy) HandleEvent(event events.Event, data interface{}) bool {
	p := s.running()
	if p == nil {
		return false
	}
	return p.handleEvent(event, data)
}

// phaseDone is called once a phase finished or paused.
func (s *Strategy) phaseDone(p *Phase, result Result, reason string) {
	switch p.Name {
	case PhaseBuild:
		s.buildDone(result, reason)
	case PhaseApply:
		s.applyDone(result, reason)
	case PhaseAbort:
		switch result {
		case ResultSuccess:
			s.setState(StateAborted)
		case ResultTimedOut:
			s.setState(StateAbortTimeout)
		default:
			s.setState(StateAbortFailed)
		}
	}
}

func (s *Strategy) buildDone(result Result, reason string) {
	switch result {
	case ResultSuccess:
	case ResultTimedOut:
		s.setState(StateBuildTimeout)
		return
	default:
		s.setState(StateBuildFailed)
		return
	}
	if reason := s.buildApplyPhase(); reason != "" {
		s.log.Warnf("build failed: %s", reason)
		s.BuildPhase.Result = ResultFailed
		s.BuildPhase.ResultReason = reason
		s.ApplyPhase = newPhase(s, PhaseApply)
		s.ApplyPhase.Result = ResultFailed
		s.ApplyPhase.ResultReason = reason
		s.setState(StateBuildFailed)
		return
	}
	s.log.Infof("built %d apply stages", len(s.ApplyPhase.Stages))
	s.setState(StateReadyToApply)
}

func (s *Strategy) applyDone(result Result, reason string) {
	switch result {
	case ResultSuccess:
		s.setState(StateApplied)
	case ResultInprogress:
		s.setState(StateReadyToApply)
	case ResultAborted:
		s.startAbort()
	default:
		if s.State == StateAborting {
			s.startAbort()
			return
		}
		if result == ResultTimedOut {
			s.setState(StateApplyTimeout)
			return
		}
		s.setState(StateApplyFailed)
	}
}

// Reason returns the reason of the phase that decided the current state.
func (s *Strategy) Reason() string {
	var reasons []string
	for _, p := range []*Phase{s.BuildPhase, s.ApplyPhase, s.AbortPhase} {
		if p != nil && p.ResultReason != "" && !strings.Contains(strings.Join(reasons, "\n"), p.ResultReason) {
			reasons = append(reasons, p.ResultReason)
		}
	}
	return strings.Join(reasons, "; ")
}
