// Copyright © 2024 The vjailbreak authors

// Package orchestrator owns the one strategy the system runs at a time. It
// persists the strategy after every change, resumes it after a restart and
// archives it when deleted.
package orchestrator

import (
	"github.com/openstack-archive/stx-nfv-sub001/internal/strategy"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/config"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/constants"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/events"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/loop"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/metrics"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/nfvi"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/store"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/tables"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var (
	ErrStrategyExists = errors.New("a strategy already exists")
	ErrNoStrategy     = errors.New("no strategy exists")
	ErrInProgress     = errors.New("strategy is in progress")
)

type Env struct {
	Inventory *tables.Inventory
	Gateway   nfvi.InfrastructureAPI
	Hosts     strategy.HostDirector
	Instances strategy.InstanceDirector
	Timers    loop.Timers
	Store     store.Store
}

// Orchestrator must only be used from the event loop.
type Orchestrator struct {
	cfg     config.OrchestrationConfig
	env     Env
	current *strategy.Strategy

	buildTimer      loop.TimerID
	buildTimerArmed bool
	auditTimer      loop.TimerID
	auditing        bool
	log             *logrus.Entry
}

func New(cfg config.OrchestrationConfig, env Env) *Orchestrator {
	return &Orchestrator{
		cfg: cfg,
		env: env,
		log: logrus.WithField("component", "orchestrator"),
	}
}

func (o *Orchestrator) strategyEnv() *strategy.Env {
	return &strategy.Env{
		Inventory:     o.env.Inventory,
		Gateway:       o.env.Gateway,
		Hosts:         o.env.Hosts,
		Instances:     o.env.Instances,
		Timers:        o.env.Timers,
		LocalHostName: o.cfg.LocalHostName,
		OnChange:      o.changed,
	}
}

// Current returns the strategy, or nil.
func (o *Orchestrator) Current() *strategy.Strategy {
	return o.current
}

// Load restores the persisted strategy and resumes the step it was
// running.
func (o *Orchestrator) Load() error {
	var loaded *strategy.Strategy
	err := o.env.Store.LoadAll(store.KindStrategy, func(key string, data []byte) error {
		if key != constants.StrategyKey || store.IsEmpty(data) {
			return nil
		}
		s, err := strategy.Unmarshal(o.strategyEnv(), data)
		if err != nil {
			return err
		}
		loaded = s
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "failed to load strategy")
	}
	if loaded == nil {
		return nil
	}
	o.current = loaded
	o.log.Infof("loaded %s in state %s", loaded, loaded.State)
	if loaded.State == strategy.StateBuilding {
		o.armBuildTimer()
	}
	loaded.Resume()
	return nil
}

// Create validates req, stores the new strategy and starts building it.
func (o *Orchestrator) Create(req strategy.Request) (*strategy.Strategy, error) {
	if o.current != nil {
		return nil, errors.Wrapf(ErrStrategyExists, "%s is %s", o.current, o.current.State)
	}
	s, err := strategy.New(o.strategyEnv(), req)
	if err != nil {
		return nil, err
	}
	o.current = s
	o.log.Infof("created %s for release %s", s, s.Release)
	o.persist(s)
	o.armBuildTimer()
	if err := s.Build(); err != nil {
		return nil, err
	}
	return s, nil
}

func (o *Orchestrator) require() (*strategy.Strategy, error) {
	if o.current == nil {
		return nil, ErrNoStrategy
	}
	return o.current, nil
}

// Apply applies the strategy up to stage, or to the end when stage is -1.
func (o *Orchestrator) Apply(stage int) error {
	s, err := o.require()
	if err != nil {
		return err
	}
	return s.Apply(stage)
}

func (o *Orchestrator) Abort() error {
	s, err := o.require()
	if err != nil {
		return err
	}
	return s.Abort()
}

// Delete archives the strategy and frees the slot for a new one. A
// strategy still working can only be deleted with force, which stops it
// where it is.
func (o *Orchestrator) Delete(force bool) error {
	s, err := o.require()
	if err != nil {
		return err
	}
	switch s.State {
	case strategy.StateBuilding, strategy.StateApplying, strategy.StateAborting:
		if !force {
			return errors.Wrapf(ErrInProgress, "%s is %s", s, s.State)
		}
		s.Stop()
	}
	o.cancelBuildTimer()
	snap, err := s.Snapshot()
	if err != nil {
		return err
	}
	if err := o.env.Store.Save(store.KindStrategyArchive, s.UUID, snap); err != nil {
		return errors.Wrapf(err, "failed to archive %s", s)
	}
	if err := o.env.Store.Save(store.KindStrategy, constants.StrategyKey, nil); err != nil {
		return errors.Wrap(err, "failed to clear the strategy slot")
	}
	metrics.CleanupStrategy(string(s.Type), strategy.AllStates)
	o.current = nil
	o.log.Infof("archived %s", s)
	return nil
}

// HandleEvent hands director events to the strategy.
func (o *Orchestrator) HandleEvent(event events.Event, data interface{}) {
	if o.current != nil {
		o.current.HandleEvent(event, data)
	}
}

// StartAudit wakes the running step up every audit interval, so steps
// polling the backend make progress without director events.
func (o *Orchestrator) StartAudit() {
	if o.auditing || o.cfg.AuditInterval <= 0 {
		return
	}
	o.auditing = true
	o.scheduleAudit()
}

func (o *Orchestrator) scheduleAudit() {
	o.auditTimer = o.env.Timers.AddTimer("orchestration-audit", o.cfg.AuditInterval, func() {
		o.HandleEvent(events.HostAudit, nil)
		if o.auditing {
			o.scheduleAudit()
		}
	})
}

func (o *Orchestrator) StopAudit() {
	if !o.auditing {
		return
	}
	o.auditing = false
	o.env.Timers.CancelTimer(o.auditTimer)
}

func (o *Orchestrator) armBuildTimer() {
	o.cancelBuildTimer()
	if o.cfg.BuildTimeout <= 0 {
		return
	}
	o.buildTimer = o.env.Timers.AddTimer("strategy-build", o.cfg.BuildTimeout, func() {
		o.buildTimerArmed = false
		if o.current != nil {
			o.current.BuildTimedOut()
		}
	})
	o.buildTimerArmed = true
}

func (o *Orchestrator) cancelBuildTimer() {
	if o.buildTimerArmed {
		o.env.Timers.CancelTimer(o.buildTimer)
		o.buildTimerArmed = false
	}
}

func (o *Orchestrator) changed(s *strategy.Strategy) {
	if s != o.current {
		return
	}
	if s.State != strategy.StateInitial && s.State != strategy.StateBuilding {
		o.cancelBuildTimer()
	}
	o.persist(s)
}

func (o *Orchestrator) persist(s *strategy.Strategy) {
	snap, err := s.Snapshot()
	if err == nil {
		err = o.env.Store.Save(store.KindStrategy, constants.StrategyKey, snap)
	}
	if err != nil {
		o.log.Errorf("failed to save %s: %v", s, err)
	}
}

// Archived returns the uuids of the archived strategies.
func (o *Orchestrator) Archived() ([]string, error) {
	var uuids []string
	err := o.env.Store.LoadAll(store.KindStrategyArchive, func(key string, _ []byte) error {
		uuids = append(uuids, key)
		return nil
	})
	return uuids, err
}
