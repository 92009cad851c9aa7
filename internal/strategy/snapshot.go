// Copyright © 2024 The vjailbreak authors

package strategy

import (
	"encoding/json"
	"fmt"

	"github.com/mitchellh/mapstructure"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/objects"
	"github.com/pkg/errors"
)

// StrategySnapshot is the persisted form of a strategy. Restoring a
// snapshot and taking a new one gives back the same document.
type StrategySnapshot struct {
	UUID string `json:"uuid"`
	Request
	State        State            `json:"state"`
	CurrentPhase string           `json:"current_phase"`
	BuildPhase   *PhaseSnapshot   `json:"build_phase"`
	ApplyPhase   *PhaseSnapshot   `json:"apply_phase"`
	AbortPhase   *PhaseSnapshot   `json:"abort_phase,omitempty"`
	Alarms       []objects.Alarm  `json:"alarms"`
	Upgrade      *objects.Upgrade `json:"upgrade"`
}

type PhaseSnapshot struct {
	Name         string           `json:"name"`
	TotalStages  int              `json:"total_stages"`
	CurrentStage int              `json:"current_stage"`
	StopAtStage  int              `json:"stop_at_stage"`
	Result       Result           `json:"result"`
	ResultReason string           `json:"result_reason"`
	Stages       []*StageSnapshot `json:"stages"`
}

type StageSnapshot struct {
	Name         string                   `json:"name"`
	TotalSteps   int                      `json:"total_steps"`
	CurrentStep  int                      `json:"current_step"`
	Result       Result                   `json:"result"`
	ResultReason string                   `json:"result_reason"`
	Steps        []map[string]interface{} `json:"steps"`
}

// Snapshot captures the strategy. Waiting steps are recorded as in
// progress; Resume applies them again.
func (s *Strategy) Snapshot() (*StrategySnapshot, error) {
	snap := &StrategySnapshot{
		UUID:         s.UUID,
		Request:      s.Request,
		State:        s.State,
		CurrentPhase: s.CurrentPhase,
		Alarms:       s.Alarms,
		Upgrade:      s.Upgrade,
	}
	var err error
	if snap.BuildPhase, err = phaseSnapshot(s.BuildPhase); err != nil {
		return nil, err
	}
	if snap.ApplyPhase, err = phaseSnapshot(s.ApplyPhase); err != nil {
		return nil, err
	}
	if snap.AbortPhase, err = phaseSnapshot(s.AbortPhase); err != nil {
		return nil, err
	}
	return snap, nil
}

func phaseSnapshot(p *Phase) (*PhaseSnapshot, error) {
	if p == nil {
		return nil, nil
	}
	ps := &PhaseSnapshot{
		Name:         p.Name,
		TotalStages:  len(p.Stages),
		CurrentStage: p.CurrentStage,
		StopAtStage:  p.StopAtStage,
		Result:       p.Result,
		ResultReason: p.ResultReason,
		Stages:       make([]*StageSnapshot, 0, len(p.Stages)),
	}
	for _, st := range p.Stages {
		ss := &StageSnapshot{
			Name:         st.Name,
			TotalSteps:   len(st.Steps),
			CurrentStep:  st.CurrentStep,
			Result:       st.Result,
			ResultReason: st.ResultReason,
			Steps:        make([]map[string]interface{}, 0, len(st.Steps)),
		}
		for _, step := range st.Steps {
			m, err := stepSnapshot(step)
			if err != nil {
				return nil, err
			}
			ss.Steps = append(ss.Steps, m)
		}
		ps.Stages = append(ps.Stages, ss)
	}
	return ps, nil
}

func stepSnapshot(step Step) (map[string]interface{}, error) {
	out := make(map[string]interface{})
	if err := mapstructure.Decode(step.Base().StepRecord, &out); err != nil {
		return nil, errors.Wrapf(err, "failed to encode step %s", step.Kind())
	}
	if params := step.Params(); params != nil {
		extra := make(map[string]interface{})
		if err := mapstructure.Decode(params, &extra); err != nil {
			return nil, errors.Wrapf(err, "failed to encode %s parameters", step.Kind())
		}
		for k, v := range extra {
			out[k] = v
		}
	}
	return out, nil
}

// Restore rebuilds a strategy from its snapshot and attaches it to env.
func Restore(env *Env, snap *StrategySnapshot) (*Strategy, error) {
	s := &Strategy{
		UUID:         snap.UUID,
		Request:      snap.Request,
		State:        snap.State,
		CurrentPhase: snap.CurrentPhase,
		Alarms:       snap.Alarms,
		Upgrade:      snap.Upgrade,
	}
	s.attach(env)
	var err error
	if s.BuildPhase, err = restorePhase(s, snap.BuildPhase); err != nil {
		return nil, err
	}
	if s.ApplyPhase, err = restorePhase(s, snap.ApplyPhase); err != nil {
		return nil, err
	}
	if s.AbortPhase, err = restorePhase(s, snap.AbortPhase); err != nil {
		return nil, err
	}
	if s.BuildPhase == nil || s.ApplyPhase == nil {
		return nil, errors.Errorf("strategy %s is missing a phase", s.UUID)
	}
	return s, nil
}

func restorePhase(s *Strategy, ps *PhaseSnapshot) (*Phase, error) {
	if ps == nil {
		return nil, nil
	}
	if ps.TotalStages != len(ps.Stages) {
		return nil, errors.Errorf("phase %s: %d stages recorded, %d found", ps.Name, ps.TotalStages, len(ps.Stages))
	}
	p := newPhase(s, ps.Name)
	p.CurrentStage = ps.CurrentStage
	p.StopAtStage = ps.StopAtStage
	p.Result = ps.Result
	p.ResultReason = ps.ResultReason
	for _, ss := range ps.Stages {
		if ss.TotalSteps != len(ss.Steps) {
			return nil, errors.Errorf("stage %s: %d steps recorded, %d found", ss.Name, ss.TotalSteps, len(ss.Steps))
		}
		st := p.addStage(ss.Name)
		st.CurrentStep = ss.CurrentStep
		st.Result = ss.Result
		st.ResultReason = ss.ResultReason
		for _, m := range ss.Steps {
			step, err := restoreStep(m)
			if err != nil {
				return nil, errors.Wrapf(err, "stage %s", ss.Name)
			}
			st.add(step)
		}
	}
	return p, nil
}

func restoreStep(m map[string]interface{}) (Step, error) {
	name, _ := m["name"].(string)
	kind, ok := ParseStepKind(name)
	if !ok {
		return nil, fmt.Errorf("unknown step %q", name)
	}
	step := stepFactories[kind]()
	if err := mapstructure.WeakDecode(m, &step.Base().StepRecord); err != nil {
		return nil, errors.Wrapf(err, "failed to decode step %s", name)
	}
	if params := step.Params(); params != nil {
		if err := mapstructure.WeakDecode(m, params); err != nil {
			return nil, errors.Wrapf(err, "failed to decode %s parameters", name)
		}
	}
	return step, nil
}

// Marshal encodes the strategy snapshot as JSON.
func (s *Strategy) Marshal() ([]byte, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return json.Marshal(snap)
}

// Unmarshal restores a strategy from the output of Marshal.
func Unmarshal(env *Env, data []byte) (*Strategy, error) {
	snap := &StrategySnapshot{}
	if err := json.Unmarshal(data, snap); err != nil {
		return nil, errors.Wrap(err, "failed to decode strategy")
	}
	return Restore(env, snap)
}
