// Copyright © 2024 The vjailbreak authors

package strategy

import (
	"fmt"
	"time"

	"github.com/openstack-archive/stx-nfv-sub001/pkg/events"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/loop"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/metrics"
)

// Phase is an ordered list of stages.
type Phase struct {
	Name         string
	Stages       []*Stage
	CurrentStage int
	// StopAtStage is the last stage to apply before pausing, -1 for none.
	StopAtStage  int
	Result       Result
	ResultReason string

	strategy *Strategy
}

func newPhase(s *Strategy, name string) *Phase {
	return &Phase{Name: name, StopAtStage: -1, Result: ResultInitial, strategy: s}
}

func (p *Phase) addStage(name string, steps ...Step) *Stage {
	st := &Stage{Name: name, Result: ResultInitial, phase: p}
	for _, step := range steps {
		st.add(step)
	}
	p.Stages = append(p.Stages, st)
	return st
}

// Stage returns the stage with the given index, or nil.
func (p *Phase) Stage(i int) *Stage {
	if i < 0 || i >= len(p.Stages) {
		return nil
	}
	return p.Stages[i]
}

func (p *Phase) start(stopAt int) {
	p.StopAtStage = stopAt
	p.Result = ResultInprogress
	p.ResultReason = ""
	p.next()
}

func (p *Phase) resume() {
	p.Result = ResultInprogress
	p.next()
}

func (p *Phase) next() {
	if p.CurrentStage >= len(p.Stages) {
		p.finish(ResultSuccess, "")
		return
	}
	p.Stages[p.CurrentStage].start()
}

func (p *Phase) current() *Stage {
	return p.Stage(p.CurrentStage)
}

func (p *Phase) stageDone(st *Stage) {
	if st.Result != ResultSuccess {
		p.finish(st.Result, st.ResultReason)
		return
	}
	p.CurrentStage++
	p.strategy.changed()
	if p.CurrentStage >= len(p.Stages) {
		p.finish(ResultSuccess, "")
		return
	}
	if p.StopAtStage >= 0 && p.CurrentStage > p.StopAtStage {
		p.StopAtStage = -1
		p.strategy.phaseDone(p, ResultInprogress, "")
		return
	}
	p.next()
}

func (p *Phase) finish(result Result, reason string) {
	p.Result = result
	p.ResultReason = reason
	p.strategy.phaseDone(p, result, reason)
}

// stop cancels the running stage and finishes the phase with result.
func (p *Phase) stop(result Result, reason string) {
	if st := p.current(); st != nil && st.Result == ResultInprogress {
		st.cancel()
		st.Result = result
		st.ResultReason = reason
	}
	p.Result = result
	p.ResultReason = reason
}

func (p *Phase) cancel() {
	if st := p.current(); st != nil {
		st.cancel()
	}
}

func (p *Phase) handleEvent(event events.Event, data interface{}) bool {
	st := p.current()
	if st == nil || st.Result != ResultInprogress {
		return false
	}
	return st.handleEvent(event, data)
}

// Stage is an ordered list of steps applied one after the other.
type Stage struct {
	Name         string
	Steps        []Step
	CurrentStep  int
	Result       Result
	ResultReason string

	phase      *Phase
	timer      loop.TimerID
	timerArmed bool
}

func (st *Stage) add(step Step) {
	b := step.Base()
	b.stage = st
	if b.Result == "" {
		b.Result = ResultInitial
	}
	st.Steps = append(st.Steps, step)
}

func (st *Stage) strategy() *Strategy {
	return st.phase.strategy
}

func (st *Stage) timers() loop.Timers {
	return st.strategy().env.Timers
}

func (st *Stage) now() string {
	return st.timers().Now().UTC().Format(time.RFC3339)
}

func (st *Stage) start() {
	st.Result = ResultInprogress
	st.ResultReason = ""
	st.strategy().log.Infof("applying stage %s of %s phase", st.Name, st.phase.Name)
	st.run()
}

func (st *Stage) run() {
	for st.CurrentStep < len(st.Steps) {
		step := st.Steps[st.CurrentStep]
		b := step.Base()
		b.Result = ResultInprogress
		b.ResultReason = ""
		b.StartDate = st.now()
		b.EndDate = ""
		st.strategy().log.Debugf("applying step %s", b.Name)
		result, reason := step.Apply()
		if st.Result != ResultInprogress || st.Steps[st.CurrentStep] != step {
			return
		}
		if result == ResultWait {
			b.waiting = true
			if d := b.TimeoutDuration(); d > 0 {
				st.timer = st.timers().AddTimer(fmt.Sprintf("step/%s", b.Name), d, func() { st.timedOut(b) })
				st.timerArmed = true
			}
			st.strategy().changed()
			return
		}
		if !st.settle(b, result, reason) {
			return
		}
	}
	st.finish(ResultSuccess, "")
}

// settle records the outcome of the current step and reports whether the
// stage goes on with the next one.
func (st *Stage) settle(b *StepBase, result Result, reason string) bool {
	b.waiting = false
	b.Result = result
	b.ResultReason = reason
	b.EndDate = st.now()
	if started, err := time.Parse(time.RFC3339, b.StartDate); err == nil {
		metrics.RecordStepCompleted(b.Name, string(result), st.timers().Now().Sub(started))
	}
	if result != ResultSuccess {
		st.strategy().log.Infof("step %s %s: %s", b.Name, result, reason)
		st.finish(result, reason)
		return false
	}
	st.CurrentStep++
	st.strategy().changed()
	if st.strategy().abortPending() {
		st.finish(ResultAborted, "aborted by request")
		return false
	}
	return true
}

func (st *Stage) isCurrent(b *StepBase) bool {
	return st.Result == ResultInprogress && b.waiting &&
		st.CurrentStep < len(st.Steps) && st.Steps[st.CurrentStep].Base() == b
}

func (st *Stage) stepComplete(b *StepBase, result Result, reason string) {
	if !st.isCurrent(b) {
		st.strategy().log.Debugf("ignoring stale completion of step %s", b.Name)
		return
	}
	if result == ResultWait {
		st.strategy().changed()
		return
	}
	st.cancelTimer()
	if st.settle(b, result, reason) {
		st.run()
	}
}

func (st *Stage) timedOut(b *StepBase) {
	st.timerArmed = false
	if !st.isCurrent(b) {
		return
	}
	step := st.Steps[st.CurrentStep]
	result, reason := ResultTimedOut, fmt.Sprintf("%s timed out", b.Name)
	if h, ok := step.(TimeoutHandler); ok {
		result, reason = h.TimedOut()
	}
	if result != ResultSuccess {
		if c, ok := step.(Canceller); ok {
			c.Cancel()
		}
	}
	if st.settle(b, result, reason) {
		st.run()
	}
}

func (st *Stage) handleEvent(event events.Event, data interface{}) bool {
	if st.CurrentStep >= len(st.Steps) {
		return false
	}
	step := st.Steps[st.CurrentStep]
	if !step.Base().waiting {
		return false
	}
	h, ok := step.(EventHandler)
	if !ok {
		return false
	}
	return h.HandleEvent(event, data)
}

func (st *Stage) cancelTimer() {
	if st.timerArmed {
		st.timers().CancelTimer(st.timer)
		st.timerArmed = false
	}
}

// cancel stops waiting on the current step. Late completions are dropped.
func (st *Stage) cancel() {
	st.cancelTimer()
	if st.CurrentStep >= len(st.Steps) {
		return
	}
	step := st.Steps[st.CurrentStep]
	b := step.Base()
	if !b.waiting {
		return
	}
	b.waiting = false
	if c, ok := step.(Canceller); ok {
		c.Cancel()
	}
}

func (st *Stage) finish(result Result, reason string) {
	st.cancelTimer()
	st.Result = result
	st.ResultReason = reason
	st.phase.stageDone(st)
}
