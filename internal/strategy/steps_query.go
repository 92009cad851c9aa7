// Copyright © 2024 The vjailbreak authors

package strategy

import (
	"fmt"
	"strings"

	"github.com/openstack-archive/stx-nfv-sub001/pkg/constants"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/events"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/nfvi"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/objects"
)

// dataSyncAlarmPrefix is the alarm id family raised while storage
// replication catches up.
const dataSyncAlarmPrefix = "800."

// blockingAlarms returns the ids of the alarms that stop a strategy.
func blockingAlarms(alarms []objects.Alarm, restriction AlarmRestriction, ignore []string) []string {
	var ids []string
	for _, a := range alarms {
		skip := false
		for _, id := range ignore {
			if id == a.AlarmID {
				skip = true
				break
			}
		}
		if skip || (restriction == AlarmsRelaxed && !a.MgmtAffecting) {
			continue
		}
		ids = append(ids, a.AlarmID)
	}
	return ids
}

func alarmsOf(resp nfvi.Response) []objects.Alarm {
	alarms, _ := resp.Result.([]objects.Alarm)
	return alarms
}

type AlarmParams struct {
	FailOnAlarms      bool             `mapstructure:"fail_on_alarms"`
	AlarmRestrictions AlarmRestriction `mapstructure:"alarm_restrictions"`
	IgnoreAlarms      []string         `mapstructure:"ignore_alarms"`
}

// QueryAlarmsStep reads the active alarms into the strategy and, when
// asked, fails while any of them blocks.
type QueryAlarmsStep struct {
	StepBase
	AlarmParams
}

func newQueryAlarmsStep(restriction AlarmRestriction, failOnAlarms bool) *QueryAlarmsStep {
	s := newStep(StepQueryAlarms).(*QueryAlarmsStep)
	s.setTimeout(constants.StepQueryTimeout)
	s.AlarmRestrictions = restriction
	s.FailOnAlarms = failOnAlarms
	return s
}

func (s *QueryAlarmsStep) Kind() StepKind { return StepQueryAlarms }

func (s *QueryAlarmsStep) Params() interface{} { return &s.AlarmParams }

func (s *QueryAlarmsStep) Apply() (Result, string) {
	s.env().Gateway.QueryAlarms(func(resp nfvi.Response) {
		if !s.Waiting() {
			return
		}
		if !resp.Completed {
			s.Complete(ResultFailed, fmt.Sprintf("alarm query failed: %s", resp.Reason))
			return
		}
		alarms := alarmsOf(resp)
		s.strategy().Alarms = alarms
		if s.FailOnAlarms {
			if ids := blockingAlarms(alarms, s.AlarmRestrictions, s.IgnoreAlarms); len(ids) > 0 {
				s.Complete(ResultFailed, fmt.Sprintf("active alarms present [ %s ]", strings.Join(ids, ", ")))
				return
			}
		}
		s.Complete(ResultSuccess, "")
	})
	return ResultWait, ""
}

// QueryUpgradeStep reads the platform upgrade into the strategy.
type QueryUpgradeStep struct {
	StepBase
}

func newQueryUpgradeStep() *QueryUpgradeStep {
	s := newStep(StepQueryUpgrade).(*QueryUpgradeStep)
	s.setTimeout(constants.StepQueryTimeout)
	return s
}

func (s *QueryUpgradeStep) Kind() StepKind { return StepQueryUpgrade }

func (s *QueryUpgradeStep) Apply() (Result, string) {
	s.env().Gateway.QueryUpgrade(func(resp nfvi.Response) {
		if !s.Waiting() {
			return
		}
		if !resp.Completed {
			s.Complete(ResultFailed, fmt.Sprintf("upgrade query failed: %s", resp.Reason))
			return
		}
		upgrade, _ := resp.Result.(*objects.Upgrade)
		s.strategy().Upgrade = upgrade
		s.Complete(ResultSuccess, "")
	})
	return ResultWait, ""
}

// SystemStabilizeStep gives the system time to settle. Running out its
// timeout is its success.
type SystemStabilizeStep struct {
	StepBase
}

func newSystemStabilizeStep() *SystemStabilizeStep {
	s := newStep(StepSystemStabilize).(*SystemStabilizeStep)
	s.setTimeout(constants.SystemStabilizeDuration)
	return s
}

func (s *SystemStabilizeStep) Kind() StepKind { return StepSystemStabilize }

func (s *SystemStabilizeStep) Apply() (Result, string) {
	return ResultWait, ""
}

func (s *SystemStabilizeStep) TimedOut() (Result, string) {
	return ResultSuccess, ""
}

// WaitDataSyncStep polls the alarms on every audit tick until no storage
// replication alarm is left.
type WaitDataSyncStep struct {
	StepBase
	AlarmParams
	querying bool
}

func newWaitDataSyncStep(restriction AlarmRestriction) *WaitDataSyncStep {
	s := newStep(StepWaitDataSync).(*WaitDataSyncStep)
	s.setTimeout(constants.StepWaitDataSyncTimeout)
	s.AlarmRestrictions = restriction
	return s
}

func (s *WaitDataSyncStep) Kind() StepKind { return StepWaitDataSync }

func (s *WaitDataSyncStep) Params() interface{} { return &s.AlarmParams }

func (s *WaitDataSyncStep) Apply() (Result, string) {
	s.querying = false
	s.query()
	return ResultWait, ""
}

func (s *WaitDataSyncStep) query() {
	if s.querying {
		return
	}
	s.querying = true
	s.env().Gateway.QueryAlarms(func(resp nfvi.Response) {
		s.querying = false
		if !s.Waiting() || !resp.Completed {
			return
		}
		s.strategy().Alarms = alarmsOf(resp)
		for _, id := range blockingAlarms(alarmsOf(resp), AlarmsStrict, s.IgnoreAlarms) {
			if strings.HasPrefix(id, dataSyncAlarmPrefix) {
				return
			}
		}
		s.Complete(ResultSuccess, "")
	})
}

func (s *WaitDataSyncStep) HandleEvent(event events.Event, _ interface{}) bool {
	if event != events.HostAudit {
		return false
	}
	s.query()
	return true
}

func (s *WaitDataSyncStep) Cancel() {
	s.querying = false
}

type UpgradeParams struct {
	Requested bool `mapstructure:"requested"`
}

// UpgradeStep requests a platform upgrade transition and polls the upgrade
// until it reaches the wanted state.
type UpgradeStep struct {
	StepBase
	UpgradeParams
	kind    StepKind
	polling bool
}

func newUpgradeStep(kind StepKind) *UpgradeStep {
	return &UpgradeStep{kind: kind}
}

func newUpgradeStateStep(kind StepKind) *UpgradeStep {
	s := newStep(kind).(*UpgradeStep)
	switch kind {
	case StepUpgradeStart:
		s.setTimeout(constants.StepUpgradeStartTimeout)
	case StepUpgradeActivate:
		s.setTimeout(constants.StepUpgradeActivateTimeout)
	default:
		s.setTimeout(constants.StepUpgradeCompleteTimeout)
	}
	return s
}

func (s *UpgradeStep) Kind() StepKind { return s.kind }

func (s *UpgradeStep) Params() interface{} { return &s.UpgradeParams }

func (s *UpgradeStep) request(cb nfvi.Callback) {
	gw := s.env().Gateway
	switch s.kind {
	case StepUpgradeStart:
		gw.UpgradeStart(cb)
	case StepUpgradeActivate:
		gw.UpgradeActivate(cb)
	default:
		gw.UpgradeComplete(cb)
	}
}

// reached reports whether the upgrade is where the step takes it, or why
// it never will be.
func (s *UpgradeStep) reached(u *objects.Upgrade) (bool, string) {
	switch s.kind {
	case StepUpgradeStart:
		if u == nil {
			return false, ""
		}
		switch u.State {
		case objects.UpgradeDataMigrationFailed:
			return false, "upgrade data migration failed"
		case objects.UpgradeStarted, objects.UpgradeDataMigrationComplete, objects.UpgradeUpgradingControllers:
			return true, ""
		}
	case StepUpgradeActivate:
		if u == nil {
			return false, "upgrade no longer exists"
		}
		switch u.State {
		case objects.UpgradeActivationFailed:
			return false, "upgrade activation failed"
		case objects.UpgradeActivationComplete:
			return true, ""
		}
	default:
		if u == nil || u.State == objects.UpgradeCompleted {
			return true, ""
		}
	}
	return false, ""
}

func (s *UpgradeStep) Apply() (Result, string) {
	s.polling = false
	if s.Requested {
		s.poll()
		return ResultWait, ""
	}
	s.request(func(resp nfvi.Response) {
		if !s.Waiting() {
			return
		}
		if !resp.Completed {
			s.Complete(ResultFailed, fmt.Sprintf("%s failed: %s", s.Name, resp.Reason))
			return
		}
		s.Requested = true
		s.Complete(ResultWait, "")
		s.poll()
	})
	return ResultWait, ""
}

func (s *UpgradeStep) poll() {
	if s.polling {
		return
	}
	s.polling = true
	s.env().Gateway.QueryUpgrade(func(resp nfvi.Response) {
		s.polling = false
		if !s.Waiting() || !resp.Completed {
			return
		}
		upgrade, _ := resp.Result.(*objects.Upgrade)
		s.strategy().Upgrade = upgrade
		done, reason := s.reached(upgrade)
		switch {
		case done:
			s.Complete(ResultSuccess, "")
		case reason != "":
			s.Complete(ResultFailed, reason)
		}
	})
}

func (s *UpgradeStep) HandleEvent(event events.Event, _ interface{}) bool {
	if event != events.HostAudit || !s.Requested {
		return false
	}
	s.poll()
	return true
}

func (s *UpgradeStep) Cancel() {
	s.polling = false
}
