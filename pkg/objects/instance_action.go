// Copyright © 2024 The vjailbreak authors

package objects

type ActionType string

const (
	ActionNone               ActionType = ""
	ActionPause              ActionType = "pause"
	ActionUnpause            ActionType = "unpause"
	ActionSuspend            ActionType = "suspend"
	ActionResume             ActionType = "resume"
	ActionStart              ActionType = "start"
	ActionStop               ActionType = "stop"
	ActionReboot             ActionType = "reboot"
	ActionRebuild            ActionType = "rebuild"
	ActionLiveMigrate        ActionType = "live-migrate"
	ActionColdMigrate        ActionType = "cold-migrate"
	ActionColdMigrateConfirm ActionType = "cold-migrate-confirm"
	ActionEvacuate           ActionType = "evacuate"
	ActionDelete             ActionType = "delete"
	ActionFail               ActionType = "fail"
)

// ActionTypes lists every action kind in dispatch order.
var ActionTypes = []ActionType{
	ActionPause, ActionUnpause, ActionSuspend, ActionResume, ActionStart,
	ActionStop, ActionReboot, ActionRebuild, ActionLiveMigrate, ActionColdMigrate,
	ActionColdMigrateConfirm, ActionEvacuate, ActionDelete, ActionFail,
}

type ActionState string

const (
	ActionStateInitial   ActionState = "initial"
	ActionStateQueued    ActionState = "queued"
	ActionStateStarted   ActionState = "started"
	ActionStateCompleted ActionState = "completed"
	ActionStateFailed    ActionState = "failed"
	ActionStateRejected  ActionState = "rejected"
	ActionStateCancelled ActionState = "cancelled"
)

type ActionInitiatedBy string

const (
	ActionInitiatedByDirector ActionInitiatedBy = "director"
	ActionInitiatedByTenant   ActionInitiatedBy = "tenant"
	ActionInitiatedByInstance ActionInitiatedBy = "instance"
)

// ActionParameters carries the optional per-action inputs.
type ActionParameters struct {
	TargetHost string `json:"target_host,omitempty"`
	HardReboot bool   `json:"hard_reboot,omitempty"`
}

// InstanceActionData records one requested action. It is superseded, not
// destroyed, when the next action starts and kept as the last action.
type InstanceActionData struct {
	Seq          uint64            `json:"seq"`
	Action       ActionType        `json:"action"`
	State        ActionState       `json:"state"`
	Reason       string            `json:"reason,omitempty"`
	InitiatedBy  ActionInitiatedBy `json:"initiated_by"`
	NfviActionID string            `json:"nfvi_action_id,omitempty"`
	Parameters   ActionParameters  `json:"parameters"`
	FromHost     string            `json:"from_host,omitempty"`
	// Result is the outcome of the action's task: success, failed,
	// timed-out or aborted.
	Result string `json:"result,omitempty"`
}

func (d *InstanceActionData) IsInprogress() bool {
	return d != nil && (d.State == ActionStateQueued || d.State == ActionStateStarted)
}

func (d *InstanceActionData) IsTerminal() bool {
	if d == nil {
		return true
	}
	switch d.State {
	case ActionStateCompleted, ActionStateFailed, ActionStateRejected, ActionStateCancelled:
		return true
	}
	return false
}
