// Copyright © 2024 The vjailbreak authors

package objects

import (
	"sort"
	"time"
)

type InstanceAdminState string

const (
	InstanceAdminLocked   InstanceAdminState = "locked"
	InstanceAdminUnlocked InstanceAdminState = "unlocked"
)

type InstanceOperState string

const (
	InstanceOperEnabled  InstanceOperState = "enabled"
	InstanceOperDisabled InstanceOperState = "disabled"
)

type InstanceAvailStatus string

const (
	InstanceAvailPaused    InstanceAvailStatus = "paused"
	InstanceAvailSuspended InstanceAvailStatus = "suspended"
	InstanceAvailResized   InstanceAvailStatus = "resized"
	InstanceAvailFailed    InstanceAvailStatus = "failed"
	InstanceAvailCrashed   InstanceAvailStatus = "crashed"
	InstanceAvailPowerOff  InstanceAvailStatus = "power-off"
	InstanceAvailDeleted   InstanceAvailStatus = "deleted"
)

// InstanceTaskState mirrors the task reported by the compute backend.
type InstanceTaskState string

const (
	InstanceTaskNone       InstanceTaskState = ""
	InstanceTaskMigrating  InstanceTaskState = "migrating"
	InstanceTaskRebuilding InstanceTaskState = "rebuilding"
	InstanceTaskRebooting  InstanceTaskState = "rebooting"
	InstanceTaskEvacuating InstanceTaskState = "evacuating"
	InstanceTaskDeleting   InstanceTaskState = "deleting"
)

// AvailStatusSet is a sorted set of availability flags.
type AvailStatusSet []InstanceAvailStatus

func (s AvailStatusSet) Has(status InstanceAvailStatus) bool {
	for _, v := range s {
		if v == status {
			return true
		}
	}
	return false
}

func (s *AvailStatusSet) Add(status InstanceAvailStatus) {
	if s.Has(status) {
		return
	}
	*s = append(*s, status)
	sort.Slice(*s, func(i, j int) bool { return (*s)[i] < (*s)[j] })
}

func (s *AvailStatusSet) Remove(status InstanceAvailStatus) {
	out := (*s)[:0]
	for _, v := range *s {
		if v != status {
			out = append(out, v)
		}
	}
	*s = out
}

// Instance is the inventory record of a guest.
type Instance struct {
	UUID                 string              `json:"uuid" yaml:"uuid"`
	Name                 string              `json:"name" yaml:"name"`
	TenantID             string              `json:"tenant_id,omitempty" yaml:"tenant_id,omitempty"`
	HostName             string              `json:"host_name" yaml:"host_name"`
	AdminState           InstanceAdminState  `json:"admin_state" yaml:"admin_state"`
	OperState            InstanceOperState   `json:"oper_state" yaml:"oper_state"`
	AvailStatus          AvailStatusSet      `json:"avail_status,omitempty" yaml:"avail_status,omitempty"`
	TaskState            InstanceTaskState   `json:"task_state,omitempty" yaml:"task_state,omitempty"`
	RecoveryPriority     int                 `json:"recovery_priority,omitempty" yaml:"recovery_priority,omitempty"`
	AutoRecovery         bool                `json:"auto_recovery" yaml:"auto_recovery"`
	LiveMigrationSupport bool                `json:"live_migration_support" yaml:"live_migration_support"`
	LocalImage           bool                `json:"local_image,omitempty" yaml:"local_image,omitempty"`
	VCPUs                int                 `json:"vcpus" yaml:"vcpus"`
	MemoryMB             int                 `json:"memory_mb" yaml:"memory_mb"`
	DiskGB               int                 `json:"disk_gb" yaml:"disk_gb"`
	SwapGB               int                 `json:"swap_gb" yaml:"swap_gb"`
	StateEnteredAt       time.Time           `json:"state_entered_at" yaml:"-"`
	FailureReason        string              `json:"failure_reason,omitempty" yaml:"-"`
	ActionData           *InstanceActionData `json:"action_data,omitempty" yaml:"-"`
	LastActionData       *InstanceActionData `json:"last_action_data,omitempty" yaml:"-"`
}

const (
	RecoveryPriorityHighest = 1
	RecoveryPriorityLowest  = 10
)

func (i *Instance) IsLocked() bool {
	return i.AdminState == InstanceAdminLocked
}

func (i *Instance) IsEnabled() bool {
	return i.OperState == InstanceOperEnabled
}

func (i *Instance) IsDisabled() bool {
	return i.OperState == InstanceOperDisabled
}

func (i *Instance) IsPaused() bool {
	return i.AvailStatus.Has(InstanceAvailPaused)
}

func (i *Instance) IsSuspended() bool {
	return i.AvailStatus.Has(InstanceAvailSuspended)
}

func (i *Instance) IsResized() bool {
	return i.AvailStatus.Has(InstanceAvailResized)
}

func (i *Instance) IsFailed() bool {
	return i.AvailStatus.Has(InstanceAvailFailed) || i.AvailStatus.Has(InstanceAvailCrashed)
}

func (i *Instance) IsDeleted() bool {
	return i.AvailStatus.Has(InstanceAvailDeleted)
}

func (i *Instance) IsMigrating() bool {
	return i.TaskState == InstanceTaskMigrating
}

func (i *Instance) IsRebuilding() bool {
	return i.TaskState == InstanceTaskRebuilding
}

func (i *Instance) IsRebooting() bool {
	return i.TaskState == InstanceTaskRebooting
}

func (i *Instance) IsEvacuating() bool {
	return i.TaskState == InstanceTaskEvacuating
}

func (i *Instance) SupportsLiveMigration() bool {
	return i.LiveMigrationSupport
}

// Priority returns the recovery priority, unset priorities map to the lowest.
func (i *Instance) Priority() int {
	if i.RecoveryPriority < RecoveryPriorityHighest || i.RecoveryPriority > RecoveryPriorityLowest {
		return RecoveryPriorityLowest
	}
	return i.RecoveryPriority
}

func (i *Instance) ElapsedTimeInState(now time.Time) time.Duration {
	if i.StateEnteredAt.IsZero() {
		return 0
	}
	return now.Sub(i.StateEnteredAt)
}
