// Copyright © 2024 The vjailbreak authors

package objects

type AlarmSeverity string

const (
	AlarmSeverityCritical AlarmSeverity = "critical"
	AlarmSeverityMajor    AlarmSeverity = "major"
	AlarmSeverityMinor    AlarmSeverity = "minor"
	AlarmSeverityWarning  AlarmSeverity = "warning"
)

type Alarm struct {
	AlarmID          string        `json:"alarm_id" yaml:"alarm_id"`
	EntityInstanceID string        `json:"entity_instance_id" yaml:"entity_instance_id"`
	Severity         AlarmSeverity `json:"severity" yaml:"severity"`
	ReasonText       string        `json:"reason_text" yaml:"reason_text"`
	MgmtAffecting    bool          `json:"mgmt_affecting" yaml:"mgmt_affecting"`
}

// UpgradeState is the state of a platform upgrade as reported by the backend.
type UpgradeState string

const (
	UpgradeStarting              UpgradeState = "starting"
	UpgradeStarted               UpgradeState = "started"
	UpgradeDataMigration         UpgradeState = "data-migration"
	UpgradeDataMigrationComplete UpgradeState = "data-migration-complete"
	UpgradeDataMigrationFailed   UpgradeState = "data-migration-failed"
	UpgradeUpgradingControllers  UpgradeState = "upgrading-controllers"
	UpgradeUpgradingHosts        UpgradeState = "upgrading-hosts"
	UpgradeActivationRequested   UpgradeState = "activation-requested"
	UpgradeActivating            UpgradeState = "activating"
	UpgradeActivationFailed      UpgradeState = "activation-failed"
	UpgradeActivationComplete    UpgradeState = "activation-complete"
	UpgradeCompleting            UpgradeState = "completing"
	UpgradeCompleted             UpgradeState = "completed"
	UpgradeAborting              UpgradeState = "aborting"
)

type Upgrade struct {
	State       UpgradeState `json:"state" yaml:"state"`
	FromRelease string       `json:"from_release" yaml:"from_release"`
	ToRelease   string       `json:"to_release" yaml:"to_release"`
}
