// Copyright © 2024 The vjailbreak authors

package constants

import "time"

const (
	AppName        = "vimctl"
	EnvPrefix      = "VIMCTL"
	ConfigFileName = ".vimctl.yaml"

	// timeouts of host works
	HostServicesTimeout      = 60 * time.Second
	HostNotifyTimeout        = 30 * time.Second
	HostInstancesMoveTimeout = 15 * time.Minute
	HostEnableRetryDelay     = 30 * time.Second

	// timeouts of instance actions
	InstanceLiveMigrateTimeout = 15 * time.Minute
	InstanceColdMigrateTimeout = 30 * time.Minute
	InstanceEvacuateTimeout    = 30 * time.Minute
	InstanceStartStopTimeout   = 5 * time.Minute
	InstanceRebootTimeout      = 10 * time.Minute
	InstanceRebuildTimeout     = 30 * time.Minute
	InstanceDefaultTimeout     = 5 * time.Minute

	// strategy step timeouts
	StepQueryTimeout           = 60 * time.Second
	StepLockHostsTimeout       = 15 * time.Minute
	StepUnlockHostsTimeout     = 30 * time.Minute
	StepUpgradeHostsTimeout    = 60 * time.Minute
	StepSwactHostsTimeout      = 15 * time.Minute
	StepServicesTimeout        = 5 * time.Minute
	StepMigrateTimeout         = 60 * time.Minute
	StepStopStartTimeout       = 20 * time.Minute
	StepWaitDataSyncTimeout    = 2 * time.Hour
	StepUpgradeStartTimeout    = 30 * time.Minute
	StepUpgradeActivateTimeout = 60 * time.Minute
	StepUpgradeCompleteTimeout = 30 * time.Minute
	SystemStabilizeDuration    = 60 * time.Second

	MaxUnlockRetries = 5

	StrategyKey = "current"
)
