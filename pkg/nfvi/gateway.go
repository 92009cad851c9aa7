// Copyright © 2024 The vjailbreak authors

// Package nfvi is the contract between the orchestration engine and the
// infrastructure and compute backends. Every call is asynchronous: the
// backend delivers exactly one Response through the event loop, never from
// inside the call itself. The engine never retries a call on its own.
package nfvi

import (
	"github.com/openstack-archive/stx-nfv-sub001/pkg/objects"
)

//go:generate mockgen -source=gateway.go -destination=gateway_mock.go -package=nfvi

// Response is the completion of a backend call. Result carries call specific
// data such as []objects.Alarm or *objects.Upgrade. ActionID is the
// backend's own reference of the request, when it has one.
type Response struct {
	Completed bool
	Reason    string
	Result    interface{}
	ActionID  string
}

type Callback func(Response)

func Succeeded(result interface{}) Response {
	return Response{Completed: true, Result: result}
}

func Failed(reason string) Response {
	return Response{Completed: false, Reason: reason}
}

type InfrastructureAPI interface {
	LockHost(uuid, name string, cb Callback)
	UnlockHost(uuid, name string, cb Callback)
	RebootHost(uuid, name string, cb Callback)
	UpgradeHost(uuid, name, release string, cb Callback)
	SwactFromHost(uuid, name string, cb Callback)
	DisableHostServices(uuid, name string, service objects.HostService, cb Callback)
	EnableHostServices(uuid, name string, service objects.HostService, cb Callback)
	NotifyHostServicesDisabled(uuid, name string, cb Callback)
	NotifyHostServicesEnabled(uuid, name string, cb Callback)
	QueryAlarms(cb Callback)
	QueryUpgrade(cb Callback)
	UpgradeStart(cb Callback)
	UpgradeActivate(cb Callback)
	UpgradeComplete(cb Callback)
}

type ComputeAPI interface {
	LiveMigrateInstance(uuid, name, toHost string, cb Callback)
	ColdMigrateInstance(uuid, name string, cb Callback)
	ColdMigrateConfirmInstance(uuid, name string, cb Callback)
	EvacuateInstance(uuid, name string, cb Callback)
	StartInstance(uuid, name string, cb Callback)
	StopInstance(uuid, name string, cb Callback)
	PauseInstance(uuid, name string, cb Callback)
	UnpauseInstance(uuid, name string, cb Callback)
	SuspendInstance(uuid, name string, cb Callback)
	ResumeInstance(uuid, name string, cb Callback)
	RebootInstance(uuid, name string, hard bool, cb Callback)
	RebuildInstance(uuid, name string, cb Callback)
	DeleteInstance(uuid, name string, cb Callback)
}

type Gateway interface {
	InfrastructureAPI
	ComputeAPI
}

// Compose joins an infrastructure backend and a compute backend.
func Compose(infra InfrastructureAPI, compute ComputeAPI) Gateway {
	return &composed{InfrastructureAPI: infra, ComputeAPI: compute}
}

type composed struct {
	InfrastructureAPI
	ComputeAPI
}
