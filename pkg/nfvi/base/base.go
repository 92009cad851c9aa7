// Copyright © 2024 The vjailbreak authors

package base

import (
	"github.com/openstack-archive/stx-nfv-sub001/pkg/loop"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/nfvi"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/objects"
)

const (
	UnimplementedGatewayName = "base"
	notImplemented           = "not implemented"
)

// UnimplementedGateway answers every call with a failed Response. Backends
// embed it and override what they support.
type UnimplementedGateway struct {
	Poster loop.Poster
}

func (g *UnimplementedGateway) WhoAmI() string {
	return UnimplementedGatewayName
}

// Respond delivers the response through the loop.
func (g *UnimplementedGateway) Respond(cb nfvi.Callback, resp nfvi.Response) {
	if cb == nil {
		return
	}
	g.Poster.Post(func() { cb(resp) })
}

func (g *UnimplementedGateway) unsupported(cb nfvi.Callback) {
	g.Respond(cb, nfvi.Failed(notImplemented))
}

func (g *UnimplementedGateway) LockHost(uuid, name string, cb nfvi.Callback) {
	g.unsupported(cb)
}

func (g *UnimplementedGateway) UnlockHost(uuid, name string, cb nfvi.Callback) {
	g.unsupported(cb)
}

func (g *UnimplementedGateway) RebootHost(uuid, name string, cb nfvi.Callback) {
	g.unsupported(cb)
}

func (g *UnimplementedGateway) UpgradeHost(uuid, name, release string, cb nfvi.Callback) {
	g.unsupported(cb)
}

func (g *UnimplementedGateway) SwactFromHost(uuid, name string, cb nfvi.Callback) {
	g.unsupported(cb)
}

func (g *UnimplementedGateway) DisableHostServices(uuid, name string, service objects.HostService, cb nfvi.Callback) {
	g.unsupported(cb)
}

func (g *UnimplementedGateway) EnableHostServices(uuid, name string, service objects.HostService, cb nfvi.Callback) {
	g.unsupported(cb)
}

func (g *UnimplementedGateway) NotifyHostServicesDisabled(uuid, name string, cb nfvi.Callback) {
	g.unsupported(cb)
}

func (g *UnimplementedGateway) NotifyHostServicesEnabled(uuid, name string, cb nfvi.Callback) {
	g.unsupported(cb)
}

func (g *UnimplementedGateway) QueryAlarms(cb nfvi.Callback) {
	g.unsupported(cb)
}

func (g *UnimplementedGateway) QueryUpgrade(cb nfvi.Callback) {
	g.unsupported(cb)
}

func (g *UnimplementedGateway) UpgradeStart(cb nfvi.Callback) {
	g.unsupported(cb)
}

func (g *UnimplementedGateway) UpgradeActivate(cb nfvi.Callback) {
	g.unsupported(cb)
}

func (g *UnimplementedGateway) UpgradeComplete(cb nfvi.Callback) {
	g.unsupported(cb)
}

func (g *UnimplementedGateway) LiveMigrateInstance(uuid, name, toHost string, cb nfvi.Callback) {
	g.unsupported(cb)
}

func (g *UnimplementedGateway) ColdMigrateInstance(uuid, name string, cb nfvi.Callback) {
	g.unsupported(cb)
}

func (g *UnimplementedGateway) ColdMigrateConfirmInstance(uuid, name string, cb nfvi.Callback) {
	g.unsupported(cb)
}

func (g *UnimplementedGateway) EvacuateInstance(uuid, name string, cb nfvi.Callback) {
	g.unsupported(cb)
}

func (g *UnimplementedGateway) StartInstance(uuid, name string, cb nfvi.Callback) {
	g.unsupported(cb)
}

func (g *UnimplementedGateway) StopInstance(uuid, name string, cb nfvi.Callback) {
	g.unsupported(cb)
}

func (g *UnimplementedGateway) PauseInstance(uuid, name string, cb nfvi.Callback) {
	g.unsupported(cb)
}

func (g *UnimplementedGateway) UnpauseInstance(uuid, name string, cb nfvi.Callback) {
	g.unsupported(cb)
}

func (g *UnimplementedGateway) SuspendInstance(uuid, name string, cb nfvi.Callback) {
	g.unsupported(cb)
}

func (g *UnimplementedGateway) ResumeInstance(uuid, name string, cb nfvi.Callback) {
	g.unsupported(cb)
}

func (g *UnimplementedGateway) RebootInstance(uuid, name string, hard bool, cb nfvi.Callback) {
	g.unsupported(cb)
}

func (g *UnimplementedGateway) RebuildInstance(uuid, name string, cb nfvi.Callback) {
	g.unsupported(cb)
}

func (g *UnimplementedGateway) DeleteInstance(uuid, name string, cb nfvi.Callback) {
	g.unsupported(cb)
}

var _ nfvi.Gateway = &UnimplementedGateway{}
