// Copyright © 2024 The vjailbreak authors

package cli

import (
	"context"

	"github.com/openstack-archive/stx-nfv-sub001/internal/director"
	"github.com/openstack-archive/stx-nfv-sub001/internal/orchestrator"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/config"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/events"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/loop"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/nfvi"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/nfvi/openstack"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/nfvi/simulator"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/nfvi/vsphere"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/store"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/tables"
	"github.com/pkg/errors"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
)

// engine is one wired instance of the inventory, the directors and the
// orchestrator over a store and a backend.
type engine struct {
	loop      *loop.Loop
	inventory *tables.Inventory
	hosts     *director.HostDirector
	instances *director.InstanceDirector
	orch      *orchestrator.Orchestrator
}

func openStore(cfg config.StoreConfig) (store.Store, error) {
	switch cfg.Backend {
	case "memory":
		return store.NewMemoryStore(), nil
	case "configmap":
		rc, err := rest.InClusterConfig()
		if err != nil {
			return nil, errors.Wrap(err, "the configmap store only runs inside a cluster")
		}
		client, err := kubernetes.NewForConfig(rc)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create kubernetes client")
		}
		return store.NewConfigMapStore(client, cfg.Namespace, cfg.Prefix), nil
	default:
		return store.OpenBolt(cfg.Path)
	}
}

func openGateway(ctx context.Context, cfg config.NfviConfig, p loop.Poster) (nfvi.Gateway, error) {
	switch cfg.Backend {
	case "openstack":
		return openstack.Connect(ctx, cfg.OpenStack, cfg.RequestTimeout, p)
	case "vsphere":
		return vsphere.Connect(ctx, cfg.VSphere, cfg.RequestTimeout, p)
	default:
		sim := simulator.New(p)
		sim.AutoComplete = true
		return sim, nil
	}
}

func newEngine(cfg *config.Config, l *loop.Loop, st store.Store, gw nfvi.Gateway) (*engine, error) {
	inv, err := tables.New(st)
	if err != nil {
		return nil, err
	}
	if err := inv.Load(); err != nil {
		return nil, errors.Wrap(err, "failed to load the inventory")
	}
	fanout := &events.Fanout{}
	denv := director.Env{Inventory: inv, Gateway: gw, Poster: l, Timers: l, Listener: fanout}
	instances := director.NewInstanceDirector(cfg.InstanceDirector, denv)
	hosts := director.NewHostDirector(denv, instances)
	orch := orchestrator.New(cfg.Orchestration, orchestrator.Env{
		Inventory: inv,
		Gateway:   gw,
		Hosts:     hosts,
		Instances: instances,
		Timers:    l,
		Store:     st,
	})
	fanout.Register(hosts)
	fanout.Register(orch)
	return &engine{loop: l, inventory: inv, hosts: hosts, instances: instances, orch: orch}, nil
}

// start restores the directors and the strategy and arms the audits. It
// must run on the loop.
func (e *engine) start(cfg *config.Config) error {
	e.hosts.Load()
	e.instances.Load()
	e.hosts.StartAudit(cfg.HostDirector.AuditInterval)
	e.instances.StartRecovery()
	e.orch.StartAudit()
	return e.orch.Load()
}
