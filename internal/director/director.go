// Copyright © 2024 The vjailbreak authors

// Package director holds the Host Director and the Instance Director. They
// are the only components that start bulk operations, and they keep at most
// one live operation per host.
package director

import (
	"fmt"

	"github.com/openstack-archive/stx-nfv-sub001/pkg/events"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/loop"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/metrics"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/nfvi"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/objects"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/tables"
)

type Env struct {
	Inventory *tables.Inventory
	Gateway   nfvi.Gateway
	Poster    loop.Poster
	Timers    loop.Timers
	// Listener receives every event the directors raise, always from a
	// fresh loop callback.
	Listener events.Listener
}

func (e *Env) emit(event events.Event, data interface{}) {
	if e.Listener == nil {
		return
	}
	e.Poster.Post(func() { e.Listener.HandleEvent(event, data) })
}

// resolveHosts looks every name up, failing op on the first unknown one.
func resolveHosts(inv *tables.Inventory, op *objects.Operation, names []string) []*objects.Host {
	hosts := make([]*objects.Host, 0, len(names))
	for _, name := range names {
		op.Add(name, objects.OperationReady)
	}
	for _, name := range names {
		h := inv.Host(name)
		if h == nil || h.Deleted {
			op.Fail(fmt.Sprintf("unknown host %s", name))
			return nil
		}
		hosts = append(hosts, h)
	}
	return hosts
}

const (
	hostDirectorName     = "host"
	instanceDirectorName = "instance"
)

func operationStarted(op *objects.Operation) {
	metrics.RecordOperationStarted(string(op.Type))
}

func recordOperation(op *objects.Operation) {
	metrics.RecordOperation(string(op.Type), string(op.State()))
}
