// Copyright © 2024 The vjailbreak authors

package director

import (
	"fmt"
	"testing"
	"time"

	"github.com/openstack-archive/stx-nfv-sub001/pkg/config"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/events"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/loop"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/nfvi"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/nfvi/simulator"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/objects"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/store"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/tables"
	"github.com/stretchr/testify/require"
	testingclock "k8s.io/utils/clock/testing"
)

type seenEvent struct {
	event events.Event
	data  interface{}
}

type fixture struct {
	clock     *testingclock.FakeClock
	loop      *loop.Loop
	sim       *simulator.Simulator
	inv       *tables.Inventory
	cfg       config.InstanceDirectorConfig
	fanout    *events.Fanout
	seen      []seenEvent
	hosts     *HostDirector
	instances *InstanceDirector
}

func computeHost(name string) *objects.Host {
	h := &objects.Host{
		UUID:        "u-" + name,
		Name:        name,
		Personality: []objects.Personality{objects.PersonalityWorker},
		AdminState:  objects.HostAdminUnlocked,
		OperState:   objects.HostOperEnabled,
		AvailStatus: objects.HostAvailAvailable,
	}
	h.SetServiceState(objects.HostServiceCompute, objects.HostServiceEnabled)
	return h
}

func instance(uuid, host string) *objects.Instance {
	return &objects.Instance{
		UUID:                 uuid,
		Name:                 "vm-" + uuid,
		HostName:             host,
		AdminState:           objects.InstanceAdminUnlocked,
		OperState:            objects.InstanceOperEnabled,
		AutoRecovery:         true,
		LiveMigrationSupport: true,
		VCPUs:                1,
		MemoryMB:             512,
		DiskGB:               10,
	}
}

func newInventory(t *testing.T, hosts int) *tables.Inventory {
	inv, err := tables.New(store.NewMemoryStore())
	require.NoError(t, err)
	for i := 0; i < hosts; i++ {
		require.NoError(t, inv.PutHost(computeHost(fmt.Sprintf("compute-%d", i))))
	}
	return inv
}

func newFixture(t *testing.T, hosts int, tweak func(cfg *config.InstanceDirectorConfig)) *fixture {
	f := &fixture{clock: testingclock.NewFakeClock(time.Now())}
	f.loop = loop.New(f.clock, time.Second)
	f.sim = simulator.New(f.loop)
	f.sim.AutoComplete = true
	f.inv = newInventory(t, hosts)
	f.cfg = config.Default().InstanceDirector
	if tweak != nil {
		tweak(&f.cfg)
	}
	f.fanout = &events.Fanout{}
	f.fanout.Register(events.ListenerFunc(func(e events.Event, data interface{}) {
		f.seen = append(f.seen, seenEvent{event: e, data: data})
	}))
	f.build(f.sim)
	return f
}

func (f *fixture) build(gw nfvi.Gateway) {
	env := Env{Inventory: f.inv, Gateway: gw, Poster: f.loop, Timers: f.loop, Listener: f.fanout}
	f.instances = NewInstanceDirector(f.cfg, env)
	f.hosts = NewHostDirector(env, f.instances)
	f.fanout.Register(f.hosts)
}

func (f *fixture) put(t *testing.T, insts ...*objects.Instance) {
	for _, i := range insts {
		require.NoError(t, f.inv.PutInstance(i))
	}
}

func (f *fixture) settle() {
	for f.loop.RunPending() > 0 {
	}
}

func (f *fixture) saw(event events.Event) bool {
	for _, s := range f.seen {
		if s.event == event {
			return true
		}
	}
	return false
}

func (f *fixture) methods() []string {
	var out []string
	for _, c := range f.sim.Calls {
		out = append(out, c.Method)
	}
	return out
}
