// Copyright © 2024 The vjailbreak authors

package strategy

import (
	"fmt"
	"testing"
	"time"

	"github.com/openstack-archive/stx-nfv-sub001/internal/director"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/config"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/events"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/loop"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/nfvi/simulator"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/objects"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/store"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/tables"
	"github.com/stretchr/testify/require"
	testingclock "k8s.io/utils/clock/testing"
)

const (
	oldRelease = "21.12"
	newRelease = "22.12"
)

type harness struct {
	clock    *testingclock.FakeClock
	loop     *loop.Loop
	sim      *simulator.Simulator
	inv      *tables.Inventory
	env      *Env
	strategy *Strategy
	changes  int
	// onEvent sees every director event before the strategy does.
	onEvent func(e events.Event)
}

func newHarness(t *testing.T) *harness {
	h := &harness{clock: testingclock.NewFakeClock(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))}
	h.loop = loop.New(h.clock, time.Second)
	h.sim = simulator.New(h.loop)
	h.sim.AutoComplete = true
	inv, err := tables.New(store.NewMemoryStore())
	require.NoError(t, err)
	h.inv = inv

	fanout := &events.Fanout{}
	denv := director.Env{Inventory: inv, Gateway: h.sim, Poster: h.loop, Timers: h.loop, Listener: fanout}
	instances := director.NewInstanceDirector(config.Default().InstanceDirector, denv)
	hosts := director.NewHostDirector(denv, instances)
	fanout.Register(hosts)
	fanout.Register(events.ListenerFunc(func(e events.Event, data interface{}) {
		if h.onEvent != nil {
			h.onEvent(e)
		}
		if h.strategy != nil {
			h.strategy.HandleEvent(e, data)
		}
	}))
	h.env = &Env{
		Inventory: inv,
		Gateway:   h.sim,
		Hosts:     hosts,
		Instances: instances,
		Timers:    h.loop,
		OnChange:  func(*Strategy) { h.changes++ },
	}
	return h
}

func host(name string, p objects.Personality) *objects.Host {
	h := &objects.Host{
		UUID:            "u-" + name,
		Name:            name,
		Personality:     []objects.Personality{p},
		AdminState:      objects.HostAdminUnlocked,
		OperState:       objects.HostOperEnabled,
		AvailStatus:     objects.HostAvailAvailable,
		SoftwareRelease: oldRelease,
	}
	if p == objects.PersonalityWorker {
		h.SetServiceState(objects.HostServiceCompute, objects.HostServiceEnabled)
	}
	return h
}

func (h *harness) workers(t *testing.T, n int) {
	for i := 0; i < n; i++ {
		require.NoError(t, h.inv.PutHost(host(fmt.Sprintf("compute-%d", i), objects.PersonalityWorker)))
	}
}

func (h *harness) instance(t *testing.T, uuid, hostName string) {
	require.NoError(t, h.inv.PutInstance(&objects.Instance{
		UUID:                 uuid,
		Name:                 "vm-" + uuid,
		HostName:             hostName,
		AdminState:           objects.InstanceAdminUnlocked,
		OperState:            objects.InstanceOperEnabled,
		LiveMigrationSupport: true,
		VCPUs:                1,
		MemoryMB:             512,
		DiskGB:               10,
	}))
}

func patchRequest(workers ApplyType, maxParallel int) Request {
	return Request{
		Type:                   TypeSwPatch,
		Release:                newRelease,
		ControllerApplyType:    ApplySerial,
		StorageApplyType:       ApplySerial,
		WorkerApplyType:        workers,
		MaxParallelWorkerHosts: maxParallel,
		DefaultInstanceAction:  InstanceMigrate,
		AlarmRestrictions:      AlarmsStrict,
	}
}

func (h *harness) settle() {
	for h.loop.RunPending() > 0 {
	}
}

// run drives the loop, letting stabilization timers expire, until done.
func (h *harness) run(t *testing.T, done func() bool) {
	for i := 0; i < 500; i++ {
		h.settle()
		if done() {
			return
		}
		h.clock.Step(time.Minute)
	}
	t.Fatalf("strategy stuck in state %s: %s", h.strategy.State, h.strategy.Reason())
}

func (h *harness) build(t *testing.T, req Request) *Strategy {
	s, err := New(h.env, req)
	require.NoError(t, err)
	h.strategy = s
	require.NoError(t, s.Build())
	h.run(t, func() bool { return s.State != StateBuilding })
	return s
}

func (h *harness) apply(t *testing.T, s *Strategy, stage int) {
	require.NoError(t, s.Apply(stage))
	h.run(t, func() bool { return s.State != StateApplying && s.State != StateAborting })
}

func stageStepNames(st *Stage) []string {
	var names []string
	for _, step := range st.Steps {
		names = append(names, step.Base().Name)
	}
	return names
}

func stageHosts(st *Stage) []string {
	for _, step := range st.Steps {
		if step.Kind() == StepLockHosts {
			return step.Base().EntityNames
		}
	}
	return nil
}

func countOf(names []string, name string) int {
	n := 0
	for _, v := range names {
		if v == name {
			n++
		}
	}
	return n
}
