// Copyright © 2024 The vjailbreak authors

package orchestrator

import (
	"encoding/json"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"github.com/openstack-archive/stx-nfv-sub001/internal/strategy"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/config"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/constants"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/nfvi/simulator"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/objects"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/store"
)

// savedState returns the state of the strategy in the store, or "" when
// the slot is empty.
func savedState(st store.Store) string {
	state := ""
	gomega.Expect(st.LoadAll(store.KindStrategy, func(key string, data []byte) error {
		if key != constants.StrategyKey || store.IsEmpty(data) {
			return nil
		}
		var doc struct {
			State string `json:"state"`
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			return err
		}
		state = doc.State
		return nil
	})).To(gomega.Succeed())
	return state
}

var _ = ginkgo.Describe("Orchestrator", func() {
	var (
		st  *store.MemoryStore
		cfg config.OrchestrationConfig
		sys *system
	)

	ginkgo.BeforeEach(func() {
		st = store.NewMemoryStore()
		cfg = config.OrchestrationConfig{
			AuditInterval: 10 * time.Second,
			BuildTimeout:  5 * time.Minute,
		}
		sys = newSystem(st, cfg)
		sys.addWorkers(4)
	})

	ginkgo.Context("creating a strategy", func() {
		ginkgo.It("builds it and stores every state it goes through", func() {
			s, err := sys.orch.Create(request())
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(s.State).To(gomega.Equal(strategy.StateBuilding))
			gomega.Expect(savedState(st)).To(gomega.Equal("building"))

			sys.settle()
			gomega.Expect(sys.state()).To(gomega.Equal(strategy.StateReadyToApply))
			gomega.Expect(s.ApplyPhase.Stages).To(gomega.HaveLen(2))
			gomega.Expect(savedState(st)).To(gomega.Equal("ready-to-apply"))
		})

		ginkgo.It("refuses a second strategy", func() {
			_, err := sys.orch.Create(request())
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			_, err = sys.orch.Create(request())
			gomega.Expect(err).To(gomega.MatchError(ErrStrategyExists))
		})

		ginkgo.It("rejects an invalid request without taking the slot", func() {
			req := request()
			req.Release = ""
			_, err := sys.orch.Create(req)
			gomega.Expect(err).To(gomega.MatchError(strategy.ErrInvalidRequest))
			gomega.Expect(sys.orch.Current()).To(gomega.BeNil())
			gomega.Expect(savedState(st)).To(gomega.BeEmpty())
		})

		ginkgo.It("times the build out when the backend never answers", func() {
			cfg.BuildTimeout = 30 * time.Second
			st = store.NewMemoryStore()
			sys = newSystem(st, cfg)
			sys.addWorkers(2)
			sys.sim.AutoComplete = false

			_, err := sys.orch.Create(request())
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			sys.settle()
			gomega.Expect(sys.state()).To(gomega.Equal(strategy.StateBuilding))

			sys.clock.Step(31 * time.Second)
			sys.settle()
			gomega.Expect(sys.state()).To(gomega.Equal(strategy.StateBuildTimeout))
			gomega.Expect(sys.orch.Current().BuildPhase.ResultReason).To(gomega.Equal("build timed out"))
			gomega.Expect(savedState(st)).To(gomega.Equal("build-timeout"))
		})
	})

	ginkgo.Context("without a strategy", func() {
		ginkgo.It("reports that nothing exists", func() {
			gomega.Expect(sys.orch.Apply(-1)).To(gomega.MatchError(ErrNoStrategy))
			gomega.Expect(sys.orch.Abort()).To(gomega.MatchError(ErrNoStrategy))
			gomega.Expect(sys.orch.Delete(true)).To(gomega.MatchError(ErrNoStrategy))
		})
	})

	ginkgo.Context("applying", func() {
		ginkgo.BeforeEach(func() {
			_, err := sys.orch.Create(request())
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			sys.settle()
		})

		ginkgo.It("upgrades every worker", func() {
			gomega.Expect(sys.orch.Apply(-1)).To(gomega.Succeed())
			sys.runUntil(func() bool { return sys.state() != strategy.StateApplying })

			gomega.Expect(sys.state()).To(gomega.Equal(strategy.StateApplied))
			gomega.Expect(sys.sim.CallsTo("UpgradeHost")).To(gomega.ConsistOf(
				"compute-0", "compute-1", "compute-2", "compute-3"))
			gomega.Expect(savedState(st)).To(gomega.Equal("applied"))
		})

		ginkgo.It("aborts after the running step", func() {
			gomega.Expect(sys.orch.Apply(-1)).To(gomega.Succeed())
			sys.settle()
			gomega.Expect(sys.orch.Abort()).To(gomega.Succeed())
			sys.runUntil(func() bool { return sys.state().IsFinished() })

			gomega.Expect(sys.state()).To(gomega.Equal(strategy.StateAborted))
			gomega.Expect(sys.sim.CallsTo("LockHost")).NotTo(gomega.ContainElement("compute-2"))
			gomega.Expect(savedState(st)).To(gomega.Equal("aborted"))
		})

		ginkgo.It("resumes the interrupted stage after a restart", func() {
			gomega.Expect(sys.orch.Apply(-1)).To(gomega.Succeed())
			sys.settle()
			gomega.Expect(savedState(st)).To(gomega.Equal("applying"))

			restarted := newSystem(st, cfg)
			gomega.Expect(restarted.orch.Load()).To(gomega.Succeed())
			gomega.Expect(restarted.orch.Current()).NotTo(gomega.BeNil())
			gomega.Expect(restarted.orch.Current().UUID).To(gomega.Equal(sys.orch.Current().UUID))
			restarted.runUntil(func() bool { return restarted.state() != strategy.StateApplying })

			gomega.Expect(restarted.state()).To(gomega.Equal(strategy.StateApplied))
			gomega.Expect(restarted.sim.CallsTo("LockHost")).To(gomega.ConsistOf("compute-2", "compute-3"))
		})
	})

	ginkgo.Context("deleting", func() {
		var uuid string

		ginkgo.BeforeEach(func() {
			s, err := sys.orch.Create(request())
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			uuid = s.UUID
			sys.settle()
		})

		ginkgo.It("archives the strategy and frees the slot", func() {
			gomega.Expect(sys.orch.Delete(false)).To(gomega.Succeed())
			gomega.Expect(sys.orch.Current()).To(gomega.BeNil())
			gomega.Expect(savedState(st)).To(gomega.BeEmpty())
			gomega.Expect(sys.orch.Archived()).To(gomega.ConsistOf(uuid))

			restarted := newSystem(st, cfg)
			gomega.Expect(restarted.orch.Load()).To(gomega.Succeed())
			gomega.Expect(restarted.orch.Current()).To(gomega.BeNil())

			_, err := sys.orch.Create(request())
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
		})

		ginkgo.It("needs force while the strategy is applying", func() {
			gomega.Expect(sys.orch.Apply(-1)).To(gomega.Succeed())
			sys.settle()

			gomega.Expect(sys.orch.Delete(false)).To(gomega.MatchError(ErrInProgress))
			gomega.Expect(sys.orch.Current()).NotTo(gomega.BeNil())

			gomega.Expect(sys.orch.Delete(true)).To(gomega.Succeed())
			gomega.Expect(sys.orch.Current()).To(gomega.BeNil())
			locks := len(sys.sim.CallsTo("LockHost"))
			sys.clock.Step(10 * time.Minute)
			sys.settle()
			gomega.Expect(sys.sim.CallsTo("LockHost")).To(gomega.HaveLen(locks))
		})
	})

	ginkgo.Context("auditing", func() {
		ginkgo.It("lets a polling step see the backend change", func() {
			st = store.NewMemoryStore()
			sys = newSystem(st, cfg)
			storage := &objects.Host{
				UUID:            "u-storage-0",
				Name:            "storage-0",
				Personality:     []objects.Personality{objects.PersonalityStorage},
				AdminState:      objects.HostAdminUnlocked,
				OperState:       objects.HostOperEnabled,
				AvailStatus:     objects.HostAvailAvailable,
				SoftwareRelease: "21.12",
			}
			gomega.Expect(sys.inv.PutHost(storage)).To(gomega.Succeed())
			sys.sim.OnSuccess = func(c *simulator.Call) {
				if c.Method == "UnlockHost" {
					sys.sim.Alarms = []objects.Alarm{{AlarmID: "800.001", EntityInstanceID: "cluster=ceph", MgmtAffecting: true}}
				}
			}
			_, err := sys.orch.Create(request())
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			sys.settle()
			gomega.Expect(sys.orch.Apply(-1)).To(gomega.Succeed())
			sys.settle()
			gomega.Expect(sys.state()).To(gomega.Equal(strategy.StateApplying))

			sys.sim.Alarms = nil
			sys.clock.Step(time.Minute)
			sys.settle()
			gomega.Expect(sys.state()).To(gomega.Equal(strategy.StateApplying))

			sys.orch.StartAudit()
			defer sys.orch.StopAudit()
			sys.clock.Step(cfg.AuditInterval)
			sys.settle()
			gomega.Expect(sys.state()).To(gomega.Equal(strategy.StateApplied))
		})
	})
})
