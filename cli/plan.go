// Copyright © 2024 The vjailbreak authors

package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/openstack-archive/stx-nfv-sub001/internal/strategy"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/config"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/loop"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/nfvi/simulator"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/store"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/utils"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"k8s.io/utils/clock"
)

var planOpts struct {
	inventory string
	request   string
	release   string
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "build a strategy against an inventory file and print its stages",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		inv, err := readInventory(planOpts.inventory)
		if err != nil {
			return err
		}
		req, err := readRequest(planOpts.request)
		if err != nil {
			return err
		}
		if planOpts.release != "" {
			req.Release = planOpts.release
		}
		return plan(cmd.OutOrStdout(), cfg, inv, req)
	},
}

func init() {
	rootCmd.AddCommand(planCmd)
	planCmd.Flags().StringVarP(&planOpts.inventory, "inventory", "i", "", "inventory file (YAML)")
	planCmd.Flags().StringVarP(&planOpts.request, "strategy", "s", "", "strategy request file (YAML)")
	planCmd.Flags().StringVar(&planOpts.release, "release", "", "override the release of the request")
	_ = planCmd.MarkFlagRequired("inventory")
	_ = planCmd.MarkFlagRequired("strategy")
}

type stageRow struct {
	Stage int
	Name  string
	Hosts []string
	Steps []string
}

func stageRows(p *strategy.Phase) []stageRow {
	rows := make([]stageRow, 0, len(p.Stages))
	for i, st := range p.Stages {
		row := stageRow{Stage: i, Name: st.Name}
		for _, step := range st.Steps {
			b := step.Base()
			row.Steps = append(row.Steps, b.Name)
			if step.Kind() == strategy.StepLockHosts {
				row.Hosts = b.EntityNames
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// buildOffline builds req against the inventory with every backend query
// answered from the file.
func buildOffline(cfg *config.Config, inv *inventoryFile, req strategy.Request) (*strategy.Strategy, error) {
	l := loop.New(clock.RealClock{}, time.Second)
	sim := simulator.New(l)
	sim.AutoComplete = true
	sim.Alarms = inv.Alarms
	sim.Upgrade = inv.Upgrade
	e, err := newEngine(cfg, l, store.NewMemoryStore(), sim)
	if err != nil {
		return nil, err
	}
	if err := inv.load(e.inventory); err != nil {
		return nil, err
	}
	s, err := e.orch.Create(req)
	if err != nil {
		return nil, err
	}
	for l.RunPending() > 0 {
	}
	return s, nil
}

func plan(out io.Writer, cfg *config.Config, inv *inventoryFile, req strategy.Request) error {
	s, err := buildOffline(cfg, inv, req)
	if err != nil {
		return err
	}
	if s.State != strategy.StateReadyToApply {
		return errors.Errorf("strategy is %s: %s", s.State, s.Reason())
	}
	fmt.Fprintf(out, "%s: %d stages\n", s, len(s.ApplyPhase.Stages))
	return utils.PrintTable(out, stageRows(s.ApplyPhase), "Stage", "Name", "Hosts", "Steps")
}
