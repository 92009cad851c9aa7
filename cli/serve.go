// Copyright © 2024 The vjailbreak authors

package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/openstack-archive/stx-nfv-sub001/internal/strategy"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/config"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/loop"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/metrics"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"k8s.io/utils/clock"
)

var serveOpts struct {
	request string
	apply   bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "run the orchestration engine",
	Long: "run the orchestration engine: the event loop, the host and instance directors and the " +
		"strategy orchestrator, resuming any strategy left running by a previous process",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		var req *strategy.Request
		if serveOpts.request != "" {
			r, err := readRequest(serveOpts.request)
			if err != nil {
				return err
			}
			req = &r
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg, req, serveOpts.apply)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveOpts.request, "strategy", "", "create this strategy request (YAML) unless one exists")
	serveCmd.Flags().BoolVar(&serveOpts.apply, "apply", false, "apply the created strategy once it is built")
}

func serve(ctx context.Context, cfg *config.Config, req *strategy.Request, apply bool) error {
	l := loop.New(clock.RealClock{}, cfg.Loop.Tick)
	st, err := openStore(cfg.Store)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			logrus.Errorf("failed to close the store: %v", err)
		}
	}()
	gw, err := openGateway(ctx, cfg.Nfvi, l)
	if err != nil {
		return err
	}
	e, err := newEngine(cfg, l, st, gw)
	if err != nil {
		return err
	}

	l.Post(func() {
		if err := e.start(cfg); err != nil {
			logrus.Errorf("failed to resume the strategy: %v", err)
		}
		if req != nil && e.orch.Current() == nil {
			if _, err := e.orch.Create(*req); err != nil {
				logrus.Errorf("failed to create the strategy: %v", err)
				return
			}
			if apply {
				e.applyWhenBuilt()
			}
		}
	})

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: cfg.Metrics.Listen, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logrus.Infof("serving metrics on %s", cfg.Metrics.Listen)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Errorf("metrics server stopped: %v", err)
		}
	}()

	err = l.Run(ctx)
	logrus.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	if err == context.Canceled {
		return nil
	}
	return err
}

// applyWhenBuilt applies every stage once the build finished.
func (e *engine) applyWhenBuilt() {
	var id loop.TimerID
	id = e.loop.AddPeriodicTimer("apply-when-built", time.Second, func() {
		s := e.orch.Current()
		if s == nil || s.State != strategy.StateBuilding {
			e.loop.CancelTimer(id)
		}
		if s != nil && s.State == strategy.StateReadyToApply {
			if err := e.orch.Apply(-1); err != nil {
				logrus.Errorf("failed to apply %s: %v", s, err)
			}
		}
	})
}
