// Copyright © 2024 The vjailbreak authors

// Package metrics provides Prometheus metrics for tracking strategies,
// director operations and instance actions.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds every vimctl collector.
	Registry = prometheus.NewRegistry()

	// StrategyStateGauge tracks the current state of each strategy
	// Labels: strategy_type, state
	StrategyStateGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "vim_strategy_state",
			Help: "Current state of strategies (1=in this state, 0=not in this state)",
		},
		[]string{"strategy_type", "state"},
	)

	// StepCompletedTotal counts finished strategy steps by result
	StepCompletedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vim_strategy_step_completed_total",
			Help: "Total number of strategy steps completed",
		},
		[]string{"step", "result"},
	)

	// StepDurationSeconds observes how long each step ran
	StepDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vim_strategy_step_duration_seconds",
			Help:    "Duration of strategy steps in seconds",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
		[]string{"step"},
	)

	// OperationsStartedTotal counts director operations dispatched to at
	// least one host, by type
	OperationsStartedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vim_director_operations_started_total",
			Help: "Total number of director operations started",
		},
		[]string{"operation"},
	)

	// LiveOperations is the number of hosts with a live operation, per director
	LiveOperations = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "vim_director_live_operations",
			Help: "Number of hosts with an operation in progress",
		},
		[]string{"director"},
	)

	// OperationsTotal counts director operations by type and final state
	OperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vim_director_operations_total",
			Help: "Total number of director operations finished",
		},
		[]string{"operation", "state"},
	)

	// InstanceActionsTotal counts instance actions by final state
	InstanceActionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vim_instance_actions_total",
			Help: "Total number of instance actions finished",
		},
		[]string{"action", "state"},
	)

	// RecoveringInstances is the number of instances with a recovery in flight
	RecoveringInstances = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "vim_recovering_instances",
			Help: "Number of instances currently being recovered",
		},
	)
)

func init() {
	Registry.MustRegister(
		StrategyStateGauge,
		StepCompletedTotal,
		StepDurationSeconds,
		OperationsStartedTotal,
		LiveOperations,
		OperationsTotal,
		InstanceActionsTotal,
		RecoveringInstances,
	)
}

// UpdateStrategyState sets state to 1 and every other known state to 0.
func UpdateStrategyState(strategyType, state string, allStates []string) {
	for _, s := range allStates {
		StrategyStateGauge.WithLabelValues(strategyType, s).Set(0)
	}
	StrategyStateGauge.WithLabelValues(strategyType, state).Set(1)
}

// CleanupStrategy removes the state series of a deleted strategy.
func CleanupStrategy(strategyType string, allStates []string) {
	for _, s := range allStates {
		StrategyStateGauge.DeleteLabelValues(strategyType, s)
	}
}

func RecordStepCompleted(step, result string, duration time.Duration) {
	StepCompletedTotal.WithLabelValues(step, result).Inc()
	StepDurationSeconds.WithLabelValues(step).Observe(duration.Seconds())
}

func RecordOperationStarted(operation string) {
	OperationsStartedTotal.WithLabelValues(operation).Inc()
}

func SetLiveOperations(director string, n int) {
	LiveOperations.WithLabelValues(director).Set(float64(n))
}

func RecordOperation(operation, state string) {
	OperationsTotal.WithLabelValues(operation, state).Inc()
}

func RecordInstanceAction(action, state string) {
	InstanceActionsTotal.WithLabelValues(action, state).Inc()
}

func SetRecoveringInstances(n int) {
	RecoveringInstances.Set(float64(n))
}

// Handler serves Registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
