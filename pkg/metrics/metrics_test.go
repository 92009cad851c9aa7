// Copyright © 2024 The vjailbreak authors

package metrics

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestUpdateStrategyState(t *testing.T) {
	states := []string{"building", "ready-to-apply", "applying"}
	UpdateStrategyState("sw-patch", "building", states)
	UpdateStrategyState("sw-patch", "applying", states)

	assert.Equal(t, 0.0, testutil.ToFloat64(StrategyStateGauge.WithLabelValues("sw-patch", "building")))
	assert.Equal(t, 1.0, testutil.ToFloat64(StrategyStateGauge.WithLabelValues("sw-patch", "applying")))

	CleanupStrategy("sw-patch", states)
	assert.Equal(t, 0, testutil.CollectAndCount(StrategyStateGauge))
}

func TestHandlerExposesCounters(t *testing.T) {
	RecordStepCompleted("lock-hosts", "success", 3*time.Second)
	RecordOperation("lock-hosts", "completed")
	RecordOperationStarted("lock-hosts")
	SetLiveOperations("host", 2)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `vim_strategy_step_completed_total{result="success",step="lock-hosts"} 1`)
	assert.Contains(t, rec.Body.String(), `vim_director_operations_total{operation="lock-hosts",state="completed"} 1`)
	assert.Contains(t, rec.Body.String(), `vim_director_operations_started_total{operation="lock-hosts"} 1`)
	assert.Contains(t, rec.Body.String(), `vim_director_live_operations{director="host"} 2`)
}
