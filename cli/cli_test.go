// Copyright © 2024 The vjailbreak authors

package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/openstack-archive/stx-nfv-sub001/internal/strategy"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/config"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const inventoryYAML = `
hosts:
- {uuid: u-compute-0, name: compute-0, personality: [worker], admin_state: unlocked, oper_state: enabled, avail_status: available, software_release: "21.12", services: {compute: enabled}}
- {uuid: u-compute-1, name: compute-1, personality: [worker], admin_state: unlocked, oper_state: enabled, avail_status: available, software_release: "21.12", services: {compute: enabled}}
- {uuid: u-compute-2, name: compute-2, personality: [worker], admin_state: unlocked, oper_state: enabled, avail_status: available, software_release: "21.12", services: {compute: enabled}}
instances:
- {uuid: i-0, name: vm-0, host_name: compute-0, admin_state: unlocked, oper_state: enabled, live_migration_support: true, vcpus: 1, memory_mb: 512}
- {uuid: i-1, name: vm-1, host_name: compute-1, admin_state: unlocked, oper_state: enabled, live_migration_support: true, vcpus: 1, memory_mb: 512}
instance_groups:
- {uuid: g-0, name: web, policies: [anti-affinity], members: [i-0, i-1]}
`

const requestYAML = `
type: sw-patch
release: "22.12"
controller_apply_type: serial
storage_apply_type: serial
worker_apply_type: parallel
max_parallel_worker_hosts: 3
default_instance_action: migrate
alarm_restrictions: strict
`

func writeFile(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParseLogLevel(t *testing.T) {
	for in, want := range map[string]logrus.Level{
		"trace": logrus.TraceLevel,
		"DEBUG": logrus.DebugLevel,
		"warn":  logrus.WarnLevel,
		"error": logrus.ErrorLevel,
	} {
		got, err := parseLogLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	got, err := parseLogLevel("loud")
	assert.EqualError(t, err, "invalid log level: loud")
	assert.Equal(t, logrus.InfoLevel, got)
}

func TestReadFiles(t *testing.T) {
	inv, err := readInventory(writeFile(t, "inventory.yaml", inventoryYAML))
	require.NoError(t, err)
	assert.Len(t, inv.Hosts, 3)
	assert.Len(t, inv.Instances, 2)
	require.Len(t, inv.InstanceGroups, 1)
	assert.True(t, inv.InstanceGroups[0].IsAntiAffinity())

	req, err := readRequest(writeFile(t, "request.yaml", requestYAML))
	require.NoError(t, err)
	assert.Equal(t, strategy.ApplyParallel, req.WorkerApplyType)
	assert.Equal(t, 3, req.MaxParallelWorkerHosts)
	assert.NoError(t, req.Validate())

	_, err = readInventory(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read")
}

func TestInventoryRejectsInstancesOnUnknownHosts(t *testing.T) {
	data := strings.Replace(inventoryYAML, "instance_groups:", "- {uuid: i-9, name: vm-9, host_name: compute-9}\ninstance_groups:", 1)
	inv, err := readInventory(writeFile(t, "inventory.yaml", data))
	require.NoError(t, err)
	_, err = buildOffline(config.Default(), inv, strategy.Request{})
	assert.ErrorContains(t, err, "instance vm-9 is on unknown host compute-9")
}

func TestPlanSplitsAntiAffinityMembers(t *testing.T) {
	inv, err := readInventory(writeFile(t, "inventory.yaml", inventoryYAML))
	require.NoError(t, err)
	req, err := readRequest(writeFile(t, "request.yaml", requestYAML))
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, plan(&out, config.Default(), inv, req))

	s, err := buildOffline(config.Default(), inv, req)
	require.NoError(t, err)
	rows := stageRows(s.ApplyPhase)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"compute-2"}, rows[0].Hosts)
	assert.Equal(t, []string{"compute-0"}, rows[1].Hosts)
	assert.Equal(t, []string{"compute-1"}, rows[2].Hosts)
	assert.Contains(t, out.String(), "3 stages")
	assert.Contains(t, out.String(), "sw-patch-worker-hosts")
}

func TestPlanReportsBuildFailures(t *testing.T) {
	inv, err := readInventory(writeFile(t, "inventory.yaml", inventoryYAML+`
alarms:
- {alarm_id: "100.101", entity_instance_id: host=compute-1, severity: major, mgmt_affecting: true}
`))
	require.NoError(t, err)
	req, err := readRequest(writeFile(t, "request.yaml", requestYAML))
	require.NoError(t, err)

	var out bytes.Buffer
	err = plan(&out, config.Default(), inv, req)
	assert.ErrorContains(t, err, "strategy is build-failed")
	assert.ErrorContains(t, err, "active alarms present")
}
