// Copyright © 2024 The vjailbreak authors

package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	c := Default()
	assert.Equal(t, "bolt", c.Store.Backend)
	assert.Equal(t, 1, c.InstanceDirector.MaxConcurrentMigratesPerHost)
	assert.Equal(t, 10*time.Second, c.InstanceDirector.RecoveryAuditInterval)
	assert.Equal(t, 320*time.Second, c.InstanceDirector.RecoveryCooldownMax)
	assert.Equal(t, time.Second, c.Loop.Tick)
}

func TestLoadFromYAML(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(`
nfvi:
  backend: vsphere
  vsphere:
    host: vcenter.local
instance_director:
  max_concurrent_migrates_per_host: 3
  recovery_audit_interval: 5s
`)))
	c, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "vsphere", c.Nfvi.Backend)
	assert.Equal(t, "vcenter.local", c.Nfvi.VSphere.Host)
	assert.Equal(t, 3, c.InstanceDirector.MaxConcurrentMigratesPerHost)
	assert.Equal(t, 5*time.Second, c.InstanceDirector.RecoveryAuditInterval)
}

func TestValidateReportsEveryError(t *testing.T) {
	c := Default()
	c.Store.Backend = "etcd"
	c.Nfvi.Backend = "xen"
	c.InstanceDirector.MaxConcurrentMigratesPerHost = 0
	err := c.Validate()
	require.Error(t, err)
	for _, want := range []string{"store.backend", "nfvi.backend", "max_concurrent_migrates_per_host"} {
		assert.Contains(t, err.Error(), want)
	}
}
