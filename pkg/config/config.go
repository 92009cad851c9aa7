// Copyright © 2024 The vjailbreak authors

// Package config is the typed configuration of vimctl. Values come from
// viper, so every key can be set in the config file or as a VIMCTL_ env var.
package config

import (
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type Config struct {
	LogLevel         string                 `mapstructure:"log_level"`
	Store            StoreConfig            `mapstructure:"store"`
	Nfvi             NfviConfig             `mapstructure:"nfvi"`
	Loop             LoopConfig             `mapstructure:"loop"`
	HostDirector     HostDirectorConfig     `mapstructure:"host_director"`
	InstanceDirector InstanceDirectorConfig `mapstructure:"instance_director"`
	Orchestration    OrchestrationConfig    `mapstructure:"orchestration"`
	Metrics          MetricsConfig          `mapstructure:"metrics"`
}

type StoreConfig struct {
	Backend    string `mapstructure:"backend"` // bolt, configmap or memory
	Path       string `mapstructure:"path"`
	Namespace  string `mapstructure:"namespace"`
	Prefix     string `mapstructure:"prefix"`
	Kubeconfig string `mapstructure:"kubeconfig"`
}

type NfviConfig struct {
	Backend        string          `mapstructure:"backend"` // openstack, vsphere or simulator
	RequestTimeout time.Duration   `mapstructure:"request_timeout"`
	OpenStack      OpenStackConfig `mapstructure:"openstack"`
	VSphere        VSphereConfig   `mapstructure:"vsphere"`
}

type OpenStackConfig struct {
	AuthURL     string `mapstructure:"auth_url"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	ProjectName string `mapstructure:"project_name"`
	DomainName  string `mapstructure:"domain_name"`
	Region      string `mapstructure:"region"`
	Insecure    bool   `mapstructure:"insecure"`
	RetryMax    int    `mapstructure:"retry_max"`
}

type VSphereConfig struct {
	Host       string `mapstructure:"host"`
	Username   string `mapstructure:"username"`
	Password   string `mapstructure:"password"`
	Datacenter string `mapstructure:"datacenter"`
	Insecure   bool   `mapstructure:"insecure"`
}

type LoopConfig struct {
	Tick time.Duration `mapstructure:"tick"`
}

type HostDirectorConfig struct {
	AuditInterval time.Duration `mapstructure:"audit_interval"`
}

type InstanceDirectorConfig struct {
	MaxConcurrentMigratesPerHost     int           `mapstructure:"max_concurrent_migrates_per_host"`
	MaxConcurrentEvacuatesPerHost    int           `mapstructure:"max_concurrent_evacuates_per_host"`
	MaxConcurrentRecoveringInstances int           `mapstructure:"max_concurrent_recovering_instances"`
	MaxThrottledRecoveringInstances  int           `mapstructure:"max_throttled_recovering_instances"`
	RecoveryThreshold                int           `mapstructure:"recovery_threshold"`
	RecoveryAuditInterval            time.Duration `mapstructure:"recovery_audit_interval"`
	RecoveryCooldownMax              time.Duration `mapstructure:"recovery_cooldown_max"`
	MaxColdMigrateLocalImageDiskGB   int           `mapstructure:"max_cold_migrate_local_image_disk_gb"`
	MaxEvacuateLocalImageDiskGB      int           `mapstructure:"max_evacuate_local_image_disk_gb"`
	MaxInstanceRebootAttempts        int           `mapstructure:"max_instance_reboot_attempts"`
}

type OrchestrationConfig struct {
	AuditInterval time.Duration `mapstructure:"audit_interval"`
	BuildTimeout  time.Duration `mapstructure:"build_timeout"`
	LocalHostName string        `mapstructure:"local_host_name"`
}

type MetricsConfig struct {
	Listen string `mapstructure:"listen"`
}

// SetDefaults registers the default of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("store.backend", "bolt")
	v.SetDefault("store.path", "/var/lib/vimctl/vim.db")
	v.SetDefault("store.namespace", "vim-system")
	v.SetDefault("store.prefix", "vim")
	v.SetDefault("nfvi.backend", "simulator")
	v.SetDefault("nfvi.request_timeout", "120s")
	v.SetDefault("nfvi.openstack.retry_max", 3)
	v.SetDefault("loop.tick", "1s")
	v.SetDefault("host_director.audit_interval", "30s")
	v.SetDefault("instance_director.max_concurrent_migrates_per_host", 1)
	v.SetDefault("instance_director.max_concurrent_evacuates_per_host", 1)
	v.SetDefault("instance_director.max_concurrent_recovering_instances", 4)
	v.SetDefault("instance_director.max_throttled_recovering_instances", 2)
	v.SetDefault("instance_director.recovery_threshold", 8)
	v.SetDefault("instance_director.recovery_audit_interval", "10s")
	v.SetDefault("instance_director.recovery_cooldown_max", "320s")
	v.SetDefault("instance_director.max_cold_migrate_local_image_disk_gb", 60)
	v.SetDefault("instance_director.max_evacuate_local_image_disk_gb", 60)
	v.SetDefault("instance_director.max_instance_reboot_attempts", 2)
	v.SetDefault("orchestration.audit_interval", "10s")
	v.SetDefault("orchestration.build_timeout", "5m")
	v.SetDefault("metrics.listen", ":9464")
}

func Load(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, errors.Wrap(err, "failed to decode configuration")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Default returns the configuration built only from defaults.
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	c, err := Load(v)
	if err != nil {
		panic(err)
	}
	return c
}

func positive(result *multierror.Error, key string, value int) *multierror.Error {
	if value < 1 {
		return multierror.Append(result, fmt.Errorf("%s must be at least 1, got %d", key, value))
	}
	return result
}

// Validate reports every invalid value at once.
func (c *Config) Validate() error {
	var result *multierror.Error
	switch c.Store.Backend {
	case "bolt":
		if c.Store.Path == "" {
			result = multierror.Append(result, errors.New("store.path is required for the bolt store"))
		}
	case "configmap", "memory":
	default:
		result = multierror.Append(result, fmt.Errorf("unknown store.backend %q", c.Store.Backend))
	}
	switch c.Nfvi.Backend {
	case "openstack", "vsphere", "simulator":
	default:
		result = multierror.Append(result, fmt.Errorf("unknown nfvi.backend %q", c.Nfvi.Backend))
	}
	d := c.InstanceDirector
	result = positive(result, "instance_director.max_concurrent_migrates_per_host", d.MaxConcurrentMigratesPerHost)
	result = positive(result, "instance_director.max_concurrent_evacuates_per_host", d.MaxConcurrentEvacuatesPerHost)
	result = positive(result, "instance_director.max_concurrent_recovering_instances", d.MaxConcurrentRecoveringInstances)
	result = positive(result, "instance_director.max_throttled_recovering_instances", d.MaxThrottledRecoveringInstances)
	if d.MaxThrottledRecoveringInstances > d.MaxConcurrentRecoveringInstances {
		result = multierror.Append(result, errors.New("instance_director.max_throttled_recovering_instances cannot exceed max_concurrent_recovering_instances"))
	}
	if d.RecoveryAuditInterval <= 0 {
		result = multierror.Append(result, errors.New("instance_director.recovery_audit_interval must be positive"))
	}
	if d.RecoveryCooldownMax < d.RecoveryAuditInterval {
		result = multierror.Append(result, errors.New("instance_director.recovery_cooldown_max must not be below recovery_audit_interval"))
	}
	if c.Loop.Tick <= 0 {
		result = multierror.Append(result, errors.New("loop.tick must be positive"))
	}
	return result.ErrorOrNil()
}
