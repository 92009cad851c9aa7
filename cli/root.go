// Copyright © 2024 The vjailbreak authors

// Package cli is the vimctl command line: serve runs the orchestration
// engine, plan builds a strategy offline against an inventory file.
package cli

import (
	"fmt"
	"os"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:           "vimctl",
	Short:         "orchestrate software updates across hosts and their instances",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func parseLogLevel(logLevel string) (logrus.Level, error) {
	switch strings.ToLower(logLevel) {
	case "trace":
		return logrus.TraceLevel, nil
	case "debug":
		return logrus.DebugLevel, nil
	case "info":
		return logrus.InfoLevel, nil
	case "warn", "warning":
		return logrus.WarnLevel, nil
	case "error":
		return logrus.ErrorLevel, nil
	case "fatal":
		return logrus.FatalLevel, nil
	case "panic":
		return logrus.PanicLevel, nil
	default:
		return logrus.InfoLevel, fmt.Errorf("invalid log level: %s", logLevel)
	}
}

// applyLogLevel prefers LOG_LEVEL over the log_level key.
func applyLogLevel(v *viper.Viper) {
	value := os.Getenv("LOG_LEVEL")
	if value == "" {
		value = v.GetString("log_level")
	}
	level, err := parseLogLevel(value)
	if err != nil {
		logrus.Error(err)
	}
	logrus.SetLevel(level)
}

func initCfg() {
	v := viper.GetViper()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			logrus.Fatal(err)
		}
		v.AddConfigPath(home)
		v.SetConfigType("yaml")
		v.SetConfigName(".vimctl")
	}
	v.SetEnvPrefix("VIMCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	config.SetDefaults(v)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || cfgFile != "" {
			logrus.Errorf("failed to read %s: %v", v.ConfigFileUsed(), err)
		} else {
			logrus.Debug("no config file, using defaults")
		}
	}
	applyLogLevel(v)
}

// loadConfig decodes and validates the merged configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}
	logrus.Debugf("using the %s store and the %s backend", cfg.Store.Backend, cfg.Nfvi.Backend)
	return cfg, nil
}

func init() {
	cobra.OnInitialize(initCfg)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.vimctl.yaml)")
}

func Execute() error {
	return rootCmd.Execute()
}
