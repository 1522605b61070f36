// Package ringconfig loads the cmd/ringbuf-* binaries' configuration.
// The core library (internal/shmring, ringproducer, ringconsumer) takes no
// configuration of its own — spec.md §6: "None" under Environment
// variables — this exists purely for the ambient CLI surface described in
// SPEC_FULL.md §4.6.
//
// Grounded on Aidin1998-finalex/services/marketfeeds/common/cfg/config.go.
package ringconfig

import (
	"fmt"

	"github.com/spf13/viper"
)

// RingConfig is the "ring:" section of config.yaml.
type RingConfig struct {
	Name      string `mapstructure:"name"`
	Capacity  uint64 `mapstructure:"capacity"`
	HugePages bool   `mapstructure:"hugepages"`
}

// MetricsConfig is the "metrics:" section of config.yaml.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// Config is the full on-disk schema consumed by cmd/ringbuf-producer and
// cmd/ringbuf-consumer (SPEC_FULL.md §6).
type Config struct {
	Ring    RingConfig    `mapstructure:"ring"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// MustLoad reads config.yaml from the current directory (or the path
// named by configPath, if non-empty) and unmarshals it into a T. It panics
// on any load/parse failure — this is the ambient CLI's configuration
// loader, not part of the core library, and is meant to be called once at
// process startup.
func MustLoad[T any](configPath string) *T {
	v := viper.New()
	v.SetConfigType("yaml")
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		panic(fmt.Sprintf("ringconfig: couldn't load configuration: %v", err))
	}

	var cfg T
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("ringconfig: couldn't unmarshal configuration: %v", err))
	}
	return &cfg
}
