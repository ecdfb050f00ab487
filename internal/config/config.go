// Package config loads spatio's runtime configuration from
// environment variables, with cobra/pflag flags able to override
// them, per spec.md §6 and SPEC_FULL.md §4.7.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/kass/spatio/pkg/aof"
)

// Config enumerates the listener, AOL, and logging settings the
// server entrypoint wires together at startup.
type Config struct {
	ListenHost     string
	ListenPort     int
	LogLevel       string
	AOFPath        string
	AOFSyncPolicy  aof.SyncPolicy
	AOFEnabled     bool
	DefaultTimeout time.Duration
}

// Addr returns the "host:port" listen address.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.ListenHost, c.ListenPort)
}

// Default returns the documented defaults, before any environment
// variable or flag override is applied.
func Default() Config {
	return Config{
		ListenHost:     "0.0.0.0",
		ListenPort:     9851,
		LogLevel:       "info",
		AOFPath:        "./appendonly.aof",
		AOFSyncPolicy:  aof.SyncEverySecond,
		AOFEnabled:     true,
		DefaultTimeout: 5 * time.Second,
	}
}

// FromEnv starts from Default and overrides each field whose
// environment variable is set, per SPEC_FULL.md §4.7's SPATIO_* list.
func FromEnv() (Config, error) {
	c := Default()

	if v, ok := os.LookupEnv("SPATIO_HOST"); ok {
		c.ListenHost = v
	}
	if v, ok := os.LookupEnv("SPATIO_PORT"); ok {
		port, err := parseInt(v)
		if err != nil {
			return c, fmt.Errorf("SPATIO_PORT: %w", err)
		}
		c.ListenPort = port
	}
	if v, ok := os.LookupEnv("LOG_LEVEL"); ok {
		c.LogLevel = v
	}
	if v, ok := os.LookupEnv("SPATIO_AOF_PATH"); ok {
		c.AOFPath = v
	}
	if v, ok := os.LookupEnv("SPATIO_AOF_POLICY"); ok {
		policy, err := aof.ParseSyncPolicy(v)
		if err != nil {
			return c, fmt.Errorf("SPATIO_AOF_POLICY: %w", err)
		}
		c.AOFSyncPolicy = policy
	}
	if v, ok := os.LookupEnv("SPATIO_AOF_ENABLED"); ok {
		enabled, err := parseBool(v)
		if err != nil {
			return c, fmt.Errorf("SPATIO_AOF_ENABLED: %w", err)
		}
		c.AOFEnabled = enabled
	}
	if v, ok := os.LookupEnv("SPATIO_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return c, fmt.Errorf("SPATIO_TIMEOUT: %w", err)
		}
		c.DefaultTimeout = d
	}
	return c, nil
}

func parseInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q", s)
	}
	return n, nil
}

func parseBool(s string) (bool, error) {
	switch s {
	case "1", "true", "TRUE", "True":
		return true, nil
	case "0", "false", "FALSE", "False":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean %q", s)
	}
}
