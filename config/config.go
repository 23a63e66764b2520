// Package config loads the agent's immutable configuration: threshold
// limits, probe targets, maintenance knobs and filesystem layout. Values
// come from an optional YAML file with environment overrides; the loaded
// struct is passed into every component at construction and nothing reads
// process-wide settings afterwards.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/mlgruby/nixmedic/health"
	"github.com/mlgruby/nixmedic/secret"
)

type Config struct {
	Thresholds  ThresholdConfig   `yaml:"thresholds"`
	Probes      ProbeConfig       `yaml:"probes"`
	Maintenance MaintenanceConfig `yaml:"maintenance"`
	Paths       PathsConfig       `yaml:"paths"`
	Alert       AlertConfig       `yaml:"alert"`
	Log         LogConfig         `yaml:"log"`
	Metrics     MetricsConfig     `yaml:"metrics"`
}

type ThresholdConfig struct {
	CPUPercent    float64 `yaml:"cpu_percent" env:"NIXMEDIC_CPU_PERCENT" env-default:"80"`
	MemoryPercent float64 `yaml:"memory_percent" env:"NIXMEDIC_MEMORY_PERCENT" env-default:"85"`
	DiskPercent   float64 `yaml:"disk_percent" env:"NIXMEDIC_DISK_PERCENT" env-default:"90"`
	Load1         float64 `yaml:"load1" env:"NIXMEDIC_LOAD1" env-default:"8.0"`
}

type ProbeConfig struct {
	Timeout          time.Duration `yaml:"timeout" env:"NIXMEDIC_PROBE_TIMEOUT" env-default:"5s"`
	ReachabilityAddr string        `yaml:"reachability_addr" env-default:"1.1.1.1:443"`
	DNSHost          string        `yaml:"dns_host" env-default:"nixos.org"`
	DaemonSocket     string        `yaml:"daemon_socket" env-default:"/nix/var/nix/daemon-socket/socket"`
}

type MaintenanceConfig struct {
	Retention       string `yaml:"retention" env:"NIXMEDIC_RETENTION" env-default:"7d"`
	KeepGenerations int    `yaml:"keep_generations" env-default:"5"`
}

type PathsConfig struct {
	// Empty paths are filled from the state directory at load time.
	ReportsDir string `yaml:"reports_dir" env:"NIXMEDIC_REPORTS_DIR"`
	LogsDir    string `yaml:"logs_dir" env:"NIXMEDIC_LOGS_DIR"`
	LockFile   string `yaml:"lock_file" env:"NIXMEDIC_LOCK_FILE"`
}

type AlertConfig struct {
	HookURL     string        `yaml:"hook_url" env:"NIXMEDIC_HOOK_URL"`
	HookTimeout time.Duration `yaml:"hook_timeout" env-default:"10s"`
	HookRetries int           `yaml:"hook_retries" env-default:"2"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"NIXMEDIC_LOG_LEVEL" env-default:"info"`
}

type MetricsConfig struct {
	Exporter string `yaml:"exporter" env:"NIXMEDIC_METRICS_EXPORTER" env-default:"none"`
}

// DefaultPath returns the conventional config file location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "nixmedic", "config.yaml")
}

// Load reads configuration from the given file plus the environment.
// An empty path falls back to the default location when that file exists,
// otherwise to environment and defaults alone.
func Load(path string) (*Config, error) {
	var cfg Config

	if path == "" {
		if p := DefaultPath(); p != "" {
			if _, err := os.Stat(p); err == nil {
				path = p
			}
		}
	}

	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read environment: %w", err)
		}
	}

	if err := cfg.fillPaths(); err != nil {
		return nil, err
	}

	if cfg.Alert.HookURL != "" {
		expanded, err := secret.ExpandStrict(cfg.Alert.HookURL)
		if err != nil {
			return nil, fmt.Errorf("config: hook_url: %w", err)
		}
		cfg.Alert.HookURL = expanded
	}

	return &cfg, nil
}

// fillPaths derives unset paths from the per-user state directory.
func (c *Config) fillPaths() error {
	if c.Paths.ReportsDir != "" && c.Paths.LogsDir != "" && c.Paths.LockFile != "" {
		return nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("config: resolve home: %w", err)
	}
	state := filepath.Join(home, ".local", "state", "nixmedic")

	if c.Paths.ReportsDir == "" {
		c.Paths.ReportsDir = filepath.Join(state, "reports")
	}
	if c.Paths.LogsDir == "" {
		c.Paths.LogsDir = filepath.Join(state, "logs")
	}
	if c.Paths.LockFile == "" {
		c.Paths.LockFile = filepath.Join(state, "nixmedic.lock")
	}
	return nil
}

// HealthThresholds builds the evaluator's threshold set from the configured
// numeric limits, keeping the boolean probes' severity grading.
func (c *Config) HealthThresholds() health.Thresholds {
	t := health.DefaultThresholds()
	t["cpu"] = health.Threshold{Comparator: health.CompareGreater, Limit: c.Thresholds.CPUPercent, Severity: health.SeverityError}
	t["memory"] = health.Threshold{Comparator: health.CompareGreater, Limit: c.Thresholds.MemoryPercent, Severity: health.SeverityError}
	t["disk"] = health.Threshold{Comparator: health.CompareGreater, Limit: c.Thresholds.DiskPercent, Severity: health.SeverityError}
	t["load1"] = health.Threshold{Comparator: health.CompareGreater, Limit: c.Thresholds.Load1, Severity: health.SeverityError}
	return t
}
