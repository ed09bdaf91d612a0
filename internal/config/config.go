// Package config provides configuration management for netseg.
//
// The config file holds the server tunables: listen address, database,
// logging, designer defaults, simulated delays and the monitor cadence.
// Designs, zones, hosts and test history live in the database.
//
// Config file locations (priority order):
//  1. $NETSEG_CONFIG
//  2. ./netseg.yaml
//  3. ~/.config/netseg/config.yaml
//  4. /etc/netseg/config.yaml
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, path, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, path, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns the settings used when no file is found
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Pace == "" {
		c.Pace = PaceRealtime
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":3000"
	}
	if c.Database.Path == "" {
		c.Database.Path = "./netseg.db"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}

	if c.Designer.GridUnit == 0 {
		c.Designer.GridUnit = 20
	}
	if c.Designer.SnapToGrid == nil {
		snap := true
		c.Designer.SnapToGrid = &snap
	}
	if c.Designer.DefaultDepartment == "" {
		c.Designer.DefaultDepartment = "IT"
	}
	if c.Designer.HistoryLimit == 0 {
		c.Designer.HistoryLimit = 100
	}
	if c.Designer.IPConflictMode == "" {
		c.Designer.IPConflictMode = "exact"
	}

	if c.Monitor.RefreshInterval == 0 {
		c.Monitor.RefreshInterval = Duration(30 * time.Second)
	}
	if c.Monitor.StatusInterval == 0 {
		c.Monitor.StatusInterval = Duration(45 * time.Second)
	}
}

// Validate rejects values the services cannot run with
func (c *Config) Validate() error {
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log.format must be json or console, got %q", c.Log.Format)
	}
	switch c.Designer.IPConflictMode {
	case "exact", "overlap":
	default:
		return fmt.Errorf("designer.ip_conflict_mode must be exact or overlap, got %q", c.Designer.IPConflictMode)
	}
	if _, ok := PaceProfiles[c.Pace]; !ok {
		return fmt.Errorf("unknown pace %q", c.Pace)
	}
	if c.Designer.GridUnit < 0 {
		return fmt.Errorf("designer.grid_unit must be positive")
	}
	if c.Designer.HistoryLimit < 0 {
		return fmt.Errorf("designer.history_limit must be positive")
	}
	if c.Monitor.RefreshInterval < 0 || c.Monitor.StatusInterval < 0 {
		return fmt.Errorf("monitor intervals must be positive")
	}
	return nil
}

// SnapToGrid reports the configured snap setting
func (c *Config) SnapToGrid() bool {
	return c.Designer.SnapToGrid == nil || *c.Designer.SnapToGrid
}

// EffectiveDelays returns the pace profile with per-key overrides applied
func (c *Config) EffectiveDelays() DelayProfile {
	base := c.Pace.GetProfile()

	override := func(dst *time.Duration, d *Duration) {
		if d != nil {
			*dst = d.Duration()
		}
	}
	override(&base.DesignSave, c.Designer.SaveDelay)
	override(&base.Deploy, c.Designer.DeployDelay)
	override(&base.DeployTimeout, c.Designer.DeployTimeout)
	override(&base.DepartmentSave, c.Departments.SaveDelay)
	override(&base.HostCreate, c.Hosts.CreateDelay)
	override(&base.HostStart, c.Hosts.StartDelay)
	override(&base.HostRestart, c.Hosts.RestartDelay)
	override(&base.TestRun, c.Testing.RunDelay)
	override(&base.TestBatch, c.Testing.BatchDelay)

	return base
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	delays := c.EffectiveDelays()
	summary := fmt.Sprintf("Listen: %s, Database: %s, Pace: %s\n", c.Server.Addr, c.Database.Path, c.Pace)
	summary += fmt.Sprintf("Grid: %g (snap %v), Conflicts: %s, History: %d\n",
		c.Designer.GridUnit, c.SnapToGrid(), c.Designer.IPConflictMode, c.Designer.HistoryLimit)
	summary += fmt.Sprintf("Deploy: %s (timeout %s), Test run: %s, Monitor refresh: %s",
		delays.Deploy, delays.DeployTimeout, delays.TestRun, c.Monitor.RefreshInterval.Duration())
	return summary
}
