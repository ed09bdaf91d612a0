package config

import (
	"time"
)

// Config is the root configuration structure
type Config struct {
	Version     int               `yaml:"version"`
	Pace        Pace              `yaml:"pace"`
	Server      ServerConfig      `yaml:"server"`
	Database    DatabaseConfig    `yaml:"database"`
	Log         LogConfig         `yaml:"log"`
	Designer    DesignerConfig    `yaml:"designer"`
	Departments DepartmentsConfig `yaml:"departments,omitempty"`
	Hosts       HostsConfig       `yaml:"hosts,omitempty"`
	Testing     TestingConfig     `yaml:"testing,omitempty"`
	Monitor     MonitorConfig     `yaml:"monitor"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"cors_origins,omitempty"` // empty allows any origin
}

// DatabaseConfig holds database settings
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or console
}

// DesignerConfig holds the designer canvas defaults. Delays left unset
// come from the pace profile.
type DesignerConfig struct {
	GridUnit          float64   `yaml:"grid_unit"`
	SnapToGrid        *bool     `yaml:"snap_to_grid,omitempty"`
	DefaultDepartment string    `yaml:"default_department"`
	HistoryLimit      int       `yaml:"history_limit"`
	IPConflictMode    string    `yaml:"ip_conflict_mode"` // exact or overlap
	SaveDelay         *Duration `yaml:"save_delay,omitempty"`
	DeployDelay       *Duration `yaml:"deploy_delay,omitempty"`
	DeployTimeout     *Duration `yaml:"deploy_timeout,omitempty"`
}

// DepartmentsConfig overrides department zone delays
type DepartmentsConfig struct {
	SaveDelay *Duration `yaml:"save_delay,omitempty"`
}

// HostsConfig overrides virtual host lifecycle delays
type HostsConfig struct {
	CreateDelay  *Duration `yaml:"create_delay,omitempty"`
	StartDelay   *Duration `yaml:"start_delay,omitempty"`
	RestartDelay *Duration `yaml:"restart_delay,omitempty"`
}

// TestingConfig overrides connectivity test delays
type TestingConfig struct {
	RunDelay   *Duration `yaml:"run_delay,omitempty"`
	BatchDelay *Duration `yaml:"batch_delay,omitempty"`
}

// MonitorConfig holds the metrics simulator cadence
type MonitorConfig struct {
	RefreshInterval Duration `yaml:"refresh_interval"`
	StatusInterval  Duration `yaml:"status_interval"`
	Seed            int64    `yaml:"seed,omitempty"` // 0 seeds from the clock
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
