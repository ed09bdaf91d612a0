package config

import "time"

// Pace selects how long the simulated operations take
type Pace string

const (
	PaceRealtime Pace = "realtime" // dashboard timings
	PaceFast     Pace = "fast"     // a tenth of the dashboard timings
	PaceInstant  Pace = "instant"  // no artificial delay
)

// ParsePace converts a string to Pace, defaulting to PaceRealtime
func ParsePace(s string) Pace {
	switch s {
	case "fast":
		return PaceFast
	case "instant":
		return PaceInstant
	default:
		return PaceRealtime
	}
}

// DelayProfile holds the duration of every simulated operation
type DelayProfile struct {
	DesignSave     time.Duration `yaml:"design_save"`
	Deploy         time.Duration `yaml:"deploy"`
	DeployTimeout  time.Duration `yaml:"deploy_timeout"`
	DepartmentSave time.Duration `yaml:"department_save"`
	HostCreate     time.Duration `yaml:"host_create"`
	HostStart      time.Duration `yaml:"host_start"`
	HostRestart    time.Duration `yaml:"host_restart"`
	TestRun        time.Duration `yaml:"test_run"`
	TestBatch      time.Duration `yaml:"test_batch"`
}

// PaceProfiles maps paces to their delays
var PaceProfiles = map[Pace]DelayProfile{
	PaceRealtime: {
		DesignSave:     2 * time.Second,
		Deploy:         3 * time.Second,
		DeployTimeout:  30 * time.Second,
		DepartmentSave: 1500 * time.Millisecond,
		HostCreate:     3 * time.Second,
		HostStart:      2 * time.Second,
		HostRestart:    3 * time.Second,
		TestRun:        3 * time.Second,
		TestBatch:      5 * time.Second,
	},
	PaceFast: {
		DesignSave:     200 * time.Millisecond,
		Deploy:         300 * time.Millisecond,
		DeployTimeout:  30 * time.Second,
		DepartmentSave: 150 * time.Millisecond,
		HostCreate:     300 * time.Millisecond,
		HostStart:      200 * time.Millisecond,
		HostRestart:    300 * time.Millisecond,
		TestRun:        300 * time.Millisecond,
		TestBatch:      500 * time.Millisecond,
	},
	PaceInstant: {
		DeployTimeout: 30 * time.Second,
	},
}

// GetProfile returns the delays for a pace
func (p Pace) GetProfile() DelayProfile {
	if profile, ok := PaceProfiles[p]; ok {
		return profile
	}
	return PaceProfiles[PaceRealtime]
}
