package domain

import (
	"strings"
	"time"
)

// HostStatus is the lifecycle state of a virtual host
type HostStatus string

const (
	HostStatusRunning  HostStatus = "running"
	HostStatusStopped  HostStatus = "stopped"
	HostStatusStarting HostStatus = "starting"
	HostStatusError    HostStatus = "error"
)

// HostAction is an operator action on one or more virtual hosts
type HostAction string

const (
	HostActionStart   HostAction = "start"
	HostActionStop    HostAction = "stop"
	HostActionRestart HostAction = "restart"
	HostActionDelete  HostAction = "delete"
)

// Valid reports whether a is a known host action
func (a HostAction) Valid() bool {
	switch a {
	case HostActionStart, HostActionStop, HostActionRestart, HostActionDelete:
		return true
	}
	return false
}

// Resources holds CPU cores, memory GB and disk GB (allocation) or
// percentages (usage)
type Resources struct {
	CPU    int `json:"cpu"`
	Memory int `json:"memory"`
	Disk   int `json:"disk"`
}

// VirtualHost is a simulated host living in a department's network namespace
type VirtualHost struct {
	ID           string     `json:"id"`
	Hostname     string     `json:"hostname"`
	Department   Department `json:"department"`
	IPAddress    string     `json:"ip_address"`
	Subnet       string     `json:"subnet"`
	Namespace    string     `json:"namespace"`
	Status       HostStatus `json:"status"`
	Usage        Resources  `json:"resource_usage"`
	Allocation   Resources  `json:"resource_allocation"`
	Description  string     `json:"description,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	StartTime    *time.Time `json:"start_time,omitempty"`
	LastActivity time.Time  `json:"last_activity"`
}

// HostSpec is the create/update form for a virtual host
type HostSpec struct {
	Hostname    string     `json:"hostname" validate:"required,hostlabel"`
	Department  Department `json:"department" validate:"required,department"`
	IPAddress   string     `json:"ip_address" validate:"required,ipaddr"`
	CPUCores    int        `json:"cpu_cores" validate:"oneof=1 2 4 8"`
	MemoryGB    int        `json:"memory_gb" validate:"oneof=2 4 8 16"`
	DiskGB      int        `json:"disk_gb" validate:"oneof=20 50 100 200"`
	Namespace   string     `json:"namespace" validate:"required,notblank"`
	Description string     `json:"description"`
}

// ApplyDefaults fills the resource fields the form preselects
func (s *HostSpec) ApplyDefaults() {
	if s.CPUCores == 0 {
		s.CPUCores = 2
	}
	if s.MemoryGB == 0 {
		s.MemoryGB = 4
	}
	if s.DiskGB == 0 {
		s.DiskGB = 20
	}
}

// SubnetOf returns the /24 network containing a dotted IPv4 address
func SubnetOf(ip string) string {
	parts := strings.Split(ip, ".")
	if len(parts) != 4 {
		return ""
	}
	return strings.Join(parts[:3], ".") + ".0/24"
}
