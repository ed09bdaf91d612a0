package domain

import "time"

// ZoneStatus is the health summary shown for a department zone
type ZoneStatus string

const (
	ZoneStatusActive   ZoneStatus = "active"
	ZoneStatusWarning  ZoneStatus = "warning"
	ZoneStatusInactive ZoneStatus = "inactive"
)

// SharedResources lists the resources a zone may be granted access to
var SharedResources = []string{"printer", "fileserver", "database", "backup", "monitoring"}

// DepartmentZone is the network segment configuration of one department
type DepartmentZone struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	Description       string     `json:"description"`
	Status            ZoneStatus `json:"status"`
	VLANID            int        `json:"vlan_id"`
	Subnet            string     `json:"subnet"`
	Gateway           string     `json:"gateway"`
	SubnetMask        string     `json:"subnet_mask"`
	DNSServers        []string   `json:"dns_servers"`
	HostCount         int        `json:"host_count"`
	BandwidthPriority int        `json:"bandwidth_priority"`
	AccessPermissions []string   `json:"access_permissions"`
	SharedResources   []string   `json:"shared_resources"`
	FirewallRules     []string   `json:"firewall_rules"`
	DHCPEnabled       bool       `json:"dhcp_enabled"`
	InternetAccess    bool       `json:"internet_access"`
	LastModified      time.Time  `json:"last_modified"`
}

// ZoneConfig is the editable part of a department zone
type ZoneConfig struct {
	VLANID            int      `json:"vlan_id" validate:"required,min=1,max=4094"`
	Subnet            string   `json:"subnet" validate:"required,iprange"`
	Gateway           string   `json:"gateway" validate:"required,ipaddr"`
	SubnetMask        string   `json:"subnet_mask" validate:"omitempty,ipaddr"`
	DNSServers        []string `json:"dns_servers" validate:"dive,required,ipaddr"`
	BandwidthPriority int      `json:"bandwidth_priority" validate:"min=0,max=100"`
	AccessPermissions []string `json:"access_permissions"`
	SharedResources   []string `json:"shared_resources" validate:"dive,oneof=printer fileserver database backup monitoring"`
	FirewallRules     []string `json:"firewall_rules"`
	DHCPEnabled       bool     `json:"dhcp_enabled"`
	InternetAccess    bool     `json:"internet_access"`
}

// Config extracts the editable configuration of the zone
func (z DepartmentZone) Config() ZoneConfig {
	return ZoneConfig{
		VLANID:            z.VLANID,
		Subnet:            z.Subnet,
		Gateway:           z.Gateway,
		SubnetMask:        z.SubnetMask,
		DNSServers:        cloneStrings(z.DNSServers),
		BandwidthPriority: z.BandwidthPriority,
		AccessPermissions: cloneStrings(z.AccessPermissions),
		SharedResources:   cloneStrings(z.SharedResources),
		FirewallRules:     cloneStrings(z.FirewallRules),
		DHCPEnabled:       z.DHCPEnabled,
		InternetAccess:    z.InternetAccess,
	}
}

// Apply overwrites the zone's configuration and stamps the modification time
func (z *DepartmentZone) Apply(cfg ZoneConfig, now time.Time) {
	z.VLANID = cfg.VLANID
	z.Subnet = cfg.Subnet
	z.Gateway = cfg.Gateway
	if cfg.SubnetMask != "" {
		z.SubnetMask = cfg.SubnetMask
	}
	z.DNSServers = cloneStrings(cfg.DNSServers)
	z.BandwidthPriority = cfg.BandwidthPriority
	z.AccessPermissions = cloneStrings(cfg.AccessPermissions)
	z.SharedResources = cloneStrings(cfg.SharedResources)
	z.FirewallRules = cloneStrings(cfg.FirewallRules)
	z.DHCPEnabled = cfg.DHCPEnabled
	z.InternetAccess = cfg.InternetAccess
	z.LastModified = now
}

func cloneStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
