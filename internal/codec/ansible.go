package codec

import (
	"fmt"
	"io"
	"strings"

	"netseg/internal/domain"

	"gopkg.in/yaml.v3"
)

// AnsibleCodec exports virtual hosts as an Ansible inventory
type AnsibleCodec struct{}

// NewAnsibleCodec creates a new Ansible codec
func NewAnsibleCodec() *AnsibleCodec {
	return &AnsibleCodec{}
}

// Format returns the codec format identifier
func (c *AnsibleCodec) Format() string {
	return "ansible-inventory"
}

// ansibleInventory represents the Ansible inventory structure
type ansibleInventory struct {
	All ansibleGroup `yaml:"all"`
}

type ansibleGroup struct {
	Children map[string]ansibleGroupDef `yaml:"children,omitempty"`
}

type ansibleGroupDef struct {
	Hosts map[string]ansibleHost `yaml:"hosts,omitempty"`
	Vars  map[string]interface{} `yaml:"vars,omitempty"`
}

type ansibleHost struct {
	AnsibleHost string                 `yaml:"ansible_host,omitempty"`
	Vars        map[string]interface{} `yaml:",inline"`
}

// groupName maps a department to an inventory group ("Finance" -> "finance")
func groupName(d domain.Department) string {
	if d == domain.DepartmentNone {
		return "ungrouped"
	}
	return strings.ToLower(string(d))
}

// ExportHosts writes hosts grouped by department. Each group carries the
// department subnet when all of its hosts share one.
func (c *AnsibleCodec) ExportHosts(hosts []domain.VirtualHost, w io.Writer) error {
	inv := ansibleInventory{
		All: ansibleGroup{
			Children: make(map[string]ansibleGroupDef),
		},
	}

	subnets := make(map[string]string)
	for _, h := range hosts {
		group := groupName(h.Department)
		def, ok := inv.All.Children[group]
		if !ok {
			def = ansibleGroupDef{Hosts: make(map[string]ansibleHost)}
			subnets[group] = h.Subnet
		} else if subnets[group] != h.Subnet {
			subnets[group] = ""
		}

		def.Hosts[h.Hostname] = ansibleHost{
			AnsibleHost: h.IPAddress,
			Vars: map[string]interface{}{
				"namespace": h.Namespace,
				"status":    string(h.Status),
				"cpu_cores": h.Allocation.CPU,
				"memory_gb": h.Allocation.Memory,
				"disk_gb":   h.Allocation.Disk,
			},
		}
		inv.All.Children[group] = def
	}

	for group, subnet := range subnets {
		if subnet == "" {
			continue
		}
		def := inv.All.Children[group]
		def.Vars = map[string]interface{}{"subnet": subnet}
		inv.All.Children[group] = def
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(&inv); err != nil {
		return fmt.Errorf("failed to encode Ansible inventory: %w", err)
	}

	return nil
}
