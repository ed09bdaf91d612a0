package codec

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"netseg/internal/domain"
)

var savedAt = time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC)

func sampleDesign() *domain.Design {
	return domain.NewDesign("office", []domain.Node{
		{ID: "vlan-1", Type: domain.NodeTypeVLAN, Name: "HR VLAN", IPRange: "192.168.10.0/24",
			Department: domain.DepartmentHR, Position: domain.Position{X: 200, Y: 150},
			Size: domain.Size{Width: 120, Height: 80}, Connections: []string{"switch-1"}},
		{ID: "switch-1", Type: domain.NodeTypeSwitch, Name: "Core Switch",
			Position: domain.Position{X: 300, Y: 300}, Size: domain.Size{Width: 100, Height: 60},
			Connections: []string{"vlan-1"}},
	}, savedAt)
}

func TestForFormat(t *testing.T) {
	tests := []struct {
		format  string
		want    string
		wantErr bool
	}{
		{"json", "json", false},
		{"yaml", "yaml", false},
		{"yml", "yaml", false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		c, err := ForFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ForFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
			continue
		}
		if err == nil && c.Format() != tt.want {
			t.Errorf("ForFormat(%q) = %s, want %s", tt.format, c.Format(), tt.want)
		}
	}
}

func TestDesignRoundTrip(t *testing.T) {
	for _, format := range []string{"json", "yaml"} {
		t.Run(format, func(t *testing.T) {
			c, _ := ForFormat(format)
			in := sampleDesign()

			var buf bytes.Buffer
			if err := c.Export(in, &buf); err != nil {
				t.Fatalf("export failed: %v", err)
			}
			out, err := c.Parse(&buf)
			if err != nil {
				t.Fatalf("parse failed: %v", err)
			}

			if out.Name != in.Name {
				t.Errorf("expected name %q, got %q", in.Name, out.Name)
			}
			if !out.SavedAt.Equal(in.SavedAt) {
				t.Errorf("expected saved at %v, got %v", in.SavedAt, out.SavedAt)
			}
			if len(out.Nodes) != 2 || out.Nodes[0].IPRange != "192.168.10.0/24" {
				t.Errorf("unexpected nodes %+v", out.Nodes)
			}
			if out.Nodes[1].Position != (domain.Position{X: 300, Y: 300}) {
				t.Errorf("unexpected position %+v", out.Nodes[1].Position)
			}
			if len(out.Links) != 1 || out.Links[0] != in.Links[0] {
				t.Errorf("unexpected links %+v", out.Links)
			}
		})
	}
}

func TestParseRejectsBadNodes(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown type", `{"name":"x","nodes":[{"id":"a","type":"mainframe","connections":[]}]}`},
		{"missing id", `{"name":"x","nodes":[{"type":"vlan","connections":[]}]}`},
		{"duplicate id", `{"name":"x","nodes":[{"id":"a","type":"vlan"},{"id":"a","type":"host"}]}`},
		{"unknown peer", `{"name":"x","nodes":[{"id":"a","type":"vlan","connections":["b"]}]}`},
		{"malformed", `{"name":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewJSONCodec().Parse(strings.NewReader(tt.doc)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestYAMLParseFillsConnections(t *testing.T) {
	doc := `
name: lab
nodes:
  - id: r1
    type: router
    name: Edge
`
	d, err := NewYAMLCodec().Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if d.Nodes[0].Connections == nil {
		t.Error("expected non-nil connections")
	}
	if len(d.Links) != 0 {
		t.Errorf("expected no links, got %v", d.Links)
	}
}

func TestExportTestResults(t *testing.T) {
	t.Run("writes the download fields", func(t *testing.T) {
		results := []domain.TestResult{{
			ID: "t1", Source: "hr-ws-001", Destination: "it-srv-001",
			Type: domain.TestTypePing, Status: domain.TestStatusSuccess, Duration: 245,
			Timestamp: time.Date(2024, 6, 10, 8, 15, 30, 0, time.UTC),
			Details: "4 packets transmitted, 4 received, 0% packet loss",
		}}

		var buf bytes.Buffer
		if err := ExportTestResults(results, &buf); err != nil {
			t.Fatalf("export failed: %v", err)
		}

		var got []map[string]interface{}
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("expected 1 entry, got %d", len(got))
		}
		want := map[string]interface{}{
			"timestamp":   "2024-06-10T08:15:30.000Z",
			"source":      "hr-ws-001",
			"destination": "it-srv-001",
			"type":        "ping",
			"status":      "success",
			"duration":    float64(245),
			"details":     "4 packets transmitted, 4 received, 0% packet loss",
		}
		for k, v := range want {
			if got[0][k] != v {
				t.Errorf("%s: expected %v, got %v", k, v, got[0][k])
			}
		}
		if len(got[0]) != len(want) {
			t.Errorf("unexpected extra fields: %v", got[0])
		}
	})

	t.Run("empty list is an empty array", func(t *testing.T) {
		var buf bytes.Buffer
		if err := ExportTestResults(nil, &buf); err != nil {
			t.Fatalf("export failed: %v", err)
		}
		if strings.TrimSpace(buf.String()) != "[]" {
			t.Errorf("expected [], got %q", buf.String())
		}
	})
}

func TestTestResultsFilename(t *testing.T) {
	got := TestResultsFilename(time.Date(2024, 1, 5, 23, 0, 0, 0, time.UTC))
	if got != "network-test-results-2024-01-05.json" {
		t.Errorf("unexpected filename %q", got)
	}

	// 22:00 in UTC-5 is already the next day in UTC
	local := time.Date(2024, 1, 5, 22, 0, 0, 0, time.FixedZone("EST", -5*3600))
	if got := TestResultsFilename(local); got != "network-test-results-2024-01-06.json" {
		t.Errorf("unexpected filename %q for non-UTC time", got)
	}
}

func TestExportHosts(t *testing.T) {
	hosts := []domain.VirtualHost{
		{Hostname: "web-server-01", Department: domain.DepartmentIT, IPAddress: "192.168.20.10",
			Subnet: "192.168.20.0/24", Namespace: "it-ns", Status: domain.HostStatusRunning,
			Allocation: domain.Resources{CPU: 4, Memory: 8, Disk: 100}},
		{Hostname: "it-dev-01", Department: domain.DepartmentIT, IPAddress: "192.168.20.11",
			Subnet: "192.168.20.0/24", Namespace: "it-ns", Status: domain.HostStatusStopped},
		{Hostname: "guest-kiosk", Department: domain.DepartmentGuest, IPAddress: "10.0.0.5",
			Subnet: "10.0.0.0/24"},
		{Hostname: "guest-laptop", Department: domain.DepartmentGuest, IPAddress: "10.0.1.5",
			Subnet: "10.0.1.0/24"},
	}

	var buf bytes.Buffer
	if err := NewAnsibleCodec().ExportHosts(hosts, &buf); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var inv ansibleInventory
	if err := yaml.Unmarshal(buf.Bytes(), &inv); err != nil {
		t.Fatalf("invalid YAML: %v", err)
	}

	it, ok := inv.All.Children["it"]
	if !ok {
		t.Fatal("expected it group")
	}
	if len(it.Hosts) != 2 {
		t.Errorf("expected 2 it hosts, got %d", len(it.Hosts))
	}
	if it.Hosts["web-server-01"].AnsibleHost != "192.168.20.10" {
		t.Errorf("unexpected ansible_host %q", it.Hosts["web-server-01"].AnsibleHost)
	}
	if it.Hosts["web-server-01"].Vars["cpu_cores"] != 4 {
		t.Errorf("expected cpu_cores 4, got %v", it.Hosts["web-server-01"].Vars["cpu_cores"])
	}
	if it.Vars["subnet"] != "192.168.20.0/24" {
		t.Errorf("expected shared subnet var, got %v", it.Vars)
	}

	guest := inv.All.Children["guest"]
	if _, ok := guest.Vars["subnet"]; ok {
		t.Errorf("mixed subnets must not produce a group subnet, got %v", guest.Vars)
	}
}
