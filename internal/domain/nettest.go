package domain

import "time"

// TestType is the kind of simulated connectivity test
type TestType string

const (
	TestTypePing          TestType = "ping"
	TestTypeTraceroute    TestType = "traceroute"
	TestTypePortScan      TestType = "port-scan"
	TestTypeBandwidth     TestType = "bandwidth"
	TestTypePacketCapture TestType = "packet-capture"
	TestTypeDNSLookup     TestType = "dns-lookup"
)

// TestStatus is the outcome of a connectivity test
type TestStatus string

const (
	TestStatusSuccess TestStatus = "success"
	TestStatusWarning TestStatus = "warning"
	TestStatusFailed  TestStatus = "failed"
)

// TestOptions are the advanced knobs of the test control panel
type TestOptions struct {
	Timeout    int `json:"timeout" validate:"min=0,max=300"`
	Count      int `json:"count" validate:"min=0,max=100"`
	Interval   int `json:"interval" validate:"min=0,max=60"`
	PacketSize int `json:"packet_size" validate:"min=0,max=65507"`
}

// DefaultTestOptions mirrors the control panel defaults
func DefaultTestOptions() TestOptions {
	return TestOptions{Timeout: 5, Count: 4, Interval: 1, PacketSize: 64}
}

// TestRequest asks for a connectivity test between two endpoints
type TestRequest struct {
	Source      string      `json:"source" validate:"required,notblank"`
	Destination string      `json:"destination" validate:"required,notblank,nefield=Source"`
	Type        TestType    `json:"type" validate:"required,oneof=ping traceroute port-scan bandwidth packet-capture dns-lookup"`
	Options     TestOptions `json:"options"`
}

// TestResult is the recorded outcome of one test
type TestResult struct {
	ID          string      `json:"id"`
	Source      string      `json:"source"`
	Destination string      `json:"destination"`
	Type        TestType    `json:"type"`
	Status      TestStatus  `json:"status"`
	Duration    int         `json:"duration"`
	Timestamp   time.Time   `json:"timestamp"`
	Details     string      `json:"details"`
	Batch       bool        `json:"batch,omitempty"`
	Options     TestOptions `json:"options"`
}

// TestEndpoint is a host selectable as a test source or destination
type TestEndpoint struct {
	ID          string `json:"id"`
	IPAddress   string `json:"ip_address"`
	Description string `json:"description"`
}
