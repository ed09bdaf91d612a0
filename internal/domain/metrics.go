package domain

import "time"

// MetricName identifies one of the live network metrics
type MetricName string

const (
	MetricBandwidth   MetricName = "bandwidth"
	MetricPacketLoss  MetricName = "packet_loss"
	MetricLatency     MetricName = "latency"
	MetricConnections MetricName = "connections"
)

// ConnectionStatus is the state of the monitoring feed
type ConnectionStatus string

const (
	ConnectionConnected    ConnectionStatus = "connected"
	ConnectionConnecting   ConnectionStatus = "connecting"
	ConnectionDisconnected ConnectionStatus = "disconnected"
)

// Sample is one point of a metric series
type Sample struct {
	Time  int     `json:"time"`
	Value float64 `json:"value"`
}

// Metric is the current value of a metric with its trend and recent series
type Metric struct {
	Value  float64  `json:"value"`
	Trend  float64  `json:"trend"`
	Series []Sample `json:"series"`
}

// MetricsSnapshot is a point-in-time copy of all live metrics
type MetricsSnapshot struct {
	Metrics    map[MetricName]Metric `json:"metrics"`
	Status     ConnectionStatus      `json:"status"`
	LastUpdate time.Time             `json:"last_update"`
}
