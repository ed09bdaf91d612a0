package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all metrics for the application
type Registry struct {
	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Designer metrics
	DesignerNodes       prometheus.Gauge
	DesignerMutations   *prometheus.CounterVec
	ValidationFindings  *prometheus.GaugeVec
	ValidationRuns      prometheus.Counter
	DesignerDeployments *prometheus.CounterVec

	// Host and test metrics
	VirtualHosts *prometheus.GaugeVec
	TestsTotal   *prometheus.CounterVec

	// Simulated network metrics
	NetworkBandwidth   prometheus.Gauge
	NetworkPacketLoss  prometheus.Gauge
	NetworkLatency     prometheus.Gauge
	NetworkConnections prometheus.Gauge
	NetworkStatus      *prometheus.GaugeVec

	registry *prometheus.Registry
}

// NewRegistry creates a registry with every metric initialized and the Go
// runtime collectors attached
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := &Registry{registry: reg}
	r.initHTTPMetrics()
	r.initDesignerMetrics()
	r.initNetworkMetrics()
	return r
}

// Prometheus returns the underlying Prometheus registry
func (r *Registry) Prometheus() *prometheus.Registry {
	return r.registry
}
