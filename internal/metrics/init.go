package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initHTTPMetrics() {
	r.HTTPRequestsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "netseg_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	r.HTTPRequestDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "netseg_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	r.HTTPRequestsInFlight = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "netseg_http_requests_in_flight",
			Help: "Current number of HTTP requests being processed",
		},
	)
}

func (r *Registry) initDesignerMetrics() {
	r.DesignerNodes = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "netseg_designer_nodes",
			Help: "Number of elements on the design canvas",
		},
	)

	r.DesignerMutations = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "netseg_designer_mutations_total",
			Help: "Canvas edits by operation",
		},
		[]string{"op"},
	)

	r.ValidationFindings = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "netseg_validation_findings",
			Help: "Findings of the last validation run by kind",
		},
		[]string{"kind"},
	)

	r.ValidationRuns = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "netseg_validation_runs_total",
			Help: "Number of full validation passes",
		},
	)

	r.DesignerDeployments = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "netseg_designer_deployments_total",
			Help: "Deployment attempts by outcome",
		},
		[]string{"outcome"},
	)

	r.VirtualHosts = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "netseg_virtual_hosts",
			Help: "Virtual hosts by status",
		},
		[]string{"status"},
	)

	r.TestsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "netseg_connectivity_tests_total",
			Help: "Connectivity tests run by type and status",
		},
		[]string{"type", "status"},
	)
}

func (r *Registry) initNetworkMetrics() {
	r.NetworkBandwidth = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "netseg_network_bandwidth_percent",
			Help: "Simulated bandwidth utilization",
		},
	)

	r.NetworkPacketLoss = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "netseg_network_packet_loss_percent",
			Help: "Simulated packet loss",
		},
	)

	r.NetworkLatency = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "netseg_network_latency_ms",
			Help: "Simulated average latency",
		},
	)

	r.NetworkConnections = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "netseg_network_active_connections",
			Help: "Simulated active connections",
		},
	)

	r.NetworkStatus = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "netseg_network_connection_status",
			Help: "1 for the current monitoring feed status, 0 otherwise",
		},
		[]string{"status"},
	)
}
