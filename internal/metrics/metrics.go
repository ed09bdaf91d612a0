package metrics

import (
	"time"

	"netseg/internal/domain"
)

// All recorders accept a nil *Registry so callers that run without metrics
// need no guards.

// RecordHTTPRequest records an HTTP request with its duration
func (r *Registry) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	if r == nil {
		return
	}
	r.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordMutation counts a canvas edit and updates the node gauge
func (r *Registry) RecordMutation(op string, nodes int) {
	if r == nil {
		return
	}
	r.DesignerMutations.WithLabelValues(op).Inc()
	r.DesignerNodes.Set(float64(nodes))
}

// SetNodeCount updates the node gauge without counting an edit
func (r *Registry) SetNodeCount(nodes int) {
	if r == nil {
		return
	}
	r.DesignerNodes.Set(float64(nodes))
}

// RecordValidation stores the finding counts of a validation pass
func (r *Registry) RecordValidation(findings []domain.Finding) {
	if r == nil {
		return
	}
	r.ValidationRuns.Inc()
	counts := make(map[domain.FindingKind]int)
	for _, f := range findings {
		counts[f.Kind]++
	}
	for _, kind := range []domain.FindingKind{
		domain.FindingIPConflict, domain.FindingIsolatedElement,
		domain.FindingMissingSecurity, domain.FindingMissingDepartment,
		domain.FindingSuccess,
	} {
		r.ValidationFindings.WithLabelValues(string(kind)).Set(float64(counts[kind]))
	}
}

// RecordDeployment counts a deployment attempt
func (r *Registry) RecordDeployment(outcome string) {
	if r == nil {
		return
	}
	r.DesignerDeployments.WithLabelValues(outcome).Inc()
}

// SetHostCounts replaces the virtual host gauges
func (r *Registry) SetHostCounts(hosts []domain.VirtualHost) {
	if r == nil {
		return
	}
	counts := map[domain.HostStatus]int{
		domain.HostStatusRunning:  0,
		domain.HostStatusStopped:  0,
		domain.HostStatusStarting: 0,
		domain.HostStatusError:    0,
	}
	for _, h := range hosts {
		counts[h.Status]++
	}
	for status, n := range counts {
		r.VirtualHosts.WithLabelValues(string(status)).Set(float64(n))
	}
}

// RecordTest counts a finished connectivity test
func (r *Registry) RecordTest(result domain.TestResult) {
	if r == nil {
		return
	}
	r.TestsTotal.WithLabelValues(string(result.Type), string(result.Status)).Inc()
}

// UpdateNetwork copies a metrics snapshot into the network gauges
func (r *Registry) UpdateNetwork(snap domain.MetricsSnapshot) {
	if r == nil {
		return
	}
	r.NetworkBandwidth.Set(snap.Metrics[domain.MetricBandwidth].Value)
	r.NetworkPacketLoss.Set(snap.Metrics[domain.MetricPacketLoss].Value)
	r.NetworkLatency.Set(snap.Metrics[domain.MetricLatency].Value)
	r.NetworkConnections.Set(snap.Metrics[domain.MetricConnections].Value)
	r.SetConnectionStatus(snap.Status)
}

// SetConnectionStatus marks the current monitoring feed status
func (r *Registry) SetConnectionStatus(status domain.ConnectionStatus) {
	if r == nil {
		return
	}
	for _, s := range []domain.ConnectionStatus{
		domain.ConnectionConnected, domain.ConnectionConnecting, domain.ConnectionDisconnected,
	} {
		v := 0.0
		if s == status {
			v = 1
		}
		r.NetworkStatus.WithLabelValues(string(s)).Set(v)
	}
}

// TrackInFlight counts a request as in flight until the returned func is called
func (r *Registry) TrackInFlight() func() {
	if r == nil {
		return func() {}
	}
	r.HTTPRequestsInFlight.Inc()
	return r.HTTPRequestsInFlight.Dec
}
