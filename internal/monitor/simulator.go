// Package monitor simulates the live network metrics and the state of the
// monitoring feed.
package monitor

import (
	"context"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"netseg/internal/clock"
	"netseg/internal/domain"
	"netseg/internal/metrics"
	"netseg/internal/service"
)

// seriesLength is the number of samples kept per metric
const seriesLength = 12

// Random is the draw source of the simulator. *rand.Rand satisfies it.
type Random interface {
	Float64() float64
}

// Config holds the simulator cadence
type Config struct {
	RefreshInterval time.Duration
	StatusInterval  time.Duration
}

// DefaultConfig returns the dashboard defaults
func DefaultConfig() Config {
	return Config{
		RefreshInterval: 30 * time.Second,
		StatusInterval:  45 * time.Second,
	}
}

// walk describes how one metric moves on each refresh
type walk struct {
	step       float64 // value moves by up to half of step either way
	trendRange float64
	max        float64 // zero means unbounded
	integer    bool
}

var walks = map[domain.MetricName]walk{
	domain.MetricBandwidth:   {step: 5, trendRange: 20},
	domain.MetricPacketLoss:  {step: 0.5, trendRange: 30, max: 5},
	domain.MetricLatency:     {step: 3, trendRange: 15},
	domain.MetricConnections: {step: 20, trendRange: 25, integer: true},
}

// metricOrder fixes the order of random draws
var metricOrder = []domain.MetricName{
	domain.MetricBandwidth,
	domain.MetricPacketLoss,
	domain.MetricLatency,
	domain.MetricConnections,
}

var statusWeights = []struct {
	status domain.ConnectionStatus
	weight float64
}{
	{domain.ConnectionConnected, 0.85},
	{domain.ConnectionConnecting, 0.10},
	{domain.ConnectionDisconnected, 0.05},
}

// Simulator produces the live metrics shown on the monitoring page
type Simulator struct {
	mu         sync.Mutex
	metrics    map[domain.MetricName]domain.Metric
	status     domain.ConnectionStatus
	lastUpdate time.Time
	refresh    clock.Ticker // set while Run is active
	cfg        Config

	rnd      Random
	clock    clock.Clock
	eventBus *service.EventBus
	registry *metrics.Registry
	logger   *zap.Logger
}

// New creates a simulator with the starting values and a random history
func New(rnd Random, clk clock.Clock, bus *service.EventBus, reg *metrics.Registry, logger *zap.Logger, cfg Config) *Simulator {
	def := DefaultConfig()
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = def.RefreshInterval
	}
	if cfg.StatusInterval <= 0 {
		cfg.StatusInterval = def.StatusInterval
	}

	s := &Simulator{
		status:     domain.ConnectionConnected,
		lastUpdate: clk.Now().UTC(),
		cfg:        cfg,
		rnd:        rnd,
		clock:      clk,
		eventBus:   bus,
		registry:   reg,
		logger:     logger,
	}

	initial := func(value, trend, base, spread float64) domain.Metric {
		series := make([]domain.Sample, seriesLength)
		for i := range series {
			series[i] = domain.Sample{Time: i, Value: base + rnd.Float64()*spread}
		}
		return domain.Metric{Value: value, Trend: trend, Series: series}
	}
	s.metrics = map[domain.MetricName]domain.Metric{
		domain.MetricBandwidth:   initial(67.5, 5.2, 60, 20),
		domain.MetricPacketLoss:  initial(0.8, -12.3, 0, 2),
		domain.MetricLatency:     initial(23.4, 2.1, 20, 10),
		domain.MetricConnections: initial(247, 8.7, 200, 100),
	}
	return s
}

// Snapshot returns a copy of the current metrics
func (s *Simulator) Snapshot() domain.MetricsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Simulator) snapshot() domain.MetricsSnapshot {
	out := domain.MetricsSnapshot{
		Metrics:    make(map[domain.MetricName]domain.Metric, len(s.metrics)),
		Status:     s.status,
		LastUpdate: s.lastUpdate,
	}
	for name, m := range s.metrics {
		m.Series = append([]domain.Sample(nil), m.Series...)
		out.Metrics[name] = m
	}
	return out
}

// Step moves every metric one random-walk step and appends the new value
// to its series
func (s *Simulator) Step() domain.MetricsSnapshot {
	s.mu.Lock()
	for _, name := range metricOrder {
		s.metrics[name] = s.advance(s.metrics[name], walks[name])
	}
	s.lastUpdate = s.clock.Now().UTC()
	snap := s.snapshot()
	s.mu.Unlock()

	s.registry.UpdateNetwork(snap)
	s.eventBus.Publish(service.Event{
		Type:    service.EventMetricsUpdated,
		Payload: snap,
	})
	return snap
}

// advance must be called with s.mu held
func (s *Simulator) advance(m domain.Metric, w walk) domain.Metric {
	delta := (s.rnd.Float64() - 0.5) * w.step
	if w.integer {
		delta = math.Floor(delta)
	}
	m.Value = math.Max(0, m.Value+delta)
	if w.max > 0 {
		m.Value = math.Min(w.max, m.Value)
	}
	m.Trend = (s.rnd.Float64() - 0.5) * w.trendRange

	next := 0
	if n := len(m.Series); n > 0 {
		next = m.Series[n-1].Time + 1
	}
	m.Series = append(m.Series, domain.Sample{Time: next, Value: m.Value})
	if len(m.Series) > seriesLength {
		m.Series = append([]domain.Sample(nil), m.Series[len(m.Series)-seriesLength:]...)
	}
	return m
}

// StepStatus draws a new feed status
func (s *Simulator) StepStatus() domain.ConnectionStatus {
	s.mu.Lock()
	r := s.rnd.Float64()
	status := statusWeights[len(statusWeights)-1].status
	cumulative := 0.0
	for _, sw := range statusWeights {
		cumulative += sw.weight
		if r <= cumulative {
			status = sw.status
			break
		}
	}
	prev := s.status
	s.status = status
	s.mu.Unlock()

	if status != prev {
		s.logger.Info("monitoring feed status changed",
			zap.String("from", string(prev)),
			zap.String("to", string(status)))
	}
	s.registry.SetConnectionStatus(status)
	s.eventBus.Publish(service.Event{
		Type:    service.EventConnectionStatus,
		Payload: map[string]domain.ConnectionStatus{"status": status},
	})
	return status
}

// RefreshInterval returns the current metrics cadence
func (s *Simulator) RefreshInterval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.RefreshInterval
}

// SetRefreshInterval changes the metrics cadence, taking effect on a
// running simulator immediately. Non-positive intervals are ignored.
func (s *Simulator) SetRefreshInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if d == s.cfg.RefreshInterval {
		return
	}
	s.cfg.RefreshInterval = d
	if s.refresh != nil {
		s.refresh.Reset(d)
	}
	s.logger.Info("monitor refresh interval changed", zap.Duration("interval", d))
}

// Run drives the simulator from the clock until ctx is done
func (s *Simulator) Run(ctx context.Context) {
	s.mu.Lock()
	refresh := s.clock.NewTicker(s.cfg.RefreshInterval)
	status := s.clock.NewTicker(s.cfg.StatusInterval)
	s.refresh = refresh
	s.mu.Unlock()

	s.registry.UpdateNetwork(s.Snapshot())
	s.logger.Info("monitor started",
		zap.Duration("refresh_interval", s.RefreshInterval()))

	defer func() {
		s.mu.Lock()
		s.refresh = nil
		s.mu.Unlock()
		refresh.Stop()
		status.Stop()
	}()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("monitor stopped")
			return
		case <-refresh.C():
			s.Step()
		case <-status.C():
			s.StepStatus()
		}
	}
}
