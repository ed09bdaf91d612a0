package service

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"netseg/internal/clock"
	"netseg/internal/codec"
	"netseg/internal/domain"
	"netseg/internal/metrics"
	"netseg/internal/repository"
)

// Random is the source of the simulated outcomes. *rand.Rand satisfies it.
type Random interface {
	Float64() float64
	Intn(n int) int
}

// TestingConfig holds the simulated test run delays
type TestingConfig struct {
	RunDelay   time.Duration
	BatchDelay time.Duration
}

// DefaultTestingConfig mirrors the delays of the testing dashboard
func DefaultTestingConfig() TestingConfig {
	return TestingConfig{
		RunDelay:   3 * time.Second,
		BatchDelay: 5 * time.Second,
	}
}

// outcome parameters of a single test and of a batch entry
const (
	singleSuccessThreshold = 0.15
	batchSuccessThreshold  = 0.2
)

// DefaultEndpoints are the hosts offered as test sources and destinations
func DefaultEndpoints() []domain.TestEndpoint {
	return []domain.TestEndpoint{
		{ID: "hr-ws-001", IPAddress: "192.168.10.10", Description: "HR Department Workstation"},
		{ID: "hr-ws-002", IPAddress: "192.168.10.11", Description: "HR Department Workstation"},
		{ID: "it-srv-001", IPAddress: "192.168.20.10", Description: "IT Department Server"},
		{ID: "it-ws-001", IPAddress: "192.168.20.20", Description: "IT Department Workstation"},
		{ID: "fin-ws-001", IPAddress: "192.168.30.10", Description: "Finance Department Workstation"},
		{ID: "fin-srv-001", IPAddress: "192.168.30.20", Description: "Finance Department Server"},
		{ID: "dmz-web-001", IPAddress: "10.0.1.10", Description: "DMZ Web Server"},
		{ID: "core-gw-001", IPAddress: "10.0.0.1", Description: "Core Gateway Router"},
	}
}

// BatchRequest runs one test type between every ordered pair of endpoints
type BatchRequest struct {
	Type    domain.TestType    `json:"type" validate:"required,oneof=ping traceroute port-scan bandwidth packet-capture dns-lookup"`
	Options domain.TestOptions `json:"options"`
}

// TestingService runs simulated connectivity tests and keeps their history
type TestingService struct {
	mu      sync.Mutex
	running bool
	rnd     Random

	repo      repository.TestResultRepository
	endpoints []domain.TestEndpoint
	forms     *FormValidator
	eventBus  *EventBus
	clock     clock.Clock
	metrics   *metrics.Registry
	logger    *zap.Logger
	cfg       TestingConfig
}

// NewTestingService creates a new testing service
func NewTestingService(
	repo repository.TestResultRepository,
	rnd Random,
	forms *FormValidator,
	eventBus *EventBus,
	clk clock.Clock,
	reg *metrics.Registry,
	logger *zap.Logger,
	cfg TestingConfig,
) *TestingService {
	return &TestingService{
		rnd:       rnd,
		repo:      repo,
		endpoints: DefaultEndpoints(),
		forms:     forms,
		eventBus:  eventBus,
		clock:     clk,
		metrics:   reg,
		logger:    logger,
		cfg:       cfg,
	}
}

// SetConfig replaces the delays; used on config reload
func (s *TestingService) SetConfig(cfg TestingConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
}

// Endpoints returns the selectable test hosts
func (s *TestingService) Endpoints() []domain.TestEndpoint {
	out := make([]domain.TestEndpoint, len(s.endpoints))
	copy(out, s.endpoints)
	return out
}

// Seed stores a few past results when the history is empty
func (s *TestingService) Seed(ctx context.Context) error {
	existing, err := s.repo.ListTestResults(ctx, 1)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	now := s.clock.Now().UTC()
	seed := func(src, dst string, t domain.TestType, st domain.TestStatus, ms int, ago time.Duration, details string) domain.TestResult {
		return domain.TestResult{
			ID: uuid.NewString(), Source: src, Destination: dst, Type: t, Status: st,
			Duration: ms, Timestamp: now.Add(-ago), Details: details,
			Options: domain.DefaultTestOptions(),
		}
	}
	return s.repo.AddTestResults(ctx,
		seed("hr-ws-002", "fin-srv-001", domain.TestTypeBandwidth, domain.TestStatusSuccess, 3500,
			30*time.Minute, "Throughput: 95.2 Mbps, Latency: 12ms"),
		seed("core-gw-001", "it-ws-001", domain.TestTypePing, domain.TestStatusSuccess, 12,
			20*time.Minute, "4 packets transmitted, 4 received, 0% packet loss"),
		seed("fin-srv-001", "dmz-web-001", domain.TestTypePortScan, domain.TestStatusFailed, 5000,
			15*time.Minute, "Connection timeout - firewall may be blocking traffic"),
		seed("it-srv-001", "fin-ws-001", domain.TestTypeTraceroute, domain.TestStatusWarning, 1250,
			10*time.Minute, "Route found but high latency detected on hop 2"),
		seed("hr-ws-001", "hr-ws-002", domain.TestTypePing, domain.TestStatusSuccess, 234,
			5*time.Minute, "4 packets transmitted, 4 received, 0% packet loss"),
	)
}

// Run executes one simulated test. Only one test or batch runs at a time.
func (s *TestingService) Run(ctx context.Context, req domain.TestRequest) (domain.TestResult, error) {
	if req.Options == (domain.TestOptions{}) {
		req.Options = domain.DefaultTestOptions()
	}
	if err := s.forms.Validate(&req); err != nil {
		return domain.TestResult{}, err
	}

	delay, err := s.begin()
	if err != nil {
		return domain.TestResult{}, err
	}
	defer s.end()

	if err := clock.Sleep(ctx, s.clock, delay); err != nil {
		return domain.TestResult{}, err
	}

	s.mu.Lock()
	result := domain.TestResult{
		ID:          uuid.NewString(),
		Source:      req.Source,
		Destination: req.Destination,
		Type:        req.Type,
		Status:      s.drawStatus(singleSuccessThreshold),
		Duration:    s.rnd.Intn(1500) + 50,
		Timestamp:   s.clock.Now().UTC(),
		Options:     req.Options,
	}
	result.Details = s.details(req.Type, req.Destination)
	s.mu.Unlock()

	if err := s.repo.AddTestResults(ctx, result); err != nil {
		return domain.TestResult{}, fmt.Errorf("failed to store test result: %w", err)
	}

	s.metrics.RecordTest(result)
	s.logger.Info("connectivity test completed",
		zap.String("source", result.Source),
		zap.String("destination", result.Destination),
		zap.String("type", string(result.Type)),
		zap.String("status", string(result.Status)))
	s.eventBus.Publish(Event{
		Type:    EventTestCompleted,
		Payload: []domain.TestResult{result},
	})
	return result, nil
}

// RunBatch tests every ordered pair of distinct endpoints. Results come
// back in pair order and are listed first in the history in that order.
func (s *TestingService) RunBatch(ctx context.Context, req BatchRequest) ([]domain.TestResult, error) {
	if req.Options == (domain.TestOptions{}) {
		req.Options = domain.DefaultTestOptions()
	}
	if err := s.forms.Validate(&req); err != nil {
		return nil, err
	}

	if _, err := s.begin(); err != nil {
		return nil, err
	}
	defer s.end()

	s.mu.Lock()
	delay := s.cfg.BatchDelay
	s.mu.Unlock()
	if err := clock.Sleep(ctx, s.clock, delay); err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	results := make([]domain.TestResult, 0, len(s.endpoints)*(len(s.endpoints)-1))
	s.mu.Lock()
	for _, src := range s.endpoints {
		for _, dst := range s.endpoints {
			if src.ID == dst.ID {
				continue
			}
			results = append(results, domain.TestResult{
				ID:          uuid.NewString(),
				Source:      src.ID,
				Destination: dst.ID,
				Type:        req.Type,
				Status:      s.drawStatus(batchSuccessThreshold),
				Duration:    s.rnd.Intn(2000) + 100,
				Timestamp:   now,
				Details:     fmt.Sprintf("Batch test %d completed", len(results)+1),
				Batch:       true,
				Options:     req.Options,
			})
		}
	}
	s.mu.Unlock()

	// Equal timestamps list by insertion, latest first
	stored := make([]domain.TestResult, len(results))
	for i, r := range results {
		stored[len(results)-1-i] = r
	}
	if err := s.repo.AddTestResults(ctx, stored...); err != nil {
		return nil, fmt.Errorf("failed to store batch results: %w", err)
	}

	for _, r := range results {
		s.metrics.RecordTest(r)
	}
	s.logger.Info("batch test completed", zap.String("type", string(req.Type)), zap.Int("tests", len(results)))
	s.eventBus.Publish(Event{
		Type:    EventTestCompleted,
		Payload: results,
	})
	return results, nil
}

func (s *TestingService) begin() (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return 0, fmt.Errorf("test run: %w", ErrBusy)
	}
	s.running = true
	return s.cfg.RunDelay, nil
}

func (s *TestingService) end() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// drawStatus must be called with s.mu held
func (s *TestingService) drawStatus(threshold float64) domain.TestStatus {
	if s.rnd.Float64() > threshold {
		return domain.TestStatusSuccess
	}
	if s.rnd.Float64() > 0.5 {
		return domain.TestStatusWarning
	}
	return domain.TestStatusFailed
}

// details must be called with s.mu held
func (s *TestingService) details(t domain.TestType, destination string) string {
	switch t {
	case domain.TestTypePing:
		return "4 packets transmitted, 4 received, 0% packet loss"
	case domain.TestTypeTraceroute:
		return fmt.Sprintf("Route to %s found via 3 hops", destination)
	case domain.TestTypePortScan:
		return "Ports 22, 80, 443 open; 3389 filtered"
	case domain.TestTypeBandwidth:
		return fmt.Sprintf("Throughput: %.1f Mbps", s.rnd.Float64()*100+50)
	case domain.TestTypePacketCapture:
		return fmt.Sprintf("Captured %d packets", s.rnd.Intn(500)+100)
	case domain.TestTypeDNSLookup:
		return "DNS resolution successful in 45ms"
	default:
		return "Test completed successfully"
	}
}

// History returns stored results newest first; limit <= 0 returns all
func (s *TestingService) History(ctx context.Context, limit int) ([]domain.TestResult, error) {
	return s.repo.ListTestResults(ctx, limit)
}

// Clear deletes the stored history
func (s *TestingService) Clear(ctx context.Context) error {
	if err := s.repo.ClearTestResults(ctx); err != nil {
		return err
	}
	s.logger.Info("test history cleared")
	s.eventBus.Publish(Event{Type: EventTestsCleared})
	return nil
}

// Export writes the history as a JSON download and returns its filename
func (s *TestingService) Export(ctx context.Context, w io.Writer) (string, error) {
	results, err := s.repo.ListTestResults(ctx, 0)
	if err != nil {
		return "", err
	}
	if err := codec.ExportTestResults(results, w); err != nil {
		return "", err
	}
	return codec.TestResultsFilename(s.clock.Now()), nil
}
