package service

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
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

// HostConfig holds the simulated lifecycle delays
type HostConfig struct {
	CreateDelay  time.Duration
	StartDelay   time.Duration
	RestartDelay time.Duration
}

// DefaultHostConfig mirrors the delays of the host management view
func DefaultHostConfig() HostConfig {
	return HostConfig{
		CreateDelay:  3 * time.Second,
		StartDelay:   2 * time.Second,
		RestartDelay: 3 * time.Second,
	}
}

// departmentSubnets are the host networks offered by the create form
var departmentSubnets = map[domain.Department]string{
	domain.DepartmentIT:        "192.168.1.0/24",
	domain.DepartmentHR:        "192.168.2.0/24",
	domain.DepartmentFinance:   "192.168.3.0/24",
	domain.DepartmentMarketing: "192.168.4.0/24",
}

func hostSubnet(dept domain.Department, ip string) string {
	if subnet, ok := departmentSubnets[dept]; ok {
		return subnet
	}
	return domain.SubnetOf(ip)
}

// HostSortKey is a column hosts can be ordered by
type HostSortKey string

const (
	SortByHostname     HostSortKey = "hostname"
	SortByDepartment   HostSortKey = "department"
	SortByIPAddress    HostSortKey = "ip_address"
	SortByStatus       HostSortKey = "status"
	SortByCreatedAt    HostSortKey = "created_at"
	SortByLastActivity HostSortKey = "last_activity"
)

// HostFilter narrows and orders a host listing. Empty fields match everything.
type HostFilter struct {
	Search     string
	Department domain.Department
	Status     domain.HostStatus
	Subnet     string
	SortBy     HostSortKey
	Desc       bool
}

// Matches reports whether h passes the filter. Search is case-insensitive
// over hostname, namespace and description, and a substring match on the IP.
func (f HostFilter) Matches(h domain.VirtualHost) bool {
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(h.Hostname), q) &&
			!strings.Contains(h.IPAddress, f.Search) &&
			!strings.Contains(strings.ToLower(h.Namespace), q) &&
			!strings.Contains(strings.ToLower(h.Description), q) {
			return false
		}
	}
	if f.Department != "" && h.Department != f.Department {
		return false
	}
	if f.Status != "" && h.Status != f.Status {
		return false
	}
	if f.Subnet != "" && h.Subnet != f.Subnet {
		return false
	}
	return true
}

func (f HostFilter) less(a, b domain.VirtualHost) bool {
	switch f.SortBy {
	case SortByDepartment:
		return strings.ToLower(string(a.Department)) < strings.ToLower(string(b.Department))
	case SortByIPAddress:
		return a.IPAddress < b.IPAddress
	case SortByStatus:
		return a.Status < b.Status
	case SortByCreatedAt:
		return a.CreatedAt.Before(b.CreatedAt)
	case SortByLastActivity:
		return a.LastActivity.Before(b.LastActivity)
	default:
		return strings.ToLower(a.Hostname) < strings.ToLower(b.Hostname)
	}
}

// HostStats counts hosts by status
type HostStats struct {
	Total    int `json:"total"`
	Running  int `json:"running"`
	Stopped  int `json:"stopped"`
	Starting int `json:"starting"`
	Error    int `json:"error"`
}

// SeedHosts returns the starter virtual hosts, aged relative to now
func SeedHosts(now time.Time) []domain.VirtualHost {
	day := 24 * time.Hour
	host := func(hostname string, dept domain.Department, ip, ns string, status domain.HostStatus,
		usage, alloc domain.Resources, idle, age, uptime time.Duration, desc string) domain.VirtualHost {
		h := domain.VirtualHost{
			ID:           uuid.NewSHA1(uuid.NameSpaceOID, []byte(hostname)).String(),
			Hostname:     hostname,
			Department:   dept,
			IPAddress:    ip,
			Subnet:       domain.SubnetOf(ip),
			Namespace:    ns,
			Status:       status,
			Usage:        usage,
			Allocation:   alloc,
			Description:  desc,
			CreatedAt:    now.Add(-age),
			LastActivity: now.Add(-idle),
		}
		if uptime > 0 {
			start := now.Add(-uptime)
			h.StartTime = &start
		}
		return h
	}
	r := func(cpu, mem, disk int) domain.Resources { return domain.Resources{CPU: cpu, Memory: mem, Disk: disk} }

	return []domain.VirtualHost{
		host("web-server-01", domain.DepartmentIT, "192.168.1.100", "ns-web-01", domain.HostStatusRunning,
			r(45, 62, 35), r(4, 8, 100), 5*time.Minute, 7*day, 2*day, "Primary web server for IT applications"),
		host("hr-portal-01", domain.DepartmentHR, "192.168.2.50", "ns-hr-01", domain.HostStatusRunning,
			r(23, 41, 28), r(2, 4, 50), 10*time.Minute, 14*day, 5*day, "HR portal and employee management system"),
		host("finance-db-01", domain.DepartmentFinance, "192.168.3.25", "ns-fin-db-01", domain.HostStatusStopped,
			r(0, 0, 45), r(8, 16, 200), 30*time.Minute, 21*day, 0, "Financial database server with encrypted storage"),
		host("marketing-cms-01", domain.DepartmentMarketing, "192.168.4.75", "ns-mkt-cms-01", domain.HostStatusStarting,
			r(15, 25, 18), r(2, 4, 50), 2*time.Minute, 3*day, 0, "Content management system for marketing campaigns"),
		host("it-backup-01", domain.DepartmentIT, "192.168.1.200", "ns-backup-01", domain.HostStatusRunning,
			r(12, 35, 78), r(4, 8, 500), 15*time.Minute, 30*day, day, "Automated backup and disaster recovery system"),
		host("hr-analytics-01", domain.DepartmentHR, "192.168.2.100", "ns-hr-analytics-01", domain.HostStatusError,
			r(0, 0, 22), r(2, 4, 100), time.Hour, 10*day, 0, "HR analytics and reporting platform"),
		host("finance-api-01", domain.DepartmentFinance, "192.168.3.150", "ns-fin-api-01", domain.HostStatusRunning,
			r(38, 55, 42), r(4, 8, 100), 3*time.Minute, 5*day, 4*day, "Financial services API gateway"),
		host("marketing-analytics-01", domain.DepartmentMarketing, "192.168.4.125", "ns-mkt-analytics-01", domain.HostStatusRunning,
			r(28, 48, 33), r(2, 4, 100), 450*time.Second, 8*day, 6*day, "Marketing campaign analytics and tracking"),
		host("it-monitoring-01", domain.DepartmentIT, "192.168.1.250", "ns-monitoring-01", domain.HostStatusRunning,
			r(52, 68, 55), r(4, 8, 200), time.Minute, 15*day, 12*day, "Network monitoring and alerting system"),
		host("finance-reporting-01", domain.DepartmentFinance, "192.168.3.175", "ns-fin-report-01", domain.HostStatusStopped,
			r(0, 0, 38), r(2, 4, 100), 2*time.Hour, 12*day, 0, "Financial reporting and compliance system"),
		host("hr-training-01", domain.DepartmentHR, "192.168.2.175", "ns-hr-training-01", domain.HostStatusRunning,
			r(18, 32, 25), r(2, 4, 50), 12*time.Minute, 6*day, 3*day, "Employee training and development platform"),
		host("marketing-email-01", domain.DepartmentMarketing, "192.168.4.200", "ns-mkt-email-01", domain.HostStatusRunning,
			r(35, 45, 40), r(4, 8, 100), 4*time.Minute, 9*day, 7*day, "Email marketing automation platform"),
	}
}

// HostService manages the simulated virtual hosts. Hosts that are starting
// switch to running once their start delay has elapsed on the clock.
type HostService struct {
	mu  sync.Mutex
	gen map[string]uint64

	repo     repository.HostRepository
	forms    *FormValidator
	eventBus *EventBus
	clock    clock.Clock
	metrics  *metrics.Registry
	logger   *zap.Logger
	cfg      HostConfig

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewHostService creates a new host service
func NewHostService(
	repo repository.HostRepository,
	forms *FormValidator,
	eventBus *EventBus,
	clk clock.Clock,
	reg *metrics.Registry,
	logger *zap.Logger,
	cfg HostConfig,
) *HostService {
	return &HostService{
		gen:      make(map[string]uint64),
		repo:     repo,
		forms:    forms,
		eventBus: eventBus,
		clock:    clk,
		metrics:  reg,
		logger:   logger,
		cfg:      cfg,
		done:     make(chan struct{}),
	}
}

// SetConfig replaces the delays; transitions already scheduled keep theirs
func (s *HostService) SetConfig(cfg HostConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
}

func (s *HostService) config() HostConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// Close cancels pending status transitions and waits for them to exit
func (s *HostService) Close() {
	s.closeOnce.Do(func() { close(s.done) })
	s.wg.Wait()
}

// Seed stores the starter hosts when none exist yet
func (s *HostService) Seed(ctx context.Context) error {
	existing, err := s.repo.ListHosts(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	hosts := SeedHosts(s.clock.Now().UTC())
	for i := range hosts {
		if err := s.repo.UpsertHost(ctx, &hosts[i]); err != nil {
			return fmt.Errorf("failed to seed host %s: %w", hosts[i].Hostname, err)
		}
	}
	s.metrics.SetHostCounts(hosts)
	s.logger.Info("seeded virtual hosts", zap.Int("count", len(hosts)))
	return nil
}

// List returns the hosts passing filter in the requested order
func (s *HostService) List(ctx context.Context, filter HostFilter) ([]domain.VirtualHost, error) {
	hosts, err := s.repo.ListHosts(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.VirtualHost, 0, len(hosts))
	for _, h := range hosts {
		if filter.Matches(h) {
			out = append(out, h)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if filter.Desc {
			return filter.less(out[j], out[i])
		}
		return filter.less(out[i], out[j])
	})
	return out, nil
}

// Stats counts all hosts by status
func (s *HostService) Stats(ctx context.Context) (HostStats, error) {
	hosts, err := s.repo.ListHosts(ctx)
	if err != nil {
		return HostStats{}, err
	}

	stats := HostStats{Total: len(hosts)}
	for _, h := range hosts {
		switch h.Status {
		case domain.HostStatusRunning:
			stats.Running++
		case domain.HostStatusStopped:
			stats.Stopped++
		case domain.HostStatusStarting:
			stats.Starting++
		case domain.HostStatusError:
			stats.Error++
		}
	}
	return stats, nil
}

// Get returns one host
func (s *HostService) Get(ctx context.Context, id string) (*domain.VirtualHost, error) {
	host, err := s.repo.GetHost(ctx, id)
	if err != nil {
		return nil, err
	}
	if host == nil {
		return nil, fmt.Errorf("host %s: %w", id, ErrNotFound)
	}
	return host, nil
}

// Create provisions a host from the form. It starts in the starting state.
func (s *HostService) Create(ctx context.Context, spec domain.HostSpec) (*domain.VirtualHost, error) {
	spec.ApplyDefaults()
	if err := s.forms.Validate(&spec); err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	host := &domain.VirtualHost{
		ID:           uuid.NewString(),
		Hostname:     strings.TrimSpace(spec.Hostname),
		Department:   spec.Department,
		IPAddress:    strings.TrimSpace(spec.IPAddress),
		Subnet:       hostSubnet(spec.Department, spec.IPAddress),
		Namespace:    strings.TrimSpace(spec.Namespace),
		Status:       domain.HostStatusStarting,
		Allocation:   domain.Resources{CPU: spec.CPUCores, Memory: spec.MemoryGB, Disk: spec.DiskGB},
		Description:  spec.Description,
		CreatedAt:    now,
		LastActivity: now,
	}

	s.mu.Lock()
	err := s.repo.UpsertHost(ctx, host)
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to create host: %w", err)
	}

	s.logger.Info("virtual host created",
		zap.String("host_id", host.ID),
		zap.String("hostname", host.Hostname),
		zap.String("department", string(host.Department)))
	s.eventBus.Publish(Event{
		Type:    EventHostCreated,
		Payload: host,
	})
	s.refreshMetrics(ctx)
	s.schedule(host.ID, s.config().CreateDelay)
	return host, nil
}

// Update replaces the editable fields of a host; its status is kept
func (s *HostService) Update(ctx context.Context, id string, spec domain.HostSpec) (*domain.VirtualHost, error) {
	spec.ApplyDefaults()
	if err := s.forms.Validate(&spec); err != nil {
		return nil, err
	}

	s.mu.Lock()
	host, err := s.Get(ctx, id)
	if err == nil {
		host.Hostname = strings.TrimSpace(spec.Hostname)
		host.Department = spec.Department
		host.IPAddress = strings.TrimSpace(spec.IPAddress)
		host.Subnet = hostSubnet(spec.Department, spec.IPAddress)
		host.Namespace = strings.TrimSpace(spec.Namespace)
		host.Allocation = domain.Resources{CPU: spec.CPUCores, Memory: spec.MemoryGB, Disk: spec.DiskGB}
		host.Description = spec.Description
		host.LastActivity = s.clock.Now().UTC()
		err = s.repo.UpsertHost(ctx, host)
	}
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	s.eventBus.Publish(Event{
		Type:    EventHostUpdated,
		Payload: host,
	})
	return host, nil
}

// Delete removes a host and cancels any pending transition for it
func (s *HostService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	_, err := s.Get(ctx, id)
	if err == nil {
		err = s.repo.DeleteHost(ctx, id)
		delete(s.gen, id)
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.logger.Info("virtual host deleted", zap.String("host_id", id))
	s.eventBus.Publish(Event{
		Type:    EventHostDeleted,
		Payload: map[string]string{"host_id": id},
	})
	s.refreshMetrics(ctx)
	return nil
}

// Action applies start, stop, restart or delete to one host
func (s *HostService) Action(ctx context.Context, id string, action domain.HostAction) (*domain.VirtualHost, error) {
	if !action.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAction, action)
	}
	if action == domain.HostActionDelete {
		return nil, s.Delete(ctx, id)
	}

	now := s.clock.Now().UTC()
	s.mu.Lock()
	host, err := s.Get(ctx, id)
	if err == nil {
		host.LastActivity = now
		switch action {
		case domain.HostActionStop:
			host.Status = domain.HostStatusStopped
			host.StartTime = nil
			s.gen[id]++
		case domain.HostActionStart, domain.HostActionRestart:
			host.Status = domain.HostStatusStarting
		}
		err = s.repo.UpsertHost(ctx, host)
	}
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	s.logger.Debug("host action applied", zap.String("host_id", id), zap.String("action", string(action)))
	s.eventBus.Publish(Event{
		Type:    EventHostUpdated,
		Payload: host,
	})
	s.refreshMetrics(ctx)

	switch action {
	case domain.HostActionStart:
		s.schedule(id, s.config().StartDelay)
	case domain.HostActionRestart:
		s.schedule(id, s.config().RestartDelay)
	}
	return host, nil
}

// Bulk applies action to every listed host. Unknown ids are skipped; the
// hosts that were changed are returned (empty for delete).
func (s *HostService) Bulk(ctx context.Context, action domain.HostAction, ids []string) ([]domain.VirtualHost, error) {
	if !action.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAction, action)
	}

	changed := make([]domain.VirtualHost, 0, len(ids))
	for _, id := range ids {
		host, err := s.Action(ctx, id, action)
		if IsNotFound(err) {
			continue
		}
		if err != nil {
			return changed, err
		}
		if host != nil {
			changed = append(changed, *host)
		}
	}
	return changed, nil
}

// Inventory writes all hosts as an Ansible inventory grouped by department
func (s *HostService) Inventory(ctx context.Context, w io.Writer) error {
	hosts, err := s.List(ctx, HostFilter{SortBy: SortByHostname})
	if err != nil {
		return err
	}
	return codec.NewAnsibleCodec().ExportHosts(hosts, w)
}

// schedule marks the host running after d unless another action
// supersedes the pending transition first
func (s *HostService) schedule(id string, d time.Duration) {
	s.mu.Lock()
	s.gen[id]++
	gen := s.gen[id]
	s.mu.Unlock()

	timer := s.clock.After(d)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		select {
		case <-timer:
		case <-s.done:
			return
		}
		s.finishStart(id, gen)
	}()
}

func (s *HostService) finishStart(id string, gen uint64) {
	ctx := context.Background()

	s.mu.Lock()
	if s.gen[id] != gen {
		s.mu.Unlock()
		return
	}
	host, err := s.repo.GetHost(ctx, id)
	if err != nil || host == nil || host.Status != domain.HostStatusStarting {
		s.mu.Unlock()
		return
	}
	now := s.clock.Now().UTC()
	host.Status = domain.HostStatusRunning
	host.StartTime = &now
	host.LastActivity = now
	err = s.repo.UpsertHost(ctx, host)
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn("failed to mark host running", zap.String("host_id", id), zap.Error(err))
		return
	}
	s.eventBus.Publish(Event{
		Type:    EventHostUpdated,
		Payload: host,
	})
	s.refreshMetrics(ctx)
}

func (s *HostService) refreshMetrics(ctx context.Context) {
	if s.metrics == nil {
		return
	}
	hosts, err := s.repo.ListHosts(ctx)
	if err != nil {
		s.logger.Warn("failed to list hosts for metrics", zap.Error(err))
		return
	}
	s.metrics.SetHostCounts(hosts)
}
