package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"netseg/internal/clock"
	"netseg/internal/domain"
	"netseg/internal/prefs"
	"netseg/internal/repository"
)

// SeedDepartments returns the four starter zones, modified relative to now
func SeedDepartments(now time.Time) []domain.DepartmentZone {
	zone := func(id, name, desc string, status domain.ZoneStatus, vlan, hosts, priority int,
		dns string, access, shared []string, age time.Duration) domain.DepartmentZone {
		net := fmt.Sprintf("192.168.%d", vlan)
		return domain.DepartmentZone{
			ID:                id,
			Name:              name,
			Description:       desc,
			Status:            status,
			VLANID:            vlan,
			Subnet:            net + ".0/24",
			Gateway:           net + ".1",
			SubnetMask:        "255.255.255.0",
			DNSServers:        []string{"8.8.8.8", dns},
			HostCount:         hosts,
			BandwidthPriority: priority,
			AccessPermissions: access,
			SharedResources:   shared,
			FirewallRules:     []string{},
			DHCPEnabled:       true,
			InternetAccess:    true,
			LastModified:      now.Add(-age),
		}
	}

	return []domain.DepartmentZone{
		zone("hr", "HR Department", "Human Resources", domain.ZoneStatusActive, 10, 24, 60,
			"8.8.4.4", []string{"it", "management"}, []string{"printer", "fileserver"}, 2*time.Hour),
		zone("it", "IT Department", "Information Technology", domain.ZoneStatusActive, 20, 18, 90,
			"1.1.1.1", []string{"hr", "finance", "management"},
			[]string{"printer", "fileserver", "database", "monitoring"}, 30*time.Minute),
		zone("finance", "Finance Department", "Financial Services", domain.ZoneStatusWarning, 30, 12, 80,
			"8.8.4.4", []string{"it"}, []string{"printer", "database", "backup"}, 24*time.Hour),
		zone("guest", "Guest Network", "Visitor Access", domain.ZoneStatusActive, 40, 8, 30,
			"8.8.4.4", []string{}, []string{"printer"}, 4*time.Hour),
	}
}

// DepartmentService manages department zone configuration and the
// remembered zone selection
type DepartmentService struct {
	mu sync.Mutex

	repo      repository.DepartmentRepository
	prefs     *prefs.Preferences
	forms     *FormValidator
	eventBus  *EventBus
	clock     clock.Clock
	logger    *zap.Logger
	saveDelay time.Duration
}

// NewDepartmentService creates a new department service
func NewDepartmentService(
	repo repository.DepartmentRepository,
	preferences *prefs.Preferences,
	forms *FormValidator,
	eventBus *EventBus,
	clk clock.Clock,
	logger *zap.Logger,
	saveDelay time.Duration,
) *DepartmentService {
	return &DepartmentService{
		repo:      repo,
		prefs:     preferences,
		forms:     forms,
		eventBus:  eventBus,
		clock:     clk,
		logger:    logger,
		saveDelay: saveDelay,
	}
}

// SetSaveDelay replaces the simulated save delay; used on config reload
func (s *DepartmentService) SetSaveDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveDelay = d
}

// Seed stores the starter zones when no zone exists yet
func (s *DepartmentService) Seed(ctx context.Context) error {
	existing, err := s.repo.ListDepartments(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	for _, z := range SeedDepartments(s.clock.Now().UTC()) {
		z := z
		if err := s.repo.UpsertDepartment(ctx, &z); err != nil {
			return fmt.Errorf("failed to seed department %s: %w", z.ID, err)
		}
	}
	s.logger.Info("seeded department zones")
	return nil
}

// List returns all zones ordered by VLAN
func (s *DepartmentService) List(ctx context.Context) ([]domain.DepartmentZone, error) {
	return s.repo.ListDepartments(ctx)
}

// Get returns one zone
func (s *DepartmentService) Get(ctx context.Context, id string) (*domain.DepartmentZone, error) {
	zone, err := s.repo.GetDepartment(ctx, id)
	if err != nil {
		return nil, err
	}
	if zone == nil {
		return nil, fmt.Errorf("department %s: %w", id, ErrNotFound)
	}
	return zone, nil
}

// Update validates cfg and applies it to the zone after the simulated save
// delay. An invalid config leaves the zone untouched.
func (s *DepartmentService) Update(ctx context.Context, id string, cfg domain.ZoneConfig) (*domain.DepartmentZone, error) {
	if err := s.forms.Validate(&cfg); err != nil {
		return nil, err
	}
	zone, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	delay := s.saveDelay
	s.mu.Unlock()
	if err := clock.Sleep(ctx, s.clock, delay); err != nil {
		return nil, err
	}

	zone.Apply(cfg, s.clock.Now().UTC())
	if err := s.repo.UpsertDepartment(ctx, zone); err != nil {
		return nil, fmt.Errorf("failed to update department: %w", err)
	}

	s.logger.Info("department updated", zap.String("department_id", id), zap.Int("vlan_id", zone.VLANID))
	s.eventBus.Publish(Event{
		Type:    EventDepartmentUpdated,
		Payload: zone,
	})
	return zone, nil
}

// Select remembers id as the selected zone
func (s *DepartmentService) Select(ctx context.Context, id string) (*domain.DepartmentZone, error) {
	zone, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.prefs.SetSelectedDepartment(ctx, id); err != nil {
		return nil, err
	}

	s.eventBus.Publish(Event{
		Type:    EventDepartmentSelected,
		Payload: map[string]string{"department_id": id},
	})
	return zone, nil
}

// Selected returns the remembered zone. It returns nil when nothing is
// selected or the remembered id no longer names a zone.
func (s *DepartmentService) Selected(ctx context.Context) (*domain.DepartmentZone, error) {
	id, err := s.prefs.SelectedDepartment(ctx)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, nil
	}
	return s.repo.GetDepartment(ctx, id)
}
