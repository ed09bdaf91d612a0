package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"netseg/internal/clock"
	"netseg/internal/domain"
	"netseg/internal/prefs"
)

type departmentFixture struct {
	svc    *DepartmentService
	prefs  *prefs.Preferences
	clock  *clock.Fake
	events chan Event
}

func newDepartmentFixture(t *testing.T, saveDelay time.Duration) *departmentFixture {
	t.Helper()
	bus := NewEventBus()
	fake := clock.NewFake(testStart)
	p := prefs.New(prefs.NewMemoryStore())
	svc := NewDepartmentService(newTestRepo(t), p, NewFormValidator(), bus, fake, zap.NewNop(), saveDelay)
	require.NoError(t, svc.Seed(context.Background()))
	return &departmentFixture{svc: svc, prefs: p, clock: fake, events: subscribe(bus)}
}

func TestDepartmentSeed(t *testing.T) {
	ctx := context.Background()
	f := newDepartmentFixture(t, 0)

	require.NoError(t, f.svc.Seed(ctx))
	zones, err := f.svc.List(ctx)
	require.NoError(t, err)

	ids := make([]string, len(zones))
	for i, z := range zones {
		ids[i] = z.ID
	}
	assert.Equal(t, []string{"hr", "it", "finance", "guest"}, ids)

	hr := zones[0]
	assert.Equal(t, 10, hr.VLANID)
	assert.Equal(t, "192.168.10.0/24", hr.Subnet)
	assert.Equal(t, "192.168.10.1", hr.Gateway)
	assert.Equal(t, []string{"8.8.8.8", "8.8.4.4"}, hr.DNSServers)
	assert.Equal(t, domain.ZoneStatusWarning, zones[2].Status)
	assert.True(t, hr.LastModified.Equal(testStart.Add(-2*time.Hour)))
}

func TestDepartmentUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid config leaves the zone untouched", func(t *testing.T) {
		f := newDepartmentFixture(t, 0)
		before, err := f.svc.Get(ctx, "hr")
		require.NoError(t, err)

		cfg := before.Config()
		cfg.Subnet = "192.168.10.0"
		cfg.Gateway = ""
		_, err = f.svc.Update(ctx, "hr", cfg)
		fields := fieldErrors(t, err)
		assert.Equal(t, "Invalid IP range format (e.g., 192.168.1.0/24)", fields["subnet"])
		assert.Equal(t, "Gateway is required", fields["gateway"])

		after, err := f.svc.Get(ctx, "hr")
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("valid config is saved after the delay", func(t *testing.T) {
		f := newDepartmentFixture(t, 1500*time.Millisecond)
		zone, err := f.svc.Get(ctx, "guest")
		require.NoError(t, err)

		cfg := zone.Config()
		cfg.VLANID = 99
		cfg.InternetAccess = false
		cfg.SharedResources = []string{}

		done := make(chan error, 1)
		go func() {
			_, err := f.svc.Update(ctx, "guest", cfg)
			done <- err
		}()
		f.clock.BlockUntil(1)
		f.clock.Advance(1500 * time.Millisecond)
		require.NoError(t, <-done)

		updated, err := f.svc.Get(ctx, "guest")
		require.NoError(t, err)
		assert.Equal(t, 99, updated.VLANID)
		assert.False(t, updated.InternetAccess)
		assert.Empty(t, updated.SharedResources)
		assert.Equal(t, "Guest Network", updated.Name)
		assert.True(t, updated.LastModified.Equal(testStart.Add(1500*time.Millisecond)))
		assert.Contains(t, eventTypes(f.events), EventDepartmentUpdated)
	})

	t.Run("unknown zone", func(t *testing.T) {
		f := newDepartmentFixture(t, 0)
		cfg := domain.ZoneConfig{VLANID: 50, Subnet: "192.168.50.0/24", Gateway: "192.168.50.1"}
		_, err := f.svc.Update(ctx, "sales", cfg)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestDepartmentSelection(t *testing.T) {
	ctx := context.Background()
	f := newDepartmentFixture(t, 0)

	t.Run("nothing selected", func(t *testing.T) {
		zone, err := f.svc.Selected(ctx)
		require.NoError(t, err)
		assert.Nil(t, zone)
	})

	t.Run("selection is remembered", func(t *testing.T) {
		_, err := f.svc.Select(ctx, "finance")
		require.NoError(t, err)

		zone, err := f.svc.Selected(ctx)
		require.NoError(t, err)
		require.NotNil(t, zone)
		assert.Equal(t, "finance", zone.ID)

		id, err := f.prefs.SelectedDepartment(ctx)
		require.NoError(t, err)
		assert.Equal(t, "finance", id)
		assert.Contains(t, eventTypes(f.events), EventDepartmentSelected)
	})

	t.Run("unknown zone keeps the previous selection", func(t *testing.T) {
		_, err := f.svc.Select(ctx, "sales")
		assert.ErrorIs(t, err, ErrNotFound)

		id, err := f.prefs.SelectedDepartment(ctx)
		require.NoError(t, err)
		assert.Equal(t, "finance", id)
	})

	t.Run("stale stored id reads as no selection", func(t *testing.T) {
		require.NoError(t, f.prefs.SetSelectedDepartment(ctx, "retired"))
		zone, err := f.svc.Selected(ctx)
		require.NoError(t, err)
		assert.Nil(t, zone)
	})
}
