package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"netseg/internal/clock"
	"netseg/internal/domain"
	"netseg/internal/metrics"
	"netseg/internal/topology"
)

type designerFixture struct {
	svc    *DesignerService
	clock  *clock.Fake
	events chan Event
}

func newDesignerFixture(t *testing.T, cfg DesignerConfig) *designerFixture {
	t.Helper()
	sessionCfg := topology.DefaultSessionConfig()
	sessionCfg.IDGenerator = sequentialIDs()
	session := topology.NewSession(sessionCfg)
	session.Seed()

	bus := NewEventBus()
	fake := clock.NewFake(testStart)
	svc := NewDesignerService(session, newTestRepo(t), NewFormValidator(), bus, fake,
		metrics.NewRegistry(), zap.NewNop(), cfg)
	return &designerFixture{svc: svc, clock: fake, events: subscribe(bus)}
}

func findingIDs(r *topology.Report) []string {
	ids := make([]string, len(r.Findings))
	for i, f := range r.Findings {
		ids[i] = f.ID
	}
	return ids
}

func TestDesignerAddNode(t *testing.T) {
	t.Run("unnamed element gets the palette name and snaps", func(t *testing.T) {
		f := newDesignerFixture(t, DefaultDesignerConfig())

		n, err := f.svc.AddNode(AddNodeRequest{
			Type:     domain.NodeTypeFirewall,
			Position: domain.Position{X: 53, Y: 78},
		})
		require.NoError(t, err)

		assert.Equal(t, "New Firewall", n.Name)
		assert.Equal(t, domain.Position{X: 60, Y: 80}, n.Position)
		assert.Equal(t, domain.Size{Width: 100, Height: 60}, n.Size)
		assert.Empty(t, n.Connections)
		assert.Len(t, f.svc.Nodes(), 5)
		assert.Contains(t, eventTypes(f.events), EventNodeAdded)
	})

	t.Run("unknown type is rejected", func(t *testing.T) {
		f := newDesignerFixture(t, DefaultDesignerConfig())

		_, err := f.svc.AddNode(AddNodeRequest{Type: "mainframe"})
		fields := fieldErrors(t, err)
		assert.Equal(t, "Unknown node type", fields["type"])
		assert.Len(t, f.svc.Nodes(), 4)
		assert.Empty(t, eventTypes(f.events))
	})
}

func TestDesignerUpdateNode(t *testing.T) {
	str := func(s string) *string { return &s }

	t.Run("invalid ip range leaves the node unchanged", func(t *testing.T) {
		f := newDesignerFixture(t, DefaultDesignerConfig())
		before, err := f.svc.Node("vlan-1")
		require.NoError(t, err)

		_, err = f.svc.UpdateNode("vlan-1", domain.NodePatch{IPRange: str("192.168.10.0")})
		fields := fieldErrors(t, err)
		assert.Equal(t, "Invalid IP range format (e.g., 192.168.1.0/24)", fields["ip_range"])

		after, err := f.svc.Node("vlan-1")
		require.NoError(t, err)
		assert.Equal(t, before, after)
		assert.Equal(t, 1, f.svc.Canvas().History.Len)
	})

	t.Run("valid patch is applied", func(t *testing.T) {
		f := newDesignerFixture(t, DefaultDesignerConfig())

		n, err := f.svc.UpdateNode("router-1", domain.NodePatch{Name: str("Edge Router")})
		require.NoError(t, err)
		assert.Equal(t, "Edge Router", n.Name)
		assert.Equal(t, []string{"switch-1"}, n.Connections)
		assert.Contains(t, eventTypes(f.events), EventNodeUpdated)
	})

	t.Run("unknown node", func(t *testing.T) {
		f := newDesignerFixture(t, DefaultDesignerConfig())

		_, err := f.svc.UpdateNode("ghost", domain.NodePatch{Name: str("x")})
		assert.True(t, IsNotFound(err))
	})
}

func TestDesignerConnections(t *testing.T) {
	f := newDesignerFixture(t, DefaultDesignerConfig())

	t.Run("duplicate connect is a no-op", func(t *testing.T) {
		changed, err := f.svc.Connect(ConnectionRequest{A: "vlan-1", B: "switch-1"})
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Empty(t, eventTypes(f.events))
	})

	t.Run("self connection fails", func(t *testing.T) {
		_, err := f.svc.Connect(ConnectionRequest{A: "vlan-1", B: "vlan-1"})
		assert.ErrorIs(t, err, topology.ErrSelfConnection)
	})

	t.Run("connect and undo", func(t *testing.T) {
		changed, err := f.svc.Connect(ConnectionRequest{A: "vlan-1", B: "router-1"})
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Contains(t, eventTypes(f.events), EventConnectionChanged)

		state, ok := f.svc.Undo()
		require.True(t, ok)
		assert.True(t, state.CanRedo)

		n, err := f.svc.Node("router-1")
		require.NoError(t, err)
		assert.Equal(t, []string{"switch-1"}, n.Connections)

		_, ok = f.svc.Undo()
		assert.False(t, ok)
	})

	t.Run("remove node scrubs neighbours", func(t *testing.T) {
		require.NoError(t, f.svc.RemoveNode("switch-1"))
		for _, n := range f.svc.Nodes() {
			assert.NotContains(t, n.Connections, "switch-1")
		}
		assert.True(t, IsNotFound(f.svc.RemoveNode("switch-1")))
	})
}

func TestDesignerValidateAndFix(t *testing.T) {
	f := newDesignerFixture(t, DefaultDesignerConfig())

	report := f.svc.Validate()
	assert.Equal(t, []string{
		"missing_security:vlan-1",
		"missing_security:vlan-2",
		"missing_department:switch-1",
		"missing_department:router-1",
	}, findingIDs(report))
	assert.Contains(t, eventTypes(f.events), EventValidationCompleted)

	fixed, n, err := f.svc.Fix("missing_security:vlan-1")
	require.NoError(t, err)
	assert.True(t, n.FirewallEnabled)
	assert.True(t, n.ACLEnabled)
	assert.Len(t, fixed.Findings, 3)
	assert.Equal(t, fixed, f.svc.Canvas().Report)

	_, _, err = f.svc.Fix("missing_security:vlan-1")
	assert.True(t, IsNotFound(err))

	fixed, n, err = f.svc.Fix("missing_department:router-1")
	require.NoError(t, err)
	assert.Equal(t, domain.DepartmentIT, n.Department)
	assert.Len(t, fixed.Findings, 2)
}

func TestDesignerOptions(t *testing.T) {
	f := newDesignerFixture(t, DefaultDesignerConfig())

	mode := "overlap"
	snap := false
	opts, err := f.svc.SetOptions(OptionsRequest{ConflictMode: &mode, Snap: &snap})
	require.NoError(t, err)
	assert.Equal(t, topology.ConflictOverlap, opts.ConflictMode)
	assert.False(t, opts.Snap)
	assert.Equal(t, 20.0, opts.GridUnit)

	n, err := f.svc.AddNode(AddNodeRequest{Type: domain.NodeTypeHost, Position: domain.Position{X: 53, Y: 78}})
	require.NoError(t, err)
	assert.Equal(t, domain.Position{X: 53, Y: 78}, n.Position)

	bad := "fuzzy"
	_, err = f.svc.SetOptions(OptionsRequest{ConflictMode: &bad})
	assert.True(t, IsValidationError(err))
	assert.Equal(t, topology.ConflictOverlap, f.svc.Options().ConflictMode)
}

func TestDesignerSaveAndLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("save waits for the delay", func(t *testing.T) {
		f := newDesignerFixture(t, DefaultDesignerConfig())

		done := make(chan error, 1)
		go func() {
			_, err := f.svc.Save(ctx, "office")
			done <- err
		}()

		f.clock.BlockUntil(1)
		select {
		case <-done:
			t.Fatal("save finished before the delay elapsed")
		default:
		}
		f.clock.Advance(2 * time.Second)
		require.NoError(t, <-done)

		designs, err := f.svc.ListDesigns(ctx)
		require.NoError(t, err)
		require.Len(t, designs, 1)
		assert.Equal(t, "office", designs[0].Name)
		assert.Equal(t, 4, designs[0].NodeCount)
		assert.Equal(t, 3, designs[0].LinkCount)
		assert.True(t, designs[0].SavedAt.Equal(testStart.Add(2*time.Second)))
	})

	t.Run("load restores the canvas and resets history", func(t *testing.T) {
		f := newDesignerFixture(t, DesignerConfig{})
		_, err := f.svc.Save(ctx, "office")
		require.NoError(t, err)

		require.NoError(t, f.svc.RemoveNode("router-1"))
		require.Len(t, f.svc.Nodes(), 3)

		canvas, err := f.svc.LoadDesign(ctx, "office")
		require.NoError(t, err)
		assert.Len(t, canvas.Nodes, 4)
		assert.Equal(t, topology.HistoryState{Len: 1}, canvas.History)
		assert.Contains(t, eventTypes(f.events), EventCanvasLoaded)
	})

	t.Run("missing design", func(t *testing.T) {
		f := newDesignerFixture(t, DesignerConfig{})
		_, err := f.svc.LoadDesign(ctx, "nope")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, f.svc.DeleteDesign(ctx, "nope"), ErrNotFound)
	})

	t.Run("blank name", func(t *testing.T) {
		f := newDesignerFixture(t, DesignerConfig{})
		_, err := f.svc.Save(ctx, " ")
		assert.Equal(t, "Name is required", fieldErrors(t, err)["name"])
	})

	t.Run("canceled save stores nothing", func(t *testing.T) {
		f := newDesignerFixture(t, DefaultDesignerConfig())
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := f.svc.Save(cctx, "office")
		assert.ErrorIs(t, err, context.Canceled)

		designs, err := f.svc.ListDesigns(ctx)
		require.NoError(t, err)
		assert.Empty(t, designs)
	})
}

func TestDesignerDeploy(t *testing.T) {
	ctx := context.Background()

	t.Run("blocked by an ip conflict", func(t *testing.T) {
		f := newDesignerFixture(t, DefaultDesignerConfig())
		clash := "192.168.10.0/24"
		_, err := f.svc.UpdateNode("vlan-2", domain.NodePatch{IPRange: &clash})
		require.NoError(t, err)

		result, err := f.svc.Deploy(ctx)
		assert.ErrorIs(t, err, ErrDeployBlocked)
		require.NotNil(t, result)
		assert.True(t, result.Report.HasBlocking())
		assert.Equal(t, "ip_conflict:vlan-1,vlan-2", result.Report.Findings[0].ID)
	})

	t.Run("deploys after the delay", func(t *testing.T) {
		f := newDesignerFixture(t, DefaultDesignerConfig())

		type outcome struct {
			result *DeployResult
			err    error
		}
		done := make(chan outcome, 1)
		go func() {
			r, err := f.svc.Deploy(ctx)
			done <- outcome{r, err}
		}()

		f.clock.BlockUntil(2)
		_, err := f.svc.Deploy(ctx)
		assert.ErrorIs(t, err, ErrBusy)

		f.clock.Advance(3 * time.Second)
		got := <-done
		require.NoError(t, got.err)
		assert.Equal(t, testStart.Add(3*time.Second), got.result.DeployedAt)
		assert.Contains(t, eventTypes(f.events), EventDesignDeployed)
	})

	t.Run("times out", func(t *testing.T) {
		f := newDesignerFixture(t, DesignerConfig{DeployDelay: 3 * time.Second, DeployTimeout: time.Second})

		done := make(chan error, 1)
		go func() {
			_, err := f.svc.Deploy(ctx)
			done <- err
		}()

		f.clock.BlockUntil(2)
		f.clock.Advance(time.Second)
		assert.ErrorIs(t, <-done, ErrDeployTimeout)
	})

	t.Run("canceled", func(t *testing.T) {
		f := newDesignerFixture(t, DefaultDesignerConfig())
		cctx, cancel := context.WithCancel(ctx)

		done := make(chan error, 1)
		go func() {
			_, err := f.svc.Deploy(cctx)
			done <- err
		}()

		f.clock.BlockUntil(2)
		cancel()
		assert.ErrorIs(t, <-done, context.Canceled)

		// the busy flag is released
		go func() {
			_, err := f.svc.Deploy(ctx)
			done <- err
		}()
		f.clock.BlockUntil(4)
		f.clock.Advance(3 * time.Second)
		assert.NoError(t, <-done)
	})
}

func TestDesignerExportImport(t *testing.T) {
	f := newDesignerFixture(t, DesignerConfig{})

	var buf bytes.Buffer
	contentType, err := f.svc.Export("yaml", "office", &buf)
	require.NoError(t, err)
	assert.Equal(t, "application/yaml", contentType)
	assert.Contains(t, buf.String(), "name: office")

	_, err = f.svc.AddNode(AddNodeRequest{Type: domain.NodeTypeHost})
	require.NoError(t, err)
	require.Len(t, f.svc.Nodes(), 5)

	canvas, err := f.svc.Import("yaml", &buf)
	require.NoError(t, err)
	assert.Len(t, canvas.Nodes, 4)
	assert.Len(t, canvas.Links, 3)

	_, err = f.svc.Export("xml", "", &bytes.Buffer{})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = f.svc.Import("json", bytes.NewBufferString(`{"name":`))
	assert.True(t, IsValidationError(err))
}
