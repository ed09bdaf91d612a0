package service

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"netseg/internal/clock"
	"netseg/internal/domain"
	"netseg/internal/metrics"
)

// scriptedRandom replays fixed draws; once exhausted Float64 returns 0.99
// (success) and Intn returns 0
type scriptedRandom struct {
	floats []float64
	ints   []int
}

func (r *scriptedRandom) Float64() float64 {
	if len(r.floats) == 0 {
		return 0.99
	}
	v := r.floats[0]
	r.floats = r.floats[1:]
	return v
}

func (r *scriptedRandom) Intn(n int) int {
	if len(r.ints) == 0 {
		return 0
	}
	v := r.ints[0]
	r.ints = r.ints[1:]
	return v % n
}

type testingFixture struct {
	svc    *TestingService
	rnd    *scriptedRandom
	clock  *clock.Fake
	events chan Event
}

func newTestingFixture(t *testing.T, cfg TestingConfig) *testingFixture {
	t.Helper()
	bus := NewEventBus()
	fake := clock.NewFake(testStart)
	rnd := &scriptedRandom{}
	svc := NewTestingService(newTestRepo(t), rnd, NewFormValidator(), bus, fake,
		metrics.NewRegistry(), zap.NewNop(), cfg)
	return &testingFixture{svc: svc, rnd: rnd, clock: fake, events: subscribe(bus)}
}

func pingRequest() domain.TestRequest {
	return domain.TestRequest{Source: "hr-ws-001", Destination: "it-srv-001", Type: domain.TestTypePing}
}

func TestTestingRun(t *testing.T) {
	ctx := context.Background()

	t.Run("waits for the run delay", func(t *testing.T) {
		f := newTestingFixture(t, DefaultTestingConfig())
		f.rnd.floats = []float64{0.9}
		f.rnd.ints = []int{195}

		type outcome struct {
			result domain.TestResult
			err    error
		}
		done := make(chan outcome, 1)
		go func() {
			r, err := f.svc.Run(ctx, pingRequest())
			done <- outcome{r, err}
		}()

		f.clock.BlockUntil(1)
		_, err := f.svc.Run(ctx, pingRequest())
		assert.ErrorIs(t, err, ErrBusy)

		f.clock.Advance(3 * time.Second)
		got := <-done
		require.NoError(t, got.err)

		r := got.result
		assert.Equal(t, domain.TestStatusSuccess, r.Status)
		assert.Equal(t, 245, r.Duration)
		assert.Equal(t, "4 packets transmitted, 4 received, 0% packet loss", r.Details)
		assert.True(t, testStart.Add(3*time.Second).Equal(r.Timestamp))
		assert.Equal(t, domain.DefaultTestOptions(), r.Options)
		assert.Contains(t, eventTypes(f.events), EventTestCompleted)

		history, err := f.svc.History(ctx, 0)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, r.ID, history[0].ID)
	})

	statuses := []struct {
		name   string
		floats []float64
		want   domain.TestStatus
	}{
		{"above threshold succeeds", []float64{0.16}, domain.TestStatusSuccess},
		{"warning", []float64{0.15, 0.51}, domain.TestStatusWarning},
		{"failed", []float64{0.05, 0.5}, domain.TestStatusFailed},
	}
	for _, tt := range statuses {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestingFixture(t, TestingConfig{})
			f.rnd.floats = tt.floats

			r, err := f.svc.Run(ctx, pingRequest())
			require.NoError(t, err)
			assert.Equal(t, tt.want, r.Status)
			assert.Equal(t, 50, r.Duration)
		})
	}

	details := []struct {
		testType domain.TestType
		floats   []float64
		ints     []int
		want     string
	}{
		{domain.TestTypeTraceroute, nil, nil, "Route to it-srv-001 found via 3 hops"},
		{domain.TestTypePortScan, nil, nil, "Ports 22, 80, 443 open; 3389 filtered"},
		{domain.TestTypeBandwidth, []float64{0.9, 0.25}, nil, "Throughput: 75.0 Mbps"},
		{domain.TestTypePacketCapture, nil, []int{0, 42}, "Captured 142 packets"},
		{domain.TestTypeDNSLookup, nil, nil, "DNS resolution successful in 45ms"},
	}
	for _, tt := range details {
		t.Run(string(tt.testType)+" details", func(t *testing.T) {
			f := newTestingFixture(t, TestingConfig{})
			f.rnd.floats = tt.floats
			f.rnd.ints = tt.ints

			req := pingRequest()
			req.Type = tt.testType
			r, err := f.svc.Run(ctx, req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, r.Details)
		})
	}

	t.Run("invalid request stores nothing", func(t *testing.T) {
		f := newTestingFixture(t, TestingConfig{})

		req := pingRequest()
		req.Destination = req.Source
		_, err := f.svc.Run(ctx, req)
		assert.True(t, IsValidationError(err))

		history, err := f.svc.History(ctx, 0)
		require.NoError(t, err)
		assert.Empty(t, history)
	})

	t.Run("canceled run", func(t *testing.T) {
		f := newTestingFixture(t, DefaultTestingConfig())
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := f.svc.Run(cctx, pingRequest())
		assert.ErrorIs(t, err, context.Canceled)

		// not left busy
		f.svc.SetConfig(TestingConfig{})
		_, err = f.svc.Run(ctx, pingRequest())
		assert.NoError(t, err)
	})
}

func TestTestingRunBatch(t *testing.T) {
	ctx := context.Background()
	f := newTestingFixture(t, TestingConfig{})

	results, err := f.svc.RunBatch(ctx, BatchRequest{Type: domain.TestTypePing})
	require.NoError(t, err)
	require.Len(t, results, 56)

	first := results[0]
	assert.Equal(t, "hr-ws-001", first.Source)
	assert.Equal(t, "hr-ws-002", first.Destination)
	assert.Equal(t, "Batch test 1 completed", first.Details)
	assert.Equal(t, 100, first.Duration)
	assert.True(t, first.Batch)
	assert.Equal(t, "Batch test 56 completed", results[55].Details)

	for _, r := range results {
		assert.NotEqual(t, r.Source, r.Destination)
		assert.Equal(t, domain.TestStatusSuccess, r.Status)
	}

	history, err := f.svc.History(ctx, 3)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, results[0].ID, history[0].ID)
	assert.Equal(t, results[1].ID, history[1].ID)

	_, err = f.svc.RunBatch(ctx, BatchRequest{Type: "smoke"})
	assert.True(t, IsValidationError(err))
}

func TestTestingHistory(t *testing.T) {
	ctx := context.Background()
	f := newTestingFixture(t, TestingConfig{})

	require.NoError(t, f.svc.Seed(ctx))
	require.NoError(t, f.svc.Seed(ctx))

	history, err := f.svc.History(ctx, 0)
	require.NoError(t, err)
	require.Len(t, history, 5)
	assert.Equal(t, "hr-ws-001", history[0].Source)
	assert.Equal(t, domain.TestTypeBandwidth, history[4].Type)

	t.Run("export", func(t *testing.T) {
		var buf bytes.Buffer
		name, err := f.svc.Export(ctx, &buf)
		require.NoError(t, err)
		assert.Equal(t, "network-test-results-2024-06-10.json", name)

		var entries []map[string]interface{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entries))
		require.Len(t, entries, 5)
		assert.Equal(t, "hr-ws-002", entries[0]["destination"])
		assert.Equal(t, "2024-06-10T07:55:00.000Z", entries[0]["timestamp"])
	})

	t.Run("clear", func(t *testing.T) {
		require.NoError(t, f.svc.Clear(ctx))
		history, err := f.svc.History(ctx, 0)
		require.NoError(t, err)
		assert.Empty(t, history)
		assert.Contains(t, eventTypes(f.events), EventTestsCleared)

		var buf bytes.Buffer
		_, err = f.svc.Export(ctx, &buf)
		require.NoError(t, err)
		assert.JSONEq(t, "[]", buf.String())
	})
}
