package hub

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"netseg/internal/service"
)

func startHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	h := New(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)
	t.Cleanup(cancel)
	return h, cancel
}

func TestEncode(t *testing.T) {
	msg, err := encode(service.Event{Type: service.EventTestsCleared})
	require.NoError(t, err)
	assert.Equal(t, "event: tests_cleared\ndata: {\"type\":\"tests_cleared\"}\n\n", string(msg))
}

func TestServeHTTPStreamsEvents(t *testing.T) {
	h, _ := startHub(t)
	bus := service.NewEventBus()

	fctx, stopForward := context.WithCancel(context.Background())
	defer stopForward()
	h.Forward(fctx, bus)

	srv := httptest.NewServer(h)
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, ": connected\n", line)

	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	bus.Publish(service.Event{Type: service.EventDesignSaved, Payload: map[string]string{"name": "lab"}})

	var got []string
	for len(got) < 2 {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		if strings.TrimSpace(line) == "" {
			continue
		}
		got = append(got, strings.TrimSpace(line))
	}
	assert.Equal(t, "event: design_saved", got[0])
	assert.Contains(t, got[1], `"name":"lab"`)
}

func TestClientDisconnect(t *testing.T) {
	h, _ := startHub(t)
	srv := httptest.NewServer(h)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	require.Eventually(t, func() bool { return h.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
}

func TestShutdownClosesStreams(t *testing.T) {
	h, stop := startHub(t)
	srv := httptest.NewServer(h)
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	stop()

	// the stream ends once the hub stops
	done := make(chan struct{})
	go func() {
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stream still open after shutdown")
	}
	assert.Equal(t, 0, h.ClientCount())
}
