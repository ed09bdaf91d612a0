package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"netseg/internal/domain"
	"netseg/internal/repository/sqlite"
)

var testStart = time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC)

func newTestRepo(t *testing.T) *sqlite.Repository {
	t.Helper()
	repo, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func subscribe(bus *EventBus) chan Event {
	ch := make(chan Event, 256)
	bus.Subscribe(ch)
	return ch
}

// eventTypes drains everything published so far
func eventTypes(ch chan Event) []EventType {
	var out []EventType
	for {
		select {
		case e := <-ch:
			out = append(out, e.Type)
		default:
			return out
		}
	}
}

func sequentialIDs() func(domain.NodeType) string {
	n := 100
	return func(t domain.NodeType) string {
		n++
		return fmt.Sprintf("%s-%d", t, n)
	}
}

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	return ve.Fields
}
