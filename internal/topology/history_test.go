package topology

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netseg/internal/domain"
)

func snap(names ...string) Snapshot {
	out := make(Snapshot, 0, len(names))
	for _, n := range names {
		out = append(out, domain.Node{ID: n, Name: n, Connections: []string{}})
	}
	return out
}

func TestHistoryUndoRedo(t *testing.T) {
	t.Run("undo at initial state is a no-op", func(t *testing.T) {
		h := NewHistory(snap(), 0)
		_, ok := h.Undo()
		assert.False(t, ok)
		assert.Equal(t, 0, h.Cursor())
		assert.Equal(t, 1, h.Len())
	})

	t.Run("undo returns to the initial empty canvas", func(t *testing.T) {
		h := NewHistory(snap(), 0)
		h.Record(snap("a"))

		got, ok := h.Undo()
		require.True(t, ok)
		assert.Equal(t, snap(), got)
		assert.False(t, h.CanUndo())
		assert.True(t, h.CanRedo())
	})

	t.Run("redo after undo restores the recorded snapshot", func(t *testing.T) {
		h := NewHistory(snap(), 0)
		h.Record(snap("a"))
		h.Record(snap("a", "b"))

		_, ok := h.Undo()
		require.True(t, ok)
		got, ok := h.Redo()
		require.True(t, ok)
		assert.Equal(t, snap("a", "b"), got)
	})

	t.Run("redo at newest state is a no-op", func(t *testing.T) {
		h := NewHistory(snap(), 0)
		h.Record(snap("a"))
		_, ok := h.Redo()
		assert.False(t, ok)
		assert.Equal(t, 1, h.Cursor())
	})

	t.Run("record after undo discards redo states", func(t *testing.T) {
		h := NewHistory(snap(), 0)
		h.Record(snap("a"))
		h.Record(snap("a", "b"))
		h.Undo()
		h.Record(snap("a", "c"))

		assert.Equal(t, 3, h.Len())
		assert.False(t, h.CanRedo())
		_, ok := h.Redo()
		assert.False(t, ok)
		assert.Equal(t, snap("a", "c"), h.Current())
	})
}

func TestHistoryIsolation(t *testing.T) {
	t.Run("recorded snapshot is copied", func(t *testing.T) {
		s := snap("a")
		h := NewHistory(snap(), 0)
		h.Record(s)
		s[0].Name = "mutated"

		assert.Equal(t, "a", h.Current()[0].Name)
	})

	t.Run("returned snapshot is copied", func(t *testing.T) {
		h := NewHistory(snap("a"), 0)
		h.Record(snap("a", "b"))
		got, _ := h.Undo()
		got[0].Name = "mutated"

		assert.Equal(t, "a", h.Current()[0].Name)
	})
}

func TestHistoryLimit(t *testing.T) {
	h := NewHistory(snap(), 3)
	h.Record(snap("a"))
	h.Record(snap("a", "b"))
	h.Record(snap("a", "b", "c"))

	assert.Equal(t, 3, h.Len())
	assert.Equal(t, 2, h.Cursor())

	got, ok := h.Undo()
	require.True(t, ok)
	assert.Equal(t, snap("a", "b"), got)
	got, ok = h.Undo()
	require.True(t, ok)
	assert.Equal(t, snap("a"), got)
	_, ok = h.Undo()
	assert.False(t, ok, "oldest retained snapshot is the new index 0")
}
