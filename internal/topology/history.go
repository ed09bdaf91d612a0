package topology

// History is a linear undo/redo list of canvas snapshots.
// Index 0 holds the oldest retained state; snapshots are deep copies and are
// never shared with the store or with callers.
type History struct {
	snaps  []Snapshot
	cursor int
	limit  int
}

// NewHistory starts a history whose snapshot 0 is initial.
// limit bounds the number of retained snapshots; zero or less means unbounded.
func NewHistory(initial Snapshot, limit int) *History {
	h := &History{limit: limit}
	h.Reset(initial)
	return h
}

// Reset discards all snapshots and starts over from initial
func (h *History) Reset(initial Snapshot) {
	h.snaps = []Snapshot{initial.Clone()}
	h.cursor = 0
}

// Record drops any redo states beyond the cursor, appends snap and moves the
// cursor to it
func (h *History) Record(snap Snapshot) {
	h.snaps = append(h.snaps[:h.cursor+1], snap.Clone())
	h.cursor = len(h.snaps) - 1

	if h.limit > 0 && len(h.snaps) > h.limit {
		drop := len(h.snaps) - h.limit
		h.snaps = append([]Snapshot(nil), h.snaps[drop:]...)
		h.cursor -= drop
	}
}

// Undo moves the cursor back one step and returns that snapshot.
// ok is false, and nothing changes, when already at the oldest state.
func (h *History) Undo() (snap Snapshot, ok bool) {
	if !h.CanUndo() {
		return nil, false
	}
	h.cursor--
	return h.snaps[h.cursor].Clone(), true
}

// Redo moves the cursor forward one step and returns that snapshot.
// ok is false, and nothing changes, when already at the newest state.
func (h *History) Redo() (snap Snapshot, ok bool) {
	if !h.CanRedo() {
		return nil, false
	}
	h.cursor++
	return h.snaps[h.cursor].Clone(), true
}

func (h *History) CanUndo() bool { return h.cursor > 0 }
func (h *History) CanRedo() bool { return h.cursor < len(h.snaps)-1 }
func (h *History) Len() int      { return len(h.snaps) }
func (h *History) Cursor() int   { return h.cursor }

// Current returns a copy of the snapshot at the cursor
func (h *History) Current() Snapshot {
	return h.snaps[h.cursor].Clone()
}
