package domain

import (
	"errors"
	"fmt"
)

// ErrHistoryIndex is returned when a rollback names an entry that does not exist.
var ErrHistoryIndex = errors.New("history index out of range")

// HistoryEntry is a pre-move snapshot tagged with the message that triggered the move.
type HistoryEntry struct {
	Tag   string     `json:"tag"`
	State MatchState `json:"state"`
}

// History is a bounded stack of snapshots, newest first.
type History struct {
	Entries []HistoryEntry `json:"entries,omitempty"`
	// LastRollback is the index of the most recent rollback, or nil once a new
	// snapshot has been pushed since.
	LastRollback *int `json:"last_rollback,omitempty"`
}

// Len returns the number of stored snapshots.
func (h *History) Len() int {
	return len(h.Entries)
}

// Snapshot pushes a deep copy of state, discarding the oldest entry beyond HistoryDepth.
func (h *History) Snapshot(state MatchState, tag string) {
	entry := HistoryEntry{Tag: tag, State: state.Clone()}
	h.Entries = append([]HistoryEntry{entry}, h.Entries...)
	if len(h.Entries) > HistoryDepth {
		h.Entries = h.Entries[:HistoryDepth]
	}
	h.LastRollback = nil
}

// Drop removes the newest snapshot. It is used when a move that was already
// snapshotted fails and the live state is restored from that snapshot.
func (h *History) Drop() {
	if len(h.Entries) > 0 {
		h.Entries = h.Entries[1:]
	}
}

// Entry returns the snapshot at index, 0 being the newest.
func (h *History) Entry(index int) (HistoryEntry, error) {
	if index < 0 || index >= len(h.Entries) {
		return HistoryEntry{}, fmt.Errorf("%w: %d of %d", ErrHistoryIndex, index, len(h.Entries))
	}
	return h.Entries[index], nil
}

// Rollback replaces live with the snapshot at index and consumes that entry and every
// newer one. Repeating the same rollback before any new snapshot is a no-op, so a
// duplicated moderator command cannot walk further back than intended.
func (h *History) Rollback(live *MatchState, index int) (applied bool, err error) {
	if h.LastRollback != nil && *h.LastRollback == index {
		return false, nil
	}
	entry, err := h.Entry(index)
	if err != nil {
		return false, err
	}
	*live = entry.State.Clone()
	h.Entries = h.Entries[index+1:]
	h.LastRollback = &index
	return true, nil
}

// Clone returns an independent copy.
func (h History) Clone() History {
	out := History{Entries: make([]HistoryEntry, len(h.Entries))}
	for i, e := range h.Entries {
		out.Entries[i] = HistoryEntry{Tag: e.Tag, State: e.State.Clone()}
	}
	if h.LastRollback != nil {
		idx := *h.LastRollback
		out.LastRollback = &idx
	}
	return out
}
