package domain

import "slices"

// WaitingLedger records which outbound messages a game will accept replies to.
// PendingReply marks that the reply the caller is about to send will itself
// carry the next solicitation; ResolvePending fills in its id once known.
type WaitingLedger struct {
	IDs          []string `json:"ids,omitempty"`
	PendingReply bool     `json:"pending_reply,omitempty"`
}

// Reset clears every tracked id and the pending marker.
func (l *WaitingLedger) Reset() {
	l.IDs = nil
	l.PendingReply = false
}

// Add tracks one more outbound message id (multi-recipient fan-out).
func (l *WaitingLedger) Add(id string) {
	if id == "" || slices.Contains(l.IDs, id) {
		return
	}
	l.IDs = append(l.IDs, id)
}

// SetSingle replaces the ledger with exactly one id.
func (l *WaitingLedger) SetSingle(id string) {
	l.Reset()
	l.Add(id)
}

// SetPending clears the ledger and marks that the next reply resolves it.
func (l *WaitingLedger) SetPending() {
	l.Reset()
	l.PendingReply = true
}

// ResolvePending records the id of the reply that carries the solicitation.
// It is a no-op when nothing is pending.
func (l *WaitingLedger) ResolvePending(id string) bool {
	if !l.PendingReply {
		return false
	}
	l.PendingReply = false
	l.Add(id)
	return true
}

// Contains reports whether id is one of the tracked messages.
func (l WaitingLedger) Contains(id string) bool {
	return id != "" && slices.Contains(l.IDs, id)
}

// Primary returns the first tracked id, or "" when nothing is tracked.
func (l WaitingLedger) Primary() string {
	if len(l.IDs) == 0 {
		return ""
	}
	return l.IDs[0]
}

// Empty reports whether no id is tracked and nothing is pending.
func (l WaitingLedger) Empty() bool {
	return len(l.IDs) == 0 && !l.PendingReply
}

// Clone returns an independent copy.
func (l WaitingLedger) Clone() WaitingLedger {
	return WaitingLedger{IDs: slices.Clone(l.IDs), PendingReply: l.PendingReply}
}
