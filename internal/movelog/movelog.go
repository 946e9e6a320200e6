// Package movelog keeps the ordered history of structural moves and merges
// remote moves into it. State-based register merge alone cannot keep a tree
// acyclic under concurrent moves; replaying one globally-sorted history on
// every replica can. Incoming moves are spliced into place by rewinding the
// later part of the history and replaying it.
package movelog

import (
	"github.com/vexelcorp/vexel/internal/clock"
	"github.com/vexelcorp/vexel/internal/position"
)

// Entry records one parent/position change. OldParent is informational: it
// is what the rewind restores while unwinding history past the entry.
type Entry struct {
	OldParent *string          `json:"old_group_id"`
	NewParent *string          `json:"new_group_id"`
	ObjectID  string           `json:"object_id"`
	Index     position.Index   `json:"index"`
	Timestamp clock.EpochNanos `json:"timestamp"`
}

// State is the document state the log rewinds over. RedoMove must re-check
// acyclicity and skip entries that would form a cycle; both callbacks must
// write through a path that leaves causal metadata untouched.
type State interface {
	UndoMove(Entry)
	RedoMove(Entry)
}

// Log is a move history kept sorted by timestamp ascending.
type Log struct {
	entries []Entry
}

// Len returns the history length.
func (l *Log) Len() int { return len(l.entries) }

// Entries returns a copy of the history, oldest first.
func (l *Log) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Reset drops the whole history.
func (l *Log) Reset() {
	l.entries = nil
}

// Integrate splices an entry into the history: it walks backwards undoing
// every entry stamped at or after the incoming one, inserts, then replays
// forward from the splice point. An entry with an exactly matching
// timestamp marks the incoming one as a duplicate; it is discarded and the
// unwound suffix is replayed as it was. Returns whether the entry was
// inserted and how many entries were unwound.
func (l *Log) Integrate(e Entry, st State) (inserted bool, unwound int) {
	k := len(l.entries)
	duplicate := false
	for i := len(l.entries) - 1; i >= 0; i-- {
		if l.entries[i].Timestamp < e.Timestamp {
			break
		}
		if l.entries[i].Timestamp == e.Timestamp {
			duplicate = true
			break
		}
		st.UndoMove(l.entries[i])
		unwound++
		k = i
	}

	if !duplicate {
		l.entries = append(l.entries, Entry{})
		copy(l.entries[k+1:], l.entries[k:])
		l.entries[k] = e
	}

	for i := k; i < len(l.entries); i++ {
		st.RedoMove(l.entries[i])
	}
	return !duplicate, unwound
}
