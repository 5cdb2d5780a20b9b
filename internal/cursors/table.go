// Package cursors tracks per-listener read positions for a single event queue.
//
// A Table maps stable listener ids to absolute offsets into the conceptual
// infinite event stream. Offsets are absolute rather than buffer-relative so
// that truncating the front of the buffer never requires rewriting cursors;
// the queue only shifts its base offset. The Table performs no locking of its
// own, the owning queue serializes all access.
package cursors

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ID identifies one registered listener. Ids are unique within a single
// table for its whole lifetime; they are never reused.
type ID uint64

// Table is an insertion-ordered map of listener id to absolute offset.
type Table struct {
	next    ID
	entries *orderedmap.OrderedMap[ID, uint64]
}

func New() *Table {
	return &Table{entries: orderedmap.New[ID, uint64]()}
}

// Register inserts a new cursor at the given offset and returns its id.
func (t *Table) Register(offset uint64) ID {
	id := t.next
	t.next++
	t.entries.Set(id, offset)
	return id
}

// Get returns the cursor for id, and whether id is registered.
func (t *Table) Get(id ID) (uint64, bool) {
	return t.entries.Get(id)
}

// Advance moves the cursor for id to offset. It reports whether id is
// registered; an unregistered id is left untouched.
func (t *Table) Advance(id ID, offset uint64) bool {
	if _, ok := t.entries.Get(id); !ok {
		return false
	}
	t.entries.Set(id, offset)
	return true
}

// Remove deletes the cursor for id and reports whether it was registered.
func (t *Table) Remove(id ID) bool {
	_, ok := t.entries.Delete(id)
	return ok
}

// Len returns the number of registered cursors.
func (t *Table) Len() int {
	return t.entries.Len()
}

// Min returns the lowest registered cursor, the compaction boundary.
// The second return is false when no cursors are registered.
func (t *Table) Min() (uint64, bool) {
	if t.entries.Len() == 0 {
		return 0, false
	}
	first := true
	var m uint64
	for pair := t.entries.Oldest(); pair != nil; pair = pair.Next() {
		if first || pair.Value < m {
			m = pair.Value
			first = false
		}
	}
	return m, true
}
