package schema

import (
	"sync/atomic"
)

// Store is the process-wide schema holder. Readers borrow the current
// immutable snapshot; reload swaps the whole pointer, so a reader never
// observes a partially updated schema.
type Store struct {
	cur atomic.Pointer[Schema]
}

// NewStore creates a store holding the initial snapshot.
func NewStore(s *Schema) *Store {
	st := &Store{}
	st.cur.Store(s)
	return st
}

// Load returns the current snapshot. The returned schema must be
// treated as read-only.
func (st *Store) Load() *Schema {
	return st.cur.Load()
}

// Swap publishes a new snapshot. In-flight requests keep the snapshot
// they started with.
func (st *Store) Swap(s *Schema) {
	st.cur.Store(s)
}
