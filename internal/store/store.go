// Package store holds the in-memory, order-preserving collection of trip
// items for one trip view.
//
// The store is the single shared mutable resource of the engine: every write
// goes through its primitives, every read through Snapshot or Get. The
// primitives are synchronous, mutate matching items in place, and never make
// network calls. Patching a subset leaves every other entry's identity
// untouched, so consumers keyed on item identity (scroll position, per-item
// animation) are not disturbed by unrelated updates.
package store

import (
	"log/slog"
	"sync"

	"github.com/packzen/packzen-client/internal/domain"
)

// Updater mutates one item in place during a patch.
type Updater func(*domain.TripItem)

// Predicate selects items for PatchWhere.
type Predicate func(*domain.TripItem) bool

// Snapshot is a point-in-time copy of the store state.
// While Loading is true, Items must not be treated as authoritative.
// A non-empty Error with non-empty Items means stale data from the last
// successful fetch is still being shown.
type Snapshot struct {
	Items   []*domain.TripItem
	Loading bool
	Error   string
}

// Store is an order-preserving trip item collection with loading/error flags.
type Store struct {
	mu      sync.RWMutex
	items   []*domain.TripItem
	loading bool
	lastErr string
	version uint64

	changed chan struct{}
	logger  *slog.Logger
}

// New creates an empty store in the loading state.
func New(logger *slog.Logger) *Store {
	return &Store{
		loading: true,
		changed: make(chan struct{}, 1),
		logger:  logger,
	}
}

// ReplaceAll installs a full refresh from a successful fetch.
// Clears the error flag and ends loading.
func (s *Store) ReplaceAll(items []*domain.TripItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make([]*domain.TripItem, len(items))
	for i, item := range items {
		s.items[i] = item.Clone()
	}
	s.loading = false
	s.lastErr = ""
	s.bump()
}

// PatchWhere applies updater to every item matching pred, in place.
// Returns the number of items whose fields actually changed.
func (s *Store) PatchWhere(pred Predicate, updater Updater) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := 0
	for _, item := range s.items {
		if !pred(item) {
			continue
		}
		before := item.Clone()
		updater(item)
		if !item.Equal(before) {
			changed++
		}
	}
	if changed > 0 {
		s.bump()
	}
	return changed
}

// PatchMany applies updater to the items with the given ids.
// Convenience over PatchWhere for an explicit id set.
func (s *Store) PatchMany(ids []string, updater Updater) int {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return s.PatchWhere(func(item *domain.TripItem) bool { return set[item.ID] }, updater)
}

// PatchOne applies updater to the single item with the given id.
// Reports whether the item existed and changed.
func (s *Store) PatchOne(id string, updater Updater) bool {
	return s.PatchMany([]string{id}, updater) > 0
}

// RemoveWhere filters out the items with the given ids.
// Removing absent ids is a no-op. Returns the number removed.
func (s *Store) RemoveWhere(ids []string) int {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.items[:0]
	removed := 0
	for _, item := range s.items {
		if set[item.ID] {
			removed++
			continue
		}
		kept = append(kept, item)
	}
	s.items = kept
	if removed > 0 {
		s.bump()
	}
	return removed
}

// Insert appends a new item. If an item with the same id is already present
// it is replaced in place instead, which makes at-least-once feed creates
// idempotent.
func (s *Store) Insert(item *domain.TripItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.items {
		if existing.ID == item.ID {
			if existing.Equal(item) {
				return
			}
			s.items[i] = item.Clone()
			s.bump()
			return
		}
	}
	s.items = append(s.items, item.Clone())
	s.bump()
}

// Get returns a copy of the item with the given id.
func (s *Store) Get(id string) (*domain.TripItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, item := range s.items {
		if item.ID == id {
			return item.Clone(), true
		}
	}
	return nil, false
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]*domain.TripItem, len(s.items))
	for i, item := range s.items {
		items[i] = item.Clone()
	}
	return Snapshot{Items: items, Loading: s.loading, Error: s.lastErr}
}

// Len returns the number of items.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Version returns a counter bumped on every effective mutation.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Changed returns a coalescing signal channel that receives after mutations.
// Multiple rapid mutations may coalesce into a single signal.
func (s *Store) Changed() <-chan struct{} {
	return s.changed
}

// SetLoading sets the loading flag.
func (s *Store) SetLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loading == loading {
		return
	}
	s.loading = loading
	s.bump()
}

// SetError records a fetch failure. Existing items are kept so stale data
// from a previous successful fetch can still be displayed.
func (s *Store) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err == nil {
		s.lastErr = ""
	} else {
		s.lastErr = err.Error()
	}
	s.bump()
}

// bump must be called with the write lock held.
func (s *Store) bump() {
	s.version++
	select {
	case s.changed <- struct{}{}:
	default:
		// A signal is already pending; the reader will see this change too.
	}
}
