package engine

import "sync"

// Selection tracks the multi-select state for batch operations.
type Selection struct {
	mu     sync.RWMutex
	ids    map[string]bool
	active bool
}

// NewSelection creates an empty, inactive selection.
func NewSelection() *Selection {
	return &Selection{ids: make(map[string]bool)}
}

// Enter switches selection mode on.
func (s *Selection) Enter() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = true
}

// Active reports whether selection mode is on.
func (s *Selection) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// Toggle flips one item's membership, entering selection mode if needed.
func (s *Selection) Toggle(itemID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = true
	if s.ids[itemID] {
		delete(s.ids, itemID)
	} else {
		s.ids[itemID] = true
	}
}

// Contains reports one item's membership.
func (s *Selection) Contains(itemID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ids[itemID]
}

// IDs returns the selected ids in unspecified order.
func (s *Selection) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.ids))
	for itemID := range s.ids {
		out = append(out, itemID)
	}
	return out
}

// Count returns how many items are selected.
func (s *Selection) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}

// Clear empties the selection and exits selection mode.
func (s *Selection) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = make(map[string]bool)
	s.active = false
}

// Drop removes ids that left the store (deleted remotely) without exiting
// selection mode.
func (s *Selection) Drop(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, itemID := range ids {
		delete(s.ids, itemID)
	}
}
