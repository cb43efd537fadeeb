// Package selection tracks which list the user is currently viewing.
package selection

import (
	"sync"

	"duties/internal/service"
)

// Selection holds at most one list. It is created once per session and
// passed to whoever needs it; it is never persisted.
type Selection struct {
	mu       sync.RWMutex
	current  *service.List
	watchers []func(*service.List)
}

// New returns an empty selection.
func New() *Selection {
	return &Selection{}
}

// Set selects list, or clears the selection when list is nil.
// Watchers are notified after the change.
func (s *Selection) Set(list *service.List) {
	s.mu.Lock()
	if list == nil {
		s.current = nil
	} else {
		l := *list
		s.current = &l
	}
	watchers := append([]func(*service.List){}, s.watchers...)
	current := s.copyLocked()
	s.mu.Unlock()

	for _, w := range watchers {
		w(current)
	}
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.Set(nil)
}

// Current returns the selected list.
func (s *Selection) Current() (service.List, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return service.List{}, false
	}
	return *s.current, true
}

// ID returns the selected list's ID, or nil when nothing is selected.
func (s *Selection) ID() *string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	id := s.current.ID
	return &id
}

// Is reports whether the list with id is selected.
func (s *Selection) Is(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current != nil && s.current.ID == id
}

// Watch registers fn to run after every Set or Clear.
func (s *Selection) Watch(fn func(*service.List)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watchers = append(s.watchers, fn)
}

func (s *Selection) copyLocked() *service.List {
	if s.current == nil {
		return nil
	}
	l := *s.current
	return &l
}
