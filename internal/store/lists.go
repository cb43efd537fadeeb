package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"duties/internal/service"
)

// ListStore caches the collection of lists.
type ListStore struct {
	svc service.Service
	c   *collection[service.List]
}

// NewListStore creates an empty list store backed by svc.
func NewListStore(svc service.Service, log *slog.Logger) *ListStore {
	return &ListStore{svc: svc, c: newCollection[service.List]("lists", log)}
}

// State returns a copy of the store state.
func (s *ListStore) State() State[service.List] {
	return s.c.state()
}

// Items returns a copy of the cached lists.
func (s *ListStore) Items() []service.List {
	return s.c.state().Items
}

// Find returns the cached list with id.
func (s *ListStore) Find(id string) (service.List, bool) {
	return s.c.find(id)
}

// Resolve finds a cached list by name (case-insensitive, trimmed).
func (s *ListStore) Resolve(name string) (service.List, error) {
	name = strings.TrimSpace(name)
	nameLower := strings.ToLower(name)

	var matches []service.List
	for _, list := range s.Items() {
		if strings.ToLower(strings.TrimSpace(list.Name)) == nameLower {
			matches = append(matches, list)
		}
	}

	switch len(matches) {
	case 0:
		return service.List{}, fmt.Errorf("list %s: %w", name, ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return service.List{}, fmt.Errorf("list %s: %w", name, ErrAmbiguous)
	}
}

// Fetch reloads every list from the backend.
func (s *ListStore) Fetch(ctx context.Context) error {
	return s.c.fetch(ctx, s.svc.ListLists)
}

// Create creates a list and prepends it once the backend confirms it.
// Input is not validated here.
func (s *ListStore) Create(ctx context.Context, input service.CreateListInput) (service.List, error) {
	return s.c.create(ctx, func(ctx context.Context) (service.List, error) {
		return s.svc.CreateList(ctx, input)
	})
}

// Update renames a list and replaces the cached copy with the backend's.
func (s *ListStore) Update(ctx context.Context, id string, input service.UpdateListInput) (service.List, error) {
	return s.c.update(ctx, id, func(ctx context.Context) (service.List, error) {
		return s.svc.UpdateList(ctx, id, input)
	})
}

// Delete deletes a list and drops it from the cache.
func (s *ListStore) Delete(ctx context.Context, id string) error {
	return s.c.remove(ctx, id, func(ctx context.Context) error {
		return s.svc.DeleteList(ctx, id)
	})
}
