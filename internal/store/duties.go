package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"duties/internal/service"
)

// ErrInvalidStatus is returned for a status outside the known set.
var ErrInvalidStatus = errors.New("invalid status")

// DutyStore caches the duties matching a filter.
type DutyStore struct {
	svc service.Service
	c   *collection[service.Duty]

	mu     sync.Mutex
	filter service.DutyFilter
}

// NewDutyStore creates an empty duty store for filter.
func NewDutyStore(svc service.Service, log *slog.Logger, filter service.DutyFilter) *DutyStore {
	return &DutyStore{
		svc:    svc,
		c:      newCollection[service.Duty]("duties", log),
		filter: cloneFilter(filter),
	}
}

// State returns a copy of the store state.
func (s *DutyStore) State() State[service.Duty] {
	return s.c.state()
}

// Items returns a copy of the cached duties.
func (s *DutyStore) Items() []service.Duty {
	return s.c.state().Items
}

// Find returns the cached duty with id.
func (s *DutyStore) Find(id string) (service.Duty, bool) {
	return s.c.find(id)
}

// Filter returns the current filter.
func (s *DutyStore) Filter() service.DutyFilter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneFilter(s.filter)
}

// SetListID switches the store to the duties of listID (nil for all duties)
// and fetches them. Nothing happens if the filter is unchanged.
func (s *DutyStore) SetListID(ctx context.Context, listID *string) error {
	next := cloneFilter(service.DutyFilter{ListID: listID})

	s.mu.Lock()
	if s.filter.Key() == next.Key() {
		s.mu.Unlock()
		return nil
	}
	s.filter = next
	s.mu.Unlock()

	return s.Fetch(ctx)
}

// Fetch reloads the duties matching the current filter.
func (s *DutyStore) Fetch(ctx context.Context) error {
	filter := s.Filter()
	return s.c.fetch(ctx, func(ctx context.Context) ([]service.Duty, error) {
		return s.svc.ListDuties(ctx, filter)
	})
}

// Create creates a duty and prepends it once the backend confirms it.
// When input has no list, the duty is attached to the filtered list, if any.
func (s *DutyStore) Create(ctx context.Context, input service.CreateDutyInput) (service.Duty, error) {
	if input.ListID == nil {
		input.ListID = s.Filter().ListID
	}
	return s.c.create(ctx, func(ctx context.Context) (service.Duty, error) {
		return s.svc.CreateDuty(ctx, input)
	})
}

// Update applies a partial update and replaces the cached copy with the backend's.
func (s *DutyStore) Update(ctx context.Context, id string, input service.UpdateDutyInput) (service.Duty, error) {
	return s.c.update(ctx, id, func(ctx context.Context) (service.Duty, error) {
		return s.svc.UpdateDuty(ctx, id, input)
	})
}

// Delete deletes a duty and drops it from the cache.
func (s *DutyStore) Delete(ctx context.Context, id string) error {
	return s.c.remove(ctx, id, func(ctx context.Context) error {
		return s.svc.DeleteDuty(ctx, id)
	})
}

// UpdateStatus sets the status of a cached duty immediately, then asks the
// backend to confirm it. If the backend fails, the duty is restored as it
// was, or only its status is if a fetch replaced it in the meantime, and the
// error is returned.
func (s *DutyStore) UpdateStatus(ctx context.Context, id string, status service.Status) (service.Duty, error) {
	if !status.Valid() {
		return service.Duty{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	duty, err := s.c.patch(ctx, id,
		func(d service.Duty) service.Duty {
			d.Status = status
			return d
		},
		func(current, before service.Duty) service.Duty {
			current.Status = before.Status
			return current
		},
		func(ctx context.Context) (service.Duty, error) {
			return s.svc.UpdateDuty(ctx, id, service.UpdateDutyInput{Status: &status})
		},
	)
	if errors.Is(err, ErrNotFound) {
		return service.Duty{}, fmt.Errorf("duty %s: %w", id, err)
	}
	return duty, err
}

// Advance moves a cached duty to the next status in the cycle.
func (s *DutyStore) Advance(ctx context.Context, id string) (service.Duty, error) {
	duty, ok := s.Find(id)
	if !ok {
		return service.Duty{}, fmt.Errorf("duty %s: %w", id, ErrNotFound)
	}
	return s.UpdateStatus(ctx, id, duty.Status.Next())
}

func cloneFilter(f service.DutyFilter) service.DutyFilter {
	if f.ListID == nil {
		return f
	}
	id := *f.ListID
	return service.DutyFilter{ListID: &id}
}
