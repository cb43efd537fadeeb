// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"duties/internal/service"
)

// FakeService is an in-memory implementation of service.Service for testing.
// Like the real API it lists newest-first, cascades list deletes, and reports
// missing entities as 404 network errors.
type FakeService struct {
	mu     sync.RWMutex
	lists  []service.List
	duties []service.Duty
	calls  map[string]int

	// Now stamps created_at/updated_at. Defaults to time.Now.
	Now func() time.Time

	// Error injection for testing
	ListListsErr  error
	GetListErr    error
	CreateListErr error
	UpdateListErr error
	DeleteListErr error
	ListDutiesErr error
	GetDutyErr    error
	CreateDutyErr error
	UpdateDutyErr error
	DeleteDutyErr error

	// BeforeListDuties runs before ListDuties reads state. A non-nil error
	// is returned to the caller.
	BeforeListDuties func(ctx context.Context, filter service.DutyFilter) error

	// BeforeUpdateDuty runs before UpdateDuty touches state. A non-nil error
	// is returned to the caller.
	BeforeUpdateDuty func(ctx context.Context, id string, input service.UpdateDutyInput) error
}

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{
		calls: make(map[string]int),
		Now:   time.Now,
	}
}

// AddList adds a list to the end of the collection.
func (f *FakeService) AddList(id, name string) service.List {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := f.Now()
	list := service.List{ID: id, Name: name, CreatedAt: now, UpdatedAt: now}
	f.lists = append(f.lists, list)
	return list
}

// AddDuty adds a pending duty to the end of the collection.
// An empty listID leaves the duty unattached.
func (f *FakeService) AddDuty(listID, id, name string) service.Duty {
	return f.AddDutyWithStatus(listID, id, name, service.StatusPending)
}

// AddDutyWithStatus adds a duty with the given status.
func (f *FakeService) AddDutyWithStatus(listID, id, name string, status service.Status) service.Duty {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := f.Now()
	duty := service.Duty{ID: id, Name: name, Status: status, CreatedAt: now, UpdatedAt: now}
	if listID != "" {
		duty.ListID = &listID
	}
	f.duties = append(f.duties, duty)
	return cloneDuty(duty)
}

// Calls returns how many times the named method was invoked.
func (f *FakeService) Calls(method string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.calls[method]
}

// TotalCalls returns the number of backend calls of any kind.
func (f *FakeService) TotalCalls() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

// Duty returns the backend's copy of a duty.
func (f *FakeService) Duty(id string) (service.Duty, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, d := range f.duties {
		if d.ID == id {
			return cloneDuty(d), true
		}
	}
	return service.Duty{}, false
}

func (f *FakeService) record(method string) {
	f.mu.Lock()
	f.calls[method]++
	f.mu.Unlock()
}

// ListLists implements service.Service.
func (f *FakeService) ListLists(ctx context.Context) ([]service.List, error) {
	f.record("ListLists")
	if f.ListListsErr != nil {
		return nil, f.ListListsErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	result := make([]service.List, len(f.lists))
	copy(result, f.lists)
	return result, nil
}

// GetList implements service.Service.
func (f *FakeService) GetList(ctx context.Context, id string) (service.List, error) {
	f.record("GetList")
	if f.GetListErr != nil {
		return service.List{}, f.GetListErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, l := range f.lists {
		if l.ID == id {
			return l, nil
		}
	}
	return service.List{}, notFound("List", id)
}

// CreateList implements service.Service.
func (f *FakeService) CreateList(ctx context.Context, input service.CreateListInput) (service.List, error) {
	f.record("CreateList")
	if f.CreateListErr != nil {
		return service.List{}, f.CreateListErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	now := f.Now()
	list := service.List{ID: uuid.NewString(), Name: input.Name, CreatedAt: now, UpdatedAt: now}
	f.lists = append([]service.List{list}, f.lists...)
	return list, nil
}

// UpdateList implements service.Service.
func (f *FakeService) UpdateList(ctx context.Context, id string, input service.UpdateListInput) (service.List, error) {
	f.record("UpdateList")
	if f.UpdateListErr != nil {
		return service.List{}, f.UpdateListErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, l := range f.lists {
		if l.ID == id {
			f.lists[i].Name = input.Name
			f.lists[i].UpdatedAt = f.Now()
			return f.lists[i], nil
		}
	}
	return service.List{}, notFound("List", id)
}

// DeleteList implements service.Service. Duties of the list are removed too.
func (f *FakeService) DeleteList(ctx context.Context, id string) error {
	f.record("DeleteList")
	if f.DeleteListErr != nil {
		return f.DeleteListErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, l := range f.lists {
		if l.ID == id {
			f.lists = append(f.lists[:i], f.lists[i+1:]...)
			kept := f.duties[:0]
			for _, d := range f.duties {
				if !d.InList(id) {
					kept = append(kept, d)
				}
			}
			f.duties = kept
			return nil
		}
	}
	return notFound("List", id)
}

// ListDuties implements service.Service.
func (f *FakeService) ListDuties(ctx context.Context, filter service.DutyFilter) ([]service.Duty, error) {
	f.record("ListDuties")
	if f.BeforeListDuties != nil {
		if err := f.BeforeListDuties(ctx, filter); err != nil {
			return nil, err
		}
	}
	if f.ListDutiesErr != nil {
		return nil, f.ListDutiesErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	result := []service.Duty{}
	for _, d := range f.duties {
		if filter.ListID == nil || d.InList(*filter.ListID) {
			result = append(result, cloneDuty(d))
		}
	}
	return result, nil
}

// GetDuty implements service.Service.
func (f *FakeService) GetDuty(ctx context.Context, id string) (service.Duty, error) {
	f.record("GetDuty")
	if f.GetDutyErr != nil {
		return service.Duty{}, f.GetDutyErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, d := range f.duties {
		if d.ID == id {
			return cloneDuty(d), nil
		}
	}
	return service.Duty{}, notFound("Duty", id)
}

// CreateDuty implements service.Service.
func (f *FakeService) CreateDuty(ctx context.Context, input service.CreateDutyInput) (service.Duty, error) {
	f.record("CreateDuty")
	if f.CreateDutyErr != nil {
		return service.Duty{}, f.CreateDutyErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	now := f.Now()
	duty := service.Duty{
		ID:        uuid.NewString(),
		Name:      input.Name,
		Status:    service.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if input.ListID != nil {
		id := *input.ListID
		duty.ListID = &id
	}
	f.duties = append([]service.Duty{duty}, f.duties...)
	return cloneDuty(duty), nil
}

// UpdateDuty implements service.Service.
func (f *FakeService) UpdateDuty(ctx context.Context, id string, input service.UpdateDutyInput) (service.Duty, error) {
	f.record("UpdateDuty")
	if f.BeforeUpdateDuty != nil {
		if err := f.BeforeUpdateDuty(ctx, id, input); err != nil {
			return service.Duty{}, err
		}
	}
	if f.UpdateDutyErr != nil {
		return service.Duty{}, f.UpdateDutyErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, d := range f.duties {
		if d.ID == id {
			if input.Name != nil {
				f.duties[i].Name = *input.Name
			}
			if input.Status != nil {
				f.duties[i].Status = *input.Status
			}
			f.duties[i].UpdatedAt = f.Now()
			return cloneDuty(f.duties[i]), nil
		}
	}
	return service.Duty{}, notFound("Duty", id)
}

// DeleteDuty implements service.Service.
func (f *FakeService) DeleteDuty(ctx context.Context, id string) error {
	f.record("DeleteDuty")
	if f.DeleteDutyErr != nil {
		return f.DeleteDutyErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, d := range f.duties {
		if d.ID == id {
			f.duties = append(f.duties[:i], f.duties[i+1:]...)
			return nil
		}
	}
	return notFound("Duty", id)
}

func notFound(kind, id string) error {
	ne := service.NewNetworkError(http.StatusNotFound, fmt.Sprintf("%s with id %s not found", kind, id), nil)
	ne.Code = "not_found"
	return ne
}

func cloneDuty(d service.Duty) service.Duty {
	if d.ListID != nil {
		id := *d.ListID
		d.ListID = &id
	}
	return d
}

var _ service.Service = (*FakeService)(nil)
