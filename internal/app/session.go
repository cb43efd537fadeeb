// Package app wires the list and duty stores to the active selection.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"duties/internal/selection"
	"duties/internal/service"
	"duties/internal/store"
	"duties/internal/validate"
)

// Session is one user's view of the backend: the cached lists, the duties of
// the selected list, and the selection itself.
type Session struct {
	Lists     *store.ListStore
	Duties    *store.DutyStore
	Selection *selection.Selection

	log *slog.Logger
}

// New creates a session with empty stores and no selection.
func New(svc service.Service, log *slog.Logger) *Session {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	s := &Session{
		Lists:     store.NewListStore(svc, log),
		Duties:    store.NewDutyStore(svc, log, service.DutyFilter{}),
		Selection: selection.New(),
		log:       log,
	}
	s.Selection.Watch(func(list *service.List) {
		if list == nil {
			log.Debug("selection cleared")
			return
		}
		log.Debug("list selected", "id", list.ID, "name", list.Name)
	})
	return s
}

// Start loads the lists and the duties for the current selection.
func (s *Session) Start(ctx context.Context) error {
	if err := s.Lists.Fetch(ctx); err != nil {
		return fmt.Errorf("fetch lists: %w", err)
	}
	if err := s.Duties.Fetch(ctx); err != nil {
		return fmt.Errorf("fetch duties: %w", err)
	}
	return nil
}

// selectList makes list the selection (nil clears it) and re-keys the duty
// store to match.
func (s *Session) selectList(ctx context.Context, list *service.List) error {
	s.Selection.Set(list)

	var id *string
	if list != nil {
		id = &list.ID
	}
	if err := s.Duties.SetListID(ctx, id); err != nil {
		s.log.Debug("refresh duties after selection change", "error", err)
		return fmt.Errorf("fetch duties: %w", err)
	}
	return nil
}

// SelectList selects the cached list called name and loads its duties.
func (s *Session) SelectList(ctx context.Context, name string) (service.List, error) {
	list, err := s.Lists.Resolve(name)
	if err != nil {
		return service.List{}, err
	}
	return list, s.selectList(ctx, &list)
}

// ClearSelection drops the selection and loads every duty.
func (s *Session) ClearSelection(ctx context.Context) error {
	return s.selectList(ctx, nil)
}

// CreateList validates name, creates the list, and selects it.
func (s *Session) CreateList(ctx context.Context, name string) (service.List, error) {
	if err := validate.Name(name); err != nil {
		return service.List{}, err
	}
	list, err := s.Lists.Create(ctx, service.CreateListInput{Name: name})
	if err != nil {
		return service.List{}, err
	}
	return list, s.selectList(ctx, &list)
}

// RenameList validates name and renames the list with id.
func (s *Session) RenameList(ctx context.Context, id, name string) (service.List, error) {
	if err := validate.Name(name); err != nil {
		return service.List{}, err
	}
	list, err := s.Lists.Update(ctx, id, service.UpdateListInput{Name: name})
	if err != nil {
		return service.List{}, err
	}
	if s.Selection.Is(id) {
		if err := s.selectList(ctx, &list); err != nil {
			return list, err
		}
	}
	return list, nil
}

// DeleteList deletes the list with id and reloads the lists. The server
// deletes the list's duties with it, so the duty store is refreshed whenever
// it could still hold them: the selection is cleared if it pointed at the
// list, and an unfiltered duty store is re-fetched.
func (s *Session) DeleteList(ctx context.Context, id string) error {
	if err := s.Lists.Delete(ctx, id); err != nil {
		return err
	}
	switch {
	case s.Selection.Is(id):
		if err := s.selectList(ctx, nil); err != nil {
			return err
		}
	case s.Duties.Filter().ListID == nil:
		if err := s.Duties.Fetch(ctx); err != nil {
			return fmt.Errorf("refresh duties: %w", err)
		}
	}
	if err := s.Lists.Fetch(ctx); err != nil {
		return fmt.Errorf("refresh lists: %w", err)
	}
	return nil
}

// CreateDuty validates name and creates a duty in the selected list.
func (s *Session) CreateDuty(ctx context.Context, name string) (service.Duty, error) {
	if err := validate.Name(name); err != nil {
		return service.Duty{}, err
	}
	return s.Duties.Create(ctx, service.CreateDutyInput{Name: name, ListID: s.Selection.ID()})
}

// RenameDuty validates name and renames the duty with id.
func (s *Session) RenameDuty(ctx context.Context, id, name string) (service.Duty, error) {
	if err := validate.Name(name); err != nil {
		return service.Duty{}, err
	}
	return s.Duties.Update(ctx, id, service.UpdateDutyInput{Name: &name})
}

// AdvanceDuty moves the duty with id to its next status.
func (s *Session) AdvanceDuty(ctx context.Context, id string) (service.Duty, error) {
	return s.Duties.Advance(ctx, id)
}

// DeleteDuty deletes the duty with id.
func (s *Session) DeleteDuty(ctx context.Context, id string) error {
	return s.Duties.Delete(ctx, id)
}
