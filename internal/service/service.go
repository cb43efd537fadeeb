// Package service defines the backend-agnostic types and interface for list and duty operations.
package service

import "context"

// Service defines the interface for backend operations.
// All remote calls go through this interface.
// Stores and commands never import a backend package directly.
type Service interface {
	// ListLists returns all lists in backend order.
	ListLists(ctx context.Context) ([]List, error)

	// GetList returns a single list by ID.
	GetList(ctx context.Context, id string) (List, error)

	// CreateList creates a list and returns the stored entity.
	CreateList(ctx context.Context, input CreateListInput) (List, error)

	// UpdateList renames a list and returns the stored entity.
	UpdateList(ctx context.Context, id string, input UpdateListInput) (List, error)

	// DeleteList deletes a list. Duties in it are removed by the backend.
	DeleteList(ctx context.Context, id string) error

	// ListDuties returns duties matching the filter in backend order.
	ListDuties(ctx context.Context, filter DutyFilter) ([]Duty, error)

	// GetDuty returns a single duty by ID.
	GetDuty(ctx context.Context, id string) (Duty, error)

	// CreateDuty creates a duty and returns the stored entity.
	CreateDuty(ctx context.Context, input CreateDutyInput) (Duty, error)

	// UpdateDuty applies a partial update and returns the stored entity.
	UpdateDuty(ctx context.Context, id string, input UpdateDutyInput) (Duty, error)

	// DeleteDuty deletes a duty.
	DeleteDuty(ctx context.Context, id string) error
}
