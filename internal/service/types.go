package service

import "time"

// Status is the progress state of a duty.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// Next returns the status that follows s in the cycle
// pending -> in_progress -> done -> pending.
// Unknown statuses restart the cycle at pending.
func (s Status) Next() Status {
	switch s {
	case StatusPending:
		return StatusInProgress
	case StatusInProgress:
		return StatusDone
	default:
		return StatusPending
	}
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// List is a named grouping of duties.
type List struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EntityID returns the list ID.
func (l List) EntityID() string { return l.ID }

// Duty is a single task item, optionally attached to a list.
type Duty struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Status    Status    `json:"status"`
	ListID    *string   `json:"list_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EntityID returns the duty ID.
func (d Duty) EntityID() string { return d.ID }

// InList reports whether the duty is attached to the given list.
func (d Duty) InList(listID string) bool {
	return d.ListID != nil && *d.ListID == listID
}

// CreateListInput is the body of a list create request.
type CreateListInput struct {
	Name string `json:"name"`
}

// UpdateListInput is the body of a list update request.
type UpdateListInput struct {
	Name string `json:"name"`
}

// CreateDutyInput is the body of a duty create request.
type CreateDutyInput struct {
	Name   string  `json:"name"`
	ListID *string `json:"list_id,omitempty"`
}

// UpdateDutyInput is the body of a partial duty update.
// Nil fields are left untouched by the server.
type UpdateDutyInput struct {
	Name   *string `json:"name,omitempty"`
	Status *Status `json:"status,omitempty"`
}

// DutyFilter narrows a duty collection request.
// A nil ListID requests every duty.
type DutyFilter struct {
	ListID *string
}

// Key returns a comparable form of the filter.
func (f DutyFilter) Key() string {
	if f.ListID == nil {
		return ""
	}
	return "list:" + *f.ListID
}
