package devserver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"duties/internal/service"
	"duties/internal/validate"
)

// ErrNotFound is returned when a list or duty does not exist.
var ErrNotFound = errors.New("not found")

// ErrUnknownList is returned when a duty references a missing list.
var ErrUnknownList = errors.New("unknown list")

// Fixed-width UTC layout so text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store persists lists and duties in SQLite.
type Store struct {
	DB  *sql.DB
	Now func() time.Time
}

// NewStore wraps an open database.
func NewStore(db *sql.DB) *Store {
	return &Store{DB: db, Now: time.Now}
}

func (s *Store) now() string {
	return s.Now().UTC().Format(timeLayout)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanList(row scanner) (service.List, error) {
	var (
		l                service.List
		created, updated string
	)
	if err := row.Scan(&l.ID, &l.Name, &created, &updated); err != nil {
		return service.List{}, err
	}
	l.CreatedAt = parseTime(created)
	l.UpdatedAt = parseTime(updated)
	return l, nil
}

func scanDuty(row scanner) (service.Duty, error) {
	var (
		d                service.Duty
		status           string
		listID           sql.NullString
		created, updated string
	)
	if err := row.Scan(&d.ID, &d.Name, &status, &listID, &created, &updated); err != nil {
		return service.Duty{}, err
	}
	d.Status = service.Status(status)
	if listID.Valid {
		id := listID.String
		d.ListID = &id
	}
	d.CreatedAt = parseTime(created)
	d.UpdatedAt = parseTime(updated)
	return d, nil
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

const (
	listColumns = "id, name, created_at, updated_at"
	dutyColumns = "id, name, status, list_id, created_at, updated_at"
)

// ListLists returns every list, newest first.
func (s *Store) ListLists(ctx context.Context) ([]service.List, error) {
	rows, err := s.DB.QueryContext(ctx, "SELECT "+listColumns+" FROM lists ORDER BY created_at DESC, rowid DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lists := []service.List{}
	for rows.Next() {
		l, err := scanList(rows)
		if err != nil {
			return nil, err
		}
		lists = append(lists, l)
	}
	return lists, rows.Err()
}

// GetList returns one list.
func (s *Store) GetList(ctx context.Context, id string) (service.List, error) {
	l, err := scanList(s.DB.QueryRowContext(ctx, "SELECT "+listColumns+" FROM lists WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return service.List{}, fmt.Errorf("list %s: %w", id, ErrNotFound)
	}
	return l, err
}

// CreateList inserts a list.
func (s *Store) CreateList(ctx context.Context, input service.CreateListInput) (service.List, error) {
	if err := validate.Name(input.Name); err != nil {
		return service.List{}, err
	}

	now := s.now()
	id := uuid.NewString()
	if _, err := s.DB.ExecContext(ctx,
		"INSERT INTO lists (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)",
		id, input.Name, now, now,
	); err != nil {
		return service.List{}, err
	}
	return s.GetList(ctx, id)
}

// UpdateList renames a list.
func (s *Store) UpdateList(ctx context.Context, id string, input service.UpdateListInput) (service.List, error) {
	if err := validate.Name(input.Name); err != nil {
		return service.List{}, err
	}

	res, err := s.DB.ExecContext(ctx,
		"UPDATE lists SET name = ?, updated_at = ? WHERE id = ?",
		input.Name, s.now(), id,
	)
	if err != nil {
		return service.List{}, err
	}
	if err := requireAffected(res, "list", id); err != nil {
		return service.List{}, err
	}
	return s.GetList(ctx, id)
}

// DeleteList removes a list and its duties.
func (s *Store) DeleteList(ctx context.Context, id string) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM duties WHERE list_id = ?", id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM lists WHERE id = ?", id)
	if err != nil {
		return err
	}
	if err := requireAffected(res, "list", id); err != nil {
		return err
	}
	return tx.Commit()
}

// ListDuties returns duties, newest first, optionally restricted to one list.
func (s *Store) ListDuties(ctx context.Context, filter service.DutyFilter) ([]service.Duty, error) {
	query := "SELECT " + dutyColumns + " FROM duties"
	var args []any
	if filter.ListID != nil {
		query += " WHERE list_id = ?"
		args = append(args, *filter.ListID)
	}
	query += " ORDER BY created_at DESC, rowid DESC"

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	duties := []service.Duty{}
	for rows.Next() {
		d, err := scanDuty(rows)
		if err != nil {
			return nil, err
		}
		duties = append(duties, d)
	}
	return duties, rows.Err()
}

// GetDuty returns one duty.
func (s *Store) GetDuty(ctx context.Context, id string) (service.Duty, error) {
	d, err := scanDuty(s.DB.QueryRowContext(ctx, "SELECT "+dutyColumns+" FROM duties WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return service.Duty{}, fmt.Errorf("duty %s: %w", id, ErrNotFound)
	}
	return d, err
}

// CreateDuty inserts a pending duty.
func (s *Store) CreateDuty(ctx context.Context, input service.CreateDutyInput) (service.Duty, error) {
	if err := validate.Name(input.Name); err != nil {
		return service.Duty{}, err
	}
	if input.ListID != nil {
		if _, err := s.GetList(ctx, *input.ListID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return service.Duty{}, fmt.Errorf("list %s: %w", *input.ListID, ErrUnknownList)
			}
			return service.Duty{}, err
		}
	}

	now := s.now()
	id := uuid.NewString()
	if _, err := s.DB.ExecContext(ctx,
		"INSERT INTO duties (id, name, status, list_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		id, input.Name, string(service.StatusPending), nullable(input.ListID), now, now,
	); err != nil {
		return service.Duty{}, err
	}
	return s.GetDuty(ctx, id)
}

// ErrInvalidStatus is returned for a status outside the three known values.
var ErrInvalidStatus = errors.New("invalid status")

// UpdateDuty applies the fields present in input.
func (s *Store) UpdateDuty(ctx context.Context, id string, input service.UpdateDutyInput) (service.Duty, error) {
	if input.Name != nil {
		if err := validate.Name(*input.Name); err != nil {
			return service.Duty{}, err
		}
	}
	if input.Status != nil && !input.Status.Valid() {
		return service.Duty{}, fmt.Errorf("%w: %s", ErrInvalidStatus, *input.Status)
	}

	current, err := s.GetDuty(ctx, id)
	if err != nil {
		return service.Duty{}, err
	}
	if input.Name != nil {
		current.Name = *input.Name
	}
	if input.Status != nil {
		current.Status = *input.Status
	}

	if _, err := s.DB.ExecContext(ctx,
		"UPDATE duties SET name = ?, status = ?, updated_at = ? WHERE id = ?",
		current.Name, string(current.Status), s.now(), id,
	); err != nil {
		return service.Duty{}, err
	}
	return s.GetDuty(ctx, id)
}

// DeleteDuty removes a duty.
func (s *Store) DeleteDuty(ctx context.Context, id string) error {
	res, err := s.DB.ExecContext(ctx, "DELETE FROM duties WHERE id = ?", id)
	if err != nil {
		return err
	}
	return requireAffected(res, "duty", id)
}

var _ service.Service = (*Store)(nil)

func requireAffected(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return nil
}

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
