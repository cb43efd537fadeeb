// Package store keeps client-side caches of remote collections in sync with a backend.
//
// Each store holds an ordered slice of entities plus loading and error state.
// Mutations are confirmed by the backend before they touch the cache, except
// DutyStore.UpdateStatus, which applies the change first and restores the
// previous entity if the backend rejects it.
package store

import (
	"context"
	"errors"
	"log/slog"
	"reflect"
	"sync"

	"duties/internal/service"
)

var (
	// ErrNotFound is returned when an entity is not in the local cache.
	ErrNotFound = errors.New("not found")

	// ErrAmbiguous is returned when a name matches more than one entity.
	ErrAmbiguous = errors.New("ambiguous")

	// ErrSuperseded is returned by a fetch whose response arrived after a
	// newer fetch was started. The stale response is discarded.
	ErrSuperseded = errors.New("fetch superseded by a newer request")
)

// Entity is anything a store can cache.
type Entity interface {
	EntityID() string
}

// State is a point-in-time copy of a store.
type State[T Entity] struct {
	Items   []T
	Loading bool
	Err     string
}

// collection holds the state and mechanics shared by every store.
type collection[T Entity] struct {
	kind string
	log  *slog.Logger

	mu       sync.Mutex
	items    []T
	inflight int
	errMsg   string

	// gen increments on every fetch; only the newest fetch may commit.
	gen    uint64
	cancel context.CancelFunc
}

func newCollection[T Entity](kind string, log *slog.Logger) *collection[T] {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &collection[T]{kind: kind, log: log, items: []T{}}
}

func (c *collection[T]) state() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	items := make([]T, len(c.items))
	copy(items, c.items)
	return State[T]{Items: items, Loading: c.inflight > 0, Err: c.errMsg}
}

func (c *collection[T]) find(id string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOf(id); i >= 0 {
		return c.items[i], true
	}
	var zero T
	return zero, false
}

// indexOf must be called with mu held.
func (c *collection[T]) indexOf(id string) int {
	for i, item := range c.items {
		if item.EntityID() == id {
			return i
		}
	}
	return -1
}

func (c *collection[T]) begin() {
	c.mu.Lock()
	c.inflight++
	c.errMsg = ""
	c.mu.Unlock()
}

// finish must be called with mu held.
func (c *collection[T]) finish(op string, err error) {
	c.inflight--
	if err != nil {
		c.errMsg = service.ErrorMessage(err)
		c.log.Debug("store operation failed", "store", c.kind, "op", op, "error", err)
	}
}

// fetch replaces the items wholesale with the result of load.
// Starting a fetch cancels the previous one, and a response from a fetch
// that is no longer the newest is discarded.
func (c *collection[T]) fetch(ctx context.Context, load func(context.Context) ([]T, error)) error {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.gen++
	gen := c.gen
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.inflight++
	c.errMsg = ""
	c.mu.Unlock()
	defer cancel()

	items, err := load(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		c.inflight--
		c.log.Debug("discarding stale fetch", "store", c.kind, "generation", gen, "current", c.gen)
		return ErrSuperseded
	}
	c.cancel = nil
	c.finish("fetch", err)
	if err != nil {
		return err
	}
	if items == nil {
		items = []T{}
	}
	c.items = items
	c.log.Debug("store fetched", "store", c.kind, "count", len(items))
	return nil
}

// create prepends the confirmed entity. Nothing is inserted before the
// backend answers.
func (c *collection[T]) create(ctx context.Context, call func(context.Context) (T, error)) (T, error) {
	c.begin()
	item, err := call(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.finish("create", err)
	if err != nil {
		var zero T
		return zero, err
	}
	c.items = append([]T{item}, c.items...)
	return item, nil
}

// update replaces the entity with id by the confirmed entity, keeping its position.
func (c *collection[T]) update(ctx context.Context, id string, call func(context.Context) (T, error)) (T, error) {
	c.begin()
	item, err := call(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.finish("update", err)
	if err != nil {
		var zero T
		return zero, err
	}
	if i := c.indexOf(id); i >= 0 {
		c.items[i] = item
	}
	return item, nil
}

// remove drops the entity with id once the backend confirmed the delete.
func (c *collection[T]) remove(ctx context.Context, id string, call func(context.Context) error) error {
	c.begin()
	err := call(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.finish("delete", err)
	if err != nil {
		return err
	}
	if i := c.indexOf(id); i >= 0 {
		c.items = append(c.items[:i:i], c.items[i+1:]...)
	}
	return nil
}

// patch applies change to the cached entity before calling the backend.
// On failure the entity captured before the change is put back if the cache
// still holds the optimistic copy. If something newer replaced it meanwhile,
// revert undoes only the change on top of that newer copy.
func (c *collection[T]) patch(ctx context.Context, id string, change func(T) T, revert func(current, before T) T, call func(context.Context) (T, error)) (T, error) {
	var zero T

	c.mu.Lock()
	i := c.indexOf(id)
	if i < 0 {
		c.mu.Unlock()
		return zero, ErrNotFound
	}
	snapshot := c.items[i]
	optimistic := change(snapshot)
	c.items[i] = optimistic
	c.inflight++
	c.errMsg = ""
	c.mu.Unlock()

	item, err := call(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.finish("patch", err)
	i = c.indexOf(id)
	if err != nil {
		if i >= 0 {
			if reflect.DeepEqual(c.items[i], optimistic) {
				c.items[i] = snapshot
			} else {
				c.items[i] = revert(c.items[i], snapshot)
			}
			c.log.Debug("rolled back optimistic change", "store", c.kind, "id", id)
		}
		return zero, err
	}
	if i >= 0 {
		c.items[i] = item
	}
	return item, nil
}
