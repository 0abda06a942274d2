// Package mount holds process-wide resources outside of any view.
//
// Views come and go with route transitions; the engine, the analysis node,
// the widget host and the coordinator are created once, on first use, and
// stay mounted until the process exits.
package mount

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"
)

// Slot lazily creates a single value.
type Slot[T any] struct {
	once   sync.Once
	value  T
	err    error
	loaded bool
}

// Get returns the slot's value, calling init on first use only. A failed
// init is not retried.
func (s *Slot[T]) Get(init func() (T, error)) (T, error) {
	s.once.Do(func() {
		s.value, s.err = init()
		s.loaded = s.err == nil
	})
	return s.value, s.err
}

// Registry is a set of named slots, released in reverse mount order.
type Registry struct {
	mu    sync.Mutex
	slots map[string]any
	order []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{slots: make(map[string]any)}
}

func slotFor[T any](r *Registry, name string) (*Slot[T], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.slots[name]; ok {
		s, ok := existing.(*Slot[T])
		if !ok {
			return nil, fmt.Errorf("mount %q: type mismatch", name)
		}
		return s, nil
	}
	s := &Slot[T]{}
	r.slots[name] = s
	r.order = append(r.order, name)
	return s, nil
}

// Get returns the resource mounted under name in r, creating it with init
// on first use.
func Get[T any](r *Registry, name string, init func() (T, error)) (T, error) {
	s, err := slotFor[T](r, name)
	if err != nil {
		var zero T
		return zero, err
	}
	return s.Get(init)
}

// Names returns the mounted resource names, in mount order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.order)
}

// Close releases every mounted resource implementing io.Closer, last
// mounted first, and empties the registry.
func (r *Registry) Close() error {
	r.mu.Lock()
	order := r.order
	slots := r.slots
	r.order = nil
	r.slots = make(map[string]any)
	r.mu.Unlock()

	var errs []error
	for _, name := range slices.Backward(order) {
		if c, ok := slotValue(slots[name]).(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("unmount %s: %w", name, err))
			}
		}
	}
	return errors.Join(errs...)
}

// valuer is implemented by every Slot.
type valuer interface {
	current() (any, bool)
}

func (s *Slot[T]) current() (any, bool) {
	return s.value, s.loaded
}

func slotValue(slot any) any {
	v, ok := slot.(valuer)
	if !ok {
		return nil
	}
	value, loaded := v.current()
	if !loaded {
		return nil
	}
	return value
}

var global = NewRegistry()

// Global returns the process registry.
func Global() *Registry {
	return global
}
