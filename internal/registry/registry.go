// Package registry keeps the validatable handles registered within one scope
// of a form.
//
// Every scope level owns its own Registry. A nested scope registers its own
// child Registry in its parent under the scope name, so a submit fans out
// through an explicit ownership tree instead of a flat global map.
package registry

import (
	"context"
	"slices"
	"sync"

	formerrors "github.com/conneroisu/formstate/internal/errors"
	"github.com/conneroisu/formstate/internal/logging"
	"github.com/conneroisu/formstate/internal/validation"
)

// Validatable is anything that can be validated on demand.
type Validatable interface {
	Validate(submitting bool) *validation.Result
}

// ValidatorFunc adapts a function to Validatable.
type ValidatorFunc func(submitting bool) *validation.Result

// Validate calls f.
func (f ValidatorFunc) Validate(submitting bool) *validation.Result {
	return f(submitting)
}

type entry struct {
	name   string
	handle Validatable
}

// Registry maps field names to handles, in registration order.
type Registry struct {
	entries []*entry
	byName  map[string]*entry
	logger  logging.Logger
	mutex   sync.RWMutex
}

// New creates an empty registry. A nil logger discards warnings.
func New(logger logging.Logger) *Registry {
	return &Registry{
		entries: make([]*entry, 0),
		byName:  make(map[string]*entry),
		logger:  logging.OrNop(logger).WithComponent("registry"),
	}
}

// Register adds handle under name and returns the function that removes it.
// Registering a name that is still live logs a warning and replaces the old
// handle at its position in the scan order; the replaced handle's unregister
// function becomes a no-op.
func (r *Registry) Register(name string, handle Validatable) func() {
	e := &entry{name: name, handle: handle}

	r.mutex.Lock()
	if old, exists := r.byName[name]; exists {
		r.entries[slices.Index(r.entries, old)] = e
		r.logger.Warn(context.Background(), formerrors.ErrDuplicateRegistration(name),
			"Duplicate field registration", "name", name)
	} else {
		r.entries = append(r.entries, e)
	}
	r.byName[name] = e
	r.mutex.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mutex.Lock()
			defer r.mutex.Unlock()
			if r.byName[name] == e {
				r.removeLocked(e)
			}
		})
	}
}

func (r *Registry) removeLocked(e *entry) {
	delete(r.byName, e.name)
	for i, cur := range r.entries {
		if cur == e {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return
		}
	}
}

// Get retrieves a handle by name
func (r *Registry) Get(name string) (Validatable, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	e, exists := r.byName[name]
	if !exists {
		return nil, false
	}
	return e.handle, true
}

// Names returns the registered names in scan order.
func (r *Registry) Names() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	names := make([]string, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.name
	}
	return names
}

// Count returns the number of registered handles
func (r *Registry) Count() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return len(r.entries)
}

// ValidateAll calls Validate on every handle in registration order and
// returns the last non-nil result. It never stops early: validating also
// refreshes each field's own displayed error. Handles run outside the lock,
// so a handle may itself be a Registry.
func (r *Registry) ValidateAll(submitting bool) *validation.Result {
	r.mutex.RLock()
	handles := make([]Validatable, len(r.entries))
	for i, e := range r.entries {
		handles[i] = e.handle
	}
	r.mutex.RUnlock()

	var last *validation.Result
	for _, h := range handles {
		if res := h.Validate(submitting); res != nil {
			last = res
		}
	}
	return last
}

// Validate makes a Registry usable as a handle in its parent.
func (r *Registry) Validate(submitting bool) *validation.Result {
	return r.ValidateAll(submitting)
}
