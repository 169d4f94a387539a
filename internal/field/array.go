package field

import (
	"context"
	"strconv"
	"sync"

	formerrors "github.com/conneroisu/formstate/internal/errors"
	"github.com/conneroisu/formstate/internal/form"
	"github.com/conneroisu/formstate/internal/logging"
	"github.com/conneroisu/formstate/internal/pathops"
	"github.com/conneroisu/formstate/internal/registry"
	"github.com/conneroisu/formstate/internal/validation"
)

// ArrayOptions configures a sequence-valued scope.
type ArrayOptions struct {
	Name          string
	ErrorMessages validation.Messages
	Logger        logging.Logger
}

// Array is a sequence-valued scope. Every index gets an item slot with its
// own registry; slots are keyed by position, so after a removal the slot at
// index i holds whatever element is now at i and the trailing slot goes away.
type Array struct {
	parent     form.Context
	opts       ArrayOptions
	scope      pathops.Scope
	registry   *registry.Registry
	logger     logging.Logger
	unregister func()

	mutex sync.Mutex
	items []*Item
}

// Item is the slot for one index of an Array.
type Item struct {
	Index int

	array      *Array
	ctx        form.Context
	unregister func()
}

// NewArray opens an array scope under opts.Name in parent.
func NewArray(parent form.Context, opts ArrayOptions) *Array {
	scope := parent.Scope().AppendName(opts.Name)
	logger := logging.OrNop(opts.Logger).With("scope", scope.String())

	a := &Array{
		parent:   parent,
		opts:     opts,
		scope:    scope,
		registry: registry.New(logger),
		logger:   logger.WithComponent("array"),
	}
	a.unregister = parent.Register(opts.Name, a)
	return a
}

// Values returns the current elements. A node that is not a sequence is
// reported and treated as empty.
func (a *Array) Values() []any {
	v, ok := pathops.Get(a.parent.Value(), a.scope)
	if !ok || v == nil {
		return nil
	}
	values, isSeq := v.([]any)
	if !isSeq {
		a.logger.Warn(context.Background(),
			formerrors.NewMisuseError(formerrors.ErrCodeNotSequence, "array scope does not hold a sequence").
				WithScope(a.scope.String()),
			"Treating value as empty")
		return nil
	}
	return values
}

// Len returns the number of elements.
func (a *Array) Len() int { return len(a.Values()) }

// Items returns one slot per element, creating slots for new indices and
// dropping slots past the end.
func (a *Array) Items() []*Item {
	n := a.Len()

	a.mutex.Lock()
	defer a.mutex.Unlock()

	a.resizeLocked(n)
	out := make([]*Item, len(a.items))
	copy(out, a.items)
	return out
}

func (a *Array) resizeLocked(n int) {
	for len(a.items) > n {
		last := a.items[len(a.items)-1]
		last.unregister()
		a.items = a.items[:len(a.items)-1]
	}
	for i := len(a.items); i < n; i++ {
		a.items = append(a.items, a.newItem(i))
	}
}

func (a *Array) newItem(index int) *Item {
	scope := a.scope.Append(pathops.Index(index))
	reg := registry.New(a.logger)
	it := &Item{
		Index: index,
		array: a,
		ctx:   form.Child(a.parent, scope, reg, a.opts.ErrorMessages),
	}
	it.unregister = a.registry.Register(strconv.Itoa(index), reg)
	return it
}

// Remove deletes the element at index and commits the shorter sequence.
// Slots follow the committed tree: a controlled owner that declines the
// change keeps every slot, one that accepts it drops the trailing slot and
// every handle registered in it.
func (a *Array) Remove(index int) {
	values := a.Values()
	if index < 0 || index >= len(values) {
		return
	}
	next := make([]any, 0, len(values)-1)
	next = append(next, values[:index]...)
	next = append(next, values[index+1:]...)

	a.parent.OnChange(next, a.scope, nil)

	n := a.Len()
	a.mutex.Lock()
	a.resizeLocked(n)
	a.mutex.Unlock()
}

// Append adds v at the end and commits.
func (a *Array) Append(v any) {
	values := a.Values()
	next := make([]any, 0, len(values)+1)
	next = append(next, values...)
	next = append(next, v)

	a.parent.OnChange(next, a.scope, nil)
}

// Validate validates every item slot.
func (a *Array) Validate(submitting bool) *validation.Result {
	return a.registry.ValidateAll(submitting)
}

// Registry returns the registry holding the item registries, keyed by index.
func (a *Array) Registry() *registry.Registry { return a.registry }

// Unbind drops every slot and removes the array from its parent.
func (a *Array) Unbind() {
	a.mutex.Lock()
	a.resizeLocked(0)
	a.mutex.Unlock()

	a.unregister()
}

// Context is the context fields of this item bind to. A field bound with an
// empty name addresses the element itself.
func (it *Item) Context() form.Context { return it.ctx }

// Value returns the element.
func (it *Item) Value() any {
	return pathops.Lookup(it.ctx.Value(), it.ctx.Scope())
}

// Remove deletes this item's element from the array.
func (it *Item) Remove() {
	it.array.Remove(it.Index)
}
