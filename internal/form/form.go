// Package form implements the form controller: it owns or proxies the value
// tree, routes edits through the change router, commits them, and runs
// validation across the registered fields.
package form

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	formerrors "github.com/conneroisu/formstate/internal/errors"
	"github.com/conneroisu/formstate/internal/initqueue"
	"github.com/conneroisu/formstate/internal/logging"
	"github.com/conneroisu/formstate/internal/pathops"
	"github.com/conneroisu/formstate/internal/registry"
	"github.com/conneroisu/formstate/internal/router"
	"github.com/conneroisu/formstate/internal/validation"
)

type snapshot struct {
	tree pathops.Tree
}

// Form is a form instance. Write operations are serialized by a mutex and
// each one is committed as a unit; reads are lock free. Validators and
// cascades run while the mutex is held and must not call back into the
// form. Host callbacks run after it is released.
type Form struct {
	id       string
	opts     Options
	control  *Controlled
	logger   logging.Logger
	registry *registry.Registry
	router   *router.Router
	queue    *initqueue.Queue
	messages validation.MessageChain

	mutex sync.Mutex
	data  atomic.Pointer[snapshot]
	err   atomic.Pointer[validation.Result]
	state atomic.Int32
}

// New creates a form for source.
func New(source Source, opts Options) *Form {
	id := uuid.NewString()
	logger := logging.OrNop(opts.Logger).With("form_id", id)

	f := &Form{
		id:       id,
		opts:     opts,
		logger:   logger.WithComponent("form"),
		registry: registry.New(logger),
		router:   router.New(logger),
		messages: validation.MessageChain{}.With(opts.ErrorMessages),
	}
	f.queue = initqueue.New(opts.Scheduler, f.flush)

	var initial pathops.Tree
	switch s := source.(type) {
	case Controlled:
		f.control = &s
		initial = s.Value
	case *Controlled:
		f.control = s
		initial = s.Value
	case Uncontrolled:
		initial = s.InitValue
	case *Uncontrolled:
		initial = s.InitValue
	}
	f.store(pathops.DeepMerge(opts.DefaultValue, initial))
	f.state.Store(int32(Idle))

	f.logger.Debug(context.Background(), "Form created", "controlled", f.control != nil)
	return f
}

// ID returns the form's instance id.
func (f *Form) ID() string { return f.id }

// Controlled reports whether an external owner holds the tree.
func (f *Form) Controlled() bool { return f.control != nil }

// State returns the current lifecycle state.
func (f *Form) State() State { return State(f.state.Load()) }

// Data returns the committed tree.
func (f *Form) Data() pathops.Tree {
	if s := f.data.Load(); s != nil {
		return s.tree
	}
	return nil
}

// ErrorResult returns the top-level error, or nil.
func (f *Form) ErrorResult() *validation.Result {
	return f.err.Load()
}

// Error returns the display text of the top-level error, "" when there is
// none.
func (f *Form) Error() string {
	return validation.Resolve(f.err.Load(), f.messages)
}

// ResetError clears the top-level error.
func (f *Form) ResetError() {
	f.err.Store(nil)
}

// Registry returns the root registry of field handles.
func (f *Form) Registry() *registry.Registry { return f.registry }

// Context returns the field-facing view of the form's root scope.
func (f *Form) Context() Context { return rootContext{f} }

// OnChange applies an edit at scope, runs its cascade and commits the result.
func (f *Form) OnChange(value any, scope pathops.Scope, cascade router.Cascade) {
	f.update(func(current pathops.Tree) pathops.Tree {
		return f.router.Apply(current, value, scope, cascade)
	})
}

// Change replaces the whole tree.
func (f *Form) Change(value pathops.Tree) {
	f.OnChange(value, pathops.Root, nil)
}

// ChangeFunc replaces the tree with update(current).
func (f *Form) ChangeFunc(update func(current pathops.Tree) pathops.Tree) {
	f.update(update)
}

// Patch deep-merges partial into the tree at the root.
func (f *Form) Patch(partial map[string]any) {
	f.update(func(current pathops.Tree) pathops.Tree {
		return pathops.DeepMerge(current, partial)
	})
}

func (f *Form) update(next func(current pathops.Tree) pathops.Tree) {
	notify := f.edit(next)
	notify()
}

func (f *Form) edit(next func(current pathops.Tree) pathops.Tree) func() {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	f.state.Store(int32(Editing))
	return f.commitLocked(next(f.Data()))
}

// SetValue hands the form the external owner's current tree. The displayed
// tree is DefaultValue overlaid with external, recomputed on every call.
// Uncontrolled forms ignore it.
func (f *Form) SetValue(external pathops.Tree) {
	if f.control == nil {
		f.logger.Warn(context.Background(),
			formerrors.NewMisuseError(formerrors.ErrCodeConflictingOptions, "SetValue called on an uncontrolled form"),
			"Ignoring external value")
		return
	}

	f.mutex.Lock()
	defer f.mutex.Unlock()

	f.store(pathops.DeepMerge(f.opts.DefaultValue, external))
	f.registry.ValidateAll(false)
	f.state.Store(int32(Idle))
}

// Validate runs every field handle and, when none failed, the form
// validator. The result becomes the top-level error.
func (f *Form) Validate(submitting bool) *validation.Result {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	return f.validateLocked(submitting)
}

// Submit validates with submitting set and calls OnSubmit with the committed
// tree when there is no error anywhere.
func (f *Form) Submit() *validation.Result {
	res, tree := f.submit()
	if res == nil && f.opts.OnSubmit != nil {
		f.opts.OnSubmit(tree)
	}
	return res
}

func (f *Form) submit() (*validation.Result, pathops.Tree) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	f.state.Store(int32(Submitting))
	defer f.state.Store(int32(Idle))

	res := f.validateLocked(true)
	if res != nil {
		f.logger.Debug(context.Background(), "Submit rejected", "rule", res.Rule)
	}
	return res, f.Data()
}

func (f *Form) validateLocked(submitting bool) *validation.Result {
	res := f.registry.ValidateAll(submitting)
	if res == nil && f.opts.Validator != nil {
		res = f.opts.Validator(f.Data())
	}
	f.err.Store(res)
	return res
}

func (f *Form) flush() {
	notify := f.flushInitializers()
	notify()
}

func (f *Form) flushInitializers() func() {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	next, changed := f.queue.Flush(f.Data())
	if !changed {
		return func() {}
	}
	f.logger.Debug(context.Background(), "Initial values flushed")
	return f.commitLocked(next)
}

// commitLocked makes next the committed tree, or proposes it to the
// external owner, and returns the host notification to run unlocked.
func (f *Form) commitLocked(next pathops.Tree) func() {
	if f.control != nil {
		onChange := f.control.OnChange
		return func() {
			if onChange != nil {
				onChange(next)
			}
		}
	}

	f.store(next)
	f.registry.ValidateAll(false)
	f.state.Store(int32(Idle))
	return func() {}
}

func (f *Form) store(tree pathops.Tree) {
	f.data.Store(&snapshot{tree: tree})
}

type rootContext struct {
	f *Form
}

func (c rootContext) Value() pathops.Tree { return c.f.Data() }

func (c rootContext) OnChange(value any, scope pathops.Scope, cascade router.Cascade) {
	c.f.OnChange(value, scope, cascade)
}

func (c rootContext) Register(name string, handle registry.Validatable) func() {
	return c.f.registry.Register(name, handle)
}

func (c rootContext) EnqueueInitializer(scope pathops.Scope, value any) {
	c.f.queue.Enqueue(scope, value)
}

func (c rootContext) ResetError() { c.f.ResetError() }

func (c rootContext) ErrorMessages() validation.MessageChain { return c.f.messages }

func (c rootContext) Scope() pathops.Scope { return pathops.Root }
