// Package field binds inputs to a form scope. A Field is the engine side of
// one input; Group and Array open nested scopes with their own registries.
package field

import (
	"context"
	"sync"

	formerrors "github.com/conneroisu/formstate/internal/errors"
	"github.com/conneroisu/formstate/internal/form"
	"github.com/conneroisu/formstate/internal/logging"
	"github.com/conneroisu/formstate/internal/pathops"
	"github.com/conneroisu/formstate/internal/router"
	"github.com/conneroisu/formstate/internal/validation"
)

// Options configures a field binding.
type Options struct {
	Name      string
	Label     string
	Required  bool
	MinLength int
	Validator validation.Func

	// ErrorMessages take precedence over every enclosing scope's messages.
	ErrorMessages validation.Messages

	// InitValue is displayed while the field's value is undefined and is
	// written into the tree by the next initializer flush.
	InitValue any
	Disabled  bool

	// Parse converts an input value before it is written; Format converts
	// the stored value for display.
	Parse  func(any) any
	Format func(any) any

	// Deprecated: use Parse. Ignored when Parse is set.
	Interceptor func(any) any

	// Cascade runs after every change of this field.
	Cascade router.Cascade

	Logger logging.Logger
}

// Field is a bound input.
type Field struct {
	ctx    form.Context
	opts   Options
	scope  pathops.Scope
	check  validation.Func
	parse  func(any) any
	logger logging.Logger

	mutex      sync.Mutex
	prev       any
	err        *validation.Result
	disabled   bool
	unregister func()
}

// Bind registers a field under opts.Name in ctx. When the field's value is
// undefined and InitValue is set, an initializer is enqueued.
func Bind(ctx form.Context, opts Options) *Field {
	logger := logging.OrNop(opts.Logger).WithComponent("field")
	scope := ctx.Scope().AppendName(opts.Name)

	f := &Field{
		ctx:      ctx,
		opts:     opts,
		scope:    scope,
		logger:   logger.With("scope", scope.String()),
		disabled: opts.Disabled,
		check: validation.Rules{
			Required:  opts.Required,
			MinLength: opts.MinLength,
			Validator: opts.Validator,
			Label:     opts.Label,
		}.Compose(),
	}
	f.parse = f.parser()

	if opts.InitValue != nil && !defined(ctx.Value(), scope) {
		ctx.EnqueueInitializer(scope, opts.InitValue)
	}
	f.prev = f.target()
	f.unregister = ctx.Register(opts.Name, f)
	return f
}

func (f *Field) parser() func(any) any {
	ctx := context.Background()
	switch {
	case f.opts.Parse != nil && f.opts.Interceptor != nil:
		f.logger.Warn(ctx, formerrors.NewMisuseError(formerrors.ErrCodeConflictingOptions,
			"Parse and Interceptor are both set, Interceptor is ignored"), "Conflicting field options")
		return f.opts.Parse
	case f.opts.Interceptor != nil:
		f.logger.Warn(ctx, formerrors.ErrDeprecatedOption("Interceptor", "Parse"), "Deprecated field option")
		return f.opts.Interceptor
	case f.opts.Parse != nil:
		return f.opts.Parse
	default:
		return func(v any) any { return v }
	}
}

func defined(tree pathops.Tree, scope pathops.Scope) bool {
	v, ok := pathops.Get(tree, scope)
	return ok && v != nil
}

// target is the stored value, or InitValue while that is undefined.
func (f *Field) target() any {
	if v, ok := pathops.Get(f.ctx.Value(), f.scope); ok && v != nil {
		return v
	}
	return f.opts.InitValue
}

// Validate implements registry.Validatable. The field is only re-checked
// when its value changed since the previous call or when submitting;
// otherwise the stored error is returned.
func (f *Field) Validate(submitting bool) *validation.Result {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	if f.disabled {
		f.err = nil
		return nil
	}

	target := f.target()
	if submitting || !pathops.Same(target, f.prev) {
		f.err = nil
		if f.check != nil {
			f.err = f.check(target, submitting)
		}
	}
	f.prev = target
	return f.err
}

// Change writes v, after Parse, at the field's scope.
func (f *Field) Change(v any) {
	f.ctx.OnChange(f.parse(v), f.scope, f.opts.Cascade)
}

// Value returns the display value.
func (f *Field) Value() any {
	if f.opts.Format != nil {
		return f.opts.Format(f.target())
	}
	return f.target()
}

// Raw returns the stored value without Format.
func (f *Field) Raw() any { return f.target() }

// Error returns the current error with its message resolved, or nil.
func (f *Field) Error() *validation.Result {
	f.mutex.Lock()
	err := f.err
	f.mutex.Unlock()

	return validation.Describe(err, f.ctx.ErrorMessages().With(f.opts.ErrorMessages))
}

// SetDisabled toggles the field. Disabling clears its error.
func (f *Field) SetDisabled(disabled bool) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	f.disabled = disabled
	if disabled {
		f.err = nil
	}
}

// Disabled reports whether the field is disabled.
func (f *Field) Disabled() bool {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.disabled
}

// ResetError clears the form's top-level error, typically on focus.
func (f *Field) ResetError() { f.ctx.ResetError() }

// ID is the scope joined with '.'.
func (f *Field) ID() string { return f.scope.String() }

func (f *Field) Scope() pathops.Scope { return f.scope }
func (f *Field) Label() string        { return f.opts.Label }
func (f *Field) Required() bool       { return f.opts.Required }

// Unbind removes the field from its registry.
func (f *Field) Unbind() {
	f.unregister()
}
