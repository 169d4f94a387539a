package field

import (
	"sync"

	"github.com/conneroisu/formstate/internal/form"
	"github.com/conneroisu/formstate/internal/logging"
	"github.com/conneroisu/formstate/internal/pathops"
	"github.com/conneroisu/formstate/internal/registry"
	"github.com/conneroisu/formstate/internal/validation"
)

// GroupOptions configures a nested scope.
type GroupOptions struct {
	Name          string
	Validator     validation.Func
	ErrorMessages validation.Messages
	Logger        logging.Logger
}

// Group is a mapping-valued scope whose children register with the group's
// own registry. The group registers itself with its parent.
type Group struct {
	ctx        form.Context
	parent     form.Context
	opts       GroupOptions
	scope      pathops.Scope
	registry   *registry.Registry
	unregister func()

	mutex sync.Mutex
	err   *validation.Result
}

// NewGroup opens a group under opts.Name in parent.
func NewGroup(parent form.Context, opts GroupOptions) *Group {
	scope := parent.Scope().AppendName(opts.Name)
	reg := registry.New(logging.OrNop(opts.Logger).With("scope", scope.String()))

	g := &Group{
		parent:   parent,
		opts:     opts,
		scope:    scope,
		registry: reg,
		ctx:      form.Child(parent, scope, reg, opts.ErrorMessages),
	}
	g.unregister = parent.Register(opts.Name, g)
	return g
}

// Context is the context children of the group bind to.
func (g *Group) Context() form.Context { return g.ctx }

// Value returns the group's subtree.
func (g *Group) Value() any {
	return pathops.Lookup(g.parent.Value(), g.scope)
}

// Change replaces the group's subtree.
func (g *Group) Change(v any) {
	g.parent.OnChange(v, g.scope, nil)
}

// Validate runs every child, then the group validator on the subtree. The
// group's own error wins over the children's.
func (g *Group) Validate(submitting bool) *validation.Result {
	res := g.registry.ValidateAll(submitting)

	var own *validation.Result
	if g.opts.Validator != nil {
		own = g.opts.Validator(g.Value(), submitting)
	}

	g.mutex.Lock()
	g.err = own
	g.mutex.Unlock()

	if own != nil {
		return own
	}
	return res
}

// Error returns the group validator's error with its message resolved.
func (g *Group) Error() *validation.Result {
	g.mutex.Lock()
	err := g.err
	g.mutex.Unlock()

	return validation.Describe(err, g.ctx.ErrorMessages())
}

// Unbind removes the group from its parent.
func (g *Group) Unbind() {
	g.unregister()
}
