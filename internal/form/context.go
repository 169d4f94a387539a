package form

import (
	"github.com/conneroisu/formstate/internal/pathops"
	"github.com/conneroisu/formstate/internal/registry"
	"github.com/conneroisu/formstate/internal/router"
	"github.com/conneroisu/formstate/internal/validation"
)

// Context is everything a field binding needs from the scope it lives in.
// Value returns the whole committed tree; fields read their own node from it
// with their absolute scope. OnChange takes absolute scopes as well.
type Context interface {
	Value() pathops.Tree
	OnChange(value any, scope pathops.Scope, cascade router.Cascade)
	Register(name string, handle registry.Validatable) (unregister func())
	EnqueueInitializer(scope pathops.Scope, value any)
	ResetError()
	ErrorMessages() validation.MessageChain
	Scope() pathops.Scope
}

// Registrar is the part of a registry a nested scope hands to its children.
type Registrar interface {
	Register(name string, handle registry.Validatable) (unregister func())
}

type childContext struct {
	Context
	scope    pathops.Scope
	reg      Registrar
	messages validation.MessageChain
}

// Child derives the context of a nested scope. Children register with reg
// instead of the parent's registry, and messages, when not nil, take
// precedence over the parent's chain.
func Child(parent Context, scope pathops.Scope, reg Registrar, messages validation.Messages) Context {
	return &childContext{
		Context:  parent,
		scope:    scope,
		reg:      reg,
		messages: parent.ErrorMessages().With(messages),
	}
}

func (c *childContext) Register(name string, handle registry.Validatable) func() {
	return c.reg.Register(name, handle)
}

func (c *childContext) ErrorMessages() validation.MessageChain { return c.messages }

func (c *childContext) Scope() pathops.Scope { return c.scope }
