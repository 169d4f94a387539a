// Package router computes the next value tree for an edit made at some scope
// and runs the edit's cascade, if any, inside the same transaction.
package router

import (
	"context"
	"slices"
	"strconv"
	"sync"

	formerrors "github.com/conneroisu/formstate/internal/errors"
	"github.com/conneroisu/formstate/internal/logging"
	"github.com/conneroisu/formstate/internal/pathops"
)

// Patch merges partial into the edited field's parent mapping and, when
// removeKey is not empty, removes the node at that '.'-joined path relative
// to the same parent.
type Patch func(partial map[string]any, removeKey string)

// Cascade runs after a field edit and may derive sibling values through
// patch. previous is the tree as it was before the edit. A cascade must not
// call back into the form.
type Cascade func(value any, patch Patch, previous pathops.Tree)

// Router applies edits. It holds no tree state of its own.
type Router struct {
	logger logging.Logger
}

// New creates a router. A nil logger discards misuse warnings.
func New(logger logging.Logger) *Router {
	return &Router{logger: logging.OrNop(logger).WithComponent("router")}
}

// Apply writes edited at scope and folds the cascade's patches on top. The
// returned tree is the one to commit; current is never modified.
func (r *Router) Apply(current pathops.Tree, edited any, scope pathops.Scope, cascade Cascade) pathops.Tree {
	next := pathops.Set(current, scope, edited)
	if cascade == nil {
		return next
	}

	b := &builder{
		base:   next,
		parent: scope.Parent(),
		scope:  scope,
		logger: r.logger,
	}
	cascade(edited, b.patch, current)
	return b.close()
}

type stagedWrite struct {
	partial map[string]any
	remove  pathops.Scope
}

// builder collects a cascade's patch calls as pending writes against the
// post-edit tree and folds them in call order once the cascade returns.
type builder struct {
	base   pathops.Tree
	parent pathops.Scope
	scope  pathops.Scope
	logger logging.Logger

	mu     sync.Mutex
	writes []stagedWrite
	closed bool
}

func (b *builder) patch(partial map[string]any, removeKey string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		b.logger.Warn(context.Background(), formerrors.ErrPatchClosed(b.scope.String()),
			"Ignoring patch outside its cascade", "scope", b.scope.String())
		return
	}

	w := stagedWrite{partial: partial}
	if removeKey != "" {
		w.remove = pathops.ParseScope(removeKey)
	}
	b.writes = append(b.writes, w)
}

func (b *builder) close() pathops.Tree {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	tree := b.base
	for _, w := range b.writes {
		tree = b.mergeAt(tree, w.partial)
		if len(w.remove) > 0 {
			tree = pathops.Remove(tree, b.parent.Concat(w.remove))
		}
	}
	return tree
}

// mergeAt merges partial into the parent node. A sequence parent receives
// the entries in index order so it stays a sequence; a key is written only
// when it addresses an element or the position right after the last one.
func (b *builder) mergeAt(tree pathops.Tree, partial map[string]any) pathops.Tree {
	if len(partial) == 0 {
		return tree
	}
	node, _ := pathops.Get(tree, b.parent)
	seq, ok := node.([]any)
	if !ok {
		return pathops.Merge(tree, b.parent, partial)
	}

	type element struct {
		index int
		value any
	}
	elems := make([]element, 0, len(partial))
	for k, v := range partial {
		i, err := strconv.Atoi(k)
		if err != nil || i < 0 {
			b.logger.Warn(context.Background(), formerrors.ErrIndexOutOfRange(b.parent.String(), k, len(seq)),
				"Ignoring patch key on a sequence", "key", k)
			continue
		}
		elems = append(elems, element{index: i, value: v})
	}
	slices.SortFunc(elems, func(x, y element) int { return x.index - y.index })

	n := len(seq)
	for _, e := range elems {
		if e.index > n {
			b.logger.Warn(context.Background(), formerrors.ErrIndexOutOfRange(b.parent.String(), strconv.Itoa(e.index), n),
				"Ignoring patch key on a sequence", "key", e.index)
			continue
		}
		tree = pathops.Set(tree, b.parent.Append(pathops.Index(e.index)), e.value)
		if e.index == n {
			n++
		}
	}
	return tree
}
