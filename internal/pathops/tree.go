package pathops

import (
	"fmt"
	"reflect"
)

// Tree is a value tree: map[string]any and []any containers with scalar
// leaves. Any other container type is treated as a leaf.
type Tree = any

// Get returns the value at scope. The boolean is false when any segment of
// the path does not exist; Get never fails on a missing intermediate node.
func Get(tree Tree, scope Scope) (any, bool) {
	cur := tree
	for _, k := range scope {
		next, ok := child(cur, k)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// Lookup is Get without the presence flag.
func Lookup(tree Tree, scope Scope) any {
	v, _ := Get(tree, scope)
	return v
}

// Set returns a new tree with value written at scope. The empty scope
// replaces the whole tree. Missing intermediate containers are created: maps
// for field keys, sequences for index keys.
func Set(tree Tree, scope Scope, value any) Tree {
	if len(scope) == 0 {
		return value
	}
	k := scope[0]
	cur, _ := child(tree, k)
	return with(tree, k, Set(cur, scope[1:], value))
}

// Merge shallow-merges partial into the mapping at scope and returns the new
// tree. When the node at scope is absent or not a mapping, a new mapping is
// created there.
func Merge(tree Tree, scope Scope, partial map[string]any) Tree {
	frag, _ := Get(tree, scope)
	base, _ := frag.(map[string]any)
	out := make(map[string]any, len(base)+len(partial))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range partial {
		out[k] = v
	}
	return Set(tree, scope, out)
}

// Remove returns a new tree without the node at scope. Sequence elements are
// spliced out, so later elements are renumbered. Removing a path that does
// not exist returns tree unchanged. Removing the root yields nil.
func Remove(tree Tree, scope Scope) Tree {
	if len(scope) == 0 {
		return nil
	}
	k := scope[0]
	cur, ok := child(tree, k)
	if !ok {
		return tree
	}
	if len(scope) == 1 {
		return without(tree, k)
	}
	return with(tree, k, Remove(cur, scope[1:]))
}

// DeepMerge overlays one tree on another. Nested mappings are merged key by
// key with the overlay winning; any other value in the overlay replaces the
// base value. A nil overlay leaves the base as is.
func DeepMerge(base, overlay Tree) Tree {
	if overlay == nil {
		return base
	}
	bm, ok := base.(map[string]any)
	if !ok {
		return overlay
	}
	om, ok := overlay.(map[string]any)
	if !ok {
		return overlay
	}
	out := make(map[string]any, len(bm)+len(om))
	for k, v := range bm {
		out[k] = v
	}
	for k, v := range om {
		if prev, exists := out[k]; exists && v != nil {
			out[k] = DeepMerge(prev, v)
			continue
		}
		out[k] = v
	}
	return out
}

// Same reports whether a and b are the same value. Containers compare by
// identity, which is what structural sharing preserves across commits; an
// unchanged subtree is Same before and after an unrelated write.
func Same(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	switch va.Kind() {
	case reflect.Map, reflect.Slice:
		return va.Len() == vb.Len() && va.UnsafePointer() == vb.UnsafePointer()
	case reflect.Func:
		return false
	}
	if va.Type().Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}

func child(node Tree, k Key) (any, bool) {
	switch c := node.(type) {
	case map[string]any:
		v, ok := c[k.String()]
		return v, ok
	case []any:
		i, ok := k.index()
		if !ok || i >= len(c) {
			return nil, false
		}
		return c[i], true
	default:
		return nil, false
	}
}

// with returns a shallow copy of node with k set to v. A node that cannot
// hold k is replaced by a fresh container.
func with(node Tree, k Key, v any) Tree {
	switch c := node.(type) {
	case map[string]any:
		out := make(map[string]any, len(c)+1)
		for key, val := range c {
			out[key] = val
		}
		out[k.String()] = v
		return out
	case []any:
		if i, ok := k.index(); ok {
			n := len(c)
			if i >= n {
				n = i + 1
			}
			out := make([]any, n)
			copy(out, c)
			out[i] = v
			return out
		}
	}
	if k.IsIndex && k.Index >= 0 {
		out := make([]any, k.Index+1)
		out[k.Index] = v
		return out
	}
	return map[string]any{k.String(): v}
}

func without(node Tree, k Key) Tree {
	switch c := node.(type) {
	case map[string]any:
		out := make(map[string]any, len(c))
		for key, val := range c {
			if key != k.String() {
				out[key] = val
			}
		}
		return out
	case []any:
		i, _ := k.index()
		out := make([]any, 0, len(c)-1)
		out = append(out, c[:i]...)
		return append(out, c[i+1:]...)
	default:
		return node
	}
}

func toString(v any) string {
	return fmt.Sprint(v)
}
