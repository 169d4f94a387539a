// Package pathops reads and writes values inside a tree of nested
// map[string]any and []any containers.
//
// Every write is copy-on-write: only the containers on the path from the root
// to the written position are cloned, everything else is shared by reference
// with the input tree. The input tree is never mutated.
package pathops

import (
	"strconv"
	"strings"
)

// Key is a single segment of a Scope. It addresses either a map key or a
// sequence index.
type Key struct {
	Name    string
	Index   int
	IsIndex bool
}

// Field returns a key addressing a map entry.
func Field(name string) Key {
	return Key{Name: name}
}

// Index returns a key addressing a sequence element.
func Index(i int) Key {
	return Key{Index: i, IsIndex: true}
}

// String returns the key as it appears in a '.'-joined scope.
func (k Key) String() string {
	if k.IsIndex {
		return strconv.Itoa(k.Index)
	}
	return k.Name
}

// index reports the sequence position a key refers to. Name keys made of
// digits address sequences too, so "items.0" works on a []any.
func (k Key) index() (int, bool) {
	if k.IsIndex {
		return k.Index, k.Index >= 0
	}
	i, err := strconv.Atoi(k.Name)
	if err != nil || i < 0 {
		return 0, false
	}
	return i, true
}

// Scope is an ordered key path locating a node in a tree. The empty scope
// addresses the whole tree.
type Scope []Key

// Root is the empty scope.
var Root = Scope{}

// NewScope builds a scope from keys. Strings become field keys and ints
// become index keys; any other type is formatted as a field key.
func NewScope(keys ...any) Scope {
	scope := make(Scope, 0, len(keys))
	for _, k := range keys {
		switch v := k.(type) {
		case Key:
			scope = append(scope, v)
		case string:
			scope = append(scope, Field(v))
		case int:
			scope = append(scope, Index(v))
		default:
			scope = append(scope, Field(toString(v)))
		}
	}
	return scope
}

// ParseScope splits a '.'-joined path. Segments made of digits become index
// keys. An empty string yields the root scope.
func ParseScope(path string) Scope {
	if path == "" {
		return Scope{}
	}
	parts := strings.Split(path, ".")
	scope := make(Scope, 0, len(parts))
	for _, part := range parts {
		if i, err := strconv.Atoi(part); err == nil && i >= 0 {
			scope = append(scope, Index(i))
			continue
		}
		scope = append(scope, Field(part))
	}
	return scope
}

// Append returns a new scope with key added. The receiver is not modified.
func (s Scope) Append(k Key) Scope {
	out := make(Scope, len(s), len(s)+1)
	copy(out, s)
	return append(out, k)
}

// AppendName appends a field key for name. An empty name refers to the same
// node, so the scope is returned unchanged.
func (s Scope) AppendName(name string) Scope {
	if name == "" {
		return s
	}
	return s.Append(Field(name))
}

// Concat returns s followed by other.
func (s Scope) Concat(other Scope) Scope {
	out := make(Scope, 0, len(s)+len(other))
	out = append(out, s...)
	return append(out, other...)
}

// Parent drops the last key. The root scope is its own parent.
func (s Scope) Parent() Scope {
	if len(s) == 0 {
		return s
	}
	out := make(Scope, len(s)-1)
	copy(out, s[:len(s)-1])
	return out
}

// IsRoot reports whether s addresses the whole tree.
func (s Scope) IsRoot() bool {
	return len(s) == 0
}

// Equal reports whether both scopes resolve to the same position.
func (s Scope) Equal(other Scope) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i].String() != other[i].String() {
			return false
		}
	}
	return true
}

// String joins the keys with '.'.
func (s Scope) String() string {
	parts := make([]string, len(s))
	for i, k := range s {
		parts[i] = k.String()
	}
	return strings.Join(parts, ".")
}
