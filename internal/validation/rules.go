// Package validation provides the built-in field rules, the validator result
// type shared by fields, registries and forms, and error message resolution.
//
// Validators are opaque functions supplied by the caller. The package only
// knows two shorthand rules, required and minLength, and how to combine them
// with a caller validator into one effective check.
package validation

import (
	"reflect"
	"unicode/utf8"
)

// Built-in rule names.
const (
	RuleRequired  = "required"
	RuleMinLength = "minLength"
)

// Result describes one failed validation. A nil *Result means the value is
// valid.
type Result struct {
	Rule    string   `json:"rule" yaml:"rule"`
	Labels  []string `json:"labels,omitempty" yaml:"labels,omitempty"`
	Message string   `json:"message,omitempty" yaml:"message,omitempty"`
}

// Error implements the error interface so results can travel through error
// handling paths unchanged.
func (r *Result) Error() string {
	if r.Message != "" {
		return r.Message
	}
	return r.Rule
}

// Func validates a value. submitting is true when the check runs as part of
// a submit rather than after an edit.
type Func func(value any, submitting bool) *Result

// Required reports whether v counts as present: anything except nil and the
// empty string. Zero numbers and false are present.
func Required(v any) bool {
	if v == nil {
		return false
	}
	if s, ok := v.(string); ok {
		return s != ""
	}
	return true
}

// MinLength reports whether v has at least n elements. Strings count runes;
// slices, arrays and maps count entries. Values without a length fail.
func MinLength(v any, n int) bool {
	if s, ok := v.(string); ok {
		return utf8.RuneCountInString(s) >= n
	}
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.String:
		return rv.Len() >= n
	default:
		return false
	}
}

// Rules is the shorthand rule set a field declares.
type Rules struct {
	Required  bool
	MinLength int
	Validator Func
	Label     string
}

// Empty reports whether no rule is configured.
func (r Rules) Empty() bool {
	return !r.Required && r.MinLength <= 0 && r.Validator == nil
}

// Compose builds the effective validator. The caller validator runs first;
// required and minLength only apply while no error has been produced. Compose
// returns nil when there is nothing to check.
func (r Rules) Compose() Func {
	if r.Empty() {
		return nil
	}
	return func(value any, submitting bool) *Result {
		var res *Result
		if r.Validator != nil {
			res = r.Validator(value, submitting)
		}
		if res == nil && r.Required && !Required(value) {
			res = &Result{Rule: RuleRequired, Labels: []string{r.Label}}
		}
		if res == nil && r.MinLength > 0 && !MinLength(value, r.MinLength) {
			res = &Result{Rule: RuleMinLength, Labels: []string{r.Label}}
		}
		return res
	}
}

// Clone returns a copy of r that shares nothing with the original.
func (r *Result) Clone() *Result {
	if r == nil {
		return nil
	}
	out := *r
	if r.Labels != nil {
		out.Labels = append([]string(nil), r.Labels...)
	}
	return &out
}
