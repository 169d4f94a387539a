package validation

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequired(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  bool
	}{
		{"nil", nil, false},
		{"empty string", "", false},
		{"zero", 0, true},
		{"zero float", 0.0, true},
		{"false", false, true},
		{"text", "x", true},
		{"empty map", map[string]any{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Required(tt.value))
		})
	}
}

func TestMinLength(t *testing.T) {
	tests := []struct {
		name  string
		value any
		n     int
		want  bool
	}{
		{"ascii long enough", "abcd", 3, true},
		{"ascii short", "ab", 3, false},
		{"runes not bytes", "héé", 3, true},
		{"slice", []any{1, 2, 3}, 3, true},
		{"short slice", []any{1}, 2, false},
		{"map", map[string]any{"a": 1}, 1, true},
		{"nil", nil, 1, false},
		{"number", 12345, 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MinLength(tt.value, tt.n))
		})
	}
}

func TestRulesCompose(t *testing.T) {
	t.Run("no rules", func(t *testing.T) {
		assert.Nil(t, Rules{}.Compose())
	})

	t.Run("required shorthand", func(t *testing.T) {
		check := Rules{Required: true, Label: "Name"}.Compose()
		require.NotNil(t, check)

		assert.Nil(t, check(0, false))
		assert.Equal(t, &Result{Rule: RuleRequired, Labels: []string{"Name"}}, check("", false))
		assert.Equal(t, &Result{Rule: RuleRequired, Labels: []string{"Name"}}, check(nil, true))
	})

	t.Run("min length shorthand", func(t *testing.T) {
		check := Rules{MinLength: 3}.Compose()

		assert.Nil(t, check("abc", false))
		assert.Equal(t, RuleMinLength, check("ab", false).Rule)
	})

	t.Run("validator error wins over shorthands", func(t *testing.T) {
		check := Rules{
			Required:  true,
			MinLength: 5,
			Validator: func(value any, submitting bool) *Result {
				return &Result{Rule: "custom"}
			},
		}.Compose()

		assert.Equal(t, "custom", check("", true).Rule)
	})

	t.Run("shorthands apply after passing validator", func(t *testing.T) {
		calls := 0
		check := Rules{
			Required:  true,
			MinLength: 2,
			Validator: func(value any, submitting bool) *Result {
				calls++
				return nil
			},
		}.Compose()

		assert.Equal(t, RuleRequired, check("", false).Rule)
		assert.Equal(t, RuleMinLength, check("a", false).Rule)
		assert.Nil(t, check("ab", false))
		assert.Equal(t, 3, calls)
	})

	t.Run("validator sees submitting flag", func(t *testing.T) {
		var seen []bool
		check := Rules{Validator: func(value any, submitting bool) *Result {
			seen = append(seen, submitting)
			return nil
		}}.Compose()

		check("x", false)
		check("x", true)
		assert.Equal(t, []bool{false, true}, seen)
	})
}

func TestResolve(t *testing.T) {
	form := Messages{
		RuleRequired: Text("form required"),
		"equal":      Text("values differ"),
	}
	field := Messages{
		RuleRequired: MessageFunc(func(labels []string) string {
			return fmt.Sprintf("%s required", strings.Join(labels, ","))
		}),
	}
	chain := MessageChain{}.With(form).With(field)

	t.Run("nil result", func(t *testing.T) {
		assert.Equal(t, "", Resolve(nil, chain))
	})

	t.Run("nearest scope wins", func(t *testing.T) {
		res := &Result{Rule: RuleRequired, Labels: []string{"f1"}}
		assert.Equal(t, "f1 required", Resolve(res, chain))
	})

	t.Run("falls back to ancestors", func(t *testing.T) {
		assert.Equal(t, "values differ", Resolve(&Result{Rule: "equal"}, chain))
	})

	t.Run("falls back to rule name", func(t *testing.T) {
		assert.Equal(t, "unknown", Resolve(&Result{Rule: "unknown"}, chain))
	})

	t.Run("describe keeps explicit message", func(t *testing.T) {
		res := &Result{Rule: "equal", Message: "b and c should be equal"}
		assert.Equal(t, "b and c should be equal", Describe(res, chain).Message)
	})

	t.Run("describe does not modify input", func(t *testing.T) {
		res := &Result{Rule: RuleRequired, Labels: []string{"f2"}}
		described := Describe(res, chain)
		assert.Equal(t, "f2 required", described.Message)
		assert.Empty(t, res.Message)
	})
}

func TestResultError(t *testing.T) {
	var err error = &Result{Rule: RuleRequired}
	assert.Equal(t, "required", err.Error())

	err = &Result{Rule: RuleRequired, Message: "please fill"}
	assert.Equal(t, "please fill", err.Error())
}
