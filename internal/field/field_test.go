package field

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	formerrors "github.com/conneroisu/formstate/internal/errors"
	"github.com/conneroisu/formstate/internal/form"
	"github.com/conneroisu/formstate/internal/initqueue"
	"github.com/conneroisu/formstate/internal/pathops"
	"github.com/conneroisu/formstate/internal/router"
	"github.com/conneroisu/formstate/internal/testutils"
	"github.com/conneroisu/formstate/internal/validation"
)

var requiredMessages = validation.Messages{
	validation.RuleRequired: validation.MessageFunc(func(labels []string) string {
		return labels[0] + " required"
	}),
}

func newForm(init map[string]any, opts form.Options) *form.Form {
	if opts.Scheduler == nil {
		opts.Scheduler = initqueue.NewManualScheduler()
	}
	return form.New(form.Uncontrolled{InitValue: init}, opts)
}

func TestSubmitScenario(t *testing.T) {
	var submitted []pathops.Tree
	f := newForm(map[string]any{"f1": "", "f2": ""}, form.Options{
		ErrorMessages: requiredMessages,
		Validator: func(tree pathops.Tree) *validation.Result {
			m := tree.(map[string]any)
			if m["f1"] != m["f2"] {
				return &validation.Result{Rule: "equal"}
			}
			return nil
		},
		OnSubmit: func(tree pathops.Tree) { submitted = append(submitted, tree) },
	})
	ctx := f.Context()
	f1 := Bind(ctx, Options{Name: "f1", Label: "f1", Required: true})
	f2 := Bind(ctx, Options{Name: "f2", Label: "f2", Required: true})

	f.Submit()
	require.NotNil(t, f1.Error())
	require.NotNil(t, f2.Error())
	assert.Equal(t, "f1 required", f1.Error().Message)
	assert.Equal(t, "f2 required", f2.Error().Message)
	assert.Equal(t, "f2 required", f.Error())
	assert.Empty(t, submitted)

	f1.Change("x")
	f2.Change("y")
	assert.Nil(t, f1.Error(), "editing re-validates the field")
	f.Submit()
	assert.Equal(t, "equal", f.Error())
	assert.Nil(t, f1.Error())
	assert.Nil(t, f2.Error())
	assert.Empty(t, submitted)

	f2.Change("x")
	assert.Nil(t, f.Submit())
	require.Len(t, submitted, 1)
	assert.Equal(t, map[string]any{"f1": "x", "f2": "x"}, submitted[0])
}

func TestField_ValidatesOncePerChange(t *testing.T) {
	f := newForm(map[string]any{"a": "", "b": ""}, form.Options{})
	calls := map[string]int{}
	counting := func(name string) validation.Func {
		return func(any, bool) *validation.Result {
			calls[name]++
			return nil
		}
	}
	Bind(f.Context(), Options{Name: "a", Validator: counting("a")})
	Bind(f.Context(), Options{Name: "b", Validator: counting("b")})

	f.OnChange("1", pathops.NewScope("a"), nil)
	assert.Equal(t, map[string]int{"a": 1}, calls, "b did not change")

	f.OnChange("1", pathops.NewScope("a"), nil)
	assert.Equal(t, map[string]int{"a": 1}, calls, "same value is not a change")

	f.Submit()
	assert.Equal(t, map[string]int{"a": 2, "b": 1}, calls)
}

func TestField_ValidatorSeesSubmitting(t *testing.T) {
	f := newForm(map[string]any{"a": ""}, form.Options{})
	var flags []bool
	Bind(f.Context(), Options{Name: "a", Validator: func(_ any, submitting bool) *validation.Result {
		flags = append(flags, submitting)
		return nil
	}})

	f.OnChange("x", pathops.NewScope("a"), nil)
	f.Submit()
	assert.Equal(t, []bool{false, true}, flags)
}

func TestField_InitValue(t *testing.T) {
	sched := initqueue.NewManualScheduler()
	f := newForm(map[string]any{"set": "kept"}, form.Options{Scheduler: sched})
	ctx := f.Context()

	a := Bind(ctx, Options{Name: "a", InitValue: "default a"})
	b := Bind(ctx, Options{Name: "b", InitValue: 0})
	kept := Bind(ctx, Options{Name: "set", InitValue: "ignored"})

	assert.Equal(t, "default a", a.Value(), "init value shows before the flush")
	assert.Equal(t, "kept", kept.Value())
	assert.Equal(t, map[string]any{"set": "kept"}, f.Data())

	require.Equal(t, 1, sched.RunPending())
	assert.Equal(t, map[string]any{"set": "kept", "a": "default a", "b": 0}, f.Data())
	assert.Equal(t, 0, b.Value())
}

func TestField_ParseAndFormat(t *testing.T) {
	f := newForm(map[string]any{"name": ""}, form.Options{})
	fld := Bind(f.Context(), Options{
		Name:   "name",
		Parse:  func(v any) any { return strings.TrimSpace(v.(string)) },
		Format: func(v any) any { return strings.ToUpper(v.(string)) },
	})

	fld.Change("  ada ")
	assert.Equal(t, "ada", pathops.Lookup(f.Data(), pathops.NewScope("name")))
	assert.Equal(t, "ADA", fld.Value())
	assert.Equal(t, "ada", fld.Raw())
}

func TestField_InterceptorIsDeprecated(t *testing.T) {
	logger := testutils.NewRecordingLogger()
	f := newForm(map[string]any{}, form.Options{})
	upper := func(v any) any { return strings.ToUpper(v.(string)) }

	fld := Bind(f.Context(), Options{Name: "a", Interceptor: upper, Logger: logger})
	fld.Change("x")
	assert.Equal(t, "X", fld.Raw())

	warns := logger.Warnings()
	require.Len(t, warns, 1)
	assert.True(t, errors.Is(warns[0].Err, formerrors.ErrDeprecatedOption("Interceptor", "Parse")))

	Bind(f.Context(), Options{Name: "b", Parse: func(v any) any { return v }, Interceptor: upper, Logger: logger})
	warns = logger.Warnings()
	require.Len(t, warns, 2)
	assert.True(t, formerrors.IsMisuse(warns[1].Err))
}

func TestField_Disabled(t *testing.T) {
	f := newForm(map[string]any{"a": ""}, form.Options{})
	fld := Bind(f.Context(), Options{Name: "a", Label: "a", Required: true, Disabled: true})

	assert.Nil(t, f.Submit())
	assert.Nil(t, fld.Error())

	fld.SetDisabled(false)
	require.NotNil(t, f.Submit())
	require.NotNil(t, fld.Error())

	fld.SetDisabled(true)
	assert.True(t, fld.Disabled())
	assert.Nil(t, fld.Error(), "disabling clears the error")
}

func TestField_MessagesNearestWins(t *testing.T) {
	f := newForm(map[string]any{"a": "", "b": ""}, form.Options{ErrorMessages: requiredMessages})
	a := Bind(f.Context(), Options{Name: "a", Label: "A", Required: true,
		ErrorMessages: validation.Messages{validation.RuleRequired: validation.Text("fill in A")}})
	b := Bind(f.Context(), Options{Name: "b", Label: "B", MinLength: 3})

	f.Submit()
	assert.Equal(t, "fill in A", a.Error().Message)
	assert.Equal(t, "minLength", b.Error().Message, "no message falls back to the rule name")
	assert.Equal(t, []string{"B"}, b.Error().Labels)
}

func TestField_IDAndUnbind(t *testing.T) {
	f := newForm(map[string]any{}, form.Options{})
	g := NewGroup(f.Context(), GroupOptions{Name: "user"})
	fld := Bind(g.Context(), Options{Name: "email", Label: "Email", Required: true})

	assert.Equal(t, "user.email", fld.ID())
	assert.Equal(t, "Email", fld.Label())
	assert.True(t, fld.Required())
	require.NotNil(t, g.Validate(true), "the field validates through its group")

	fld.Unbind()
	assert.Nil(t, g.Validate(true))
	assert.Nil(t, f.Submit())
}

func TestField_DuplicateNameWarns(t *testing.T) {
	logger := testutils.NewRecordingLogger()
	f := newForm(map[string]any{}, form.Options{Logger: logger})

	Bind(f.Context(), Options{Name: "a"})
	second := Bind(f.Context(), Options{Name: "a", Label: "a", Required: true})

	warns := logger.Warnings()
	require.Len(t, warns, 1)
	assert.True(t, errors.Is(warns[0].Err, formerrors.ErrDuplicateRegistration("a")))

	require.NotNil(t, f.Submit(), "the newer binding is the one validated")
	assert.NotNil(t, second.Error())
}

func TestField_CascadeAndResetError(t *testing.T) {
	f := newForm(map[string]any{"a": "", "b": "", "c": "x"}, form.Options{
		Validator: func(pathops.Tree) *validation.Result { return &validation.Result{Rule: "form"} },
	})
	a := Bind(f.Context(), Options{Name: "a", Cascade: func(value any, patch router.Patch, _ pathops.Tree) {
		switch value {
		case "0":
			patch(map[string]any{"b": "false"}, "c")
		case "1":
			patch(map[string]any{"b": "true"}, "")
		}
	}})

	a.Change("0")
	assert.Equal(t, map[string]any{"a": "0", "b": "false"}, f.Data())
	a.Change("1")
	assert.Equal(t, map[string]any{"a": "1", "b": "true"}, f.Data())

	f.Submit()
	assert.Equal(t, "form", f.Error())
	a.ResetError()
	assert.Equal(t, "", f.Error())
}
