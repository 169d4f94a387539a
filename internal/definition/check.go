package definition

import (
	formerrors "github.com/conneroisu/formstate/internal/errors"
	"github.com/conneroisu/formstate/internal/field"
	"github.com/conneroisu/formstate/internal/form"
	"github.com/conneroisu/formstate/internal/initqueue"
	"github.com/conneroisu/formstate/internal/logging"
	"github.com/conneroisu/formstate/internal/pathops"
	"github.com/conneroisu/formstate/internal/validation"
)

// Binding is a definition bound to a form context.
type Binding struct {
	Fields []*field.Field
	Groups []*field.Group
	Arrays []*field.Array
}

// Bind binds every field of the definition under ctx. Array items are bound
// for the elements present in the tree at bind time.
func (d *Definition) Bind(ctx form.Context, logger logging.Logger) *Binding {
	b := &Binding{}
	b.bind(ctx, d.Fields, logger)
	return b
}

func (b *Binding) bind(ctx form.Context, fields []Field, logger logging.Logger) {
	for _, def := range fields {
		switch {
		case def.IsGroup():
			g := field.NewGroup(ctx, field.GroupOptions{
				Name:          def.Name,
				ErrorMessages: messages(def.Messages),
				Logger:        logger,
			})
			b.Groups = append(b.Groups, g)
			b.bind(g.Context(), def.Fields, logger)
		case def.IsArray():
			a := field.NewArray(ctx, field.ArrayOptions{
				Name:          def.Name,
				ErrorMessages: messages(def.Messages),
				Logger:        logger,
			})
			b.Arrays = append(b.Arrays, a)
			for _, it := range a.Items() {
				b.bind(it.Context(), def.Items, logger)
			}
		default:
			b.Fields = append(b.Fields, field.Bind(ctx, field.Options{
				Name:          def.Name,
				Label:         def.Label,
				Required:      def.Required,
				MinLength:     def.MinLength,
				InitValue:     def.InitValue,
				Disabled:      def.Disabled,
				ErrorMessages: messages(def.Messages),
				Logger:        logger,
			}))
		}
	}
}

func messages(m map[string]string) validation.Messages {
	if len(m) == 0 {
		return nil
	}
	out := make(validation.Messages, len(m))
	for rule, text := range m {
		out[rule] = validation.Text(text)
	}
	return out
}

// CheckOptions configures Check.
type CheckOptions struct {
	// Messages are the outermost messages, below the definition's own.
	Messages validation.Messages
	Logger   logging.Logger
	// Scheduler flushes initial values. Nil flushes them synchronously
	// before submitting.
	Scheduler initqueue.Scheduler
}

// FieldResult is the outcome for one field.
type FieldResult struct {
	ID      string   `json:"id" yaml:"id"`
	Label   string   `json:"label,omitempty" yaml:"label,omitempty"`
	Rule    string   `json:"rule,omitempty" yaml:"rule,omitempty"`
	Labels  []string `json:"labels,omitempty" yaml:"labels,omitempty"`
	Message string   `json:"message,omitempty" yaml:"message,omitempty"`
}

// Valid reports whether the field passed.
func (r FieldResult) Valid() bool { return r.Rule == "" }

// Report is the outcome of checking one document.
type Report struct {
	Form   string             `json:"form" yaml:"form"`
	FormID string             `json:"form_id" yaml:"form_id"`
	Valid  bool               `json:"valid" yaml:"valid"`
	Error  string             `json:"error,omitempty" yaml:"error,omitempty"`
	Fields []FieldResult      `json:"fields" yaml:"fields"`
	Issues []formerrors.Issue `json:"issues,omitempty" yaml:"issues,omitempty"`
	Data   pathops.Tree       `json:"data" yaml:"data"`
}

// Check binds the definition to a form seeded with data, flushes the
// fields' initial values and submits. Data holds the tree that was
// validated, defaults included.
func Check(def *Definition, data map[string]any, opts CheckOptions) *Report {
	var (
		sched  initqueue.Scheduler
		settle func()
	)
	if opts.Scheduler == nil {
		manual := initqueue.NewManualScheduler()
		sched, settle = manual, func() { manual.RunPending() }
	} else {
		tracked := initqueue.Track(opts.Scheduler)
		sched, settle = tracked, tracked.Wait
	}

	msgs := validation.Messages{}
	for rule, msg := range opts.Messages {
		msgs[rule] = msg
	}
	for rule, msg := range messages(def.Messages) {
		msgs[rule] = msg
	}

	var defaults pathops.Tree
	if def.DefaultValue != nil {
		defaults = def.DefaultValue
	}
	f := form.New(form.Uncontrolled{InitValue: data}, form.Options{
		DefaultValue:  defaults,
		ErrorMessages: msgs,
		Logger:        opts.Logger,
		Scheduler:     sched,
	})

	binding := def.Bind(f.Context(), opts.Logger)
	settle()
	res := f.Submit()

	report := &Report{
		Form:   def.Name,
		FormID: f.ID(),
		Valid:  res == nil,
		Error:  f.Error(),
		Data:   f.Data(),
	}
	issues := formerrors.NewErrorCollector()
	for _, fld := range binding.Fields {
		fr := FieldResult{ID: fld.ID(), Label: fld.Label()}
		if e := fld.Error(); e != nil {
			fr.Rule = e.Rule
			fr.Labels = e.Labels
			fr.Message = e.Message
			issues.Add(formerrors.Issue{
				Scope:    fr.ID,
				Rule:     e.Rule,
				Message:  e.Message,
				Severity: formerrors.ErrorSeverityError,
			})
		}
		report.Fields = append(report.Fields, fr)
	}
	report.Issues = issues.GetIssues()
	return report
}
