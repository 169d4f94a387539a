package form

import (
	"github.com/conneroisu/formstate/internal/initqueue"
	"github.com/conneroisu/formstate/internal/logging"
	"github.com/conneroisu/formstate/internal/pathops"
	"github.com/conneroisu/formstate/internal/validation"
)

// Source says who owns the canonical value tree. It is either Uncontrolled
// or Controlled and is fixed for the lifetime of a Form.
type Source interface {
	source()
}

// Uncontrolled lets the form own its tree, seeded once from InitValue.
type Uncontrolled struct {
	InitValue pathops.Tree
}

// Controlled keeps the tree with an external owner. The form proposes every
// next tree through OnChange and only displays what the owner hands back via
// Form.SetValue.
type Controlled struct {
	Value    pathops.Tree
	OnChange func(next pathops.Tree)
}

func (Uncontrolled) source() {}
func (Controlled) source()   {}

// Options configures a Form. Every field is optional.
type Options struct {
	// DefaultValue supplies keys the initial or external tree omits.
	DefaultValue pathops.Tree

	// Validator checks the whole tree. It only runs when no field reported
	// an error.
	Validator func(tree pathops.Tree) *validation.Result

	// ErrorMessages is the outermost message map of the form's scope chain.
	ErrorMessages validation.Messages

	// OnSubmit receives the committed tree after a submit without errors.
	OnSubmit func(tree pathops.Tree)

	Logger    logging.Logger
	Scheduler initqueue.Scheduler
}

// State is the lifecycle position of a form.
type State int32

const (
	Idle State = iota
	Editing
	Submitting
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Editing:
		return "editing"
	case Submitting:
		return "submitting"
	default:
		return "unknown"
	}
}
