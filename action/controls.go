// Package action turns user commands into backend requests and drives the
// busy/idle state of the controls that issued them.
package action

// ControlState is the state of one action control. Every control returns to
// Idle once its request completes, whatever the outcome.
type ControlState int

const (
	Idle ControlState = iota
	Busy
)

func (s ControlState) String() string {
	if s == Busy {
		return "busy"
	}
	return "idle"
}

// Form names passed to Controls.ShowValidation and Controls.ClearForm.
const (
	FormPull    = "pull"
	FormRun     = "run"
	FormCompose = "compose"
	FormPrune   = "prune"
)

// Controls is the surface the dispatcher drives. Implementations must be safe
// to call from request goroutines.
type Controls interface {
	// Checked returns the ids currently selected in table.
	Checked(table string) []string
	// SetRowBusy hides a row's selector and shows its progress indicator.
	SetRowBusy(table, id string, busy bool)
	// Uncheck clears the selection of one row.
	Uncheck(table, id string)
	// SetControl disables (Busy) or re-enables (Idle) the named control.
	SetControl(control string, state ControlState)
	ShowValidation(form, text string)
	ClearValidation(form string)
	// ClearForm resets the inputs of a form after a successful submission.
	ClearForm(form string)
}
