package harness

import (
	"github.com/roach88/goldrun/internal/stage"
)

// State is a run state.
type State string

const (
	StateBuilding State = "building"
	StateLex      State = "lex"
	StateParse    State = "parse"
	StateExecute  State = "execute"
	StateDone     State = "done"
	StateAborted  State = "aborted"
)

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return s == StateDone || s == StateAborted
}

func stateFor(name stage.Name) State {
	switch name {
	case stage.Lex:
		return StateLex
	case stage.Parse:
		return StateParse
	default:
		return StateExecute
	}
}

// Outcome is the record of one run.
type Outcome struct {
	RunID string

	// State is terminal once Run returns.
	State State

	// Results holds every result produced, in run order.
	Results []*stage.Result
}

// Passed reports whether the run reached StateDone with every result
// passed or skipped.
func (o *Outcome) Passed() bool {
	if o.State != StateDone {
		return false
	}
	for _, r := range o.Results {
		if !r.Status.OK() {
			return false
		}
	}
	return true
}

// Failures returns the results that did not pass.
func (o *Outcome) Failures() []*stage.Result {
	var failed []*stage.Result
	for _, r := range o.Results {
		if !r.Status.OK() {
			failed = append(failed, r)
		}
	}
	return failed
}
