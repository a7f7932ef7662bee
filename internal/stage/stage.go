// Package stage runs one pipeline stage of the compiler-under-test against
// one fixture and classifies the outcome.
//
// All stages share the same shape, captured by Check: extract the golden
// value, invoke external tools, compare. The lex and parse stages compare
// normalized text; the execute stage compares a process exit code.
package stage

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/goldrun/internal/expect"
	"github.com/roach88/goldrun/internal/fixture"
)

// ErrUnknownStage is returned by ParseName for an unrecognized stage name.
var ErrUnknownStage = errors.New("unknown stage")

// Name identifies a pipeline stage.
type Name string

const (
	Lex     Name = "lex"
	Parse   Name = "parse"
	Execute Name = "execute"
)

// Order is the fixed order in which stages run.
var Order = []Name{Lex, Parse, Execute}

// ParseName converts a stage name from configuration.
func ParseName(s string) (Name, error) {
	for _, n := range Order {
		if string(n) == s {
			return n, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStage, s)
}

// Status classifies a Result.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusError   Status = "error"
	StatusSkipped Status = "skipped" // no check requested for this fixture
)

// OK reports whether the status lets a fail-fast run continue.
func (s Status) OK() bool {
	return s == StatusPassed || s == StatusSkipped
}

// Result is the outcome of one stage on one fixture.
type Result struct {
	Stage   Name   `json:"stage"`
	Fixture string `json:"fixture"`
	Status  Status `json:"status"`

	// Expected is the golden value as displayed (normalized for text stages).
	Expected string `json:"expected"`

	// Actual is the observed value, or the captured diagnostic when Status
	// is StatusError.
	Actual string `json:"actual"`
}

// Observation is what a stage saw when invoking external tools.
type Observation struct {
	// Text is the captured standard output (text stages).
	Text string

	// Code is the captured exit code (execute stage).
	Code int

	// Failed marks an invocation that did not complete normally.
	// Diagnostic then holds the text to surface to the user.
	Failed     bool
	Diagnostic string
}

// Comparator decides whether an observation matches an expectation and how
// both are displayed.
type Comparator interface {
	Expected(want expect.Expectation) string
	Actual(got Observation) string
	Equal(want expect.Expectation, got Observation) bool
}

// Check is the generic staged comparison: one extractor, one invocation
// recipe and one comparator.
type Check struct {
	Stage Name

	// Extract derives the golden value. An error is fatal for the run.
	Extract func(fx *fixture.Fixture) (expect.Expectation, error)

	// Invoke runs the external tools. An error is reported as StatusError.
	Invoke func(ctx context.Context, fx *fixture.Fixture) (Observation, error)

	Compare Comparator

	// OnPass runs after a passing comparison (artifact cleanup).
	OnPass func(fx *fixture.Fixture) error
}

// Run applies the check to fx.
//
// The returned error is reserved for conditions that must stop the whole
// run: unusable expectations, context cancellation and failed cleanup.
// Everything the compiler-under-test does is reported through the Result.
func (c *Check) Run(ctx context.Context, fx *fixture.Fixture) (*Result, error) {
	want, err := c.Extract(fx)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", c.Stage, fx.Path, err)
	}

	res := &Result{Stage: c.Stage, Fixture: fx.Path}
	if want.Kind == expect.KindNone {
		res.Status = StatusSkipped
		return res, nil
	}
	res.Expected = c.Compare.Expected(want)

	got, err := c.Invoke(ctx, fx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%s %s: %w", c.Stage, fx.Path, ctx.Err())
		}
		got = Observation{Failed: true, Diagnostic: err.Error()}
	}

	if got.Failed {
		res.Status = StatusError
		res.Actual = got.Diagnostic
		return res, nil
	}

	res.Actual = c.Compare.Actual(got)
	if !c.Compare.Equal(want, got) {
		res.Status = StatusFailed
		return res, nil
	}

	res.Status = StatusPassed
	if c.OnPass != nil {
		if err := c.OnPass(fx); err != nil {
			return nil, fmt.Errorf("%s %s: cleanup: %w", c.Stage, fx.Path, err)
		}
	}
	return res, nil
}
