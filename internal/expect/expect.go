// Package expect derives golden values from fixtures.
//
// Text expectations (lex and parse stages) come from one of two sources:
//
//   - an annotation block embedded in the fixture:
//
//     /*LEX
//     int main ( ) { return 0 ; }
//     */
//
//   - a sibling file next to the fixture, named after its stem
//     ("tests/006.c" reads "tests/006.lex").
//
// The execute stage expects an integer exit code given by a directive line:
//
//	//RET 6
//
// Extraction is pure: the same fixture content always yields the same
// expectation.
package expect

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/roach88/goldrun/internal/fixture"
)

var (
	// ErrMissingExpectation is returned when a required sibling file is absent.
	ErrMissingExpectation = errors.New("missing expectation file")

	// ErrMalformedDirective is returned when a //RET line has no integer operand.
	ErrMalformedDirective = errors.New("malformed return-code directive")

	// ErrUnknownMode is returned by ParseMode for an unrecognized mode name.
	ErrUnknownMode = errors.New("unknown expectation mode")
)

// Kind identifies what an Expectation holds.
type Kind string

const (
	KindNone     Kind = "none"      // no check requested
	KindText     Kind = "text"      // expected compiler output
	KindExitCode Kind = "exit_code" // expected process exit code
)

// Origin records where an expectation was read from.
type Origin string

const (
	OriginAnnotation Origin = "annotation"
	OriginSibling    Origin = "sibling"
	OriginDirective  Origin = "directive"
)

// Expectation is an immutable stage-specific golden value.
type Expectation struct {
	Kind   Kind
	Origin Origin

	// Text is the raw expected text for KindText. It is normalized only at
	// comparison time.
	Text string

	// Code is the expected exit code for KindExitCode.
	Code int
}

// String renders the expected value for display.
func (e Expectation) String() string {
	switch e.Kind {
	case KindText:
		return e.Text
	case KindExitCode:
		return strconv.Itoa(e.Code)
	default:
		return ""
	}
}

// Target names the per-stage markers used to locate a text expectation.
type Target struct {
	// Tag follows the comment opener on an annotation marker line.
	Tag string

	// Suffix replaces the fixture extension for sibling files.
	Suffix string
}

// Built-in targets.
var (
	Lex   = Target{Tag: "LEX", Suffix: ".lex"}
	Parse = Target{Tag: "AST", Suffix: ".ast"}
)

// Source extracts a text expectation for a target.
type Source interface {
	Extract(fx *fixture.Fixture, target Target) (Expectation, error)
}

// Mode selects how an Extractor picks a Source for each fixture.
type Mode string

const (
	// ModeAuto uses an annotation block when the fixture has one, a sibling
	// file when one exists, and otherwise an empty expectation.
	ModeAuto Mode = "auto"

	// ModeAnnotation only reads annotation blocks.
	ModeAnnotation Mode = "annotation"

	// ModeSibling only reads sibling files; a missing file is fatal.
	ModeSibling Mode = "sibling"
)

// Modes lists the accepted mode names.
var Modes = []Mode{ModeAuto, ModeAnnotation, ModeSibling}

// ParseMode converts a configuration value into a Mode.
// The empty string selects ModeAuto.
func ParseMode(s string) (Mode, error) {
	if s == "" {
		return ModeAuto, nil
	}
	for _, m := range Modes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Extractor resolves text expectations according to its Mode.
type Extractor struct {
	Mode       Mode
	Annotation Annotation
	Sibling    Sibling
}

// Source returns the source used for fx and target.
func (e Extractor) Source(fx *fixture.Fixture, target Target) Source {
	switch e.Mode {
	case ModeAnnotation:
		return e.Annotation
	case ModeSibling:
		return e.Sibling
	}

	if _, ok := e.Annotation.Find(fx, target.Tag); ok {
		return e.Annotation
	}
	if e.Sibling.Exists(fx, target) {
		return e.Sibling
	}
	return e.Annotation
}

// Text extracts the text expectation of fx for target.
func (e Extractor) Text(fx *fixture.Fixture, target Target) (Expectation, error) {
	return e.Source(fx, target).Extract(fx, target)
}
