// Package report prints stage results as they are produced.
//
// The text reporter writes one colored status line per fixture and adds
// detail only when something went wrong: expected and actual values for a
// mismatch, the captured diagnostic for an error. The JSON reporter writes
// one object per result for tooling.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/roach88/goldrun/internal/expect"
	"github.com/roach88/goldrun/internal/stage"
)

// Sink receives run progress from the orchestrator.
type Sink interface {
	// Building is called before the compiler-under-test is built.
	Building()

	// StartStage is called before the first fixture of a stage.
	StartStage(name stage.Name)

	// Report prints one result and returns whether it passed.
	// Skipped results count as passed. The orchestrator hands this verdict
	// to its policy to decide whether the run goes on.
	Report(res *stage.Result) bool

	// Finish is called once when the run reaches a terminal state.
	Finish(run Run) error
}

// Run describes a finished run.
type Run struct {
	ID     string `json:"run_id"`
	State  string `json:"state"`
	Passed bool   `json:"passed"`
}

var stageBanners = map[stage.Name]string{
	stage.Lex:     "Testing lex output...",
	stage.Parse:   "Testing parse output...",
	stage.Execute: "Testing execution...",
}

// Text is the human-readable reporter.
type Text struct {
	w      io.Writer
	color  bool
	stages int

	ok    lipgloss.Style
	bad   lipgloss.Style
	want  lipgloss.Style
	found lipgloss.Style
	muted lipgloss.Style
}

// NewText creates a text reporter. Colors are emitted only when color is
// true and w supports them.
func NewText(w io.Writer, color bool) *Text {
	r := lipgloss.NewRenderer(w)
	return &Text{
		w:     w,
		color: color,
		ok:    r.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		bad:   r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		want:  r.NewStyle().Foreground(lipgloss.Color("2")),
		found: r.NewStyle().Foreground(lipgloss.Color("1")),
		muted: r.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

func (t *Text) paint(s lipgloss.Style, text string) string {
	if !t.color {
		return text
	}
	return s.Render(text)
}

// Building prints the build banner.
func (t *Text) Building() {
	fmt.Fprintf(t.w, "Building compiler...\n\n")
}

// StartStage prints the stage banner, separated from the previous stage by a
// blank line.
func (t *Text) StartStage(name stage.Name) {
	if t.stages > 0 {
		fmt.Fprintln(t.w)
	}
	t.stages++

	banner, ok := stageBanners[name]
	if !ok {
		banner = fmt.Sprintf("Testing %s output...", name)
	}
	fmt.Fprintf(t.w, "%s\n\n", banner)
}

// Report prints the status line for res, plus expected and actual values on
// a mismatch or the diagnostic on an error.
func (t *Text) Report(res *stage.Result) bool {
	switch res.Status {
	case stage.StatusPassed:
		fmt.Fprintln(t.w, t.paint(t.ok, res.Fixture+" Ok"))
	case stage.StatusSkipped:
		fmt.Fprintln(t.w, t.paint(t.muted, res.Fixture+" Skip"))
		fmt.Fprintln(t.w, t.paint(t.muted, "  no "+expect.DirectiveToken+" directive"))
	case stage.StatusFailed:
		fmt.Fprintln(t.w, t.paint(t.bad, res.Fixture+" Fail"))
		fmt.Fprintln(t.w, t.paint(t.want, "Expected:"))
		fmt.Fprintln(t.w, "  "+res.Expected)
		fmt.Fprintln(t.w, t.paint(t.found, "But found:"))
		fmt.Fprintln(t.w, "  "+res.Actual)
	default:
		fmt.Fprintln(t.w, t.paint(t.bad, res.Fixture+" Error"))
		if res.Actual != "" {
			for _, line := range strings.Split(strings.TrimSuffix(res.Actual, "\n"), "\n") {
				fmt.Fprintln(t.w, "  "+line)
			}
		}
	}
	return res.Status.OK()
}

// Finish prints nothing: the last status line already tells the story.
func (t *Text) Finish(Run) error {
	return nil
}

// JSON writes newline-delimited JSON: one object per result, then one
// object describing the run.
type JSON struct {
	enc *json.Encoder
	err error
}

// NewJSON creates a JSON reporter.
func NewJSON(w io.Writer) *JSON {
	return &JSON{enc: json.NewEncoder(w)}
}

type jsonResult struct {
	Type string `json:"type"`
	*stage.Result
}

type jsonRun struct {
	Type   string `json:"type"`
	Status string `json:"status"`
	Run
}

// Building writes nothing.
func (j *JSON) Building() {}

// StartStage writes nothing; each result carries its stage.
func (j *JSON) StartStage(stage.Name) {}

// Report writes res as a "result" object.
func (j *JSON) Report(res *stage.Result) bool {
	if err := j.enc.Encode(jsonResult{Type: "result", Result: res}); err != nil && j.err == nil {
		j.err = err
	}
	return res.Status.OK()
}

// Finish writes the run object and returns the first write error seen.
func (j *JSON) Finish(run Run) error {
	status := "ok"
	if !run.Passed {
		status = "error"
	}
	if err := j.enc.Encode(jsonRun{Type: "run", Status: status, Run: run}); err != nil && j.err == nil {
		j.err = err
	}
	return j.err
}
