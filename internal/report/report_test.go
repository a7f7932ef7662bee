package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/goldrun/internal/stage"
)

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestTextFailFastTranscript(t *testing.T) {
	buf := &bytes.Buffer{}
	r := NewText(buf, false)

	r.Building()
	r.StartStage(stage.Lex)
	assert.True(t, r.Report(&stage.Result{Stage: stage.Lex, Fixture: "tests/a.c", Status: stage.StatusPassed}))
	assert.True(t, r.Report(&stage.Result{Stage: stage.Lex, Fixture: "tests/b.c", Status: stage.StatusPassed}))
	r.StartStage(stage.Parse)
	assert.False(t, r.Report(&stage.Result{
		Stage:    stage.Parse,
		Fixture:  "tests/a.c",
		Status:   stage.StatusFailed,
		Expected: "(top-level)",
		Actual:   "(top-level EXTRA)",
	}))
	require.NoError(t, r.Finish(Run{ID: "run-1", State: "aborted"}))

	newGoldie(t).Assert(t, "text_fail_fast", buf.Bytes())
}

func TestTextExecuteTranscript(t *testing.T) {
	buf := &bytes.Buffer{}
	r := NewText(buf, false)

	r.StartStage(stage.Execute)
	assert.True(t, r.Report(&stage.Result{Stage: stage.Execute, Fixture: "tests/plain.c", Status: stage.StatusSkipped}))
	assert.False(t, r.Report(&stage.Result{
		Stage:    stage.Execute,
		Fixture:  "tests/ret.c",
		Status:   stage.StatusError,
		Expected: "7",
		Actual:   "line one\nline two\n",
	}))

	newGoldie(t).Assert(t, "text_execute", buf.Bytes())
}

func TestTextErrorWithoutDiagnostic(t *testing.T) {
	buf := &bytes.Buffer{}
	r := NewText(buf, false)

	r.Report(&stage.Result{Fixture: "tests/x.c", Status: stage.StatusError})
	assert.Equal(t, "tests/x.c Error\n", buf.String())
}

func TestTextColorKeepsContent(t *testing.T) {
	buf := &bytes.Buffer{}
	r := NewText(buf, true)

	r.Report(&stage.Result{Fixture: "tests/a.c", Status: stage.StatusPassed})
	assert.Contains(t, buf.String(), "tests/a.c Ok")
}

func TestJSONResultsAndRun(t *testing.T) {
	buf := &bytes.Buffer{}
	r := NewJSON(buf)

	r.Building()
	r.StartStage(stage.Lex)
	assert.True(t, r.Report(&stage.Result{Stage: stage.Lex, Fixture: "tests/a.c", Status: stage.StatusPassed, Expected: "A", Actual: "A"}))
	assert.False(t, r.Report(&stage.Result{Stage: stage.Lex, Fixture: "tests/b.c", Status: stage.StatusFailed, Expected: "A", Actual: "B"}))
	require.NoError(t, r.Finish(Run{ID: "run-1", State: "aborted", Passed: false}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)

	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "result", first["type"])
	assert.Equal(t, "lex", first["stage"])
	assert.Equal(t, "tests/a.c", first["fixture"])
	assert.Equal(t, "passed", first["status"])

	var last map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[2]), &last))
	assert.Equal(t, "run", last["type"])
	assert.Equal(t, "error", last["status"])
	assert.Equal(t, "run-1", last["run_id"])
	assert.Equal(t, "aborted", last["state"])
}

func TestJSONRunOK(t *testing.T) {
	buf := &bytes.Buffer{}
	r := NewJSON(buf)

	require.NoError(t, r.Finish(Run{ID: "run-2", State: "done", Passed: true}))
	assert.Contains(t, buf.String(), `"status":"ok"`)
}
