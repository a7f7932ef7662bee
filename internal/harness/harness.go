package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/roach88/goldrun/internal/expect"
	"github.com/roach88/goldrun/internal/fixture"
	"github.com/roach88/goldrun/internal/normalize"
	"github.com/roach88/goldrun/internal/proc"
	"github.com/roach88/goldrun/internal/report"
	"github.com/roach88/goldrun/internal/stage"
)

// ErrBuildFailed is returned when the build step exits non-zero.
var ErrBuildFailed = errors.New("build failed")

// Options configures a Harness.
type Options struct {
	// Toolchain locates the compiler-under-test and the native tools.
	Toolchain *stage.Toolchain

	// Build is the argv of the build step, run in the toolchain's WorkDir.
	// Empty skips the build.
	Build []string

	// FixtureDir is scanned (non-recursively) for files ending in Extension.
	FixtureDir string
	Extension  string

	// Stages restricts the run to these stages. They always execute in
	// stage.Order. Empty means all stages.
	Stages []stage.Name

	Extractor  expect.Extractor
	Normalizer normalize.Normalizer

	// Policy decides whether to keep going after a result. Defaults to FailFast.
	Policy Policy

	// Sink receives progress. Required.
	Sink report.Sink

	// RunIDs defaults to UUIDv7Generator.
	RunIDs RunIDGenerator

	// Logger defaults to a discarding logger.
	Logger *slog.Logger
}

// Harness runs stages over fixtures.
type Harness struct {
	opts   Options
	checks []*stage.Check
	logger *slog.Logger
}

// New validates opts and prepares the stage checks.
func New(opts Options) (*Harness, error) {
	if opts.Toolchain == nil || opts.Toolchain.Compiler == "" {
		return nil, errors.New("harness: compiler is required")
	}
	if opts.Sink == nil {
		return nil, errors.New("harness: sink is required")
	}
	if opts.Policy == nil {
		opts.Policy = FailFast{}
	}
	if opts.RunIDs == nil {
		opts.RunIDs = UUIDv7Generator{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Toolchain.Logger == nil {
		opts.Toolchain.Logger = opts.Logger
	}

	for _, name := range opts.Stages {
		if !slices.Contains(stage.Order, name) {
			return nil, fmt.Errorf("harness: %w: %q", stage.ErrUnknownStage, name)
		}
	}

	h := &Harness{opts: opts, logger: opts.Logger}
	cmp := stage.TextComparator{Normalizer: opts.Normalizer}
	for _, name := range stage.Order {
		if len(opts.Stages) > 0 && !slices.Contains(opts.Stages, name) {
			continue
		}

		var check *stage.Check
		if name == stage.Execute {
			check = stage.ExecCheck(opts.Toolchain)
		} else {
			var err error
			check, err = stage.TextCheck(name, opts.Toolchain, opts.Extractor, cmp)
			if err != nil {
				return nil, err
			}
		}
		h.checks = append(h.checks, check)
	}
	return h, nil
}

// Run executes one full run.
//
// The returned Outcome is always non-nil and always in a terminal state.
// A non-nil error means the run could not be carried out (build failure,
// unreadable fixture directory, unusable expectation, cancellation); test
// failures are reported through the Outcome instead.
func (h *Harness) Run(ctx context.Context) (*Outcome, error) {
	out := &Outcome{RunID: h.opts.RunIDs.Generate(), State: StateBuilding}
	log := h.logger.With("run_id", out.RunID)

	abort := func(err error) (*Outcome, error) {
		out.State = StateAborted
		log.Info("run aborted", "results", len(out.Results))
		if ferr := h.finish(out); ferr != nil && err == nil {
			err = ferr
		}
		return out, err
	}

	if err := h.build(ctx, log); err != nil {
		return abort(err)
	}

	fixtures, err := fixture.LoadAll(h.opts.FixtureDir, h.opts.Extension)
	if err != nil {
		return abort(err)
	}
	log.Info("fixtures loaded", "dir", h.opts.FixtureDir, "count", len(fixtures))

	for _, check := range h.checks {
		out.State = stateFor(check.Stage)
		h.opts.Sink.StartStage(check.Stage)
		log.Debug("stage started", "stage", check.Stage)

		for _, fx := range fixtures {
			res, err := check.Run(ctx, fx)
			if err != nil {
				return abort(err)
			}
			out.Results = append(out.Results, res)
			passed := h.opts.Sink.Report(res)
			log.Debug("fixture checked", "stage", check.Stage, "fixture", fx.Path, "status", res.Status)

			if !h.opts.Policy.Continue(res, passed) {
				return abort(nil)
			}
		}
	}

	out.State = StateDone
	log.Info("run finished", "results", len(out.Results), "passed", out.Passed())
	return out, h.finish(out)
}

func (h *Harness) build(ctx context.Context, log *slog.Logger) error {
	if len(h.opts.Build) == 0 {
		log.Debug("build skipped")
		return nil
	}

	h.opts.Sink.Building()
	log.Info("building compiler", "argv", h.opts.Build)
	c, err := proc.Run(ctx, proc.Command{Argv: h.opts.Build, Dir: h.opts.Toolchain.WorkDir})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildFailed, err)
	}
	if !c.Success() {
		log.Error("build failed", "exit_code", c.ExitCode, "stdout", c.Stdout, "stderr", c.Stderr)
		err := fmt.Errorf("%w: %s exited with status %d", ErrBuildFailed, h.opts.Build[0], c.ExitCode)
		if output := strings.TrimSpace(c.Stdout + c.Stderr); output != "" {
			err = fmt.Errorf("%w\n%s", err, output)
		}
		return err
	}
	return nil
}

func (h *Harness) finish(out *Outcome) error {
	return h.opts.Sink.Finish(report.Run{
		ID:     out.RunID,
		State:  string(out.State),
		Passed: out.Passed(),
	})
}
