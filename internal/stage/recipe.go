package stage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/roach88/goldrun/internal/expect"
	"github.com/roach88/goldrun/internal/fixture"
	"github.com/roach88/goldrun/internal/normalize"
	"github.com/roach88/goldrun/internal/proc"
)

// Compiler CLI tokens.
const (
	StdoutTarget = "stdout"

	ModeLex     = "lex"
	ModeParse   = "parse"
	ModeCompile = "compile"
)

// Defaults for the execute stage.
const (
	DefaultAsmSuffix  = ".s"
	DefaultExecutable = "a.out"
)

// DefaultAssembler is the assembler/linker invocation; the assembly path is appended.
var DefaultAssembler = []string{"gcc"}

// Toolchain locates the external tools a stage drives.
type Toolchain struct {
	// Compiler is the compiler-under-test binary.
	Compiler string

	// Assembler is the assembler/linker argv. The assembly file is appended.
	Assembler []string

	// Executable is the file the assembler produces in WorkDir.
	Executable string

	// AsmSuffix is appended to the fixture path to name generated assembly.
	AsmSuffix string

	// WorkDir is the working directory of every tool. Empty means the
	// current directory.
	WorkDir string

	Logger *slog.Logger
}

func (tc *Toolchain) logger() *slog.Logger {
	if tc.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return tc.Logger
}

// AsmPath returns the generated assembly path for fx.
func (tc *Toolchain) AsmPath(fx *fixture.Fixture) string {
	suffix := tc.AsmSuffix
	if suffix == "" {
		suffix = DefaultAsmSuffix
	}
	return fx.Path + suffix
}

// ExecutablePath returns the path used to run the produced binary.
func (tc *Toolchain) ExecutablePath() string {
	exe := tc.Executable
	if exe == "" {
		exe = DefaultExecutable
	}
	if filepath.IsAbs(exe) {
		return exe
	}
	if tc.WorkDir == "" {
		// Keep a separator so the name is not looked up in PATH.
		return "." + string(filepath.Separator) + exe
	}
	return filepath.Join(tc.WorkDir, exe)
}

func (tc *Toolchain) run(ctx context.Context, argv []string, discard bool) (*proc.Capture, error) {
	tc.logger().Debug("exec", "argv", argv, "dir", tc.WorkDir)
	return proc.Run(ctx, proc.Command{Argv: argv, Dir: tc.WorkDir, DiscardOutput: discard})
}

// compile invokes the compiler-under-test. A non-zero exit becomes a failed
// observation whose diagnostic is the captured standard output.
func (tc *Toolchain) compile(ctx context.Context, fx *fixture.Fixture, output, mode string) (Observation, error) {
	c, err := tc.run(ctx, []string{tc.Compiler, fx.Path, output, mode}, false)
	if err != nil {
		return Observation{}, err
	}
	if !c.Success() {
		tc.logger().Debug("compiler failed", "fixture", fx.Path, "mode", mode, "exit_code", c.ExitCode, "stderr", c.Stderr)
		return Observation{Failed: true, Diagnostic: c.Stdout}, nil
	}
	return Observation{Text: c.Stdout}, nil
}

// TextComparator compares normalized text.
type TextComparator struct {
	Normalizer normalize.Normalizer
}

// Expected returns the normalized expected text.
func (t TextComparator) Expected(want expect.Expectation) string {
	return t.Normalizer.Normalize(want.Text)
}

// Actual returns the normalized captured output.
func (t TextComparator) Actual(got Observation) string {
	return t.Normalizer.Normalize(got.Text)
}

// Equal compares the normalized forms.
func (t TextComparator) Equal(want expect.Expectation, got Observation) bool {
	return t.Expected(want) == t.Actual(got)
}

// ExitCodeComparator compares exit codes as integers.
type ExitCodeComparator struct{}

// Expected returns the directive exit code.
func (ExitCodeComparator) Expected(want expect.Expectation) string {
	return strconv.Itoa(want.Code)
}

// Actual returns the exit code of the produced executable.
func (ExitCodeComparator) Actual(got Observation) string {
	return strconv.Itoa(got.Code)
}

// Equal reports whether an exit code was expected and matched.
func (ExitCodeComparator) Equal(want expect.Expectation, got Observation) bool {
	return want.Kind == expect.KindExitCode && want.Code == got.Code
}

// TextCheck builds the lex or parse stage: run the compiler with its output
// on stdout and compare it, normalized, against the fixture's text expectation.
func TextCheck(name Name, tc *Toolchain, ex expect.Extractor, cmp TextComparator) (*Check, error) {
	var target expect.Target
	var mode string
	switch name {
	case Lex:
		target, mode = expect.Lex, ModeLex
	case Parse:
		target, mode = expect.Parse, ModeParse
	default:
		return nil, fmt.Errorf("text check: %w: %q", ErrUnknownStage, name)
	}

	return &Check{
		Stage: name,
		Extract: func(fx *fixture.Fixture) (expect.Expectation, error) {
			return ex.Text(fx, target)
		},
		Invoke: func(ctx context.Context, fx *fixture.Fixture) (Observation, error) {
			return tc.compile(ctx, fx, StdoutTarget, mode)
		},
		Compare: cmp,
	}, nil
}

// ExecCheck builds the execute stage: compile to assembly, assemble and
// link, run the produced executable and compare its exit code against the
// fixture's //RET directive.
//
// The generated assembly is removed only when the exit code matches, so a
// failing fixture leaves it behind for inspection.
func ExecCheck(tc *Toolchain) *Check {
	return &Check{
		Stage:   Execute,
		Extract: expect.ReturnCode,
		Invoke: func(ctx context.Context, fx *fixture.Fixture) (Observation, error) {
			asm := tc.AsmPath(fx)

			obs, err := tc.compile(ctx, fx, asm, ModeCompile)
			if err != nil || obs.Failed {
				return obs, err
			}

			assembler := tc.Assembler
			if len(assembler) == 0 {
				assembler = DefaultAssembler
			}
			argv := append(append([]string{}, assembler...), asm)
			c, err := tc.run(ctx, argv, false)
			if err != nil {
				return Observation{}, err
			}
			if !c.Success() {
				return Observation{Failed: true, Diagnostic: c.Stdout + c.Stderr}, nil
			}

			// Only the exit code of the produced program matters.
			c, err = tc.run(ctx, []string{tc.ExecutablePath()}, true)
			if err != nil {
				return Observation{}, err
			}
			return Observation{Code: c.ExitCode}, nil
		},
		Compare: ExitCodeComparator{},
		OnPass: func(fx *fixture.Fixture) error {
			err := os.Remove(tc.AsmPath(fx))
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		},
	}
}
