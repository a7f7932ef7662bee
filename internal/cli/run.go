package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/goldrun/internal/config"
	"github.com/roach88/goldrun/internal/expect"
	"github.com/roach88/goldrun/internal/harness"
	"github.com/roach88/goldrun/internal/normalize"
	"github.com/roach88/goldrun/internal/report"
	"github.com/roach88/goldrun/internal/stage"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Policy    string
	Compiler  string
	Fixtures  string
	NoColor   bool
	SkipBuild bool

	// RunIDs allows overriding the run id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunIDs harness.RunIDGenerator

	// LogWriter receives log output. Defaults to os.Stderr.
	LogWriter io.Writer
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return newRunCommand(&RunOptions{RootOptions: rootOpts})
}

func newRunCommand(opts *RunOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Build the compiler and run every stage over the fixtures",
		Long: `Build the compiler-under-test, then check every fixture at the lex,
parse and execute stages, in that order.

By default the run stops at the first check that does not pass. Output is
compared after collapsing whitespace runs to single spaces.

Exit codes:
  0 - All checks passed or were skipped
  1 - A check failed or errored, or the build failed
  2 - Command error (bad config, missing fixtures, malformed directive, etc.)

Examples:
  goldrun run
  goldrun run --policy collect-all
  goldrun run --config ci/goldrun.yaml --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHarness(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Policy, "policy", "", "failure policy (fail-fast|collect-all); overrides config")
	cmd.Flags().StringVar(&opts.Compiler, "compiler", "", "compiler-under-test; overrides config")
	cmd.Flags().StringVar(&opts.Fixtures, "fixtures", "", "fixture directory; overrides config")
	cmd.Flags().BoolVar(&opts.NoColor, "no-color", false, "disable colored output")
	cmd.Flags().BoolVar(&opts.SkipBuild, "skip-build", false, "do not run the build step")

	return cmd
}

func runHarness(opts *RunOptions, cmd *cobra.Command) error {
	logWriter := opts.LogWriter
	if logWriter == nil {
		logWriter = os.Stderr
	}
	logger := newLogger(opts.RootOptions, logWriter)

	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return err
	}
	if err := applyRunFlags(opts, cfg); err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	hopts, err := harnessOptions(cfg)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	hopts.Sink = newSink(opts, cmd.OutOrStdout())
	hopts.RunIDs = opts.RunIDs
	hopts.Logger = logger

	h, err := harness.New(hopts)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	out, err := h.Run(ctx)
	logger.Debug("run returned", "run_id", out.RunID, "state", out.State)
	return exitFor(out, err)
}

// applyRunFlags lets explicitly set flags override file values. Paths given
// on the command line resolve against work_dir like those in the file.
func applyRunFlags(opts *RunOptions, cfg *config.Config) error {
	if opts.Policy != "" {
		cfg.Policy = opts.Policy
	}
	if opts.Compiler != "" {
		cfg.Compiler = opts.Compiler
	}
	if opts.Fixtures != "" {
		cfg.Fixtures = opts.Fixtures
	}
	if opts.SkipBuild {
		cfg.Build = nil
	}
	return cfg.Resolve()
}

// harnessOptions maps a configuration onto harness options. Sink, RunIDs and
// Logger are left for the caller.
func harnessOptions(cfg *config.Config) (harness.Options, error) {
	stages, err := cfg.StageNames()
	if err != nil {
		return harness.Options{}, err
	}
	mode, err := cfg.ExpectMode()
	if err != nil {
		return harness.Options{}, err
	}
	policy, err := harness.ParsePolicy(cfg.Policy)
	if err != nil {
		return harness.Options{}, err
	}

	return harness.Options{
		Toolchain:  toolchain(cfg),
		Build:      cfg.Build,
		FixtureDir: cfg.Fixtures,
		Extension:  cfg.Extension,
		Stages:     stages,
		Extractor:  expect.Extractor{Mode: mode},
		Normalizer: normalize.Normalizer{NFC: cfg.UnicodeNFC},
		Policy:     policy,
	}, nil
}

func toolchain(cfg *config.Config) *stage.Toolchain {
	return &stage.Toolchain{
		Compiler:   cfg.Compiler,
		Assembler:  cfg.Assembler,
		Executable: cfg.Executable,
		AsmSuffix:  cfg.AsmSuffix,
		WorkDir:    cfg.WorkDir,
	}
}

func newSink(opts *RunOptions, w io.Writer) report.Sink {
	if opts.Format == "json" {
		return report.NewJSON(w)
	}
	color := !opts.NoColor && os.Getenv("NO_COLOR") == ""
	return report.NewText(w, color)
}

// exitFor maps a finished run onto the CLI exit contract.
func exitFor(out *harness.Outcome, err error) error {
	switch {
	case err == nil && out.Passed():
		return nil
	case err == nil && out.State == harness.StateAborted:
		return NewExitError(ExitFailure, "run aborted")
	case err == nil:
		return NewExitError(ExitFailure, fmt.Sprintf("%d check(s) did not pass", len(out.Failures())))
	case errors.Is(err, harness.ErrBuildFailed):
		return WrapExitError(ExitFailure, "run aborted", err)
	case errors.Is(err, context.Canceled):
		return WrapExitError(ExitFailure, "run cancelled", err)
	default:
		return WrapExitError(ExitCommandError, "run could not complete", err)
	}
}
