package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/goldrun/internal/config"
	"github.com/roach88/goldrun/internal/expect"
	"github.com/roach88/goldrun/internal/fixture"
	"github.com/roach88/goldrun/internal/stage"
)

// ExpectResult is the JSON payload of the expect command.
type ExpectResult struct {
	Fixture  string        `json:"fixture"`
	Stage    stage.Name    `json:"stage"`
	Kind     expect.Kind   `json:"kind"`
	Origin   expect.Origin `json:"origin,omitempty"`
	Expected string        `json:"expected"`
}

// NewExpectCommand creates the expect command.
func NewExpectCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expect <fixture> <lex|parse|execute>",
		Short: "Show the expectation a stage checks for a fixture",
		Long: `Show the golden value a stage compares against, after the same
normalization the run applies, and where it was read from.

Useful for checking that an annotation block or sibling file is picked up.

Example:
  goldrun expect tests/006.c parse
  goldrun expect tests/006.c execute --format json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showExpectation(rootOpts, args[0], args[1], cmd)
		},
	}
	return cmd
}

func showExpectation(opts *RootOptions, path, stageName string, cmd *cobra.Command) error {
	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	cfg, err := loadConfig(opts)
	if err != nil {
		return f.Fail(ExitCommandError, CodeConfig, "failed to load config", err)
	}

	name, err := stage.ParseName(stageName)
	if err != nil {
		return f.Fail(ExitCommandError, CodeExpectation, "invalid stage", err)
	}
	check, err := checkFor(cfg, name)
	if err != nil {
		return f.Fail(ExitCommandError, CodeConfig, "invalid configuration", err)
	}

	fx, err := fixture.Load(path)
	if err != nil {
		return f.Fail(ExitCommandError, CodeFixtures, "failed to read fixture", err)
	}

	want, err := check.Extract(fx)
	if err != nil {
		return f.Fail(ExitCommandError, CodeExpectation, "failed to extract expectation", err)
	}

	res := ExpectResult{
		Fixture: fx.Path,
		Stage:   name,
		Kind:    want.Kind,
		Origin:  want.Origin,
	}
	if want.Kind != expect.KindNone {
		res.Expected = check.Compare.Expected(want)
	}
	return f.Success(res, formatExpectation(res))
}

// checkFor builds the single stage check the run would use for name.
func checkFor(cfg *config.Config, name stage.Name) (*stage.Check, error) {
	hopts, err := harnessOptions(cfg)
	if err != nil {
		return nil, err
	}
	if name == stage.Execute {
		return stage.ExecCheck(hopts.Toolchain), nil
	}
	return stage.TextCheck(name, hopts.Toolchain, hopts.Extractor, stage.TextComparator{Normalizer: hopts.Normalizer})
}

func formatExpectation(res ExpectResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "fixture: %s\n", res.Fixture)
	fmt.Fprintf(&b, "stage:   %s\n", res.Stage)
	if res.Kind == expect.KindNone {
		fmt.Fprintf(&b, "source:  none (no %s directive, not checked)\n", expect.DirectiveToken)
		return b.String()
	}
	fmt.Fprintf(&b, "source:  %s\n", res.Origin)
	fmt.Fprintf(&b, "%s\n", res.Expected)
	return b.String()
}
