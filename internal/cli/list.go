package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/goldrun/internal/fixture"
)

// ListResult is the JSON payload of the list command.
type ListResult struct {
	Dir      string   `json:"dir"`
	Fixtures []string `json:"fixtures"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List fixtures in run order",
		Long: `List the fixtures a run would check, in the order it checks them.

Example:
  goldrun list
  goldrun list --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listFixtures(rootOpts, cmd)
		},
	}
	return cmd
}

func listFixtures(opts *RootOptions, cmd *cobra.Command) error {
	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	cfg, err := loadConfig(opts)
	if err != nil {
		return f.Fail(ExitCommandError, CodeConfig, "failed to load config", err)
	}

	paths, err := fixture.Scan(cfg.Fixtures, cfg.Extension)
	if err != nil {
		return f.Fail(ExitCommandError, CodeFixtures, "failed to list fixtures", err)
	}
	if paths == nil {
		paths = []string{}
	}

	var text strings.Builder
	for _, p := range paths {
		text.WriteString(p)
		text.WriteByte('\n')
	}
	return f.Success(ListResult{Dir: cfg.Fixtures, Fixtures: paths}, text.String())
}
