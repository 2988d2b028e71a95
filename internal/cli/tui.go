package cli

import (
	"github.com/spf13/cobra"

	"github.com/runoshun/todo/internal/app"
)

// newTUICommand creates the tui command for launching the interactive TUI.
// It behaves the same as running `todo` without arguments.
func newTUICommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Launch interactive TUI",
		Long:  `Launch the interactive terminal user interface for managing tasks.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return launchTUIFunc(cmd, c)
		},
	}
}
