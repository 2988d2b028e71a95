// Package cli provides the command-line interface for todo.
package cli

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/runoshun/todo/internal/app"
	"github.com/runoshun/todo/internal/domain"
	"github.com/runoshun/todo/internal/tui"
)

// Command group IDs.
const (
	groupSetup = "setup"
	groupTask  = "task"
)

// ConfigFlag is the persistent flag naming an explicit config file.
// main reads it before the container is built.
const ConfigFlag = "config"

// persistenceWarning is printed when a change was applied but not saved.
const persistenceWarning = "Warning: changes may not survive a restart"

// launchTUIFunc is a function variable for launching the TUI, allowing it to be mocked in tests.
var launchTUIFunc = launchTUI

// NewRootCommand creates the root command for todo.
// It receives the container for dependency injection and version for display.
func NewRootCommand(c *app.Container, version string) *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "todo",
		Short: "Minimal task list manager",
		Long: `todo keeps a flat list of tasks that survives restarts.

Run without arguments to open the interactive TUI, or use the
subcommands below to script the same operations.`,
		Version: version,
		// SilenceUsage prevents usage from being printed on errors
		SilenceUsage: true,
		// SilenceErrors prevents Cobra from printing errors (we handle it in main)
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip if container is nil (e.g. in tests)
			if c == nil || c.AppConfig == nil {
				return nil
			}
			for _, w := range c.AppConfig.Warnings {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", w)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Default: launch TUI
			return launchTUIFunc(cmd, c)
		},
	}

	root.PersistentFlags().StringVar(&configPath, ConfigFlag, "", "Path to a config file (default: $XDG_CONFIG_HOME/todo/config.toml)")

	// Define command groups
	root.AddGroup(
		&cobra.Group{ID: groupTask, Title: "Task Management:"},
		&cobra.Group{ID: groupSetup, Title: "Setup Commands:"},
	)

	// Task management commands
	addCmd := newAddCommand(c)
	addCmd.GroupID = groupTask

	listCmd := newListCommand(c)
	listCmd.GroupID = groupTask

	editCmd := newEditCommand(c)
	editCmd.GroupID = groupTask

	doneCmd := newDoneCommand(c)
	doneCmd.GroupID = groupTask

	rmCmd := newRmCommand(c)
	rmCmd.GroupID = groupTask

	exportCmd := newExportCommand(c)
	exportCmd.GroupID = groupTask

	tuiCmd := newTUICommand(c)
	tuiCmd.GroupID = groupTask

	// Setup commands
	themeCmd := newThemeCommand(c)
	themeCmd.GroupID = groupSetup

	configCmd := newConfigCommand(c)
	configCmd.GroupID = groupSetup

	root.AddCommand(
		addCmd,
		listCmd,
		editCmd,
		doneCmd,
		rmCmd,
		exportCmd,
		tuiCmd,
		themeCmd,
		configCmd,
	)

	return root
}

// launchTUI runs the interactive TUI until the user quits.
func launchTUI(cmd *cobra.Command, c *app.Container) error {
	if c == nil {
		return errors.New("todo is not initialized")
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	model := tui.New(ctx, c.TaskManager(ctx), c.Themes)
	defer model.Close()
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// checkPersisted prints the persistence warning when err reports a failed save.
// The error is returned unchanged so the command exits non-zero.
func checkPersisted(cmd *cobra.Command, err error) error {
	if errors.Is(err, domain.ErrPersistence) {
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), persistenceWarning)
	}
	return err
}
