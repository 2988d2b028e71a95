package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/runoshun/todo/internal/app"
	"github.com/runoshun/todo/internal/domain"
	"github.com/runoshun/todo/internal/infra/export"
)

// newAddCommand creates the add command for creating a new task.
func newAddCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "add <text...>",
		Short: "Add a task",
		Long: `Add a new task to the end of the list.

All arguments are joined with spaces. Leading and trailing whitespace
is removed; blank text is rejected.

Examples:
  todo add Buy milk
  todo add "Write the release notes"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m := c.TaskManager(cmd.Context())
			task, err := m.Add(cmd.Context(), strings.Join(args, " "))
			if task.ID != 0 {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Added task #%d\n", task.ID)
			}
			return checkPersisted(cmd, err)
		},
	}
}

// newListCommand creates the list command for displaying tasks.
func newListCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Filter string
		Search string
		JSON   bool
	}

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks",
		Long: `Display the tasks that pass the given filter and search term,
in creation order.

Output is tab-separated with columns:
  ID, DONE, TEXT

Examples:
  # All tasks
  todo list

  # Only incomplete tasks containing "milk" (case-insensitive)
  todo list -f active -s milk

  # Machine-readable output
  todo list --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter, err := domain.ParseFilter(opts.Filter)
			if err != nil {
				return err
			}

			m := c.TaskManager(cmd.Context())
			m.SetFilter(filter)
			m.SetSearch(opts.Search)
			tasks := m.VisibleTasks()

			if opts.JSON {
				return export.Write(cmd.OutOrStdout(), export.FormatJSON, export.View{Tasks: tasks})
			}
			printTaskList(cmd.OutOrStdout(), tasks)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.Filter, "filter", "f", "all", "Completion filter: all, active or completed")
	cmd.Flags().StringVarP(&opts.Search, "search", "s", "", "Case-insensitive substring to match")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Print tasks as a JSON array")

	return cmd
}

// printTaskList prints tasks in TSV format.
func printTaskList(w io.Writer, tasks []domain.Task) {
	if len(tasks) == 0 {
		_, _ = fmt.Fprintln(w, "No tasks found")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	defer func() { _ = tw.Flush() }()

	_, _ = fmt.Fprintln(tw, "ID\tDONE\tTEXT")
	for _, t := range tasks {
		_, _ = fmt.Fprintf(tw, "#%d\t%s\t%s\n", t.ID, checkbox(t.Done), t.Text)
	}
}

func checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

// newEditCommand creates the edit command for replacing a task's text.
func newEditCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <id> <text...>",
		Short: "Edit a task's text",
		Long: `Replace the text of a task. The ID and completion state are kept.

Examples:
  todo edit 1704067200000 Buy oat milk
  todo edit "#1704067200000" Buy oat milk`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}

			m := c.TaskManager(cmd.Context())
			task, err := m.Edit(cmd.Context(), id, strings.Join(args[1:], " "))
			if err != nil && !errors.Is(err, domain.ErrPersistence) {
				return taskError(id, err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Updated task #%d\n", task.ID)
			return checkPersisted(cmd, err)
		},
	}
}

// newDoneCommand creates the done command for toggling completion.
func newDoneCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:     "done <id>",
		Aliases: []string{"toggle"},
		Short:   "Toggle a task between active and completed",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}

			m := c.TaskManager(cmd.Context())
			task, err := m.ToggleDone(cmd.Context(), id)
			if err != nil && !errors.Is(err, domain.ErrPersistence) {
				return taskError(id, err)
			}
			state := "active"
			if task.Done {
				state = "completed"
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Task #%d is now %s\n", task.ID, state)
			return checkPersisted(cmd, err)
		},
	}
}

// newRmCommand creates the rm command for deleting a task.
func newRmCommand(c *app.Container) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a task",
		Long: `Delete a task. Asks for confirmation unless --yes is given.

Examples:
  todo rm 1704067200000
  todo rm "#1704067200000" -y`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}

			m := c.TaskManager(cmd.Context())
			if _, ok := m.Get(id); !ok {
				return taskError(id, domain.ErrNotFound)
			}

			if !yes {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Delete task #%d? [y/N] ", id)
				if !confirm(cmd.InOrStdin()) {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Canceled")
					return nil
				}
			}

			_, err = m.Remove(cmd.Context(), id)
			if err != nil && !errors.Is(err, domain.ErrPersistence) {
				return taskError(id, err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed task #%d\n", id)
			return checkPersisted(cmd, err)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Delete without asking")

	return cmd
}

// confirm reads one line and reports whether it is "y" or "yes".
func confirm(r io.Reader) bool {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// parseTaskID parses a task ID string, with or without a leading #.
func parseTaskID(s string) (int64, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(s), "#")
	id, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", domain.ErrInvalidTaskID, s)
	}
	return id, nil
}

// taskError adds the task ID to not-found errors.
func taskError(id int64, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("task #%d: %w", id, err)
	}
	return err
}
