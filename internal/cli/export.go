package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/runoshun/todo/internal/app"
	"github.com/runoshun/todo/internal/domain"
	"github.com/runoshun/todo/internal/infra/export"
)

// newExportCommand creates the export command.
func newExportCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Format string
		Output string
		Filter string
		Search string
	}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export tasks as JSON, YAML, Markdown or PDF",
		Long: `Export the tasks that pass the given filter and search term.

Output goes to stdout unless --output is given. PDF output requires --output.

Examples:
  todo export --format markdown
  todo export --format pdf -o tasks.pdf -f active`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := export.ParseFormat(opts.Format)
			if err != nil {
				return err
			}
			if format == export.FormatPDF && opts.Output == "" {
				return fmt.Errorf("pdf export needs --output")
			}
			filter, err := domain.ParseFilter(opts.Filter)
			if err != nil {
				return err
			}

			m := c.TaskManager(cmd.Context())
			m.SetFilter(filter)
			m.SetSearch(opts.Search)
			view := export.View{
				Tasks:    m.VisibleTasks(),
				Criteria: m.Criteria(),
				Total:    m.Counts().Total,
			}

			var w io.Writer = cmd.OutOrStdout()
			if opts.Output != "" {
				f, err := os.Create(opts.Output)
				if err != nil {
					return fmt.Errorf("create output file: %w", err)
				}
				defer func() { _ = f.Close() }()
				w = f
			}

			if err := export.Write(w, format, view); err != nil {
				return fmt.Errorf("export: %w", err)
			}
			if opts.Output != "" {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d tasks to %s\n", len(view.Tasks), opts.Output)
			}
			return nil
		},
	}

	formats := make([]string, 0, len(export.AllFormats))
	for _, f := range export.AllFormats {
		formats = append(formats, string(f))
	}
	cmd.Flags().StringVar(&opts.Format, "format", "json", "Output format: "+strings.Join(formats, ", "))
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Write to a file instead of stdout")
	cmd.Flags().StringVarP(&opts.Filter, "filter", "f", "all", "Completion filter: all, active or completed")
	cmd.Flags().StringVarP(&opts.Search, "search", "s", "", "Case-insensitive substring to match")

	return cmd
}
