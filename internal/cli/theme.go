package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/runoshun/todo/internal/app"
	"github.com/runoshun/todo/internal/domain"
)

// newThemeCommand creates the theme command for showing or setting the UI theme.
func newThemeCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:       "theme [dark|light]",
		Short:     "Show or set the TUI theme",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{string(domain.ThemeDark), string(domain.ThemeLight)},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), c.Themes.Load(cmd.Context()))
				return nil
			}

			theme, err := domain.ParseTheme(args[0])
			if err != nil {
				return err
			}
			if err := c.Themes.Save(cmd.Context(), theme); err != nil {
				return checkPersisted(cmd, err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Theme set to %s\n", theme)
			return nil
		},
	}
}
