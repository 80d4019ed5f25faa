package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/bookdash/pkg/render"
	"github.com/matzehuels/bookdash/pkg/views"
)

// viewsCommand creates the views command, which prints views as tables.
func (c *CLI) viewsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "views [view...]",
		Short: "Print dashboard views as terminal tables",
		Long: `Print dashboard views as terminal tables.

Without arguments all five views are printed in dashboard order:
` + viewList(),
		ValidArgs: viewArgs(),
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := views.ParseAll(args)
			if err != nil {
				return err
			}
			return c.runViews(cmd.Context(), cmd.OutOrStdout(), names)
		},
	}
	return cmd
}

func (c *CLI) runViews(ctx context.Context, w io.Writer, names []views.Name) error {
	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	vs, _, err := runner.Views(ctx, names...)
	if err != nil {
		return err
	}
	for i, v := range vs {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, StyleTitle.Render(v.Label))
		fmt.Fprintln(w, render.RenderText(v, render.SpecFor(v.Name)))
	}
	return nil
}

func viewArgs() []string {
	names := views.Names()
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = string(n)
	}
	return out
}

func viewList() string {
	var s string
	for _, n := range views.Names() {
		s += fmt.Sprintf("  %-20s %s\n", n, n.Label())
	}
	return s
}
