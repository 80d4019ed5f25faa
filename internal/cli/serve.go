package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/matzehuels/bookdash/internal/server"
)

// serveCommand creates the serve command, which runs the web dashboard.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr   string
		warmup bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard over HTTP",
		Long: `Serve the dashboard over HTTP.

The dashboard shows the five views in two columns. The dataset is loaded on
the first request and kept according to the configured staleness policy
(process, fingerprint or watch). Rendered charts are cached.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.config().Server.Addr
			}
			return c.runServe(cmd.Context(), cmd.OutOrStdout(), addr, warmup)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&warmup, "warmup", false, "load the dataset before accepting requests")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, w io.Writer, addr string, warmup bool) error {
	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	if warmup {
		prog := newProgress(loggerFromContext(ctx))
		ds, err := runner.Dataset(ctx)
		if err != nil {
			return err
		}
		prog.done(fmt.Sprintf("Loaded %d books from %s", ds.Len(), ds.Source))
	}

	srv := server.New(runner, server.Options{
		Render: c.renderOptions(),
		Logger: c.Logger,
	})

	printInfo(w, "Dashboard at %s", StyleLink.Render("http://"+addr))
	printDetail(w, "Source: %s · policy: %s", runner.Store.Source().Name(), runner.Store.Policy())

	err = srv.ListenAndServe(ctx, addr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
