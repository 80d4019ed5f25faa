package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/bookdash/pkg/books"
)

// datasetCommand creates the dataset command, which reports how the source
// was loaded.
func (c *CLI) datasetCommand() *cobra.Command {
	var (
		asJSON    bool
		showSkips bool
	)

	cmd := &cobra.Command{
		Use:   "dataset",
		Short: "Load the data source and report what was kept",
		Long: `Load the data source and report what was kept.

Rows whose "First published" value is not a four-digit year are dropped.
Missing genres are replaced by "Unknown". With --json the cleaned records
are printed instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDataset(cmd.Context(), cmd.OutOrStdout(), asJSON, showSkips)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the cleaned dataset as JSON")
	cmd.Flags().BoolVar(&showSkips, "skips", false, "list the dropped rows")

	return cmd
}

// datasetDocument is the JSON form printed by dataset --json.
type datasetDocument struct {
	Source      string          `json:"source"`
	Fingerprint string          `json:"fingerprint"`
	LoadedAt    time.Time       `json:"loaded_at"`
	Stats       books.LoadStats `json:"stats"`
	Records     []books.Record  `json:"records"`
}

func (c *CLI) runDataset(ctx context.Context, w io.Writer, asJSON, showSkips bool) error {
	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(loggerFromContext(ctx))
	ds, err := runner.Dataset(ctx)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(datasetDocument{
			Source:      ds.Source,
			Fingerprint: ds.Fingerprint,
			LoadedAt:    ds.LoadedAt,
			Stats:       ds.Stats,
			Records:     ds.Records,
		})
	}

	prog.done(fmt.Sprintf("Loaded %s", ds.Source))
	printLoadStats(w, ds, showSkips)
	return nil
}
