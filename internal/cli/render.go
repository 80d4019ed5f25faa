package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/bookdash/pkg/pipeline"
	"github.com/matzehuels/bookdash/pkg/render"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string // output directory
	views    string // comma-separated view names
	formats  string // comma-separated formats
	workbook string // optional xlsx workbook holding every view
	width    float64
	height   float64
	refresh  bool
}

// renderCommand creates the render command, which writes chart files.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the dashboard views to files",
		Long: `Render the dashboard views to files.

Each view is written to <output>/<view>.<format>, for example
charts/top-authors.svg. Formats: svg (default), png, pdf, json, xlsx, txt.

Rendered charts are cached; --refresh reloads the dataset and renders again.`,
		Example: `  bookdash render
  bookdash render -f svg,png -o charts
  bookdash render --view top-authors,sales-by-decade -f json
  bookdash render --workbook books.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", ".", "output directory")
	cmd.Flags().StringVar(&opts.views, "view", "", "view(s) to render (comma-separated, default all)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): svg (default), png, pdf, json, xlsx, txt (comma-separated)")
	cmd.Flags().StringVar(&opts.workbook, "workbook", "", "also write every view into one xlsx workbook at this path")
	cmd.Flags().Float64Var(&opts.width, "width", 0, "figure width in inches (default from config)")
	cmd.Flags().Float64Var(&opts.height, "height", 0, "figure height in inches (default from config)")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "reload the dataset and bypass the chart cache")

	return cmd
}

// runRender executes the pipeline and writes every artifact.
func (c *CLI) runRender(ctx context.Context, w io.Writer, opts renderOpts) error {
	ro := c.renderOptions()
	if opts.width > 0 {
		ro.Width = opts.width
	}
	if opts.height > 0 {
		ro.Height = opts.height
	}
	popts := pipeline.Options{
		Views:   splitList(opts.views),
		Formats: splitList(opts.formats),
		Width:   ro.Width,
		Height:  ro.Height,
		Refresh: opts.refresh,
	}
	if err := popts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Rendering views...")
	spinner.Start()

	result, err := runner.Execute(ctx, popts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	printSuccess(w, "Rendered %d views from %s", len(result.Views), result.Dataset.Source)
	printStats(w, result.Stats.Records, result.Stats.Skipped, result.CacheInfo.RenderHit)

	paths, err := writeArtifacts(opts.output, result, popts.RenderFormats())
	if err != nil {
		return err
	}
	for _, p := range paths {
		printFile(w, p)
	}

	if opts.workbook != "" {
		if err := render.WriteWorkbook(result.Views, opts.workbook); err != nil {
			return fmt.Errorf("write workbook: %w", err)
		}
		printFile(w, opts.workbook)
	}
	return nil
}

// writeArtifacts writes each artifact of result to dir/<view><ext> in view
// order and returns the written paths.
func writeArtifacts(dir string, result *pipeline.Result, formats []render.Format) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	var paths []string
	for _, v := range result.Views {
		for _, f := range formats {
			data, ok := result.Artifacts[v.Name][f]
			if !ok {
				continue
			}
			path := filepath.Join(dir, string(v.Name)+f.Ext())
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return paths, fmt.Errorf("write %s: %w", path, err)
			}
			paths = append(paths, path)
		}
	}
	return paths, nil
}
