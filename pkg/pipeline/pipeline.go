// Package pipeline provides the load → aggregate → render pipeline shared by
// the CLI, the web dashboard and the terminal UI.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: read the dataset through a [dataset.Store] (cached per process)
//  2. Aggregate: compute the requested views from the dataset
//  3. Render: write each view in each requested format
//
// Rendered artifacts are cached in a [cache.Cache] under keys derived from
// the content hash of the dataset, so a reloaded dataset with the same
// records reuses its charts and a changed one never serves stale charts.
//
// # Usage
//
//	runner := pipeline.NewRunner(store, cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Views:   []string{"top-authors"},
//	    Formats: []string{"svg", "json"},
//	})
//	if err != nil {
//	    return err
//	}
//	svg := result.Artifacts[views.TopAuthors][render.FormatSVG]
package pipeline

import (
	"time"

	"github.com/matzehuels/bookdash/pkg/books"
	"github.com/matzehuels/bookdash/pkg/cache"
	"github.com/matzehuels/bookdash/pkg/render"
	"github.com/matzehuels/bookdash/pkg/views"
)

// DefaultFormat is rendered when Options.Formats is empty.
const DefaultFormat = render.FormatSVG

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	Views   []string `json:"views,omitempty"`   // empty selects every view
	Formats []string `json:"formats,omitempty"` // empty selects DefaultFormat
	Width   float64  `json:"width,omitempty"`   // inches
	Height  float64  `json:"height,omitempty"`  // inches
	Refresh bool     `json:"refresh,omitempty"` // reload the dataset and bypass the artifact cache

	names     []views.Name
	formats   []render.Format
	validated bool
}

// ValidateAndSetDefaults parses view names and formats and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}

	names, err := views.ParseAll(o.Views)
	if err != nil {
		return err
	}

	if len(o.Formats) == 0 {
		o.Formats = []string{string(DefaultFormat)}
	}
	formats := make([]render.Format, 0, len(o.Formats))
	for _, s := range o.Formats {
		f, err := render.ParseFormat(s)
		if err != nil {
			return err
		}
		formats = append(formats, f)
	}

	ro := o.RenderOptions().WithDefaults()
	o.Width, o.Height = ro.Width, ro.Height

	o.names = names
	o.formats = formats
	o.validated = true
	return nil
}

// ViewNames returns the parsed view names. Valid after ValidateAndSetDefaults.
func (o *Options) ViewNames() []views.Name {
	return o.names
}

// RenderFormats returns the parsed formats. Valid after ValidateAndSetDefaults.
func (o *Options) RenderFormats() []render.Format {
	return o.formats
}

// RenderOptions returns the figure settings.
func (o *Options) RenderOptions() render.Options {
	return render.Options{Width: o.Width, Height: o.Height}
}

// ArtifactKeyOpts returns cache key options for one artifact.
func ArtifactKeyOpts(name views.Name, f render.Format, ro render.Options) cache.ArtifactKeyOpts {
	ro = ro.WithDefaults()
	return cache.ArtifactKeyOpts{
		View:   string(name),
		Format: string(f),
		Width:  ro.Width,
		Height: ro.Height,
	}
}

// =============================================================================
// Result
// =============================================================================

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies the run in logs.
	RunID string

	// Dataset is the dataset the views were computed from.
	Dataset *books.Dataset

	// DatasetHash is the content hash of the dataset records.
	DatasetHash string

	// Views contains the computed views in request order.
	Views []*views.View

	// Artifacts contains rendered outputs keyed by view and format.
	Artifacts map[views.Name]map[render.Format][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit a cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Records       int
	Skipped       int
	Artifacts     int
	LoadTime      time.Duration
	AggregateTime time.Duration
	RenderTime    time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	DatasetHit bool // Whether the dataset came from the store without a load
	RenderHit  bool // Whether all artifacts came from cache
}
