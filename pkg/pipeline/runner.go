package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/bookdash/pkg/books"
	"github.com/matzehuels/bookdash/pkg/cache"
	"github.com/matzehuels/bookdash/pkg/dataset"
	"github.com/matzehuels/bookdash/pkg/errors"
	"github.com/matzehuels/bookdash/pkg/observability"
	"github.com/matzehuels/bookdash/pkg/render"
	"github.com/matzehuels/bookdash/pkg/views"
)

// Runner encapsulates pipeline execution with caching.
// The CLI, the web server and the TUI all use it so caching behaves the same
// everywhere.
//
// The Runner keeps no results of its own besides the hash of the most
// recent dataset. Multiple goroutines can safely use the same Runner.
type Runner struct {
	Store  *dataset.Store
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	hashMu  sync.Mutex
	hashFor *books.Dataset
	hash    string
}

// NewRunner creates a runner over store.
// If keyer is nil, a DefaultKeyer is used.
// If c is nil, a NullCache is used (caching disabled).
func NewRunner(store *dataset.Store, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Store:  store,
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → aggregate → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{
		RunID:     uuid.NewString(),
		Artifacts: make(map[views.Name]map[render.Format][]byte),
	}
	logger := r.Logger.With("run", result.RunID[:8])

	// Stage 1: Load
	loadStart := time.Now()
	ds, hit, err := r.DatasetWithCacheInfo(ctx, opts.Refresh)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Dataset = ds
	result.DatasetHash = r.datasetHash(ds)
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.Records = ds.Len()
	result.Stats.Skipped = ds.Stats.Skipped
	result.CacheInfo.DatasetHit = hit

	logger.Info("loaded dataset",
		"source", ds.Source,
		"records", ds.Len(),
		"skipped", ds.Stats.Skipped,
		"cached", hit,
		"duration", result.Stats.LoadTime)

	// Stage 2: Aggregate
	aggStart := time.Now()
	for _, name := range opts.ViewNames() {
		v, err := r.compute(ctx, name, ds)
		if err != nil {
			return nil, fmt.Errorf("aggregate: %w", err)
		}
		result.Views = append(result.Views, v)
	}
	result.Stats.AggregateTime = time.Since(aggStart)

	logger.Info("computed views",
		"views", len(result.Views),
		"duration", result.Stats.AggregateTime)

	// Stage 3: Render
	renderStart := time.Now()
	allCached := true
	for _, v := range result.Views {
		out := make(map[render.Format][]byte, len(opts.RenderFormats()))
		for _, f := range opts.RenderFormats() {
			data, hit, err := r.renderWithCacheInfo(ctx, result.DatasetHash, v, f, opts.RenderOptions(), opts.Refresh)
			if err != nil {
				return nil, fmt.Errorf("render: %w", err)
			}
			allCached = allCached && hit
			out[f] = data
			result.Stats.Artifacts++
		}
		result.Artifacts[v.Name] = out
	}
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = allCached && result.Stats.Artifacts > 0

	logger.Info("rendered outputs",
		"formats", opts.Formats,
		"artifacts", result.Stats.Artifacts,
		"cached", result.CacheInfo.RenderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// DatasetWithCacheInfo returns the current dataset and whether it was served
// without reading the source. With refresh the dataset is reloaded.
func (r *Runner) DatasetWithCacheInfo(ctx context.Context, refresh bool) (*books.Dataset, bool, error) {
	if r.Store == nil {
		return nil, false, errors.New(errors.ErrCodeInternal, "runner has no dataset store")
	}
	if refresh {
		ds, err := r.Store.Refresh(ctx)
		return ds, false, err
	}
	before := r.Store.Loads()
	ds, err := r.Store.Get(ctx)
	if err != nil {
		return nil, false, err
	}
	return ds, r.Store.Loads() == before, nil
}

// Dataset is a convenience wrapper that calls DatasetWithCacheInfo and discards the cache hit info.
func (r *Runner) Dataset(ctx context.Context) (*books.Dataset, error) {
	ds, _, err := r.DatasetWithCacheInfo(ctx, false)
	return ds, err
}

// Views loads the dataset and computes the named views. No names selects
// every view.
func (r *Runner) Views(ctx context.Context, names ...views.Name) ([]*views.View, *books.Dataset, error) {
	ds, err := r.Dataset(ctx)
	if err != nil {
		return nil, nil, err
	}
	if len(names) == 0 {
		names = views.Names()
	}

	out := make([]*views.View, 0, len(names))
	for _, n := range names {
		v, err := r.View(ctx, n, ds)
		if err != nil {
			return nil, nil, err
		}
		out = append(out, v)
	}
	return out, ds, nil
}

// View computes one view of ds, reusing a cached copy when the cache holds
// one for the same dataset content.
func (r *Runner) View(ctx context.Context, name views.Name, ds *books.Dataset) (*views.View, error) {
	if !name.Valid() {
		return nil, errors.New(errors.ErrCodeInvalidView, "unknown view %q", name)
	}
	key := r.Keyer.ViewKey(r.datasetHash(ds), string(name))

	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		var v views.View
		if err := json.Unmarshal(data, &v); err == nil {
			observability.Cache().OnCacheHit(ctx, "view")
			return &v, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, "view")

	v, err := r.compute(ctx, name, ds)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(v); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.TTLView); err == nil {
			observability.Cache().OnCacheSet(ctx, "view", len(data))
		}
	}
	return v, nil
}

// ArtifactWithCacheInfo renders one view in one format and reports whether
// the bytes came from the cache.
func (r *Runner) ArtifactWithCacheInfo(ctx context.Context, name views.Name, f render.Format, ro render.Options) ([]byte, bool, error) {
	if err := render.ValidateFormat(f); err != nil {
		return nil, false, err
	}
	ds, err := r.Dataset(ctx)
	if err != nil {
		return nil, false, err
	}
	v, err := r.View(ctx, name, ds)
	if err != nil {
		return nil, false, err
	}
	return r.renderWithCacheInfo(ctx, r.datasetHash(ds), v, f, ro, false)
}

// Artifact is a convenience wrapper that calls ArtifactWithCacheInfo and discards the cache hit info.
func (r *Runner) Artifact(ctx context.Context, name views.Name, f render.Format, ro render.Options) ([]byte, error) {
	data, _, err := r.ArtifactWithCacheInfo(ctx, name, f, ro)
	return data, err
}

// Close releases resources held by the runner (the cache and the store).
func (r *Runner) Close() error {
	var errs []error
	if r.Cache != nil {
		if err := r.Cache.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if r.Store != nil {
		if err := r.Store.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

func (r *Runner) compute(ctx context.Context, name views.Name, ds *books.Dataset) (*views.View, error) {
	start := time.Now()
	v, err := views.Compute(name, ds)
	if err != nil {
		return nil, err
	}
	observability.Pipeline().OnAggregate(ctx, string(name), v.Len(), time.Since(start))
	return v, nil
}

func (r *Runner) renderWithCacheInfo(ctx context.Context, dsHash string, v *views.View, f render.Format, ro render.Options, refresh bool) ([]byte, bool, error) {
	key := r.Keyer.ArtifactKey(dsHash, ArtifactKeyOpts(v.Name, f, ro))

	if !refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "artifact")
			return data, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
	}

	start := time.Now()
	observability.Pipeline().OnRenderStart(ctx, string(v.Name), string(f))
	data, err := render.Render(v, f, ro)
	observability.Pipeline().OnRenderComplete(ctx, string(v.Name), string(f), len(data), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
		r.Logger.Warn("cache write failed", "view", v.Name, "format", f, "error", err)
	} else {
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}
	return data, false, nil
}

// datasetHash returns the content hash of ds, memoized for the most recent
// dataset.
func (r *Runner) datasetHash(ds *books.Dataset) string {
	r.hashMu.Lock()
	defer r.hashMu.Unlock()
	if r.hashFor == ds && r.hash != "" {
		return r.hash
	}
	data, err := ds.Encode()
	if err != nil {
		return ""
	}
	r.hashFor = ds
	r.hash = cache.Hash(data)
	return r.hash
}
