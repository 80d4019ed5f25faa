package pipeline

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/bookdash/pkg/books"
	"github.com/matzehuels/bookdash/pkg/cache"
	"github.com/matzehuels/bookdash/pkg/dataset"
	"github.com/matzehuels/bookdash/pkg/errors"
	"github.com/matzehuels/bookdash/pkg/render"
	"github.com/matzehuels/bookdash/pkg/views"
)

func exampleSource() *books.StaticSource {
	return &books.StaticSource{
		Label:   "example",
		Version: "v1",
		Data: []books.RawRow{
			{Row: 1, Book: "Book A", Authors: "Author X", Genre: "Fiction", FirstPublished: "1995", Sales: "20"},
			{Row: 2, Book: "Book B", Authors: "Author X", Genre: "", FirstPublished: "2001", Sales: "15"},
			{Row: 3, Book: "Book C", Authors: "Author Y", Genre: "Fantasy", FirstPublished: "invalid", Sales: "30"},
		},
	}
}

func newRunner(t *testing.T, src books.Source, c cache.Cache) *Runner {
	t.Helper()
	logger := log.New(io.Discard)
	store, err := dataset.New(src, dataset.Options{Logger: logger})
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(store, c, nil, logger)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestValidateAndSetDefaults(t *testing.T) {
	opts := Options{}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults error: %v", err)
	}
	if len(opts.ViewNames()) != len(views.Names()) {
		t.Errorf("default views = %v", opts.ViewNames())
	}
	if len(opts.RenderFormats()) != 1 || opts.RenderFormats()[0] != DefaultFormat {
		t.Errorf("default formats = %v", opts.RenderFormats())
	}
	if opts.Width != render.DefaultWidth || opts.Height != render.DefaultHeight {
		t.Errorf("default size = %vx%v", opts.Width, opts.Height)
	}

	// Idempotent
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Errorf("second call error: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"unknown view", Options{Views: []string{"pie"}}, errors.ErrCodeInvalidView},
		{"unknown format", Options{Formats: []string{"gif"}}, errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestExecute(t *testing.T) {
	r := newRunner(t, exampleSource(), nil)

	res, err := r.Execute(context.Background(), Options{
		Views:   []string{"top-authors", "sales-by-decade"},
		Formats: []string{"json", "txt"},
	})
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}

	if res.RunID == "" || res.DatasetHash == "" {
		t.Error("RunID and DatasetHash should be set")
	}
	if res.Stats.Records != 2 || res.Stats.Skipped != 1 {
		t.Errorf("stats = %+v", res.Stats)
	}
	if len(res.Views) != 2 || res.Views[0].Name != views.TopAuthors {
		t.Fatalf("views = %v", res.Views)
	}
	if p := res.Views[0].Points[0]; p.Label != "Author X" || p.Value != 35 {
		t.Errorf("top author = %+v", p)
	}
	if res.Stats.Artifacts != 4 {
		t.Errorf("artifacts = %d, want 4", res.Stats.Artifacts)
	}
	if !bytes.Contains(res.Artifacts[views.SalesByDecade][render.FormatJSON], []byte(`"1990"`)) {
		t.Error("decade JSON should contain the 1990 bucket")
	}
}

func TestExecuteCaches(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := newRunner(t, exampleSource(), c)
	ctx := context.Background()
	opts := Options{Views: []string{"trend"}, Formats: []string{"svg"}}

	first, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheInfo.DatasetHit || first.CacheInfo.RenderHit {
		t.Errorf("first run should miss: %+v", first.CacheInfo)
	}

	second, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.DatasetHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run should hit: %+v", second.CacheInfo)
	}
	if !bytes.Equal(first.Artifacts[views.Trend][render.FormatSVG], second.Artifacts[views.Trend][render.FormatSVG]) {
		t.Error("cached artifact should equal the rendered one")
	}

	third, err := r.Execute(ctx, Options{Views: []string{"trend"}, Formats: []string{"svg"}, Refresh: true})
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo.DatasetHit || third.CacheInfo.RenderHit {
		t.Errorf("refresh should bypass caches: %+v", third.CacheInfo)
	}
}

func TestExecuteDataUnavailable(t *testing.T) {
	r := newRunner(t, failingSource{}, nil)

	_, err := r.Execute(context.Background(), Options{})
	if !errors.IsDataUnavailable(err) {
		t.Errorf("Execute error = %v, want DATA_UNAVAILABLE", err)
	}
}

func TestArtifact(t *testing.T) {
	r := newRunner(t, exampleSource(), cache.NewNullCache())
	ctx := context.Background()

	data, err := r.Artifact(ctx, views.GenreDistribution, render.FormatText, render.Options{})
	if err != nil {
		t.Fatalf("Artifact error: %v", err)
	}
	if !bytes.Contains(data, []byte(books.UnknownGenre)) {
		t.Errorf("genre table should list %q:\n%s", books.UnknownGenre, data)
	}

	if _, err := r.Artifact(ctx, "pie", render.FormatSVG, render.Options{}); !errors.Is(err, errors.ErrCodeInvalidView) {
		t.Errorf("unknown view error = %v", err)
	}
	if _, err := r.Artifact(ctx, views.Trend, "gif", render.Options{}); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("unknown format error = %v", err)
	}
}

func TestViewsUsesViewCache(t *testing.T) {
	c, _ := cache.NewFileCache(t.TempDir())
	r := newRunner(t, exampleSource(), c)
	ctx := context.Background()

	first, _, err := r.Views(ctx)
	if err != nil {
		t.Fatal(err)
	}
	second, _, err := r.Views(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != len(views.Names()) || len(second) != len(first) {
		t.Fatalf("got %d and %d views", len(first), len(second))
	}
	for i := range first {
		if first[i].Name != second[i].Name || first[i].Total() != second[i].Total() {
			t.Errorf("view %d differs after cache round trip", i)
		}
	}
}

func TestArtifactKeyOptsUsesDefaults(t *testing.T) {
	a := ArtifactKeyOpts(views.Trend, render.FormatSVG, render.Options{})
	b := ArtifactKeyOpts(views.Trend, render.FormatSVG, render.Options{Width: render.DefaultWidth, Height: render.DefaultHeight})
	if a != b {
		t.Errorf("zero options and explicit defaults should share a key: %+v vs %+v", a, b)
	}
}

type failingSource struct{}

func (failingSource) Name() string { return "broken" }
func (failingSource) Fingerprint(context.Context) (string, error) {
	return "", errors.DataUnavailable("broken", io.ErrUnexpectedEOF)
}
func (failingSource) Rows(context.Context) ([]books.RawRow, error) { return nil, io.ErrUnexpectedEOF }
func (failingSource) Close() error                                 { return nil }
