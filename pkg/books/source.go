package books

import (
	"context"
	"slices"
)

// Source yields the raw rows of the books table.
//
// Implementations report every failure to reach the data as a
// DATA_UNAVAILABLE error (see [github.com/matzehuels/bookdash/pkg/errors]).
type Source interface {
	// Name identifies the source in logs and cache keys.
	Name() string

	// Fingerprint returns a cheap version marker that changes whenever the
	// underlying data may have changed.
	Fingerprint(ctx context.Context) (string, error)

	// Rows reads every data row.
	Rows(ctx context.Context) ([]RawRow, error)

	// Close releases any connection held by the source.
	Close() error
}

// RawRow holds the required columns of one data row, unparsed.
type RawRow struct {
	Row            int // 1-based data row number (header excluded)
	Book           string
	Authors        string
	Genre          string
	FirstPublished string
	Sales          string
}

// MissingColumns returns the required columns absent from header, in
// canonical order.
func MissingColumns(header []string) []string {
	var missing []string
	for _, c := range Columns {
		if !slices.Contains(header, c) {
			missing = append(missing, c)
		}
	}
	return missing
}

// StaticSource serves a fixed set of rows. It is useful for tests and for
// embedding small datasets.
type StaticSource struct {
	Label   string
	Version string
	Data    []RawRow
}

// Name returns the source label, defaulting to "static".
func (s *StaticSource) Name() string {
	if s.Label == "" {
		return "static"
	}
	return s.Label
}

// Fingerprint returns the configured version string.
func (s *StaticSource) Fingerprint(context.Context) (string, error) {
	return s.Version, nil
}

// Rows returns a copy of the configured rows.
func (s *StaticSource) Rows(context.Context) ([]RawRow, error) {
	return slices.Clone(s.Data), nil
}

// Close does nothing.
func (s *StaticSource) Close() error { return nil }

var _ Source = (*StaticSource)(nil)
