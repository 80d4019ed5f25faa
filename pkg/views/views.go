// Package views derives the five dashboard views from a loaded dataset.
//
// Every view is a pure function of a [books.Dataset]: the same dataset always
// yields the same [View], and the dataset is never modified. Views carry only
// data (labels and ordered values); titles, colors and chart kinds live in
// package render.
//
// # Ordering
//
// Ties are always broken explicitly so results do not depend on sort
// stability or map iteration order:
//
//   - trend: year ascending, then source row order
//   - top-books: sales descending, then source row order
//   - top-authors: summed sales descending, then author name ascending
//   - genre-distribution: count descending, then first appearance
//   - sales-by-decade: decade ascending
package views

import (
	"strings"

	"github.com/matzehuels/bookdash/pkg/books"
	"github.com/matzehuels/bookdash/pkg/errors"
)

// Name identifies a view.
type Name string

// The five views, in dashboard order.
const (
	Trend             Name = "trend"
	TopBooks          Name = "top-books"
	TopAuthors        Name = "top-authors"
	GenreDistribution Name = "genre-distribution"
	SalesByDecade     Name = "sales-by-decade"
)

// Limit is the number of entries kept by the top-N views.
const Limit = 10

// Measures.
const (
	MeasureSales = "sales"
	MeasureCount = "count"
)

var names = []Name{Trend, TopBooks, TopAuthors, GenreDistribution, SalesByDecade}

var labels = map[Name]string{
	Trend:             "Sales Trend",
	TopBooks:          "Top Selling Books",
	TopAuthors:        "Top Authors",
	GenreDistribution: "Genre Distribution",
	SalesByDecade:     "Sales by Decade",
}

// Names returns all view names in dashboard order.
func Names() []Name {
	return append([]Name(nil), names...)
}

// Label returns the display heading of the view.
func (n Name) Label() string {
	return labels[n]
}

// Valid reports whether n names a known view.
func (n Name) Valid() bool {
	_, ok := labels[n]
	return ok
}

// Parse converts s into a view name. Matching is case-insensitive and accepts
// underscores in place of dashes.
func Parse(s string) (Name, error) {
	n := Name(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-"))
	if !n.Valid() {
		return "", errors.New(errors.ErrCodeInvalidView, "unknown view %q (want one of %s)", s, strings.Join(nameStrings(), ", "))
	}
	return n, nil
}

// ParseAll parses every element of ss. An empty input selects all views.
func ParseAll(ss []string) ([]Name, error) {
	if len(ss) == 0 {
		return Names(), nil
	}
	out := make([]Name, 0, len(ss))
	for _, s := range ss {
		n, err := Parse(s)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func nameStrings() []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = string(n)
	}
	return out
}

// Point is one entry of a view.
type Point struct {
	Label string  `json:"label"`
	X     float64 `json:"x"` // Numeric key (year or decade); zero for nominal views
	Value float64 `json:"value"`
}

// View is a named, ordered series.
type View struct {
	Name    Name    `json:"name"`
	Label   string  `json:"label"`
	Key     string  `json:"key"`     // What each point's label denotes, e.g. "author"
	Measure string  `json:"measure"` // MeasureSales or MeasureCount
	Points  []Point `json:"points"`
}

// Len returns the number of points.
func (v *View) Len() int {
	return len(v.Points)
}

// Total sums the values of all points.
func (v *View) Total() float64 {
	var t float64
	for _, p := range v.Points {
		t += p.Value
	}
	return t
}

// Labels returns the point labels in order.
func (v *View) Labels() []string {
	out := make([]string, len(v.Points))
	for i, p := range v.Points {
		out[i] = p.Label
	}
	return out
}

// Values returns the point values in order.
func (v *View) Values() []float64 {
	out := make([]float64, len(v.Points))
	for i, p := range v.Points {
		out[i] = p.Value
	}
	return out
}

// Compute derives the named view from ds.
func Compute(name Name, ds *books.Dataset) (*View, error) {
	var fn func([]books.Record) []Point
	switch name {
	case Trend:
		fn = trend
	case TopBooks:
		fn = topBooks
	case TopAuthors:
		fn = topAuthors
	case GenreDistribution:
		fn = genreDistribution
	case SalesByDecade:
		fn = salesByDecade
	default:
		return nil, errors.New(errors.ErrCodeInvalidView, "unknown view %q", name)
	}

	var records []books.Record
	if ds != nil {
		records = ds.Records
	}
	return &View{
		Name:    name,
		Label:   name.Label(),
		Key:     keys[name],
		Measure: measures[name],
		Points:  fn(records),
	}, nil
}

// ComputeAll derives every view in dashboard order.
func ComputeAll(ds *books.Dataset) []*View {
	out := make([]*View, 0, len(names))
	for _, n := range names {
		v, _ := Compute(n, ds)
		out = append(out, v)
	}
	return out
}

var keys = map[Name]string{
	Trend:             "year",
	TopBooks:          "book",
	TopAuthors:        "author",
	GenreDistribution: "genre",
	SalesByDecade:     "decade",
}

var measures = map[Name]string{
	Trend:             MeasureSales,
	TopBooks:          MeasureSales,
	TopAuthors:        MeasureSales,
	GenreDistribution: MeasureCount,
	SalesByDecade:     MeasureSales,
}
