package render

import (
	"fmt"
	"image/color"

	"github.com/matzehuels/bookdash/pkg/views"
)

// Kind is the chart type used for a view.
type Kind string

const (
	KindLine Kind = "line"
	KindBar  Kind = "bar"  // vertical bars
	KindHBar Kind = "hbar" // horizontal bars, first entry on top
)

// Default figure size in inches.
const (
	DefaultWidth  = 10.0
	DefaultHeight = 6.0
)

// DarkOrange is the series color of every chart.
var DarkOrange = color.RGBA{R: 0xff, G: 0x8c, B: 0x00, A: 0xff}

// Spec holds the presentation settings of one view.
type Spec struct {
	Title  string     `json:"title"`
	XLabel string     `json:"x_label"`
	YLabel string     `json:"y_label"`
	Kind   Kind       `json:"kind"`
	Color  color.RGBA `json:"-"`
	Grid   bool       `json:"grid"`
}

// Hex returns the series color as #rrggbb.
func (s Spec) Hex() string {
	return hex(s.Color)
}

var specs = map[views.Name]Spec{
	views.Trend: {
		Title:  "Best Selling Books: First Published vs Sales",
		XLabel: "Years",
		YLabel: "Sales in Millions",
		Kind:   KindLine,
		Grid:   true,
	},
	views.TopBooks: {
		Title:  "Top 10 Best Selling Books",
		XLabel: "Book",
		YLabel: "Sales in Millions",
		Kind:   KindBar,
	},
	views.TopAuthors: {
		Title:  "Top 10 Authors by Total Sales",
		XLabel: "Author(s)",
		YLabel: "Sales in Millions",
		Kind:   KindBar,
	},
	views.GenreDistribution: {
		Title:  "Top 10 Genres in Best-Selling Books",
		XLabel: "Count",
		YLabel: "Genre",
		Kind:   KindHBar,
	},
	views.SalesByDecade: {
		Title:  "Total Sales per Decade",
		XLabel: "Decade",
		YLabel: "Total Sales (Millions)",
		Kind:   KindBar,
	},
}

// SpecFor returns the spec of the named view. Unknown views get a plain bar
// chart titled with the name.
func SpecFor(name views.Name) Spec {
	s, ok := specs[name]
	if !ok {
		s = Spec{Title: string(name), Kind: KindBar}
	}
	s.Color = DarkOrange
	return s
}

func hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
