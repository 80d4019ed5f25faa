// Package render turns computed views into charts and tables.
//
// # Overview
//
// Package views produces plain data; every presentation decision lives
// here. Each view has a [Spec] (title, axis labels, chart kind and color)
// and can be written in any [Format]:
//
//   - SVG, PNG, PDF: static charts drawn with gonum/plot
//   - JSON: the self-describing series plus its spec, for web clients
//   - XLSX: a worksheet with the series and a native spreadsheet chart
//   - Text: a table with inline bars for terminals
//
// Usage:
//
//	v, _ := views.Compute(views.TopAuthors, ds)
//	svg, err := render.Render(v, render.FormatSVG, render.Options{})
//
// # Figure Size
//
// Charts default to a 10x6 inch figure. [Options] overrides the size; the
// text sink ignores it.
package render
