// Package pkg provides the core libraries for the bookdash best-selling books
// dashboard.
//
// # Overview
//
// Bookdash loads a table of best-selling books, cleans it, and derives five
// views from it: the sales trend by first publication year, the top selling
// books, the top authors, the genre distribution and the total sales per
// decade. The pkg directory is organized into three areas:
//
//  1. Domain logic ([books], [views], [render])
//  2. Infrastructure ([source/csvfile], [source/mongodb], [dataset], [cache])
//  3. Orchestration ([pipeline]) and shared support ([config], [errors],
//     [observability], [buildinfo])
//
// # Architecture
//
// The data flow through bookdash:
//
//	CSV file / MongoDB collection
//	         ↓
//	    [books] package (clean rows: fill genres, drop unparseable years)
//	         ↓
//	    [dataset] package (keep the dataset until it is stale)
//	         ↓
//	    [views] package (aggregate into labelled points)
//	         ↓
//	    [render] package (SVG/PNG/PDF/JSON/XLSX/text)
//
// Aggregation never renders and rendering never aggregates: a [views.View]
// is plain data and every format in [render] consumes the same value.
//
// # Quick Start
//
//	import (
//	    "context"
//	    "github.com/matzehuels/bookdash/pkg/books"
//	    "github.com/matzehuels/bookdash/pkg/render"
//	    "github.com/matzehuels/bookdash/pkg/source/csvfile"
//	    "github.com/matzehuels/bookdash/pkg/views"
//	)
//
//	// 1. Load and clean the table
//	ds, err := books.Load(context.Background(), csvfile.New("best-selling-books.csv"))
//
//	// 2. Compute a view
//	v, err := views.Compute(views.TopAuthors, ds)
//
//	// 3. Render it
//	svg, err := render.Render(v, render.FormatSVG, render.Options{})
//
// Long-running processes use [pipeline.Runner] instead, which combines a
// [dataset.Store] with a [cache.Cache] for rendered artifacts.
//
// # Testing
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/views/...              # Specific package
//	go test -run Example                 # Examples only
//
// [books]: https://pkg.go.dev/github.com/matzehuels/bookdash/pkg/books
// [views]: https://pkg.go.dev/github.com/matzehuels/bookdash/pkg/views
// [render]: https://pkg.go.dev/github.com/matzehuels/bookdash/pkg/render
// [source/csvfile]: https://pkg.go.dev/github.com/matzehuels/bookdash/pkg/source/csvfile
// [source/mongodb]: https://pkg.go.dev/github.com/matzehuels/bookdash/pkg/source/mongodb
// [dataset]: https://pkg.go.dev/github.com/matzehuels/bookdash/pkg/dataset
// [cache]: https://pkg.go.dev/github.com/matzehuels/bookdash/pkg/cache
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/bookdash/pkg/pipeline
// [config]: https://pkg.go.dev/github.com/matzehuels/bookdash/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/bookdash/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/bookdash/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/bookdash/pkg/buildinfo
package pkg
