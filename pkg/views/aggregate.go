package views

import (
	"cmp"
	"slices"
	"strconv"

	"github.com/matzehuels/bookdash/pkg/books"
)

// Decade floors a year to its decade bucket.
func Decade(year int) int {
	d := year / 10 * 10
	if year < 0 && year%10 != 0 {
		d -= 10
	}
	return d
}

func trend(records []books.Record) []Point {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b books.Record) int {
		return cmp.Or(cmp.Compare(a.Year(), b.Year()), cmp.Compare(a.Row, b.Row))
	})

	out := make([]Point, len(sorted))
	for i, r := range sorted {
		out[i] = Point{Label: strconv.Itoa(r.Year()), X: float64(r.Year()), Value: r.Sales}
	}
	return out
}

func topBooks(records []books.Record) []Point {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b books.Record) int {
		return cmp.Or(cmp.Compare(b.Sales, a.Sales), cmp.Compare(a.Row, b.Row))
	})

	sorted = sorted[:min(Limit, len(sorted))]
	out := make([]Point, len(sorted))
	for i, r := range sorted {
		out[i] = Point{Label: r.Book, Value: r.Sales}
	}
	return out
}

// group is an accumulator keyed by label that remembers first appearance.
type group struct {
	label string
	first int
	value float64
}

func accumulate(records []books.Record, key func(books.Record) string, value func(books.Record) float64) []*group {
	index := make(map[string]*group)
	var order []*group
	for i, r := range records {
		k := key(r)
		g, ok := index[k]
		if !ok {
			g = &group{label: k, first: i}
			index[k] = g
			order = append(order, g)
		}
		g.value += value(r)
	}
	return order
}

func topAuthors(records []books.Record) []Point {
	groups := accumulate(records,
		func(r books.Record) string { return r.Author },
		func(r books.Record) float64 { return r.Sales })

	slices.SortFunc(groups, func(a, b *group) int {
		return cmp.Or(cmp.Compare(b.value, a.value), cmp.Compare(a.label, b.label))
	})
	return groupPoints(groups[:min(Limit, len(groups))])
}

func genreDistribution(records []books.Record) []Point {
	groups := accumulate(records,
		func(r books.Record) string { return r.Genre },
		func(books.Record) float64 { return 1 })

	slices.SortFunc(groups, func(a, b *group) int {
		return cmp.Or(cmp.Compare(b.value, a.value), cmp.Compare(a.first, b.first))
	})
	return groupPoints(groups[:min(Limit, len(groups))])
}

func salesByDecade(records []books.Record) []Point {
	sums := make(map[int]float64)
	for _, r := range records {
		sums[Decade(r.Year())] += r.Sales
	}

	decades := make([]int, 0, len(sums))
	for d := range sums {
		decades = append(decades, d)
	}
	slices.Sort(decades)

	out := make([]Point, len(decades))
	for i, d := range decades {
		out[i] = Point{Label: strconv.Itoa(d), X: float64(d), Value: sums[d]}
	}
	return out
}

func groupPoints(groups []*group) []Point {
	out := make([]Point, len(groups))
	for i, g := range groups {
		out[i] = Point{Label: g.label, Value: g.value}
	}
	return out
}
