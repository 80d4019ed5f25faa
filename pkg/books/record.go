package books

import (
	"encoding/json"
	"time"
)

// Column names of the source table. They are exact-match keys.
const (
	ColBook           = "Book"
	ColAuthors        = "Author(s)"
	ColGenre          = "Genre"
	ColFirstPublished = "First published"
	ColSales          = "Approximate sales in millions"
)

// Columns lists the required columns in canonical order.
var Columns = []string{ColBook, ColAuthors, ColGenre, ColFirstPublished, ColSales}

// UnknownGenre replaces missing Genre values.
const UnknownGenre = "Unknown"

// Record is one retained book.
type Record struct {
	Row            int       `json:"row"`
	Book           string    `json:"book"`
	Author         string    `json:"author"`
	Genre          string    `json:"genre"`
	FirstPublished time.Time `json:"first_published"`
	Sales          float64   `json:"sales"`
}

// Year returns the publication year.
func (r Record) Year() int {
	return r.FirstPublished.Year()
}

// Dataset is the cleaned, immutable result of a [Load].
//
// Callers must not modify Records; views always build new slices.
type Dataset struct {
	Source      string    // Source name, e.g. the CSV path
	Fingerprint string    // Source fingerprint at load time
	LoadedAt    time.Time // Wall clock time of the load
	Records     []Record
	Stats       LoadStats
}

// Len returns the number of retained records.
func (d *Dataset) Len() int {
	return len(d.Records)
}

// TotalSales sums sales over all retained records.
func (d *Dataset) TotalSales() float64 {
	var total float64
	for _, r := range d.Records {
		total += r.Sales
	}
	return total
}

// Encode returns the canonical JSON encoding of the retained records.
// It excludes load metadata, so two loads of an unchanged source encode to
// identical bytes.
func (d *Dataset) Encode() ([]byte, error) {
	return json.Marshal(d.Records)
}

// LoadStats summarizes the cleaning pass.
type LoadStats struct {
	Read         int    `json:"read"`          // Data rows read from the source
	Retained     int    `json:"retained"`      // Rows kept
	Skipped      int    `json:"skipped"`       // Rows dropped for an unparseable year
	GenreFilled  int    `json:"genre_filled"`  // Retained rows whose Genre became UnknownGenre
	SalesMissing int    `json:"sales_missing"` // Retained rows whose sales value was missing or invalid
	Skips        []Skip `json:"skips,omitempty"`
}

// Skip describes one dropped row.
type Skip struct {
	Row   int    `json:"row"`
	Value string `json:"value"`
	Err   error  `json:"-"`
}
