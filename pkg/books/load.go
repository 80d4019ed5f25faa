package books

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/bookdash/pkg/errors"
)

// yearLayout parses a year-only date.
const yearLayout = "2006"

// naTokens are the cell values treated as missing, mirroring the defaults of
// common dataframe CSV readers.
var naTokens = map[string]bool{
	"NA":    true,
	"N/A":   true,
	"n/a":   true,
	"NaN":   true,
	"nan":   true,
	"null":  true,
	"NULL":  true,
	"None":  true,
	"<NA>":  true,
	"#N/A":  true,
	"<nil>": true,
}

// Load reads src and cleans its rows into a Dataset.
//
// The fingerprint is taken before the rows are read: if the source changes
// in between, the dataset is tagged with the older fingerprint and the next
// staleness check reloads it.
func Load(ctx context.Context, src Source) (*Dataset, error) {
	fp, err := src.Fingerprint(ctx)
	if err != nil {
		return nil, asUnavailable(src.Name(), err)
	}
	rows, err := src.Rows(ctx)
	if err != nil {
		return nil, asUnavailable(src.Name(), err)
	}

	ds := Clean(rows)
	ds.Source = src.Name()
	ds.Fingerprint = fp
	ds.LoadedAt = time.Now()
	return ds, nil
}

// Clean applies the genre fill and year validation to rows. It never fails:
// rows with an unparseable year are dropped and recorded in the stats.
func Clean(rows []RawRow) *Dataset {
	ds := &Dataset{Records: make([]Record, 0, len(rows))}
	st := &ds.Stats
	st.Read = len(rows)

	for _, raw := range rows {
		published, err := ParseYear(raw.FirstPublished)
		if err != nil {
			st.Skipped++
			st.Skips = append(st.Skips, Skip{
				Row:   raw.Row,
				Value: raw.FirstPublished,
				Err:   errors.RowSkipped(raw.Row, ColFirstPublished, raw.FirstPublished, err),
			})
			continue
		}

		genre := strings.TrimSpace(raw.Genre)
		if IsMissing(genre) {
			genre = UnknownGenre
			st.GenreFilled++
		}

		sales, ok := ParseSales(raw.Sales)
		if !ok {
			st.SalesMissing++
		}

		ds.Records = append(ds.Records, Record{
			Row:            raw.Row,
			Book:           raw.Book,
			Author:         raw.Authors,
			Genre:          genre,
			FirstPublished: published,
			Sales:          sales,
		})
	}

	st.Retained = len(ds.Records)
	return ds
}

// ParseYear parses a four-digit year into January 1st of that year, UTC.
func ParseYear(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) != 4 {
		return time.Time{}, errors.New(errors.ErrCodeInvalidInput, "year %q: want four digits", s)
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return time.Time{}, errors.New(errors.ErrCodeInvalidInput, "year %q: want four digits", s)
		}
	}
	return time.Parse(yearLayout, s)
}

// ParseSales parses a sales figure in millions. A missing or invalid value
// yields 0 and false.
func ParseSales(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if IsMissing(s) {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// IsMissing reports whether a cell value denotes a missing value.
func IsMissing(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || naTokens[s]
}

func asUnavailable(source string, err error) error {
	if errors.GetCode(err) != "" {
		return err
	}
	return errors.DataUnavailable(source, err)
}
