// Package csvfile reads the books table from a CSV file.
//
// The records are loaded into a gota dataframe with type detection
// disabled, so every cell reaches the cleaning step as the exact string
// found in the file. Parsing years and sales is left to package books.
package csvfile

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/matzehuels/bookdash/pkg/books"
	"github.com/matzehuels/bookdash/pkg/errors"
)

// DefaultPath is the dataset file looked up in the working directory.
const DefaultPath = "best-selling-books.csv"

// Source reads a CSV file with a header row.
type Source struct {
	path string
}

// New returns a Source for path. The file is not opened until Rows or
// Fingerprint is called.
func New(path string) *Source {
	if path == "" {
		path = DefaultPath
	}
	return &Source{path: path}
}

// Name returns the file path.
func (s *Source) Name() string {
	return s.path
}

// Path returns the file path.
func (s *Source) Path() string {
	return s.path
}

// Fingerprint combines the file size and modification time.
func (s *Source) Fingerprint(ctx context.Context) (string, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return "", errors.DataUnavailable(s.path, err)
	}
	if info.IsDir() {
		return "", errors.DataUnavailable(s.path, fmt.Errorf("%s is a directory", s.path))
	}
	return fmt.Sprintf("%d-%d", info.Size(), info.ModTime().UnixNano()), nil
}

// Rows parses the file and returns its data rows.
func (s *Source) Rows(ctx context.Context) ([]books.RawRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, errors.DataUnavailable(s.path, err)
	}
	defer f.Close()

	records, err := csv.NewReader(skipBOM(f)).ReadAll()
	if err != nil {
		return nil, errors.DataUnavailable(s.path, err)
	}
	return Records(records, s.path)
}

// Records converts parsed CSV records, header first, into raw rows. A file
// with a header and no data rows yields no rows.
func Records(records [][]string, source string) ([]books.RawRow, error) {
	if len(records) == 0 {
		return nil, errors.DataUnavailable(source, fmt.Errorf("no header row"))
	}
	if len(records) == 1 {
		if missing := books.MissingColumns(records[0]); len(missing) > 0 {
			return nil, errors.New(errors.ErrCodeDataUnavailable, "data source %s: missing columns %q", source, missing)
		}
		return []books.RawRow{}, nil
	}

	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return nil, errors.DataUnavailable(source, df.Err)
	}
	return Frame(df, source)
}

// skipBOM drops a leading UTF-8 byte order mark, as written by spreadsheet
// exports.
func skipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if bom, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(bom, utf8BOM) {
		br.Discard(len(utf8BOM))
	}
	return br
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Close does nothing; the file is opened per read.
func (s *Source) Close() error {
	return nil
}

// Frame extracts the required columns of df. A missing column is reported as
// DATA_UNAVAILABLE for source.
func Frame(df dataframe.DataFrame, source string) ([]books.RawRow, error) {
	if missing := books.MissingColumns(df.Names()); len(missing) > 0 {
		return nil, errors.New(errors.ErrCodeDataUnavailable, "data source %s: missing columns %q", source, missing)
	}

	col := func(name string) []string {
		return df.Col(name).Records()
	}
	titles := col(books.ColBook)
	authors := col(books.ColAuthors)
	genres := col(books.ColGenre)
	published := col(books.ColFirstPublished)
	sales := col(books.ColSales)

	rows := make([]books.RawRow, df.Nrow())
	for i := range rows {
		rows[i] = books.RawRow{
			Row:            i + 1,
			Book:           titles[i],
			Authors:        authors[i],
			Genre:          genres[i],
			FirstPublished: published[i],
			Sales:          sales[i],
		}
	}
	return rows, nil
}

var _ books.Source = (*Source)(nil)
