package books

import (
	"context"
	"errors"
	"reflect"
	"testing"

	bderrors "github.com/matzehuels/bookdash/pkg/errors"
)

func exampleRows() []RawRow {
	return []RawRow{
		{Row: 1, Book: "Book A", Authors: "Author X", Genre: "Fiction", FirstPublished: "1995", Sales: "20"},
		{Row: 2, Book: "Book B", Authors: "Author X", Genre: "", FirstPublished: "2001", Sales: "15"},
		{Row: 3, Book: "Book C", Authors: "Author Y", Genre: "Fantasy", FirstPublished: "invalid", Sales: "30"},
	}
}

func TestCleanExampleScenario(t *testing.T) {
	ds := Clean(exampleRows())

	if ds.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", ds.Len())
	}
	if ds.Records[0].Book != "Book A" || ds.Records[1].Book != "Book B" {
		t.Errorf("retained books = %q, %q", ds.Records[0].Book, ds.Records[1].Book)
	}
	if ds.Records[1].Genre != UnknownGenre {
		t.Errorf("Book B genre = %q, want %q", ds.Records[1].Genre, UnknownGenre)
	}
	if ds.Records[0].Genre != "Fiction" {
		t.Errorf("Book A genre = %q, want Fiction", ds.Records[0].Genre)
	}
	if ds.Records[0].Year() != 1995 || ds.Records[1].Year() != 2001 {
		t.Errorf("years = %d, %d", ds.Records[0].Year(), ds.Records[1].Year())
	}

	st := ds.Stats
	if st.Read != 3 || st.Retained != 2 || st.Skipped != 1 || st.GenreFilled != 1 {
		t.Errorf("stats = %+v", st)
	}
	if len(st.Skips) != 1 || st.Skips[0].Row != 3 || st.Skips[0].Value != "invalid" {
		t.Fatalf("skips = %+v", st.Skips)
	}
	if !bderrors.Is(st.Skips[0].Err, bderrors.ErrCodeRowParseSkipped) {
		t.Errorf("skip error code = %v", bderrors.GetCode(st.Skips[0].Err))
	}
}

func TestCleanRetainsIffYearParses(t *testing.T) {
	values := []struct {
		year string
		keep bool
	}{
		{"1995", true},
		{" 2001 ", true},
		{"0800", true},
		{"", false},
		{"95", false},
		{"19955", false},
		{"1995.0", false},
		{"-123", false},
		{"+199", false},
		{"abcd", false},
		{"NaN", false},
	}

	rows := make([]RawRow, len(values))
	for i, v := range values {
		rows[i] = RawRow{Row: i + 1, Book: v.year, Genre: "g", FirstPublished: v.year, Sales: "1"}
	}
	ds := Clean(rows)

	kept := map[int]bool{}
	for _, r := range ds.Records {
		kept[r.Row] = true
	}
	for i, v := range values {
		if kept[i+1] != v.keep {
			t.Errorf("year %q retained = %v, want %v", v.year, kept[i+1], v.keep)
		}
	}
	if ds.Stats.Retained+ds.Stats.Skipped != ds.Stats.Read {
		t.Errorf("retained + skipped != read: %+v", ds.Stats)
	}
}

func TestCleanGenreNormalization(t *testing.T) {
	genres := []struct {
		in   string
		want string
	}{
		{"Fiction", "Fiction"},
		{"", UnknownGenre},
		{"   ", UnknownGenre},
		{"NaN", UnknownGenre},
		{"NA", UnknownGenre},
		{"None", UnknownGenre},
		{" Mystery ", "Mystery"},
		{"Unknown", "Unknown"},
	}

	rows := make([]RawRow, len(genres))
	for i, g := range genres {
		rows[i] = RawRow{Row: i + 1, Genre: g.in, FirstPublished: "2000", Sales: "1"}
	}
	ds := Clean(rows)

	for i, g := range genres {
		if got := ds.Records[i].Genre; got != g.want {
			t.Errorf("genre %q -> %q, want %q", g.in, got, g.want)
		}
	}
	if ds.Stats.GenreFilled != 4 {
		t.Errorf("GenreFilled = %d, want 4", ds.Stats.GenreFilled)
	}
}

func TestParseSales(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"20", 20, true},
		{" 15.5 ", 15.5, true},
		{"", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
		{"lots", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseSales(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseSales(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestCleanSalesMissingKeepsRow(t *testing.T) {
	ds := Clean([]RawRow{{Row: 1, Book: "x", FirstPublished: "1990", Sales: "n/a"}})

	if ds.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", ds.Len())
	}
	if ds.Records[0].Sales != 0 || ds.Stats.SalesMissing != 1 {
		t.Errorf("sales = %v, SalesMissing = %d", ds.Records[0].Sales, ds.Stats.SalesMissing)
	}
}

func TestLoadIdempotent(t *testing.T) {
	src := &StaticSource{Label: "mem", Version: "v1", Data: exampleRows()}
	ctx := context.Background()

	a, err := Load(ctx, src)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	b, err := Load(ctx, src)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if !reflect.DeepEqual(a.Records, b.Records) {
		t.Error("two loads of an unchanged source should yield identical records")
	}
	ea, _ := a.Encode()
	eb, _ := b.Encode()
	if string(ea) != string(eb) {
		t.Error("Encode() should be byte-for-byte stable")
	}
	if a.Source != "mem" || a.Fingerprint != "v1" {
		t.Errorf("Source = %q, Fingerprint = %q", a.Source, a.Fingerprint)
	}
}

type failingSource struct{ StaticSource }

func (failingSource) Rows(context.Context) ([]RawRow, error) {
	return nil, errors.New("disk on fire")
}

func TestLoadUnavailable(t *testing.T) {
	_, err := Load(context.Background(), &failingSource{})
	if err == nil {
		t.Fatal("Load() should fail")
	}
	if !bderrors.IsDataUnavailable(err) {
		t.Errorf("error code = %v, want DATA_UNAVAILABLE", bderrors.GetCode(err))
	}
}

func TestMissingColumns(t *testing.T) {
	if got := MissingColumns(Columns); len(got) != 0 {
		t.Errorf("MissingColumns(Columns) = %v, want none", got)
	}

	got := MissingColumns([]string{"Book", "Genre", "Extra"})
	want := []string{ColAuthors, ColFirstPublished, ColSales}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MissingColumns() = %v, want %v", got, want)
	}
}

func TestTotalSales(t *testing.T) {
	ds := Clean(exampleRows())
	if got := ds.TotalSales(); got != 35 {
		t.Errorf("TotalSales() = %v, want 35", got)
	}
}
