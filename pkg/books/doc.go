// Package books loads and cleans the best-selling books dataset.
//
// # Overview
//
// A [Source] yields raw rows with the five required columns as plain
// strings. [Load] turns those rows into an immutable [Dataset]:
//
//   - a missing Genre becomes [UnknownGenre]
//   - First published is parsed as a year-only date; rows that do not parse
//     are dropped and counted in [LoadStats.Skipped]
//   - sales are parsed as millions of copies
//
// Dropped rows are an expected condition, not an error: Load only fails when
// the source itself is unavailable or is missing a required column.
//
// # Determinism
//
// Records keep their 1-based source row number in [Record.Row]. Views use it
// as the tie-break for equal sales, so two loads of the same source always
// produce the same charts.
package books
