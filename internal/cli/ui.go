package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/bookdash/pkg/books"
)

// =============================================================================
// Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // primary
	colorGreen  = lipgloss.Color("35")  // success
	colorYellow = lipgloss.Color("220") // warnings
	colorRed    = lipgloss.Color("167") // errors
	colorBlue   = lipgloss.Color("75")  // links
	colorWhite  = lipgloss.Color("255") // values
	colorGray   = lipgloss.Color("245") // labels
	colorDim    = lipgloss.Color("240") // muted
)

var (
	// StyleTitle for view and section headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleLink for URLs.
	StyleLink = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)

	// StyleDim for secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber for counts that deserve attention.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleWarning for warnings.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleKey         = lipgloss.NewStyle().Foreground(colorGray).Width(14)
	styleCached      = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed    = lipgloss.NewStyle().Foreground(colorGray)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// =============================================================================
// Status lines
// =============================================================================

func printLine(w io.Writer, icon string, style lipgloss.Style, msg string) {
	fmt.Fprintln(w, style.Render(icon)+" "+msg)
}

func printSuccess(w io.Writer, format string, args ...any) {
	printLine(w, iconSuccess, styleIconSuccess, fmt.Sprintf(format, args...))
}

func printError(w io.Writer, format string, args ...any) {
	printLine(w, iconError, styleIconError, fmt.Sprintf(format, args...))
}

func printWarning(w io.Writer, format string, args ...any) {
	printLine(w, iconWarning, styleIconWarning, StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(w io.Writer, format string, args ...any) {
	printLine(w, iconInfo, styleIconInfo, fmt.Sprintf(format, args...))
}

// printDetail prints an indented, muted line under a status line.
func printDetail(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a written output path.
func printFile(w io.Writer, path string) {
	fmt.Fprintln(w, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

func printKeyValue(w io.Writer, key, value string) {
	fmt.Fprintln(w, styleKey.Render(key)+" "+StyleValue.Render(value))
}

// =============================================================================
// Dataset output
// =============================================================================

// printStats prints "N books · M skipped · cached|fresh" on one line.
func printStats(w io.Writer, records, skipped int, cached bool) {
	parts := []string{StyleDim.Render(fmt.Sprintf("%d books", records))}
	if skipped > 0 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%d skipped", skipped)))
	}
	if cached {
		parts = append(parts, styleCached.Render("cached"))
	} else {
		parts = append(parts, styleComputed.Render("fresh"))
	}
	fmt.Fprintln(w, "  "+strings.Join(parts, StyleDim.Render(" · ")))
}

// printLoadStats prints the cleaning report of a dataset. With skips set,
// every dropped row is listed as well.
func printLoadStats(w io.Writer, ds *books.Dataset, skips bool) {
	st := ds.Stats
	printKeyValue(w, "Rows read", strconv.Itoa(st.Read))
	printKeyValue(w, "Retained", StyleNumber.Render(strconv.Itoa(st.Retained)))
	printKeyValue(w, "Skipped", strconv.Itoa(st.Skipped))
	printKeyValue(w, "Genre filled", strconv.Itoa(st.GenreFilled))
	printKeyValue(w, "No sales", strconv.Itoa(st.SalesMissing))
	printKeyValue(w, "Total sales", strconv.FormatFloat(ds.TotalSales(), 'f', -1, 64)+"M")

	if !skips || len(st.Skips) == 0 {
		return
	}
	fmt.Fprintln(w)
	printWarning(w, "Dropped %d rows with an unparseable year", len(st.Skips))
	for _, s := range st.Skips {
		printDetail(w, "row %d: %q", s.Row, s.Value)
	}
}
