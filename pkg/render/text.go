package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/bookdash/pkg/views"
)

// BarWidth is the width in cells of the longest text bar.
const BarWidth = 30

var (
	textTitle  = lipgloss.NewStyle().Bold(true)
	textHeader = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	textCell   = lipgloss.NewStyle().Padding(0, 1)
	textBorder = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// RenderText formats v as a table with one bar per point, scaled to the
// largest value. Points at or below zero get an empty bar.
func RenderText(v *views.View, spec Spec) string {
	bar := lipgloss.NewStyle().Foreground(lipgloss.Color(spec.Hex()))

	var top float64
	for _, p := range v.Points {
		top = max(top, p.Value)
	}

	rows := make([][]string, len(v.Points))
	for i, p := range v.Points {
		n := 0
		if top > 0 {
			n = max(0, int(p.Value/top*BarWidth))
		}
		rows[i] = []string{
			strconv.Itoa(i + 1),
			p.Label,
			formatValue(p.Value, v.Measure),
			bar.Render(strings.Repeat("█", n)),
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(textBorder).
		Headers("#", strings.ToUpper(v.Key), strings.ToUpper(v.Measure), "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return textHeader
			}
			return textCell
		})

	return textTitle.Render(spec.Title) + "\n" + t.String() + "\n"
}

func formatValue(v float64, measure string) string {
	if measure == views.MeasureCount {
		return strconv.Itoa(int(v))
	}
	return fmt.Sprintf("%.1f", v)
}
