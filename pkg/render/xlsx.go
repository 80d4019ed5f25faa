package render

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/matzehuels/bookdash/pkg/errors"
	"github.com/matzehuels/bookdash/pkg/views"
)

// RenderXLSX writes v into a single worksheet named after the view, with the
// series in columns A and B and a native chart beside it.
func RenderXLSX(v *views.View, spec Spec) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := string(v.Name)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "xlsx sheet")
	}
	if err := writeSheet(f, sheet, v, spec); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "xlsx %s", v.Name)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "xlsx write")
	}
	return buf.Bytes(), nil
}

// WriteWorkbook writes every view into its own sheet of one workbook.
func WriteWorkbook(vs []*views.View, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, v := range vs {
		sheet := string(v.Name)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
		if err := writeSheet(f, sheet, v, SpecFor(v.Name)); err != nil {
			return fmt.Errorf("sheet %s: %w", sheet, err)
		}
	}
	return f.SaveAs(path)
}

func writeSheet(f *excelize.File, sheet string, v *views.View, spec Spec) error {
	headers := []string{v.Key, v.Measure}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(sheet, "A", "A", 40); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "B", "B", 14); err != nil {
		return err
	}

	for i, p := range v.Points {
		row := i + 2
		if err := f.SetCellValue(sheet, fmt.Sprintf("A%d", row), p.Label); err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, fmt.Sprintf("B%d", row), p.Value); err != nil {
			return err
		}
	}
	if v.Len() == 0 {
		return nil
	}

	last := v.Len() + 1
	return f.AddChart(sheet, "D2", &excelize.Chart{
		Type: chartType(spec.Kind),
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("'%s'!$B$1", sheet),
			Categories: fmt.Sprintf("'%s'!$A$2:$A$%d", sheet, last),
			Values:     fmt.Sprintf("'%s'!$B$2:$B$%d", sheet, last),
		}},
		Title:  []excelize.RichTextRun{{Text: spec.Title}},
		Legend: excelize.ChartLegend{Position: "none"},
	})
}

func chartType(k Kind) excelize.ChartType {
	switch k {
	case KindLine:
		return excelize.Line
	case KindHBar:
		return excelize.Bar
	default:
		return excelize.Col
	}
}
