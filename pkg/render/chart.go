package render

import (
	"bytes"
	"math"
	"slices"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/matzehuels/bookdash/pkg/errors"
	"github.com/matzehuels/bookdash/pkg/views"
)

// RenderChart draws v as an SVG, PNG or PDF chart.
func RenderChart(v *views.View, spec Spec, f Format, opts Options) ([]byte, error) {
	opts = opts.WithDefaults()
	p, err := Plot(v, spec)
	if err != nil {
		return nil, err
	}

	w, err := p.WriterTo(vg.Length(opts.Width)*vg.Inch, vg.Length(opts.Height)*vg.Inch, string(f))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render %s as %s", v.Name, f)
	}
	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "write %s chart", f)
	}
	return buf.Bytes(), nil
}

// Plot builds the gonum plot for v. A view without points yields an empty
// chart with title and axis labels.
func Plot(v *views.View, spec Spec) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = spec.Title
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.X.Label.Text = spec.XLabel
	p.Y.Label.Text = spec.YLabel
	if spec.Grid {
		p.Add(plotter.NewGrid())
	}
	if v.Len() == 0 {
		return p, nil
	}

	switch spec.Kind {
	case KindLine:
		return p, addLine(p, v, spec)
	case KindHBar:
		return p, addBars(p, v, spec, true)
	default:
		return p, addBars(p, v, spec, false)
	}
}

func addLine(p *plot.Plot, v *views.View, spec Spec) error {
	pts := make(plotter.XYs, v.Len())
	for i, pt := range v.Points {
		pts[i].X = pt.X
		pts[i].Y = pt.Value
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "line chart for %s", v.Name)
	}
	line.Color = spec.Color
	line.Width = vg.Points(2)
	p.Add(line)
	return nil
}

func addBars(p *plot.Plot, v *views.View, spec Spec, horizontal bool) error {
	values := plotter.Values(v.Values())
	labels := v.Labels()
	if horizontal {
		// Bars are stacked bottom-up; reverse so the first entry is on top.
		slices.Reverse(values)
		slices.Reverse(labels)
	}

	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "bar chart for %s", v.Name)
	}
	bars.Color = spec.Color
	bars.LineStyle.Width = vg.Length(0)
	bars.Horizontal = horizontal
	p.Add(bars)

	if horizontal {
		p.NominalY(labels...)
		p.X.Min = 0
		return nil
	}

	p.NominalX(labels...)
	p.Y.Min = 0
	if len(labels) > 5 {
		p.X.Tick.Label.Rotation = math.Pi / 4
		p.X.Tick.Label.XAlign = draw.XRight
		p.X.Tick.Label.YAlign = draw.YCenter
	}
	return nil
}
