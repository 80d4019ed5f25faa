package render

import (
	"strings"

	"github.com/matzehuels/bookdash/pkg/errors"
	"github.com/matzehuels/bookdash/pkg/views"
)

// Format is an output format.
type Format string

const (
	FormatSVG  Format = "svg"
	FormatPNG  Format = "png"
	FormatPDF  Format = "pdf"
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
	FormatText Format = "txt"
)

var formats = []Format{FormatSVG, FormatPNG, FormatPDF, FormatJSON, FormatXLSX, FormatText}

var contentTypes = map[Format]string{
	FormatSVG:  "image/svg+xml",
	FormatPNG:  "image/png",
	FormatPDF:  "application/pdf",
	FormatJSON: "application/json",
	FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	FormatText: "text/plain; charset=utf-8",
}

// Formats returns every supported format.
func Formats() []Format {
	return append([]Format(nil), formats...)
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	return contentTypes[f]
}

// Ext returns the file extension of f, including the dot.
func (f Format) Ext() string {
	return "." + string(f)
}

// ParseFormat converts s into a Format. "text" is accepted for FormatText.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")))
	if f == "text" {
		f = FormatText
	}
	if err := ValidateFormat(f); err != nil {
		return "", err
	}
	return f, nil
}

// ValidateFormat reports an INVALID_FORMAT error for unsupported formats.
func ValidateFormat(f Format) error {
	if _, ok := contentTypes[f]; !ok {
		names := make([]string, len(formats))
		for i, x := range formats {
			names[i] = string(x)
		}
		return errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q (want one of %s)", f, strings.Join(names, ", "))
	}
	return nil
}

// Options configures rendering.
type Options struct {
	Width  float64 // figure width in inches; 0 means DefaultWidth
	Height float64 // figure height in inches; 0 means DefaultHeight
}

// WithDefaults fills zero fields.
func (o Options) WithDefaults() Options {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	return o
}

// Render writes v in the given format.
func Render(v *views.View, f Format, opts Options) ([]byte, error) {
	if v == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "render: nil view")
	}
	if err := ValidateFormat(f); err != nil {
		return nil, err
	}
	opts = opts.WithDefaults()
	spec := SpecFor(v.Name)

	switch f {
	case FormatSVG, FormatPNG, FormatPDF:
		return RenderChart(v, spec, f, opts)
	case FormatJSON:
		return RenderJSON(v, spec)
	case FormatXLSX:
		return RenderXLSX(v, spec)
	case FormatText:
		return []byte(RenderText(v, spec)), nil
	}
	return nil, errors.New(errors.ErrCodeUnsupported, "format %s", f)
}
