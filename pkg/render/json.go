package render

import (
	"encoding/json"

	"github.com/matzehuels/bookdash/pkg/views"
)

// Document is the JSON form of a rendered view.
type Document struct {
	*views.View
	Spec  Spec    `json:"spec"`
	Color string  `json:"color"`
	Total float64 `json:"total"`
}

// RenderJSON encodes v together with its presentation spec.
func RenderJSON(v *views.View, spec Spec) ([]byte, error) {
	return json.MarshalIndent(NewDocument(v, spec), "", "  ")
}

// NewDocument pairs v with its spec.
func NewDocument(v *views.View, spec Spec) Document {
	return Document{View: v, Spec: spec, Color: spec.Hex(), Total: v.Total()}
}
