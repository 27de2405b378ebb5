package wheel

import (
	"encoding/json"

	"github.com/matzehuels/barcodewheel/pkg/catalog"
	"github.com/matzehuels/barcodewheel/pkg/errors"
	"github.com/matzehuels/barcodewheel/pkg/upc"
	layout "github.com/matzehuels/barcodewheel/pkg/wheel"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	products   []catalog.Product
	font       string
	foreground string
	background string
	symbology  string
	backend    string
}

// WithJSONProducts records the catalog content so the document can be
// re-rendered later without the source file.
func WithJSONProducts(products []catalog.Product) JSONOption {
	return func(r *jsonRenderer) { r.products = products }
}

// WithJSONFont records the font family used for labels.
func WithJSONFont(family string) JSONOption {
	return func(r *jsonRenderer) { r.font = family }
}

// WithJSONColors records the render colors.
func WithJSONColors(foreground, background string) JSONOption {
	return func(r *jsonRenderer) { r.foreground = foreground; r.background = background }
}

// WithJSONBarcode records the symbology and encoder backend, enabling
// an identical re-encode on round-trip rendering.
func WithJSONBarcode(symbology, backend string) JSONOption {
	return func(r *jsonRenderer) { r.symbology = symbology; r.backend = backend }
}

// Document is the JSON interchange form of a rendered wheel: the
// computed geometry plus everything needed to draw it again.
type Document struct {
	Layout     *layout.Layout    `json:"layout"`
	Products   []catalog.Product `json:"products,omitempty"`
	Font       string            `json:"font,omitempty"`
	Foreground string            `json:"foreground,omitempty"`
	Background string            `json:"background,omitempty"`
	Symbology  string            `json:"symbology,omitempty"`
	Backend    string            `json:"backend,omitempty"`
}

// RenderJSON exports the layout and render options as a pretty-printed
// JSON document. Saved documents feed the visualize command, which
// re-renders them without recomputing the layout.
func RenderJSON(l *layout.Layout, opts ...JSONOption) ([]byte, error) {
	if l == nil {
		return nil, errors.New(errors.ErrCodeInvalidLayout, "no layout to export")
	}

	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	doc := Document{
		Layout:     l,
		Products:   r.products,
		Font:       r.font,
		Foreground: r.foreground,
		Background: r.background,
		Symbology:  r.symbology,
		Backend:    r.backend,
	}
	return json.MarshalIndent(doc, "", "  ")
}

// ParseJSON reads a saved wheel document and re-validates its content.
func ParseJSON(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parsing wheel document")
	}
	if doc.Layout == nil {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "wheel document has no layout")
	}
	if doc.Layout.Slices < 2 || doc.Layout.Radius <= 0 || len(doc.Layout.Boxes) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "wheel document layout is incomplete")
	}
	if len(doc.Products) > doc.Layout.Slices {
		return nil, errors.New(errors.ErrCodeInvalidFormat,
			"wheel document has %d products for %d slices", len(doc.Products), doc.Layout.Slices)
	}

	for i, p := range doc.Products {
		parsed, err := upc.Parse(p.UPC.String())
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidUPC, err, "product %d", i+1)
		}
		doc.Products[i].UPC = parsed
	}
	return &doc, nil
}
