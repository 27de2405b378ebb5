package wheel

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/matzehuels/barcodewheel/pkg/barcode"
	"github.com/matzehuels/barcodewheel/pkg/catalog"
	"github.com/matzehuels/barcodewheel/pkg/errors"
	"github.com/matzehuels/barcodewheel/pkg/picture"
	"github.com/matzehuels/barcodewheel/pkg/typeset"
	layout "github.com/matzehuels/barcodewheel/pkg/wheel"
)

// SVGOption configures SVG rendering via [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	shaper      *typeset.Shaper
	fontFamily  string
	symbols     map[string]*barcode.Symbol
	pictures    map[string]*picture.Picture
	foreground  string
	background  string
	canvas      string
	strokeWidth float64
}

// WithText supplies the shaper and font family used to measure label
// text. Text slots stay empty without it.
func WithText(s *typeset.Shaper, family string) SVGOption {
	return func(r *svgRenderer) {
		r.shaper = s
		if family != "" {
			r.fontFamily = family
		}
	}
}

// WithSymbols supplies generated barcode symbols keyed by UPC value.
func WithSymbols(symbols map[string]*barcode.Symbol) SVGOption {
	return func(r *svgRenderer) { r.symbols = symbols }
}

// WithPictures supplies loaded pictures keyed by catalog reference.
func WithPictures(pics map[string]*picture.Picture) SVGOption {
	return func(r *svgRenderer) { r.pictures = pics }
}

// WithColors overrides the foreground and background colors. They feed
// the barcode CSS classes, label fill, and the pie outline stroke.
func WithColors(foreground, background string) SVGOption {
	return func(r *svgRenderer) {
		if foreground != "" {
			r.foreground = foreground
		}
		if background != "" {
			r.background = background
		}
	}
}

// WithCanvas paints the whole canvas with a color. The default leaves
// it transparent.
func WithCanvas(color string) SVGOption {
	return func(r *svgRenderer) { r.canvas = color }
}

// WithStrokeWidth sets the pie outline stroke width (default 1).
func WithStrokeWidth(w float64) SVGOption {
	return func(r *svgRenderer) { r.strokeWidth = w }
}

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{
		fontFamily:  "sans-serif",
		foreground:  "#000000",
		background:  "#FFFFFF",
		strokeWidth: 1,
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// sliceContent holds the def ids and picture filling one slice.
type sliceContent struct {
	barcodeID string
	digitsID  string
	nameID    string
	pic       *picture.Picture
}

// RenderSVG assembles the wheel document. Products fill slices in
// order; when there are fewer products than slices the remaining
// slices stay empty. Slots a product has no content for (a missing
// picture, an empty name) are simply left out.
func RenderSVG(l *layout.Layout, products []catalog.Product, opts ...SVGOption) ([]byte, error) {
	r := newSVGRenderer(opts...)

	if l == nil || len(l.Boxes) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidLayout, "layout has no slot boxes")
	}
	if len(products) > l.Slices {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"catalog has %d products but the wheel only has %d slices", len(products), l.Slices)
	}
	width, height := 2*l.Center.X, 2*l.Center.Y
	if width <= 0 || height <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidLayout, "wheel center must sit inside the canvas")
	}

	_, hasBarcode := l.Box(layout.SlotBarcode)
	_, hasDigits := l.Box(layout.SlotUPC)
	_, hasName := l.Box(layout.SlotName)

	var face *typeset.Face
	if hasDigits || hasName {
		if r.shaper == nil {
			return nil, errors.New(errors.ErrCodeInvalidInput,
				"layout has text slots; supply a shaper with WithText")
		}
		var err error
		face, err = r.shaper.Face(r.fontFamily)
		if err != nil {
			return nil, err
		}
	}

	var defs bytes.Buffer
	contents := make([]sliceContent, len(products))
	seen := make(map[string]struct{})

	for i, p := range products {
		c := &contents[i]
		value := p.UPC.String()

		if hasBarcode {
			sym := r.symbols[value]
			if sym == nil {
				return nil, errors.New(errors.ErrCodeInvalidInput, "no barcode symbol for UPC %s", value)
			}
			c.barcodeID = "barcode-" + value
			if _, dup := seen[c.barcodeID]; !dup {
				seen[c.barcodeID] = struct{}{}
				writeBarcodeSymbol(&defs, c.barcodeID, sym)
			}
		}

		if hasDigits {
			c.digitsID = "digits-" + value
			if _, dup := seen[c.digitsID]; !dup {
				seen[c.digitsID] = struct{}{}
				if err := r.writeTextSymbol(&defs, c.digitsID, face, p.UPC.WithCheckDigit()); err != nil {
					return nil, err
				}
			}
		}

		if hasName && p.Name != "" {
			c.nameID = fmt.Sprintf("name-%d", i)
			if err := r.writeTextSymbol(&defs, c.nameID, face, p.Name); err != nil {
				return nil, err
			}
		}

		if p.Picture != "" {
			c.pic = r.pictures[p.Picture]
		}
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %g %g" width="%g" height="%g">`+"\n",
		width, height, width, height)
	r.writeStyle(&buf)
	buf.WriteString("<defs>\n")
	buf.Write(defs.Bytes())
	buf.WriteString("</defs>\n")

	if r.canvas != "" {
		fmt.Fprintf(&buf, `<rect x="0" y="0" width="%g" height="%g" fill="%s"/>`+"\n",
			width, height, escapeXML(r.canvas))
	}

	fmt.Fprintf(&buf, `<path d="%s" fill="none" stroke="%s" stroke-width="%g"/>`+"\n",
		l.Path, escapeXML(r.foreground), r.strokeWidth)

	for i := range contents {
		r.writeSlice(&buf, l, i, &contents[i])
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes(), nil
}

// RenderSymbolSVG emits a standalone document for a single barcode
// symbol at its natural size. Unlike a wheel slice, nothing is
// clipped: the full drawn height is shown, including the band zint
// reserves under the bars.
func RenderSymbolSVG(sym *barcode.Symbol, opts ...SVGOption) ([]byte, error) {
	if sym == nil || len(sym.Rects) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "symbol has no geometry to draw")
	}
	r := newSVGRenderer(opts...)

	height := sym.FullHeight
	if height <= 0 {
		height = sym.Height
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %g %g" width="%g" height="%g">`+"\n",
		sym.Width, height, sym.Width, height)
	r.writeStyle(&buf)
	for _, rect := range sym.Rects {
		writeRect(&buf, "  ", rect)
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes(), nil
}

func (r *svgRenderer) writeStyle(buf *bytes.Buffer) {
	fmt.Fprintf(buf, "<style>\n  .background { fill: %s; }\n  .foreground { fill: %s; }\n  text { fill: %s; }\n</style>\n",
		escapeXML(r.background), escapeXML(r.foreground), escapeXML(r.foreground))
}

// writeBarcodeSymbol emits the symbol definition for one generated
// barcode. The viewBox matches the cropped symbol height, and when a
// crop applies the rectangles sit behind an objectBoundingBox clip so
// the human-readable text band never shows.
func writeBarcodeSymbol(buf *bytes.Buffer, id string, sym *barcode.Symbol) {
	clip := sym.ClipFraction()
	if clip < 1 {
		fmt.Fprintf(buf, `  <clipPath id="clip-%s" clipPathUnits="objectBoundingBox"><rect x="0" y="0" width="1" height="%g"/></clipPath>`+"\n",
			id, clip)
	}

	fmt.Fprintf(buf, `  <symbol id="%s" viewBox="0 0 %g %g" preserveAspectRatio="xMidYMid meet">`+"\n",
		id, sym.Width, sym.Height)
	if clip < 1 {
		fmt.Fprintf(buf, `    <g clip-path="url(#clip-%s)">`+"\n", id)
	} else {
		buf.WriteString("    <g>\n")
	}

	for _, rect := range sym.Rects {
		writeRect(buf, "      ", rect)
	}

	buf.WriteString("    </g>\n  </symbol>\n")
}

func writeRect(buf *bytes.Buffer, indent string, rect barcode.Rect) {
	fmt.Fprintf(buf, `%s<rect x="%g" y="%g" width="%g" height="%g"`,
		indent, rect.X, rect.Y, rect.Width, rect.Height)
	switch {
	case rect.Class != "":
		fmt.Fprintf(buf, ` class="%s"`, rect.Class)
	case rect.Fill != "":
		fmt.Fprintf(buf, ` fill="%s"`, escapeXML(rect.Fill))
	}
	buf.WriteString("/>\n")
}

// writeTextSymbol shapes a label and emits a symbol whose viewBox is
// the text's ink box in font units, so a <use> scales the label edge
// to edge while keeping its aspect ratio.
func (r *svgRenderer) writeTextSymbol(buf *bytes.Buffer, id string, face *typeset.Face, text string) error {
	run, err := r.shaper.Shape(face, text)
	if err != nil {
		return err
	}
	if missing := run.Missing(); len(missing) > 0 {
		return errors.New(errors.ErrCodeGlyphNotFound,
			"font %q has no glyph for %q in %q", face.Family, string(missing), text)
	}
	bbox, err := run.BBox()
	if err != nil {
		return err
	}

	fmt.Fprintf(buf, `  <symbol id="%s" viewBox="0 0 %g %g" preserveAspectRatio="xMidYMid meet">`+"\n",
		id, bbox.Width, bbox.Height)
	fmt.Fprintf(buf, `    <text x="%g" y="%g" font-size="%g" font-family="%s">%s</text>`+"\n",
		bbox.XOffset, bbox.YOffset, face.Upem(), escapeXML(face.Family), escapeXML(text))
	buf.WriteString("  </symbol>\n")
	return nil
}

// writeSlice emits one slice group rotated into place, with a <use>
// per filled slot.
func (r *svgRenderer) writeSlice(buf *bytes.Buffer, l *layout.Layout, i int, c *sliceContent) {
	fmt.Fprintf(buf, `<g transform="rotate(%g %g %g)">`+"\n",
		l.SliceRotation(i), l.Center.X, l.Center.Y)

	for _, box := range l.Boxes {
		switch box.Slot {
		case layout.SlotBarcode:
			if c.barcodeID != "" {
				writeUse(buf, c.barcodeID, box)
			}
		case layout.SlotUPC:
			if c.digitsID != "" {
				writeUse(buf, c.digitsID, box)
			}
		case layout.SlotName:
			if c.nameID != "" {
				writeUse(buf, c.nameID, box)
			}
		case layout.SlotPicture:
			if c.pic != nil {
				writeImage(buf, c.pic, box)
			}
		}
	}

	buf.WriteString("</g>\n")
}

func writeUse(buf *bytes.Buffer, id string, b layout.Box) {
	fmt.Fprintf(buf, `  <use href="#%s" x="%g" y="%g" width="%g" height="%g"`,
		id, b.X, b.Y, b.Width, b.Height)
	writeBoxRotation(buf, b)
	buf.WriteString("/>\n")
}

// writeImage places a picture directly. <image> fits its content with
// xMidYMid meet by default, the same behavior the symbols get.
func writeImage(buf *bytes.Buffer, pic *picture.Picture, b layout.Box) {
	fmt.Fprintf(buf, `  <image href="%s" x="%g" y="%g" width="%g" height="%g"`,
		pic.DataURI(), b.X, b.Y, b.Width, b.Height)
	writeBoxRotation(buf, b)
	buf.WriteString("/>\n")
}

func writeBoxRotation(buf *bytes.Buffer, b layout.Box) {
	if b.Rotation != 0 {
		fmt.Fprintf(buf, ` transform="rotate(%g %g %g)"`, b.Rotation, b.CenterX(), b.CenterY())
	}
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
