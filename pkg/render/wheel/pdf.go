package wheel

import (
	"context"

	"github.com/matzehuels/barcodewheel/pkg/catalog"
	"github.com/matzehuels/barcodewheel/pkg/render"
	layout "github.com/matzehuels/barcodewheel/pkg/wheel"
)

// PDFOption configures PDF rendering.
type PDFOption func(*pdfRenderer)

type pdfRenderer struct {
	svgOpts []SVGOption
	engine  render.Engine
}

// WithPDFSVGOptions passes options through to the underlying SVG renderer.
func WithPDFSVGOptions(opts ...SVGOption) PDFOption {
	return func(r *pdfRenderer) { r.svgOpts = opts }
}

// WithPDFEngine selects the conversion engine. The default resolves
// "auto" (rsvg-convert, falling back to headless Chrome).
func WithPDFEngine(e render.Engine) PDFOption {
	return func(r *pdfRenderer) { r.engine = e }
}

// RenderPDF renders the wheel as PDF via SVG conversion.
func RenderPDF(ctx context.Context, l *layout.Layout, products []catalog.Product, opts ...PDFOption) ([]byte, error) {
	r := pdfRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	svg, err := RenderSVG(l, products, r.svgOpts...)
	if err != nil {
		return nil, err
	}

	engine := r.engine
	if engine == nil {
		engine, err = render.NewEngine("auto")
		if err != nil {
			return nil, err
		}
	}
	return engine.ToPDF(ctx, svg)
}
