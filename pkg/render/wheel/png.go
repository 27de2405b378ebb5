package wheel

import (
	"context"

	"github.com/matzehuels/barcodewheel/pkg/catalog"
	"github.com/matzehuels/barcodewheel/pkg/render"
	layout "github.com/matzehuels/barcodewheel/pkg/wheel"
)

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	svgOpts []SVGOption
	engine  render.Engine
	scale   float64
}

// WithPNGSVGOptions passes options through to the underlying SVG renderer.
func WithPNGSVGOptions(opts ...SVGOption) PNGOption {
	return func(r *pngRenderer) { r.svgOpts = opts }
}

// WithPNGEngine selects the conversion engine.
func WithPNGEngine(e render.Engine) PNGOption {
	return func(r *pngRenderer) { r.engine = e }
}

// WithScale sets the PNG scale factor (default 2.0 for 2x resolution).
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) { r.scale = s }
}

// RenderPNG renders the wheel as PNG via SVG conversion.
func RenderPNG(ctx context.Context, l *layout.Layout, products []catalog.Product, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{scale: 2.0}
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
	return engine.ToPNG(ctx, svg, r.scale)
}
