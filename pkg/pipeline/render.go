package pipeline

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/barcodewheel/pkg/barcode"
	"github.com/matzehuels/barcodewheel/pkg/cache"
	"github.com/matzehuels/barcodewheel/pkg/catalog"
	"github.com/matzehuels/barcodewheel/pkg/errors"
	"github.com/matzehuels/barcodewheel/pkg/picture"
	"github.com/matzehuels/barcodewheel/pkg/render"
	renderwheel "github.com/matzehuels/barcodewheel/pkg/render/wheel"
	"github.com/matzehuels/barcodewheel/pkg/typeset"
	"github.com/matzehuels/barcodewheel/pkg/wheel"
)

// Render produces the svg and json artifacts. When pdf or png is
// requested the svg is rendered here regardless, since Convert consumes
// it as input.
func Render(l *wheel.Layout, cat *catalog.Catalog, symbols map[string]*barcode.Symbol, pics map[string]*picture.Picture, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	artifacts := make(map[string][]byte)

	if needsVisual(opts.Formats) {
		svgOpts, err := buildSVGOptions(l, symbols, pics, &opts)
		if err != nil {
			return nil, err
		}
		data, err := renderwheel.RenderSVG(l, cat.Products(), svgOpts...)
		if err != nil {
			return nil, err
		}
		artifacts[FormatSVG] = data
	}

	if hasFormat(opts.Formats, FormatJSON) {
		data, err := renderwheel.RenderJSON(l,
			renderwheel.WithJSONProducts(cat.Products()),
			renderwheel.WithJSONFont(opts.Font),
			renderwheel.WithJSONColors(opts.Foreground, opts.Background),
			renderwheel.WithJSONBarcode(opts.Symbology, opts.Backend),
		)
		if err != nil {
			return nil, err
		}
		artifacts[FormatJSON] = data
	}

	return artifacts, nil
}

// Convert turns a rendered svg into the requested pdf and png
// artifacts.
func Convert(ctx context.Context, svg []byte, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	targets := convertFormats(opts.Formats)
	if len(targets) == 0 {
		return map[string][]byte{}, nil
	}
	if len(svg) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no svg to convert")
	}

	eng := opts.Converter
	if eng == nil {
		var err error
		eng, err = render.NewEngine(opts.Engine)
		if err != nil {
			return nil, err
		}
	}

	artifacts := make(map[string][]byte, len(targets))
	for _, format := range targets {
		var data []byte
		var err error
		switch format {
		case FormatPDF:
			data, err = eng.ToPDF(ctx, svg)
		case FormatPNG:
			data, err = eng.ToPNG(ctx, svg, opts.Scale)
		}
		if err != nil {
			return nil, err
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

// LoadPictures fetches the pictures referenced by catalog products.
// Path violations fail hard; anything else degrades to a warning and
// the slice renders without its picture.
func LoadPictures(ctx context.Context, c cache.Cache, keyer cache.Keyer, cat *catalog.Catalog, opts Options) (map[string]*picture.Picture, error) {
	if opts.NoPictures {
		return nil, nil
	}
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	loader := &picture.Loader{
		BaseDir: cat.Dir(),
		Cache:   c,
		Keyer:   keyer,
	}

	pics := make(map[string]*picture.Picture)
	for _, p := range cat.Products() {
		if p.Picture == "" {
			continue
		}
		if _, done := pics[p.Picture]; done {
			continue
		}
		pic, err := loader.Load(ctx, p.Picture)
		if err != nil {
			if errors.Is(err, errors.ErrCodeInvalidPath) {
				return nil, err
			}
			opts.Logger.Warn("skipping picture", "ref", p.Picture, "err", err)
			continue
		}
		pics[p.Picture] = pic
	}

	if len(pics) == 0 {
		return nil, nil
	}
	return pics, nil
}

// needsVisual reports whether any requested format needs the svg.
func needsVisual(formats []string) bool {
	return hasFormat(formats, FormatSVG) || hasFormat(formats, FormatPDF) || hasFormat(formats, FormatPNG)
}

// needsShaper reports whether the layout carries text slots.
func needsShaper(l *wheel.Layout) bool {
	if _, ok := l.Box(wheel.SlotUPC); ok {
		return true
	}
	_, ok := l.Box(wheel.SlotName)
	return ok
}

// ensureShaper returns the injected shaper or builds one, storing it
// back so a single run scans the fonts at most once.
func ensureShaper(opts *Options) (*typeset.Shaper, error) {
	if opts.Shaper != nil {
		return opts.Shaper, nil
	}
	s, err := typeset.NewShaper(typeset.Options{
		Bold:   opts.Bold,
		Italic: opts.Italic,
		Logger: opts.Logger,
	})
	if err != nil {
		return nil, err
	}
	opts.Shaper = s
	return s, nil
}

// buildSVGOptions assembles renderer options from pipeline options.
func buildSVGOptions(l *wheel.Layout, symbols map[string]*barcode.Symbol, pics map[string]*picture.Picture, opts *Options) ([]renderwheel.SVGOption, error) {
	var svgOpts []renderwheel.SVGOption

	if len(symbols) > 0 {
		svgOpts = append(svgOpts, renderwheel.WithSymbols(symbols))
	}
	if len(pics) > 0 {
		svgOpts = append(svgOpts, renderwheel.WithPictures(pics))
	}
	if opts.Foreground != "" || opts.Background != "" {
		svgOpts = append(svgOpts, renderwheel.WithColors(opts.Foreground, opts.Background))
	}
	if opts.Canvas != "" {
		svgOpts = append(svgOpts, renderwheel.WithCanvas(opts.Canvas))
	}

	if needsShaper(l) {
		s, err := ensureShaper(opts)
		if err != nil {
			return nil, err
		}
		svgOpts = append(svgOpts, renderwheel.WithText(s, opts.Font))
	}

	return svgOpts, nil
}
