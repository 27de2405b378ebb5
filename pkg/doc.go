// Package pkg provides the core libraries for barcode wheel generation.
//
// # Overview
//
// Barcodewheel arranges a catalog of products around a circle, one slice
// per product, with a scannable barcode, the human-readable UPC, the
// product name, and an optional picture stacked inside each slice. The
// pkg directory is organized into five main areas:
//
//  1. [catalog] + [upc] - Product data (CSV, MongoDB, inline; UPC validation)
//  2. [barcode] + [typeset] + [picture] - Slice content (symbols, shaped text, images)
//  3. [wheel] - Geometry (pie layout, slot boxes, overrides)
//  4. [render] - Output (SVG composition, PDF/PNG conversion)
//  5. [pipeline] - Orchestration (load → encode → layout → render)
//
// # Architecture
//
// The typical data flow through barcodewheel:
//
//	Product Catalog (CSV / MongoDB / inline)
//	         ↓
//	    [catalog] package (load + select products)
//	         ↓
//	    [barcode] package (encode UPC-A symbols)
//	         ↓
//	    [wheel] package (pie geometry + slot boxes)
//	         ↓
//	    [render/wheel] package (SVG / JSON / PDF / PNG)
//
// # Quick Start
//
// Run the whole pipeline through a [pipeline.Runner]:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/barcodewheel/pkg/pipeline"
//	)
//
//	runner := pipeline.NewRunner(nil, nil, nil)
//	defer runner.Close()
//
//	result, err := runner.Execute(context.Background(), pipeline.Options{
//	    CSV:     "catalog.csv",
//	    Formats: []string{"svg", "pdf"},
//	})
//	// result.Artifacts["svg"], result.Artifacts["pdf"]
//
// The runner validates options, fills defaults, caches every stage, and
// reports timings in [pipeline.Result].Stats.
//
// # Main Packages
//
// ## Product Data
//
// [upc] - UPC-A values as a dedicated type. Parsing zero-pads numeric
// input to the canonical eleven digits; the twelfth digit printed
// under a retail barcode is always derived, never stored.
//
// [catalog] - Ordered, immutable product catalogs with a content hash
// used for cache keys. Loaders for CSV files and MongoDB collections.
//
// ## Slice Content
//
// [barcode] - Barcode encoding behind an [barcode.Encoder] interface.
// The zint backend shells out to the zint CLI; the module backend
// (boombuler/barcode + skip2/go-qrcode) encodes in process. Both emit
// resolution-independent rectangles, not rasters.
//
// [typeset] - Text shaping and measurement via go-text/typesetting.
// A [typeset.Shaper] scans system fonts once (the index is cached on
// disk), resolves family names to faces, and shapes label text into
// positioned glyphs with an exact ink box.
//
// [picture] - Product picture loading and square-cropping via
// disintegration/imaging, with EXIF-style orientation handling.
//
// ## Geometry
//
// [wheel] - Pure wheel geometry. [wheel.Build] turns a [wheel.Config]
// into a [wheel.Layout]: pie vertices, the canonical slice, and one
// box per slot (barcode, upc, name, picture) sized by padding and
// width percentages. No rendering concerns.
//
// ## Rendering
//
// [render] - Format conversion engines. [render.NewEngine] selects
// rsvg-convert or headless Chrome (chromedp) for SVG to PDF/PNG.
//
// [render/wheel] - The composite document. [wheel.RenderSVG] assembles
// defs symbols, the pie outline, and per-slice groups; RenderJSON
// exports the layout for later re-rendering; RenderPDF and RenderPNG
// convert through an engine.
//
// ## Infrastructure
//
// [cache] - Content-addressed result cache keyed by stage inputs.
// File, Redis, and null backends behind one interface.
//
// [errors] - Coded errors with user-facing messages and wrapped causes.
//
// [observability] - Pipeline stage hooks for logging and metrics.
//
// ## Orchestration
//
// [pipeline] - The staged pipeline (load → encode → layout → render →
// convert) used by every CLI command and the preview server. Each stage
// checks the cache before doing work; [pipeline.Options] captures every
// input that affects the output, so cache keys are exact.
//
// # Common Workflows
//
// Load a catalog and keep a subset:
//
//	cat, _ := catalog.LoadCSV("catalog.csv")
//	cat, _ = cat.Select([]int{0, 2, 5})
//
// Encode a single symbol:
//
//	enc, _ := barcode.NewEncoder("module")
//	sym, _ := enc.Encode(ctx, barcode.UPCA, "036000291452")
//
// Compute a layout and render by hand:
//
//	l, _ := wheel.Build(wheel.Config{Slices: 8, Radius: 300})
//	svg, _ := wheelrender.RenderSVG(l, cat.Products(),
//	    wheelrender.WithSymbols(symbols),
//	    wheelrender.WithText(shaper, "DejaVu Sans"),
//	)
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...           # All tests
//	go test ./pkg/wheel/...     # Specific package
//	go test -run Example        # Examples only
//
// Tests that need system fonts, the zint CLI, or a conversion binary
// skip themselves when the host does not have them.
//
// [upc]: https://pkg.go.dev/github.com/matzehuels/barcodewheel/pkg/upc
// [catalog]: https://pkg.go.dev/github.com/matzehuels/barcodewheel/pkg/catalog
// [barcode]: https://pkg.go.dev/github.com/matzehuels/barcodewheel/pkg/barcode
// [typeset]: https://pkg.go.dev/github.com/matzehuels/barcodewheel/pkg/typeset
// [picture]: https://pkg.go.dev/github.com/matzehuels/barcodewheel/pkg/picture
// [wheel]: https://pkg.go.dev/github.com/matzehuels/barcodewheel/pkg/wheel
// [render]: https://pkg.go.dev/github.com/matzehuels/barcodewheel/pkg/render
// [render/wheel]: https://pkg.go.dev/github.com/matzehuels/barcodewheel/pkg/render/wheel
// [cache]: https://pkg.go.dev/github.com/matzehuels/barcodewheel/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/barcodewheel/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/barcodewheel/pkg/observability
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/barcodewheel/pkg/pipeline
package pkg
