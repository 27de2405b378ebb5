// Package wheel renders a computed wheel layout and its catalog
// content into final documents.
//
// # Overview
//
// A renderer here transforms a [layout.Layout] plus catalog products
// into an output format:
//
//   - SVG: the composite wheel document (barcodes, labels, pictures)
//   - JSON: layout and content export for round-trip rendering
//   - PDF: print-ready output via a conversion engine
//   - PNG: raster output via a conversion engine
//
// # SVG Output
//
// [RenderSVG] builds the document from three layers: a defs section
// holding one symbol per piece of content (barcode rectangles behind
// an objectBoundingBox clip, shaped label text with the viewBox set to
// the text's ink box), the pie outline path, and one group per slice
// rotated into place, each holding <use> elements that stretch the
// symbols into the slice's slot boxes. Barcode symbols keep their
// aspect ratio through preserveAspectRatio meet fitting, so a scanner
// reads them at any wheel size.
//
// Basic usage:
//
//	svg, err := wheel.RenderSVG(l, products,
//	    wheel.WithSymbols(symbols),
//	    wheel.WithText(shaper, "DejaVu Sans"),
//	    wheel.WithPictures(pics),
//	)
//
// Text slots need a shaper: label text is measured in font units so
// the <text> element's coordinate system is exactly its ink box, which
// is what lets a <use> scale it edge to edge. Rendering with a font
// the final viewer does not resolve identically will misplace labels.
//
// # PDF and PNG Output
//
// [RenderPDF] and [RenderPNG] render SVG first and convert through a
// [render.Engine] (rsvg-convert or headless Chrome).
//
// [layout.Layout]: github.com/matzehuels/barcodewheel/pkg/wheel.Layout
// [render.Engine]: github.com/matzehuels/barcodewheel/pkg/render.Engine
package wheel
