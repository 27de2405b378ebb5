// Package render converts finished SVG documents into PDF and PNG.
//
// # Overview
//
// An [Engine] turns the composite wheel SVG into binary artifacts:
//
//   - rsvg: shells out to rsvg-convert (librsvg)
//   - chrome: prints the document in a headless Chrome or Chromium
//     driven over the DevTools protocol
//
// [NewEngine] selects by name. The empty name and "auto" prefer rsvg
// and fall back to Chrome, so either binary on PATH is enough.
//
// # Usage
//
//	eng, err := render.NewEngine("auto")
//	if err != nil {
//	    return err
//	}
//	pdf, err := eng.ToPDF(ctx, svg)
//	png, err := eng.ToPNG(ctx, svg, 2.0) // 2x scale
//
// Constructing an engine is a PATH lookup; each conversion runs the
// external tool. A missing binary surfaces as a
// [errors.ToolNotFoundError] carrying an install hint.
//
// # Fidelity
//
// Label text in the wheel SVG is positioned from shaped glyph metrics,
// so converted output only matches when the engine resolves the same
// font families the shaper measured with. Both engines use the host
// font stack; converting on a machine without the wheel's fonts will
// shift labels.
//
// The renderers in [wheel] call into this package through the same
// [Engine] interface, so a caller can also supply its own converter.
//
// [errors.ToolNotFoundError]: github.com/matzehuels/barcodewheel/pkg/errors.ToolNotFoundError
// [wheel]: github.com/matzehuels/barcodewheel/pkg/render/wheel
package render
