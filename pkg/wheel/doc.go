// Package wheel computes the geometry of a barcode wheel.
//
// # Overview
//
// A wheel is a circle cut into equal pie slices, one per product. Each
// slice carries a row of placeholder boxes (slots) laid out along its
// midline: by default a barcode, the UPC digits, the product name, and
// a picture. This package computes the exact coordinates for each box
// and the outline path of the pie; rendering them into SVG is the job
// of [render/wheel].
//
// # Coordinate Model
//
// Boxes are computed for a canonical slice whose midline lies on the
// positive x axis. Every slice uses the same boxes; slice i is placed
// by rotating the whole group by [Layout.SliceRotation] degrees about
// the wheel center. Slot positions are expressed as fractions of the
// radius measured along the slice edge, so a padding of 0.1 consumes a
// tenth of the radius regardless of wheel size.
//
// A box standing at edge distance d touches both slice edges, which
// caps its height at 2·sin(θ)·d·r for slice half-angle θ (see
// [BoxHeight]). The final slot is special: its width is not configured
// but computed so the box ends exactly on the arc of the circle.
//
// # Building a Layout
//
// Use [Build] with a [Config]:
//
//	layout, err := wheel.Build(wheel.Config{
//	    Slices: 9,
//	    Center: wheel.Point{X: 100, Y: 100},
//	    Radius: 100,
//	})
//
// Slot sizing can be adjusted per name with [ApplyOverrides] or by
// supplying a custom Slots slice. The returned [Layout] is plain data,
// JSON-serializable, and consumed by the render sinks.
//
// [render/wheel]: github.com/matzehuels/barcodewheel/pkg/render/wheel
package wheel
