// Package barcode renders UPC and friends into a backend-neutral
// symbol model: a viewbox plus axis-aligned rectangles classed as
// background or foreground, ready to be emitted as themeable SVG.
//
// Two encoders produce the model. [Zint] shells out to the zint
// binary and parses its SVG output, matching it bar for bar. [Module]
// is pure Go, built on boombuler/barcode and skip2/go-qrcode, for
// hosts without zint installed. [Auto] picks between them.
package barcode
