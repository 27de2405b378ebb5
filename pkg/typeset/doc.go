// Package typeset measures text with real font metrics so rendered
// labels fill their boxes exactly.
//
// # Overview
//
// Font files are found through a [fontscan.FontMap], which scans the
// system font directories once (the index is cached on disk) and
// resolves family patterns such as "sans-serif" the way fc-match
// does. Shaping is delegated to the HarfBuzz port in
// go-text/typesetting: the shaper turns a string into positioned
// glyphs with advances, offsets, and per-glyph ink extents, all in
// font units (units per em).
//
// # Measuring
//
// [Run.BBox] computes the tight ink box of a shaped string: the width
// is the sum of every advance but the last, plus the last glyph's
// bearing and ink width; the height spans the highest and lowest ink
// across all glyphs. The offsets position the string so the first
// glyph's ink starts at the origin.
//
// Fitting is plain arithmetic on boxes: [ScaleFactor] and [FitBox]
// never touch a font, so callers can fit pictures and barcodes with
// the same helpers used for text.
package typeset
