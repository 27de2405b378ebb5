package typeset

import (
	"math"

	"github.com/matzehuels/barcodewheel/pkg/errors"
)

// BBox is a measured box. For text runs the unit is font units; the
// offsets place the insertion point so the first glyph's ink starts at
// the top-left corner. For fitted boxes the offsets center the scaled
// box inside its target.
type BBox struct {
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	XOffset float64 `json:"x_offset"`
	YOffset float64 `json:"y_offset"`
}

// BBox returns the tight ink box of the run.
//
// The width walks the pen: every glyph but the last contributes its
// advance, the last contributes its bearing plus ink width, so
// trailing side bearing is not counted. The height spans the highest
// ink top and the lowest ink bottom across all glyphs (ink heights
// are negative, y up). YOffset is the baseline distance from the box
// top, XOffset shifts the string so the first glyph's ink starts at
// x = 0.
func (r *Run) BBox() (BBox, error) {
	if len(r.Glyphs) == 0 {
		return BBox{}, errors.New(errors.ErrCodeInvalidInput, "no glyphs to measure")
	}

	top := math.Inf(-1)
	bottom := math.Inf(1)
	for _, g := range r.Glyphs {
		if g.YBearing > top {
			top = g.YBearing
		}
		if low := g.YBearing + g.Height; low < bottom {
			bottom = low
		}
	}

	var width float64
	for _, g := range r.Glyphs[:len(r.Glyphs)-1] {
		width += g.XAdvance
	}
	last := r.Glyphs[len(r.Glyphs)-1]
	width += last.XBearing + last.Width

	return BBox{
		Width:   width,
		Height:  top - bottom,
		XOffset: -r.Glyphs[0].XBearing,
		YOffset: top,
	}, nil
}

// ScaleFactor returns the factor that scales a width x height box to
// fit exactly inside targetWidth x targetHeight, preserving aspect
// ratio. All dimensions must be positive.
func ScaleFactor(width, height, targetWidth, targetHeight float64) (float64, error) {
	for _, v := range []float64{width, height, targetWidth, targetHeight} {
		if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, errors.New(errors.ErrCodeInvalidInput, "scale factor requires positive dimensions")
		}
	}
	return math.Min(targetWidth/width, targetHeight/height), nil
}

// FitBox scales a width x height box to fill the target while keeping
// its aspect ratio, and centers it: the offsets are the distances from
// the target's top-left corner to the scaled box's.
func FitBox(width, height, targetWidth, targetHeight float64) (BBox, error) {
	scale, err := ScaleFactor(width, height, targetWidth, targetHeight)
	if err != nil {
		return BBox{}, err
	}
	return BBox{
		Width:   width * scale,
		Height:  height * scale,
		XOffset: (targetWidth - width*scale) / 2,
		YOffset: (targetHeight - height*scale) / 2,
	}, nil
}

// Scaled returns the box scaled to fit the target dimensions, with
// all four fields multiplied by the same factor.
func (b BBox) Scaled(targetWidth, targetHeight float64) (BBox, error) {
	scale, err := ScaleFactor(b.Width, b.Height, targetWidth, targetHeight)
	if err != nil {
		return BBox{}, err
	}
	return BBox{
		Width:   b.Width * scale,
		Height:  b.Height * scale,
		XOffset: b.XOffset * scale,
		YOffset: b.YOffset * scale,
	}, nil
}

// FontSizeFor returns the largest font size at which text fills the
// target box without overflowing it. Text with no measurable ink, such
// as a name of only spaces, cannot be fitted.
func (s *Shaper) FontSizeFor(face *Face, text string, targetWidth, targetHeight float64) (float64, error) {
	run, err := s.Shape(face, text)
	if err != nil {
		return 0, err
	}
	box, err := run.BBox()
	if err != nil {
		return 0, err
	}
	if box.Width <= 0 || box.Height <= 0 {
		return 0, errors.New(errors.ErrCodeTextOverflow, "text %q has no measurable ink", text)
	}
	scale, err := ScaleFactor(box.Width, box.Height, targetWidth, targetHeight)
	if err != nil {
		return 0, err
	}
	return face.upem * scale, nil
}
