package typeset

import (
	"math"
	"testing"

	"github.com/matzehuels/barcodewheel/pkg/errors"
)

// Synthetic glyphs shaped like "Ag" at 1000 units per em: a cap-height
// glyph on the baseline and one with a descender.
func testRun() *Run {
	return &Run{
		Text: "Ag",
		Glyphs: []Glyph{
			{GID: 1, Cluster: 0, XAdvance: 600, XBearing: 20, YBearing: 700, Width: 560, Height: -700},
			{GID: 2, Cluster: 1, XAdvance: 500, XBearing: 30, YBearing: 520, Width: 440, Height: -720},
		},
	}
}

func TestRunBBox(t *testing.T) {
	box, err := testRun().BBox()
	if err != nil {
		t.Fatalf("BBox failed: %v", err)
	}

	// 600 (advance of A) + 30 + 440 (bearing and ink of g).
	if box.Width != 1070 {
		t.Errorf("width = %g, want 1070", box.Width)
	}
	// Ink spans from 700 down to 520-720 = -200.
	if box.Height != 900 {
		t.Errorf("height = %g, want 900", box.Height)
	}
	if box.XOffset != -20 {
		t.Errorf("x offset = %g, want -20", box.XOffset)
	}
	if box.YOffset != 700 {
		t.Errorf("y offset = %g, want 700", box.YOffset)
	}
}

func TestRunBBoxSingleGlyph(t *testing.T) {
	run := &Run{
		Text: "W",
		Glyphs: []Glyph{
			{GID: 3, XAdvance: 900, XBearing: 40, YBearing: 700, Width: 820, Height: -700},
		},
	}
	box, err := run.BBox()
	if err != nil {
		t.Fatalf("BBox failed: %v", err)
	}
	// No advances count for a single glyph, only bearing plus ink.
	if box.Width != 860 {
		t.Errorf("width = %g, want 860", box.Width)
	}
	if box.Height != 700 {
		t.Errorf("height = %g, want 700", box.Height)
	}
}

func TestRunBBoxEmpty(t *testing.T) {
	run := &Run{Text: ""}
	if _, err := run.BBox(); errors.GetCode(err) != errors.ErrCodeInvalidInput {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
}

func TestRunMissing(t *testing.T) {
	run := &Run{
		Text: "a€b",
		Glyphs: []Glyph{
			{GID: 5, Cluster: 0},
			{GID: 0, Cluster: 1},
			{GID: 7, Cluster: 2},
		},
	}
	missing := run.Missing()
	if len(missing) != 1 || missing[0] != '€' {
		t.Errorf("Missing() = %q, want [€]", string(missing))
	}

	if got := testRun().Missing(); len(got) != 0 {
		t.Errorf("fully covered run reported missing runes: %q", string(got))
	}
}

func TestScaleFactor(t *testing.T) {
	got, err := ScaleFactor(100, 50, 200, 200)
	if err != nil {
		t.Fatalf("ScaleFactor failed: %v", err)
	}
	if got != 2 {
		t.Errorf("scale = %g, want 2 (width-bound)", got)
	}

	got, err = ScaleFactor(50, 100, 200, 200)
	if err != nil {
		t.Fatalf("ScaleFactor failed: %v", err)
	}
	if got != 2 {
		t.Errorf("scale = %g, want 2 (height-bound)", got)
	}
}

func TestScaleFactorRejectsNonPositive(t *testing.T) {
	cases := [][4]float64{
		{0, 50, 200, 200},
		{100, -1, 200, 200},
		{100, 50, 0, 200},
		{100, 50, 200, math.NaN()},
		{math.Inf(1), 50, 200, 200},
	}
	for _, c := range cases {
		if _, err := ScaleFactor(c[0], c[1], c[2], c[3]); errors.GetCode(err) != errors.ErrCodeInvalidInput {
			t.Errorf("ScaleFactor(%v) = %v, want INVALID_INPUT", c, err)
		}
	}
}

func TestFitBox(t *testing.T) {
	box, err := FitBox(100, 50, 200, 200)
	if err != nil {
		t.Fatalf("FitBox failed: %v", err)
	}
	want := BBox{Width: 200, Height: 100, XOffset: 0, YOffset: 50}
	if box != want {
		t.Errorf("FitBox = %+v, want %+v", box, want)
	}
}

func TestBBoxScaled(t *testing.T) {
	box := BBox{Width: 1070, Height: 900, XOffset: -20, YOffset: 700}
	scaled, err := box.Scaled(107, 90)
	if err != nil {
		t.Fatalf("Scaled failed: %v", err)
	}
	want := BBox{Width: 107, Height: 90, XOffset: -2, YOffset: 70}
	if scaled != want {
		t.Errorf("Scaled = %+v, want %+v", scaled, want)
	}
}

func TestShapeArgumentErrors(t *testing.T) {
	s := &Shaper{}
	if _, err := s.Shape(nil, "x"); errors.GetCode(err) != errors.ErrCodeInvalidInput {
		t.Errorf("nil face: got %v, want INVALID_INPUT", err)
	}
	if _, err := s.Shape(&Face{}, ""); errors.GetCode(err) != errors.ErrCodeInvalidInput {
		t.Errorf("empty text: got %v, want INVALID_INPUT", err)
	}
}
