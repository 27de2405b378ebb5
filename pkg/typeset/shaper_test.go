package typeset

import (
	"testing"

	"github.com/matzehuels/barcodewheel/pkg/errors"
)

// testFace resolves a generic face, skipping the test on machines
// without any usable fonts.
func testFace(t *testing.T) (*Shaper, *Face) {
	t.Helper()
	s, err := NewShaper(Options{CacheDir: t.TempDir()})
	if err != nil {
		t.Skipf("no usable system fonts: %v", err)
	}
	face, err := s.Face("sans-serif")
	if err != nil {
		t.Skipf("cannot resolve sans-serif: %v", err)
	}
	return s, face
}

func TestFaceResolution(t *testing.T) {
	_, face := testFace(t)
	if face.File == "" {
		t.Error("resolved face has no backing file")
	}
	if face.Upem() <= 0 {
		t.Errorf("upem = %g, want > 0", face.Upem())
	}
}

func TestFaceInvalidFamily(t *testing.T) {
	s, _ := testFace(t)
	if _, err := s.Face(""); errors.GetCode(err) != errors.ErrCodeInvalidInput {
		t.Errorf("empty family: got %v, want INVALID_INPUT", err)
	}
}

func TestShape(t *testing.T) {
	s, face := testFace(t)

	run, err := s.Shape(face, "Hello")
	if err != nil {
		t.Fatalf("Shape failed: %v", err)
	}
	if len(run.Glyphs) == 0 {
		t.Fatal("shaping produced no glyphs")
	}

	box, err := run.BBox()
	if err != nil {
		t.Fatalf("BBox failed: %v", err)
	}
	if box.Width <= 0 || box.Height <= 0 {
		t.Errorf("bounding box %+v has no area", box)
	}

	wider, err := s.Shape(face, "Hello Hello")
	if err != nil {
		t.Fatalf("Shape failed: %v", err)
	}
	widerBox, err := wider.BBox()
	if err != nil {
		t.Fatalf("BBox failed: %v", err)
	}
	if widerBox.Width <= box.Width {
		t.Errorf("doubled text measured %g wide, shorter text %g", widerBox.Width, box.Width)
	}
}

func TestFontSizeFor(t *testing.T) {
	s, face := testFace(t)

	size, err := s.FontSizeFor(face, "Hi", 200, 50)
	if err != nil {
		t.Fatalf("FontSizeFor failed: %v", err)
	}
	if size <= 0 {
		t.Errorf("font size = %g, want > 0", size)
	}

	larger, err := s.FontSizeFor(face, "Hi", 400, 100)
	if err != nil {
		t.Fatalf("FontSizeFor failed: %v", err)
	}
	if larger <= size {
		t.Errorf("double-size box gave font size %g, not larger than %g", larger, size)
	}
}

func TestFontSizeForNoInk(t *testing.T) {
	s, face := testFace(t)

	_, err := s.FontSizeFor(face, "   ", 200, 50)
	if errors.GetCode(err) != errors.ErrCodeTextOverflow {
		t.Errorf("whitespace text: got %v, want TEXT_OVERFLOW", err)
	}
}
