package render

import (
	"context"

	"github.com/matzehuels/barcodewheel/pkg/errors"
)

// Engine renders a finished SVG document into other formats.
type Engine interface {
	Name() string
	ToPDF(ctx context.Context, svg []byte) ([]byte, error)
	ToPNG(ctx context.Context, svg []byte, scale float64) ([]byte, error)
}

// NewEngine returns the named conversion engine. The empty name and
// "auto" prefer rsvg-convert and fall back to headless Chrome when
// librsvg is not installed.
func NewEngine(name string) (Engine, error) {
	switch name {
	case "", "auto":
		if r, err := NewRsvg(); err == nil {
			return r, nil
		}
		return NewChrome()
	case "rsvg":
		return NewRsvg()
	case "chrome", "chromium":
		return NewChrome()
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown conversion engine %q (supported: auto, rsvg, chrome)", name)
	}
}

// Engines lists the selectable engine names for flag completion.
func Engines() []string {
	return []string{"auto", "rsvg", "chrome"}
}
