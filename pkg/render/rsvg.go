package render

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"

	"github.com/matzehuels/barcodewheel/pkg/errors"
)

// Rsvg converts SVGs by shelling out to rsvg-convert.
type Rsvg struct {
	// Path is the resolved rsvg-convert binary.
	Path string
}

// NewRsvg locates rsvg-convert on PATH.
func NewRsvg() (*Rsvg, error) {
	path, err := exec.LookPath("rsvg-convert")
	if err != nil {
		return nil, &errors.ToolNotFoundError{
			Tool: "rsvg-convert",
			Hint: "install with: brew install librsvg (macOS) or apt install librsvg2-bin (Linux)",
		}
	}
	return &Rsvg{Path: path}, nil
}

// Name identifies the engine in logs and cache keys.
func (r *Rsvg) Name() string { return "rsvg" }

// ToPDF converts SVG bytes to PDF.
func (r *Rsvg) ToPDF(ctx context.Context, svg []byte) ([]byte, error) {
	return r.convert(ctx, svg, "pdf")
}

// ToPNG converts SVG bytes to PNG at the given scale factor. Scale of
// 2.0 produces a 2x resolution image.
func (r *Rsvg) ToPNG(ctx context.Context, svg []byte, scale float64) ([]byte, error) {
	return r.convert(ctx, svg, "png", "-z", fmt.Sprintf("%.2f", scale))
}

func (r *Rsvg) convert(ctx context.Context, svg []byte, format string, extraArgs ...string) ([]byte, error) {
	args := append([]string{"-f", format}, extraArgs...)
	cmd := exec.CommandContext(ctx, r.Path, args...)
	cmd.Stdin = bytes.NewReader(svg)

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		return nil, errors.New(errors.ErrCodeConvertFailed, "rsvg-convert: %v: %s", err, errBuf.String())
	}
	return out.Bytes(), nil
}
