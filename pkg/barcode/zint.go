package barcode

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/matzehuels/barcodewheel/pkg/errors"
)

// textBand is the bottom strip zint reserves for human-readable
// digits on retail codes. It stays blank under --notext but the
// guard bars still reach into it, so it is clipped, not dropped.
const textBand = 9

// Zint encodes by shelling out to the zint binary and parsing the
// SVG it writes to stdout.
type Zint struct {
	// Path locates the binary. NewZint fills it from PATH.
	Path string
}

// NewZint locates zint on PATH.
func NewZint() (*Zint, error) {
	path, err := exec.LookPath("zint")
	if err != nil {
		return nil, &errors.ToolNotFoundError{
			Tool: "zint",
			Hint: "install with: brew install zint (macOS) or apt install zint (Linux)",
		}
	}
	return &Zint{Path: path}, nil
}

// Encode runs zint and converts its SVG output into a Symbol.
func (z *Zint) Encode(ctx context.Context, symbology Symbology, data string) (*Symbol, error) {
	payload, err := symbology.NormalizeData(data)
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, z.Path,
		"--direct",
		"--filetype=svg",
		fmt.Sprintf("--barcode=%d", symbology.zintCode()),
		"--notext",
		"-d", payload,
	)

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(errBuf.String())
		if detail == "" {
			detail = err.Error()
		}
		return nil, errors.New(errors.ErrCodeBarcodeFailed, "zint failed for %q: %s", payload, detail)
	}

	symbol, err := parseZintSVG(out.Bytes())
	if err != nil {
		return nil, err
	}
	symbol.Symbology = symbology
	symbol.Data = payload

	if symbology == UPCA || symbology == EAN13 {
		if symbol.FullHeight > textBand {
			symbol.Height = symbol.FullHeight - textBand
		}
	}
	return symbol, nil
}

type zintRect struct {
	X      string `xml:"x,attr"`
	Y      string `xml:"y,attr"`
	Width  string `xml:"width,attr"`
	Height string `xml:"height,attr"`
	Fill   string `xml:"fill,attr"`
}

type zintGroup struct {
	Rects  []zintRect  `xml:"rect"`
	Groups []zintGroup `xml:"g"`
}

type zintSVG struct {
	Width  string      `xml:"width,attr"`
	Height string      `xml:"height,attr"`
	Rects  []zintRect  `xml:"rect"`
	Groups []zintGroup `xml:"g"`
}

// parseZintSVG extracts the rectangles from a zint SVG. Text elements
// are skipped; white rects become the themeable background, unfilled
// rects the foreground, and any other explicit fill is kept.
func parseZintSVG(svg []byte) (*Symbol, error) {
	var doc zintSVG
	if err := xml.Unmarshal(svg, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeBarcodeFailed, err, "parsing zint SVG")
	}

	width, err := parseUnit(doc.Width)
	if err != nil {
		return nil, err
	}
	height, err := parseUnit(doc.Height)
	if err != nil {
		return nil, err
	}

	var rects []Rect
	collect := func(raw []zintRect) error {
		for _, r := range raw {
			rect, err := convertRect(r)
			if err != nil {
				return err
			}
			rects = append(rects, rect)
		}
		return nil
	}

	if err := collect(doc.Rects); err != nil {
		return nil, err
	}
	queue := doc.Groups
	for len(queue) > 0 {
		g := queue[0]
		queue = queue[1:]
		if err := collect(g.Rects); err != nil {
			return nil, err
		}
		queue = append(queue, g.Groups...)
	}

	if len(rects) == 0 {
		return nil, errors.New(errors.ErrCodeBarcodeFailed, "zint SVG contained no rectangles")
	}

	return &Symbol{
		Width:      width,
		Height:     height,
		FullHeight: height,
		Rects:      rects,
	}, nil
}

func convertRect(r zintRect) (Rect, error) {
	out := Rect{}
	for _, f := range []struct {
		raw string
		dst *float64
	}{
		{r.X, &out.X},
		{r.Y, &out.Y},
		{r.Width, &out.Width},
		{r.Height, &out.Height},
	} {
		v, err := parseUnit(f.raw)
		if err != nil {
			return Rect{}, err
		}
		*f.dst = v
	}

	switch {
	case strings.EqualFold(r.Fill, "#FFFFFF"):
		out.Class = ClassBackground
	case r.Fill == "":
		out.Class = ClassForeground
	default:
		out.Fill = r.Fill
	}
	return out, nil
}

func parseUnit(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, errors.New(errors.ErrCodeBarcodeFailed, "zint SVG has malformed dimension %q", raw)
	}
	return v, nil
}
