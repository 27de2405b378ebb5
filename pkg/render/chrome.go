package render

import (
	"bytes"
	"context"
	"encoding/xml"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/matzehuels/barcodewheel/pkg/errors"
)

const (
	// cssPixelsPerInch is the fixed CSS unit density Chrome uses for
	// print sizing, so PDF pages match the SVG's pixel dimensions.
	cssPixelsPerInch = 96

	defaultChromeTimeout = 60 * time.Second
)

// chromeBinaries are tried in order when no explicit path is given.
var chromeBinaries = []string{
	"google-chrome",
	"google-chrome-stable",
	"chromium",
	"chromium-browser",
}

// Chrome converts SVGs by printing them in a headless browser. Each
// conversion launches a fresh browser, navigates to the document and
// drives the DevTools protocol.
type Chrome struct {
	// ExecPath is the browser binary. Empty lets chromedp search.
	ExecPath string

	// Timeout bounds a single conversion including browser startup.
	Timeout time.Duration
}

// NewChrome locates a Chrome or Chromium binary on PATH.
func NewChrome() (*Chrome, error) {
	for _, name := range chromeBinaries {
		if path, err := exec.LookPath(name); err == nil {
			return &Chrome{ExecPath: path}, nil
		}
	}
	return nil, &errors.ToolNotFoundError{
		Tool: "chrome",
		Hint: "install Chrome or Chromium, or use --engine rsvg",
	}
}

// Name identifies the engine in logs and cache keys.
func (c *Chrome) Name() string { return "chrome" }

// ToPDF prints the SVG to a single PDF page matching its pixel size.
func (c *Chrome) ToPDF(ctx context.Context, svg []byte) ([]byte, error) {
	width, height, err := parseSVGSize(svg)
	if err != nil {
		return nil, err
	}

	var buf []byte
	err = c.run(ctx, svg, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		buf, _, err = page.PrintToPDF().
			WithPaperWidth(width / cssPixelsPerInch).
			WithPaperHeight(height / cssPixelsPerInch).
			WithMarginTop(0).
			WithMarginRight(0).
			WithMarginBottom(0).
			WithMarginLeft(0).
			WithPrintBackground(true).
			Do(ctx)
		return err
	}))
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// ToPNG screenshots the SVG at the given scale factor.
func (c *Chrome) ToPNG(ctx context.Context, svg []byte, scale float64) ([]byte, error) {
	width, height, err := parseSVGSize(svg)
	if err != nil {
		return nil, err
	}
	if scale <= 0 {
		scale = 1
	}

	var buf []byte
	err = c.run(ctx, svg,
		chromedp.EmulateViewport(
			int64(math.Round(width)),
			int64(math.Round(height)),
			chromedp.EmulateScale(scale),
		),
		chromedp.CaptureScreenshot(&buf),
	)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// run writes the SVG to a temp file, starts a browser, navigates to
// the file and executes the given actions in the page context.
func (c *Chrome) run(ctx context.Context, svg []byte, actions ...chromedp.Action) error {
	f, err := os.CreateTemp("", "wheel-*.svg")
	if err != nil {
		return errors.Wrap(errors.ErrCodeConvertFailed, err, "creating temp file")
	}
	name := f.Name()
	defer os.Remove(name)

	if _, err := f.Write(svg); err != nil {
		f.Close()
		return errors.Wrap(errors.ErrCodeConvertFailed, err, "writing temp file")
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeConvertFailed, err, "closing temp file")
	}
	abs, err := filepath.Abs(name)
	if err != nil {
		return errors.Wrap(errors.ErrCodeConvertFailed, err, "resolving temp path")
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = defaultChromeTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if c.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(c.ExecPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)
	defer tabCancel()

	tasks := append(chromedp.Tasks{
		chromedp.Navigate("file://" + abs),
		chromedp.WaitReady("svg", chromedp.ByQuery),
	}, actions...)

	if err := chromedp.Run(tabCtx, tasks); err != nil {
		return errors.Wrap(errors.ErrCodeConvertFailed, err, "chrome conversion")
	}
	return nil
}

// parseSVGSize reads pixel width and height from the root svg element.
func parseSVGSize(svg []byte) (float64, float64, error) {
	dec := xml.NewDecoder(bytes.NewReader(svg))
	for {
		tok, err := dec.Token()
		if err != nil {
			return 0, 0, errors.New(errors.ErrCodeConvertFailed, "no svg root element found")
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local != "svg" {
			return 0, 0, errors.New(errors.ErrCodeConvertFailed, "document root is <%s>, not <svg>", start.Name.Local)
		}

		var width, height float64
		for _, attr := range start.Attr {
			switch attr.Name.Local {
			case "width":
				width, _ = parsePixels(attr.Value)
			case "height":
				height, _ = parsePixels(attr.Value)
			}
		}
		if width <= 0 || height <= 0 {
			return 0, 0, errors.New(errors.ErrCodeConvertFailed, "svg root has no usable pixel dimensions")
		}
		return width, height, nil
	}
}

func parsePixels(v string) (float64, error) {
	v = strings.TrimSuffix(strings.TrimSpace(v), "px")
	return strconv.ParseFloat(v, 64)
}
