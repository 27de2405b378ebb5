package barcode

import (
	"context"
	"image"

	"github.com/boombuler/barcode/code128"
	"github.com/boombuler/barcode/ean"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/matzehuels/barcodewheel/pkg/errors"
)

// Linear symbols are drawn 50 units tall with a 10 unit quiet zone on
// each side, matching the proportions of zint's output so the two
// encoders are interchangeable downstream.
const (
	barHeight = 50
	quietZone = 10
)

// Module is the pure Go encoder. It needs no external binary.
type Module struct{}

// Encode renders the payload without shelling out. UPC-A is encoded
// as EAN-13 with a leading zero, which produces the identical bar
// pattern.
func (Module) Encode(ctx context.Context, symbology Symbology, data string) (*Symbol, error) {
	payload, err := symbology.NormalizeData(data)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var symbol *Symbol
	switch symbology {
	case UPCA:
		symbol, err = linearSymbol(func() (image.Image, error) { return ean.Encode("0" + payload) })
	case EAN13:
		symbol, err = linearSymbol(func() (image.Image, error) { return ean.Encode(payload) })
	case Code128:
		symbol, err = linearSymbol(func() (image.Image, error) { return code128.Encode(payload) })
	case QR:
		symbol, err = qrSymbol(payload)
	default:
		return nil, errors.New(errors.ErrCodeInvalidSymbology, "unknown symbology %q", string(symbology))
	}
	if err != nil {
		return nil, err
	}

	symbol.Symbology = symbology
	symbol.Data = payload
	return symbol, nil
}

// linearSymbol turns a one-dimensional code (one pixel per module)
// into bars, merging adjacent dark modules into single rects the way
// zint does.
func linearSymbol(encode func() (image.Image, error)) (*Symbol, error) {
	img, err := encode()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeBarcodeFailed, err, "encoding barcode")
	}

	modules := img.Bounds().Dx()
	width := float64(modules + 2*quietZone)

	rects := []Rect{{X: 0, Y: 0, Width: width, Height: barHeight, Class: ClassBackground}}
	for start := 0; start < modules; {
		if !darkAt(img, start, 0) {
			start++
			continue
		}
		end := start
		for end < modules && darkAt(img, end, 0) {
			end++
		}
		rects = append(rects, Rect{
			X:      float64(quietZone + start),
			Y:      0,
			Width:  float64(end - start),
			Height: barHeight,
			Class:  ClassForeground,
		})
		start = end
	}

	return &Symbol{
		Width:      width,
		Height:     barHeight,
		FullHeight: barHeight,
		Rects:      rects,
	}, nil
}

// qrSymbol renders a QR matrix one unit per module. The bitmap from
// go-qrcode already carries its quiet border.
func qrSymbol(payload string) (*Symbol, error) {
	qr, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeBarcodeFailed, err, "encoding QR code")
	}

	bitmap := qr.Bitmap()
	size := float64(len(bitmap))

	rects := []Rect{{X: 0, Y: 0, Width: size, Height: size, Class: ClassBackground}}
	for y, row := range bitmap {
		for start := 0; start < len(row); {
			if !row[start] {
				start++
				continue
			}
			end := start
			for end < len(row) && row[end] {
				end++
			}
			rects = append(rects, Rect{
				X:      float64(start),
				Y:      float64(y),
				Width:  float64(end - start),
				Height: 1,
				Class:  ClassForeground,
			})
			start = end
		}
	}

	return &Symbol{
		Width:      size,
		Height:     size,
		FullHeight: size,
		Rects:      rects,
	}, nil
}

func darkAt(img image.Image, x, y int) bool {
	r, _, _, _ := img.At(img.Bounds().Min.X+x, img.Bounds().Min.Y+y).RGBA()
	return r < 0x8000
}
