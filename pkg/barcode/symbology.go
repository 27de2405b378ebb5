package barcode

import (
	"strings"

	"github.com/matzehuels/barcodewheel/pkg/errors"
	"github.com/matzehuels/barcodewheel/pkg/upc"
)

// Symbology names a barcode type supported by both encoders.
type Symbology string

const (
	UPCA    Symbology = "upca"
	EAN13   Symbology = "ean13"
	Code128 Symbology = "code128"
	QR      Symbology = "qr"
)

// Symbologies lists the supported symbologies in display order.
func Symbologies() []Symbology {
	return []Symbology{UPCA, EAN13, Code128, QR}
}

// ParseSymbology normalizes a user-supplied symbology name.
func ParseSymbology(name string) (Symbology, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "upca", "upc-a", "upc":
		return UPCA, nil
	case "ean13", "ean-13", "ean":
		return EAN13, nil
	case "code128", "code-128", "128":
		return Code128, nil
	case "qr", "qrcode", "qr-code":
		return QR, nil
	case "":
		return UPCA, nil
	}
	return "", errors.New(errors.ErrCodeInvalidSymbology,
		"unknown symbology %q (supported: upca, ean13, code128, qr)", name)
}

// zintCode returns the numeric --barcode selector zint uses.
func (s Symbology) zintCode() int {
	switch s {
	case EAN13:
		return 13
	case Code128:
		return 20
	case UPCA:
		return 34
	case QR:
		return 58
	}
	return 0
}

// NormalizeData validates data for the symbology and returns the
// payload handed to the encoders. UPC-A values are zero-padded to 11
// digits; check digits are always computed by the encoder.
func (s Symbology) NormalizeData(data string) (string, error) {
	switch s {
	case UPCA:
		u, err := upc.Parse(data)
		if err != nil {
			return "", err
		}
		return u.String(), nil
	case EAN13:
		trimmed := strings.TrimSpace(data)
		if len(trimmed) != 12 {
			return "", errors.New(errors.ErrCodeInvalidInput,
				"EAN-13 data must be exactly 12 digits, got %d", len(trimmed))
		}
		for _, r := range trimmed {
			if r < '0' || r > '9' {
				return "", errors.New(errors.ErrCodeInvalidInput,
					"EAN-13 data can only contain digits: %s", trimmed)
			}
		}
		return trimmed, nil
	case Code128, QR:
		if data == "" {
			return "", errors.New(errors.ErrCodeInvalidInput, "cannot encode empty data")
		}
		return data, nil
	}
	return "", errors.New(errors.ErrCodeInvalidSymbology, "unknown symbology %q", string(s))
}
