package barcode

import (
	"context"
	"strings"

	"github.com/matzehuels/barcodewheel/pkg/errors"
)

// Encoder renders a payload into the symbol model.
type Encoder interface {
	Encode(ctx context.Context, symbology Symbology, data string) (*Symbol, error)
}

// Auto returns the zint encoder when the binary is installed and the
// built-in encoder otherwise.
func Auto() Encoder {
	if z, err := NewZint(); err == nil {
		return z
	}
	return Module{}
}

// NewEncoder selects an encoder by name: "zint", "module", or "auto".
func NewEncoder(name string) (Encoder, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return Auto(), nil
	case "zint":
		return NewZint()
	case "module", "go":
		return Module{}, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidInput,
		"unknown barcode backend %q (supported: auto, zint, module)", name)
}
