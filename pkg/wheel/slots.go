package wheel

import (
	"math"

	"github.com/matzehuels/barcodewheel/pkg/errors"
)

// Well-known slot names filled by the pipeline. Custom slots are
// allowed; these four are what [DefaultSlots] lays out.
const (
	SlotBarcode = "barcode"
	SlotUPC     = "upc"
	SlotName    = "name"
	SlotPicture = "picture"
)

// Slot describes one placeholder within a slice. Padding and Width are
// fractions of the radius measured along the slice edge; Rotation is in
// degrees about the box center. The final slot's Width is ignored and
// computed to meet the arc.
type Slot struct {
	Name     string  `json:"name"`
	Padding  float64 `json:"padding"`
	Width    float64 `json:"width"`
	Rotation float64 `json:"rotation"`
}

// Override adjusts a single slot by name. Nil fields keep the default.
type Override struct {
	Padding  *float64 `json:"padding,omitempty"`
	Width    *float64 `json:"width,omitempty"`
	Rotation *float64 `json:"rotation,omitempty"`
}

// DefaultSlots returns the standard slice layout: barcode, UPC digits,
// product name, picture. The picture fills whatever radius remains.
func DefaultSlots() []Slot {
	return []Slot{
		{Name: SlotBarcode, Padding: 0.10, Width: 0.15, Rotation: 0},
		{Name: SlotUPC, Padding: 0.05, Width: 0.20, Rotation: 0},
		{Name: SlotName, Padding: 0.05, Width: 0.20, Rotation: 90},
		{Name: SlotPicture, Padding: 0.02, Width: 0, Rotation: 90},
	}
}

// ApplyOverrides returns a copy of slots with the overrides applied.
// Overriding an unknown slot is an error, as is overriding the width of
// the final slot, which always fills the remaining radius.
func ApplyOverrides(slots []Slot, overrides map[string]Override) ([]Slot, error) {
	out := make([]Slot, len(slots))
	copy(out, slots)

	byName := make(map[string]int, len(out))
	for i, s := range out {
		byName[s.Name] = i
	}

	for name, ov := range overrides {
		if err := errors.ValidateSlotName(name); err != nil {
			return nil, err
		}
		i, ok := byName[name]
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidLayout, "unknown slot: %q", name)
		}
		if ov.Padding != nil {
			out[i].Padding = *ov.Padding
		}
		if ov.Width != nil {
			if i == len(out)-1 {
				return nil, errors.New(errors.ErrCodeInvalidLayout,
					"cannot set width of final slot %q: it fills the remaining radius", name)
			}
			out[i].Width = *ov.Width
		}
		if ov.Rotation != nil {
			out[i].Rotation = *ov.Rotation
		}
	}

	return out, nil
}

// validateSlots checks names, fractions, and the total radius budget.
// The sum of all paddings and all non-final widths must stay strictly
// below 1.0, or the final slot would start on or beyond the arc.
func validateSlots(slots []Slot) error {
	if len(slots) == 0 {
		return errors.New(errors.ErrCodeInvalidLayout, "at least one slot is required")
	}

	seen := make(map[string]struct{}, len(slots))
	var total float64
	for i, s := range slots {
		if err := errors.ValidateSlotName(s.Name); err != nil {
			return err
		}
		if _, dup := seen[s.Name]; dup {
			return errors.New(errors.ErrCodeInvalidLayout, "duplicate slot name: %q", s.Name)
		}
		seen[s.Name] = struct{}{}

		if s.Padding < 0 || math.IsNaN(s.Padding) || math.IsInf(s.Padding, 0) {
			return errors.New(errors.ErrCodeInvalidLayout, "slot %q: padding must be non-negative", s.Name)
		}
		if s.Width < 0 || math.IsNaN(s.Width) || math.IsInf(s.Width, 0) {
			return errors.New(errors.ErrCodeInvalidLayout, "slot %q: width must be non-negative", s.Name)
		}

		total += s.Padding
		if i < len(slots)-1 {
			total += s.Width
		}
	}

	if total >= 1 {
		return errors.New(errors.ErrCodeInvalidLayout,
			"slot paddings and widths take up %.0f%% of the slice length; the final slot needs room before the arc", total*100)
	}

	return nil
}
