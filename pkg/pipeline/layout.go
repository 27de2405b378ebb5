package pipeline

import (
	"github.com/matzehuels/barcodewheel/pkg/catalog"
	"github.com/matzehuels/barcodewheel/pkg/wheel"
)

// BuildLayout computes the wheel geometry for the catalog. With
// Options.Slices unset the wheel gets one slice per product.
func BuildLayout(cat *catalog.Catalog, opts Options) (*wheel.Layout, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return nil, err
	}
	slots, err := opts.resolveSlots()
	if err != nil {
		return nil, err
	}
	return buildLayout(opts.resolveSlices(cat.Len()), slots, opts)
}

// buildLayout runs the geometry with already-resolved slices and slots.
func buildLayout(slices int, slots []wheel.Slot, opts Options) (*wheel.Layout, error) {
	half := opts.Size / 2
	return wheel.Build(wheel.Config{
		Slices: slices,
		Center: wheel.Point{X: half, Y: half},
		Radius: half - opts.Margin,
		Slots:  slots,
	})
}
