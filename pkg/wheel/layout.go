package wheel

import (
	"encoding/json"
	"math"

	"github.com/matzehuels/barcodewheel/pkg/cache"
	"github.com/matzehuels/barcodewheel/pkg/errors"
)

// Config describes the wheel to build.
type Config struct {
	Slices int     `json:"slices"`
	Center Point   `json:"center"`
	Radius float64 `json:"radius"`
	Slots  []Slot  `json:"slots,omitempty"` // nil means DefaultSlots
}

// withDefaults fills zero-valued fields.
func (c Config) withDefaults() Config {
	if c.Slots == nil {
		c.Slots = DefaultSlots()
	}
	return c
}

// Validate checks the configuration for geometric soundness.
func (c Config) Validate() error {
	if c.Slices < 2 {
		return errors.New(errors.ErrCodeInvalidLayout, "a wheel needs at least 2 slices, got %d", c.Slices)
	}
	if c.Radius <= 0 || math.IsNaN(c.Radius) || math.IsInf(c.Radius, 0) {
		return errors.New(errors.ErrCodeInvalidLayout, "radius must be positive, got %g", c.Radius)
	}
	return validateSlots(c.Slots)
}

// Box is one placed slot within the canonical slice. X and Y locate
// the top-left corner before rotation; Rotation is in degrees about
// the box center.
type Box struct {
	Slot     string  `json:"slot"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Rotation float64 `json:"rotation,omitempty"`
}

// CenterX returns the horizontal center point of the box.
func (b Box) CenterX() float64 { return b.X + b.Width/2 }

// CenterY returns the vertical center point of the box.
func (b Box) CenterY() float64 { return b.Y + b.Height/2 }

// Layout is the computed wheel geometry: the pie outline plus the slot
// boxes of the canonical slice (midline on the positive x axis). Slice
// i is the canonical slice rotated by [Layout.SliceRotation](i) about
// the center.
type Layout struct {
	Slices int     `json:"slices"`
	Center Point   `json:"center"`
	Radius float64 `json:"radius"`
	Boxes  []Box   `json:"boxes"`
	Path   string  `json:"path"`
}

// SliceRotation returns the rotation in degrees placing slice i.
// Slice 0 straddles the first vertex, hence the half-slice offset.
func (l *Layout) SliceRotation(i int) float64 {
	return (360 / float64(l.Slices)) * (float64(i) - 0.5)
}

// Box returns the canonical box for a slot name.
func (l *Layout) Box(slot string) (Box, bool) {
	for _, b := range l.Boxes {
		if b.Slot == slot {
			return b, true
		}
	}
	return Box{}, false
}

// Hash returns a stable content hash of the layout, used as the cache
// key component for rendered artifacts.
func (l *Layout) Hash() string {
	data, _ := json.Marshal(l)
	return cache.Hash(data)
}

// Build computes the layout for a configuration.
//
// Slots are placed left to right along the canonical midline. Every
// slot advances the running edge distance by its padding, takes its
// configured width (projected onto the midline), and picks up the
// height the slice permits at its near edge. The final slot instead
// runs from its padded start to the arc of the circle.
func Build(cfg Config) (*Layout, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	half := HalfAngle(cfg.Slices)
	cosHalf := math.Cos(half)

	boxes := make([]Box, 0, len(cfg.Slots))
	var left, right float64
	for _, slot := range cfg.Slots[:len(cfg.Slots)-1] {
		left = right + slot.Padding
		right += slot.Padding + slot.Width

		height := BoxHeight(left, cfg.Radius, cfg.Slices)
		width := slot.Width * cfg.Radius * cosHalf

		boxes = append(boxes, Box{
			Slot:     slot.Name,
			X:        cfg.Center.X + left*cosHalf*cfg.Radius,
			Y:        cfg.Center.Y - height/2,
			Width:    width,
			Height:   height,
			Rotation: slot.Rotation,
		})
	}

	last := cfg.Slots[len(cfg.Slots)-1]
	boxes = append(boxes, lastBox(cfg, right+last.Padding, last))

	return &Layout{
		Slices: cfg.Slices,
		Center: cfg.Center,
		Radius: cfg.Radius,
		Boxes:  boxes,
		Path:   PiePath(cfg.Slices, cfg.Center, cfg.Radius),
	}, nil
}

// lastBox sizes the final slot so its far edge lands on the arc: the
// box is as tall as the slice allows at its start, and its width runs
// to the x where the circle has shrunk to that height.
func lastBox(cfg Config, pct float64, slot Slot) Box {
	height := BoxHeight(pct, cfg.Radius, cfg.Slices)
	half := HalfAngle(cfg.Slices)

	width := math.Cos(math.Asin(height/(2*cfg.Radius)))*cfg.Radius - pct*cfg.Radius*math.Cos(half)

	return Box{
		Slot:     slot.Name,
		X:        cfg.Center.X + pct*math.Cos(half)*cfg.Radius,
		Y:        cfg.Center.Y - height/2,
		Width:    width,
		Height:   height,
		Rotation: slot.Rotation,
	}
}
