package barcode

// Rect classes let the stylesheet recolor a symbol without touching
// its geometry. Rects carrying an explicit Fill are left alone.
const (
	ClassBackground = "background"
	ClassForeground = "foreground"
)

// Rect is one bar or panel of a symbol, in symbol units.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Class  string  `json:"class,omitempty"`
	Fill   string  `json:"fill,omitempty"`
}

// Symbol is an encoded barcode as resolution-independent geometry.
//
// Width and Height describe the visible viewbox. FullHeight is the
// height the rects were drawn against; when it exceeds Height the
// bottom band (where zint reserves room for human-readable text) must
// be clipped away by the consumer.
type Symbol struct {
	Symbology  Symbology `json:"symbology"`
	Data       string    `json:"data"`
	Width      float64   `json:"width"`
	Height     float64   `json:"height"`
	FullHeight float64   `json:"full_height"`
	Rects      []Rect    `json:"rects"`
}

// ClipFraction returns the visible share of the drawn height, the
// number a bounding-box clip path needs.
func (s *Symbol) ClipFraction() float64 {
	if s.FullHeight <= 0 || s.Height >= s.FullHeight {
		return 1
	}
	return s.Height / s.FullHeight
}
