package wheel

import (
	"fmt"
	"math"
	"strings"
)

// Point is a 2-D coordinate in user units.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// HalfAngle returns half the angular span of one slice, in radians.
func HalfAngle(slices int) float64 {
	return math.Pi / float64(slices)
}

// Vertices returns the points where the slice edges meet the circle.
// The first vertex lies on the positive x axis; successive vertices
// advance by 360/n degrees.
func Vertices(n int, center Point, radius float64) []Point {
	points := make([]Point, 0, n)
	for i := 0; i < n; i++ {
		angle := 2 * math.Pi * float64(i) / float64(n)
		points = append(points, Point{
			X: center.X + radius*math.Cos(angle),
			Y: center.Y + radius*math.Sin(angle),
		})
	}
	return points
}

// SlicePoints pairs each vertex with its successor, wrapping around, in
// the order the pie outline is drawn: a straight edge to the first
// point of the pair, then an arc to the second.
func SlicePoints(n int, center Point, radius float64) [][2]Point {
	vertices := Vertices(n, center, radius)
	pairs := make([][2]Point, 0, n)
	for i := range vertices {
		pairs = append(pairs, [2]Point{vertices[i], vertices[(i+1)%len(vertices)]})
	}
	return pairs
}

// BoxHeight returns the maximum height of a box standing on the slice
// midline with its near edge at distance pct (a fraction of the radius
// measured along the slice edge) from the center. The near corners of
// such a box touch both slice edges exactly.
func BoxHeight(pct, radius float64, slices int) float64 {
	return 2 * math.Sin(HalfAngle(slices)) * pct * radius
}

// PiePath returns the SVG path data drawing the full pie: for every
// slice a line from the center to its first vertex, the outer arc to
// the next vertex, and a move back to the center.
func PiePath(n int, center Point, radius float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "M %s %s", fmtFloat(center.X), fmtFloat(center.Y))
	for _, pair := range SlicePoints(n, center, radius) {
		fmt.Fprintf(&b, " L %s %s", fmtFloat(pair[0].X), fmtFloat(pair[0].Y))
		fmt.Fprintf(&b, " A %s %s 0 0 1 %s %s",
			fmtFloat(radius), fmtFloat(radius), fmtFloat(pair[1].X), fmtFloat(pair[1].Y))
		fmt.Fprintf(&b, " M %s %s", fmtFloat(center.X), fmtFloat(center.Y))
	}
	b.WriteString(" Z")
	return b.String()
}

// fmtFloat renders a coordinate without a trailing zero fraction.
func fmtFloat(v float64) string {
	// Snap values like 99.99999999999999 before printing.
	if r := math.Round(v); math.Abs(v-r) < 1e-9 {
		v = r
	}
	return fmt.Sprintf("%g", v)
}
