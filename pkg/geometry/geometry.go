// Package geometry implements the word polygon model used by the OCR overlay:
// parsing 4-point polygons from raw coordinate strings and deriving the label
// anchor, font size and shape points that the overlay renders.
//
// The label constants reproduce a reference visual design and must not be
// tuned: overlay parity tests compare against them exactly.
package geometry

import (
	"math"
	"strconv"
	"strings"
)

// Label placement constants.
const (
	// PolygonCoordinates is the number of coordinate tokens a polygon needs.
	PolygonCoordinates = 8

	FontScale     = 0.7  // font size as a fraction of the box height
	MinFontSize   = 8.0  // lower font size clamp
	MaxFontSize   = 24.0 // upper font size clamp
	LabelInsetX   = 2.0  // horizontal inset of the label from the left edge
	BaselineRatio = 0.75 // baseline offset as a fraction of the box height
)

// Point is a position in image coordinates.
type Point struct {
	X float64
	Y float64
}

// Polygon4 is a word quadrilateral in source-defined point order.
type Polygon4 struct {
	X1, Y1 float64
	X2, Y2 float64
	X3, Y3 float64
	X4, Y4 float64
}

// Anchor is where a word label is drawn and how large.
type Anchor struct {
	X        float64
	Y        float64
	FontSize float64
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	Left   float64
	Top    float64
	Right  float64
	Bottom float64
}

// Width of the rectangle.
func (r Rect) Width() float64 { return r.Right - r.Left }

// Height of the rectangle.
func (r Rect) Height() float64 { return r.Bottom - r.Top }

// ParsePolygon parses a comma-separated coordinate string such as
// "10,20,30,20,30,40,10,40". The first eight tokens must be numbers; tokens
// past the eighth are ignored. ok is false when there are fewer than eight
// tokens or one of the first eight does not parse.
func ParsePolygon(raw string) (p Polygon4, ok bool) {
	if strings.TrimSpace(raw) == "" {
		return Polygon4{}, false
	}

	tokens := strings.Split(raw, ",")
	if len(tokens) < PolygonCoordinates {
		return Polygon4{}, false
	}

	var coords [PolygonCoordinates]float64
	for i := range coords {
		v, err := strconv.ParseFloat(strings.TrimSpace(tokens[i]), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return Polygon4{}, false
		}
		coords[i] = v
	}

	return Polygon4{
		X1: coords[0], Y1: coords[1],
		X2: coords[2], Y2: coords[3],
		X3: coords[4], Y3: coords[5],
		X4: coords[6], Y4: coords[7],
	}, true
}

// FromRect builds a clockwise polygon from an axis-aligned box given as
// top-left and bottom-right corners.
func FromRect(x1, y1, x2, y2 float64) Polygon4 {
	return Polygon4{
		X1: x1, Y1: y1,
		X2: x2, Y2: y1,
		X3: x2, Y3: y2,
		X4: x1, Y4: y2,
	}
}

// Height is the vertical distance between the first and third points.
func (p Polygon4) Height() float64 {
	return math.Abs(p.Y3 - p.Y1)
}

// MinX is the leftmost of the two left-edge points.
func (p Polygon4) MinX() float64 {
	return math.Min(p.X1, p.X4)
}

// MinY is the topmost of the two top-edge points.
func (p Polygon4) MinY() float64 {
	return math.Min(p.Y1, p.Y2)
}

// LabelAnchor returns the text position and font size for the word label.
func (p Polygon4) LabelAnchor() Anchor {
	h := p.Height()
	return Anchor{
		X:        p.MinX() + LabelInsetX,
		Y:        p.MinY() + h*BaselineRatio,
		FontSize: clamp(h*FontScale, MinFontSize, MaxFontSize),
	}
}

// ShapePoints returns the four points drawn for the word box. The fourth
// point reuses X1 rather than X4; the reference overlay closes the shape this
// way and rendered output must match it.
func (p Polygon4) ShapePoints() [4]Point {
	return [4]Point{
		{X: p.X1, Y: p.Y1},
		{X: p.X2, Y: p.Y2},
		{X: p.X3, Y: p.Y3},
		{X: p.X1, Y: p.Y4},
	}
}

// Extent is the raw extent reported in word details: first point to second
// point, exactly as the source gives them.
func (p Polygon4) Extent() (from, to Point) {
	return Point{X: p.X1, Y: p.Y1}, Point{X: p.X2, Y: p.Y2}
}

// Bounds is the axis-aligned rectangle enclosing all four points.
func (p Polygon4) Bounds() Rect {
	xs := [4]float64{p.X1, p.X2, p.X3, p.X4}
	ys := [4]float64{p.Y1, p.Y2, p.Y3, p.Y4}
	r := Rect{Left: xs[0], Top: ys[0], Right: xs[0], Bottom: ys[0]}
	for i := 1; i < 4; i++ {
		r.Left = math.Min(r.Left, xs[i])
		r.Right = math.Max(r.Right, xs[i])
		r.Top = math.Min(r.Top, ys[i])
		r.Bottom = math.Max(r.Bottom, ys[i])
	}
	return r
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
