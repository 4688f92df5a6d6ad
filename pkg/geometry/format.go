package geometry

import (
	"math"
	"strconv"
	"strings"
)

// Round1 rounds v to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// FormatCoord formats a coordinate rounded to one decimal, without trailing zeros.
func FormatCoord(v float64) string {
	return strconv.FormatFloat(Round1(v), 'f', -1, 64)
}

// FormatFixed1 formats v rounded to exactly one decimal ("14.0"), as label
// positions and font sizes are written.
func FormatFixed1(v float64) string {
	r := Round1(v)
	if r == 0 {
		r = 0 // drop the sign of -0
	}
	return strconv.FormatFloat(r, 'f', 1, 64)
}

// PointsAttr formats points as an SVG points attribute: "x1,y1 x2,y2 ...".
func PointsAttr(points []Point) string {
	var b strings.Builder
	for i, pt := range points {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(FormatCoord(pt.X))
		b.WriteByte(',')
		b.WriteString(FormatCoord(pt.Y))
	}
	return b.String()
}

// ShapePointsAttr is the SVG points attribute of the word box.
func (p Polygon4) ShapePointsAttr() string {
	pts := p.ShapePoints()
	return PointsAttr(pts[:])
}

// ExtentString formats the raw extent as "x1,y1 to x2,y2".
func (p Polygon4) ExtentString() string {
	from, to := p.Extent()
	return FormatCoord(from.X) + "," + FormatCoord(from.Y) + " to " +
		FormatCoord(to.X) + "," + FormatCoord(to.Y)
}
