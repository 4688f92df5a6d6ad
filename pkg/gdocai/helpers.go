package gdocai

import (
	"math"

	"cloud.google.com/go/documentai/apiv1/documentaipb"

	"github.com/gardar/ocrlens/pkg/geometry"
)

// tokenPolygon converts a bounding polygon to page pixels. Vertices run
// clockwise from the top-left corner.
func tokenPolygon(poly *documentaipb.BoundingPoly, width, height float64) *geometry.Polygon4 {
	var xs, ys [4]float64
	switch {
	case len(poly.GetVertices()) >= 4:
		for i, v := range poly.GetVertices()[:4] {
			xs[i], ys[i] = float64(v.GetX()), float64(v.GetY())
		}
	case len(poly.GetNormalizedVertices()) >= 4 && width > 0 && height > 0:
		for i, v := range poly.GetNormalizedVertices()[:4] {
			xs[i], ys[i] = float64(v.GetX())*width, float64(v.GetY())*height
		}
	default:
		return nil
	}

	return &geometry.Polygon4{
		X1: xs[0], Y1: ys[0],
		X2: xs[1], Y2: ys[1],
		X3: xs[2], Y3: ys[2],
		X4: xs[3], Y4: ys[3],
	}
}

// orientationAngle maps a page orientation to the clockwise rotation, in
// degrees, needed to read the page upright.
func orientationAngle(o documentaipb.Document_Page_Layout_Orientation) float64 {
	switch o {
	case documentaipb.Document_Page_Layout_PAGE_RIGHT:
		return 90
	case documentaipb.Document_Page_Layout_PAGE_DOWN:
		return 180
	case documentaipb.Document_Page_Layout_PAGE_LEFT:
		return 270
	default:
		return 0
	}
}

func clampUnit(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return math.Min(v, 1)
}
