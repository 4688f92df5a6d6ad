package hocr

import (
	"github.com/gardar/ocrlens/pkg/geometry"
)

// document is the view model rendered by the hOCR template.
type document struct {
	Title     string
	Image     string
	Width     int
	Height    int
	TextAngle float64
	Lines     []line
}

// line is an ocr_line with the union of its word boxes as bbox.
type line struct {
	ID      string
	BBox    BoundingBox
	HasBBox bool
	Words   []word
}

// word is an ocrx_word; Confidence is on the 0-100 scale.
type word struct {
	ID         string
	Text       string
	BBox       BoundingBox
	HasBBox    bool
	Confidence int
}

// BoundingBox represents a rectangle in the document
// Used to store hOCR 'bbox' property values
type BoundingBox struct {
	X1 int // Left coordinate
	Y1 int // Top coordinate
	X2 int // Right coordinate
	Y2 int // Bottom coordinate
}

// NewBoundingBox rounds a rectangle outward to whole pixels.
func NewBoundingBox(r geometry.Rect) BoundingBox {
	return BoundingBox{
		X1: floor(r.Left),
		Y1: floor(r.Top),
		X2: ceil(r.Right),
		Y2: ceil(r.Bottom),
	}
}

// Union returns the smallest box containing both boxes.
func (b BoundingBox) Union(o BoundingBox) BoundingBox {
	return BoundingBox{
		X1: min(b.X1, o.X1),
		Y1: min(b.Y1, o.Y1),
		X2: max(b.X2, o.X2),
		Y2: max(b.Y2, o.Y2),
	}
}
