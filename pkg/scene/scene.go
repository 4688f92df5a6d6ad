// Package scene derives the layered vector overlay of an OCR page.
//
// A Scene has four layers painted in order: the background image, line
// boxes, word boxes and word labels. Each word with geometry contributes one
// shape to the word-box layer and one label to the text layer, both addressed
// by the stable identifier word-{line}-{word}. Layer visibility is not part of
// the scene; it is supplied at render time.
package scene

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gardar/ocrlens/pkg/confidence"
	"github.com/gardar/ocrlens/pkg/geometry"
	"github.com/gardar/ocrlens/pkg/ocrpage"
)

// LayerID identifies a scene layer. The values double as element ids in the
// rendered SVG.
type LayerID string

const (
	LayerBackground LayerID = "svg-background-layer"
	LayerLineBoxes  LayerID = "svg-line-boxes"
	LayerWordBoxes  LayerID = "svg-word-boxes"
	LayerText       LayerID = "svg-text-layer"
)

// Layers lists the layer ids in paint order.
var Layers = []LayerID{LayerBackground, LayerLineBoxes, LayerWordBoxes, LayerText}

// ErrUnknownWord is returned for identifiers that address no word.
var ErrUnknownWord = errors.New("unknown word identifier")

// Name is a human readable layer name.
func (id LayerID) Name() string {
	switch id {
	case LayerBackground:
		return "Background"
	case LayerLineBoxes:
		return "Line Boxes"
	case LayerWordBoxes:
		return "Word Boxes"
	case LayerText:
		return "Text"
	default:
		return string(id)
	}
}

// Image is the background image element, stretched to the canvas.
type Image struct {
	Href   string
	Width  int
	Height int
}

// Shape is a word (or line) box.
type Shape struct {
	ID     string
	Line   int
	Word   int
	Tier   confidence.Tier
	Points [4]geometry.Point
}

// Class is the CSS class of the shape.
func (s Shape) Class() string { return s.Tier.SVGClass() }

// PointsAttr formats the shape points as an SVG points attribute.
func (s Shape) PointsAttr() string { return geometry.PointsAttr(s.Points[:]) }

// Label is a word's text positioned over its box.
type Label struct {
	ID     string
	Line   int
	Word   int
	Text   string
	Tier   confidence.Tier
	Anchor geometry.Anchor
	// Title is the hover title, "Confidence: 87.5%".
	Title string
}

// Scene is the derived overlay of one page. It is built once and only read
// afterwards.
type Scene struct {
	Width      int
	Height     int
	Background *Image
	// LineBoxes is always empty for the current markup, which carries no
	// line geometry; the layer is still rendered.
	LineBoxes  []Shape
	WordBoxes  []Shape
	Labels     []Label
	Thresholds confidence.Thresholds

	page *ocrpage.Page
}

// Options configures Build.
type Options struct {
	// Thresholds tiers the words; nil means confidence.DefaultThresholds.
	Thresholds *confidence.Thresholds
	// BackgroundHref overrides the page's background image reference.
	BackgroundHref string
}

// Build derives the scene of page.
func Build(page *ocrpage.Page, opts Options) *Scene {
	th := confidence.Resolve(opts.Thresholds)

	sc := &Scene{
		Width:      page.Metadata.ImageWidth,
		Height:     page.Metadata.ImageHeight,
		Thresholds: th,
		page:       page,
	}

	href := opts.BackgroundHref
	if href == "" {
		href = page.BackgroundImage
	}
	if href != "" {
		sc.Background = &Image{Href: href, Width: sc.Width, Height: sc.Height}
	}

	for l, line := range page.Lines {
		for w, word := range line.Words {
			if word.Box == nil {
				continue
			}
			id := WordID(l, w)
			tier := th.Classify(word.Confidence)

			sc.WordBoxes = append(sc.WordBoxes, Shape{
				ID:     id,
				Line:   l,
				Word:   w,
				Tier:   tier,
				Points: word.Box.ShapePoints(),
			})
			sc.Labels = append(sc.Labels, Label{
				ID:     id,
				Line:   l,
				Word:   w,
				Text:   word.Text,
				Tier:   tier,
				Anchor: word.Box.LabelAnchor(),
				Title:  "Confidence: " + confidence.FormatPercent(word.Confidence) + "%",
			})
		}
	}

	return sc
}

// Page returns the page the scene was built from.
func (s *Scene) Page() *ocrpage.Page { return s.page }

// WordID formats the identifier of the word at (line, word).
func WordID(line, word int) string {
	return "word-" + strconv.Itoa(line) + "-" + strconv.Itoa(word)
}

// ParseWordID is the inverse of WordID.
func ParseWordID(id string) (line, word int, err error) {
	rest, ok := strings.CutPrefix(id, "word-")
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrUnknownWord, id)
	}
	ls, ws, ok := strings.Cut(rest, "-")
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrUnknownWord, id)
	}
	line, lerr := strconv.Atoi(ls)
	word, werr := strconv.Atoi(ws)
	if lerr != nil || werr != nil || line < 0 || word < 0 {
		return 0, 0, fmt.Errorf("%w: %q", ErrUnknownWord, id)
	}
	return line, word, nil
}
