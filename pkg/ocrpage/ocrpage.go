// Package ocrpage holds the normalized, read-only model of one OCR page and
// builds it from structured OCR markup.
//
// The markup contract is a page container (section.win11OneOcrPage) carrying
// the metadata attributes srcName, imgWidth, imgHeight, angle,
// averageOcrConfidence, ocrWordsCount and ocrSegmentsCount, containing
// <segment> lines which contain <w> words. A word carries its text and the
// attributes p (confidence), i (explicit index) and b (polygon).
//
// Building is total: malformed attributes fall back to typed defaults and a
// word without a usable polygon simply has no Box.
package ocrpage

import (
	"errors"

	"github.com/gardar/ocrlens/pkg/geometry"
)

// Defaults applied when page attributes are missing or unusable.
const (
	DefaultImageWidth  = 800
	DefaultImageHeight = 600
)

// ErrNoPage is returned when the markup has no page container.
var ErrNoPage = errors.New("no OCR page container found")

// ErrPageNotFound is returned when a requested page is not in the document.
var ErrPageNotFound = errors.New("OCR page not found")

// Metadata describes the page image and OCR run.
type Metadata struct {
	Filename          string  `yaml:"filename"`
	ImageWidth        int     `yaml:"image_width"`
	ImageHeight       int     `yaml:"image_height"`
	Angle             float64 `yaml:"angle"`
	AverageConfidence float64 `yaml:"average_confidence"`
	TotalWords        int     `yaml:"total_words"`
	TotalLines        int     `yaml:"total_lines"`
}

// Word is one recognized word. Box is nil when the source has no usable polygon.
type Word struct {
	Text       string
	Confidence float64
	Index      int
	Box        *geometry.Polygon4
}

// Line is one recognized line. ID is its position among the page's lines.
type Line struct {
	ID    int
	Words []Word
}

// Page is the model of one OCR page. It is not modified after it is built.
type Page struct {
	Metadata Metadata
	Lines    []Line
	// BackgroundImage is the page image reference, empty when the source
	// names no image.
	BackgroundImage string
}

// Empty returns a page with default dimensions and no content.
func Empty() *Page {
	return &Page{
		Metadata: Metadata{
			ImageWidth:  DefaultImageWidth,
			ImageHeight: DefaultImageHeight,
		},
	}
}

// Word returns the word at (line, word) position.
func (p *Page) Word(line, word int) (*Word, bool) {
	if line < 0 || line >= len(p.Lines) {
		return nil, false
	}
	words := p.Lines[line].Words
	if word < 0 || word >= len(words) {
		return nil, false
	}
	return &words[word], true
}

// WordCount counts the words actually present in the lines, which may differ
// from Metadata.TotalWords.
func (p *Page) WordCount() int {
	n := 0
	for _, l := range p.Lines {
		n += len(l.Words)
	}
	return n
}
