package scene

import (
	"fmt"
	"strconv"

	"github.com/gardar/ocrlens/pkg/confidence"
	"github.com/gardar/ocrlens/pkg/geometry"
)

// WordDetail is the content of a word's detail popup.
type WordDetail struct {
	ID         string             `json:"id" yaml:"id"`
	Text       string             `json:"text" yaml:"text"`
	Confidence float64            `json:"confidence" yaml:"confidence"`
	Index      int                `json:"index" yaml:"index"`
	Box        *geometry.Polygon4 `json:"-" yaml:"-"`
}

// Lines renders the detail as display rows.
func (d WordDetail) Lines() []string {
	bounds := "N/A"
	if d.Box != nil {
		bounds = d.Box.ExtentString()
	}
	return []string{
		"Word: \"" + d.Text + "\"",
		"Confidence: " + confidence.FormatPercent(d.Confidence) + "%",
		"Index: " + strconv.Itoa(d.Index),
		"Bounds: " + bounds,
	}
}

// Detail returns the detail of the word addressed by id. Words without
// geometry have no node in the scene but still resolve.
func (s *Scene) Detail(id string) (WordDetail, error) {
	l, w, err := ParseWordID(id)
	if err != nil {
		return WordDetail{}, err
	}
	if s.page == nil {
		return WordDetail{}, fmt.Errorf("%w: %q", ErrUnknownWord, id)
	}
	word, ok := s.page.Word(l, w)
	if !ok {
		return WordDetail{}, fmt.Errorf("%w: %q", ErrUnknownWord, id)
	}
	return WordDetail{
		ID:         id,
		Text:       word.Text,
		Confidence: word.Confidence,
		Index:      word.Index,
		Box:        word.Box,
	}, nil
}
