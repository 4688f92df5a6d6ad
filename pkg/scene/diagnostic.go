package scene

import (
	"bufio"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/gardar/ocrlens/pkg/confidence"
	"github.com/gardar/ocrlens/pkg/geometry"
	"github.com/gardar/ocrlens/pkg/ocrpage"
)

// WriteLineDiagnostic prints the polygon markup, confidence and bounds of each
// word with geometry on the given 0-based line.
func WriteLineDiagnostic(w io.Writer, page *ocrpage.Page, line int, th confidence.Thresholds) error {
	// bufio keeps the first write error and reports it from Flush
	bw := bufio.NewWriter(w)
	writeLineDiagnostic(bw, page, line, th)
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write line diagnostic: %w", err)
	}
	return nil
}

func writeLineDiagnostic(w *bufio.Writer, page *ocrpage.Page, line int, th confidence.Thresholds) {
	fmt.Fprintf(w, "\n=== DEBUG: SVG Elements for Line %d ===\n", line+1)

	if line < 0 || line >= len(page.Lines) {
		fmt.Fprintf(w, "No data for line %d\n", line+1)
		return
	}

	words := page.Lines[line].Words
	fmt.Fprintf(w, "Line %d has %d words:\n", line+1, len(words))

	for i, word := range words {
		if word.Box == nil {
			continue
		}
		b := word.Box
		fmt.Fprintf(w, "Word %d: \"%s\"\n", i, word.Text)
		fmt.Fprintf(w, "  <polygon id=%q points=%q class=%q />\n",
			WordID(line, i), b.ShapePointsAttr(), th.Classify(word.Confidence).SVGClass())
		fmt.Fprintf(w, "  Confidence: %s%% | BBox: %s,%s,%s,%s\n\n",
			confidence.FormatPercent(word.Confidence),
			geometry.FormatCoord(b.X1), geometry.FormatCoord(b.Y1),
			geometry.FormatCoord(b.X2), geometry.FormatCoord(b.Y2))
	}

	w.WriteString("=== END DEBUG ===\n")
}

// Summary is a compact description of a scene.
type Summary struct {
	Filename   string                   `yaml:"filename"`
	Width      int                      `yaml:"width"`
	Height     int                      `yaml:"height"`
	Lines      int                      `yaml:"lines"`
	Words      int                      `yaml:"words"`
	WordBoxes  int                      `yaml:"word_boxes"`
	AvgPercent string                   `yaml:"avg_confidence"`
	Angle      float64                  `yaml:"angle"`
	Tiers      map[string]int           `yaml:"tiers"`
	Legend     []confidence.LegendEntry `yaml:"legend"`
}

// Summarize counts the scene content per tier.
func (s *Scene) Summarize() Summary {
	sum := Summary{
		Width:     s.Width,
		Height:    s.Height,
		WordBoxes: len(s.WordBoxes),
		Tiers:     map[string]int{},
		Legend:    s.Thresholds.Legend(),
	}
	if s.page != nil {
		md := s.page.Metadata
		sum.Filename = md.Filename
		sum.Lines = len(s.page.Lines)
		sum.Words = s.page.WordCount()
		sum.AvgPercent = confidence.FormatPercent(md.AverageConfidence)
		sum.Angle = md.Angle
	}
	for _, shape := range s.WordBoxes {
		sum.Tiers[shape.Tier.String()]++
	}
	return sum
}

// WriteSummary writes the scene summary as YAML.
func WriteSummary(w io.Writer, s *Scene) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s.Summarize()); err != nil {
		return fmt.Errorf("failed to encode scene summary: %w", err)
	}
	return enc.Close()
}
