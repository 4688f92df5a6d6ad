package gdocai

import (
	"math"
	"path"
	"strings"

	"cloud.google.com/go/documentai/apiv1/documentaipb"

	"github.com/gardar/ocrlens/pkg/ocrpage"
)

// convertPage builds the page model. Tokens outside every line are kept, in
// order, on a trailing line.
func convertPage(doc *documentaipb.Document, page *documentaipb.Document_Page, opts Options) *ocrpage.Page {
	out := ocrpage.Empty()
	text := []rune(doc.GetText())

	width, height := pageSize(page)
	if width > 0 {
		out.Metadata.ImageWidth = int(math.Round(width))
	}
	if height > 0 {
		out.Metadata.ImageHeight = int(math.Round(height))
	}
	out.Metadata.Angle = orientationAngle(page.GetLayout().GetOrientation())

	out.Metadata.Filename = opts.Filename
	if out.Metadata.Filename == "" && doc.GetUri() != "" {
		out.Metadata.Filename = path.Base(doc.GetUri())
	}
	out.BackgroundImage = out.Metadata.Filename

	assigned := make([]bool, len(page.GetTokens()))
	groups := make([][]int, 0, len(page.GetLines())+1)
	for _, line := range page.GetLines() {
		var members []int
		for i, token := range page.GetTokens() {
			if !assigned[i] && contains(line.GetLayout(), token.GetLayout()) {
				assigned[i] = true
				members = append(members, i)
			}
		}
		groups = append(groups, members)
	}

	var orphans []int
	for i, ok := range assigned {
		if !ok {
			orphans = append(orphans, i)
		}
	}
	if len(orphans) > 0 {
		groups = append(groups, orphans)
	}

	var sum float64
	for _, members := range groups {
		line := ocrpage.Line{ID: len(out.Lines)}
		for pos, i := range members {
			layout := page.GetTokens()[i].GetLayout()
			word := ocrpage.Word{
				Text:       strings.TrimSpace(textFromLayout(layout, text)),
				Confidence: clampUnit(float64(layout.GetConfidence())),
				Index:      pos,
				Box:        tokenPolygon(layout.GetBoundingPoly(), width, height),
			}
			sum += word.Confidence
			line.Words = append(line.Words, word)
		}
		out.Lines = append(out.Lines, line)
	}

	out.Metadata.TotalLines = len(out.Lines)
	out.Metadata.TotalWords = out.WordCount()
	if out.Metadata.TotalWords > 0 {
		out.Metadata.AverageConfidence = sum / float64(out.Metadata.TotalWords)
	}
	return out
}

// pageSize is the page dimension, falling back to the embedded image size.
func pageSize(page *documentaipb.Document_Page) (width, height float64) {
	if dim := page.GetDimension(); dim.GetWidth() > 0 && dim.GetHeight() > 0 {
		return float64(dim.GetWidth()), float64(dim.GetHeight())
	}
	if img := page.GetImage(); img.GetWidth() > 0 && img.GetHeight() > 0 {
		return float64(img.GetWidth()), float64(img.GetHeight())
	}
	return 0, 0
}
