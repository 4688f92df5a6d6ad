package hocr

import (
	"bytes"
	"embed"
	"fmt"
	"html"
	"math"
	"strings"
	"text/template"

	"github.com/gardar/ocrlens/pkg/ocrpage"
)

//go:embed templates/hocr.tmpl
var templateFS embed.FS

var hocrTemplate = template.Must(template.New("hocr.tmpl").Funcs(template.FuncMap{
	"trim": strings.TrimSpace,
	"esc":  html.EscapeString,
}).ParseFS(templateFS, "templates/hocr.tmpl"))

// Generate renders a page as an hOCR document.
func Generate(page *ocrpage.Page) (string, error) {
	if page == nil {
		return "", ocrpage.ErrNoPage
	}

	var buf bytes.Buffer
	if err := hocrTemplate.Execute(&buf, newDocument(page)); err != nil {
		return "", fmt.Errorf("error rendering hOCR template: %w", err)
	}

	return buf.String(), nil
}

func newDocument(page *ocrpage.Page) document {
	md := page.Metadata
	doc := document{
		Title:     md.Filename,
		Image:     md.Filename,
		Width:     md.ImageWidth,
		Height:    md.ImageHeight,
		TextAngle: md.Angle,
	}
	if doc.Title == "" {
		doc.Title = "OCR page"
	}

	for l, ln := range page.Lines {
		out := line{ID: fmt.Sprintf("line_1_%d", l+1)}
		for w, wd := range ln.Words {
			ow := word{
				ID:         fmt.Sprintf("word_1_%d_%d", l+1, w+1),
				Text:       wd.Text,
				Confidence: int(math.Round(wd.Confidence * 100)),
			}
			if wd.Box != nil {
				ow.BBox = NewBoundingBox(wd.Box.Bounds())
				ow.HasBBox = true
				if out.HasBBox {
					out.BBox = out.BBox.Union(ow.BBox)
				} else {
					out.BBox = ow.BBox
					out.HasBBox = true
				}
			}
			out.Words = append(out.Words, ow)
		}
		doc.Lines = append(doc.Lines, out)
	}
	return doc
}

func floor(v float64) int { return int(math.Floor(v)) }
func ceil(v float64) int  { return int(math.Ceil(v)) }
