package pdfocr

import (
	"bytes"
	"fmt"
	"image"
	// decoders for detectImageType
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"codeberg.org/go-pdf/fpdf"
	"golang.org/x/text/encoding/charmap"

	"github.com/gardar/ocrlens/pkg/confidence"
	"github.com/gardar/ocrlens/pkg/display"
	"github.com/gardar/ocrlens/pkg/geometry"
	"github.com/gardar/ocrlens/pkg/scene"
)

type rgb struct{ r, g, b int }

// Stroke colors and widths follow the SVG overlay stylesheet.
var (
	lineBoxColor = rgb{0, 0, 0}
	textColor    = rgb{0, 102, 204}
	tierColors   = map[confidence.Tier]rgb{
		confidence.High:   {0, 170, 0},
		confidence.Medium: {255, 170, 0},
		confidence.Low:    {255, 0, 0},
	}
)

const (
	lineBoxWidth = 0.8
	wordBoxWidth = 0.6
)

// OverlayLayerNames are the layers Overlay adds. The imported page takes the
// place of the background.
func OverlayLayerNames() []string {
	return []string{
		scene.LayerLineBoxes.Name(),
		scene.LayerWordBoxes.Name(),
		scene.LayerText.Name(),
	}
}

func drawBackground(pdf *fpdf.Fpdf, sc *scene.Scene, img []byte, visible bool) error {
	imageType, err := detectImageType(img)
	if err != nil {
		return fmt.Errorf("background image has invalid format: %w", err)
	}

	layer := pdf.AddLayer(scene.LayerBackground.Name(), visible)
	pdf.BeginLayer(layer)
	opts := fpdf.ImageOptions{ReadDpi: false, ImageType: imageType}
	pdf.RegisterImageOptionsReader("background", opts, bytes.NewReader(img))
	pdf.ImageOptions("background", 0, 0, float64(sc.Width), float64(sc.Height), false, opts, 0, "")
	pdf.EndLayer()

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("failed to embed background image: %w", err)
	}
	return nil
}

func drawOverlayLayers(pdf *fpdf.Fpdf, sc *scene.Scene, state display.State, opts ExportOptions) {
	vis := state.Visibility()

	layer := pdf.AddLayer(scene.LayerLineBoxes.Name(), vis[scene.LayerLineBoxes])
	pdf.BeginLayer(layer)
	pdf.SetDashPattern([]float64{4, 2}, 0)
	pdf.SetLineWidth(lineBoxWidth)
	setDrawColor(pdf, lineBoxColor)
	for _, shape := range sc.LineBoxes {
		pdf.Polygon(pdfPoints(shape.Points), "D")
	}
	pdf.EndLayer()

	layer = pdf.AddLayer(scene.LayerWordBoxes.Name(), vis[scene.LayerWordBoxes])
	pdf.BeginLayer(layer)
	pdf.SetDashPattern([]float64{2, 1}, 0)
	pdf.SetLineWidth(wordBoxWidth)
	for _, shape := range sc.WordBoxes {
		setDrawColor(pdf, tierColors[shape.Tier])
		pdf.Polygon(pdfPoints(shape.Points), "D")
	}
	pdf.SetDashPattern([]float64{}, 0)
	pdf.EndLayer()

	layer = pdf.AddLayer(scene.LayerText.Name(), vis[scene.LayerText])
	pdf.BeginLayer(layer)
	drawLabels(pdf, sc.Labels, opts)
	pdf.EndLayer()
}

func drawLabels(pdf *fpdf.Fpdf, labels []scene.Label, opts ExportOptions) {
	pdf.SetFont(opts.Font.Name, opts.Font.Style, 12)
	pdf.SetTextColor(textColor.r, textColor.g, textColor.b)
	if opts.HiddenText {
		pdf.SetAlpha(0.0, "Normal")
	}

	unencodable := 0
	for _, label := range labels {
		text, ok := latin1(label.Text)
		if !ok {
			unencodable++
		}
		pdf.SetFontSize(label.Anchor.FontSize)
		pdf.Text(label.Anchor.X, label.Anchor.Y, text)
	}

	if opts.HiddenText {
		pdf.SetAlpha(1.0, "Normal")
	}
	if unencodable > 0 {
		opts.Logger.Warn("labels contain characters outside Latin-1",
			"labels", unencodable, "total", len(labels))
	}
}

// latin1 converts text to ISO-8859-1 for the core fonts, replacing
// characters it cannot represent with '?'.
func latin1(s string) (string, bool) {
	enc := charmap.ISO8859_1.NewEncoder()
	if out, err := enc.String(s); err == nil {
		return out, true
	}

	var b strings.Builder
	for _, r := range s {
		if _, ok := charmap.ISO8859_1.EncodeRune(r); ok {
			b.WriteRune(r)
		} else {
			b.WriteByte('?')
		}
	}
	out, err := enc.String(b.String())
	if err != nil {
		return strings.Repeat("?", len(s)), false
	}
	return out, false
}

func pdfPoints(points [4]geometry.Point) []fpdf.PointType {
	out := make([]fpdf.PointType, len(points))
	for i, p := range points {
		out[i] = fpdf.PointType{X: p.X, Y: p.Y}
	}
	return out
}

func setDrawColor(pdf *fpdf.Fpdf, c rgb) {
	pdf.SetDrawColor(c.r, c.g, c.b)
}

// detectImageType tries to figure out whether the data is PNG, JPEG, etc.
func detectImageType(data []byte) (string, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to decode image config: %w", err)
	}
	return strings.ToUpper(format), nil
}
