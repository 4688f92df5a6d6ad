// Package pdfocr renders an OCR overlay scene as a layered PDF.
//
// Each scene layer becomes an optional content group, so PDF readers with a
// layer pane can toggle the background, line boxes, word boxes and text just
// like the viewer does. Initial layer visibility follows the display state.
//
// Main Functions:
//
// - Export: builds a one-page PDF sized to the scene canvas
// - Overlay: draws the overlay layers on a page of an existing PDF
// - DetectLayers: lists the optional content groups of a PDF
package pdfocr

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"codeberg.org/go-pdf/fpdf"
	"codeberg.org/go-pdf/fpdf/contrib/gofpdi"

	"github.com/gardar/ocrlens/pkg/display"
	"github.com/gardar/ocrlens/pkg/scene"
)

// ErrOverlayExists is returned by Overlay when the input PDF already carries
// overlay layers and Force is not set.
var ErrOverlayExists = errors.New("PDF already has overlay layers")

// Export builds a one-page PDF holding the scene layers. Page units are
// points with one point per image pixel.
func Export(sc *scene.Scene, state display.State, opts ExportOptions) ([]byte, error) {
	if sc == nil {
		return nil, fmt.Errorf("scene is nil")
	}
	opts = opts.withDefaults()

	pdf := newPage(sc)
	if len(opts.Image) > 0 {
		if err := drawBackground(pdf, sc, opts.Image, state.ShowSVGBackground); err != nil {
			return nil, err
		}
	}
	drawOverlayLayers(pdf, sc, state, opts)

	return output(pdf)
}

// Overlay imports page opts.PageNumber of an existing PDF, stretches it over
// the scene canvas and draws the line box, word box and text layers on top.
func Overlay(pdfData []byte, sc *scene.Scene, state display.State, opts ExportOptions) (out []byte, err error) {
	if len(pdfData) == 0 {
		return nil, fmt.Errorf("input PDF data is empty")
	}
	if sc == nil {
		return nil, fmt.Errorf("scene is nil")
	}
	opts = opts.withDefaults()
	if opts.PageNumber < 1 {
		return nil, fmt.Errorf("page number must be at least 1, got %d", opts.PageNumber)
	}

	check, err := CheckExistingLayers(pdfData, OverlayLayerNames())
	if err != nil {
		return nil, fmt.Errorf("layer detection failed: %w", err)
	}
	for _, warning := range check.Warnings {
		opts.Logger.Warn(warning)
	}
	if len(check.Existing) > 0 {
		if !opts.Force {
			return nil, fmt.Errorf("%w: %s", ErrOverlayExists, strings.Join(check.Existing, ", "))
		}
		opts.Logger.Warn("reapplying overlay, the output will carry duplicate layers",
			"layers", check.Existing)
	}

	// gofpdi panics on malformed input.
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("failed to import page %d: %v", opts.PageNumber, r)
		}
	}()

	pdf := newPage(sc)
	importer := gofpdi.NewImporter()
	rs := io.ReadSeeker(bytes.NewReader(pdfData))
	tpl := importer.ImportPageFromStream(pdf, &rs, opts.PageNumber, "/MediaBox")
	importer.UseImportedTemplate(pdf, tpl, 0, 0, float64(sc.Width), float64(sc.Height))

	drawOverlayLayers(pdf, sc, state, opts)

	return output(pdf)
}

func newPage(sc *scene.Scene) *fpdf.Fpdf {
	pdf := fpdf.New("P", "pt", "", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPageFormat("P", fpdf.SizeType{Wd: float64(sc.Width), Ht: float64(sc.Height)})
	pdf.OpenLayerPane()
	return pdf
}

func output(pdf *fpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}
