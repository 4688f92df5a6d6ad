package pdfocr

import (
	"log/slog"
)

// ExportOptions holds user options for PDF export and overlay
type ExportOptions struct {
	// Image is the background image (PNG, JPEG or GIF). Export adds the
	// Background layer only when it is set.
	Image []byte
	// PageNumber is the 1-based page of the input PDF that Overlay draws on.
	PageNumber int
	// Force overlays even when the input already carries the overlay layers.
	Force bool
	// HiddenText draws labels fully transparent, leaving them searchable
	// and selectable but invisible.
	HiddenText bool
	Font       FontConfig
	// Logger receives diagnostics; nil means slog.Default().
	Logger *slog.Logger
}

// DefaultOptions returns options with sensible defaults
func DefaultOptions() ExportOptions {
	return ExportOptions{
		PageNumber: 1,
		Font:       DefaultFont,
	}
}

// FontConfig contains font settings for label rendering. The size of each
// label comes from its anchor.
type FontConfig struct {
	Name  string // Font name (e.g., "Helvetica")
	Style string // Font style ("", "B", "I", "BI")
}

// DefaultFont is a bold core font, matching the bold sans-serif labels of the
// SVG overlay.
var DefaultFont = FontConfig{
	Name:  "Helvetica",
	Style: "B",
}

func (o ExportOptions) withDefaults() ExportOptions {
	if o.PageNumber == 0 {
		o.PageNumber = 1
	}
	if o.Font.Name == "" {
		o.Font = DefaultFont
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}
