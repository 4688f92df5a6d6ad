package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gardar/ocrlens/pkg/gdocai"
	"github.com/gardar/ocrlens/pkg/hocr"
	"github.com/gardar/ocrlens/pkg/ocrpage"
)

// Input formats.
const (
	formatAuto  = "auto"
	formatXHTML = "xhtml"
	formatHOCR  = "hocr"
	formatDocAI = "docai"
)

// input is one loaded OCR page.
type input struct {
	Path string
	Page *ocrpage.Page
	// Source is the markup the page was read from; nil for hOCR and
	// Document AI until sourced.
	Source *ocrpage.Source
	// Image is the page image embedded in the input, if any.
	Image []byte
}

// detectFormat picks the input format from the file extension.
func detectFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hocr":
		return formatHOCR
	case ".json":
		return formatDocAI
	default:
		return formatXHTML
	}
}

// loadInput reads and parses the input file.
func (a *app) loadInput(path string) (*input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	format := strings.ToLower(a.format)
	if format == "" || format == formatAuto {
		format = detectFormat(path)
	}
	a.logger.Debug("reading input", "path", path, "format", format)

	switch format {
	case formatXHTML:
		page, src, err := ocrpage.ParseBytes(data, ocrpage.ParseOptions{
			Logger:     a.logger,
			PageNumber: a.pageIdx + 1,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		return &input{Path: path, Page: page, Source: src}, nil

	case formatHOCR:
		page, err := hocr.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		return &input{Path: path, Page: page}, nil

	case formatDocAI:
		doc, err := gdocai.Decode(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		page, err := gdocai.FromProto(doc, gdocai.Options{PageIndex: a.pageIdx})
		if err != nil {
			return nil, fmt.Errorf("failed to convert %s: %w", path, err)
		}
		in := &input{Path: path, Page: page}
		if img, _, err := gdocai.PageImage(doc, a.pageIdx); err == nil {
			in.Image = img
		}
		return in, nil

	default:
		return nil, fmt.Errorf("unknown input format %q (want %s, %s or %s)", a.format, formatXHTML, formatHOCR, formatDocAI)
	}
}

// source returns the markup source of the input, writing one for formats
// that have none.
func (in *input) source() (*ocrpage.Source, error) {
	if in.Source == nil {
		src, err := ocrpage.SourceOf(in.Page)
		if err != nil {
			return nil, err
		}
		in.Source = src
	}
	return in.Source, nil
}

// backgroundImage finds the page image: an explicit path first, then an
// image embedded in the input, then the page's filename resolved against
// render.image_dir or the input's directory. A missing image is not an error.
func (a *app) backgroundImage(explicit string, in *input) ([]byte, error) {
	if explicit != "" {
		data, err := os.ReadFile(explicit)
		if err != nil {
			return nil, fmt.Errorf("failed to read image: %w", err)
		}
		return data, nil
	}
	if len(in.Image) > 0 {
		return in.Image, nil
	}

	name := in.Page.Metadata.Filename
	if name == "" {
		return nil, nil
	}
	dir := a.cfg.Render.ImageDir
	if dir == "" {
		dir = filepath.Dir(in.Path)
	}
	path := filepath.Join(dir, filepath.Base(name))
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		a.logger.Debug("page image not found", "path", path)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	return data, nil
}

// output opens the destination of a command: path, or stdout when empty
// or "-".
func output(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output: %w", err)
	}
	return f, f.Close, nil
}
