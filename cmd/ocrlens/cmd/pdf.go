package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gardar/ocrlens/pkg/pdfocr"
	"github.com/gardar/ocrlens/pkg/scene"
)

type pdfOptions struct {
	output     string
	basePDF    string
	page       int
	image      string
	force      bool
	overwrite  bool
	hiddenText bool
	font       string
}

func newPDFCmd(a *app) *cobra.Command {
	var opts pdfOptions

	cmd := &cobra.Command{
		Use:   "pdf <input>",
		Short: "Export the overlay as a layered PDF",
		Long: `Export the confidence overlay as PDF optional content layers (Background,
Line Boxes, Word Boxes, Text) that PDF viewers can toggle.

Without --pdf a new one-page PDF the size of the page image is created, with
the page image as background when one is found. With --pdf the layers are
drawn over a page of an existing PDF; a PDF that already carries them is
refused unless --force is given.

Examples:
  ocrlens pdf scan.xhtml --image scan.png -o scan.pdf
  ocrlens pdf scan.hocr --pdf original.pdf --page 2 -o overlay.pdf
  ocrlens pdf response.json --hidden-text -o searchable.pdf`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runPDF(args[0], opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "", "output PDF path")
	f.StringVar(&opts.basePDF, "pdf", "", "existing PDF to draw the overlay on")
	f.IntVar(&opts.page, "page", 1, "page of the existing PDF to draw on (1-based)")
	f.StringVar(&opts.image, "image", "", "page image to use as background")
	f.BoolVar(&opts.force, "force", false, "draw the overlay even if the PDF already has overlay layers")
	f.BoolVar(&opts.overwrite, "overwrite", false, "overwrite the output file if it exists")
	f.BoolVar(&opts.hiddenText, "hidden-text", false, "write the text layer invisible, for search and selection only")
	f.StringVar(&opts.font, "font", pdfocr.DefaultFont.Name, "core font for the text layer")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func (a *app) runPDF(path string, opts pdfOptions) error {
	if _, err := os.Stat(opts.output); err == nil && !opts.overwrite {
		return fmt.Errorf("output file %s already exists, use --overwrite to replace it", opts.output)
	}

	in, err := a.loadInput(path)
	if err != nil {
		return err
	}
	sc := scene.Build(in.Page, scene.Options{Thresholds: &a.cfg.Confidence})

	exportOpts := pdfocr.DefaultOptions()
	exportOpts.PageNumber = opts.page
	exportOpts.Force = opts.force
	exportOpts.HiddenText = opts.hiddenText
	exportOpts.Font.Name = opts.font
	exportOpts.Logger = a.logger

	var out []byte
	if opts.basePDF != "" {
		base, err := os.ReadFile(opts.basePDF)
		if err != nil {
			return fmt.Errorf("failed to read PDF: %w", err)
		}
		out, err = pdfocr.Overlay(base, sc, a.cfg.Display, exportOpts)
		if errors.Is(err, pdfocr.ErrOverlayExists) {
			return fmt.Errorf("%w; use --force to draw it again", err)
		}
		if err != nil {
			return err
		}
	} else {
		img, err := a.backgroundImage(opts.image, in)
		if err != nil {
			return err
		}
		exportOpts.Image = img
		out, err = pdfocr.Export(sc, a.cfg.Display, exportOpts)
		if err != nil {
			return err
		}
	}

	if err := os.WriteFile(opts.output, out, 0o644); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	a.logger.Info("wrote PDF", "path", opts.output, "bytes", len(out), "overlay", opts.basePDF != "")
	return nil
}
