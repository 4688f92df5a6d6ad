package cmd

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gardar/ocrlens/pkg/scene"
	"github.com/gardar/ocrlens/pkg/xhtmlview"
)

type renderOptions struct {
	output         string
	format         string
	backgroundHref string
	image          string
	embedImage     bool
}

func newRenderCmd(a *app) *cobra.Command {
	var opts renderOptions

	cmd := &cobra.Command{
		Use:   "render <input>",
		Short: "Render the confidence overlay of a page",
		Long: `Render the confidence overlay of an OCR page.

The svg format draws the page image, word boxes colored by confidence and the
recognized text as separate layers, shown or hidden per the display settings.
The xhtml format writes the source markup decorated with confidence classes
and line numbers.

Examples:
  ocrlens render scan.xhtml -o scan.svg
  ocrlens render scan.hocr --embed-image --image scan.png > scan.svg
  ocrlens render scan.xhtml --format xhtml -o decorated.html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runRender(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&opts.format, "format", "svg", "output format: svg or xhtml")
	cmd.Flags().StringVar(&opts.backgroundHref, "background-href", "", "reference to the page image in the SVG (default the page's filename)")
	cmd.Flags().StringVar(&opts.image, "image", "", "page image file to embed")
	cmd.Flags().BoolVar(&opts.embedImage, "embed-image", false, "embed the page image in the SVG as a data URI")
	return cmd
}

func (a *app) runRender(cmd *cobra.Command, path string, opts renderOptions) error {
	in, err := a.loadInput(path)
	if err != nil {
		return err
	}

	w, closeOut, err := output(cmd, opts.output)
	if err != nil {
		return err
	}
	defer func() { _ = closeOut() }()

	switch strings.ToLower(opts.format) {
	case "svg":
		href := opts.backgroundHref
		if opts.embedImage {
			img, err := a.backgroundImage(opts.image, in)
			if err != nil {
				return err
			}
			if img != nil {
				href = dataURI(img)
			} else {
				a.logger.Warn("no page image to embed", "filename", in.Page.Metadata.Filename)
			}
		}
		sc := scene.Build(in.Page, scene.Options{Thresholds: &a.cfg.Confidence, BackgroundHref: href})
		if err := scene.WriteSVG(w, sc, a.cfg.Display.Visibility()); err != nil {
			return err
		}

	case "xhtml":
		src, err := in.source()
		if err != nil {
			return err
		}
		if err := xhtmlview.RenderDocument(w, in.Page, src, xhtmlview.Options{
			Thresholds: &a.cfg.Confidence,
			State:      a.cfg.Display,
		}); err != nil {
			return err
		}

	default:
		return fmt.Errorf("unknown render format %q (want svg or xhtml)", opts.format)
	}

	return closeOut()
}

func dataURI(img []byte) string {
	return "data:" + http.DetectContentType(img) + ";base64," + base64.StdEncoding.EncodeToString(img)
}

func newSummaryCmd(a *app) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "summary <input>",
		Short: "Print a YAML summary of a page's overlay",
		Long: `Print the size, counts, confidence tiers and legend of a page's overlay as YAML.

Examples:
  ocrlens summary scan.xhtml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := a.loadInput(args[0])
			if err != nil {
				return err
			}
			w, closeOut, err := output(cmd, outputPath)
			if err != nil {
				return err
			}
			defer func() { _ = closeOut() }()

			sc := scene.Build(in.Page, scene.Options{Thresholds: &a.cfg.Confidence})
			if err := scene.WriteSummary(w, sc); err != nil {
				return err
			}
			return closeOut()
		},
	}
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default stdout)")
	return cmd
}
