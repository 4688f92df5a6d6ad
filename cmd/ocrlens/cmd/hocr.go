package cmd

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/gardar/ocrlens/pkg/hocr"
)

func newHOCRCmd(a *app) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "hocr <input>",
		Short: "Convert a page to hOCR",
		Long: `Convert an OCR page to an hOCR document. Word polygons are written as their
bounding boxes and confidences as x_wconf percentages.

Examples:
  ocrlens hocr scan.xhtml -o scan.hocr
  ocrlens hocr response.json --page-index 1 > page2.hocr`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := a.loadInput(args[0])
			if err != nil {
				return err
			}
			out, err := hocr.Generate(in.Page)
			if err != nil {
				return err
			}

			w, closeOut, err := output(cmd, outputPath)
			if err != nil {
				return err
			}
			defer func() { _ = closeOut() }()
			if _, err := io.WriteString(w, out); err != nil {
				return err
			}
			return closeOut()
		},
	}
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default stdout)")
	return cmd
}
