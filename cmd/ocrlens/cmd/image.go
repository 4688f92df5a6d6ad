package cmd

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gardar/ocrlens/pkg/gdocai"
)

func newImageCmd(a *app) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "image <response.json>",
		Short: "Save the page image embedded in a Document AI response",
		Long: `Save the page image Document AI returns with a response, for use as the
overlay background. Without --output the image is written next to the input,
named after it, with an extension from the image's MIME type.

Examples:
  ocrlens image response.json
  ocrlens image response.json --page-index 2 -o page3.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}
			doc, err := gdocai.Decode(data)
			if err != nil {
				return fmt.Errorf("failed to parse %s: %w", args[0], err)
			}
			img, mimeType, err := gdocai.PageImage(doc, a.pageIdx)
			if err != nil {
				return err
			}

			target := outputPath
			if target == "" {
				target = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + imageExt(mimeType)
			}
			if err := os.WriteFile(target, img, 0o644); err != nil {
				return fmt.Errorf("failed to write image: %w", err)
			}
			a.logger.Info("wrote page image", "path", target, "mime_type", mimeType, "bytes", len(img))
			return nil
		},
	}
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output image path")
	return cmd
}

func imageExt(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	}
	if exts, err := mime.ExtensionsByType(mimeType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ".img"
}
