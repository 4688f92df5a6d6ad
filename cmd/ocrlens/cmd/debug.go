package cmd

import (
	"github.com/spf13/cobra"

	"github.com/gardar/ocrlens/pkg/scene"
)

func newDebugLineCmd(a *app) *cobra.Command {
	var line int

	cmd := &cobra.Command{
		Use:   "debug-line <input>",
		Short: "Print the overlay elements of one line",
		Long: `Print the word polygons, confidences and bounds of one line, as drawn in the
SVG overlay. The line defaults to render.debug_line from the configuration.

Examples:
  ocrlens debug-line scan.xhtml --line 0`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("line") {
				line = a.cfg.Render.DebugLine
			}
			if line < 0 {
				a.logger.Info("no line selected, set --line or render.debug_line")
				return nil
			}

			in, err := a.loadInput(args[0])
			if err != nil {
				return err
			}
			return scene.WriteLineDiagnostic(cmd.OutOrStdout(), in.Page, line, a.cfg.Confidence)
		},
	}
	cmd.Flags().IntVarP(&line, "line", "l", -1, "line index (0-based)")
	return cmd
}
