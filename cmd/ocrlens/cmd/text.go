package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTextCmd(a *app) *cobra.Command {
	var line int

	cmd := &cobra.Command{
		Use:   "text <input>",
		Short: "Print the recognized text of a page",
		Long: `Print the recognized text of a page, one line per row, or a single line.

Examples:
  ocrlens text scan.xhtml
  ocrlens text scan.hocr --line 3`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := a.loadInput(args[0])
			if err != nil {
				return err
			}

			text := in.Page.Text()
			if cmd.Flags().Changed("line") {
				var ok bool
				text, ok = in.Page.LineText(line - 1)
				if !ok {
					return fmt.Errorf("line %d out of range, page has %d lines", line, len(in.Page.Lines))
				}
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
			return err
		},
	}
	cmd.Flags().IntVarP(&line, "line", "l", 0, "print only this line (1-based)")
	return cmd
}
