// Package cmd implements the ocrlens command line.
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gardar/ocrlens/internal/config"
)

// app carries the state shared by the commands of one invocation.
type app struct {
	v       *viper.Viper
	cfgFile string
	format  string
	pageIdx int

	cfg    *config.Config
	loader *config.Loader
	logger *slog.Logger
}

// Execute runs the ocrlens command line with the process arguments.
func Execute() error {
	return NewRootCommand().Execute()
}

// NewRootCommand builds the command tree with its own configuration state.
func NewRootCommand() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "ocrlens",
		Short: "Inspect OCR results and their confidence",
		Long: `ocrlens renders OCR results as a confidence overlay.

Words are outlined in green, orange or red by recognition confidence, with the
recognized text laid over the page image. Pages can be rendered as SVG or
decorated markup, exported as layered PDFs, converted to hOCR, or browsed in
an interactive viewer.

Examples:
  ocrlens render scan.xhtml -o scan.svg
  ocrlens text scan.hocr --line 3
  ocrlens pdf response.json -o scan.pdf
  ocrlens serve scan.xhtml --image scan.png`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd.ErrOrStderr())
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default is search in ., $XDG_CONFIG_HOME/ocrlens, /etc/ocrlens)")
	pf.BoolP("verbose", "v", false, "verbose output (equivalent to --log-level=debug)")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.StringVarP(&a.format, "input-format", "f", formatAuto, "input format: auto, xhtml, hocr or docai")
	pf.IntVar(&a.pageIdx, "page-index", 0, "page to read, 0-based (XHTML matches pageNum=index+1 before position)")

	_ = a.v.BindPFlag("verbose", pf.Lookup("verbose"))
	_ = a.v.BindPFlag("log_level", pf.Lookup("log-level"))

	rootCmd.AddCommand(
		newRenderCmd(a),
		newTextCmd(a),
		newHOCRCmd(a),
		newImageCmd(a),
		newPDFCmd(a),
		newDebugLineCmd(a),
		newSummaryCmd(a),
		newServeCmd(a),
		newConfigCmd(a),
	)
	return rootCmd
}

// init loads the configuration and installs the logger.
func (a *app) init(logOut io.Writer) error {
	a.loader = config.NewLoaderWith(a.v)
	cfg, err := a.loader.Load(a.cfgFile)
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}
	a.cfg = cfg

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	} else if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	// stdout carries command output
	if logOut == nil {
		logOut = os.Stderr
	}
	a.logger = slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(a.logger)

	if used := a.loader.ConfigFileUsed(); used != "" {
		a.logger.Debug("loaded configuration", "file", used)
	}
	return nil
}
