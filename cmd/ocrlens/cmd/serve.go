package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gardar/ocrlens/internal/server"
)

type serveOptions struct {
	host            string
	port            int
	corsOrigin      string
	image           string
	timeout         int
	shutdownTimeout int
}

func newServeCmd(a *app) *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve <input>",
		Short: "Start the interactive viewer for a page",
		Long: `Start an HTTP server with an interactive viewer for one OCR page.

The viewer shows the decorated markup next to the SVG overlay, with toggles
for each layer, per-line copy buttons and word details on click.

The server provides the following endpoints:
  GET  /                  - Viewer page
  GET  /scene.svg         - SVG overlay in the current display state
  GET  /text              - Page text
  GET  /text/lines/{n}    - Text of line n (1-based)
  GET  /state             - Display state
  POST /state/{flag}      - Set (?value=true|false) or toggle a display flag
  GET  /image             - Page image
  GET  /ws                - Viewer event channel
  GET  /health            - Health check endpoint
  GET  /metrics           - Prometheus metrics

Examples:
  ocrlens serve scan.xhtml --image scan.png
  ocrlens serve scan.hocr --host 0.0.0.0 --port 3000`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runServe(cmd, args[0], opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.host, "host", "H", "localhost", "server host")
	f.IntVarP(&opts.port, "port", "p", 8080, "server port")
	f.StringVar(&opts.corsOrigin, "cors-origin", "*", "CORS allowed origins")
	f.StringVar(&opts.image, "image", "", "page image to show behind the overlay")
	f.IntVar(&opts.timeout, "timeout", 30, "request timeout in seconds")
	f.IntVar(&opts.shutdownTimeout, "shutdown-timeout", 10, "shutdown timeout in seconds")
	return cmd
}

// serverSettings applies changed flags over the configuration.
func (a *app) serverSettings(cmd *cobra.Command, opts serveOptions) serveOptions {
	s := serveOptions{
		host:            a.cfg.Server.Host,
		port:            a.cfg.Server.Port,
		corsOrigin:      a.cfg.Server.CORSOrigin,
		image:           opts.image,
		timeout:         a.cfg.Server.TimeoutSec,
		shutdownTimeout: a.cfg.Server.ShutdownTimeout,
	}
	f := cmd.Flags()
	if f.Changed("host") {
		s.host = opts.host
	}
	if f.Changed("port") {
		s.port = opts.port
	}
	if f.Changed("cors-origin") {
		s.corsOrigin = opts.corsOrigin
	}
	if f.Changed("timeout") {
		s.timeout = opts.timeout
	}
	if f.Changed("shutdown-timeout") {
		s.shutdownTimeout = opts.shutdownTimeout
	}
	return s
}

// newViewer loads the input and builds the viewer server.
func (a *app) newViewer(path string, s serveOptions) (*server.Server, error) {
	in, err := a.loadInput(path)
	if err != nil {
		return nil, err
	}
	src, err := in.source()
	if err != nil {
		return nil, err
	}
	img, err := a.backgroundImage(s.image, in)
	if err != nil {
		return nil, err
	}

	doc, err := server.NewDocument(in.Page, src, img, a.cfg.Confidence)
	if err != nil {
		return nil, err
	}
	return server.NewServer(server.Config{
		Document:    doc,
		State:       a.cfg.Display,
		Interaction: a.cfg.InteractionOptions(),
		CORSOrigin:  s.corsOrigin,
		Logger:      a.logger,
	})
}

func (a *app) runServe(cmd *cobra.Command, path string, opts serveOptions) error {
	s := a.serverSettings(cmd, opts)
	if s.port < 1 || s.port > 65535 {
		return fmt.Errorf("invalid port number: %d (must be between 1 and 65535)", s.port)
	}

	viewer, err := a.newViewer(path, s)
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpServer := &http.Server{
		Addr:              net.JoinHostPort(s.host, strconv.Itoa(s.port)),
		Handler:           viewer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       time.Duration(s.timeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("Starting viewer", "address", httpServer.Addr, "input", path)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("Received shutdown signal")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	a.logger.Info("Starting graceful shutdown", "timeout", fmt.Sprintf("%ds", s.shutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(s.shutdownTimeout)*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("HTTP server shutdown error", "error", err)
		return err
	}
	a.logger.Info("Graceful shutdown completed")
	return nil
}
