// Package server hosts the interactive viewer of one OCR page.
//
// The HTTP side serves the viewer page, the rendered scene, page text and
// the shared display state. Each websocket connection gets its own display
// state machine and interaction controller; the browser reports pointer and
// control events and the server answers with visibility directives, line
// controls, popups and clipboard requests.
package server

import (
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gardar/ocrlens/pkg/confidence"
	"github.com/gardar/ocrlens/pkg/display"
	"github.com/gardar/ocrlens/pkg/interaction"
	"github.com/gardar/ocrlens/pkg/ocrpage"
	"github.com/gardar/ocrlens/pkg/scene"
)

// imagePath is where the background image is served; the scene references it.
const imagePath = "image"

// Document is the page a server shows.
type Document struct {
	Page   *ocrpage.Page
	Source *ocrpage.Source
	Scene  *scene.Scene
	// Image is the background image, served at /image.
	Image     []byte
	ImageType string
}

// NewDocument prepares a page for viewing. Pages without source markup (hOCR
// or Document AI input) are written out as markup and parsed back, so the
// structured view can decorate them like any other page.
func NewDocument(page *ocrpage.Page, src *ocrpage.Source, image []byte, th confidence.Thresholds) (*Document, error) {
	if page == nil {
		return nil, ocrpage.ErrNoPage
	}

	if src == nil {
		s, err := ocrpage.SourceOf(page)
		if err != nil {
			return nil, err
		}
		src = s
	}

	opts := scene.Options{Thresholds: &th}
	doc := &Document{Page: page, Source: src}
	if len(image) > 0 {
		opts.BackgroundHref = imagePath
		doc.Image = image
		doc.ImageType = http.DetectContentType(image)
	} else {
		// a relative href would not resolve against the viewer
		page = withoutBackground(page)
		doc.Page = page
	}
	doc.Scene = scene.Build(page, opts)

	return doc, nil
}

func withoutBackground(page *ocrpage.Page) *ocrpage.Page {
	if page.BackgroundImage == "" {
		return page
	}
	cp := *page
	cp.BackgroundImage = ""
	return &cp
}

// Config holds server configuration.
type Config struct {
	Document    *Document
	State       display.State
	Interaction interaction.Options
	CORSOrigin  string
	Logger      *slog.Logger
}

// Server holds the HTTP server state and dependencies.
type Server struct {
	doc         *Document
	interaction interaction.Options
	corsOrigin  string
	logger      *slog.Logger

	// mu guards machine, the state shared by the HTTP views and new sessions.
	mu      sync.Mutex
	machine *display.Machine
}

// ErrNoDocument is returned by NewServer without a document.
var ErrNoDocument = errors.New("server needs a document")

// NewServer creates a viewer server instance.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Document == nil || cfg.Document.Scene == nil {
		return nil, ErrNoDocument
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	origin := cfg.CORSOrigin
	if origin == "" {
		origin = "*"
	}

	return &Server{
		doc:         cfg.Document,
		interaction: cfg.Interaction,
		corsOrigin:  origin,
		logger:      logger,
		machine:     display.NewMachine(cfg.State),
	}, nil
}

// State returns the shared display state.
func (s *Server) State() display.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.State()
}

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/{$}", s.corsMiddleware(s.indexHandler))
	mux.HandleFunc("/scene.svg", s.corsMiddleware(s.sceneHandler))
	mux.HandleFunc("/text", s.corsMiddleware(s.textHandler))
	mux.HandleFunc("/text/lines/{n}", s.corsMiddleware(s.lineTextHandler))
	mux.HandleFunc("/state", s.corsMiddleware(s.stateHandler))
	mux.HandleFunc("/state/{flag}", s.corsMiddleware(s.setStateHandler))
	mux.HandleFunc("/"+imagePath, s.corsMiddleware(s.imageHandler))
	mux.HandleFunc("/ws", s.viewerWebSocketHandler)
	mux.HandleFunc("/health", s.corsMiddleware(s.healthHandler))
	mux.Handle("/metrics", promhttp.Handler())
}

// Handler returns a mux with all routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.SetupRoutes(mux)
	return mux
}

// HealthResponse is the body of /health.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
	Lines  int    `json:"lines"`
	Words  int    `json:"words"`
}

// StateResponse is the body of the state endpoints.
type StateResponse struct {
	State      display.State       `json:"state"`
	Directives []display.Directive `json:"directives"`
}
