package server

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gardar/ocrlens/pkg/confidence"
	"github.com/gardar/ocrlens/pkg/display"
	"github.com/gardar/ocrlens/pkg/scene"
	"github.com/gardar/ocrlens/pkg/xhtmlview"
)

//go:embed templates/*
var templateFS embed.FS

var viewerTemplate = template.Must(template.ParseFS(templateFS, "templates/viewer.html.tmpl"))

var viewerScript = func() template.JS {
	b, err := templateFS.ReadFile("templates/viewer.js")
	if err != nil {
		panic(err)
	}
	return template.JS(b)
}()

type viewerControl struct {
	ID      string
	Flag    string
	Label   string
	Checked bool
}

type viewerData struct {
	Title    string
	Controls []viewerControl
	Legend   []confidence.LegendEntry
	Stats    scene.Stats
	Markup   template.HTML
	SVG      template.HTML
	Hidden   map[string]bool
	Script   template.JS
}

// indexHandler serves the viewer page.
func (s *Server) indexHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	state := s.State()
	sc := s.doc.Scene

	markup, err := xhtmlview.RenderPageString(s.doc.Page, s.doc.Source, xhtmlview.Options{
		Thresholds: &sc.Thresholds,
		State:      state,
	})
	if err != nil {
		s.logger.Error("failed to render page markup", "error", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	svg, err := sc.SVG(state.Visibility())
	if err != nil {
		s.logger.Error("failed to render scene", "error", err)
		http.Error(w, "failed to render scene", http.StatusInternalServerError)
		return
	}

	data := viewerData{
		Title:  s.title(),
		Legend: sc.Thresholds.Legend(),
		Stats:  scene.PageStats(s.doc.Page.Metadata),
		// both come from our own renderers
		Markup: template.HTML(markup),
		SVG:    template.HTML(svg),
		Hidden: make(map[string]bool),
		Script: viewerScript,
	}
	for _, f := range display.Flags {
		data.Controls = append(data.Controls, viewerControl{
			ID:      "toggle-" + f.ControlID(),
			Flag:    f.ControlID(),
			Label:   f.Label(),
			Checked: state.Get(f),
		})
	}
	for _, d := range state.Directives() {
		if !d.Visible {
			data.Hidden[string(d.Target)] = true
		}
	}

	var buf bytes.Buffer
	if err := viewerTemplate.Execute(&buf, data); err != nil {
		s.logger.Error("failed to execute viewer template", "error", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) title() string {
	if name := s.doc.Page.Metadata.Filename; name != "" {
		return name + " - ocrlens"
	}
	return "ocrlens"
}

// sceneHandler serves the vector view in the shared display state.
func (s *Server) sceneHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	svg, err := s.doc.Scene.SVG(s.State().Visibility())
	if err != nil {
		s.logger.Error("failed to render scene", "error", err)
		http.Error(w, "failed to render scene", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write([]byte(svg))
}

// textHandler serves the page text, one line per row.
func (s *Server) textHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(s.doc.Page.Text()))
}

// lineTextHandler serves the text of one line, numbered from 1.
func (s *Server) lineTextHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	n, err := strconv.Atoi(r.PathValue("n"))
	if err != nil {
		s.writeErrorResponse(w, "line number must be an integer", http.StatusBadRequest)
		return
	}
	text, ok := s.doc.Page.LineText(n - 1)
	if !ok {
		s.writeErrorResponse(w, fmt.Sprintf("line %d not found", n), http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(text))
}

// stateHandler returns the shared display state with its directives.
func (s *Server) stateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	state := s.State()
	s.writeJSON(w, StateResponse{State: state, Directives: state.Directives()})
}

// setStateHandler writes one flag of the shared state. Without a value the
// flag is toggled. The response carries only the directives of the change.
func (s *Server) setStateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	flag, err := display.ParseFlag(r.PathValue("flag"))
	if err != nil {
		s.writeErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	raw := strings.TrimSpace(r.URL.Query().Get("value"))
	s.mu.Lock()
	var ds []display.Directive
	if raw == "" {
		ds = s.machine.Toggle(flag)
	} else {
		v, perr := strconv.ParseBool(raw)
		if perr != nil {
			s.mu.Unlock()
			s.writeErrorResponse(w, "value must be true or false", http.StatusBadRequest)
			return
		}
		ds = s.machine.Set(flag, v)
	}
	state := s.machine.State()
	s.mu.Unlock()

	if ds != nil {
		displayTogglesTotal.WithLabelValues(flag.ControlID(), "http").Inc()
		s.logger.Debug("display flag changed", "flag", flag.ControlID(), "value", state.Get(flag))
	}
	if ds == nil {
		ds = []display.Directive{}
	}
	s.writeJSON(w, StateResponse{State: state, Directives: ds})
}

// imageHandler serves the background image.
func (s *Server) imageHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if len(s.doc.Image) == 0 {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", s.doc.ImageType)
	_, _ = w.Write(s.doc.Image)
}

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.writeJSON(w, HealthResponse{
		Status: "healthy",
		Time:   time.Now().UTC().Format(time.RFC3339),
		Lines:  len(s.doc.Page.Lines),
		Words:  s.doc.Page.WordCount(),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

// writeErrorResponse writes a JSON error body.
func (s *Server) writeErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		s.logger.Error("failed to encode error response", "error", err)
	}
}
