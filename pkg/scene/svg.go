package scene

import (
	"bytes"
	"embed"
	"fmt"
	"html"
	"io"
	"text/template"

	"github.com/gardar/ocrlens/pkg/geometry"
)

//go:embed templates/scene.svg.tmpl
var templateFS embed.FS

// Visibility tells which layers are shown. Missing layers are hidden.
type Visibility map[LayerID]bool

// AllVisible shows every layer.
func AllVisible() Visibility {
	v := make(Visibility, len(Layers))
	for _, id := range Layers {
		v[id] = true
	}
	return v
}

// LayerClass is the class attribute of a layer group.
func LayerClass(visible bool) string {
	if visible {
		return "svg-layer"
	}
	return "svg-layer hidden"
}

// WriteSVG renders the scene as a standalone SVG document sized to the
// canvas, with hidden layers carrying the "hidden" class.
func WriteSVG(w io.Writer, sc *Scene, vis Visibility) error {
	tmpl, err := template.New("scene.svg.tmpl").Funcs(template.FuncMap{
		"esc":   html.EscapeString,
		"coord": geometry.FormatCoord,
		"fixed": geometry.FormatFixed1,
		"layerClass": func(id string) string {
			return LayerClass(vis[LayerID(id)])
		},
	}).ParseFS(templateFS, "templates/scene.svg.tmpl")
	if err != nil {
		return fmt.Errorf("error parsing scene template: %w", err)
	}

	if err := tmpl.Execute(w, sc); err != nil {
		return fmt.Errorf("error rendering scene template: %w", err)
	}
	return nil
}

// SVG renders the scene to a string.
func (s *Scene) SVG(vis Visibility) (string, error) {
	var buf bytes.Buffer
	if err := WriteSVG(&buf, s, vis); err != nil {
		return "", err
	}
	return buf.String(), nil
}
