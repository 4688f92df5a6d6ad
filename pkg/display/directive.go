package display

import "github.com/gardar/ocrlens/pkg/scene"

// Target is something a directive shows or hides.
type Target string

// Vector view targets share their ids with the scene layers.
const (
	TargetSVGBackground Target = Target(scene.LayerBackground)
	TargetSVGLineBoxes  Target = Target(scene.LayerLineBoxes)
	TargetSVGWordBoxes  Target = Target(scene.LayerWordBoxes)
	TargetSVGText       Target = Target(scene.LayerText)

	TargetXHTMLLineBoxes Target = "xhtml-line-boxes"
	TargetXHTMLText      Target = "xhtml-text"
	TargetHoverControls  Target = "hover-controls"
	TargetSVGSection     Target = "svg-section"
)

// Directive tells the rendering surface to show or hide one target.
type Directive struct {
	Target  Target `json:"target"`
	Visible bool   `json:"visible"`
}

var targets = map[Flag][]Target{
	ShowLineBoxes:       {TargetXHTMLLineBoxes, TargetSVGLineBoxes},
	ShowWordBoxes:       {TargetSVGWordBoxes},
	ShowXHTMLText:       {TargetXHTMLText},
	ShowSVGText:         {TargetSVGText},
	EnableHoverControls: {TargetHoverControls},
	ShowSVGSection:      {TargetSVGSection},
	ShowSVGBackground:   {TargetSVGBackground},
}

// Targets lists what f controls.
func (f Flag) Targets() []Target {
	return append([]Target(nil), targets[f]...)
}

// Project maps a flag value onto directives for the flag's targets.
func Project(f Flag, v bool) []Directive {
	ts := targets[f]
	out := make([]Directive, len(ts))
	for i, t := range ts {
		out[i] = Directive{Target: t, Visible: v}
	}
	return out
}

// Directives projects every flag of s, in flag order. A surface applies them
// once to establish the initial presentation.
func (s State) Directives() []Directive {
	var out []Directive
	for _, f := range Flags {
		out = append(out, Project(f, s.Get(f))...)
	}
	return out
}

// IsVisible reports whether t is shown under s.
func (s State) IsVisible(t Target) bool {
	for f, ts := range targets {
		for _, candidate := range ts {
			if candidate == t {
				return s.Get(f)
			}
		}
	}
	return false
}
