// Package display holds the viewer's visibility flags and projects them onto
// render directives.
//
// There are seven independent flags. Each flag maps to the targets it
// controls and nothing else, so a change to one flag only ever yields
// directives for its own targets, and writing a flag's current value yields
// none.
package display

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gardar/ocrlens/pkg/scene"
)

// Flag is one visibility toggle.
type Flag int

const (
	ShowLineBoxes Flag = iota
	ShowWordBoxes
	ShowXHTMLText
	ShowSVGText
	EnableHoverControls
	ShowSVGSection
	ShowSVGBackground
)

// Flags lists every flag in control panel order.
var Flags = []Flag{
	ShowLineBoxes,
	ShowWordBoxes,
	ShowXHTMLText,
	ShowSVGText,
	EnableHoverControls,
	ShowSVGSection,
	ShowSVGBackground,
}

// ErrUnknownFlag is returned by ParseFlag.
var ErrUnknownFlag = errors.New("unknown display flag")

var controlIDs = map[Flag]string{
	ShowLineBoxes:       "line-boxes",
	ShowWordBoxes:       "word-boxes",
	ShowXHTMLText:       "xhtml-text",
	ShowSVGText:         "svg-text",
	EnableHoverControls: "hover-controls",
	ShowSVGSection:      "svg-section",
	ShowSVGBackground:   "svg-background",
}

var labels = map[Flag]string{
	ShowLineBoxes:       "Show line boxes",
	ShowWordBoxes:       "Show word boxes",
	ShowXHTMLText:       "Show XHTML text",
	ShowSVGText:         "Show SVG text",
	EnableHoverControls: "Enable hover controls",
	ShowSVGSection:      "Show SVG section",
	ShowSVGBackground:   "Show SVG background",
}

// ControlID is the toggle's id in the control panel.
func (f Flag) ControlID() string {
	if id, ok := controlIDs[f]; ok {
		return id
	}
	return fmt.Sprintf("flag-%d", int(f))
}

// Label is the toggle's caption.
func (f Flag) Label() string { return labels[f] }

func (f Flag) String() string { return f.ControlID() }

// ParseFlag resolves a control id, with or without the "toggle-" prefix.
func ParseFlag(s string) (Flag, error) {
	id := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "toggle-")
	for _, f := range Flags {
		if controlIDs[f] == id {
			return f, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFlag, s)
}

// State is the full set of flag values.
type State struct {
	ShowLineBoxes       bool `mapstructure:"show_line_boxes" yaml:"show_line_boxes" json:"showLineBoxes"`
	ShowWordBoxes       bool `mapstructure:"show_word_boxes" yaml:"show_word_boxes" json:"showWordBoxes"`
	ShowXHTMLText       bool `mapstructure:"show_xhtml_text" yaml:"show_xhtml_text" json:"showXHTMLText"`
	ShowSVGText         bool `mapstructure:"show_svg_text" yaml:"show_svg_text" json:"showSVGText"`
	EnableHoverControls bool `mapstructure:"enable_hover_controls" yaml:"enable_hover_controls" json:"enableHoverControls"`
	ShowSVGSection      bool `mapstructure:"show_svg_section" yaml:"show_svg_section" json:"showSVGSection"`
	ShowSVGBackground   bool `mapstructure:"show_svg_background" yaml:"show_svg_background" json:"showSVGBackground"`
}

// DefaultState shows word boxes, markup text, hover controls, the SVG
// section and its background; line boxes and SVG text start hidden.
func DefaultState() State {
	return State{
		ShowWordBoxes:       true,
		ShowXHTMLText:       true,
		EnableHoverControls: true,
		ShowSVGSection:      true,
		ShowSVGBackground:   true,
	}
}

// Get returns the value of f.
func (s State) Get(f Flag) bool {
	switch f {
	case ShowLineBoxes:
		return s.ShowLineBoxes
	case ShowWordBoxes:
		return s.ShowWordBoxes
	case ShowXHTMLText:
		return s.ShowXHTMLText
	case ShowSVGText:
		return s.ShowSVGText
	case EnableHoverControls:
		return s.EnableHoverControls
	case ShowSVGSection:
		return s.ShowSVGSection
	case ShowSVGBackground:
		return s.ShowSVGBackground
	default:
		return false
	}
}

// With returns a copy of s with f set to v.
func (s State) With(f Flag, v bool) State {
	switch f {
	case ShowLineBoxes:
		s.ShowLineBoxes = v
	case ShowWordBoxes:
		s.ShowWordBoxes = v
	case ShowXHTMLText:
		s.ShowXHTMLText = v
	case ShowSVGText:
		s.ShowSVGText = v
	case EnableHoverControls:
		s.EnableHoverControls = v
	case ShowSVGSection:
		s.ShowSVGSection = v
	case ShowSVGBackground:
		s.ShowSVGBackground = v
	}
	return s
}

// Visibility is the scene layer visibility implied by s.
func (s State) Visibility() scene.Visibility {
	return scene.Visibility{
		scene.LayerBackground: s.ShowSVGBackground,
		scene.LayerLineBoxes:  s.ShowLineBoxes,
		scene.LayerWordBoxes:  s.ShowWordBoxes,
		scene.LayerText:       s.ShowSVGText,
	}
}
