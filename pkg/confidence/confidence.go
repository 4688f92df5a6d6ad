// Package confidence maps word recognition confidence to one of three tiers.
//
// Both the structured markup view and the vector overlay style words through
// the same Thresholds value so the two views never disagree on a word's tier.
package confidence

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// Tier is a confidence classification.
type Tier int

const (
	Low Tier = iota
	Medium
	High
)

// Thresholds are the lower bounds (inclusive) of the High and Medium tiers.
type Thresholds struct {
	High   float64 `mapstructure:"high" yaml:"high"`
	Medium float64 `mapstructure:"medium" yaml:"medium"`
}

// DefaultThresholds is the reference tiering: High >= 0.8, Medium >= 0.5.
var DefaultThresholds = Thresholds{High: 0.8, Medium: 0.5}

// Validate checks 0 <= Medium <= High <= 1.
func (t Thresholds) Validate() error {
	if math.IsNaN(t.High) || math.IsNaN(t.Medium) {
		return errors.New("confidence thresholds must be numbers")
	}
	if t.Medium < 0 || t.High > 1 {
		return fmt.Errorf("confidence thresholds must be within [0,1], got medium=%v high=%v", t.Medium, t.High)
	}
	if t.Medium > t.High {
		return fmt.Errorf("medium threshold %v exceeds high threshold %v", t.Medium, t.High)
	}
	return nil
}

// Classify returns the tier for c. NaN classifies as Low.
func (t Thresholds) Classify(c float64) Tier {
	switch {
	case c >= t.High:
		return High
	case c >= t.Medium:
		return Medium
	default:
		return Low
	}
}

// Resolve returns *t, or DefaultThresholds when t is nil.
func Resolve(t *Thresholds) Thresholds {
	if t == nil {
		return DefaultThresholds
	}
	return *t
}

// Classify classifies c with DefaultThresholds.
func Classify(c float64) Tier {
	return DefaultThresholds.Classify(c)
}

func (t Tier) String() string {
	switch t {
	case High:
		return "high"
	case Medium:
		return "medium"
	case Low:
		return "low"
	default:
		return "Tier(" + strconv.Itoa(int(t)) + ")"
	}
}

// HTMLClass is the class applied to a word element in the structured view.
func (t Tier) HTMLClass() string {
	switch t {
	case High:
		return "confidence-high"
	case Medium:
		return "confidence-med"
	default:
		return "confidence-low"
	}
}

// SVGClass is the class applied to a word box in the vector overlay.
func (t Tier) SVGClass() string {
	switch t {
	case High:
		return "word-box-high"
	case Medium:
		return "word-box-med"
	default:
		return "word-box-low"
	}
}

// Percent converts a [0,1] confidence to a percentage rounded to one decimal.
func Percent(c float64) float64 {
	return math.Round(c*1000) / 10
}

// FormatPercent renders Percent(c) with exactly one decimal, e.g. "87.5".
func FormatPercent(c float64) string {
	return strconv.FormatFloat(Percent(c), 'f', 1, 64)
}
