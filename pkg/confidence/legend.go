package confidence

import (
	"fmt"
	"math"
)

// LegendEntry is one row of the confidence legend.
type LegendEntry struct {
	Tier  Tier   `yaml:"tier"`
	Label string `yaml:"label"`
	Class string `yaml:"class"`
}

// Legend returns the three legend rows, highest tier first. The labels follow
// the thresholds, so the default thresholds read "High (≥80%)",
// "Medium (50-79%)" and "Low (<50%)".
func (t Thresholds) Legend() []LegendEntry {
	high := wholePercent(t.High)
	medium := wholePercent(t.Medium)

	return []LegendEntry{
		{Tier: High, Label: fmt.Sprintf("High (≥%d%%)", high), Class: High.SVGClass()},
		{Tier: Medium, Label: fmt.Sprintf("Medium (%d-%d%%)", medium, high-1), Class: Medium.SVGClass()},
		{Tier: Low, Label: fmt.Sprintf("Low (<%d%%)", medium), Class: Low.SVGClass()},
	}
}

func wholePercent(v float64) int {
	return int(math.Round(v * 100))
}
