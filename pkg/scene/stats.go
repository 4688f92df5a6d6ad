package scene

import (
	"fmt"
	"strconv"

	"github.com/gardar/ocrlens/pkg/confidence"
	"github.com/gardar/ocrlens/pkg/geometry"
	"github.com/gardar/ocrlens/pkg/ocrpage"
)

// Stats is the text of the stats panel.
type Stats struct {
	Counts     string
	Confidence string
	Angle      string
}

// PageStats formats the page statistics shown next to the legend. Counts
// come from the metadata, as the source reports them.
func PageStats(md ocrpage.Metadata) Stats {
	return Stats{
		Counts:     fmt.Sprintf("%d lines, %d words", md.TotalLines, md.TotalWords),
		Confidence: "Avg confidence: " + confidence.FormatPercent(md.AverageConfidence) + "%",
		Angle:      "Page angle: " + strconv.FormatFloat(geometry.Round1(md.Angle), 'f', 1, 64) + "°",
	}
}
