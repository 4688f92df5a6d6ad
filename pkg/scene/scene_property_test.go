package scene

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/gardar/ocrlens/pkg/geometry"
	"github.com/gardar/ocrlens/pkg/ocrpage"
)

func gridPage(lines, words int) *ocrpage.Page {
	page := ocrpage.Empty()
	for l := 0; l < lines; l++ {
		line := ocrpage.Line{ID: l}
		for w := 0; w < words; w++ {
			p := geometry.FromRect(float64(w*10), float64(l*10), float64(w*10+8), float64(l*10+8))
			line.Words = append(line.Words, ocrpage.Word{Text: "x", Index: w, Box: &p})
		}
		page.Lines = append(page.Lines, line)
	}
	return page
}

// TestBuild_WordIdentity verifies ids are unique and resolve to their own position.
func TestBuild_WordIdentity(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("word ids are unique and positional", prop.ForAll(
		func(lines, words int) bool {
			sc := Build(gridPage(lines, words), Options{})
			if len(sc.WordBoxes) != lines*words {
				return false
			}
			seen := make(map[string]bool, len(sc.WordBoxes))
			for i, shape := range sc.WordBoxes {
				if seen[shape.ID] {
					return false
				}
				seen[shape.ID] = true

				l, w, err := ParseWordID(shape.ID)
				if err != nil || l != shape.Line || w != shape.Word {
					return false
				}
				if l != i/words || w != i%words {
					return false
				}
				if sc.Labels[i].ID != shape.ID {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 12),
		gen.IntRange(1, 12),
	))

	properties.TestingRun(t)
}
