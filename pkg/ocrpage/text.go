package ocrpage

import "strings"

// Text joins the line's word texts with a single space.
func (l Line) Text() string {
	parts := make([]string, len(l.Words))
	for i, w := range l.Words {
		parts[i] = w.Text
	}
	return strings.Join(parts, " ")
}

// LineText returns the text of line i. ok is false when i is out of range.
func (p *Page) LineText(i int) (text string, ok bool) {
	if i < 0 || i >= len(p.Lines) {
		return "", false
	}
	return p.Lines[i].Text(), true
}

// Text returns every line's text in document order separated by a single
// newline, with no trailing newline.
func (p *Page) Text() string {
	lines := make([]string, len(p.Lines))
	for i, l := range p.Lines {
		lines[i] = l.Text()
	}
	return strings.Join(lines, "\n")
}
