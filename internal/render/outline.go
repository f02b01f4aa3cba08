package render

import (
	"strings"

	"git.home.luguber.info/inful/notionblog/internal/blocks"
)

// OutlineEntry is one heading of the document outline.
type OutlineEntry struct {
	ID     string
	Level  int
	Text   string
	Anchor string
}

// Outline collects the headings among the top-level nodes in document order.
// Headings nested in other blocks are not collected.
func Outline(nodes []Node) []OutlineEntry {
	var out []OutlineEntry
	for _, n := range nodes {
		h, ok := n.(blocks.Heading)
		if !ok {
			continue
		}
		out = append(out, OutlineEntry{
			ID:     h.ID(),
			Level:  h.Level,
			Text:   blocks.Plain(h.RichText),
			Anchor: Anchor(h.ID()),
		})
	}
	return out
}

// Anchor is the fragment identifier of a heading block.
func Anchor(blockID string) string {
	return "h-" + strings.ReplaceAll(blockID, "-", "")
}

// Numbered list marker styles, selected by nesting level modulo three with the
// outermost list at level 1.
var markerStyles = [3]string{"i", "1", "a"}

// MarkerStyle returns the ordered-list type attribute for a nesting level.
func MarkerStyle(level int) string {
	if level < 1 {
		level = 1
	}
	return markerStyles[level%3]
}
