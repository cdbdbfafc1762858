package textutil

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
)

// Ellipsis terminates truncated cells.
const Ellipsis = "…"

// Truncate shortens s so its display width does not exceed width columns.
// East Asian wide characters count as two columns.
func Truncate(s string, width int) string {
	s = strings.TrimSpace(s)
	if width <= 0 || text.StringWidthWithoutEscSequences(s) <= width {
		return s
	}
	limit := width - 1
	var b strings.Builder
	used := 0
	for _, r := range s {
		w := text.RuneWidth(r)
		if used+w > limit {
			break
		}
		b.WriteRune(r)
		used += w
	}
	return b.String() + Ellipsis
}

// SingleLine collapses line breaks so s fits in one table cell or list item.
func SingleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
