package prompt

import (
	"strings"
)

// Section is one delimited block recovered from payload text.
type Section struct {
	Name  string
	Attrs map[string]string
	Body  string
}

// Sections splits payload text back into its blocks in order. Text outside
// blocks is ignored.
func Sections(text string) []Section {
	var (
		out     []Section
		current *Section
		body    strings.Builder
	)
	for _, line := range strings.SplitAfter(text, "\n") {
		trimmed := strings.TrimRight(line, "\n")
		switch {
		case current == nil && strings.HasPrefix(trimmed, "<<<") && strings.HasSuffix(trimmed, ">>>") && trimmed != EndDelimiter:
			current = parseOpen(trimmed)
			body.Reset()
		case current != nil && trimmed == EndDelimiter:
			current.Body = body.String()
			out = append(out, *current)
			current = nil
		case current != nil:
			body.WriteString(line)
		}
	}
	return out
}

// Find returns the first section with name.
func Find(sections []Section, name string) (Section, bool) {
	for _, s := range sections {
		if s.Name == name {
			return s, true
		}
	}
	return Section{}, false
}

func parseOpen(line string) *Section {
	inner := strings.TrimSuffix(strings.TrimPrefix(line, "<<<"), ">>>")
	fields := strings.Fields(inner)
	s := &Section{Attrs: map[string]string{}}
	if len(fields) == 0 {
		return s
	}
	s.Name = fields[0]
	for _, f := range fields[1:] {
		if k, v, ok := strings.Cut(f, "="); ok {
			s.Attrs[k] = v
		}
	}
	return s
}
