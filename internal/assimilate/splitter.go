package assimilate

import (
	"iter"
	"strings"
)

// Section is a titled, contiguous span of a brain dump. Order is the 0-based
// emission position.
type Section struct {
	Title string
	Body  string
	Order int
}

// Split breaks raw into sections on markdown header lines. The returned
// sequence is lazy and single-use: ranging over it a second time yields
// nothing.
func Split(raw string) iter.Seq[Section] {
	rest := raw
	consumed := false

	return func(yield func(Section) bool) {
		if consumed {
			return
		}
		consumed = true

		var (
			title     string
			body      []string
			inHeader  bool
			sawHeader bool
			fence     string
			order     int
			// unclosed records markers already known to have no closing
			// line in the rest of the input.
			unclosed = map[string]bool{}
		)

		emit := func() bool {
			text := trimBlankLines(body)
			if !inHeader && text == "" && sawHeader {
				return true
			}
			s := Section{Title: title, Body: text, Order: order}
			order++
			return yield(s)
		}

		for len(rest) > 0 {
			var line string
			line, rest, _ = strings.Cut(rest, "\n")
			line = strings.TrimSuffix(line, "\r")

			if marker := fenceMarker(line); marker != "" {
				switch {
				case fence == "":
					// An opening fence with no closing line is plain text,
					// so headers after it still split.
					if unclosed[marker] {
						break
					}
					if hasClosingFence(rest, marker) {
						fence = marker
					} else {
						unclosed[marker] = true
					}
				case isClosingFence(line, fence):
					fence = ""
				}
			}

			if fence == "" {
				if heading, ok := parseHeader(line); ok {
					sawHeader = true
					if !emit() {
						rest = ""
						return
					}
					title = heading
					body = body[:0]
					inHeader = true
					continue
				}
			}
			body = append(body, line)
		}

		if !emit() {
			return
		}
		rest = ""
	}
}

// Collect drains a section sequence into a slice.
func Collect(seq iter.Seq[Section]) []Section {
	var out []Section
	for s := range seq {
		out = append(out, s)
	}
	return out
}

// parseHeader reports whether line is a header: one or more '#' followed by
// whitespace and non-empty text.
func parseHeader(line string) (string, bool) {
	i := 0
	for i < len(line) && line[i] == '#' {
		i++
	}
	if i == 0 || i == len(line) {
		return "", false
	}
	if line[i] != ' ' && line[i] != '\t' {
		return "", false
	}
	text := strings.TrimSpace(line[i:])
	if text == "" {
		return "", false
	}
	return text, true
}

func fenceMarker(line string) string {
	trimmed := strings.TrimSpace(line)
	switch {
	case strings.HasPrefix(trimmed, "```"):
		return "```"
	case strings.HasPrefix(trimmed, "~~~"):
		return "~~~"
	}
	return ""
}

// isClosingFence reports whether line closes a block opened with marker: the
// marker run alone, without an info string.
func isClosingFence(line, marker string) bool {
	trimmed := strings.TrimSpace(line)
	return strings.HasPrefix(trimmed, marker) && strings.Trim(trimmed, marker[:1]) == ""
}

func hasClosingFence(rest, marker string) bool {
	for rest != "" {
		var line string
		line, rest, _ = strings.Cut(rest, "\n")
		if isClosingFence(strings.TrimSuffix(line, "\r"), marker) {
			return true
		}
	}
	return false
}

func trimBlankLines(lines []string) string {
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return strings.Join(lines[start:end], "\n")
}
