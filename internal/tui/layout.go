package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

const ellipsis = "…"

type word struct {
	s     string
	width int
}

func splitWords(text string) []word {
	fields := strings.Fields(text)
	out := make([]word, 0, len(fields))
	for _, f := range fields {
		out = append(out, word{s: f, width: runewidth.StringWidth(f)})
	}
	return out
}

// wrapText breaks text into lines no wider than width cells. Words wider than
// width are split by cell.
func wrapText(text string, width int) []string {
	words := splitWords(text)
	if len(words) == 0 {
		return nil
	}
	if width <= 0 {
		return []string{strings.Join(strings.Fields(text), " ")}
	}
	var lines []string
	var line strings.Builder
	lineWidth := 0
	flush := func() {
		lines = append(lines, line.String())
		line.Reset()
		lineWidth = 0
	}
	for _, w := range words {
		if lineWidth > 0 && lineWidth+1+w.width > width {
			flush()
		}
		if w.width > width {
			for _, part := range hardBreak(w.s, width) {
				if lineWidth > 0 {
					flush()
				}
				line.WriteString(part)
				lineWidth = runewidth.StringWidth(part)
			}
			continue
		}
		if lineWidth > 0 {
			line.WriteByte(' ')
			lineWidth++
		}
		line.WriteString(w.s)
		lineWidth += w.width
	}
	if lineWidth > 0 {
		flush()
	}
	return lines
}

func hardBreak(s string, width int) []string {
	var parts []string
	var cur strings.Builder
	curWidth := 0
	for _, r := range s {
		rw := runewidth.RuneWidth(r)
		if curWidth+rw > width && curWidth > 0 {
			parts = append(parts, cur.String())
			cur.Reset()
			curWidth = 0
		}
		cur.WriteRune(r)
		curWidth += rw
	}
	if curWidth > 0 {
		parts = append(parts, cur.String())
	}
	return parts
}

// truncate shortens s to width cells, marking the cut with an ellipsis.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, ellipsis)
}

// truncateTo is truncate that leaves s alone when the width is unknown.
func truncateTo(s string, width int) string {
	if width <= 0 {
		return s
	}
	return truncate(s, width)
}

func contentWidth(total int) int {
	if total <= 0 {
		return 0
	}
	return max(1, int(float64(total)*0.70))
}
