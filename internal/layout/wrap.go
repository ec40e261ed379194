package layout

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/width"
)

// cells returns the display width of s in character cells: East Asian wide
// and fullwidth runes count as two, everything else as one.
func cells(s string) int {
	n := 0
	for _, r := range s {
		n += runeCells(r)
	}
	return n
}

func runeCells(r rune) int {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	default:
		return 1
	}
}

// wrap breaks text into lines no wider than maxCells. Words longer than a line
// are split across lines. Blank input yields no lines. wrap always makes
// progress, so a non-positive maxCells is treated as one cell.
func wrap(text string, maxCells int) []string {
	if maxCells < 1 {
		maxCells = 1
	}
	var (
		lines []string
		line  strings.Builder
		used  int
	)
	flush := func() {
		if line.Len() > 0 {
			lines = append(lines, line.String())
			line.Reset()
			used = 0
		}
	}

	for _, word := range strings.Fields(text) {
		w := cells(word)
		switch {
		case used > 0 && used+1+w <= maxCells:
			line.WriteByte(' ')
			line.WriteString(word)
			used += 1 + w
		case w <= maxCells:
			flush()
			line.WriteString(word)
			used = w
		default:
			flush()
			for _, part := range splitWord(word, maxCells) {
				flush()
				line.WriteString(part)
				used = cells(part)
			}
		}
	}
	flush()
	return lines
}

// splitWord cuts a word into chunks of at most maxCells cells. A single rune
// wider than maxCells still gets a chunk of its own.
func splitWord(word string, maxCells int) []string {
	parts := make([]string, 0, utf8.RuneCountInString(word)/maxCells+1)
	start, used := 0, 0
	for i, r := range word {
		c := runeCells(r)
		if used > 0 && used+c > maxCells {
			parts = append(parts, word[start:i])
			start, used = i, 0
		}
		used += c
	}
	return append(parts, word[start:])
}
