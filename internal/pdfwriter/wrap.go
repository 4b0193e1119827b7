package pdfwriter

import (
	"strings"
	"unicode/utf8"

	"github.com/ginjaninja78/order-invoicer/internal/types"
)

// WrapText greedily packs the words of text into lines of at most width
// characters. Words are never split, so a word longer than width sits on
// its own line. Blank text yields a single placeholder line.
func WrapText(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{types.Placeholder}
	}
	if width <= 0 {
		width = DefaultWrapWidth
	}

	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		if utf8.RuneCountInString(current)+1+utf8.RuneCountInString(word) <= width {
			current += " " + word
			continue
		}
		lines = append(lines, current)
		current = word
	}

	return append(lines, current)
}
