package views

import (
	"strings"
	"unicode"

	"github.com/rivo/tview"
)

// display prepares a note for a single list or table line: whitespace
// runs collapse to one space, terminal-hostile runes go, and tview tags
// are escaped. Notes are stored untouched.
func display(s string) string {
	return tview.Escape(sanitizeForTerminal(oneLine(s)))
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// sanitizeForTerminal drops control characters and the emoji modifiers
// tcell measures with the wrong cell width.
func sanitizeForTerminal(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || emojiModifier(r) {
			return -1
		}
		return r
	}, s)
}

func emojiModifier(r rune) bool {
	switch {
	case r >= 0x1F3FB && r <= 0x1F3FF: // skin tones
		return true
	case r == 0x200D: // zero width joiner
		return true
	case r >= 0xFE00 && r <= 0xFE0F, r >= 0xE0100 && r <= 0xE01EF: // variation selectors
		return true
	}
	return false
}
