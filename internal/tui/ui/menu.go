package ui

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"
)

// Menu shows key hints in the header, filled top to bottom in columns of
// at most rows lines.
type Menu struct {
	*tview.TextView
	theme *Theme
	rows  int
}

// NewMenu creates a menu that fits in rows lines.
func NewMenu(theme *Theme, rows int) *Menu {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetBorderPadding(0, 0, 2, 0)

	if rows < 1 {
		rows = 1
	}
	return &Menu{
		TextView: tv,
		theme:    theme,
		rows:     rows,
	}
}

// Update renders hints.
func (m *Menu) Update(hints []MenuHint) {
	m.Clear()
	_, _ = fmt.Fprint(m, m.layout(hints))
}

func (m *Menu) layout(hints []MenuHint) string {
	keyColor := ColorTag(m.theme.MenuKeyColor)
	globalColor := ColorTag(m.theme.GlobalKeyColor)

	lines := make([]strings.Builder, m.rows)
	for start := 0; start < len(hints); start += m.rows {
		end := min(start+m.rows, len(hints))
		col := hints[start:end]

		width := 0
		for _, h := range col {
			width = max(width, hintWidth(h))
		}
		for r, h := range col {
			kc := keyColor
			if h.Global {
				kc = globalColor
			}
			fmt.Fprintf(&lines[r], "[%s::b]<%s>[-:-:-] %s", kc, h.Key, h.Description)
			if end < len(hints) {
				lines[r].WriteString(strings.Repeat(" ", width-hintWidth(h)+3))
			}
		}
	}

	out := make([]string, 0, m.rows)
	for i := range lines {
		if lines[i].Len() > 0 {
			out = append(out, lines[i].String())
		}
	}
	return strings.Join(out, "\n")
}

// hintWidth is the on-screen width of "<key> description".
func hintWidth(h MenuHint) int {
	return len([]rune(h.Key)) + 3 + len([]rune(h.Description))
}
