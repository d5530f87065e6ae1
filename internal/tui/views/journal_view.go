package views

import (
	"fmt"
	"time"

	"github.com/matheus3301/nikki/internal/api"
	"github.com/matheus3301/nikki/internal/tui/ui"
	"github.com/rivo/tview"
)

// JournalView shows confirmed deliveries, newest first.
type JournalView struct {
	*tview.Table
	theme *ui.Theme
}

// NewJournalView creates the deliveries table.
func NewJournalView(theme *ui.Theme) *JournalView {
	return &JournalView{Table: newTable(theme, " Journal "), theme: theme}
}

// Name implements Component.
func (jv *JournalView) Name() string { return "Journal" }

// Hints implements Component.
func (jv *JournalView) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Esc", Description: "Back"},
	}
}

// Update renders the deliveries.
func (jv *JournalView) Update(items []api.JournalItem) {
	jv.Clear()
	setHeader(jv.Table, jv.theme, []column{
		{" SUBMITTED", 0}, {" DELIVERED", 0}, {" VIA", 0}, {" SHEET", 0}, {" TEXT", 1},
	})
	for i, it := range items {
		row := i + 1
		jv.SetCell(row, 0, tview.NewTableCell(" "+it.Timestamp).SetTextColor(jv.theme.FgColor))
		jv.SetCell(row, 1, tview.NewTableCell(" "+deliveredAt(it.DeliveredAt)).SetTextColor(jv.theme.FgColor))
		jv.SetCell(row, 2, tview.NewTableCell(" "+it.Via).SetTextColor(jv.theme.CounterColor))
		jv.SetCell(row, 3, tview.NewTableCell(" "+it.Sheet).SetTextColor(jv.theme.FgColor))
		jv.SetCell(row, 4, tview.NewTableCell(" "+display(it.Text)).
			SetTextColor(jv.theme.FgColor).SetExpansion(1))
	}
	jv.SetTitle(fmt.Sprintf(" Journal [%s](%d)[-] ", ui.ColorTag(jv.theme.CounterColor), len(items)))
	if len(items) > 0 {
		jv.Select(1, 0)
	}
}

func deliveredAt(s string) string {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return s
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
