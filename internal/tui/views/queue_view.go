package views

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/nikki/internal/api"
	"github.com/matheus3301/nikki/internal/tui/ui"
	"github.com/rivo/tview"
)

// QueueView shows entries waiting for delivery, oldest first.
type QueueView struct {
	*tview.Table
	theme *ui.Theme
}

// NewQueueView creates the pending-entries table.
func NewQueueView(theme *ui.Theme) *QueueView {
	return &QueueView{Table: newTable(theme, " Queue "), theme: theme}
}

// Name implements Component.
func (qv *QueueView) Name() string { return "Queue" }

// Hints implements Component.
func (qv *QueueView) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Esc", Description: "Back"},
	}
}

// Update renders the pending entries.
func (qv *QueueView) Update(items []api.QueueItem) {
	qv.Clear()
	setHeader(qv.Table, qv.theme, []column{{" #", 0}, {" SUBMITTED", 0}, {" TEXT", 1}})
	for i, it := range items {
		row := i + 1
		qv.SetCell(row, 0, tview.NewTableCell(fmt.Sprintf(" %d", row)).SetTextColor(qv.theme.CounterColor))
		qv.SetCell(row, 1, tview.NewTableCell(" "+it.Timestamp).SetTextColor(qv.theme.FgColor))
		qv.SetCell(row, 2, tview.NewTableCell(" "+display(it.Text)).
			SetTextColor(qv.theme.FgColor).SetExpansion(1))
	}
	qv.SetTitle(fmt.Sprintf(" Queue [%s](%d)[-] ", ui.ColorTag(qv.theme.CounterColor), len(items)))
	if len(items) > 0 {
		qv.Select(1, 0)
	}
}

type column struct {
	text string
	exp  int
}

func newTable(theme *ui.Theme, title string) *tview.Table {
	table := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false).
		SetFixed(1, 0)
	table.SetBorder(true)
	table.SetBorderColor(theme.BorderColor)
	table.SetBackgroundColor(theme.BgColor)
	table.SetSelectedStyle(tcell.StyleDefault.
		Foreground(theme.TableCursorFg).
		Background(theme.TableCursorBg))
	table.SetTitle(title)
	table.SetTitleColor(theme.TitleColor)
	return table
}

func setHeader(t *tview.Table, theme *ui.Theme, cols []column) {
	for i, c := range cols {
		t.SetCell(0, i, tview.NewTableCell(c.text).
			SetSelectable(false).
			SetTextColor(theme.TableHeaderFg).
			SetBackgroundColor(theme.TableHeaderBg).
			SetAttributes(tcell.AttrBold).
			SetExpansion(c.exp))
	}
}
