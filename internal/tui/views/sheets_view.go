package views

import (
	"github.com/matheus3301/nikki/internal/tui/ui"
	"github.com/rivo/tview"
)

// SheetsView lists the spreadsheet tabs and marks the active one.
type SheetsView struct {
	*tview.List
	theme    *ui.Theme
	items    []string
	onSelect func(name string)
}

// NewSheetsView creates the tab picker.
func NewSheetsView(theme *ui.Theme) *SheetsView {
	list := tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true).
		SetMainTextColor(theme.FgColor).
		SetSelectedTextColor(theme.TableCursorFg).
		SetSelectedBackgroundColor(theme.TableCursorBg)
	list.SetBorder(true)
	list.SetBorderColor(theme.BorderColor)
	list.SetBackgroundColor(theme.BgColor)
	list.SetTitle(" Sheets ")
	list.SetTitleColor(theme.TitleColor)

	sv := &SheetsView{List: list, theme: theme}
	list.SetSelectedFunc(func(i int, _ string, _ string, _ rune) {
		if i >= 0 && i < len(sv.items) && sv.onSelect != nil {
			sv.onSelect(sv.items[i])
		}
	})
	return sv
}

// Name implements Component.
func (sv *SheetsView) Name() string { return "Sheets" }

// Hints implements Component.
func (sv *SheetsView) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Enter", Description: "Select"},
		{Key: "Esc", Description: "Back"},
	}
}

// SetOnSelect sets the callback for a chosen tab.
func (sv *SheetsView) SetOnSelect(fn func(name string)) {
	sv.onSelect = fn
}

// Update lists the tabs; active is marked.
func (sv *SheetsView) Update(items []string, active string) {
	sv.items = items
	sv.Clear()
	for i, name := range items {
		label := "  " + tview.Escape(name)
		if name == active {
			label = "* " + tview.Escape(name)
		}
		sv.AddItem(label, "", 0, nil)
		if name == active {
			sv.SetCurrentItem(i)
		}
	}
}
