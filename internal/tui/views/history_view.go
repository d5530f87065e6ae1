package views

import (
	"fmt"
	"strings"

	"github.com/matheus3301/nikki/internal/tui/ui"
	"github.com/rivo/tview"
)

// HistoryView lists recently submitted notes, newest first.
type HistoryView struct {
	*tview.List
	theme   *ui.Theme
	all     []string
	visible []string
	filter  string
}

// NewHistoryView creates the recent-notes list.
func NewHistoryView(theme *ui.Theme) *HistoryView {
	list := tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true).
		SetMainTextColor(theme.FgColor).
		SetSelectedTextColor(theme.TableCursorFg).
		SetSelectedBackgroundColor(theme.TableCursorBg)
	list.SetBorder(true)
	list.SetBorderColor(theme.BorderColor)
	list.SetBackgroundColor(theme.BgColor)
	list.SetTitle(" Recent ")
	list.SetTitleColor(theme.TitleColor)

	return &HistoryView{List: list, theme: theme}
}

// Name implements Component.
func (hv *HistoryView) Name() string { return "Capture" }

// Hints implements Component.
func (hv *HistoryView) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "i", Description: "Write"},
		{Key: "Enter", Description: "Reuse"},
		{Key: "/", Description: "Filter"},
	}
}

// Update replaces the listed notes.
func (hv *HistoryView) Update(items []string) {
	hv.all = items
	hv.render()
}

// SetFilter shows only notes containing filter, ignoring case.
func (hv *HistoryView) SetFilter(filter string) {
	hv.filter = filter
	hv.render()
}

// ClearFilter shows every note again.
func (hv *HistoryView) ClearFilter() {
	hv.filter = ""
	hv.render()
}

// Filter returns the active filter.
func (hv *HistoryView) Filter() string { return hv.filter }

// Selected returns the highlighted note, or "" when the list is empty.
func (hv *HistoryView) Selected() string {
	i := hv.GetCurrentItem()
	if i < 0 || i >= len(hv.visible) {
		return ""
	}
	return hv.visible[i]
}

func (hv *HistoryView) render() {
	current := hv.GetCurrentItem()
	hv.Clear()

	hv.visible = hv.visible[:0]
	for _, text := range hv.all {
		if hv.filter != "" && !containsFold(text, hv.filter) {
			continue
		}
		hv.visible = append(hv.visible, text)
		hv.AddItem(display(text), "", 0, nil)
	}

	title := fmt.Sprintf(" Recent [%s](%d)[-] ", ui.ColorTag(hv.theme.CounterColor), len(hv.visible))
	if hv.filter != "" {
		title = fmt.Sprintf(" Recent </%s> [%s](%d)[-] ", tview.Escape(hv.filter), ui.ColorTag(hv.theme.CounterColor), len(hv.visible))
	}
	hv.SetTitle(title)
	if current >= 0 && current < len(hv.visible) {
		hv.SetCurrentItem(current)
	}
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
