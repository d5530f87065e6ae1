package views

import (
	"fmt"
	"strings"

	"github.com/matheus3301/nikki/internal/tui/ui"
	"github.com/rivo/tview"
)

type helpSection struct {
	title string
	rows  [][2]string // key, description
}

var helpSections = []helpSection{
	{"Capture", [][2]string{
		{"Enter", "Save the note"},
		{"Up/Down", "Recall recent notes"},
		{"Esc", "Leave the input line"},
		{"i", "Back to the input line"},
		{"Enter", "Reuse a recent note (in the list)"},
		{"/", "Filter recent notes"},
	}},
	{"Global Keys", [][2]string{
		{":", "Command mode"},
		{"d", "Drain the queue now"},
		{"Q", "Queue"},
		{"J", "Journal"},
		{"S", "Sheets"},
		{"?", "Help"},
		{"q", "Quit / Back"},
		{"Ctrl-C", "Quit immediately"},
	}},
	{"Commands (: mode)", [][2]string{
		{":upload <path>  :u", "Upload a file and save its link as a note"},
		{":sheet <name>   :s", "Write to another tab"},
		{":sheets", "Pick a tab"},
		{":drain          :dr", "Deliver queued notes now"},
		{":queue  :journal", "Open the queue or the journal"},
		{":clear", "Clear recent notes"},
		{":help           :h", "Show this help"},
		{":quit           :q", "Quit"},
	}},
}

// HelpView lists keys and commands.
type HelpView struct {
	*tview.TextView
}

func NewHelpView(theme *ui.Theme) *HelpView {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" Help ")
	tv.SetTitleColor(theme.TitleColor)
	tv.SetText(helpText(ui.ColorTag(theme.MenuKeyColor)))

	return &HelpView{TextView: tv}
}

func (hv *HelpView) Name() string { return "Help" }

func (hv *HelpView) Hints() []ui.MenuHint {
	return []ui.MenuHint{{Key: "Esc", Description: "Back"}}
}

// helpText renders helpSections with keys padded to a common width.
func helpText(keyColor string) string {
	width := 0
	for _, sec := range helpSections {
		for _, row := range sec.rows {
			width = max(width, len(row[0]))
		}
	}

	var b strings.Builder
	for _, sec := range helpSections {
		fmt.Fprintf(&b, "\n  [::b]%s[-:-:-]\n\n", sec.title)
		for _, row := range sec.rows {
			fmt.Fprintf(&b, "  [%s]%s[-:-:-]%s  %s\n",
				keyColor, tview.Escape(row[0]), strings.Repeat(" ", width-len(row[0])), row[1])
		}
	}
	return b.String()
}
