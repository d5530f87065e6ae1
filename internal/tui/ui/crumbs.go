package ui

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"
)

// Crumbs shows "profile > page" above the pages.
type Crumbs struct {
	*tview.TextView
	theme   *Theme
	profile string
}

func NewCrumbs(theme *Theme, profile string) *Crumbs {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(theme.BgColor)

	return &Crumbs{TextView: tv, theme: theme, profile: profile}
}

// Update renders the profile followed by the page titles in stack order.
// The last one is the active page.
func (c *Crumbs) Update(titles []string) {
	c.Clear()
	_, _ = fmt.Fprint(c, c.line(titles))
}

func (c *Crumbs) line(titles []string) string {
	inactive := fmt.Sprintf("[%s:%s:]", ColorTag(c.theme.CrumbInactiveFg), ColorTag(c.theme.CrumbInactiveBg))
	active := fmt.Sprintf("[%s:%s:b]", ColorTag(c.theme.CrumbActiveFg), ColorTag(c.theme.CrumbActiveBg))

	parts := make([]string, 0, len(titles)+1)
	if c.profile != "" {
		parts = append(parts, inactive+" @"+tview.Escape(c.profile)+" [-:-:-]")
	}
	for i, title := range titles {
		style := inactive
		if i == len(titles)-1 {
			style = active
		}
		parts = append(parts, style+" "+strings.ToLower(title)+" [-:-:-]")
	}
	return strings.Join(parts, " ")
}
