package ui

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"
)

var logoArt = []string{
	"┏┓╻╻╻┏ ╻┏ ╻",
	"┃┗┫┃┣┻┓┣┻┓┃",
	"╹ ╹╹╹ ╹╹ ╹╹",
}

// Logo sits at the right of the header.
type Logo struct {
	*tview.TextView
}

func NewLogo(theme *Theme) *Logo {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetBorderPadding(1, 0, 1, 0)

	var b strings.Builder
	title := ColorTag(theme.TitleColor)
	for _, line := range logoArt {
		fmt.Fprintf(&b, "[%s::b]%s[-:-:-]\n", title, line)
	}
	fmt.Fprintf(&b, "[%s]  capture[-]", ColorTag(theme.FgColor))
	tv.SetText(b.String())

	return &Logo{TextView: tv}
}
