package ui

import (
	"fmt"
	"time"

	"github.com/rivo/tview"
)

// InfoData holds daemon information for display.
type InfoData struct {
	Profile   string
	State     string
	Sheet     string
	Queued    int
	Delivered int
	Uptime    time.Duration
}

// Info displays daemon metadata in the header.
type Info struct {
	*tview.TextView
	theme *Theme
}

// NewInfo creates a new info panel.
func NewInfo(theme *Theme) *Info {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetBorderPadding(0, 0, 1, 1)

	return &Info{
		TextView: tv,
		theme:    theme,
	}
}

// Update renders the info panel.
func (in *Info) Update(data *InfoData) {
	in.Clear()
	if data == nil {
		return
	}

	fgColor := ColorTag(in.theme.FgColor)
	counterColor := ColorTag(in.theme.CounterColor)
	stateColor := ColorTag(in.theme.OfflineColor)
	if data.State == "ONLINE" {
		stateColor = ColorTag(in.theme.OnlineColor)
	}
	queuedColor := counterColor
	if data.Queued > 0 {
		queuedColor = ColorTag(in.theme.QueuedColor)
	}

	sheet := data.Sheet
	if sheet == "" {
		sheet = "-"
	}

	text := fmt.Sprintf(
		"[%s::b]Profile:[-:-:-] [%s]%s[-]\n"+
			"[%s::b]State:[-:-:-]   [%s]%s[-]\n"+
			"[%s::b]Sheet:[-:-:-]   [%s]%s[-]\n"+
			"[%s::b]Queued:[-:-:-]  [%s]%d[-]\n"+
			"[%s::b]Sent:[-:-:-]    [%s]%d[-]\n"+
			"[%s::b]Uptime:[-:-:-]  [%s]%s[-]",
		fgColor, counterColor, data.Profile,
		fgColor, stateColor, data.State,
		fgColor, counterColor, sheet,
		fgColor, queuedColor, data.Queued,
		fgColor, counterColor, data.Delivered,
		fgColor, counterColor, FormatDuration(data.Uptime),
	)

	_, _ = fmt.Fprint(in, text)
}

// FormatDuration renders d as "1h5m" or "5m".
func FormatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh%dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}
