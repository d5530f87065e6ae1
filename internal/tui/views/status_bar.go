package views

import (
	"fmt"
	"time"

	"github.com/matheus3301/nikki/internal/tui/ui"
	"github.com/rivo/tview"
)

// StatusBar displays persistent session and queue status.
type StatusBar struct {
	*tview.TextView
	theme    *ui.Theme
	profile  string
	state    string
	sheet    string
	queued   int
	draining bool
	now      func() time.Time
}

// NewStatusBar creates a new status bar.
func NewStatusBar(theme *ui.Theme) *StatusBar {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(tview.Styles.MoreContrastBackgroundColor)

	return &StatusBar{TextView: tv, theme: theme, now: time.Now}
}

// SetProfile updates the profile name display.
func (sb *StatusBar) SetProfile(name string) {
	sb.profile = name
	sb.render()
}

// SetState updates the session state, target sheet and queue indicators.
func (sb *StatusBar) SetState(state, sheet string, queued int, draining bool) {
	sb.state = state
	sb.sheet = sheet
	sb.queued = queued
	sb.draining = draining
	sb.render()
}

func (sb *StatusBar) render() {
	sb.Clear()
	_, _ = fmt.Fprint(sb, sb.line())
}

func (sb *StatusBar) line() string {
	online := ui.ColorTag(sb.theme.OnlineColor)
	stateColor := online
	if sb.state != "ONLINE" {
		stateColor = ui.ColorTag(sb.theme.OfflineColor)
	}

	queue := fmt.Sprintf("%d queued", sb.queued)
	if sb.queued > 0 {
		queue = fmt.Sprintf("[%s]%s[-]", ui.ColorTag(sb.theme.QueuedColor), queue)
	}
	if sb.draining {
		queue += fmt.Sprintf(" [%s]~[-]", online)
	}

	sheet := sb.sheet
	if sheet == "" {
		sheet = "-"
	}

	return fmt.Sprintf(" [::b]%s[-:-:-] | [%s]%s[-] | %s | %s | %s",
		sb.profile, stateColor, sb.state, sheet, queue, sb.now().Format("15:04"))
}
