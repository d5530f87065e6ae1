package ui

import (
	"fmt"
	"sync"
	"time"

	"github.com/rivo/tview"
)

// FlashLevel is the severity of a flash message.
type FlashLevel int

const (
	FlashInfo FlashLevel = iota
	FlashWarn
	FlashErr
)

// flashTTL is how long each level stays on screen.
var flashTTL = map[FlashLevel]time.Duration{
	FlashInfo: 4 * time.Second,
	FlashWarn: 8 * time.Second,
	FlashErr:  12 * time.Second,
}

// FlashMessage is one notification.
type FlashMessage struct {
	Text    string
	Level   FlashLevel
	Expires time.Time
}

// FlashModel holds the latest notification. Every new message is also
// offered on the Watch channel so the UI can redraw; a full channel drops
// the wake-up, not the message.
type FlashModel struct {
	mu      sync.RWMutex
	current *FlashMessage
	now     func() time.Time
	watchCh chan FlashMessage
}

// NewFlashModel creates an empty flash model.
func NewFlashModel() *FlashModel {
	return &FlashModel{
		now:     time.Now,
		watchCh: make(chan FlashMessage, 8),
	}
}

func (f *FlashModel) Info(msg string) { f.post(FlashInfo, msg) }

func (f *FlashModel) Warn(msg string) { f.post(FlashWarn, msg) }

func (f *FlashModel) Err(err error) { f.post(FlashErr, err.Error()) }

func (f *FlashModel) post(level FlashLevel, text string) {
	fm := FlashMessage{
		Text:    text,
		Level:   level,
		Expires: f.now().Add(flashTTL[level]),
	}
	f.mu.Lock()
	f.current = &fm
	f.mu.Unlock()

	select {
	case f.watchCh <- fm:
	default:
	}
}

// Clear drops the current message.
func (f *FlashModel) Clear() {
	f.mu.Lock()
	f.current = nil
	f.mu.Unlock()
}

// GetMessage returns a copy of the live message, nil once it expired.
func (f *FlashModel) GetMessage() *FlashMessage {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.current == nil || !f.now().Before(f.current.Expires) {
		return nil
	}
	m := *f.current
	return &m
}

// Get returns the live message text.
func (f *FlashModel) Get() string {
	if m := f.GetMessage(); m != nil {
		return m.Text
	}
	return ""
}

func (f *FlashModel) Watch() <-chan FlashMessage {
	return f.watchCh
}

// FlashBar draws the live flash message above the status bar.
type FlashBar struct {
	*tview.TextView
	theme *Theme
}

func NewFlashBar(theme *Theme) *FlashBar {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(theme.BgColor)

	return &FlashBar{TextView: tv, theme: theme}
}

// Update renders msg, or blanks the bar when msg is nil.
func (fb *FlashBar) Update(msg *FlashMessage) {
	fb.Clear()
	if msg == nil {
		return
	}
	_, _ = fmt.Fprint(fb, fb.line(msg))
}

func (fb *FlashBar) line(msg *FlashMessage) string {
	color, mark := fb.theme.FlashInfoColor, ""
	switch msg.Level {
	case FlashWarn:
		color, mark = fb.theme.FlashWarnColor, "! "
	case FlashErr:
		color, mark = fb.theme.FlashErrColor, "x "
	}
	return fmt.Sprintf(" [%s]%s%s[-]", ColorTag(color), mark, tview.Escape(msg.Text))
}
