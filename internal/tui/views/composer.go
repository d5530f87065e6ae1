package views

import (
	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/nikki/internal/tui/ui"
	"github.com/rivo/tview"
)

// Composer is the capture input line. Up and Down walk back through
// recent notes.
type Composer struct {
	*tview.InputField
	onSubmit func(text string)
	onEscape func()

	recall []string
	pos    int
}

// NewComposer creates a new capture input line.
func NewComposer(theme *ui.Theme) *Composer {
	input := tview.NewInputField().
		SetLabel(" > ").
		SetFieldWidth(0).
		SetPlaceholder("type a note and press Enter")
	input.SetBorder(true)
	input.SetBorderColor(theme.BorderFocusColor)
	input.SetBackgroundColor(theme.BgColor)
	input.SetFieldBackgroundColor(theme.BgColor)
	input.SetLabelColor(theme.MenuKeyColor)

	c := &Composer{InputField: input, pos: -1}

	input.SetDoneFunc(func(key tcell.Key) {
		switch key {
		case tcell.KeyEnter:
			text := c.GetText()
			if text != "" && c.onSubmit != nil {
				c.onSubmit(text)
				c.SetText("")
			}
			c.pos = -1
		case tcell.KeyEscape:
			c.SetText("")
			c.pos = -1
			if c.onEscape != nil {
				c.onEscape()
			}
		}
	})

	input.SetInputCapture(func(ev *tcell.EventKey) *tcell.EventKey {
		switch ev.Key() {
		case tcell.KeyUp:
			c.SetText(c.Older())
			return nil
		case tcell.KeyDown:
			c.SetText(c.Newer())
			return nil
		}
		return ev
	})

	return c
}

// SetOnSubmit sets the callback for a submitted line.
func (c *Composer) SetOnSubmit(fn func(text string)) {
	c.onSubmit = fn
}

// SetOnEscape sets the callback for Esc.
func (c *Composer) SetOnEscape(fn func()) {
	c.onEscape = fn
}

// SetRecall replaces the notes Up/Down cycle through, newest first.
func (c *Composer) SetRecall(items []string) {
	c.recall = items
	if c.pos >= len(items) {
		c.pos = len(items) - 1
	}
}

// Older moves one note back in the recall list and returns it.
func (c *Composer) Older() string {
	if len(c.recall) == 0 {
		return ""
	}
	if c.pos < len(c.recall)-1 {
		c.pos++
	}
	return c.recall[c.pos]
}

// Newer moves one note forward; past the newest it returns "".
func (c *Composer) Newer() string {
	if c.pos <= 0 {
		c.pos = -1
		return ""
	}
	c.pos--
	return c.recall[c.pos]
}
