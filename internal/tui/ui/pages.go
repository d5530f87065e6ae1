package ui

import "github.com/rivo/tview"

// Pages shows a root page with at most one page opened over it. Opening a
// page while another is open replaces it, so Back always returns to root.
type Pages struct {
	*tview.Pages
	root     string
	top      string
	onChange func(stack []string)
}

func NewPages() *Pages {
	return &Pages{Pages: tview.NewPages()}
}

// SetOnChange registers fn to run with the new stack after every change.
func (p *Pages) SetOnChange(fn func(stack []string)) {
	p.onChange = fn
}

// SetRoot shows name as the root page and closes any open page.
func (p *Pages) SetRoot(name string) {
	p.root, p.top = name, ""
	p.SwitchToPage(name)
	p.notify()
}

// Open shows name over the root. It reports false when name is already
// the current page.
func (p *Pages) Open(name string) bool {
	if name == p.Current() {
		return false
	}
	if name == p.root {
		p.Back()
		return true
	}
	p.top = name
	p.SwitchToPage(name)
	p.notify()
	return true
}

// Back closes the open page and returns its name, or "" when only the
// root is showing.
func (p *Pages) Back() string {
	closed := p.top
	if closed == "" {
		return ""
	}
	p.top = ""
	p.SwitchToPage(p.root)
	p.notify()
	return closed
}

// Current returns the visible page.
func (p *Pages) Current() string {
	if p.top != "" {
		return p.top
	}
	return p.root
}

// Overlaid reports whether a page is open over the root.
func (p *Pages) Overlaid() bool {
	return p.top != ""
}

// Stack returns the root followed by the open page, if any.
func (p *Pages) Stack() []string {
	var s []string
	if p.root != "" {
		s = append(s, p.root)
	}
	if p.top != "" {
		s = append(s, p.top)
	}
	return s
}

func (p *Pages) notify() {
	if p.onChange != nil {
		p.onChange(p.Stack())
	}
}
