package ui

import (
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// PromptMode selects what the prompt input is used for.
type PromptMode int

const (
	PromptCommand PromptMode = iota
	PromptFilter
)

// Prompt is the ':' command and '/' filter bar. In command mode the first
// word completes against the registered command names.
type Prompt struct {
	*tview.InputField
	mode     PromptMode
	commands []string
	onSubmit func(mode PromptMode, text string)
	onCancel func()
}

func NewPrompt(theme *Theme) *Prompt {
	input := tview.NewInputField()
	input.SetBorder(true)
	input.SetBorderColor(theme.PromptBorderColor)
	input.SetBackgroundColor(theme.BgColor)
	input.SetFieldBackgroundColor(theme.BgColor)
	input.SetFieldTextColor(theme.FgColor)
	input.SetLabelColor(theme.MenuKeyColor)

	p := &Prompt{InputField: input}
	input.SetAutocompleteFunc(p.complete)
	input.SetDoneFunc(p.done)
	return p
}

// SetCommands sets the names offered for completion in command mode.
func (p *Prompt) SetCommands(names []string) {
	p.commands = names
}

func (p *Prompt) SetOnSubmit(fn func(mode PromptMode, text string)) {
	p.onSubmit = fn
}

func (p *Prompt) SetOnCancel(fn func()) {
	p.onCancel = fn
}

// complete lists the commands starting with text. Nothing is offered in
// filter mode, for an empty line, or once arguments are being typed.
func (p *Prompt) complete(text string) []string {
	if p.mode != PromptCommand || text == "" || strings.Contains(text, " ") {
		return nil
	}
	prefix := strings.ToLower(text)
	var out []string
	for _, name := range p.commands {
		if strings.HasPrefix(name, prefix) && name != prefix {
			out = append(out, name)
		}
	}
	return out
}

func (p *Prompt) done(key tcell.Key) {
	text := strings.TrimSpace(p.GetText())
	p.SetText("")
	switch key {
	case tcell.KeyEnter:
		if text != "" && p.onSubmit != nil {
			p.onSubmit(p.mode, text)
		}
	case tcell.KeyEscape:
		if p.onCancel != nil {
			p.onCancel()
		}
	}
}

// Activate clears the input and switches it to mode.
func (p *Prompt) Activate(mode PromptMode) {
	p.mode = mode
	p.SetText("")
	if mode == PromptFilter {
		p.SetLabel("/")
		p.SetTitle(" Filter ")
		return
	}
	p.SetLabel(":")
	p.SetTitle(" Command ")
}

func (p *Prompt) Mode() PromptMode {
	return p.mode
}
