package ui

import (
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

func TestFlashLevels(t *testing.T) {
	f := NewFlashModel()
	if f.GetMessage() != nil {
		t.Fatal("new flash should be empty")
	}

	f.Warn("queued")
	msg := f.GetMessage()
	if msg == nil || msg.Level != FlashWarn || msg.Text != "queued" {
		t.Errorf("message = %+v", msg)
	}

	f.Err(errors.New("boom"))
	if got := f.Get(); got != "boom" {
		t.Errorf("Get() = %q, want boom", got)
	}

	select {
	case m := <-f.Watch():
		if m.Text != "queued" {
			t.Errorf("first watched = %q, want queued", m.Text)
		}
	default:
		t.Error("Watch channel should have a message")
	}
}

func TestFlashExpires(t *testing.T) {
	f := NewFlashModel()
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	f.now = func() time.Time { return now }

	f.Info("saved")
	now = now.Add(flashTTL[FlashInfo] - time.Millisecond)
	if got := f.Get(); got != "saved" {
		t.Errorf("Get() = %q before expiry", got)
	}
	now = now.Add(time.Millisecond)
	if got := f.Get(); got != "" {
		t.Errorf("Get() = %q after expiry", got)
	}

	f.Warn("queued")
	f.Clear()
	if f.GetMessage() != nil {
		t.Error("Clear should drop the message")
	}
}

func TestFlashBarMarksLevel(t *testing.T) {
	fb := NewFlashBar(DefaultTheme())
	line := fb.line(&FlashMessage{Text: "sheet [gone]", Level: FlashErr})
	if !strings.Contains(line, "x sheet [gone[]") {
		t.Errorf("line = %q", line)
	}
	if line := fb.line(&FlashMessage{Text: "saved"}); strings.Contains(line, "! ") {
		t.Errorf("info line should have no mark: %q", line)
	}
}

func TestPagesOpenReplacesOverlay(t *testing.T) {
	p := NewPages()
	for _, name := range []string{"capture", "queue", "help"} {
		p.AddPage(name, tview.NewBox(), true, false)
	}
	var last []string
	p.SetOnChange(func(stack []string) { last = stack })

	p.SetRoot("capture")
	if p.Current() != "capture" || p.Overlaid() {
		t.Fatalf("root: current=%q overlaid=%v", p.Current(), p.Overlaid())
	}
	if !p.Open("queue") || !p.Open("help") {
		t.Fatal("Open should report a change")
	}
	if p.Open("help") {
		t.Error("reopening the current page should be a no-op")
	}
	if !slices.Equal(last, []string{"capture", "help"}) {
		t.Errorf("stack = %v, want [capture help]", last)
	}

	if got := p.Back(); got != "help" {
		t.Errorf("Back() = %q, want help", got)
	}
	if got := p.Back(); got != "" || p.Current() != "capture" {
		t.Errorf("Back() at root = %q, current = %q", got, p.Current())
	}

	p.Open("queue")
	p.Open("capture")
	if p.Overlaid() {
		t.Error("opening the root should close the overlay")
	}
}

func TestPromptCompletesCommands(t *testing.T) {
	p := NewPrompt(DefaultTheme())
	p.SetCommands([]string{"drain", "help", "sheet", "sheets"})

	p.Activate(PromptCommand)
	if got := p.complete("sh"); !slices.Equal(got, []string{"sheet", "sheets"}) {
		t.Errorf("complete(sh) = %v", got)
	}
	if got := p.complete("sheet"); !slices.Equal(got, []string{"sheets"}) {
		t.Errorf("complete(sheet) = %v", got)
	}
	if got := p.complete("sheet In"); got != nil {
		t.Errorf("arguments should not complete: %v", got)
	}

	p.Activate(PromptFilter)
	if got := p.complete("d"); got != nil {
		t.Errorf("filter mode should not complete: %v", got)
	}
}

func TestPromptSubmitTrims(t *testing.T) {
	p := NewPrompt(DefaultTheme())
	var gotMode PromptMode = -1
	var gotText string
	p.SetOnSubmit(func(mode PromptMode, text string) { gotMode, gotText = mode, text })

	p.Activate(PromptFilter)
	p.SetText("  milk ")
	p.done(tcell.KeyEnter)
	if gotMode != PromptFilter || gotText != "milk" {
		t.Errorf("submit = %v %q", gotMode, gotText)
	}

	gotText = "unchanged"
	p.SetText("   ")
	p.done(tcell.KeyEnter)
	if gotText != "unchanged" {
		t.Error("blank input should not submit")
	}
}

func TestCrumbsLine(t *testing.T) {
	c := NewCrumbs(DefaultTheme(), "work")
	line := c.line([]string{"Capture", "Queue"})
	if !strings.Contains(line, " @work ") {
		t.Errorf("line %q should start with the profile", line)
	}
	if !strings.HasSuffix(line, "b] queue [-:-:-]") {
		t.Errorf("line %q should end with the active page in bold", line)
	}
}

func TestFormatDuration(t *testing.T) {
	if got := FormatDuration(95 * time.Minute); got != "1h35m" {
		t.Errorf("FormatDuration = %q", got)
	}
	if got := FormatDuration(42 * time.Second); got != "0m" {
		t.Errorf("FormatDuration = %q", got)
	}
}

func TestMenuLayoutColumns(t *testing.T) {
	m := NewMenu(DefaultTheme(), 2)
	out := m.layout([]MenuHint{
		{Key: "i", Description: "Write"},
		{Key: "Enter", Description: "Reuse"},
		{Key: "?", Description: "Help", Global: true},
	})
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "<i>") || !strings.Contains(lines[0], "<?>") {
		t.Errorf("first line %q should hold the first hint of each column", lines[0])
	}
	if !strings.Contains(lines[1], "<Enter>") || strings.Contains(lines[1], "<?>") {
		t.Errorf("second line = %q", lines[1])
	}
	global := ColorTag(DefaultTheme().GlobalKeyColor)
	if !strings.Contains(lines[0], "["+global+"::b]<?>") {
		t.Errorf("global hint not in global color: %q", lines[0])
	}
}
