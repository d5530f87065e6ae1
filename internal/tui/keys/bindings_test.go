package keys

import (
	"testing"

	"github.com/gdamore/tcell/v2"
)

func TestViewBindingWinsOverGlobal(t *testing.T) {
	r := NewRegistry()
	var got string
	r.AddGlobal("quit", &Action{Key: tcell.KeyRune, Rune: 'q', Handler: func() { got = "global" }})
	r.AddView("queue", "quit", &Action{Key: tcell.KeyRune, Rune: 'q', Handler: func() { got = "view" }})

	ev := tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)
	if !r.HandleEvent("queue", ev) || got != "view" {
		t.Errorf("queue view: handled by %q, want view", got)
	}
	if !r.HandleEvent("capture", ev) || got != "global" {
		t.Errorf("capture view: handled by %q, want global", got)
	}
}

func TestUnmatchedKey(t *testing.T) {
	r := NewRegistry()
	r.AddGlobal("drain", &Action{Key: tcell.KeyRune, Rune: 'd', Handler: func() {}})
	if r.HandleEvent("capture", tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone)) {
		t.Error("x should not match")
	}
	if r.HandleEvent("capture", tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone)) {
		t.Error("Enter should not match a rune binding")
	}
}

func TestHintsOnlyVisible(t *testing.T) {
	r := NewRegistry()
	r.AddGlobal("help", &Action{Key: tcell.KeyRune, Rune: '?', Description: "Help", Visible: true})
	r.AddGlobal("secret", &Action{Key: tcell.KeyRune, Rune: 'z', Description: "Secret"})
	r.AddView("capture", "write", &Action{Key: tcell.KeyRune, Rune: 'i', Description: "Write", Visible: true})

	if got := len(r.Hints("capture")); got != 2 {
		t.Errorf("capture hints = %d, want 2", got)
	}
	if got := len(r.Hints("queue")); got != 1 {
		t.Errorf("queue hints = %d, want 1", got)
	}
}

func TestHintsOrderAndShadowing(t *testing.T) {
	r := NewRegistry()
	r.AddGlobal("quit", &Action{Key: tcell.KeyRune, Rune: 'q', Description: "Quit", Visible: true})
	r.AddGlobal("help", &Action{Key: tcell.KeyRune, Rune: '?', Description: "Help", Visible: true})
	r.AddView("queue", "quit", &Action{Key: tcell.KeyRune, Rune: 'q', Description: "Back", Visible: true})
	r.AddView("queue", "drain", &Action{Key: tcell.KeyRune, Rune: 'd', Description: "Drain", Visible: true})
	r.AddView("queue", "close", &Action{Key: tcell.KeyEscape, Description: "Close", Visible: true})

	got := r.Hints("queue")
	want := []Hint{
		{Key: "q", Description: "Back"},
		{Key: "d", Description: "Drain"},
		{Key: "Esc", Description: "Close"},
		{Key: "?", Description: "Help", Global: true},
	}
	if len(got) != len(want) {
		t.Fatalf("Hints = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Hints[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestHintLabelOverridesKey(t *testing.T) {
	r := NewRegistry()
	r.AddGlobal("command", &Action{Key: tcell.KeyRune, Rune: ':', Label: "Shift-;", Description: "Command", Visible: true})
	if got := r.Hints("capture")[0].Key; got != "Shift-;" {
		t.Errorf("label = %q", got)
	}
}

func TestReRegisterReplaces(t *testing.T) {
	r := NewRegistry()
	var n int
	r.AddGlobal("drain", &Action{Key: tcell.KeyRune, Rune: 'd', Handler: func() { n = 1 }})
	r.AddGlobal("drain", &Action{Key: tcell.KeyRune, Rune: 'd', Handler: func() { n = 2 }})
	r.HandleEvent("capture", tcell.NewEventKey(tcell.KeyRune, 'd', tcell.ModNone))
	if n != 2 {
		t.Errorf("handler = %d, want the second registration", n)
	}
}
