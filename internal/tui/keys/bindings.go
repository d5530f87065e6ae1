package keys

import "github.com/gdamore/tcell/v2"

// Action is one key binding. Label is the key as shown in the menu.
type Action struct {
	Key         tcell.Key
	Rune        rune
	Label       string
	Description string
	Handler     func()
	Visible     bool
}

// Hint is a visible binding as listed in the menu.
type Hint struct {
	Key         string
	Description string
	Global      bool
}

// Matches reports whether ev triggers the action.
func (a *Action) Matches(ev *tcell.EventKey) bool {
	if a.Key != tcell.KeyRune {
		return ev.Key() == a.Key
	}
	return ev.Key() == tcell.KeyRune && ev.Rune() == a.Rune
}

type binding struct {
	name   string
	action *Action
	global bool
}

// Registry holds global and per-page bindings in registration order.
// A page binding shadows a global one with the same name.
type Registry struct {
	global []binding
	views  map[string][]binding
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{views: make(map[string][]binding)}
}

// AddGlobal registers a binding active on every page.
func (r *Registry) AddGlobal(name string, action *Action) {
	r.global = upsert(r.global, binding{name: name, action: action, global: true})
}

// AddView registers a binding active only on view.
func (r *Registry) AddView(view, name string, action *Action) {
	r.views[view] = upsert(r.views[view], binding{name: name, action: action})
}

func upsert(list []binding, b binding) []binding {
	for i := range list {
		if list[i].name == b.name {
			list[i] = b
			return list
		}
	}
	return append(list, b)
}

// active lists the bindings for view, page bindings first.
func (r *Registry) active(view string) []binding {
	page := r.views[view]
	out := make([]binding, 0, len(page)+len(r.global))
	shadowed := make(map[string]bool, len(page))
	for _, b := range page {
		out = append(out, b)
		shadowed[b.name] = true
	}
	for _, b := range r.global {
		if !shadowed[b.name] {
			out = append(out, b)
		}
	}
	return out
}

// Hints lists the visible bindings on view, page bindings first.
func (r *Registry) Hints(view string) []Hint {
	var hints []Hint
	for _, b := range r.active(view) {
		if !b.action.Visible {
			continue
		}
		hints = append(hints, Hint{
			Key:         b.action.label(),
			Description: b.action.Description,
			Global:      b.global,
		})
	}
	return hints
}

func (a *Action) label() string {
	switch {
	case a.Label != "":
		return a.Label
	case a.Key == tcell.KeyRune:
		return string(a.Rune)
	default:
		return tcell.KeyNames[a.Key]
	}
}

// HandleEvent runs the first binding on view that matches ev and reports
// whether one did.
func (r *Registry) HandleEvent(view string, ev *tcell.EventKey) bool {
	for _, b := range r.active(view) {
		if b.action.Matches(ev) && b.action.Handler != nil {
			b.action.Handler()
			return true
		}
	}
	return false
}
