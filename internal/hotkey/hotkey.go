package hotkey

import (
	"fmt"
	"strings"
)

// Modifier order used by Combo.String.
var modifierOrder = []string{"ctrl", "shift", "alt", "super"}

var modifierAliases = map[string]string{
	"ctrl":    "ctrl",
	"control": "ctrl",
	"shift":   "shift",
	"alt":     "alt",
	"option":  "alt",
	"win":     "super",
	"windows": "super",
	"cmd":     "super",
	"super":   "super",
}

var keyAliases = map[string]string{
	"space":     "space",
	"enter":     "enter",
	"return":    "enter",
	"esc":       "esc",
	"escape":    "esc",
	"tab":       "tab",
	"backspace": "backspace",
	"delete":    "delete",
	"del":       "delete",
	"insert":    "insert",
	"home":      "home",
	"end":       "end",
	"pageup":    "pageup",
	"pagedown":  "pagedown",
	"up":        "up",
	"down":      "down",
	"left":      "left",
	"right":     "right",
}

// Combo is a parsed key combination.
type Combo struct {
	Modifiers []string
	Key       string
}

// String renders the canonical form, e.g. "ctrl+shift+space".
func (c Combo) String() string {
	parts := append([]string{}, c.Modifiers...)
	parts = append(parts, c.Key)
	return strings.Join(parts, "+")
}

// Has reports whether the combo includes the given canonical modifier.
func (c Combo) Has(mod string) bool {
	for _, m := range c.Modifiers {
		if m == mod {
			return true
		}
	}
	return false
}

// Parse reads a "+"-separated hotkey string. Exactly one non-modifier key is
// required; modifiers may appear in any order and are case-insensitive.
func Parse(s string) (Combo, error) {
	if strings.TrimSpace(s) == "" {
		return Combo{}, fmt.Errorf("empty hotkey")
	}

	seen := make(map[string]bool)
	var key string
	for _, raw := range strings.Split(s, "+") {
		part := strings.ToLower(strings.TrimSpace(raw))
		if part == "" {
			return Combo{}, fmt.Errorf("hotkey %q: empty component", s)
		}
		if mod, ok := modifierAliases[part]; ok {
			if seen[mod] {
				return Combo{}, fmt.Errorf("hotkey %q: duplicate modifier %s", s, mod)
			}
			seen[mod] = true
			continue
		}
		k, err := parseKey(part)
		if err != nil {
			return Combo{}, fmt.Errorf("hotkey %q: %w", s, err)
		}
		if key != "" {
			return Combo{}, fmt.Errorf("hotkey %q: more than one key (%s, %s)", s, key, k)
		}
		key = k
	}
	if key == "" {
		return Combo{}, fmt.Errorf("hotkey %q: no key besides modifiers", s)
	}

	c := Combo{Key: key}
	for _, m := range modifierOrder {
		if seen[m] {
			c.Modifiers = append(c.Modifiers, m)
		}
	}
	return c, nil
}

func parseKey(part string) (string, error) {
	if k, ok := keyAliases[part]; ok {
		return k, nil
	}
	if len([]rune(part)) == 1 {
		return part, nil
	}
	if len(part) >= 2 && part[0] == 'f' {
		var n int
		if _, err := fmt.Sscanf(part[1:], "%d", &n); err == nil && n >= 1 && n <= 24 && fmt.Sprintf("f%d", n) == part {
			return part, nil
		}
	}
	return "", fmt.Errorf("unknown key %q", part)
}
