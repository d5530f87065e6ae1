package ui

// MenuHint is one key shown in the header menu.
type MenuHint struct {
	Key         string
	Description string
	// Global hints apply on every page and are drawn in the second color.
	Global bool
}

// Component is a page of the app. Name is its crumb title.
type Component interface {
	Name() string
	Hints() []MenuHint
}
