package tui

import (
	"slices"
	"strings"
)

// Command is a parsed ':' command line.
type Command struct {
	Name string
	Args string
}

// commandAliases maps short forms to command names.
var commandAliases = map[string]string{
	"q":  "quit",
	"h":  "help",
	"u":  "upload",
	"s":  "sheet",
	"dr": "drain",
}

// commandNames lists every command runCommand understands.
var commandNames = []string{
	"clear", "drain", "help", "journal", "queue", "quit", "sheet", "sheets", "upload",
}

// ParseCommand splits input (without the ':') into a lower-cased command
// name with aliases resolved, and its trimmed arguments.
func ParseCommand(input string) Command {
	name, args, _ := strings.Cut(strings.TrimSpace(input), " ")
	name = strings.ToLower(name)
	if full, ok := commandAliases[name]; ok {
		name = full
	}
	return Command{Name: name, Args: strings.TrimSpace(args)}
}

// Known reports whether c names a command.
func (c Command) Known() bool {
	return slices.Contains(commandNames, c.Name)
}

// CommandNames returns the command names in sorted order.
func CommandNames() []string {
	return slices.Clone(commandNames)
}
