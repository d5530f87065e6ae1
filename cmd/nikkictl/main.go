package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/matheus3301/nikki/internal/profile"
	"github.com/matheus3301/nikki/internal/tui/client"
)

func main() {
	profileFlag := flag.String("profile", "", "profile name (overrides config default)")
	jsonFlag := flag.Bool("json", false, "output in JSON format")
	flag.Parse()

	name := profile.Resolve(*profileFlag)
	if err := profile.ValidateName(name); err != nil {
		fatalf("error: %v", err)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	// Commands that work without a running daemon.
	switch args[0] {
	case "init":
		cmdInit(name)
		return
	case "use":
		if len(args) < 2 {
			fatalf("usage: nikkictl use <profile>")
		}
		cmdUse(args[1])
		return
	case "auth":
		cmdAuth(name)
		return
	case "hotkey":
		if len(args) < 3 || args[1] != "set" {
			fatalf("usage: nikkictl hotkey set <combo>")
		}
		cmdHotkeySet(name, strings.Join(args[2:], ""))
		return
	case "open":
		if len(args) < 2 {
			fatalf("usage: nikkictl open <sheet|folder>")
		}
		cmdOpen(name, args[1])
		return
	}

	c, err := client.New(profile.SocketPath(name))
	if err != nil {
		fatalf("error: cannot connect to daemon for profile %q: %v", name, err)
	}
	defer func() { _ = c.Close() }()

	// Uploads and drains may take a while on a slow link.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	switch args[0] {
	case "status":
		cmdStatus(ctx, c, *jsonFlag)
	case "submit":
		if len(args) < 2 {
			fatalf("usage: nikkictl submit <text>")
		}
		cmdSubmit(ctx, c, strings.Join(args[1:], " "), *jsonFlag)
	case "upload":
		if len(args) < 2 {
			fatalf("usage: nikkictl upload <path>")
		}
		cmdUpload(ctx, c, args[1], *jsonFlag)
	case "drain":
		cmdDrain(ctx, c, *jsonFlag)
	case "queue":
		cmdQueue(ctx, c, *jsonFlag)
	case "history":
		cmdHistory(ctx, c, args[1:], *jsonFlag)
	case "sheets":
		cmdSheets(ctx, c, args[1:], *jsonFlag)
	case "journal":
		cmdJournal(ctx, c, args[1:], *jsonFlag)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: nikkictl [--profile <name>] [--json] <command>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  init                 Create the profile and a sample settings.toml")
	fmt.Fprintln(os.Stderr, "  use <profile>        Make a profile the default")
	fmt.Fprintln(os.Stderr, "  auth                 Authorise Google Sheets and Drive access")
	fmt.Fprintln(os.Stderr, "  status               Show daemon status")
	fmt.Fprintln(os.Stderr, "  submit <text>        Send a note")
	fmt.Fprintln(os.Stderr, "  upload <path>        Upload a file and print its link")
	fmt.Fprintln(os.Stderr, "  drain                Deliver queued notes now")
	fmt.Fprintln(os.Stderr, "  queue                List queued notes")
	fmt.Fprintln(os.Stderr, "  history [n]          Show recent notes")
	fmt.Fprintln(os.Stderr, "  history clear        Clear recent notes")
	fmt.Fprintln(os.Stderr, "  sheets list          List spreadsheet tabs")
	fmt.Fprintln(os.Stderr, "  sheets select <tab>  Write to another tab")
	fmt.Fprintln(os.Stderr, "  journal [n]          Show delivered notes")
	fmt.Fprintln(os.Stderr, "  hotkey set <combo>   Change the capture hotkey")
	fmt.Fprintln(os.Stderr, "  open <sheet|folder>  Open the spreadsheet or upload folder")
}

func cmdStatus(ctx context.Context, c *client.Client, jsonOut bool) {
	info, err := c.Status(ctx)
	if err != nil {
		fatalf("error: %v", err)
	}
	if jsonOut {
		outputJSON(info)
		return
	}
	fmt.Printf("Profile:    %s\n", info.Profile)
	fmt.Printf("Status:     %s (since %s)\n", info.State, info.Since)
	fmt.Printf("Sheet:      %s\n", info.Sheet)
	fmt.Printf("Queued:     %d\n", info.QueueDepth)
	fmt.Printf("Delivered:  %d\n", info.Deliveries)
	if info.LastDrained != "" {
		fmt.Printf("Last drain: %s\n", info.LastDrained)
	}
	fmt.Printf("Uptime:     %s\n", time.Duration(info.UptimeSeconds)*time.Second)
}

func cmdSubmit(ctx context.Context, c *client.Client, text string, jsonOut bool) {
	res, err := c.Submit(ctx, text)
	if err != nil {
		fatalf("error: %v", err)
	}
	if jsonOut {
		outputJSON(res)
		return
	}
	if res.Delivered {
		fmt.Printf("Sent (%s)\n", res.Timestamp)
		return
	}
	fmt.Printf("Offline, queued (%s): %s\n", res.Timestamp, res.Error)
}

func cmdUpload(ctx context.Context, c *client.Client, path string, jsonOut bool) {
	url, err := c.Upload(ctx, path)
	if err != nil {
		fatalf("error: %v", err)
	}
	if jsonOut {
		outputJSON(map[string]string{"url": url})
		return
	}
	fmt.Println(url)
}

func cmdDrain(ctx context.Context, c *client.Client, jsonOut bool) {
	res, err := c.Drain(ctx)
	if err != nil {
		fatalf("error: %v", err)
	}
	if jsonOut {
		outputJSON(res)
		return
	}
	if res.Skipped {
		fmt.Printf("A drain is already running (%d queued)\n", res.Remaining)
		return
	}
	fmt.Printf("Delivered %d, %d still queued\n", res.Delivered, res.Remaining)
}

func cmdQueue(ctx context.Context, c *client.Client, jsonOut bool) {
	items, err := c.Queue(ctx)
	if err != nil {
		fatalf("error: %v", err)
	}
	if jsonOut {
		outputJSON(items)
		return
	}
	if len(items) == 0 {
		fmt.Println("Queue is empty.")
		return
	}
	for _, it := range items {
		fmt.Printf("%s  %s\n", it.Timestamp, it.Text)
	}
}

func cmdHistory(ctx context.Context, c *client.Client, args []string, jsonOut bool) {
	if len(args) > 0 && args[0] == "clear" {
		if err := c.ClearHistory(ctx); err != nil {
			fatalf("error: %v", err)
		}
		fmt.Println("History cleared.")
		return
	}
	n := parseCount(args, 0)
	texts, err := c.History(ctx, n)
	if err != nil {
		fatalf("error: %v", err)
	}
	if jsonOut {
		outputJSON(texts)
		return
	}
	for i, t := range texts {
		fmt.Printf("%2d. %s\n", i+1, t)
	}
}

func cmdSheets(ctx context.Context, c *client.Client, args []string, jsonOut bool) {
	if len(args) == 0 {
		fatalf("usage: nikkictl sheets <list|select <tab>>")
	}
	switch args[0] {
	case "list":
		names, err := c.ListSheets(ctx)
		if err != nil {
			fatalf("error: %v", err)
		}
		if jsonOut {
			outputJSON(names)
			return
		}
		for _, n := range names {
			fmt.Println(n)
		}
	case "select":
		if len(args) < 2 {
			fatalf("usage: nikkictl sheets select <tab>")
		}
		tab := strings.Join(args[1:], " ")
		if err := c.SelectSheet(ctx, tab); err != nil {
			fatalf("error: %v", err)
		}
		fmt.Printf("Writing to %q\n", tab)
	default:
		fatalf("unknown sheets subcommand: %s", args[0])
	}
}

func cmdJournal(ctx context.Context, c *client.Client, args []string, jsonOut bool) {
	items, err := c.Journal(ctx, parseCount(args, 20))
	if err != nil {
		fatalf("error: %v", err)
	}
	if jsonOut {
		outputJSON(items)
		return
	}
	for _, it := range items {
		fmt.Printf("%s  %-6s  %s  %s\n", it.Timestamp, it.Via, it.Sheet, it.Text)
	}
}

func parseCount(args []string, def int) int {
	if len(args) == 0 {
		return def
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		fatalf("invalid count %q", args[0])
	}
	return n
}

func outputJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "json encode error: %v\n", err)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
