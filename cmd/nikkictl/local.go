package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"os/signal"
	"runtime"

	"github.com/matheus3301/nikki/internal/config"
	"github.com/matheus3301/nikki/internal/hotkey"
	"github.com/matheus3301/nikki/internal/profile"
	"github.com/matheus3301/nikki/internal/remote/google"
	"github.com/skip2/go-qrcode"
)

func cmdInit(name string) {
	if err := profile.EnsureDir(name); err != nil {
		fatalf("error: %v", err)
	}
	path := profile.SettingsPath(name)
	if _, err := os.Stat(path); err == nil {
		fmt.Printf("Settings already exist at %s\n", path)
		return
	} else if !errors.Is(err, fs.ErrNotExist) {
		fatalf("error: %v", err)
	}
	if err := config.SaveSettings(path, config.Sample()); err != nil {
		fatalf("error: %v", err)
	}
	fmt.Printf("Wrote %s\n", path)
	fmt.Println("Set spreadsheet_id, put your OAuth client file next to it as credentials.json, then run: nikkictl auth")
}

func cmdUse(name string) {
	if err := profile.ValidateName(name); err != nil {
		fatalf("error: %v", err)
	}
	if _, err := os.Stat(profile.SettingsPath(name)); err != nil {
		fatalf("error: profile %q has no settings, run: nikkictl --profile %s init", name, name)
	}
	if err := config.SaveGlobal(profile.GlobalConfigPath(), &config.Global{DefaultProfile: name}); err != nil {
		fatalf("error: %v", err)
	}
	fmt.Printf("Default profile is now %q\n", name)
}

func cmdAuth(name string) {
	s := readSettings(name)
	cfg, err := google.OAuthConfig(profile.ResolvePath(name, s.CredentialsFile))
	if err != nil {
		fatalf("error: %v", err)
	}
	tokenPath := profile.TokenPath(name)
	if s.TokenFile != "" {
		tokenPath = profile.ResolvePath(name, s.TokenFile)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = google.Authorize(ctx, cfg, tokenPath, func(authURL string) {
		fmt.Println("Open this URL to grant access:")
		fmt.Println()
		fmt.Println(authURL)
		fmt.Println()
		if qr, err := qrcode.New(authURL, qrcode.Medium); err == nil {
			fmt.Println(qr.ToSmallString(false))
		}
		fmt.Println("Waiting for the browser to redirect back...")
	})
	if err != nil {
		fatalf("error: %v", err)
	}
	fmt.Printf("Token saved to %s\n", tokenPath)
	fmt.Println("Restart nikkid (or wait for the next session check) to pick it up.")
}

func cmdHotkeySet(name, combo string) {
	c, err := hotkey.Parse(combo)
	if err != nil {
		fatalf("error: %v", err)
	}
	s := readSettings(name)
	s.Hotkey = c.String()
	if err := config.SaveSettings(profile.SettingsPath(name), s); err != nil {
		fatalf("error: %v", err)
	}
	fmt.Printf("Hotkey set to %s\n", s.Hotkey)
}

func cmdOpen(name, what string) {
	s := readSettings(name)
	var url string
	switch what {
	case "sheet":
		if s.SpreadsheetID == "" || s.SpreadsheetID == config.PlaceholderSpreadsheetID {
			fatalf("error: spreadsheet_id is not set")
		}
		url = google.SpreadsheetURL(s.SpreadsheetID)
	case "folder":
		url = google.FolderURL(s.DriveFolderID)
	default:
		fatalf("usage: nikkictl open <sheet|folder>")
	}
	fmt.Println(url)
	openBrowser(url)
}

func readSettings(name string) *config.Settings {
	s, err := config.ReadSettings(profile.SettingsPath(name))
	if err != nil {
		fatalf("error: %v (run nikkictl init first)", err)
	}
	return s
}

// openBrowser opens the given URL in the user's default browser.
func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	case "darwin":
		cmd = exec.Command("open", url)
	default: // linux, freebsd, etc.
		cmd = exec.Command("xdg-open", url)
	}
	_ = cmd.Start()
}
