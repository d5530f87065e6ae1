package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/matheus3301/nikki/internal/profile"
	"github.com/matheus3301/nikki/internal/tui"
	"github.com/matheus3301/nikki/internal/tui/client"
)

const startTimeout = 10 * time.Second

func main() {
	profileFlag := flag.String("profile", "", "profile name (overrides config default)")
	noStart := flag.Bool("no-start", false, "fail instead of starting nikkid when it is not running")
	flag.Parse()

	name := profile.Resolve(*profileFlag)
	if err := profile.ValidateName(name); err != nil {
		fail(err)
	}

	socketPath := profile.SocketPath(name)
	if err := ensureDaemon(name, socketPath, !*noStart); err != nil {
		fail(err)
	}

	c, err := client.New(socketPath)
	if err != nil {
		fail(fmt.Errorf("connect to daemon: %w", err))
	}
	defer func() { _ = c.Close() }()

	if err := tui.NewApp(c, name).Run(); err != nil {
		fail(err)
	}
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "nikkitui: %v\n", err)
	os.Exit(1)
}

// ensureDaemon returns once a daemon answers on socketPath, starting one
// for the profile first when autostart is set.
func ensureDaemon(name, socketPath string, autostart bool) error {
	if probeDaemon(socketPath) {
		return nil
	}
	if !autostart {
		return fmt.Errorf("daemon not running for profile %q", name)
	}

	fmt.Fprintf(os.Stderr, "starting nikkid for profile %q...\n", name)
	if err := startDaemon(name); err != nil {
		return fmt.Errorf("start daemon: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), startTimeout)
	defer cancel()
	ticker := time.NewTicker(300 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return errors.New("daemon did not become ready, see its log in " + profile.LogDir(name))
		case <-ticker.C:
			if probeDaemon(socketPath) {
				return nil
			}
		}
	}
}

// probeDaemon reports whether a daemon answers Status on socketPath. A
// bare socket connect is not enough: a stale socket file accepts nothing.
func probeDaemon(socketPath string) bool {
	if _, err := os.Stat(socketPath); err != nil {
		return false
	}
	c, err := client.New(socketPath)
	if err != nil {
		return false
	}
	defer func() { _ = c.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err = c.Status(ctx)
	return err == nil
}

// startDaemon runs nikkid from next to this binary, or from PATH.
func startDaemon(name string) error {
	bin := "nikkid"
	if exe, err := os.Executable(); err == nil {
		if sibling := filepath.Join(filepath.Dir(exe), "nikkid"); fileExists(sibling) {
			bin = sibling
		}
	}
	if _, err := exec.LookPath(bin); err != nil {
		return err
	}

	cmd := exec.Command(bin, "--profile", name)
	cmd.Stderr = os.Stderr
	return cmd.Start()
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
