package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/matheus3301/nikki/internal/config"
	"github.com/matheus3301/nikki/internal/daemon"
	"github.com/matheus3301/nikki/internal/profile"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func main() {
	profileFlag := flag.String("profile", "", "profile name (overrides config default)")
	check := flag.Bool("check", false, "validate settings.toml and exit")
	flag.Parse()

	name := profile.Resolve(*profileFlag)
	if err := profile.ValidateName(name); err != nil {
		fail(err)
	}

	if *check {
		s, err := config.LoadSettings(profile.SettingsPath(name))
		if err != nil {
			fail(err)
		}
		fmt.Printf("profile %s ok: sheet %q of %s\n", name, s.SheetName, s.SpreadsheetID)
		return
	}

	app := fx.New(
		daemon.Module(daemon.Params{Profile: name}),
		// fx events go to the profile log instead of stderr.
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger.Named("fx")}
		}),
	)
	app.Run()
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "nikkid: %v\n", err)
	os.Exit(1)
}
