package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/ankouros/rosterwatch/internal/app"
	"github.com/ankouros/rosterwatch/internal/buildinfo"
	"github.com/ankouros/rosterwatch/internal/poller"
)

var (
	showVersion  = flag.Bool("version", false, "print version and exit")
	devMode      = flag.Bool("dev", false, "enable developer mode (devtools, simulated updates)")
	settingsPath = flag.String("settings", "", "settings file (default ~/.config/rosterwatch/settings.json)")
	portalURL    = flag.String("portal-url", "", "roster endpoint override")
	interval     = flag.Duration("interval", poller.DefaultInterval, "poll interval")
)

func main() {
	flag.Parse()
	if *showVersion {
		fmt.Println(buildinfo.String())
		os.Exit(0)
	}

	log := app.NewLogger(*devMode)
	err := app.Run(app.Options{
		SettingsPath: *settingsPath,
		PortalURL:    *portalURL,
		Interval:     *interval,
		Dev:          *devMode,
	}, log)
	if err != nil {
		log.Error("fatal", "error", err)
		os.Exit(1)
	}
}
