package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/ankouros/rosterwatch/internal/config"
	"github.com/ankouros/rosterwatch/internal/devdata"
	"github.com/ankouros/rosterwatch/internal/feed"
	"github.com/ankouros/rosterwatch/internal/poller"
	"github.com/ankouros/rosterwatch/internal/portal"
	"github.com/ankouros/rosterwatch/internal/presenter"
	"github.com/ankouros/rosterwatch/internal/rpc"
	"github.com/ankouros/rosterwatch/internal/ui"
)

type Options struct {
	SettingsPath string
	PortalURL    string
	Interval     time.Duration
	Dev          bool
}

// NewLogger returns the process logger: text on stderr, debug level in dev mode.
func NewLogger(dev bool) *slog.Logger {
	level := slog.LevelInfo
	if dev {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func Run(opts Options, log *slog.Logger) error {
	if runtime.GOOS != "linux" {
		return errors.New("rosterwatch currently targets linux")
	}

	path := opts.SettingsPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return fmt.Errorf("settings path: %w", err)
		}
		path = p
	}

	store := config.NewStore(path)
	if _, err := store.Load(); err != nil {
		// Same as a first run: start from defaults and overwrite on next save.
		log.Warn("settings load failed, using defaults", "path", path, "error", err)
	}

	f := feed.New()

	pcfg := poller.Config{Interval: opts.Interval, Dev: opts.Dev}
	if opts.Dev {
		gen, err := devdata.NewGenerator(nil)
		if err != nil {
			return err
		}
		pcfg.Source = gen
		log.Info("developer mode enabled")
	}

	p, err := poller.New(pcfg, store, portal.NewClient(opts.PortalURL), f,
		poller.WithLogger(log.With("component", "poller")))
	if err != nil {
		return err
	}

	pres, err := presenter.New(store, nil, log.With("component", "presenter"))
	if err != nil {
		return err
	}

	h, err := rpc.NewHandler(p, pres)
	if err != nil {
		return err
	}

	w, err := ui.NewWindow(h, pres, f, log.With("component", "ui"), opts.Dev)
	if err != nil {
		return err
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go p.Run(ctx)

	w.Run()

	// Detach before stopping the poller so a cycle cut short by cancel
	// never reaches a window that is being destroyed.
	f.Close()
	cancel()
	return nil
}
