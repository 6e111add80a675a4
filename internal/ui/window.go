package ui

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	jsoniter "github.com/json-iterator/go"
	webview "github.com/webview/webview_go"

	"github.com/ankouros/rosterwatch/internal/feed"
	"github.com/ankouros/rosterwatch/internal/model"
	"github.com/ankouros/rosterwatch/internal/presenter"
	"github.com/ankouros/rosterwatch/internal/rpc"
)

//go:embed assets/*
var assets embed.FS

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Window struct {
	wv   webview.WebView
	pres *presenter.Presenter
	log  *slog.Logger
}

// NewWindow creates the webview, subscribes to f and wires the rpc binding.
// It installs the page chime on pres.
func NewWindow(h *rpc.Handler, pres *presenter.Presenter, f *feed.Feed, log *slog.Logger, debug bool) (*Window, error) {
	if h == nil || pres == nil || f == nil {
		return nil, fmt.Errorf("ui: rpc handler, presenter and feed are required")
	}
	if log == nil {
		log = slog.Default()
	}

	w := &Window{
		wv:   webview.New(debug),
		pres: pres,
		log:  log,
	}
	if w.wv == nil {
		return nil, fmt.Errorf("ui: failed to create webview")
	}

	w.wv.SetTitle("Arelith Players")
	w.wv.SetSize(1280, 900, webview.HintNone)
	w.wv.SetSize(1100, 740, webview.HintMin)
	w.setNativeIcon()
	pres.SetChime(pageChime{w})

	// Single RPC entrypoint expected by app.js: window.rpc(JSON.stringify(req)) -> JSON string
	w.wv.Bind("rpc", h.Handle)
	h.SetPollDone(func(id int64) {
		w.wv.Dispatch(func() {
			w.wv.Eval(fmt.Sprintf("window.onPollDone && window.onPollDone(%d);", id))
		})
	})

	// Snapshots arrive on poller goroutines; presenter state is only touched
	// from the UI thread.
	f.Subscribe(func(s model.Snapshot) {
		w.wv.Dispatch(func() {
			v, _ := w.pres.Apply(s)
			w.pushView(v)
		})
	})

	html, err := w.buildInlinedHTML()
	if err != nil {
		return nil, err
	}
	w.wv.SetHtml(html)

	return w, nil
}

func (w *Window) pushView(v presenter.View) {
	b, err := json.Marshal(v)
	if err != nil {
		w.log.Error("view encode failed", "error", err)
		return
	}
	w.wv.Eval(fmt.Sprintf("window.onPlayersUpdate && window.onPlayersUpdate(%s);", b))
}

// pageChime plays the newcomer sound in the page.
type pageChime struct{ w *Window }

// Play only queues the sound; playback errors stay in the page.
func (c pageChime) Play() error {
	if c.w == nil || c.w.wv == nil {
		return errors.New("ui: no window")
	}
	c.w.wv.Dispatch(func() {
		c.w.wv.Eval("window.playChime && window.playChime();")
	})
	return nil
}

func (w *Window) buildInlinedHTML() (string, error) {
	index, err := assets.ReadFile("assets/index.html")
	if err != nil {
		return "", err
	}
	appCSS, _ := assets.ReadFile("assets/app.css")
	appJS, _ := assets.ReadFile("assets/app.js")

	s := string(index)

	// Replace external CSS links with inlined styles
	s = strings.ReplaceAll(s,
		`<link rel="stylesheet" href="app.css" />`,
		"<style>\n"+string(appCSS)+"\n</style>",
	)

	// Replace external scripts with inline scripts
	s = strings.ReplaceAll(s,
		`<script src="app.js"></script>`,
		"<script>\n"+string(appJS)+"\n</script>",
	)

	return s, nil
}

func (w *Window) Run() { w.wv.Run() }

func (w *Window) Close() {
	if w.wv != nil {
		w.wv.Destroy()
	}
}
