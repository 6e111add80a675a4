// Package rpc implements the request/response surface the page calls
// through window.rpc(JSON.stringify(req)). Every reply is a JSON object with
// an "ok" field; failures add "error" (a stable code) and often "detail".
package rpc

import (
	"context"
	"errors"
	"sync"

	jsoniter "github.com/json-iterator/go"

	"github.com/ankouros/rosterwatch/internal/buildinfo"
	"github.com/ankouros/rosterwatch/internal/poller"
	"github.com/ankouros/rosterwatch/internal/presenter"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Backend is the poller surface the page may call into.
type Backend interface {
	GetCredential() string
	SetCredential(token string) error
	PollNow(ctx context.Context)
	Simulate() error
	Dev() bool
}

type Request struct {
	Type string `json:"type"`

	ID    int64  `json:"id,omitempty"`    // poll_now
	Token string `json:"token,omitempty"` // auth_set
	Name  string `json:"name,omitempty"`  // filter_add / filter_remove
	Value bool   `json:"value,omitempty"` // exact_set / filtered_only_set
}

type Resp map[string]any

func ok(extra Resp) string {
	if extra == nil {
		extra = Resp{}
	}
	extra["ok"] = true
	b, _ := json.Marshal(extra)
	return string(b)
}

func fail(code string, extra Resp) string {
	if extra == nil {
		extra = Resp{}
	}
	extra["ok"] = false
	extra["error"] = code
	b, _ := json.Marshal(extra)
	return string(b)
}

type Handler struct {
	back Backend
	pres *presenter.Presenter

	mu       sync.Mutex
	pollDone func(id int64)
}

func NewHandler(back Backend, pres *presenter.Presenter) (*Handler, error) {
	if back == nil || pres == nil {
		return nil, errors.New("rpc: backend and presenter are required")
	}
	return &Handler{back: back, pres: pres}, nil
}

// SetPollDone installs the callback run, off the calling goroutine, when a
// poll_now cycle has published its Snapshot. id echoes the request's id.
func (h *Handler) SetPollDone(fn func(id int64)) {
	h.mu.Lock()
	h.pollDone = fn
	h.mu.Unlock()
}

func (h *Handler) pollNow(id int64) {
	h.back.PollNow(context.Background())

	h.mu.Lock()
	fn := h.pollDone
	h.mu.Unlock()
	if fn != nil {
		fn(id)
	}
}

// Handle decodes one request and returns the JSON reply.
func (h *Handler) Handle(payload string) string {
	var req Request
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return fail("bad_request", Resp{"detail": err.Error()})
	}

	switch req.Type {
	case "auth_get":
		return ok(Resp{"credential": h.back.GetCredential()})

	case "auth_set":
		// The credential is live and a poll is under way even when the
		// save fails, so the reply is ok with a warning.
		if err := h.back.SetCredential(req.Token); err != nil {
			return ok(Resp{"warning": "credential_save_failed", "detail": err.Error()})
		}
		return ok(nil)

	case "poll_now":
		// Bindings run on the UI thread; the fetch must not.
		go h.pollNow(req.ID)
		return ok(Resp{"pending": true, "id": req.ID})

	case "view_get":
		return ok(Resp{"view": h.pres.View()})

	case "filter_add":
		v, added, err := h.pres.AddFilter(req.Name)
		if err != nil {
			return fail("filter_save_failed", Resp{"detail": err.Error(), "view": v})
		}
		return ok(Resp{"added": added, "view": v})

	case "filter_remove":
		v, err := h.pres.RemoveFilter(req.Name)
		if err != nil {
			return fail("filter_save_failed", Resp{"detail": err.Error(), "view": v})
		}
		return ok(Resp{"view": v})

	case "exact_set":
		v, err := h.pres.SetExactMatch(req.Value)
		if err != nil {
			return fail("filter_save_failed", Resp{"detail": err.Error(), "view": v})
		}
		return ok(Resp{"view": v})

	case "filtered_only_set":
		v, err := h.pres.SetShowFilteredOnly(req.Value)
		if err != nil {
			return fail("settings_save_failed", Resp{"detail": err.Error(), "view": v})
		}
		return ok(Resp{"view": v})

	case "dev_enabled":
		return ok(Resp{"enabled": h.back.Dev()})

	case "dev_simulate":
		if err := h.back.Simulate(); err != nil {
			if errors.Is(err, poller.ErrDevModeDisabled) {
				return fail("dev_disabled", nil)
			}
			return fail("simulate_failed", Resp{"detail": err.Error()})
		}
		return ok(nil)

	case "about":
		return ok(Resp{
			"text": buildinfo.String() + "\nGo + webview\nSettings: ~/.config/rosterwatch/settings.json",
		})

	default:
		return fail("unknown_rpc", Resp{"type": req.Type})
	}
}
