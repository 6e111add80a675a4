package poller

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/ankouros/rosterwatch/internal/model"
	"github.com/ankouros/rosterwatch/internal/portal"
)

var ErrDevModeDisabled = errors.New("poller: developer mode not enabled")

// Poller owns the credential and the poll schedule. It never reads
// presentation state; everything it learns goes out through the Publisher.
type Poller struct {
	cfg   Config
	store CredentialStore
	fetch Fetcher
	pub   Publisher
	clock Clock
	log   *slog.Logger

	inFlight atomic.Int32
}

type Option func(*Poller)

func WithClock(c Clock) Option         { return func(p *Poller) { p.clock = c } }
func WithLogger(l *slog.Logger) Option { return func(p *Poller) { p.log = l } }

func New(cfg Config, store CredentialStore, fetch Fetcher, pub Publisher, opts ...Option) (*Poller, error) {
	if store == nil || fetch == nil || pub == nil {
		return nil, errors.New("poller: store, fetcher and publisher are required")
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Dev && cfg.Source == nil {
		return nil, errors.New("poller: dev mode requires a roster source")
	}
	p := &Poller{
		cfg:   cfg,
		store: store,
		fetch: fetch,
		pub:   pub,
		clock: realClock{},
		log:   slog.Default(),
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

func (p *Poller) GetCredential() string { return p.store.Credential() }

// SetCredential trims and stores the token, then starts one poll right away
// without waiting for it. A persistence error is returned after the poll has
// been started.
func (p *Poller) SetCredential(token string) error {
	err := p.store.SetCredential(strings.TrimSpace(token))
	if err != nil {
		p.log.Error("credential save failed", "error", err)
	}
	go p.PollNow(context.Background())
	return err
}

// PollNow runs exactly one fetch-normalize-publish cycle and returns after
// the Snapshot has been published.
func (p *Poller) PollNow(ctx context.Context) {
	p.inFlight.Add(1)
	p.run(ctx)
}

// run expects inFlight to have been incremented by the caller.
func (p *Poller) run(ctx context.Context) {
	defer p.inFlight.Add(-1)

	s := p.cycle(ctx)
	if !p.pub.Publish(s) {
		p.log.Debug("snapshot dropped, no listener")
	}
}

// Simulate publishes a generated roster. Only available in developer mode.
func (p *Poller) Simulate() error {
	if !p.cfg.Dev {
		return ErrDevModeDisabled
	}
	s := p.snapshot(p.cfg.Source.Roster())
	p.log.Info("dev simulated update", "visible", len(s.Names), "servers", len(s.Servers))
	p.pub.Publish(s)
	return nil
}

// Dev reports whether developer mode is on.
func (p *Poller) Dev() bool { return p.cfg.Dev }

// cycle never fails: every error becomes an ok=false Snapshot.
func (p *Poller) cycle(ctx context.Context) model.Snapshot {
	cred := p.store.Credential()
	if cred == "" {
		p.log.Warn("poll skipped", "reason", "missing credential")
		return model.FailedSnapshot(MissingCredentialMsg)
	}

	r, err := p.fetch.Fetch(ctx, cred)
	if err != nil {
		p.log.Error("poll failed", "error", err)
		return model.FailedSnapshot(describe(err))
	}

	s := p.snapshot(*r)
	p.log.Info("poll ok", "visible", len(s.Names), "hidden", s.Hidden)
	return s
}

func (p *Poller) snapshot(r portal.Roster) model.Snapshot {
	raw := make([]string, 0, len(r.Players))
	for _, pl := range r.Players {
		raw = append(raw, pl.VisibleName)
	}
	return model.NewSnapshot(NormalizeNames(raw), r.Hidden, r.Servers, p.clock.Now())
}

func describe(err error) string {
	var se *portal.StatusError
	switch {
	case errors.As(err, &se):
		return se.Error()
	case errors.Is(err, portal.ErrNonJSON):
		return "Non-JSON response from portal"
	default:
		return err.Error()
	}
}

// NormalizeNames collapses whitespace runs to one space, trims, and drops
// empty results. Order is kept and duplicates are not removed.
func NormalizeNames(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, n := range raw {
		n = strings.Join(strings.Fields(n), " ")
		if n == "" {
			continue
		}
		out = append(out, n)
	}
	return out
}
