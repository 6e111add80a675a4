package presenter

import (
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/ankouros/rosterwatch/internal/model"
)

// FilterStore persists the user's filter configuration.
type FilterStore interface {
	FilterSet() model.FilterSet
	SaveFilterSet(model.FilterSet) error
	ShowFilteredOnly() bool
	SetShowFilteredOnly(bool) error
}

// Chime plays the newcomer sound.
type Chime interface {
	Play() error
}

// Presenter turns the latest Snapshot plus the FilterSet into a View and
// decides when to chime. It never performs network I/O.
type Presenter struct {
	mu sync.Mutex

	store FilterStore
	chime Chime
	log   *slog.Logger

	filters  model.FilterSet
	showOnly bool

	last      *model.Snapshot
	memory    map[string]struct{}
	seenFirst bool
}

func New(store FilterStore, chime Chime, log *slog.Logger) (*Presenter, error) {
	if store == nil {
		return nil, errors.New("presenter: filter store is nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Presenter{
		store:    store,
		chime:    chime,
		log:      log,
		filters:  store.FilterSet(),
		showOnly: store.ShowFilteredOnly(),
		memory:   map[string]struct{}{},
	}, nil
}

// SetChime replaces the sound player. nil silences it.
func (p *Presenter) SetChime(c Chime) {
	p.mu.Lock()
	p.chime = c
	p.mu.Unlock()
}

// Apply records s as the latest Snapshot and returns the new view. For ok
// Snapshots it also runs newcomer detection; notified reports whether the
// chime was requested.
func (p *Presenter) Apply(s model.Snapshot) (v View, notified bool) {
	p.mu.Lock()
	if s.OK {
		_, now := matched(s.Names, p.filters.Filters, p.filters.ExactMatch)
		if len(p.filters.Filters) > 0 && p.seenFirst {
			notified = hasNewcomer(now, p.memory)
		}
		p.memory = now
		p.seenFirst = true
	}
	p.last = &s
	v = build(p.last, p.filters, p.showOnly)
	chime := p.chime
	p.mu.Unlock()

	if notified {
		p.ring(chime)
	}
	return v, notified
}

func hasNewcomer(now, prev map[string]struct{}) bool {
	for n := range now {
		if _, ok := prev[n]; !ok {
			return true
		}
	}
	return false
}

func (p *Presenter) ring(c Chime) {
	if c == nil {
		return
	}
	if err := c.Play(); err != nil {
		p.log.Debug("chime failed", "error", err)
	}
}

// View re-evaluates the last Snapshot without changing any state.
func (p *Presenter) View() View {
	p.mu.Lock()
	defer p.mu.Unlock()
	return build(p.last, p.filters, p.showOnly)
}

func (p *Presenter) Filters() model.FilterSet {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.filters.Clone()
}

// AddFilter trims name and appends it unless it is empty or already present
// in any case. added is false when nothing changed.
func (p *Presenter) AddFilter(name string) (v View, added bool, err error) {
	name = strings.TrimSpace(name)

	p.mu.Lock()
	defer p.mu.Unlock()

	if name == "" || p.filters.Contains(name) {
		return build(p.last, p.filters, p.showOnly), false, nil
	}
	p.filters.Filters = append(p.filters.Filters, name)
	err = p.persistLocked()
	return build(p.last, p.filters, p.showOnly), true, err
}

// RemoveFilter drops every filter equal to name ignoring case.
func (p *Presenter) RemoveFilter(name string) (View, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	keep := make([]string, 0, len(p.filters.Filters))
	for _, f := range p.filters.Filters {
		if !strings.EqualFold(f, name) {
			keep = append(keep, f)
		}
	}
	p.filters.Filters = keep
	err := p.persistLocked()
	return build(p.last, p.filters, p.showOnly), err
}

func (p *Presenter) SetExactMatch(exact bool) (View, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.filters.ExactMatch = exact
	err := p.persistLocked()
	return build(p.last, p.filters, p.showOnly), err
}

func (p *Presenter) SetShowFilteredOnly(on bool) (View, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.showOnly = on
	err := p.store.SetShowFilteredOnly(on)
	if err != nil {
		p.log.Error("settings save failed", "error", err)
	}
	return build(p.last, p.filters, p.showOnly), err
}

func (p *Presenter) persistLocked() error {
	if err := p.store.SaveFilterSet(p.filters.Clone()); err != nil {
		p.log.Error("filter save failed", "error", err)
		return err
	}
	return nil
}
