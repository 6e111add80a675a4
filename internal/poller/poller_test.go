package poller

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ankouros/rosterwatch/internal/model"
	"github.com/ankouros/rosterwatch/internal/portal"
)

type fakeStore struct {
	mu    sync.Mutex
	cred  string
	saves int
	err   error
}

func (f *fakeStore) Credential() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cred
}

func (f *fakeStore) SetCredential(token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cred = token
	f.saves++
	return f.err
}

type recorder struct {
	mu   sync.Mutex
	got  []model.Snapshot
	seen chan struct{}
}

func newRecorder() *recorder { return &recorder{seen: make(chan struct{}, 16)} }

func (r *recorder) Publish(s model.Snapshot) bool {
	r.mu.Lock()
	r.got = append(r.got, s)
	r.mu.Unlock()
	r.seen <- struct{}{}
	return true
}

func (r *recorder) last(t *testing.T) model.Snapshot {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.got) == 0 {
		t.Fatal("nothing published")
	}
	return r.got[len(r.got)-1]
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func newTestPoller(t *testing.T, store CredentialStore, fetch Fetcher, pub Publisher) *Poller {
	t.Helper()
	p, err := New(Config{}, store, fetch, pub,
		WithLogger(quietLogger()),
		WithClock(fixedClock{time.UnixMilli(1_700_000_000_000)}),
	)
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}
	return p
}

func TestPollNowMissingCredentialMakesNoRequest(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	rec := newRecorder()
	p := newTestPoller(t, &fakeStore{}, portal.NewClient(srv.URL), rec)
	p.PollNow(context.Background())

	s := rec.last(t)
	if s.OK {
		t.Fatal("expected ok=false")
	}
	if !strings.Contains(strings.ToLower(s.Error), "missing credential") {
		t.Fatalf("unexpected error: %q", s.Error)
	}
	if hits.Load() != 0 {
		t.Fatalf("expected zero requests, got %d", hits.Load())
	}
}

func TestPollNowHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, "server error")
	}))
	defer srv.Close()

	rec := newRecorder()
	p := newTestPoller(t, &fakeStore{cred: "tok"}, portal.NewClient(srv.URL), rec)
	p.PollNow(context.Background())

	s := rec.last(t)
	if s.OK {
		t.Fatal("expected ok=false")
	}
	if !strings.Contains(s.Error, "500") || !strings.Contains(s.Error, "server error") {
		t.Fatalf("unexpected error: %q", s.Error)
	}
}

func TestPollNowNormalizes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"players":[{"visibleName":"  Ada   Lin "}],"hidden":2,"servers":[]}`)
	}))
	defer srv.Close()

	rec := newRecorder()
	p := newTestPoller(t, &fakeStore{cred: "tok"}, portal.NewClient(srv.URL), rec)
	p.PollNow(context.Background())

	s := rec.last(t)
	if !s.OK {
		t.Fatalf("expected ok=true, error=%q", s.Error)
	}
	if len(s.Names) != 1 || s.Names[0] != "Ada Lin" {
		t.Fatalf("names=%q", s.Names)
	}
	if s.Hidden != 2 {
		t.Fatalf("hidden=%d", s.Hidden)
	}
	if s.TS != 1_700_000_000_000 {
		t.Fatalf("timestamp not taken from clock: %d", s.TS)
	}
}

func TestPollNowDefaults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"players":[{"visibleName":"Mogg"},{"visibleName":"   "},{}]}`)
	}))
	defer srv.Close()

	rec := newRecorder()
	p := newTestPoller(t, &fakeStore{cred: "tok"}, portal.NewClient(srv.URL), rec)
	p.PollNow(context.Background())

	s := rec.last(t)
	if !s.OK || len(s.Names) != 1 || s.Hidden != 0 || len(s.Servers) != 0 {
		t.Fatalf("unexpected snapshot: %+v", s)
	}
}

func TestPollNowNonJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "<html>")
	}))
	defer srv.Close()

	rec := newRecorder()
	p := newTestPoller(t, &fakeStore{cred: "tok"}, portal.NewClient(srv.URL), rec)
	p.PollNow(context.Background())

	s := rec.last(t)
	if s.OK || !strings.Contains(s.Error, "Non-JSON") {
		t.Fatalf("unexpected snapshot: %+v", s)
	}
}

func TestPollNowKeepsServersWithUnexpectedFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"players":[{"visibleName":"Ada"}],"hidden":1,"servers":[{"id":1,"name":"Surface","address":"game","port":5123,"playerCount":38,"state":"running"}]}`)
	}))
	defer srv.Close()

	rec := newRecorder()
	p := newTestPoller(t, &fakeStore{cred: "tok"}, portal.NewClient(srv.URL), rec)
	p.PollNow(context.Background())

	s := rec.last(t)
	if !s.OK || len(s.Names) != 1 || s.Names[0] != "Ada" {
		t.Fatalf("unexpected snapshot: %+v", s)
	}
	if len(s.Servers) != 1 || s.Servers[0].PlayerCount != 38 || !strings.Contains(string(s.Servers[0].Raw), `"state":"running"`) {
		t.Fatalf("servers not passed through: %+v", s.Servers)
	}
}

func TestNormalizeNames(t *testing.T) {
	got := NormalizeNames([]string{" Arête  Mallpockney", "", "\tAda\n", "Ada", "  "})
	want := []string{"Arête Mallpockney", "Ada", "Ada"}
	if len(got) != len(want) {
		t.Fatalf("got %q want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %q want %q", got, want)
		}
	}
}

type errFetcher struct{ err error }

func (f errFetcher) Fetch(context.Context, string) (*portal.Roster, error) { return nil, f.err }

func TestTransportErrorBecomesSnapshot(t *testing.T) {
	rec := newRecorder()
	p := newTestPoller(t, &fakeStore{cred: "tok"}, errFetcher{errors.New("portal: request: connection refused")}, rec)
	p.PollNow(context.Background())

	s := rec.last(t)
	if s.OK || !strings.Contains(s.Error, "connection refused") {
		t.Fatalf("unexpected snapshot: %+v", s)
	}
}

func TestSetCredentialTrimsPersistsAndPolls(t *testing.T) {
	store := &fakeStore{}
	rec := newRecorder()
	p := newTestPoller(t, store, errFetcher{errors.New("boom")}, rec)

	if err := p.SetCredential("  tok  "); err != nil {
		t.Fatalf("SetCredential() err=%v", err)
	}
	if p.GetCredential() != "tok" || store.saves != 1 {
		t.Fatalf("credential=%q saves=%d", p.GetCredential(), store.saves)
	}

	select {
	case <-rec.seen:
	case <-time.After(2 * time.Second):
		t.Fatal("SetCredential did not trigger a poll")
	}
}

type blockingFetcher struct {
	started chan struct{}
	release chan struct{}
}

func (f *blockingFetcher) Fetch(ctx context.Context, _ string) (*portal.Roster, error) {
	f.started <- struct{}{}
	<-f.release
	return &portal.Roster{}, nil
}

func TestTickSkippedWhilePollInFlight(t *testing.T) {
	bf := &blockingFetcher{started: make(chan struct{}, 4), release: make(chan struct{})}
	rec := newRecorder()
	p := newTestPoller(t, &fakeStore{cred: "tok"}, bf, rec)

	if !p.tick(context.Background()) {
		t.Fatal("first tick should start a cycle")
	}
	<-bf.started
	if p.tick(context.Background()) {
		t.Fatal("tick must be skipped while a cycle is in flight")
	}

	close(bf.release)
	<-rec.seen
	deadline := time.Now().Add(2 * time.Second)
	for p.inFlight.Load() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("cycle never finished")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if !p.tick(context.Background()) {
		t.Fatal("tick should run once the previous cycle finished")
	}
	<-rec.seen
}

type staticSource struct{}

func (staticSource) Roster() portal.Roster {
	return portal.Roster{Players: []portal.Player{{VisibleName: " Ghan "}}, Hidden: 7}
}

func TestSimulate(t *testing.T) {
	rec := newRecorder()
	p := newTestPoller(t, &fakeStore{}, errFetcher{}, rec)
	if err := p.Simulate(); !errors.Is(err, ErrDevModeDisabled) {
		t.Fatalf("expected ErrDevModeDisabled, got %v", err)
	}

	dev, err := New(Config{Dev: true, Source: staticSource{}}, &fakeStore{}, errFetcher{}, rec, WithLogger(quietLogger()))
	if err != nil {
		t.Fatal(err)
	}
	if err := dev.Simulate(); err != nil {
		t.Fatalf("Simulate() err=%v", err)
	}
	s := rec.last(t)
	if !s.OK || len(s.Names) != 1 || s.Names[0] != "Ghan" || s.Hidden != 7 {
		t.Fatalf("unexpected snapshot: %+v", s)
	}
}

func TestRunPollsImmediatelyAndStops(t *testing.T) {
	rec := newRecorder()
	p, err := New(Config{Interval: time.Hour}, &fakeStore{}, errFetcher{}, rec, WithLogger(quietLogger()))
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	select {
	case <-rec.seen:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not poll at startup")
	}
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
