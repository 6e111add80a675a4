// Package feed carries Snapshots from the poller to whoever is listening.
//
// There is at most one listener. Subscribing again silently replaces the
// previous listener, and publishing with nobody attached drops the Snapshot.
package feed

import (
	"sync"

	"github.com/ankouros/rosterwatch/internal/model"
)

type Listener func(model.Snapshot)

type Feed struct {
	mu     sync.RWMutex
	fn     Listener
	closed bool
	wg     sync.WaitGroup // deliveries in progress
}

func New() *Feed { return &Feed{} }

// Subscribe installs fn as the only listener. nil detaches. It is a no-op
// once the feed is closed.
func (f *Feed) Subscribe(fn Listener) {
	f.mu.Lock()
	if !f.closed {
		f.fn = fn
	}
	f.mu.Unlock()
}

// Close detaches the listener for good and waits for any delivery already
// handed to it. Later publishes are dropped.
func (f *Feed) Close() {
	f.mu.Lock()
	f.fn = nil
	f.closed = true
	f.mu.Unlock()
	f.wg.Wait()
}

// Publish hands s to the current listener, if any. It reports whether a
// listener was attached. There is no acknowledgement and no retry.
func (f *Feed) Publish(s model.Snapshot) bool {
	f.mu.RLock()
	fn := f.fn
	if fn != nil {
		f.wg.Add(1)
	}
	f.mu.RUnlock()

	if fn == nil {
		return false
	}
	defer f.wg.Done()
	fn(s)
	return true
}
