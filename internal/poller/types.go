package poller

import (
	"context"
	"time"

	"github.com/ankouros/rosterwatch/internal/model"
	"github.com/ankouros/rosterwatch/internal/portal"
)

// DefaultInterval is the fixed poll cadence.
const DefaultInterval = 30 * time.Second

// MissingCredentialMsg is published instead of fetching when no token is set.
const MissingCredentialMsg = "Missing credential: enter your user-session token and press Save."

// Fetcher abstracts the portal request.
type Fetcher interface {
	Fetch(ctx context.Context, credential string) (*portal.Roster, error)
}

// CredentialStore persists the session token.
type CredentialStore interface {
	Credential() string
	SetCredential(token string) error
}

// Publisher receives every Snapshot the poller produces.
type Publisher interface {
	Publish(s model.Snapshot) bool
}

// RosterSource produces fake rosters in developer mode.
type RosterSource interface {
	Roster() portal.Roster
}

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Config is the runtime config the poller needs.
type Config struct {
	Interval time.Duration

	// Dev enables Simulate. Source must be set when Dev is true.
	Dev    bool
	Source RosterSource
}
