package model

import (
	"time"

	jsoniter "github.com/json-iterator/go"
)

// ServerInfo is one game server as reported by the portal. Only the fields
// the display needs are typed; Raw keeps the portal's object verbatim so
// anything else it sends is carried through untouched.
type ServerInfo struct {
	Name        string `json:"name"`
	Address     string `json:"address"`
	Port        int    `json:"port"`
	PlayerCount int    `json:"playerCount"`

	Raw []byte `json:"-"`
}

// MarshalJSON emits Raw when present, the typed fields otherwise.
func (s ServerInfo) MarshalJSON() ([]byte, error) {
	if len(s.Raw) > 0 {
		return s.Raw, nil
	}
	type plain ServerInfo
	return jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(plain(s))
}

// Snapshot is the normalized result of one poll attempt.
// Build it with NewSnapshot or FailedSnapshot; never mutate one after publishing.
type Snapshot struct {
	OK        bool         `json:"ok"`
	Names     []string     `json:"names,omitempty"`
	Hidden    int          `json:"hidden"`
	Servers   []ServerInfo `json:"servers,omitempty"`
	Timestamp time.Time    `json:"-"`
	TS        int64        `json:"ts,omitempty"` // unix millis, mirrors Timestamp
	Error     string       `json:"error,omitempty"`
}

func NewSnapshot(names []string, hidden int, servers []ServerInfo, at time.Time) Snapshot {
	if hidden < 0 {
		hidden = 0
	}
	return Snapshot{
		OK:        true,
		Names:     append([]string(nil), names...),
		Hidden:    hidden,
		Servers:   append([]ServerInfo(nil), servers...),
		Timestamp: at,
		TS:        at.UnixMilli(),
	}
}

func FailedSnapshot(msg string) Snapshot {
	return Snapshot{OK: false, Error: msg}
}
