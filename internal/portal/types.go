package portal

import (
	"math"

	jsoniter "github.com/json-iterator/go"

	"github.com/ankouros/rosterwatch/internal/model"
)

// Roster is the portal payload reduced to what the poller reads.
type Roster struct {
	Players []Player
	Hidden  int
	Servers []model.ServerInfo
}

type Player struct {
	VisibleName string
}

// Decode reads a portal body. Only invalid JSON is an error: members of the
// wrong type read as their zero value, and each server object is kept raw
// alongside its typed fields.
func Decode(body []byte) (*Roster, error) {
	if !json.Valid(body) {
		return nil, ErrNonJSON
	}
	root := json.Get(body)
	if root.ValueType() != jsoniter.ObjectValue {
		return &Roster{}, nil
	}

	r := &Roster{Hidden: count(root.Get("hidden"))}

	if players := root.Get("players"); players.ValueType() == jsoniter.ArrayValue {
		for i, n := 0, players.Size(); i < n; i++ {
			r.Players = append(r.Players, Player{VisibleName: str(players.Get(i, "visibleName"))})
		}
	}

	if servers := root.Get("servers"); servers.ValueType() == jsoniter.ArrayValue {
		for i, n := 0, servers.Size(); i < n; i++ {
			s := servers.Get(i)
			if s.ValueType() != jsoniter.ObjectValue {
				continue
			}
			r.Servers = append(r.Servers, model.ServerInfo{
				Name:        str(s.Get("name")),
				Address:     str(s.Get("address")),
				Port:        count(s.Get("port")),
				PlayerCount: count(s.Get("playerCount")),
				Raw:         []byte(s.ToString()),
			})
		}
	}
	return r, nil
}

func str(a jsoniter.Any) string {
	if a.ValueType() != jsoniter.StringValue {
		return ""
	}
	return a.ToString()
}

// count truncates any JSON number toward zero; other types read as 0.
func count(a jsoniter.Any) int {
	if a.ValueType() != jsoniter.NumberValue {
		return 0
	}
	f := a.ToFloat64()
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > 1<<53 {
		return 0
	}
	return int(f)
}
