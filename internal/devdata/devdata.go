// Package devdata produces fake portal rosters for developer mode.
// Nothing here is reachable unless the app runs with --dev.
package devdata

import (
	_ "embed"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/ankouros/rosterwatch/internal/model"
	"github.com/ankouros/rosterwatch/internal/portal"
)

//go:embed sample.json
var sampleJSON []byte

// Base decodes the embedded sample roster.
func Base() (portal.Roster, error) {
	r, err := portal.Decode(sampleJSON)
	if err != nil {
		return portal.Roster{}, fmt.Errorf("devdata: decode sample: %w", err)
	}
	return *r, nil
}

type Generator struct {
	mu   sync.Mutex
	rng  *rand.Rand
	base portal.Roster
}

// NewGenerator uses rng when non-nil, otherwise a time-seeded source.
func NewGenerator(rng *rand.Rand) (*Generator, error) {
	base, err := Base()
	if err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{rng: rng, base: base}, nil
}

// Roster returns a random 60-80% of the sample players in shuffled order,
// server counts jittered by -5..+4 (never below zero) and hidden in 5..24.
func (g *Generator) Roster() portal.Roster {
	g.mu.Lock()
	defer g.mu.Unlock()

	players := append([]portal.Player(nil), g.base.Players...)
	g.rng.Shuffle(len(players), func(i, j int) { players[i], players[j] = players[j], players[i] })
	n := int(float64(len(players)) * (0.6 + g.rng.Float64()*0.2))
	players = players[:n]

	servers := make([]model.ServerInfo, len(g.base.Servers))
	for i, s := range g.base.Servers {
		s.PlayerCount += g.rng.Intn(10) - 5
		if s.PlayerCount < 0 {
			s.PlayerCount = 0
		}
		s.Raw = nil // stale once the count moves
		servers[i] = s
	}

	return portal.Roster{
		Players: players,
		Hidden:  g.rng.Intn(20) + 5,
		Servers: servers,
	}
}
