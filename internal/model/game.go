package model

import (
	"fmt"
	"time"
)

// Game holds every loaded map and the live sessions on top of them, plus the
// world-wide tuning shared by all sessions.
type Game struct {
	maps     []*Map
	mapIndex map[string]int
	sessions map[string]*Session

	lootInterval    time.Duration
	lootProbability float64
	retirementTime  time.Duration
}

func NewGame(lootInterval time.Duration, lootProbability float64, retirementTime time.Duration) *Game {
	return &Game{
		mapIndex:        make(map[string]int),
		sessions:        make(map[string]*Session),
		lootInterval:    lootInterval,
		lootProbability: lootProbability,
		retirementTime:  retirementTime,
	}
}

func (g *Game) AddMap(m *Map) error {
	if _, ok := g.mapIndex[m.ID()]; ok {
		return fmt.Errorf("map %s already exists", m.ID())
	}
	g.mapIndex[m.ID()] = len(g.maps)
	g.maps = append(g.maps, m)
	return nil
}

func (g *Game) FindMap(id string) *Map {
	if i, ok := g.mapIndex[id]; ok {
		return g.maps[i]
	}
	return nil
}

func (g *Game) Maps() []*Map {
	return g.maps
}

func (g *Game) FindSession(mapID string) *Session {
	return g.sessions[mapID]
}

// AddSession returns the session for a map, creating it on first use.
// Returns nil for an unknown map id.
func (g *Game) AddSession(mapID string) *Session {
	if s, ok := g.sessions[mapID]; ok {
		return s
	}
	m := g.FindMap(mapID)
	if m == nil {
		return nil
	}
	s := newSession(m, g.lootInterval, g.lootProbability)
	g.sessions[mapID] = s
	return s
}

// Sessions lists the live sessions in map declaration order.
func (g *Game) Sessions() []*Session {
	sessions := make([]*Session, 0, len(g.sessions))
	for _, m := range g.maps {
		if s, ok := g.sessions[m.ID()]; ok {
			sessions = append(sessions, s)
		}
	}
	return sessions
}

func (g *Game) RetirementTime() time.Duration {
	return g.retirementTime
}
