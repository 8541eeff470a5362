package app

import (
	"fmt"
	"time"

	"github.com/megalosandros/game-server/internal/model"
)

// Statistics is what remains of a player after retirement: the leaderboard
// record written to the store.
type Statistics struct {
	Name     string
	Score    uint32
	PlayTime time.Duration
}

// Player binds a token holder to a dog inside one session. The dog itself
// lives in the session; the player only remembers its id, so an evicted dog
// simply stops resolving.
type Player struct {
	session *model.Session
	id      uint32
}

func NewPlayer(session *model.Session, id uint32) *Player {
	return &Player{session: session, id: id}
}

func (p *Player) ID() uint32 {
	return p.id
}

func (p *Player) Session() *model.Session {
	return p.session
}

func (p *Player) Map() *model.Map {
	return p.session.Map()
}

func (p *Player) dog() *model.Dog {
	return p.session.FindDog(p.id)
}

func (p *Player) Name() string {
	if dog := p.dog(); dog != nil {
		return dog.Name()
	}
	return ""
}

func (p *Player) IdleTime() time.Duration {
	if dog := p.dog(); dog != nil {
		return dog.IdleTime()
	}
	return 0
}

func (p *Player) Statistics() Statistics {
	if dog := p.dog(); dog != nil {
		return Statistics{Name: dog.Name(), Score: dog.Score(), PlayTime: dog.PlayTime()}
	}
	return Statistics{}
}

func (p *Player) ChangeDir(dir model.Direction) {
	if dog := p.dog(); dog != nil {
		dog.ChangeDir(dir)
	}
}

func (p *Player) dismissDog() {
	p.session.RemoveDog(p.id)
}

// TokenPlayer is one (token, player) pair, enumerated for state snapshots.
type TokenPlayer struct {
	Token  Token
	Player *Player
}

// Players is the registry of everyone currently in the game.
type Players struct {
	list    []*Player
	byToken map[Token]*Player
}

func NewPlayers() *Players {
	return &Players{byToken: make(map[Token]*Player)}
}

func (ps *Players) AddPlayer(token Token, player *Player) {
	ps.list = append(ps.list, player)
	ps.byToken[token] = player
}

func (ps *Players) FindPlayer(token Token) *Player {
	return ps.byToken[token]
}

// RemovePlayer evicts a player and their dog, returning the final
// statistics. An unknown token is a logic fault: the caller enumerated the
// registry moments ago.
func (ps *Players) RemovePlayer(token Token) (Statistics, error) {
	player, ok := ps.byToken[token]
	if !ok {
		return Statistics{}, fmt.Errorf("token %s is not registered", token)
	}
	delete(ps.byToken, token)

	remains := player.Statistics()
	player.dismissDog()

	for i, p := range ps.list {
		if p == player {
			ps.list = append(ps.list[:i], ps.list[i+1:]...)
			break
		}
	}

	return remains, nil
}

func (ps *Players) List() []*Player {
	return ps.list
}

func (ps *Players) Pairs() []TokenPlayer {
	pairs := make([]TokenPlayer, 0, len(ps.byToken))
	for token, player := range ps.byToken {
		pairs = append(pairs, TokenPlayer{Token: token, Player: player})
	}
	return pairs
}
