// Package app is the façade over the game model: every REST operation maps
// to one method here, all serialized by a single state lock.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/megalosandros/game-server/internal/geom"
	"github.com/megalosandros/game-server/internal/model"
)

// RecordStore is the durable leaderboard behind the retirement flow and the
// records endpoint.
type RecordStore interface {
	SaveRecord(ctx context.Context, stats Statistics) error
	Records(ctx context.Context, start, maxItems int) ([]Statistics, error)
}

// Listener is notified after every completed tick, still under the state
// lock. State snapshots hook in here.
type Listener interface {
	OnTick(dt time.Duration)
}

// MaxRecordItems caps one leaderboard page.
const MaxRecordItems = 100

type JoinResult struct {
	Token    Token
	PlayerID uint32
}

type PlayerInfo struct {
	ID   uint32
	Name string
}

type PlayerState struct {
	ID    uint32
	Pos   geom.Point2D
	Speed geom.Vec2D
	Dir   model.Direction
	Bag   []model.LootItem
	Score uint32
}

type LootState struct {
	ID   uint32
	Type uint32
	Pos  geom.Point2D
}

// StateResult is a by-value copy of one session's observable state, safe to
// serialize after the lock is released.
type StateResult struct {
	Players []PlayerState
	Loots   []LootState
}

type Application struct {
	mu              sync.Mutex
	game            *model.Game
	players         *Players
	records         RecordStore
	collector       *Collector
	listeners       []Listener
	randomizeSpawns bool
	log             *zap.Logger
}

func New(game *model.Game, records RecordStore, randomizeSpawns bool, log *zap.Logger) *Application {
	players := NewPlayers()
	return &Application{
		game:            game,
		players:         players,
		records:         records,
		collector:       newCollector(game, players, records, log),
		randomizeSpawns: randomizeSpawns,
		log:             log,
	}
}

// GetMaps lists the loaded maps. Maps are immutable after loading, so no
// lock is needed.
func (a *Application) GetMaps() []*model.Map {
	return a.game.Maps()
}

func (a *Application) GetMap(id string) (*model.Map, error) {
	m := a.game.FindMap(id)
	if m == nil {
		return nil, ErrMapNotFound
	}
	return m, nil
}

// JoinGame puts a new player on a map and hands out their token.
func (a *Application) JoinGame(name, mapID string) (JoinResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if name == "" {
		return JoinResult{}, ErrInvalidName
	}

	session := a.game.AddSession(mapID)
	if session == nil {
		return JoinResult{}, ErrMapNotFound
	}

	dog := session.AddDog(name, a.randomizeSpawns)
	token := NewToken()
	a.players.AddPlayer(token, NewPlayer(session, dog.ID()))

	return JoinResult{Token: token, PlayerID: dog.ID()}, nil
}

// GetPlayers lists the players sharing the caller's session.
func (a *Application) GetPlayers(token Token) ([]PlayerInfo, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	myself := a.players.FindPlayer(token)
	if myself == nil {
		return nil, ErrUnknownToken
	}

	var result []PlayerInfo
	for _, player := range a.players.List() {
		if player.Session() == myself.Session() {
			result = append(result, PlayerInfo{ID: player.ID(), Name: player.Name()})
		}
	}
	return result, nil
}

// GetState copies the caller's session state: every dog and every loot
// object on the map.
func (a *Application) GetState(token Token) (StateResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	myself := a.players.FindPlayer(token)
	if myself == nil {
		return StateResult{}, ErrUnknownToken
	}

	session := myself.Session()

	var result StateResult
	for _, dog := range session.Dogs() {
		bag := make([]model.LootItem, len(dog.Bag()))
		copy(bag, dog.Bag())
		result.Players = append(result.Players, PlayerState{
			ID:    dog.ID(),
			Pos:   dog.Pos(),
			Speed: dog.Speed(),
			Dir:   dog.Dir(),
			Bag:   bag,
			Score: dog.Score(),
		})
	}
	for _, loot := range session.Loots() {
		result.Loots = append(result.Loots, LootState{
			ID:   loot.ID(),
			Type: loot.Type(),
			Pos:  loot.Pos(),
		})
	}
	return result, nil
}

// ChangeDir applies a movement command to the caller's dog.
func (a *Application) ChangeDir(token Token, dir model.Direction) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	player := a.players.FindPlayer(token)
	if player == nil {
		return ErrUnknownToken
	}
	player.ChangeDir(dir)
	return nil
}

// Tick advances every live session by dt: spawn loot, move dogs, settle
// pickups and deposits, retire idle players, then run the tick listeners.
func (a *Application) Tick(dt time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, session := range a.game.Sessions() {
		targets := session.GenerateLoots(dt)
		gatherers := session.MoveDogs(dt)
		targets = append(targets, session.Map().OfficeTargets()...)
		session.GatherLoots(targets, gatherers)
	}

	a.collector.Collect(context.Background())

	for _, listener := range a.listeners {
		listener.OnTick(dt)
	}
}

// GetRecords reads one leaderboard page. Pages beyond MaxRecordItems are
// refused before touching the store.
func (a *Application) GetRecords(ctx context.Context, start, maxItems int) ([]Statistics, error) {
	if maxItems > MaxRecordItems {
		return nil, ErrTooManyRecords
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	records, err := a.records.Records(ctx, start, maxItems)
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	return records, nil
}

func (a *Application) AddListener(l Listener) {
	a.listeners = append(a.listeners, l)
}

// AddPlayer registers a restored player against an already-restored session.
func (a *Application) AddPlayer(token Token, playerID uint32, mapID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	session := a.game.FindSession(mapID)
	if session == nil {
		return fmt.Errorf("no session for map %s", mapID)
	}
	a.players.AddPlayer(token, NewPlayer(session, playerID))
	return nil
}

// TokenPairs enumerates (token, player) pairs for state snapshots. Called
// from tick listeners that already run under the state lock, and from the
// shutdown path after the ticker has stopped, so it must not lock itself.
func (a *Application) TokenPairs() []TokenPlayer {
	return a.players.Pairs()
}
