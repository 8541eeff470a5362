package persist

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/megalosandros/game-server/internal/app"
	"github.com/megalosandros/game-server/internal/geom"
	"github.com/megalosandros/game-server/internal/model"
)

// The snapshot is a JSON document covering every dynamic object: dogs and
// loot per live session, the global id counters, and the token registry.
// Static map data is not saved; the game config is the source of truth.

type pointState struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type bagItemState struct {
	ID    uint32 `json:"id"`
	Type  uint32 `json:"type"`
	Value uint32 `json:"value"`
}

type dogState struct {
	ID          uint32         `json:"id"`
	Name        string         `json:"name"`
	Pos         pointState     `json:"pos"`
	Speed       pointState     `json:"speed"`
	Dir         string         `json:"dir"`
	Bag         []bagItemState `json:"bag"`
	Score       uint32         `json:"score"`
	MaxSpeed    float64        `json:"maxSpeed"`
	BagCapacity int            `json:"bagCapacity"`
	PlayTimeMs  int64          `json:"playTimeMs"`
	IdleTimeMs  int64          `json:"idleTimeMs"`
}

type lootState struct {
	ID    uint32     `json:"id"`
	Type  uint32     `json:"type"`
	Value uint32     `json:"value"`
	Pos   pointState `json:"pos"`
}

type sessionState struct {
	MapID      string      `json:"mapId"`
	NextDogID  uint32      `json:"nextDogId"`
	NextLootID uint32      `json:"nextLootId"`
	Dogs       []dogState  `json:"dogs"`
	Loots      []lootState `json:"loots"`
}

type playerState struct {
	Token    string `json:"token"`
	PlayerID uint32 `json:"playerId"`
	MapID    string `json:"mapId"`
}

type snapshot struct {
	Sessions []sessionState `json:"sessions"`
	Players  []playerState  `json:"players"`
}

func pointOf(p pointState) geom.Point2D {
	return geom.Point2D{X: p.X, Y: p.Y}
}

func vecOf(p pointState) geom.Vec2D {
	return geom.Vec2D{X: p.X, Y: p.Y}
}

// SaveState writes the whole game state to the state file. The document goes
// to a sibling temp file first and is renamed over the target, so a crash
// mid-write never corrupts an existing snapshot.
func SaveState(file string, game *model.Game, application *app.Application) error {
	var doc snapshot

	for _, session := range game.Sessions() {
		ss := sessionState{
			MapID:      session.Map().ID(),
			NextDogID:  model.NextDogID(),
			NextLootID: model.NextLootID(),
		}
		for _, dog := range session.Dogs() {
			bag := make([]bagItemState, 0, len(dog.Bag()))
			for _, item := range dog.Bag() {
				bag = append(bag, bagItemState{ID: item.ID, Type: item.Type, Value: item.Value})
			}
			ss.Dogs = append(ss.Dogs, dogState{
				ID:          dog.ID(),
				Name:        dog.Name(),
				Pos:         pointState{X: dog.Pos().X, Y: dog.Pos().Y},
				Speed:       pointState{X: dog.Speed().X, Y: dog.Speed().Y},
				Dir:         dog.Dir().String(),
				Bag:         bag,
				Score:       dog.Score(),
				MaxSpeed:    dog.MaxSpeed(),
				BagCapacity: dog.BagCapacity(),
				PlayTimeMs:  dog.PlayTime().Milliseconds(),
				IdleTimeMs:  dog.IdleTime().Milliseconds(),
			})
		}
		for _, loot := range session.Loots() {
			ss.Loots = append(ss.Loots, lootState{
				ID:    loot.ID(),
				Type:  loot.Type(),
				Value: loot.Value(),
				Pos:   pointState{X: loot.Pos().X, Y: loot.Pos().Y},
			})
		}
		doc.Sessions = append(doc.Sessions, ss)
	}

	for _, pair := range application.TokenPairs() {
		doc.Players = append(doc.Players, playerState{
			Token:    string(pair.Token),
			PlayerID: pair.Player.ID(),
			MapID:    pair.Player.Map().ID(),
		})
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	tmp := file + "~"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	if err := os.Rename(tmp, file); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}

// LoadState restores the game from the state file. An absent file is a cold
// start; an unreadable or malformed file is an error and the server must not
// come up on top of it.
func LoadState(file string, game *model.Game, application *app.Application) error {
	data, err := os.ReadFile(file)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read state file: %w", err)
	}

	var doc snapshot
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse state file: %w", err)
	}

	restored := make(map[string]bool)

	for _, ss := range doc.Sessions {
		session := game.AddSession(ss.MapID)
		if session == nil {
			return fmt.Errorf("state file refers to unknown map %s", ss.MapID)
		}

		dogs := make([]*model.Dog, 0, len(ss.Dogs))
		for _, ds := range ss.Dogs {
			dir, ok := model.DirectionFromString(ds.Dir)
			if !ok || dir == model.Stop {
				return fmt.Errorf("state file: dog %d has bad direction %q", ds.ID, ds.Dir)
			}
			bag := make([]model.LootItem, 0, len(ds.Bag))
			for _, item := range ds.Bag {
				bag = append(bag, model.LootItem{ID: item.ID, Type: item.Type, Value: item.Value})
			}
			dogs = append(dogs, model.RestoreDog(
				ds.ID, ds.Name,
				pointOf(ds.Pos), vecOf(ds.Speed), dir,
				bag, ds.Score, ds.MaxSpeed, ds.BagCapacity,
				time.Duration(ds.PlayTimeMs)*time.Millisecond,
				time.Duration(ds.IdleTimeMs)*time.Millisecond,
			))
		}
		session.SetDogs(dogs, ss.NextDogID)

		loots := make([]*model.Loot, 0, len(ss.Loots))
		for _, ls := range ss.Loots {
			loots = append(loots, model.NewLoot(ls.ID, ls.Type, ls.Value, pointOf(ls.Pos)))
		}
		session.SetLoots(loots, ss.NextLootID)

		restored[ss.MapID] = true
	}

	for _, ps := range doc.Players {
		if !restored[ps.MapID] {
			continue
		}
		if err := application.AddPlayer(app.Token(ps.Token), ps.PlayerID, ps.MapID); err != nil {
			return fmt.Errorf("restore player %d: %w", ps.PlayerID, err)
		}
	}

	return nil
}

// SnapshotListener saves the state every savePeriod of game time.
type SnapshotListener struct {
	file        string
	savePeriod  time.Duration
	game        *model.Game
	application *app.Application
	sinceSave   time.Duration
	log         *zap.Logger
}

func NewSnapshotListener(file string, savePeriod time.Duration,
	game *model.Game, application *app.Application, log *zap.Logger) *SnapshotListener {
	return &SnapshotListener{
		file:        file,
		savePeriod:  savePeriod,
		game:        game,
		application: application,
		log:         log,
	}
}

func (l *SnapshotListener) OnTick(dt time.Duration) {
	l.sinceSave += dt
	if l.sinceSave < l.savePeriod {
		return
	}
	if err := SaveState(l.file, l.game, l.application); err != nil {
		l.log.Error("save game state", zap.Error(err))
	}
	l.sinceSave = 0
}
