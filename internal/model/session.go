package model

import (
	"math/rand"
	"time"

	"github.com/megalosandros/game-server/internal/geom"
	"github.com/megalosandros/game-server/internal/lootgen"
)

// Dog and loot ids are monotonic across the whole process, starting at 1.
// Restoring a saved state rewinds them via SetDogs/SetLoots.
var (
	nextDogID  uint32 = 1
	nextLootID uint32 = 1
)

func NextDogID() uint32 {
	return nextDogID
}

func NextLootID() uint32 {
	return nextLootID
}

// Session is the live state of one map: its dogs, its loot and the loot
// generator pacing new spawns.
type Session struct {
	m     *Map
	dogs  []*Dog
	loots []*Loot
	gen   *lootgen.Generator
}

func newSession(m *Map, lootInterval time.Duration, lootProbability float64) *Session {
	return &Session{
		m:   m,
		gen: lootgen.New(lootInterval, lootProbability),
	}
}

func (s *Session) Map() *Map {
	return s.m
}

func (s *Session) Dogs() []*Dog {
	return s.dogs
}

func (s *Session) Loots() []*Loot {
	return s.loots
}

// AddDog spawns a new dog. Without randomization the spawn point is the
// start of the map's first road, which keeps integration runs reproducible.
func (s *Session) AddDog(name string, randomizeSpawn bool) *Dog {
	pt := s.spawnPoint(randomizeSpawn)

	dog := NewDog(nextDogID, name, pt, s.m.DogSpeed(), s.m.BagCapacity())
	nextDogID++
	s.dogs = append(s.dogs, dog)

	return dog
}

func (s *Session) FindDog(id uint32) *Dog {
	for _, dog := range s.dogs {
		if dog.id == id {
			return dog
		}
	}
	return nil
}

func (s *Session) RemoveDog(id uint32) {
	for i, dog := range s.dogs {
		if dog.id == id {
			s.dogs = append(s.dogs[:i], s.dogs[i+1:]...)
			return
		}
	}
}

func (s *Session) FindLoot(id uint32) *Loot {
	for _, loot := range s.loots {
		if loot.id == id {
			return loot
		}
	}
	return nil
}

func (s *Session) RemoveLoot(id uint32) {
	for i, loot := range s.loots {
		if loot.id == id {
			s.loots = append(s.loots[:i], s.loots[i+1:]...)
			return
		}
	}
}

// SetDogs replaces the dog list during state restore and rewinds the global
// id counter to the saved value.
func (s *Session) SetDogs(dogs []*Dog, nextID uint32) {
	s.dogs = dogs
	nextDogID = nextID
}

func (s *Session) SetLoots(loots []*Loot, nextID uint32) {
	s.loots = loots
	nextLootID = nextID
}

func (s *Session) addLoot(typ uint32) {
	pt := s.spawnPoint(true)
	s.loots = append(s.loots, NewLoot(nextLootID, typ, s.m.LootTypeValue(typ), pt))
	nextLootID++
}

// GenerateLoots spawns whatever the generator decides for this tick and
// returns every loot object on the map as a collision target.
func (s *Session) GenerateLoots(dt time.Duration) []Target {
	count := s.gen.Generate(dt, len(s.loots), len(s.dogs))
	if count > 0 {
		typeCount := s.m.LootTypeCount()
		for i := 0; i < count; i++ {
			s.addLoot(uint32(rand.Intn(typeCount)))
		}
	}

	targets := make([]Target, 0, len(s.loots))
	for _, loot := range s.loots {
		targets = append(targets, Target{
			Kind:   TargetLoot,
			LootID: loot.id,
			Pos:    loot.pos,
			Width:  LootWidth,
		})
	}
	return targets
}

// MoveDogs advances every dog by dt and returns their swept segments.
func (s *Session) MoveDogs(dt time.Duration) []geom.Gatherer {
	gatherers := make([]geom.Gatherer, 0, len(s.dogs))
	for _, dog := range s.dogs {
		gatherers = append(gatherers, dog.Move(s.m, dt))
	}
	return gatherers
}

// GatherLoots settles the tick: collision events are replayed in time order,
// office contacts unload bags and loot contacts move objects into bags.
// Loot that a faster dog already took is skipped.
func (s *Session) GatherLoots(targets []Target, gatherers []geom.Gatherer) {
	items := make([]geom.Item, len(targets))
	for i, t := range targets {
		items[i] = geom.Item{Pos: t.Pos, Width: t.Width, ID: uint64(i)}
	}

	for _, event := range geom.FindGatherEvents(items, gatherers) {
		dog := s.FindDog(uint32(event.GathererID))
		if dog == nil {
			continue
		}

		target := targets[event.ItemID]
		if target.Kind == TargetOffice {
			dog.UnloadBag()
			continue
		}

		loot := s.FindLoot(target.LootID)
		if loot == nil {
			continue
		}
		if dog.TryGatherLoot(loot) {
			s.RemoveLoot(loot.id)
		}
	}
}

func (s *Session) spawnPoint(randomize bool) geom.Point2D {
	roads := s.m.Roads()
	if len(roads) == 0 {
		return geom.Point2D{}
	}

	if !randomize {
		start := roads[0].Start()
		return geom.Point2D{X: float64(start.X), Y: float64(start.Y)}
	}

	road := roads[rand.Intn(len(roads))]
	start, end := road.Start(), road.End()

	if road.IsVertical() {
		y := min(start.Y, end.Y)
		if n := abs(start.Y - end.Y); n > 0 {
			y += rand.Intn(n)
		}
		return geom.Point2D{X: float64(start.X), Y: float64(y)}
	}

	x := min(start.X, end.X)
	if n := abs(start.X - end.X); n > 0 {
		x += rand.Intn(n)
	}
	return geom.Point2D{X: float64(x), Y: float64(end.Y)}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
