package model

import (
	"time"

	"github.com/megalosandros/game-server/internal/geom"
)

// DogWidth is the collision radius of an avatar.
const DogWidth = 0.6

// Direction is an avatar's facing, encoded as the wire letter. Stop is only
// ever an input to ChangeDir; a dog's stored facing is always one of LRUD.
type Direction byte

const (
	Left  Direction = 'L'
	Right Direction = 'R'
	Up    Direction = 'U'
	Down  Direction = 'D'
	Stop  Direction = 0
)

func (d Direction) String() string {
	if d == Stop {
		return ""
	}
	return string(byte(d))
}

// DirectionFromString parses the wire form; the empty string means stop.
func DirectionFromString(s string) (Direction, bool) {
	switch s {
	case "":
		return Stop, true
	case "L":
		return Left, true
	case "R":
		return Right, true
	case "U":
		return Up, true
	case "D":
		return Down, true
	}
	return Stop, false
}

// Dog is a player's avatar inside one session.
type Dog struct {
	id          uint32
	name        string
	pos         geom.Point2D
	speed       geom.Vec2D
	dir         Direction
	bag         []LootItem
	score       uint32
	maxSpeed    float64
	bagCapacity int
	playTime    time.Duration
	idleTime    time.Duration
}

func NewDog(id uint32, name string, pos geom.Point2D, maxSpeed float64, bagCapacity int) *Dog {
	return &Dog{
		id:          id,
		name:        name,
		pos:         pos,
		dir:         Up,
		maxSpeed:    maxSpeed,
		bagCapacity: bagCapacity,
	}
}

// RestoreDog rebuilds a dog from a saved state, timers included.
func RestoreDog(id uint32, name string, pos geom.Point2D, speed geom.Vec2D, dir Direction,
	bag []LootItem, score uint32, maxSpeed float64, bagCapacity int,
	playTime, idleTime time.Duration) *Dog {
	return &Dog{
		id:          id,
		name:        name,
		pos:         pos,
		speed:       speed,
		dir:         dir,
		bag:         bag,
		score:       score,
		maxSpeed:    maxSpeed,
		bagCapacity: bagCapacity,
		playTime:    playTime,
		idleTime:    idleTime,
	}
}

func (d *Dog) ID() uint32 {
	return d.id
}

func (d *Dog) Name() string {
	return d.name
}

func (d *Dog) Pos() geom.Point2D {
	return d.pos
}

func (d *Dog) Speed() geom.Vec2D {
	return d.speed
}

func (d *Dog) Dir() Direction {
	return d.dir
}

func (d *Dog) Bag() []LootItem {
	return d.bag
}

func (d *Dog) Score() uint32 {
	return d.score
}

func (d *Dog) MaxSpeed() float64 {
	return d.maxSpeed
}

func (d *Dog) BagCapacity() int {
	return d.bagCapacity
}

func (d *Dog) PlayTime() time.Duration {
	return d.playTime
}

func (d *Dog) IdleTime() time.Duration {
	return d.idleTime
}

// ChangeDir applies a movement command. A stop command keeps the current
// facing. Every command, stop included, counts as player activity and
// resets the idle timer.
func (d *Dog) ChangeDir(dir Direction) {
	if dir != Stop {
		d.dir = dir
	}

	if d.idleTime != 0 {
		d.idleTime = 0
	}

	switch dir {
	case Left:
		d.speed = geom.Vec2D{X: -d.maxSpeed}
	case Right:
		d.speed = geom.Vec2D{X: d.maxSpeed}
	case Up:
		d.speed = geom.Vec2D{Y: -d.maxSpeed}
	case Down:
		d.speed = geom.Vec2D{Y: d.maxSpeed}
	default:
		d.speed = geom.Vec2D{}
	}
}

// TryGatherLoot puts a loot object into the bag. A full bag refuses the
// object and the pickup just does not happen.
func (d *Dog) TryGatherLoot(loot *Loot) bool {
	if len(d.bag) < d.bagCapacity {
		d.bag = append(d.bag, LootItem{ID: loot.ID(), Type: loot.Type(), Value: loot.Value()})
		return true
	}
	return false
}

// UnloadBag converts every carried object into score and empties the bag.
func (d *Dog) UnloadBag() {
	for _, item := range d.bag {
		d.score += item.Value
	}
	d.bag = d.bag[:0]
}

// findDogRoad picks the road rectangle the dog stands on. At a crossing the
// road whose orientation matches the movement wins; otherwise the last
// containing road is used.
func findDogRoad(roads []Road, pos geom.Point2D, speed geom.Vec2D) geom.Rect2D {
	var altRect geom.Rect2D

	for _, road := range roads {
		rect := road.Rect()
		if !rect.Contains(pos) {
			continue
		}
		if geom.IsHorizontalVec(speed) == geom.IsHorizontalRect(rect) {
			return rect
		}
		altRect = rect
	}

	return altRect
}

func movePoint(pos geom.Point2D, speed geom.Vec2D, dt time.Duration) geom.Point2D {
	next := pos
	if !geom.IsZero(speed.X) {
		next.X = pos.X + speed.X*dt.Seconds()
	}
	if !geom.IsZero(speed.Y) {
		next.Y = pos.Y + speed.Y*dt.Seconds()
	}
	return next
}

// findBoundary clamps the dog to the road edge it is about to cross.
func findBoundary(rect geom.Rect2D, pos geom.Point2D, dir Direction) geom.Point2D {
	switch dir {
	case Right:
		return geom.Point2D{X: rect.Right, Y: pos.Y}
	case Left:
		return geom.Point2D{X: rect.Left, Y: pos.Y}
	case Up:
		return geom.Point2D{X: pos.X, Y: rect.Top}
	case Down:
		return geom.Point2D{X: pos.X, Y: rect.Bottom}
	}
	return geom.Point2D{}
}

// Move advances the dog by dt and returns its swept segment for collision
// detection. A stationary dog accrues idle time; a moving dog that would
// leave its road stops at the edge.
func (d *Dog) Move(m *Map, dt time.Duration) geom.Gatherer {
	d.playTime += dt

	if geom.IsZeroVec(d.speed) {
		d.idleTime += dt
		return geom.Gatherer{Start: d.pos, End: d.pos, Width: DogWidth, ID: uint64(d.id)}
	}

	rect := findDogRoad(m.Roads(), d.pos, d.speed)

	if next := movePoint(d.pos, d.speed, dt); rect.Contains(next) {
		old := d.pos
		d.pos = next
		return geom.Gatherer{Start: old, End: d.pos, Width: DogWidth, ID: uint64(d.id)}
	}

	old := d.pos
	d.pos = findBoundary(rect, d.pos, d.dir)
	d.speed = geom.Vec2D{}

	return geom.Gatherer{Start: old, End: d.pos, Width: DogWidth, ID: uint64(d.id)}
}
