package model

import "github.com/megalosandros/game-server/internal/geom"

// LootWidth is the collision radius of a loot object lying on the ground.
const LootWidth = 0.0

// Loot is one lost object waiting on a map.
type Loot struct {
	id    uint32
	typ   uint32
	value uint32
	pos   geom.Point2D
}

func NewLoot(id, typ, value uint32, pos geom.Point2D) *Loot {
	return &Loot{id: id, typ: typ, value: value, pos: pos}
}

func (l *Loot) ID() uint32 {
	return l.id
}

func (l *Loot) Type() uint32 {
	return l.typ
}

func (l *Loot) Value() uint32 {
	return l.value
}

func (l *Loot) Pos() geom.Point2D {
	return l.pos
}

// LootItem is one entry of a dog's bag.
type LootItem struct {
	ID    uint32
	Type  uint32
	Value uint32
}

type TargetKind int

const (
	TargetLoot TargetKind = iota
	TargetOffice
)

// Target is one collectible presented to the collision kernel during a tick:
// either a loot object or an office. The kernel addresses targets by their
// index in the tick's target slice, so loot ids and office identity never
// collide.
type Target struct {
	Kind   TargetKind
	LootID uint32 // set when Kind is TargetLoot
	Pos    geom.Point2D
	Width  float64
}
