// Package model is the authoritative game world: maps with their road
// graphs, the dogs walking them, spawned loot and the per-map sessions that
// tie these together. The package is not goroutine safe; callers serialize
// access behind the application lock.
package model

import (
	"encoding/json"
	"fmt"

	"github.com/megalosandros/game-server/internal/geom"
)

// Map coordinates are integer grid units; movement happens in continuous
// coordinates on top of them.
type Point struct {
	X int
	Y int
}

type Size struct {
	Width  int
	Height int
}

type Rectangle struct {
	Position Point
	Size     Size
}

type Offset struct {
	DX int
	DY int
}

const (
	// RoadAlignment inflates a road segment into a walkable rectangle on
	// every side, so a road of zero thickness is 0.8 units wide.
	RoadAlignment = 0.4

	OfficeWidth = 0.5
)

// Road is an axis-aligned segment of the walkable graph.
type Road struct {
	start Point
	end   Point
}

func NewHorizontalRoad(start Point, endX int) Road {
	return Road{start: start, end: Point{X: endX, Y: start.Y}}
}

func NewVerticalRoad(start Point, endY int) Road {
	return Road{start: start, end: Point{X: start.X, Y: endY}}
}

func (r Road) IsHorizontal() bool {
	return r.start.Y == r.end.Y
}

func (r Road) IsVertical() bool {
	return r.start.X == r.end.X
}

func (r Road) Start() Point {
	return r.start
}

func (r Road) End() Point {
	return r.end
}

// Rect is the normalized walkable rectangle of the road, inflated by the
// alignment margin.
func (r Road) Rect() geom.Rect2D {
	start, end := r.start, r.end
	if end.X <= start.X && end.Y <= start.Y {
		start, end = end, start
	}
	return geom.Rect2D{
		Left:   float64(start.X) - RoadAlignment,
		Top:    float64(start.Y) - RoadAlignment,
		Right:  float64(end.X) + RoadAlignment,
		Bottom: float64(end.Y) + RoadAlignment,
	}
}

type Building struct {
	Bounds Rectangle
}

// Office is a drop-off point where a dog trades its bag for score.
type Office struct {
	id     string
	pos    Point
	offset Offset
}

func NewOffice(id string, pos Point, offset Offset) Office {
	return Office{id: id, pos: pos, offset: offset}
}

func (o Office) ID() string {
	return o.id
}

func (o Office) Pos() Point {
	return o.pos
}

func (o Office) Offset() Offset {
	return o.offset
}

// Map is one static game level. Mutators are for the config loader; after
// loading, a Map is read-only.
type Map struct {
	id          string
	name        string
	roads       []Road
	buildings   []Building
	offices     []Office
	officeIndex map[string]int

	dogSpeed    float64
	bagCapacity int

	lootValues []uint32
	// lootTypes is the raw lootTypes array from the map config, served back
	// to the frontend verbatim.
	lootTypes json.RawMessage
}

func NewMap(id, name string, dogSpeed float64, bagCapacity int) *Map {
	return &Map{
		id:          id,
		name:        name,
		officeIndex: make(map[string]int),
		dogSpeed:    dogSpeed,
		bagCapacity: bagCapacity,
	}
}

func (m *Map) ID() string {
	return m.id
}

func (m *Map) Name() string {
	return m.name
}

func (m *Map) Roads() []Road {
	return m.roads
}

func (m *Map) Buildings() []Building {
	return m.buildings
}

func (m *Map) Offices() []Office {
	return m.offices
}

func (m *Map) DogSpeed() float64 {
	return m.dogSpeed
}

func (m *Map) BagCapacity() int {
	return m.bagCapacity
}

func (m *Map) LootTypeCount() int {
	return len(m.lootValues)
}

func (m *Map) LootTypeValue(typ uint32) uint32 {
	if int(typ) < len(m.lootValues) {
		return m.lootValues[typ]
	}
	return 0
}

func (m *Map) LootTypes() json.RawMessage {
	return m.lootTypes
}

func (m *Map) AddRoad(r Road) {
	m.roads = append(m.roads, r)
}

func (m *Map) AddBuilding(b Building) {
	m.buildings = append(m.buildings, b)
}

func (m *Map) AddOffice(o Office) error {
	if _, ok := m.officeIndex[o.id]; ok {
		return fmt.Errorf("duplicate office %s", o.id)
	}
	m.officeIndex[o.id] = len(m.offices)
	m.offices = append(m.offices, o)
	return nil
}

func (m *Map) AddLootValue(v uint32) {
	m.lootValues = append(m.lootValues, v)
}

func (m *Map) SetLootTypes(raw json.RawMessage) {
	m.lootTypes = raw
}

// OfficeTargets lists the map's offices as collision targets. The result is
// appended after the loot targets on every tick.
func (m *Map) OfficeTargets() []Target {
	targets := make([]Target, 0, len(m.offices))
	for _, o := range m.offices {
		targets = append(targets, Target{
			Kind:  TargetOffice,
			Pos:   geom.Point2D{X: float64(o.pos.X), Y: float64(o.pos.Y)},
			Width: OfficeWidth,
		})
	}
	return targets
}
