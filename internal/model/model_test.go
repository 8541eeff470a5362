package model

import (
	"math"
	"testing"
	"time"

	"github.com/megalosandros/game-server/internal/geom"
)

func newTestMap(t *testing.T) *Map {
	t.Helper()

	m := NewMap("town", "Town", 2.0, 3)
	m.AddRoad(NewHorizontalRoad(Point{X: 0, Y: 0}, 10))
	m.AddRoad(NewVerticalRoad(Point{X: 0, Y: 0}, 10))
	m.AddLootValue(10)
	m.AddLootValue(50)
	if err := m.AddOffice(NewOffice("o1", Point{X: 5, Y: 0}, Offset{DX: 1, DY: 1})); err != nil {
		t.Fatalf("AddOffice: %v", err)
	}
	return m
}

func newTestSession(t *testing.T) *Session {
	t.Helper()
	g := NewGame(time.Second, 1.0, time.Minute)
	if err := g.AddMap(newTestMap(t)); err != nil {
		t.Fatalf("AddMap: %v", err)
	}
	return g.AddSession("town")
}

func almostEqual(a, b geom.Point2D) bool {
	const eps = 1e-9
	return math.Abs(a.X-b.X) <= eps && math.Abs(a.Y-b.Y) <= eps
}

func TestMapRejectsDuplicateOffice(t *testing.T) {
	m := newTestMap(t)
	if err := m.AddOffice(NewOffice("o1", Point{X: 1, Y: 0}, Offset{})); err == nil {
		t.Fatal("expected duplicate office error")
	}
}

func TestGameRejectsDuplicateMap(t *testing.T) {
	g := NewGame(time.Second, 1.0, time.Minute)
	if err := g.AddMap(NewMap("m1", "One", 1.0, 3)); err != nil {
		t.Fatalf("AddMap: %v", err)
	}
	if err := g.AddMap(NewMap("m1", "Other", 1.0, 3)); err == nil {
		t.Fatal("expected duplicate map error")
	}
}

func TestAddSessionIsIdempotent(t *testing.T) {
	g := NewGame(time.Second, 1.0, time.Minute)
	if err := g.AddMap(newTestMap(t)); err != nil {
		t.Fatalf("AddMap: %v", err)
	}

	first := g.AddSession("town")
	if first == nil {
		t.Fatal("AddSession returned nil for a known map")
	}
	if second := g.AddSession("town"); second != first {
		t.Error("second AddSession returned a different session")
	}
	if g.AddSession("nowhere") != nil {
		t.Error("AddSession for an unknown map must return nil")
	}
}

func TestDogSpawnsAtFirstRoadStart(t *testing.T) {
	s := newTestSession(t)

	dog := s.AddDog("Rex", false)
	if !almostEqual(dog.Pos(), geom.Point2D{X: 0, Y: 0}) {
		t.Errorf("spawn at %v, want first road start", dog.Pos())
	}
	if dog.Dir() != Up {
		t.Errorf("initial dir %q, want Up", dog.Dir())
	}
	if !geom.IsZeroVec(dog.Speed()) {
		t.Errorf("initial speed %v, want zero", dog.Speed())
	}
}

func TestChangeDirSetsSpeedAndKeepsFacingOnStop(t *testing.T) {
	s := newTestSession(t)
	dog := s.AddDog("Rex", false)

	dog.ChangeDir(Right)
	if dog.Speed() != (geom.Vec2D{X: 2.0}) {
		t.Errorf("speed after Right: %v", dog.Speed())
	}
	if dog.Dir() != Right {
		t.Errorf("dir after Right: %q", dog.Dir())
	}

	dog.ChangeDir(Stop)
	if !geom.IsZeroVec(dog.Speed()) {
		t.Errorf("speed after Stop: %v", dog.Speed())
	}
	if dog.Dir() != Right {
		t.Errorf("Stop must keep facing, got %q", dog.Dir())
	}
}

func TestStopCommandResetsIdleTime(t *testing.T) {
	s := newTestSession(t)
	dog := s.AddDog("Rex", false)

	dog.Move(s.Map(), 5*time.Second)
	if dog.IdleTime() != 5*time.Second {
		t.Fatalf("idle time %v, want 5s", dog.IdleTime())
	}

	dog.ChangeDir(Stop)
	if dog.IdleTime() != 0 {
		t.Errorf("a stop command must reset idle time, got %v", dog.IdleTime())
	}
}

func TestMoveAccruesPlayAndIdleTime(t *testing.T) {
	s := newTestSession(t)
	dog := s.AddDog("Rex", false)

	dog.Move(s.Map(), 2*time.Second)
	dog.ChangeDir(Right)
	dog.Move(s.Map(), time.Second)

	if dog.PlayTime() != 3*time.Second {
		t.Errorf("play time %v, want 3s", dog.PlayTime())
	}
	if dog.IdleTime() != 0 {
		t.Errorf("idle time %v, want 0 while moving", dog.IdleTime())
	}
}

func TestMoveStopsAtRoadBoundary(t *testing.T) {
	s := newTestSession(t)
	dog := s.AddDog("Rex", false)

	// Speed 2.0 for 10s would reach x=20, far past the road end at 10.4.
	dog.ChangeDir(Right)
	dog.Move(s.Map(), 10*time.Second)

	if !almostEqual(dog.Pos(), geom.Point2D{X: 10.4, Y: 0}) {
		t.Errorf("pos %v, want clamped to road edge (10.4, 0)", dog.Pos())
	}
	if !geom.IsZeroVec(dog.Speed()) {
		t.Errorf("speed %v, want zero after hitting the edge", dog.Speed())
	}
	if dog.Dir() != Right {
		t.Errorf("dir %q, facing must survive the stop", dog.Dir())
	}
}

func TestMovePrefersRoadMatchingDirection(t *testing.T) {
	s := newTestSession(t)
	dog := s.AddDog("Rex", false)

	// From the crossing at the origin the dog walks down the vertical road,
	// which the horizontal road's rectangle could not contain.
	dog.ChangeDir(Down)
	dog.Move(s.Map(), 2*time.Second)

	if !almostEqual(dog.Pos(), geom.Point2D{X: 0, Y: 4}) {
		t.Errorf("pos %v, want (0, 4) on the vertical road", dog.Pos())
	}
}

func TestGatherLootsFillsBagAndSkipsTakenLoot(t *testing.T) {
	s := newTestSession(t)
	fast := s.AddDog("Fast", false)
	slow := s.AddDog("Slow", false)

	s.SetLoots([]*Loot{NewLoot(1, 1, 50, geom.Point2D{X: 2, Y: 0})}, 2)

	targets := []Target{
		{Kind: TargetLoot, LootID: 1, Pos: geom.Point2D{X: 2, Y: 0}, Width: LootWidth},
	}
	// The faster sweep reaches the object earlier along its path.
	gatherers := []geom.Gatherer{
		{Start: geom.Point2D{X: 0, Y: 0}, End: geom.Point2D{X: 8, Y: 0}, Width: DogWidth, ID: uint64(fast.ID())},
		{Start: geom.Point2D{X: 0, Y: 0}, End: geom.Point2D{X: 4, Y: 0}, Width: DogWidth, ID: uint64(slow.ID())},
	}

	s.GatherLoots(targets, gatherers)

	if len(fast.Bag()) != 1 || fast.Bag()[0].ID != 1 {
		t.Fatalf("fast dog bag %v, want the contested object", fast.Bag())
	}
	if len(slow.Bag()) != 0 {
		t.Errorf("slow dog bag %v, want empty", slow.Bag())
	}
	if s.FindLoot(1) != nil {
		t.Error("gathered loot must leave the map")
	}
}

func TestGatherLootsRespectsBagCapacity(t *testing.T) {
	s := newTestSession(t)
	dog := s.AddDog("Rex", false)

	loots := make([]*Loot, 0, 4)
	targets := make([]Target, 0, 4)
	for i := uint32(1); i <= 4; i++ {
		pos := geom.Point2D{X: float64(i), Y: 0}
		loots = append(loots, NewLoot(i, 0, 10, pos))
		targets = append(targets, Target{Kind: TargetLoot, LootID: i, Pos: pos, Width: LootWidth})
	}
	s.SetLoots(loots, 5)

	gatherers := []geom.Gatherer{
		{Start: geom.Point2D{X: 0, Y: 0}, End: geom.Point2D{X: 6, Y: 0}, Width: DogWidth, ID: uint64(dog.ID())},
	}
	s.GatherLoots(targets, gatherers)

	if len(dog.Bag()) != 3 {
		t.Fatalf("bag size %d, want capacity 3", len(dog.Bag()))
	}
	if s.FindLoot(4) == nil {
		t.Error("the object that did not fit must stay on the map")
	}
}

func TestOfficeDepositConvertsBagToScore(t *testing.T) {
	s := newTestSession(t)
	dog := s.AddDog("Rex", false)

	s.SetLoots([]*Loot{NewLoot(1, 1, 50, geom.Point2D{X: 2, Y: 0})}, 2)

	targets := []Target{
		{Kind: TargetLoot, LootID: 1, Pos: geom.Point2D{X: 2, Y: 0}, Width: LootWidth},
	}
	targets = append(targets, s.Map().OfficeTargets()...)

	// One sweep passes the object at x=2 and the office at x=5 in order.
	gatherers := []geom.Gatherer{
		{Start: geom.Point2D{X: 0, Y: 0}, End: geom.Point2D{X: 8, Y: 0}, Width: DogWidth, ID: uint64(dog.ID())},
	}
	s.GatherLoots(targets, gatherers)

	if dog.Score() != 50 {
		t.Errorf("score %d, want 50 after the deposit", dog.Score())
	}
	if len(dog.Bag()) != 0 {
		t.Errorf("bag %v, want empty after the deposit", dog.Bag())
	}
}

func TestRemoveDogEvictsOnlyThatDog(t *testing.T) {
	s := newTestSession(t)
	first := s.AddDog("First", false)
	second := s.AddDog("Second", false)

	s.RemoveDog(first.ID())

	if s.FindDog(first.ID()) != nil {
		t.Error("removed dog still present")
	}
	if s.FindDog(second.ID()) == nil {
		t.Error("unrelated dog vanished")
	}
}
