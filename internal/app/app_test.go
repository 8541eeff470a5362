package app

import (
	"context"
	"regexp"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/megalosandros/game-server/internal/model"
)

type fakeRecordStore struct {
	saved   []Statistics
	saveErr error
}

func (f *fakeRecordStore) SaveRecord(_ context.Context, stats Statistics) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, stats)
	return nil
}

func (f *fakeRecordStore) Records(_ context.Context, start, maxItems int) ([]Statistics, error) {
	if start >= len(f.saved) {
		return nil, nil
	}
	end := min(start+maxItems, len(f.saved))
	return f.saved[start:end], nil
}

func newTestGame(t *testing.T, retirement time.Duration) *model.Game {
	t.Helper()

	m := model.NewMap("town", "Town", 2.0, 3)
	m.AddRoad(model.NewHorizontalRoad(model.Point{X: 0, Y: 0}, 10))
	m.AddLootValue(10)
	if err := m.AddOffice(model.NewOffice("o1", model.Point{X: 5, Y: 0}, model.Offset{})); err != nil {
		t.Fatalf("AddOffice: %v", err)
	}

	g := model.NewGame(time.Second, 0.0, retirement)
	if err := g.AddMap(m); err != nil {
		t.Fatalf("AddMap: %v", err)
	}
	return g
}

func newTestApp(t *testing.T, store RecordStore, retirement time.Duration) *Application {
	t.Helper()
	return New(newTestGame(t, retirement), store, false, zap.NewNop())
}

var tokenPattern = regexp.MustCompile(`^[0-9a-f]{32}$`)

func TestJoinGame(t *testing.T) {
	a := newTestApp(t, &fakeRecordStore{}, time.Minute)

	res, err := a.JoinGame("Rex", "town")
	if err != nil {
		t.Fatalf("JoinGame: %v", err)
	}
	if !tokenPattern.MatchString(string(res.Token)) {
		t.Errorf("token %q is not 32 hex characters", res.Token)
	}
	if res.PlayerID == 0 {
		t.Error("player id 0 must never be issued")
	}
}

func TestJoinGameRejectsEmptyName(t *testing.T) {
	a := newTestApp(t, &fakeRecordStore{}, time.Minute)

	if _, err := a.JoinGame("", "town"); err != ErrInvalidName {
		t.Errorf("err = %v, want ErrInvalidName", err)
	}
}

func TestJoinGameRejectsUnknownMap(t *testing.T) {
	a := newTestApp(t, &fakeRecordStore{}, time.Minute)

	if _, err := a.JoinGame("Rex", "nowhere"); err != ErrMapNotFound {
		t.Errorf("err = %v, want ErrMapNotFound", err)
	}
}

func TestGetMap(t *testing.T) {
	a := newTestApp(t, &fakeRecordStore{}, time.Minute)

	if _, err := a.GetMap("town"); err != nil {
		t.Errorf("GetMap(town): %v", err)
	}
	if _, err := a.GetMap("nowhere"); err != ErrMapNotFound {
		t.Errorf("GetMap(nowhere): err = %v, want ErrMapNotFound", err)
	}
}

func TestGetPlayersListsSessionMates(t *testing.T) {
	a := newTestApp(t, &fakeRecordStore{}, time.Minute)

	first, err := a.JoinGame("First", "town")
	if err != nil {
		t.Fatalf("JoinGame: %v", err)
	}
	if _, err := a.JoinGame("Second", "town"); err != nil {
		t.Fatalf("JoinGame: %v", err)
	}

	players, err := a.GetPlayers(first.Token)
	if err != nil {
		t.Fatalf("GetPlayers: %v", err)
	}
	if len(players) != 2 {
		t.Fatalf("player count %d, want 2", len(players))
	}
}

func TestGetPlayersRejectsUnknownToken(t *testing.T) {
	a := newTestApp(t, &fakeRecordStore{}, time.Minute)

	if _, err := a.GetPlayers(Token("0123456789abcdef0123456789abcdef")); err != ErrUnknownToken {
		t.Errorf("err = %v, want ErrUnknownToken", err)
	}
}

func TestGetStateReflectsMovement(t *testing.T) {
	a := newTestApp(t, &fakeRecordStore{}, time.Minute)

	joined, err := a.JoinGame("Rex", "town")
	if err != nil {
		t.Fatalf("JoinGame: %v", err)
	}
	if err := a.ChangeDir(joined.Token, model.Right); err != nil {
		t.Fatalf("ChangeDir: %v", err)
	}
	a.Tick(time.Second)

	state, err := a.GetState(joined.Token)
	if err != nil {
		t.Fatalf("GetState: %v", err)
	}
	if len(state.Players) != 1 {
		t.Fatalf("players in state: %d, want 1", len(state.Players))
	}
	if got := state.Players[0].Pos.X; got != 2.0 {
		t.Errorf("pos.X = %v, want 2.0 after 1s at speed 2", got)
	}
	if state.Players[0].Dir != model.Right {
		t.Errorf("dir = %q, want Right", state.Players[0].Dir)
	}
}

func TestTickRetiresIdlePlayers(t *testing.T) {
	store := &fakeRecordStore{}
	a := newTestApp(t, store, 2*time.Second)

	joined, err := a.JoinGame("Sleepy", "town")
	if err != nil {
		t.Fatalf("JoinGame: %v", err)
	}

	a.Tick(3 * time.Second)

	if _, err := a.GetState(joined.Token); err != ErrUnknownToken {
		t.Errorf("retired player's token still works: err = %v", err)
	}
	if len(store.saved) != 1 {
		t.Fatalf("saved records: %d, want 1", len(store.saved))
	}
	if store.saved[0].Name != "Sleepy" || store.saved[0].PlayTime != 3*time.Second {
		t.Errorf("record %+v, want name Sleepy, play time 3s", store.saved[0])
	}
}

func TestActivityDefersRetirement(t *testing.T) {
	store := &fakeRecordStore{}
	a := newTestApp(t, store, 2*time.Second)

	joined, err := a.JoinGame("Busy", "town")
	if err != nil {
		t.Fatalf("JoinGame: %v", err)
	}

	a.Tick(time.Second)
	// Even a stop command counts as activity and restarts the idle clock.
	if err := a.ChangeDir(joined.Token, model.Stop); err != nil {
		t.Fatalf("ChangeDir: %v", err)
	}
	a.Tick(time.Second)

	if _, err := a.GetState(joined.Token); err != nil {
		t.Errorf("active player was retired: %v", err)
	}
}

func TestGetRecordsCapsPageSize(t *testing.T) {
	a := newTestApp(t, &fakeRecordStore{}, time.Minute)

	if _, err := a.GetRecords(context.Background(), 0, MaxRecordItems+1); err != ErrTooManyRecords {
		t.Errorf("err = %v, want ErrTooManyRecords", err)
	}
	if _, err := a.GetRecords(context.Background(), 0, MaxRecordItems); err != nil {
		t.Errorf("err = %v, want nil at the cap", err)
	}
}

func TestParseBearer(t *testing.T) {
	token := NewToken()

	got, ok := ParseBearer("Bearer " + string(token))
	if !ok || got != token {
		t.Errorf("ParseBearer round trip failed: %q %v", got, ok)
	}

	for _, header := range []string{
		"",
		"Bearer",
		"Bearer short",
		"bearer " + string(token),
		"Token " + string(token),
		"Bearer " + string(token) + "ff",
	} {
		if _, ok := ParseBearer(header); ok {
			t.Errorf("ParseBearer(%q) accepted a malformed header", header)
		}
	}
}
