package handler

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/megalosandros/game-server/internal/app"
	"github.com/megalosandros/game-server/internal/model"
)

// API serves the /api/v1 surface. Every JSON response carries
// Cache-Control: no-cache so clients always see live game state.
type API struct {
	app *app.Application
	log *zap.Logger
}

func NewAPI(application *app.Application, log *zap.Logger) *API {
	return &API{app: application, log: log}
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (a *API) respondJSON(w http.ResponseWriter, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		a.log.Error("marshal response", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(status)
	w.Write(data)
}

func (a *API) respondError(w http.ResponseWriter, status int, code, message string) {
	a.respondJSON(w, status, errorBody{Code: code, Message: message})
}

// respondAppError maps application errors onto the wire: a *app.Error is
// serialized verbatim with its status, anything else is an internal failure.
func (a *API) respondAppError(w http.ResponseWriter, err error) {
	var appErr *app.Error
	if errors.As(err, &appErr) {
		a.respondError(w, appErr.Status, appErr.Code, appErr.Message)
		return
	}
	a.log.Error("request failed", zap.Error(err))
	http.Error(w, "internal error", http.StatusInternalServerError)
}

// requireJSON gates POST endpoints on the request content type.
func (a *API) requireJSON(w http.ResponseWriter, r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		a.respondError(w, http.StatusBadRequest, "invalidArgument", "Invalid content type")
		return false
	}
	return true
}

// authorize extracts the bearer token. The token only has to look valid
// here; whether it is registered is the application's call.
func (a *API) authorize(w http.ResponseWriter, r *http.Request) (app.Token, bool) {
	token, ok := app.ParseBearer(r.Header.Get("Authorization"))
	if !ok {
		a.respondError(w, http.StatusUnauthorized, "invalidToken", "Authorization header is missing")
		return "", false
	}
	return token, true
}

type mapSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type roadJSON struct {
	X0 int  `json:"x0"`
	Y0 int  `json:"y0"`
	X1 *int `json:"x1,omitempty"`
	Y1 *int `json:"y1,omitempty"`
}

type buildingJSON struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

type officeJSON struct {
	ID      string `json:"id"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	OffsetX int    `json:"offsetX"`
	OffsetY int    `json:"offsetY"`
}

type mapJSON struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Roads     []roadJSON      `json:"roads"`
	Buildings []buildingJSON  `json:"buildings"`
	Offices   []officeJSON    `json:"offices"`
	LootTypes json.RawMessage `json:"lootTypes,omitempty"`
}

func (a *API) handleMaps(w http.ResponseWriter, r *http.Request) {
	maps := a.app.GetMaps()
	result := make([]mapSummary, 0, len(maps))
	for _, m := range maps {
		result = append(result, mapSummary{ID: m.ID(), Name: m.Name()})
	}
	a.respondJSON(w, http.StatusOK, result)
}

func (a *API) handleMap(w http.ResponseWriter, r *http.Request, id string) {
	m, err := a.app.GetMap(id)
	if err != nil {
		a.respondAppError(w, err)
		return
	}
	a.respondJSON(w, http.StatusOK, serializeMap(m))
}

func serializeMap(m *model.Map) mapJSON {
	doc := mapJSON{
		ID:        m.ID(),
		Name:      m.Name(),
		Roads:     make([]roadJSON, 0, len(m.Roads())),
		Buildings: make([]buildingJSON, 0, len(m.Buildings())),
		Offices:   make([]officeJSON, 0, len(m.Offices())),
		LootTypes: m.LootTypes(),
	}
	for _, road := range m.Roads() {
		rj := roadJSON{X0: road.Start().X, Y0: road.Start().Y}
		if road.IsHorizontal() {
			x1 := road.End().X
			rj.X1 = &x1
		} else {
			y1 := road.End().Y
			rj.Y1 = &y1
		}
		doc.Roads = append(doc.Roads, rj)
	}
	for _, b := range m.Buildings() {
		doc.Buildings = append(doc.Buildings, buildingJSON{
			X: b.Bounds.Position.X,
			Y: b.Bounds.Position.Y,
			W: b.Bounds.Size.Width,
			H: b.Bounds.Size.Height,
		})
	}
	for _, o := range m.Offices() {
		doc.Offices = append(doc.Offices, officeJSON{
			ID:      o.ID(),
			X:       o.Pos().X,
			Y:       o.Pos().Y,
			OffsetX: o.Offset().DX,
			OffsetY: o.Offset().DY,
		})
	}
	return doc
}

type joinRequest struct {
	UserName string `json:"userName"`
	MapID    string `json:"mapId"`
}

type joinResponse struct {
	AuthToken string `json:"authToken"`
	PlayerID  uint32 `json:"playerId"`
}

func (a *API) handleJoin(w http.ResponseWriter, r *http.Request) {
	if !a.requireJSON(w, r) {
		return
	}

	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.respondError(w, http.StatusBadRequest, "invalidArgument", "Join game request parse error")
		return
	}

	result, err := a.app.JoinGame(req.UserName, req.MapID)
	if err != nil {
		a.respondAppError(w, err)
		return
	}
	a.respondJSON(w, http.StatusOK, joinResponse{
		AuthToken: string(result.Token),
		PlayerID:  result.PlayerID,
	})
}

type playerName struct {
	Name string `json:"name"`
}

func (a *API) handlePlayers(w http.ResponseWriter, r *http.Request) {
	token, ok := a.authorize(w, r)
	if !ok {
		return
	}

	players, err := a.app.GetPlayers(token)
	if err != nil {
		a.respondAppError(w, err)
		return
	}

	result := make(map[string]playerName, len(players))
	for _, p := range players {
		result[strconv.FormatUint(uint64(p.ID), 10)] = playerName{Name: p.Name}
	}
	a.respondJSON(w, http.StatusOK, result)
}

type bagItemJSON struct {
	ID   uint32 `json:"id"`
	Type uint32 `json:"type"`
}

type playerStateJSON struct {
	Pos   [2]float64    `json:"pos"`
	Speed [2]float64    `json:"speed"`
	Dir   string        `json:"dir"`
	Bag   []bagItemJSON `json:"bag"`
	Score uint32        `json:"score"`
}

type lootStateJSON struct {
	Type uint32     `json:"type"`
	Pos  [2]float64 `json:"pos"`
}

type stateJSON struct {
	Players     map[string]playerStateJSON `json:"players"`
	LostObjects map[string]lootStateJSON   `json:"lostObjects"`
}

func (a *API) handleState(w http.ResponseWriter, r *http.Request) {
	token, ok := a.authorize(w, r)
	if !ok {
		return
	}

	state, err := a.app.GetState(token)
	if err != nil {
		a.respondAppError(w, err)
		return
	}

	doc := stateJSON{
		Players:     make(map[string]playerStateJSON, len(state.Players)),
		LostObjects: make(map[string]lootStateJSON, len(state.Loots)),
	}
	for _, p := range state.Players {
		bag := make([]bagItemJSON, 0, len(p.Bag))
		for _, item := range p.Bag {
			bag = append(bag, bagItemJSON{ID: item.ID, Type: item.Type})
		}
		doc.Players[strconv.FormatUint(uint64(p.ID), 10)] = playerStateJSON{
			Pos:   [2]float64{p.Pos.X, p.Pos.Y},
			Speed: [2]float64{p.Speed.X, p.Speed.Y},
			Dir:   p.Dir.String(),
			Bag:   bag,
			Score: p.Score,
		}
	}
	for _, l := range state.Loots {
		doc.LostObjects[strconv.FormatUint(uint64(l.ID), 10)] = lootStateJSON{
			Type: l.Type,
			Pos:  [2]float64{l.Pos.X, l.Pos.Y},
		}
	}
	a.respondJSON(w, http.StatusOK, doc)
}

type actionRequest struct {
	Move *string `json:"move"`
}

func (a *API) handleAction(w http.ResponseWriter, r *http.Request) {
	if !a.requireJSON(w, r) {
		return
	}
	token, ok := a.authorize(w, r)
	if !ok {
		return
	}

	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Move == nil {
		a.respondError(w, http.StatusBadRequest, "invalidArgument", "Failed to parse action JSON")
		return
	}
	dir, ok := model.DirectionFromString(*req.Move)
	if !ok {
		a.respondError(w, http.StatusBadRequest, "invalidArgument", "Failed to parse action JSON")
		return
	}

	if err := a.app.ChangeDir(token, dir); err != nil {
		a.respondAppError(w, err)
		return
	}
	a.respondJSON(w, http.StatusOK, struct{}{})
}

type tickRequest struct {
	TimeDelta *json.Number `json:"timeDelta"`
}

func (a *API) handleTick(w http.ResponseWriter, r *http.Request) {
	if !a.requireJSON(w, r) {
		return
	}

	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	var req tickRequest
	if err := dec.Decode(&req); err != nil || req.TimeDelta == nil {
		a.respondError(w, http.StatusBadRequest, "invalidArgument", "Failed to parse tick request JSON")
		return
	}
	ms, err := req.TimeDelta.Int64()
	if err != nil || ms <= 0 {
		a.respondError(w, http.StatusBadRequest, "invalidArgument", "Failed to parse tick request JSON")
		return
	}

	a.app.Tick(time.Duration(ms) * time.Millisecond)
	a.respondJSON(w, http.StatusOK, struct{}{})
}

type recordJSON struct {
	Name     string  `json:"name"`
	Score    uint32  `json:"score"`
	PlayTime float64 `json:"playTime"`
}

func (a *API) handleRecords(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	start := intParam(query.Get("start"), 0)
	maxItems := intParam(query.Get("maxItems"), 100)

	records, err := a.app.GetRecords(r.Context(), start, maxItems)
	if err != nil {
		a.respondAppError(w, err)
		return
	}

	result := make([]recordJSON, 0, len(records))
	for _, rec := range records {
		result = append(result, recordJSON{
			Name:     rec.Name,
			Score:    rec.Score,
			PlayTime: float64(rec.PlayTime.Milliseconds()) / 1000.0,
		})
	}
	a.respondJSON(w, http.StatusOK, result)
}

// intParam falls back to def on an absent or malformed value.
func intParam(value string, def int) int {
	if value == "" {
		return def
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return n
}
