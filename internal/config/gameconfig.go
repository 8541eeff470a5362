package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/megalosandros/game-server/internal/model"
)

const (
	defaultDogSpeed      = 1.0
	defaultBagCapacity   = 3
	defaultRetirementSec = 60.0
)

type gameFile struct {
	DefaultDogSpeed    *float64       `json:"defaultDogSpeed"`
	DefaultBagCapacity *int           `json:"defaultBagCapacity"`
	DogRetirementTime  *float64       `json:"dogRetirementTime"`
	LootGenerator      *lootGenConfig `json:"lootGeneratorConfig"`
	Maps               []mapConfig    `json:"maps"`
}

type lootGenConfig struct {
	Period      float64 `json:"period"`
	Probability float64 `json:"probability"`
}

type mapConfig struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	DogSpeed    *float64         `json:"dogSpeed"`
	BagCapacity *int             `json:"bagCapacity"`
	Roads       []roadConfig     `json:"roads"`
	Buildings   []buildingConfig `json:"buildings"`
	Offices     []officeConfig   `json:"offices"`
	LootTypes   json.RawMessage  `json:"lootTypes"`
}

type roadConfig struct {
	X0 int  `json:"x0"`
	Y0 int  `json:"y0"`
	X1 *int `json:"x1"`
	Y1 *int `json:"y1"`
}

type buildingConfig struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

type officeConfig struct {
	ID      string `json:"id"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	OffsetX int    `json:"offsetX"`
	OffsetY int    `json:"offsetY"`
}

type lootTypeConfig struct {
	Value *uint32 `json:"value"`
}

// LoadGame builds the game model from the JSON config file. Periods come in
// seconds and are converted to durations with millisecond precision.
func LoadGame(path string) (*model.Game, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read game config %s: %w", path, err)
	}

	var file gameFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse game config %s: %w", path, err)
	}

	if file.LootGenerator == nil {
		return nil, fmt.Errorf("game config %s: lootGeneratorConfig is required", path)
	}
	if file.LootGenerator.Period <= 0 {
		return nil, fmt.Errorf("game config %s: lootGeneratorConfig.period must be positive", path)
	}
	if len(file.Maps) == 0 {
		return nil, fmt.Errorf("game config %s: no maps defined", path)
	}

	dogSpeed := defaultDogSpeed
	if file.DefaultDogSpeed != nil {
		dogSpeed = *file.DefaultDogSpeed
	}
	bagCapacity := defaultBagCapacity
	if file.DefaultBagCapacity != nil {
		bagCapacity = *file.DefaultBagCapacity
	}
	retirementSec := defaultRetirementSec
	if file.DogRetirementTime != nil {
		retirementSec = *file.DogRetirementTime
	}

	game := model.NewGame(
		secondsToDuration(file.LootGenerator.Period),
		file.LootGenerator.Probability,
		secondsToDuration(retirementSec),
	)

	for _, mc := range file.Maps {
		m, err := loadMap(mc, dogSpeed, bagCapacity)
		if err != nil {
			return nil, fmt.Errorf("game config %s: %w", path, err)
		}
		if err := game.AddMap(m); err != nil {
			return nil, fmt.Errorf("game config %s: %w", path, err)
		}
	}

	return game, nil
}

func loadMap(mc mapConfig, defaultSpeed float64, defaultCapacity int) (*model.Map, error) {
	if len(mc.Roads) == 0 {
		return nil, fmt.Errorf("map %s: at least one road is required", mc.ID)
	}

	speed := defaultSpeed
	if mc.DogSpeed != nil {
		speed = *mc.DogSpeed
	}
	capacity := defaultCapacity
	if mc.BagCapacity != nil {
		capacity = *mc.BagCapacity
	}

	m := model.NewMap(mc.ID, mc.Name, speed, capacity)

	for i, rc := range mc.Roads {
		start := model.Point{X: rc.X0, Y: rc.Y0}
		switch {
		case rc.X1 != nil:
			m.AddRoad(model.NewHorizontalRoad(start, *rc.X1))
		case rc.Y1 != nil:
			m.AddRoad(model.NewVerticalRoad(start, *rc.Y1))
		default:
			return nil, fmt.Errorf("map %s: road %d has neither x1 nor y1", mc.ID, i)
		}
	}

	for _, bc := range mc.Buildings {
		m.AddBuilding(model.Building{Bounds: model.Rectangle{
			Position: model.Point{X: bc.X, Y: bc.Y},
			Size:     model.Size{Width: bc.W, Height: bc.H},
		}})
	}

	for _, oc := range mc.Offices {
		office := model.NewOffice(oc.ID,
			model.Point{X: oc.X, Y: oc.Y},
			model.Offset{DX: oc.OffsetX, DY: oc.OffsetY})
		if err := m.AddOffice(office); err != nil {
			return nil, fmt.Errorf("map %s: %w", mc.ID, err)
		}
	}

	// The loot spawner draws a random type per object, so a map with an
	// empty loot catalog must be refused here, not discovered mid-tick.
	if len(mc.LootTypes) == 0 {
		return nil, fmt.Errorf("map %s: lootTypes is required", mc.ID)
	}
	var lootTypes []lootTypeConfig
	if err := json.Unmarshal(mc.LootTypes, &lootTypes); err != nil {
		return nil, fmt.Errorf("map %s: parse lootTypes: %w", mc.ID, err)
	}
	if len(lootTypes) == 0 {
		return nil, fmt.Errorf("map %s: lootTypes must not be empty", mc.ID)
	}
	for i, lt := range lootTypes {
		if lt.Value == nil {
			return nil, fmt.Errorf("map %s: lootTypes[%d] has no value", mc.ID, i)
		}
		m.AddLootValue(*lt.Value)
	}
	m.SetLootTypes(mc.LootTypes)

	return m, nil
}

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds*1000) * time.Millisecond
}
