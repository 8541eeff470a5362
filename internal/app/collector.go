package app

import (
	"context"

	"go.uber.org/zap"

	"github.com/megalosandros/game-server/internal/model"
)

// Collector retires players whose dogs have been idle for too long. Runs
// after every tick, under the application lock.
type Collector struct {
	game    *model.Game
	players *Players
	records RecordStore
	log     *zap.Logger
}

func newCollector(game *model.Game, players *Players, records RecordStore, log *zap.Logger) *Collector {
	return &Collector{game: game, players: players, records: records, log: log}
}

// Collect evicts every retired player and writes their leaderboard record.
// A failed write loses the record but never keeps the player in the game.
func (c *Collector) Collect(ctx context.Context) {
	for _, pair := range c.players.Pairs() {
		if pair.Player.IdleTime() < c.game.RetirementTime() {
			continue
		}

		stats, err := c.players.RemovePlayer(pair.Token)
		if err != nil {
			c.log.Error("remove retired player", zap.Error(err))
			continue
		}

		if err := c.records.SaveRecord(ctx, stats); err != nil {
			c.log.Error("save retirement record",
				zap.String("player", stats.Name),
				zap.Error(err))
		}
	}
}
