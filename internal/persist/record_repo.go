package persist

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/megalosandros/game-server/internal/app"
)

// RecordRepo is the Postgres leaderboard. Implements app.RecordStore.
type RecordRepo struct {
	db *DB
}

func NewRecordRepo(db *DB) *RecordRepo {
	return &RecordRepo{db: db}
}

func (r *RecordRepo) SaveRecord(ctx context.Context, stats app.Statistics) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO retired_players (id, name, score, play_time_ms)
		 VALUES ($1, $2, $3, $4)`,
		uuid.New(), stats.Name, int32(stats.Score), stats.PlayTime.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("insert retired player: %w", err)
	}
	return nil
}

// Records reads one leaderboard page: best score first, ties broken by the
// shortest game, then by name.
func (r *RecordRepo) Records(ctx context.Context, start, maxItems int) ([]app.Statistics, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT name, score, play_time_ms
		 FROM retired_players
		 ORDER BY score DESC, play_time_ms, name
		 LIMIT $1 OFFSET $2`,
		maxItems, start,
	)
	if err != nil {
		return nil, fmt.Errorf("select retired players: %w", err)
	}
	defer rows.Close()

	var records []app.Statistics
	for rows.Next() {
		var (
			name       string
			score      int32
			playTimeMs int64
		)
		if err := rows.Scan(&name, &score, &playTimeMs); err != nil {
			return nil, fmt.Errorf("scan retired player: %w", err)
		}
		records = append(records, app.Statistics{
			Name:     name,
			Score:    uint32(score),
			PlayTime: time.Duration(playTimeMs) * time.Millisecond,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate retired players: %w", err)
	}
	return records, nil
}
