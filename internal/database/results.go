// internal/database/results.go
package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/quattroplay/quattro/internal/models"
)

// InsertGameResult persists one finished-game summary: a game_results row
// plus one game_result_players row per seat, in a single transaction.
// Replays of the same game ID upsert rather than duplicate.
func InsertGameResult(ctx context.Context, res models.GameResult) error {
	played, err := json.Marshal(res.PlayedCards)
	if err != nil {
		return fmt.Errorf("failed to marshal played cards: %w", err)
	}

	err = pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		upsert := `
			INSERT INTO game_results (game_id, room_id, winner_id, total_turns, played_cards, duration_ms, finished_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (game_id) DO UPDATE
			SET winner_id = EXCLUDED.winner_id,
			    total_turns = EXCLUDED.total_turns,
			    played_cards = EXCLUDED.played_cards,
			    duration_ms = EXCLUDED.duration_ms,
			    finished_at = EXCLUDED.finished_at
		`
		if _, e := tx.Exec(ctx, upsert,
			res.GameID, res.RoomID, res.Winner, res.TotalTurns,
			played, res.Duration.Milliseconds(), res.FinishedAt,
		); e != nil {
			return e
		}

		for _, p := range res.Players {
			q := `
				INSERT INTO game_result_players (game_id, player_id, player_name, position, did_win)
				VALUES ($1, $2, $3, $4, $5)
				ON CONFLICT (game_id, player_id)
				DO UPDATE SET player_name = $3, position = $4, did_win = $5
			`
			if _, e := tx.Exec(ctx, q, res.GameID, p.PlayerID, p.PlayerName, p.Position, p.PlayerID == res.Winner); e != nil {
				return e
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("tx upsert game result: %w", err)
	}
	return nil
}

// LeaderboardEntry aggregates one player name's historical record.
type LeaderboardEntry struct {
	PlayerName  string `json:"playerName"`
	Wins        int    `json:"wins"`
	GamesPlayed int    `json:"gamesPlayed"`
}

// TopWinners aggregates persisted results by player name, ordered by win
// count. Guests pick their own names, so this is a vanity board, not an
// identity-keyed ranking.
func TopWinners(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	q := `
		SELECT player_name,
		       COUNT(*) FILTER (WHERE did_win) AS wins,
		       COUNT(*) AS games_played
		FROM game_result_players
		GROUP BY player_name
		ORDER BY wins DESC, games_played DESC
		LIMIT $1
	`
	rows, err := DB.Query(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("leaderboard query: %w", err)
	}
	defer rows.Close()

	var entries []LeaderboardEntry
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.PlayerName, &e.Wins, &e.GamesPlayed); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
