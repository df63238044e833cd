package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// MatchResult is one player's line in a finished match.
type MatchResult struct {
	PlayerID uuid.UUID
	Name     string
	Score    int
	DidWin   bool
}

// RecordMatchResult persists the outcome of a concluded match. This is a
// write-only audit record: rooms are never reconstructed from it.
func RecordMatchResult(ctx context.Context, roomCode string, winnerID uuid.UUID, results []MatchResult) error {
	err := pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		var matchID uuid.UUID
		insertMatch := `
			INSERT INTO matches (room_code, winner_id, finished_at)
			VALUES ($1, $2, NOW())
			RETURNING id
		`
		if err := tx.QueryRow(ctx, insertMatch, roomCode, winnerID).Scan(&matchID); err != nil {
			return err
		}

		insertResult := `
			INSERT INTO match_results (match_id, player_id, player_name, score, did_win)
			VALUES ($1, $2, $3, $4, $5)
		`
		for _, res := range results {
			if _, err := tx.Exec(ctx, insertResult, matchID, res.PlayerID, res.Name, res.Score, res.DidWin); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("record match result for room %s: %w", roomCode, err)
	}
	return nil
}
