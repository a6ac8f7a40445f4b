// Package database persists finished games and player stats to
// Postgres. The pool is a package global guarded by nil checks so the
// game runs fine without a database in development.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

// Pool is the shared connection pool. Nil when no database is
// configured.
var Pool *pgxpool.Pool

// Connect opens the pool and verifies connectivity.
func Connect(ctx context.Context, url string) error {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("ping database: %w", err)
	}
	Pool = pool
	log.Info("connected to postgres")
	return nil
}

// Close releases the pool. Safe to call when never connected.
func Close() {
	if Pool != nil {
		Pool.Close()
		Pool = nil
	}
}

// GameSummary is everything persisted about a finished game.
type GameSummary struct {
	RoomCode string
	GameType string
	Players  []string
	Names    map[string]string
	Scores   map[string]int
	Winner   string
	Duration time.Duration
}

// SaveFinishedGame records the game row and bumps per-player stats in
// one transaction.
func SaveFinishedGame(ctx context.Context, s GameSummary) error {
	if Pool == nil {
		return fmt.Errorf("database not connected")
	}
	tx, err := Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var gameID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO games (room_code, game_type, winner_id, duration_ms, finished_at)
		VALUES ($1, $2, $3, $4, now())
		RETURNING id`,
		s.RoomCode, s.GameType, s.Winner, s.Duration.Milliseconds(),
	).Scan(&gameID)
	if err != nil {
		return fmt.Errorf("insert game: %w", err)
	}

	for _, pid := range s.Players {
		won := pid == s.Winner
		_, err = tx.Exec(ctx, `
			INSERT INTO game_players (game_id, player_id, display_name, score, won)
			VALUES ($1, $2, $3, $4, $5)`,
			gameID, pid, s.Names[pid], s.Scores[pid], won,
		)
		if err != nil {
			return fmt.Errorf("insert game player: %w", err)
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO player_stats (player_id, games_played, games_won, total_score)
			VALUES ($1, 1, $2, $3)
			ON CONFLICT (player_id) DO UPDATE SET
				games_played = player_stats.games_played + 1,
				games_won    = player_stats.games_won + $2,
				total_score  = player_stats.total_score + $3`,
			pid, boolToInt(won), s.Scores[pid],
		)
		if err != nil {
			return fmt.Errorf("upsert player stats: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	log.WithFields(log.Fields{"room": s.RoomCode, "winner": s.Winner}).Debug("saved finished game")
	return nil
}

// LeaderboardEntry is one row of the win leaderboard.
type LeaderboardEntry struct {
	PlayerID    string `json:"player_id"`
	GamesPlayed int    `json:"games_played"`
	GamesWon    int    `json:"games_won"`
	TotalScore  int    `json:"total_score"`
}

// GetLeaderboard returns the top players by wins.
func GetLeaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if Pool == nil {
		return nil, fmt.Errorf("database not connected")
	}
	rows, err := Pool.Query(ctx, `
		SELECT player_id, games_played, games_won, total_score
		FROM player_stats
		ORDER BY games_won DESC, total_score DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	var out []LeaderboardEntry
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.PlayerID, &e.GamesPlayed, &e.GamesWon, &e.TotalScore); err != nil {
			return nil, fmt.Errorf("scan leaderboard row: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// PlayerStats fetches one player's aggregate record.
func PlayerStats(ctx context.Context, playerID string) (LeaderboardEntry, error) {
	var e LeaderboardEntry
	if Pool == nil {
		return e, fmt.Errorf("database not connected")
	}
	err := Pool.QueryRow(ctx, `
		SELECT player_id, games_played, games_won, total_score
		FROM player_stats WHERE player_id = $1`, playerID,
	).Scan(&e.PlayerID, &e.GamesPlayed, &e.GamesWon, &e.TotalScore)
	if err != nil {
		return e, fmt.Errorf("query player stats: %w", err)
	}
	return e, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
