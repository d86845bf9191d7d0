package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/playforge/tictactoe-ai-backend/internal/game"
)

type sqliteStats struct {
	db *sql.DB
}

func NewSQLiteStatsRepository(db *sql.DB) StatsRepository {
	return &sqliteStats{
		db: db,
	}
}

func (that *sqliteStats) RecordResult(ctx context.Context, result game.Result) error {
	query := `INSERT INTO game_results (winner, moves, difficulty) VALUES (?, ?, ?)`

	_, err := that.db.ExecContext(ctx, query, result.Winner, result.Moves, result.Difficulty.String())
	if err != nil {
		return fmt.Errorf("failed to insert game result: %w", err)
	}

	return nil
}

func (that *sqliteStats) Summary(ctx context.Context) (*StatsSummary, error) {
	summary := &StatsSummary{
		Difficulties: make(map[string]DifficultyStats),
	}

	totalsQuery := `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN winner = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN winner = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN winner = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(moves), 0)
		FROM game_results`

	row := that.db.QueryRowContext(ctx, totalsQuery, game.WinnerHuman, game.WinnerAI, game.WinnerTie)
	if err := row.Scan(&summary.TotalGames, &summary.HumanWins, &summary.AIWins, &summary.Draws, &summary.TotalMoves); err != nil {
		return nil, fmt.Errorf("failed to scan stats totals: %w", err)
	}

	perDifficultyQuery := `
		SELECT difficulty, COUNT(*), SUM(CASE WHEN winner = ? THEN 1 ELSE 0 END)
		FROM game_results
		GROUP BY difficulty`

	rows, err := that.db.QueryContext(ctx, perDifficultyQuery, game.WinnerHuman)
	if err != nil {
		return nil, fmt.Errorf("failed to query per-difficulty stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var difficulty string
		var stats DifficultyStats

		if err = rows.Scan(&difficulty, &stats.Games, &stats.Wins); err != nil {
			return nil, fmt.Errorf("failed to scan per-difficulty stats: %w", err)
		}

		summary.Difficulties[difficulty] = stats
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate per-difficulty stats: %w", err)
	}

	return summary, nil
}
