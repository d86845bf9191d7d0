package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/playforge/tictactoe-ai-backend/internal/game"
)

const statsKey = "stats"

// DifficultyStats counts games played at one tier and how many of them the
// human won.
type DifficultyStats struct {
	Games int64 `json:"games"`
	Wins  int64 `json:"wins"`
}

// StatsSummary aggregates every recorded game result. Win rate and average
// game length are derived by the consumer from these counters.
type StatsSummary struct {
	TotalGames   int64                      `json:"total_games"`
	HumanWins    int64                      `json:"human_wins"`
	AIWins       int64                      `json:"ai_wins"`
	Draws        int64                      `json:"draws"`
	TotalMoves   int64                      `json:"total_moves"`
	Difficulties map[string]DifficultyStats `json:"difficulties"`
}

type StatsRepository interface {
	RecordResult(ctx context.Context, result game.Result) error
	Summary(ctx context.Context) (*StatsSummary, error)
}

type redisStats struct {
	client *redis.Client
}

func NewRedisStatsRepository(client *redis.Client) StatsRepository {
	return &redisStats{
		client: client,
	}
}

func (that *redisStats) RecordResult(ctx context.Context, result game.Result) error {
	difficulty := result.Difficulty.String()

	pipe := that.client.TxPipeline()
	pipe.HIncrBy(ctx, statsKey, "total_games", 1)
	pipe.HIncrBy(ctx, statsKey, "total_moves", int64(result.Moves))
	pipe.HIncrBy(ctx, statsKey, "difficulty:"+difficulty+":games", 1)

	switch result.Winner {
	case game.WinnerHuman:
		pipe.HIncrBy(ctx, statsKey, "human_wins", 1)
		pipe.HIncrBy(ctx, statsKey, "difficulty:"+difficulty+":wins", 1)
	case game.WinnerAI:
		pipe.HIncrBy(ctx, statsKey, "ai_wins", 1)
	default:
		pipe.HIncrBy(ctx, statsKey, "draws", 1)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to increment stats counters: %w", err)
	}

	return nil
}

func (that *redisStats) Summary(ctx context.Context) (*StatsSummary, error) {
	fields, err := that.client.HGetAll(ctx, statsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read stats hash: %w", err)
	}

	summary := &StatsSummary{
		Difficulties: make(map[string]DifficultyStats),
	}

	for field, raw := range fields {
		value, parseErr := strconv.ParseInt(raw, 10, 64)
		if parseErr != nil {
			return nil, fmt.Errorf("failed to parse stats field %q: %w", field, parseErr)
		}

		switch field {
		case "total_games":
			summary.TotalGames = value
		case "human_wins":
			summary.HumanWins = value
		case "ai_wins":
			summary.AIWins = value
		case "draws":
			summary.Draws = value
		case "total_moves":
			summary.TotalMoves = value
		default:
			parts := strings.Split(field, ":")
			if len(parts) != 3 || parts[0] != "difficulty" {
				continue
			}

			stats := summary.Difficulties[parts[1]]
			switch parts[2] {
			case "games":
				stats.Games = value
			case "wins":
				stats.Wins = value
			}
			summary.Difficulties[parts[1]] = stats
		}
	}

	return summary, nil
}
