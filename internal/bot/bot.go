package bot

import (
	"fmt"
	"math/rand"

	"github.com/playforge/tictactoe-ai-backend/internal/apperror"
	"github.com/playforge/tictactoe-ai-backend/internal/engine"
	"github.com/playforge/tictactoe-ai-backend/internal/entity"
)

// Difficulty is a closed set of AI strength tiers.
type Difficulty int

const (
	Easy Difficulty = iota
	Medium
	Hard
)

// DefaultMediumOptimalRate is the probability that Medium plays the
// engine move instead of a random one.
const DefaultMediumOptimalRate = 0.5

func ParseDifficulty(s string) (Difficulty, error) {
	switch s {
	case "easy":
		return Easy, nil
	case "medium":
		return Medium, nil
	case "hard":
		return Hard, nil
	default:
		return 0, fmt.Errorf("%w: %q", apperror.ErrUnknownDifficulty, s)
	}
}

func (that Difficulty) String() string {
	switch that {
	case Easy:
		return "easy"
	case Medium:
		return "medium"
	case Hard:
		return "hard"
	default:
		return fmt.Sprintf("difficulty(%d)", int(that))
	}
}

type Service interface {
	PickMove(board entity.Board, mark string, difficulty Difficulty) (int, error)
}

type service struct {
	rng         *rand.Rand
	optimalRate float64
}

// NewService - creates a move picker. The random source is injected so
// Easy and Medium stay reproducible under a fixed seed; optimalRate is the
// Medium tier's probability of playing the engine move.
func NewService(rng *rand.Rand, optimalRate float64) Service {
	return &service{
		rng:         rng,
		optimalRate: optimalRate,
	}
}

// PickMove - selects the AI's cell on an ongoing board.
// Easy ignores the engine entirely, Hard always follows it, Medium mixes
// the two by optimalRate.
func (that *service) PickMove(board entity.Board, mark string, difficulty Difficulty) (int, error) {
	switch difficulty {
	case Easy:
		return that.randomMove(board)
	case Medium:
		if that.rng.Float64() < that.optimalRate {
			return that.optimalMove(board, mark)
		}
		return that.randomMove(board)
	case Hard:
		return that.optimalMove(board, mark)
	default:
		return 0, fmt.Errorf("%w: %d", apperror.ErrUnknownDifficulty, int(difficulty))
	}
}

func (that *service) randomMove(board entity.Board) (int, error) {
	cells := board.AvailableCells()
	if len(cells) == 0 {
		return 0, apperror.ErrNoAvailableMoves
	}

	return cells[that.rng.Intn(len(cells))], nil
}

func (that *service) optimalMove(board entity.Board, mark string) (int, error) {
	result, err := engine.Search(board, mark)
	if err != nil {
		return 0, fmt.Errorf("failed to search best move: %w", err)
	}

	return result.Cell, nil
}
