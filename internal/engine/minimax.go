// Package engine picks optimal tic-tac-toe moves with exhaustive minimax
// search. The game tree is at most 9 plies deep, so every call searches to
// completion; alpha-beta pruning only cuts the number of visited nodes and
// never changes the chosen move or its score.
package engine

import (
	"math"

	"github.com/playforge/tictactoe-ai-backend/internal/apperror"
	"github.com/playforge/tictactoe-ai-backend/internal/entity"
)

const (
	winScore  = 10
	lossScore = -10
)

// Result holds the chosen cell and its depth-adjusted score from the
// maximizing player's perspective.
type Result struct {
	Cell  int
	Score int
}

// Search - returns the optimal move for aiMark on an ongoing board.
// Candidate cells are probed in ascending index order and ties keep the
// first-found cell, so the result is fully deterministic.
func Search(board entity.Board, aiMark string) (Result, error) {
	cells := board.AvailableCells()
	if len(cells) == 0 {
		return Result{}, apperror.ErrNoAvailableMoves
	}

	humanMark := entity.OpponentMark(aiMark)

	best := Result{Cell: -1, Score: math.MinInt}
	alpha, beta := math.MinInt, math.MaxInt

	for _, cell := range cells {
		next := board
		next[cell] = aiMark

		score := minimax(next, 1, false, alpha, beta, aiMark, humanMark)
		if score > best.Score {
			best = Result{Cell: cell, Score: score}
		}

		if best.Score > alpha {
			alpha = best.Score
		}
	}

	return best, nil
}

// minimax - scores a position by full-tree search. Depth counts plies from
// the board passed to Search: wins score winScore-depth and losses
// lossScore+depth, so faster wins and slower losses come out ahead.
func minimax(board entity.Board, depth int, maximizing bool, alpha, beta int, aiMark, humanMark string) int {
	switch board.Winner() {
	case aiMark:
		return winScore - depth
	case humanMark:
		return lossScore + depth
	case entity.PlayerTie:
		return 0
	}

	if maximizing {
		best := math.MinInt
		for _, cell := range board.AvailableCells() {
			next := board
			next[cell] = aiMark

			score := minimax(next, depth+1, false, alpha, beta, aiMark, humanMark)
			if score > best {
				best = score
			}
			if score > alpha {
				alpha = score
			}
			if beta <= alpha {
				break
			}
		}

		return best
	}

	best := math.MaxInt
	for _, cell := range board.AvailableCells() {
		next := board
		next[cell] = humanMark

		score := minimax(next, depth+1, true, alpha, beta, aiMark, humanMark)
		if score < best {
			best = score
		}
		if score < beta {
			beta = score
		}
		if beta <= alpha {
			break
		}
	}

	return best
}
