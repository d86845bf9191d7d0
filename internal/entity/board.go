package entity

import (
	"fmt"

	"github.com/playforge/tictactoe-ai-backend/internal/apperror"
)

const (
	StatusOngoing  = "ongoing"
	StatusFinished = "finished"

	PlayerX   = "X"
	PlayerO   = "O"
	PlayerTie = "-"

	EmptyCell = ""

	BoardSize = 9
)

var WinCombos = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Board is a value snapshot of the 3x3 grid in row-major order,
// index 0 is the top-left cell. The zero value is an empty board.
type Board [BoardSize]string

// Move is one placed mark; the session history is an ordered list of these.
type Move struct {
	Cell int    `json:"cell"`
	Mark string `json:"mark"`
}

// Winner - returns the winning mark, PlayerTie for a full board without
// a winner, or EmptyCell while the game continues.
func (that Board) Winner() string {
	for _, combo := range WinCombos {
		a, b, c := that[combo[0]], that[combo[1]], that[combo[2]]
		if a != EmptyCell && a == b && b == c {
			return a
		}
	}

	for _, cell := range that {
		if cell == EmptyCell {
			return EmptyCell
		}
	}

	return PlayerTie
}

func (that Board) IsFinished() bool {
	return that.Winner() != EmptyCell
}

// AvailableCells - lists the empty cell indices in ascending order.
// A finished board has no available cells.
func (that Board) AvailableCells() []int {
	if that.IsFinished() {
		return nil
	}

	cells := make([]int, 0, BoardSize)
	for i, cell := range that {
		if cell == EmptyCell {
			cells = append(cells, i)
		}
	}

	return cells
}

// Apply - places the move and returns the resulting board snapshot.
// The receiver is never modified.
func (that Board) Apply(move Move) (Board, error) {
	if that.IsFinished() {
		return that, apperror.ErrGameFinished
	}

	if move.Cell < 0 || move.Cell >= BoardSize {
		return that, fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, move.Cell)
	}

	if that[move.Cell] != EmptyCell {
		return that, fmt.Errorf("%w: cell %d", apperror.ErrCellOccupied, move.Cell)
	}

	next := that
	next[move.Cell] = move.Mark

	return next, nil
}

// Replay - rebuilds a board by applying moves to an empty board in order.
func Replay(moves []Move) (Board, error) {
	var board Board

	for _, move := range moves {
		next, err := board.Apply(move)
		if err != nil {
			return board, fmt.Errorf("failed to replay move at cell %d: %w", move.Cell, err)
		}
		board = next
	}

	return board, nil
}

// OpponentMark - returns the other player's mark.
func OpponentMark(mark string) string {
	if mark == PlayerX {
		return PlayerO
	}
	return PlayerX
}
