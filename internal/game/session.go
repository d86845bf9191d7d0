// Package game holds the single-match state machine: turn sequencing, the
// move history and pair-wise undo. The history is the source of truth; the
// board is a cached projection rebuilt by replay.
package game

import (
	"fmt"

	"github.com/playforge/tictactoe-ai-backend/internal/apperror"
	"github.com/playforge/tictactoe-ai-backend/internal/bot"
	"github.com/playforge/tictactoe-ai-backend/internal/entity"
)

const (
	WinnerHuman = "human"
	WinnerAI    = "ai"
	WinnerTie   = "tie"
)

// Result is the game-over event surfaced exactly once per session when it
// reaches a terminal state. Consumers record it; the session keeps nothing.
type Result struct {
	Winner     string
	Moves      int
	Difficulty bot.Difficulty
}

// Turn is what a successful human move returns: the resulting snapshot,
// the AI's reply if one was played, and the Result on the call that
// finished the game.
type Turn struct {
	Board  entity.Board
	Status string
	Winner string
	AIMove *int
	Result *Result
}

// Snapshot is the read-only view of a session for transports.
type Snapshot struct {
	ID         string
	Board      entity.Board
	Status     string
	Winner     string
	History    []entity.Move
	HumanMark  string
	AIMark     string
	Difficulty bot.Difficulty
}

type Session struct {
	id         string
	humanMark  string
	aiMark     string
	difficulty bot.Difficulty

	bot bot.Service

	history []entity.Move
	board   entity.Board
	status  string
	winner  string

	openingMove   *int
	resultEmitted bool
}

// NewSession - starts a match with the given human mark. X always opens,
// so when the human picks O the AI plays its opening move right away.
func NewSession(id, humanMark string, difficulty bot.Difficulty, botService bot.Service) (*Session, error) {
	if humanMark != entity.PlayerX && humanMark != entity.PlayerO {
		return nil, fmt.Errorf("%w: %q", apperror.ErrInvalidMark, humanMark)
	}

	session := &Session{
		id:         id,
		humanMark:  humanMark,
		aiMark:     entity.OpponentMark(humanMark),
		difficulty: difficulty,
		bot:        botService,
		status:     entity.StatusOngoing,
	}

	if session.aiMark == entity.PlayerX {
		cell, err := session.playAIMove()
		if err != nil {
			return nil, fmt.Errorf("failed to play opening move: %w", err)
		}
		session.openingMove = &cell
	}

	return session, nil
}

// OpeningMove - returns the AI's opening cell, or nil when the human opens.
func (that *Session) OpeningMove() *int {
	return that.openingMove
}

// ApplyHumanMove - validates and applies the human move, then triggers the
// AI reply while the game is still ongoing. The pairing is atomic: a
// rejected human move changes nothing and never triggers an AI move.
func (that *Session) ApplyHumanMove(cell int) (*Turn, error) {
	if that.status == entity.StatusFinished {
		return nil, apperror.ErrGameFinished
	}

	if that.turn() != that.humanMark {
		return nil, apperror.ErrNotYourTurn
	}

	next, err := that.board.Apply(entity.Move{Cell: cell, Mark: that.humanMark})
	if err != nil {
		return nil, fmt.Errorf("failed to apply human move: %w", err)
	}

	that.board = next
	that.history = append(that.history, entity.Move{Cell: cell, Mark: that.humanMark})
	that.refresh()

	turn := &Turn{}

	if that.status == entity.StatusOngoing {
		aiCell, aiErr := that.playAIMove()
		if aiErr != nil {
			// Keep the pair atomic: roll the human move back.
			that.history = that.history[:len(that.history)-1]
			that.board, _ = entity.Replay(that.history)
			that.refresh()

			return nil, fmt.Errorf("failed to play AI reply: %w", aiErr)
		}
		turn.AIMove = &aiCell
	}

	turn.Board = that.board
	turn.Status = that.status
	turn.Winner = that.winner
	turn.Result = that.takeResult()

	return turn, nil
}

// UndoLastPair - removes the trailing AI move together with the human move
// that preceded it (or just the trailing human move when it ended the game)
// and rebuilds the board by replaying the truncated history.
func (that *Session) UndoLastPair() (entity.Board, error) {
	cut := len(that.history)
	if cut == 0 {
		return that.board, apperror.ErrEmptyHistory
	}

	if that.history[cut-1].Mark == that.aiMark {
		cut--
	}

	if cut == 0 || that.history[cut-1].Mark != that.humanMark {
		return that.board, apperror.ErrEmptyHistory
	}
	cut--

	truncated := that.history[:cut]

	board, err := entity.Replay(truncated)
	if err != nil {
		return that.board, fmt.Errorf("failed to replay history: %w", err)
	}

	that.history = truncated
	that.board = board
	that.refresh()

	return board, nil
}

// State - returns a copy of the current session state.
func (that *Session) State() Snapshot {
	history := make([]entity.Move, len(that.history))
	copy(history, that.history)

	return Snapshot{
		ID:         that.id,
		Board:      that.board,
		Status:     that.status,
		Winner:     that.winner,
		History:    history,
		HumanMark:  that.humanMark,
		AIMark:     that.aiMark,
		Difficulty: that.difficulty,
	}
}

// turn - derives whose turn it is from the history length; X opens.
func (that *Session) turn() string {
	if len(that.history)%2 == 0 {
		return entity.PlayerX
	}
	return entity.PlayerO
}

func (that *Session) playAIMove() (int, error) {
	cell, err := that.bot.PickMove(that.board, that.aiMark, that.difficulty)
	if err != nil {
		return 0, fmt.Errorf("failed to pick move: %w", err)
	}

	next, err := that.board.Apply(entity.Move{Cell: cell, Mark: that.aiMark})
	if err != nil {
		return 0, fmt.Errorf("failed to apply AI move: %w", err)
	}

	that.board = next
	that.history = append(that.history, entity.Move{Cell: cell, Mark: that.aiMark})
	that.refresh()

	return cell, nil
}

func (that *Session) refresh() {
	that.winner = that.board.Winner()
	if that.winner == entity.EmptyCell {
		that.status = entity.StatusOngoing
		return
	}
	that.status = entity.StatusFinished
}

// takeResult - hands out the game-over event on the transition into a
// terminal state; subsequent calls (and re-finishes after an undo) get nil.
func (that *Session) takeResult() *Result {
	if that.status != entity.StatusFinished || that.resultEmitted {
		return nil
	}
	that.resultEmitted = true

	winner := WinnerTie
	switch that.winner {
	case that.humanMark:
		winner = WinnerHuman
	case that.aiMark:
		winner = WinnerAI
	}

	return &Result{
		Winner:     winner,
		Moves:      len(that.history),
		Difficulty: that.difficulty,
	}
}
