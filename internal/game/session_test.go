package game

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playforge/tictactoe-ai-backend/internal/apperror"
	"github.com/playforge/tictactoe-ai-backend/internal/bot"
	"github.com/playforge/tictactoe-ai-backend/internal/entity"
)

// scriptedBot plays a fixed sequence of cells, or fails on demand.
type scriptedBot struct {
	moves []int
	calls int
	err   error
}

func (that *scriptedBot) PickMove(_ entity.Board, _ string, _ bot.Difficulty) (int, error) {
	if that.err != nil {
		return 0, that.err
	}

	cell := that.moves[that.calls]
	that.calls++

	return cell, nil
}

func hardBot() bot.Service {
	return bot.NewService(rand.New(rand.NewSource(1)), bot.DefaultMediumOptimalRate)
}

func TestNewSession(t *testing.T) {
	t.Run("Human X opens, no AI opening move", func(t *testing.T) {
		// Given/When: a session where the human holds X
		session, err := NewSession("g1", entity.PlayerX, bot.Hard, hardBot())

		// Then: the board is empty and the human is to move
		require.NoError(t, err)
		assert.Nil(t, session.OpeningMove())
		assert.Empty(t, session.State().History)
	})

	t.Run("AI holding X plays the opening move immediately", func(t *testing.T) {
		// Given/When: a session where the human holds O
		session, err := NewSession("g1", entity.PlayerO, bot.Hard, hardBot())

		// Then: one AI move is already on the board
		require.NoError(t, err)
		require.NotNil(t, session.OpeningMove())

		state := session.State()
		require.Len(t, state.History, 1)
		assert.Equal(t, entity.PlayerX, state.History[0].Mark)
		assert.Equal(t, *session.OpeningMove(), state.History[0].Cell)
	})

	t.Run("Rejects an invalid human mark", func(t *testing.T) {
		_, err := NewSession("g1", "Z", bot.Hard, hardBot())
		assert.ErrorIs(t, err, apperror.ErrInvalidMark)
	})
}

func TestSession_ApplyHumanMove(t *testing.T) {
	t.Run("Hard AI answers a corner opening with the center", func(t *testing.T) {
		// Given: a Hard session, human X
		session, err := NewSession("g1", entity.PlayerX, bot.Hard, hardBot())
		require.NoError(t, err)

		// When: the human plays cell 0
		turn, err := session.ApplyHumanMove(0)

		// Then: the AI reply is the center
		require.NoError(t, err)
		require.NotNil(t, turn.AIMove)
		assert.Equal(t, 4, *turn.AIMove)
		assert.Equal(t, entity.StatusOngoing, turn.Status)
		assert.Len(t, session.State().History, 2)
	})

	t.Run("A rejected human move never triggers an AI reply", func(t *testing.T) {
		// Given: a session whose bot would fail the test if consulted
		sb := &scriptedBot{moves: []int{4}}
		session, err := NewSession("g1", entity.PlayerX, bot.Hard, sb)
		require.NoError(t, err)

		// When: the human plays out of range
		_, err = session.ApplyHumanMove(11)

		// Then: the move is rejected as a no-op
		assert.ErrorIs(t, err, apperror.ErrInvalidCell)
		assert.Empty(t, session.State().History)
		assert.Zero(t, sb.calls)
	})

	t.Run("A failing AI reply rolls the human move back", func(t *testing.T) {
		// Given: a bot that errors out
		errBoom := errors.New("boom")
		session, err := NewSession("g1", entity.PlayerX, bot.Hard, &scriptedBot{err: errBoom})
		require.NoError(t, err)

		// When: the human plays a legal move
		_, err = session.ApplyHumanMove(0)

		// Then: the pair stays atomic, the session is untouched
		require.ErrorIs(t, err, errBoom)
		state := session.State()
		assert.Empty(t, state.History)
		assert.Equal(t, entity.Board{}, state.Board)
		assert.Equal(t, entity.StatusOngoing, state.Status)
	})

	t.Run("Occupied cell is rejected without state change", func(t *testing.T) {
		// Given: a session with one pair played
		session, err := NewSession("g1", entity.PlayerX, bot.Hard, &scriptedBot{moves: []int{3}})
		require.NoError(t, err)
		_, err = session.ApplyHumanMove(0)
		require.NoError(t, err)

		before := session.State()

		// When: the human replays an occupied cell
		_, err = session.ApplyHumanMove(3)

		// Then: the session is unchanged
		assert.ErrorIs(t, err, apperror.ErrCellOccupied)
		assert.Equal(t, before, session.State())
	})

	t.Run("Finished session rejects further moves", func(t *testing.T) {
		// Given: a session the human wins on row 0
		session, err := NewSession("g1", entity.PlayerX, bot.Hard, &scriptedBot{moves: []int{3, 4}})
		require.NoError(t, err)

		for _, cell := range []int{0, 1} {
			_, err = session.ApplyHumanMove(cell)
			require.NoError(t, err)
		}

		turn, err := session.ApplyHumanMove(2)
		require.NoError(t, err)
		require.Equal(t, entity.StatusFinished, turn.Status)

		// When: the human tries another move
		_, err = session.ApplyHumanMove(5)

		// Then: it should return ErrGameFinished
		assert.ErrorIs(t, err, apperror.ErrGameFinished)
	})

	t.Run("Winning human move skips the AI reply", func(t *testing.T) {
		// Given: a session one human move away from a win
		sb := &scriptedBot{moves: []int{3, 4, 8}}
		session, err := NewSession("g1", entity.PlayerX, bot.Hard, sb)
		require.NoError(t, err)

		for _, cell := range []int{0, 1} {
			_, err = session.ApplyHumanMove(cell)
			require.NoError(t, err)
		}

		// When: the human completes the row
		turn, err := session.ApplyHumanMove(2)

		// Then: the game ends without an AI move on the full pair count
		require.NoError(t, err)
		assert.Nil(t, turn.AIMove)
		assert.Equal(t, entity.PlayerX, turn.Winner)
		assert.Equal(t, 2, sb.calls)
		assert.Len(t, session.State().History, 5)
	})
}

func TestSession_Result(t *testing.T) {
	t.Run("Emitted exactly once on the finishing move", func(t *testing.T) {
		// Given: a session the human wins in three moves
		session, err := NewSession("g1", entity.PlayerX, bot.Easy, &scriptedBot{moves: []int{3, 4}})
		require.NoError(t, err)

		turn, err := session.ApplyHumanMove(0)
		require.NoError(t, err)
		assert.Nil(t, turn.Result)

		turn, err = session.ApplyHumanMove(1)
		require.NoError(t, err)
		assert.Nil(t, turn.Result)

		// When: the finishing move lands
		turn, err = session.ApplyHumanMove(2)
		require.NoError(t, err)

		// Then: the result is surfaced once with the right shape
		require.NotNil(t, turn.Result)
		assert.Equal(t, WinnerHuman, turn.Result.Winner)
		assert.Equal(t, 5, turn.Result.Moves)
		assert.Equal(t, bot.Easy, turn.Result.Difficulty)
	})

	t.Run("Not re-emitted after undoing and re-finishing", func(t *testing.T) {
		// Given: a finished session whose result was consumed
		session, err := NewSession("g1", entity.PlayerX, bot.Easy, &scriptedBot{moves: []int{3, 4, 3, 4}})
		require.NoError(t, err)

		for _, cell := range []int{0, 1} {
			_, err = session.ApplyHumanMove(cell)
			require.NoError(t, err)
		}

		turn, err := session.ApplyHumanMove(2)
		require.NoError(t, err)
		require.NotNil(t, turn.Result)

		// When: undoing the finishing move and winning again
		_, err = session.UndoLastPair()
		require.NoError(t, err)

		turn, err = session.ApplyHumanMove(2)
		require.NoError(t, err)

		// Then: the game is finished again but no second event fires
		assert.Equal(t, entity.StatusFinished, turn.Status)
		assert.Nil(t, turn.Result)
	})
}

func TestSession_UndoLastPair(t *testing.T) {
	t.Run("Undo is a left inverse of the move pair", func(t *testing.T) {
		// Given: a session with one pair played and its prior state captured
		session, err := NewSession("g1", entity.PlayerX, bot.Hard, &scriptedBot{moves: []int{3, 4}})
		require.NoError(t, err)

		_, err = session.ApplyHumanMove(0)
		require.NoError(t, err)

		before := session.State()

		_, err = session.ApplyHumanMove(1)
		require.NoError(t, err)

		// When: undoing the pair
		board, err := session.UndoLastPair()

		// Then: board, status and history match the pre-pair state
		require.NoError(t, err)
		assert.Equal(t, before.Board, board)
		assert.Equal(t, before, session.State())
	})

	t.Run("Undo pops a lone finishing human move", func(t *testing.T) {
		// Given: a session the human just won (history ends on a human move)
		session, err := NewSession("g1", entity.PlayerX, bot.Hard, &scriptedBot{moves: []int{3, 4}})
		require.NoError(t, err)

		for _, cell := range []int{0, 1} {
			_, err = session.ApplyHumanMove(cell)
			require.NoError(t, err)
		}

		before := session.State()

		_, err = session.ApplyHumanMove(2)
		require.NoError(t, err)

		// When: undoing
		_, err = session.UndoLastPair()

		// Then: only the finishing move is removed and play resumes
		require.NoError(t, err)
		state := session.State()
		assert.Equal(t, before.Board, state.Board)
		assert.Equal(t, entity.StatusOngoing, state.Status)
		assert.Len(t, state.History, 4)
	})

	t.Run("Undo on a fresh session fails", func(t *testing.T) {
		// Given: a fresh session with no moves
		session, err := NewSession("g1", entity.PlayerX, bot.Hard, hardBot())
		require.NoError(t, err)

		// When: undoing
		_, err = session.UndoLastPair()

		// Then: it should return ErrEmptyHistory
		assert.ErrorIs(t, err, apperror.ErrEmptyHistory)
	})

	t.Run("Undo with only the AI opening move fails", func(t *testing.T) {
		// Given: a session where the AI opened and the human has not moved
		session, err := NewSession("g1", entity.PlayerO, bot.Hard, hardBot())
		require.NoError(t, err)

		// When: undoing
		_, err = session.UndoLastPair()

		// Then: there is no human decision to roll back to
		assert.ErrorIs(t, err, apperror.ErrEmptyHistory)
	})
}

func TestSession_HistoryIsSourceOfTruth(t *testing.T) {
	// Given: a session after several pairs
	session, err := NewSession("g1", entity.PlayerX, bot.Hard, hardBot())
	require.NoError(t, err)

	for _, cell := range []int{0, 1, 5} {
		if _, err = session.ApplyHumanMove(cell); err != nil {
			break
		}
	}

	// When: replaying the recorded history from the empty board
	state := session.State()
	replayed, err := entity.Replay(state.History)

	// Then: the replay reproduces the cached board exactly
	require.NoError(t, err)
	assert.Equal(t, state.Board, replayed)
}
