package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/playforge/tictactoe-ai-backend/internal/apperror"
	"github.com/playforge/tictactoe-ai-backend/internal/bot"
	"github.com/playforge/tictactoe-ai-backend/internal/entity"
	"github.com/playforge/tictactoe-ai-backend/internal/game"
	"github.com/playforge/tictactoe-ai-backend/internal/pkg"
)

type statsRepo interface {
	RecordResult(ctx context.Context, result game.Result) error
}

// managedSession serializes access to one session: the session itself is
// not safe for concurrent mutation, so every call goes through its mutex.
type managedSession struct {
	mu      sync.Mutex
	session *game.Session
}

// GameManager owns the in-memory session registry. Sessions are never
// persisted; finished or abandoned ones live until the process exits.
type GameManager struct {
	logger *slog.Logger
	bot    bot.Service
	stats  statsRepo

	mu       sync.RWMutex
	sessions map[string]*managedSession
}

func NewGameManager(logger *slog.Logger, botService bot.Service, stats statsRepo) *GameManager {
	return &GameManager{
		logger: logger.With("component", "game_manager"),

		bot:   botService,
		stats: stats,

		sessions: make(map[string]*managedSession),
	}
}

// CreateSession - starts a new match and registers it under a fresh id.
func (that *GameManager) CreateSession(_ context.Context, humanMark, difficulty string) (game.Snapshot, error) {
	level, err := bot.ParseDifficulty(difficulty)
	if err != nil {
		return game.Snapshot{}, fmt.Errorf("failed to parse difficulty: %w", err)
	}

	session, err := game.NewSession(pkg.GenerateGameID(), humanMark, level, that.bot)
	if err != nil {
		return game.Snapshot{}, fmt.Errorf("failed to create session: %w", err)
	}

	state := session.State()

	that.mu.Lock()
	that.sessions[state.ID] = &managedSession{session: session}
	that.mu.Unlock()

	that.logger.Info("session created", "game_id", state.ID, "human", state.HumanMark, "difficulty", difficulty)

	return state, nil
}

// MakeTurn - applies the human move and the paired AI reply. When the turn
// finishes the game, the result is forwarded to the statistics recorder;
// a recorder failure is logged but never fails the move itself.
func (that *GameManager) MakeTurn(ctx context.Context, gameID string, cell int) (*game.Turn, error) {
	managed, err := that.getSession(gameID)
	if err != nil {
		return nil, err
	}

	managed.mu.Lock()
	defer managed.mu.Unlock()

	turn, err := managed.session.ApplyHumanMove(cell)
	if err != nil {
		return nil, fmt.Errorf("failed to make turn: %w", err)
	}

	if turn.Result != nil {
		if recordErr := that.stats.RecordResult(ctx, *turn.Result); recordErr != nil {
			that.logger.Error("failed to record game result", "game_id", gameID, "error", recordErr)
		}
	}

	return turn, nil
}

// Undo - rolls the session back to the human's previous decision point.
func (that *GameManager) Undo(_ context.Context, gameID string) (entity.Board, error) {
	managed, err := that.getSession(gameID)
	if err != nil {
		return entity.Board{}, err
	}

	managed.mu.Lock()
	defer managed.mu.Unlock()

	board, err := managed.session.UndoLastPair()
	if err != nil {
		return entity.Board{}, fmt.Errorf("failed to undo: %w", err)
	}

	return board, nil
}

// GetState - returns the session snapshot.
func (that *GameManager) GetState(_ context.Context, gameID string) (game.Snapshot, error) {
	managed, err := that.getSession(gameID)
	if err != nil {
		return game.Snapshot{}, err
	}

	managed.mu.Lock()
	defer managed.mu.Unlock()

	return managed.session.State(), nil
}

func (that *GameManager) getSession(gameID string) (*managedSession, error) {
	that.mu.RLock()
	managed, ok := that.sessions[gameID]
	that.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: id %s", apperror.ErrSessionNotFound, gameID)
	}

	return managed, nil
}
