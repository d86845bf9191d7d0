// Package rest exposes the game core over a small JSON API: session
// creation, turns, undo, state and the statistics summary.
package rest

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/playforge/tictactoe-ai-backend/internal/entity"
	"github.com/playforge/tictactoe-ai-backend/internal/game"
	"github.com/playforge/tictactoe-ai-backend/internal/repository"
)

type gameManager interface {
	CreateSession(ctx context.Context, humanMark, difficulty string) (game.Snapshot, error)
	MakeTurn(ctx context.Context, gameID string, cell int) (*game.Turn, error)
	Undo(ctx context.Context, gameID string) (entity.Board, error)
	GetState(ctx context.Context, gameID string) (game.Snapshot, error)
}

type statsReader interface {
	Summary(ctx context.Context) (*repository.StatsSummary, error)
}

type Server struct {
	logger *slog.Logger
	games  gameManager
	stats  statsReader
}

func New(logger *slog.Logger, games gameManager, stats statsReader) *Server {
	return &Server{
		logger: logger.With("component", "rest"),
		games:  games,
		stats:  stats,
	}
}

func (that *Server) Start(port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	if err := srv.ListenAndServe(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/ping", that.handlePing)
	mux.HandleFunc("/api/game/new", that.handleNewGame)
	mux.HandleFunc("/api/game/turn", that.handleTurn)
	mux.HandleFunc("/api/game/undo", that.handleUndo)
	mux.HandleFunc("/api/game/state", that.handleState)
	mux.HandleFunc("/api/stats", that.handleStats)

	return mux
}
