package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/playforge/tictactoe-ai-backend/internal/apperror"
	"github.com/playforge/tictactoe-ai-backend/internal/entity"
	"github.com/playforge/tictactoe-ai-backend/internal/game"
	"github.com/playforge/tictactoe-ai-backend/internal/repository"
)

type newGameRequest struct {
	Difficulty string `json:"difficulty"`
	Player     string `json:"player"`
}

type turnRequest struct {
	GameID string `json:"game_id"`
	Cell   int    `json:"cell"`
}

type undoRequest struct {
	GameID string `json:"game_id"`
}

type gameResponse struct {
	GameID     string        `json:"game_id,omitempty"`
	Board      entity.Board  `json:"board"`
	Status     string        `json:"status"`
	Winner     string        `json:"winner,omitempty"`
	Human      string        `json:"human,omitempty"`
	AI         string        `json:"ai,omitempty"`
	Difficulty string        `json:"difficulty,omitempty"`
	History    []entity.Move `json:"history,omitempty"`
	AIMove     *int          `json:"ai_move,omitempty"`
}

type statsResponse struct {
	TotalGames   int64                                 `json:"total_games"`
	HumanWins    int64                                 `json:"human_wins"`
	AIWins       int64                                 `json:"ai_wins"`
	Draws        int64                                 `json:"draws"`
	WinRate      float64                               `json:"win_rate"`
	AverageMoves float64                               `json:"average_moves"`
	Difficulties map[string]repository.DifficultyStats `json:"difficulties"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (that *Server) handlePing(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (that *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "handleNewGame")

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req newGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	state, err := that.games.CreateSession(r.Context(), req.Player, req.Difficulty)
	if err != nil {
		log.Error("failed to create session", "error", err)
		writeAppError(w, err)
		return
	}

	resp := snapshotResponse(state)
	if len(state.History) == 1 && state.History[0].Mark == state.AIMark {
		opening := state.History[0].Cell
		resp.AIMove = &opening
	}
	resp.History = nil

	writeJSON(w, http.StatusCreated, resp)
}

func (that *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "handleTurn")

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req turnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	turn, err := that.games.MakeTurn(r.Context(), req.GameID, req.Cell)
	if err != nil {
		log.Error("failed to make turn", "game_id", req.GameID, "error", err)
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, gameResponse{
		GameID: req.GameID,
		Board:  turn.Board,
		Status: turn.Status,
		Winner: turn.Winner,
		AIMove: turn.AIMove,
	})
}

func (that *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "handleUndo")

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req undoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	board, err := that.games.Undo(r.Context(), req.GameID)
	if err != nil {
		log.Error("failed to undo", "game_id", req.GameID, "error", err)
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, gameResponse{
		GameID: req.GameID,
		Board:  board,
		Status: entity.StatusOngoing,
	})
}

func (that *Server) handleState(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "handleState")

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	state, err := that.games.GetState(r.Context(), r.URL.Query().Get("game_id"))
	if err != nil {
		log.Error("failed to get state", "error", err)
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snapshotResponse(state))
}

func (that *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "handleStats")

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	summary, err := that.stats.Summary(r.Context())
	if err != nil {
		log.Error("failed to read stats", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read statistics")
		return
	}

	resp := statsResponse{
		TotalGames:   summary.TotalGames,
		HumanWins:    summary.HumanWins,
		AIWins:       summary.AIWins,
		Draws:        summary.Draws,
		Difficulties: summary.Difficulties,
	}
	if summary.TotalGames > 0 {
		resp.WinRate = float64(summary.HumanWins) / float64(summary.TotalGames) * 100
		resp.AverageMoves = float64(summary.TotalMoves) / float64(summary.TotalGames)
	}

	writeJSON(w, http.StatusOK, resp)
}

func snapshotResponse(state game.Snapshot) gameResponse {
	return gameResponse{
		GameID:     state.ID,
		Board:      state.Board,
		Status:     state.Status,
		Winner:     state.Winner,
		Human:      state.HumanMark,
		AI:         state.AIMark,
		Difficulty: state.Difficulty.String(),
		History:    state.History,
	}
}

// writeAppError - maps the core error taxonomy onto HTTP statuses.
func writeAppError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperror.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, apperror.ErrGameFinished):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, apperror.ErrCellOccupied),
		errors.Is(err, apperror.ErrInvalidCell),
		errors.Is(err, apperror.ErrInvalidMark),
		errors.Is(err, apperror.ErrNotYourTurn),
		errors.Is(err, apperror.ErrEmptyHistory),
		errors.Is(err, apperror.ErrUnknownDifficulty):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
