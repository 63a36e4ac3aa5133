package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/search"
	"github.com/rocketscienceinc/tictactoe-engine/internal/usecase"
)

var (
	ErrMissingCell = errors.New("either slot or row and col are required")
	errBadRequest  = errors.New("malformed request body")
)

type createGameRequest struct {
	Mode     string       `json:"mode"`
	BotPiece entity.Piece `json:"bot_piece"`
	Strategy string       `json:"strategy"`
	Depth    int          `json:"depth"`
}

// turnRequest addresses a cell either by slot or by row and column.
type turnRequest struct {
	Slot *int `json:"slot"`
	Row  *int `json:"row"`
	Col  *int `json:"col"`
}

func (that turnRequest) slot() (int, error) {
	if that.Slot != nil {
		return *that.Slot, nil
	}

	if that.Row == nil || that.Col == nil {
		return 0, ErrMissingCell
	}

	slot := entity.Slot(*that.Row, *that.Col)
	if slot < 0 {
		return 0, fmt.Errorf("%w: row %d col %d", apperror.ErrInvalidCell, *that.Row, *that.Col)
	}

	return slot, nil
}

type errorResponse struct {
	Error string `json:"error"`
}

func (that *Server) createGame(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	// an empty body creates a game with the configured defaults
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		that.writeError(w, fmt.Errorf("%w: %w", errBadRequest, err))
		return
	}

	game, err := that.gameManager.CreateGame(r.Context(), usecase.CreateParams{
		Mode:     req.Mode,
		BotPiece: req.BotPiece,
		Strategy: req.Strategy,
		Depth:    req.Depth,
	})
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusCreated, game.View())
}

func (that *Server) getGame(w http.ResponseWriter, r *http.Request) {
	game, err := that.gameManager.GetGame(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, game.View())
}

func (that *Server) makeTurn(w http.ResponseWriter, r *http.Request) {
	var req turnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		that.writeError(w, fmt.Errorf("%w: %w", errBadRequest, err))
		return
	}

	slot, err := req.slot()
	if err != nil {
		that.writeError(w, err)
		return
	}

	game, err := that.gameManager.PlayTurn(r.Context(), chi.URLParam(r, "id"), slot)
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, game.View())
}

func (that *Server) resetGame(w http.ResponseWriter, r *http.Request) {
	game, err := that.gameManager.ResetGame(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, game.View())
}

func (that *Server) hint(w http.ResponseWriter, r *http.Request) {
	hint, err := that.gameManager.Hint(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, hint)
}

func (that *Server) deleteGame(w http.ResponseWriter, r *http.Request) {
	if err := that.gameManager.DeleteGame(r.Context(), chi.URLParam(r, "id")); err != nil {
		that.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, apperror.ErrGameNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrGameFinished),
		errors.Is(err, apperror.ErrNotYourTurn),
		errors.Is(err, apperror.ErrNotBotTurn),
		errors.Is(err, apperror.ErrCellOccupied):
		return http.StatusConflict
	case errors.Is(err, errBadRequest),
		errors.Is(err, ErrMissingCell),
		errors.Is(err, apperror.ErrInvalidCell),
		errors.Is(err, apperror.ErrUnknownMode),
		errors.Is(err, apperror.ErrInvalidPiece),
		errors.Is(err, search.ErrUnknownStrategy):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (that *Server) writeError(w http.ResponseWriter, err error) {
	status := statusOf(err)

	message := err.Error()
	if status == http.StatusInternalServerError {
		that.logger.Error("request failed", "method", "writeError", "error", err)
		message = http.StatusText(status)
	}

	that.writeJSON(w, status, errorResponse{Error: message})
}

func (that *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to write response", "method", "writeJSON", "error", err)
	}
}
