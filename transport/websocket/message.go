package websocket

import (
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/usecase"
)

const (
	actionGameNew   = "game:new"
	actionGameJoin  = "game:join"
	actionGameTurn  = "game:turn"
	actionGameReset = "game:reset"
	actionGameHint  = "game:hint"
	actionError     = "error"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Payload is what clients send. Fields are read depending on the action.
type Payload struct {
	GameID   string       `json:"game_id,omitempty"`
	Mode     string       `json:"mode,omitempty"`
	BotPiece entity.Piece `json:"bot_piece,omitempty"`
	Strategy string       `json:"strategy,omitempty"`
	Depth    int          `json:"depth,omitempty"`
	Slot     *int         `json:"slot,omitempty"`
	Row      *int         `json:"row,omitempty"`
	Col      *int         `json:"col,omitempty"`
}

// ResponsePayload is what the server pushes back.
type ResponsePayload struct {
	Game  *entity.GameView `json:"game,omitempty"`
	Hint  *usecase.Hint    `json:"hint,omitempty"`
	Error string           `json:"error,omitempty"`
}

func (that Payload) slot() (int, error) {
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

func encodeMessage(action string, payload ResponsePayload) ([]byte, error) {
	rawPayload, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	data, err := json.Marshal(Message{Action: action, Payload: rawPayload})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	return data, nil
}

func gameResponse(game *entity.Game) ResponsePayload {
	view := game.View()
	return ResponsePayload{Game: &view}
}
