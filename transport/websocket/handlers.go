package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/search"
	"github.com/rocketscienceinc/tictactoe-engine/internal/usecase"
)

var (
	ErrMalformedMessage = errors.New("malformed message")
	ErrUnknownAction    = errors.New("unknown action")
	ErrMissingCell      = errors.New("either slot or row and col are required")
	ErrNoGame           = errors.New("no game selected")
)

func (that *Server) handleNewGame(ctx context.Context, msg *Message, client *client) error {
	log := that.logger.With("method", "handleNewGame")

	payloadReq, err := decodePayload(msg)
	if err != nil {
		that.sendError(client, msg.Action, err)
		return nil
	}

	game, err := that.gameManager.CreateGame(ctx, usecase.CreateParams{
		Mode:     payloadReq.Mode,
		BotPiece: payloadReq.BotPiece,
		Strategy: payloadReq.Strategy,
		Depth:    payloadReq.Depth,
	})
	if err != nil {
		return that.replyError(client, msg.Action, err)
	}

	client.setGame(game.ID)
	that.send(client, msg.Action, gameResponse(game))

	log.Info("game started", "gameID", game.ID)

	return nil
}

func (that *Server) handleJoinGame(ctx context.Context, msg *Message, client *client) error {
	payloadReq, err := decodePayload(msg)
	if err != nil {
		that.sendError(client, msg.Action, err)
		return nil
	}

	if payloadReq.GameID == "" {
		that.sendError(client, msg.Action, ErrNoGame)
		return nil
	}

	game, err := that.gameManager.GetGame(ctx, payloadReq.GameID)
	if err != nil {
		return that.replyError(client, msg.Action, err)
	}

	client.setGame(game.ID)
	that.send(client, msg.Action, gameResponse(game))

	// a bot reply or reset may have been lost with a previous connection
	that.afterMove(ctx, client, game)

	return nil
}

func (that *Server) handleGameTurn(ctx context.Context, msg *Message, client *client) error {
	log := that.logger.With("method", "handleGameTurn")

	payloadReq, err := decodePayload(msg)
	if err != nil {
		that.sendError(client, msg.Action, err)
		return nil
	}

	gameID, err := gameIDFor(payloadReq, client)
	if err != nil {
		that.sendError(client, msg.Action, err)
		return nil
	}

	slot, err := payloadReq.slot()
	if err != nil {
		that.sendError(client, msg.Action, err)
		return nil
	}

	game, err := that.gameManager.MakeTurn(ctx, gameID, slot)
	if err != nil {
		return that.replyError(client, msg.Action, err)
	}

	that.send(client, msg.Action, gameResponse(game))
	that.afterMove(ctx, client, game)

	log.Debug("player made a turn", "gameID", gameID, "slot", slot)

	return nil
}

func (that *Server) handleGameReset(ctx context.Context, msg *Message, client *client) error {
	payloadReq, err := decodePayload(msg)
	if err != nil {
		that.sendError(client, msg.Action, err)
		return nil
	}

	gameID, err := gameIDFor(payloadReq, client)
	if err != nil {
		that.sendError(client, msg.Action, err)
		return nil
	}

	game, err := that.gameManager.ResetGame(ctx, gameID)
	if err != nil {
		return that.replyError(client, msg.Action, err)
	}

	that.send(client, msg.Action, gameResponse(game))

	return nil
}

func (that *Server) handleGameHint(ctx context.Context, msg *Message, client *client) error {
	payloadReq, err := decodePayload(msg)
	if err != nil {
		that.sendError(client, msg.Action, err)
		return nil
	}

	gameID, err := gameIDFor(payloadReq, client)
	if err != nil {
		that.sendError(client, msg.Action, err)
		return nil
	}

	hint, err := that.gameManager.Hint(ctx, gameID)
	if err != nil {
		return that.replyError(client, msg.Action, err)
	}

	that.send(client, msg.Action, ResponsePayload{Hint: &hint})

	return nil
}

// afterMove - schedules what follows a move: the bot reply when it is the bot's
// turn, or a fresh board once the game is over.
func (that *Server) afterMove(ctx context.Context, client *client, game *entity.Game) {
	switch {
	case game.IsBotTurn():
		that.schedule(ctx, that.moveDelay, func(ctx context.Context) {
			that.botReply(ctx, client, game.ID)
		})
	case game.IsFinished():
		that.schedule(ctx, that.resetDelay, func(ctx context.Context) {
			that.autoReset(ctx, client, game.ID)
		})
	}
}

func (that *Server) botReply(ctx context.Context, client *client, gameID string) {
	log := that.logger.With("method", "botReply", "gameID", gameID)

	game, err := that.gameManager.BotTurn(ctx, gameID)
	if isStale(err) {
		log.Debug("bot reply skipped", "reason", err)
		return
	}

	if err != nil {
		log.Error("bot failed to make turn", "error", err)
		that.sendError(client, actionGameTurn, err)
		return
	}

	that.send(client, actionGameTurn, gameResponse(game))
	that.afterMove(ctx, client, game)
}

func (that *Server) autoReset(ctx context.Context, client *client, gameID string) {
	log := that.logger.With("method", "autoReset", "gameID", gameID)

	game, err := that.gameManager.GetGame(ctx, gameID)
	if err != nil {
		log.Debug("auto reset skipped", "reason", err)
		return
	}

	// the player restarted the game in the meantime
	if !game.IsFinished() {
		return
	}

	game, err = that.gameManager.ResetGame(ctx, gameID)
	if err != nil {
		log.Error("failed to reset game", "error", err)
		return
	}

	that.send(client, actionGameReset, gameResponse(game))
}

// isStale reports errors caused by the game changing before a scheduled job ran.
func isStale(err error) bool {
	return errors.Is(err, apperror.ErrNotBotTurn) ||
		errors.Is(err, apperror.ErrGameFinished) ||
		errors.Is(err, apperror.ErrGameNotFound)
}

// replyError - tells the client why the action failed. Only unexpected errors
// are returned to be logged.
func (that *Server) replyError(client *client, action string, err error) error {
	that.sendError(client, action, err)

	if isClientError(err) {
		return nil
	}

	return fmt.Errorf("failed to handle %s: %w", action, err)
}

func isClientError(err error) bool {
	for _, target := range []error{
		apperror.ErrGameFinished,
		apperror.ErrGameNotFound,
		apperror.ErrNotYourTurn,
		apperror.ErrNotBotTurn,
		apperror.ErrCellOccupied,
		apperror.ErrInvalidCell,
		apperror.ErrUnknownMode,
		apperror.ErrInvalidPiece,
		search.ErrUnknownStrategy,
	} {
		if errors.Is(err, target) {
			return true
		}
	}

	return false
}

func decodePayload(msg *Message) (Payload, error) {
	var payload Payload
	if len(msg.Payload) == 0 {
		return payload, nil
	}

	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return Payload{}, fmt.Errorf("%w: %w", ErrMalformedMessage, err)
	}

	return payload, nil
}

// gameIDFor - picks the game named in the payload, or the one the client last used.
func gameIDFor(payload Payload, client *client) (string, error) {
	if payload.GameID != "" {
		client.setGame(payload.GameID)
		return payload.GameID, nil
	}

	if id := client.currentGame(); id != "" {
		return id, nil
	}

	return "", ErrNoGame
}
