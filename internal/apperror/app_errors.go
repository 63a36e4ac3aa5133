package apperror

import "errors"

var (
	ErrGameFinished = errors.New("game is already finished")
	ErrGameNotFound = errors.New("game not found")
	ErrNotYourTurn  = errors.New("it's not your turn")
	ErrNotBotTurn   = errors.New("it's not the bot's turn")
	ErrCellOccupied = errors.New("cell is already occupied")
	ErrInvalidCell  = errors.New("invalid cell index")
	ErrUnknownMode  = errors.New("unknown game mode")
	ErrInvalidPiece = errors.New("invalid piece")
)
