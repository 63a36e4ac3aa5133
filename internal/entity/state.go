package entity

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// BoardSize is the number of slots on the board.
//
// Slots are numbered left-to-right, top-to-bottom:
//
//	0 | 1 | 2
//	---------
//	3 | 4 | 5
//	---------
//	6 | 7 | 8
//
// so row(slot) = slot / 3 and col(slot) = slot % 3.
const BoardSize = 9

const side = 3

var (
	ErrInvalidPiece = errors.New("invalid piece")
	ErrInvalidBoard = errors.New("invalid board")

	WinCombos = [8][3]int{
		{0, 1, 2},
		{3, 4, 5},
		{6, 7, 8},
		{0, 3, 6},
		{1, 4, 7},
		{2, 5, 8},
		{0, 4, 8},
		{2, 4, 6},
	}
)

// Row returns the board row of slot.
func Row(slot int) int { return slot / side }

// Col returns the board column of slot.
func Col(slot int) int { return slot % side }

// Slot returns the slot at row and col, or -1 when either is off the board.
func Slot(row, col int) int {
	if row < 0 || row >= side || col < 0 || col >= side {
		return -1
	}

	return row*side + col
}

// ValidSlot reports whether slot is on the board.
func ValidSlot(slot int) bool {
	return slot >= 0 && slot < BoardSize
}

// GameState is a 3x3 board together with whose turn it is and the result.
// It holds no references, so a plain copy of the value is a full snapshot.
type GameState struct {
	cells  [side][side]Piece
	turn   Piece
	over   bool
	winner Piece
}

// NewGameState returns an empty board with X to move.
func NewGameState() *GameState {
	return &GameState{turn: PlayerX}
}

// Place puts the piece of the player to move into slot.
// It returns false and leaves the state untouched when the game is over or the
// slot is not available. The turn passes to the opponent after every successful
// placement, including the one that ends the game.
func (that *GameState) Place(slot int) bool {
	if that.over || !ValidSlot(slot) || that.cells[Row(slot)][Col(slot)] != NoPiece {
		return false
	}

	that.cells[Row(slot)][Col(slot)] = that.turn

	if that.MoveCount() == BoardSize {
		that.over = true
	}

	if that.winningLineExists() {
		that.over = true
		that.winner = that.turn
	}

	that.turn = that.turn.Opponent()

	return true
}

// winningLineExists checks the eight lines for three pieces of the player to move.
// Place calls it before flipping the turn, so it sees the piece just placed.
func (that *GameState) winningLineExists() bool {
	for _, combo := range WinCombos {
		if that.PieceAt(combo[0]) == that.turn &&
			that.PieceAt(combo[1]) == that.turn &&
			that.PieceAt(combo[2]) == that.turn {
			return true
		}
	}

	return false
}

// LegalMoves returns the empty slots in ascending order.
// The slice is a fresh copy; changing it does not affect the state.
func (that *GameState) LegalMoves() []int {
	moves := make([]int, 0, BoardSize)
	for slot := range BoardSize {
		if that.cells[Row(slot)][Col(slot)] == NoPiece {
			moves = append(moves, slot)
		}
	}

	return moves
}

// PieceAt returns the piece in slot, or NoPiece for an empty or invalid slot.
func (that *GameState) PieceAt(slot int) Piece {
	if !ValidSlot(slot) {
		return NoPiece
	}

	return that.cells[Row(slot)][Col(slot)]
}

func (that *GameState) IsOver() bool { return that.over }

// Winner returns the winning piece, or NoPiece for a draw or an unfinished game.
func (that *GameState) Winner() Piece { return that.winner }

func (that *GameState) Turn() Piece { return that.turn }

// MoveCount returns the number of filled slots.
func (that *GameState) MoveCount() int {
	count := 0
	for _, row := range that.cells {
		for _, cell := range row {
			if cell != NoPiece {
				count++
			}
		}
	}

	return count
}

// Board returns the cells in slot order.
func (that *GameState) Board() [BoardSize]Piece {
	var board [BoardSize]Piece
	for slot := range BoardSize {
		board[slot] = that.cells[Row(slot)][Col(slot)]
	}

	return board
}

// Reset restores the empty board with X to move.
func (that *GameState) Reset() {
	*that = GameState{turn: PlayerX}
}

// Snapshot returns an independent copy of the state.
func (that *GameState) Snapshot() *GameState {
	snapshot := *that
	return &snapshot
}

func (that *GameState) String() string {
	var sb strings.Builder
	for row := range side {
		sb.WriteString(" ")
		for col := range side {
			if col > 0 {
				sb.WriteString(" | ")
			}
			sb.WriteString(that.cells[row][col].String())
		}

		if row != side-1 {
			sb.WriteString("\n---+---+---\n")
		}
	}

	return sb.String()
}

type stateJSON struct {
	Board  [BoardSize]Piece `json:"board"`
	Turn   Piece            `json:"turn"`
	Winner Piece            `json:"winner"`
	Over   bool             `json:"over"`
}

func (that *GameState) MarshalJSON() ([]byte, error) {
	return json.Marshal(stateJSON{
		Board:  that.Board(),
		Turn:   that.turn,
		Winner: that.winner,
		Over:   that.over,
	})
}

func (that *GameState) UnmarshalJSON(data []byte) error {
	var raw stateJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to unmarshal game state: %w", err)
	}

	if !raw.Turn.Valid() {
		return fmt.Errorf("%w: turn %q", ErrInvalidPiece, raw.Turn)
	}

	if raw.Winner != NoPiece && (!raw.Winner.Valid() || !raw.Over) {
		return fmt.Errorf("%w: winner %q", ErrInvalidBoard, raw.Winner)
	}

	var state GameState
	for slot, piece := range raw.Board {
		if piece != NoPiece && !piece.Valid() {
			return fmt.Errorf("%w: slot %d holds %q", ErrInvalidPiece, slot, piece)
		}
		state.cells[Row(slot)][Col(slot)] = piece
	}

	state.turn = raw.Turn
	state.winner = raw.Winner
	state.over = raw.Over

	*that = state

	return nil
}
