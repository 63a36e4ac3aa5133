package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// play places every slot in order and fails the test on the first rejected move.
func play(t *testing.T, state *GameState, slots ...int) {
	t.Helper()

	for i, slot := range slots {
		require.Truef(t, state.Place(slot), "move %d (slot %d) was rejected", i, slot)
	}
}

func TestNewGameState(t *testing.T) {
	// When: a new state is created
	state := NewGameState()

	// Then: the board is empty, X moves first and nothing is decided
	assert.Equal(t, [BoardSize]Piece{}, state.Board())
	assert.Equal(t, PlayerX, state.Turn())
	assert.Equal(t, NoPiece, state.Winner())
	assert.False(t, state.IsOver())
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8}, state.LegalMoves())
}

func TestSlotConvention(t *testing.T) {
	t.Run("Row and Col follow row-major numbering", func(t *testing.T) {
		for slot := range BoardSize {
			assert.Equal(t, slot/3, Row(slot))
			assert.Equal(t, slot%3, Col(slot))
			assert.Equal(t, slot, Slot(Row(slot), Col(slot)))
		}
	})

	t.Run("Slot rejects coordinates off the board", func(t *testing.T) {
		assert.Equal(t, -1, Slot(-1, 0))
		assert.Equal(t, -1, Slot(0, 3))
		assert.Equal(t, -1, Slot(3, 3))
	})

	t.Run("Place writes into the row-major cell", func(t *testing.T) {
		// Given: a new state
		state := NewGameState()

		// When: X plays slot 5 (row 1, col 2)
		play(t, state, 5)

		// Then: the piece is found at slot 5 and in the rendered middle row
		assert.Equal(t, PlayerX, state.PieceAt(5))
		assert.Equal(t, PlayerX, state.cells[1][2])
	})
}

func TestGameState_Place(t *testing.T) {
	t.Run("Successful placement", func(t *testing.T) {
		// Given: a new state
		state := NewGameState()

		// When: X places in slot 0
		ok := state.Place(0)

		// Then: the move is accepted and the turn passes to O
		require.True(t, ok)
		assert.Equal(t, PlayerX, state.PieceAt(0))
		assert.Equal(t, PlayerO, state.Turn())
		assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8}, state.LegalMoves())
	})

	t.Run("Occupied slot is rejected without changes", func(t *testing.T) {
		// Given: X already holds slot 0
		state := NewGameState()
		play(t, state, 0)
		before := *state

		// When: O tries the same slot
		ok := state.Place(0)

		// Then: the move is rejected and the state is unchanged
		assert.False(t, ok)
		assert.Equal(t, before, *state)
	})

	t.Run("Slots off the board are rejected", func(t *testing.T) {
		// Given: a new state
		state := NewGameState()
		before := *state

		// When: slots outside 0..8 are played
		// Then: every attempt is rejected and nothing changes
		for _, slot := range []int{-1, 9, 20} {
			assert.False(t, state.Place(slot))
		}
		assert.Equal(t, before, *state)
	})

	t.Run("Moves after the game is over are rejected", func(t *testing.T) {
		// Given: X has won along the top row
		state := NewGameState()
		play(t, state, 0, 3, 1, 4, 2)
		before := *state

		// When: O tries to keep playing
		ok := state.Place(5)

		// Then: the move is rejected and the state is unchanged
		assert.False(t, ok)
		assert.Equal(t, before, *state)
	})

	t.Run("Turn alternates once per accepted move", func(t *testing.T) {
		// Given: a new state
		state := NewGameState()
		expected := PlayerX

		// When: accepted and rejected moves are mixed
		for _, slot := range []int{4, 4, 0, -1, 8, 0, 2} {
			accepted := state.Place(slot)

			// Then: the turn flips only when a move is accepted
			if accepted {
				expected = expected.Opponent()
			}
			assert.Equal(t, expected, state.Turn())
		}
	})
}

func TestGameState_TerminalStates(t *testing.T) {
	t.Run("Top row win for X", func(t *testing.T) {
		// Given: X on 0 and 1, O on 3 and 4
		state := NewGameState()
		play(t, state, 0, 3, 1, 4)
		require.False(t, state.IsOver())

		// When: X completes the row at slot 2
		play(t, state, 2)

		// Then: the game is over, X wins and the turn still flipped to O
		assert.True(t, state.IsOver())
		assert.Equal(t, PlayerX, state.Winner())
		assert.Equal(t, PlayerO, state.Turn())
	})

	t.Run("Diagonal win for O", func(t *testing.T) {
		// Given: O builds the anti-diagonal 2-4-6
		state := NewGameState()

		// When: the moves are played
		play(t, state, 0, 2, 1, 4, 8, 6)

		// Then: O wins and the turn passed back to X
		assert.True(t, state.IsOver())
		assert.Equal(t, PlayerO, state.Winner())
		assert.Equal(t, PlayerX, state.Turn())
	})

	t.Run("Full board without a line is a draw", func(t *testing.T) {
		// Given: a sequence that fills the board with no three in a row
		state := NewGameState()

		// When: all nine moves are played
		play(t, state, 0, 1, 2, 4, 3, 5, 7, 6, 8)

		// Then: the game is over with no winner
		assert.True(t, state.IsOver())
		assert.Equal(t, NoPiece, state.Winner())
		assert.Empty(t, state.LegalMoves())
		assert.Equal(t, PlayerO, state.Turn())
	})

	t.Run("Win on the last empty slot is a win, not a draw", func(t *testing.T) {
		// Given: eight moves with X about to complete the left column on slot 6
		state := NewGameState()
		play(t, state, 0, 1, 3, 4, 2, 5, 7, 8)

		// When: X fills the final slot
		play(t, state, 6)

		// Then: X is recorded as the winner
		assert.True(t, state.IsOver())
		assert.Equal(t, PlayerX, state.Winner())
	})
}

func TestGameState_LegalMovesMatchEmptyCells(t *testing.T) {
	// Given: a game played to a draw
	state := NewGameState()

	for _, slot := range []int{0, 1, 2, 4, 3, 5, 7, 6, 8} {
		// Then: before every move a slot is legal iff its cell is empty
		legal := make(map[int]bool)
		for _, move := range state.LegalMoves() {
			legal[move] = true
		}

		for s := range BoardSize {
			assert.Equal(t, state.PieceAt(s) == NoPiece, legal[s], "slot %d", s)
		}
		assert.Equal(t, BoardSize, len(legal)+state.MoveCount())

		play(t, state, slot)
	}
}

func TestGameState_LegalMovesIsACopy(t *testing.T) {
	// Given: the legal moves of a new state
	state := NewGameState()
	moves := state.LegalMoves()

	// When: the caller scribbles over the returned slice
	moves[0] = 4

	// Then: the state still offers slot 0
	assert.Equal(t, 0, state.LegalMoves()[0])
}

func TestGameState_Reset(t *testing.T) {
	// Given: a finished game that is then reset
	sequence := []int{4, 0, 8, 2, 1, 7, 6, 3, 5}
	reused := NewGameState()
	play(t, reused, 0, 3, 1, 4, 2)
	reused.Reset()

	// When: the reset state and a fresh one replay the same moves
	fresh := NewGameState()
	play(t, reused, sequence...)
	play(t, fresh, sequence...)

	// Then: both are observably identical
	assert.Equal(t, fresh.Board(), reused.Board())
	assert.Equal(t, fresh.Turn(), reused.Turn())
	assert.Equal(t, fresh.Winner(), reused.Winner())
	assert.Equal(t, fresh.IsOver(), reused.IsOver())
	assert.Equal(t, *fresh, *reused)
}

func TestGameState_Snapshot(t *testing.T) {
	// Given: a state with a couple of moves
	state := NewGameState()
	play(t, state, 4, 0)

	// When: a snapshot is taken and then played on
	snapshot := state.Snapshot()
	play(t, snapshot, 8)

	// Then: the source state is untouched
	assert.Equal(t, NoPiece, state.PieceAt(8))
	assert.Equal(t, PlayerX, state.Turn())
	assert.Equal(t, PlayerX, snapshot.PieceAt(8))
	assert.Equal(t, PlayerO, snapshot.Turn())
}

func TestGameState_String(t *testing.T) {
	// Given: X in the centre and O in the top-left corner
	state := NewGameState()
	play(t, state, 4, 0)

	// Then: the grid is rendered row by row
	expected := " O |   |  \n---+---+---\n   | X |  \n---+---+---\n   |   |  "
	assert.Equal(t, expected, state.String())
}

func TestGameState_JSON(t *testing.T) {
	t.Run("Encoded state decodes to an identical state", func(t *testing.T) {
		// Given: a finished game
		state := NewGameState()
		play(t, state, 0, 3, 1, 4, 2)

		// When: it is encoded and decoded
		data, err := json.Marshal(state)
		require.NoError(t, err)

		decoded := &GameState{}
		require.NoError(t, json.Unmarshal(data, decoded))

		// Then: nothing is lost
		assert.Equal(t, *state, *decoded)
		assert.JSONEq(t, `{"board":["X","X","X","O","O","","","",""],"turn":"O","winner":"X","over":true}`, string(data))
	})

	t.Run("Unknown pieces are rejected", func(t *testing.T) {
		// Given: a payload with a bogus mark
		data := []byte(`{"board":["Z","","","","","","","",""],"turn":"O","winner":"","over":false}`)

		// When: it is decoded
		err := json.Unmarshal(data, &GameState{})

		// Then: ErrInvalidPiece is reported
		assert.ErrorIs(t, err, ErrInvalidPiece)
	})

	t.Run("A winner on an unfinished board is rejected", func(t *testing.T) {
		data := []byte(`{"board":["","","","","","","","",""],"turn":"X","winner":"O","over":false}`)

		err := json.Unmarshal(data, &GameState{})

		assert.ErrorIs(t, err, ErrInvalidBoard)
	})
}

func TestGame_IsBotTurn(t *testing.T) {
	t.Run("Bot to move in single player mode", func(t *testing.T) {
		// Given: a single player game where the bot plays X
		game := NewGame("1", ModeSingle)
		game.BotPiece = PlayerX

		// Then: the bot is to move
		assert.True(t, game.IsBotTurn())
	})

	t.Run("Human to move in single player mode", func(t *testing.T) {
		game := NewGame("1", ModeSingle)
		game.BotPiece = PlayerO

		assert.False(t, game.IsBotTurn())
	})

	t.Run("Never the bot's turn in two player mode", func(t *testing.T) {
		game := NewGame("1", ModeTwo)
		game.BotPiece = PlayerX

		assert.False(t, game.IsBotTurn())
	})

	t.Run("Never the bot's turn once the game is over", func(t *testing.T) {
		// Given: X has won, and the turn flipped to the bot's O
		game := NewGame("1", ModeSingle)
		game.BotPiece = PlayerO
		play(t, game.State, 0, 3, 1, 4, 2)

		// Then: the bot does not move
		assert.False(t, game.IsBotTurn())
	})
}
