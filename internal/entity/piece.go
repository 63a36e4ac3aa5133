package entity

// Piece is a mark placed on the board. PlayerX always moves first.
type Piece string

const (
	PlayerX Piece = "X"
	PlayerO Piece = "O"

	// NoPiece marks an empty cell, and the winner of a drawn or unfinished game.
	NoPiece Piece = ""
)

// Opponent returns the other player's piece. NoPiece has no opponent.
func (that Piece) Opponent() Piece {
	switch that {
	case PlayerX:
		return PlayerO
	case PlayerO:
		return PlayerX
	default:
		return NoPiece
	}
}

// Valid reports whether the piece is one of the two players.
func (that Piece) Valid() bool {
	return that == PlayerX || that == PlayerO
}

func (that Piece) String() string {
	if that == NoPiece {
		return " "
	}

	return string(that)
}
