package entity

// GameView is the flattened form of a Game sent to clients.
type GameView struct {
	ID         string           `json:"id"`
	Mode       string           `json:"mode"`
	BotPiece   Piece            `json:"bot_piece,omitempty"`
	Strategy   string           `json:"strategy,omitempty"`
	Board      [BoardSize]Piece `json:"board"`
	Turn       Piece            `json:"turn"`
	Winner     Piece            `json:"winner"`
	Over       bool             `json:"over"`
	LegalMoves []int            `json:"legal_moves"`
}

// View lists no legal moves once the game is over.
func (that *Game) View() GameView {
	moves := []int{}
	if !that.State.IsOver() {
		moves = that.State.LegalMoves()
	}

	return GameView{
		ID:         that.ID,
		Mode:       that.Mode,
		BotPiece:   that.BotPiece,
		Strategy:   that.Strategy,
		Board:      that.State.Board(),
		Turn:       that.State.Turn(),
		Winner:     that.State.Winner(),
		Over:       that.State.IsOver(),
		LegalMoves: moves,
	}
}
