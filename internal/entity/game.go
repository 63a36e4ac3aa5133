package entity

const (
	ModeSingle = "single"
	ModeTwo    = "two"
)

// Game is a play session: a board plus who controls each side.
// In ModeSingle the BotPiece side is played by the search Strategy; ModeTwo is
// hot-seat play where both sides submit moves through the same session.
type Game struct {
	ID       string     `json:"id"`
	Mode     string     `json:"mode"`
	BotPiece Piece      `json:"bot_piece,omitempty"`
	Strategy string     `json:"strategy,omitempty"`
	Depth    int        `json:"depth,omitempty"`
	State    *GameState `json:"state"`
}

func NewGame(id, mode string) *Game {
	return &Game{
		ID:    id,
		Mode:  mode,
		State: NewGameState(),
	}
}

func (that *Game) IsSinglePlayer() bool {
	return that.Mode == ModeSingle
}

func (that *Game) IsFinished() bool {
	return that.State.IsOver()
}

// IsBotTurn reports whether the automated player is the one to move.
func (that *Game) IsBotTurn() bool {
	return that.IsSinglePlayer() && !that.State.IsOver() && that.State.Turn() == that.BotPiece
}

// ValidMode reports whether mode is a known session mode.
func ValidMode(mode string) bool {
	return mode == ModeSingle || mode == ModeTwo
}
