package search

import (
	"math/rand"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

// Random plays a uniformly random legal move. It is not a search, just a weak
// opponent for casual games.
type Random struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandom uses rng for its choices, or a time-seeded generator when rng is nil.
func NewRandom(rng *rand.Rand) *Random {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano())) //nolint: gosec // it's ok
	}

	return &Random{rng: rng}
}

func (that *Random) BestMove(state *entity.GameState, _ entity.Piece, _ int) int {
	moves := state.LegalMoves()
	if state.IsOver() || len(moves) == 0 {
		return NoMove
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	return moves[that.rng.Intn(len(moves))]
}
