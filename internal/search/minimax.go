package search

import "github.com/rocketscienceinc/tictactoe-engine/internal/entity"

// Minimax searches every line of play down to the depth limit.
type Minimax struct{}

func NewMinimax() *Minimax {
	return &Minimax{}
}

func (that *Minimax) BestMove(state *entity.GameState, perspective entity.Piece, maxDepth int) int {
	return that.Search(state, perspective, maxDepth).Slot
}

// Search returns the best move for perspective together with its value.
// Among equally good moves the lowest slot wins.
func (that *Minimax) Search(state *entity.GameState, perspective entity.Piece, maxDepth int) Result {
	var result Result
	result.Slot, result.Score = that.minimax(state, perspective, rootDepth(maxDepth), &result)

	return result
}

func (that *Minimax) minimax(state *entity.GameState, perspective entity.Piece, depth int, stats *Result) (int, int) {
	stats.Nodes++

	moves := state.LegalMoves()
	if depth <= 0 || state.IsOver() || len(moves) == 0 {
		stats.Leaves++
		return NoMove, score(state, perspective)
	}

	// the player about to move decides whether this node maximizes or minimizes
	maximizing := state.Turn() == perspective

	bestSlot, bestScore := NoMove, maxScore
	if maximizing {
		bestScore = minScore
	}

	for _, slot := range moves {
		child := state.Snapshot()
		child.Place(slot)

		_, childScore := that.minimax(child, perspective, depth-1, stats)
		if (maximizing && childScore > bestScore) || (!maximizing && childScore < bestScore) {
			bestSlot, bestScore = slot, childScore
		}
	}

	return bestSlot, bestScore
}
