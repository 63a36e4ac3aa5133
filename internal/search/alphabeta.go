package search

import "github.com/rocketscienceinc/tictactoe-engine/internal/entity"

// AlphaBeta is minimax with alpha-beta pruning. At full depth it returns the same
// value and, since both keep the lowest of equally good slots, the same move.
type AlphaBeta struct{}

func NewAlphaBeta() *AlphaBeta {
	return &AlphaBeta{}
}

func (that *AlphaBeta) BestMove(state *entity.GameState, perspective entity.Piece, maxDepth int) int {
	return that.Search(state, perspective, maxDepth).Slot
}

// Search returns the best move for perspective and the root's final bound as the
// position's value.
func (that *AlphaBeta) Search(state *entity.GameState, perspective entity.Piece, maxDepth int) Result {
	var result Result
	result.Slot, result.Score = that.alphaBeta(state, perspective, minScore, maxScore, rootDepth(maxDepth), &result)

	return result
}

// alphaBeta keeps alpha as the best score perspective can force so far and beta
// as the best the opponent can force. Once alpha >= beta the remaining siblings
// cannot change the result and are skipped.
func (that *AlphaBeta) alphaBeta(state *entity.GameState, perspective entity.Piece, alpha, beta, depth int, stats *Result) (int, int) {
	stats.Nodes++

	moves := state.LegalMoves()
	if depth <= 0 || state.IsOver() || len(moves) == 0 {
		stats.Leaves++
		return NoMove, score(state, perspective)
	}

	maximizing := state.Turn() == perspective

	bestSlot := NoMove
	for _, slot := range moves {
		child := state.Snapshot()
		child.Place(slot)

		_, childScore := that.alphaBeta(child, perspective, alpha, beta, depth-1, stats)
		switch {
		case maximizing && childScore > alpha:
			alpha = childScore
			bestSlot = slot
		case !maximizing && childScore < beta:
			beta = childScore
			bestSlot = slot
		}

		if alpha >= beta {
			break
		}
	}

	if maximizing {
		return bestSlot, alpha
	}

	return bestSlot, beta
}
