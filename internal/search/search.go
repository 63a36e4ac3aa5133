// Package search picks moves for the automated player by walking the game tree.
//
// Minimax visits every node up to the depth limit, AlphaBeta prunes branches that
// cannot change the result, and Random ignores the tree entirely. All of them read
// the state through its public methods and explore on snapshots, so the state a
// caller passes in is never modified.
package search

import (
	"errors"
	"fmt"
	"math"

	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

const (
	// DefaultDepth reaches every terminal position from any legal start.
	DefaultDepth = entity.BoardSize

	// NoMove is returned when the state has no legal move.
	NoMove = -1

	NameMinimax   = "minimax"
	NameAlphaBeta = "alphabeta"
	NameRandom    = "random"
)

const (
	scoreWin  = 1
	scoreLoss = -1
	scoreDraw = 0

	minScore = math.MinInt
	maxScore = math.MaxInt
)

var ErrUnknownStrategy = errors.New("unknown search strategy")

// Strategy chooses the next slot for perspective.
type Strategy interface {
	BestMove(state *entity.GameState, perspective entity.Piece, maxDepth int) int
}

// Result is the outcome of a tree search.
type Result struct {
	// Slot is the chosen move, or NoMove.
	Slot int `json:"slot"`
	// Score is the value of the position from the perspective's point of view.
	Score int `json:"score"`
	// Nodes counts every visited state, Leaves the ones that were scored.
	Nodes  int `json:"nodes"`
	Leaves int `json:"leaves"`
}

// New returns the strategy registered under name.
func New(name string) (Strategy, error) {
	switch name {
	case NameMinimax:
		return NewMinimax(), nil
	case NameAlphaBeta:
		return NewAlphaBeta(), nil
	case NameRandom:
		return NewRandom(nil), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}

// Names lists the registered strategy names.
func Names() []string {
	return []string{NameMinimax, NameAlphaBeta, NameRandom}
}

// score rates a position for perspective: a win is 1, a loss -1, and anything
// else, including a cutoff before the game ended, 0.
func score(state *entity.GameState, perspective entity.Piece) int {
	if !state.IsOver() {
		return scoreDraw
	}

	switch state.Winner() {
	case perspective:
		return scoreWin
	case entity.NoPiece:
		return scoreDraw
	default:
		return scoreLoss
	}
}

// rootDepth makes sure the root is always expanded.
func rootDepth(maxDepth int) int {
	if maxDepth < 1 {
		return 1
	}

	return maxDepth
}
