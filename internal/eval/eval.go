// Package eval implements the pre-search terminal pruner and the
// move-ordering heuristic (spec §4.3). Neither affects correctness of
// the search's final value: EvalAndCropValidMoves only ever narrows
// valid moves to a set that is provably forced, or returns an exact
// terminal value; RateMove only orders moves for alpha-beta
// efficiency.
package eval

import (
	"math/bits"

	"github.com/connect4-core/solver/internal/bitboard"
	"github.com/connect4-core/solver/internal/value"
)

// EvalAndCropValidMoves inspects a position before any move is tried.
// It either returns a forced terminal value, or narrows *validMoves
// to the set of moves that survive the forced-block/must-not-hand-
// opponent-the-win analysis, and returns value.Invalid.
//
// hbSelf/hbOpp are the to-move and not-to-move teams' stones;
// selfWin/oppWin are their respective win masks.
func EvalAndCropValidMoves(hbSelf, hbOpp, selfWin, oppWin bitboard.Mask, validMoves *bitboard.Mask) value.Value {
	oppWinNext := oppWin & *validMoves
	if oppWinNext != 0 {
		if oppWinNext.HasMinBitsSet(2) {
			// Opponent has two+ winning replies; we can block only one.
			return value.Value{Sign: -1, Depth: 2}
		}
		// Exactly one threat: we are forced to block it.
		*validMoves = oppWinNext
	}

	// Never play directly below a square the opponent would win on;
	// that hands them the win next ply.
	*validMoves &= ^(oppWin >> 1)

	if *validMoves == 0 {
		return value.Value{Sign: -1, Depth: 2}
	}

	emptySquares := bitboard.Board &^ (hbSelf | hbOpp)
	if emptySquares.PopCount() <= 2 {
		// Too few squares left for either side to set up a win we
		// haven't already detected; it's a draw in at most 2 plies.
		return value.Value{Sign: 0, Depth: 2}
	}

	return value.Invalid
}

const (
	centeredMarginX     = 1 // max(1, W/4)
	veryCenteredMarginX = 2 // max(2, W/3)

	threatWeight       = 10.0
	oddRowThreatWeight = 2.0
	stackedWeight      = 40.0
	closesColumnWeight = 0.5
	centralityPenalty  = 0.1
)

// RateMove heuristically scores moveMask as a candidate for the side
// whose stones are hbSelf, relative to the opponent's stones hbOpp.
// Higher is better; the score is used only to order moves before
// alpha-beta search, never to prune or decide correctness.
func RateMove(hbSelf, hbOpp, moveMask bitboard.Mask) float32 {
	idx := bits.TrailingZeros64(uint64(moveMask))
	x := idx / bitboard.ColBits
	y := idx % bitboard.ColBits

	nextSelf := hbSelf | moveMask
	newWin := bitboard.WinMask(nextSelf)
	threats := newWin &^ hbOpp

	score := float32(threats.PopCount()) * threatWeight

	oddThreats := threats & bitboard.OddRows
	score += float32(oddThreats.PopCount()) * oddRowThreatWeight

	stacked := threats & (threats >> 1)
	score += float32(stacked.PopCount()) * stackedWeight

	if y == bitboard.H-1 {
		score += closesColumnWeight
	}

	centre := bitboard.W / 2
	distFromCentre := x - centre
	if distFromCentre < 0 {
		distFromCentre = -distFromCentre
	}
	score -= float32(distFromCentre) * centralityPenalty

	return score
}
