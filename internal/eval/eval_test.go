package eval

import (
	"testing"

	"github.com/connect4-core/solver/internal/bitboard"
	"github.com/connect4-core/solver/internal/position"
)

func TestEvalAndCropValidMovesNoThreat(t *testing.T) {
	pos := position.Empty()
	validMoves := pos.ValidMoveMask()
	before := validMoves
	v := EvalAndCropValidMoves(pos.Team(0), pos.Team(1), pos.WinMask(0), pos.WinMask(1), &validMoves)
	if v.IsValid() {
		t.Fatalf("empty board should not be a forced terminal, got %v", v)
	}
	if validMoves != before {
		t.Errorf("EvalAndCropValidMoves narrowed valid moves with no threat present: %#x -> %#x", before, validMoves)
	}
}

func TestEvalAndCropValidMovesForcedBlock(t *testing.T) {
	// Opponent has three stones in a row at columns 0-2, threatening
	// column 3. The side to move must block there or lose.
	var hbOpp bitboard.Mask
	hbOpp.Set(0, 0)
	hbOpp.Set(1, 0)
	hbOpp.Set(2, 0)
	oppWin := bitboard.WinMask(hbOpp)

	var hbSelf bitboard.Mask
	var selfWin bitboard.Mask

	validMoves := nextMovesFor(hbOpp)
	v := EvalAndCropValidMoves(hbSelf, hbOpp, selfWin, oppWin, &validMoves)
	if v.IsValid() {
		t.Fatalf("a single forced block should crop moves, not resolve the position, got %v", v)
	}

	var col3 bitboard.Mask
	col3.Set(3, 0)
	if validMoves != col3 {
		t.Errorf("validMoves after a forced block = %#x, want only column 3 (%#x)", validMoves, col3)
	}
}

func TestEvalAndCropValidMovesDoubleThreatIsLoss(t *testing.T) {
	// Opponent has two independent three-in-a-rows whose open squares
	// don't coincide: columns 0-2 on the bottom row threaten column 3,
	// and a vertical stack of three in column 5 threatens the square
	// on top of it.
	var hbOpp bitboard.Mask
	hbOpp.Set(0, 0)
	hbOpp.Set(1, 0)
	hbOpp.Set(2, 0)
	hbOpp.Set(5, 0)
	hbOpp.Set(5, 1)
	hbOpp.Set(5, 2)
	oppWin := bitboard.WinMask(hbOpp)
	if !oppWin.HasMinBitsSet(2) {
		t.Fatalf("fixture should produce at least two distinct threat squares, got %#x", oppWin)
	}

	var hbSelf, selfWin bitboard.Mask
	validMoves := nextMovesFor(hbOpp)
	v := EvalAndCropValidMoves(hbSelf, hbOpp, selfWin, oppWin, &validMoves)
	if !v.IsValid() || v.Sign != -1 {
		t.Errorf("a double threat against the side to move should be a forced loss, got %v", v)
	}
}

// nextMovesFor computes the lowest empty square in each non-full
// column of combined, the same formula position.ValidMoveMask uses,
// so tests can build fixtures directly from bitboard masks without
// going through a move-string playout.
func nextMovesFor(combined bitboard.Mask) bitboard.Mask {
	return ((combined << 1) | bitboard.BottomRow) & bitboard.Board &^ combined
}

func TestRateMoveFavorsCenterOverEdge(t *testing.T) {
	pos := position.Empty()
	var center, edge bitboard.Mask
	center.Set(bitboard.W/2, 0)
	edge.Set(0, 0)

	centerRating := RateMove(pos.Team(0), pos.Team(1), center)
	edgeRating := RateMove(pos.Team(0), pos.Team(1), edge)
	if centerRating <= edgeRating {
		t.Errorf("center move rating %v should exceed edge move rating %v on an empty board", centerRating, edgeRating)
	}
}

func TestRateMoveRewardsNewThreats(t *testing.T) {
	// Side 0 already holds columns 0 and 1 on the bottom row. Playing
	// column 2 completes a three-in-a-row, opening a real threat at
	// column 3; column 4 is equidistant from center but aligns with
	// nothing, so it should rate lower.
	pos, err := position.FromMoveString("0616")
	if err != nil {
		t.Fatalf("FromMoveString: %v", err)
	}
	var completesThreat, noThreat bitboard.Mask
	completesThreat.Set(2, pos.NextY(2))
	noThreat.Set(4, pos.NextY(4))

	ratedThreat := RateMove(pos.Team(0), pos.Team(1), completesThreat)
	ratedNoThreat := RateMove(pos.Team(0), pos.Team(1), noThreat)
	if ratedThreat <= ratedNoThreat {
		t.Errorf("completing a three-in-a-row should rate higher than an isolated move at equal centrality: %v vs %v", ratedThreat, ratedNoThreat)
	}
}
