// Package instasolver implements O(1) detectors for structurally
// trivial subpositions — ClaimEven and isolated-column endgames — so
// the search driver can skip recursing into them entirely (spec §4.5).
package instasolver

import (
	"math/bits"

	"github.com/connect4-core/solver/internal/bitboard"
	"github.com/connect4-core/solver/internal/position"
	"github.com/connect4-core/solver/internal/value"
)

// ResultKind tags how a Result should be used against the caller's
// alpha-beta window.
type ResultKind int

const (
	// None means no detector fired; the caller must keep searching.
	None ResultKind = iota
	// LowerBound means the side to move can force at least Value;
	// it prunes iff Value >= beta.
	LowerBound
	// UpperBound means the opponent can force at least Value (from
	// the side to move's perspective, a ceiling); it prunes iff
	// Value < alpha.
	UpperBound
	// Exact is the position's true game-theoretic value; it always
	// short-circuits the search.
	Exact
)

// Result is what a detector reports.
type Result struct {
	Kind  ResultKind
	Value value.Value
}

// Solve tries each detector in order (ClaimEven, then the
// single/isolated-column detectors) and returns the first that fires.
// Only internal nodes (depth >= 2 from the root) should call Solve;
// calling it at the root could produce a value with no associated
// move.
func Solve(pos position.Position) Result {
	if r, ok := checkClaimEven(pos); ok {
		return r
	}
	if r, ok := checkSingleColumn(pos); ok {
		return r
	}
	if r, ok := checkIsolatedColumns(pos); ok {
		return r
	}
	return Result{Kind: None}
}

// getFirstBit isolates the lowest set bit of an 8-bit column value.
func getFirstBit(v uint8) uint8 {
	return v & uint8(-int8(v))
}

// checkClaimEven applies the ClaimEven positional theorem: when
// side 0 is to move and every column's current occupancy is even,
// the detector asks who would win if both sides simply claimed every
// square of their favored parity (side 0 claims even rows, side 1
// claims odd rows, per-square clamped by whatever the opponent
// actually already occupies). If side 1's hypothetical claim yields a
// win no later than side 0's, the real game is lost or drawn for side
// 0 regardless of how play proceeds.
func checkClaimEven(pos position.Position) (Result, bool) {
	if pos.Side() != 0 {
		return Result{}, false
	}

	combined := pos.CombinedMask()
	for x := 0; x < bitboard.W; x++ {
		column := bitboard.Mask(combined.Column(x))
		if column.PopCount()%2 != 0 {
			return Result{}, false
		}
	}

	playables := [2]bitboard.Mask{
		(pos.Team(0) | bitboard.EvenRows) &^ pos.Team(1),
		(pos.Team(1) | bitboard.OddRows) &^ pos.Team(0),
	}

	selfWin := playables[0] & bitboard.WinMask(playables[0])
	oppWin := playables[1] & bitboard.WinMask(playables[1])

	for x := 0; x < bitboard.W; x++ {
		selfCol := selfWin.Column(x)
		oppCol := oppWin.Column(x)
		if selfCol == 0 {
			continue
		}
		if oppCol == 0 {
			// Side 0 could win here uncontested; ClaimEven doesn't apply.
			return Result{}, false
		}
		if getFirstBit(selfCol) <= getFirstBit(oppCol) {
			// Side 0 would complete its claim first.
			return Result{}, false
		}
	}

	emptySquares := (bitboard.Board &^ combined).PopCount()
	if oppWin != 0 {
		return Result{Kind: Exact, Value: value.Value{Sign: -1, Depth: uint8(emptySquares)}}, true
	}
	return Result{Kind: UpperBound, Value: value.Value{Sign: 0}}, true
}

// checkSingleColumn handles the case where exactly one column has any
// room left: the rest of the game is forced move-by-move down that
// column, and whichever side's win mask has the lowest-sitting empty
// square (restricted to that side's favored parity — side 0 reads
// even rows, side 1 reads odd rows, mirroring checkClaimEven's
// convention) wins; if neither does, it's a draw.
func checkSingleColumn(pos position.Position) (Result, bool) {
	if pos.MoveCount() < bitboard.Cells-bitboard.H {
		return Result{}, false
	}

	combined := pos.CombinedMask()
	nextMove := pos.ValidMoveMask()
	if nextMove.PopCount() != 1 {
		return Result{}, false
	}

	col := bits.TrailingZeros64(uint64(nextMove)) / bitboard.ColBits

	winCols := [2]uint8{
		(pos.WinMask(0) &^ combined & bitboard.EvenRows).Column(col),
		(pos.WinMask(1) &^ combined & bitboard.OddRows).Column(col),
	}

	emptySquares := (bitboard.Board &^ combined).PopCount()

	winningTeam := -1
	switch {
	case winCols[0] != 0 && winCols[1] != 0:
		if getFirstBit(winCols[0]) <= getFirstBit(winCols[1]) {
			winningTeam = 0
		} else {
			winningTeam = 1
		}
	case winCols[0] != 0:
		winningTeam = 0
	case winCols[1] != 0:
		winningTeam = 1
	}

	if winningTeam == -1 {
		return Result{Kind: Exact, Value: value.Value{Sign: 0, Depth: uint8(emptySquares)}}, true
	}
	sign := int8(-1)
	if winningTeam == pos.Side() {
		sign = 1
	}
	return Result{Kind: Exact, Value: value.Value{Sign: sign, Depth: uint8(emptySquares)}}, true
}

// maxIsolatedColumns bounds how many open columns checkIsolatedColumns
// will consider: more than this and cross-column alignments become
// possible even at maximum spacing.
const maxIsolatedColumns = bitboard.W/connectWinAmount + 1
const connectWinAmount = 4
const minColumnSpacing = connectWinAmount

// checkIsolatedColumns handles positions where the few columns still
// open are spaced far enough apart (>= 4 columns) that no 4-in-a-row
// can span more than one of them, so each can be judged independently.
func checkIsolatedColumns(pos position.Position) (Result, bool) {
	combined := pos.CombinedMask()
	nextMoveMask := pos.ValidMoveMask()

	openColumns := nextMoveMask.PopCount()
	if openColumns == 0 || openColumns > maxIsolatedColumns {
		return Result{}, false
	}

	type column struct {
		x        int
		threats0 bool
		threats1 bool
	}
	var cols []column

	lastX := -minColumnSpacing
	for x := 0; x < bitboard.W; x++ {
		openSpace := bitboard.ColumnMasks[x] &^ combined
		if openSpace == 0 {
			continue
		}
		if x-lastX < minColumnSpacing {
			// Two open columns too close together: alignments could
			// cross between them, so this detector can't be trusted.
			return Result{}, false
		}

		t0 := pos.WinMask(0).Column(x) != 0
		t1 := pos.WinMask(1).Column(x) != 0
		cols = append(cols, column{x: x, threats0: t0, threats1: t1})
		lastX = x
	}

	var useful []column
	for _, c := range cols {
		if c.threats0 || c.threats1 {
			useful = append(useful, c)
		}
	}

	if len(useful) == 0 {
		return Result{Kind: Exact, Value: value.Value{Sign: 0}}, true
	}
	if len(useful) > 1 {
		// Multiple live columns: give up, let the real search handle it.
		return Result{}, false
	}

	col := useful[0].x
	p0 := (pos.WinMask(0) &^ combined & bitboard.OddRows).Column(col)
	p1 := (pos.WinMask(1) &^ combined & bitboard.EvenRows).Column(col)

	winningTeam := -1
	switch {
	case p0 != 0 && p1 != 0:
		if getFirstBit(p0) <= getFirstBit(p1) {
			winningTeam = 0
		} else {
			winningTeam = 1
		}
	case p0 != 0:
		winningTeam = 0
	case p1 != 0:
		winningTeam = 1
	}

	if winningTeam == -1 {
		return Result{Kind: Exact, Value: value.Value{Sign: 0}}, true
	}
	sign := int8(-1)
	if winningTeam == pos.Side() {
		sign = 1
	}
	return Result{Kind: Exact, Value: value.Value{Sign: sign}}, true
}
