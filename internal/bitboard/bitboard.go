// Package bitboard implements the packed 64-bit board representation
// that the rest of the solver builds on: one team's stones fit in a
// single uint64, and win detection reduces to a handful of shifts.
package bitboard

import "math/bits"

const (
	// W is the board width in columns.
	W = 7
	// H is the board height in rows.
	H = 6
	// Cells is the number of playable squares on the board.
	Cells = W * H
	// ColBits is the number of bits reserved per column; H of them are
	// real rows, the remainder pads the column so a shift never bleeds
	// into its neighbor.
	ColBits = 8
)

// Mask is a 64-bit bitboard: bit y+8*x addresses column x, row y (row
// 0 is the bottom of the board). Bits at y>=H are never set in a
// legal position mask.
type Mask uint64

var (
	// Board is the set of all 42 playable squares.
	Board Mask
	// BottomRow is the set of row-0 squares, one per column.
	BottomRow Mask
	// ColumnMasks[x] is the set of playable squares in column x.
	ColumnMasks [W]Mask
	// EvenRows is the set of playable squares on even-indexed rows
	// (row 0, 2, 4, ...); OddRows is its complement within Board.
	// These back the ClaimEven detector's parity argument.
	EvenRows Mask
	OddRows  Mask
)

func init() {
	for x := 0; x < W; x++ {
		for y := 0; y < H; y++ {
			bit := Mask(1) << uint(y+x*ColBits)
			Board |= bit
			if y == 0 {
				BottomRow |= bit
			}
			ColumnMasks[x] |= bit
			if y%2 == 0 {
				EvenRows |= bit
			} else {
				OddRows |= bit
			}
		}
	}
}

// Index returns the bit position of column x, row y.
func Index(x, y int) uint {
	return uint(y + x*ColBits)
}

// Get reports whether column x, row y is set.
func (m Mask) Get(x, y int) bool {
	return m&(Mask(1)<<Index(x, y)) != 0
}

// Set ORs column x, row y into m. It never clears a bit.
func (m *Mask) Set(x, y int) {
	*m |= Mask(1) << Index(x, y)
}

// Column returns the low byte of m shifted down to column x's origin;
// bits H..7 of the result are always zero for a legal position mask.
func (m Mask) Column(x int) uint8 {
	return uint8(m >> uint(x*ColBits))
}

// PopCount returns the number of set bits in m.
func (m Mask) PopCount() int {
	return bits.OnesCount64(uint64(m))
}

// LowestBit returns a mask containing only m's lowest set bit, or 0
// if m is empty. Used to iterate a move mask one bit at a time.
func (m Mask) LowestBit() Mask {
	return m & -m
}

// HasMinBitsSet reports whether m has at least k bits set, without
// computing a full popcount: clear k-1 of the lowest set bits and
// test whether anything remains.
func (m Mask) HasMinBitsSet(k int) bool {
	for i := 0; i < k-1; i++ {
		m &= m - 1
	}
	return m != 0
}

func shift(m Mask, d int) Mask {
	if d >= 0 {
		return m << uint(d)
	}
	return m >> uint(-d)
}

// checkDir finds, for direction d, empty squares that would complete
// a run of 4 through two already-aligned stones of m: two adjacent
// cells at +d/+2d, with the fourth cell either trailing at -d or
// leading at +3d.
func checkDir(m Mask, d int) Mask {
	twoInRow := shift(m, d) & shift(m, 2*d)
	return (twoInRow & shift(m, -d)) | (twoInRow & shift(m, 3*d))
}

// WinMask returns the set of squares that would complete a
// 4-in-a-row if occupied by the team owning m, given m's current
// stones. It does not exclude squares already occupied by either
// team; callers intersect the result with a valid-move or vacancy
// mask before using it to decide threats.
func WinMask(m Mask) Mask {
	var r Mask
	r |= checkDir(m, 1) // vertical: pieces can't float, so one direction suffices

	r |= checkDir(m, ColBits)
	r |= checkDir(m, -ColBits)

	r |= checkDir(m, ColBits+1)
	r |= checkDir(m, -(ColBits + 1))

	r |= checkDir(m, ColBits-1)
	r |= checkDir(m, -(ColBits - 1))

	return r & Board
}

// FlipX mirrors m across the board's vertical center line, swapping
// column x with column W-1-x.
func FlipX(m Mask) Mask {
	var out Mask
	centre := W / 2
	for x := 0; x < centre; x++ {
		mirror := W - 1 - x
		shiftAmt := uint((mirror - x) * ColBits)
		out |= (m & ColumnMasks[x]) << shiftAmt
		out |= (m & ColumnMasks[mirror]) >> shiftAmt
	}
	if W%2 == 1 {
		out |= m & ColumnMasks[centre]
	}
	return out
}
