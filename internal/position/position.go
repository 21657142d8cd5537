// Package position implements the Connect-Four position: two team
// bitboards, whose turn it is, and how many moves have been played.
// It owns move legality, move application, and the win masks each
// team's stones imply.
package position

import (
	"strings"

	"github.com/connect4-core/solver/internal/bitboard"
)

// Mask is re-exported for callers that only need the board type and
// shouldn't need to import bitboard directly for it.
type Mask = bitboard.Mask

// Position is the pair of team bitboards plus whose turn it is and
// how many plies have been played (spec §3). The zero value is the
// starting position; Empty returns it.
type Position struct {
	teams     [2]Mask
	winMasks  [2]Mask
	side      int
	moveCount int
}

// Empty returns the starting position: an empty board, side 0 to
// move, zero moves played.
func Empty() Position {
	return Position{}
}

// Side returns which team (0 or 1) is to move.
func (p Position) Side() int { return p.side }

// MoveCount returns the number of plies played so far.
func (p Position) MoveCount() int { return p.moveCount }

// Team returns the bitboard of the given team's stones.
func (p Position) Team(side int) Mask { return p.teams[side] }

// WinMask returns the given team's current win mask: the empty
// squares that would complete a 4-in-a-row if that team played them.
func (p Position) WinMask(side int) Mask { return p.winMasks[side] &^ p.CombinedMask() }

// CombinedMask returns the union of both teams' stones.
func (p Position) CombinedMask() Mask {
	return p.teams[0] | p.teams[1]
}

// IsMoveValid reports whether column x has room for another stone.
func (p Position) IsMoveValid(x int) bool {
	return !p.CombinedMask().Get(x, bitboard.H-1)
}

// ValidMoveMask returns the lowest empty square in each non-full
// column (spec §3): shift the combined stack up one row, OR in the
// bottom row for empty columns, then keep only squares on the board
// that aren't already occupied.
func (p Position) ValidMoveMask() Mask {
	combined := p.CombinedMask()
	return ((combined << 1) | bitboard.BottomRow) & bitboard.Board & ^combined
}

// NextY returns the row a stone dropped into column x would land on.
// Only valid to call when the column is not full.
func (p Position) NextY(x int) int {
	return bitboard.Mask(p.CombinedMask().Column(x)).PopCount()
}

// IsSymmetrical reports whether the position is unchanged under
// horizontal mirroring.
func (p Position) IsSymmetrical() bool {
	return p.teams[0] == bitboard.FlipX(p.teams[0]) && p.teams[1] == bitboard.FlipX(p.teams[1])
}

// IsTerminalWon reports whether the team that just moved completed a
// 4-in-a-row. A position with no winner and no valid moves is a draw,
// which this does not report (use ValidMoveMask for that half).
func (p Position) IsTerminalWon() bool {
	justMoved := 1 - p.side
	return p.winMasks[justMoved]&p.teams[justMoved] != 0
}

// Equal reports whether p and other have the same stones and side to
// move (move counts always agree when the first two do, given legal
// play, so it is not compared).
func (p Position) Equal(other Position) bool {
	return p.teams[0] == other.teams[0] && p.teams[1] == other.teams[1] && p.side == other.side
}

// ApplyMove plays a single-bit mask for the side to move: it is OR'd
// into that team's stones, the team's win mask is recomputed, and the
// side to move toggles. moveMask must be exactly one bit, normally
// obtained from ValidMoveMask or bitboard.Mask.LowestBit.
func (p *Position) ApplyMove(moveMask Mask) {
	p.teams[p.side] |= moveMask
	p.winMasks[p.side] = bitboard.WinMask(p.teams[p.side])
	p.side = 1 - p.side
	p.moveCount++
}

// ApplyColumn plays the next open square in column x. It returns
// InvalidMoveError without modifying p if the column is full.
func (p *Position) ApplyColumn(x int) error {
	if !p.IsMoveValid(x) {
		return InvalidMoveError{Column: x}
	}
	var moveMask Mask
	moveMask.Set(x, p.NextY(x))
	p.ApplyMove(moveMask)
	return nil
}

// FromMoveString plays a sequence of 0-based column digits ('0'..'6')
// against an empty position, for building test fixtures and parsing
// CLI move histories. It stops at the first invalid move.
func FromMoveString(moves string) (Position, error) {
	p := Empty()
	for i, c := range moves {
		if c < '0' || c > '9' {
			return Position{}, InvalidCharacterError{Character: c, Index: i}
		}
		col := int(c - '0')
		if col >= bitboard.W {
			return Position{}, InvalidColumnError{Column: col, Index: i}
		}
		if err := p.ApplyColumn(col); err != nil {
			return Position{}, err
		}
	}
	return p, nil
}

// String renders the board as the `@`/`O`/space grid the CLI
// collaborator displays, with column digits (1-based) below it.
func (p Position) String() string {
	var b strings.Builder
	for y := bitboard.H - 1; y >= 0; y-- {
		for x := 0; x < bitboard.W; x++ {
			switch {
			case p.teams[0].Get(x, y):
				b.WriteByte('@')
			case p.teams[1].Get(x, y):
				b.WriteByte('O')
			default:
				b.WriteByte(' ')
			}
			if x < bitboard.W-1 {
				b.WriteByte(' ')
			}
		}
		b.WriteByte('\n')
	}
	for x := 0; x < bitboard.W; x++ {
		b.WriteByte(byte('1' + x))
	}
	return b.String()
}
