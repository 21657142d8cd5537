// Package tt implements the search's transposition table: a
// fixed-size, direct-mapped, single-slot-replacement cache of
// previously searched positions (spec §4.4).
package tt

import (
	"fmt"

	"github.com/connect4-core/solver/internal/bitboard"
	"github.com/connect4-core/solver/internal/value"
)

// DefaultSizeLog2 gives a table of 2^23 entries, the size spec §4.4
// names.
const DefaultSizeLog2 = 23

// Entry is one slot: a zero Hash means the slot is empty. IsCutNode
// distinguishes an exact value from a lower bound the search derived
// by pruning on value >= beta.
type Entry struct {
	Hash      uint64
	BestMove  bitboard.Mask
	Value     value.Value
	IsCutNode bool
}

// Table is a direct-mapped transposition table of power-of-two size.
// It is owned by a single Engine for its lifetime; nothing about it
// is safe for concurrent use (spec §5: single-threaded search).
type Table struct {
	entries  []Entry
	mask     uint64
	debug    bool
	debugPos map[uint64][2]bitboard.Mask
}

// New builds a table with 2^sizeLog2 entries.
func New(sizeLog2 uint) *Table {
	size := uint64(1) << sizeLog2
	return &Table{
		entries: make([]Entry, size),
		mask:    size - 1,
	}
}

// NewDebug builds a table like New, but additionally remembers the
// full position stored at each slot so a later Store to the same slot
// with a different position can be detected as a hash collision. This
// is off by default (spec §4.4/§7): it costs an extra map lookup per
// Store and is meant for development use only.
func NewDebug(sizeLog2 uint) *Table {
	t := New(sizeLog2)
	t.debug = true
	t.debugPos = make(map[uint64][2]bitboard.Mask)
	return t
}

// Size returns the number of slots in the table.
func (t *Table) Size() int {
	return len(t.entries)
}

// Reset clears every slot.
func (t *Table) Reset() {
	for i := range t.entries {
		t.entries[i] = Entry{}
	}
	if t.debug {
		t.debugPos = make(map[uint64][2]bitboard.Mask)
	}
}

func (t *Table) slot(hash uint64) uint64 {
	return hash & t.mask
}

// Find returns the slot a hash maps to, regardless of whether it
// currently holds a matching entry; callers must check
// entry.Hash == hash themselves (spec §4.4's "probe" contract).
func (t *Table) Find(hash uint64) Entry {
	return t.entries[t.slot(hash)]
}

// HashCollisionError is raised by Store in debug mode when two
// distinct positions map to the same slot and hash to the same
// value (spec §7's HashCollisionDetected, debug-only).
type HashCollisionError struct {
	Hash uint64
}

func (e HashCollisionError) Error() string {
	return fmt.Sprintf("transposition table hash collision detected at hash 0x%x", e.Hash)
}

// Store writes an entry into the slot hash maps to, unconditionally
// overwriting whatever was there (spec §4.4's single-entry-per-slot
// replacement policy). teams identifies the position being stored and
// is only consulted in debug mode.
func (t *Table) Store(hash uint64, teams [2]bitboard.Mask, bestMove bitboard.Mask, v value.Value, isCutNode bool) error {
	idx := t.slot(hash)
	if t.debug {
		if prevTeams, ok := t.debugPos[hash]; ok && t.entries[idx].Hash == hash {
			if prevTeams != teams {
				return HashCollisionError{Hash: hash}
			}
		}
		t.debugPos[hash] = teams
	}
	t.entries[idx] = Entry{Hash: hash, BestMove: bestMove, Value: v, IsCutNode: isCutNode}
	return nil
}

// FillFraction returns the ratio of non-empty slots to total slots,
// for telemetry.
func (t *Table) FillFraction() float64 {
	filled := 0
	for i := range t.entries {
		if t.entries[i].Hash != 0 {
			filled++
		}
	}
	return float64(filled) / float64(len(t.entries))
}

const (
	murmurConst1 = 0xff51afd7ed558ccd
	murmurConst2 = 0xc4ceb9fe1a85ec53
)

// fastHash is a MurmurHash3-style 64-bit finalizer. alt swaps which
// of the two constants is applied first/last, so the same input
// produces a different, equally well-mixed value depending on which
// team it represents.
func fastHash(val uint64, alt bool) uint64 {
	c1, c2 := uint64(murmurConst1), uint64(murmurConst2)
	if alt {
		c1, c2 = c2, c1
	}
	val ^= val >> 33
	val *= c1
	val ^= val >> 33
	val *= c2
	val ^= val >> 33
	return val
}

// HashBoard computes the table key for a position from its two team
// masks. The hash also folds in each team's horizontal flip, XORed
// against its own un-flipped hash, so a position and its mirror image
// always produce the same key — the table treats them as one entry
// (spec §4.4, §4.6's symmetry reduction).
func HashBoard(team0, team1 bitboard.Mask) uint64 {
	h0 := fastHash(uint64(team0), false) ^ fastHash(uint64(bitboard.FlipX(team0)), false)
	h1 := fastHash(uint64(team1), true) ^ fastHash(uint64(bitboard.FlipX(team1)), true)
	return h0 ^ h1
}
