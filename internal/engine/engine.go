// Package engine wires the transposition table and search driver
// together into the object the CLI collaborator talks to (spec §6).
package engine

import (
	"log"
	"math/bits"
	"time"

	"github.com/connect4-core/solver/internal/bitboard"
	"github.com/connect4-core/solver/internal/position"
	"github.com/connect4-core/solver/internal/search"
	"github.com/connect4-core/solver/internal/tt"
)

// Engine owns a transposition table across repeated searches. It is
// not safe for concurrent use (spec §5).
type Engine struct {
	table *tt.Table
}

// New constructs an Engine with a cleared table sized per
// tt.DefaultSizeLog2.
func New() *Engine {
	return &Engine{table: tt.New(tt.DefaultSizeLog2)}
}

// NewWithTableSize constructs an Engine with a table of 2^sizeLog2
// entries, for callers that want to trade memory for search depth
// (e.g. tests running many small searches against a shrunk table).
func NewWithTableSize(sizeLog2 uint) *Engine {
	return &Engine{table: tt.New(sizeLog2)}
}

// Reset clears the transposition table, discarding everything learned
// from prior searches.
func (e *Engine) Reset() {
	e.table.Reset()
}

// Search is the root search call (spec §6). When verbose is true, it
// logs node counts, pruning rate, table hit fraction, and the
// reconstructed principal variation.
func (e *Engine) Search(pos position.Position, verbose bool) (search.Result, error) {
	result, _, err := e.SearchWithInfo(pos, verbose)
	return result, err
}

// SearchWithInfo behaves like Search but also returns the node-count
// and pruning statistics gathered along the way, for callers (such as
// the testharness package) that report on search efficiency.
func (e *Engine) SearchWithInfo(pos position.Position, verbose bool) (search.Result, *search.Info, error) {
	start := time.Now()
	info := &search.Info{}

	result, err := search.Search(e.table, pos, info)
	if err != nil {
		return search.Result{}, info, err
	}

	if verbose {
		elapsed := time.Since(start).Seconds()
		var nodesPerSec float64
		if elapsed > 0 {
			nodesPerSec = float64(info.Nodes) / elapsed
		}
		pv := search.FindPVFromTable(e.table, pos, result.Move)
		log.Printf(
			"eval: %s, searched: %d/%d pruned, nodes/sec: %.0f, table hit frac: %.3f, table fill frac: %.4f",
			result.Value, info.Nodes, info.Pruned, nodesPerSec, info.TableHitFraction(), e.table.FillFraction(),
		)
		log.Printf(" > PV: %s", pvString(pv))
	}

	return result, info, nil
}

func pvString(pv []bitboard.Mask) string {
	b := make([]byte, 0, len(pv))
	for _, move := range pv {
		col := bits.TrailingZeros64(uint64(move)) / bitboard.ColBits
		b = append(b, byte('1'+col))
	}
	return string(b)
}
