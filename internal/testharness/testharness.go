// Package testharness generates random legal playouts and checks the
// search driver's efficiency and move-ordering quality against them
// (spec §2 item 8, §8). It is a reusable diagnostic, not a _test.go
// file, so both this package's own tests and the CLI collaborator's
// "-t" mode can drive it (spec §1: test-scenario generation is a
// named collaborator, not core search logic).
package testharness

import (
	"math/rand"

	"github.com/connect4-core/solver/internal/bitboard"
	"github.com/connect4-core/solver/internal/engine"
	"github.com/connect4-core/solver/internal/eval"
	"github.com/connect4-core/solver/internal/position"
)

// GeneratePosition plays numMoves random legal moves from an empty
// board and returns the resulting position. Whenever the in-progress
// line hits a forced win/loss/draw that EvalAndCropValidMoves already
// detects, the whole playout restarts — the harness wants positions
// that are still genuinely contested at numMoves plies, not ones that
// were already decided a few moves earlier.
func GeneratePosition(rng *rand.Rand, numMoves int) position.Position {
	for {
		pos := position.Empty()
		decided := false

		for i := 0; i < numMoves; i++ {
			side := pos.Side()
			opp := 1 - side
			validMoves := pos.ValidMoveMask()

			v := eval.EvalAndCropValidMoves(pos.Team(side), pos.Team(opp), pos.WinMask(side), pos.WinMask(opp), &validMoves)
			if v.IsValid() {
				decided = true
				break
			}

			var chosen bitboard.Mask
			if !validMoves.HasMinBitsSet(2) {
				chosen = validMoves
			} else {
				var moves []bitboard.Mask
				remaining := validMoves
				for remaining != 0 {
					m := remaining.LowestBit()
					remaining &^= m
					moves = append(moves, m)
				}
				chosen = moves[rng.Intn(len(moves))]
			}

			pos.ApplyMove(chosen)
		}

		if !decided {
			return pos
		}
	}
}

// MoveOrderingResult reports how many of numSamples positions at each
// sampled depth had RateMove's top pick agree with a full search: the
// position's search value should equal the negation of the
// highest-rated move's own search value when the heuristic picked the
// actual best move.
type MoveOrderingResult struct {
	Depth       int
	NumSamples  int
	NumAgreeing int
}

// Agreement returns the fraction of samples where the heuristic's top
// move matched the search's conclusion.
func (r MoveOrderingResult) Agreement() float64 {
	if r.NumSamples == 0 {
		return 0
	}
	return float64(r.NumAgreeing) / float64(r.NumSamples)
}

// CheckMoveOrdering samples numSamples random positions at each of
// depths and compares RateMove's top-rated move against what a full
// search finds, returning one result per depth (spec's "move-ordering
// quality check").
func CheckMoveOrdering(eng *engine.Engine, rng *rand.Rand, depths []int, numSamples int) []MoveOrderingResult {
	results := make([]MoveOrderingResult, len(depths))

	for i, depth := range depths {
		result := MoveOrderingResult{Depth: depth, NumSamples: numSamples}

		for s := 0; s < numSamples; s++ {
			pos := GeneratePosition(rng, depth)

			searchResult, err := eng.Search(pos, false)
			if err != nil {
				continue
			}

			side := pos.Side()
			opp := 1 - side
			hbSelf, hbOpp := pos.Team(side), pos.Team(opp)

			var bestMove bitboard.Mask
			var bestRating float32
			first := true
			remaining := pos.ValidMoveMask()
			for remaining != 0 {
				m := remaining.LowestBit()
				remaining &^= m
				rating := eval.RateMove(hbSelf, hbOpp, m)
				if first || rating > bestRating {
					bestRating = rating
					bestMove = m
					first = false
				}
			}

			next := pos
			next.ApplyMove(bestMove)
			nextResult, err := eng.Search(next, false)
			if err != nil {
				continue
			}

			if searchResult.Value.Sign == -nextResult.Value.Sign {
				result.NumAgreeing++
			}
		}

		results[i] = result
	}

	return results
}

// EfficiencyResult reports the average number of nodes AlphaBetaSearch
// visited across numSamples positions generated at a given depth.
type EfficiencyResult struct {
	Depth      int
	NumSamples int
	AvgNodes   uint64
	TableHits  float64
}

// CheckEfficiency samples numSamples random positions at each of
// depths and records how many nodes a fresh search needed, to flag
// regressions in move ordering / table effectiveness (spec's
// "efficiency check").
func CheckEfficiency(eng *engine.Engine, rng *rand.Rand, depths []int, numSamples int) []EfficiencyResult {
	results := make([]EfficiencyResult, len(depths))

	for i, depth := range depths {
		var totalNodes uint64
		var totalHitFrac float64

		for s := 0; s < numSamples; s++ {
			pos := GeneratePosition(rng, depth)

			_, info, err := eng.SearchWithInfo(pos, false)
			if err != nil {
				continue
			}
			totalNodes += info.Nodes
			totalHitFrac += info.TableHitFraction()
		}

		results[i] = EfficiencyResult{
			Depth:      depth,
			NumSamples: numSamples,
			AvgNodes:   totalNodes / uint64(numSamples),
			TableHits:  totalHitFrac / float64(numSamples),
		}
	}

	return results
}
