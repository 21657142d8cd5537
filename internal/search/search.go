// Package search implements the negamax alpha-beta driver: the root
// Search entry point, the recursive AlphaBetaSearch, perft counting,
// and principal-variation reconstruction from the transposition table
// (spec §4.6).
package search

import (
	"math"

	"github.com/connect4-core/solver/internal/bitboard"
	"github.com/connect4-core/solver/internal/eval"
	"github.com/connect4-core/solver/internal/instasolver"
	"github.com/connect4-core/solver/internal/position"
	"github.com/connect4-core/solver/internal/tt"
	"github.com/connect4-core/solver/internal/value"
)

// NoValidMovesError is returned by Search when called on a position
// with no legal move — a terminal position the caller should have
// detected first (spec §7).
type NoValidMovesError struct{}

func (NoValidMovesError) Error() string {
	return "search: position has no valid moves"
}

// Cache carries the alpha-beta window and current depth down the
// recursion. Alpha/Beta are Values so the sign-only comparison rules
// in package value apply directly to the window bounds.
type Cache struct {
	Alpha, Beta value.Value
	Depth       uint8
}

// ProgressDepth returns the cache for a child node: the window flips
// and negates (negamax), and depth increases by one.
func (c Cache) ProgressDepth() Cache {
	return Cache{
		Alpha: c.Beta.Negate(),
		Beta:  c.Alpha.Negate(),
		Depth: c.Depth + 1,
	}
}

// rootCache is the window AlphaBetaSearch is called with from Search.
func rootCache() Cache {
	return Cache{Alpha: value.Value{Sign: -1}, Beta: value.Value{Sign: 1}, Depth: 0}
}

// Info accumulates search statistics and the best move found at each
// depth of the current recursion, so the root can recover its chosen
// move without threading it back up as a return value.
type Info struct {
	Nodes         uint64
	TableSearches uint64
	TableHits     uint64
	Pruned        uint64
	BestMove      [bitboard.Cells + 1]bitboard.Mask
}

// TableHitFraction returns the fraction of table probes that found a
// matching entry, for telemetry.
func (info *Info) TableHitFraction() float64 {
	if info.TableSearches == 0 {
		return 0
	}
	return float64(info.TableHits) / float64(info.TableSearches)
}

// Result is the root search's answer: the move to play and its
// game-theoretic value.
type Result struct {
	Move  bitboard.Mask
	Value value.Value
}

type ratedMove struct {
	move   bitboard.Mask
	rating float32
}

// AlphaBetaSearch is the recursive negamax driver. table may be nil
// only if pos.MoveCount() is always >= bitboard.Cells-8 along every
// path explored, since useTable gates every table access; callers
// normally always pass a real table.
func AlphaBetaSearch(table *tt.Table, pos position.Position, info *Info, cache Cache) value.Value {
	info.Nodes++

	side := pos.Side()
	opp := 1 - side
	hbSelf, hbOpp := pos.Team(side), pos.Team(opp)
	selfWin, oppWin := pos.WinMask(side), pos.WinMask(opp)
	validMoves := pos.ValidMoveMask()

	if v := eval.EvalAndCropValidMoves(hbSelf, hbOpp, selfWin, oppWin, &validMoves); v.IsValid() {
		return v
	}

	useTable := pos.MoveCount() < bitboard.Cells-8

	var hash uint64
	var entry tt.Entry
	var tableBestMove bitboard.Mask

	if useTable {
		hash = tt.HashBoard(pos.Team(0), pos.Team(1))
		entry = table.Find(hash)
		info.TableSearches++

		// hash == 0 also marks an empty slot (tt.Entry's zero value),
		// so a real hash of 0 must never be treated as a hit.
		if entry.Hash == hash && hash != 0 {
			info.TableHits++
			tableBestMove = entry.BestMove

			if entry.Value.GreaterOrEqual(cache.Beta) {
				return entry.Value
			}
			if !entry.IsCutNode {
				return entry.Value
			}
		}
	}

	if cache.Depth > 1 {
		if solved := instasolver.Solve(pos); solved.Kind != instasolver.None {
			returnSolved := solved.Kind == instasolver.Exact ||
				(solved.Kind == instasolver.LowerBound && solved.Value.GreaterOrEqual(cache.Beta)) ||
				(solved.Kind == instasolver.UpperBound && solved.Value.Less(cache.Alpha))
			if returnSolved {
				return solved.Value
			}
		}
	}

	if pos.IsSymmetrical() {
		var sidedMask bitboard.Mask
		for x := 0; x <= bitboard.W/2; x++ {
			sidedMask |= bitboard.ColumnMasks[x]
		}
		validMoves &= sidedMask
		if tableBestMove != 0 && tableBestMove&sidedMask == 0 {
			tableBestMove = bitboard.FlipX(tableBestMove)
		}
	}

	var moves [bitboard.W]ratedMove
	numMoves := 0
	remaining := validMoves
	for remaining != 0 {
		move := remaining.LowestBit()
		remaining &^= move

		rating := eval.RateMove(hbSelf, hbOpp, move)
		if move == tableBestMove {
			rating = float32(math.MaxFloat32)
		}
		moves[numMoves] = ratedMove{move: move, rating: rating}
		numMoves++
	}

	// Insertion sort descending by rating; stable, so ties keep the
	// lowest-bit-first order they were generated in.
	for i := 1; i < numMoves; i++ {
		cur := moves[i]
		j := i
		for j > 0 && moves[j-1].rating < cur.rating {
			moves[j] = moves[j-1]
			j--
		}
		moves[j] = cur
	}

	originalBeta := cache.Beta
	var bestMove bitboard.Mask
	bestEval := value.Invalid

	for i := 0; i < numMoves; i++ {
		move := moves[i].move

		next := pos
		next.ApplyMove(move)

		childEval := AlphaBetaSearch(table, next, info, cache.ProgressDepth())
		childEval = childEval.Negate().IncrementDepth()

		if childEval.GreaterOrEqual(cache.Beta) {
			bestEval = childEval
			bestMove = move
			info.Pruned++
			break
		}

		if childEval.Sign > bestEval.Sign {
			bestEval = childEval
			if childEval.Sign > cache.Alpha.Sign {
				cache.Alpha = childEval
			}
			bestMove = move
		}
	}

	hitCutoff := bestEval.GreaterOrEqual(originalBeta)

	if useTable {
		_ = table.Store(hash, [2]bitboard.Mask{pos.Team(0), pos.Team(1)}, bestMove, bestEval, hitCutoff)
	}

	info.BestMove[cache.Depth] = bestMove

	return bestEval
}

// PerfTest enumerates the move tree to a fixed depth and counts
// leaves. A move landing on the opponent's still-live win mask counts
// as a single leaf and is not expanded further, matching the
// reference perft definition this solver is tested against (spec §8).
func PerfTest(pos position.Position, depth int) uint64 {
	validMoves := pos.ValidMoveMask()

	if depth <= 1 {
		return uint64(validMoves.PopCount())
	}

	winMask := pos.WinMask(1 - pos.Side())
	var count uint64
	remaining := validMoves
	for remaining != 0 {
		move := remaining.LowestBit()
		remaining &^= move

		if winMask&move != 0 {
			count++
			continue
		}

		next := pos
		next.ApplyMove(move)
		count += PerfTest(next, depth-1)
	}
	return count
}

// FindPVFromTable reconstructs the principal variation by repeatedly
// applying the best move and following the transposition table's
// stored best move from the resulting position, stopping at the
// first hash miss or empty best move. It is for display only; search
// correctness never depends on it.
func FindPVFromTable(table *tt.Table, pos position.Position, firstMove bitboard.Mask) []bitboard.Mask {
	result := []bitboard.Mask{firstMove}

	cur := pos
	cur.ApplyMove(firstMove)

	for {
		hash := tt.HashBoard(cur.Team(0), cur.Team(1))
		entry := table.Find(hash)
		if entry.Hash != hash || hash == 0 || entry.BestMove == 0 {
			break
		}
		result = append(result, entry.BestMove)
		cur.ApplyMove(entry.BestMove)
	}
	return result
}

// Search is the root entry point: if the side to move can win
// immediately, it returns that move without recursing; otherwise it
// runs AlphaBetaSearch from the full (-1, +1) window and recovers the chosen
// move from Info.BestMove[0], falling back to the first legal move if
// the search never recorded one.
func Search(table *tt.Table, pos position.Position, info *Info) (Result, error) {
	validMoves := pos.ValidMoveMask()
	if validMoves == 0 {
		return Result{}, NoValidMovesError{}
	}

	winMoveMask := validMoves & pos.WinMask(pos.Side())
	if winMoveMask != 0 {
		for x := 0; x < bitboard.W; x++ {
			if !pos.IsMoveValid(x) {
				continue
			}
			var moveMask bitboard.Mask
			moveMask.Set(x, pos.NextY(x))
			if winMoveMask&moveMask != 0 {
				return Result{Move: moveMask, Value: value.Value{Sign: 1, Depth: 1}}, nil
			}
		}
		panic("search: winning move mask set but no matching column found")
	}

	v := AlphaBetaSearch(table, pos, info, rootCache())

	bestMove := info.BestMove[0]
	if bestMove == 0 {
		bestMove = validMoves.LowestBit()
	}

	return Result{Move: bestMove, Value: v}, nil
}
