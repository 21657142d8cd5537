// Command connect4 plays an interactive game against the search
// engine, alternating turns between stdin input and the engine's own
// search, or runs the harness's diagnostic checks under -t (spec §1,
// §6).
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"github.com/connect4-core/solver/internal/bitboard"
	"github.com/connect4-core/solver/internal/engine"
	"github.com/connect4-core/solver/internal/position"
	"github.com/connect4-core/solver/internal/testharness"
)

var (
	doTesting     = flag.Bool("t", false, "run move-ordering and efficiency diagnostics instead of playing a game")
	computerOnly  = flag.Bool("self-play", false, "let the engine play both sides")
	tableSizeLog2 = flag.Uint("table-size-log2", 0, "transposition table size as a power of two (0 = use the default)")
)

func main() {
	flag.Parse()

	var eng *engine.Engine
	if *tableSizeLog2 > 0 {
		eng = engine.NewWithTableSize(*tableSizeLog2)
	} else {
		eng = engine.New()
	}

	if *doTesting {
		runDiagnostics(eng)
		return
	}

	runGame(eng, *computerOnly)
}

func runDiagnostics(eng *engine.Engine) {
	rng := rand.New(rand.NewSource(0))

	log.Println("Running move eval test...")
	for _, r := range testharness.CheckMoveOrdering(eng, rng, []int{18, 22, 25}, 50) {
		log.Printf(" > Depth %d, guessed %.1f%%", r.Depth, r.Agreement()*100)
	}

	eng.Reset()

	log.Println("Running overall efficiency test...")
	for _, r := range testharness.CheckEfficiency(eng, rng, []int{16, 20, 25}, 50) {
		log.Printf(" > Depth %d, avg searched: %d, table hit frac: %.3f", r.Depth, r.AvgNodes, r.TableHits)
	}
}

func runGame(eng *engine.Engine, computerOnly bool) {
	pos := position.Empty()
	reader := bufio.NewReader(os.Stdin)
	var movesStr strings.Builder

	for {
		fmt.Printf("Board:\n%s\n", pos.String())
		if movesStr.Len() > 0 {
			fmt.Printf("(Moves: %s)\n", movesStr.String())
		}

		if pos.IsTerminalWon() {
			winner := describeWinner(pos.Side(), computerOnly)
			fmt.Printf("Game over. %s won!\n", winner)
			return
		}
		if pos.ValidMoveMask() == 0 {
			fmt.Println("Game over. It's a draw.")
			return
		}

		humansTurn := pos.Side() == 0 && !computerOnly

		if !humansTurn {
			result, err := eng.Search(pos, true)
			if err != nil {
				log.Fatalf("search failed: %v", err)
			}
			col := colOfMove(result.Move)
			fmt.Printf("Playing move: %d\n", col+1)
			movesStr.WriteByte(byte('1' + col))
			pos.ApplyMove(result.Move)
			continue
		}

		col, ok := readHumanMove(reader, pos)
		if !ok {
			return
		}
		movesStr.WriteByte(byte('1' + col))
		var moveMask bitboard.Mask
		moveMask.Set(col, pos.NextY(col))
		pos.ApplyMove(moveMask)
	}
}

// describeWinner names the side that just won, given nextSide (the
// side that would move next, i.e. the loser) — the mirror image of the
// original's "humansTurn" check, which read the same thing backwards.
func describeWinner(nextSide int, computerOnly bool) string {
	winnerSide := 1 - nextSide
	if computerOnly {
		if winnerSide == 0 {
			return "Computer #1"
		}
		return "Computer #2"
	}
	if winnerSide == 0 {
		return "Human"
	}
	return "Computer"
}

func colOfMove(m bitboard.Mask) int {
	for x := 0; x < bitboard.W; x++ {
		if bitboard.ColumnMasks[x]&m != 0 {
			return x
		}
	}
	panic("connect4: move mask has no set column")
}

// readHumanMove prompts on stdin until it gets a legal column, or
// returns ok=false on EOF.
func readHumanMove(reader *bufio.Reader, pos position.Position) (int, bool) {
	for {
		fmt.Print("Your move index: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return 0, false
		}
		line = strings.TrimSpace(line)

		n, err := strconv.Atoi(line)
		if err != nil {
			fmt.Println("Invalid move (cannot parse)")
			continue
		}
		col := n - 1
		if col < 0 || col >= bitboard.W {
			fmt.Println("Invalid move (out of range)")
			continue
		}
		if !pos.IsMoveValid(col) {
			fmt.Println("Invalid move (column full)")
			continue
		}
		return col, true
	}
}
