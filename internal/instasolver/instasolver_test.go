package instasolver

import (
	"testing"

	"github.com/connect4-core/solver/internal/position"
)

func TestGetFirstBit(t *testing.T) {
	cases := []struct {
		in, want uint8
	}{
		{0, 0},
		{0b0110, 0b0010},
		{0b1000, 0b1000},
		{0b0001, 0b0001},
		{0b1111, 0b0001},
	}
	for _, c := range cases {
		if got := getFirstBit(c.in); got != c.want {
			t.Errorf("getFirstBit(%b) = %b, want %b", c.in, got, c.want)
		}
	}
}

func TestSolveDoesNotFireEarlyGame(t *testing.T) {
	// A single stone played: too many open columns for
	// checkIsolatedColumns, too few moves for checkSingleColumn, and
	// side 1 to move so checkClaimEven's precondition fails outright.
	p, err := position.FromMoveString("3")
	if err != nil {
		t.Fatalf("FromMoveString: %v", err)
	}
	if got := Solve(p); got.Kind != None {
		t.Errorf("Solve(one stone played) = %+v, want Kind None", got)
	}
}

func TestClaimEvenSkipsWhenOpponentToMove(t *testing.T) {
	// Three plies leave side 1 to move; ClaimEven only ever applies
	// with side 0 to move.
	p, err := position.FromMoveString("303")
	if err != nil {
		t.Fatalf("FromMoveString: %v", err)
	}
	if p.Side() != 1 {
		t.Fatalf("fixture should have side 1 to move, got side %d", p.Side())
	}
	r, ok := checkClaimEven(p)
	if ok {
		t.Errorf("checkClaimEven fired with side 1 to move: %+v", r)
	}
}

func TestClaimEvenSkipsOnUnevenColumn(t *testing.T) {
	// Four stones, one in each of columns 0-3, leave side 0 to move
	// again but every occupied column at odd height, so ClaimEven's
	// "every column even" precondition fails even though the
	// side-to-move gate alone would pass.
	p, err := position.FromMoveString("3012")
	if err != nil {
		t.Fatalf("FromMoveString: %v", err)
	}
	if p.Side() != 0 {
		t.Fatalf("fixture should have side 0 to move, got side %d", p.Side())
	}
	if p.NextY(3)%2 == 0 {
		t.Fatalf("fixture should leave column 3 at odd height")
	}
	if r, ok := checkClaimEven(p); ok {
		t.Errorf("checkClaimEven fired with an odd-height column: %+v", r)
	}
}

func TestCheckIsolatedColumnsSkipsWithManyOpenColumns(t *testing.T) {
	// The empty board has all 7 columns open, far more than
	// maxIsolatedColumns permits, so the detector must decline rather
	// than attempt an analysis.
	r, ok := checkIsolatedColumns(position.Empty())
	if ok {
		t.Errorf("checkIsolatedColumns fired on the empty board: %+v", r)
	}
}

func TestCheckSingleColumnSkipsEarlyGame(t *testing.T) {
	p, err := position.FromMoveString("3")
	if err != nil {
		t.Fatalf("FromMoveString: %v", err)
	}
	if _, ok := checkSingleColumn(p); ok {
		t.Errorf("checkSingleColumn fired after a single move")
	}
}
