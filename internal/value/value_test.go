package value

import "testing"

func TestInvalidSentinel(t *testing.T) {
	if Invalid.IsValid() {
		t.Errorf("Invalid.IsValid() should be false")
	}
	for _, sign := range []int8{-1, 0, 1} {
		v := Value{Sign: sign}
		if !v.IsValid() {
			t.Errorf("Value{Sign: %d}.IsValid() should be true", sign)
		}
	}
}

func TestNegate(t *testing.T) {
	win := Value{Sign: 1, Depth: 5}
	loss := win.Negate()
	if loss.Sign != -1 || loss.Depth != 5 {
		t.Errorf("Negate() of a win = %+v, want Sign -1, Depth unchanged", loss)
	}
	draw := Value{Sign: 0, Depth: 3}
	if draw.Negate().Sign != 0 {
		t.Errorf("Negate() of a draw should stay a draw")
	}
}

func TestIncrementDepth(t *testing.T) {
	v := Value{Sign: 1, Depth: 2}
	v2 := v.IncrementDepth()
	if v2.Depth != 3 || v2.Sign != 1 {
		t.Errorf("IncrementDepth() = %+v, want Depth 3, Sign unchanged", v2)
	}
}

func TestOrderingIsSignOnly(t *testing.T) {
	loss := Value{Sign: -1, Depth: 1}
	draw := Value{Sign: 0, Depth: 40}
	win := Value{Sign: 1, Depth: 1}

	if !loss.Less(draw) || !draw.Less(win) {
		t.Errorf("expected loss < draw < win")
	}
	if win.Less(draw) || draw.Less(loss) {
		t.Errorf("ordering should not reverse")
	}

	shallowWin := Value{Sign: 1, Depth: 1}
	deepWin := Value{Sign: 1, Depth: 30}
	if shallowWin.Less(deepWin) || deepWin.Less(shallowWin) {
		t.Errorf("two wins should compare equal regardless of depth")
	}
	if !shallowWin.GreaterOrEqual(deepWin) || !deepWin.GreaterOrEqual(shallowWin) {
		t.Errorf("GreaterOrEqual should hold both ways for equal signs")
	}
}

func TestString(t *testing.T) {
	cases := []struct {
		v    Value
		want string
	}{
		{Value{Sign: 1, Depth: 7}, "WINNING(7)"},
		{Value{Sign: -1, Depth: 2}, "LOSING(2)"},
		{Value{Sign: 0, Depth: 0}, "DRAW"},
	}
	for _, c := range cases {
		if got := c.v.String(); got != c.want {
			t.Errorf("%+v.String() = %q, want %q", c.v, got, c.want)
		}
	}
}
