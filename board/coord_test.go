package board

import "testing"

func TestToDisplay(t *testing.T) {
	cases := map[Index]Slot{0: 56, 7: 63, 56: 0, 63: 7, 12: 52, 28: 36}
	for i, want := range cases {
		if got := ToDisplay(i); got != want {
			t.Errorf("ToDisplay(%d) = %d, want %d", i, got, want)
		}
	}
}

func TestMapperRoundTrip(t *testing.T) {
	for _, o := range []Orientation{WhiteBottom, BlackBottom} {
		t.Run(o.String(), func(t *testing.T) {
			m := Mapper{Orientation: o}
			seen := make(map[Slot]bool)
			for i := Index(0); i < NumSquares; i++ {
				s := m.ToDisplay(i)
				if seen[s] {
					t.Fatalf("slot %d produced twice", s)
				}
				seen[s] = true
				if back := m.FromDisplay(s); back != i {
					t.Errorf("FromDisplay(ToDisplay(%d)) = %d", i, back)
				}
				if again := m.ToDisplay(m.FromDisplay(Slot(i))); again != Slot(i) {
					t.Errorf("ToDisplay(FromDisplay(%d)) = %d", i, again)
				}
			}
		})
	}
}

func TestBlackBottom(t *testing.T) {
	m := Mapper{Orientation: BlackBottom}
	// a1 is shown top right, h8 bottom left.
	if got := m.ToDisplay(0); got != 7 {
		t.Errorf("a1 -> %d, want 7", got)
	}
	if got := m.ToDisplay(63); got != 56 {
		t.Errorf("h8 -> %d, want 56", got)
	}
}

func TestMapperPanicsOutOfRange(t *testing.T) {
	for _, i := range []Index{-1, 64} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("ToDisplay(%d) did not panic", i)
				}
			}()
			ToDisplay(i)
		}()
	}
}

func TestParseOrientation(t *testing.T) {
	if o, err := ParseOrientation("black"); err != nil || o != BlackBottom {
		t.Errorf("black: got %v, %v", o, err)
	}
	if o, err := ParseOrientation(""); err != nil || o != WhiteBottom {
		t.Errorf("empty: got %v, %v", o, err)
	}
	if _, err := ParseOrientation("sideways"); err == nil {
		t.Error("expected error for unknown orientation")
	}
}
