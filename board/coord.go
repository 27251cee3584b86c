package board

import "fmt"

const (
	Files      = 8
	Ranks      = 8
	NumSquares = Files * Ranks
)

// Index is a square in backend order: rank*8+file, rank 0 being white's first rank.
type Index int

// NoIndex marks an unknown square, e.g. a move origin nobody queried yet.
const NoIndex Index = -1

// Slot is a square in display order: row*8+col, row 0 at the top of the screen.
type Slot int

func (i Index) Valid() bool { return i >= 0 && i < NumSquares }

func (s Slot) Valid() bool { return s >= 0 && s < NumSquares }

type Orientation int

const (
	// WhiteBottom shows rank 0 on the bottom row.
	WhiteBottom Orientation = iota
	// BlackBottom is the flipped board: last rank at the bottom, files mirrored.
	BlackBottom
)

func (o Orientation) String() string {
	if o == BlackBottom {
		return "black"
	}
	return "white"
}

// ParseOrientation accepts "white" or "black" (the side shown at the bottom).
func ParseOrientation(s string) (Orientation, error) {
	switch s {
	case "", "white":
		return WhiteBottom, nil
	case "black":
		return BlackBottom, nil
	default:
		return WhiteBottom, fmt.Errorf("unknown orientation %q", s)
	}
}

// Mapper converts between backend indices and display slots.
// Both directions are involutions, so ToDisplay and FromDisplay share one formula.
type Mapper struct {
	Orientation Orientation
}

func (m Mapper) ToDisplay(i Index) Slot {
	if !i.Valid() {
		panic(fmt.Sprintf("board: index %d out of range", i))
	}
	return Slot(m.flip(int(i)))
}

func (m Mapper) FromDisplay(s Slot) Index {
	if !s.Valid() {
		panic(fmt.Sprintf("board: slot %d out of range", s))
	}
	return Index(m.flip(int(s)))
}

func (m Mapper) flip(n int) int {
	row, col := n/Files, n%Files
	if m.Orientation == BlackBottom {
		return row*Files + (Files - 1 - col)
	}
	return (Ranks-1-row)*Files + col
}

// ToDisplay maps with the default white-bottom orientation.
func ToDisplay(i Index) Slot { return Mapper{}.ToDisplay(i) }

// FromDisplay is the inverse of ToDisplay.
func FromDisplay(s Slot) Index { return Mapper{}.FromDisplay(s) }

// Move is a commit request. From may be NoIndex when the origin is left to the backend.
type Move struct {
	From Index
	To   Index
}
