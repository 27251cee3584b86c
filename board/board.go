package board

// Style is the visual flag a list of squares is applied with.
type Style int

const (
	Highlight Style = iota + 1
	Selected
)

func (s Style) String() string {
	if s == Selected {
		return "selected"
	}
	return "highlight"
}

type Square struct {
	Occupant    Piece
	Selected    bool
	Highlighted bool
}

// Board owns the 64 displayed squares, stored by Slot.
type Board struct {
	mapper  Mapper
	squares [NumSquares]Square
}

func New(m Mapper) *Board {
	return &Board{mapper: m}
}

func (b *Board) Mapper() Mapper { return b.mapper }

func (b *Board) Square(s Slot) Square { return b.squares[s] }

// At returns the square showing backend index i.
func (b *Board) At(i Index) Square { return b.squares[b.mapper.ToDisplay(i)] }

func (b *Board) ClearAllHighlights() {
	for i := range b.squares {
		b.squares[i].Highlighted = false
	}
}

func (b *Board) ClearAllSelections() {
	for i := range b.squares {
		b.squares[i].Selected = false
	}
}

// Apply sets style on every listed square without clearing anything first.
func (b *Board) Apply(indices []Index, style Style) {
	for _, i := range indices {
		sq := &b.squares[b.mapper.ToDisplay(i)]
		switch style {
		case Selected:
			sq.Selected = true
		default:
			sq.Highlighted = true
		}
	}
}

// ToggleSelected flips the selection flag of s and returns the new value.
func (b *Board) ToggleSelected(s Slot) bool {
	b.squares[s].Selected = !b.squares[s].Selected
	return b.squares[s].Selected
}

func (b *Board) IsHighlighted(s Slot) bool { return b.squares[s].Highlighted }

// RenderPosition replaces all occupants with the decoded position string.
// A malformed string leaves the board exactly as it was.
func (b *Board) RenderPosition(s string) error {
	pos, err := ParsePosition(s)
	if err != nil {
		return err
	}
	b.Place(pos)
	return nil
}

// Place clears highlights and occupants, then puts every piece of p on its slot.
func (b *Board) Place(p Position) {
	for i := range b.squares {
		b.squares[i].Highlighted = false
		b.squares[i].Occupant = Piece{}
	}
	for i, pc := range p {
		if pc.IsZero() {
			continue
		}
		b.squares[b.mapper.ToDisplay(Index(i))].Occupant = pc
	}
}

// Position reads the occupants back in backend order.
func (b *Board) Position() Position {
	var p Position
	for s, sq := range b.squares {
		p[b.mapper.FromDisplay(Slot(s))] = sq.Occupant
	}
	return p
}

// SetOrientation re-lays the squares so every index keeps its occupant and flags.
func (b *Board) SetOrientation(o Orientation) {
	if b.mapper.Orientation == o {
		return
	}
	next := Mapper{Orientation: o}
	var squares [NumSquares]Square
	for s, sq := range b.squares {
		squares[next.ToDisplay(b.mapper.FromDisplay(Slot(s)))] = sq
	}
	b.mapper = next
	b.squares = squares
}

func (b *Board) Occupied() int {
	n := 0
	for _, sq := range b.squares {
		if !sq.Occupant.IsZero() {
			n++
		}
	}
	return n
}
