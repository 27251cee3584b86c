package board

// SquareView is the JSON representation of one displayed square.
type SquareView struct {
	Slot        int    `json:"slot"`
	Index       int    `json:"index"`
	Piece       string `json:"piece,omitempty"`
	Asset       string `json:"asset,omitempty"`
	Selected    bool   `json:"selected"`
	Highlighted bool   `json:"highlighted"`
}

// View is a snapshot of the board, safe to hand to another goroutine.
type View struct {
	Orientation string       `json:"orientation"`
	Squares     []SquareView `json:"squares"`
}

func (b *Board) Snapshot() View {
	v := View{
		Orientation: b.mapper.Orientation.String(),
		Squares:     make([]SquareView, NumSquares),
	}
	for s, sq := range b.squares {
		sv := SquareView{
			Slot:        s,
			Index:       int(b.mapper.FromDisplay(Slot(s))),
			Selected:    sq.Selected,
			Highlighted: sq.Highlighted,
		}
		if !sq.Occupant.IsZero() {
			sv.Piece = string(sq.Occupant.Symbol())
			sv.Asset = sq.Occupant.Asset()
		}
		v.Squares[s] = sv
	}
	return v
}
