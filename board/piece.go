package board

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownPiece = errors.New("unknown piece letter")

type Color int

const (
	White Color = iota
	Black
)

func (c Color) String() string {
	return []string{"white", "black"}[c]
}

// knownKinds are the orthodox letters plus the fairy symbols the backend
// uses for its custom pieces.
const knownKinds = "pnbrqkzshv"

// Piece is an occupant. The zero Piece is an empty square.
type Piece struct {
	Kind  byte // lowercase letter
	Color Color
}

// ParsePiece reads a position-string symbol: uppercase is white, lowercase black.
func ParsePiece(symbol byte) (Piece, error) {
	kind := symbol
	color := Black
	if symbol >= 'A' && symbol <= 'Z' {
		kind = symbol - 'A' + 'a'
		color = White
	}
	if strings.IndexByte(knownKinds, kind) < 0 {
		return Piece{}, fmt.Errorf("%w: %q", ErrUnknownPiece, symbol)
	}
	return Piece{Kind: kind, Color: color}, nil
}

func (p Piece) IsZero() bool { return p.Kind == 0 }

// Symbol is the inverse of ParsePiece.
func (p Piece) Symbol() byte {
	if p.Color == White {
		return p.Kind - 'a' + 'A'
	}
	return p.Kind
}

// Asset returns the static image path of the piece, e.g. /static/pieces/wn.png.
func (p Piece) Asset() string {
	prefix := "b"
	if p.Color == White {
		prefix = "w"
	}
	return fmt.Sprintf("/static/pieces/%s%c.png", prefix, p.Kind)
}
