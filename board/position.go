package board

import (
	"errors"
	"fmt"
	"strings"
)

var ErrMalformedPosition = errors.New("malformed position string")

// StartingPosition is the placement field of the orthodox initial position.
const StartingPosition = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR"

// Position is the decoded placement part of a position string, indexed by backend Index.
type Position [NumSquares]Piece

// ParsePosition decodes the first whitespace-separated field of s. Rank
// segments are listed from the last rank down to rank 0, so segment i
// column j is Index (7-i)*8+j. Trailing fields (side to move, castling...)
// are ignored.
func ParsePosition(s string) (Position, error) {
	var pos Position

	fields := strings.Fields(s)
	if len(fields) == 0 {
		return pos, fmt.Errorf("%w: empty", ErrMalformedPosition)
	}
	ranks := strings.Split(fields[0], "/")
	if len(ranks) != Ranks {
		return pos, fmt.Errorf("%w: %d rank segments", ErrMalformedPosition, len(ranks))
	}

	for i, segment := range ranks {
		rank := Ranks - 1 - i
		file := 0
		for k := 0; k < len(segment); k++ {
			ch := segment[k]
			if ch >= '0' && ch <= '9' {
				file += int(ch - '0')
				continue
			}
			piece, err := ParsePiece(ch)
			if err != nil {
				return Position{}, fmt.Errorf("%w: rank segment %d: %w", ErrMalformedPosition, i, err)
			}
			if file >= Files {
				return Position{}, fmt.Errorf("%w: rank segment %d overflows", ErrMalformedPosition, i)
			}
			pos[rank*Files+file] = piece
			file++
		}
		if file != Files {
			return Position{}, fmt.Errorf("%w: rank segment %d expands to %d cells", ErrMalformedPosition, i, file)
		}
	}
	return pos, nil
}

// String encodes the placement field with run-length compressed empty cells.
func (p Position) String() string {
	var sb strings.Builder
	for i := 0; i < Ranks; i++ {
		if i > 0 {
			sb.WriteByte('/')
		}
		rank := Ranks - 1 - i
		empty := 0
		for file := 0; file < Files; file++ {
			pc := p[rank*Files+file]
			if pc.IsZero() {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteByte(pc.Symbol())
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
	}
	return sb.String()
}

// Occupied counts the non-empty squares.
func (p Position) Occupied() int {
	n := 0
	for _, pc := range p {
		if !pc.IsZero() {
			n++
		}
	}
	return n
}
