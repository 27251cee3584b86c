package board

import (
	"errors"
	"testing"
)

func TestParsePosition(t *testing.T) {
	pos, err := ParsePosition("rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1")
	if err != nil {
		t.Fatalf("ParsePosition: %v", err)
	}
	if pc := pos[28]; pc.Kind != 'p' || pc.Color != White {
		t.Errorf("e4 = %+v, want white pawn", pc)
	}
	if !pos[12].IsZero() {
		t.Errorf("e2 should be empty, got %+v", pos[12])
	}
	if pc := pos[60]; pc.Kind != 'k' || pc.Color != Black {
		t.Errorf("e8 = %+v, want black king", pc)
	}
	if n := pos.Occupied(); n != 32 {
		t.Errorf("occupied = %d, want 32", n)
	}
}

func TestParsePositionErrors(t *testing.T) {
	cases := []struct {
		name string
		in   string
		is   error
	}{
		{"empty", "   ", ErrMalformedPosition},
		{"short rank", "rnbqkbn/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR", ErrMalformedPosition},
		{"long rank", "rnbqkbnr/pppppppp/9/8/8/8/PPPPPPPP/RNBQKBNR", ErrMalformedPosition},
		{"overflow", "rnbqkbnrr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR", ErrMalformedPosition},
		{"seven ranks", "8/8/8/8/8/8/8", ErrMalformedPosition},
		{"unknown letter", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNX", ErrUnknownPiece},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParsePosition(tc.in); !errors.Is(err, tc.is) {
				t.Errorf("err = %v, want %v", err, tc.is)
			}
		})
	}
}

func TestPositionString(t *testing.T) {
	for _, in := range []string{
		StartingPosition,
		"8/8/8/8/4S3/8/8/8",
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R",
	} {
		pos, err := ParsePosition(in)
		if err != nil {
			t.Fatalf("ParsePosition(%q): %v", in, err)
		}
		if got := pos.String(); got != in {
			t.Errorf("String() = %q, want %q", got, in)
		}
	}
}

func TestParsePiece(t *testing.T) {
	pc, err := ParsePiece('Z')
	if err != nil || pc.Kind != 'z' || pc.Color != White {
		t.Errorf("Z = %+v, %v", pc, err)
	}
	if pc.Asset() != "/static/pieces/wz.png" {
		t.Errorf("asset = %s", pc.Asset())
	}
	if pc, _ := ParsePiece('q'); pc.Asset() != "/static/pieces/bq.png" || pc.Symbol() != 'q' {
		t.Errorf("q = %+v", pc)
	}
	if _, err := ParsePiece('x'); !errors.Is(err, ErrUnknownPiece) {
		t.Errorf("x: err = %v", err)
	}
}
