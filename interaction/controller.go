package interaction

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/walterschell/betza-board/backend"
	"github.com/walterschell/betza-board/board"
)

// Family groups queries whose results replace each other. Only the latest
// issued query of a family may apply its result.
type Family int

const (
	LegalMovesFamily Family = iota
	NotationFamily
	CommitFamily
	PreviewFamily
	numFamilies
)

func (f Family) String() string {
	return []string{"legal-moves", "notation", "commit", "preview"}[f]
}

type QueryKind int

const (
	LegalMovesQuery QueryKind = iota
	NotationQuery
	CommitQuery
	PositionQuery
)

// Query is a backend request the Controller wants executed.
type Query struct {
	Family   Family
	Seq      uint64
	Kind     QueryKind
	Origin   board.Index // LegalMovesQuery
	Move     board.Move  // CommitQuery
	Notation string      // NotationQuery
	Style    board.Style // how returned squares are shown
}

// Result carries the backend answer for a Query.
type Result struct {
	Query    Query
	Squares  []board.Index
	Position string
	Err      error
}

type View struct {
	Board    board.View  `json:"board"`
	Notation string      `json:"notation"`
	Builder  BuilderView `json:"builder"`
	Notice   string      `json:"notice,omitempty"`
}

// Controller is the click and builder state machine. It never blocks: Handle
// and Start return the queries to run, Complete applies their results.
// It is not safe for concurrent use; Session owns it on one goroutine.
type Controller struct {
	board    *board.Board
	builder  Builder
	notation string
	origin   board.Index
	seq      [numFamilies]uint64
	notice   string
	log      *zap.Logger
}

func NewController(b *board.Board, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{board: b, origin: board.NoIndex, log: log}
}

func (c *Controller) Board() *board.Board { return c.board }

func (c *Controller) Builder() *Builder { return &c.builder }

func (c *Controller) Notation() string { return c.notation }

func (c *Controller) Notice() string { return c.notice }

func (c *Controller) View() View {
	return View{
		Board:    c.board.Snapshot(),
		Notation: c.notation,
		Builder:  c.builder.View(),
		Notice:   c.notice,
	}
}

// Start asks for the backend's current position.
func (c *Controller) Start() []Query {
	return c.one(Query{Family: CommitFamily, Kind: PositionQuery})
}

func (c *Controller) Handle(cmd Command) []Query {
	c.notice = ""
	switch cmd := cmd.(type) {
	case SquareClicked:
		return c.click(cmd.Slot)

	case NotationSubmitted:
		c.notation = cmd.Notation
		if c.notation == "" {
			c.invalidate(NotationFamily)
			c.board.ClearAllHighlights()
			return nil
		}
		return c.one(Query{Family: NotationFamily, Kind: NotationQuery, Notation: c.notation, Style: board.Highlight})

	case BuilderReset:
		c.builder.Reset()
		return c.preview()

	case BuilderRange:
		c.builder.AppendRange(cmd.Token)
		return c.preview()

	case BuilderModifier:
		c.builder.AppendModifier(cmd.Token)
		return c.preview()

	case BuilderCommit:
		c.notation += c.builder.Take()
		c.board.ClearAllSelections()
		c.invalidate(PreviewFamily)
		if c.notation == "" {
			return nil
		}
		return c.one(Query{Family: NotationFamily, Kind: NotationQuery, Notation: c.notation, Style: board.Highlight})

	case Flipped:
		next := board.BlackBottom
		if c.board.Mapper().Orientation == board.BlackBottom {
			next = board.WhiteBottom
		}
		c.board.SetOrientation(next)
		return nil

	default:
		c.log.Warn("unhandled command", zap.String("type", fmt.Sprintf("%T", cmd)))
		return nil
	}
}

func (c *Controller) click(s board.Slot) []Query {
	c.board.ToggleSelected(s)
	target := c.board.Mapper().FromDisplay(s)

	if c.board.IsHighlighted(s) {
		return c.one(Query{Family: CommitFamily, Kind: CommitQuery, Move: board.Move{From: c.origin, To: target}})
	}
	c.origin = target
	return c.one(Query{Family: LegalMovesFamily, Kind: LegalMovesQuery, Origin: target, Style: board.Highlight})
}

// preview runs after every builder mutation.
func (c *Controller) preview() []Query {
	c.board.ClearAllSelections()
	candidate := c.builder.Candidate()
	if candidate == "" {
		c.invalidate(PreviewFamily)
		return nil
	}
	return c.one(Query{Family: PreviewFamily, Kind: NotationQuery, Notation: candidate, Style: board.Selected})
}

func (c *Controller) one(q Query) []Query {
	c.seq[q.Family]++
	q.Seq = c.seq[q.Family]
	return []Query{q}
}

func (c *Controller) invalidate(f Family) { c.seq[f]++ }

// Complete applies r if it answers the latest query of its family and
// reports whether anything changed.
func (c *Controller) Complete(r Result) bool {
	q := r.Query
	if q.Seq != c.seq[q.Family] {
		c.log.Debug("stale result dropped",
			zap.Stringer("family", q.Family), zap.Uint64("seq", q.Seq), zap.Uint64("latest", c.seq[q.Family]))
		return false
	}

	switch q.Kind {
	case LegalMovesQuery, NotationQuery:
		squares := r.Squares
		if r.Err != nil {
			if q.Kind != NotationQuery || !errors.Is(r.Err, backend.ErrRejected) {
				c.fail(q, r.Err)
				return true
			}
			// rejected notation matches nothing
			squares = nil
		}
		if q.Style == board.Selected {
			c.board.Apply(squares, board.Selected)
		} else {
			c.board.ClearAllHighlights()
			c.board.Apply(squares, board.Highlight)
		}
		return true

	case CommitQuery, PositionQuery:
		if r.Err != nil {
			if q.Kind == PositionQuery && errors.Is(r.Err, backend.ErrRejected) {
				c.log.Debug("backend has no position endpoint", zap.Error(r.Err))
				return false
			}
			c.fail(q, r.Err)
			return true
		}
		if err := c.board.RenderPosition(r.Position); err != nil {
			c.fail(q, err)
			return true
		}
		if q.Kind == CommitQuery {
			c.origin = board.NoIndex
		}
		return true
	}
	return false
}

func (c *Controller) fail(q Query, err error) {
	c.notice = fmt.Sprintf("%s query failed: %v", q.Family, err)
	c.log.Warn("query failed", zap.Stringer("family", q.Family), zap.Error(err))
}
