package interaction

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/walterschell/betza-board/board"
)

var ErrSessionClosed = errors.New("session closed")

// Backend is the collaborator that knows the rules.
type Backend interface {
	SquaresForNotation(ctx context.Context, notation string) ([]board.Index, error)
	LegalDestinations(ctx context.Context, from board.Index) ([]board.Index, error)
	CommitMove(ctx context.Context, m board.Move) (string, error)
}

// PositionSource is implemented by backends that can report the current board.
type PositionSource interface {
	CurrentPosition(ctx context.Context) (string, error)
}

// Session is the event loop around a Controller. Commands and backend
// results are serialised onto the Run goroutine; every backend call runs
// on its own goroutine and reports back through a channel.
type Session struct {
	id       string
	ctrl     *Controller
	backend  Backend
	timeout  time.Duration
	onChange func(View)
	log      *zap.Logger

	commands  chan Command
	results   chan Result
	snapshots chan chan View
	done      chan struct{}
}

type SessionOption func(*Session)

func WithOrientation(o board.Orientation) SessionOption {
	return func(s *Session) { s.ctrl.board.SetOrientation(o) }
}

// WithRequestTimeout bounds every backend call.
func WithRequestTimeout(d time.Duration) SessionOption {
	return func(s *Session) { s.timeout = d }
}

func WithSessionLogger(l *zap.Logger) SessionOption {
	return func(s *Session) { s.log = l }
}

// OnChange registers fn to receive a View after every visible change.
// fn is called on the Run goroutine.
func OnChange(fn func(View)) SessionOption {
	return func(s *Session) { s.onChange = fn }
}

func WithID(id string) SessionOption {
	return func(s *Session) { s.id = id }
}

func NewSession(b Backend, opts ...SessionOption) *Session {
	s := &Session{
		id:        uuid.NewString(),
		ctrl:      NewController(board.New(board.Mapper{}), nil),
		backend:   b,
		timeout:   10 * time.Second,
		log:       zap.NewNop(),
		commands:  make(chan Command, 16),
		results:   make(chan Result, 16),
		snapshots: make(chan chan View),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.Named("session").With(zap.String("session", s.id))
	s.ctrl.log = s.log
	return s
}

func (s *Session) ID() string { return s.id }

// Submit queues cmd for the loop.
func (s *Session) Submit(ctx context.Context, cmd Command) error {
	select {
	case <-s.done:
		return ErrSessionClosed
	default:
	}
	select {
	case s.commands <- cmd:
		return nil
	case <-s.done:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// View returns a snapshot taken on the loop goroutine.
func (s *Session) View(ctx context.Context) (View, error) {
	reply := make(chan View, 1)
	select {
	case s.snapshots <- reply:
	case <-s.done:
		return View{}, ErrSessionClosed
	case <-ctx.Done():
		return View{}, ctx.Err()
	}
	select {
	case v := <-reply:
		return v, nil
	case <-ctx.Done():
		return View{}, ctx.Err()
	}
}

// Run processes commands until ctx is cancelled.
func (s *Session) Run(ctx context.Context) error {
	defer close(s.done)
	s.log.Info("session started")
	defer s.log.Info("session stopped")

	s.publish()
	if _, ok := s.backend.(PositionSource); ok {
		s.dispatch(ctx, s.ctrl.Start())
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case cmd := <-s.commands:
			s.dispatch(ctx, s.ctrl.Handle(cmd))
			s.publish()

		case r := <-s.results:
			if s.ctrl.Complete(r) {
				s.publish()
			}

		case reply := <-s.snapshots:
			reply <- s.ctrl.View()
		}
	}
}

func (s *Session) dispatch(ctx context.Context, queries []Query) {
	for _, q := range queries {
		go s.execute(ctx, q)
	}
}

func (s *Session) execute(ctx context.Context, q Query) {
	qctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	r := Result{Query: q}
	switch q.Kind {
	case LegalMovesQuery:
		r.Squares, r.Err = s.backend.LegalDestinations(qctx, q.Origin)
	case NotationQuery:
		r.Squares, r.Err = s.backend.SquaresForNotation(qctx, q.Notation)
	case CommitQuery:
		r.Position, r.Err = s.backend.CommitMove(qctx, q.Move)
	case PositionQuery:
		r.Position, r.Err = s.backend.(PositionSource).CurrentPosition(qctx)
	}

	select {
	case s.results <- r:
	case <-ctx.Done():
	}
}

func (s *Session) publish() {
	if s.onChange != nil {
		s.onChange(s.ctrl.View())
	}
}
