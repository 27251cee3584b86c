package backend

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	chess "github.com/corentings/chess/v2"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/walterschell/betza-board/board"
)

// orthodoxAtoms places each letter alone on e4 with the kings parked off its lines.
var orthodoxAtoms = map[string]string{
	"K": "8/8/7k/8/4K3/8/8/8 w - - 0 1",
	"Q": "8/8/7k/8/4Q3/8/K7/8 w - - 0 1",
	"R": "8/8/7k/8/4R3/8/K7/8 w - - 0 1",
	"B": "8/8/7k/8/4B3/8/K7/8 w - - 0 1",
	"N": "8/8/7k/8/4N3/8/K7/8 w - - 0 1",
}

const e4 = chess.Square(28)

// Reference is an in-process Backend Collaborator: it keeps one game,
// answers legality queries with corentings/chess and resolves the
// orthodox Betza atoms. Any other notation matches nothing.
type Reference struct {
	mu         sync.Mutex
	startFEN   string
	game       *chess.Game
	lastOrigin board.Index

	router *mux.Router
	log    *zap.Logger
}

type ReferenceOption func(*Reference)

// WithStartFEN sets the position the game starts from and resets to.
func WithStartFEN(fen string) ReferenceOption {
	return func(r *Reference) { r.startFEN = fen }
}

func WithReferenceLogger(l *zap.Logger) ReferenceOption {
	return func(r *Reference) { r.log = l }
}

func NewReference(opts ...ReferenceOption) (*Reference, error) {
	r := &Reference{
		startFEN:   board.StartingPosition + " w KQkq - 0 1",
		lastOrigin: board.NoIndex,
		router:     mux.NewRouter(),
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.Named("reference")
	if err := r.reset(); err != nil {
		return nil, err
	}

	r.router.HandleFunc("/legal_moves/{index:[0-9]+}", r.legalMovesHandler).Methods(http.MethodGet)
	r.router.HandleFunc("/make_move/{index:[0-9]+}", r.makeMoveHandler).Methods(http.MethodPost)
	r.router.HandleFunc("/get_betza/{betza}", r.betzaHandler).Methods(http.MethodGet)
	r.router.HandleFunc("/position", r.positionHandler).Methods(http.MethodGet)
	r.router.HandleFunc("/reset", r.resetHandler).Methods(http.MethodPost)
	return r, nil
}

func (r *Reference) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}

func (r *Reference) reset() error {
	opt, err := chess.FEN(r.startFEN)
	if err != nil {
		return fmt.Errorf("start position: %w", err)
	}
	r.game = chess.NewGame(opt)
	r.lastOrigin = board.NoIndex
	return nil
}

// LegalDestinations lists the distinct target squares of legal moves from `from`
// and remembers it as the origin of the next commit.
func (r *Reference) LegalDestinations(from board.Index) []board.Index {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastOrigin = from
	return destinations(r.game.ValidMoves(), chess.Square(from))
}

// CommitMove plays from→to. A NoIndex origin falls back to the last queried square.
func (r *Reference) CommitMove(m board.Move) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	from := m.From
	if !from.Valid() {
		from = r.lastOrigin
	}
	if !from.Valid() {
		return "", fmt.Errorf("%w: no origin square", ErrRejected)
	}

	var chosen *chess.Move
	moves := r.game.ValidMoves()
	for i := range moves {
		mv := &moves[i]
		if mv.S1() != chess.Square(from) || mv.S2() != chess.Square(m.To) {
			continue
		}
		if chosen == nil || mv.Promo() == chess.Queen {
			chosen = mv
		}
	}
	if chosen == nil {
		return "", fmt.Errorf("%w: no legal move %d->%d", ErrRejected, from, m.To)
	}

	san := chess.AlgebraicNotation{}.Encode(r.game.Position(), chosen)
	if err := r.game.PushMove(san, &chess.PushMoveOptions{ForceMainline: true}); err != nil {
		return "", fmt.Errorf("push %s: %w", san, err)
	}
	r.lastOrigin = board.NoIndex
	r.log.Info("move committed", zap.String("san", san), zap.String("fen", r.game.FEN()))
	return r.game.FEN(), nil
}

// SquaresForNotation resolves K, Q, R, B and N from e4; anything else matches nothing.
func (r *Reference) SquaresForNotation(notation string) []board.Index {
	fen, ok := orthodoxAtoms[notation]
	if !ok {
		return []board.Index{}
	}
	opt, err := chess.FEN(fen)
	if err != nil {
		r.log.Error("atom position", zap.String("notation", notation), zap.Error(err))
		return []board.Index{}
	}
	return destinations(chess.NewGame(opt).ValidMoves(), e4)
}

func (r *Reference) FEN() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.game.FEN()
}

func destinations(moves []chess.Move, from chess.Square) []board.Index {
	seen := make(map[chess.Square]bool)
	out := make([]board.Index, 0)
	for i := range moves {
		mv := &moves[i]
		if mv.S1() != from || seen[mv.S2()] {
			continue
		}
		seen[mv.S2()] = true
		out = append(out, board.Index(mv.S2()))
	}
	return out
}

func (r *Reference) legalMovesHandler(w http.ResponseWriter, req *http.Request) {
	i, ok := routeIndex(w, req)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, r.LegalDestinations(i))
}

func (r *Reference) makeMoveHandler(w http.ResponseWriter, req *http.Request) {
	to, ok := routeIndex(w, req)
	if !ok {
		return
	}
	m := board.Move{From: board.NoIndex, To: to}
	if v := req.URL.Query().Get("from"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || !board.Index(n).Valid() {
			http.Error(w, "invalid origin square", http.StatusBadRequest)
			return
		}
		m.From = board.Index(n)
	}
	fen, err := r.CommitMove(m)
	if err != nil {
		r.log.Warn("move refused", zap.Int("from", int(m.From)), zap.Int("to", int(m.To)), zap.Error(err))
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, fen)
}

func (r *Reference) betzaHandler(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, r.SquaresForNotation(mux.Vars(req)["betza"]))
}

func (r *Reference) positionHandler(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, r.FEN())
}

func (r *Reference) resetHandler(w http.ResponseWriter, req *http.Request) {
	r.mu.Lock()
	err := r.reset()
	fen := r.game.FEN()
	r.mu.Unlock()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, fen)
}

func routeIndex(w http.ResponseWriter, req *http.Request) (board.Index, bool) {
	n, err := strconv.Atoi(mux.Vars(req)["index"])
	if err != nil || !board.Index(n).Valid() {
		http.Error(w, "square out of range", http.StatusBadRequest)
		return board.NoIndex, false
	}
	return board.Index(n), true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		fmt.Printf("Error writing response: %v\n", err)
	}
}
