package main

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"sync"
	"text/template"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/walterschell/betza-board/board"
	"github.com/walterschell/betza-board/interaction"
)

//go:embed assets
var assets embed.FS
var static fs.FS
var templates fs.FS

func init() {
	static, _ = fs.Sub(assets, "assets/static")
	templates, _ = fs.Sub(assets, "assets/templates")
}

const writeWait = 10 * time.Second

var errBadMessage = errors.New("bad client message")

func stdoutLogger(next http.Handler) http.Handler {
	return handlers.LoggingHandler(os.Stdout, next)
}

// Client is one websocket connection and the session it drives.
type Client struct {
	conn      *websocket.Conn
	session   *interaction.Session
	cancel    context.CancelFunc
	writeLock sync.Mutex
}

func (c *Client) writeJSON(v any) error {
	c.writeLock.Lock()
	defer c.writeLock.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(v)
}

type Application struct {
	router      *mux.Router
	templates   *template.Template
	clients     map[*Client]struct{}
	clientsLock sync.RWMutex
	upgrader    websocket.Upgrader

	backend     interaction.Backend
	sessionOpts []interaction.SessionOption
	log         *zap.Logger
}

type AppOption func(*Application)

func WithAppLogger(l *zap.Logger) AppOption {
	return func(app *Application) { app.log = l }
}

// WithSessionOptions applies opts to every session the app starts.
func WithSessionOptions(opts ...interaction.SessionOption) AppOption {
	return func(app *Application) { app.sessionOpts = append(app.sessionOpts, opts...) }
}

// WithBackendMount serves h under /backend/ on the same router.
func WithBackendMount(h http.Handler) AppOption {
	return func(app *Application) {
		app.router.PathPrefix("/backend/").Handler(http.StripPrefix("/backend", h))
	}
}

func NewApplication(b interaction.Backend, opts ...AppOption) *Application {
	templateParser := template.New("")
	templateParser.Delims("[[", "]]")
	result := Application{
		router:    mux.NewRouter(),
		templates: template.Must(templateParser.ParseFS(templates, "*.html.gotmpl")),
		clients:   make(map[*Client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		backend: b,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&result)
	}
	result.log = result.log.Named("web")

	result.router.NotFoundHandler = stdoutLogger(http.HandlerFunc(notFoundHandler))
	result.router.Use(stdoutLogger)
	result.router.Use(handlers.RecoveryHandler(
		handlers.RecoveryLogger(zap.NewStdLog(result.log)),
		handlers.PrintRecoveryStack(true),
	))

	result.router.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	result.router.HandleFunc("/", result.indexHandler)
	result.router.HandleFunc("/ws", result.wsHandler)
	return &result
}

func (app *Application) indexHandler(w http.ResponseWriter, r *http.Request) {
	templateVars := struct {
		Title string
	}{
		Title: "Betza board",
	}

	err := app.templates.ExecuteTemplate(w, "index.html.gotmpl", templateVars)
	if err != nil {
		app.log.Error("rendering template", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (app *Application) wsHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := app.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied.
		app.log.Warn("websocket upgrade", zap.Error(err))
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	client := &Client{conn: conn, cancel: cancel}
	opts := append([]interaction.SessionOption{
		interaction.WithSessionLogger(app.log),
	}, app.sessionOpts...)
	opts = append(opts, interaction.OnChange(func(v interaction.View) {
		if err := client.writeJSON(v); err != nil {
			app.log.Debug("writing view", zap.Error(err))
		}
	}))
	client.session = interaction.NewSession(app.backend, opts...)
	app.log.Info("new websocket connection",
		zap.String("remote", conn.RemoteAddr().String()), zap.String("session", client.session.ID()))

	app.clientsLock.Lock()
	app.clients[client] = struct{}{}
	app.clientsLock.Unlock()

	go client.session.Run(ctx)
	go app.readLoop(ctx, client)
}

func (app *Application) readLoop(ctx context.Context, client *Client) {
	defer app.drop(client)
	for {
		_, raw, err := client.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				app.log.Debug("reading message", zap.Error(err))
			}
			return
		}
		cmd, err := decodeCommand(raw)
		if err != nil {
			app.log.Warn("ignoring message", zap.Error(err), zap.ByteString("raw", raw))
			continue
		}
		if err := client.session.Submit(ctx, cmd); err != nil {
			return
		}
	}
}

func (app *Application) drop(client *Client) {
	app.clientsLock.Lock()
	delete(app.clients, client)
	app.clientsLock.Unlock()
	client.cancel()
	client.conn.Close()
}

// Close ends every live session.
func (app *Application) Close() {
	app.clientsLock.RLock()
	defer app.clientsLock.RUnlock()
	for client := range app.clients {
		client.cancel()
		client.conn.Close()
	}
}

// clientMessage is one browser event.
type clientMessage struct {
	Type     string `json:"type"`
	Slot     *int   `json:"slot,omitempty"`
	Token    string `json:"token,omitempty"`
	Notation string `json:"notation,omitempty"`
}

func decodeCommand(raw []byte) (interaction.Command, error) {
	var msg clientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("%w: %w", errBadMessage, err)
	}
	switch msg.Type {
	case "square_clicked":
		if msg.Slot == nil || !board.Slot(*msg.Slot).Valid() {
			return nil, fmt.Errorf("%w: square_clicked needs a slot in 0..63", errBadMessage)
		}
		return interaction.SquareClicked{Slot: board.Slot(*msg.Slot)}, nil
	case "notation_submitted":
		return interaction.NotationSubmitted{Notation: msg.Notation}, nil
	case "builder_reset":
		return interaction.BuilderReset{}, nil
	case "builder_range":
		return interaction.BuilderRange{Token: msg.Token}, nil
	case "builder_modifier":
		return interaction.BuilderModifier{Token: msg.Token}, nil
	case "builder_commit":
		return interaction.BuilderCommit{}, nil
	case "flip":
		return interaction.Flipped{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown type %q", errBadMessage, msg.Type)
	}
}

func (app *Application) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	app.router.ServeHTTP(w, r)
}

func notFoundHandler(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "File Not Found", http.StatusNotFound)
}
