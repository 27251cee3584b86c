package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/walterschell/betza-board/backend"
	"github.com/walterschell/betza-board/board"
	"github.com/walterschell/betza-board/config"
	"github.com/walterschell/betza-board/interaction"
	"github.com/walterschell/betza-board/obslog"
	"github.com/walterschell/betza-board/tui"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	listen := &cli.StringFlag{
		Name:    "listen",
		Usage:   "address to listen on",
		Sources: cli.EnvVars("BETZA_LISTEN"),
	}
	startFEN := &cli.StringFlag{
		Name:    "start-fen",
		Usage:   "starting position of the reference backend",
		Sources: cli.EnvVars("BETZA_START_FEN"),
	}
	sessionFlags := []cli.Flag{
		&cli.StringFlag{
			Name:    "backend-url",
			Usage:   "base URL of the backend; empty runs the reference backend in-process",
			Sources: cli.EnvVars("BETZA_BACKEND_URL"),
		},
		&cli.StringFlag{
			Name:    "index-convention",
			Usage:   "square numbers sent to the backend: backend or display",
			Sources: cli.EnvVars("BETZA_INDEX_CONVENTION"),
		},
		&cli.DurationFlag{
			Name:    "request-timeout",
			Usage:   "timeout of every backend request",
			Sources: cli.EnvVars("BETZA_REQUEST_TIMEOUT"),
		},
		&cli.StringFlag{
			Name:    "orientation",
			Usage:   "side shown at the bottom: white or black",
			Sources: cli.EnvVars("BETZA_ORIENTATION"),
		},
		startFEN,
	}

	return &cli.Command{
		Name:  "betza-board",
		Usage: "interactive board for exploring Betza notation",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "path to a YAML config file",
				Sources: cli.EnvVars("BETZA_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "debug, info, warn or error",
				Sources: cli.EnvVars("BETZA_LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "legacy, console or json",
				Sources: cli.EnvVars("BETZA_LOG_FORMAT"),
			},
			&cli.StringFlag{
				Name:    "log-file",
				Usage:   "also append logs to this file",
				Sources: cli.EnvVars("BETZA_LOG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "serve the web board",
				Flags:  append([]cli.Flag{listen}, sessionFlags...),
				Action: serveAction,
			},
			{
				Name:   "backend",
				Usage:  "serve only the reference backend",
				Flags:  []cli.Flag{listen, startFEN},
				Action: backendAction,
			},
			{
				Name:   "tui",
				Usage:  "run the board in the terminal",
				Flags:  sessionFlags,
				Action: tuiAction,
			},
		},
	}
}

// loadConfig layers the YAML file and then the flags that were given.
func loadConfig(c *cli.Command) (config.AppConfig, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return cfg, err
	}
	override := func(name string, dst *string) {
		if c.IsSet(name) {
			*dst = c.String(name)
		}
	}
	override("listen", &cfg.Listen)
	override("backend-url", &cfg.BackendURL)
	override("index-convention", &cfg.IndexConvention)
	override("orientation", &cfg.Orientation)
	override("start-fen", &cfg.StartFEN)
	override("log-level", &cfg.Log.Level)
	override("log-format", &cfg.Log.Format)
	override("log-file", &cfg.Log.File)
	if c.IsSet("request-timeout") {
		cfg.RequestTimeout = c.Duration("request-timeout")
	}
	return cfg, cfg.Validate()
}

// setup loads the config and installs the global logger.
func setup(c *cli.Command, quiet bool) (config.AppConfig, *zap.Logger, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return cfg, nil, err
	}
	opts := cfg.LogOptions()
	if quiet {
		// The terminal belongs to the TUI.
		if opts.File == "" {
			return cfg, zap.NewNop(), nil
		}
		opts.Console = io.Discard
	}
	if err := obslog.Init(opts); err != nil {
		return cfg, nil, err
	}
	return cfg, obslog.L(), nil
}

func newReference(cfg config.AppConfig, log *zap.Logger) (*backend.Reference, error) {
	var opts []backend.ReferenceOption
	if cfg.StartFEN != "" {
		opts = append(opts, backend.WithStartFEN(cfg.StartFEN))
	}
	return backend.NewReference(append(opts, backend.WithReferenceLogger(log))...)
}

// openBackend returns a client for the configured backend. With no URL the
// reference backend is started on a loopback port and returned as well.
func openBackend(ctx context.Context, cfg config.AppConfig, log *zap.Logger) (*backend.Client, *backend.Reference, error) {
	convention, err := backend.ParseIndexConvention(cfg.IndexConvention)
	if err != nil {
		return nil, nil, err
	}
	newClient := func(url string, ic backend.IndexConvention) *backend.Client {
		return backend.NewClient(url,
			backend.WithTimeout(cfg.RequestTimeout),
			backend.WithIndexConvention(ic),
			backend.WithLogger(log),
		)
	}
	if cfg.BackendURL != "" {
		return newClient(cfg.BackendURL, convention), nil, nil
	}

	ref, err := newReference(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, nil, fmt.Errorf("reference listener: %w", err)
	}
	srv := &http.Server{Handler: ref}
	go srv.Serve(ln)
	go func() {
		<-ctx.Done()
		srv.Close()
	}()
	log.Info("reference backend started", zap.String("addr", ln.Addr().String()))
	// The reference always takes backend indices.
	return newClient("http://"+ln.Addr().String(), backend.BackendIndices), ref, nil
}

func sessionOptions(cfg config.AppConfig) ([]interaction.SessionOption, error) {
	o, err := board.ParseOrientation(cfg.Orientation)
	if err != nil {
		return nil, err
	}
	return []interaction.SessionOption{
		interaction.WithOrientation(o),
		interaction.WithRequestTimeout(cfg.RequestTimeout),
	}, nil
}

func serveAction(ctx context.Context, c *cli.Command) error {
	cfg, log, err := setup(c, false)
	if err != nil {
		return err
	}
	defer log.Sync()

	client, ref, err := openBackend(ctx, cfg, log)
	if err != nil {
		return err
	}
	sopts, err := sessionOptions(cfg)
	if err != nil {
		return err
	}
	opts := []AppOption{WithAppLogger(log), WithSessionOptions(sopts...)}
	if ref != nil {
		opts = append(opts, WithBackendMount(ref))
	}
	app := NewApplication(client, opts...)
	defer app.Close()

	log.Info("starting server", zap.String("listen", cfg.Listen))
	return listenAndServe(ctx, &http.Server{Addr: cfg.Listen, Handler: app})
}

func backendAction(ctx context.Context, c *cli.Command) error {
	cfg, log, err := setup(c, false)
	if err != nil {
		return err
	}
	defer log.Sync()

	ref, err := newReference(cfg, log)
	if err != nil {
		return err
	}
	log.Info("starting reference backend", zap.String("listen", cfg.Listen))
	return listenAndServe(ctx, &http.Server{Addr: cfg.Listen, Handler: stdoutLogger(ref)})
}

func tuiAction(ctx context.Context, c *cli.Command) error {
	cfg, log, err := setup(c, true)
	if err != nil {
		return err
	}
	defer log.Sync()

	client, _, err := openBackend(ctx, cfg, log)
	if err != nil {
		return err
	}
	sopts, err := sessionOptions(cfg)
	if err != nil {
		return err
	}
	return tui.Run(ctx, client, append(sopts, interaction.WithSessionLogger(log))...)
}

// listenAndServe runs srv until ctx is cancelled.
func listenAndServe(ctx context.Context, srv *http.Server) error {
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
