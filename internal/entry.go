// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"golang.org/x/sync/errgroup"

	"github.com/starford/scrap/internal/api"
	"github.com/starford/scrap/internal/journal"
	"github.com/starford/scrap/internal/mcpserver"
	"github.com/starford/scrap/internal/naming"
	"github.com/starford/scrap/internal/noteservice"
	"github.com/starford/scrap/internal/workspace"
)

// journalFile is the journal database name inside the workspace cache.
const journalFile = "journal.db"

// Session is an open workspace with a synced index.
type Session struct {
	Service *noteservice.Service
	Config  *Config
	Logger  *slog.Logger

	journal *journal.DB
	version string
}

// Open prepares the workspace, opens the journal and runs the initial sync.
func Open(ctx context.Context, opts ...Option) (*Session, error) {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	cfg := app.config

	logger := app.logger
	if logger == nil {
		logger = newLogger(cfg.App, app.logOutput)
	}
	slog.SetDefault(logger)

	rootID, err := uuid.Parse(cfg.Workspace.RootID)
	if err != nil {
		return nil, fmt.Errorf("parse root id: %w", err)
	}
	if err := workspace.Init(cfg.Workspace.Path); err != nil {
		return nil, fmt.Errorf("init workspace: %w", err)
	}
	ws, err := workspace.New(cfg.Workspace.Path,
		workspace.WithNamingStyle(naming.Style(cfg.Workspace.Naming)),
		workspace.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("open workspace: %w", err)
	}

	var db *journal.DB
	if cfg.Journal.Enabled {
		path := cfg.Journal.Path
		if path == "" {
			path = ws.CachePath(journalFile)
		}
		if db, err = journal.Open(path); err != nil {
			return nil, fmt.Errorf("open journal: %w", err)
		}
	}

	logger.Debug("Configuration loaded",
		slog.String("workspace", ws.Root()),
		slog.String("naming", cfg.Workspace.Naming),
		slog.Bool("journal", db != nil),
		slog.String("log_level", cfg.App.LogLevel.String()))

	svc := noteservice.New(ws, db, rootID, logger)
	report, err := svc.Sync(ctx)
	if err != nil {
		if db != nil {
			db.Close()
		}
		return nil, fmt.Errorf("initial sync: %w", err)
	}
	logger.Debug("initial sync done",
		slog.Int("notes", report.Notes.Inserted),
		slog.Int("folders", report.Folders.Inserted))

	return &Session{Service: svc, Config: cfg, Logger: logger, journal: db, version: app.version}, nil
}

// Close releases the journal. Calling it again is a no-op.
func (s *Session) Close() error {
	if s.journal == nil {
		return nil
	}
	err := s.journal.Close()
	s.journal = nil
	return err
}

// newLogger builds a JSON or tint console handler depending on the format.
func newLogger(cfg ApplicationConfig, out *os.File) *slog.Logger {
	if cfg.LogFormat == LogFormatJSON {
		if out == nil {
			out = os.Stdout
		}
		return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: cfg.LogLevel}))
	}
	if out == nil {
		out = os.Stderr
	}
	return slog.New(tint.NewHandler(colorable.NewColorable(out), &tint.Options{
		Level:      cfg.LogLevel,
		TimeFormat: time.TimeOnly,
		NoColor:    !isatty.IsTerminal(out.Fd()),
	}))
}

// Run opens the workspace and serves the REST API until ctx is cancelled or
// a shutdown signal arrives.
func Run(ctx context.Context, opts ...Option) error {
	sess, err := Open(ctx, opts...)
	if err != nil {
		return err
	}
	defer sess.Close()

	cfg := sess.Config
	logger := sess.Logger

	apiRouter := api.NewRouter(sess.Service, cfg.Auth.AuthEnabled(), cfg.Auth.Token, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting HTTP server",
			slog.String("address", cfg.App.HTTP.Address()),
			slog.String("workspace", cfg.Workspace.Path),
			slog.Bool("auth", cfg.Auth.AuthEnabled()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP opens the workspace and serves MCP over stdio. Logs always go to
// stderr so they cannot corrupt the protocol stream.
func RunMCP(ctx context.Context, opts ...Option) error {
	sess, err := Open(ctx, append(opts, WithLogOutput(os.Stderr))...)
	if err != nil {
		return err
	}
	defer sess.Close()

	version := sess.version
	if version == "" {
		version = "dev"
	}
	sess.Logger.Info("Starting MCP server", slog.String("workspace", sess.Config.Workspace.Path))
	return mcpserver.New(sess.Service, version).ServeStdio()
}
