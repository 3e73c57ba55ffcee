package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/scrap/internal"
	"github.com/starford/scrap/internal/apperr"
	pkgconfig "github.com/starford/scrap/pkg/config"
)

var version = "dev"

// loadConfig reads the config file if present and applies flag overrides.
func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if _, err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if ws := cmd.String("workspace"); ws != "" {
		cfg.Workspace.Path = ws
	}
	return cfg, nil
}

// openSession opens the workspace for a one-shot command. Info logs are
// suppressed unless --verbose is given.
func openSession(ctx context.Context, cmd *cli.Command) (*internal.Session, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if !cmd.Bool("verbose") && cfg.App.LogLevel < slog.LevelWarn {
		cfg.App.LogLevel = slog.LevelWarn
	}
	return internal.Open(ctx, internal.WithConfig(cfg), internal.WithVersion(version))
}

// withSession wraps a command action that needs an open workspace.
func withSession(fn func(ctx context.Context, cmd *cli.Command, sess *internal.Session) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		sess, err := openSession(ctx, cmd)
		if err != nil {
			return err
		}
		defer sess.Close()
		return fn(ctx, cmd, sess)
	}
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if port := cmd.Int("port"); port != 0 {
		cfg.App.HTTP.Port = int(port)
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg), internal.WithVersion(version)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunMCP(ctx, internal.WithConfig(cfg), internal.WithVersion(version))
}

// reportError prints err and, for ambiguous shorthands, the candidates.
func reportError(w io.Writer, err error) {
	fmt.Fprintf(w, "scrap: %v\n", err)
	var amb *apperr.AmbiguousError
	if errors.As(err, &amb) {
		for _, c := range amb.Candidates {
			fmt.Fprintf(w, "  %s  %s\n", c.ID, c.Name)
		}
	}
}

func main() {
	cmd := &cli.Command{
		Name:    "scrap",
		Usage:   "Plain-text notes in folders, addressed by short ids",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("SCRAP_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "workspace",
				Aliases: []string{"w"},
				Usage:   "Workspace directory, overrides the config file",
				Sources: cli.EnvVars("SCRAP_WORKSPACE"),
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Log at the configured level instead of warnings only",
			},
		},
		Commands: commands(),
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		reportError(os.Stderr, err)
		os.Exit(1)
	}
}
