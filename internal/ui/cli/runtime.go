package cli

import (
	coreapp "codeflow/internal/core/app"
	"codeflow/internal/core/config"
	"codeflow/internal/core/errors"
	"codeflow/internal/shared/observability"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
)

const usage = `usage: codeflow [flags] <command> [args]

commands:
  rank                      files ordered by personal relevance
  layout                    node positions, sizes and colors
  search <query>            ranked file search
  suggest [path]            suggestions for a file, or contextual ones
  filter                    default languages, preferences and visible files
  ingest [file|-]           apply JSON interaction events to the user model
  bookmarks [list|add <path>|remove <id|path>]
  cycles                    dependency cycles in the graph
  chain <from> <to>         shortest dependency chain between two files
  export                    render the graph (-format dot|tsv|tsv-edges)
  health                    component health as JSON
  watch                     reload the graph on change until interrupted
`

func Run(args []string) int {
	opts, err := parseOptions(args)
	if err != nil {
		return 2
	}

	if opts.version {
		fmt.Printf("codeflow v%s\n", versionString)
		return 0
	}
	if opts.command == "" {
		fmt.Fprint(os.Stderr, usage)
		return 2
	}

	configureLogging(os.Stderr, opts.verbose)

	cfg, err := loadConfig(opts)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Observability.EnableTracing {
		shutdown, err := observability.InitTracing(ctx, cfg.Observability.OTLPEndpoint)
		if err != nil {
			slog.Warn("tracing disabled", "error", err)
		} else {
			defer shutdownWithTimeout(shutdown)
		}
	}

	a, err := coreapp.New(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		return 1
	}
	defer func() {
		if err := a.Close(); err != nil {
			slog.Warn("close failed", "error", err)
		}
	}()

	if cfg.Observability.Enabled {
		server := observability.NewServer(cfg.Observability.Addr, coreapp.NewHealthService(a))
		if err := server.Start(ctx); err != nil {
			slog.Error("failed to start observability server", "error", err)
			return 1
		}
		defer shutdownWithTimeout(server.Stop)
	}

	if err := execute(ctx, a, opts, os.Stdin, os.Stdout); err != nil {
		slog.Error("command failed", "command", opts.command, "error", err)
		return 1
	}
	return 0
}

func loadConfig(opts cliOptions) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(opts.configPath)
	if err != nil {
		return nil, err
	}
	applyFlagOverrides(cfg, opts)
	if errs := config.Validate(cfg); len(errs) > 0 {
		return nil, errors.Wrap(stderrors.Join(errs...), errors.CodeValidationError, "invalid flags")
	}
	return cfg, nil
}

// applyFlagOverrides lets command-line flags win over file and env values.
func applyFlagOverrides(cfg *config.Config, opts cliOptions) {
	if v := strings.TrimSpace(opts.mode); v != "" {
		cfg.Suite.Mode = strings.ToLower(v)
	}
	if v := strings.TrimSpace(opts.user); v != "" {
		cfg.User.ID = v
	}
	if opts.seed != 0 {
		cfg.Suite.Seed = opts.seed
	}
}

func configureLogging(out io.Writer, verbose bool) {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
}

func shutdownWithTimeout(fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := fn(ctx); err != nil {
		slog.Warn("shutdown failed", "error", err)
	}
}
