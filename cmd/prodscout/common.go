package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/prodscout/internal/config"
	"github.com/nao1215/prodscout/internal/database"
	"github.com/nao1215/prodscout/internal/llm"
	"github.com/nao1215/prodscout/internal/log"
	"github.com/nao1215/prodscout/internal/pipeline"
	"github.com/nao1215/prodscout/internal/ratelimit"
)

// getVerboseFlag reports whether --verbose was given to cmd or a parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	f := cmd.Flag("verbose")
	if f == nil {
		return false
	}
	verbose, err := strconv.ParseBool(f.Value.String())
	return err == nil && verbose
}

// getConfigFlag returns the --config value of cmd or a parent.
func getConfigFlag(cmd *cobra.Command) string {
	if f := cmd.Flag("config"); f != nil {
		return f.Value.String()
	}
	return ""
}

// loadConfig builds the configuration from defaults, the config file and
// the environment. Command specific flags are applied by the caller.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path := getConfigFlag(cmd)
	cfg, err := config.Load(path, os.Getenv)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, fmt.Errorf("configuration file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if getVerboseFlag(cmd) {
		cfg.Log.Verbose = true
	}
	return cfg, nil
}

// setupLogger creates the process logger from the log configuration.
func setupLogger(cfg *config.Config) *slog.Logger {
	return log.New(os.Stderr, log.Options{
		Verbose:    cfg.Log.Verbose,
		JSON:       cfg.Log.JSON,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}

// newAgents builds the stage agents backed by the configured model. One
// rate limit manager is shared by every analysis of the process.
func newAgents(cfg *config.Config, logger *slog.Logger) (pipeline.Agents, error) {
	if cfg.Model.APIKey == "" {
		logger.Warn("no API key configured", "env", config.EnvAPIKey)
	}
	gen := llm.NewClientFromConfig(cfg.Model, logger)
	limiter := ratelimit.NewManager(
		ratelimit.WithWindow(cfg.RateLimit.Window),
		ratelimit.WithBudget(cfg.RateLimit.Budget),
		ratelimit.WithLogger(logger),
	)
	return pipeline.NewAgents(cfg, gen, limiter, logger)
}

// openHistory opens the history store when it is enabled. It returns nil
// without error otherwise.
func openHistory(cfg *config.Config, logger *slog.Logger) (*database.HistoryDB, error) {
	if !cfg.Database.Enabled {
		return nil, nil
	}
	db, err := database.Open(cfg.Database.Dir, database.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	logger.Info("database opened", "path", db.Path())
	return db, nil
}
