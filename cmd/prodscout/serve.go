package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/nao1215/prodscout/internal/pipeline"
	"github.com/nao1215/prodscout/internal/server"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the analysis HTTP API",
		Long: `Serve starts the HTTP API.

Endpoints:
  GET  /api/analyze?url=<product-url>  stream stage progress as server-sent events
  POST /api/analyze {"url": "..."}     run an analysis and return the report
  GET  /healthz                        liveness probe
  GET  /metrics                        Prometheus metrics

The server shuts down gracefully on SIGINT or SIGTERM.

Examples:
  # Listen on the configured address (default :8080)
  prodscout serve

  # Listen on another address and record every analysis
  prodscout serve -l 127.0.0.1:9000 --save`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().StringP("listen", "l", "",
		"Listen address in host:port form (default from configuration, :8080)")
	cmd.Flags().Bool("save", false,
		"Record every analysis in the history database")
	cmd.Flags().String("db-dir", "",
		"History database directory (implies --save)")

	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	listen, err := cmd.Flags().GetString("listen")
	if err != nil {
		return err
	}
	if listen != "" {
		cfg.ListenAddress = listen
	}
	save, err := cmd.Flags().GetBool("save")
	if err != nil {
		return err
	}
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir != "" {
		cfg.Database.Dir = dbDir
		save = true
	}
	if save {
		cfg.Database.Enabled = true
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg)
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	agents, err := newAgents(cfg, logger)
	if err != nil {
		return err
	}

	opts := []server.Option{
		server.WithLogger(logger),
		server.WithShutdownTimeout(cfg.ShutdownTimeout),
	}
	db, err := openHistory(cfg, logger)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
		opts = append(opts, server.WithHistory(db))
	}

	srv := server.New(func(observer pipeline.Observer) *pipeline.Pipeline {
		return pipeline.NewProductAnalysis(agents,
			pipeline.WithLogger(logger),
			pipeline.WithObserver(observer))
	}, opts...)

	fmt.Fprintf(cmd.ErrOrStderr(), "prodscout %s listening on %s\n", getVersion(), cfg.ListenAddress)
	return srv.ListenAndServe(ctx, cfg.ListenAddress)
}
