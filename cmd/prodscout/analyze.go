package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/prodscout/internal/config"
	"github.com/nao1215/prodscout/internal/model"
	"github.com/nao1215/prodscout/internal/pipeline"
	"github.com/nao1215/prodscout/internal/report"
	"github.com/nao1215/prodscout/internal/server"
)

// Report formats accepted by analyze and history.
const (
	formatText     = "text"
	formatMarkdown = "markdown"
	formatJSON     = "json"
)

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [product-url]...",
		Short: "Analyze one or more product pages",
		Long: `Analyze runs the six analysis stages for each product URL and prints
the final report.

Stage progress is written to stderr while the analysis runs. Several URLs
are analyzed concurrently; a failed URL does not stop the others, but the
command exits with an error if any analysis failed.

Examples:
  # Analyze a single product page
  prodscout analyze https://shop.example.com/products/widget

  # Analyze several products, two at a time
  prodscout analyze -b 2 https://a.example.com/p/1 https://b.example.com/p/2

  # Write a Markdown report to a file
  prodscout analyze -m -o reports/widget.md https://shop.example.com/products/widget

  # Output JSON and record the run in the history database
  prodscout analyze --json --save https://shop.example.com/products/widget`,
		Args: cobra.MinimumNArgs(1),
		RunE: runAnalyzeCmd,
	}

	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent analyses")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().BoolP("quiet", "q", false,
		"Do not print stage progress")
	cmd.Flags().Bool("save", false,
		"Record the analyses in the history database")
	cmd.Flags().String("db-dir", "",
		"History database directory (implies --save)")
	cmd.MarkFlagsMutuallyExclusive("json", "markdown")

	return cmd
}

// analyzeOptions are the analyze flags that do not live in config.Config.
type analyzeOptions struct {
	format string
	output string
	quiet  bool
}

func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	opts, err := applyAnalyzeFlags(cmd, cfg)
	if err != nil {
		return err
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

	var history server.HistoryRecorder
	db, err := openHistory(cfg, logger)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
		history = db
	}

	out, closeOutput, err := openOutput(opts.output, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer closeOutput()

	var progress io.Writer
	if !opts.quiet {
		progress = cmd.ErrOrStderr()
	}

	run := analyzeRun{
		agents:      agents,
		concurrency: cfg.BatchSize,
		writer:      newReportWriter(out, opts.format, cfg.Log.Verbose),
		progress:    progress,
		history:     history,
		logger:      logger,
	}
	return run.execute(ctx, args)
}

// applyAnalyzeFlags copies the analyze flags into cfg and returns the rest.
func applyAnalyzeFlags(cmd *cobra.Command, cfg *config.Config) (analyzeOptions, error) {
	var opts analyzeOptions

	if cmd.Flags().Changed("batch") {
		batch, err := cmd.Flags().GetInt("batch")
		if err != nil {
			return opts, err
		}
		cfg.BatchSize = batch
	}

	save, err := cmd.Flags().GetBool("save")
	if err != nil {
		return opts, err
	}
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return opts, err
	}
	if dbDir != "" {
		cfg.Database.Dir = dbDir
		save = true
	}
	if save {
		cfg.Database.Enabled = true
	}

	opts.format, err = reportFormat(cmd)
	if err != nil {
		return opts, err
	}
	if opts.output, err = cmd.Flags().GetString("output"); err != nil {
		return opts, err
	}
	if opts.quiet, err = cmd.Flags().GetBool("quiet"); err != nil {
		return opts, err
	}
	return opts, nil
}

// reportFormat resolves --json and --markdown to a format name.
func reportFormat(cmd *cobra.Command) (string, error) {
	jsonOut, err := cmd.Flags().GetBool("json")
	if err != nil {
		return "", err
	}
	markdownOut, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return "", err
	}
	switch {
	case jsonOut:
		return formatJSON, nil
	case markdownOut:
		return formatMarkdown, nil
	default:
		return formatText, nil
	}
}

// newReportWriter returns the report writer for format.
func newReportWriter(out io.Writer, format string, verbose bool) report.Writer {
	switch format {
	case formatJSON:
		return report.NewFullJSONWriter(out, getVersion(), report.WithPrettyPrint())
	case formatMarkdown:
		return report.NewMarkdownWriter(out)
	default:
		return report.NewSimpleWriter(out, report.WithVerbose(verbose))
	}
}

// openOutput opens path for writing, or returns stdout when path is empty.
// Reports can contain scraped page text, so files are created with 0600.
func openOutput(path string, stdout io.Writer) (io.Writer, func(), error) {
	if path == "" {
		return stdout, func() {}, nil
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // User-provided output path is intentional
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

// analyzeRun analyzes a list of URLs and reports each one as it finishes.
type analyzeRun struct {
	agents      pipeline.Agents
	concurrency int
	writer      report.Writer

	// progress receives stage progress lines. Nil disables them.
	progress io.Writer

	// history records finished analyses when set.
	history server.HistoryRecorder

	logger *slog.Logger
}

// execute analyzes urls. It returns an error when any analysis failed or
// ctx ended before every URL was analyzed.
func (r analyzeRun) execute(ctx context.Context, urls []string) error {
	var mu sync.Mutex
	total := len(urls)

	var observer pipeline.Observer
	if r.progress != nil {
		observer = pipeline.ObserverFunc(func(_ context.Context, a *model.Analysis, stage string) {
			mu.Lock()
			defer mu.Unlock()
			fmt.Fprintf(r.progress, "%s: %s...\n", a.URL, stage)
		})
	}

	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			return pipeline.NewProductAnalysis(r.agents,
				pipeline.WithLogger(r.logger),
				pipeline.WithObserver(observer))
		},
		pipeline.WithConcurrency(r.concurrency),
		pipeline.WithBatchLogger(r.logger),
	)

	start := time.Now()
	done, failed := 0, 0
	err := bp.ProcessBatchWithCallback(ctx, urls, func(a *model.Analysis, _ int) {
		mu.Lock()
		defer mu.Unlock()

		done++
		if a.Status == model.StatusFailed {
			failed++
		}
		if r.progress != nil {
			fmt.Fprintf(r.progress, "[%d/%d] %s: %s (%s)\n",
				done, total, a.URL, a.Status, a.Duration().Round(time.Millisecond))
		}

		if _, err := r.writer.Write(a); err != nil {
			r.logger.Error("report failed", "url", a.URL, "error", err)
		}
		if r.history != nil {
			if err := r.history.SaveAnalysis(context.WithoutCancel(ctx), a); err != nil {
				r.logger.Error("failed to save analysis", "url", a.URL, "error", err)
			}
		}
	})

	if r.progress != nil && total > 1 {
		fmt.Fprintf(r.progress, "\nAnalyzed %d products in %s\n", done, time.Since(start).Round(time.Millisecond))
	}

	if err != nil {
		return fmt.Errorf("analysis interrupted: %w", err)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d analyses failed", failed, total)
	}
	return nil
}
