package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/prodscout/internal/database"
	"github.com/nao1215/prodscout/internal/model"
)

// defaultHistoryLimit is the number of runs listed without --limit.
const defaultHistoryLimit = 20

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [product-url]",
		Short: "Show recorded analyses",
		Long: `History lists analyses recorded with 'analyze --save' or 'serve --save'.

Without arguments the most recent runs of every product are listed. With a
product URL only the runs of that product are listed.

Examples:
  # List the latest runs
  prodscout history

  # List the runs of one product
  prodscout history https://shop.example.com/products/widget

  # List every analyzed product
  prodscout history --list-urls

  # Print a stored report as Markdown
  prodscout history --show 3f0c6d0e-... --markdown`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", defaultHistoryLimit,
		"Maximum number of runs to list (0 lists everything)")
	cmd.Flags().BoolP("list-urls", "L", false,
		"List every analyzed product URL")
	cmd.Flags().StringP("show", "s", "",
		"Print the stored report of the run with this ID")
	cmd.Flags().BoolP("json", "j", false,
		"Print the stored run as JSON (with --show)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Print the stored run as Markdown (with --show)")
	cmd.Flags().String("db-dir", "",
		"History database directory (default from configuration)")
	cmd.MarkFlagsMutuallyExclusive("json", "markdown")
	cmd.MarkFlagsMutuallyExclusive("list-urls", "show")

	return cmd
}

func runHistoryCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir != "" {
		cfg.Database.Dir = dbDir
	}

	out := cmd.OutOrStdout()

	// Reading history must not create an empty database.
	if _, err := os.Stat(filepath.Join(cfg.Database.Dir, database.FileName)); errors.Is(err, os.ErrNotExist) {
		fmt.Fprintln(out, "No analysis history found.")
		fmt.Fprintln(out, "\nUse 'prodscout analyze --save <url>' to record analyses.")
		return nil
	}

	db, err := database.Open(cfg.Database.Dir, database.Options{EnableWAL: true})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	listURLs, err := cmd.Flags().GetBool("list-urls")
	if err != nil {
		return err
	}
	if listURLs {
		return listAnalyzedURLs(ctx, out, db)
	}

	show, err := cmd.Flags().GetString("show")
	if err != nil {
		return err
	}
	if show != "" {
		format, err := reportFormat(cmd)
		if err != nil {
			return err
		}
		return showAnalysis(ctx, out, db, show, format)
	}

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	var url string
	if len(args) > 0 {
		url = args[0]
	}
	return listHistory(ctx, out, db, url, limit)
}

func listAnalyzedURLs(ctx context.Context, out io.Writer, db *database.HistoryDB) error {
	urls, err := db.ListAnalyzedURLs(ctx)
	if err != nil {
		return err
	}
	if len(urls) == 0 {
		fmt.Fprintln(out, "No analyzed products found in the database.")
		return nil
	}

	fmt.Fprintf(out, "Analyzed products (%d):\n\n", len(urls))
	for _, u := range urls {
		fmt.Fprintf(out, "  • %s\n", u)
	}
	fmt.Fprintln(out, "\nUse 'prodscout history <url>' to see the runs of a product.")
	return nil
}

func listHistory(ctx context.Context, out io.Writer, db *database.HistoryDB, url string, limit int) error {
	runs, err := db.ListAnalyses(ctx, url, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		if url != "" {
			fmt.Fprintf(out, "No analyses found for %s\n", url)
		} else {
			fmt.Fprintln(out, "No analyses found.")
		}
		return nil
	}

	if url != "" {
		fmt.Fprintf(out, "Analyses of %s (%d):\n\n", url, len(runs))
	} else {
		fmt.Fprintf(out, "Recent analyses (%d):\n\n", len(runs))
	}
	fmt.Fprintf(out, "  %-36s  %-19s  %-8s  %-9s  %s\n", "ID", "Date", "Status", "Duration", "Detail")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 100))

	for _, run := range runs {
		detail := run.URL
		if run.Status == model.StatusFailed {
			detail = run.FailedStage + ": " + run.Error
		}
		fmt.Fprintf(out, "  %-36s  %-19s  %-8s  %-9s  %s\n",
			run.ID,
			run.StartedAt.Local().Format(time.DateTime),
			run.Status,
			run.Duration().Round(time.Millisecond),
			detail)
	}
	return nil
}

func showAnalysis(ctx context.Context, out io.Writer, db *database.HistoryDB, id, format string) error {
	a, err := db.GetAnalysis(ctx, id)
	if err != nil {
		return err
	}
	if a == nil {
		return fmt.Errorf("no analysis with id %s", id)
	}
	_, err = newReportWriter(out, format, true).Write(a)
	return err
}
