package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/prodscout/internal/model"
)

// FileName is the database file created inside the data directory.
const FileName = "prodscout.db"

// HistoryDB provides SQLite-based storage for analysis history.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Path returns the database file path.
func (hdb *HistoryDB) Path() string {
	return hdb.dbPath
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (hdb *HistoryDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS analyses (
		id TEXT PRIMARY KEY,
		url TEXT NOT NULL,
		status TEXT NOT NULL,
		failed_stage TEXT,
		error TEXT,
		content_hash TEXT,
		started_at TEXT NOT NULL,
		completed_at TEXT NOT NULL,
		analysis_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_analyses_url ON analyses(url);
	CREATE INDEX IF NOT EXISTS idx_analyses_started ON analyses(started_at);

	CREATE TABLE IF NOT EXISTS pages (
		url TEXT PRIMARY KEY,
		title TEXT,
		content_type TEXT,
		language TEXT,
		status_code INTEGER,
		content_hash TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveAnalysis stores a finished analysis. Saving the same analysis again
// replaces the stored copy. When the analysis scraped its page, the page
// record of its URL is updated too.
func (hdb *HistoryDB) SaveAnalysis(ctx context.Context, a *model.Analysis) error {
	analysisJSON, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to serialize analysis: %w", err)
	}

	query := `
	INSERT INTO analyses (id, url, status, failed_stage, error, content_hash, started_at, completed_at, analysis_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		status = excluded.status,
		failed_stage = excluded.failed_stage,
		error = excluded.error,
		content_hash = excluded.content_hash,
		completed_at = excluded.completed_at,
		analysis_json = excluded.analysis_json
	`

	_, err = hdb.db.ExecContext(ctx, query,
		a.ID,
		a.URL,
		string(a.Status),
		a.FailedStage,
		a.Error,
		a.ContentHash,
		formatTimestamp(a.StartedAt),
		formatTimestamp(a.CompletedAt),
		string(analysisJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save analysis: %w", err)
	}

	if a.ContentHash == "" {
		return nil
	}
	return hdb.UpsertPage(ctx, &PageRecord{
		URL:         a.URL,
		Title:       a.Metadata.Title,
		ContentType: string(a.ContentType),
		Language:    a.Metadata.Language,
		StatusCode:  a.Metadata.StatusCode,
		ContentHash: a.ContentHash,
	})
}

// GetAnalysis retrieves an analysis by id. It returns nil, nil when the
// id is unknown.
func (hdb *HistoryDB) GetAnalysis(ctx context.Context, id string) (*model.Analysis, error) {
	query := `SELECT analysis_json FROM analyses WHERE id = ?`
	return hdb.queryAnalysis(ctx, query, id)
}

// GetLatestAnalysis retrieves the most recent analysis of url. It returns
// nil, nil when url was never analyzed.
func (hdb *HistoryDB) GetLatestAnalysis(ctx context.Context, url string) (*model.Analysis, error) {
	query := `
	SELECT analysis_json FROM analyses
	WHERE url = ?
	ORDER BY started_at DESC
	LIMIT 1
	`
	return hdb.queryAnalysis(ctx, query, url)
}

func (hdb *HistoryDB) queryAnalysis(ctx context.Context, query string, args ...any) (*model.Analysis, error) {
	var analysisJSON string
	err := hdb.db.QueryRowContext(ctx, query, args...).Scan(&analysisJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}

	var a model.Analysis
	if err := json.Unmarshal([]byte(analysisJSON), &a); err != nil {
		return nil, fmt.Errorf("failed to parse analysis: %w", err)
	}
	return &a, nil
}

// AnalysisSummary is the outcome of a stored analysis without its stage
// outputs.
type AnalysisSummary struct {
	ID          string
	URL         string
	Status      model.Status
	FailedStage string
	Error       string
	ContentHash string
	StartedAt   time.Time
	CompletedAt time.Time
}

// Duration returns how long the analysis ran.
func (s AnalysisSummary) Duration() time.Duration {
	if s.StartedAt.IsZero() || s.CompletedAt.IsZero() {
		return 0
	}
	return s.CompletedAt.Sub(s.StartedAt)
}

// ListAnalyses returns the most recent analyses first. An empty url lists
// all URLs; a non-positive limit lists everything.
func (hdb *HistoryDB) ListAnalyses(ctx context.Context, url string, limit int) ([]AnalysisSummary, error) {
	query := `
	SELECT id, url, status, failed_stage, error, content_hash, started_at, completed_at
	FROM analyses
	WHERE (? = '' OR url = ?)
	ORDER BY started_at DESC
	`
	args := []any{url, url}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := hdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer rows.Close()

	var results []AnalysisSummary
	for rows.Next() {
		var s AnalysisSummary
		var status, startedAt, completedAt string
		var failedStage, errMsg, hash sql.NullString

		if err := rows.Scan(&s.ID, &s.URL, &status, &failedStage, &errMsg, &hash, &startedAt, &completedAt); err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		s.Status = model.Status(status)
		s.FailedStage = failedStage.String
		s.Error = errMsg.String
		s.ContentHash = hash.String
		s.StartedAt = parseTimestamp(startedAt)
		s.CompletedAt = parseTimestamp(completedAt)
		results = append(results, s)
	}

	return results, rows.Err()
}

// ListAnalyzedURLs returns every URL with at least one stored analysis.
func (hdb *HistoryDB) ListAnalyzedURLs(ctx context.Context) ([]string, error) {
	query := `
	SELECT DISTINCT url FROM analyses
	ORDER BY url
	`

	rows, err := hdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list urls: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("failed to scan url: %w", err)
		}
		urls = append(urls, url)
	}

	return urls, rows.Err()
}

// PageRecord is the latest scrape of a product URL.
type PageRecord struct {
	URL         string
	Title       string
	ContentType string
	Language    string
	StatusCode  int
	ContentHash string
	Timestamp   time.Time
}

// UpsertPage inserts or replaces the page record of record.URL.
func (hdb *HistoryDB) UpsertPage(ctx context.Context, record *PageRecord) error {
	query := `
	INSERT INTO pages (url, title, content_type, language, status_code, content_hash)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(url) DO UPDATE SET
		title = excluded.title,
		content_type = excluded.content_type,
		language = excluded.language,
		status_code = excluded.status_code,
		content_hash = excluded.content_hash,
		timestamp = CURRENT_TIMESTAMP
	`

	_, err := hdb.db.ExecContext(ctx, query,
		record.URL,
		record.Title,
		record.ContentType,
		record.Language,
		record.StatusCode,
		record.ContentHash,
	)
	if err != nil {
		return fmt.Errorf("failed to save page record: %w", err)
	}
	return nil
}

// GetPage retrieves the page record of url. It returns nil, nil when url
// was never scraped.
func (hdb *HistoryDB) GetPage(ctx context.Context, url string) (*PageRecord, error) {
	query := `
	SELECT url, title, content_type, language, status_code, content_hash, timestamp
	FROM pages
	WHERE url = ?
	`

	var record PageRecord
	var title, contentType, language sql.NullString
	var timestamp string

	err := hdb.db.QueryRowContext(ctx, query, url).Scan(
		&record.URL,
		&title,
		&contentType,
		&language,
		&record.StatusCode,
		&record.ContentHash,
		&timestamp,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get page record: %w", err)
	}

	record.Title = title.String
	record.ContentType = contentType.String
	record.Language = language.String
	record.Timestamp = parseTimestamp(timestamp)
	return &record, nil
}

// PageChanged reports whether hash differs from the stored hash of url.
// A URL without a page record counts as changed.
func (hdb *HistoryDB) PageChanged(ctx context.Context, url, hash string) (bool, error) {
	record, err := hdb.GetPage(ctx, url)
	if err != nil {
		return false, err
	}
	return record == nil || record.ContentHash != hash, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999",
}

// storedTimeLayout has a fixed width so stored times sort as text.
const storedTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(storedTimeLayout)
}

// parseTimestamp tries every known format and returns the zero time when
// none matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
