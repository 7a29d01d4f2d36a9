package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nao1215/prodscout/internal/model"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *HistoryDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

func finishedAnalysis(url string, started time.Time, failStage string) *model.Analysis {
	a := model.NewAnalysis(url)
	a.MarkRunning(started)
	_ = a.SetScrapedContent("Widget Pro Price: $19.99", model.ContentTypeMarkup, model.Metadata{
		Title:      "Widget Pro",
		Language:   "eng",
		StatusCode: 200,
	})
	a.MarkStageCompleted(model.StageWebScraping)
	if failStage != "" {
		a.MarkFailed(failStage, errors.New("rate limit exceeded"), started.Add(2*time.Second))
		return a
	}
	_ = a.SetReport("REPORT")
	a.MarkComplete(started.Add(3 * time.Second))
	return a
}

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if _, err := os.Stat(filepath.Join(dbDir, FileName)); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
		if db.Path() != filepath.Join(dbDir, FileName) {
			t.Errorf("unexpected path %q", db.Path())
		}
	})

	t.Run("CreateIfNotExists=false returns error when database does not exist", func(t *testing.T) {
		t.Parallel()

		_, err := Open(filepath.Join(t.TempDir(), "missing"), Options{CreateIfNotExists: false})
		if err == nil {
			t.Error("expected error for missing database")
		}
	})

	t.Run("reopens an existing database", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		db, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatal(err)
		}
		a := finishedAnalysis("https://example.com/widget", time.Now(), "")
		if err := db.SaveAnalysis(context.Background(), a); err != nil {
			t.Fatal(err)
		}
		_ = db.Close()

		db, err = Open(dir, Options{CreateIfNotExists: false, EnableWAL: true})
		if err != nil {
			t.Fatalf("failed to reopen: %v", err)
		}
		defer db.Close()

		got, err := db.GetAnalysis(context.Background(), a.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got == nil || got.Report != "REPORT" {
			t.Errorf("expected the stored analysis, got %+v", got)
		}
	})
}

func TestSaveAndGetAnalysis(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	a := finishedAnalysis("https://example.com/widget", time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), "")
	if err := db.SaveAnalysis(ctx, a); err != nil {
		t.Fatalf("failed to save: %v", err)
	}

	got, err := db.GetAnalysis(ctx, a.ID)
	if err != nil {
		t.Fatalf("failed to get: %v", err)
	}
	if got == nil {
		t.Fatal("expected an analysis")
	}
	if got.URL != a.URL || got.Status != model.StatusComplete {
		t.Errorf("unexpected analysis %+v", got)
	}
	if got.ContentHash != a.ContentHash {
		t.Errorf("expected hash %q, got %q", a.ContentHash, got.ContentHash)
	}
	if !got.StartedAt.Equal(a.StartedAt) {
		t.Errorf("expected start %v, got %v", a.StartedAt, got.StartedAt)
	}

	missing, err := db.GetAnalysis(ctx, "no-such-id")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for an unknown id")
	}
}

func TestSaveAnalysisReplaces(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	a := finishedAnalysis("https://example.com/widget", time.Now(), model.StageCompetitiveResearch)
	if err := db.SaveAnalysis(ctx, a); err != nil {
		t.Fatal(err)
	}
	a.Status = model.StatusComplete
	a.FailedStage = ""
	if err := db.SaveAnalysis(ctx, a); err != nil {
		t.Fatal(err)
	}

	list, err := db.ListAnalyses(ctx, "", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 analysis, got %d", len(list))
	}
	if list[0].Status != model.StatusComplete {
		t.Errorf("expected the replaced status, got %s", list[0].Status)
	}
}

func TestListAnalyses(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	widget := "https://example.com/widget"
	gadget := "https://example.com/gadget"
	analyses := []*model.Analysis{
		finishedAnalysis(widget, base, ""),
		finishedAnalysis(gadget, base.Add(time.Minute), model.StageInformationExtraction),
		finishedAnalysis(widget, base.Add(2*time.Minute), ""),
	}
	for _, a := range analyses {
		if err := db.SaveAnalysis(ctx, a); err != nil {
			t.Fatal(err)
		}
	}

	t.Run("lists newest first", func(t *testing.T) {
		t.Parallel()

		list, err := db.ListAnalyses(ctx, "", 0)
		if err != nil {
			t.Fatal(err)
		}
		if len(list) != 3 {
			t.Fatalf("expected 3 analyses, got %d", len(list))
		}
		if list[0].ID != analyses[2].ID || list[2].ID != analyses[0].ID {
			t.Error("expected newest first")
		}
		if list[1].FailedStage != model.StageInformationExtraction {
			t.Errorf("expected failed stage, got %q", list[1].FailedStage)
		}
		if list[1].Error != "rate limit exceeded" {
			t.Errorf("expected the error message, got %q", list[1].Error)
		}
		if list[0].Duration() != 3*time.Second {
			t.Errorf("expected 3s, got %v", list[0].Duration())
		}
	})

	t.Run("filters by url and limits", func(t *testing.T) {
		t.Parallel()

		list, err := db.ListAnalyses(ctx, widget, 1)
		if err != nil {
			t.Fatal(err)
		}
		if len(list) != 1 || list[0].ID != analyses[2].ID {
			t.Errorf("expected only the latest widget analysis, got %+v", list)
		}
	})

	t.Run("returns the latest analysis of a url", func(t *testing.T) {
		t.Parallel()

		latest, err := db.GetLatestAnalysis(ctx, widget)
		if err != nil {
			t.Fatal(err)
		}
		if latest == nil || latest.ID != analyses[2].ID {
			t.Errorf("expected the latest widget analysis, got %+v", latest)
		}
	})

	t.Run("lists analyzed urls", func(t *testing.T) {
		t.Parallel()

		urls, err := db.ListAnalyzedURLs(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if len(urls) != 2 || urls[0] != gadget || urls[1] != widget {
			t.Errorf("expected [%s %s], got %v", gadget, widget, urls)
		}
	})
}

func TestPages(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()
	url := "https://example.com/widget"

	changed, err := db.PageChanged(ctx, url, "abc")
	if err != nil {
		t.Fatal(err)
	}
	if !changed {
		t.Error("expected an unknown page to count as changed")
	}

	a := finishedAnalysis(url, time.Now(), "")
	if err := db.SaveAnalysis(ctx, a); err != nil {
		t.Fatal(err)
	}

	page, err := db.GetPage(ctx, url)
	if err != nil {
		t.Fatal(err)
	}
	if page == nil {
		t.Fatal("expected a page record")
	}
	if page.Title != "Widget Pro" || page.Language != "eng" || page.StatusCode != 200 {
		t.Errorf("unexpected page record %+v", page)
	}
	if page.ContentType != string(model.ContentTypeMarkup) {
		t.Errorf("expected markup, got %q", page.ContentType)
	}

	changed, err = db.PageChanged(ctx, url, a.ContentHash)
	if err != nil {
		t.Fatal(err)
	}
	if changed {
		t.Error("expected the same hash to be unchanged")
	}

	if err := db.UpsertPage(ctx, &PageRecord{URL: url, ContentHash: "new"}); err != nil {
		t.Fatal(err)
	}
	changed, err = db.PageChanged(ctx, url, a.ContentHash)
	if err != nil {
		t.Fatal(err)
	}
	if !changed {
		t.Error("expected a different hash to be changed")
	}
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	want := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	for _, s := range []string{
		"2024-03-01 10:00:00",
		"2024-03-01T10:00:00Z",
		formatTimestamp(want),
	} {
		if got := parseTimestamp(s); !got.Equal(want) {
			t.Errorf("%q: expected %v, got %v", s, want, got)
		}
	}
	if !parseTimestamp("garbage").IsZero() {
		t.Error("expected zero time for garbage")
	}
	if formatTimestamp(time.Time{}) != "" {
		t.Error("expected empty string for zero time")
	}
}
