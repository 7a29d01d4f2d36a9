package model

import (
	"testing"
	"time"
)

func TestNewProgressEvent(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 4, 5, 6, 7, 890_000_000, time.FixedZone("JST", 9*60*60))
	e := NewProgressEvent(StageWebScraping, "Scraping product page", now)

	if e.Stage != StageWebScraping {
		t.Errorf("expected stage %q, got %q", StageWebScraping, e.Stage)
	}
	want := "2026-03-03T20:06:07.890Z"
	if e.Timestamp != want {
		t.Errorf("expected timestamp %q, got %q", want, e.Timestamp)
	}
}

func TestProgressEventIsTerminal(t *testing.T) {
	t.Parallel()

	for _, stage := range Stages() {
		if NewProgressEvent(stage, "", time.Now()).IsTerminal() {
			t.Errorf("expected %q to be non-terminal", stage)
		}
	}
	for _, stage := range []string{StageComplete, StageError} {
		if !NewProgressEvent(stage, "", time.Now()).IsTerminal() {
			t.Errorf("expected %q to be terminal", stage)
		}
	}
}

func TestStagesOrder(t *testing.T) {
	t.Parallel()

	stages := Stages()
	if len(stages) != 6 {
		t.Fatalf("expected 6 stages, got %d", len(stages))
	}
	if stages[0] != StageWebScraping || stages[5] != StageReportGeneration {
		t.Errorf("unexpected stage order: %v", stages)
	}
}
