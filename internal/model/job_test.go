package model

import (
	"fmt"
	"testing"
	"time"

	"github.com/ytget/batchgrab/internal/config"
)

func newTestJob(urls ...string) *Job {
	return NewJob("j1", "test", urls, config.FormatMP4, config.Settings{})
}

func TestPopulateUnitsPreservesOrder(t *testing.T) {
	job := newTestJob("https://youtu.be/a", "https://youtu.be/b", "https://youtu.be/c")

	n := 0
	job.PopulateUnits(func() string { n++; return fmt.Sprintf("u%d", n) })

	if len(job.Units) != 3 {
		t.Fatalf("Expected 3 units, got %d", len(job.Units))
	}
	for i, url := range job.SourceURLs {
		if job.Units[i].URL != url {
			t.Errorf("Unit %d: expected URL %q, got %q", i, url, job.Units[i].URL)
		}
		if job.Units[i].Status != UnitStatusPending {
			t.Errorf("Unit %d: expected pending, got %s", i, job.Units[i].Status)
		}
	}
	if job.Units[0].ID == job.Units[1].ID {
		t.Error("Expected distinct unit IDs")
	}
}

func TestCountsAndSettled(t *testing.T) {
	job := newTestJob("a", "b", "c", "d")
	job.PopulateUnits(func() string { return "u" })
	now := time.Now()

	job.Units[0].MarkCompleted(now)
	job.Units[1].MarkError("extract: gone", now)
	job.Units[2].MarkSkipped("job cancelled", now)

	completed, errored, skipped := job.Counts()
	if completed != 1 || errored != 1 || skipped != 1 {
		t.Errorf("Counts = %d/%d/%d, expected 1/1/1", completed, errored, skipped)
	}
	if job.Settled() {
		t.Error("Expected unsettled job with a pending unit")
	}

	job.Units[3].MarkCompleted(now)
	if !job.Settled() {
		t.Error("Expected settled job once every unit is terminal")
	}
}

func TestViewIsDeepCopy(t *testing.T) {
	job := newTestJob("https://youtu.be/a")
	job.PopulateUnits(func() string { return "u1" })

	view := job.View()
	view.Units[0].Title = "mutated"
	view.SourceURLs[0] = "mutated"

	if job.Units[0].Title != "" {
		t.Error("View mutation leaked into job unit")
	}
	if job.SourceURLs[0] != "https://youtu.be/a" {
		t.Error("View mutation leaked into job URLs")
	}
}

func TestViewCountsMatchUnits(t *testing.T) {
	job := newTestJob("a", "b")
	job.PopulateUnits(func() string { return "u" })
	now := time.Now()
	job.Units[0].MarkCompleted(now)

	view := job.View()
	if view.Total != 2 || view.CompletedCount != 1 || view.ErrorCount != 0 {
		t.Errorf("Unexpected view counts: %+v", view)
	}
}
