package model

import (
	"testing"
	"time"
)

func TestApplyProgressMonotone(t *testing.T) {
	u := NewUnit("u1", "https://youtu.be/a")

	u.ApplyProgress(40)
	u.ApplyProgress(25) // late sample must not move it backwards
	if u.Progress != 40 {
		t.Errorf("Expected progress to stay at 40, got %d", u.Progress)
	}

	u.ApplyProgress(150)
	if u.Progress != 100 {
		t.Errorf("Expected progress clamped to 100, got %d", u.Progress)
	}

	u2 := NewUnit("u2", "https://youtu.be/b")
	u2.ApplyProgress(-5)
	if u2.Progress != 0 {
		t.Errorf("Expected negative sample clamped to 0, got %d", u2.Progress)
	}
}

func TestUnitTransitions(t *testing.T) {
	u := NewUnit("u1", "https://youtu.be/a")
	now := time.Now()

	u.MarkDownloading(now)
	if u.Status != UnitStatusDownloading || u.StartedAt == nil {
		t.Errorf("Expected downloading with start time, got %s %v", u.Status, u.StartedAt)
	}

	u.MarkProcessing()
	if u.Status != UnitStatusProcessing || u.Progress != 100 {
		t.Errorf("Expected processing at 100%%, got %s %d", u.Status, u.Progress)
	}

	u.MarkCompleted(now)
	if u.Status != UnitStatusCompleted || u.CompletedAt == nil {
		t.Errorf("Expected completed with end time, got %s %v", u.Status, u.CompletedAt)
	}
	if !u.Status.IsTerminal() {
		t.Error("Expected completed to be terminal")
	}
}

func TestUnitFailureStates(t *testing.T) {
	now := time.Now()

	u := NewUnit("u1", "https://youtu.be/a")
	u.MarkError("transfer: boom", now)
	if u.Status != UnitStatusError || u.Error != "transfer: boom" {
		t.Errorf("Expected error state with reason, got %s %q", u.Status, u.Error)
	}

	s := NewUnit("u2", "https://youtu.be/b")
	s.MarkSkipped("already downloaded (duplicate)", now)
	if s.Status != UnitStatusSkipped || s.Error != "already downloaded (duplicate)" {
		t.Errorf("Expected skipped state with reason, got %s %q", s.Status, s.Error)
	}
}

func TestDisplayTitle(t *testing.T) {
	u := NewUnit("u1", "https://youtu.be/a")
	if got := u.DisplayTitle(); got != "https://youtu.be/a" {
		t.Errorf("Expected URL fallback, got %q", got)
	}
	u.Title = "A Song"
	if got := u.DisplayTitle(); got != "A Song" {
		t.Errorf("Expected title, got %q", got)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	now := time.Now()
	u := NewUnit("u1", "https://youtu.be/a")
	u.MarkDownloading(now)
	u.Children = append(u.Children, NewUnit("c1", "https://youtu.be/c"))

	c := u.Clone()
	c.Progress = 75
	c.Children[0].Title = "changed"
	later := now.Add(time.Hour)
	c.StartedAt = &later

	if u.Progress != 0 {
		t.Errorf("Clone write leaked into original progress: %d", u.Progress)
	}
	if u.Children[0].Title != "" {
		t.Errorf("Clone write leaked into original child: %q", u.Children[0].Title)
	}
	if !u.StartedAt.Equal(now) {
		t.Error("Clone write leaked into original start time")
	}
}
