package model

import (
	"strings"
	"time"
)

// Unit tracks the retrieval lifecycle for one source URL (or one playlist
// child). Progress is clamped monotone non-decreasing within the unit's own
// callback stream; no ordering holds across units.
type Unit struct {
	ID          string     `json:"id"`
	URL         string     `json:"url"`
	Title       string     `json:"title"`
	Status      UnitStatus `json:"status"`
	Progress    int        `json:"progress"`
	Speed       string     `json:"speed,omitempty"`
	ETA         string     `json:"eta,omitempty"`
	Error       string     `json:"error,omitempty"`
	OutputPath  string     `json:"output_path,omitempty"`
	Metadata    *Metadata  `json:"metadata,omitempty"`
	Children    []*Unit    `json:"children,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// NewUnit creates a pending unit for the given source URL
func NewUnit(id, url string) *Unit {
	return &Unit{
		ID:     id,
		URL:    url,
		Status: UnitStatusPending,
	}
}

// ApplyProgress updates the percentage, never moving it backwards
func (u *Unit) ApplyProgress(percent int) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	if percent > u.Progress {
		u.Progress = percent
	}
}

// MarkDownloading enters the downloading phase and stamps the start time
func (u *Unit) MarkDownloading(now time.Time) {
	u.Status = UnitStatusDownloading
	u.StartedAt = &now
}

// MarkProcessing records that the transfer finished and post-processing is
// about to run. The 100% is about the transfer, not post-processing.
func (u *Unit) MarkProcessing() {
	u.Status = UnitStatusProcessing
	u.Progress = 100
}

// MarkCompleted settles the unit successfully
func (u *Unit) MarkCompleted(now time.Time) {
	u.Status = UnitStatusCompleted
	u.Progress = 100
	u.CompletedAt = &now
}

// MarkError settles the unit with a failure reason
func (u *Unit) MarkError(reason string, now time.Time) {
	u.Status = UnitStatusError
	u.Error = reason
	u.CompletedAt = &now
}

// MarkSkipped settles the unit without a transfer, keeping the reject reason
func (u *Unit) MarkSkipped(reason string, now time.Time) {
	u.Status = UnitStatusSkipped
	u.Error = reason
	u.CompletedAt = &now
}

// DisplayTitle returns the title when known, falling back to the URL
func (u *Unit) DisplayTitle() string {
	if u.Title != "" && !strings.HasPrefix(u.Title, "http") {
		return u.Title
	}
	return u.URL
}

// Clone returns a deep copy safe to hand outside the owning lock. The
// metadata pointer is shared; it is immutable once attached.
func (u *Unit) Clone() *Unit {
	c := *u
	if u.StartedAt != nil {
		t := *u.StartedAt
		c.StartedAt = &t
	}
	if u.CompletedAt != nil {
		t := *u.CompletedAt
		c.CompletedAt = &t
	}
	if len(u.Children) > 0 {
		c.Children = make([]*Unit, 0, len(u.Children))
		for _, child := range u.Children {
			c.Children = append(c.Children, child.Clone())
		}
	}
	return &c
}
