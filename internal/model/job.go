package model

import (
	"time"

	"github.com/ytget/batchgrab/internal/config"
)

// Job aggregates the units for one named batch of source URLs sharing a
// format and a settings snapshot taken at creation time.
type Job struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	SourceURLs  []string        `json:"source_urls"`
	Format      string          `json:"format"`
	Settings    config.Settings `json:"settings"`
	Units       []*Unit         `json:"units"`
	Status      JobStatus       `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	StartedAt   *time.Time      `json:"started_at,omitempty"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

// NewJob creates a pending job
func NewJob(id, name string, urls []string, format string, settings config.Settings) *Job {
	return &Job{
		ID:         id,
		Name:       name,
		SourceURLs: urls,
		Format:     format,
		Settings:   settings,
		Status:     JobStatusPending,
		CreatedAt:  time.Now(),
	}
}

// PopulateUnits creates one pending unit per source URL, in list order.
// Called exactly once, when the job starts. Playlist expansion later attaches
// child units to their parent instead of growing this list.
func (j *Job) PopulateUnits(newID func() string) {
	j.Units = make([]*Unit, 0, len(j.SourceURLs))
	for _, url := range j.SourceURLs {
		j.Units = append(j.Units, NewUnit(newID(), url))
	}
}

// Counts tallies the terminal states of the job's own units
func (j *Job) Counts() (completed, errored, skipped int) {
	for _, u := range j.Units {
		switch u.Status {
		case UnitStatusCompleted:
			completed++
		case UnitStatusError:
			errored++
		case UnitStatusSkipped:
			skipped++
		}
	}
	return completed, errored, skipped
}

// Settled reports whether every unit reached a terminal state
func (j *Job) Settled() bool {
	for _, u := range j.Units {
		if !u.Status.IsTerminal() {
			return false
		}
	}
	return true
}

// JobView is a deep-copied snapshot of a job with derived aggregate counts.
type JobView struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	SourceURLs     []string        `json:"source_urls"`
	Format         string          `json:"format"`
	Settings       config.Settings `json:"settings"`
	Units          []*Unit         `json:"units"`
	Status         JobStatus       `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	StartedAt      *time.Time      `json:"started_at,omitempty"`
	CompletedAt    *time.Time      `json:"completed_at,omitempty"`
	Total          int             `json:"total"`
	CompletedCount int             `json:"completed_count"`
	ErrorCount     int             `json:"error_count"`
	SkippedCount   int             `json:"skipped_count"`
}

// View builds a snapshot. Must be called under the owning lock.
func (j *Job) View() JobView {
	units := make([]*Unit, 0, len(j.Units))
	for _, u := range j.Units {
		units = append(units, u.Clone())
	}
	completed, errored, skipped := j.Counts()
	v := JobView{
		ID:             j.ID,
		Name:           j.Name,
		SourceURLs:     append([]string(nil), j.SourceURLs...),
		Format:         j.Format,
		Settings:       j.Settings,
		Units:          units,
		Status:         j.Status,
		CreatedAt:      j.CreatedAt,
		Total:          len(j.Units),
		CompletedCount: completed,
		ErrorCount:     errored,
		SkippedCount:   skipped,
	}
	if j.StartedAt != nil {
		t := *j.StartedAt
		v.StartedAt = &t
	}
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		v.CompletedAt = &t
	}
	return v
}
