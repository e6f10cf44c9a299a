package scheduler

import (
	"context"
	"time"

	"github.com/ytget/batchgrab/internal/config"
	"github.com/ytget/batchgrab/internal/filter"
	"github.com/ytget/batchgrab/internal/media"
	"github.com/ytget/batchgrab/internal/model"
	"github.com/ytget/batchgrab/internal/progress"
)

// unitEvent is the payload for per-unit progress events.
type unitEvent struct {
	JobID string      `json:"job_id"`
	Unit  *model.Unit `json:"unit"`
}

// runUnit drives one unit through extraction, filtering, transfer and
// post-processing. Failures settle the unit; they never abort the job.
func (s *Service) runUnit(ctx context.Context, job *model.Job, unit *model.Unit, f *filter.Filter) {
	s.transition(job, unit, func(u *model.Unit) {
		u.MarkDownloading(time.Now())
	})

	meta, err := s.col.Extractor.Extract(ctx, unit.URL)
	if err != nil {
		s.failUnit(job, unit, "extract: "+err.Error())
		return
	}

	s.transition(job, unit, func(u *model.Unit) {
		u.Metadata = meta
		if meta.Title != "" {
			u.Title = meta.Title
		}
	})

	if meta.IsCollection() {
		s.runCollection(ctx, job, unit, meta, f)
		return
	}

	duration, known := meta.DurationSeconds()
	if ok, reason := f.Evaluate(meta.Title, duration, known); !ok {
		s.skipUnit(job, unit, reason)
		return
	}

	src := meta.SourceURL(unit.URL)
	if !s.ledger.Reserve(src, meta.Title) {
		s.skipUnit(job, unit, "already downloaded (duplicate)")
		return
	}

	outPath, err := s.col.Transferrer.Transfer(ctx, unit.URL, s.transferOptions(job), func(u media.ProgressUpdate) {
		s.applyProgress(job, unit, u)
	})
	if err != nil {
		s.ledger.Release(src)
		s.failUnit(job, unit, "transfer: "+err.Error())
		return
	}

	s.transition(job, unit, func(u *model.Unit) {
		u.MarkProcessing()
		u.OutputPath = outPath
	})

	if job.Settings.ExtractMetadata && outPath != "" {
		if err := s.col.Tagger.Embed(ctx, outPath, meta); err != nil {
			s.logger.Warn("tag embedding failed", "job", job.ID, "unit", unit.ID, "error", err)
		}
	}

	if err := s.ledger.Record(src, meta.Title, outPath); err != nil {
		s.logger.Warn("recording history failed", "job", job.ID, "unit", unit.ID, "error", err)
	}

	s.transition(job, unit, func(u *model.Unit) {
		u.MarkCompleted(time.Now())
	})
}

// runCollection expands a playlist into child units processed one at a time,
// in listing order. The parent's progress tracks expansion, not bytes.
func (s *Service) runCollection(ctx context.Context, job *model.Job, parent *model.Unit, meta *model.Metadata, f *filter.Filter) {
	entries := meta.Entries
	if len(entries) == 0 {
		s.skipUnit(job, parent, "playlist has no entries")
		return
	}

	for i, entry := range entries {
		if s.cancelled(job.ID) {
			s.skipUnit(job, parent, "job cancelled")
			return
		}

		child := model.NewUnit(newID(), entry.SourceURL(""))
		child.Title = entry.Title
		s.transition(job, parent, func(u *model.Unit) {
			u.Children = append(u.Children, child)
		})

		s.runUnit(ctx, job, child, f)

		s.transition(job, parent, func(u *model.Unit) {
			u.ApplyProgress(100 * (i + 1) / len(entries))
		})
	}

	// the parent completes when anything did; otherwise it takes on the
	// last child's terminal state
	var completed int
	var last model.UnitStatus
	s.mu.RLock()
	for _, child := range parent.Children {
		if child.Status == model.UnitStatusCompleted {
			completed++
		}
		last = child.Status
	}
	s.mu.RUnlock()

	switch {
	case completed > 0:
		s.transition(job, parent, func(u *model.Unit) {
			u.MarkCompleted(time.Now())
		})
	case last == model.UnitStatusError:
		s.failUnit(job, parent, "no playlist entry completed")
	default:
		s.skipUnit(job, parent, "all playlist entries skipped")
	}
}

func (s *Service) applyProgress(job *model.Job, unit *model.Unit, u media.ProgressUpdate) {
	s.transition(job, unit, func(target *model.Unit) {
		if u.Status == media.StatusFinished {
			target.MarkProcessing()
			return
		}
		if pct := u.Percent(); pct >= 0 {
			target.ApplyProgress(pct)
		}
		if u.Speed != "" {
			target.Speed = u.Speed
		}
		if u.ETA > 0 {
			target.ETA = media.FormatETA(u.ETA)
		}
	})
}

func (s *Service) transferOptions(job *model.Job) media.TransferOptions {
	outputDir := s.paths.MP4Dir
	if job.Format == config.FormatMP3 {
		outputDir = s.paths.MP3Dir
	}
	return media.TransferOptions{
		Format:            job.Format,
		OutputDir:         outputDir,
		VideoQuality:      job.Settings.VideoQuality,
		AudioQuality:      job.Settings.AudioQuality,
		DownloadSubtitles: job.Settings.DownloadSubtitles,
		SubtitleLang:      job.Settings.PreferredSubtitleLang,
	}
}

// transition mutates a unit under the service lock and publishes the result.
func (s *Service) transition(job *model.Job, unit *model.Unit, fn func(*model.Unit)) {
	s.mu.Lock()
	fn(unit)
	clone := unit.Clone()
	s.mu.Unlock()
	s.pub.Publish(progress.Event{
		Name:    progress.EventDownloadProgress,
		Payload: unitEvent{JobID: job.ID, Unit: clone},
	})
}

func (s *Service) skipUnit(job *model.Job, unit *model.Unit, reason string) {
	s.transition(job, unit, func(u *model.Unit) {
		u.MarkSkipped(reason, time.Now())
	})
	s.logger.Debug("unit skipped", "job", job.ID, "unit", unit.ID, "reason", reason)
}

func (s *Service) failUnit(job *model.Job, unit *model.Unit, reason string) {
	s.transition(job, unit, func(u *model.Unit) {
		u.MarkError(reason, time.Now())
	})
	s.logger.Warn("unit failed", "job", job.ID, "unit", unit.ID, "reason", reason)
}
