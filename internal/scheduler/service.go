package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ytget/batchgrab/internal/config"
	"github.com/ytget/batchgrab/internal/filter"
	"github.com/ytget/batchgrab/internal/ledger"
	"github.com/ytget/batchgrab/internal/media"
	"github.com/ytget/batchgrab/internal/model"
	"github.com/ytget/batchgrab/internal/progress"
)

var (
	ErrJobNotFound   = errors.New("job not found")
	ErrJobNotPending = errors.New("job is not pending")
	ErrJobNotRunning = errors.New("job is not running")
	ErrNoSourceURLs  = errors.New("job needs at least one source URL")
)

// Collaborators are the external tooling the scheduler drives.
type Collaborators struct {
	Extractor   media.Extractor
	Transferrer media.Transferrer
	Tagger      media.Tagger
}

// Paths are the output directories, split by format.
type Paths struct {
	MP3Dir string
	MP4Dir string
}

// Service is the job orchestrator.
type Service struct {
	store  *config.Store
	ledger *ledger.Ledger
	col    Collaborators
	pub    progress.Publisher
	logger *slog.Logger
	paths  Paths

	mu    sync.RWMutex
	jobs  map[string]*model.Job
	order []string
	done  map[string]chan struct{}
}

func New(store *config.Store, lg *ledger.Ledger, col Collaborators, pub progress.Publisher, logger *slog.Logger, paths Paths) *Service {
	if pub == nil {
		pub = progress.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if col.Tagger == nil {
		col.Tagger = media.NopTagger{}
	}
	return &Service{
		store:  store,
		ledger: lg,
		col:    col,
		pub:    pub,
		logger: logger,
		paths:  paths,
		jobs:   make(map[string]*model.Job),
		done:   make(map[string]chan struct{}),
	}
}

func newID() string {
	return uuid.NewString()[:8]
}

// CreateJob registers a pending job with a settings snapshot taken now.
// Per-job overrides apply to the snapshot only, never to the store.
func (s *Service) CreateJob(name string, urls []string, format string, overrides map[string]any) (model.JobView, error) {
	if len(urls) == 0 {
		return model.JobView{}, ErrNoSourceURLs
	}

	settings := s.store.SnapshotWith(overrides)
	if format == "" {
		format = settings.DefaultFormat
	}
	if format != config.FormatMP3 && format != config.FormatMP4 {
		return model.JobView{}, fmt.Errorf("unsupported format %q", format)
	}

	job := model.NewJob(newID(), name, urls, format, settings)

	s.mu.Lock()
	s.jobs[job.ID] = job
	s.order = append(s.order, job.ID)
	view := job.View()
	s.mu.Unlock()

	s.logger.Info("job created", "job", job.ID, "urls", len(urls), "format", format)
	return view, nil
}

// StartJob moves a pending job to running, materializes its units and launches
// the worker pool. Starting a job twice fails the second attempt.
func (s *Service) StartJob(id string) error {
	s.mu.Lock()
	job, ok := s.jobs[id]
	if !ok {
		s.mu.Unlock()
		return ErrJobNotFound
	}
	if job.Status != model.JobStatusPending {
		s.mu.Unlock()
		return ErrJobNotPending
	}
	job.PopulateUnits(newID)
	job.Status = model.JobStatusRunning
	now := time.Now()
	job.StartedAt = &now
	s.done[id] = make(chan struct{})
	view := job.View()
	s.mu.Unlock()

	s.logger.Info("job started", "job", id, "units", view.Total)
	s.pub.Publish(progress.Event{Name: progress.EventJobStarted, Payload: view})

	go s.runJob(job)
	return nil
}

// CancelJob marks a running job cancelled. Units not yet dispatched will be
// skipped; a transfer already in flight runs to completion.
func (s *Service) CancelJob(id string) error {
	s.mu.Lock()
	job, ok := s.jobs[id]
	if !ok {
		s.mu.Unlock()
		return ErrJobNotFound
	}
	if job.Status != model.JobStatusRunning {
		s.mu.Unlock()
		return ErrJobNotRunning
	}
	job.Status = model.JobStatusCancelled
	view := job.View()
	s.mu.Unlock()

	s.logger.Info("job cancelled", "job", id)
	s.pub.Publish(progress.Event{Name: progress.EventJobCancelled, Payload: view})
	return nil
}

// Job returns a snapshot of one job.
func (s *Service) Job(id string) (model.JobView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return model.JobView{}, ErrJobNotFound
	}
	return job.View(), nil
}

// Jobs returns snapshots of all jobs in creation order.
func (s *Service) Jobs() []model.JobView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	views := make([]model.JobView, 0, len(s.order))
	for _, id := range s.order {
		views = append(views, s.jobs[id].View())
	}
	return views
}

// WaitJob blocks until the job's run loop finishes or ctx expires. Waiting on
// a job that was never started blocks until ctx expires.
func (s *Service) WaitJob(ctx context.Context, id string) error {
	s.mu.RLock()
	ch, ok := s.done[id]
	s.mu.RUnlock()
	if !ok {
		s.mu.RLock()
		_, exists := s.jobs[id]
		s.mu.RUnlock()
		if !exists {
			return ErrJobNotFound
		}
		<-ctx.Done()
		return ctx.Err()
	}
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// QuickDownload creates and immediately starts a single-URL job.
func (s *Service) QuickDownload(url, format string, overrides map[string]any) (model.JobView, error) {
	view, err := s.CreateJob("quick download", []string{url}, format, overrides)
	if err != nil {
		return model.JobView{}, err
	}
	if err := s.StartJob(view.ID); err != nil {
		return model.JobView{}, err
	}
	return s.Job(view.ID)
}

// ScanExisting registers media already present in the output directories so
// future jobs treat it as downloaded.
func (s *Service) ScanExisting() (int, error) {
	return s.ledger.ScanExisting(s.paths.MP3Dir, s.paths.MP4Dir)
}

func (s *Service) runJob(job *model.Job) {
	ctx := context.Background()

	s.mu.RLock()
	settings := job.Settings
	units := append([]*model.Unit(nil), job.Units...)
	s.mu.RUnlock()

	f := filter.New(settings)
	limit := settings.MaxThreads
	if limit < 1 {
		limit = 1
	}

	g := new(errgroup.Group)
	g.SetLimit(limit)
	for _, unit := range units {
		g.Go(func() error {
			if s.cancelled(job.ID) {
				s.skipUnit(job, unit, "job cancelled")
				return nil
			}
			s.runUnit(ctx, job, unit, f)
			return nil
		})
	}
	g.Wait()

	s.mu.Lock()
	if job.Status == model.JobStatusRunning {
		job.Status = model.JobStatusCompleted
	}
	now := time.Now()
	job.CompletedAt = &now
	view := job.View()
	ch := s.done[job.ID]
	s.mu.Unlock()

	s.logger.Info("job finished", "job", job.ID, "status", view.Status.String(),
		"completed", view.CompletedCount, "errors", view.ErrorCount, "skipped", view.SkippedCount)
	s.pub.Publish(progress.Event{Name: progress.EventJobCompleted, Payload: view})
	close(ch)
}

func (s *Service) cancelled(jobID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[jobID]
	return ok && job.Status == model.JobStatusCancelled
}
