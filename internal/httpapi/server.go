// Package httpapi exposes the job orchestrator over a JSON HTTP API with a
// server-sent events stream for live progress.
package httpapi

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ytget/batchgrab/internal/config"
	"github.com/ytget/batchgrab/internal/ledger"
	"github.com/ytget/batchgrab/internal/logging"
	"github.com/ytget/batchgrab/internal/media"
	"github.com/ytget/batchgrab/internal/progress"
	"github.com/ytget/batchgrab/internal/scheduler"
)

// Server wires the API handlers to the orchestrator and its stores.
type Server struct {
	svc       *scheduler.Service
	store     *config.Store
	ledger    *ledger.Ledger
	hub       *progress.Hub
	extractor media.Extractor
	logger    *slog.Logger
}

func NewServer(svc *scheduler.Service, store *config.Store, lg *ledger.Ledger, hub *progress.Hub, extractor media.Extractor, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		svc:       svc,
		store:     store,
		ledger:    lg,
		hub:       hub,
		extractor: extractor,
		logger:    logger,
	}
}

// Router builds the full route table.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/jobs", s.handleCreateJob).Methods(http.MethodPost)
	api.HandleFunc("/jobs", s.handleListJobs).Methods(http.MethodGet)
	api.HandleFunc("/jobs/{id}", s.handleGetJob).Methods(http.MethodGet)
	api.HandleFunc("/jobs/{id}/start", s.handleStartJob).Methods(http.MethodPost)
	api.HandleFunc("/jobs/{id}/cancel", s.handleCancelJob).Methods(http.MethodPost)
	api.HandleFunc("/download", s.handleQuickDownload).Methods(http.MethodPost)
	api.HandleFunc("/info", s.handleInfo).Methods(http.MethodGet)
	api.HandleFunc("/settings", s.handleGetSettings).Methods(http.MethodGet)
	api.HandleFunc("/settings", s.handleSaveSettings).Methods(http.MethodPost)
	api.HandleFunc("/history", s.handleGetHistory).Methods(http.MethodGet)
	api.HandleFunc("/history", s.handleDeleteHistory).Methods(http.MethodDelete)
	api.HandleFunc("/history/scan", s.handleScanHistory).Methods(http.MethodPost)
	api.HandleFunc("/events", s.handleEvents).Methods(http.MethodGet)

	return logging.RequestLogger(s.logger)(r)
}

type createJobRequest struct {
	Name      string         `json:"name"`
	URLs      []string       `json:"urls"`
	Format    string         `json:"format"`
	Overrides map[string]any `json:"overrides"`
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var req createJobRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	view, err := s.svc.CreateJob(req.Name, req.URLs, req.Format, req.Overrides)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Jobs())
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	view, err := s.svc.Job(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleStartJob(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.svc.StartJob(id); err != nil {
		writeError(w, statusForJobError(err), err)
		return
	}
	view, err := s.svc.Job(id)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleCancelJob(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.svc.CancelJob(id); err != nil {
		writeError(w, statusForJobError(err), err)
		return
	}
	view, err := s.svc.Job(id)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func statusForJobError(err error) int {
	switch {
	case errors.Is(err, scheduler.ErrJobNotFound):
		return http.StatusNotFound
	case errors.Is(err, scheduler.ErrJobNotPending), errors.Is(err, scheduler.ErrJobNotRunning):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

type quickDownloadRequest struct {
	URL       string         `json:"url"`
	Format    string         `json:"format"`
	Overrides map[string]any `json:"overrides"`
}

func (s *Server) handleQuickDownload(w http.ResponseWriter, r *http.Request) {
	var req quickDownloadRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, errors.New("url is required"))
		return
	}
	view, err := s.svc.QuickDownload(req.URL, req.Format, req.Overrides)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusAccepted, view)
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if url == "" {
		writeError(w, http.StatusBadRequest, errors.New("url query parameter is required"))
		return
	}
	meta, err := s.extractor.Extract(r.Context(), url)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, meta)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Snapshot())
}

func (s *Server) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	var overrides map[string]any
	if err := decodeJSON(r, &overrides); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	saved, err := s.store.Save(overrides)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ledger.Entries())
}

func (s *Server) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	if url := r.URL.Query().Get("url"); url != "" {
		removed, err := s.ledger.Remove(url)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		if !removed {
			writeError(w, http.StatusNotFound, errors.New("no history entry for URL"))
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"removed": true})
		return
	}
	if err := s.ledger.Clear(); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"cleared": true})
}

func (s *Server) handleScanHistory(w http.ResponseWriter, r *http.Request) {
	added, err := s.svc.ScanExisting()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"added": added})
}
