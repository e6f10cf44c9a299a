package httpapi

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ytget/batchgrab/internal/config"
	"github.com/ytget/batchgrab/internal/ledger"
	"github.com/ytget/batchgrab/internal/media"
	"github.com/ytget/batchgrab/internal/model"
	"github.com/ytget/batchgrab/internal/progress"
	"github.com/ytget/batchgrab/internal/scheduler"
)

type stubExtractor struct{}

func (stubExtractor) Extract(_ context.Context, url string) (*model.Metadata, error) {
	d := 120.0
	return &model.Metadata{Title: "Video " + url, WebpageURL: url, Duration: &d}, nil
}

type stubTransferrer struct{}

func (stubTransferrer) Transfer(_ context.Context, url string, _ media.TransferOptions, onProgress media.ProgressFunc) (string, error) {
	if onProgress != nil {
		onProgress(media.ProgressUpdate{Status: media.StatusFinished})
	}
	return "/downloads/" + filepath.Base(url) + ".mp4", nil
}

type testServer struct {
	server *Server
	svc    *scheduler.Service
	hub    *progress.Hub
	store  *config.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	dir := t.TempDir()
	store := config.NewStore(filepath.Join(dir, "settings.json"))
	lg := ledger.Load(filepath.Join(dir, "history.json"), nil)
	hub := progress.NewHub()
	svc := scheduler.New(
		store,
		lg,
		scheduler.Collaborators{Extractor: stubExtractor{}, Transferrer: stubTransferrer{}},
		hub,
		nil,
		scheduler.Paths{MP3Dir: filepath.Join(dir, "mp3"), MP4Dir: filepath.Join(dir, "mp4")},
	)
	return &testServer{
		server: NewServer(svc, store, lg, hub, stubExtractor{}, nil),
		svc:    svc,
		hub:    hub,
		store:  store,
	}
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestJobLifecycleOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	router := ts.server.Router()

	rec := doJSON(t, router, http.MethodPost, "/api/jobs", createJobRequest{
		Name: "batch", URLs: []string{"https://youtu.be/abc"}, Format: "mp4",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body)
	}
	var created model.JobView
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	if created.Status != model.JobStatusPending {
		t.Errorf("Expected pending job, got %s", created.Status)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/jobs/"+created.ID+"/start", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 on start, got %d: %s", rec.Code, rec.Body)
	}

	// starting twice conflicts
	rec = doJSON(t, router, http.MethodPost, "/api/jobs/"+created.ID+"/start", nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("Expected 409 on double start, got %d", rec.Code)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := ts.svc.WaitJob(ctx, created.ID); err != nil {
		t.Fatalf("WaitJob failed: %v", err)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/jobs/"+created.ID, nil)
	var final model.JobView
	if err := json.Unmarshal(rec.Body.Bytes(), &final); err != nil {
		t.Fatal(err)
	}
	if final.Status != model.JobStatusCompleted || final.CompletedCount != 1 {
		t.Errorf("Expected completed job with 1 unit done, got %+v", final)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/jobs", nil)
	var all []model.JobView
	if err := json.Unmarshal(rec.Body.Bytes(), &all); err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 {
		t.Errorf("Expected 1 job in listing, got %d", len(all))
	}
}

func TestGetJobNotFound(t *testing.T) {
	ts := newTestServer(t)
	rec := doJSON(t, ts.server.Router(), http.MethodGet, "/api/jobs/nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
}

func TestCreateJobRejectsBadRequests(t *testing.T) {
	ts := newTestServer(t)
	router := ts.server.Router()

	rec := doJSON(t, router, http.MethodPost, "/api/jobs", createJobRequest{Name: "empty"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing URLs, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/jobs", strings.NewReader("{broken"))
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req)
	if rec2.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for malformed body, got %d", rec2.Code)
	}
}

func TestQuickDownloadRequiresURL(t *testing.T) {
	ts := newTestServer(t)
	rec := doJSON(t, ts.server.Router(), http.MethodPost, "/api/download", quickDownloadRequest{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}

	rec = doJSON(t, ts.server.Router(), http.MethodPost, "/api/download",
		quickDownloadRequest{URL: "https://youtu.be/quick"})
	if rec.Code != http.StatusAccepted {
		t.Errorf("Expected 202, got %d: %s", rec.Code, rec.Body)
	}
}

func TestInfoEndpoint(t *testing.T) {
	ts := newTestServer(t)
	router := ts.server.Router()

	rec := doJSON(t, router, http.MethodGet, "/api/info", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 without url param, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/info?url=https://youtu.be/abc", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var meta model.Metadata
	if err := json.Unmarshal(rec.Body.Bytes(), &meta); err != nil {
		t.Fatal(err)
	}
	if meta.Title == "" {
		t.Error("Expected extracted title in response")
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	ts := newTestServer(t)
	router := ts.server.Router()

	rec := doJSON(t, router, http.MethodGet, "/api/settings", nil)
	var before config.Settings
	if err := json.Unmarshal(rec.Body.Bytes(), &before); err != nil {
		t.Fatal(err)
	}
	if before.MaxThreads != config.DefaultMaxThreads {
		t.Errorf("Expected default max_threads, got %d", before.MaxThreads)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/settings", map[string]any{config.KeyMaxThreads: 2})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var after config.Settings
	if err := json.Unmarshal(rec.Body.Bytes(), &after); err != nil {
		t.Fatal(err)
	}
	if after.MaxThreads != 2 {
		t.Errorf("Expected saved max_threads 2, got %d", after.MaxThreads)
	}
}

func TestHistoryEndpoints(t *testing.T) {
	ts := newTestServer(t)
	router := ts.server.Router()

	rec := doJSON(t, router, http.MethodGet, "/api/history", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodDelete, "/api/history?url=https://youtu.be/none", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 removing unknown URL, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodDelete, "/api/history", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 clearing history, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/history/scan", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 scanning, got %d: %s", rec.Code, rec.Body)
	}
}

func TestEventsStream(t *testing.T) {
	ts := newTestServer(t)
	srv := httptest.NewServer(ts.server.Router())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/events", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("Expected event-stream content type, got %q", ct)
	}

	// keep publishing until the subscription registered by the handler
	// picks one up
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		for {
			select {
			case <-stop:
				return
			case <-time.After(10 * time.Millisecond):
				ts.hub.Publish(progress.Event{
					Name:    progress.EventJobStarted,
					Payload: map[string]string{"id": "j1"},
				})
			}
		}
	}()

	scanner := bufio.NewScanner(resp.Body)
	var eventLine, dataLine string
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "event: ") {
			eventLine = line
		}
		if strings.HasPrefix(line, "data: ") {
			dataLine = line
			break
		}
	}
	if eventLine != fmt.Sprintf("event: %s", progress.EventJobStarted) {
		t.Errorf("Expected job_started event line, got %q", eventLine)
	}
	if !strings.Contains(dataLine, `"j1"`) {
		t.Errorf("Expected payload in data line, got %q", dataLine)
	}
}
