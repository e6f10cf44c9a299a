// Package media wraps the external extraction and transfer tooling behind
// small interfaces so the scheduler can be exercised without network access.
package media

import (
	"context"
	"time"

	"github.com/ytget/batchgrab/internal/model"
)

// ProgressStatus labels a transfer progress update.
type ProgressStatus string

const (
	StatusDownloading ProgressStatus = "downloading"
	StatusFinished    ProgressStatus = "finished"
)

// ProgressUpdate is one transfer progress sample.
type ProgressUpdate struct {
	Status          ProgressStatus
	DownloadedBytes int64
	TotalBytes      int64
	Speed           string
	ETA             time.Duration
	Filename        string
}

// Percent returns the completion percentage, or -1 when the total is unknown.
func (u ProgressUpdate) Percent() int {
	if u.Status == StatusFinished {
		return 100
	}
	if u.TotalBytes <= 0 {
		return -1
	}
	pct := int(float64(u.DownloadedBytes) / float64(u.TotalBytes) * 100)
	if pct > 100 {
		pct = 100
	}
	return pct
}

// ProgressFunc receives transfer progress samples.
type ProgressFunc func(ProgressUpdate)

// Extractor resolves a URL to its metadata without downloading content.
type Extractor interface {
	// Extract fetches full metadata for a single item or, for a collection
	// URL, a shallow listing with Entries populated.
	Extract(ctx context.Context, url string) (*model.Metadata, error)
}

// TransferOptions parameterize one content transfer.
type TransferOptions struct {
	Format            string
	OutputDir         string
	OutputTemplate    string
	VideoQuality      string
	AudioQuality      string
	DownloadSubtitles bool
	SubtitleLang      string
}

// Transferrer downloads one item's content to local storage.
type Transferrer interface {
	// Transfer downloads the URL and returns the final output path, which
	// may be empty when the tooling does not report it.
	Transfer(ctx context.Context, url string, opts TransferOptions, onProgress ProgressFunc) (string, error)
}

// Tagger writes metadata tags into a finished media file.
type Tagger interface {
	Embed(ctx context.Context, path string, meta *model.Metadata) error
}
