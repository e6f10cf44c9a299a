package model

import "time"

// History entry sources
const (
	HistorySourceDownload = "download"
	HistorySourceScan     = "scan"
)

// HistoryEntry is one appended completion record. The store enforces no
// uniqueness; duplicate suppression is a query-time concern of the ledger.
type HistoryEntry struct {
	RawURL        string    `json:"raw_url"`
	NormalizedURL string    `json:"normalized_url"`
	Title         string    `json:"title"`
	OutputPath    string    `json:"output_path,omitempty"`
	ContentHash   string    `json:"content_hash,omitempty"`
	RecordedAt    time.Time `json:"recorded_at"`
	Source        string    `json:"source"`
}
