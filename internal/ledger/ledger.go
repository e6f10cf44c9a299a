// Package ledger keeps the persisted download history and answers duplicate
// queries against it. The history is append-only during normal operation and
// enforces no uniqueness; suppression happens at query time. Reserve/Record
// hold one lock across check-and-claim so concurrent workers cannot both pass
// the duplicate check for the same item.
package ledger

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ytget/batchgrab/internal/model"
)

const hashChunkSize = 8192

// Ledger is the duplicate-detection history store.
type Ledger struct {
	mu       sync.Mutex
	path     string
	entries  []model.HistoryEntry
	reserved map[string]struct{}
	logger   *slog.Logger
}

// Load reads the whole history document from path. A missing or corrupt file
// yields an empty ledger.
func Load(path string, logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Ledger{
		path:     path,
		reserved: make(map[string]struct{}),
		logger:   logger,
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return l
	}
	if err := json.Unmarshal(data, &l.entries); err != nil {
		logger.Warn("history file unreadable, starting empty", "path", path, "error", err)
		l.entries = nil
	}
	return l
}

// IsDuplicate reports whether any stored entry shares the normalized URL or,
// when a title is given, the normalized title.
func (l *Ledger) IsDuplicate(url, title string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.isDuplicateLocked(url, title)
}

func (l *Ledger) isDuplicateLocked(url, title string) bool {
	normURL := NormalizeURL(url)
	normTitle := ""
	if title != "" {
		normTitle = NormalizeTitle(title)
	}
	for i := range l.entries {
		e := &l.entries[i]
		if normURL != "" && e.NormalizedURL == normURL {
			return true
		}
		if normTitle != "" && e.Title != "" && NormalizeTitle(e.Title) == normTitle {
			return true
		}
	}
	return false
}

// Reserve runs the duplicate check and claims the normalized URL in one
// critical section. It returns false when the item is already stored or
// another worker holds the claim.
func (l *Ledger) Reserve(url, title string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	normURL := NormalizeURL(url)
	if _, held := l.reserved[normURL]; held {
		return false
	}
	if l.isDuplicateLocked(url, title) {
		return false
	}
	l.reserved[normURL] = struct{}{}
	return true
}

// Release abandons a reservation after a failed attempt.
func (l *Ledger) Release(url string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.reserved, NormalizeURL(url))
}

// Record appends a history entry for a finished download and persists the
// whole document. An unreadable output file records without a hash.
func (l *Ledger) Record(url, title, outputPath string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := model.HistoryEntry{
		RawURL:        url,
		NormalizedURL: NormalizeURL(url),
		Title:         title,
		OutputPath:    outputPath,
		RecordedAt:    time.Now(),
		Source:        model.HistorySourceDownload,
	}
	if outputPath != "" {
		if hash, err := FileHash(outputPath); err == nil {
			entry.ContentHash = hash
		} else {
			l.logger.Warn("hashing output failed", "path", outputPath, "error", err)
		}
	}

	l.entries = append(l.entries, entry)
	delete(l.reserved, entry.NormalizedURL)
	return l.saveLocked()
}

// Entries returns a copy of the history, oldest first.
func (l *Ledger) Entries() []model.HistoryEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]model.HistoryEntry(nil), l.entries...)
}

// Remove drops every entry matching the URL's normalized form. It reports
// whether anything was removed.
func (l *Ledger) Remove(url string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	normURL := NormalizeURL(url)
	kept := l.entries[:0]
	for _, e := range l.entries {
		if e.NormalizedURL != normURL {
			kept = append(kept, e)
		}
	}
	removed := len(kept) < len(l.entries)
	l.entries = kept
	if !removed {
		return false, nil
	}
	return true, l.saveLocked()
}

// Clear wipes the history.
func (l *Ledger) Clear() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
	return l.saveLocked()
}

func (l *Ledger) saveLocked() error {
	entries := l.entries
	if entries == nil {
		entries = []model.HistoryEntry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding history: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("creating history directory: %w", err)
	}
	if err := os.WriteFile(l.path, data, 0o644); err != nil {
		return fmt.Errorf("writing history: %w", err)
	}
	return nil
}

// FileHash computes the MD5 digest of the file contents in fixed-size chunks.
func FileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := md5.New()
	buf := make([]byte, hashChunkSize)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
