package ledger

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ytget/batchgrab/internal/model"
)

var scanExtensions = map[string]bool{
	".mp3":  true,
	".mp4":  true,
	".m4a":  true,
	".webm": true,
}

// ScanExisting walks the given directories and registers media files that are
// not already in the history, keyed by content hash. It returns the number of
// entries added.
func (l *Ledger) ScanExisting(dirs ...string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	known := make(map[string]bool, len(l.entries))
	for _, e := range l.entries {
		if e.ContentHash != "" {
			known[e.ContentHash] = true
		}
	}

	added := 0
	for _, dir := range dirs {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if os.IsNotExist(err) {
					return filepath.SkipDir
				}
				return err
			}
			if d.IsDir() || !scanExtensions[strings.ToLower(filepath.Ext(path))] {
				return nil
			}

			hash, err := FileHash(path)
			if err != nil {
				l.logger.Warn("skipping unreadable file", "path", path, "error", err)
				return nil
			}
			if known[hash] {
				return nil
			}
			known[hash] = true

			info, err := d.Info()
			if err != nil {
				return err
			}
			name := d.Name()
			l.entries = append(l.entries, model.HistoryEntry{
				Title:       strings.TrimSuffix(name, filepath.Ext(name)),
				OutputPath:  path,
				ContentHash: hash,
				RecordedAt:  info.ModTime(),
				Source:      model.HistorySourceScan,
			})
			added++
			return nil
		})
		if err != nil {
			return added, err
		}
	}

	if added == 0 {
		return 0, nil
	}
	return added, l.saveLocked()
}
