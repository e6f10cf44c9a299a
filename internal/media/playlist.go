package media

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	ytlist "github.com/ytget/ytdlp/v2"

	"github.com/ytget/batchgrab/internal/model"
)

const playlistParam = "list="

// IsPlaylistURL reports whether the URL addresses a playlist.
func IsPlaylistURL(url string) bool {
	return strings.Contains(url, playlistParam)
}

// PlaylistID extracts the playlist identifier from a URL, or "" when absent.
func PlaylistID(url string) string {
	if !strings.Contains(url, playlistParam) {
		return ""
	}
	parts := strings.Split(url, playlistParam)
	if len(parts) < 2 {
		return ""
	}
	id := parts[1]
	if i := strings.IndexAny(id, "&#"); i >= 0 {
		id = id[:i]
	}
	return id
}

const playlistListTimeout = 60 * time.Second

// PlaylistLister resolves playlist URLs to their entries without shelling out
// to yt-dlp, using the native API client.
type PlaylistLister struct {
	logger *slog.Logger
}

func NewPlaylistLister(logger *slog.Logger) *PlaylistLister {
	if logger == nil {
		logger = slog.Default()
	}
	return &PlaylistLister{logger: logger}
}

// List fetches all playlist items and returns them as a collection metadata
// with one shallow entry per video.
func (p *PlaylistLister) List(ctx context.Context, url string) (*model.Metadata, error) {
	id := PlaylistID(url)
	if id == "" {
		return nil, fmt.Errorf("no playlist ID in URL: %s", url)
	}

	ctx, cancel := context.WithTimeout(ctx, playlistListTimeout)
	defer cancel()

	d := ytlist.New()
	items, err := d.GetPlaylistItemsAll(ctx, id, 0)
	if err != nil {
		return nil, fmt.Errorf("fetching playlist items: %w", err)
	}

	meta := &model.Metadata{WebpageURL: url}
	for _, it := range items {
		meta.Entries = append(meta.Entries, &model.Metadata{
			Title:      it.Title,
			WebpageURL: fmt.Sprintf("https://www.youtube.com/watch?v=%s", it.VideoID),
		})
	}
	p.logger.Debug("playlist listed", "id", id, "entries", len(meta.Entries))
	return meta, nil
}
