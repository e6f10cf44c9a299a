package media

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/lrstanley/go-ytdlp"

	"github.com/ytget/batchgrab/internal/config"
	"github.com/ytget/batchgrab/internal/model"
)

const progressInterval = 500 * time.Millisecond

// Engine runs extraction and transfers through yt-dlp. Playlist listings go
// through the native API client instead, which is much cheaper than a flat
// yt-dlp extraction.
type Engine struct {
	logger *slog.Logger
	lister *PlaylistLister
}

func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger, lister: NewPlaylistLister(logger)}
}

// Install makes sure a yt-dlp binary is available, downloading one if needed.
func Install(ctx context.Context) {
	ytdlp.MustInstall(ctx, nil)
}

// Extract fetches metadata for the URL without downloading content. Playlist
// URLs resolve to a shallow listing whose entries carry only identity and
// title.
func (e *Engine) Extract(ctx context.Context, url string) (*model.Metadata, error) {
	if IsPlaylistURL(url) {
		return e.lister.List(ctx, url)
	}

	dl := ytdlp.New().
		DumpSingleJSON().
		SkipDownload().
		NoPlaylist()

	result, err := dl.Run(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("running metadata extraction: %w", err)
	}

	var meta model.Metadata
	if err := json.Unmarshal([]byte(result.Stdout), &meta); err != nil {
		return nil, fmt.Errorf("parsing metadata: %w", err)
	}
	if err := json.Unmarshal([]byte(result.Stdout), &meta.Raw); err != nil {
		return nil, fmt.Errorf("parsing metadata: %w", err)
	}
	return &meta, nil
}

// Transfer downloads the URL with the configured format and reports progress
// samples through onProgress.
func (e *Engine) Transfer(ctx context.Context, url string, opts TransferOptions, onProgress ProgressFunc) (string, error) {
	template := opts.OutputTemplate
	if template == "" {
		template = "%(title)s.%(ext)s"
	}

	dl := ytdlp.New().
		NoPlaylist().
		RestrictFilenames().
		ForceOverwrites().
		Output(filepath.Join(opts.OutputDir, template))

	switch opts.Format {
	case config.FormatMP3:
		dl.Format("bestaudio/best").
			ExtractAudio().
			AudioFormat("mp3").
			AudioQuality(opts.AudioQuality)
	default:
		dl.Format(videoFormat(opts.VideoQuality)).
			MergeOutputFormat("mp4")
	}

	if opts.DownloadSubtitles {
		lang := opts.SubtitleLang
		if lang == "" {
			lang = config.DefaultPreferredSubtitleLang
		}
		dl.WriteSubs().SubLangs(lang)
	}

	if onProgress != nil {
		dl.ProgressFunc(progressInterval, func(update ytdlp.ProgressUpdate) {
			onProgress(convertProgress(update))
		})
	}

	result, err := dl.Run(ctx, url)
	if err != nil {
		return "", fmt.Errorf("running download: %w", err)
	}

	return outputPath(result), nil
}

func convertProgress(update ytdlp.ProgressUpdate) ProgressUpdate {
	u := ProgressUpdate{
		Status:          StatusDownloading,
		DownloadedBytes: int64(update.DownloadedBytes),
		TotalBytes:      int64(update.TotalBytes),
	}
	if u.TotalBytes > 0 && u.DownloadedBytes >= u.TotalBytes {
		u.Status = StatusFinished
	}
	if !update.Started.IsZero() {
		elapsed := time.Since(update.Started)
		if elapsed.Seconds() > 0 {
			bytesPerSecond := float64(update.DownloadedBytes) / elapsed.Seconds()
			u.Speed = fmt.Sprintf("%.1fMB/s", bytesPerSecond/1024/1024)
		}
	}
	if eta := update.ETA(); eta > 0 {
		u.ETA = eta
	}
	if update.Info != nil && update.Info.Filename != nil {
		u.Filename = *update.Info.Filename
	}
	return u
}

func outputPath(result *ytdlp.Result) string {
	if result == nil {
		return ""
	}
	info, err := result.GetExtractedInfo()
	if err != nil || len(info) == 0 || info[0].Filename == nil {
		return ""
	}
	return *info[0].Filename
}

// videoFormat maps a quality label to a yt-dlp format selector.
func videoFormat(quality string) string {
	switch strings.ToLower(quality) {
	case "1080p":
		return "bestvideo[height<=1080]+bestaudio/best[height<=1080]"
	case "720p":
		return "bestvideo[height<=720]+bestaudio/best[height<=720]"
	case "480p":
		return "bestvideo[height<=480]+bestaudio/best[height<=480]"
	default:
		return "bestvideo+bestaudio/best"
	}
}

// FormatETA renders a duration as M:SS or H:MM:SS for display.
func FormatETA(eta time.Duration) string {
	total := int(eta.Seconds())
	if total <= 0 {
		return ""
	}
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}
