package media

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/ytget/batchgrab/internal/model"
)

// CommandRunner executes an external command. Swappable in tests.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) error
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, out)
	}
	return nil
}

// FFmpegTagger embeds title, artist and date tags via a stream copy.
type FFmpegTagger struct {
	runner CommandRunner
}

func NewFFmpegTagger() *FFmpegTagger {
	return &FFmpegTagger{runner: execRunner{}}
}

func (t *FFmpegTagger) Embed(ctx context.Context, path string, meta *model.Metadata) error {
	if meta == nil || meta.Title == "" {
		return nil
	}

	tmp := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+".tagging"+filepath.Ext(path))
	args := []string{"-y", "-i", path, "-c", "copy", "-metadata", "title=" + meta.Title}
	if artist := meta.Artist(); artist != "" {
		args = append(args, "-metadata", "artist="+artist)
	}
	if meta.UploadDate != "" {
		args = append(args, "-metadata", "date="+meta.UploadDate)
	}
	args = append(args, tmp)

	if err := t.runner.Run(ctx, "ffmpeg", args...); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("embedding tags: %w", err)
	}
	return os.Rename(tmp, path)
}

// NopTagger skips tag embedding entirely.
type NopTagger struct{}

func (NopTagger) Embed(context.Context, string, *model.Metadata) error { return nil }
