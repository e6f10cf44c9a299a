// Package cli implements the batchgrab command tree.
package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ytget/batchgrab/internal/config"
	"github.com/ytget/batchgrab/internal/ledger"
	"github.com/ytget/batchgrab/internal/logging"
	"github.com/ytget/batchgrab/internal/media"
	"github.com/ytget/batchgrab/internal/progress"
	"github.com/ytget/batchgrab/internal/scheduler"
)

var (
	flagLogLevel    string
	flagLogFormat   string
	flagDataDir     string
	flagDownloadDir string
)

var rootCmd = &cobra.Command{
	Use:   "batchgrab",
	Short: "Bulk media retrieval orchestrator",
	Long: `batchgrab downloads batches of videos or audio tracks through yt-dlp,
with keyword and duration filtering, duplicate suppression against a
persistent history, playlist expansion and a bounded worker pool.`,
	SilenceUsage: true,
}

// Execute runs the command tree. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "Log format (text, json)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "Directory for settings and history (default XDG data dir)")
	rootCmd.PersistentFlags().StringVar(&flagDownloadDir, "download-dir", "", "Directory for downloaded media (default XDG downloads dir)")
}

// app is the assembled object graph behind every subcommand.
type app struct {
	paths  Paths
	logger *slog.Logger
	store  *config.Store
	ledger *ledger.Ledger
	hub    *progress.Hub
	engine *media.Engine
	svc    *scheduler.Service
}

func buildApp() (*app, error) {
	paths := DefaultPaths(flagDataDir, flagDownloadDir)
	if err := paths.Ensure(); err != nil {
		return nil, fmt.Errorf("creating application directories: %w", err)
	}

	logger := logging.Init(logging.Config{Level: flagLogLevel, Format: flagLogFormat})
	store := config.NewStore(paths.SettingsFile)
	lg := ledger.Load(paths.HistoryFile, logging.WithComponent(logger, "ledger"))
	hub := progress.NewHub()
	engine := media.NewEngine(logging.WithComponent(logger, "media"))

	svc := scheduler.New(
		store,
		lg,
		scheduler.Collaborators{
			Extractor:   engine,
			Transferrer: engine,
			Tagger:      media.NewFFmpegTagger(),
		},
		hub,
		logging.WithComponent(logger, "scheduler"),
		scheduler.Paths{MP3Dir: paths.MP3Dir, MP4Dir: paths.MP4Dir},
	)

	return &app{
		paths:  paths,
		logger: logger,
		store:  store,
		ledger: lg,
		hub:    hub,
		engine: engine,
		svc:    svc,
	}, nil
}
