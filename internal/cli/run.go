package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ytget/batchgrab/internal/config"
	"github.com/ytget/batchgrab/internal/media"
	"github.com/ytget/batchgrab/internal/model"
)

var (
	flagFormat  string
	flagName    string
	flagThreads int
)

var runCmd = &cobra.Command{
	Use:   "run [URL...]",
	Short: "Download a batch of URLs and wait for completion",
	Example: `  # Download two videos as mp4
  batchgrab run "https://youtu.be/aaa" "https://youtu.be/bbb"

  # Rip a playlist to mp3 with two workers
  batchgrab run --format mp3 --threads 2 "https://www.youtube.com/playlist?list=PL..."`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildApp()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		media.Install(ctx)

		overrides := map[string]any{}
		if cmd.Flags().Changed("threads") {
			overrides[config.KeyMaxThreads] = flagThreads
		}

		view, err := app.svc.CreateJob(flagName, args, flagFormat, overrides)
		if err != nil {
			return err
		}
		if err := app.svc.StartJob(view.ID); err != nil {
			return err
		}

		go func() {
			// interrupt cancels the job; the wait below then drains it
			<-ctx.Done()
			app.svc.CancelJob(view.ID)
		}()

		if err := app.svc.WaitJob(cmd.Context(), view.ID); err != nil {
			return err
		}

		final, err := app.svc.Job(view.ID)
		if err != nil {
			return err
		}
		printJobSummary(cmd, final)
		if final.ErrorCount > 0 {
			return fmt.Errorf("%d of %d downloads failed", final.ErrorCount, final.Total)
		}
		return nil
	},
}

func printJobSummary(cmd *cobra.Command, view model.JobView) {
	cmd.Printf("job %s: %s (%d completed, %d skipped, %d failed)\n",
		view.ID, view.Status, view.CompletedCount, view.SkippedCount, view.ErrorCount)
	for _, unit := range view.Units {
		printUnitSummary(cmd, unit, "  ")
	}
}

func printUnitSummary(cmd *cobra.Command, unit *model.Unit, indent string) {
	switch unit.Status {
	case model.UnitStatusCompleted:
		if len(unit.Children) > 0 {
			cmd.Printf("%s✓ %s (%d entries)\n", indent, unit.DisplayTitle(), len(unit.Children))
		} else {
			cmd.Printf("%s✓ %s -> %s\n", indent, unit.DisplayTitle(), unit.OutputPath)
		}
	case model.UnitStatusSkipped:
		cmd.Printf("%s- %s (skipped: %s)\n", indent, unit.DisplayTitle(), unit.Error)
	case model.UnitStatusError:
		cmd.Printf("%s✗ %s (%s)\n", indent, unit.DisplayTitle(), unit.Error)
	default:
		cmd.Printf("%s? %s (%s)\n", indent, unit.DisplayTitle(), unit.Status)
	}
	for _, child := range unit.Children {
		printUnitSummary(cmd, child, indent+"  ")
	}
}

func init() {
	runCmd.Flags().StringVar(&flagFormat, "format", "", "Output format: mp3 or mp4 (default from settings)")
	runCmd.Flags().StringVar(&flagName, "name", "cli job", "Job name")
	runCmd.Flags().IntVar(&flagThreads, "threads", config.DefaultMaxThreads, "Concurrent downloads")
	rootCmd.AddCommand(runCmd)
}
