package cli

import (
	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Register already-downloaded files in the history",
	Long: `Scan walks the download directories and records any media files not yet
in the history, so future jobs treat them as duplicates.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildApp()
		if err != nil {
			return err
		}
		added, err := app.svc.ScanExisting()
		if err != nil {
			return err
		}
		cmd.Printf("registered %d new files\n", added)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
}
