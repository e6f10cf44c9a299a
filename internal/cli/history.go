package cli

import (
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List the download history",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildApp()
		if err != nil {
			return err
		}
		entries := app.ledger.Entries()
		if len(entries) == 0 {
			cmd.Println("history is empty")
			return nil
		}
		for _, e := range entries {
			title := e.Title
			if title == "" {
				title = e.RawURL
			}
			cmd.Printf("%s  %-10s %s\n", e.RecordedAt.Format("2006-01-02 15:04"), e.Source, title)
		}
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Wipe the download history",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildApp()
		if err != nil {
			return err
		}
		if err := app.ledger.Clear(); err != nil {
			return err
		}
		cmd.Println("history cleared")
		return nil
	},
}

var historyRemoveCmd = &cobra.Command{
	Use:   "remove URL",
	Short: "Remove one URL from the history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildApp()
		if err != nil {
			return err
		}
		removed, err := app.ledger.Remove(args[0])
		if err != nil {
			return err
		}
		if !removed {
			cmd.Println("no matching entry")
			return nil
		}
		cmd.Println("removed")
		return nil
	},
}

func init() {
	historyCmd.AddCommand(historyClearCmd, historyRemoveCmd)
	rootCmd.AddCommand(historyCmd)
}
