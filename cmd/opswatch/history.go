package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/opswatch/console/internal/notify"
)

var flagHistoryLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently received check updates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := notify.NewStore(cfg.History.Path, nil)
		if err != nil {
			return err
		}
		defer store.Close()

		entries, err := store.Recent(flagHistoryLimit)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No notifications recorded.")
			return nil
		}
		for _, e := range entries {
			line := fmt.Sprintf("%s  check #%d  %s",
				e.ReceivedAt.Local().Format(time.DateTime), e.CheckID, e.Status)
			if e.Message != "" {
				line += "  " + e.Message
			}
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", 20, "maximum entries to show")
	rootCmd.AddCommand(historyCmd)
}
