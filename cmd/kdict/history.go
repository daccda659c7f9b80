package main

import (
	"fmt"
	"time"

	"github.com/goodtune/kdict/internal/usage"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history [DATE]",
	Short: "List the words searched on a date",
	Long:  `List the words searched on DATE (YYYY-MM-DD), today by default.`,
	Example: `  kdict history
  kdict history 2024-03-08`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	tracker := a.session.Tracker()

	date := tracker.Today()
	if len(args) == 1 {
		date = args[0]
		if _, err := time.Parse(usage.DateLayout, date); err != nil {
			return fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", date)
		}
	}

	words, err := tracker.DayWords(cmd.Context(), date)
	if err != nil {
		_, _ = warnColor.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
	}

	renderWords(cmd.OutOrStdout(), date, words)
	return nil
}
