package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	statsTop  int
	statsDays int
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show search statistics",
}

var statsTopCmd = &cobra.Command{
	Use:   "top",
	Short: "Show the most searched words",
	Example: `  kdict stats top
  kdict stats top -n 30`,
	Args: cobra.NoArgs,
	RunE: runStatsTop,
}

var statsDailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Show distinct words searched per day",
	Example: `  kdict stats daily
  kdict stats daily --days 30`,
	Args: cobra.NoArgs,
	RunE: runStatsDaily,
}

func init() {
	statsTopCmd.Flags().IntVarP(&statsTop, "number", "n", 0, "Number of words (default usage_tracking.top_words)")
	statsDailyCmd.Flags().IntVar(&statsDays, "days", 0, "Number of days, today included (default usage_tracking.series_days)")

	statsCmd.AddCommand(statsTopCmd)
	statsCmd.AddCommand(statsDailyCmd)
	rootCmd.AddCommand(statsCmd)
}

func runStatsTop(cmd *cobra.Command, args []string) error {
	n := statsTop
	if n <= 0 {
		n = cfg.Usage.TopWords
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	renderTop(cmd.OutOrStdout(), a.session.Tracker().TopN(n))
	return nil
}

func runStatsDaily(cmd *cobra.Command, args []string) error {
	days := statsDays
	if days <= 0 {
		days = cfg.Usage.SeriesDays
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	tracker := a.session.Tracker()

	// sign-in only loaded the configured window
	if tracker.SignedIn() && days > cfg.Usage.SeriesDays {
		if err := tracker.Refresh(cmd.Context(), days); err != nil {
			return fmt.Errorf("failed to refresh statistics: %w", err)
		}
	}

	renderSeries(cmd.OutOrStdout(), tracker.DailySeries(days))
	return nil
}
