package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/AlexHayrapetyan/RestoBook/services"
	"github.com/spf13/cobra"
)

var sweepAt string

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run one sweeper pass and exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		var clock services.Clock = services.SystemClock()
		if sweepAt != "" {
			at, err := time.Parse(time.RFC3339, sweepAt)
			if err != nil {
				return fmt.Errorf("--at must be RFC3339: %w", err)
			}
			clock = services.NewFakeClock(at)
		}

		a, err := bootstrap(clock)
		if err != nil {
			return err
		}
		defer a.close()

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		n, err := a.svcs.Sweeper.SweepOnce(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d reservation(s) marked as Done\n", n)
		return nil
	},
}

func init() {
	sweepCmd.Flags().StringVar(&sweepAt, "at", "", "pretend the current time is this RFC3339 instant")
}
