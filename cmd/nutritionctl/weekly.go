package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/vladimiradmaev/nutrition-tracker/internal/services"
)

func init() {
	recalcCmd := &cobra.Command{
		Use:   "recalculate-weekly USER_ID",
		Short: "Rebuild every weekly stats row of a user from their records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.close()

			weekly := services.NewWeeklyStatsService(e.db, e.clock, nil, e.log)
			return runRecalculate(cmd.Context(), weekly, args[0], cmd.OutOrStdout())
		},
	}
	rootCmd.AddCommand(recalcCmd)

	overviewCmd := &cobra.Command{
		Use:   "overview",
		Short: "Print row counts and recent rows of every table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.close()

			tables, err := services.NewOverviewService(e.db).Overview(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), tables)
		},
	}
	rootCmd.AddCommand(overviewCmd)
}

func runRecalculate(ctx context.Context, weekly *services.WeeklyStatsService, userID string, w io.Writer) error {
	result, err := weekly.RecalculateAll(ctx, userID)
	if err != nil {
		return err
	}
	return printJSON(w, result)
}
