package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vladimiradmaev/nutrition-tracker/internal/services"
)

func init() {
	var file string
	syncCmd := &cobra.Command{
		Use:   "sync-foods",
		Short: "Upsert the food catalog from a CSV file",
		Long: "Reads id,name,category,calories,protein,carbs,fat rows (header first) and upserts them\n" +
			"in batches. Invalid rows are skipped; the last duplicate id wins.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.close()

			if file == "" {
				file = e.cfg.FoodCSVPath
			}
			return runSyncFoods(cmd.Context(), services.NewCatalogSyncService(e.db, e.log), file, cmd.OutOrStdout())
		},
	}
	syncCmd.Flags().StringVarP(&file, "file", "f", "", "CSV path (defaults to FOOD_CSV_PATH)")
	rootCmd.AddCommand(syncCmd)
}

func runSyncFoods(ctx context.Context, svc *services.CatalogSyncService, path string, w io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open food CSV: %w", err)
	}
	defer f.Close()

	report, err := svc.SyncCSV(ctx, f)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "✅ %s: %d rows, %d parsed, %d skipped, %d created, %d updated\n",
		path, report.Rows, report.Parsed, report.Skipped, report.Created, report.Updated)
	return nil
}
