package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	dsnFlag string
	tzFlag  string
	rootCmd = &cobra.Command{
		Use:           "nutritionctl",
		Short:         "Maintenance commands for the nutrition tracker database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func main() {
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVar(&dsnFlag, "dsn", "", "Database URL (defaults to DATABASE_URL)")
	rootCmd.PersistentFlags().StringVar(&tzFlag, "tz", "", "Reference timezone (defaults to REFERENCE_TIMEZONE)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
