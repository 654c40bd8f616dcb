package cmd

import "github.com/spf13/cobra"

var rootCmd = &cobra.Command{
	Use:   "stock-hunter",
	Short: "Trend-template stock screener with relative strength ratings",
}

func init() {
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(screenCmd)
	rootCmd.AddCommand(migrateCmd)
}

func Execute() error {
	return rootCmd.Execute()
}
