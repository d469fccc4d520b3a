package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Position accounting from recorded order-fill streams",
	Long: `Ledger derives position state from recorded order fills.

It provides tools for:
  - Replaying fill logs into a position ledger
  - Journaling fills and closed cycles to CSV or SQLite
  - Reporting realized PnL, commissions and fill history
  - Standard and inverse-quote instrument accounting`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
