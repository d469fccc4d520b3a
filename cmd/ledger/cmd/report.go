package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/ledger/journal"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Report journaled positions and fills from a SQLite journal",
	Long: `Print the closed-cycle snapshots recorded in a SQLite journal,
and optionally the fill history of one position.

Examples:
  ledger report --db ledger.sqlite
  ledger report --db ledger.sqlite --position P-01HXYZ`,
	RunE: runReport,
}

var (
	reportDBPath     string
	reportPositionID string
)

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVarP(&reportDBPath, "db", "d", "./ledger.sqlite", "SQLite journal path")
	reportCmd.Flags().StringVar(&reportPositionID, "position", "", "print fill history for this position id")
}

func runReport(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(reportDBPath)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer j.Close()

	if reportPositionID != "" {
		fills, err := j.ListFillsByPosition(reportPositionID)
		if err != nil {
			return err
		}
		if len(fills) == 0 {
			fmt.Printf("no fills recorded for %s\n", reportPositionID)
			return nil
		}
		fmt.Printf("fills for %s:\n", reportPositionID)
		for _, f := range fills {
			fmt.Printf("  %s  %-4s %12s @ %-12s comm %s %s  exec=%s\n",
				f.Time.Format("2006-01-02 15:04:05"),
				f.Side, f.Quantity, f.Price, f.Commission, f.Currency, f.ExecID)
		}
		return nil
	}

	positions, err := j.ListPositions()
	if err != nil {
		return err
	}
	if len(positions) == 0 {
		fmt.Println("no closed positions recorded")
		return nil
	}
	for _, p := range positions {
		fmt.Printf("%s  %-12s entry=%-4s peak=%-10s open=%s close=%s pnl=%s %s (commission %s, held %s)\n",
			p.PositionID, p.Instrument, p.EntrySide, p.PeakQuantity,
			p.AvgPxOpen, p.AvgPxClose, p.RealizedPnL, p.Currency,
			p.Commission, p.Duration)
	}
	return nil
}
