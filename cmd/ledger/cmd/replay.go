package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/ledger/config"
	"github.com/rustyeddy/ledger/internal/log"
	"github.com/rustyeddy/ledger/journal"
	"github.com/rustyeddy/ledger/pkg/id"
	"github.com/rustyeddy/ledger/replay"
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a recorded fill log into a position ledger",
	Long: `Replay order fills from a CSV log through a position ledger,
journaling every applied fill and every closed cycle.

Examples:
  ledger replay --fills data/fills.csv --config examples/configs/replay.yaml
  ledger replay --fills data/fills.csv --config replay.yaml --position P-01HXYZ`,
	RunE: runReplay,
}

var (
	replayConfigPath string
	replayFillsPath  string
	replayPositionID string
	replayLogLevel   string
)

func init() {
	rootCmd.AddCommand(replayCmd)

	replayCmd.Flags().StringVarP(&replayConfigPath, "config", "f", "", "path to config file (instrument, account, journal)")
	replayCmd.Flags().StringVarP(&replayFillsPath, "fills", "t", "", "CSV fill log (time,side,price,quantity,commission,exec_id,order_id,client_order_id)")
	replayCmd.Flags().StringVar(&replayPositionID, "position", "", "position id to replay under (generated if empty)")
	replayCmd.Flags().StringVar(&replayLogLevel, "log-level", "info", "log level (debug, info, warn, error)")

	_ = replayCmd.MarkFlagRequired("config")
	_ = replayCmd.MarkFlagRequired("fills")
}

func runReplay(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(replayConfigPath)
	if err != nil {
		return err
	}

	logger, err := log.New(replayLogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	instrument := cfg.BuildInstrument()

	fills, err := replay.ReadFillLog(replayFillsPath, instrument.QuoteCurrency)
	if err != nil {
		return err
	}

	var j journal.Journal
	switch cfg.Journal.Type {
	case "sqlite":
		j, err = journal.NewSQLite(cfg.Journal.DBPath)
	default:
		j, err = journal.NewCSV(cfg.Journal.FillsFile, cfg.Journal.PositionsFile)
	}
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer j.Close()

	posID := replayPositionID
	if posID == "" {
		posID = id.NewPosition()
	}

	runner := &replay.Runner{
		Instrument: instrument,
		AccountID:  cfg.Account.ID,
		StrategyID: cfg.Account.StrategyID,
		Journal:    j,
		Logger:     logger,
	}

	res, err := runner.Run(posID, fills)
	if err != nil {
		return err
	}

	p := res.Position
	fmt.Printf("position %s: %s", p.ID(), p.Status())
	if p.IsOpen() {
		fmt.Printf(" %s @ %s", p.Quantity(), p.AvgPxOpen())
	}
	fmt.Printf("\nfills applied:  %d\ncycles closed:  %d\nrealized pnl:   %s\ncommission:     %s\n",
		res.FillsApplied, res.CyclesClosed, p.RealizedPnL(), p.Commission())

	return nil
}
