package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"sandwichcheck/db"
	"sandwichcheck/logger"
	"sandwichcheck/types"

	"github.com/spf13/cobra"
)

var (
	checkWallet string
	checkMock   bool
	checkStore  bool
)

var checkCmd = cobra.Command{
	Use:   "check",
	Short: "Analyze a wallet's recent swaps and print its sandwich report as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.InitLogs("check")
		logger.DetectLogger.Info("Running cmd check", "wallet", checkWallet, "mock", checkMock)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		analyzer, closeFn := newAnalyzer(checkMock)
		defer closeFn()

		report, err := analyzer.Analyze(ctx, checkWallet)
		if err != nil {
			return fmt.Errorf("check %s: %w", checkWallet, err)
		}

		if checkStore {
			ch, err := db.NewClickhouse()
			if err != nil {
				return err
			}
			defer ch.Close()
			if err := db.StoreReport(ctx, ch, report); err != nil {
				logger.GlobalLogger.Error("Failed to store report", "wallet", checkWallet, "err", err)
			}
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(types.SerializeReport(report))
	},
}

func init() {
	checkCmd.Flags().StringVarP(&checkWallet, "wallet", "w", "", "wallet address to analyze")
	checkCmd.Flags().BoolVar(&checkMock, "mock", false, "use deterministic synthetic attacks instead of the ledger")
	checkCmd.Flags().BoolVar(&checkStore, "store", false, "store attacks and the report summary in ClickHouse")
	_ = checkCmd.MarkFlagRequired("wallet")
	RootCmd.AddCommand(&checkCmd)
}
