package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"time"

	"sandwichcheck/config"
	"sandwichcheck/logger"
	"sandwichcheck/price"
	"sandwichcheck/sandwich"
	"sandwichcheck/sol"
	"sandwichcheck/types"

	"github.com/spf13/cobra"
)

var (
	scanSlot   uint64
	scanWallet string
	scanWindow int
)

var slotCmd = cobra.Command{
	Use:   "scan-slot",
	Short: "Fetch one slot and list the sandwiches around a wallet's trades in it",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.InitLogs("scan-slot")
		if err := sol.ValidateAddress(scanWallet); err != nil {
			return err
		}
		logger.SolLogger.Info("Running cmd scan-slot", "slot", scanSlot, "wallet", scanWallet)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		l, closeFn := newLedger()
		defer closeFn()

		opts := sandwich.DefaultOptions()
		opts.Window = scanWindow
		// Without victim signatures the whole slot is fetched.
		trades := sandwich.NewRetriever(l, opts).FetchUnitTrades(ctx, scanSlot, nil)
		if len(trades) == 0 {
			return fmt.Errorf("no trades found in slot %d", scanSlot)
		}

		solPrice := price.NewQuoter().SolPriceUSD(ctx)
		attacks := sandwich.FindSandwiches(scanWallet, trades, opts.Window, solPrice, time.Now)
		logger.DetectLogger.Info("Slot scanned", "slot", scanSlot, "trades", len(trades), "sandwiches", len(attacks))

		out := make([]types.SandwichAttackJSON, 0, len(attacks))
		for _, a := range attacks {
			out = append(out, types.SerializeAttack(a))
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	slotCmd.Flags().Uint64VarP(&scanSlot, "slot", "s", 0, "slot number to scan")
	slotCmd.Flags().StringVarP(&scanWallet, "wallet", "w", "", "victim wallet whose trades are checked")
	slotCmd.Flags().IntVar(&scanWindow, "window", config.SANDWICH_WINDOW, "max positions between a victim and the attacker's trades")
	_ = slotCmd.MarkFlagRequired("slot")
	_ = slotCmd.MarkFlagRequired("wallet")
	RootCmd.AddCommand(&slotCmd)
}
