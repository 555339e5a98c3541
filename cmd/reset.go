package cmd

import (
	"sandwichcheck/db"
	"sandwichcheck/logger"

	"github.com/spf13/cobra"
)

var resetCmd = cobra.Command{
	Use:   "reset",
	Short: "Drop every stored attack and report table",
	RunE: func(cmd *cobra.Command, args []string) error {
		ch, err := db.NewClickhouse()
		if err != nil {
			return err
		}
		defer ch.Close()

		logger.GlobalLogger.Info("Dropping tables in database...", "database", db.DatabaseName)
		if err := ch.DropTables(); err != nil {
			logger.GlobalLogger.Error("Failed to drop tables", "err", err)
			return err
		}
		logger.GlobalLogger.Info("Done.")
		return nil
	},
}

func init() {
	RootCmd.AddCommand(&resetCmd)
}
