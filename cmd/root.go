package cmd

import (
	"github.com/spf13/cobra"
)

var RootCmd = &cobra.Command{
	Use:   "sandwichcheck",
	Short: "A tool for finding sandwich attacks against a Solana wallet",
}
