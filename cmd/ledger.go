package cmd

import (
	"sandwichcheck/helius"
	"sandwichcheck/logger"
	"sandwichcheck/price"
	"sandwichcheck/sandwich"
	"sandwichcheck/sol"
)

// newLedger reads signatures from the JSON-RPC node. Transaction details come from Helius
// when an API key is configured, else from the node too.
func newLedger() (sandwich.Ledger, func()) {
	rpcURL := sol.GetSolanaRpcURL()
	node := sol.NewClient(rpcURL)
	closeFn := func() { _ = node.Close() }

	if key := helius.GetApiKey(); key != "" {
		logger.SolLogger.Info("Using Helius for transaction details", "url", helius.GetHeliusURL())
		return sandwich.NewLedger(node, helius.NewClient(helius.GetHeliusURL(), key)), closeFn
	}
	logger.SolLogger.Info("Using JSON-RPC node for transaction details")
	return sandwich.NewLedger(node, node), closeFn
}

func newAnalyzer(mock bool) (*sandwich.Analyzer, func()) {
	l, closeFn := newLedger()
	a := sandwich.NewAnalyzer(l, price.NewQuoter(), sol.ValidateAddress, sandwich.DefaultOptions())
	a.Mock = mock
	return a, closeFn
}
