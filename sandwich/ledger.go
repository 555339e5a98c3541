package sandwich

import (
	"context"

	"sandwichcheck/types"
)

// SignatureSource lists signatures, either for an account (newest first) or for a slot (in block order).
type SignatureSource interface {
	ListRecentSignatures(ctx context.Context, account string, before string, limit int) ([]types.SignatureInfo, error)
	GetUnitSignatures(ctx context.Context, slot uint64) ([]string, error)
}

// DetailSource fetches full transactions. Missing or unparsable signatures are left out of
// the result, which is keyed by signature.
type DetailSource interface {
	GetTransactionDetails(ctx context.Context, signatures []string) (map[string]*types.RawTransaction, error)
}

type Ledger interface {
	SignatureSource
	DetailSource
}

type ledger struct {
	SignatureSource
	DetailSource
}

// NewLedger pairs a signature source with a (possibly different) detail source,
// e.g. the JSON-RPC node for signatures and Helius for parsed transactions.
func NewLedger(sigs SignatureSource, details DetailSource) Ledger {
	return &ledger{SignatureSource: sigs, DetailSource: details}
}

// PriceQuoter returns the current SOL price in USD. A stale or fallback value is fine.
type PriceQuoter interface {
	SolPriceUSD(ctx context.Context) float64
}
