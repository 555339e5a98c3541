package cache

import (
	"context"
	"strings"

	"sandwichcheck/types"
)

// ReportCache keeps finished wallet reports so repeated checks of the same wallet skip
// the ledger. A miss is (nil, false, nil).
type ReportCache interface {
	Get(ctx context.Context, wallet string) (*types.WalletReportJSON, bool, error)
	Set(ctx context.Context, wallet string, report *types.WalletReportJSON) error
}

const keyPrefix = "sandwich-check:"

func reportKey(wallet string) string {
	return keyPrefix + strings.TrimSpace(wallet)
}
